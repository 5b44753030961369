package configuration

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Database    DatabaseConfig
	MinIO       MinIOConfig
	Server      ServerConfig
	Upload      UploadConfig
	NATSURL     string
	KeycloakUrl string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type MinIOConfig struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	BucketName string
	UseSSL     bool
}

type ServerConfig struct {
	Port string
}

// UploadConfig is the upload/storage policy.
type UploadConfig struct {
	// StorageRoot is the base directory for permanent attachment files.
	StorageRoot string
	// TenantShards fans the storage tree out below the root.
	TenantShards int
	// ExpiryHorizon is how long a session stays claimable after initiation.
	ExpiryHorizon time.Duration
	// MaxDeclaredSize caps the declared size at initiation, in bytes.
	MaxDeclaredSize int64
	// UploadBaseURL is the chunk-receiving tier's address handed to clients.
	UploadBaseURL string
}

func Load() *Config {
	return &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "attachuser"),
			Password: getEnv("DB_PASSWORD", "attachpassword"),
			DBName:   getEnv("DB_NAME", "attachments"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		MinIO: MinIOConfig{
			Endpoint:   getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey:  getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey:  getEnv("MINIO_SECRET_KEY", "minioadmin"),
			BucketName: getEnv("MINIO_BUCKET", "transfers"),
			UseSSL:     getEnv("MINIO_USE_SSL", "false") == "true",
		},
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
		},
		Upload: UploadConfig{
			StorageRoot:     getEnv("STORAGE_ROOT", "./data/attachments"),
			TenantShards:    getEnvInt("TENANT_SHARDS", 16),
			ExpiryHorizon:   getEnvDuration("UPLOAD_EXPIRY", 24*time.Hour),
			MaxDeclaredSize: int64(getEnvInt("UPLOAD_MAX_SIZE", 2<<30)),
			UploadBaseURL:   getEnv("UPLOAD_BASE_URL", "http://localhost:8090/transfers"),
		},
		NATSURL:     getEnv("NATS_URL", "nats://localhost:4222"),
		KeycloakUrl: getEnv("KEYCLOAK_URL", "http://localhost:8081/realms/docbridge"),
	}
}

func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
