package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/DocBridge-Platform/Attachment-Service/cmd/middleware"
	"github.com/DocBridge-Platform/Attachment-Service/internal/api"
	handlers "github.com/DocBridge-Platform/Attachment-Service/internal/api/handlers/upload"
	"github.com/DocBridge-Platform/Attachment-Service/internal/classify"
	"github.com/DocBridge-Platform/Attachment-Service/internal/configuration"
	natsroutes "github.com/DocBridge-Platform/Attachment-Service/internal/nats"
	"github.com/DocBridge-Platform/Attachment-Service/internal/services"
	"github.com/DocBridge-Platform/Attachment-Service/internal/services/infrastructure"
	"github.com/DocBridge-Platform/Attachment-Service/internal/transferstore"
	"github.com/DocBridge-Platform/Attachment-Service/internal/upload"
	"github.com/gin-gonic/gin"
	gintrace "gopkg.in/DataDog/dd-trace-go.v1/contrib/gin-gonic/gin"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

func main() {
	cfg := configuration.Load()

	tracer.Start(tracer.WithService("attachment-service"))
	defer tracer.Stop()

	// Relational state: sessions, folder tree, attachments, tenants
	store := &infrastructure.PostgresStore{}
	if err := store.Connect(cfg.Database.ConnectionString()); err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}

	// Object store backing the resumable-transfer store
	if err := services.InitializeMinio(
		cfg.MinIO.Endpoint,
		cfg.MinIO.AccessKey,
		cfg.MinIO.SecretKey,
		cfg.MinIO.BucketName,
		cfg.MinIO.UseSSL,
	); err != nil {
		log.Fatalf("Failed to connect to MinIO: %v", err)
	}
	transfers := transferstore.NewMinioStore(services.GetMinioService().Client, cfg.MinIO.BucketName)

	if _, _, err := services.ConnectNATS(cfg.NATSURL); err != nil {
		log.Printf("Warning: NATS unavailable, running without eventing: %v", err)
	}
	defer services.CloseNATS()

	resolver := classify.NewResolver(store.Classifications())
	svc := upload.NewService(
		store.Sessions(),
		store.Attachments(),
		store,
		resolver,
		transfers,
		upload.NewPathGenerator(cfg.Upload.StorageRoot, cfg.Upload.TenantShards),
		publisher{},
		upload.Config{
			ExpiryHorizon:   cfg.Upload.ExpiryHorizon,
			MaxDeclaredSize: cfg.Upload.MaxDeclaredSize,
			UploadBaseURL:   cfg.Upload.UploadBaseURL,
		},
	)
	handlers.SetService(svc)

	// Expiry verdicts arrive over the bus; the sweep runs elsewhere
	if err := natsroutes.SubscribeAll(natsroutes.Routes(svc)); err != nil {
		log.Printf("Warning: failed to subscribe NATS routes: %v", err)
	}

	var authMW gin.HandlerFunc
	if err := middleware.InitAuth(cfg.KeycloakUrl); err != nil {
		log.Printf("Warning: OIDC init failed, API runs unauthenticated: %v", err)
	} else {
		authMW = middleware.RequireAuth()
	}

	setupGracefulShutdown()

	r := gin.Default()
	r.Use(gintrace.Middleware("attachment-service"))

	api.RegisterRoutes(r, authMW)

	log.Printf("Server starting on :%s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// publisher routes core events onto JetStream.
type publisher struct{}

func (publisher) Publish(subject string, payload interface{}) error {
	return services.PublishEvent(subject, payload)
}

func setupGracefulShutdown() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("Shutting down gracefully...")
		services.CloseNATS()
		os.Exit(0)
	}()
}
