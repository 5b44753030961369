package infrastructure

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq"
)

// PostgresStore holds the service's relational state: upload sessions,
// the classification tree, attachment records and the tenant directory.
type PostgresStore struct {
	Db *sql.DB
}

// Connect establishes the connection, applies pool settings and
// bootstraps the schema.
func (p *PostgresStore) Connect(connectionString string) error {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %v", err)
	}

	// Test the connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping PostgreSQL: %v", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	p.Db = db

	if err := p.createTables(); err != nil {
		return fmt.Errorf("failed to create tables: %v", err)
	}

	log.Println("Connected to PostgreSQL successfully")
	return nil
}

func (p *PostgresStore) createTables() error {
	query := `
  CREATE TABLE IF NOT EXISTS tenants (
      id VARCHAR(100) PRIMARY KEY,
      name VARCHAR(255) NOT NULL,
      created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
  );

  CREATE TABLE IF NOT EXISTS classifications (
      id BIGSERIAL PRIMARY KEY,
      external_id UUID NOT NULL UNIQUE,
      title VARCHAR(255) NOT NULL,
      parent_id BIGINT REFERENCES classifications(id),
      tenant_id VARCHAR(100) NOT NULL,
      created_by VARCHAR(100),
      created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
  );

  CREATE TABLE IF NOT EXISTS upload_sessions (
      id UUID PRIMARY KEY,
      transfer_id UUID NOT NULL UNIQUE,
      file_name VARCHAR(255) NOT NULL,
      content_type VARCHAR(100) NOT NULL DEFAULT '',
      total_size BIGINT NOT NULL,
      uploaded_size BIGINT NOT NULL DEFAULT 0,
      status VARCHAR(20) NOT NULL,
      tenant_id VARCHAR(100) NOT NULL,
      folder_id BIGINT REFERENCES classifications(id),
      folder_path VARCHAR(1000),
      attachment_id UUID,
      error_message TEXT,
      finalize_claimed BOOLEAN NOT NULL DEFAULT false,
      created_at TIMESTAMPTZ NOT NULL,
      expires_at TIMESTAMPTZ NOT NULL
  );

  CREATE TABLE IF NOT EXISTS attachments (
      id UUID PRIMARY KEY,
      tenant_id VARCHAR(100) NOT NULL,
      folder_id BIGINT REFERENCES classifications(id),
      stored_name VARCHAR(255) NOT NULL,
      original_name VARCHAR(255) NOT NULL,
      storage_path VARCHAR(500) NOT NULL UNIQUE,
      content_type VARCHAR(100) NOT NULL DEFAULT '',
      file_size BIGINT NOT NULL,
      digest CHAR(64) NOT NULL,
      transfer_id UUID NOT NULL,
      description TEXT,
      created_at TIMESTAMPTZ NOT NULL
  );
  `
	if _, err := p.Db.Exec(query); err != nil {
		return err
	}

	// Title uniqueness under one parent is what lets the path resolver
	// decide find-vs-create; COALESCE folds NULL parents into one bucket.
	indexQuery := `
  CREATE UNIQUE INDEX IF NOT EXISTS idx_classifications_title
      ON classifications(tenant_id, COALESCE(parent_id, 0), title);
  CREATE INDEX IF NOT EXISTS idx_sessions_tenant_created
      ON upload_sessions(tenant_id, created_at DESC);
  CREATE INDEX IF NOT EXISTS idx_sessions_status ON upload_sessions(status);
  CREATE INDEX IF NOT EXISTS idx_attachments_folder ON attachments(folder_id);
  `

	_, err := p.Db.Exec(indexQuery)
	return err
}

// Sessions returns the upload session repository bound to this store.
func (p *PostgresStore) Sessions() *SessionRepo {
	return &SessionRepo{Db: p.Db}
}

// Classifications returns the folder tree repository bound to this store.
func (p *PostgresStore) Classifications() *ClassificationRepo {
	return &ClassificationRepo{Db: p.Db}
}

// Attachments returns the attachment repository bound to this store.
func (p *PostgresStore) Attachments() *AttachmentRepo {
	return &AttachmentRepo{Db: p.Db}
}

// TenantExists reports whether the tenant id is registered.
func (p *PostgresStore) TenantExists(ctx context.Context, tenantID string) (bool, error) {
	var one int
	err := p.Db.QueryRowContext(ctx, `SELECT 1 FROM tenants WHERE id = $1`, tenantID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
