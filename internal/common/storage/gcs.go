// internal/common/storage/gcs.go
package storage

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"

	"voluntra-backend/internal/common/config"
)

// GCSClient wraps the blob store used for traveler document uploads.
type GCSClient struct {
	client *storage.Client
	bucket string
}

// NewGCS creates a blob store client bound to the configured bucket.
func NewGCS(ctx context.Context, cfg config.StorageConfig) (*GCSClient, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storage bucket must be provided")
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &GCSClient{client: client, bucket: cfg.Bucket}, nil
}

// Close closes the underlying client.
func (c *GCSClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// Upload writes one object and returns its public URL.
func (c *GCSClient) Upload(ctx context.Context, objectName, contentType string, r io.Reader) (string, error) {
	w := c.client.Bucket(c.bucket).Object(objectName).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to write to blob store: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize blob write: %w", err)
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", c.bucket, objectName), nil
}
