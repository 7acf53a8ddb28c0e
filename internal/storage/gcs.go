package storage

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"
)

// GCSProvider implements Provider on Google Cloud Storage. Authentication
// is handled via Application Default Credentials.
type GCSProvider struct {
	client *storage.Client
	bucket string
	logger *zap.Logger
}

// NewGCSProvider initializes a GCS client and verifies bucket access,
// failing fast on startup if the configuration is wrong.
func NewGCSProvider(ctx context.Context, bucket string, logger *zap.Logger) (*GCSProvider, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create GCS client: %w", err)
	}

	if _, err := client.Bucket(bucket).Attrs(ctx); err != nil {
		if closeErr := client.Close(); closeErr != nil {
			logger.Warn("close GCS client after bucket check failure", zap.Error(closeErr))
		}
		return nil, fmt.Errorf("get GCS bucket %q attributes: %w", bucket, err)
	}

	return &GCSProvider{client: client, bucket: bucket, logger: logger}, nil
}

// Save uploads the image bytes to the bucket and returns the public object
// URL.
func (g *GCSProvider) Save(ctx context.Context, objectName string, data []byte, contentType string) (string, error) {
	wc := g.client.Bucket(g.bucket).Object(objectName).NewWriter(ctx)
	wc.ContentType = contentType

	if _, err := wc.Write(data); err != nil {
		// Close anyway to release the writer; the write error is primary.
		if closeErr := wc.Close(); closeErr != nil {
			g.logger.Warn("close GCS writer after write failure", zap.Error(closeErr))
		}
		return "", fmt.Errorf("write GCS object %s: %w", objectName, err)
	}

	// Close finalizes the upload and flushes buffered data.
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("close GCS writer for object %s: %w", objectName, err)
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", g.bucket, objectName), nil
}

// Close releases the underlying client.
func (g *GCSProvider) Close() error {
	if err := g.client.Close(); err != nil {
		return fmt.Errorf("close GCS client: %w", err)
	}
	return nil
}
