package cloudwriter

import (
	"context"
	"fmt"

	"github.com/chrisdamba/retailiq/internal/models"
)

// CloudWriter buffers an object and uploads it on Close.
type CloudWriter interface {
	Write(data []byte) (int, error)
	Close() error
}

type CloudWriterFactory interface {
	NewWriter(bucket, objectPath string) (CloudWriter, error)
}

// NewFactory returns the writer factory for the configured provider.
func NewFactory(ctx context.Context, cfg models.CloudStorageConfig) (CloudWriterFactory, error) {
	if cfg.BucketName == "" {
		return nil, fmt.Errorf("output.cloud_storage.bucket_name is required")
	}
	switch cfg.Provider {
	case "s3":
		return NewS3WriterFactory(ctx, cfg.Region)
	default:
		return nil, fmt.Errorf("unsupported cloud storage provider: %s", cfg.Provider)
	}
}
