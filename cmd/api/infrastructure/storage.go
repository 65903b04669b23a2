package infrastructure

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"pmblueprints/internal/adapter/storage"
	"pmblueprints/internal/config"
)

// NewStorage creates the object storage service backed by the
// configured S3-compatible endpoint.
func NewStorage(ctx context.Context, cfg *config.Config, l *zap.Logger) (storage.Service, error) {
	client, err := storage.NewS3Client(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize object storage: %w", err)
	}

	l.Info("object storage configured",
		zap.String("bucket", cfg.Storage.Bucket),
		zap.String("endpoint", cfg.Storage.Endpoint),
	)

	return storage.NewS3Service(client, cfg.Storage.Bucket, l), nil
}
