package storage

import (
	"context"
	"io"
	"time"
)

// ObjectInfo describes one stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified *time.Time
}

// Service abstracts the object store holding template files, previews
// and generated documents.
type Service interface {
	// Upload stores an object under key and returns its size.
	Upload(ctx context.Context, key, contentType string, body io.Reader) (int64, error)

	// PresignDownload returns a time-limited GET URL for an object.
	PresignDownload(ctx context.Context, key string, ttl time.Duration) (string, error)

	// Download streams an object. The caller must close the reader.
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// List returns objects under a key prefix.
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)

	// Delete removes a single object.
	Delete(ctx context.Context, key string) error
}
