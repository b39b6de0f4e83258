package storage

import (
	"context"
	"errors"
	"io"
)

// ErrObjectNotFound is returned by Get for keys that do not exist.
var ErrObjectNotFound = errors.New("storage: object not found")

// ObjectStorage is the backend for uploaded gift-card images and
// cancellation proof shots.
type ObjectStorage interface {
	Put(ctx context.Context, key string, reader io.Reader, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	GetURL(key string) string
}

// Config holds storage backend configuration
type Config struct {
	Endpoint  string // empty for AWS S3, set for R2/MinIO
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	PublicURL string
}
