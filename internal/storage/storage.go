package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/sudays/sudays-backend/config"
	"github.com/sudays/sudays-backend/pkg/logger"
)

// ErrBlobNotFound is returned by Read when the key does not exist
var ErrBlobNotFound = errors.New("blob not found")

// BlobStorage persists opaque image bytes under a key.
// Keys are write-once: a key is never rewritten after creation.
type BlobStorage interface {
	Write(ctx context.Context, key string, data []byte) error
	Read(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	// Location returns the base path or bucket the keys live under
	Location() string
}

// New builds the blob storage selected by configuration
func New(ctx context.Context, cfg config.StorageConfig, log *logger.Logger) (BlobStorage, error) {
	switch cfg.Driver {
	case "local", "":
		return NewLocalStorage(cfg.ImageDir, log)
	case "s3":
		return NewS3Storage(ctx, cfg.S3, log)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
