// Package storage keeps the archive's binary assets: optimized SVGs and the
// shared csv, pdf and image files. Keys are slash separated relative paths.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/ARQAP/archive-backend/src/config"
)

var ErrNotExist = errors.New("storage: object does not exist")

type Info struct {
	Key     string
	Size    int64
	ModTime time.Time
}

// Store is implemented by every storage driver. Write overwrites an
// existing object at the same key.
type Store interface {
	Exists(ctx context.Context, key string) (bool, error)
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
	Open(ctx context.Context, key string) (io.ReadCloser, Info, error)
}

// Open builds the driver selected in cfg.
func Open(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Driver {
	case "", "fs":
		return NewFS(cfg.Root)
	case "memory":
		return NewMemory(), nil
	case "s3":
		return NewS3(ctx, S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			PathStyle: cfg.S3PathStyle,
		})
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// sanitizeKey forbids absolute keys and anything that could climb out of the store root.
func sanitizeKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", errors.New("storage: empty key")
	}
	if strings.Contains(key, "..") || strings.Contains(key, `\`) {
		return "", fmt.Errorf("storage: invalid key %q", key)
	}
	if strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("storage: absolute key %q", key)
	}
	return path.Clean(key), nil
}
