package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/wb-go/wbf/zlog"

	"github.com/yokitheyo/styletransfer/internal/config"
)

var ErrObjectNotFound = errors.New("object not found")

// Storage keeps the uploaded content/style images and the stylized outputs.
// Paths returned by the Save methods are relative and are what the
// repository persists.
type Storage interface {
	SaveUpload(ctx context.Context, filename string, reader io.Reader) (string, error)
	SaveOutput(ctx context.Context, filename string, reader io.Reader) (string, error)
	GetUpload(ctx context.Context, path string) (io.ReadCloser, error)
	GetOutput(ctx context.Context, path string) (io.ReadCloser, error)
	Delete(ctx context.Context, path string) error
	DeleteAll(ctx context.Context, paths ...string) error
}

func New(cfg *config.StorageConfig) (Storage, error) {
	switch cfg.Type {
	case "local":
		zlog.Logger.Info().Msg("Initializing local storage")
		return NewLocalStorage(cfg)
	case "s3":
		zlog.Logger.Info().Msg("Initializing S3 storage")
		return NewS3Storage(cfg)
	default:
		zlog.Logger.Error().Str("type", cfg.Type).Msg("Unsupported storage type, use 'local' or 's3'")
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

func deleteAll(ctx context.Context, del func(context.Context, string) error, paths []string) error {
	var errs []error
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := del(ctx, p); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
