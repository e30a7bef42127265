package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/wb-go/wbf/zlog"

	"github.com/yokitheyo/styletransfer/internal/config"
	"github.com/yokitheyo/styletransfer/internal/helpers"
)

type s3Storage struct {
	client    *minio.Client
	bucket    string
	uploadDir string
	outputDir string
}

func NewS3Storage(cfg *config.StorageConfig) (Storage, error) {
	if cfg.S3Endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint is required")
	}
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	if cfg.S3AccessKey == "" || cfg.S3SecretKey == "" {
		return nil, fmt.Errorf("s3 access key and secret key are required")
	}

	if cfg.UploadDir == "" {
		cfg.UploadDir = "uploads"
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "outputs"
	}

	client, err := minio.New(cfg.S3Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		Secure: cfg.S3UseSSL,
		Region: cfg.S3Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize s3 client: %w", err)
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, cfg.S3Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check s3 bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.S3Bucket, minio.MakeBucketOptions{Region: cfg.S3Region}); err != nil {
			zlog.Logger.Warn().Err(err).Str("bucket", cfg.S3Bucket).Msg("unable to create bucket, ensure it exists and credentials are correct")
		} else {
			zlog.Logger.Info().Str("bucket", cfg.S3Bucket).Msg("created s3 bucket")
		}
	}

	return &s3Storage{
		client:    client,
		bucket:    cfg.S3Bucket,
		uploadDir: cfg.UploadDir,
		outputDir: cfg.OutputDir,
	}, nil
}

func (s *s3Storage) SaveUpload(ctx context.Context, filename string, reader io.Reader) (string, error) {
	return s.saveObject(ctx, s.uploadDir, filename, reader)
}

func (s *s3Storage) SaveOutput(ctx context.Context, filename string, reader io.Reader) (string, error) {
	return s.saveObject(ctx, s.outputDir, filename, reader)
}

func (s *s3Storage) saveObject(ctx context.Context, dir, filename string, reader io.Reader) (string, error) {
	if reader == nil {
		zlog.Logger.Error().Str("filename", filename).Msg("reader is nil")
		return "", fmt.Errorf("reader is nil")
	}

	objectName, err := objectKey(dir, filename)
	if err != nil {
		return "", err
	}

	info, err := s.client.PutObject(ctx, s.bucket, objectName, reader, -1, minio.PutObjectOptions{
		ContentType: contentTypeFor(filename),
	})
	if err != nil {
		zlog.Logger.Error().Err(err).Str("object", objectName).Msg("failed to put object to s3")
		return "", fmt.Errorf("put object %s: %w", objectName, err)
	}
	if info.Size == 0 {
		_ = s.client.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{})
		return "", fmt.Errorf("no bytes written to object %s", objectName)
	}

	zlog.Logger.Info().Str("path", objectName).Int64("bytes", info.Size).Msg("object saved to s3")
	return objectName, nil
}

func (s *s3Storage) GetUpload(ctx context.Context, key string) (io.ReadCloser, error) {
	return s.getObject(ctx, s.uploadDir, key)
}

func (s *s3Storage) GetOutput(ctx context.Context, key string) (io.ReadCloser, error) {
	return s.getObject(ctx, s.outputDir, key)
}

func (s *s3Storage) getObject(ctx context.Context, dir, key string) (io.ReadCloser, error) {
	if !inDir(dir, key) {
		return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, key)
	}

	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		zlog.Logger.Error().Err(err).Str("object", key).Msg("failed to get object")
		return nil, fmt.Errorf("get object %s: %w", key, err)
	}

	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		if isNotFound(err) {
			zlog.Logger.Warn().Str("object", key).Msg("object not found")
			return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, key)
		}
		zlog.Logger.Error().Err(err).Str("object", key).Msg("failed to stat object")
		return nil, fmt.Errorf("stat object %s: %w", key, err)
	}

	return obj, nil
}

// Delete removes an object this storage wrote. Keys outside the upload and
// output prefixes are refused.
func (s *s3Storage) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	if !inDir(s.uploadDir, key) && !inDir(s.outputDir, key) {
		return fmt.Errorf("%w: %s", ErrObjectNotFound, key)
	}

	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		if isNotFound(err) {
			return nil
		}
		zlog.Logger.Error().Err(err).Str("path", key).Msg("failed to delete object from s3")
		return fmt.Errorf("remove object %s: %w", key, err)
	}
	zlog.Logger.Info().Str("path", key).Msg("object deleted from s3")
	return nil
}

func (s *s3Storage) DeleteAll(ctx context.Context, paths ...string) error {
	return deleteAll(ctx, s.Delete, paths)
}

// objectKey joins dir and a bare file name. Names carrying a path are
// rejected, matching the local backend.
func objectKey(dir, filename string) (string, error) {
	if filename == "" || path.Base(filename) != filename || strings.ContainsRune(filename, '\\') {
		return "", fmt.Errorf("invalid filename %q", filename)
	}
	return path.Join(dir, filename), nil
}

// inDir reports whether key is a clean object name directly under dir.
func inDir(dir, key string) bool {
	if key == "" || path.Clean(key) != key {
		return false
	}
	return path.Dir(key) == path.Clean(dir)
}

func isNotFound(err error) bool {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchObject":
		return true
	}
	return false
}

func contentTypeFor(filename string) string {
	switch helpers.Ext(filename) {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "bmp":
		return "image/bmp"
	case "tif", "tiff":
		return "image/tiff"
	case "webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
