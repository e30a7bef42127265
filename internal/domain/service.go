package domain

import (
	"context"
	"image"
	"io"
)

// UploadedFile is one part of a style transfer form.
type UploadedFile struct {
	Filename string
	MimeType string
	Size     int64
	Reader   io.Reader
}

type TransferService interface {
	StyleTransfer(ctx context.Context, content, style UploadedFile) (*Transfer, error)
	EnqueueTransfer(ctx context.Context, content, style UploadedFile) (*Transfer, error)
	GetTransfer(ctx context.Context, id string) (*Transfer, error)
	GetOutputFile(ctx context.Context, filename string) (io.ReadCloser, error)
	DeleteTransfer(ctx context.Context, id string) error
	ListTransfers(ctx context.Context, limit, offset int) ([]*Transfer, error)
}

type ProcessorService interface {
	ProcessTransfer(ctx context.Context, transferID string) error
}

// Stylizer renders content in the visual style of style.
type Stylizer interface {
	Stylize(content, style io.Reader) (image.Image, error)
	Encode(w io.Writer, img image.Image) error
}

type StorageService interface {
	SaveUpload(ctx context.Context, filename string, reader io.Reader) (string, error)
	SaveOutput(ctx context.Context, filename string, reader io.Reader) (string, error)
	GetUpload(ctx context.Context, path string) (io.ReadCloser, error)
	GetOutput(ctx context.Context, path string) (io.ReadCloser, error)
	Delete(ctx context.Context, path string) error
	DeleteAll(ctx context.Context, paths ...string) error
}

type QueueService interface {
	PublishTransferTask(ctx context.Context, transferID string) error
	Close() error
}
