package domain

import "errors"

var (
	ErrTransferNotFound    = errors.New("transfer not found")
	ErrMissingImages       = errors.New("both content and style images are required")
	ErrInvalidFormat       = errors.New("invalid or unsupported image format")
	ErrFileTooLarge        = errors.New("file size exceeds maximum allowed")
	ErrInvalidImageData    = errors.New("invalid image data")
	ErrStylizationFailed   = errors.New("style transfer failed")
	ErrStorageFailed       = errors.New("storage operation failed")
	ErrQueueFailed         = errors.New("queue operation failed")
	ErrTransferNotComplete = errors.New("transfer is not completed yet")
)
