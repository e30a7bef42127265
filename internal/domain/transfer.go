package domain

import (
	"time"
)

type TransferStatus string

const (
	StatusPending    TransferStatus = "pending"
	StatusProcessing TransferStatus = "processing"
	StatusCompleted  TransferStatus = "completed"
	StatusFailed     TransferStatus = "failed"
)

// TransferMode tells whether the stylized image was produced inside the
// request or handed to the worker.
type TransferMode string

const (
	ModeSync  TransferMode = "sync"
	ModeAsync TransferMode = "async"
)

type Transfer struct {
	ID              string         `json:"id"`
	ContentFilename string         `json:"content_filename"`
	StyleFilename   string         `json:"style_filename"`
	ContentPath     string         `json:"content_path"`
	StylePath       string         `json:"style_path"`
	OutputPath      string         `json:"output_path,omitempty"`
	Mode            TransferMode   `json:"mode"`
	Status          TransferStatus `json:"status"`
	Width           int            `json:"width,omitempty"`
	Height          int            `json:"height,omitempty"`
	ErrorMessage    string         `json:"error_message,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	CompletedAt     *time.Time     `json:"completed_at,omitempty"`
}

func (t *Transfer) IsCompleted() bool {
	return t.Status == StatusCompleted
}

func (t *Transfer) IsFailed() bool {
	return t.Status == StatusFailed
}

func (t *Transfer) CanBeProcessed() bool {
	return t.Status == StatusPending || t.Status == StatusFailed
}

func (t *Transfer) MarkAsProcessing() {
	t.Status = StatusProcessing
	t.UpdatedAt = time.Now()
}

func (t *Transfer) MarkAsCompleted(outputPath string, width, height int) {
	t.Status = StatusCompleted
	t.OutputPath = outputPath
	t.Width = width
	t.Height = height
	now := time.Now()
	t.CompletedAt = &now
	t.UpdatedAt = now
	t.ErrorMessage = ""
}

func (t *Transfer) MarkAsFailed(errMsg string) {
	t.Status = StatusFailed
	t.ErrorMessage = errMsg
	t.UpdatedAt = time.Now()
}

// OutputFilename is the name under which the stylized image is published
// at /output/<name>.
func (t *Transfer) OutputFilename() string {
	return t.ID + ".jpg"
}
