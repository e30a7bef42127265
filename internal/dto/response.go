package dto

import (
	"path"
	"time"

	"github.com/yokitheyo/styletransfer/internal/domain"
)

const SuccessMessage = "Style Transfer Successful!"

// StyleTransferResponse is the body of a successful POST /style-transfer.
type StyleTransferResponse struct {
	Message  string `json:"message"`
	ImageURL string `json:"image_url"`
}

type TransferResponse struct {
	ID              string     `json:"id"`
	ContentFilename string     `json:"content_filename"`
	StyleFilename   string     `json:"style_filename"`
	Mode            string     `json:"mode"`
	Status          string     `json:"status"`
	Width           int        `json:"width,omitempty"`
	Height          int        `json:"height,omitempty"`
	ErrorMessage    string     `json:"error_message,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`

	StatusURL string `json:"status_url"`
	ImageURL  string `json:"image_url,omitempty"`
}

type TransferListResponse struct {
	Transfers []*TransferResponse `json:"transfers"`
	Total     int                 `json:"total"`
	Limit     int                 `json:"limit"`
	Offset    int                 `json:"offset"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// OutputURL is the path under which the stylized image of t is served.
func OutputURL(t *domain.Transfer) string {
	if t == nil || t.OutputPath == "" {
		return ""
	}
	return "/output/" + path.Base(t.OutputPath)
}

func MapTransferToResponse(t *domain.Transfer) *TransferResponse {
	if t == nil {
		return nil
	}

	resp := &TransferResponse{
		ID:              t.ID,
		ContentFilename: t.ContentFilename,
		StyleFilename:   t.StyleFilename,
		Mode:            string(t.Mode),
		Status:          string(t.Status),
		Width:           t.Width,
		Height:          t.Height,
		ErrorMessage:    t.ErrorMessage,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
		CompletedAt:     t.CompletedAt,
		StatusURL:       "/transfers/" + t.ID,
	}

	if t.IsCompleted() {
		resp.ImageURL = OutputURL(t)
	}

	return resp
}

func MapTransfersToResponse(transfers []*domain.Transfer, limit, offset int) *TransferListResponse {
	responses := make([]*TransferResponse, 0, len(transfers))
	for _, t := range transfers {
		responses = append(responses, MapTransferToResponse(t))
	}

	return &TransferListResponse{
		Transfers: responses,
		Total:     len(responses),
		Limit:     limit,
		Offset:    offset,
	}
}
