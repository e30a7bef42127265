// Package form implements the style transfer submission flow: validate the
// two selected images, post them, and write the result into a view.
package form

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/wb-go/wbf/zlog"

	"github.com/yokitheyo/styletransfer/internal/client"
)

const (
	MissingInputAlert = "Please upload both content and style images!"
	FailureAlert      = "An error occurred. Please try again."

	ProcessingText = "Processing..."
	IdleText       = "Apply Style Transfer"
)

var (
	ErrMissingInput  = errors.New("content and style images are required")
	ErrRequestFailed = errors.New("style transfer request failed")
)

// Upload is a user-selected image. A nil Upload or a nil Body means the
// input was left empty.
type Upload struct {
	Filename string
	Body     io.Reader
}

func (u *Upload) selected() bool {
	return u != nil && u.Body != nil
}

// View is where the handler reports to the user.
type View interface {
	Alert(message string)
	// ShowResult sets the stylized image source, makes it visible and
	// sets the message text.
	ShowResult(imageURL, message string)
}

// Affordances are the transient controls toggled while a request is in
// flight.
type Affordances interface {
	SetSubmitEnabled(enabled bool)
	SetButtonText(text string)
	SetSpinnerVisible(visible bool)
}

type Transferer interface {
	StyleTransfer(ctx context.Context, content, style client.File) (*client.Result, error)
}

type Handler struct {
	client      Transferer
	view        View
	affordances Affordances
}

type Option func(*Handler)

func WithAffordances(a Affordances) Option {
	return func(h *Handler) {
		h.affordances = a
	}
}

func NewHandler(c Transferer, v View, options ...Option) *Handler {
	h := &Handler{
		client: c,
		view:   v,
	}

	for _, option := range options {
		option(h)
	}

	return h
}

// Submit runs one submission. Concurrent calls are not coordinated.
func (h *Handler) Submit(ctx context.Context, content, style *Upload) error {
	if !content.selected() || !style.selected() {
		h.view.Alert(MissingInputAlert)
		return ErrMissingInput
	}

	if h.affordances != nil {
		h.busy()
		defer h.idle()
	}

	result, err := h.client.StyleTransfer(ctx,
		client.File{Name: content.Filename, Body: content.Body},
		client.File{Name: style.Filename, Body: style.Body},
	)

	if err != nil {
		zlog.Logger.Error().
			Err(err).
			Str("content", content.Filename).
			Str("style", style.Filename).
			Msg("style transfer failed")

		h.view.Alert(FailureAlert)
		return fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}

	h.view.ShowResult(result.ImageURL, result.Message)
	return nil
}

func (h *Handler) busy() {
	h.affordances.SetSubmitEnabled(false)
	h.affordances.SetButtonText(ProcessingText)
	h.affordances.SetSpinnerVisible(true)
}

func (h *Handler) idle() {
	h.affordances.SetSubmitEnabled(true)
	h.affordances.SetButtonText(IdleText)
	h.affordances.SetSpinnerVisible(false)
}
