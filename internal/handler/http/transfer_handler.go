package http

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"github.com/yokitheyo/styletransfer/internal/domain"
	"github.com/yokitheyo/styletransfer/internal/dto"
	"github.com/yokitheyo/styletransfer/internal/helpers"
)

const (
	ContentImageField = "content_image"
	StyleImageField   = "style_image"

	MissingImagesMessage = "Both content and style images are required!"
)

type TransferHandler struct {
	service        domain.TransferService
	maxUploadSize  int64
	allowedFormats []string
}

func NewTransferHandler(service domain.TransferService, maxUploadSizeMB int, allowedFormats []string) *TransferHandler {
	return &TransferHandler{
		service:        service,
		maxUploadSize:  int64(maxUploadSizeMB) * 1024 * 1024,
		allowedFormats: allowedFormats,
	}
}

// RegisterRoutes mounts the API. submit runs in front of the two upload
// routes only.
func (h *TransferHandler) RegisterRoutes(engine *ginext.Engine, submit ...ginext.HandlerFunc) {
	chain := func(handler ginext.HandlerFunc) []ginext.HandlerFunc {
		return append(append([]ginext.HandlerFunc{}, submit...), handler)
	}

	engine.POST("/style-transfer", chain(h.StyleTransfer)...)
	engine.POST("/style-transfer/async", chain(h.EnqueueTransfer)...)
	engine.GET("/transfers", h.ListTransfers)
	engine.GET("/transfers/:id", h.GetTransfer)
	engine.DELETE("/transfers/:id", h.DeleteTransfer)
	engine.GET("/output/:filename", h.GetOutput)
}

// StyleTransfer POST /style-transfer
func (h *TransferHandler) StyleTransfer(c *ginext.Context) {
	content, style, cleanup, ok := h.readImages(c)
	if !ok {
		return
	}
	defer cleanup()

	transfer, err := h.service.StyleTransfer(c.Request.Context(), content, style)
	if err != nil {
		h.writeServiceError(c, err, "style transfer failed")
		return
	}

	c.JSON(http.StatusOK, dto.StyleTransferResponse{
		Message:  dto.SuccessMessage,
		ImageURL: dto.OutputURL(transfer),
	})
}

// EnqueueTransfer POST /style-transfer/async
func (h *TransferHandler) EnqueueTransfer(c *ginext.Context) {
	content, style, cleanup, ok := h.readImages(c)
	if !ok {
		return
	}
	defer cleanup()

	transfer, err := h.service.EnqueueTransfer(c.Request.Context(), content, style)
	if err != nil {
		h.writeServiceError(c, err, "failed to enqueue style transfer")
		return
	}

	c.JSON(http.StatusAccepted, dto.MapTransferToResponse(transfer))
}

// GetTransfer GET /transfers/:id
func (h *TransferHandler) GetTransfer(c *ginext.Context) {
	id := c.Param("id")

	transfer, err := h.service.GetTransfer(c.Request.Context(), id)
	if err != nil {
		h.writeServiceError(c, err, "failed to get transfer")
		return
	}

	c.JSON(http.StatusOK, dto.MapTransferToResponse(transfer))
}

// DeleteTransfer DELETE /transfers/:id
func (h *TransferHandler) DeleteTransfer(c *ginext.Context) {
	id := c.Param("id")

	if err := h.service.DeleteTransfer(c.Request.Context(), id); err != nil {
		h.writeServiceError(c, err, "failed to delete transfer")
		return
	}

	c.Status(http.StatusNoContent)
}

// ListTransfers GET /transfers
func (h *TransferHandler) ListTransfers(c *ginext.Context) {
	limit := 10
	if l := c.Query("limit"); l != "" {
		if val, err := strconv.Atoi(l); err == nil && val > 0 {
			limit = val
		}
	}

	offset := 0
	if o := c.Query("offset"); o != "" {
		if val, err := strconv.Atoi(o); err == nil && val >= 0 {
			offset = val
		}
	}

	transfers, err := h.service.ListTransfers(c.Request.Context(), limit, offset)
	if err != nil {
		h.writeServiceError(c, err, "failed to list transfers")
		return
	}

	c.JSON(http.StatusOK, dto.MapTransfersToResponse(transfers, limit, offset))
}

// GetOutput GET /output/:filename
func (h *TransferHandler) GetOutput(c *ginext.Context) {
	filename := c.Param("filename")

	file, err := h.service.GetOutputFile(c.Request.Context(), filename)
	if err != nil {
		h.writeServiceError(c, err, "failed to get stylized image")
		return
	}
	defer file.Close()

	c.Header("Content-Type", "image/jpeg")
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%s", filename))
	c.Status(http.StatusOK)

	written, err := io.Copy(c.Writer, file)
	if err != nil {
		zlog.Logger.Error().
			Err(err).
			Str("filename", filename).
			Int64("bytes_written", written).
			Msg("failed to write stylized image to response")
	}
}

// readImages pulls both form parts out of the request. On failure it has
// already written the response.
func (h *TransferHandler) readImages(c *ginext.Context) (content, style domain.UploadedFile, cleanup func(), ok bool) {
	contentFile, contentHeader, contentErr := c.Request.FormFile(ContentImageField)
	styleFile, styleHeader, styleErr := c.Request.FormFile(StyleImageField)

	cleanup = func() {
		if contentFile != nil {
			contentFile.Close()
		}
		if styleFile != nil {
			styleFile.Close()
		}
	}

	if contentErr != nil || styleErr != nil {
		cleanup()
		zlog.Logger.Warn().
			AnErr("content_error", contentErr).
			AnErr("style_error", styleErr).
			Msg("style transfer form is missing an image")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: MissingImagesMessage})
		return content, style, nil, false
	}

	for _, header := range []*multipart.FileHeader{contentHeader, styleHeader} {
		if err := h.validate(header); err != nil {
			cleanup()
			h.writeServiceError(c, err, "invalid upload")
			return content, style, nil, false
		}
	}

	content = toUploadedFile(contentFile, contentHeader)
	style = toUploadedFile(styleFile, styleHeader)
	return content, style, cleanup, true
}

func (h *TransferHandler) validate(header *multipart.FileHeader) error {
	if header.Size > h.maxUploadSize {
		return fmt.Errorf("%w: %s", domain.ErrFileTooLarge, header.Filename)
	}
	if !helpers.ContainsFold(h.allowedFormats, helpers.Ext(header.Filename)) {
		return fmt.Errorf("%w: %s", domain.ErrInvalidFormat, header.Filename)
	}
	return nil
}

func toUploadedFile(file multipart.File, header *multipart.FileHeader) domain.UploadedFile {
	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return domain.UploadedFile{
		Filename: header.Filename,
		MimeType: mimeType,
		Size:     header.Size,
		Reader:   file,
	}
}

func (h *TransferHandler) writeServiceError(c *ginext.Context, err error, logMsg string) {
	status, resp := h.mapError(err)
	if status >= http.StatusInternalServerError {
		zlog.Logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg(logMsg)
	} else {
		zlog.Logger.Warn().Err(err).Str("path", c.Request.URL.Path).Msg(logMsg)
	}
	c.JSON(status, resp)
}

func (h *TransferHandler) mapError(err error) (int, dto.ErrorResponse) {
	switch {
	case errors.Is(err, domain.ErrMissingImages):
		return http.StatusBadRequest, dto.ErrorResponse{Error: MissingImagesMessage}
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusBadRequest, dto.ErrorResponse{
			Error:   "file_too_large",
			Message: fmt.Sprintf("File size exceeds maximum allowed (%d MB)", h.maxUploadSize/(1024*1024)),
		}
	case errors.Is(err, domain.ErrInvalidFormat):
		return http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid_format",
			Message: fmt.Sprintf("Unsupported file format. Allowed: %v", h.allowedFormats),
		}
	case errors.Is(err, domain.ErrInvalidImageData):
		return http.StatusUnprocessableEntity, dto.ErrorResponse{Error: "invalid_image", Message: "Uploaded file is not a readable image"}
	case errors.Is(err, domain.ErrTransferNotFound):
		return http.StatusNotFound, dto.ErrorResponse{Error: "not_found", Message: "Transfer not found"}
	case errors.Is(err, domain.ErrTransferNotComplete):
		return http.StatusConflict, dto.ErrorResponse{Error: "not_ready", Message: "Stylized image is not ready yet"}
	case errors.Is(err, domain.ErrQueueFailed):
		return http.StatusServiceUnavailable, dto.ErrorResponse{Error: "queue_unavailable", Message: "Failed to schedule style transfer"}
	default:
		return http.StatusInternalServerError, dto.ErrorResponse{Error: "server_error", Message: "Style transfer failed"}
	}
}
