package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"

	"github.com/yokitheyo/styletransfer/internal/domain"
)

const (
	defaultListLimit = 10
	maxListLimit     = 100
)

type TransferUsecase struct {
	repo     domain.TransferRepository
	storage  domain.StorageService
	stylizer domain.Stylizer
	queue    domain.QueueService
}

func NewTransferUsecase(
	repo domain.TransferRepository,
	storage domain.StorageService,
	stylizer domain.Stylizer,
	queue domain.QueueService,
) *TransferUsecase {
	return &TransferUsecase{
		repo:     repo,
		storage:  storage,
		stylizer: stylizer,
		queue:    queue,
	}
}

// StyleTransfer stylizes inside the request and returns a completed transfer.
// Failed attempts are still recorded so they show up in the history.
func (u *TransferUsecase) StyleTransfer(ctx context.Context, content, style domain.UploadedFile) (*domain.Transfer, error) {
	contentData, styleData, err := readBoth(content, style)
	if err != nil {
		return nil, err
	}

	t, err := u.storeUploads(ctx, domain.ModeSync, content, style, contentData, styleData)
	if err != nil {
		return nil, err
	}

	t.MarkAsProcessing()
	renderErr := render(ctx, u.stylizer, u.storage, t, bytes.NewReader(contentData), bytes.NewReader(styleData))
	if renderErr != nil {
		t.MarkAsFailed(renderErr.Error())
	}

	if err := u.repo.Create(ctx, t); err != nil {
		_ = u.storage.DeleteAll(ctx, t.ContentPath, t.StylePath, t.OutputPath)
		return nil, fmt.Errorf("create transfer: %w", err)
	}

	if renderErr != nil {
		return nil, renderErr
	}

	zlog.Logger.Info().
		Str("transfer_id", t.ID).
		Str("content", t.ContentFilename).
		Str("style", t.StyleFilename).
		Msg("style transfer completed")

	return t, nil
}

// EnqueueTransfer stores both uploads and hands the transfer to the worker.
func (u *TransferUsecase) EnqueueTransfer(ctx context.Context, content, style domain.UploadedFile) (*domain.Transfer, error) {
	contentData, styleData, err := readBoth(content, style)
	if err != nil {
		return nil, err
	}

	t, err := u.storeUploads(ctx, domain.ModeAsync, content, style, contentData, styleData)
	if err != nil {
		return nil, err
	}

	if err := u.repo.Create(ctx, t); err != nil {
		_ = u.storage.DeleteAll(ctx, t.ContentPath, t.StylePath)
		return nil, fmt.Errorf("create transfer: %w", err)
	}

	if err := u.queue.PublishTransferTask(ctx, t.ID); err != nil {
		t.MarkAsFailed(fmt.Sprintf("failed to enqueue: %v", err))
		if updErr := u.repo.Update(ctx, t); updErr != nil {
			zlog.Logger.Error().Err(updErr).Str("transfer_id", t.ID).Msg("failed to mark transfer failed")
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrQueueFailed, err)
	}

	zlog.Logger.Info().Str("transfer_id", t.ID).Msg("style transfer enqueued")
	return t, nil
}

func (u *TransferUsecase) storeUploads(
	ctx context.Context,
	mode domain.TransferMode,
	content, style domain.UploadedFile,
	contentData, styleData []byte,
) (*domain.Transfer, error) {
	id := uuid.New().String()

	contentPath, err := u.storage.SaveUpload(ctx, id+"_content"+strings.ToLower(filepath.Ext(content.Filename)), bytes.NewReader(contentData))
	if err != nil {
		return nil, fmt.Errorf("%w: save content image: %v", domain.ErrStorageFailed, err)
	}

	stylePath, err := u.storage.SaveUpload(ctx, id+"_style"+strings.ToLower(filepath.Ext(style.Filename)), bytes.NewReader(styleData))
	if err != nil {
		_ = u.storage.Delete(ctx, contentPath)
		return nil, fmt.Errorf("%w: save style image: %v", domain.ErrStorageFailed, err)
	}

	now := time.Now()
	return &domain.Transfer{
		ID:              id,
		ContentFilename: content.Filename,
		StyleFilename:   style.Filename,
		ContentPath:     contentPath,
		StylePath:       stylePath,
		Mode:            mode,
		Status:          domain.StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

func readBoth(content, style domain.UploadedFile) ([]byte, []byte, error) {
	if content.Reader == nil || style.Reader == nil {
		return nil, nil, domain.ErrMissingImages
	}
	contentData, err := io.ReadAll(content.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("read content image: %w", err)
	}
	styleData, err := io.ReadAll(style.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("read style image: %w", err)
	}
	if len(contentData) == 0 || len(styleData) == 0 {
		return nil, nil, domain.ErrInvalidImageData
	}
	return contentData, styleData, nil
}

func (u *TransferUsecase) GetTransfer(ctx context.Context, id string) (*domain.Transfer, error) {
	return u.repo.FindByID(ctx, id)
}

// GetOutputFile opens the stylized image published as /output/<filename>.
func (u *TransferUsecase) GetOutputFile(ctx context.Context, filename string) (io.ReadCloser, error) {
	id := strings.TrimSuffix(filename, path.Ext(filename))
	if id == "" || id == filename {
		return nil, domain.ErrTransferNotFound
	}

	t, err := u.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !t.IsCompleted() {
		return nil, domain.ErrTransferNotComplete
	}
	if t.OutputFilename() != filename {
		return nil, domain.ErrTransferNotFound
	}

	file, err := u.storage.GetOutput(ctx, t.OutputPath)
	if err != nil {
		zlog.Logger.Error().Err(err).Str("transfer_id", id).Str("path", t.OutputPath).Msg("failed to open output")
		return nil, errors.Join(domain.ErrTransferNotFound, err)
	}
	return file, nil
}

func (u *TransferUsecase) DeleteTransfer(ctx context.Context, id string) error {
	t, err := u.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := u.storage.DeleteAll(ctx, t.ContentPath, t.StylePath, t.OutputPath); err != nil {
		zlog.Logger.Error().Err(err).Str("transfer_id", id).Msg("failed to delete files")
	}

	if err := u.repo.Delete(ctx, id); err != nil {
		return err
	}

	zlog.Logger.Info().Str("transfer_id", id).Msg("transfer deleted")
	return nil
}

func (u *TransferUsecase) ListTransfers(ctx context.Context, limit, offset int) ([]*domain.Transfer, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return u.repo.List(ctx, limit, offset)
}
