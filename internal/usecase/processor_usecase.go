package usecase

import (
	"context"
	"fmt"

	"github.com/wb-go/wbf/zlog"

	"github.com/yokitheyo/styletransfer/internal/domain"
)

type ProcessorUsecase struct {
	repo     domain.TransferRepository
	storage  domain.StorageService
	stylizer domain.Stylizer
}

func NewProcessorUsecase(
	repo domain.TransferRepository,
	storage domain.StorageService,
	stylizer domain.Stylizer,
) *ProcessorUsecase {
	return &ProcessorUsecase{
		repo:     repo,
		storage:  storage,
		stylizer: stylizer,
	}
}

func (u *ProcessorUsecase) ProcessTransfer(ctx context.Context, transferID string) error {
	t, err := u.repo.FindByID(ctx, transferID)
	if err != nil {
		return fmt.Errorf("find transfer: %w", err)
	}

	if !t.CanBeProcessed() {
		zlog.Logger.Warn().
			Str("transfer_id", transferID).
			Str("status", string(t.Status)).
			Msg("transfer cannot be processed in current status")
		return nil
	}

	t.MarkAsProcessing()
	if err := u.repo.Update(ctx, t); err != nil {
		return fmt.Errorf("update status to processing: %w", err)
	}

	fail := func(err error) error {
		t.MarkAsFailed(err.Error())
		if updErr := u.repo.Update(ctx, t); updErr != nil {
			zlog.Logger.Error().Err(updErr).Str("transfer_id", transferID).Msg("failed to mark transfer failed")
		}
		return err
	}

	content, err := u.storage.GetUpload(ctx, t.ContentPath)
	if err != nil {
		return fail(fmt.Errorf("get content image: %w", err))
	}
	defer content.Close()

	style, err := u.storage.GetUpload(ctx, t.StylePath)
	if err != nil {
		return fail(fmt.Errorf("get style image: %w", err))
	}
	defer style.Close()

	if err := render(ctx, u.stylizer, u.storage, t, content, style); err != nil {
		return fail(err)
	}

	if err := u.repo.Update(ctx, t); err != nil {
		return fmt.Errorf("update status to completed: %w", err)
	}

	zlog.Logger.Info().Str("transfer_id", transferID).Msg("async transfer processed")
	return nil
}
