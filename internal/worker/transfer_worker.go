package worker

import (
	"context"
	"fmt"

	"github.com/wb-go/wbf/zlog"

	"github.com/yokitheyo/styletransfer/internal/domain"
	"github.com/yokitheyo/styletransfer/internal/dto"
)

// TransferWorker runs async style transfers delivered by the queue.
type TransferWorker struct {
	processorService domain.ProcessorService
}

func NewTransferWorker(processorService domain.ProcessorService) *TransferWorker {
	return &TransferWorker{
		processorService: processorService,
	}
}

func (w *TransferWorker) HandleTransferTask(ctx context.Context, task *dto.TransferTask) error {
	if task == nil || task.TransferID == "" {
		return fmt.Errorf("invalid task: empty transfer id")
	}

	zlog.Logger.Info().Str("transfer_id", task.TransferID).Msg("starting style transfer task")

	if err := w.processorService.ProcessTransfer(ctx, task.TransferID); err != nil {
		zlog.Logger.Error().Err(err).Str("transfer_id", task.TransferID).Msg("failed to process transfer")
		return fmt.Errorf("process transfer %s: %w", task.TransferID, err)
	}

	zlog.Logger.Info().Str("transfer_id", task.TransferID).Msg("style transfer task finished")
	return nil
}
