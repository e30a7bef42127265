package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/wb-go/wbf/zlog"

	"github.com/yokitheyo/styletransfer/internal/domain"
	"github.com/yokitheyo/styletransfer/internal/infrastructure/stylizer"
)

// render stylizes content with style, stores the JPEG under the transfer's
// output name and marks t completed. t is not persisted here.
func render(
	ctx context.Context,
	st domain.Stylizer,
	storage domain.StorageService,
	t *domain.Transfer,
	content, style io.Reader,
) error {
	img, err := st.Stylize(content, style)
	if err != nil {
		zlog.Logger.Error().Err(err).Str("transfer_id", t.ID).Msg("failed to stylize image")
		return fmt.Errorf("%w: %w", domain.ErrStylizationFailed, err)
	}

	width, height := stylizer.Dimensions(img)
	if width == 0 || height == 0 {
		return fmt.Errorf("%w: stylized image is empty", domain.ErrStylizationFailed)
	}

	var buf bytes.Buffer
	if err := st.Encode(&buf, img); err != nil {
		zlog.Logger.Error().Err(err).Str("transfer_id", t.ID).Msg("failed to encode image")
		return fmt.Errorf("%w: %v", domain.ErrStylizationFailed, err)
	}
	encoded := buf.Len()

	outputPath, err := storage.SaveOutput(ctx, t.OutputFilename(), &buf)
	if err != nil {
		zlog.Logger.Error().Err(err).Str("transfer_id", t.ID).Msg("failed to save stylized image")
		return fmt.Errorf("%w: %v", domain.ErrStorageFailed, err)
	}

	t.MarkAsCompleted(outputPath, width, height)

	zlog.Logger.Info().
		Str("transfer_id", t.ID).
		Str("output_path", outputPath).
		Int("width", width).
		Int("height", height).
		Int("bytes", encoded).
		Msg("stylized image stored")

	return nil
}
