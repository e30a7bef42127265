package usecase

import (
	"context"
	"errors"
	"image/color"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yokitheyo/styletransfer/internal/config"
	"github.com/yokitheyo/styletransfer/internal/domain"
	"github.com/yokitheyo/styletransfer/internal/infrastructure/stylizer"
)

type fixture struct {
	repo    *memRepo
	storage *memStorage
	queue   *memQueue
	uc      *TransferUsecase
	proc    *ProcessorUsecase
}

func newFixture() *fixture {
	f := &fixture{
		repo:    newMemRepo(),
		storage: newMemStorage(),
		queue:   &memQueue{},
	}
	st := stylizer.New(&config.StylizationConfig{Size: 16, Strength: 0.8, TextureOpacity: 0.1})
	f.uc = NewTransferUsecase(f.repo, f.storage, st, f.queue)
	f.proc = NewProcessorUsecase(f.repo, f.storage, st)
	return f
}

func TestStyleTransferCompletesSynchronously(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	tr, err := f.uc.StyleTransfer(ctx,
		upload("cat.PNG", pngBytes(t, color.NRGBA{R: 200})),
		upload("wave.png", pngBytes(t, color.NRGBA{B: 200})),
	)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCompleted, tr.Status)
	assert.Equal(t, domain.ModeSync, tr.Mode)
	assert.Equal(t, "outputs/"+tr.ID+".jpg", tr.OutputPath)
	assert.Equal(t, "uploads/"+tr.ID+"_content.png", tr.ContentPath)
	assert.Equal(t, 16, tr.Width)
	assert.True(t, f.storage.has(tr.OutputPath))
	assert.Empty(t, f.queue.published)

	stored, err := f.uc.GetTransfer(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, stored.Status)

	rc, err := f.uc.GetOutputFile(ctx, tr.ID+".jpg")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF, 0xD8}, data[:2])
}

func TestStyleTransferRecordsFailure(t *testing.T) {
	f := newFixture()

	_, err := f.uc.StyleTransfer(context.Background(),
		upload("broken.png", []byte("not an image")),
		upload("wave.png", pngBytes(t, color.NRGBA{B: 200})),
	)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrStylizationFailed))
	assert.True(t, errors.Is(err, domain.ErrInvalidImageData))

	list, err := f.uc.ListTransfers(context.Background(), 0, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.StatusFailed, list[0].Status)
	assert.NotEmpty(t, list[0].ErrorMessage)
}

func TestStyleTransferMissingImage(t *testing.T) {
	f := newFixture()

	_, err := f.uc.StyleTransfer(context.Background(),
		upload("cat.png", pngBytes(t, color.NRGBA{R: 1})),
		domain.UploadedFile{},
	)
	assert.ErrorIs(t, err, domain.ErrMissingImages)
	assert.Empty(t, f.storage.objects)
}

func TestStyleTransferCleansUpWhenRepositoryFails(t *testing.T) {
	f := newFixture()
	f.repo.createErr = errors.New("db down")

	_, err := f.uc.StyleTransfer(context.Background(),
		upload("cat.png", pngBytes(t, color.NRGBA{R: 1})),
		upload("wave.png", pngBytes(t, color.NRGBA{B: 1})),
	)
	require.Error(t, err)
	assert.Empty(t, f.storage.objects)
}

func TestEnqueueThenProcess(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	tr, err := f.uc.EnqueueTransfer(ctx,
		upload("cat.png", pngBytes(t, color.NRGBA{R: 120})),
		upload("wave.jpg", pngBytes(t, color.NRGBA{B: 120})),
	)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, tr.Status)
	assert.Equal(t, []string{tr.ID}, f.queue.published)

	_, err = f.uc.GetOutputFile(ctx, tr.ID+".jpg")
	assert.ErrorIs(t, err, domain.ErrTransferNotComplete)

	require.NoError(t, f.proc.ProcessTransfer(ctx, tr.ID))

	done, err := f.uc.GetTransfer(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, done.Status)
	assert.NotNil(t, done.CompletedAt)

	// Completed transfers are not processed twice.
	require.NoError(t, f.proc.ProcessTransfer(ctx, tr.ID))
}

func TestEnqueueMarksFailedWhenQueueDown(t *testing.T) {
	f := newFixture()
	f.queue.err = errBroker

	_, err := f.uc.EnqueueTransfer(context.Background(),
		upload("cat.png", pngBytes(t, color.NRGBA{R: 1})),
		upload("wave.png", pngBytes(t, color.NRGBA{B: 1})),
	)
	require.ErrorIs(t, err, domain.ErrQueueFailed)

	list, err := f.uc.ListTransfers(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.StatusFailed, list[0].Status)
}

func TestProcessTransferMissingUpload(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	tr, err := f.uc.EnqueueTransfer(ctx,
		upload("cat.png", pngBytes(t, color.NRGBA{R: 1})),
		upload("wave.png", pngBytes(t, color.NRGBA{B: 1})),
	)
	require.NoError(t, err)
	require.NoError(t, f.storage.Delete(ctx, tr.StylePath))

	require.Error(t, f.proc.ProcessTransfer(ctx, tr.ID))

	failed, err := f.uc.GetTransfer(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, failed.Status)
}

func TestGetOutputFileRejectsUnknownNames(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.uc.GetOutputFile(ctx, "noext")
	assert.ErrorIs(t, err, domain.ErrTransferNotFound)

	_, err = f.uc.GetOutputFile(ctx, "missing.jpg")
	assert.ErrorIs(t, err, domain.ErrTransferNotFound)
}

func TestDeleteTransferRemovesFiles(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	tr, err := f.uc.StyleTransfer(ctx,
		upload("cat.png", pngBytes(t, color.NRGBA{R: 1})),
		upload("wave.png", pngBytes(t, color.NRGBA{B: 1})),
	)
	require.NoError(t, err)

	require.NoError(t, f.uc.DeleteTransfer(ctx, tr.ID))
	assert.Empty(t, f.storage.objects)
	assert.ErrorIs(t, f.uc.DeleteTransfer(ctx, tr.ID), domain.ErrTransferNotFound)
}

func TestListTransfersClampsLimit(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := f.uc.EnqueueTransfer(ctx,
			upload("cat.png", pngBytes(t, color.NRGBA{R: 1})),
			upload("wave.png", pngBytes(t, color.NRGBA{B: 1})),
		)
		require.NoError(t, err)
	}

	list, err := f.uc.ListTransfers(ctx, 1000, -5)
	require.NoError(t, err)
	assert.Len(t, list, 3)

	list, err = f.uc.ListTransfers(ctx, 2, 0)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
