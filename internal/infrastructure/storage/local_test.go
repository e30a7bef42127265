package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yokitheyo/styletransfer/internal/config"
)

func newTestLocal(t *testing.T) (Storage, string) {
	t.Helper()
	base := t.TempDir()
	s, err := New(&config.StorageConfig{Type: "local", LocalPath: base})
	require.NoError(t, err)
	return s, base
}

func TestLocalStorageCreatesDirectories(t *testing.T) {
	_, base := newTestLocal(t)

	for _, dir := range []string{"uploads", "outputs"} {
		info, err := os.Stat(filepath.Join(base, dir))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestLocalStorageRoundTrip(t *testing.T) {
	s, _ := newTestLocal(t)
	ctx := context.Background()

	p, err := s.SaveOutput(ctx, "abc.jpg", strings.NewReader("stylized"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("outputs", "abc.jpg"), p)

	rc, err := s.GetOutput(ctx, p)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "stylized", string(data))

	require.NoError(t, s.DeleteAll(ctx, p, ""))
	_, err = s.GetOutput(ctx, p)
	assert.True(t, errors.Is(err, ErrObjectNotFound))
}

func TestLocalStorageRejectsEmptyAndNestedNames(t *testing.T) {
	s, _ := newTestLocal(t)
	ctx := context.Background()

	_, err := s.SaveUpload(ctx, "empty.png", strings.NewReader(""))
	assert.Error(t, err)

	_, err = s.SaveUpload(ctx, "../escape.png", strings.NewReader("x"))
	assert.Error(t, err)

	_, err = s.GetUpload(ctx, "../../etc/passwd")
	assert.True(t, errors.Is(err, ErrObjectNotFound))
}

func TestNewRejectsUnknownType(t *testing.T) {
	_, err := New(&config.StorageConfig{Type: "ftp"})
	assert.Error(t, err)
}
