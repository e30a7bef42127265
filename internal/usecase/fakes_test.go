package usecase

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/zlog"

	"github.com/yokitheyo/styletransfer/internal/domain"
	"github.com/yokitheyo/styletransfer/internal/infrastructure/storage"
)

func TestMain(m *testing.M) {
	zlog.Init()
	os.Exit(m.Run())
}

type memRepo struct {
	mu        sync.Mutex
	transfers map[string]domain.Transfer
	createErr error
}

func newMemRepo() *memRepo {
	return &memRepo{transfers: map[string]domain.Transfer{}}
}

func (r *memRepo) Create(_ context.Context, t *domain.Transfer) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transfers[t.ID] = *t
	return nil
}

func (r *memRepo) FindByID(_ context.Context, id string) (*domain.Transfer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.transfers[id]
	if !ok {
		return nil, domain.ErrTransferNotFound
	}
	return &t, nil
}

func (r *memRepo) Update(_ context.Context, t *domain.Transfer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.transfers[t.ID]; !ok {
		return domain.ErrTransferNotFound
	}
	r.transfers[t.ID] = *t
	return nil
}

func (r *memRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.transfers[id]; !ok {
		return domain.ErrTransferNotFound
	}
	delete(r.transfers, id)
	return nil
}

func (r *memRepo) FindByStatus(ctx context.Context, status domain.TransferStatus, limit, offset int) ([]*domain.Transfer, error) {
	all, _ := r.List(ctx, len(r.transfers), 0)
	var out []*domain.Transfer
	for _, t := range all {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return page(out, limit, offset), nil
}

func (r *memRepo) List(_ context.Context, limit, offset int) ([]*domain.Transfer, error) {
	r.mu.Lock()
	out := make([]*domain.Transfer, 0, len(r.transfers))
	for _, t := range r.transfers {
		t := t
		out = append(out, &t)
	}
	r.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, limit, offset), nil
}

func (r *memRepo) UpdateStatus(_ context.Context, id string, status domain.TransferStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.transfers[id]
	if !ok {
		return domain.ErrTransferNotFound
	}
	t.Status = status
	r.transfers[id] = t
	return nil
}

func page(in []*domain.Transfer, limit, offset int) []*domain.Transfer {
	if offset >= len(in) {
		return nil
	}
	in = in[offset:]
	if limit < len(in) {
		in = in[:limit]
	}
	return in
}

type memStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemStorage() *memStorage {
	return &memStorage{objects: map[string][]byte{}}
}

func (s *memStorage) save(dir, filename string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	p := dir + "/" + filename
	s.mu.Lock()
	s.objects[p] = data
	s.mu.Unlock()
	return p, nil
}

func (s *memStorage) SaveUpload(_ context.Context, filename string, r io.Reader) (string, error) {
	return s.save("uploads", filename, r)
}

func (s *memStorage) SaveOutput(_ context.Context, filename string, r io.Reader) (string, error) {
	return s.save("outputs", filename, r)
}

func (s *memStorage) get(p string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[p]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *memStorage) GetUpload(_ context.Context, p string) (io.ReadCloser, error) {
	return s.get(p)
}

func (s *memStorage) GetOutput(_ context.Context, p string) (io.ReadCloser, error) {
	return s.get(p)
}

func (s *memStorage) Delete(_ context.Context, p string) error {
	s.mu.Lock()
	delete(s.objects, p)
	s.mu.Unlock()
	return nil
}

func (s *memStorage) DeleteAll(ctx context.Context, paths ...string) error {
	for _, p := range paths {
		_ = s.Delete(ctx, p)
	}
	return nil
}

func (s *memStorage) has(p string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[p]
	return ok
}

type memQueue struct {
	published []string
	err       error
}

func (q *memQueue) PublishTransferTask(_ context.Context, id string) error {
	if q.err != nil {
		return q.err
	}
	q.published = append(q.published, id)
	return nil
}

func (q *memQueue) Close() error { return nil }

var errBroker = errors.New("broker unavailable")

func pngBytes(t *testing.T, c color.NRGBA) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: c.R, G: uint8(x * 30), B: c.B, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func upload(name string, data []byte) domain.UploadedFile {
	return domain.UploadedFile{
		Filename: name,
		MimeType: "image/png",
		Size:     int64(len(data)),
		Reader:   bytes.NewReader(data),
	}
}
