package client

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultsEndpoint(t *testing.T) {
	c := New("")
	assert.Equal(t, DefaultEndpoint, c.Endpoint())
}

func TestStyleTransferSendsBothParts(t *testing.T) {
	var hits atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)

		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/style-transfer", r.URL.Path)

		content, header, err := r.FormFile(ContentImageField)
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		data, _ := io.ReadAll(content)
		assert.Equal(t, "content-bytes", string(data))
		assert.Equal(t, "cat.jpg", header.Filename)

		style, header, err := r.FormFile(StyleImageField)
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		data, _ = io.ReadAll(style)
		assert.Equal(t, "style-bytes", string(data))
		assert.Equal(t, "wave.png", header.Filename)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"image_url":"a.png","message":"done"}`))
	}))
	defer srv.Close()

	c := New(srv.URL+"/style-transfer", WithClient(srv.Client()))

	result, err := c.StyleTransfer(context.Background(),
		File{Name: "cat.jpg", Body: strings.NewReader("content-bytes")},
		File{Name: "wave.png", Body: strings.NewReader("style-bytes")},
	)
	require.NoError(t, err)

	assert.Equal(t, "a.png", result.ImageURL)
	assert.Equal(t, "done", result.Message)
	assert.EqualValues(t, 1, hits.Load())
}

func TestStyleTransferNonSuccessStatus(t *testing.T) {
	var hits atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"image_url":"ignored.png","message":"ignored"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, WithClient(srv.Client()))

	result, err := c.StyleTransfer(context.Background(),
		File{Name: "c.jpg", Body: strings.NewReader("c")},
		File{Name: "s.jpg", Body: strings.NewReader("s")},
	)

	require.ErrorIs(t, err, ErrUnexpectedStatus)
	assert.Nil(t, result)
	assert.EqualValues(t, 1, hits.Load(), "no retry on failure")
}

func TestStyleTransferMalformedBody(t *testing.T) {
	bodies := map[string]string{
		"html":          "<html>not json</html>",
		"trailing data": `{"image_url":"a.png","message":"done"}<html>oops`,
		"two objects":   `{"image_url":"a.png"}{"message":"done"}`,
		"null":          "null",
		"array":         "[]",
		"empty":         "",
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, body)
			}))
			defer srv.Close()

			c := New(srv.URL, WithClient(srv.Client()))

			result, err := c.StyleTransfer(context.Background(),
				File{Name: "c.jpg", Body: strings.NewReader("c")},
				File{Name: "s.jpg", Body: strings.NewReader("s")},
			)

			require.ErrorIs(t, err, ErrMalformedResponse)
			assert.NotErrorIs(t, err, ErrUnexpectedStatus)
			assert.Nil(t, result)
		})
	}
}

func TestDecodeResultAllowsTrailingWhitespace(t *testing.T) {
	result, err := decodeResult(strings.NewReader("{\"image_url\":\"a.png\",\"message\":\"done\"}\n"))
	require.NoError(t, err)
	assert.Equal(t, "a.png", result.ImageURL)
	assert.Equal(t, "done", result.Message)
}

func TestStyleTransferMissingBody(t *testing.T) {
	c := New("http://127.0.0.1:0/style-transfer")

	_, err := c.StyleTransfer(context.Background(),
		File{Name: "c.jpg", Body: strings.NewReader("c")},
		File{Name: "s.jpg"},
	)

	require.Error(t, err)
	assert.Contains(t, err.Error(), StyleImageField)
}

func TestResolveImageURL(t *testing.T) {
	c := New("http://localhost:5000/style-transfer")

	tests := map[string]string{
		"/output/abc.jpg":               "http://localhost:5000/output/abc.jpg",
		"output/abc.jpg":                "http://localhost:5000/output/abc.jpg",
		"https://cdn.example.com/x.jpg": "https://cdn.example.com/x.jpg",
	}

	for input, want := range tests {
		got, err := c.ResolveImageURL(input)
		require.NoError(t, err)
		assert.Equal(t, want, got, input)
	}
}

func TestDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/output/abc.jpg" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte("jpeg"))
	}))
	defer srv.Close()

	c := New(srv.URL+"/style-transfer", WithClient(srv.Client()))

	var buf bytes.Buffer
	n, err := c.Download(context.Background(), "/output/abc.jpg", &buf)
	require.NoError(t, err)
	assert.EqualValues(t, 4, n)
	assert.Equal(t, "jpeg", buf.String())

	_, err = c.Download(context.Background(), "/output/missing.jpg", &buf)
	require.ErrorIs(t, err, ErrUnexpectedStatus)
}
