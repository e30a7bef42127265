package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
)

const DefaultEndpoint = "http://localhost:5000/style-transfer"

const (
	ContentImageField = "content_image"
	StyleImageField   = "style_image"
)

var (
	ErrUnexpectedStatus  = errors.New("unexpected status")
	ErrMalformedResponse = errors.New("malformed response")
)

// File is one image part of a submission.
type File struct {
	Name string
	Body io.Reader
}

type Result struct {
	ImageURL string `json:"image_url"`
	Message  string `json:"message"`
}

type Client struct {
	client *http.Client

	url string
}

func New(url string, options ...Option) *Client {
	if url == "" {
		url = DefaultEndpoint
	}

	c := &Client{
		client: http.DefaultClient,

		url: url,
	}

	for _, option := range options {
		option(c)
	}

	return c
}

func (c *Client) Endpoint() string {
	return c.url
}

// StyleTransfer posts both images in one multipart request. It never
// retries; cancellation and deadlines come from ctx.
func (c *Client) StyleTransfer(ctx context.Context, content, style File) (*Result, error) {
	var b bytes.Buffer
	w := multipart.NewWriter(&b)

	if err := writeFile(w, ContentImageField, content); err != nil {
		return nil, err
	}

	if err := writeFile(w, StyleImageField, style); err != nil {
		return nil, err
	}

	if err := w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, &b)

	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.client.Do(req)

	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return nil, fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
	}

	return decodeResult(resp.Body)
}

// decodeResult accepts exactly one JSON object. Trailing data and a bare
// null are rejected.
func decodeResult(r io.Reader) (*Result, error) {
	data, err := io.ReadAll(r)

	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var result *Result

	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	if result == nil {
		return nil, fmt.Errorf("%w: empty result", ErrMalformedResponse)
	}

	return result, nil
}

// ResolveImageURL turns the image_url of a result, which the server sends
// as a path, into an absolute URL on the endpoint's host.
func (c *Client) ResolveImageURL(imageURL string) (string, error) {
	base, err := url.Parse(c.url)

	if err != nil {
		return "", err
	}

	ref, err := url.Parse(imageURL)

	if err != nil {
		return "", err
	}

	return base.ResolveReference(ref).String(), nil
}

// Download writes the stylized image behind imageURL to w.
func (c *Client) Download(ctx context.Context, imageURL string, w io.Writer) (int64, error) {
	u, err := c.ResolveImageURL(imageURL)

	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)

	if err != nil {
		return 0, err
	}

	resp, err := c.client.Do(req)

	if err != nil {
		return 0, err
	}

	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return 0, fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
	}

	return io.Copy(w, resp.Body)
}

func writeFile(w *multipart.Writer, field string, file File) error {
	if file.Body == nil {
		return fmt.Errorf("%s: no content", field)
	}

	name := file.Name

	if name == "" {
		name = field
	}

	f, err := w.CreateFormFile(field, name)

	if err != nil {
		return err
	}

	_, err = io.Copy(f, file.Body)
	return err
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}
