// Package fetch retrieves remote images so they can be inlined as data URIs.
package fetch

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

//go:generate mockgen -source=./fetcher.go -destination=./mocks/fetcher.mock.go -package=fetchmocks ImageFetcher

const (
	// DefaultTimeout bounds a single image fetch.
	DefaultTimeout = 10 * time.Second
	// DefaultMaxBytes caps the size of a fetched image.
	DefaultMaxBytes = 5 << 20
)

// ImageFetcher downloads an image. Implementations make a single attempt and
// never retry.
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) (Image, error)
}

// StatusError reports a non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
}

// HTTPFetcher fetches images over HTTP with a per-request timeout.
type HTTPFetcher struct {
	client   *http.Client
	timeout  time.Duration
	maxBytes int64
}

// Option configures an HTTPFetcher.
type Option func(*HTTPFetcher)

// WithClient sets the HTTP client used for requests.
func WithClient(client *http.Client) Option {
	return func(f *HTTPFetcher) {
		f.client = client
	}
}

// WithMaxBytes caps the accepted response size.
func WithMaxBytes(n int64) Option {
	return func(f *HTTPFetcher) {
		f.maxBytes = n
	}
}

// NewHTTPFetcher creates a fetcher. A non-positive timeout uses DefaultTimeout.
func NewHTTPFetcher(timeout time.Duration, opts ...Option) *HTTPFetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	f := &HTTPFetcher{
		client:   http.DefaultClient,
		timeout:  timeout,
		maxBytes: DefaultMaxBytes,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch issues GET url with Accept: image/*. The request is cancelled when the
// timeout elapses or ctx is done.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (Image, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Image{}, fmt.Errorf("fetch %s: %w", url, err)
	}
	req.Header.Set("Accept", "image/*")

	resp, err := f.client.Do(req)
	if err != nil {
		return Image{}, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Image{}, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return Image{}, fmt.Errorf("fetch %s: reading body: %w", url, err)
	}
	if int64(len(data)) > f.maxBytes {
		return Image{}, fmt.Errorf("fetch %s: image larger than %d bytes", url, f.maxBytes)
	}

	return Image{
		MIMEType: detectMIMEType(resp.Header.Get("Content-Type"), data),
		Data:     data,
	}, nil
}

// detectMIMEType prefers the response Content-Type and sniffs the bytes when
// the header is missing or not an image type (object stores often answer
// application/octet-stream).
func detectMIMEType(contentType string, data []byte) string {
	if contentType != "" {
		if mediaType, _, err := mime.ParseMediaType(contentType); err == nil && strings.HasPrefix(mediaType, "image/") {
			return mediaType
		}
	}
	detected := mimetype.Detect(data).String()
	if mediaType, _, err := mime.ParseMediaType(detected); err == nil {
		return mediaType
	}
	return detected
}
