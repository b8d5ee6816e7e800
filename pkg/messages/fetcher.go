package messages

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// maxBundleSize bounds the translation payload we read.
const maxBundleSize = 4 << 20

// Fetcher retrieves the bundle for one locale.
type Fetcher interface {
	Fetch(ctx context.Context, locale string) (Bundle, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, locale string) (Bundle, error)

func (f FetcherFunc) Fetch(ctx context.Context, locale string) (Bundle, error) {
	return f(ctx, locale)
}

// HTTPFetcher reads bundles from GET {base}/translations/{locale}.
type HTTPFetcher struct {
	client *http.Client
	base   string
}

// HTTPOption configures an HTTPFetcher.
type HTTPOption func(*HTTPFetcher)

// WithHTTPClient replaces the default client (10s timeout).
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(f *HTTPFetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// NewHTTPFetcher creates a fetcher for the translation endpoint at base.
func NewHTTPFetcher(base string, opts ...HTTPOption) *HTTPFetcher {
	f := &HTTPFetcher{
		base:   strings.TrimRight(base, "/"),
		client: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// URL returns the endpoint for locale.
func (f *HTTPFetcher) URL(locale string) string {
	return f.base + "/translations/" + url.PathEscape(locale)
}

func (f *HTTPFetcher) Fetch(ctx context.Context, locale string) (Bundle, error) {
	if locale == "" {
		return nil, ErrInvalidLocale
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL(locale), nil)
	if err != nil {
		return nil, fmt.Errorf("messages: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("messages: fetch %s: %w", locale, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s returned %d", ErrUnexpectedStatus, locale, resp.StatusCode)
	}

	return decodeJSON(io.LimitReader(resp.Body, maxBundleSize))
}

// Ping checks that the translation endpoint answers for locale.
func (f *HTTPFetcher) Ping(locale string) func(context.Context) error {
	return func(ctx context.Context) error {
		_, err := f.Fetch(ctx, locale)
		return err
	}
}

// FSFetcher reads bundles from {locale}.json, {locale}.yaml or {locale}.yml
// at the root of fsys.
type FSFetcher struct {
	fsys fs.FS
}

// NewFSFetcher creates a fetcher over a local directory or embedded files.
func NewFSFetcher(fsys fs.FS) *FSFetcher {
	return &FSFetcher{fsys: fsys}
}

func (f *FSFetcher) Fetch(_ context.Context, locale string) (Bundle, error) {
	if locale == "" || strings.ContainsAny(locale, `/\`) {
		return nil, ErrInvalidLocale
	}

	for _, ext := range []string{".json", ".yaml", ".yml"} {
		data, err := fs.ReadFile(f.fsys, locale+ext)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("messages: read %s%s: %w", locale, ext, err)
		}

		if ext == ".json" {
			return decodeJSON(bytes.NewReader(data))
		}
		return decodeYAML(data)
	}

	return nil, fmt.Errorf("%w: %s", ErrNotFound, locale)
}

func decodeJSON(r io.Reader) (Bundle, error) {
	var b Bundle
	if err := json.NewDecoder(r).Decode(&b); err != nil {
		return nil, errors.Join(ErrDecode, err)
	}
	if b == nil {
		return nil, ErrDecode
	}
	return b, nil
}

func decodeYAML(data []byte) (Bundle, error) {
	var b Bundle
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, errors.Join(ErrDecode, err)
	}
	if b == nil {
		return nil, ErrDecode
	}
	return b, nil
}
