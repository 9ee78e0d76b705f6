// Package imagestore loads uploaded images from local paths or HTTP(S) URLs.
package imagestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/user/carousel/pkg/ports"
)

// DefaultMaxBytes caps a single image download.
const DefaultMaxBytes = 50 << 20

var (
	// ErrTooLarge is returned when an image exceeds the size limit.
	ErrTooLarge = errors.New("imagestore: image exceeds size limit")

	// ErrEmptySource is returned for a blank source reference.
	ErrEmptySource = errors.New("imagestore: empty source")
)

// Store implements ports.ImageStore.
type Store struct {
	baseDir    string
	httpClient *http.Client
	maxBytes   int64
}

// Option customizes the store.
type Option func(*Store)

// WithBaseDir resolves relative paths against dir.
func WithBaseDir(dir string) Option {
	return func(s *Store) {
		s.baseDir = dir
	}
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Store) {
		if client != nil {
			s.httpClient = client
		}
	}
}

// WithMaxBytes overrides the download size limit.
func WithMaxBytes(n int64) Option {
	return func(s *Store) {
		s.maxBytes = n
	}
}

// New creates a store.
func New(opts ...Option) *Store {
	s := &Store{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		maxBytes:   DefaultMaxBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open returns the bytes behind source.
func (s *Store) Open(ctx context.Context, source string) ([]byte, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, ErrEmptySource
	}
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return s.fetch(ctx, source)
	}
	return s.readFile(ctx, strings.TrimPrefix(source, "file://"))
}

func (s *Store) readFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !filepath.IsAbs(path) && s.baseDir != "" {
		path = filepath.Join(s.baseDir, path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if s.maxBytes > 0 && info.Size() > s.maxBytes {
		return nil, fmt.Errorf("%w: %s is %d bytes", ErrTooLarge, path, info.Size())
	}
	return os.ReadFile(path)
}

func (s *Store) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: http %d", rawURL, resp.StatusCode)
	}

	reader := io.Reader(resp.Body)
	if s.maxBytes > 0 {
		reader = io.LimitReader(resp.Body, s.maxBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rawURL, err)
	}
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return nil, fmt.Errorf("%w: %s", ErrTooLarge, rawURL)
	}
	return data, nil
}

var _ ports.ImageStore = (*Store)(nil)
