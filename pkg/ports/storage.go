package ports

import "context"

// ImageStore loads the raw bytes behind an uploaded image reference.
type ImageStore interface {
	// Open returns the encoded bytes for source, a local path or an
	// http(s) URL.
	Open(ctx context.Context, source string) ([]byte, error)
}
