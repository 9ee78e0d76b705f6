package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/user/carousel/pkg/ports"
)

// ImageStore is a mock implementation of ports.ImageStore backed by a map.
type ImageStore struct {
	OpenFunc func(ctx context.Context, source string) ([]byte, error)
	Files    map[string][]byte

	mu    sync.Mutex
	Opens []string
}

func (m *ImageStore) Open(ctx context.Context, source string) ([]byte, error) {
	m.mu.Lock()
	m.Opens = append(m.Opens, source)
	m.mu.Unlock()
	if m.OpenFunc != nil {
		return m.OpenFunc(ctx, source)
	}
	if data, ok := m.Files[source]; ok {
		return data, nil
	}
	return nil, fmt.Errorf("image not found: %s", source)
}

var _ ports.ImageStore = (*ImageStore)(nil)
