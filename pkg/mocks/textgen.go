package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/user/carousel/pkg/ports"
)

// TextGenerator is a mock implementation of ports.TextGenerator.
// Without GenerateFunc it returns "<role> <position>" as the headline.
type TextGenerator struct {
	GenerateFunc func(ctx context.Context, slide ports.SlideContext) (ports.GeneratedText, error)

	mu    sync.Mutex
	Calls []ports.SlideContext
}

func (m *TextGenerator) Generate(ctx context.Context, slide ports.SlideContext) (ports.GeneratedText, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, slide)
	m.mu.Unlock()
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, slide)
	}
	return ports.GeneratedText{Primary: fmt.Sprintf("%s %d", slide.Role, slide.Position)}, nil
}

// CallCount returns the number of Generate calls.
func (m *TextGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

var _ ports.TextGenerator = (*TextGenerator)(nil)
