package mocks

import (
	"image"
	"sync"

	"github.com/user/carousel/pkg/ports"
)

// DebugSink is a mock implementation of ports.DebugSink.
type DebugSink struct {
	mu sync.RWMutex

	enabled bool

	AllocationJSON []byte
	SlidesJSON     []byte
	TimingJSON     []byte
	Overlays       map[int]image.Image
	Frames         map[int]image.Image
}

// NewDebugSink creates a new mock DebugSink.
func NewDebugSink(enabled bool) *DebugSink {
	return &DebugSink{
		enabled:  enabled,
		Overlays: make(map[int]image.Image),
		Frames:   make(map[int]image.Image),
	}
}

func (m *DebugSink) Enabled() bool {
	return m.enabled
}

func (m *DebugSink) SaveAllocationJSON(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AllocationJSON = data
	return nil
}

func (m *DebugSink) SaveSlidesJSON(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SlidesJSON = data
	return nil
}

func (m *DebugSink) SaveTimingJSON(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TimingJSON = data
	return nil
}

func (m *DebugSink) SaveOverlay(position int, img image.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Overlays[position] = img
	return nil
}

func (m *DebugSink) SaveFrame(index int, img image.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Frames[index] = img
	return nil
}

var _ ports.DebugSink = (*DebugSink)(nil)
