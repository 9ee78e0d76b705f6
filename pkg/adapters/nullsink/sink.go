// Package nullsink provides a no-op debug sink implementation.
package nullsink

import (
	"image"

	"github.com/user/carousel/pkg/ports"
)

// Sink discards all debug output.
type Sink struct{}

// New creates a new null sink.
func New() *Sink {
	return &Sink{}
}

// Enabled returns false so stages skip building debug payloads.
func (s *Sink) Enabled() bool { return false }

func (s *Sink) SaveAllocationJSON(data []byte) error { return nil }
func (s *Sink) SaveSlidesJSON(data []byte) error { return nil }
func (s *Sink) SaveTimingJSON(data []byte) error { return nil }
func (s *Sink) SaveOverlay(position int, img image.Image) error { return nil }
func (s *Sink) SaveFrame(index int, img image.Image) error { return nil }

var _ ports.DebugSink = (*Sink)(nil)
