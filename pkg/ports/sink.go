package ports

import (
	"image"
)

// DebugSink abstracts debug output for intermediate results.
type DebugSink interface {
	// Enabled returns true if debug output is enabled.
	Enabled() bool

	// SaveAllocationJSON saves the image source allocation plan.
	SaveAllocationJSON(data []byte) error

	// SaveSlidesJSON saves the slide list after generation.
	SaveSlidesJSON(data []byte) error

	// SaveTimingJSON saves the computed video timing.
	SaveTimingJSON(data []byte) error

	// SaveOverlay saves a rendered overlay layer for a slide position.
	SaveOverlay(position int, img image.Image) error

	// SaveFrame saves a rendered video frame.
	SaveFrame(index int, img image.Image) error
}
