package generate

import "errors"

var (
	// ErrAllSlidesFailed is returned when text generation failed for every slide.
	ErrAllSlidesFailed = errors.New("all slides failed to generate")

	// ErrSlideIndexOutOfRange is returned by Regenerate for an unknown slide.
	ErrSlideIndexOutOfRange = errors.New("slide index out of range")

	// ErrSlideFailed is returned by Regenerate when the slide ends in error.
	ErrSlideFailed = errors.New("slide generation failed")
)
