package export

import "errors"

var (
	// ErrNothingExported is returned when no (platform, slide) pair succeeded.
	ErrNothingExported = errors.New("nothing exported")

	// ErrImageNotFound is returned when a slide references an unknown upload.
	ErrImageNotFound = errors.New("uploaded image not found")

	// ErrEmptyCrop is returned when a crop area covers no pixels.
	ErrEmptyCrop = errors.New("crop area is empty")
)
