package allocate

import "errors"

// ErrInvalidSlideCount is returned when the requested slide count is outside 1..MaxSlides.
var ErrInvalidSlideCount = errors.New("slide count out of range")
