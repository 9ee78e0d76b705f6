package trim

import "errors"

// ErrInvalidTrimRange is returned when the trim window holds no samples.
var ErrInvalidTrimRange = errors.New("invalid trim range")
