package irframe

import "errors"

var(
	ErrIO                = errors.New("irframe: insufficient or malformed input data")
	ErrInvalidDimensions = errors.New("irframe: buffer size does not match frame dimensions")
	ErrDegenerateFrame   = errors.New("irframe: frame has zero dynamic range")
	ErrUnsupportedFormat = errors.New("irframe: unsupported image format")
)
