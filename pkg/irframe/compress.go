package irframe

import(
	"fmt"
	"math"
)

// MinMax returns the smallest and largest samples in the frame.
func (f *Frame16)MinMax() (uint16, uint16) {
	minv, maxv := uint16(math.MaxUint16), uint16(0)
	for y:=0; y<f.Height; y++ {
		for _, v := range f.Row(y) {
			if v < minv { minv = v }
			if v > maxv { maxv = v }
		}
	}
	return minv, maxv
}

// Compress maps a Frame16 linearly onto [0,255], using the frame's own
// min & max (a per-frame auto exposure, not a calibration curve):
//
//   out = floor( (p - min) / (max - min) * 255 )
//
// A flat frame (max == min) has no range to stretch, and is reported
// as ErrDegenerateFrame rather than divided by zero.
func Compress(f *Frame16) (*Frame8, error) {
	minv, maxv := f.MinMax()
	if maxv == minv {
		return nil, fmt.Errorf("%w: every sample is %d", ErrDegenerateFrame, minv)
	}

	out, err := NewFrame8(f.Width, f.Height)
	if err != nil {
		return nil, err
	}

	lo    := float64(minv)
	span  := float64(maxv) - lo
	for y:=0; y<f.Height; y++ {
		src := f.Row(y)
		dst := out.Row(y)
		for x, v := range src {
			// Always in [0,255] when min/max come from the same data. The value
			// is never -ve, so truncation is floor.
			dst[x] = uint8((float64(v) - lo) / span * 255)
		}
	}

	return out, nil
}
