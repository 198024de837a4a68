package irframe

import(
	"fmt"
	"image"
	"image/color"

	"github.com/mdouchement/hdr/hdrcolor"
)

const(
	SensorOffset  = 8192   // Added to each signed sample, moves a mid-zero sensor range into [0, 2*8192)
	MaxSample     = 16383  // 14 bits of dynamic range, carried in a 16 bit container

	DefaultWidth  = 640
	DefaultHeight = 512
)

// A Frame16 is a single channel infrared frame, as loaded from the
// sensor. Samples are row-major, and after loading every sample lies
// in [0, MaxSample].
//
// Frame16 implements image.Image and mdouchement/hdr's hdr.Image, so it
// can be handed straight to the HDR tonemapping operators and codecs.
type Frame16 struct {
	Width   int
	Height  int
	Stride  int       // Number of samples between vertically adjacent pixels
	Pix   []uint16
}

// A Frame8 is a single channel 8-bit frame, ready for display.
type Frame8 struct {
	Width   int
	Height  int
	Stride  int
	Pix   []uint8
}

func checkDims(w, h int) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, w, h)
	}
	return nil
}

func NewFrame16(w, h int) (*Frame16, error) {
	if err := checkDims(w, h); err != nil {
		return nil, err
	}
	return &Frame16{Width:w, Height:h, Stride:w, Pix:make([]uint16, w*h)}, nil
}

func NewFrame8(w, h int) (*Frame8, error) {
	if err := checkDims(w, h); err != nil {
		return nil, err
	}
	return &Frame8{Width:w, Height:h, Stride:w, Pix:make([]uint8, w*h)}, nil
}

// NewFrame8FromBytes copies a row-major buffer of exactly w*h bytes.
func NewFrame8FromBytes(b []byte, w, h int) (*Frame8, error) {
	f, err := NewFrame8(w, h)
	if err != nil {
		return nil, err
	}
	if len(b) != w*h {
		return nil, fmt.Errorf("%w: got %d bytes for %dx%d, want %d", ErrInvalidDimensions, len(b), w, h, w*h)
	}
	copy(f.Pix, b)
	return f, nil
}

func (f *Frame16)String() string { return fmt.Sprintf("Frame16[%dx%d]", f.Width, f.Height) }
func (f *Frame8)String() string  { return fmt.Sprintf("Frame8[%dx%d]", f.Width, f.Height) }

func (f *Frame16)inBounds(x, y int) bool { return x >= 0 && y >= 0 && x < f.Width && y < f.Height }
func (f *Frame8)inBounds(x, y int) bool  { return x >= 0 && y >= 0 && x < f.Width && y < f.Height }

// Sample returns the value at (x,y), or 0 if (x,y) is outside the frame.
func (f *Frame16)Sample(x, y int) uint16 {
	if !f.inBounds(x, y) { return 0 }
	return f.Pix[y*f.Stride + x]
}

// SetSample is a no-op outside the frame, like image.Gray16.Set
func (f *Frame16)SetSample(x, y int, v uint16) {
	if !f.inBounds(x, y) { return }
	f.Pix[y*f.Stride + x] = v
}

// Row returns the samples of row y; it panics if y is out of range.
func (f *Frame16)Row(y int) []uint16 {
	if y < 0 || y >= f.Height {
		panic(fmt.Sprintf("irframe: row %d out of range [0,%d)", y, f.Height))
	}
	return f.Pix[y*f.Stride : y*f.Stride+f.Width]
}

func (f *Frame8)Sample(x, y int) uint8 {
	if !f.inBounds(x, y) { return 0 }
	return f.Pix[y*f.Stride + x]
}

func (f *Frame8)SetSample(x, y int, v uint8) {
	if !f.inBounds(x, y) { return }
	f.Pix[y*f.Stride + x] = v
}

func (f *Frame8)Row(y int) []uint8 {
	if y < 0 || y >= f.Height {
		panic(fmt.Sprintf("irframe: row %d out of range [0,%d)", y, f.Height))
	}
	return f.Pix[y*f.Stride : y*f.Stride+f.Width]
}

// Bytes returns a fresh row-major copy of the frame, with no padding.
func (f *Frame8)Bytes() []byte {
	out := make([]byte, 0, f.Width*f.Height)
	for y:=0; y<f.Height; y++ {
		out = append(out, f.Row(y)...)
	}
	return out
}

// Clone returns a deep copy, with a tightly packed stride.
func (f *Frame8)Clone() *Frame8 {
	return &Frame8{Width:f.Width, Height:f.Height, Stride:f.Width, Pix:f.Bytes()}
}

// Gray returns the frame as an *image.Gray, sharing the pixel buffer.
func (f *Frame8)Gray() *image.Gray {
	return &image.Gray{Pix:f.Pix, Stride:f.Stride, Rect:f.Bounds()}
}

// Implement image.Image
func (f *Frame8)ColorModel() color.Model   { return color.GrayModel }
func (f *Frame8)Bounds() image.Rectangle   { return image.Rect(0, 0, f.Width, f.Height) }
func (f *Frame8)At(x, y int) color.Color   { return color.Gray{Y: f.Sample(x, y)} }

// Implement image.Image. The 14-bit samples are scaled up by 4, so
// MaxSample renders as (nearly) full white.
func (f *Frame16)ColorModel() color.Model  { return color.Gray16Model }
func (f *Frame16)Bounds() image.Rectangle  { return image.Rect(0, 0, f.Width, f.Height) }
func (f *Frame16)At(x, y int) color.Color  { return color.Gray16{Y: f.Sample(x, y) << 2} }

// Implement hdr.Image; values are normalized to [0.0, 1.0]
func (f *Frame16)HDRAt(x, y int) hdrcolor.Color {
	v := float64(f.Sample(x, y)) / float64(MaxSample)
	return hdrcolor.RGB{R: v, G: v, B: v}
}
func (f *Frame16)Size() int                { return f.Width * f.Height }
