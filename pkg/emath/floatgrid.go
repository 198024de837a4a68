package emath

import(
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg" // Move to https://pkg.go.dev/golang.org/x/image/font#Drawer sometime
)

// A FloatGrid is a grid of floats, stored row-major with a stride. It
// holds intermediate per-pixel values (e.g. back-differences) so they
// can be dumped as images when debugging.
type FloatGrid struct {
	stride int
	values []float64
}

func NewFloatGrid(w, h int) FloatGrid {
	return FloatGrid{
		stride: w,
		values: make([]float64, w*h),
	}
}

func (fg *FloatGrid)Set(x, y int, v float64) { fg.values[fg.stride*y + x] = v }
func (fg *FloatGrid)Get(x, y int) float64    { return fg.values[fg.stride*y + x] }
func (fg *FloatGrid)Dx() int                 { return fg.stride }
func (fg *FloatGrid)Dy() int                 { return len(fg.values) / fg.stride }

func (fg *FloatGrid)MinMax() (float64, float64) {
	min := math.MaxFloat64
	max := -1.0 * min
	for _, v := range fg.values {
		if v > max { max = v }
		if v < min { min = v }
	}
	return min, max
}

func (fg *FloatGrid)Stats() string {
	min, max := fg.MinMax()
	return fmt.Sprintf("fg[%dx%d, vals{%f,%f}]", fg.Dx(), fg.Dy(), min, max)
}

// ToGray scales the range of values in the grid onto [0,255]. A flat
// grid comes out black.
func (fg *FloatGrid)ToGray() *image.Gray {
	min, max := fg.MinMax()
	img := image.NewGray(image.Rectangle{Max:image.Point{fg.Dx(), fg.Dy()}})
	if max <= min {
		return img
	}

	for y:=0; y<fg.Dy(); y++ {
		for x:=0; x<fg.Dx(); x++ {
			gray := (fg.Get(x,y) - min) / (max - min)
			img.SetGray(x, y, color.Gray{uint8(gray * 255.0)})
		}
	}
	return img
}

// ToImg saves the grid as a greyscale PNG, with a title drawn on top.
func (fg *FloatGrid)ToImg(title, filename string) error {
	dc := gg.NewContextForImage(fg.ToGray())
	dc.SetRGB(1,1,1)
	dc.DrawString(title, 10, 20)
	return dc.SavePNG(filename)
}
