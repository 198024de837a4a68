package ecolor

// False-colour palettes for 8-bit thermal frames. A palette is a
// 256-entry lookup from grey level to RGB, built by blending between a
// few anchor colours in CIE L*a*b*, which keeps the perceived
// brightness steps even.

import(
	"errors"
	"fmt"
	"image"
	"image/color"
	"sort"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/abworrall/ircontrast/pkg/irframe"
)

var ErrUnknownPalette = errors.New("ecolor: unknown palette")

// A Stop anchors a colour at a position in [0,1] along the gradient.
type Stop struct {
	Pos float64
	Hex string
}

type Palette struct {
	Name string
	LUT  [256]color.RGBA
}

var(
	gradients = map[string][]Stop{
		"gray": nil, // built directly, see grayPalette
		// The usual thermal camera look: black, through purple and red, to white hot
		"ironbow": {
			{0.00, "#000000"},
			{0.20, "#20008c"},
			{0.40, "#a0089c"},
			{0.60, "#e8501c"},
			{0.80, "#fcb410"},
			{1.00, "#ffffff"},
		},
		"rainbow": {
			{0.00, "#00007f"},
			{0.20, "#0000ff"},
			{0.40, "#00ffff"},
			{0.60, "#7fff00"},
			{0.80, "#ffff00"},
			{1.00, "#ff0000"},
		},
	}
)

func ListPalettes() string {
	names := []string{}
	for name := range gradients {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("%v", names)
}

// NewPalette builds the named palette's lookup table.
func NewPalette(name string) (*Palette, error) {
	stops, exists := gradients[strings.ToLower(name)]
	if !exists {
		return nil, fmt.Errorf("%w '%s', wanted %s", ErrUnknownPalette, name, ListPalettes())
	}
	if stops == nil {
		return grayPalette(), nil
	}
	return NewGradientPalette(name, stops)
}

// grayPalette is the identity; blending black to white in Lab would
// bend the levels slightly.
func grayPalette() *Palette {
	p := Palette{Name: "gray"}
	for i := range p.LUT {
		p.LUT[i] = color.RGBA{uint8(i), uint8(i), uint8(i), 0xFF}
	}
	return &p
}

// NewGradientPalette builds a palette from stops, which must be sorted
// by position and span [0,1].
func NewGradientPalette(name string, stops []Stop) (*Palette, error) {
	if len(stops) < 2 || stops[0].Pos != 0 || stops[len(stops)-1].Pos != 1 {
		return nil, fmt.Errorf("palette '%s': stops must span [0,1]", name)
	}

	cols := make([]colorful.Color, len(stops))
	for i, s := range stops {
		c, err := colorful.Hex(s.Hex)
		if err != nil {
			return nil, fmt.Errorf("palette '%s': stop %d: %v", name, i, err)
		}
		if i > 0 && s.Pos <= stops[i-1].Pos {
			return nil, fmt.Errorf("palette '%s': stop %d out of order", name, i)
		}
		cols[i] = c
	}

	p := Palette{Name: name}
	seg := 0
	for i:=0; i<256; i++ {
		t := float64(i) / 255.0
		for seg < len(stops)-2 && t > stops[seg+1].Pos {
			seg++
		}
		lo, hi := stops[seg], stops[seg+1]
		frac := (t - lo.Pos) / (hi.Pos - lo.Pos)

		r, g, b := cols[seg].BlendLab(cols[seg+1], frac).Clamped().RGB255()
		p.LUT[i] = color.RGBA{r, g, b, 0xFF}
	}

	// Pin the ends, so blending round-off can't shift them
	p.LUT[0] = toRGBA(cols[0])
	p.LUT[255] = toRGBA(cols[len(cols)-1])

	return &p, nil
}

func toRGBA(c colorful.Color) color.RGBA {
	r, g, b := c.RGB255()
	return color.RGBA{r, g, b, 0xFF}
}

func (p *Palette)String() string {
	return fmt.Sprintf("Palette{%s, %v .. %v}", p.Name, p.LUT[0], p.LUT[255])
}

// Colorize maps every pixel of the frame through the palette.
func (p *Palette)Colorize(f *irframe.Frame8) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	for y:=0; y<f.Height; y++ {
		base := y * dst.Stride
		for x, v := range f.Row(y) {
			c := p.LUT[v]
			dst.Pix[base+4*x]   = c.R
			dst.Pix[base+4*x+1] = c.G
			dst.Pix[base+4*x+2] = c.B
			dst.Pix[base+4*x+3] = c.A
		}
	}
	return dst
}
