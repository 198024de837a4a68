package emath

import(
	"fmt"

	"github.com/fogleman/gg"
)

// A Curve is a named series of values, e.g. a PDF over the 256 intensity levels.
type Curve struct {
	Name    string
	Values  []float64
	R, G, B float64
}

// PlotCurves draws each curve, scaled independently to fill the plot
// height, onto a single w x h canvas. It is meant for eyeballing tone
// curves, not for publication.
func PlotCurves(title string, w, h int, curves ...Curve) *gg.Context {
	dc := gg.NewContext(w, h)
	dc.SetRGB(0, 0, 0)
	dc.Clear()
	dc.SetLineWidth(1.5)

	margin := 30.0
	plotW  := float64(w) - 2*margin
	plotH  := float64(h) - 2*margin

	for i, c := range curves {
		if len(c.Values) < 2 {
			continue
		}

		fg := FloatGrid{stride:len(c.Values), values:c.Values}
		min, max := fg.MinMax()
		span := max - min
		if span == 0 { span = 1 }

		dc.SetRGB(c.R, c.G, c.B)
		for j, v := range c.Values {
			x := margin + plotW * float64(j) / float64(len(c.Values)-1)
			y := margin + plotH * (1 - (v-min)/span)
			if j == 0 {
				dc.MoveTo(x, y)
			} else {
				dc.LineTo(x, y)
			}
		}
		dc.Stroke()
		dc.DrawString(fmt.Sprintf("%s [%.4g, %.4g]", c.Name, min, max), margin, float64(h) - 5 - 14*float64(len(curves)-1-i))
	}

	dc.SetRGB(1, 1, 1)
	dc.DrawString(title, margin, 20)

	return dc
}

// SaveCurves is PlotCurves, written out as a PNG
func SaveCurves(filename, title string, curves ...Curve) error {
	return PlotCurves(title, 800, 500, curves...).SavePNG(filename)
}
