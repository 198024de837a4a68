package ace

// Implement adaptive contrast enhancement, driven by a back-difference
// histogram: a 'platform' histogram equalization, where the histogram
// only counts pixels that sit on some horizontal local contrast, and is
// blended with a flat baseline according to how much contrast the frame
// has overall.

import(
	"fmt"
	"image"
	"log"

	"github.com/abworrall/ircontrast/pkg/emath"
	"github.com/abworrall/ircontrast/pkg/irframe"
)

// Enhancer wraps Enhance in the same shape as the mdouchement/hdr
// tone mapping operators, so it can sit in the same registry.
type Enhancer struct {
	Params

	// Our extra params
	DumpCurves   bool      // whether to write plots of the PDF/CDF/table, and the back-difference grid
	DumpPrefix   string    // prepended to the dump filenames

	Input        *irframe.Frame8
	Output       *irframe.Frame8
	Result       *Result
	Err          error      // Set by Perform, which can't return it
}

func NewDefaultEnhancer(f *irframe.Frame8) *Enhancer {
	return &Enhancer{
		Params: DefaultParams(),
		Input:  f,
	}
}

// Run computes the table, applies it, and keeps the intermediate Result.
func (e *Enhancer)Run() (*irframe.Frame8, error) {
	r, err := ComputeTable(e.Input, e.Params)
	if err != nil {
		e.Err = err
		return nil, err
	}

	e.Result = r
	e.Output = r.Table.Apply(e.Input)
	e.MaybeDump()

	return e.Output, nil
}

// Implement mdouchement/hdr/tmo:ToneMappingOperator. On failure the
// input is passed through untouched, and the error is left in e.Err.
func (e *Enhancer)Perform() image.Image {
	if out, err := e.Run(); err == nil {
		return out
	}
	return e.Input
}

func (e *Enhancer)MaybeDump() {
	if !e.DumpCurves || e.Result == nil {
		return
	}

	r := e.Result
	table := make([]float64, NumLevels)
	for i, v := range r.Table {
		table[i] = float64(v)
	}

	title := fmt.Sprintf("%s: k'=%.4f, count=%d, K=%d", e.Params, r.KPrime, r.Hist.Count, r.Hist.K)
	err := emath.SaveCurves(e.DumpPrefix+"curves.png", title,
		emath.Curve{Name:"PDF",   Values:r.PDF,  R:1.0, G:0.3, B:0.3},
		emath.Curve{Name:"PDF_w", Values:r.PDFW, R:1.0, G:0.8, B:0.2},
		emath.Curve{Name:"CDF_w", Values:r.CDFW, R:0.3, G:1.0, B:0.3},
		emath.Curve{Name:"table", Values:table,  R:0.4, G:0.6, B:1.0},
	)
	if err != nil {
		log.Printf("ace: dumping curves: %v", err)
	}

	diffs := BackDifferences(e.Input)
	if err := diffs.ToImg("back-differences "+diffs.Stats(), e.DumpPrefix+"backdiff.png"); err != nil {
		log.Printf("ace: dumping back-differences: %v", err)
	}
}
