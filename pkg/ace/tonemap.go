package ace

import(
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/abworrall/ircontrast/pkg/emath"
	"github.com/abworrall/ircontrast/pkg/irframe"
)

// A Table maps each input intensity to an output intensity.
type Table [NumLevels]uint8

// Apply returns a new frame, with every pixel v replaced by t[v].
func (t *Table)Apply(f *irframe.Frame8) *irframe.Frame8 {
	out, _ := irframe.NewFrame8(f.Width, f.Height)
	for y:=0; y<f.Height; y++ {
		src := f.Row(y)
		dst := out.Row(y)
		for x, v := range src {
			dst[x] = t[v]
		}
	}
	return out
}

// IsMonotonic reports whether the table never maps a brighter input to
// a darker output. The half-bin correction in step 7 can break this,
// so it is worth checking rather than assuming.
func (t *Table)IsMonotonic() bool {
	for i:=1; i<NumLevels; i++ {
		if t[i] < t[i-1] {
			return false
		}
	}
	return true
}

// Result holds the intermediate values from computing a table; they
// are all frame-scoped, and only kept around for inspection.
type Result struct {
	Hist        BackDiffHistogram
	KPrime      float64     // The adaptive blending coefficient, k'
	Modified  []float64     // The flat/empirical blended histogram
	PDF       []float64
	PDFW      []float64     // PDF after the square-root weighting
	CDFW      []float64     // Normalized cumulative sum of PDFW
	Table       Table
	Degenerate  bool        // A Fallback value was substituted somewhere
}

// ComputeTable runs steps 1-7: it analyses the frame and builds its
// tone-mapping table, without touching any pixels.
func ComputeTable(f *irframe.Frame8, p Params) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if f.Width <= 0 || f.Height <= 0 {
		return nil, fmt.Errorf("%w: %s", irframe.ErrInvalidDimensions, f)
	}

	r := Result{}

	// 1. Back-difference histogram
	r.Hist = BuildHistogram(f, p.Threshold)

	// 2. Adaptive blending coefficient
	kPrime, err := BlendCoefficient(r.Hist.K, p.GainFactor, p.OnDegenerate)
	if err != nil {
		return nil, err
	}
	r.KPrime = kPrime
	if r.Hist.K == 0 {
		r.Degenerate = true
	}

	// 3. Blend a flat baseline (the average count per bin) with the
	// empirical histogram; high contrast frames trust the histogram more.
	u := float64(r.Hist.Count) / float64(NumLevels)
	r.Modified = make([]float64, NumLevels)
	for i:=0; i<NumLevels; i++ {
		r.Modified[i] = math.Round((1-kPrime)*u + kPrime*float64(r.Hist.Bins[i]))
	}

	// 4. PDF over intensity levels, relative to the whole frame
	r.PDF = floats.ScaleTo(make([]float64, NumLevels), 1.0/float64(f.Width*f.Height), r.Modified)

	// 5. Square-root weighting; flattens the dominant bins and lifts the sparse ones
	pdfMin, pdfMax := floats.Min(r.PDF), floats.Max(r.PDF)
	r.PDFW = make([]float64, NumLevels)
	if pdfMax == pdfMin {
		if p.OnDegenerate != Fallback {
			return nil, fmt.Errorf("%w: every PDF bin is %v", ErrDegenerateStatistics, pdfMax)
		}
		copy(r.PDFW, r.PDF)
		r.Degenerate = true
	} else {
		for i:=0; i<NumLevels; i++ {
			r.PDFW[i] = pdfMax * math.Pow((r.PDF[i]-pdfMin)/(pdfMax-pdfMin), 0.5)
		}
	}

	// 6. Normalized cumulative distribution. The total can only be zero
	// after a Fallback substitution (e.g. nothing passed the threshold).
	r.CDFW = floats.CumSum(make([]float64, NumLevels), r.PDFW)
	if total := r.CDFW[NumLevels-1]; total > 0 {
		floats.Scale(1/total, r.CDFW)
	} else {
		r.Degenerate = true // PDFW is all zero, so CDFW already is too
	}

	// 7. The table, with a half-bin correction. Entry 0 is left at 0.
	for i:=1; i<NumLevels; i++ {
		r.Table[i] = emath.SaturateU8(255.0 * (r.CDFW[i] - 0.5*r.PDFW[i]))
	}

	return &r, nil
}

// Enhance computes the frame's table and applies it, returning a new frame.
func Enhance(f *irframe.Frame8, p Params) (*irframe.Frame8, error) {
	r, err := ComputeTable(f, p)
	if err != nil {
		return nil, err
	}
	return r.Table.Apply(f), nil
}
