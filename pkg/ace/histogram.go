package ace

import(
	"fmt"

	"github.com/abworrall/ircontrast/pkg/emath"
	"github.com/abworrall/ircontrast/pkg/irframe"
)

const NumLevels = 256

// A BackDiffHistogram counts, per intensity, the pixels whose
// back-difference (distance to the pixel two columns to the left)
// exceeds a threshold. It also carries the global sum of all
// back-differences, K, which measures how much horizontal local
// contrast the frame has overall.
type BackDiffHistogram struct {
	Bins   [NumLevels]int
	Count  int    // Sum of Bins
	K      int64  // Sum of every pixel's back-difference, counted or not
}

func (h BackDiffHistogram)String() string {
	return fmt.Sprintf("BackDiffHistogram{count=%d, K=%d}", h.Count, h.K)
}

// backDiff is the back-difference for the pixel at column x of row. The
// first two columns have no pixel two to the left, so their own value
// stands in.
func backDiff(row []uint8, x int) int {
	if x < 2 {
		return int(row[x])
	}
	d := int(row[x]) - int(row[x-2])
	if d < 0 {
		return -d
	}
	return d
}

// BuildHistogram scans the frame once, accumulating K and the
// thresholded histogram.
func BuildHistogram(f *irframe.Frame8, threshold int) BackDiffHistogram {
	h := BackDiffHistogram{}

	for y:=0; y<f.Height; y++ {
		row := f.Row(y)
		for x, v := range row {
			diff := backDiff(row, x)
			h.K += int64(diff)
			if diff > threshold {
				h.Bins[v]++
				h.Count++
			}
		}
	}

	return h
}

// BackDifferences returns every pixel's back-difference as a grid, for
// dumping as an image while debugging.
func BackDifferences(f *irframe.Frame8) emath.FloatGrid {
	fg := emath.NewFloatGrid(f.Width, f.Height)
	for y:=0; y<f.Height; y++ {
		row := f.Row(y)
		for x := range row {
			fg.Set(x, y, float64(backDiff(row, x)))
		}
	}
	return fg
}

// BlendCoefficient computes k' = kg / 2^ceil(log2(kg)), with kg = K*g.
// k' lies in (0.5, 1]. When kg is zero (only an all-black frame has
// no back-difference energy) log2 is undefined; Fail reports that,
// Fallback uses k' = 0, which trusts the flat baseline entirely.
func BlendCoefficient(k int64, gain float64, policy Policy) (float64, error) {
	kg := float64(k) * gain
	if kg <= 0 {
		if policy == Fallback {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: K*g = %v, log2 undefined", ErrDegenerateStatistics, kg)
	}
	return emath.UnitPow2(kg), nil
}
