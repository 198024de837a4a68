package ace

import(
	"errors"
	"fmt"
	"math"
	"strings"
)

var(
	ErrDegenerateStatistics = errors.New("ace: degenerate frame statistics")
	ErrInvalidParams        = errors.New("ace: invalid parameters")
)

// A Policy says what to do when a frame's statistics leave a step of
// the algorithm undefined (log2 of zero, or a zero-width PDF range).
type Policy int

const(
	// Fail returns ErrDegenerateStatistics; the caller decides whether
	// to skip the frame, reuse a previous table, etc.
	Fail Policy = iota

	// Fallback substitutes defined values: k' = 0 when there is no
	// back-difference energy, PDF_w = PDF when every bin has the same
	// probability, and an all-zero CDF when there is no probability
	// mass at all. A flat frame whose pixels are all at or below the
	// threshold therefore comes out all black.
	//
	// A flat frame brighter than the threshold is not degenerate under
	// either policy: its first two columns have back-differences equal
	// to the value itself, so only bin v is populated, and every pixel
	// maps to the single constant table[v] (251 for a 40x10 frame of 100s).
	Fallback
)

func (p Policy)String() string {
	switch p {
	case Fail:     return "fail"
	case Fallback: return "fallback"
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(s) {
	case "", "fail":  return Fail, nil
	case "fallback":  return Fallback, nil
	}
	return Fail, fmt.Errorf("%w: no degenerate policy named '%s'", ErrInvalidParams, s)
}

// Params tune the enhancer.
type Params struct {
	Threshold    int     // A back-difference must exceed this for the pixel to enter the histogram
	GainFactor   float64 // 'g'; scales the total back-difference before it is normalized into k'

	// Deprecated: Alpha has no effect. It is accepted so configs written
	// for older tools still parse.
	Alpha        float64

	OnDegenerate Policy
}

func DefaultParams() Params {
	return Params{
		Threshold:    5,
		GainFactor:   10,
		Alpha:        20,
		OnDegenerate: Fail,
	}
}

func (p Params)Validate() error {
	if p.Threshold < 0 {
		return fmt.Errorf("%w: threshold %d < 0", ErrInvalidParams, p.Threshold)
	}
	if !(p.GainFactor > 0) || math.IsInf(p.GainFactor, 1) {
		return fmt.Errorf("%w: gain factor %v must be finite and > 0", ErrInvalidParams, p.GainFactor)
	}
	if p.OnDegenerate != Fail && p.OnDegenerate != Fallback {
		return fmt.Errorf("%w: %s", ErrInvalidParams, p.OnDegenerate)
	}
	return nil
}

func (p Params)String() string {
	return fmt.Sprintf("threshold=%d, g=%g, on-degenerate=%s", p.Threshold, p.GainFactor, p.OnDegenerate)
}
