package irpipeline

import(
	"fmt"
	"log"

	"github.com/mdouchement/hdr/tmo"

	"github.com/abworrall/ircontrast/pkg/ace"
	"github.com/abworrall/ircontrast/pkg/irframe"
)

var(
	Tonemappers = []string{"ace", "drago03", "durand", "icam06", "linear", "reinhard05"}
)

func ListTonemappers() string {
	return fmt.Sprintf("%v", Tonemappers)
}

func isTonemapper(name string) bool {
	for _, n := range Tonemappers {
		if n == name {
			return true
		}
	}
	return false
}

// TonemapperNames expands "all" into the full list.
func (c Config)TonemapperNames() []string {
	if c.Tonemapper == "all" {
		return Tonemappers
	}
	return []string{c.Tonemapper}
}

// Tonemap takes a normalized frame down to 8 bits with the named
// operator. "ace" is the min/max compressor followed by the adaptive
// contrast enhancer; the rest are the global and local operators from
// mdouchement/hdr, run over the whole 14 bit range.
func (c Config)Tonemap(name string, f *irframe.Frame16, dumpPrefix string) (*irframe.Frame8, error) {
	if name == "ace" {
		f8, err := irframe.Compress(f)
		if err != nil {
			return nil, err
		}
		return c.Enhance(f8, dumpPrefix)
	}

	op, err := c.SetupTonemapper(name, f)
	if err != nil {
		return nil, err
	}
	return irframe.Frame8FromImage(op.Perform()), nil
}

// Enhance runs the adaptive contrast enhancer over an 8 bit frame.
func (c Config)Enhance(f *irframe.Frame8, dumpPrefix string) (*irframe.Frame8, error) {
	e := ace.NewDefaultEnhancer(f)
	e.Params = c.AceParams
	if c.Verbosity > 0 {
		e.DumpCurves = true
		e.DumpPrefix = dumpPrefix
	}

	out, err := e.Run()
	if err != nil {
		return nil, err
	}
	if e.Result.Degenerate {
		log.Printf("%s: degenerate statistics, used fallbacks (k'=%.4f, %s)", dumpPrefix, e.Result.KPrime, e.Result.Hist)
	}
	if c.Verbosity > 1 && !e.Result.Table.IsMonotonic() {
		log.Printf("%s: tone table is not monotonic", dumpPrefix)
	}
	return out, nil
}

// Tweak the tmo parameters for thermal frames. Most of the scene sits
// in a narrow band, so the defaults tend to wash everything out.
func (c Config)SetupTonemapper(name string, f *irframe.Frame16) (tmo.ToneMappingOperator, error) {
	switch name {
	case "drago03":
		op := tmo.NewDefaultDrago03(f)
		op.Bias = 0.7
		return op, nil

	case "durand":
		return tmo.NewDefaultDurand(f), nil

	case "icam06":
		op := tmo.NewDefaultICam06(f)
		op.Contrast    = 0.8
		op.MaxClipping = 0.999
		return op, nil

	case "linear":
		return tmo.NewLinear(f), nil

	case "reinhard05":
		op := tmo.NewDefaultReinhard05(f)
		op.Chromatic = 0 // greyscale in, greyscale out
		op.Light     = 0.5
		return op, nil

	case "ace":
		return nil, fmt.Errorf("%w: ace works on 8 bit frames, use Tonemap", ErrUnknownStrategy)
	}

	return nil, fmt.Errorf("%w: no Tonemapper named '%s', wanted %s", ErrUnknownStrategy, name, ListTonemappers())
}
