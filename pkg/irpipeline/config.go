package irpipeline

import(
	"errors"
	"fmt"
	"io/ioutil"
	"log"
	"runtime"

	"gopkg.in/yaml.v2"

	"github.com/abworrall/ircontrast/pkg/ace"
	"github.com/abworrall/ircontrast/pkg/ecolor"
	"github.com/abworrall/ircontrast/pkg/irframe"
)

/* Example config file ...

width: 640
height: 512
byteorder: bigendian
tonemapper: ace
palette: ironbow
outputscale: 2
outputdir: out
workers: 4
ace:
  threshold: 5
  gainfactor: 10
  ondegenerate: fallback

*/

var ErrUnknownStrategy = errors.New("irpipeline: unknown strategy")

type AceConfig struct {
	Threshold     int
	GainFactor    float64
	Alpha         float64   // Legacy, ignored
	OnDegenerate  string
}

type Config struct {
	Verbosity   int

	// Raw frame geometry; TIFF and 8-bit image inputs bring their own
	Width       int
	Height      int
	ByteOrder   string

	Tonemapper  string
	Palette     string
	Ace         AceConfig

	OutputScale float64   // Resize the final image by this much
	OutputDir   string
	WriteHDR    bool      // Also write the normalized frame as Radiance RGBE

	Workers     int       // How many frames to process at once; 0 means one per CPU
	FailFast    bool      // Abort a batch on the first bad frame

	// Values we figure out in Finalize, and put here for access by rest of app
	Order       irframe.ByteOrder  `yaml:"-"`
	AceParams   ace.Params         `yaml:"-"`
	Colors     *ecolor.Palette     `yaml:"-"`
}

func NewConfig() Config {
	p := ace.DefaultParams()
	return Config{
		Width:       irframe.DefaultWidth,
		Height:      irframe.DefaultHeight,
		ByteOrder:   irframe.BigEndian.String(),
		Tonemapper:  "ace",
		Palette:     "gray",
		OutputScale: 1.0,
		OutputDir:   ".",
		Ace: AceConfig{
			Threshold:    p.Threshold,
			GainFactor:   p.GainFactor,
			Alpha:        p.Alpha,
			OnDegenerate: p.OnDegenerate.String(),
		},
	}
}

func newConfigFromYaml(b []byte) (Config, error) {
	c := NewConfig()
	err := yaml.Unmarshal(b, &c)
	return c, err
}

// LoadConfig overlays the YAML file onto the defaults. It doesn't
// finalize, so that command line flags can still be applied.
func LoadConfig(filename string) (Config, error) {
	contents, err := ioutil.ReadFile(filename)
	if err != nil {
		return NewConfig(), fmt.Errorf("config read '%s': %v", filename, err)
	}

	c, err := newConfigFromYaml(contents)
	if err != nil {
		return c, fmt.Errorf("config parse '%s': %v", filename, err)
	}
	return c, nil
}

func (c Config)AsYaml() string {
	b, err := yaml.Marshal(c)
	if err != nil {
		log.Fatalf("Can't marshal config yaml: %v\n", err)
	}
	return string(b)
}

// Finalize does sanity checks, and resolves the strategy names into
// the things they name.
func (c *Config)Finalize() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", irframe.ErrInvalidDimensions, c.Width, c.Height)
	}

	order, err := irframe.ParseByteOrder(c.ByteOrder)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnknownStrategy, err)
	}
	c.Order = order

	if c.Tonemapper != "all" && !isTonemapper(c.Tonemapper) {
		return fmt.Errorf("%w: no Tonemapper named '%s', wanted %s", ErrUnknownStrategy, c.Tonemapper, ListTonemappers())
	}

	if c.Colors, err = ecolor.NewPalette(c.Palette); err != nil {
		return fmt.Errorf("%w: %v", ErrUnknownStrategy, err)
	}

	policy, err := ace.ParsePolicy(c.Ace.OnDegenerate)
	if err != nil {
		return err
	}
	c.AceParams = ace.Params{
		Threshold:    c.Ace.Threshold,
		GainFactor:   c.Ace.GainFactor,
		Alpha:        c.Ace.Alpha,
		OnDegenerate: policy,
	}
	if err := c.AceParams.Validate(); err != nil {
		return err
	}

	if !(c.OutputScale > 0) {
		return fmt.Errorf("outputscale %v must be > 0", c.OutputScale)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers %d must be >= 0", c.Workers)
	} else if c.Workers == 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	if c.OutputDir == "" {
		c.OutputDir = "."
	}

	return nil
}
