package irpipeline

import(
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nfnt/resize"

	"github.com/abworrall/ircontrast/pkg/irframe"
)

// An Outcome describes what happened to one input file.
type Outcome struct {
	Input     string
	Outputs []string
	Stats     irframe.Stats  // Only set for 16 bit inputs
	Elapsed   time.Duration
}

func (o Outcome)String() string {
	return fmt.Sprintf("%s -> %v (%s)", o.Input, o.Outputs, o.Elapsed)
}

// outputBase is the output path minus extension: the input's name,
// moved into OutputDir.
func (c Config)outputBase(filename string) string {
	base := filepath.Base(filename)
	if strings.ToLower(filepath.Ext(base)) == ".zst" {
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return filepath.Join(c.OutputDir, strings.TrimSuffix(base, filepath.Ext(base)))
}

// ProcessFile loads one frame, tonemaps it with each configured
// operator, and writes the results as PNGs into OutputDir.
func (c Config)ProcessFile(filename string) (Outcome, error) {
	start := time.Now()
	o := Outcome{Input: filename}
	base := c.outputBase(filename)

	if c.Verbosity > 0 {
		c.logMetadata(filename)
	}

	// Already-compressed frames skip straight to the enhancer
	is8Bit, err := irframe.IsFrame8File(filename)
	if err != nil {
		return o, err
	}

	if is8Bit {
		f8, err := irframe.LoadFrame8File(filename)
		if err != nil {
			return o, err
		}
		out, err := c.Enhance(f8, base+"-")
		if err != nil {
			return o, fmt.Errorf("enhance '%s': %w", filename, err)
		}
		if err := c.writeFinal(out, base+"-ace.png"); err != nil {
			return o, err
		}
		o.Outputs = append(o.Outputs, base+"-ace.png")
		o.Elapsed = time.Since(start)
		return o, nil
	}

	f, err := irframe.LoadFile(filename, c.Width, c.Height, c.Order)
	if err != nil {
		return o, err
	}

	outputs, stats, err := c.ProcessFrame(f, base)
	o.Outputs = outputs
	o.Stats = stats
	o.Elapsed = time.Since(start)
	if err != nil {
		return o, fmt.Errorf("process '%s': %w", filename, err)
	}

	return o, nil
}

// ProcessFrame runs an in-memory frame through the pipeline, writing
// outputs named after base.
func (c Config)ProcessFrame(f *irframe.Frame16, base string) ([]string, irframe.Stats, error) {
	outputs := []string{}

	stats, err := irframe.ComputeStats(f)
	if err != nil {
		return outputs, stats, err
	}
	if c.Verbosity > 0 {
		log.Printf("%s: %s", base, stats)
	}

	if c.WriteHDR {
		if err := irframe.WriteRGBE(f, base+".hdr"); err != nil {
			return outputs, stats, err
		}
		outputs = append(outputs, base+".hdr")
	}

	for _, name := range c.TonemapperNames() {
		if c.Verbosity > 0 {
			log.Printf("%s: tonemapping with %s", base, name)
		}
		out, err := c.Tonemap(name, f, base+"-")
		if err != nil {
			return outputs, stats, fmt.Errorf("%s: %w", name, err)
		}

		filename := fmt.Sprintf("%s-%s.png", base, name)
		if err := c.writeFinal(out, filename); err != nil {
			return outputs, stats, err
		}
		outputs = append(outputs, filename)
	}

	return outputs, stats, nil
}

// Render applies the palette and the output scaling.
func (c Config)Render(f *irframe.Frame8) image.Image {
	var img image.Image = f.Gray()
	if c.Colors != nil && c.Colors.Name != "gray" {
		img = c.Colors.Colorize(f)
	}

	if c.OutputScale != 1.0 {
		w := uint(float64(f.Width) * c.OutputScale + 0.5)
		if w == 0 {
			w = 1
		}
		img = resize.Resize(w, 0, img, resize.Lanczos3)
	}

	return img
}

func (c Config)writeFinal(f *irframe.Frame8, filename string) error {
	return irframe.WritePNG(c.Render(f), filename)
}

func (c Config)logMetadata(filename string) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".tif", ".tiff", ".jpg", ".jpeg":
	default:
		return
	}
	if md, err := irframe.ReadEXIF(filename); err != nil {
		log.Printf("%s: no EXIF (%v)", filename, err)
	} else {
		log.Printf("%s: camera %q", filename, md)
	}
}

// EnsureOutputDir creates OutputDir if needed.
func (c Config)EnsureOutputDir() error {
	if err := os.MkdirAll(c.OutputDir, 0755); err != nil {
		return fmt.Errorf("mkdir '%s': %v", c.OutputDir, err)
	}
	return nil
}
