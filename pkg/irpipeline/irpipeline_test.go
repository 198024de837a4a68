package irpipeline

import(
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/tiff"
	"gopkg.in/yaml.v2"

	"github.com/abworrall/ircontrast/pkg/ace"
	"github.com/abworrall/ircontrast/pkg/irframe"
)

const(
	testW = 64
	testH = 48
)

func testConfig(t *testing.T) Config {
	t.Helper()
	c := NewConfig()
	c.Width, c.Height = testW, testH
	c.OutputDir = t.TempDir()
	c.Workers = 3
	if err := c.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	return c
}

// writeRawFrame writes a noisy gradient, which is well-conditioned
// for every operator.
func writeRawFrame(t *testing.T, dir, name string, seed int64) string {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	f, _ := irframe.NewFrame16(testW, testH)
	for y:=0; y<testH; y++ {
		for x:=0; x<testW; x++ {
			f.SetSample(x, y, uint16(7000 + 40*x + 10*y + rng.Intn(200)))
		}
	}
	filename := filepath.Join(dir, name)
	if err := irframe.WriteRaw(f, filename); err != nil {
		t.Fatalf("WriteRaw: %v", err)
	}
	return filename
}

func TestDefaultConfigRoundTrip(t *testing.T) {
	c := NewConfig()
	c2, err := newConfigFromYaml([]byte(c.AsYaml()))
	if err != nil {
		t.Fatalf("parse: %v\n%s", err, c.AsYaml())
	}
	if c2.AsYaml() != c.AsYaml() {
		t.Errorf("round trip changed config:\n%s\nvs\n%s", c.AsYaml(), c2.AsYaml())
	}

	if err := c2.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if c2.AceParams != ace.DefaultParams() {
		t.Errorf("ace params %s, want defaults", c2.AceParams)
	}
	if c2.Order != irframe.BigEndian || c2.Workers < 1 || c2.Colors == nil {
		t.Errorf("unresolved config: %+v", c2)
	}
}

func TestLoadConfigOverlaysDefaults(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "ir.yaml")
	contents := "palette: ironbow\nace:\n  gainfactor: 2.5\n  ondegenerate: fallback\n"
	if err := os.WriteFile(filename, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := LoadConfig(filename)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if err := c.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if c.Width != irframe.DefaultWidth || c.Ace.Threshold != 5 {
		t.Errorf("defaults lost: %dx%d, threshold %d", c.Width, c.Height, c.Ace.Threshold)
	}
	if c.AceParams.GainFactor != 2.5 || c.AceParams.OnDegenerate != ace.Fallback || c.Colors.Name != "ironbow" {
		t.Errorf("overrides lost: %s, palette %s", c.AceParams, c.Colors.Name)
	}

	// Resolved values never go out to yaml
	m := map[string]interface{}{}
	if err := yaml.Unmarshal([]byte(c.AsYaml()), &m); err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"order", "aceparams", "colors"} {
		if _, exists := m[k]; exists {
			t.Errorf("yaml has key %q", k)
		}
	}
}

func TestFinalizeRejectsBadConfigs(t *testing.T) {
	tests := []struct {
		name   string
		tweak  func(*Config)
		want   error
	}{
		{"tonemapper", func(c *Config) { c.Tonemapper = "fattal02" }, ErrUnknownStrategy},
		{"palette",    func(c *Config) { c.Palette = "sepia" }, ErrUnknownStrategy},
		{"byteorder",  func(c *Config) { c.ByteOrder = "middle" }, ErrUnknownStrategy},
		{"policy",     func(c *Config) { c.Ace.OnDegenerate = "retry" }, ace.ErrInvalidParams},
		{"gain",       func(c *Config) { c.Ace.GainFactor = 0 }, ace.ErrInvalidParams},
		{"threshold",  func(c *Config) { c.Ace.Threshold = -2 }, ace.ErrInvalidParams},
		{"width",      func(c *Config) { c.Width = 0 }, irframe.ErrInvalidDimensions},
	}

	for _, tc := range tests {
		c := NewConfig()
		tc.tweak(&c)
		if err := c.Finalize(); !errors.Is(err, tc.want) {
			t.Errorf("%s: got %v, want %v", tc.name, err, tc.want)
		}
	}

	c := NewConfig()
	c.OutputScale = -1
	if err := c.Finalize(); err == nil {
		t.Errorf("negative outputscale accepted")
	}
}

func TestSetupTonemapper(t *testing.T) {
	c := testConfig(t)
	f, _ := irframe.NewFrame16(testW, testH)
	for _, name := range []string{"drago03", "durand", "icam06", "linear", "reinhard05"} {
		if _, err := c.SetupTonemapper(name, f); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
	if _, err := c.SetupTonemapper("fattal02", f); !errors.Is(err, ErrUnknownStrategy) {
		t.Errorf("fattal02: %v", err)
	}

	c.Tonemapper = "all"
	if got := c.TonemapperNames(); len(got) != len(Tonemappers) {
		t.Errorf("all expanded to %v", got)
	}
}

func TestProcessFile(t *testing.T) {
	c := testConfig(t)
	c.Tonemapper = "all"
	c.WriteHDR = true
	c.Palette = "ironbow"
	c.OutputScale = 2
	if err := c.Finalize(); err != nil {
		t.Fatal(err)
	}

	in := writeRawFrame(t, t.TempDir(), "frame.raw.zst", 1)
	o, err := c.ProcessFile(in)
	if err != nil {
		t.Fatalf("ProcessFile: %v", err)
	}

	if len(o.Outputs) != len(Tonemappers)+1 {
		t.Fatalf("outputs: %v", o.Outputs)
	}
	if o.Stats.Count != testW*testH || o.Stats.Min < 7000 {
		t.Errorf("stats: %s", o.Stats)
	}

	want := filepath.Join(c.OutputDir, "frame-ace.png")
	reader, err := os.Open(want)
	if err != nil {
		t.Fatalf("missing output: %v (have %v)", err, o.Outputs)
	}
	defer reader.Close()
	img, err := png.Decode(reader)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 2*testW || b.Dy() != 2*testH {
		t.Errorf("output is %v, want %dx%d", b, 2*testW, 2*testH)
	}
}

func TestProcessFile8Bit(t *testing.T) {
	c := testConfig(t)

	f8, _ := irframe.NewFrame8(testW, testH)
	for i := range f8.Pix {
		f8.Pix[i] = uint8(i * 7)
	}
	in := filepath.Join(t.TempDir(), "already.png")
	if err := irframe.WritePNG(f8, in); err != nil {
		t.Fatal(err)
	}

	o, err := c.ProcessFile(in)
	if err != nil {
		t.Fatalf("ProcessFile: %v", err)
	}
	if len(o.Outputs) != 1 || o.Outputs[0] != filepath.Join(c.OutputDir, "already-ace.png") {
		t.Errorf("outputs: %v", o.Outputs)
	}
}

func TestLoadFilesAndDirs(t *testing.T) {
	dir := t.TempDir()
	writeRawFrame(t, dir, "a.raw", 1)
	writeRawFrame(t, dir, "b.raw.zst", 2)
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0644)
	os.WriteFile(filepath.Join(dir, "cfg.yaml"), []byte("width: 64\nheight: 48\npalette: rainbow\n"), 0644)

	c := NewConfig()
	files, err := c.LoadFilesAndDirs(dir)
	if err != nil {
		t.Fatalf("LoadFilesAndDirs: %v", err)
	}
	if len(files) != 2 {
		t.Errorf("files: %v", files)
	}
	if c.Palette != "rainbow" || c.Width != 64 {
		t.Errorf("config not picked up: %s", c.AsYaml())
	}

	if _, err := c.LoadFilesAndDirs(filepath.Join(dir, "nope")); err == nil {
		t.Errorf("missing file accepted")
	}
}

func TestRunBatch(t *testing.T) {
	c := testConfig(t)
	dir := t.TempDir()

	files := []string{}
	for i:=0; i<6; i++ {
		files = append(files, writeRawFrame(t, dir, filepath.Base(t.Name())+string(rune('a'+i))+".raw", int64(i)))
	}
	bad := filepath.Join(dir, "short.raw")
	os.WriteFile(bad, []byte{1, 2, 3}, 0644)
	files = append(files, bad)

	r, err := RunBatch(context.Background(), c, files)
	if err != nil {
		t.Fatalf("RunBatch: %v", err)
	}
	if len(r.Outcomes) != 6 || len(r.Failed) != 1 {
		t.Fatalf("report: %s", r)
	}
	if !errors.Is(r.Failed[bad], irframe.ErrIO) {
		t.Errorf("bad file error: %v", r.Failed[bad])
	}
	if got := r.FailedFiles(); len(got) != 1 || got[0] != bad {
		t.Errorf("FailedFiles: %v", got)
	}
	if r.Latency(100) <= 0 {
		t.Errorf("no latency recorded: %s", r)
	}

	c.FailFast = true
	if _, err := RunBatch(context.Background(), c, []string{bad}); !errors.Is(err, irframe.ErrIO) {
		t.Errorf("FailFast: %v", err)
	}
}

func TestRunBatchCancelled(t *testing.T) {
	c := testConfig(t)
	dir := t.TempDir()
	files := []string{
		writeRawFrame(t, dir, "x.raw", 1),
		writeRawFrame(t, dir, "y.raw", 2),
		writeRawFrame(t, dir, "z.raw", 3),
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r, err := RunBatch(ctx, c, files)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
	if len(r.Outcomes) != 0 {
		t.Errorf("processed frames after cancel: %s", r)
	}
}

func TestRunBatchSameNamedInputs(t *testing.T) {
	c := testConfig(t)
	dir := t.TempDir()
	for _, sub := range []string{"seq1", "seq2"} {
		os.MkdirAll(filepath.Join(dir, sub), 0755)
	}
	first := writeRawFrame(t, dir, "seq1/frame_00001.raw", 1)
	second := writeRawFrame(t, dir, "seq2/frame_00001.raw", 2)
	other := writeRawFrame(t, dir, "seq2/frame_00002.raw", 3)

	files, err := c.LoadFilesAndDirs(dir)
	if err != nil || len(files) != 3 {
		t.Fatalf("LoadFilesAndDirs: %v, %v", files, err)
	}

	r, err := RunBatch(context.Background(), c, files)
	if err != nil {
		t.Fatalf("RunBatch: %v", err)
	}
	if len(r.Outcomes) != 2 || len(r.Failed) != 1 {
		t.Fatalf("report: %s", r)
	}
	if !errors.Is(r.Failed[second], ErrOutputCollision) {
		t.Errorf("second frame_00001: got %v, want ErrOutputCollision", r.Failed[second])
	}
	for _, o := range r.Outcomes {
		if o.Input != first && o.Input != other {
			t.Errorf("unexpected outcome %s", o)
		}
	}

	c.FailFast = true
	if _, err := RunBatch(context.Background(), c, []string{first, second}); !errors.Is(err, ErrOutputCollision) {
		t.Errorf("FailFast: got %v, want ErrOutputCollision", err)
	}
}

func TestProcessFile8BitTIFF(t *testing.T) {
	c := testConfig(t)

	img := image.NewGray(image.Rect(0, 0, testW, testH))
	for i := range img.Pix {
		img.Pix[i] = uint8(i * 7)
	}
	in := filepath.Join(t.TempDir(), "already.tif")
	writer, err := os.Create(in)
	if err != nil {
		t.Fatal(err)
	}
	if err := tiff.Encode(writer, img, nil); err != nil {
		t.Fatalf("tiff.Encode: %v", err)
	}
	writer.Close()

	// An 8 bit TIFF is enhanced as-is, not stretched into 14 bits
	o, err := c.ProcessFile(in)
	if err != nil {
		t.Fatalf("ProcessFile: %v", err)
	}
	if len(o.Outputs) != 1 || o.Stats.Count != 0 {
		t.Errorf("outcome %s, stats %s; want a single 8 bit output", o, o.Stats)
	}

	f8 := irframe.Frame8FromImage(img)
	want, err := c.Enhance(f8, "")
	if err != nil {
		t.Fatal(err)
	}
	got, err := irframe.LoadFrame8File(o.Outputs[0])
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got.Bytes(), want.Bytes()) {
		t.Error("8 bit TIFF output differs from enhancing the frame directly")
	}
}
