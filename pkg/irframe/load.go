package irframe

import(
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/rwcarlsen/goexif/exif"
	"golang.org/x/image/tiff"
)

// A ByteOrder says how the two bytes of each raw sample are laid out.
// The zero value is not a valid order.
type ByteOrder int

const(
	BigEndian ByteOrder = iota + 1 // sensor order: high byte first, signed, offset by SensorOffset
	Native                         // host (little endian) order, unsigned, no offset
)

func (o ByteOrder)String() string {
	switch o {
	case BigEndian: return "bigendian"
	case Native:    return "native"
	}
	return fmt.Sprintf("ByteOrder(%d)", int(o))
}

func ParseByteOrder(s string) (ByteOrder, error) {
	switch strings.ToLower(s) {
	case "bigendian", "be", "y16": return BigEndian, nil
	case "native", "le", "raw":    return Native, nil
	}
	return 0, fmt.Errorf("no byte order named '%s'", s)
}

// bigEndianToHost swaps a (high, low) byte pair into a host integer,
// and reinterprets it as a signed 16 bit sample.
func bigEndianToHost(b []byte) int16 {
	return int16(binary.BigEndian.Uint16(b))
}

// clampSample pins a sample into [0, MaxSample]
func clampSample(v int) uint16 {
	if v <= 0 {
		return 0
	} else if v > MaxSample {
		return MaxSample
	}
	return uint16(v)
}

func checkRawLen(b []byte, w, h int) error {
	if err := checkDims(w, h); err != nil {
		return err
	}
	want := 2 * w * h
	if len(b) < want {
		return fmt.Errorf("%w: got %d bytes, need %d for %dx%d", ErrIO, len(b), want, w, h)
	} else if len(b) > want {
		return fmt.Errorf("%w: got %d bytes, want exactly %d for %dx%d", ErrInvalidDimensions, len(b), want, w, h)
	}
	return nil
}

// FromBigEndian builds a Frame16 from the sensor's native stream:
// signed, big endian 16 bit samples. Each sample has SensorOffset
// added, and is then clamped into [0, MaxSample].
func FromBigEndian(b []byte, w, h int) (*Frame16, error) {
	if err := checkRawLen(b, w, h); err != nil {
		return nil, err
	}

	f, _ := NewFrame16(w, h)
	for i:=0; i<w*h; i++ {
		v := int(bigEndianToHost(b[2*i:])) + SensorOffset
		f.Pix[i] = clampSample(v)
	}

	return f, nil
}

// FromNative builds a Frame16 from samples that are already in host
// (little endian) byte order, with no offset. Anything above MaxSample
// is clamped, so the frame still meets the Frame16 range invariant.
func FromNative(b []byte, w, h int) (*Frame16, error) {
	if err := checkRawLen(b, w, h); err != nil {
		return nil, err
	}

	f, _ := NewFrame16(w, h)
	for i:=0; i<w*h; i++ {
		f.Pix[i] = clampSample(int(binary.LittleEndian.Uint16(b[2*i:])))
	}

	return f, nil
}

func readRaw(r io.Reader, w, h int) ([]byte, error) {
	if err := checkDims(w, h); err != nil {
		return nil, err
	}
	b := make([]byte, 2*w*h)
	if n, err := io.ReadFull(r, b); err != nil {
		return nil, fmt.Errorf("%w: read %d of %d bytes: %v", ErrIO, n, len(b), err)
	}
	return b, nil
}

// ReadBigEndian reads exactly 2*w*h bytes from r, and decodes them
// with FromBigEndian. A short stream is an ErrIO.
func ReadBigEndian(r io.Reader, w, h int) (*Frame16, error) {
	b, err := readRaw(r, w, h)
	if err != nil {
		return nil, err
	}
	return FromBigEndian(b, w, h)
}

// ReadNative is ReadBigEndian for pre-ordered host samples.
func ReadNative(r io.Reader, w, h int) (*Frame16, error) {
	b, err := readRaw(r, w, h)
	if err != nil {
		return nil, err
	}
	return FromNative(b, w, h)
}

func Read(r io.Reader, w, h int, order ByteOrder) (*Frame16, error) {
	switch order {
	case BigEndian: return ReadBigEndian(r, w, h)
	case Native:    return ReadNative(r, w, h)
	}
	return nil, fmt.Errorf("irframe: unhandled byte order %s", order)
}

// LoadFile loads a Frame16 from disk. Raw files (.raw, .y16, .bin) are
// read in the given byte order, and must hold exactly one frame; a
// trailing .zst means the raw stream is zstd compressed. TIFFs must be
// 16 bit, and are clamped into range; 8 bit TIFFs are rejected with
// ErrUnsupportedFormat (see IsFrame8File).
func LoadFile(filename string, w, h int, order ByteOrder) (*Frame16, error) {
	reader, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open+r '%s': %w", filename, err)
	}
	defer reader.Close()

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".zst":
		dec, err := zstd.NewReader(reader)
		if err != nil {
			return nil, fmt.Errorf("zstd '%s': %w", filename, err)
		}
		defer dec.Close()
		f, err := Read(dec, w, h, order)
		if err == nil {
			err = expectEOF(dec, w, h)
		}
		if err != nil {
			return nil, fmt.Errorf("zstd raw '%s': %w", filename, err)
		}
		return f, nil

	case ".tif", ".tiff":
		img, err := tiff.Decode(reader)
		if err != nil {
			return nil, fmt.Errorf("tiff loading '%s': %w", filename, err)
		}
		if !is16BitModel(img.ColorModel()) {
			return nil, fmt.Errorf("tiff loading '%s': %w: not 16 bit, use LoadFrame8File", filename, ErrUnsupportedFormat)
		}
		return FromImage(img), nil

	default:
		f, err := Read(reader, w, h, order)
		if err == nil {
			err = expectEOF(reader, w, h)
		}
		if err != nil {
			return nil, fmt.Errorf("raw '%s': %w", filename, err)
		}
		return f, nil
	}
}

// expectEOF checks that a raw file held nothing beyond the frame; a
// longer file means the configured dimensions are wrong.
func expectEOF(r io.Reader, w, h int) error {
	var extra [1]byte
	if n, _ := io.ReadFull(r, extra[:]); n > 0 {
		return fmt.Errorf("%w: file is longer than the %d bytes of a %dx%d frame", ErrInvalidDimensions, 2*w*h, w, h)
	}
	return nil
}

func is16BitModel(m color.Model) bool {
	switch m {
	case color.Gray16Model, color.RGBA64Model, color.NRGBA64Model:
		return true
	}
	return false
}

// IsFrame8File says whether the file holds an already-compressed 8 bit
// frame: a PNG or JPEG, or a TIFF with 8 bit samples.
func IsFrame8File(filename string) (bool, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png", ".jpg", ".jpeg":
		return true, nil
	case ".tif", ".tiff":
	default:
		return false, nil
	}

	reader, err := os.Open(filename)
	if err != nil {
		return false, fmt.Errorf("open+r '%s': %w", filename, err)
	}
	defer reader.Close()

	cfg, err := tiff.DecodeConfig(reader)
	if err != nil {
		return false, fmt.Errorf("tiff config '%s': %w", filename, err)
	}
	return !is16BitModel(cfg.ColorModel), nil
}

// FromImage converts any image into a Frame16, via 16 bit grey, and
// clamps into [0, MaxSample]. Dimensions come from the image.
func FromImage(img image.Image) *Frame16 {
	b := img.Bounds()
	f := &Frame16{Width:b.Dx(), Height:b.Dy(), Stride:b.Dx(), Pix:make([]uint16, b.Dx()*b.Dy())}

	for y:=b.Min.Y; y<b.Max.Y; y++ {
		for x:=b.Min.X; x<b.Max.X; x++ {
			g := color.Gray16Model.Convert(img.At(x, y)).(color.Gray16)
			f.SetSample(x-b.Min.X, y-b.Min.Y, clampSample(int(g.Y)))
		}
	}

	return f
}

// Frame8FromImage converts any image into a Frame8 via color.GrayModel
func Frame8FromImage(img image.Image) *Frame8 {
	b := img.Bounds()
	f := &Frame8{Width:b.Dx(), Height:b.Dy(), Stride:b.Dx(), Pix:make([]uint8, b.Dx()*b.Dy())}

	for y:=b.Min.Y; y<b.Max.Y; y++ {
		for x:=b.Min.X; x<b.Max.X; x++ {
			g := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
			f.SetSample(x-b.Min.X, y-b.Min.Y, g.Y)
		}
	}

	return f
}

// LoadFrame8File decodes a PNG, JPEG or TIFF into a Frame8, for
// feeding already-compressed frames straight into an enhancer.
func LoadFrame8File(filename string) (*Frame8, error) {
	reader, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open+r '%s': %w", filename, err)
	}
	defer reader.Close()

	var img image.Image
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".tif", ".tiff":
		img, err = tiff.Decode(reader)
	default:
		img, _, err = image.Decode(reader)
	}
	if err != nil {
		return nil, fmt.Errorf("image loading '%s': %w", filename, err)
	}

	return Frame8FromImage(img), nil
}

// Metadata is the subset of EXIF we care about; radiometric TIFFs and
// JPEGs exported by camera tools usually carry it.
type Metadata struct {
	Make   string
	Model  string
}

func (m Metadata)String() string { return strings.TrimSpace(m.Make + " " + m.Model) }

// ReadEXIF pulls camera make & model from a TIFF or JPEG. Missing tags
// are left empty; a file with no EXIF block at all is an error.
func ReadEXIF(filename string) (Metadata, error) {
	md := Metadata{}

	reader, err := os.Open(filename)
	if err != nil {
		return md, fmt.Errorf("open+r exif '%s': %w", filename, err)
	}
	defer reader.Close()

	ex, err := exif.Decode(reader)
	if err != nil {
		return md, fmt.Errorf("exif parsing '%s': %w", filename, err)
	}

	if tag,err := ex.Get(exif.Make); err == nil {
		md.Make, _ = tag.StringVal()
	}
	if tag,err := ex.Get(exif.Model); err == nil {
		md.Model, _ = tag.StringVal()
	}

	return md, nil
}
