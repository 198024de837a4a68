package irframe

// A few writers, for getting frames back out onto disk.

import(
	"encoding/binary"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/mdouchement/hdr/codec/rgbe"
)

func WritePNG(img image.Image, filename string) error {
	if writer, err := os.Create(filename); err != nil {
		return fmt.Errorf("open+w '%s': %w", filename, err)
	} else {
		defer writer.Close()
		return png.Encode(writer, img)
	}
}

// WriteRGBE outputs the frame (normalized to [0,1]) as a Radiance .hdr
// file, so it can be poked at in HDR tools before any compression.
func WriteRGBE(f *Frame16, filename string) error {
	if writer, err := os.Create(filename); err != nil {
		return fmt.Errorf("WriteRGBE, open+w '%s': %w", filename, err)
	} else {
		defer writer.Close()
		if err := rgbe.Encode(writer, f); err != nil {
			return fmt.Errorf("WriteRGBE, encoding '%s': %w", filename, err)
		}
		return nil
	}
}

// EncodeBigEndian is the inverse of FromBigEndian (for in-range samples).
func EncodeBigEndian(f *Frame16) []byte {
	b := make([]byte, 0, 2*f.Width*f.Height)
	for y:=0; y<f.Height; y++ {
		for _, v := range f.Row(y) {
			b = binary.BigEndian.AppendUint16(b, uint16(int16(int(v) - SensorOffset)))
		}
	}
	return b
}

// WriteRaw writes the frame as a sensor-order (big endian) raw stream;
// if filename ends in .zst, the stream is zstd compressed.
func WriteRaw(f *Frame16, filename string) error {
	writer, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("open+w '%s': %w", filename, err)
	}
	defer writer.Close()

	if strings.ToLower(filepath.Ext(filename)) == ".zst" {
		enc, err := zstd.NewWriter(writer)
		if err != nil {
			return fmt.Errorf("zstd '%s': %w", filename, err)
		}
		if _, err := enc.Write(EncodeBigEndian(f)); err != nil {
			enc.Close()
			return fmt.Errorf("zstd write '%s': %w", filename, err)
		}
		return enc.Close()
	}

	if _, err := writer.Write(EncodeBigEndian(f)); err != nil {
		return fmt.Errorf("write '%s': %w", filename, err)
	}
	return nil
}
