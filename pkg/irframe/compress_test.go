package irframe

import(
	"errors"
	"math/rand"
	"testing"
)

func randomFrame16(w, h int, seed int64) *Frame16 {
	rng := rand.New(rand.NewSource(seed))
	f, _ := NewFrame16(w, h)
	for i := range f.Pix {
		f.Pix[i] = uint16(rng.Intn(MaxSample + 1))
	}
	return f
}

func TestCompressExtremes(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		f := randomFrame16(64, 48, seed)
		minv, maxv := f.MinMax()

		out, err := Compress(f)
		if err != nil {
			t.Fatalf("seed %d: Compress: %v", seed, err)
		}

		for i, v := range f.Pix {
			switch v {
			case minv:
				if out.Pix[i] != 0 {
					t.Fatalf("seed %d: min sample %d mapped to %d, want 0", seed, v, out.Pix[i])
				}
			case maxv:
				if out.Pix[i] != 255 {
					t.Fatalf("seed %d: max sample %d mapped to %d, want 255", seed, v, out.Pix[i])
				}
			}
		}
	}
}

func TestCompressKnownValues(t *testing.T) {
	f, _ := NewFrame16(4, 1)
	copy(f.Pix, []uint16{100, 200, 150, 101})

	out, err := Compress(f)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}

	// (150-100)/100*255 = 127.5 -> 127; (101-100)/100*255 = 2.55 -> 2
	want := []uint8{0, 255, 127, 2}
	for i := range want {
		if out.Pix[i] != want[i] {
			t.Errorf("pixel %d = %d, want %d", i, out.Pix[i], want[i])
		}
	}
}

func TestCompressIsMonotonic(t *testing.T) {
	f, _ := NewFrame16(MaxSample+1, 1)
	for i := range f.Pix {
		f.Pix[i] = uint16(i)
	}
	out, err := Compress(f)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	for i:=1; i<len(out.Pix); i++ {
		if out.Pix[i] < out.Pix[i-1] {
			t.Fatalf("output drops at %d: %d < %d", i, out.Pix[i], out.Pix[i-1])
		}
	}
}

func TestCompressFlatFrame(t *testing.T) {
	f, _ := NewFrame16(8, 8)
	for i := range f.Pix {
		f.Pix[i] = 8192
	}
	if _, err := Compress(f); !errors.Is(err, ErrDegenerateFrame) {
		t.Fatalf("got %v, want ErrDegenerateFrame", err)
	}
}

func TestCompressDoesNotMutateInput(t *testing.T) {
	f := randomFrame16(16, 16, 42)
	before := append([]uint16(nil), f.Pix...)
	if _, err := Compress(f); err != nil {
		t.Fatalf("Compress: %v", err)
	}
	for i := range before {
		if f.Pix[i] != before[i] {
			t.Fatalf("input mutated at %d", i)
		}
	}
}

func TestComputeStats(t *testing.T) {
	f, _ := NewFrame16(10, 10)
	for i := range f.Pix {
		f.Pix[i] = uint16(i)
	}

	s, err := ComputeStats(f)
	if err != nil {
		t.Fatalf("ComputeStats: %v", err)
	}
	if s.Count != 100 || s.Min != 0 || s.Max != 99 {
		t.Errorf("got %s", s)
	}
	if s.Mean < 49 || s.Mean > 50 {
		t.Errorf("mean = %f, want ~49.5", s.Mean)
	}
}

func TestComputeStatsExactRange(t *testing.T) {
	// Typical 14 bit values, where the histogram buckets are several levels wide
	f, _ := NewFrame16(4, 1)
	copy(f.Pix, []uint16{7001, 9000, 12000, 16383})

	s, err := ComputeStats(f)
	if err != nil {
		t.Fatalf("ComputeStats: %v", err)
	}
	if s.Min != 7001 || s.Max != 16383 {
		t.Errorf("range [%d,%d], want [7001,16383]", s.Min, s.Max)
	}
}
