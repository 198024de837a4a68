package irframe

import(
	"fmt"

	"github.com/codahale/hdrhistogram"
)

// Stats summarizes the distribution of samples in a Frame16. Useful for
// spotting dead or saturated sensors before compression flattens it all.
type Stats struct {
	Min, Max       int64
	Mean, StdDev   float64
	P1, P50, P99   int64
	Count          int64
}

func (s Stats)String() string {
	return fmt.Sprintf("n=%d, range[%d,%d], mean %.1f (sd %.1f), p1/p50/p99 = %d/%d/%d",
		s.Count, s.Min, s.Max, s.Mean, s.StdDev, s.P1, s.P50, s.P99)
}

// ComputeStats records every sample into an HDR histogram. Three
// significant figures is plenty for 14 bit data, but above 2047 the
// buckets are wider than one level, so mean, stddev & percentiles are
// approximate. Min & Max come straight from the frame, and are exact.
func ComputeStats(f *Frame16) (Stats, error) {
	h := hdrhistogram.New(0, MaxSample, 3)

	for y:=0; y<f.Height; y++ {
		for _, v := range f.Row(y) {
			if err := h.RecordValue(int64(v)); err != nil {
				return Stats{}, fmt.Errorf("stats: sample %d: %w", v, err)
			}
		}
	}

	minv, maxv := f.MinMax()
	return Stats{
		Min:     int64(minv),
		Max:     int64(maxv),
		Mean:    h.Mean(),
		StdDev:  h.StdDev(),
		P1:      h.ValueAtQuantile(1),
		P50:     h.ValueAtQuantile(50),
		P99:     h.ValueAtQuantile(99),
		Count:   h.TotalCount(),
	}, nil
}
