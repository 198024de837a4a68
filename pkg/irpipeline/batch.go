package irpipeline

import(
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/codahale/hdrhistogram"
	"golang.org/x/sync/errgroup"
)

var ErrOutputCollision = errors.New("irpipeline: output name already used by another input")

// Per-frame latencies are recorded in microseconds, up to a minute.
const maxLatencyMicros = int64(60 * time.Second / time.Microsecond)

// A Report gathers up the results of a batch. Frames are independent,
// so one bad file doesn't stop the rest unless FailFast is set.
type Report struct {
	Outcomes  []Outcome
	Failed    map[string]error

	latency  *hdrhistogram.Histogram
	mu        sync.Mutex
}

func newReport() *Report {
	return &Report{
		Failed:  map[string]error{},
		latency: hdrhistogram.New(1, maxLatencyMicros, 3),
	}
}

func (r *Report)add(o Outcome, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err != nil {
		r.Failed[o.Input] = err
		return
	}
	r.Outcomes = append(r.Outcomes, o)

	us := o.Elapsed.Microseconds()
	if us < 1 {
		us = 1
	} else if us > maxLatencyMicros {
		us = maxLatencyMicros
	}
	r.latency.RecordValue(us)
}

// Latency returns the given percentile of per-frame processing time.
func (r *Report)Latency(q float64) time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return time.Duration(r.latency.ValueAtQuantile(q)) * time.Microsecond
}

func (r *Report)String() string {
	return fmt.Sprintf("%d frames ok, %d failed; latency p50=%s p99=%s max=%s",
		len(r.Outcomes), len(r.Failed), r.Latency(50), r.Latency(99), r.Latency(100))
}

// FailedFiles lists the files that failed, sorted.
func (r *Report)FailedFiles() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	files := []string{}
	for f := range r.Failed {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

// RunBatch processes the files in parallel, cfg.Workers at a time. The
// config must have been finalized. Inputs whose outputs would land on
// the same names are failed up front with ErrOutputCollision, rather
// than silently overwriting each other. The error is only non-nil when
// the batch was cut short: by ctx, or by a failure under FailFast.
func RunBatch(ctx context.Context, cfg Config, files []string) (*Report, error) {
	r := newReport()
	if err := cfg.EnsureOutputDir(); err != nil {
		return r, err
	}

	todo, err := cfg.checkOutputNames(r, files)
	if err != nil {
		return r, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)

	for _, file := range todo {
		file := file
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			o, err := cfg.ProcessFile(file)
			r.add(o, err)

			if err != nil {
				log.Printf("%s: %v", file, err)
				if cfg.FailFast {
					return err
				}
			} else if cfg.Verbosity > 0 {
				log.Printf("%s", o)
			}
			return nil
		})
	}

	err = g.Wait()
	return r, err
}

// checkOutputNames fails any file whose outputs would overwrite those of
// an earlier file (e.g. seq1/frame.raw and seq2/frame.raw, or frame.raw
// and frame.tif), and returns the files that are safe to process.
func (c Config)checkOutputNames(r *Report, files []string) ([]string, error) {
	todo := []string{}
	seen := map[string]string{}

	for _, file := range files {
		base := c.outputBase(file)
		if first, exists := seen[base]; exists {
			err := fmt.Errorf("%w: '%s' and '%s' both write %s-*", ErrOutputCollision, first, file, base)
			r.add(Outcome{Input: file}, err)
			log.Printf("%s: %v", file, err)
			if c.FailFast {
				return todo, err
			}
			continue
		}
		seen[base] = file
		todo = append(todo, file)
	}

	return todo, nil
}
