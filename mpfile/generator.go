package mpfile

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ephemeralab/mpeph/errs"
	"github.com/ephemeralab/mpeph/fit"
	"github.com/ephemeralab/mpeph/format"
	"github.com/ephemeralab/mpeph/internal/options"
	"github.com/ephemeralab/mpeph/mjd"
)

// Generator drives sampling and fitting to produce multi-precision files.
//
// Fitting is embarrassingly parallel across windows and runs on a worker
// pool; sample fetching goes through a separate, narrower semaphore so a
// rate-limited source is not hammered by CPU-sized parallelism. Any window
// failure cancels the whole run: the generator never publishes a partial
// file.
type Generator struct {
	src    SampleSource
	policy TierPolicy
	retry  RetryPolicy
	logger zerolog.Logger

	fitWorkers    int
	fetchParallel int

	writerOpts []WriterOption
}

// GeneratorOption configures a Generator.
type GeneratorOption = options.Option[*Generator]

// WithTierPolicy injects the precision-tier policy. Defaults to
// DefaultPolicy().
func WithTierPolicy(p TierPolicy) GeneratorOption {
	return options.NoError(func(g *Generator) { g.policy = p })
}

// WithRetryPolicy sets the sample-fetch retry policy. The default performs
// no retries.
func WithRetryPolicy(p RetryPolicy) GeneratorOption {
	return options.NoError(func(g *Generator) { g.retry = p })
}

// WithFitWorkers sets the size of the fitting worker pool. Defaults to
// GOMAXPROCS.
func WithFitWorkers(n int) GeneratorOption {
	return options.New(func(g *Generator) error {
		if n <= 0 {
			return fmt.Errorf("fit workers must be positive, got %d", n)
		}
		g.fitWorkers = n

		return nil
	})
}

// WithFetchParallelism bounds concurrent SampleSource calls. Defaults to 1,
// which serializes fetches for rate-limited sources.
func WithFetchParallelism(n int) GeneratorOption {
	return options.New(func(g *Generator) error {
		if n <= 0 {
			return fmt.Errorf("fetch parallelism must be positive, got %d", n)
		}
		g.fetchParallel = n

		return nil
	})
}

// WithLogger sets the generator's logger. Defaults to a no-op logger.
func WithLogger(logger zerolog.Logger) GeneratorOption {
	return options.NoError(func(g *Generator) { g.logger = logger })
}

// WithWriterOptions forwards options (such as byte order) to the file writer.
func WithWriterOptions(opts ...WriterOption) GeneratorOption {
	return options.NoError(func(g *Generator) { g.writerOpts = append(g.writerOpts, opts...) })
}

// NewGenerator creates a generator backed by the given sample source.
func NewGenerator(src SampleSource, opts ...GeneratorOption) (*Generator, error) {
	g := &Generator{
		src:           src,
		policy:        DefaultPolicy(),
		logger:        zerolog.Nop(),
		fitWorkers:    runtime.GOMAXPROCS(0),
		fetchParallel: 1,
	}

	if err := options.Apply(g, opts...); err != nil {
		return nil, err
	}

	return g, nil
}

// fitJob is one window of one tier awaiting sampling and fitting.
type fitJob struct {
	spec   TierSpec
	window fit.Window
	index  int
}

// Generate produces a serialized multi-precision file for the body and
// quantity over the half-open coverage [start, end).
//
// The result is deterministic for a deterministic source and policy:
// completion order of the parallel fits is irrelevant because blocks are
// assembled by window position before the writer runs.
func (g *Generator) Generate(ctx context.Context, body format.Body, quantity format.Quantity, start, end time.Time) ([]byte, error) {
	writer, blocks, err := g.generate(ctx, body, quantity, start, end)
	if err != nil {
		return nil, err
	}

	for _, b := range blocks {
		if err := writer.AddBlock(b); err != nil {
			return nil, err
		}
	}

	return writer.Finish()
}

// GenerateFile generates and atomically publishes a file at path. On any
// failure no file is left behind at path.
func (g *Generator) GenerateFile(ctx context.Context, body format.Body, quantity format.Quantity, start, end time.Time, path string) error {
	writer, blocks, err := g.generate(ctx, body, quantity, start, end)
	if err != nil {
		return err
	}

	for _, b := range blocks {
		if err := writer.AddBlock(b); err != nil {
			return err
		}
	}

	return writer.WriteFile(path)
}

func (g *Generator) generate(ctx context.Context, body format.Body, quantity format.Quantity, start, end time.Time) (*Writer, []Block, error) {
	if start.IsZero() || end.IsZero() {
		return nil, nil, errs.ErrNaiveTime
	}

	startMd := mjd.FromTime(start)
	endMd := mjd.FromTime(end)
	if startMd >= endMd {
		return nil, nil, errs.ErrInvalidCoverage
	}

	specs := g.policy.Specs(quantity)
	if len(specs) == 0 {
		return nil, nil, errs.ErrNoTiersConfigured
	}

	for _, spec := range specs {
		if spec.Tier.WindowDays() <= 0 || spec.Epsilon <= 0 || spec.MaxDegree < 1 {
			return nil, nil, fmt.Errorf("%w: invalid spec for tier %s", errs.ErrNoTiersConfigured, spec.Tier)
		}
		if spec.SamplesPerWindow < spec.MaxDegree+2 {
			return nil, nil, fmt.Errorf("%w: tier %s needs at least %d samples per window",
				errs.ErrNoTiersConfigured, spec.Tier, spec.MaxDegree+2)
		}
	}

	jobs := partition(specs, startMd, endMd)

	g.logger.Info().
		Stringer("body", body).
		Stringer("quantity", quantity).
		Int("tiers", len(specs)).
		Int("windows", len(jobs)).
		Msg("generating multi-precision file")

	blocks, err := g.fitAll(ctx, body, quantity, jobs)
	if err != nil {
		return nil, nil, err
	}

	writer, err := NewWriter(body, quantity, start, end, g.writerOpts...)
	if err != nil {
		return nil, nil, err
	}

	return writer, blocks, nil
}

// partition splits the coverage into each tier's aligned windows. The final
// window of a tier is clamped to the coverage end so every tier covers the
// full interval with no gap.
func partition(specs []TierSpec, startMd, endMd int64) []fitJob {
	var jobs []fitJob
	for _, spec := range specs {
		width := spec.Tier.WindowDays() * mjd.MicrodaysPerDay
		for ws := startMd; ws < endMd; ws += width {
			we := ws + width
			if we > endMd {
				we = endMd
			}
			jobs = append(jobs, fitJob{
				spec:   spec,
				window: fit.Window{Start: ws, End: we},
				index:  len(jobs),
			})
		}
	}

	return jobs
}

// fitAll runs the fetch/fit pipeline over all jobs. The first error cancels
// the remaining work and is returned; blocks come back in job order.
func (g *Generator) fitAll(ctx context.Context, body format.Body, quantity format.Quantity, jobs []fitJob) ([]Block, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobCh := make(chan fitJob)
	blocks := make([]Block, len(jobs))
	fetchSem := make(chan struct{}, g.fetchParallel)

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)

	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			cancel()
		})
	}

	workers := g.fitWorkers
	if workers > len(jobs) {
		workers = len(jobs)
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobCh {
				block, err := g.fitWindow(ctx, body, quantity, job, fetchSem)
				if err != nil {
					fail(err)

					return
				}
				blocks[job.index] = block
			}
		}()
	}

	// Feed jobs until done or canceled.
	for _, job := range jobs {
		select {
		case jobCh <- job:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
	}
	close(jobCh)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return blocks, nil
}

// fitWindow fetches one window's samples (through the fetch semaphore, with
// retries) and fits its block.
func (g *Generator) fitWindow(ctx context.Context, body format.Body, quantity format.Quantity, job fitJob, fetchSem chan struct{}) (Block, error) {
	spec := job.spec

	wStart := mjd.ToTime(job.window.Start)
	wEnd := mjd.ToTime(job.window.End)
	step := wEnd.Sub(wStart) / time.Duration(spec.SamplesPerWindow-1)

	samples, err := g.fetch(ctx, body, quantity, wStart, wEnd, step, fetchSem)
	if err != nil {
		return Block{}, fmt.Errorf("window [%s, %s): %w",
			wStart.Format(time.RFC3339), wEnd.Format(time.RFC3339), err)
	}

	if len(samples) < spec.SamplesPerWindow {
		return Block{}, fmt.Errorf("%w: got %d of %d samples for window [%s, %s)",
			errs.ErrShortSampleWindow, len(samples), spec.SamplesPerWindow,
			wStart.Format(time.RFC3339), wEnd.Format(time.RFC3339))
	}

	times := make([]int64, len(samples))
	values := make([]float64, len(samples))
	for i, s := range samples {
		times[i] = mjd.FromTime(s.Time)
		values[i] = s.Value
	}

	result, err := fit.Fit(times, values, job.window, quantity.IsAngular(), spec.Epsilon, spec.MaxDegree)
	if err != nil {
		return Block{}, fmt.Errorf("tier %s window [%s, %s): %w",
			spec.Tier, wStart.Format(time.RFC3339), wEnd.Format(time.RFC3339), err)
	}

	g.logger.Debug().
		Stringer("tier", spec.Tier).
		Time("start", wStart).
		Int("degree", result.Degree()).
		Float64("residual", result.Residual).
		Msg("fitted block")

	return Block{
		Tier:     spec.Tier,
		Window:   job.window,
		Coeffs:   result.Coeffs,
		Residual: result.Residual,
	}, nil
}

// fetch calls the sample source under the fetch semaphore, retrying per the
// configured policy. All failures wrap ErrSourceUnavailable.
func (g *Generator) fetch(ctx context.Context, body format.Body, quantity format.Quantity, start, end time.Time, step time.Duration, sem chan struct{}) ([]Sample, error) {
	select {
	case sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-sem }()

	var lastErr error
	for attempt := 0; attempt <= g.retry.Attempts; attempt++ {
		if attempt > 0 {
			g.logger.Warn().
				Err(lastErr).
				Int("attempt", attempt).
				Msg("retrying sample fetch")

			select {
			case <-time.After(g.retry.Backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		samples, err := g.src.Samples(ctx, body, quantity, start, end, step)
		if err == nil {
			return samples, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	if errors.Is(lastErr, errs.ErrSourceUnavailable) {
		return nil, lastErr
	}

	return nil, fmt.Errorf("%w: %w", errs.ErrSourceUnavailable, lastErr)
}
