// Package ephem abstracts "where do ephemeris values come from" behind a
// single Producer capability.
//
// Consumers such as the retrograde and aspect finders only need point
// evaluation and series extraction; they do not care whether the values come
// from an opened multi-precision file, a remote sample service, or a cached
// one. The implementation is chosen once at construction and never inspected
// again at query time.
package ephem

import (
	"context"
	"fmt"
	"time"

	"github.com/ephemeralab/mpeph/format"
	"github.com/ephemeralab/mpeph/horizons"
	"github.com/ephemeralab/mpeph/mpfile"
	"github.com/ephemeralab/mpeph/samplecache"
)

// Producer evaluates one ephemeris series, a single (body, quantity) pair.
type Producer interface {
	// Body and Quantity identify the series this producer evaluates.
	Body() format.Body
	Quantity() format.Quantity

	// Value evaluates the quantity at t.
	Value(ctx context.Context, t time.Time) (float64, error)

	// Series returns samples over [start, end] at the given step, inclusive
	// of both endpoints when the span is an exact multiple of step.
	Series(ctx context.Context, start, end time.Time, step time.Duration) ([]mpfile.Sample, error)
}

// fileProducer evaluates from an opened multi-precision file.
type fileProducer struct {
	f *mpfile.File
}

// FromFile creates a Producer backed by an opened file. The caller keeps
// ownership of the file and must not close it while the producer is in use.
func FromFile(f *mpfile.File) (Producer, error) {
	if f == nil {
		return nil, fmt.Errorf("file must not be nil")
	}

	return &fileProducer{f: f}, nil
}

func (p *fileProducer) Body() format.Body         { return p.f.Body() }
func (p *fileProducer) Quantity() format.Quantity { return p.f.Quantity() }

func (p *fileProducer) Value(ctx context.Context, t time.Time) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	return p.f.Evaluate(t)
}

func (p *fileProducer) Series(ctx context.Context, start, end time.Time, step time.Duration) ([]mpfile.Sample, error) {
	if step <= 0 {
		return nil, fmt.Errorf("step must be positive, got %v", step)
	}

	var samples []mpfile.Sample
	for t := start; !t.After(end); t = t.Add(step) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		v, err := p.f.Evaluate(t)
		if err != nil {
			return nil, err
		}

		samples = append(samples, mpfile.Sample{Time: t, Value: v})
	}

	return samples, nil
}

// sourceProducer evaluates by fetching from a SampleSource.
type sourceProducer struct {
	src      mpfile.SampleSource
	body     format.Body
	quantity format.Quantity
}

// pointStep is the step used when a single point is requested from a source.
const pointStep = time.Minute

// FromSource creates a Producer that fetches from src, typically a horizons
// client or a samplecache wrapper around one.
func FromSource(src mpfile.SampleSource, body format.Body, quantity format.Quantity) (Producer, error) {
	if src == nil {
		return nil, fmt.Errorf("sample source must not be nil")
	}

	return &sourceProducer{src: src, body: body, quantity: quantity}, nil
}

// FromRemote creates a Producer backed directly by a remote horizons client.
func FromRemote(client *horizons.Client, body format.Body, quantity format.Quantity) (Producer, error) {
	return FromSource(client, body, quantity)
}

// FromCachedRemote creates a Producer backed by a remote horizons client
// behind a sample cache.
func FromCachedRemote(client *horizons.Client, body format.Body, quantity format.Quantity, cacheOpts ...samplecache.CacheOption) (Producer, error) {
	cache, err := samplecache.New(client, cacheOpts...)
	if err != nil {
		return nil, err
	}

	return FromSource(cache, body, quantity)
}

func (p *sourceProducer) Body() format.Body         { return p.body }
func (p *sourceProducer) Quantity() format.Quantity { return p.quantity }

func (p *sourceProducer) Value(ctx context.Context, t time.Time) (float64, error) {
	samples, err := p.src.Samples(ctx, p.body, p.quantity, t, t, pointStep)
	if err != nil {
		return 0, err
	}

	if len(samples) == 0 {
		return 0, fmt.Errorf("source returned no sample for %s", t.UTC().Format(time.RFC3339))
	}

	return samples[0].Value, nil
}

func (p *sourceProducer) Series(ctx context.Context, start, end time.Time, step time.Duration) ([]mpfile.Sample, error) {
	if step <= 0 {
		return nil, fmt.Errorf("step must be positive, got %v", step)
	}

	return p.src.Samples(ctx, p.body, p.quantity, start, end, step)
}
