package mpfile

import (
	"context"
	"time"

	"github.com/ephemeralab/mpeph/format"
)

// Sample is one externally supplied (timestamp, value) ephemeris point.
type Sample struct {
	Time  time.Time
	Value float64
}

// SampleSource supplies ordered ephemeris samples for a body and quantity.
//
// Implementations must return samples with strictly increasing timestamps
// covering [start, end] at the requested step. A shorter-than-expected
// sequence signals a data gap; sources never interpolate to hide one.
type SampleSource interface {
	Samples(ctx context.Context, body format.Body, quantity format.Quantity, start, end time.Time, step time.Duration) ([]Sample, error)
}

// SourceFunc adapts a plain function to the SampleSource interface.
type SourceFunc func(ctx context.Context, body format.Body, quantity format.Quantity, start, end time.Time, step time.Duration) ([]Sample, error)

// Samples implements SampleSource.
func (f SourceFunc) Samples(ctx context.Context, body format.Body, quantity format.Quantity, start, end time.Time, step time.Duration) ([]Sample, error) {
	return f(ctx, body, quantity, start, end, step)
}
