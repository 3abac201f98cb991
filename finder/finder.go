// Package finder searches ephemeris series for events of interest:
// retrograde stations and planetary aspects.
//
// Searches consume only the ephem.Producer capability, so they run equally
// against opened multi-precision files and remote sources. Both searches use
// the same scheme: scan with a fixed stride to bracket a sign change, then
// refine the bracket by bisection down to a time tolerance.
package finder

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/ephemeralab/mpeph/internal/options"
)

const (
	defaultStride    = 24 * time.Hour
	defaultTolerance = time.Minute

	// derivativeStep is the finite-difference step for apparent motion.
	derivativeStep = time.Hour
)

// Search carries the scan parameters shared by the finders.
type Search struct {
	stride    time.Duration
	tolerance time.Duration
}

// SearchOption configures a search.
type SearchOption = options.Option[*Search]

// WithStride sets the coarse scan stride. Events closer together than the
// stride may be missed; the default is one day.
func WithStride(d time.Duration) SearchOption {
	return options.New(func(s *Search) error {
		if d <= 0 {
			return fmt.Errorf("stride must be positive, got %v", d)
		}
		s.stride = d

		return nil
	})
}

// WithTolerance sets the bisection stop width. The default is one minute.
func WithTolerance(d time.Duration) SearchOption {
	return options.New(func(s *Search) error {
		if d <= 0 {
			return fmt.Errorf("tolerance must be positive, got %v", d)
		}
		s.tolerance = d

		return nil
	})
}

func newSearch(opts ...SearchOption) (Search, error) {
	s := Search{stride: defaultStride, tolerance: defaultTolerance}
	if err := options.Apply(&s, opts...); err != nil {
		return Search{}, err
	}

	return s, nil
}

// signedDelta returns the shortest signed angular difference a-b in degrees,
// in (-180, 180].
func signedDelta(a, b float64) float64 {
	d := math.Mod(a-b, 360)
	if d <= -180 {
		d += 360
	} else if d > 180 {
		d -= 360
	}

	return d
}

// bisect narrows [lo, hi], where f(lo) and f(hi) have opposite signs, until
// the bracket is no wider than tol, and returns the midpoint.
func bisect(ctx context.Context, lo, hi time.Time, flo float64, tol time.Duration, f func(context.Context, time.Time) (float64, error)) (time.Time, error) {
	for hi.Sub(lo) > tol {
		if err := ctx.Err(); err != nil {
			return time.Time{}, err
		}

		mid := lo.Add(hi.Sub(lo) / 2)
		fmid, err := f(ctx, mid)
		if err != nil {
			return time.Time{}, err
		}

		if (flo < 0) == (fmid < 0) {
			lo, flo = mid, fmid
		} else {
			hi = mid
		}
	}

	return lo.Add(hi.Sub(lo) / 2), nil
}
