package finder

import (
	"context"
	"time"

	"github.com/ephemeralab/mpeph/ephem"
)

// Station is a moment where a body's apparent motion in longitude reverses.
type Station struct {
	Time time.Time

	// Retrograde reports the direction after the station: true when the
	// body turns retrograde, false when it resumes direct motion.
	Retrograde bool
}

// Retrogrades finds the stations of p's longitude motion in [start, end].
//
// The producer should evaluate an angular longitude quantity. The scan
// samples the apparent rate at each stride and refines every sign change by
// bisection, so stations separated by less than one stride may be missed.
// Results are ordered by time.
func Retrogrades(ctx context.Context, p ephem.Producer, start, end time.Time, opts ...SearchOption) ([]Station, error) {
	s, err := newSearch(opts...)
	if err != nil {
		return nil, err
	}

	rate := func(ctx context.Context, t time.Time) (float64, error) {
		v0, err := p.Value(ctx, t)
		if err != nil {
			return 0, err
		}

		v1, err := p.Value(ctx, t.Add(derivativeStep))
		if err != nil {
			return 0, err
		}

		// Wrap-aware difference keeps the rate continuous across 0/360.
		return signedDelta(v1, v0) / derivativeStep.Hours(), nil
	}

	var stations []Station

	prev := start
	prevRate, err := rate(ctx, prev)
	if err != nil {
		return nil, err
	}

	for t := start.Add(s.stride); !t.After(end); t = t.Add(s.stride) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		r, err := rate(ctx, t)
		if err != nil {
			return nil, err
		}

		if (prevRate < 0) != (r < 0) {
			at, err := bisect(ctx, prev, t, prevRate, s.tolerance, rate)
			if err != nil {
				return nil, err
			}

			stations = append(stations, Station{Time: at, Retrograde: r < 0})
		}

		prev, prevRate = t, r
	}

	return stations, nil
}
