package finder

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/ephemeralab/mpeph/ephem"
)

// Aspect is a target angular separation between two bodies, in degrees.
type Aspect float64

const (
	Conjunction Aspect = 0
	Sextile     Aspect = 60
	Square      Aspect = 90
	Trine       Aspect = 120
	Opposition  Aspect = 180
)

func (a Aspect) String() string {
	switch a {
	case Conjunction:
		return "conjunction"
	case Sextile:
		return "sextile"
	case Square:
		return "square"
	case Trine:
		return "trine"
	case Opposition:
		return "opposition"
	default:
		return "aspect"
	}
}

// MajorAspects lists the five Ptolemaic aspects.
func MajorAspects() []Aspect {
	return []Aspect{Conjunction, Sextile, Square, Trine, Opposition}
}

// Event is an exact aspect between two bodies.
type Event struct {
	Time   time.Time
	Aspect Aspect
}

// Aspects finds the times in [start, end] where the separation between the
// longitudes of a and b equals one of the target aspects.
//
// Both producers should evaluate angular longitude quantities. A separation
// of 60 degrees matches the sextile whether a leads b or b leads a; each
// aspect other than conjunction and opposition therefore has two crossing
// branches, and both are searched. Results are ordered by time.
func Aspects(ctx context.Context, a, b ephem.Producer, aspects []Aspect, start, end time.Time, opts ...SearchOption) ([]Event, error) {
	s, err := newSearch(opts...)
	if err != nil {
		return nil, err
	}

	sep := func(ctx context.Context, t time.Time) (float64, error) {
		va, err := a.Value(ctx, t)
		if err != nil {
			return 0, err
		}

		vb, err := b.Value(ctx, t)
		if err != nil {
			return 0, err
		}

		d := math.Mod(va-vb, 360)
		if d < 0 {
			d += 360
		}

		return d, nil
	}

	// Each target angle in [0, 360) whose crossing realizes an aspect.
	type target struct {
		angle  float64
		aspect Aspect
	}

	var targets []target
	for _, asp := range aspects {
		targets = append(targets, target{angle: float64(asp), aspect: asp})
		if mirror := 360 - float64(asp); mirror != float64(asp) && mirror != 360 {
			targets = append(targets, target{angle: mirror, aspect: asp})
		}
	}

	var events []Event

	prev := start
	prevSep, err := sep(ctx, prev)
	if err != nil {
		return nil, err
	}

	for t := start.Add(s.stride); !t.After(end); t = t.Add(s.stride) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		cur, err := sep(ctx, t)
		if err != nil {
			return nil, err
		}

		for _, tgt := range targets {
			f := func(ctx context.Context, at time.Time) (float64, error) {
				v, err := sep(ctx, at)
				if err != nil {
					return 0, err
				}

				return signedDelta(v, tgt.angle), nil
			}

			flo := signedDelta(prevSep, tgt.angle)
			fhi := signedDelta(cur, tgt.angle)

			// A genuine crossing moves through the target by less than a
			// half turn; a sign flip from wrapping spans nearly 360.
			if (flo < 0) == (fhi < 0) || math.Abs(flo-fhi) > 180 {
				continue
			}

			at, err := bisect(ctx, prev, t, flo, s.tolerance, f)
			if err != nil {
				return nil, err
			}

			events = append(events, Event{Time: at, Aspect: tgt.aspect})
		}

		prev, prevSep = t, cur
	}

	sort.Slice(events, func(i, j int) bool { return events[i].Time.Before(events[j].Time) })

	return events, nil
}
