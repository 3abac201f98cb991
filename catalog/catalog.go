// Package catalog provides name lookups for the bodies and quantities the
// file format can encode. The tables are built once at package init and are
// immutable afterward, so lookups need no synchronization.
package catalog

import (
	"fmt"
	"sort"

	"github.com/ephemeralab/mpeph/format"
	"github.com/ephemeralab/mpeph/internal/hash"
)

var allBodies = []format.Body{
	format.BodySun,
	format.BodyMoon,
	format.BodyMercury,
	format.BodyVenus,
	format.BodyMars,
	format.BodyJupiter,
	format.BodySaturn,
	format.BodyUranus,
	format.BodyNeptune,
	format.BodyPluto,
}

var allQuantities = []format.Quantity{
	format.EclipticLongitude,
	format.EclipticLatitude,
	format.Distance,
	format.RightAscension,
	format.Declination,
	format.MeanAnomaly,
	format.ArgumentOfPerihelion,
	format.AscendingNode,
	format.Eccentricity,
	format.SemiMajorAxis,
	format.Inclination,
}

var (
	bodyByName     map[string]format.Body
	quantityByName map[string]format.Quantity
)

func init() {
	bodyByName = make(map[string]format.Body, len(allBodies))
	for _, b := range allBodies {
		bodyByName[b.String()] = b
	}

	quantityByName = make(map[string]format.Quantity, len(allQuantities))
	for _, q := range allQuantities {
		quantityByName[q.String()] = q
	}
}

// BodyByName resolves a lowercase body name ("mars") to its code.
func BodyByName(name string) (format.Body, error) {
	if b, ok := bodyByName[name]; ok {
		return b, nil
	}

	return format.BodyUnknown, fmt.Errorf("unknown body: %q", name)
}

// QuantityByName resolves a lowercase quantity name ("ecliptic-longitude")
// to its code.
func QuantityByName(name string) (format.Quantity, error) {
	if q, ok := quantityByName[name]; ok {
		return q, nil
	}

	return format.QuantityUnknown, fmt.Errorf("unknown quantity: %q", name)
}

// Bodies returns the known body codes sorted by name.
func Bodies() []format.Body {
	out := make([]format.Body, len(allBodies))
	copy(out, allBodies)
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })

	return out
}

// Quantities returns the known quantity codes sorted by name.
func Quantities() []format.Quantity {
	out := make([]format.Quantity, len(allQuantities))
	copy(out, allQuantities)
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })

	return out
}

// SeriesID derives a stable 64-bit identifier for a (body, quantity) series,
// used as the base of sample-cache keys.
func SeriesID(body format.Body, quantity format.Quantity) uint64 {
	return hash.ID(fmt.Sprintf("%s/%s", body, quantity))
}
