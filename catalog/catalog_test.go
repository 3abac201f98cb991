package catalog

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ephemeralab/mpeph/format"
)

func TestBodyByName(t *testing.T) {
	body, err := BodyByName("mars")
	require.NoError(t, err)
	require.Equal(t, format.BodyMars, body)

	_, err = BodyByName("vulcan")
	require.Error(t, err)
	require.Contains(t, err.Error(), "vulcan")

	_, err = BodyByName("")
	require.Error(t, err)
}

func TestQuantityByName(t *testing.T) {
	q, err := QuantityByName("ecliptic-longitude")
	require.NoError(t, err)
	require.Equal(t, format.EclipticLongitude, q)

	_, err = QuantityByName("spin")
	require.Error(t, err)
}

func TestBodies(t *testing.T) {
	bodies := Bodies()
	require.Len(t, bodies, 10)
	require.True(t, sort.SliceIsSorted(bodies, func(i, j int) bool {
		return bodies[i].String() < bodies[j].String()
	}))

	// Every listed body resolves back through the name table.
	for _, b := range bodies {
		got, err := BodyByName(b.String())
		require.NoError(t, err)
		require.Equal(t, b, got)
	}
}

func TestQuantities(t *testing.T) {
	quantities := Quantities()
	require.Len(t, quantities, 11)
	for _, q := range quantities {
		got, err := QuantityByName(q.String())
		require.NoError(t, err)
		require.Equal(t, q, got)
	}
}

func TestSeriesID(t *testing.T) {
	a := SeriesID(format.BodyMars, format.EclipticLongitude)
	require.NotZero(t, a)
	require.Equal(t, a, SeriesID(format.BodyMars, format.EclipticLongitude))
	require.NotEqual(t, a, SeriesID(format.BodyVenus, format.EclipticLongitude))
	require.NotEqual(t, a, SeriesID(format.BodyMars, format.Distance))
}
