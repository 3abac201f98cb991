package fit

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUnwrap(t *testing.T) {
	t.Run("Continuous sequence unchanged", func(t *testing.T) {
		in := []float64{10, 20, 30, 40}
		require.Equal(t, in, Unwrap(in))
	})

	t.Run("Forward crossing of 360", func(t *testing.T) {
		in := []float64{350, 355, 0, 5, 10}
		out := Unwrap(in)
		require.Equal(t, []float64{350, 355, 360, 365, 370}, out)
	})

	t.Run("Backward crossing of 0", func(t *testing.T) {
		in := []float64{10, 5, 355, 350}
		out := Unwrap(in)
		require.Equal(t, []float64{10, 5, -5, -10}, out)
	})

	t.Run("Multiple wraps", func(t *testing.T) {
		// A fast mover covering 200 degrees per step always takes the
		// shortest branch, so steps look like -160 after unwrapping.
		in := []float64{0, 200, 40, 240}
		out := Unwrap(in)
		require.Equal(t, []float64{0, -160, -320, -480}, out)
	})

	t.Run("Input not modified", func(t *testing.T) {
		in := []float64{350, 10}
		_ = Unwrap(in)
		require.Equal(t, []float64{350, 10}, in)
	})

	t.Run("Empty", func(t *testing.T) {
		require.Empty(t, Unwrap(nil))
	})
}

func TestRewrap(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{359.5, 359.5},
		{360, 0},
		{365, 5},
		{725, 5},
		{-5, 355},
		{-365, 355},
	}

	for _, tc := range cases {
		require.InDelta(t, tc.want, Rewrap(tc.in), 1e-12, "in=%v", tc.in)
	}
}
