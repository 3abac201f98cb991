package fit

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ephemeralab/mpeph/errs"
)

// sampleWindow evenly samples fn over the window with n points, inclusive of
// both edges.
func sampleWindow(w Window, n int, fn func(x float64) float64) (times []int64, values []float64) {
	times = make([]int64, n)
	values = make([]float64, n)
	for i := 0; i < n; i++ {
		md := w.Start + int64(i)*(w.End-w.Start)/int64(n-1)
		times[i] = md
		values[i] = fn(w.Normalize(md))
	}

	return times, values
}

func TestWindow_Normalize(t *testing.T) {
	w := Window{Start: 1000, End: 3000}

	require.InDelta(t, -1.0, w.Normalize(1000), 1e-15)
	require.InDelta(t, 0.0, w.Normalize(2000), 1e-15)
	require.InDelta(t, 1.0, w.Normalize(3000), 1e-15)

	require.True(t, w.Contains(1000))
	require.True(t, w.Contains(2999))
	require.False(t, w.Contains(3000))
	require.Equal(t, int64(2000), w.Width())
}

func TestFit(t *testing.T) {
	w := Window{Start: 0, End: 30_000_000}

	t.Run("Recovers exact cubic", func(t *testing.T) {
		poly := func(x float64) float64 { return 2 - 3*x + 0.5*x*x*x }
		times, values := sampleWindow(w, 24, poly)

		result, err := Fit(times, values, w, false, 1e-9, 8)
		require.NoError(t, err)
		require.Equal(t, 3, result.Degree())
		require.LessOrEqual(t, result.Residual, 1e-9)
		require.InDelta(t, 2.0, result.Coeffs[0], 1e-8)
		require.InDelta(t, -3.0, result.Coeffs[1], 1e-8)
		require.InDelta(t, 0.5, result.Coeffs[3], 1e-8)
	})

	t.Run("Picks minimal degree", func(t *testing.T) {
		// A linear function must fit at degree 1 even with budget to spare.
		times, values := sampleWindow(w, 16, func(x float64) float64 { return 7 + 4*x })

		result, err := Fit(times, values, w, false, 1e-9, 10)
		require.NoError(t, err)
		require.Equal(t, 1, result.Degree())
	})

	t.Run("Constant fits at degree 1", func(t *testing.T) {
		times, values := sampleWindow(w, 8, func(float64) float64 { return 42 })

		result, err := Fit(times, values, w, false, 1e-9, 4)
		require.NoError(t, err)
		require.Equal(t, 1, result.Degree())
		require.InDelta(t, 42.0, Evaluate(result.Coeffs, 0.3), 1e-9)
	})

	t.Run("Tolerance failure", func(t *testing.T) {
		// A high-frequency sine cannot be captured by a low degree.
		times, values := sampleWindow(w, 64, func(x float64) float64 { return math.Sin(20 * x) })

		_, err := Fit(times, values, w, false, 1e-9, 3)
		require.Error(t, err)
		require.ErrorIs(t, err, errs.ErrFitTolerance)
		require.Contains(t, err.Error(), "best residual")
	})

	t.Run("Angular data fits across the wrap", func(t *testing.T) {
		// A linear motion passing through 0/360 is discontinuous as stored
		// but exactly linear after unwrapping.
		times, values := sampleWindow(w, 16, func(x float64) float64 {
			deg := 350 + 15*(x+1) // 350..380 across the window
			return math.Mod(deg, 360)
		})

		result, err := Fit(times, values, w, true, 1e-9, 6)
		require.NoError(t, err)
		require.Equal(t, 1, result.Degree())

		// The fitted polynomial lives in the unwrapped domain.
		require.InDelta(t, 365.0, Evaluate(result.Coeffs, 0), 1e-8)
	})

	t.Run("No samples", func(t *testing.T) {
		_, err := Fit(nil, nil, w, false, 1e-6, 4)
		require.ErrorIs(t, err, errs.ErrNoSamples)
	})

	t.Run("Mismatched lengths", func(t *testing.T) {
		_, err := Fit([]int64{1, 2}, []float64{1}, w, false, 1e-6, 4)
		require.ErrorIs(t, err, errs.ErrNoSamples)
	})

	t.Run("Inputs not modified", func(t *testing.T) {
		times, values := sampleWindow(w, 8, func(x float64) float64 {
			return math.Mod(355+10*(x+1), 360)
		})
		valuesCopy := append([]float64(nil), values...)

		_, err := Fit(times, values, w, true, 1e-6, 4)
		require.NoError(t, err)
		require.Equal(t, valuesCopy, values)
	})
}

func TestEvaluate(t *testing.T) {
	// 1 + 2x + 3x^2 at x=2 is 17.
	require.InDelta(t, 17.0, Evaluate([]float64{1, 2, 3}, 2), 1e-15)
	require.Equal(t, 0.0, Evaluate(nil, 1.5))
}
