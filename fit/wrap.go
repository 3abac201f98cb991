package fit

import "math"

// Unwrap returns a continuous copy of a modulo-360 angular sequence.
//
// Each successive value is shifted by the multiple of 360 that minimizes the
// jump from its predecessor, turning a sequence that wraps at the 0/360
// boundary into one suitable for least-squares fitting. The first value is
// kept as-is; the result may leave [0, 360) freely.
func Unwrap(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}

	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		delta := values[i] - values[i-1]
		turns := math.Round(delta / 360)
		out[i] = out[i-1] + delta - turns*360
	}

	return out
}

// Rewrap reduces an unwrapped angular value into the public [0, 360)
// convention. The inverse of Unwrap, applied after evaluation.
func Rewrap(v float64) float64 {
	v = math.Mod(v, 360)
	if v < 0 {
		v += 360
	}

	return v
}
