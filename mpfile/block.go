package mpfile

import (
	"github.com/ephemeralab/mpeph/fit"
	"github.com/ephemeralab/mpeph/format"
)

// Block is one immutable polynomial approximation unit: a precision tier
// tag, a half-open time window, coefficients in ascending degree valid on
// the window's normalized [-1, 1] domain, and the residual the fit achieved.
//
// Blocks are produced in bulk by the generator and never mutated afterward.
type Block struct {
	Coeffs   []float64
	Window   fit.Window
	Residual float64
	Tier     format.Tier
}
