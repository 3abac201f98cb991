// Package fit implements least-squares polynomial fitting of sample windows
// for the multi-precision file generator.
//
// A fit maps sample timestamps into the window's normalized [-1, 1] domain,
// then searches polynomial degrees from 1 upward until the maximum absolute
// residual across the window drops below the caller's tolerance. Angular
// quantities are unwrapped into a continuous sequence before fitting so the
// 0/360 boundary never appears as a discontinuity.
package fit

import (
	"fmt"
	"math"

	"github.com/ephemeralab/mpeph/errs"
)

// minDegree is where the degree search starts. Degree 0 is excluded: even a
// constant quantity fits a degree-1 polynomial with a zero leading term.
const minDegree = 1

// Result holds the outcome of a successful fit.
type Result struct {
	// Coeffs are the polynomial coefficients in ascending degree, valid on
	// the window's normalized [-1, 1] domain.
	Coeffs []float64

	// Residual is the maximum absolute error across the fitted samples.
	Residual float64
}

// Degree returns the fitted polynomial degree.
func (r Result) Degree() int {
	return len(r.Coeffs) - 1
}

// Fit fits a minimal-degree polynomial to one sample window.
//
// times and values are parallel slices ordered by time; window supplies the
// normalized-domain mapping; angular selects modulo-360 unwrapping before
// fitting; eps is the maximum tolerated absolute residual and maxDegree the
// degree budget.
//
// Fit is a pure function: it never modifies its inputs and holds no state.
//
// Returns ErrNoSamples for an empty window, and ErrFitTolerance (wrapped
// with the best residual achieved) when no degree within the budget meets
// eps. It never silently returns an unverified approximation.
func Fit(times []int64, values []float64, window Window, angular bool, eps float64, maxDegree int) (Result, error) {
	if len(times) == 0 || len(times) != len(values) {
		return Result{}, errs.ErrNoSamples
	}

	if angular {
		values = Unwrap(values)
	}

	xs := make([]float64, len(times))
	for i, t := range times {
		xs[i] = window.Normalize(t)
	}

	best := math.Inf(1)
	for degree := minDegree; degree <= maxDegree; degree++ {
		// The system is underdetermined past len(xs)-1; higher degrees
		// cannot improve a fit the samples cannot resolve.
		if degree > len(xs)-1 {
			break
		}

		coeffs, ok := leastSquares(xs, values, degree)
		if !ok {
			continue
		}

		residual := maxResidual(xs, values, coeffs)
		if residual < best {
			best = residual
		}

		if residual <= eps {
			return Result{Coeffs: coeffs, Residual: residual}, nil
		}
	}

	return Result{}, fmt.Errorf("%w: best residual %.3g exceeds tolerance %.3g at max degree %d",
		errs.ErrFitTolerance, best, eps, maxDegree)
}

// Evaluate evaluates a polynomial with ascending-degree coefficients at x
// using Horner's method.
func Evaluate(coeffs []float64, x float64) float64 {
	if len(coeffs) == 0 {
		return 0
	}

	acc := coeffs[len(coeffs)-1]
	for i := len(coeffs) - 2; i >= 0; i-- {
		acc = acc*x + coeffs[i]
	}

	return acc
}

// maxResidual returns the maximum absolute error of the polynomial over the
// sample set.
func maxResidual(xs, ys, coeffs []float64) float64 {
	var worst float64
	for i, x := range xs {
		if r := math.Abs(Evaluate(coeffs, x) - ys[i]); r > worst {
			worst = r
		}
	}

	return worst
}

// leastSquares solves the degree-d least-squares polynomial fit via the
// normal equations. The reported ok is false when the system is singular,
// which can happen with degenerate sample placement.
//
// With samples normalized into [-1, 1] and the modest degrees used here the
// normal equations are well conditioned, so no orthogonal basis is needed.
func leastSquares(xs, ys []float64, degree int) (coeffs []float64, ok bool) {
	n := degree + 1

	// Accumulate G = A^T A and b = A^T y where A is the Vandermonde matrix
	// of xs. G[i][j] depends only on i+j, so accumulate the power sums once.
	powerSums := make([]float64, 2*n-1)
	rhs := make([]float64, n)
	powers := make([]float64, 2*n-1)

	for k, x := range xs {
		powers[0] = 1
		for i := 1; i < len(powers); i++ {
			powers[i] = powers[i-1] * x
		}

		for i := range powerSums {
			powerSums[i] += powers[i]
		}

		for i := 0; i < n; i++ {
			rhs[i] += powers[i] * ys[k]
		}
	}

	g := make([][]float64, n)
	for i := range g {
		g[i] = make([]float64, n)
		for j := range g[i] {
			g[i][j] = powerSums[i+j]
		}
	}

	return solve(g, rhs)
}

// solve performs Gaussian elimination with partial pivoting on the n x n
// system g * c = b. Both g and b are clobbered.
func solve(g [][]float64, b []float64) ([]float64, bool) {
	n := len(b)

	for col := 0; col < n; col++ {
		// Partial pivot: largest magnitude entry in this column.
		pivot := col
		for row := col + 1; row < n; row++ {
			if math.Abs(g[row][col]) > math.Abs(g[pivot][col]) {
				pivot = row
			}
		}

		if g[pivot][col] == 0 {
			return nil, false
		}

		g[col], g[pivot] = g[pivot], g[col]
		b[col], b[pivot] = b[pivot], b[col]

		for row := col + 1; row < n; row++ {
			factor := g[row][col] / g[col][col]
			if factor == 0 {
				continue
			}
			for k := col; k < n; k++ {
				g[row][k] -= factor * g[col][k]
			}
			b[row] -= factor * b[col]
		}
	}

	coeffs := make([]float64, n)
	for row := n - 1; row >= 0; row-- {
		sum := b[row]
		for k := row + 1; k < n; k++ {
			sum -= g[row][k] * coeffs[k]
		}
		coeffs[row] = sum / g[row][row]
	}

	return coeffs, true
}
