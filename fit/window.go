package fit

// Window is a half-open time interval [Start, End) in microdays with an
// affine map onto the normalized fitting domain [-1, 1].
//
// Polynomials are always fit and evaluated in the normalized domain: raw
// microday counts are large enough that powers of them would destroy the
// conditioning of the least-squares system.
type Window struct {
	Start int64 // inclusive, microdays
	End   int64 // exclusive, microdays
}

// Normalize maps a microday timestamp into [-1, 1].
// Window start maps to -1, window end to +1.
func (w Window) Normalize(md int64) float64 {
	return 2*float64(md-w.Start)/float64(w.End-w.Start) - 1
}

// Contains reports whether md falls inside the half-open window.
func (w Window) Contains(md int64) bool {
	return md >= w.Start && md < w.End
}

// Width returns the window width in microdays.
func (w Window) Width() int64 {
	return w.End - w.Start
}
