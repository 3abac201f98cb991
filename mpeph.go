// Package mpeph provides a multi-precision binary container format for
// planetary ephemeris data.
//
// A multi-precision file stores one physical quantity for one body, covering
// a half-open time interval with Chebyshev-style polynomial blocks arranged
// in nested precision tiers. Coarse tiers span wide windows with loose
// tolerances; finer tiers overlay the same interval with narrow windows and
// tight tolerances. Point queries always evaluate the finest block that
// contains the query time, so a single file answers both "roughly where was
// Mars in 1950" and "exactly where is Mars right now".
//
// # Basic Usage
//
// Generating a file from a sample source:
//
//	import "github.com/ephemeralab/mpeph"
//
//	client, _ := horizons.NewClient("https://ephemeris.example.com")
//	data, err := mpeph.Generate(ctx, client,
//	    format.BodyMars, format.EclipticLongitude, start, end)
//
// Evaluating:
//
//	f, _ := mpeph.Open("mars-longitude.mpe")
//	defer f.Close()
//	lon, err := f.Evaluate(time.Now())
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the mpfile
// package, simplifying the most common use cases. For fine-grained control
// over tier policies, retries, and parallelism, use the mpfile package
// directly; for identifier lookups see catalog, for event search see finder,
// and for HTTP serving see server.
package mpeph

import (
	"context"
	"time"

	"github.com/ephemeralab/mpeph/format"
	"github.com/ephemeralab/mpeph/mpfile"
)

// Open opens and fully validates a multi-precision file.
//
// The whole file is read, checksummed, and decoded eagerly, so a returned
// *mpfile.File never fails lazily during evaluation. The file is immutable
// after Open and safe for concurrent Evaluate calls.
func Open(path string) (*mpfile.File, error) {
	return mpfile.Open(path)
}

// New decodes a multi-precision file from an in-memory byte slice.
//
// The slice must remain unmodified for the lifetime of the returned file.
func New(data []byte) (*mpfile.File, error) {
	return mpfile.New(data)
}

// Generate fits a multi-precision file for one (body, quantity) series over
// the half-open coverage interval [start, end) and returns the encoded bytes.
//
// It uses the default tier policy: a year tier for every quantity, overlaid
// with a month tier for angular quantities. For custom tiers, retry policies,
// or parallelism control, construct an mpfile.Generator directly.
func Generate(ctx context.Context, src mpfile.SampleSource, body format.Body, quantity format.Quantity, start, end time.Time, opts ...mpfile.GeneratorOption) ([]byte, error) {
	gen, err := mpfile.NewGenerator(src, opts...)
	if err != nil {
		return nil, err
	}

	return gen.Generate(ctx, body, quantity, start, end)
}

// GenerateFile is like Generate but atomically publishes the result at path:
// the file is built in a temporary sibling, synced, and renamed into place,
// so a crashed or failed generation never leaves a partial file behind.
func GenerateFile(ctx context.Context, src mpfile.SampleSource, body format.Body, quantity format.Quantity, start, end time.Time, path string, opts ...mpfile.GeneratorOption) error {
	gen, err := mpfile.NewGenerator(src, opts...)
	if err != nil {
		return err
	}

	return gen.GenerateFile(ctx, body, quantity, start, end, path)
}

// DefaultPolicy returns the tier policy Generate uses when none is supplied.
func DefaultPolicy() mpfile.TierPolicy {
	return mpfile.DefaultPolicy()
}
