// Package errs defines the sentinel errors shared across mpeph packages.
//
// Errors fall into three groups that callers treat differently:
//
//   - Format errors (invalid magic, version, truncation, checksum) mean the
//     file is unusable and must be regenerated.
//   - Query errors (out of range, naive time, closed file) are recoverable
//     by the caller: narrow the query or regenerate with wider coverage.
//   - Generation errors (fit tolerance, unavailable source) abort the whole
//     generation run; no partial file is ever finalized.
//
// Use errors.Is to match; most call sites wrap these with fmt.Errorf("%w: ...")
// to attach context such as file bounds or the failing window.
package errs

import "errors"

// Format errors. A file that trips any of these must be treated as unusable.
var (
	// ErrInvalidMagicNumber indicates the header flag field does not carry the
	// multi-precision file magic number.
	ErrInvalidMagicNumber = errors.New("invalid magic number")

	// ErrUnsupportedVersion indicates the file was written by an incompatible
	// format version.
	ErrUnsupportedVersion = errors.New("unsupported format version")

	// ErrInvalidHeaderSize indicates the data is too short to contain a header.
	ErrInvalidHeaderSize = errors.New("invalid header size")

	// ErrInvalidHeaderFlags indicates reserved flag bits are set.
	ErrInvalidHeaderFlags = errors.New("invalid header flags")

	// ErrInvalidTierTable indicates the per-tier block count table is truncated
	// or inconsistent with the header.
	ErrInvalidTierTable = errors.New("invalid tier table")

	// ErrInvalidDirectorySize indicates the directory section is truncated.
	ErrInvalidDirectorySize = errors.New("invalid directory size")

	// ErrInvalidDirectoryEntry indicates a directory entry fails validation
	// (empty window, zero coefficients, reversed bounds).
	ErrInvalidDirectoryEntry = errors.New("invalid directory entry")

	// ErrInvalidPayloadBounds indicates a directory entry points outside the
	// payload region.
	ErrInvalidPayloadBounds = errors.New("invalid payload bounds")

	// ErrChecksumMismatch indicates the payload region does not match the
	// checksum recorded in the header.
	ErrChecksumMismatch = errors.New("payload checksum mismatch")

	// ErrInvalidCoverage indicates header coverage bounds are reversed or empty.
	ErrInvalidCoverage = errors.New("invalid coverage bounds")

	// ErrTierNotCovered indicates a tier's blocks do not form a gapless
	// partition of the file coverage.
	ErrTierNotCovered = errors.New("tier does not cover file coverage")
)

// Query errors, recoverable by the caller.
var (
	// ErrOutOfRange indicates the queried timestamp lies outside the file's
	// half-open coverage interval.
	ErrOutOfRange = errors.New("timestamp outside file coverage")

	// ErrNaiveTime indicates a timestamp with no absolute-time information
	// (the zero time.Time). Rejected before any computation.
	ErrNaiveTime = errors.New("timestamp carries no absolute time")

	// ErrFileClosed indicates an operation on a closed file handle.
	ErrFileClosed = errors.New("file is closed")
)

// Generation errors. Any of these aborts the whole generation run.
var (
	// ErrFitTolerance indicates no polynomial degree within the configured
	// budget meets the tolerance for a window.
	ErrFitTolerance = errors.New("fit tolerance not met within degree budget")

	// ErrSourceUnavailable indicates the sample source failed to supply a
	// window's data.
	ErrSourceUnavailable = errors.New("sample source unavailable")

	// ErrShortSampleWindow indicates the source returned fewer samples than
	// requested for a window, which signals a data gap.
	ErrShortSampleWindow = errors.New("sample window shorter than requested")

	// ErrNoTiersConfigured indicates the tier policy produced no tier specs
	// for the requested quantity.
	ErrNoTiersConfigured = errors.New("no precision tiers configured")

	// ErrNoSamples indicates a fit was attempted on an empty sample window.
	ErrNoSamples = errors.New("no samples in window")
)
