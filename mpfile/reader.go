package mpfile

import (
	"fmt"
	"math"
	"os"
	"sort"
	"time"

	"github.com/ephemeralab/mpeph/endian"
	"github.com/ephemeralab/mpeph/errs"
	"github.com/ephemeralab/mpeph/fit"
	"github.com/ephemeralab/mpeph/format"
	"github.com/ephemeralab/mpeph/internal/hash"
	"github.com/ephemeralab/mpeph/mjd"
	"github.com/ephemeralab/mpeph/section"
)

// File is a loaded multi-precision file: an immutable set of fitted blocks
// answering point queries for one body and quantity.
//
// Once opened, a File never changes, so concurrent Evaluate calls require no
// locking. Close releases the backing data; it must not race with Evaluate.
type File struct {
	header section.Header
	engine endian.EndianEngine

	// tiers holds one block group per precision tier, ordered finest
	// (smallest nominal window) first so Evaluate can stop at the first
	// containing block.
	tiers []tierBlocks

	closed bool
}

// tierBlocks is the decoded directory of one tier, entries sorted by window
// start, with coefficients decoded alongside.
type tierBlocks struct {
	entries []section.DirectoryEntry
	coeffs  [][]float64
	tier    format.Tier
}

// Open loads and validates a multi-precision file from disk.
//
// The directory is decoded eagerly (it is small relative to the payload)
// and the coefficient payload is verified against the header checksum, so a
// truncated or corrupted file fails here rather than at query time.
func Open(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open multi-precision file: %w", err)
	}

	return New(data)
}

// New parses a multi-precision file from an in-memory byte slice.
func New(data []byte) (*File, error) {
	header, err := section.ParseHeader(data)
	if err != nil {
		return nil, err
	}

	f := &File{
		header: header,
		engine: header.Flag.GetEndianEngine(),
	}

	if err := f.parseSections(data); err != nil {
		return nil, err
	}

	return f, nil
}

// parseSections validates the tier table, directory and payload and decodes
// the coefficients.
func (f *File) parseSections(data []byte) error {
	h := &f.header

	tierTableEnd := section.TierTableOffset + int(h.TierCount)*section.TierEntrySize
	dirEnd := tierTableEnd + int(h.BlockCount)*section.DirectoryEntrySize
	if len(data) < dirEnd {
		return errs.ErrInvalidDirectorySize
	}

	if int(h.PayloadOffset) != dirEnd {
		return fmt.Errorf("%w: payload offset %d, directory ends at %d",
			errs.ErrInvalidPayloadBounds, h.PayloadOffset, dirEnd)
	}

	payload := data[dirEnd:]
	if hash.Sum(payload) != h.PayloadChecksum {
		return errs.ErrChecksumMismatch
	}

	// Tier table: declared block counts must add up to the header total.
	tierEntries := make([]section.TierEntry, h.TierCount)
	total := uint32(0)
	for i := range tierEntries {
		off := section.TierTableOffset + i*section.TierEntrySize
		if err := tierEntries[i].Parse(data[off:off+section.TierEntrySize], f.engine); err != nil {
			return err
		}
		total += tierEntries[i].BlockCount
	}
	if total != h.BlockCount {
		return fmt.Errorf("%w: tier table declares %d blocks, header %d",
			errs.ErrInvalidTierTable, total, h.BlockCount)
	}

	byTier := make(map[format.Tier]*tierBlocks, h.TierCount)
	for i := 0; i < int(h.BlockCount); i++ {
		off := tierTableEnd + i*section.DirectoryEntrySize

		var entry section.DirectoryEntry
		if err := entry.Parse(data[off:off+section.DirectoryEntrySize], f.engine); err != nil {
			return err
		}

		pStart := int(entry.PayloadOffset) - dirEnd
		pEnd := pStart + int(entry.PayloadLength)
		if pStart < 0 || pEnd > len(payload) {
			return fmt.Errorf("%w: block payload [%d, %d) outside payload region",
				errs.ErrInvalidPayloadBounds, entry.PayloadOffset, entry.PayloadOffset+entry.PayloadLength)
		}

		coeffs := make([]float64, entry.CoeffCount)
		for c := range coeffs {
			bits := f.engine.Uint64(payload[pStart+c*section.CoefficientSize:])
			coeffs[c] = math.Float64frombits(bits)
		}

		tb, ok := byTier[entry.Tier]
		if !ok {
			tb = &tierBlocks{tier: entry.Tier}
			byTier[entry.Tier] = tb
		}
		tb.entries = append(tb.entries, entry)
		tb.coeffs = append(tb.coeffs, coeffs)
	}

	for _, te := range tierEntries {
		tb, ok := byTier[te.Tier]
		if !ok || uint32(len(tb.entries)) != te.BlockCount {
			return fmt.Errorf("%w: tier %s directory does not match tier table",
				errs.ErrInvalidTierTable, te.Tier)
		}

		if err := tb.validateCoverage(h.CoverageStart, h.CoverageEnd); err != nil {
			return err
		}

		f.tiers = append(f.tiers, *tb)
	}

	// Finest tier first. The last window of a tier may be clamped short, so
	// order by the tier's nominal width rather than any single entry.
	sort.SliceStable(f.tiers, func(i, j int) bool {
		return f.tiers[i].tier.WindowDays() < f.tiers[j].tier.WindowDays()
	})

	return nil
}

// validateCoverage sorts the tier's entries by window start, keeping each
// entry's coefficients attached, and checks that they form a gapless,
// non-overlapping partition of [start, end).
func (tb *tierBlocks) validateCoverage(start, end int64) error {
	sort.Sort(byWindowStart{tb})

	cursor := start
	for i := range tb.entries {
		if tb.entries[i].WindowStart != cursor {
			return fmt.Errorf("%w: tier %s has a gap or overlap at %d",
				errs.ErrTierNotCovered, tb.tier, cursor)
		}
		cursor = tb.entries[i].WindowEnd
	}

	if cursor != end {
		return fmt.Errorf("%w: tier %s ends at %d, coverage ends at %d",
			errs.ErrTierNotCovered, tb.tier, cursor, end)
	}

	return nil
}

// byWindowStart sorts a tier's directory entries and their coefficient
// slices together.
type byWindowStart struct{ tb *tierBlocks }

func (s byWindowStart) Len() int { return len(s.tb.entries) }

func (s byWindowStart) Less(i, j int) bool {
	return s.tb.entries[i].WindowStart < s.tb.entries[j].WindowStart
}

func (s byWindowStart) Swap(i, j int) {
	s.tb.entries[i], s.tb.entries[j] = s.tb.entries[j], s.tb.entries[i]
	s.tb.coeffs[i], s.tb.coeffs[j] = s.tb.coeffs[j], s.tb.coeffs[i]
}

// lookup finds the entry containing md, or -1.
func (tb *tierBlocks) lookup(md int64) int {
	// First entry whose window end is past md; half-open windows make this
	// exact: md == WindowEnd selects the next block, never this one.
	i := sort.Search(len(tb.entries), func(i int) bool {
		return tb.entries[i].WindowEnd > md
	})

	if i < len(tb.entries) && tb.entries[i].Contains(md) {
		return i
	}

	return -1
}

// Body returns the body the file covers.
func (f *File) Body() format.Body {
	return f.header.Body
}

// Quantity returns the quantity the file encodes.
func (f *File) Quantity() format.Quantity {
	return f.header.Quantity
}

// Generated returns when the file was generated.
func (f *File) Generated() time.Time {
	return f.header.GeneratedAsTime()
}

// Coverage returns the file's half-open coverage interval.
func (f *File) Coverage() (start, end time.Time) {
	return mjd.ToTime(f.header.CoverageStart), mjd.ToTime(f.header.CoverageEnd)
}

// Tiers returns the precision tiers present, finest first.
func (f *File) Tiers() []format.Tier {
	out := make([]format.Tier, len(f.tiers))
	for i := range f.tiers {
		out[i] = f.tiers[i].tier
	}

	return out
}

// TierStat describes one tier's block population.
type TierStat struct {
	Tier   format.Tier
	Blocks int
}

// TierStats returns per-tier block counts, finest tier first.
func (f *File) TierStats() []TierStat {
	out := make([]TierStat, len(f.tiers))
	for i := range f.tiers {
		out[i] = TierStat{Tier: f.tiers[i].tier, Blocks: len(f.tiers[i].entries)}
	}

	return out
}

// BlockCount returns the total number of blocks across all tiers.
func (f *File) BlockCount() int {
	return int(f.header.BlockCount)
}

// Evaluate answers a point query for the file's quantity at time t.
//
// The timestamp must carry absolute time (the zero time.Time is rejected
// with ErrNaiveTime) and lie inside the file's half-open coverage
// (ErrOutOfRange otherwise, wrapped with the file bounds). Among all tiers
// the finest block containing t is evaluated with Horner's method on its
// normalized domain; angular quantities are rewrapped into [0, 360).
//
// Evaluate is safe for concurrent use: the file is immutable after Open.
func (f *File) Evaluate(t time.Time) (float64, error) {
	if f.closed {
		return 0, errs.ErrFileClosed
	}

	if t.IsZero() {
		return 0, errs.ErrNaiveTime
	}

	md := mjd.FromTime(t)
	if md < f.header.CoverageStart || md >= f.header.CoverageEnd {
		start, end := f.Coverage()

		return 0, fmt.Errorf("%w: %s not in [%s, %s)", errs.ErrOutOfRange,
			t.UTC().Format(time.RFC3339), start.Format(time.RFC3339), end.Format(time.RFC3339))
	}

	for i := range f.tiers {
		tb := &f.tiers[i]
		idx := tb.lookup(md)
		if idx < 0 {
			continue
		}

		entry := &tb.entries[idx]
		window := fit.Window{Start: entry.WindowStart, End: entry.WindowEnd}
		value := fit.Evaluate(tb.coeffs[idx], window.Normalize(md))

		if f.header.Quantity.IsAngular() {
			value = fit.Rewrap(value)
		}

		return value, nil
	}

	// Unreachable when coverage validation holds; kept as a defined failure
	// rather than a silent gap.
	return 0, fmt.Errorf("%w: no block contains %s", errs.ErrOutOfRange, t.UTC().Format(time.RFC3339))
}

// Close releases the file's decoded data. Evaluate on a closed file returns
// ErrFileClosed. Close must not be called concurrently with Evaluate.
func (f *File) Close() error {
	f.closed = true
	f.tiers = nil

	return nil
}
