package mpfile

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/ephemeralab/mpeph/endian"
	"github.com/ephemeralab/mpeph/errs"
	"github.com/ephemeralab/mpeph/format"
	"github.com/ephemeralab/mpeph/internal/hash"
	"github.com/ephemeralab/mpeph/internal/options"
	"github.com/ephemeralab/mpeph/mjd"
	"github.com/ephemeralab/mpeph/section"
)

// Writer assembles blocks into a serialized multi-precision file.
//
// Blocks may be added in any order; Finish sorts them deterministically,
// validates that every tier partitions the coverage without gaps or
// overlaps, and only then lays down header, tier table, directory and
// payload. A writer is single-use: after Finish it cannot accept more
// blocks.
//
// Note: the Writer is NOT thread-safe. The generator serializes access to it.
type Writer struct {
	engine    endian.EndianEngine
	blocks    []Block
	body      format.Body
	quantity  format.Quantity
	start     int64
	end       int64
	generated time.Time
	bigEndian bool
	finished  bool
}

// WriterOption configures a Writer.
type WriterOption = options.Option[*Writer]

// WithBigEndian declares big-endian byte order for the file.
func WithBigEndian() WriterOption {
	return options.NoError(func(w *Writer) {
		w.bigEndian = true
		w.engine = endian.GetBigEndianEngine()
	})
}

// WithLittleEndian declares little-endian byte order (the default).
func WithLittleEndian() WriterOption {
	return options.NoError(func(w *Writer) {
		w.bigEndian = false
		w.engine = endian.GetLittleEndianEngine()
	})
}

// WithGenerated overrides the generation timestamp recorded in the header.
// Useful for reproducible artifacts in tests.
func WithGenerated(t time.Time) WriterOption {
	return options.New(func(w *Writer) error {
		if t.IsZero() {
			return errs.ErrNaiveTime
		}
		w.generated = t

		return nil
	})
}

// NewWriter creates a writer for the given body, quantity and half-open
// coverage interval.
func NewWriter(body format.Body, quantity format.Quantity, coverageStart, coverageEnd time.Time, opts ...WriterOption) (*Writer, error) {
	if coverageStart.IsZero() || coverageEnd.IsZero() {
		return nil, errs.ErrNaiveTime
	}

	start := mjd.FromTime(coverageStart)
	end := mjd.FromTime(coverageEnd)
	if start >= end {
		return nil, errs.ErrInvalidCoverage
	}

	w := &Writer{
		engine:    endian.GetLittleEndianEngine(),
		body:      body,
		quantity:  quantity,
		start:     start,
		end:       end,
		generated: time.Now().UTC(),
	}

	if err := options.Apply(w, opts...); err != nil {
		return nil, err
	}

	return w, nil
}

// AddBlock appends a fitted block. The block window must lie inside the
// file coverage and carry between 1 and section.MaxCoefficients
// coefficients.
func (w *Writer) AddBlock(b Block) error {
	if w.finished {
		return errs.ErrFileClosed
	}

	if b.Window.Start >= b.Window.End {
		return fmt.Errorf("%w: empty window [%d, %d)", errs.ErrInvalidDirectoryEntry, b.Window.Start, b.Window.End)
	}

	if b.Window.Start < w.start || b.Window.End > w.end {
		return fmt.Errorf("%w: block window [%d, %d) outside coverage [%d, %d)",
			errs.ErrInvalidDirectoryEntry, b.Window.Start, b.Window.End, w.start, w.end)
	}

	if len(b.Coeffs) == 0 || len(b.Coeffs) > section.MaxCoefficients {
		return fmt.Errorf("%w: %d coefficients", errs.ErrInvalidDirectoryEntry, len(b.Coeffs))
	}

	w.blocks = append(w.blocks, b)

	return nil
}

// Finish validates the block set and serializes the complete file.
//
// The header and directory are derived only after every payload byte is
// known, so the returned slice is always internally consistent: no reader
// will ever accept a partially assembled file.
func (w *Writer) Finish() ([]byte, error) {
	if w.finished {
		return nil, errs.ErrFileClosed
	}
	w.finished = true

	if len(w.blocks) == 0 {
		return nil, fmt.Errorf("%w: no blocks added", errs.ErrInvalidCoverage)
	}

	// Deterministic directory order: tier id, then window start.
	sort.SliceStable(w.blocks, func(i, j int) bool {
		if w.blocks[i].Tier != w.blocks[j].Tier {
			return w.blocks[i].Tier < w.blocks[j].Tier
		}

		return w.blocks[i].Window.Start < w.blocks[j].Window.Start
	})

	tiers, err := w.validateTiers()
	if err != nil {
		return nil, err
	}

	headerSize := section.HeaderSize
	tierTableSize := len(tiers) * section.TierEntrySize
	dirSize := len(w.blocks) * section.DirectoryEntrySize
	payloadOffset := headerSize + tierTableSize + dirSize

	payloadSize := 0
	for _, b := range w.blocks {
		payloadSize += len(b.Coeffs) * section.CoefficientSize
	}

	buf := make([]byte, 0, payloadOffset+payloadSize)
	buf = append(buf, make([]byte, headerSize)...) // header written last

	for _, te := range tiers {
		buf = append(buf, te.Bytes(w.engine)...)
	}

	// Directory entries and payload are laid down together so offsets are
	// known without a second pass.
	offset := uint32(payloadOffset)
	payload := make([]byte, 0, payloadSize)
	for _, b := range w.blocks {
		length := uint32(len(b.Coeffs) * section.CoefficientSize)
		entry := section.DirectoryEntry{
			Tier:          b.Tier,
			CoeffCount:    uint8(len(b.Coeffs)),
			WindowStart:   b.Window.Start,
			WindowEnd:     b.Window.End,
			PayloadOffset: offset,
			PayloadLength: length,
		}
		buf = append(buf, entry.Bytes(w.engine)...)
		offset += length

		for _, c := range b.Coeffs {
			payload = w.engine.AppendUint64(payload, math.Float64bits(c))
		}
	}
	buf = append(buf, payload...)

	header := section.NewHeader(w.body, w.quantity, w.start, w.end, w.generated)
	if w.bigEndian {
		header.Flag.WithBigEndian()
	}
	header.TierCount = uint8(len(tiers))
	header.BlockCount = uint32(len(w.blocks))
	header.PayloadOffset = uint32(payloadOffset)
	header.PayloadChecksum = hash.Sum(payload)

	copy(buf[:headerSize], header.Bytes())

	return buf, nil
}

// WriteFile serializes the file and publishes it atomically: the bytes are
// built to a temporary file in the target directory, synced, and renamed
// into place only on full success. A crash mid-write never leaves a path
// that a reader would accept.
func (w *Writer) WriteFile(path string) error {
	data, err := w.Finish()
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())

		return fmt.Errorf("write temp file: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())

		return fmt.Errorf("sync temp file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())

		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())

		return fmt.Errorf("publish file: %w", err)
	}

	return nil
}

// validateTiers checks that each tier's blocks form a gapless,
// non-overlapping partition of the full coverage, and returns the tier
// table in directory order.
func (w *Writer) validateTiers() ([]section.TierEntry, error) {
	var tiers []section.TierEntry

	i := 0
	for i < len(w.blocks) {
		tier := w.blocks[i].Tier
		cursor := w.start
		count := uint32(0)

		for i < len(w.blocks) && w.blocks[i].Tier == tier {
			b := w.blocks[i]
			if b.Window.Start != cursor {
				return nil, fmt.Errorf("%w: tier %s has a gap or overlap at %d",
					errs.ErrTierNotCovered, tier, cursor)
			}
			cursor = b.Window.End
			count++
			i++
		}

		if cursor != w.end {
			return nil, fmt.Errorf("%w: tier %s ends at %d, coverage ends at %d",
				errs.ErrTierNotCovered, tier, cursor, w.end)
		}

		tiers = append(tiers, section.TierEntry{Tier: tier, BlockCount: count})
	}

	return tiers, nil
}
