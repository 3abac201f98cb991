package section

import (
	"unsafe"

	"github.com/ephemeralab/mpeph/endian"
	"github.com/ephemeralab/mpeph/errs"
	"github.com/ephemeralab/mpeph/format"
)

// TierEntry is one row of the tier table that follows the header: the block
// count for a single precision tier.
//
// Byte layout (8 bytes):
//
//	0     TierID
//	1-3   reserved, zero
//	4-7   BlockCount
type TierEntry struct {
	BlockCount uint32
	Tier       format.Tier
}

// Parse parses a tier entry from exactly TierEntrySize bytes.
func (e *TierEntry) Parse(data []byte, engine endian.EndianEngine) error {
	if len(data) != TierEntrySize {
		return errs.ErrInvalidTierTable
	}

	e.Tier = format.Tier(data[0])
	e.BlockCount = engine.Uint32(data[4:8])

	return nil
}

// Bytes serializes the tier entry.
func (e *TierEntry) Bytes(engine endian.EndianEngine) []byte {
	b := make([]byte, TierEntrySize)
	b[0] = uint8(e.Tier)
	engine.PutUint32(b[4:8], e.BlockCount)

	return b
}

// DirectoryEntry describes one block: which tier it belongs to, its
// half-open time window, and where its coefficient payload lives.
//
// Byte layout (32 bytes):
//
//	0     TierID
//	1     CoeffCount
//	2-3   reserved, zero
//	4-11  WindowStart (microdays, inclusive)
//	12-19 WindowEnd   (microdays, exclusive)
//	20-23 PayloadOffset (absolute byte offset in the file)
//	24-27 PayloadLength (bytes; CoeffCount * CoefficientSize)
//	28-31 reserved, zero
type DirectoryEntry struct {
	WindowStart   int64
	WindowEnd     int64
	PayloadOffset uint32
	PayloadLength uint32
	Tier          format.Tier
	CoeffCount    uint8
}

// Contains reports whether the microday timestamp falls inside the entry's
// half-open window [WindowStart, WindowEnd).
func (e *DirectoryEntry) Contains(md int64) bool {
	return md >= e.WindowStart && md < e.WindowEnd
}

// Width returns the window width in microdays.
func (e *DirectoryEntry) Width() int64 {
	return e.WindowEnd - e.WindowStart
}

// Parse parses a directory entry from exactly DirectoryEntrySize bytes and
// validates its invariants: non-empty window, at least one coefficient, and
// a payload length consistent with the coefficient count.
func (e *DirectoryEntry) Parse(data []byte, engine endian.EndianEngine) error {
	if len(data) != DirectoryEntrySize {
		return errs.ErrInvalidDirectorySize
	}

	e.Tier = format.Tier(data[0])
	e.CoeffCount = data[1]

	start := engine.Uint64(data[4:12])
	end := engine.Uint64(data[12:20])
	e.WindowStart = *(*int64)(unsafe.Pointer(&start))
	e.WindowEnd = *(*int64)(unsafe.Pointer(&end))

	e.PayloadOffset = engine.Uint32(data[20:24])
	e.PayloadLength = engine.Uint32(data[24:28])

	return e.Validate()
}

// Bytes serializes the directory entry.
func (e *DirectoryEntry) Bytes(engine endian.EndianEngine) []byte {
	b := make([]byte, DirectoryEntrySize)

	b[0] = uint8(e.Tier)
	b[1] = e.CoeffCount
	engine.PutUint64(b[4:12], *(*uint64)(unsafe.Pointer(&e.WindowStart)))
	engine.PutUint64(b[12:20], *(*uint64)(unsafe.Pointer(&e.WindowEnd)))
	engine.PutUint32(b[20:24], e.PayloadOffset)
	engine.PutUint32(b[24:28], e.PayloadLength)

	return b
}

// Validate checks the entry's internal invariants.
func (e *DirectoryEntry) Validate() error {
	if e.WindowStart >= e.WindowEnd {
		return errs.ErrInvalidDirectoryEntry
	}

	if e.CoeffCount == 0 {
		return errs.ErrInvalidDirectoryEntry
	}

	if int(e.PayloadLength) != int(e.CoeffCount)*CoefficientSize {
		return errs.ErrInvalidDirectoryEntry
	}

	return nil
}
