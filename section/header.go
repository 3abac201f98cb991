package section

import (
	"time"
	"unsafe"

	"github.com/ephemeralab/mpeph/errs"
	"github.com/ephemeralab/mpeph/format"
)

// Header is the fixed-size header at the start of a multi-precision file.
//
// Byte layout (48 bytes total):
//
//	0-1   Flag (always little-endian; declares byte order of the rest)
//	2     Version
//	3     TierCount
//	4-5   BodyID
//	6-7   QuantityID
//	8-15  CoverageStart (microdays since the MJD epoch)
//	16-23 CoverageEnd   (microdays, exclusive)
//	24-31 Generated     (unix microseconds)
//	32-39 PayloadChecksum (xxHash64 of the payload region)
//	40-43 BlockCount    (total across all tiers)
//	44-47 PayloadOffset (absolute byte offset of the payload region)
type Header struct {
	CoverageStart   int64
	CoverageEnd     int64
	Generated       int64
	PayloadChecksum uint64
	BlockCount      uint32
	PayloadOffset   uint32
	Body            format.Body
	Quantity        format.Quantity
	Version         uint8
	TierCount       uint8

	Flag Flag
}

// NewHeader creates a header for the given body, quantity and coverage.
// Counts, offsets and the checksum are filled in when the writer finishes.
func NewHeader(body format.Body, quantity format.Quantity, coverageStart, coverageEnd int64, generated time.Time) *Header {
	return &Header{
		Flag:          NewFlag(),
		Version:       Version,
		Body:          body,
		Quantity:      quantity,
		CoverageStart: coverageStart,
		CoverageEnd:   coverageEnd,
		Generated:     generated.UnixMicro(),
	}
}

// GeneratedAsTime returns the generation timestamp as a time.Time.
func (h *Header) GeneratedAsTime() time.Time {
	return time.UnixMicro(h.Generated).UTC()
}

// Parse parses the header from a byte slice of at least HeaderSize bytes.
//
// Returns ErrInvalidHeaderSize on short input, flag validation errors on a
// bad magic number, ErrUnsupportedVersion on a version mismatch, and
// ErrInvalidCoverage on reversed or empty coverage bounds.
func (h *Header) Parse(data []byte) error {
	if len(data) < HeaderSize {
		return errs.ErrInvalidHeaderSize
	}

	// The flag field is always little-endian; it declares the byte order
	// used by every other field.
	h.Flag.Options = uint16(data[0]) | (uint16(data[1]) << 8)
	if err := h.Flag.Validate(); err != nil {
		return err
	}

	h.Version = data[2]
	if h.Version != Version {
		return errs.ErrUnsupportedVersion
	}

	h.TierCount = data[3]

	engine := h.Flag.GetEndianEngine()
	h.Body = format.Body(engine.Uint16(data[4:6]))
	h.Quantity = format.Quantity(engine.Uint16(data[6:8]))

	// Bitwise conversion: microday and microsecond counts are stored as-is.
	start := engine.Uint64(data[8:16])
	end := engine.Uint64(data[16:24])
	gen := engine.Uint64(data[24:32])
	h.CoverageStart = *(*int64)(unsafe.Pointer(&start))
	h.CoverageEnd = *(*int64)(unsafe.Pointer(&end))
	h.Generated = *(*int64)(unsafe.Pointer(&gen))

	h.PayloadChecksum = engine.Uint64(data[32:40])
	h.BlockCount = engine.Uint32(data[40:44])
	h.PayloadOffset = engine.Uint32(data[44:48])

	if h.CoverageStart >= h.CoverageEnd {
		return errs.ErrInvalidCoverage
	}

	return nil
}

// Bytes serializes the header into a HeaderSize byte slice.
func (h *Header) Bytes() []byte {
	b := make([]byte, HeaderSize)

	// Flag is always little-endian regardless of the declared byte order.
	b[0] = byte(h.Flag.Options)
	b[1] = byte(h.Flag.Options >> 8)
	b[2] = h.Version
	b[3] = h.TierCount

	engine := h.Flag.GetEndianEngine()
	engine.PutUint16(b[4:6], uint16(h.Body))
	engine.PutUint16(b[6:8], uint16(h.Quantity))
	engine.PutUint64(b[8:16], *(*uint64)(unsafe.Pointer(&h.CoverageStart)))
	engine.PutUint64(b[16:24], *(*uint64)(unsafe.Pointer(&h.CoverageEnd)))
	engine.PutUint64(b[24:32], *(*uint64)(unsafe.Pointer(&h.Generated)))
	engine.PutUint64(b[32:40], h.PayloadChecksum)
	engine.PutUint32(b[40:44], h.BlockCount)
	engine.PutUint32(b[44:48], h.PayloadOffset)

	return b
}

// ParseHeader parses a Header from a byte slice.
func ParseHeader(data []byte) (Header, error) {
	h := Header{}
	if err := h.Parse(data); err != nil {
		return Header{}, err
	}

	return h, nil
}

// IsMultiPrecisionFile reports whether the data starts with a valid
// multi-precision file header, without fully validating it.
func IsMultiPrecisionFile(data []byte) bool {
	if len(data) < HeaderSize {
		return false
	}

	flag := Flag{Options: uint16(data[0]) | (uint16(data[1]) << 8)}

	return flag.IsValidMagicNumber()
}
