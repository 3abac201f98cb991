package section

const (
	// Flag bit masks (Flag field, bits 0-15).
	EndiannessMask   = 0x0001 // Mask for endianness bit (bit 0): 0=little, 1=big
	ReservedBitsMask = 0x000E // Mask for reserved bits (bits 1-3), must be zero
	MagicNumberMask  = 0xFFF0 // Mask for magic number (bits 4-15)

	// MagicMultiPrecisionV1 is the magic number for multi-precision
	// ephemeris files (bits 4-15 of the flag field).
	MagicMultiPrecisionV1 = 0xED10

	// Version is the current format version recorded in the header.
	Version = 1
)

// Fixed section sizes in the file, in bytes.
const (
	HeaderSize         = 48 // fixed header size
	TierEntrySize      = 8  // per-tier block count entry in the tier table
	DirectoryEntrySize = 32 // fixed directory entry size
	CoefficientSize    = 8  // one float64 coefficient in the payload region

	// TierTableOffset is the byte offset where the tier table starts.
	TierTableOffset = HeaderSize

	// MaxCoefficients bounds the coefficient count a directory entry can
	// describe. Fits are rejected long before this, but the reader enforces
	// it as a format-level sanity bound.
	MaxCoefficients = 255
)
