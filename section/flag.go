package section

import (
	"github.com/ephemeralab/mpeph/endian"
	"github.com/ephemeralab/mpeph/errs"
)

// Flag is the packed options field at the start of the file header.
//
// Bit 0 is the endianness flag: 0 means little-endian, 1 means big-endian.
// Bits 1-3 are reserved and must be zero.
// Bits 4-15 carry the magic number identifying the format:
//   - 0xED10 (0b1110_1101_0001_0000): multi-precision ephemeris file v1
//
// The flag field itself is always serialized little-endian so that readers
// can determine the byte order of the rest of the file from it.
type Flag struct {
	Options uint16
}

// NewFlag creates a flag with the v1 magic number and little-endian order.
func NewFlag() Flag {
	flag := Flag{Options: MagicMultiPrecisionV1}
	flag.WithLittleEndian()

	return flag
}

// IsLittleEndian returns whether the file payload is little-endian.
func (f Flag) IsLittleEndian() bool {
	return (f.Options & EndiannessMask) == 0
}

// IsBigEndian returns whether the file payload is big-endian.
func (f Flag) IsBigEndian() bool {
	return (f.Options & EndiannessMask) != 0
}

// WithLittleEndian sets little-endian byte order.
func (f *Flag) WithLittleEndian() {
	f.Options &= ^uint16(EndiannessMask)
}

// WithBigEndian sets big-endian byte order.
func (f *Flag) WithBigEndian() {
	f.Options |= EndiannessMask
}

// GetMagicNumber returns the magic number portion of the flag.
func (f Flag) GetMagicNumber() uint16 {
	return f.Options & MagicNumberMask
}

// IsValidMagicNumber checks whether the magic number identifies a
// multi-precision file.
func (f Flag) IsValidMagicNumber() bool {
	return f.GetMagicNumber() == MagicMultiPrecisionV1
}

// Validate checks the flag for a valid magic number and clear reserved bits.
func (f Flag) Validate() error {
	if !f.IsValidMagicNumber() {
		return errs.ErrInvalidMagicNumber
	}

	if f.Options&ReservedBitsMask != 0 {
		return errs.ErrInvalidHeaderFlags
	}

	return nil
}

// GetEndianEngine returns the engine matching the declared byte order.
func (f Flag) GetEndianEngine() endian.EndianEngine {
	if f.IsLittleEndian() {
		return endian.GetLittleEndianEngine()
	}

	return endian.GetBigEndianEngine()
}
