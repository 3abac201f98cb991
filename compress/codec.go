// Package compress provides the codecs used for on-disk raw-sample cache
// payloads.
//
// Cached sample windows are regular binary records (microday timestamps
// plus float64 values), which compress well with any of the supported
// algorithms. Zstd gives the best ratio for archived windows; S2 and LZ4
// trade ratio for speed; None is useful for debugging and benchmarks.
package compress

import (
	"fmt"

	"github.com/ephemeralab/mpeph/format"
)

// Compressor compresses a complete cache payload.
//
// Memory management:
//   - Returned slice is newly allocated and owned by the caller
//   - Input slice is not modified
//   - Internal buffers may be reused for efficiency
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor restores a payload previously compressed with the same
// algorithm. Implementations validate the input and return an error for
// corrupted or mismatched data.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both compression and decompression capabilities.
type Codec interface {
	Compressor
	Decompressor
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCompressor(),
	format.CompressionZstd: NewZstdCompressor(),
	format.CompressionS2:   NewS2Compressor(),
	format.CompressionLZ4:  NewLZ4Compressor(),
}

// GetCodec retrieves a built-in Codec for the specified compression type.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("unsupported compression type: %s", compressionType)
}
