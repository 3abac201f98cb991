package compress

// ZstdCompressor compresses cache payloads with Zstandard.
//
// This is the default for on-disk sample windows: they are written once at
// generation time and read back rarely, so ratio matters more than encode
// speed. Two implementations exist: a pure-Go one (default) and a cgo one
// backed by libzstd, selected with the "gozstd" build tag.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstandard compressor.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
