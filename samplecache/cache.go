// Package samplecache caches raw ephemeris samples fetched from a remote
// SampleSource.
//
// Fetching samples is the slowest stage of file generation, and the same
// windows are re-requested whenever a file is regenerated with different
// tier parameters. The cache keeps two tiers: an in-memory LRU of decoded
// sample slices, and an optional on-disk tier of compressed sample windows
// that survives process restarts. Both tiers are keyed by the catalog series
// identifier extended with the request span and step, so any change to the
// request produces a distinct entry.
package samplecache

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ephemeralab/mpeph/catalog"
	"github.com/ephemeralab/mpeph/compress"
	"github.com/ephemeralab/mpeph/endian"
	"github.com/ephemeralab/mpeph/format"
	"github.com/ephemeralab/mpeph/internal/hash"
	"github.com/ephemeralab/mpeph/internal/options"
	"github.com/ephemeralab/mpeph/mpfile"
)

const (
	defaultLRUSize = 256

	// sampleRecordSize is the encoded size of one sample on disk:
	// int64 unix nanoseconds plus float64 bits.
	sampleRecordSize = 16
)

// Cache is a SampleSource that serves repeated requests from memory or disk
// instead of the underlying source. It is safe for concurrent use; the LRU
// handles its own locking and disk writes are atomic renames. Concurrent
// misses for the same key may fetch the window more than once.
type Cache struct {
	src         mpfile.SampleSource
	mem         *lru.Cache[uint64, []mpfile.Sample]
	dir         string
	compression format.CompressionType
	engine      endian.EndianEngine
}

var _ mpfile.SampleSource = (*Cache)(nil)

// CacheOption configures a Cache.
type CacheOption = options.Option[*Cache]

// WithLRUSize sets the in-memory entry capacity. The default is 256 windows.
func WithLRUSize(n int) CacheOption {
	return options.New(func(c *Cache) error {
		if n <= 0 {
			return fmt.Errorf("LRU size must be positive, got %d", n)
		}

		mem, err := lru.New[uint64, []mpfile.Sample](n)
		if err != nil {
			return err
		}
		c.mem = mem

		return nil
	})
}

// WithDiskDir enables the on-disk tier rooted at dir. The directory is
// created if missing.
func WithDiskDir(dir string) CacheOption {
	return options.New(func(c *Cache) error {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create cache dir: %w", err)
		}
		c.dir = dir

		return nil
	})
}

// WithCompression selects the codec for newly written disk entries. Existing
// entries are self-describing and remain readable regardless of this setting.
func WithCompression(t format.CompressionType) CacheOption {
	return options.New(func(c *Cache) error {
		if _, err := compress.GetCodec(t); err != nil {
			return err
		}
		c.compression = t

		return nil
	})
}

// New wraps src in a caching layer.
func New(src mpfile.SampleSource, opts ...CacheOption) (*Cache, error) {
	if src == nil {
		return nil, fmt.Errorf("sample source must not be nil")
	}

	mem, err := lru.New[uint64, []mpfile.Sample](defaultLRUSize)
	if err != nil {
		return nil, err
	}

	c := &Cache{
		src:         src,
		mem:         mem,
		compression: format.CompressionZstd,
		engine:      endian.GetLittleEndianEngine(),
	}

	if err := options.Apply(c, opts...); err != nil {
		return nil, err
	}

	return c, nil
}

// Samples implements mpfile.SampleSource. Callers must not mutate the
// returned slice; it may be shared with the in-memory cache.
func (c *Cache) Samples(ctx context.Context, body format.Body, quantity format.Quantity, start, end time.Time, step time.Duration) ([]mpfile.Sample, error) {
	key := cacheKey(body, quantity, start, end, step)

	if samples, ok := c.mem.Get(key); ok {
		return samples, nil
	}

	if c.dir != "" {
		if samples, err := c.readDisk(key); err == nil {
			c.mem.Add(key, samples)
			return samples, nil
		}
	}

	samples, err := c.src.Samples(ctx, body, quantity, start, end, step)
	if err != nil {
		return nil, err
	}

	c.mem.Add(key, samples)
	if c.dir != "" {
		// A failed disk write only costs a refetch later.
		_ = c.writeDisk(key, samples)
	}

	return samples, nil
}

// Purge drops every in-memory entry. Disk entries are untouched.
func (c *Cache) Purge() {
	c.mem.Purge()
}

// cacheKey extends the series identifier with the request span and step, so
// every distinct window of a series maps to its own entry.
func cacheKey(body format.Body, quantity format.Quantity, start, end time.Time, step time.Duration) uint64 {
	return hash.ID(fmt.Sprintf("%016x/%d/%d/%d",
		catalog.SeriesID(body, quantity),
		start.UTC().UnixNano(), end.UTC().UnixNano(), int64(step)))
}

func (c *Cache) entryPath(key uint64) string {
	return filepath.Join(c.dir, fmt.Sprintf("%016x.mps", key))
}

// writeDisk persists an entry as a one-byte compression tag followed by the
// compressed sample records, written to a temp file and renamed into place.
func (c *Cache) writeDisk(key uint64, samples []mpfile.Sample) error {
	payload := make([]byte, 0, len(samples)*sampleRecordSize)
	for _, s := range samples {
		payload = c.engine.AppendUint64(payload, uint64(s.Time.UnixNano()))
		payload = c.engine.AppendUint64(payload, math.Float64bits(s.Value))
	}

	codec, err := compress.GetCodec(c.compression)
	if err != nil {
		return err
	}

	compressed, err := codec.Compress(payload)
	if err != nil {
		return err
	}

	buf := make([]byte, 0, len(compressed)+1)
	buf = append(buf, byte(c.compression))
	buf = append(buf, compressed...)

	tmp, err := os.CreateTemp(c.dir, ".mps-*")
	if err != nil {
		return err
	}

	if _, err := tmp.Write(buf); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())

		return err
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	if err := os.Rename(tmp.Name(), c.entryPath(key)); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	return nil
}

func (c *Cache) readDisk(key uint64) ([]mpfile.Sample, error) {
	data, err := os.ReadFile(c.entryPath(key))
	if err != nil {
		return nil, err
	}

	if len(data) < 1 {
		return nil, fmt.Errorf("cache entry %016x is empty", key)
	}

	codec, err := compress.GetCodec(format.CompressionType(data[0]))
	if err != nil {
		return nil, err
	}

	payload, err := codec.Decompress(data[1:])
	if err != nil {
		return nil, err
	}

	if len(payload)%sampleRecordSize != 0 {
		return nil, fmt.Errorf("cache entry %016x has truncated payload", key)
	}

	samples := make([]mpfile.Sample, 0, len(payload)/sampleRecordSize)
	for off := 0; off < len(payload); off += sampleRecordSize {
		ns := int64(c.engine.Uint64(payload[off : off+8]))
		bits := c.engine.Uint64(payload[off+8 : off+16])
		samples = append(samples, mpfile.Sample{
			Time:  time.Unix(0, ns).UTC(),
			Value: math.Float64frombits(bits),
		})
	}

	return samples, nil
}
