package samplecache

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ephemeralab/mpeph/catalog"
	"github.com/ephemeralab/mpeph/format"
	"github.com/ephemeralab/mpeph/internal/hash"
	"github.com/ephemeralab/mpeph/mpfile"
)

// countingSource serves a fixed ramp and counts underlying fetches.
type countingSource struct {
	calls atomic.Int32
}

func (s *countingSource) Samples(_ context.Context, _ format.Body, _ format.Quantity, start, end time.Time, step time.Duration) ([]mpfile.Sample, error) {
	s.calls.Add(1)

	var samples []mpfile.Sample
	v := 100.0
	for t := start; !t.After(end); t = t.Add(step) {
		samples = append(samples, mpfile.Sample{Time: t, Value: v})
		v += 0.25
	}

	return samples, nil
}

var (
	reqStart = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	reqEnd   = reqStart.AddDate(0, 0, 30)
)

func TestCacheKey_SeriesBase(t *testing.T) {
	// Keys are rooted in the catalog series identifier; the span and step
	// only distinguish windows within a series.
	key := cacheKey(format.BodyMars, format.EclipticLongitude, reqStart, reqEnd, time.Hour)

	want := hash.ID(fmt.Sprintf("%016x/%d/%d/%d",
		catalog.SeriesID(format.BodyMars, format.EclipticLongitude),
		reqStart.UnixNano(), reqEnd.UnixNano(), int64(time.Hour)))
	require.Equal(t, want, key)

	other := cacheKey(format.BodyMars, format.Distance, reqStart, reqEnd, time.Hour)
	require.NotEqual(t, key, other, "quantity changes the series, hence the key")
}

func TestCache_MemoryTier(t *testing.T) {
	src := &countingSource{}
	cache, err := New(src)
	require.NoError(t, err)

	ctx := context.Background()

	first, err := cache.Samples(ctx, format.BodyMars, format.EclipticLongitude, reqStart, reqEnd, 24*time.Hour)
	require.NoError(t, err)
	require.Len(t, first, 31)

	second, err := cache.Samples(ctx, format.BodyMars, format.EclipticLongitude, reqStart, reqEnd, 24*time.Hour)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, int32(1), src.calls.Load(), "repeat request served from memory")

	t.Run("Distinct requests fetch separately", func(t *testing.T) {
		_, err := cache.Samples(ctx, format.BodyVenus, format.EclipticLongitude, reqStart, reqEnd, 24*time.Hour)
		require.NoError(t, err)
		require.Equal(t, int32(2), src.calls.Load())

		_, err = cache.Samples(ctx, format.BodyMars, format.EclipticLongitude, reqStart, reqEnd, 12*time.Hour)
		require.NoError(t, err)
		require.Equal(t, int32(3), src.calls.Load(), "step is part of the key")
	})

	t.Run("Purge drops memory entries", func(t *testing.T) {
		cache.Purge()

		_, err := cache.Samples(ctx, format.BodyMars, format.EclipticLongitude, reqStart, reqEnd, 24*time.Hour)
		require.NoError(t, err)
		require.Equal(t, int32(4), src.calls.Load())
	})
}

func TestCache_DiskTier(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	src := &countingSource{}
	warm, err := New(src, WithDiskDir(dir))
	require.NoError(t, err)

	want, err := warm.Samples(ctx, format.BodyMars, format.Distance, reqStart, reqEnd, 24*time.Hour)
	require.NoError(t, err)
	require.Equal(t, int32(1), src.calls.Load())

	// A fresh cache over the same directory hits disk, not the source.
	cold, err := New(src, WithDiskDir(dir))
	require.NoError(t, err)

	got, err := cold.Samples(ctx, format.BodyMars, format.Distance, reqStart, reqEnd, 24*time.Hour)
	require.NoError(t, err)
	require.Equal(t, want, got)
	require.Equal(t, int32(1), src.calls.Load(), "disk entry served without refetching")
}

func TestCache_DiskCompressionVariants(t *testing.T) {
	ctx := context.Background()

	for _, ct := range []format.CompressionType{
		format.CompressionNone,
		format.CompressionZstd,
		format.CompressionS2,
		format.CompressionLZ4,
	} {
		t.Run(ct.String(), func(t *testing.T) {
			dir := t.TempDir()
			src := &countingSource{}

			warm, err := New(src, WithDiskDir(dir), WithCompression(ct))
			require.NoError(t, err)

			want, err := warm.Samples(ctx, format.BodyMoon, format.EclipticLongitude, reqStart, reqEnd, 6*time.Hour)
			require.NoError(t, err)

			cold, err := New(src, WithDiskDir(dir))
			require.NoError(t, err)

			got, err := cold.Samples(ctx, format.BodyMoon, format.EclipticLongitude, reqStart, reqEnd, 6*time.Hour)
			require.NoError(t, err)
			require.Equal(t, want, got, "entries are self-describing regardless of reader config")
			require.Equal(t, int32(1), src.calls.Load())
		})
	}
}

func TestCache_Options(t *testing.T) {
	src := &countingSource{}

	t.Run("Nil source", func(t *testing.T) {
		_, err := New(nil)
		require.Error(t, err)
	})

	t.Run("Bad LRU size", func(t *testing.T) {
		_, err := New(src, WithLRUSize(0))
		require.Error(t, err)
	})

	t.Run("Unknown compression", func(t *testing.T) {
		_, err := New(src, WithCompression(format.CompressionType(0x7F)))
		require.Error(t, err)
	})
}
