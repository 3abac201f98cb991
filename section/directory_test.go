package section

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ephemeralab/mpeph/endian"
	"github.com/ephemeralab/mpeph/errs"
	"github.com/ephemeralab/mpeph/format"
)

func TestTierEntry(t *testing.T) {
	engine := endian.GetLittleEndianEngine()

	original := TierEntry{Tier: format.TierMonth, BlockCount: 12}
	data := original.Bytes(engine)
	require.Len(t, data, TierEntrySize)

	parsed := &TierEntry{}
	require.NoError(t, parsed.Parse(data, engine))
	require.Equal(t, original, *parsed)

	require.ErrorIs(t, parsed.Parse(data[:3], engine), errs.ErrInvalidTierTable)
}

func TestDirectoryEntry_Parse(t *testing.T) {
	engine := endian.GetLittleEndianEngine()

	t.Run("Round trip", func(t *testing.T) {
		original := DirectoryEntry{
			Tier:          format.TierYear,
			CoeffCount:    19,
			WindowStart:   -1_000_000,
			WindowEnd:     364_000_000,
			PayloadOffset: 480,
			PayloadLength: 19 * CoefficientSize,
		}

		parsed := &DirectoryEntry{}
		require.NoError(t, parsed.Parse(original.Bytes(engine), engine))
		require.Equal(t, original, *parsed)
	})

	t.Run("Short input", func(t *testing.T) {
		parsed := &DirectoryEntry{}
		require.ErrorIs(t, parsed.Parse(make([]byte, 8), engine), errs.ErrInvalidDirectorySize)
	})

	t.Run("Empty window rejected", func(t *testing.T) {
		entry := DirectoryEntry{
			Tier: format.TierYear, CoeffCount: 2,
			WindowStart: 100, WindowEnd: 100,
			PayloadLength: 2 * CoefficientSize,
		}

		parsed := &DirectoryEntry{}
		require.ErrorIs(t, parsed.Parse(entry.Bytes(engine), engine), errs.ErrInvalidDirectoryEntry)
	})

	t.Run("Zero coefficients rejected", func(t *testing.T) {
		entry := DirectoryEntry{
			Tier: format.TierYear,
			WindowStart: 0, WindowEnd: 100,
		}

		parsed := &DirectoryEntry{}
		require.ErrorIs(t, parsed.Parse(entry.Bytes(engine), engine), errs.ErrInvalidDirectoryEntry)
	})

	t.Run("Inconsistent payload length rejected", func(t *testing.T) {
		entry := DirectoryEntry{
			Tier: format.TierYear, CoeffCount: 3,
			WindowStart: 0, WindowEnd: 100,
			PayloadLength: 2 * CoefficientSize,
		}

		parsed := &DirectoryEntry{}
		require.ErrorIs(t, parsed.Parse(entry.Bytes(engine), engine), errs.ErrInvalidDirectoryEntry)
	})
}

func TestDirectoryEntry_Contains(t *testing.T) {
	entry := DirectoryEntry{WindowStart: 100, WindowEnd: 200}

	require.True(t, entry.Contains(100))
	require.True(t, entry.Contains(199))
	require.False(t, entry.Contains(200), "window end is exclusive")
	require.False(t, entry.Contains(99))
	require.Equal(t, int64(100), entry.Width())
}
