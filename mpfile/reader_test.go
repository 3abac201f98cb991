package mpfile

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ephemeralab/mpeph/errs"
	"github.com/ephemeralab/mpeph/fit"
	"github.com/ephemeralab/mpeph/format"
	"github.com/ephemeralab/mpeph/mjd"
	"github.com/ephemeralab/mpeph/section"
)

// buildTwoTierFile serializes a 60-day file with a coarse tier holding one
// block of constant 10 and a month tier holding two blocks of constants 20
// and 30.
func buildTwoTierFile(t *testing.T, opts ...WriterOption) []byte {
	t.Helper()

	w, err := NewWriter(format.BodyMars, format.Distance, testStart, testEnd, opts...)
	require.NoError(t, err)

	startMd := mjd.FromTime(testStart)
	endMd := mjd.FromTime(testEnd)
	width := format.TierMonth.WindowDays() * mjd.MicrodaysPerDay

	require.NoError(t, w.AddBlock(Block{
		Tier:   format.TierYear,
		Window: fit.Window{Start: startMd, End: endMd},
		Coeffs: []float64{10},
	}))
	require.NoError(t, w.AddBlock(Block{
		Tier:   format.TierMonth,
		Window: fit.Window{Start: startMd, End: startMd + width},
		Coeffs: []float64{20},
	}))
	require.NoError(t, w.AddBlock(Block{
		Tier:   format.TierMonth,
		Window: fit.Window{Start: startMd + width, End: endMd},
		Coeffs: []float64{30},
	}))

	data, err := w.Finish()
	require.NoError(t, err)

	return data
}

func TestNew(t *testing.T) {
	t.Run("Valid file", func(t *testing.T) {
		f, err := New(buildTwoTierFile(t))
		require.NoError(t, err)

		require.Equal(t, format.BodyMars, f.Body())
		require.Equal(t, format.Distance, f.Quantity())
		require.Equal(t, 3, f.BlockCount())

		start, end := f.Coverage()
		require.Equal(t, testStart, start)
		require.Equal(t, testEnd, end)

		require.Equal(t, []format.Tier{format.TierMonth, format.TierYear}, f.Tiers())
		require.Equal(t, []TierStat{
			{Tier: format.TierMonth, Blocks: 2},
			{Tier: format.TierYear, Blocks: 1},
		}, f.TierStats())
	})

	t.Run("Big-endian file", func(t *testing.T) {
		f, err := New(buildTwoTierFile(t, WithBigEndian()))
		require.NoError(t, err)

		v, err := f.Evaluate(testStart)
		require.NoError(t, err)
		require.InDelta(t, 20.0, v, 1e-12)
	})

	t.Run("Truncated file", func(t *testing.T) {
		data := buildTwoTierFile(t)

		_, err := New(data[:section.HeaderSize+4])
		require.ErrorIs(t, err, errs.ErrInvalidDirectorySize)

		_, err = New(data[:10])
		require.ErrorIs(t, err, errs.ErrInvalidHeaderSize)
	})

	t.Run("Corrupted payload", func(t *testing.T) {
		data := buildTwoTierFile(t)
		data[len(data)-1] ^= 0xFF

		_, err := New(data)
		require.ErrorIs(t, err, errs.ErrChecksumMismatch)
	})

	t.Run("Not a multi-precision file", func(t *testing.T) {
		_, err := New(make([]byte, 256))
		require.ErrorIs(t, err, errs.ErrInvalidMagicNumber)
	})
}

func TestFile_Evaluate(t *testing.T) {
	f, err := New(buildTwoTierFile(t))
	require.NoError(t, err)

	t.Run("Finest containing tier wins", func(t *testing.T) {
		v, err := f.Evaluate(testStart.AddDate(0, 0, 10))
		require.NoError(t, err)
		require.InDelta(t, 20.0, v, 1e-12, "month tier shadows the coarse tier")
	})

	t.Run("Window end routes to the next block", func(t *testing.T) {
		boundary := testStart.AddDate(0, 0, 30)

		v, err := f.Evaluate(boundary)
		require.NoError(t, err)
		require.InDelta(t, 30.0, v, 1e-12)
	})

	t.Run("Coverage start is inclusive", func(t *testing.T) {
		v, err := f.Evaluate(testStart)
		require.NoError(t, err)
		require.InDelta(t, 20.0, v, 1e-12)
	})

	t.Run("Coverage end is exclusive", func(t *testing.T) {
		_, err := f.Evaluate(testEnd)
		require.ErrorIs(t, err, errs.ErrOutOfRange)
	})

	t.Run("Before coverage", func(t *testing.T) {
		_, err := f.Evaluate(testStart.Add(-time.Second))
		require.ErrorIs(t, err, errs.ErrOutOfRange)
		require.Contains(t, err.Error(), "2024-01-01", "error carries the file bounds")
	})

	t.Run("Naive timestamp", func(t *testing.T) {
		_, err := f.Evaluate(time.Time{})
		require.ErrorIs(t, err, errs.ErrNaiveTime)
	})

	t.Run("Concurrent evaluation", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for d := 0; d < 60; d++ {
					_, err := f.Evaluate(testStart.AddDate(0, 0, d))
					require.NoError(t, err)
				}
			}()
		}
		wg.Wait()
	})
}

func TestFile_Evaluate_Angular(t *testing.T) {
	// An angular file whose polynomial evaluates outside [0, 360): the
	// reader must rewrap into the public convention.
	w, err := NewWriter(format.BodyMars, format.EclipticLongitude, testStart, testEnd)
	require.NoError(t, err)

	startMd := mjd.FromTime(testStart)
	endMd := mjd.FromTime(testEnd)
	require.NoError(t, w.AddBlock(Block{
		Tier:   format.TierYear,
		Window: fit.Window{Start: startMd, End: endMd},
		Coeffs: []float64{370},
	}))

	data, err := w.Finish()
	require.NoError(t, err)

	f, err := New(data)
	require.NoError(t, err)

	v, err := f.Evaluate(testStart.AddDate(0, 0, 5))
	require.NoError(t, err)
	require.InDelta(t, 10.0, v, 1e-12)
}

func TestFile_Evaluate_SignedLatitude(t *testing.T) {
	// Latitude is a signed angle in [-90, 90]; a negative fitted value must
	// come back as-is, never rewrapped to 355.
	w, err := NewWriter(format.BodyMars, format.EclipticLatitude, testStart, testEnd)
	require.NoError(t, err)

	startMd := mjd.FromTime(testStart)
	endMd := mjd.FromTime(testEnd)
	require.NoError(t, w.AddBlock(Block{
		Tier:   format.TierYear,
		Window: fit.Window{Start: startMd, End: endMd},
		Coeffs: []float64{-5},
	}))

	data, err := w.Finish()
	require.NoError(t, err)

	f, err := New(data)
	require.NoError(t, err)

	v, err := f.Evaluate(testStart.AddDate(0, 0, 5))
	require.NoError(t, err)
	require.InDelta(t, -5.0, v, 1e-12)
}

func TestFile_Close(t *testing.T) {
	f, err := New(buildTwoTierFile(t))
	require.NoError(t, err)

	require.NoError(t, f.Close())

	_, err = f.Evaluate(testStart)
	require.ErrorIs(t, err, errs.ErrFileClosed)
}
