package mjd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFromTime(t *testing.T) {
	t.Run("Epoch is zero", func(t *testing.T) {
		epoch := time.Date(1858, 11, 17, 0, 0, 0, 0, time.UTC)
		require.Equal(t, int64(0), FromTime(epoch))
	})

	t.Run("Known MJD values", func(t *testing.T) {
		// 2000-01-01 is MJD 51544; 1970-01-01 is MJD 40587.
		j2000 := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
		require.Equal(t, 51544*MicrodaysPerDay, FromTime(j2000))

		unixEpoch := time.Unix(0, 0).UTC()
		require.Equal(t, 40587*MicrodaysPerDay, FromTime(unixEpoch))
	})

	t.Run("Intra-day fractions", func(t *testing.T) {
		noon := time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)
		require.Equal(t, 51544*MicrodaysPerDay+MicrodaysPerDay/2, FromTime(noon))
	})

	t.Run("Before the epoch", func(t *testing.T) {
		before := time.Date(1858, 11, 16, 12, 0, 0, 0, time.UTC)
		require.Equal(t, -MicrodaysPerDay/2, FromTime(before))
	})

	t.Run("Monotonic near microday boundaries", func(t *testing.T) {
		base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
		prev := FromTime(base)
		for i := 1; i <= 200; i++ {
			cur := FromTime(base.Add(time.Duration(i) * 43200 * time.Microsecond))
			require.GreaterOrEqual(t, cur, prev)
			prev = cur
		}
	})
}

func TestToTime(t *testing.T) {
	t.Run("Round trip at microday precision", func(t *testing.T) {
		for _, md := range []int64{0, 1, MicrodaysPerDay, 51544 * MicrodaysPerDay, -MicrodaysPerDay / 2} {
			require.Equal(t, md, FromTime(ToTime(md)), "md=%d", md)
		}
	})

	t.Run("Far future does not overflow", func(t *testing.T) {
		far := time.Date(2500, 1, 1, 0, 0, 0, 0, time.UTC)
		md := FromTime(far)
		require.Equal(t, far, ToTime(md))
	})
}

func TestDays(t *testing.T) {
	require.Equal(t, int64(182_500_000), FromDays(182.5))
	require.InDelta(t, 182.5, Days(FromDays(182.5)), 1e-12)
}
