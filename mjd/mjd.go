// Package mjd converts between time.Time and the fixed-point day-based
// representation used throughout the multi-precision file format.
//
// Absolute time is carried as a signed 64-bit count of microdays (millionths
// of a day) since the Modified Julian Date epoch, 1858-11-17T00:00:00 UTC.
// One microday is 86.4 ms, fine enough for ephemeris work while keeping
// window arithmetic exact: tier windows are whole numbers of days and
// therefore whole numbers of microdays.
package mjd

import "time"

const (
	// MicrodaysPerDay is the fixed-point scale: one day in microdays.
	MicrodaysPerDay int64 = 1_000_000

	// epochUnixSec is the Unix timestamp of the MJD epoch (1858-11-17 UTC).
	epochUnixSec int64 = -3506716800

	// nanosPerMicroday is the exact nanosecond width of one microday (86.4 ms).
	nanosPerMicroday int64 = 86_400_000
)

// FromTime converts an absolute time to microdays since the MJD epoch.
// Sub-microday precision is truncated toward negative infinity so that
// conversions are monotonic.
func FromTime(t time.Time) int64 {
	sec := t.Unix() - epochUnixSec

	// Split into whole days plus an intra-day remainder to keep the
	// nanosecond arithmetic far away from int64 overflow.
	days := sec / 86400
	rem := sec % 86400
	if rem < 0 {
		days--
		rem += 86400
	}

	return days*MicrodaysPerDay + (rem*1_000_000_000+int64(t.Nanosecond()))/nanosPerMicroday
}

// ToTime converts microdays since the MJD epoch back to a UTC time.Time.
func ToTime(md int64) time.Time {
	days := md / MicrodaysPerDay
	rem := md % MicrodaysPerDay
	if rem < 0 {
		days--
		rem += MicrodaysPerDay
	}

	// rem is below one day, so its nanosecond count stays well within int64.
	ns := rem * nanosPerMicroday

	return time.Unix(epochUnixSec+days*86400+ns/1_000_000_000, ns%1_000_000_000).UTC()
}

// FromDays converts a fractional MJD day count to microdays.
func FromDays(days float64) int64 {
	return int64(days * float64(MicrodaysPerDay))
}

// Days converts microdays to a fractional MJD day count.
func Days(md int64) float64 {
	return float64(md) / float64(MicrodaysPerDay)
}
