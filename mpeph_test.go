package mpeph

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ephemeralab/mpeph/format"
	"github.com/ephemeralab/mpeph/mjd"
	"github.com/ephemeralab/mpeph/mpfile"
)

// rampSource serves a longitude advancing one degree per MJD day.
func rampSource(_ context.Context, _ format.Body, _ format.Quantity, start, end time.Time, step time.Duration) ([]mpfile.Sample, error) {
	var samples []mpfile.Sample
	for t := start; !t.After(end); t = t.Add(step) {
		samples = append(samples, mpfile.Sample{
			Time:  t,
			Value: math.Mod(mjd.Days(mjd.FromTime(t)), 360),
		})
	}

	return samples, nil
}

func TestGenerateAndOpen(t *testing.T) {
	start := mjd.ToTime(60000 * mjd.MicrodaysPerDay) // MJD 60000, early 2023
	end := start.AddDate(0, 0, 365)

	data, err := Generate(context.Background(), mpfile.SourceFunc(rampSource),
		format.BodyMars, format.EclipticLongitude, start, end)
	require.NoError(t, err)

	f, err := New(data)
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, format.BodyMars, f.Body())
	require.Equal(t, format.EclipticLongitude, f.Quantity())

	// The default policy gives angular quantities both a year and a month tier.
	require.Equal(t, []format.Tier{format.TierMonth, format.TierYear}, f.Tiers())

	at := start.AddDate(0, 0, 100)
	v, err := f.Evaluate(at)
	require.NoError(t, err)
	require.InDelta(t, math.Mod(mjd.Days(mjd.FromTime(at)), 360), v, 1e-6)
}

func TestGenerateFile(t *testing.T) {
	start := mjd.ToTime(60000 * mjd.MicrodaysPerDay)
	end := start.AddDate(0, 0, 60)
	path := filepath.Join(t.TempDir(), "mars-longitude.mpe")

	policy := mpfile.StaticPolicy{TierSpecs: []mpfile.TierSpec{
		{Tier: format.TierMonth, Epsilon: 1e-6, MaxDegree: 8, SamplesPerWindow: 16},
	}}

	err := GenerateFile(context.Background(), mpfile.SourceFunc(rampSource),
		format.BodyMars, format.EclipticLongitude, start, end, path,
		mpfile.WithTierPolicy(policy))
	require.NoError(t, err)

	f, err := Open(path)
	require.NoError(t, err)
	defer f.Close()
	require.Equal(t, 2, f.BlockCount())
}

func TestDefaultPolicy(t *testing.T) {
	require.NotEmpty(t, DefaultPolicy().Specs(format.Distance))
}
