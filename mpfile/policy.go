package mpfile

import (
	"time"

	"github.com/ephemeralab/mpeph/format"
)

// TierSpec describes one precision tier the generator should produce: the
// block granularity, the fit tolerance and degree budget per block, and how
// many samples to request per window.
type TierSpec struct {
	// Tier is the nominal window granularity for this group of blocks.
	Tier format.Tier

	// Epsilon is the maximum tolerated absolute residual per block.
	Epsilon float64

	// MaxDegree bounds the degree search per block.
	MaxDegree int

	// SamplesPerWindow is how many evenly spaced samples to fetch per
	// window. It must exceed MaxDegree+1 to keep fits overdetermined.
	SamplesPerWindow int
}

// TierPolicy decides which precision tiers to generate for a quantity.
//
// Which tiers a quantity needs depends on how fast it varies: a quantity
// with short-period features unresolved by the coarsest tier needs finer
// tiers. That knowledge lives with the caller, so the policy is injected
// rather than hardcoded.
type TierPolicy interface {
	Specs(q format.Quantity) []TierSpec
}

// StaticPolicy returns the same tier specs for every quantity.
type StaticPolicy struct {
	TierSpecs []TierSpec
}

// Specs implements TierPolicy.
func (p StaticPolicy) Specs(format.Quantity) []TierSpec {
	return p.TierSpecs
}

// defaultPolicy is the documented default: angular quantities move fast
// enough (the Moon covers ~13 degrees/day in longitude) that a month tier
// with a tight tolerance is generated alongside a coarse year tier; slow
// scalar quantities get the year tier only.
type defaultPolicy struct{}

// Specs implements TierPolicy.
func (defaultPolicy) Specs(q format.Quantity) []TierSpec {
	year := TierSpec{Tier: format.TierYear, Epsilon: 1e-4, MaxDegree: 18, SamplesPerWindow: 96}
	if !q.IsAngular() {
		return []TierSpec{year}
	}

	return []TierSpec{
		year,
		{Tier: format.TierMonth, Epsilon: 1e-6, MaxDegree: 12, SamplesPerWindow: 48},
	}
}

// DefaultPolicy returns the built-in tier policy.
func DefaultPolicy() TierPolicy {
	return defaultPolicy{}
}

// RetryPolicy controls how the generator retries a failed sample fetch.
// The zero value means no retries: the first failure aborts the generation.
type RetryPolicy struct {
	// Attempts is the number of additional tries after the first failure.
	Attempts int

	// Backoff is the fixed delay between tries.
	Backoff time.Duration
}
