// Package format defines the identifier codes and enums shared by the
// multi-precision file format: body and quantity codes, precision tiers,
// and the compression types used by the raw-sample cache.
package format

type (
	// Body identifies a solar-system body in file headers and cache keys.
	Body uint16

	// Quantity identifies the physical value a file encodes.
	Quantity uint16

	// Tier identifies a nominal block window granularity. A file may carry
	// blocks from several tiers for the same quantity.
	Tier uint8

	// CompressionType selects the codec for cached raw-sample payloads.
	CompressionType uint8
)

// Body codes. Values are part of the binary format; never renumber.
const (
	BodyUnknown Body = 0
	BodySun     Body = 10
	BodyMoon    Body = 301
	BodyMercury Body = 199
	BodyVenus   Body = 299
	BodyMars    Body = 499
	BodyJupiter Body = 599
	BodySaturn  Body = 699
	BodyUranus  Body = 799
	BodyNeptune Body = 899
	BodyPluto   Body = 999
)

// Quantity codes. Values are part of the binary format; never renumber.
const (
	QuantityUnknown      Quantity = 0
	EclipticLongitude    Quantity = 1
	EclipticLatitude     Quantity = 2
	Distance             Quantity = 3
	RightAscension       Quantity = 4
	Declination          Quantity = 5
	MeanAnomaly          Quantity = 6
	ArgumentOfPerihelion Quantity = 7
	AscendingNode        Quantity = 8
	Eccentricity         Quantity = 9
	SemiMajorAxis        Quantity = 10
	Inclination          Quantity = 11
)

// Tier codes, coarsest first. Values are part of the binary format.
const (
	TierCentury Tier = 1
	TierYear    Tier = 2
	TierMonth   Tier = 3
	TierDay     Tier = 4
)

const (
	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
)

// IsAngular reports whether the quantity wraps modulo 360 degrees.
// Angular quantities are unwrapped before fitting and rewrapped into
// [0, 360) after evaluation. Signed angles such as latitude, declination
// and inclination are bounded rather than modular and must not rewrap:
// a latitude of -5 degrees is -5, not 355.
func (q Quantity) IsAngular() bool {
	switch q {
	case EclipticLongitude, RightAscension, MeanAnomaly,
		ArgumentOfPerihelion, AscendingNode:
		return true
	default:
		return false
	}
}

func (q Quantity) String() string {
	switch q {
	case EclipticLongitude:
		return "ecliptic-longitude"
	case EclipticLatitude:
		return "ecliptic-latitude"
	case Distance:
		return "distance"
	case RightAscension:
		return "right-ascension"
	case Declination:
		return "declination"
	case MeanAnomaly:
		return "mean-anomaly"
	case ArgumentOfPerihelion:
		return "argument-of-perihelion"
	case AscendingNode:
		return "ascending-node"
	case Eccentricity:
		return "eccentricity"
	case SemiMajorAxis:
		return "semi-major-axis"
	case Inclination:
		return "inclination"
	default:
		return "unknown"
	}
}

func (b Body) String() string {
	switch b {
	case BodySun:
		return "sun"
	case BodyMoon:
		return "moon"
	case BodyMercury:
		return "mercury"
	case BodyVenus:
		return "venus"
	case BodyMars:
		return "mars"
	case BodyJupiter:
		return "jupiter"
	case BodySaturn:
		return "saturn"
	case BodyUranus:
		return "uranus"
	case BodyNeptune:
		return "neptune"
	case BodyPluto:
		return "pluto"
	default:
		return "unknown"
	}
}

// WindowDays returns the tier's nominal window width in whole days.
// Widths are nominal grouping granularities, not calendar units: a month
// tier uses fixed 30-day windows so that partitions stay aligned.
func (t Tier) WindowDays() int64 {
	switch t {
	case TierCentury:
		return 36500
	case TierYear:
		return 365
	case TierMonth:
		return 30
	case TierDay:
		return 1
	default:
		return 0
	}
}

func (t Tier) String() string {
	switch t {
	case TierCentury:
		return "century"
	case TierYear:
		return "year"
	case TierMonth:
		return "month"
	case TierDay:
		return "day"
	default:
		return "unknown"
	}
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}
