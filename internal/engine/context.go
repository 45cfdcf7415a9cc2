package engine

import (
	"time"

	"fishcast/internal/types"
)

// Context is the flattened snapshot of every field a rule condition may
// reference. Built fresh per (spot, instant) pair and never mutated;
// rebuild it if the daylight or water-mass inputs change.
type Context struct {
	WindSpeedKmh     float64
	WindDirDeg       float64
	WindCardinal     types.WindCardinal
	PressureHPa      float64
	PressureChange3h float64
	PressureTrend    types.PressureTrend
	AirTempC         float64
	SeaTempC         *float64
	CloudCoverPct    float64

	Shore           types.Shore
	Region          types.RegionID
	SpotID          string
	PelagicCorridor bool
	Features        []string
	ShelteredFrom   []types.WindCardinal

	Hour   int
	Minute int
	Month  int

	MoonIllumination float64
	SolunarRating    float64
	IsDaylight       bool
	AfterRain        bool

	WaterMass WaterMass
}

// BuildContext assembles the evaluation context for one spot at one
// instant. The water mass is computed once per run by the caller and
// shared across spots.
func BuildContext(weather *types.WeatherSnapshot, spot *types.Spot, solunar *types.SolunarSnapshot, daylight *types.DaylightSnapshot, waterMass WaterMass, now time.Time) *Context {
	ctx := &Context{
		WindSpeedKmh:     weather.WindSpeedKmh,
		WindDirDeg:       weather.WindDirectionDeg,
		WindCardinal:     weather.WindCardinal,
		PressureHPa:      weather.PressureHPa,
		PressureChange3h: weather.PressureDelta3h,
		PressureTrend:    weather.PressureTrend,
		AirTempC:         weather.AirTempC,
		SeaTempC:         weather.SeaTempC,
		CloudCoverPct:    weather.CloudCoverPct,

		Shore:           spot.Shore,
		Region:          spot.Region,
		SpotID:          spot.ID,
		PelagicCorridor: spot.PelagicCorridor,
		Features:        spot.Features,
		ShelteredFrom:   spot.ShelteredFrom,

		Hour:   now.Hour(),
		Minute: now.Minute(),
		Month:  int(now.Month()),

		MoonIllumination: solunar.MoonIlluminationPct,
		SolunarRating:    solunar.Rating,

		IsDaylight: true,

		WaterMass: waterMass,
	}

	if daylight != nil {
		ctx.IsDaylight = daylight.IsDaylight
	}

	return ctx
}

// numeric resolves a numeric context field by its condition name.
// Missing optional values (no sea temperature) report false rather
// than a default, so conditions on them simply do not match.
func (c *Context) numeric(field string) (float64, bool) {
	switch field {
	case "windSpeedKmh":
		return c.WindSpeedKmh, true
	case "windDirDeg":
		return c.WindDirDeg, true
	case "pressureHpa":
		return c.PressureHPa, true
	case "pressureChange3hHpa":
		return c.PressureChange3h, true
	case "airTempC":
		return c.AirTempC, true
	case "seaTempC":
		if c.SeaTempC == nil {
			return 0, false
		}
		return *c.SeaTempC, true
	case "cloudCoverPct":
		return c.CloudCoverPct, true
	case "hour":
		return float64(c.Hour), true
	case "minute":
		return float64(c.Minute), true
	case "month":
		return float64(c.Month), true
	case "moonIllumination":
		return c.MoonIllumination, true
	case "solunarRating":
		return c.SolunarRating, true
	case "waterMassStrength":
		return c.WaterMass.Strength, true
	default:
		return 0, false
	}
}

// str resolves a string-valued context field by its condition name.
func (c *Context) str(field string) (string, bool) {
	switch field {
	case "windDirectionCardinal":
		return string(c.WindCardinal), true
	case "pressureTrend":
		return string(c.PressureTrend), true
	case "shore":
		return string(c.Shore), true
	case "regionId":
		return string(c.Region), true
	case "spot":
		return c.SpotID, true
	case "waterMassProxy":
		return string(c.WaterMass.Type), true
	default:
		return "", false
	}
}

// boolean resolves a boolean context field by its condition name.
func (c *Context) boolean(field string) (bool, bool) {
	switch field {
	case "pelagicCorridor":
		return c.PelagicCorridor, true
	case "isDaylight":
		return c.IsDaylight, true
	case "after_rain":
		return c.AfterRain, true
	default:
		return false, false
	}
}
