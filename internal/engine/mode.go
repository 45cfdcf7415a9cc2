package engine

import (
	"fishcast/internal/types"
)

// baitSensitiveSpecies switch to natural bait when the bite turns
// picky; they drive the P1 and P5 selective branches.
var baitSensitiveSpecies = map[types.SpeciesID]bool{
	types.SpeciesCinekop:   true,
	types.SpeciesSarikanat: true,
	types.SpeciesLufer:     true,
}

// exposureSensitiveSpecies hold deep when onshore wind churns their
// feeding lanes (P3).
var exposureSensitiveSpecies = map[types.SpeciesID]bool{
	types.SpeciesCinekop:   true,
	types.SpeciesSarikanat: true,
}

// ModeInput is the classifier's view of one species at one spot.
type ModeInput struct {
	SpeciesID types.SpeciesID
	Weather   *types.WeatherSnapshot
	Solunar   *types.SolunarSnapshot
	Spot      *types.Spot
	Reports   *types.ReportSignal
}

// DeriveMode classifies day-level behavior through six ordered
// priorities, first match wins:
//
//	P1: natural-bait report bias + bait-sensitive species -> selective
//	P2: extreme wind or pressure swing -> holding;
//	    rapid fall -> chasing (feeding frenzy); rapid rise -> holding
//	P3: onshore wind + low shelter + exposure-sensitive -> holding
//	P4: good solunar + stable pressure, or excellent solunar -> chasing
//	P5: falling pressure -> selective for bait-sensitive, else chasing
//	P6: rising pressure -> holding
//	Default: chasing
//
// The classifier returns the plain table outcome; the rule engine's
// mode hint, when present, is merged by the caller.
func DeriveMode(in ModeInput, thresholds types.PressureThresholds) types.SpeciesMode {
	// P1
	if in.Reports != nil && in.Reports.NaturalBaitBias && baitSensitiveSpecies[in.SpeciesID] {
		return types.ModeSelective
	}

	// P2
	if in.Weather.WindSpeedKmh > 25 {
		return types.ModeHolding
	}
	if abs(in.Weather.PressureDelta3h) > thresholds.ExtremeChange {
		return types.ModeHolding
	}
	if in.Weather.PressureDelta3h < thresholds.RapidFalling {
		return types.ModeChasing
	}
	if in.Weather.PressureDelta3h > thresholds.RapidRising {
		return types.ModeHolding
	}

	// P3
	if in.Spot != nil && exposureSensitiveSpecies[in.SpeciesID] {
		if isOnshore(in.Weather.WindDirectionDeg, in.Spot.Exposure.OnshoreDirsDeg) &&
			in.Weather.WindSpeedKmh > 15 &&
			in.Spot.Exposure.ShelterScore < 0.4 {
			return types.ModeHolding
		}
	}

	// P4
	if in.Solunar.Rating >= 0.6 && in.Weather.PressureTrend == types.PressureStable {
		return types.ModeChasing
	}
	if in.Solunar.Rating >= 0.8 {
		return types.ModeChasing
	}

	// P5
	if in.Weather.PressureTrend == types.PressureFalling && in.Weather.PressureDelta3h < -1 {
		if baitSensitiveSpecies[in.SpeciesID] {
			return types.ModeSelective
		}
		return types.ModeChasing
	}

	// P6
	if in.Weather.PressureTrend == types.PressureRising && in.Weather.PressureDelta3h > 1 {
		return types.ModeHolding
	}

	return types.ModeChasing
}

// isOnshore reports whether the wind blows within 45 degrees of any of
// the spot's onshore directions.
func isOnshore(windDeg float64, onshoreDirsDeg []int) bool {
	for _, onshore := range onshoreDirsDeg {
		diff := abs(windDeg - float64(onshore))
		if diff > 180 {
			diff = 360 - diff
		}
		if diff <= 45 {
			return true
		}
	}
	return false
}
