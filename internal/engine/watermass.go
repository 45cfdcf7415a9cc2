package engine

import (
	"math"

	"fishcast/internal/types"
)

// WaterMass is the wind-derived proxy for the dominant surface current:
// which water body is being pushed through the strait and how hard.
type WaterMass struct {
	Type     types.WaterMassType
	Strength float64
}

// ComputeWaterMass classifies the wind into a lodos (warm push) or
// poyraz (cold push) water-mass signal. Strength ramps linearly from 0
// at the weak threshold to 1 at the strong threshold; anything outside
// the configured direction sets is neutral with zero strength.
func ComputeWaterMass(cardinal types.WindCardinal, speedKmh float64, cfg types.WaterMassConfig) WaterMass {
	norm := NormalizeCardinal8(string(cardinal))

	var massType types.WaterMassType
	switch {
	case containsCardinal(cfg.LodosDirections, norm):
		massType = types.WaterMassLodos
	case containsCardinal(cfg.PoyrazDirections, norm):
		massType = types.WaterMassPoyraz
	default:
		return WaterMass{Type: types.WaterMassNeutral, Strength: 0}
	}

	var strength float64
	switch {
	case speedKmh < cfg.WeakThresholdKmh:
		strength = 0
	case speedKmh >= cfg.StrongThresholdKmh:
		strength = 1
	default:
		strength = (speedKmh - cfg.WeakThresholdKmh) / (cfg.StrongThresholdKmh - cfg.WeakThresholdKmh)
	}

	return WaterMass{Type: massType, Strength: round2(strength)}
}

func containsCardinal(list []types.WindCardinal, c types.WindCardinal) bool {
	for _, v := range list {
		if v == c {
			return true
		}
	}
	return false
}

// round2 rounds to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
