package engine

import (
	"math"

	"fishcast/internal/types"
)

// SeasonAdjustment is the additive seasonal correction for one species
// and month. Points never force a score to zero; off months are a
// penalty, not a veto.
type SeasonAdjustment struct {
	Points int
	Status types.SeasonStatus

	// ConfidenceImpact is subtracted from confidence on top of the
	// generic season penalty.
	ConfidenceImpact float64

	// StrayCatchPossible marks an off month where conditions are good
	// enough that a stray catch is plausible; the off penalty was
	// reduced accordingly.
	StrayCatchPossible bool
}

// ComputeSeasonAdjustment resolves the species' seasonal state for the
// given month. weightedSum is the pre-adjustment parameter sum, used to
// trigger the stray-catch relaxation in off months. A species missing
// from the table is treated as year-round active with no adjustment.
func ComputeSeasonAdjustment(speciesID types.SpeciesID, month int, weightedSum float64, cfg *types.SeasonalityConfig) SeasonAdjustment {
	neutral := SeasonAdjustment{Status: types.SeasonActive}

	if cfg == nil || cfg.Species == nil {
		return neutral
	}
	sp, ok := cfg.Species[speciesID]
	if !ok {
		return neutral
	}

	if containsMonth(sp.PeakMonths, month) {
		return SeasonAdjustment{
			Points: sp.PeakAdjustment,
			Status: types.SeasonPeak,
		}
	}

	if containsMonth(sp.ShoulderMonths, month) {
		return SeasonAdjustment{
			Points:           sp.ShoulderAdjustment,
			Status:           types.SeasonShoulder,
			ConfidenceImpact: sp.ConfidenceImpact * 0.3,
		}
	}

	if containsMonth(sp.OffMonths, month) {
		adj := SeasonAdjustment{
			Points:           sp.OffAdjustment,
			Status:           types.SeasonOff,
			ConfidenceImpact: sp.ConfidenceImpact,
		}

		if weightedSum >= sp.Parca.ConditionThreshold {
			adj.Points = int(math.Round(float64(sp.OffAdjustment) * (1.0 - sp.Parca.PenaltyReduction)))
			adj.StrayCatchPossible = true
			adj.ConfidenceImpact = max(sp.ConfidenceImpact*0.5, sp.Parca.Confidence)
		}

		return adj
	}

	return neutral
}

func containsMonth(months []int, month int) bool {
	for _, m := range months {
		if m == month {
			return true
		}
	}
	return false
}
