package engine

import (
	"fmt"
	"math"

	"fishcast/internal/types"
)

// ScoreInput carries everything the scorer needs for one species at
// one spot. The rule bonus arrives pre-capped from the rule engine;
// the scorer re-caps it as an independent safety net.
type ScoreInput struct {
	SpeciesID types.SpeciesID
	Weather   *types.WeatherSnapshot
	Solunar   *types.SolunarSnapshot
	Shore     types.Shore

	RuleBonus int

	Month  int
	Hour   int
	Minute int

	DataQuality      types.DataQuality
	HasRecentReports bool
	CoordAccuracy    types.CoordAccuracy
	FiredRuleCount   int
}

// ScoreSpecies computes the final 0-100 score for one species:
//
//	score = clamp(0, 100, round(weightedSum*100 + seasonAdj) + cappedBonus)
//
// followed by the off-season floor. A species missing from the weight
// table returns the zero-score sentinel (score 0, confidence 0.1)
// instead of failing, so one misconfigured species cannot take down a
// whole run.
func ScoreSpecies(in ScoreInput, scoring *types.ScoringConfig, seasonality *types.SeasonalityConfig) types.SpeciesScoreResult {
	weights, ok := scoring.SpeciesWeights[in.SpeciesID]
	if !ok {
		return types.SpeciesScoreResult{
			Score:        0,
			Confidence:   0.1,
			SeasonStatus: types.SeasonActive,
		}
	}

	var band *types.TempBand
	if b, ok := scoring.SpeciesTemp[in.SpeciesID]; ok {
		band = &b
	}

	pScore := PressureScore(in.Weather.PressureHPa, in.Weather.PressureDelta3h)
	wScore := WindScore(in.Weather.WindSpeedKmh, in.Weather.WindDirectionDeg, in.Shore)
	stScore := SeaTempScore(in.Weather.SeaTempC, band, in.Month)
	solScore := SolunarScore(in.Hour, in.Minute, in.Solunar)
	tScore := TimeScore(in.Hour, scoring.SpeciesBestHours[in.SpeciesID])

	weightedSum := weights.Pressure*pScore +
		weights.Wind*wScore +
		weights.SeaTemp*stScore +
		weights.Solunar*solScore +
		weights.Time*tScore

	season := ComputeSeasonAdjustment(in.SpeciesID, in.Month, weightedSum, seasonality)

	// Safety-net capping even though the rule engine already capped.
	var cappedBonus int
	if in.RuleBonus > 0 {
		cappedBonus = min(scoring.RuleBonusCaps.TotalCap, in.RuleBonus)
	} else {
		cappedBonus = max(scoring.RuleBonusCaps.NegativeFloor, in.RuleBonus)
	}

	rawScore := int(math.Round(weightedSum*100+float64(season.Points))) + cappedBonus
	finalScore := max(0, min(100, rawScore))

	// Off-season species stay visible at their floor.
	if season.Status == types.SeasonOff && seasonality != nil {
		floor := 10
		if sp, ok := seasonality.Species[in.SpeciesID]; ok {
			floor = sp.OffFloor
		}
		if finalScore < floor {
			finalScore = floor
		}
	}

	confidence := ComputeConfidence(ConfidenceInput{
		DataQuality:      in.DataQuality,
		HasRecentReports: in.HasRecentReports,
		SeasonStatus:     season.Status,
		SeasonImpact:     season.ConfidenceImpact,
		CoordAccuracy:    in.CoordAccuracy,
		FiredRuleCount:   in.FiredRuleCount,
	}, scoring.ConfidenceFactors)

	return types.SpeciesScoreResult{
		Score:              finalScore,
		Confidence:         confidence,
		SeasonStatus:       season.Status,
		BestTime:           deriveBestTime(in.SpeciesID, scoring),
		StrayCatchPossible: season.StrayCatchPossible,
		Breakdown: &types.ScoreBreakdown{
			Pressure:         round2(pScore),
			Wind:             round2(wScore),
			SeaTemp:          round2(stScore),
			Solunar:          round2(solScore),
			Time:             round2(tScore),
			SeasonAdjustment: season.Points,
			RuleBonus:        cappedBonus,
		},
	}
}

// deriveBestTime renders the species' first best-hours range as a
// display hint.
func deriveBestTime(speciesID types.SpeciesID, scoring *types.ScoringConfig) string {
	ranges := scoring.SpeciesBestHours[speciesID]
	if len(ranges) == 0 {
		return ""
	}
	return fmt.Sprintf("%02d:00-%02d:00", ranges[0].Start, ranges[0].End)
}
