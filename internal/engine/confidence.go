package engine

import (
	"math"

	"fishcast/internal/types"
)

// ConfidenceInput carries everything the estimator looks at for one
// species score.
type ConfidenceInput struct {
	DataQuality      types.DataQuality
	HasRecentReports bool
	SeasonStatus     types.SeasonStatus
	SeasonImpact     float64
	CoordAccuracy    types.CoordAccuracy
	FiredRuleCount   int
}

// ComputeConfidence combines the data-quality base with report,
// coordinate, rule-load, and season signals. The result is clamped to
// [0.1, 1.0] and rounded to two decimals; it is never exactly zero.
func ComputeConfidence(in ConfidenceInput, cf types.ConfidenceFactors) float64 {
	base, ok := cf.DataQualityBase[in.DataQuality]
	if !ok {
		base = 0.5
	}

	if in.HasRecentReports {
		base += cf.ReportBoost
	}

	if in.CoordAccuracy == types.CoordApproximate {
		base -= cf.ApproxCoordPenalty
	}

	// Many fired rules mean a crowded, less certain picture.
	extra := in.FiredRuleCount - cf.FiredRulesThreshold
	if extra > 0 {
		base -= min(cf.MaxFiredRulesPenalty, float64(extra)*cf.FiredRulesPenalty)
	}

	switch in.SeasonStatus {
	case types.SeasonOff:
		base -= cf.SeasonOffPenalty
	case types.SeasonShoulder:
		base -= cf.SeasonShoulderPenalty
	}

	base -= in.SeasonImpact

	return math.Round(max(0.1, min(1.0, base))*100) / 100
}
