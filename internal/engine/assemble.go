package engine

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"fishcast/internal/types"
)

// avoidReason maps a mode to the display reason attached to its
// suppressed techniques.
func avoidReason(mode types.SpeciesMode) string {
	switch mode {
	case types.ModeHolding:
		return "Mod pasif — bu teknik etkisiz"
	case types.ModeSelective:
		return "Tür seçici — yapay yem yerine doğal yem tercih et"
	default:
		return "Kural gereği kaçınılmalı"
	}
}

// RunInput is everything one decision run consumes. All fields are
// treated as read-only for the duration of the run.
type RunInput struct {
	Now time.Time

	Weather  *types.WeatherSnapshot
	Solunar  *types.SolunarSnapshot
	Daylight *types.DaylightSnapshot

	Spots []types.Spot
	Rules []CompiledRule

	Scoring     *types.ScoringConfig
	Seasonality *types.SeasonalityConfig

	// Reports maps spot ID to its recent-report signal; nil entries
	// and a nil map are both fine.
	Reports map[string]*types.ReportSignal

	// TraceLevel is the applied level; the policy gate (downgrading a
	// refused "full") belongs to the caller.
	TraceLevel types.TraceLevel

	Meta types.DecisionMeta
}

// ComputeSpotScore evaluates rules and scores every tier-1 species for
// one spot.
func ComputeSpotScore(spot *types.Spot, in *RunInput, waterMass WaterMass) types.SpotScore {
	ctx := BuildContext(in.Weather, spot, in.Solunar, in.Daylight, waterMass, in.Now)
	ruleResult := EvaluateRules(in.Rules, ctx, types.TierOneSpecies, in.Scoring.RuleBonusCaps)

	reports := in.Reports[spot.ID]
	hasReports := reports != nil && reports.RecentCount > 0

	speciesScores := make(map[types.SpeciesID]types.SpeciesScoreResult, len(types.TierOneSpecies))
	scoreSum := 0
	scoreCount := 0

	for _, spID := range types.TierOneSpecies {
		scored := ScoreSpecies(ScoreInput{
			SpeciesID:        spID,
			Weather:          in.Weather,
			Solunar:          in.Solunar,
			Shore:            spot.Shore,
			RuleBonus:        ruleResult.SpeciesBonuses[spID],
			Month:            int(in.Now.Month()),
			Hour:             in.Now.Hour(),
			Minute:           in.Now.Minute(),
			DataQuality:      in.Weather.DataQuality,
			HasRecentReports: hasReports,
			CoordAccuracy:    spot.CoordAccuracy,
			FiredRuleCount:   ruleResult.FiredRuleCount,
		}, in.Scoring, in.Seasonality)

		mode := DeriveMode(ModeInput{
			SpeciesID: spID,
			Weather:   in.Weather,
			Solunar:   in.Solunar,
			Spot:      spot,
			Reports:   reports,
		}, in.Scoring.PressureThresholds)
		if hint, ok := ruleResult.ModeHintFor(spID); ok {
			mode = hint
		}

		scored.Mode = mode
		scored.SuppressedByNoGo = ruleResult.IsNoGo

		hints := ruleResult.TechniqueHints[spID]
		removes := ruleResult.RemoveTechniques[spID]
		modeAvoids := types.TechniquesToAvoid[mode]

		var recommended []types.TechniqueID
		for _, t := range hints {
			if !containsTechnique(removes, t) && !containsTechnique(modeAvoids, t) {
				recommended = append(recommended, t)
			}
		}
		if len(recommended) > 3 {
			recommended = recommended[:3]
		}
		scored.RecommendedTechniques = recommended

		var avoids []types.AvoidTechnique
		seen := map[types.TechniqueID]bool{}
		for _, t := range modeAvoids {
			if !seen[t] {
				seen[t] = true
				avoids = append(avoids, types.AvoidTechnique{TechniqueID: t, Reason: avoidReason(mode)})
			}
		}
		for _, t := range removes {
			if !seen[t] {
				seen[t] = true
				avoids = append(avoids, types.AvoidTechnique{TechniqueID: t, Reason: avoidReason(mode)})
			}
		}
		scored.AvoidTechniques = avoids

		speciesScores[spID] = scored

		if scored.SeasonStatus != types.SeasonOff {
			scoreSum += scored.Score
			scoreCount++
		}
	}

	overall := int(math.Round(float64(scoreSum) / float64(max(1, scoreCount))))
	if ruleResult.IsNoGo {
		overall = 0
	}

	score := types.SpotScore{
		SpotID:       spot.ID,
		SpotName:     spot.Name,
		Region:       spot.Region,
		OverallScore: overall,
		NoGo:         ruleResult.IsNoGo,
		NoGoReasons:  ruleResult.NoGoReasons,
		Species:      speciesScores,
		ActiveRules:  ruleResult.ActiveRules,
		Trace:        buildTrace(ruleResult, in.Weather.DataQuality, in.TraceLevel),
	}

	return score
}

// buildTrace renders the diagnostics section for the requested level.
func buildTrace(r *RuleResult, dq types.DataQuality, level types.TraceLevel) *types.EvaluationTrace {
	if level == types.TraceNone {
		return nil
	}

	ids := make([]string, 0, len(r.ActiveRules))
	for _, ar := range r.ActiveRules {
		ids = append(ids, ar.RuleID)
	}

	trace := &types.EvaluationTrace{
		FiredRuleCount: r.FiredRuleCount,
		ActiveRuleIDs:  ids,
		DataQuality:    dq,
	}

	if level == types.TraceFull {
		trace.RawByCategory = r.RawByCategory
		trace.CappedByCategory = r.CappedByCategory
		trace.PositiveRaw = r.PositiveRaw
		trace.PositiveCapped = r.PositiveCapped
		trace.NegativeTotal = r.NegativeTotal
		trace.FinalRuleBonus = r.FinalRuleBonus
	}

	return trace
}

// ComputeBestWindows derives 0-4 recommended windows from the solunar
// periods, annotated and sorted by score descending.
func ComputeBestWindows(solunar *types.SolunarSnapshot, weather *types.WeatherSnapshot) []types.BestWindow {
	var windows []types.BestWindow

	for _, p := range solunar.MajorWindows {
		reasons := []string{"Major solunar periyodu"}
		score := 80

		if weather.PressureDelta3h < -1 {
			reasons = append(reasons, "Basınç düşüşü aktiviteyi artırır")
			score += 8
		}
		if weather.WindSpeedKmh >= 5 && weather.WindSpeedKmh <= 15 {
			reasons = append(reasons, "İdeal rüzgar koşulları")
			score += 5
		}

		windows = append(windows, types.BestWindow{
			Start:      p.Start,
			End:        p.End,
			Score:      min(100, score),
			Confidence: windowConfidence(weather.DataQuality),
			Reasons:    reasons,
		})
	}

	for _, p := range solunar.MinorWindows {
		windows = append(windows, types.BestWindow{
			Start:      p.Start,
			End:        p.End,
			Score:      65,
			Confidence: 0.6,
			Reasons:    []string{"Minor solunar periyodu"},
		})
	}

	sort.SliceStable(windows, func(i, j int) bool { return windows[i].Score > windows[j].Score })
	if len(windows) > 4 {
		windows = windows[:4]
	}
	return windows
}

func windowConfidence(dq types.DataQuality) float64 {
	switch dq {
	case types.DataQualityLive:
		return 0.9
	case types.DataQualityCached:
		return 0.7
	default:
		return 0.6
	}
}

// computeShelteredExceptions lists spots protected from the current
// wind during a global no-go, restricted to the configured low-impact
// techniques.
func computeShelteredExceptions(spots []types.Spot, windCardinal types.WindCardinal, policy types.ShelteredExceptionPolicy) []types.ShelteredException {
	norm := NormalizeCardinal8(string(windCardinal))

	var exceptions []types.ShelteredException
	for i := range spots {
		spot := &spots[i]
		if !containsCardinal(spot.ShelteredFrom, norm) {
			continue
		}

		names := make([]string, 0, len(policy.AllowedTechniques))
		for _, t := range policy.AllowedTechniques {
			names = append(names, strings.ToUpper(string(t)))
		}

		exceptions = append(exceptions, types.ShelteredException{
			SpotID:            spot.ID,
			SpotName:          spot.Name,
			AllowedTechniques: policy.AllowedTechniques,
			WarningLevel:      policy.WarningLevel,
			Message:           fmt.Sprintf("%s korunaklı — sadece %s ile dikkatli av.", spot.Name, strings.Join(names, "/")),
		})
	}
	return exceptions
}

// computeHealthBlock grades the run's input data.
func computeHealthBlock(weather *types.WeatherSnapshot) types.HealthBlock {
	status := types.HealthGood
	var codes []string
	reasons := append([]string(nil), weather.DataIssues...)

	switch weather.DataQuality {
	case types.DataQualityFallback:
		status = types.HealthBad
		codes = append(codes, "data_quality_fallback")
	case types.DataQualityCached:
		status = types.HealthDegraded
		codes = append(codes, "data_quality_cached")
	}

	for range weather.DataIssues {
		codes = append(codes, "provider_issue")
	}

	if weather.SeaTempC == nil {
		status = types.HealthBad
		codes = append(codes, "missing_sea_temp")
		reasons = append(reasons, "Su sıcaklığı verisi yok")
	}

	if weather.WaveHeightM == nil && status == types.HealthGood {
		status = types.HealthDegraded
		codes = append(codes, "missing_wave_height")
		reasons = append(reasons, "Dalga yüksekliği verisi yok")
	}

	return types.HealthBlock{
		Status:      status,
		ReasonCodes: codes,
		Reasons:     reasons,
		Normalized: types.HealthNormalized{
			WindSpeedKmhRaw:      math.Round(weather.WindSpeedKmh*10) / 10,
			WindCardinalDerived:  weather.WindCardinal,
			PressureTrendDerived: weather.PressureTrend,
		},
	}
}

// GenerateDecision runs the full pipeline over every spot and
// assembles the daily document. Pure and sequential; the caller may
// parallelize per-spot scoring itself via ComputeSpotScore as the
// per-spot computation has no cross-spot dependency.
func GenerateDecision(in *RunInput) *types.DecisionDocument {
	waterMass := ComputeWaterMass(in.Weather.WindCardinal, in.Weather.WindSpeedKmh, in.Scoring.WaterMassProxy)

	spotScores := make([]types.SpotScore, 0, len(in.Spots))
	for i := range in.Spots {
		spotScores = append(spotScores, ComputeSpotScore(&in.Spots[i], in, waterMass))
	}

	return AssembleDecision(in, spotScores)
}

// AssembleDecision builds the document from already-computed spot
// scores. Split from GenerateDecision so callers that parallelize
// per-spot scoring can reuse the aggregation.
func AssembleDecision(in *RunInput, spotScores []types.SpotScore) *types.DecisionDocument {
	bestWindows := ComputeBestWindows(in.Solunar, in.Weather)

	globalNoGo := false
	var noGoReasons []string
	for i := range spotScores {
		if spotScores[i].NoGo {
			globalNoGo = true
			for _, r := range spotScores[i].NoGoReasons {
				if !containsString(noGoReasons, r) {
					noGoReasons = append(noGoReasons, r)
				}
			}
		}
	}

	var exceptions []types.ShelteredException
	if globalNoGo {
		exceptions = computeShelteredExceptions(in.Spots, in.Weather.WindCardinal, in.Scoring.ShelteredException)
	}

	regions := assembleRegions(in, spotScores, bestWindows)

	doc := &types.DecisionDocument{
		Date:        in.Now.Format("2006-01-02"),
		Meta:        in.Meta,
		DaySummary:  buildDaySummary(in.Weather),
		BestWindows: bestWindows,
		Regions:     regions,
		NoGo: types.NoGoVerdict{
			Active:              globalNoGo,
			Reasons:             noGoReasons,
			ShelteredExceptions: exceptions,
		},
		Health: computeHealthBlock(in.Weather),
		Spots:  spotScores,
	}
	doc.Meta.TraceLevelApplied = in.TraceLevel

	return doc
}

// assembleRegions picks the best non-no-go spot per region and builds
// its recommendation payload.
func assembleRegions(in *RunInput, spotScores []types.SpotScore, bestWindows []types.BestWindow) []types.RegionRecommendation {
	scoreBySpot := make(map[string]*types.SpotScore, len(spotScores))
	for i := range spotScores {
		scoreBySpot[spotScores[i].SpotID] = &spotScores[i]
	}

	var out []types.RegionRecommendation

	for _, region := range types.AllRegions {
		var best *types.Spot
		bestKey := math.Inf(-1)
		for i := range in.Spots {
			spot := &in.Spots[i]
			if spot.Region != region {
				continue
			}
			key := float64(scoreBySpot[spot.ID].OverallScore)
			if scoreBySpot[spot.ID].NoGo {
				key = -1
			}
			if best == nil || key > bestKey {
				best = spot
				bestKey = key
			}
		}
		if best == nil {
			continue
		}

		result := scoreBySpot[best.ID]

		type spEntry struct {
			id     types.SpeciesID
			scored types.SpeciesScoreResult
		}
		var entries []spEntry
		for id, scored := range result.Species {
			if scored.SeasonStatus != types.SeasonOff {
				entries = append(entries, spEntry{id: id, scored: scored})
			}
		}
		sort.Slice(entries, func(i, j int) bool {
			if entries[i].scored.Score != entries[j].scored.Score {
				return entries[i].scored.Score > entries[j].scored.Score
			}
			return entries[i].id < entries[j].id
		})
		if len(entries) > 4 {
			entries = entries[:4]
		}

		windowIdx := -1
		if len(bestWindows) > 0 {
			windowIdx = 0
		}

		targets := make([]types.Target, 0, len(entries))
		for _, e := range entries {
			targets = append(targets, types.Target{
				SpeciesID:       e.id,
				Name:            speciesDisplayName(e.id),
				Score:           e.scored.Score,
				Confidence:      e.scored.Confidence,
				Mode:            e.scored.Mode,
				BestWindowIndex: windowIdx,
			})
		}

		var recommended []types.TechniqueID
		for _, e := range entries {
			for _, t := range e.scored.RecommendedTechniques {
				recommended = appendUniqueTechnique(recommended, t)
			}
		}
		if len(recommended) == 0 {
			for _, t := range best.TechniqueBias {
				recommended = appendUniqueTechnique(recommended, t)
				if len(recommended) == 3 {
					break
				}
			}
		}
		if len(recommended) > 3 {
			recommended = recommended[:3]
		}

		var avoids []types.AvoidTechnique
		seenAvoid := map[types.TechniqueID]bool{}
		for _, e := range entries {
			for _, a := range e.scored.AvoidTechniques {
				if !seenAvoid[a.TechniqueID] {
					seenAvoid[a.TechniqueID] = true
					avoids = append(avoids, a)
				}
			}
		}

		why := buildWhy(result, best, in.Weather)

		rec := types.RegionRecommendation{
			Region:                region,
			SpotID:                best.ID,
			SpotName:              best.Name,
			WindBandKmhMin:        int(math.Round(max(0, in.Weather.WindSpeedKmh-5))),
			WindBandKmhMax:        int(math.Round(in.Weather.WindSpeedKmh + 10)),
			Why:                   why,
			Targets:               targets,
			RecommendedTechniques: recommended,
			AvoidTechniques:       avoids,
		}
		if r := in.Reports[best.ID]; r != nil {
			rec.ReportSignal = r
		}

		out = append(out, rec)
	}

	return out
}

// buildWhy picks up to three short rationale strings for a region's
// recommended spot.
func buildWhy(result *types.SpotScore, spot *types.Spot, weather *types.WeatherSnapshot) []string {
	var why []string
	for i, ar := range result.ActiveRules {
		if i >= 2 {
			break
		}
		if ar.Message != "" && !containsString(why, ar.Message) {
			why = append(why, ar.Message)
		}
	}
	if spot.PelagicCorridor {
		why = append(why, "Pelajik koridorda — göçmen türler geçişte")
	}
	if weather.WindSpeedKmh <= 15 {
		why = append(why, fmt.Sprintf("%s hafif — uygun koşullar", capitalizeTR(weather.WindNameTR)))
	}
	if len(why) > 3 {
		why = why[:3]
	}
	return why
}

// buildDaySummary renders the day's weather digest with display
// ranges around the point forecast.
func buildDaySummary(weather *types.WeatherSnapshot) types.DaySummary {
	return types.DaySummary{
		WindSpeedKmhMin:  int(math.Round(max(0, weather.WindSpeedKmh-3))),
		WindSpeedKmhMax:  int(math.Round(weather.WindSpeedKmh + 5)),
		WindDirectionDeg: weather.WindDirectionDeg,
		WindNameTR:       weather.WindNameTR,
		PressureHPa:      weather.PressureHPa,
		PressureDelta3h:  weather.PressureDelta3h,
		PressureTrend:    weather.PressureTrend,
		AirTempCMin:      int(math.Round(weather.AirTempC - 3)),
		AirTempCMax:      int(math.Round(weather.AirTempC + 3)),
		SeaTempC:         weather.SeaTempC,
		CloudCoverPct:    weather.CloudCoverPct,
		WaveHeightM:      weather.WaveHeightM,
		DataQuality:      weather.DataQuality,
		DataIssues:       weather.DataIssues,
	}
}

// speciesDisplayNames are the rendered Turkish names.
var speciesDisplayNames = map[types.SpeciesID]string{
	types.SpeciesIstavrit:  "İstavrit",
	types.SpeciesCinekop:   "Çinekop",
	types.SpeciesSarikanat: "Sarıkanat",
	types.SpeciesPalamut:   "Palamut",
	types.SpeciesKaragoz:   "Karagöz",
	types.SpeciesLufer:     "Lüfer",
	types.SpeciesLevrek:    "Levrek",
	types.SpeciesKolyoz:    "Kolyoz",
	types.SpeciesMirmir:    "Mırmır",
}

func speciesDisplayName(id types.SpeciesID) string {
	if name, ok := speciesDisplayNames[id]; ok {
		return name
	}
	return string(id)
}

// capitalizeTR upper-cases the first rune for display.
func capitalizeTR(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	first := strings.ToUpper(string(runes[0]))
	return first + string(runes[1:])
}
