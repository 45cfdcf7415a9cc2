package engine

import (
	"strings"
	"testing"

	"fishcast/internal/types"
)

func testRunInput() *RunInput {
	spots := []types.Spot{
		*testSpot(),
		{
			ID:             "eu_karakoy",
			Name:           "Karaköy Rıhtımı",
			Region:         types.RegionAvrupa,
			Shore:          types.ShoreEuropean,
			CoordAccuracy:  types.CoordSurveyed,
			PrimarySpecies: []types.SpeciesID{types.SpeciesIstavrit},
			TechniqueBias:  []types.TechniqueID{types.TechniqueCapari},
			Features:       []string{"pier"},
		},
		{
			ID:              "cb_galata",
			Name:            "Galata Köprüsü",
			Region:          types.RegionCityBelt,
			Shore:           types.ShoreEuropean,
			CoordAccuracy:   types.CoordApproximate,
			PelagicCorridor: true,
			PrimarySpecies:  []types.SpeciesID{types.SpeciesIstavrit},
			TechniqueBias:   []types.TechniqueID{types.TechniqueCapari, types.TechniqueYemliDip},
			Features:        []string{"bridge"},
		},
	}

	return &RunInput{
		Now:         testInstant(),
		Weather:     testWeather(),
		Solunar:     testSolunar(),
		Daylight:    testDaylight(),
		Spots:       spots,
		Rules:       nil,
		Scoring:     testScoringConfig(),
		Seasonality: testSeasonalityConfig(),
		TraceLevel:  types.TraceNone,
		Meta: types.DecisionMeta{
			RunID:          "run-1",
			Timezone:       "Europe/Istanbul",
			EngineVersion:  "test",
			RulesetVersion: "test",
		},
	}
}

func stormRules() []CompiledRule {
	return CompileRules([]types.RuleDefinition{
		{
			ID:        "storm_no_go",
			Priority:  10,
			Condition: map[string]any{"windSpeedKmh": ">=50"},
			Effects:   []types.RuleEffect{{ApplyToSpecies: []string{"*"}, NoGo: true}},
			MessageTR: "Fırtına koşulları — kıyıdan uzak durun",
		},
	})
}

func TestGenerateDecisionCalmDay(t *testing.T) {
	in := testRunInput()

	doc := GenerateDecision(in)

	if doc.Date != "2026-10-14" {
		t.Errorf("date = %q, want 2026-10-14", doc.Date)
	}
	if doc.NoGo.Active {
		t.Error("calm day should not be a no-go")
	}
	if len(doc.Spots) != 3 {
		t.Fatalf("spots = %d, want 3", len(doc.Spots))
	}
	if len(doc.Regions) != 3 {
		t.Fatalf("regions = %d, want 3", len(doc.Regions))
	}

	// Region order is fixed: avrupa, anadolu, city_belt.
	if doc.Regions[0].Region != types.RegionAvrupa ||
		doc.Regions[1].Region != types.RegionAnadolu ||
		doc.Regions[2].Region != types.RegionCityBelt {
		t.Errorf("region order = %v %v %v", doc.Regions[0].Region, doc.Regions[1].Region, doc.Regions[2].Region)
	}

	for _, spot := range doc.Spots {
		if len(spot.Species) != len(types.TierOneSpecies) {
			t.Errorf("spot %s scored %d species, want %d", spot.SpotID, len(spot.Species), len(types.TierOneSpecies))
		}
		if spot.Trace != nil {
			t.Errorf("spot %s carries a trace at level none", spot.SpotID)
		}
	}
}

func TestGenerateDecisionStormNoGo(t *testing.T) {
	in := testRunInput()
	in.Rules = stormRules()
	in.Weather.WindSpeedKmh = 65
	in.Weather.WindDirectionDeg = 45
	in.Weather.WindCardinal = types.WindNE

	doc := GenerateDecision(in)

	if !doc.NoGo.Active {
		t.Fatal("65 km/h should trigger a global no-go")
	}
	if len(doc.NoGo.Reasons) != 1 {
		t.Errorf("no-go reasons = %v, want one", doc.NoGo.Reasons)
	}

	for _, spot := range doc.Spots {
		if spot.OverallScore != 0 {
			t.Errorf("spot %s overall = %d during no-go, want 0", spot.SpotID, spot.OverallScore)
		}
		for spID, sp := range spot.Species {
			if !sp.SuppressedByNoGo {
				t.Errorf("species %s at %s not marked suppressed", spID, spot.SpotID)
			}
		}
	}

	// kz_moda is sheltered from NE; it is the only exception.
	if len(doc.NoGo.ShelteredExceptions) != 1 {
		t.Fatalf("sheltered exceptions = %d, want 1", len(doc.NoGo.ShelteredExceptions))
	}
	exc := doc.NoGo.ShelteredExceptions[0]
	if exc.SpotID != "kz_moda" {
		t.Errorf("exception spot = %q, want kz_moda", exc.SpotID)
	}
	if exc.WarningLevel != "severe" {
		t.Errorf("warning level = %q, want severe", exc.WarningLevel)
	}
	if len(exc.AllowedTechniques) != 1 || exc.AllowedTechniques[0] != types.TechniqueLRF {
		t.Errorf("allowed techniques = %v, want [lrf]", exc.AllowedTechniques)
	}
	if !strings.Contains(exc.Message, "Moda Sahili") || !strings.Contains(exc.Message, "LRF") {
		t.Errorf("unexpected exception message: %q", exc.Message)
	}
}

func TestGenerateDecisionNoExceptionsWithoutNoGo(t *testing.T) {
	in := testRunInput()
	in.Rules = stormRules()

	doc := GenerateDecision(in)
	if doc.NoGo.Active {
		t.Fatal("calm wind should not trigger the storm rule")
	}
	if len(doc.NoGo.ShelteredExceptions) != 0 {
		t.Errorf("exceptions without a no-go: %v", doc.NoGo.ShelteredExceptions)
	}
}

func TestComputeBestWindows(t *testing.T) {
	weather := testWeather() // wind 10, delta -0.5

	windows := ComputeBestWindows(testSolunar(), weather)
	if len(windows) != 3 {
		t.Fatalf("windows = %d, want 3", len(windows))
	}

	// Majors first (80 + 5 ideal wind), minor last.
	if windows[0].Score != 85 || windows[1].Score != 85 {
		t.Errorf("major scores = %d, %d, want 85", windows[0].Score, windows[1].Score)
	}
	if windows[2].Score != 65 {
		t.Errorf("minor score = %d, want 65", windows[2].Score)
	}
	if windows[0].Confidence != 0.9 {
		t.Errorf("live major confidence = %v, want 0.9", windows[0].Confidence)
	}
	if windows[2].Confidence != 0.6 {
		t.Errorf("minor confidence = %v, want 0.6", windows[2].Confidence)
	}
	if !containsString(windows[0].Reasons, "İdeal rüzgar koşulları") {
		t.Errorf("missing ideal-wind reason: %v", windows[0].Reasons)
	}
}

func TestComputeBestWindowsPressureBoostAndCap(t *testing.T) {
	weather := testWeather()
	weather.PressureDelta3h = -2.5

	windows := ComputeBestWindows(testSolunar(), weather)
	// 80 + 8 pressure + 5 wind = 93.
	if windows[0].Score != 93 {
		t.Errorf("boosted major = %d, want 93", windows[0].Score)
	}
	if !containsString(windows[0].Reasons, "Basınç düşüşü aktiviteyi artırır") {
		t.Errorf("missing pressure reason: %v", windows[0].Reasons)
	}
}

func TestComputeBestWindowsCapsAtFour(t *testing.T) {
	solunar := &types.SolunarSnapshot{
		MajorWindows: []types.SolunarWindow{
			{Start: "02:00", End: "04:00"},
			{Start: "14:00", End: "16:00"},
		},
		MinorWindows: []types.SolunarWindow{
			{Start: "08:00", End: "09:00"},
			{Start: "20:00", End: "21:00"},
			{Start: "23:00", End: "23:30"},
		},
	}

	windows := ComputeBestWindows(solunar, testWeather())
	if len(windows) != 4 {
		t.Errorf("windows = %d, want cap of 4", len(windows))
	}
	// Sorted descending, majors ahead of minors.
	for i := 1; i < len(windows); i++ {
		if windows[i].Score > windows[i-1].Score {
			t.Errorf("windows not sorted: %d after %d", windows[i].Score, windows[i-1].Score)
		}
	}
}

func TestAssembleRegionsTargets(t *testing.T) {
	in := testRunInput()

	doc := GenerateDecision(in)

	for _, region := range doc.Regions {
		if len(region.Targets) == 0 {
			t.Errorf("region %s has no targets", region.Region)
			continue
		}
		if len(region.Targets) > 4 {
			t.Errorf("region %s targets = %d, want at most 4", region.Region, len(region.Targets))
		}
		for i := 1; i < len(region.Targets); i++ {
			prev, cur := region.Targets[i-1], region.Targets[i]
			if cur.Score > prev.Score {
				t.Errorf("region %s targets not score-sorted", region.Region)
			}
			if cur.Score == prev.Score && cur.SpeciesID < prev.SpeciesID {
				t.Errorf("region %s equal-score targets not id-sorted", region.Region)
			}
		}
		for _, target := range region.Targets {
			if target.BestWindowIndex != 0 {
				t.Errorf("best window index = %d, want 0", target.BestWindowIndex)
			}
			if target.Name == "" {
				t.Errorf("target %s missing display name", target.SpeciesID)
			}
		}
		if len(region.RecommendedTechniques) == 0 {
			t.Errorf("region %s has no technique recommendations", region.Region)
		}
		if len(region.RecommendedTechniques) > 3 {
			t.Errorf("region %s techniques = %d, want at most 3", region.Region, len(region.RecommendedTechniques))
		}
	}
}

func TestAssembleRegionsWindowIndexWithoutWindows(t *testing.T) {
	in := testRunInput()
	in.Solunar = &types.SolunarSnapshot{MoonIlluminationPct: 50, Rating: 0.4}

	doc := GenerateDecision(in)
	for _, region := range doc.Regions {
		for _, target := range region.Targets {
			if target.BestWindowIndex != -1 {
				t.Errorf("window index = %d with no windows, want -1", target.BestWindowIndex)
			}
		}
	}
}

func TestAssembleRegionsFallbackTechniques(t *testing.T) {
	// With no rules fired there are no technique hints; the spot bias
	// fills in.
	in := testRunInput()

	doc := GenerateDecision(in)
	for _, region := range doc.Regions {
		if len(region.RecommendedTechniques) == 0 {
			t.Errorf("region %s should fall back to spot technique bias", region.Region)
		}
	}
}

func TestBuildWhy(t *testing.T) {
	in := testRunInput()

	doc := GenerateDecision(in)

	// Light wind note appears for the 10 km/h poyraz.
	for _, region := range doc.Regions {
		found := false
		for _, why := range region.Why {
			if strings.Contains(why, "hafif") {
				found = true
			}
		}
		if !found {
			t.Errorf("region %s missing light-wind note: %v", region.Region, region.Why)
		}
		if len(region.Why) > 3 {
			t.Errorf("region %s why = %d entries, want at most 3", region.Region, len(region.Why))
		}
	}

	// Pelagic note appears for the corridor spot's region.
	var cityBelt *types.RegionRecommendation
	for i := range doc.Regions {
		if doc.Regions[i].Region == types.RegionCityBelt {
			cityBelt = &doc.Regions[i]
		}
	}
	if cityBelt == nil {
		t.Fatal("city belt region missing")
	}
	found := false
	for _, why := range cityBelt.Why {
		if strings.Contains(why, "Pelajik koridorda") {
			found = true
		}
	}
	if !found {
		t.Errorf("corridor spot missing pelagic note: %v", cityBelt.Why)
	}
}

func TestBuildDaySummary(t *testing.T) {
	summary := buildDaySummary(testWeather())

	if summary.WindSpeedKmhMin != 7 || summary.WindSpeedKmhMax != 15 {
		t.Errorf("wind band = %d-%d, want 7-15", summary.WindSpeedKmhMin, summary.WindSpeedKmhMax)
	}
	if summary.AirTempCMin != 12 || summary.AirTempCMax != 18 {
		t.Errorf("air band = %d-%d, want 12-18", summary.AirTempCMin, summary.AirTempCMax)
	}
	if summary.WindNameTR != "poyraz" {
		t.Errorf("wind name = %q, want poyraz", summary.WindNameTR)
	}

	// The minimum never dips below zero.
	calm := testWeather()
	calm.WindSpeedKmh = 2
	if got := buildDaySummary(calm).WindSpeedKmhMin; got != 0 {
		t.Errorf("calm wind min = %d, want 0", got)
	}
}

func TestComputeHealthBlock(t *testing.T) {
	t.Run("good", func(t *testing.T) {
		h := computeHealthBlock(testWeather())
		if h.Status != types.HealthGood {
			t.Errorf("status = %q, want good", h.Status)
		}
		if len(h.ReasonCodes) != 0 {
			t.Errorf("codes = %v, want none", h.ReasonCodes)
		}
	})

	t.Run("cached degrades", func(t *testing.T) {
		w := testWeather()
		w.DataQuality = types.DataQualityCached
		h := computeHealthBlock(w)
		if h.Status != types.HealthDegraded {
			t.Errorf("status = %q, want degraded", h.Status)
		}
		if !containsString(h.ReasonCodes, "data_quality_cached") {
			t.Errorf("codes = %v", h.ReasonCodes)
		}
	})

	t.Run("fallback is bad", func(t *testing.T) {
		w := testWeather()
		w.DataQuality = types.DataQualityFallback
		h := computeHealthBlock(w)
		if h.Status != types.HealthBad {
			t.Errorf("status = %q, want bad", h.Status)
		}
		if !containsString(h.ReasonCodes, "data_quality_fallback") {
			t.Errorf("codes = %v", h.ReasonCodes)
		}
	})

	t.Run("missing sea temp is bad", func(t *testing.T) {
		w := testWeather()
		w.SeaTempC = nil
		h := computeHealthBlock(w)
		if h.Status != types.HealthBad {
			t.Errorf("status = %q, want bad", h.Status)
		}
		if !containsString(h.ReasonCodes, "missing_sea_temp") {
			t.Errorf("codes = %v", h.ReasonCodes)
		}
		if !containsString(h.Reasons, "Su sıcaklığı verisi yok") {
			t.Errorf("reasons = %v", h.Reasons)
		}
	})

	t.Run("missing wave degrades", func(t *testing.T) {
		w := testWeather()
		w.WaveHeightM = nil
		h := computeHealthBlock(w)
		if h.Status != types.HealthDegraded {
			t.Errorf("status = %q, want degraded", h.Status)
		}
		if !containsString(h.ReasonCodes, "missing_wave_height") {
			t.Errorf("codes = %v", h.ReasonCodes)
		}
	})

	t.Run("provider issues recorded", func(t *testing.T) {
		w := testWeather()
		w.DataIssues = []string{"marine endpoint timeout"}
		h := computeHealthBlock(w)
		if !containsString(h.ReasonCodes, "provider_issue") {
			t.Errorf("codes = %v", h.ReasonCodes)
		}
		if !containsString(h.Reasons, "marine endpoint timeout") {
			t.Errorf("reasons = %v", h.Reasons)
		}
	})

	t.Run("normalized echo", func(t *testing.T) {
		w := testWeather()
		w.WindSpeedKmh = 12.34
		h := computeHealthBlock(w)
		if h.Normalized.WindSpeedKmhRaw != 12.3 {
			t.Errorf("normalized wind = %v, want 12.3", h.Normalized.WindSpeedKmhRaw)
		}
		if h.Normalized.WindCardinalDerived != types.WindNE {
			t.Errorf("normalized cardinal = %q", h.Normalized.WindCardinalDerived)
		}
	})
}

func TestBuildTraceLevels(t *testing.T) {
	in := testRunInput()
	in.Rules = CompileRules([]types.RuleDefinition{
		{ID: "always", Priority: 6, Effects: []types.RuleEffect{{ApplyToSpecies: []string{"*"}, ScoreBonus: 5}}, MessageTR: "m"},
	})

	in.TraceLevel = types.TraceMinimal
	doc := GenerateDecision(in)
	trace := doc.Spots[0].Trace
	if trace == nil {
		t.Fatal("minimal trace missing")
	}
	if trace.FiredRuleCount != 1 || len(trace.ActiveRuleIDs) != 1 {
		t.Errorf("minimal trace = %+v", trace)
	}
	if trace.RawByCategory != nil {
		t.Error("minimal trace should not carry capping detail")
	}

	in.TraceLevel = types.TraceFull
	doc = GenerateDecision(in)
	trace = doc.Spots[0].Trace
	if trace == nil || trace.RawByCategory == nil || trace.FinalRuleBonus == nil {
		t.Fatal("full trace missing capping detail")
	}
	if doc.Meta.TraceLevelApplied != types.TraceFull {
		t.Errorf("applied trace level = %q, want full", doc.Meta.TraceLevelApplied)
	}
}

func TestDecisionDeterminism(t *testing.T) {
	build := func() *types.DecisionDocument {
		in := testRunInput()
		in.Rules = CompileRules([]types.RuleDefinition{
			{ID: "a", Priority: 9, Condition: map[string]any{"windSpeedKmh": ">=5"}, Effects: []types.RuleEffect{{ApplyToSpecies: []string{"*"}, ScoreBonus: 6}}, MessageTR: "a"},
			{ID: "b", Priority: 4, Condition: map[string]any{"time": "05:00-08:00"}, Effects: []types.RuleEffect{{ApplyToSpecies: []string{"istavrit"}, TechniqueHints: []types.TechniqueID{types.TechniqueCapari}}}, MessageTR: "b"},
		})
		return GenerateDecision(in)
	}

	first := build()
	second := build()

	if first.Date != second.Date {
		t.Error("dates differ")
	}
	for i := range first.Spots {
		if first.Spots[i].OverallScore != second.Spots[i].OverallScore {
			t.Errorf("spot %s overall differs: %d vs %d", first.Spots[i].SpotID, first.Spots[i].OverallScore, second.Spots[i].OverallScore)
		}
		for _, sp := range types.TierOneSpecies {
			a, b := first.Spots[i].Species[sp], second.Spots[i].Species[sp]
			if a.Score != b.Score || a.Confidence != b.Confidence || a.Mode != b.Mode {
				t.Errorf("species %s at %s differs between runs", sp, first.Spots[i].SpotID)
			}
		}
	}
	for i := range first.Regions {
		if first.Regions[i].SpotID != second.Regions[i].SpotID {
			t.Errorf("region %s best spot differs", first.Regions[i].Region)
		}
	}
}

func TestGenerateDecisionMatchesSequentialAssembly(t *testing.T) {
	in := testRunInput()
	in.Rules = stormRules()

	waterMass := ComputeWaterMass(in.Weather.WindCardinal, in.Weather.WindSpeedKmh, in.Scoring.WaterMassProxy)
	scores := make([]types.SpotScore, len(in.Spots))
	for i := range in.Spots {
		scores[i] = ComputeSpotScore(&in.Spots[i], in, waterMass)
	}
	manual := AssembleDecision(in, scores)
	auto := GenerateDecision(in)

	if manual.Date != auto.Date || len(manual.Spots) != len(auto.Spots) {
		t.Fatal("split assembly diverged from the one-shot pipeline")
	}
	for i := range manual.Spots {
		if manual.Spots[i].OverallScore != auto.Spots[i].OverallScore {
			t.Errorf("spot %s overall differs", manual.Spots[i].SpotID)
		}
	}
}
