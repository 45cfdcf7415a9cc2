package types

import "time"

// ScoreBreakdown records every factor that contributed to one species
// score. Parameter scores are rounded to two decimals for the trace.
type ScoreBreakdown struct {
	Pressure float64 `json:"pressure"`
	Wind     float64 `json:"wind"`
	SeaTemp  float64 `json:"sea_temp"`
	Solunar  float64 `json:"solunar"`
	Time     float64 `json:"time"`

	SeasonAdjustment int `json:"season_adjustment"`
	RuleBonus        int `json:"rule_bonus"`
}

// SpeciesScoreResult is the scorer output for one species at one spot.
type SpeciesScoreResult struct {
	// Score is the final 0-100 value after capping, clamping, and the
	// off-season floor.
	Score int `json:"score"`

	// Confidence is 0.1-1.0 and never exactly zero.
	Confidence float64 `json:"confidence"`

	SeasonStatus SeasonStatus `json:"season_status"`
	BestTime     string       `json:"best_time,omitempty"`

	// StrayCatchPossible marks an off-season species whose conditions
	// are favorable enough that a stray catch is still plausible.
	StrayCatchPossible bool `json:"stray_catch_possible"`

	Mode             SpeciesMode `json:"mode"`
	SuppressedByNoGo bool        `json:"suppressed_by_no_go"`

	RecommendedTechniques []TechniqueID    `json:"recommended_techniques"`
	AvoidTechniques       []AvoidTechnique `json:"avoid_techniques,omitempty"`

	Breakdown *ScoreBreakdown `json:"breakdown,omitempty"`
}

// AvoidTechnique pairs a suppressed technique with the reason it was
// suppressed.
type AvoidTechnique struct {
	TechniqueID TechniqueID `json:"technique_id"`
	Reason      string      `json:"reason"`
}

// FiredRule is one rule that matched during evaluation.
type FiredRule struct {
	RuleID       string       `json:"rule_id"`
	Category     RuleCategory `json:"category"`
	AppliedBonus int          `json:"applied_bonus"`
	Species      []SpeciesID  `json:"species"`
	Message      string       `json:"message,omitempty"`
}

// EvaluationTrace is the optional diagnostics section of a spot score.
// Minimal trace carries the first three fields; full trace adds the
// per-species capping intermediates.
type EvaluationTrace struct {
	FiredRuleCount int         `json:"fired_rule_count"`
	ActiveRuleIDs  []string    `json:"active_rule_ids"`
	DataQuality    DataQuality `json:"data_quality"`

	RawByCategory    map[SpeciesID]map[RuleCategory]int `json:"raw_by_category,omitempty"`
	CappedByCategory map[SpeciesID]map[RuleCategory]int `json:"capped_by_category,omitempty"`
	PositiveRaw      map[SpeciesID]int                  `json:"positive_raw,omitempty"`
	PositiveCapped   map[SpeciesID]int                  `json:"positive_capped,omitempty"`
	NegativeTotal    map[SpeciesID]int                  `json:"negative_total,omitempty"`
	FinalRuleBonus   map[SpeciesID]int                  `json:"final_rule_bonus,omitempty"`
}

// SpotScore is the complete evaluation of one spot for one run.
type SpotScore struct {
	SpotID   string   `json:"spot_id"`
	SpotName string   `json:"spot_name"`
	Region   RegionID `json:"region"`

	// OverallScore is the mean of non-off species scores, forced to 0
	// when the spot is under a no-go.
	OverallScore int  `json:"overall_score"`
	NoGo         bool `json:"no_go"`

	NoGoReasons []string `json:"no_go_reasons,omitempty"`

	Species map[SpeciesID]SpeciesScoreResult `json:"species"`

	ActiveRules []FiredRule `json:"active_rules"`

	Trace *EvaluationTrace `json:"trace,omitempty"`
}

// BestWindow is one recommended time range in the daily document.
type BestWindow struct {
	Start      string   `json:"start"`
	End        string   `json:"end"`
	Score      int      `json:"score"`
	Confidence float64  `json:"confidence"`
	Reasons    []string `json:"reasons"`
}

// Target is one species entry in a region recommendation.
type Target struct {
	SpeciesID  SpeciesID   `json:"species_id"`
	Name       string      `json:"name"`
	Score      int         `json:"score"`
	Confidence float64     `json:"confidence"`
	Mode       SpeciesMode `json:"mode"`

	// BestWindowIndex points into DecisionDocument.BestWindows.
	// Always 0 (the top-scoring window) when windows exist; -1 when
	// no windows were derived.
	BestWindowIndex int `json:"best_window_index"`
}

// RegionRecommendation is the chosen spot and its payload for one
// region.
type RegionRecommendation struct {
	Region   RegionID `json:"region"`
	SpotID   string   `json:"spot_id"`
	SpotName string   `json:"spot_name"`

	WindBandKmhMin int `json:"wind_band_kmh_min"`
	WindBandKmhMax int `json:"wind_band_kmh_max"`

	Why     []string `json:"why"`
	Targets []Target `json:"targets"`

	RecommendedTechniques []TechniqueID    `json:"recommended_techniques"`
	AvoidTechniques       []AvoidTechnique `json:"avoid_techniques,omitempty"`

	ReportSignal *ReportSignal `json:"report_signal,omitempty"`
}

// ShelteredException is a spot exempt from a global no-go because it is
// protected from the current wind.
type ShelteredException struct {
	SpotID            string        `json:"spot_id"`
	SpotName          string        `json:"spot_name"`
	AllowedTechniques []TechniqueID `json:"allowed_techniques"`
	WarningLevel      string        `json:"warning_level"`
	Message           string        `json:"message"`
}

// NoGoVerdict is the global go/no-go outcome for the day.
type NoGoVerdict struct {
	Active              bool                 `json:"active"`
	Reasons             []string             `json:"reasons,omitempty"`
	ShelteredExceptions []ShelteredException `json:"sheltered_exceptions,omitempty"`
}

// DaySummary is the weather digest at the top of the document.
type DaySummary struct {
	WindSpeedKmhMin  int           `json:"wind_speed_kmh_min"`
	WindSpeedKmhMax  int           `json:"wind_speed_kmh_max"`
	WindDirectionDeg float64       `json:"wind_direction_deg"`
	WindNameTR       string        `json:"wind_name_tr"`
	PressureHPa      float64       `json:"pressure_hpa"`
	PressureDelta3h  float64       `json:"pressure_delta_3h"`
	PressureTrend    PressureTrend `json:"pressure_trend"`
	AirTempCMin      int           `json:"air_temp_c_min"`
	AirTempCMax      int           `json:"air_temp_c_max"`
	SeaTempC         *float64      `json:"sea_temp_c,omitempty"`
	CloudCoverPct    float64       `json:"cloud_cover_pct"`
	WaveHeightM      *float64      `json:"wave_height_m,omitempty"`
	DataQuality      DataQuality   `json:"data_quality"`
	DataIssues       []string      `json:"data_issues,omitempty"`
}

// HealthNormalized echoes the derived weather values so clients can
// audit what the engine actually saw.
type HealthNormalized struct {
	WindSpeedKmhRaw      float64       `json:"wind_speed_kmh_raw"`
	WindCardinalDerived  WindCardinal  `json:"wind_cardinal_derived"`
	PressureTrendDerived PressureTrend `json:"pressure_trend_derived"`
}

// HealthBlock is the diagnostics section of a decision document.
type HealthBlock struct {
	Status      HealthStatus     `json:"status"`
	ReasonCodes []string         `json:"reason_codes"`
	Reasons     []string         `json:"reasons"`
	Normalized  HealthNormalized `json:"normalized"`
}

// DecisionMeta records how and when the document was produced.
type DecisionMeta struct {
	RunID          string    `json:"run_id"`
	GeneratedAt    time.Time `json:"generated_at"`
	Timezone       string    `json:"timezone"`
	EngineVersion  string    `json:"engine_version"`
	RulesetVersion string    `json:"ruleset_version"`

	TraceLevelRequested TraceLevel `json:"trace_level_requested"`
	TraceLevelApplied   TraceLevel `json:"trace_level_applied"`

	RulesetFingerprint string `json:"ruleset_fingerprint,omitempty"`
}

// DecisionDocument is the complete daily output. Immutable once
// returned from the assembler.
type DecisionDocument struct {
	Date string `json:"date"`

	Meta        DecisionMeta           `json:"meta"`
	DaySummary  DaySummary             `json:"day_summary"`
	BestWindows []BestWindow           `json:"best_windows"`
	Regions     []RegionRecommendation `json:"regions"`
	NoGo        NoGoVerdict            `json:"no_go"`
	Health      HealthBlock            `json:"health"`

	Spots []SpotScore `json:"spots"`
}
