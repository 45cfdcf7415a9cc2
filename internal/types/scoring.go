package types

// FactorWeights are the per-species convex weights over the five
// parameter scores. They must sum to 1.0; the catalog loader enforces
// this at startup.
type FactorWeights struct {
	Pressure float64 `json:"pressure" yaml:"pressure"`
	Wind     float64 `json:"wind" yaml:"wind"`
	SeaTemp  float64 `json:"sea_temp" yaml:"sea_temp"`
	Solunar  float64 `json:"solunar" yaml:"solunar"`
	Time     float64 `json:"time" yaml:"time"`
}

// Sum returns the total weight, used for load-time validation.
func (w FactorWeights) Sum() float64 {
	return w.Pressure + w.Wind + w.SeaTemp + w.Solunar + w.Time
}

// TempBand is a species' ideal sea-temperature range. Outside the band
// the score decays linearly, divided by PenaltyDivisor per degree.
type TempBand struct {
	Min            float64 `json:"min" yaml:"min"`
	Max            float64 `json:"max" yaml:"max"`
	PenaltyDivisor float64 `json:"pen" yaml:"pen"`
}

// HourRange is an inclusive best-hours range. Start > End wraps past
// midnight.
type HourRange struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// RuleBonusCaps bound how much the rule engine may move a species
// score. Per-category caps apply to positive totals only; the total cap
// applies to the sum of capped positive categories. Absolute rules are
// never capped per category.
type RuleBonusCaps struct {
	WindCoastRules  int `json:"windCoastRules" yaml:"windCoastRules"`
	IstanbulSpecial int `json:"istanbulSpecial" yaml:"istanbulSpecial"`
	TechniqueTime   int `json:"techniqueTime" yaml:"techniqueTime"`
	WeatherMode     int `json:"weatherMode" yaml:"weatherMode"`
	TotalCap        int `json:"totalCap" yaml:"totalCap"`
	NegativeFloor   int `json:"negativeFloor" yaml:"negativeFloor"`
}

// CapFor returns the positive cap for one category. Absolute and
// unknown categories fall back to the total cap.
func (c RuleBonusCaps) CapFor(cat RuleCategory) int {
	switch cat {
	case CategoryWindCoast:
		return c.WindCoastRules
	case CategoryIstanbul:
		return c.IstanbulSpecial
	case CategoryTechniqueTime:
		return c.TechniqueTime
	case CategoryWeatherMode:
		return c.WeatherMode
	default:
		return c.TotalCap
	}
}

// ConfidenceFactors are the tuning knobs of the confidence estimator.
type ConfidenceFactors struct {
	DataQualityBase map[DataQuality]float64 `json:"dataQualityBase" yaml:"dataQualityBase"`

	ReportBoost        float64 `json:"reportBoost" yaml:"reportBoost"`
	ApproxCoordPenalty float64 `json:"approxCoordPenalty" yaml:"approxCoordPenalty"`

	FiredRulesThreshold  int     `json:"firedRulesThreshold" yaml:"firedRulesThreshold"`
	FiredRulesPenalty    float64 `json:"firedRulesPenalty" yaml:"firedRulesPenalty"`
	MaxFiredRulesPenalty float64 `json:"maxFiredRulesPenalty" yaml:"maxFiredRulesPenalty"`

	SeasonOffPenalty      float64 `json:"seasonOffPenalty" yaml:"seasonOffPenalty"`
	SeasonShoulderPenalty float64 `json:"seasonShoulderPenalty" yaml:"seasonShoulderPenalty"`
}

// WaterMassConfig holds the wind thresholds of the water-mass proxy.
// Strength ramps linearly from 0 at the weak threshold to 1 at the
// strong one.
type WaterMassConfig struct {
	LodosDirections  []WindCardinal `json:"lodosDirections" yaml:"lodosDirections"`
	PoyrazDirections []WindCardinal `json:"poyrazDirections" yaml:"poyrazDirections"`

	WeakThresholdKmh   float64 `json:"weakThreshold" yaml:"weakThreshold"`
	StrongThresholdKmh float64 `json:"strongThreshold" yaml:"strongThreshold"`
}

// PressureThresholds drive the mode classifier's pressure branches.
type PressureThresholds struct {
	ExtremeChange float64 `json:"extremeChangeThreshold" yaml:"extremeChangeThreshold"`
	RapidFalling  float64 `json:"rapidFallingThreshold" yaml:"rapidFallingThreshold"`
	RapidRising   float64 `json:"rapidRisingThreshold" yaml:"rapidRisingThreshold"`
}

// ShelteredExceptionPolicy restricts what is still allowed at a
// sheltered spot during a global no-go.
type ShelteredExceptionPolicy struct {
	AllowedTechniques []TechniqueID `json:"allowedTechniques" yaml:"allowedTechniques"`
	WarningLevel      string        `json:"warningLevel" yaml:"warningLevel"`
}

// ScoringConfig is the full tuning table consumed by the engine. Loaded
// once by the catalog, read-only during a run.
type ScoringConfig struct {
	SpeciesWeights   map[SpeciesID]FactorWeights `json:"speciesWeights" yaml:"speciesWeights"`
	SpeciesTemp      map[SpeciesID]TempBand      `json:"speciesTemp" yaml:"speciesTemp"`
	SpeciesBestHours map[SpeciesID][]HourRange   `json:"speciesBestHours" yaml:"speciesBestHours"`

	RuleBonusCaps      RuleBonusCaps            `json:"ruleBonusCaps" yaml:"ruleBonusCaps"`
	ConfidenceFactors  ConfidenceFactors        `json:"confidenceFactors" yaml:"confidenceFactors"`
	WaterMassProxy     WaterMassConfig          `json:"waterMassProxy" yaml:"waterMassProxy"`
	PressureThresholds PressureThresholds       `json:"pressureThresholds" yaml:"pressureThresholds"`
	ShelteredException ShelteredExceptionPolicy `json:"shelteredExceptions" yaml:"shelteredExceptions"`
}

// ParcaBehavior tunes the stray-catch relaxation for off-season months.
type ParcaBehavior struct {
	// ConditionThreshold is the weighted parameter sum above which the
	// off penalty is relaxed.
	ConditionThreshold float64 `json:"parcaConditionThreshold" yaml:"parcaConditionThreshold"`

	// PenaltyReduction is the fraction of the off adjustment removed.
	PenaltyReduction float64 `json:"parcaPenaltyReduction" yaml:"parcaPenaltyReduction"`

	// Confidence is the floor on the season confidence impact once the
	// stray-catch case triggers.
	Confidence float64 `json:"parcaConfidence" yaml:"parcaConfidence"`
}

// SpeciesSeason describes one species' annual cycle. Months absent from
// every list are treated as plain active months.
type SpeciesSeason struct {
	PeakMonths     []int `json:"peakMonths" yaml:"peakMonths"`
	ShoulderMonths []int `json:"shoulderMonths" yaml:"shoulderMonths"`
	OffMonths      []int `json:"offMonths" yaml:"offMonths"`

	PeakAdjustment     int `json:"peakAdjustment" yaml:"peakAdjustment"`
	ShoulderAdjustment int `json:"shoulderAdjustment" yaml:"shoulderAdjustment"`
	OffAdjustment      int `json:"offAdjustment" yaml:"offAdjustment"`

	ConfidenceImpact float64 `json:"confidenceImpact" yaml:"confidenceImpact"`

	// OffFloor is the minimum visible score in off months.
	OffFloor int `json:"offFloor" yaml:"offFloor"`

	Parca ParcaBehavior `json:"parcaBehavior" yaml:"parcaBehavior"`

	BestTimeNote string `json:"bestTimeNote,omitempty" yaml:"bestTimeNote"`
}

// SeasonalityConfig is the per-species seasonal table.
type SeasonalityConfig struct {
	Species map[SpeciesID]SpeciesSeason `json:"species" yaml:"species"`
}
