package types

// SpeciesID identifies a fish species in the catalog.
type SpeciesID string

// Tier-1 species are fully scored on every run. Tier-2 species appear in
// the catalog and rule hints but receive no standalone score.
const (
	SpeciesIstavrit  SpeciesID = "istavrit"
	SpeciesCinekop   SpeciesID = "cinekop"
	SpeciesSarikanat SpeciesID = "sarikanat"
	SpeciesPalamut   SpeciesID = "palamut"
	SpeciesKaragoz   SpeciesID = "karagoz"
	SpeciesMirmir    SpeciesID = "mirmir"

	SpeciesLufer  SpeciesID = "lufer"
	SpeciesLevrek SpeciesID = "levrek"
	SpeciesKolyoz SpeciesID = "kolyoz"
)

// TierOneSpecies is the fixed scoring order for a decision run.
var TierOneSpecies = []SpeciesID{
	SpeciesIstavrit,
	SpeciesCinekop,
	SpeciesSarikanat,
	SpeciesPalamut,
	SpeciesKaragoz,
	SpeciesMirmir,
}

// AllSpecies covers both tiers; rule effects may target any of these
// even when only tier-1 species are scored.
var AllSpecies = []SpeciesID{
	SpeciesIstavrit,
	SpeciesCinekop,
	SpeciesSarikanat,
	SpeciesPalamut,
	SpeciesKaragoz,
	SpeciesMirmir,
	SpeciesLufer,
	SpeciesLevrek,
	SpeciesKolyoz,
}

// TechniqueID identifies a fishing technique.
type TechniqueID string

const (
	TechniqueCapari       TechniqueID = "capari"
	TechniqueKursunArkasi TechniqueID = "kursun_arkasi"
	TechniqueSpin         TechniqueID = "spin"
	TechniqueLRF          TechniqueID = "lrf"
	TechniqueSurf         TechniqueID = "surf"
	TechniqueYemliDip     TechniqueID = "yemli_dip"
	TechniqueShoreJig     TechniqueID = "shore_jig"
)

// RegionID identifies a shore region of the city.
type RegionID string

const (
	RegionAvrupa   RegionID = "avrupa"
	RegionAnadolu  RegionID = "anadolu"
	RegionCityBelt RegionID = "city_belt"
)

// AllRegions is the stable presentation order for region recommendations.
var AllRegions = []RegionID{RegionAvrupa, RegionAnadolu, RegionCityBelt}

// SpeciesMode is the day-level behavior classification produced by the
// mode classifier. Exactly one mode is assigned per species per run.
type SpeciesMode string

const (
	ModeChasing   SpeciesMode = "chasing"
	ModeSelective SpeciesMode = "selective"
	ModeHolding   SpeciesMode = "holding"
)

// TechniquesToAvoid maps a mode to techniques that should be suppressed
// from recommendations while that mode is in effect.
var TechniquesToAvoid = map[SpeciesMode][]TechniqueID{
	ModeSelective: {TechniqueSpin, TechniqueShoreJig},
	ModeHolding:   {TechniqueSpin, TechniqueShoreJig, TechniqueCapari},
}

// DataQuality is the provenance tier of the weather input: a live
// upstream read, a cached copy, or the climatological fallback.
type DataQuality string

const (
	DataQualityLive     DataQuality = "live"
	DataQualityCached   DataQuality = "cached"
	DataQualityFallback DataQuality = "fallback"
)

// PressureTrend classifies the 3-hour barometric delta.
type PressureTrend string

const (
	PressureFalling PressureTrend = "falling"
	PressureRising  PressureTrend = "rising"
	PressureStable  PressureTrend = "stable"
)

// SeasonStatus places the run date within a species' annual cycle.
// Active means the month is in none of the configured lists.
type SeasonStatus string

const (
	SeasonPeak     SeasonStatus = "peak"
	SeasonShoulder SeasonStatus = "shoulder"
	SeasonActive   SeasonStatus = "active"
	SeasonOff      SeasonStatus = "off"
)

// WaterMassType is the proxy classification of the dominant surface
// water push. Lodos (SW/S) pushes warm Marmara water onto the strait,
// poyraz (NE/N) pushes cold Black Sea water down it.
type WaterMassType string

const (
	WaterMassLodos   WaterMassType = "lodos"
	WaterMassPoyraz  WaterMassType = "poyraz"
	WaterMassNeutral WaterMassType = "neutral"
)

// Shore identifies which side of the strait a spot sits on.
type Shore string

const (
	ShoreEuropean  Shore = "european"
	ShoreAnatolian Shore = "anatolian"
	ShoreIslands   Shore = "islands"
)

// TraceLevel controls how much rule-evaluation detail a decision
// document carries.
type TraceLevel string

const (
	TraceNone    TraceLevel = "none"
	TraceMinimal TraceLevel = "minimal"
	TraceFull    TraceLevel = "full"
)

// ParseTraceLevel maps a query-string value onto a TraceLevel,
// defaulting to none for empty or unknown input.
func ParseTraceLevel(s string) TraceLevel {
	switch TraceLevel(s) {
	case TraceMinimal:
		return TraceMinimal
	case TraceFull:
		return TraceFull
	default:
		return TraceNone
	}
}

// RuleCategory buckets rules for per-category bonus capping. Values
// match the category strings used in the rules data file.
type RuleCategory string

const (
	CategoryAbsolute      RuleCategory = "absolute"
	CategoryWindCoast     RuleCategory = "windCoast"
	CategoryWeatherMode   RuleCategory = "weatherMode"
	CategoryIstanbul      RuleCategory = "istanbul"
	CategoryTechniqueTime RuleCategory = "techniqueTime"
)

// WindCardinal is an 8-point compass direction.
type WindCardinal string

const (
	WindN  WindCardinal = "N"
	WindNE WindCardinal = "NE"
	WindE  WindCardinal = "E"
	WindSE WindCardinal = "SE"
	WindS  WindCardinal = "S"
	WindSW WindCardinal = "SW"
	WindW  WindCardinal = "W"
	WindNW WindCardinal = "NW"
)

// CardinalToTurkish maps 8-point cardinals to the local wind names used
// in rendered output.
var CardinalToTurkish = map[WindCardinal]string{
	WindN:  "yıldız",
	WindNE: "poyraz",
	WindE:  "gün_doğusu",
	WindSE: "kıble",
	WindS:  "keşişleme",
	WindSW: "lodos",
	WindW:  "gün_batısı",
	WindNW: "karayel",
}

// HealthStatus is the coarse service state reported by /health.
type HealthStatus string

const (
	HealthGood     HealthStatus = "good"
	HealthDegraded HealthStatus = "degraded"
	HealthBad      HealthStatus = "bad"
)
