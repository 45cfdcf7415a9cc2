package types

import (
	"time"
)

// CoordAccuracy records how a spot's coordinates were obtained.
// Approximate coordinates carry a confidence penalty.
type CoordAccuracy string

const (
	CoordSurveyed    CoordAccuracy = "surveyed"
	CoordApproximate CoordAccuracy = "approximate"
)

// WindExposure describes how a spot relates to wind. Directions are in
// meteorological degrees.
type WindExposure struct {
	// OnshoreDirsDeg are the wind directions that push water onto this
	// spot's shoreline.
	OnshoreDirsDeg  []int `json:"onshore_dirs_deg" yaml:"onshore_dirs_deg"`
	OffshoreDirsDeg []int `json:"offshore_dirs_deg" yaml:"offshore_dirs_deg"`

	// ShelterScore is 0.0 (fully exposed) to 1.0 (fully protected).
	ShelterScore float64 `json:"shelter_score" yaml:"shelter_score"`
}

// Spot is a static catalog entry for one fishing location. Read-only
// during a decision run.
type Spot struct {
	ID     string   `json:"id" yaml:"id"`
	Name   string   `json:"name" yaml:"name"`
	Region RegionID `json:"region" yaml:"region"`
	Shore  Shore    `json:"shore" yaml:"shore"`

	Lat           float64       `json:"lat" yaml:"lat"`
	Lon           float64       `json:"lon" yaml:"lon"`
	CoordAccuracy CoordAccuracy `json:"coord_accuracy" yaml:"coord_accuracy"`

	// PelagicCorridor marks spots on the migratory fish route through
	// the strait. Referenced by rule conditions.
	PelagicCorridor bool `json:"pelagic_corridor" yaml:"pelagic_corridor"`

	PrimarySpecies []SpeciesID   `json:"primary_species" yaml:"primary_species"`
	TechniqueBias  []TechniqueID `json:"technique_bias" yaml:"technique_bias"`

	// Features are free-form markers rule conditions can test for
	// (e.g. "pier", "deep_water", "current_line").
	Features []string `json:"features,omitempty" yaml:"features"`

	Exposure WindExposure `json:"wind_exposure" yaml:"wind_exposure"`

	// ShelteredFrom lists cardinals the spot is protected against.
	// Drives the no-go sheltered-exception pass.
	ShelteredFrom []WindCardinal `json:"sheltered_from,omitempty" yaml:"sheltered_from"`

	Description string `json:"description,omitempty" yaml:"description"`
}

// Species is a static catalog entry describing one fish species.
type Species struct {
	ID      SpeciesID `json:"id" yaml:"id"`
	Name    string    `json:"name" yaml:"name"`
	NameEN  string    `json:"name_en,omitempty" yaml:"name_en"`
	Tier    int       `json:"tier" yaml:"tier"`
	Legal   LegalInfo `json:"legal" yaml:"legal"`
	Notes   string    `json:"notes,omitempty" yaml:"notes"`
}

// LegalInfo carries the regulatory minimum size and any seasonal ban.
type LegalInfo struct {
	MinSizeCm float64 `json:"min_size_cm" yaml:"min_size_cm"`
	BanNote   string  `json:"ban_note,omitempty" yaml:"ban_note"`
}

// Technique is a static catalog entry for one fishing technique.
type Technique struct {
	ID          TechniqueID `json:"id" yaml:"id"`
	Name        string      `json:"name" yaml:"name"`
	NameEN      string      `json:"name_en,omitempty" yaml:"name_en"`
	Description string      `json:"description,omitempty" yaml:"description"`
}

// WeatherSnapshot is the normalized weather input for one decision run.
// Immutable once built. A fallback snapshot is always constructible, so
// callers never receive a nil snapshot.
type WeatherSnapshot struct {
	WindSpeedKmh     float64      `json:"wind_speed_kmh"`
	WindDirectionDeg float64      `json:"wind_direction_deg"`
	WindCardinal     WindCardinal `json:"wind_cardinal"`
	WindNameTR       string       `json:"wind_name_tr"`

	PressureHPa     float64       `json:"pressure_hpa"`
	PressureDelta3h float64       `json:"pressure_delta_3h"`
	PressureTrend   PressureTrend `json:"pressure_trend"`

	AirTempC      float64  `json:"air_temp_c"`
	CloudCoverPct float64  `json:"cloud_cover_pct"`
	SeaTempC      *float64 `json:"sea_temp_c,omitempty"`
	WaveHeightM   *float64 `json:"wave_height_m,omitempty"`

	DataQuality DataQuality `json:"data_quality"`
	DataIssues  []string    `json:"data_issues,omitempty"`

	ObservedAt time.Time `json:"observed_at"`
}

// SolunarWindow is one elevated-activity time range in local "HH:MM"
// form. Windows may wrap past midnight (start > end).
type SolunarWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// SolunarSnapshot is the pre-computed lunar activity input for one run.
type SolunarSnapshot struct {
	MajorWindows        []SolunarWindow `json:"major_windows"`
	MinorWindows        []SolunarWindow `json:"minor_windows"`
	MoonIlluminationPct float64         `json:"moon_illumination_pct"`
	MoonPhase           string          `json:"moon_phase,omitempty"`

	// Rating is the scalar 0-1 activity estimate for the day.
	Rating float64 `json:"rating"`
}

// DaylightSnapshot carries sunrise/sunset for the run's location.
type DaylightSnapshot struct {
	Sunrise    string `json:"sunrise"`
	Sunset     string `json:"sunset"`
	IsDaylight bool   `json:"is_daylight"`
	Timezone   string `json:"timezone"`
}

// ReportSignal summarizes recent catch reports near one spot. All
// fields default to the zero value when no signal source is wired.
type ReportSignal struct {
	RecentCount     int  `json:"recent_count"`
	NaturalBaitBias bool `json:"natural_bait_bias"`
	HasRecent       bool `json:"has_recent"`
}

// MonthlySeaTemp is the climatological Bosphorus surface temperature by
// month, used when no live sea-temperature reading is available.
var MonthlySeaTemp = map[int]float64{
	1: 9, 2: 8, 3: 9, 4: 11, 5: 15, 6: 20,
	7: 24, 8: 25, 9: 23, 10: 19, 11: 15, 12: 11,
}
