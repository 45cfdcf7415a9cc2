package engine

import (
	"time"

	"fishcast/internal/types"
)

// --- Shared Fixtures ---

func testScoringConfig() *types.ScoringConfig {
	evenWeights := types.FactorWeights{Pressure: 0.2, Wind: 0.2, SeaTemp: 0.2, Solunar: 0.2, Time: 0.2}

	weights := make(map[types.SpeciesID]types.FactorWeights)
	temps := make(map[types.SpeciesID]types.TempBand)
	hours := make(map[types.SpeciesID][]types.HourRange)
	for _, sp := range types.TierOneSpecies {
		weights[sp] = evenWeights
		temps[sp] = types.TempBand{Min: 12, Max: 20, PenaltyDivisor: 10}
		hours[sp] = []types.HourRange{{Start: 5, End: 8}, {Start: 16, End: 19}}
	}

	return &types.ScoringConfig{
		SpeciesWeights:   weights,
		SpeciesTemp:      temps,
		SpeciesBestHours: hours,
		RuleBonusCaps: types.RuleBonusCaps{
			WindCoastRules:  12,
			IstanbulSpecial: 10,
			TechniqueTime:   8,
			WeatherMode:     15,
			TotalCap:        25,
			NegativeFloor:   -20,
		},
		ConfidenceFactors: types.ConfidenceFactors{
			DataQualityBase: map[types.DataQuality]float64{
				types.DataQualityLive:     0.85,
				types.DataQualityCached:   0.65,
				types.DataQualityFallback: 0.45,
			},
			ReportBoost:           0.10,
			ApproxCoordPenalty:    0.05,
			FiredRulesThreshold:   6,
			FiredRulesPenalty:     0.03,
			MaxFiredRulesPenalty:  0.15,
			SeasonOffPenalty:      0.20,
			SeasonShoulderPenalty: 0.05,
		},
		WaterMassProxy: types.WaterMassConfig{
			LodosDirections:    []types.WindCardinal{types.WindSW, types.WindS},
			PoyrazDirections:   []types.WindCardinal{types.WindNE, types.WindN},
			WeakThresholdKmh:   10,
			StrongThresholdKmh: 20,
		},
		PressureThresholds: types.PressureThresholds{
			ExtremeChange: 3.0,
			RapidFalling:  -2.5,
			RapidRising:   2.5,
		},
		ShelteredException: types.ShelteredExceptionPolicy{
			AllowedTechniques: []types.TechniqueID{types.TechniqueLRF},
			WarningLevel:      "severe",
		},
	}
}

func testSeasonalityConfig() *types.SeasonalityConfig {
	species := make(map[types.SpeciesID]types.SpeciesSeason)
	for _, sp := range types.TierOneSpecies {
		species[sp] = types.SpeciesSeason{
			PeakMonths:         []int{9, 10, 11},
			ShoulderMonths:     []int{8, 12},
			OffMonths:          []int{6, 7},
			PeakAdjustment:     10,
			ShoulderAdjustment: 3,
			OffAdjustment:      -20,
			ConfidenceImpact:   0.2,
			OffFloor:           10,
			Parca: types.ParcaBehavior{
				ConditionThreshold: 0.6,
				PenaltyReduction:   0.5,
				Confidence:         0.3,
			},
		}
	}
	return &types.SeasonalityConfig{Species: species}
}

// testWeather is a calm, favorable autumn snapshot: light poyraz,
// ideal pressure band, mild fall.
func testWeather() *types.WeatherSnapshot {
	seaTemp := 16.0
	wave := 0.3
	return &types.WeatherSnapshot{
		WindSpeedKmh:     10,
		WindDirectionDeg: 45,
		WindCardinal:     types.WindNE,
		WindNameTR:       "poyraz",
		PressureHPa:      1015,
		PressureDelta3h:  -0.5,
		PressureTrend:    types.PressureStable,
		AirTempC:         15,
		CloudCoverPct:    40,
		SeaTempC:         &seaTemp,
		WaveHeightM:      &wave,
		DataQuality:      types.DataQualityLive,
		ObservedAt:       testInstant(),
	}
}

func testSolunar() *types.SolunarSnapshot {
	return &types.SolunarSnapshot{
		MajorWindows: []types.SolunarWindow{
			{Start: "06:00", End: "08:00"},
			{Start: "18:00", End: "20:00"},
		},
		MinorWindows: []types.SolunarWindow{
			{Start: "12:00", End: "13:00"},
		},
		MoonIlluminationPct: 50,
		Rating:              0.5,
	}
}

func testDaylight() *types.DaylightSnapshot {
	return &types.DaylightSnapshot{
		Sunrise:    "07:10",
		Sunset:     "18:45",
		IsDaylight: true,
		Timezone:   "Europe/Istanbul",
	}
}

func testSpot() *types.Spot {
	return &types.Spot{
		ID:              "kz_moda",
		Name:            "Moda Sahili",
		Region:          types.RegionAnadolu,
		Shore:           types.ShoreAnatolian,
		Lat:             40.975,
		Lon:             29.025,
		CoordAccuracy:   types.CoordSurveyed,
		PelagicCorridor: false,
		PrimarySpecies:  []types.SpeciesID{types.SpeciesIstavrit, types.SpeciesKaragoz},
		TechniqueBias:   []types.TechniqueID{types.TechniqueLRF, types.TechniqueYemliDip},
		Features:        []string{"pier", "shallow"},
		Exposure: types.WindExposure{
			OnshoreDirsDeg:  []int{180, 225},
			OffshoreDirsDeg: []int{0, 45},
			ShelterScore:    0.6,
		},
		ShelteredFrom: []types.WindCardinal{types.WindN, types.WindNE},
	}
}

// testInstant is a fixed October morning inside the first major
// solunar window: peak season for the test seasonality table.
func testInstant() time.Time {
	return time.Date(2026, time.October, 14, 6, 30, 0, 0, time.UTC)
}

func testContext() *Context {
	return BuildContext(testWeather(), testSpot(), testSolunar(), testDaylight(), WaterMass{Type: types.WaterMassNeutral}, testInstant())
}

func boolPtr(b bool) *bool { return &b }
