package types

import (
	"encoding/json"
	"fmt"
	"regexp"
	"testing"
	"time"
)

// snakeCaseRegexp matches strings that are strictly snake_case:
// lowercase letters, digits, and underscores only. Single-word keys
// like "date" or "score" are valid snake_case.
var snakeCaseRegexp = regexp.MustCompile(`^[a-z][a-z0-9]*(_[a-z0-9]+)*$`)

func isSnakeCase(key string) bool {
	return snakeCaseRegexp.MatchString(key)
}

// assertAllKeysSnakeCase recursively walks a JSON value and asserts that
// every object key is strictly snake_case. The path parameter tracks the
// JSON path for clear error messages (e.g., "day_summary.wind_name_tr").
func assertAllKeysSnakeCase(t *testing.T, path string, v interface{}) {
	t.Helper()

	switch val := v.(type) {
	case map[string]interface{}:
		for key, child := range val {
			fullPath := key
			if path != "" {
				fullPath = path + "." + key
			}
			if !isSnakeCase(key) {
				t.Errorf("JSON key %q at path %q is not snake_case", key, fullPath)
			}
			assertAllKeysSnakeCase(t, fullPath, child)
		}
	case []interface{}:
		for i, item := range val {
			itemPath := fmt.Sprintf("%s[%d]", path, i)
			assertAllKeysSnakeCase(t, itemPath, item)
		}
	// Scalar types (string, float64, bool, nil) have no keys to check.
	default:
	}
}

// TestDecisionDocumentSnakeCaseContract verifies that every JSON key a
// fully populated decision document produces is strictly snake_case.
// Clients pin these keys; a struct field missing its json tag would
// surface here as a PascalCase key.
func TestDecisionDocumentSnakeCaseContract(t *testing.T) {
	sea := 14.5
	wave := 0.8
	doc := DecisionDocument{
		Date: "2026-10-14",
		Meta: DecisionMeta{
			RunID:               "run_abc",
			GeneratedAt:         time.Date(2026, 10, 14, 5, 0, 0, 0, time.UTC),
			Timezone:            "Europe/Istanbul",
			EngineVersion:       "1.2.0",
			RulesetVersion:      "20260223.1",
			TraceLevelRequested: TraceFull,
			TraceLevelApplied:   TraceFull,
			RulesetFingerprint:  "deadbeef",
		},
		DaySummary: DaySummary{
			WindSpeedKmhMin: 10,
			WindSpeedKmhMax: 22,
			WindNameTR:      "Poyraz",
			PressureHPa:     1013,
			PressureDelta3h: -1.2,
			PressureTrend:   PressureFalling,
			SeaTempC:        &sea,
			WaveHeightM:     &wave,
			DataQuality:     DataQualityLive,
			DataIssues:      []string{"marine_unavailable"},
		},
		BestWindows: []BestWindow{
			{Start: "06:10", End: "08:10", Score: 78, Confidence: 0.8, Reasons: []string{"dawn"}},
		},
		Regions: []RegionRecommendation{
			{
				Region:   RegionAvrupa,
				SpotID:   "yenikapi",
				SpotName: "Yenikapı",
				Why:      []string{"wind sheltered"},
				Targets: []Target{
					{SpeciesID: "lufer", Name: "Lüfer", Score: 72, Confidence: 0.7, Mode: ModeChasing, BestWindowIndex: 0},
				},
				RecommendedTechniques: []TechniqueID{"spin"},
				AvoidTechniques: []AvoidTechnique{
					{TechniqueID: "lrf", Reason: "swell"},
				},
				ReportSignal: &ReportSignal{RecentCount: 4, HasRecent: true},
			},
		},
		NoGo: NoGoVerdict{
			Active:  true,
			Reasons: []string{"wind over limit"},
			ShelteredExceptions: []ShelteredException{
				{SpotID: "halic", SpotName: "Haliç", AllowedTechniques: []TechniqueID{"lrf"}, WarningLevel: "caution", Message: "korunaklı"},
			},
		},
		Health: HealthBlock{
			Status:      HealthDegraded,
			ReasonCodes: []string{"MARINE_MISSING"},
			Reasons:     []string{"marine api unavailable"},
			Normalized: HealthNormalized{
				WindSpeedKmhRaw:      21.7,
				WindCardinalDerived:  "NE",
				PressureTrendDerived: PressureFalling,
			},
		},
		Spots: []SpotScore{
			{
				SpotID:       "yenikapi",
				SpotName:     "Yenikapı",
				Region:       RegionAvrupa,
				OverallScore: 64,
				NoGoReasons:  []string{"none"},
				Species: map[SpeciesID]SpeciesScoreResult{
					"lufer": {Score: 72},
				},
				ActiveRules: []FiredRule{{RuleID: "r_poyraz_lufer"}},
				Trace: &EvaluationTrace{
					FiredRuleCount: 1,
					ActiveRuleIDs:  []string{"r_poyraz_lufer"},
					DataQuality:    DataQualityLive,
					PositiveRaw:    map[SpeciesID]int{"lufer": 30},
				},
			},
		},
	}

	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("failed to marshal DecisionDocument: %v", err)
	}

	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("failed to unmarshal DecisionDocument to interface{}: %v", err)
	}

	assertAllKeysSnakeCase(t, "", raw)
}

// TestRefreshMessageSnakeCaseContract covers the SQS payload the planner
// and the score workers exchange.
func TestRefreshMessageSnakeCaseContract(t *testing.T) {
	msg := RefreshMessage{
		BatchID:    "batch_001",
		RunDate:    "2026-10-14",
		Region:     RegionAnadolu,
		Reason:     "backfill",
		TraceLevel: TraceMinimal,
		RetryCount: 1,
	}

	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("failed to marshal RefreshMessage: %v", err)
	}

	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("failed to unmarshal RefreshMessage to interface{}: %v", err)
	}

	assertAllKeysSnakeCase(t, "", raw)

	topLevel, ok := raw.(map[string]interface{})
	if !ok {
		t.Fatal("RefreshMessage did not marshal to a JSON object")
	}
	if len(topLevel) != 6 {
		t.Errorf("RefreshMessage has %d top-level keys, expected 6; fields may be missing json tags", len(topLevel))
	}
}
