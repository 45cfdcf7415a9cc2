package engine

import (
	"testing"

	"fishcast/internal/types"
)

func evalCondition(t *testing.T, condition map[string]any, ctx *Context) bool {
	t.Helper()
	for _, p := range compileCondition(condition) {
		if !p.eval(ctx) {
			return false
		}
	}
	return true
}

func TestPredicateComparisons(t *testing.T) {
	ctx := testContext() // wind 10, pressure 1015, delta -0.5, month 10, hour 6

	tests := []struct {
		name      string
		condition map[string]any
		want      bool
	}{
		{"gte true", map[string]any{"windSpeedKmh": ">=10"}, true},
		{"gte false", map[string]any{"windSpeedKmh": ">=11"}, false},
		{"gt excludes equal", map[string]any{"windSpeedKmh": ">10"}, false},
		{"lt true", map[string]any{"pressureChange3hHpa": "<0"}, true},
		{"lte true", map[string]any{"windSpeedKmh": "<=10"}, true},
		{"spaces tolerated", map[string]any{"windSpeedKmh": ">= 5"}, true},
		{"negative operand", map[string]any{"pressureChange3hHpa": "<-0.3"}, true},
		{"two conditions and", map[string]any{"windSpeedKmh": ">=5", "pressureHpa": ">=1010"}, true},
		{"and fails on one", map[string]any{"windSpeedKmh": ">=5", "pressureHpa": ">=1020"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := evalCondition(t, tt.condition, ctx); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPredicateMalformedNeverFires(t *testing.T) {
	ctx := testContext()

	tests := []struct {
		name      string
		condition map[string]any
	}{
		{"garbage operand", map[string]any{"windSpeedKmh": ">=abc"}},
		{"bare operator", map[string]any{"windSpeedKmh": ">="}},
		{"bad time range", map[string]any{"time": "morning"}},
		{"time missing dash", map[string]any{"time": "06:00"}},
		{"range not a pair", map[string]any{"windSpeedKmh_range": []any{5}}},
		{"range non numeric", map[string]any{"windSpeedKmh_range": []any{"low", "high"}}},
		{"month non integer", map[string]any{"month": "october"}},
		{"features non string", map[string]any{"features_include": 42}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if evalCondition(t, tt.condition, ctx) {
				t.Error("malformed condition matched; it must never fire")
			}
		})
	}
}

func TestPredicateTimeWindow(t *testing.T) {
	ctx := testContext() // 06:30

	if !evalCondition(t, map[string]any{"time": "05:00-08:00"}, ctx) {
		t.Error("06:30 should match 05:00-08:00")
	}
	if evalCondition(t, map[string]any{"time": "10:00-12:00"}, ctx) {
		t.Error("06:30 should not match 10:00-12:00")
	}
	// Wrapping window.
	if !evalCondition(t, map[string]any{"time": "22:00-07:00"}, ctx) {
		t.Error("06:30 should match wrapped 22:00-07:00")
	}
	if evalCondition(t, map[string]any{"time": "22:00-05:00"}, ctx) {
		t.Error("06:30 should not match wrapped 22:00-05:00")
	}
}

func TestPredicateMonthSet(t *testing.T) {
	ctx := testContext() // October

	if !evalCondition(t, map[string]any{"month": 10}, ctx) {
		t.Error("single month should match")
	}
	if !evalCondition(t, map[string]any{"month": []any{9, 10, 11}}, ctx) {
		t.Error("month list should match")
	}
	if evalCondition(t, map[string]any{"month": []any{6, 7}}, ctx) {
		t.Error("month list without october should not match")
	}
}

func TestPredicateRange(t *testing.T) {
	ctx := testContext() // pressure 1015

	if !evalCondition(t, map[string]any{"pressureHpa_range": []any{1010, 1020}}, ctx) {
		t.Error("pressure inside range should match")
	}
	if evalCondition(t, map[string]any{"pressureHpa_range": []any{1020, 1030}}, ctx) {
		t.Error("pressure outside range should not match")
	}
	// Boundaries are inclusive.
	if !evalCondition(t, map[string]any{"pressureHpa_range": []any{1015, 1020}}, ctx) {
		t.Error("range lower boundary should match")
	}
}

func TestPredicateMembership(t *testing.T) {
	ctx := testContext() // cardinal NE

	if !evalCondition(t, map[string]any{"windDirectionCardinal": []any{"NE", "N"}}, ctx) {
		t.Error("cardinal in list should match")
	}
	if evalCondition(t, map[string]any{"windDirectionCardinal": []any{"SW", "S"}}, ctx) {
		t.Error("cardinal not in list should not match")
	}
	// Numeric fields stringify for membership.
	if !evalCondition(t, map[string]any{"hour": []any{6, 7}}, ctx) {
		t.Error("numeric membership should match")
	}
	if evalCondition(t, map[string]any{"hour": []any{12}}, ctx) {
		t.Error("numeric membership should not match a different hour")
	}
}

func TestPredicateBooleansAndFeatures(t *testing.T) {
	ctx := testContext() // pelagicCorridor false, isDaylight true, features pier+shallow

	if !evalCondition(t, map[string]any{"isDaylight": true}, ctx) {
		t.Error("isDaylight true should match")
	}
	if evalCondition(t, map[string]any{"pelagicCorridor": true}, ctx) {
		t.Error("pelagicCorridor should not match for a non-corridor spot")
	}
	if !evalCondition(t, map[string]any{"pelagicCorridor": false}, ctx) {
		t.Error("explicit false should match")
	}
	if !evalCondition(t, map[string]any{"after_rain": false}, ctx) {
		t.Error("after_rain defaults to false")
	}
	if !evalCondition(t, map[string]any{"features_include": "pier"}, ctx) {
		t.Error("present feature should match")
	}
	if evalCondition(t, map[string]any{"features_include": "rocks"}, ctx) {
		t.Error("absent feature should not match")
	}
}

func TestPredicateEqualityAndScoping(t *testing.T) {
	ctx := testContext()

	if !evalCondition(t, map[string]any{"pressureTrend": "stable"}, ctx) {
		t.Error("string equality should match")
	}
	if !evalCondition(t, map[string]any{"shore": "anatolian"}, ctx) {
		t.Error("shore equality should match")
	}
	if !evalCondition(t, map[string]any{"waterMassProxy": "neutral"}, ctx) {
		t.Error("water mass equality should match")
	}
	if evalCondition(t, map[string]any{"spot": "other_spot"}, ctx) {
		t.Error("spot mismatch should not match")
	}
	// species_in_context is handled per effect, always passes here.
	if !evalCondition(t, map[string]any{"species_in_context": []any{"palamut"}}, ctx) {
		t.Error("species_in_context should always pass at predicate level")
	}
	// Unknown field with equality never matches.
	if evalCondition(t, map[string]any{"barometerVibes": "good"}, ctx) {
		t.Error("unknown field should not match")
	}
}

func TestPredicateMissingSeaTemp(t *testing.T) {
	ctx := testContext()
	ctx.SeaTempC = nil

	if evalCondition(t, map[string]any{"seaTempC": ">=10"}, ctx) {
		t.Error("missing sea temperature must not satisfy a comparison")
	}
}

func TestCompileConditionDeterministicOrder(t *testing.T) {
	condition := map[string]any{
		"windSpeedKmh": ">=5",
		"month":        10,
		"time":         "05:00-08:00",
		"shore":        "anatolian",
	}

	first := compileCondition(condition)
	second := compileCondition(condition)
	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].field != second[i].field || first[i].kind != second[i].kind {
			t.Errorf("entry %d differs across compilations: %+v vs %+v", i, first[i], second[i])
		}
	}
	for i := 1; i < len(first); i++ {
		if first[i-1].field > first[i].field {
			t.Errorf("compiled predicates not sorted by field: %q before %q", first[i-1].field, first[i].field)
		}
	}
}

func TestWaterMassPredicateWithStrength(t *testing.T) {
	ctx := testContext()
	ctx.WaterMass = WaterMass{Type: types.WaterMassLodos, Strength: 0.5}

	cond := map[string]any{
		"waterMassProxy":    "lodos",
		"waterMassStrength": ">=0.3",
	}
	if !evalCondition(t, cond, ctx) {
		t.Error("lodos at strength 0.5 should match")
	}

	ctx.WaterMass.Strength = 0.1
	if evalCondition(t, cond, ctx) {
		t.Error("lodos at strength 0.1 should not match >=0.3")
	}
}
