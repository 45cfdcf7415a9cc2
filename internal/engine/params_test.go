package engine

import (
	"testing"

	"fishcast/internal/types"
)

func TestPressureScore(t *testing.T) {
	tests := []struct {
		name     string
		hPa      float64
		change3h float64
		want     float64
	}{
		{"ideal band", 1015, 0, 1.0},
		{"ideal band lower edge", 1010, 0, 1.0},
		{"ideal band upper edge", 1020, 0, 1.0},
		{"slightly low", 1007, 0, 0.7},
		{"slightly high", 1023, 0, 0.7},
		{"low", 1002, 0, 0.4},
		{"high", 1028, 0, 0.4},
		{"very low", 995, 0, 0.2},
		{"very high", 1035, 0, 0.2},
		{"sharp fall boosts", 1002, -3, 0.7},
		{"mild fall boosts", 1002, -1.5, 0.55},
		{"sharp rise penalizes", 1015, 3, 0.8},
		{"boost capped at one", 1015, -5, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PressureScore(tt.hPa, tt.change3h)
			if !floatEq(got, tt.want) {
				t.Errorf("PressureScore(%v, %v) = %v, want %v", tt.hPa, tt.change3h, got, tt.want)
			}
		})
	}
}

func TestWindScore(t *testing.T) {
	tests := []struct {
		name   string
		kmh    float64
		dirDeg float64
		shore  types.Shore
		want   float64
	}{
		{"too calm", 3, 45, types.ShoreAnatolian, 0.65},
		{"ideal", 10, 45, types.ShoreAnatolian, 0.90},
		{"moderate", 20, 45, types.ShoreAnatolian, 0.75},
		{"strong", 30, 90, types.ShoreAnatolian, 0.40},
		{"gale is zero", 40, 45, types.ShoreAnatolian, 0.0},
		{"poyraz hits anatolian shore", 30, 45, types.ShoreAnatolian, 0.25},
		{"poyraz shelters european shore", 30, 45, types.ShoreEuropean, 0.48},
		{"lodos hits european shore", 30, 225, types.ShoreEuropean, 0.25},
		{"lodos favors anatolian shore", 30, 225, types.ShoreAnatolian, 0.45},
		{"shore adjustment only at 25 and above", 20, 45, types.ShoreAnatolian, 0.75},
		{"islands get no adjustment", 30, 45, types.ShoreIslands, 0.40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WindScore(tt.kmh, tt.dirDeg, tt.shore)
			if !floatEq(got, tt.want) {
				t.Errorf("WindScore(%v, %v, %q) = %v, want %v", tt.kmh, tt.dirDeg, tt.shore, got, tt.want)
			}
		})
	}
}

func TestSeaTempScore(t *testing.T) {
	band := &types.TempBand{Min: 12, Max: 20, PenaltyDivisor: 10}

	tests := []struct {
		name  string
		tempC *float64
		band  *types.TempBand
		month int
		want  float64
	}{
		{"no band is neutral", floatPtr(16), nil, 10, 0.5},
		{"band midpoint", floatPtr(16), band, 10, 1.0},
		{"inside band off midpoint", floatPtr(18), band, 10, 0.85},
		{"band edge", floatPtr(20), band, 10, 0.7},
		{"below band", floatPtr(10), band, 10, 0.3},
		{"far below band", floatPtr(5), band, 10, 0.0},
		{"above band", floatPtr(23), band, 10, 0.2},
		{"missing temp uses october climatology", nil, band, 10, 0.775},
		{"missing temp and month falls back to 15", nil, band, 0, 0.925},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SeaTempScore(tt.tempC, tt.band, tt.month)
			if !floatEq(got, tt.want) {
				t.Errorf("SeaTempScore = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSeaTempScoreZeroWidthBand(t *testing.T) {
	band := &types.TempBand{Min: 15, Max: 15, PenaltyDivisor: 10}
	if got := SeaTempScore(floatPtr(15), band, 10); got != 1.0 {
		t.Errorf("zero-width band at exact temp = %v, want 1.0", got)
	}
}

func TestSolunarScore(t *testing.T) {
	solunar := testSolunar()

	tests := []struct {
		name   string
		hour   int
		minute int
		want   float64
	}{
		{"inside major window", 6, 30, 1.0},
		{"major window start", 6, 0, 1.0},
		{"major window end", 8, 0, 1.0},
		{"approaching major", 5, 30, 0.7},
		{"inside minor window", 12, 30, 0.7},
		{"outside all windows", 15, 0, 0.4},
		{"inside second major", 19, 0, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SolunarScore(tt.hour, tt.minute, solunar)
			if !floatEq(got, tt.want) {
				t.Errorf("SolunarScore(%d, %d) = %v, want %v", tt.hour, tt.minute, got, tt.want)
			}
		})
	}
}

func TestSolunarScoreMidnightWrap(t *testing.T) {
	solunar := &types.SolunarSnapshot{
		MajorWindows:        []types.SolunarWindow{{Start: "23:00", End: "01:00"}},
		MoonIlluminationPct: 0,
	}

	if got := SolunarScore(23, 30, solunar); got != 1.0 {
		t.Errorf("before midnight inside wrap = %v, want 1.0", got)
	}
	if got := SolunarScore(0, 30, solunar); got != 1.0 {
		t.Errorf("after midnight inside wrap = %v, want 1.0", got)
	}
	if got := SolunarScore(22, 30, solunar); got != 0.7 {
		t.Errorf("approaching wrapped window = %v, want 0.7", got)
	}
	if got := SolunarScore(12, 0, solunar); got != 0.3 {
		t.Errorf("far from wrapped window = %v, want 0.3", got)
	}
}

func TestSolunarScoreApproachWrapsMidnight(t *testing.T) {
	// Window starting at 00:30: the approach band reaches back to 23:30.
	solunar := &types.SolunarSnapshot{
		MajorWindows:        []types.SolunarWindow{{Start: "00:30", End: "02:00"}},
		MoonIlluminationPct: 0,
	}
	if got := SolunarScore(23, 45, solunar); got != 0.7 {
		t.Errorf("approach band across midnight = %v, want 0.7", got)
	}
}

func TestSolunarScoreMalformedWindow(t *testing.T) {
	solunar := &types.SolunarSnapshot{
		MajorWindows:        []types.SolunarWindow{{Start: "6am", End: "8am"}},
		MoonIlluminationPct: 100,
	}
	// Malformed windows never match; moonlit baseline applies.
	if got := SolunarScore(7, 0, solunar); !floatEq(got, 0.5) {
		t.Errorf("malformed window = %v, want 0.5", got)
	}
}

func TestTimeScore(t *testing.T) {
	ranges := []types.HourRange{{Start: 5, End: 8}, {Start: 16, End: 19}}

	tests := []struct {
		name string
		hour int
		want float64
	}{
		{"inside morning range", 6, 1.0},
		{"range boundary", 5, 1.0},
		{"adjacent to range", 4, 0.6},
		{"adjacent to evening range", 20, 0.6},
		{"far outside", 12, 0.3},
		{"inside evening range", 17, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TimeScore(tt.hour, ranges); !floatEq(got, tt.want) {
				t.Errorf("TimeScore(%d) = %v, want %v", tt.hour, got, tt.want)
			}
		})
	}
}

func TestTimeScoreWrappingRange(t *testing.T) {
	ranges := []types.HourRange{{Start: 22, End: 2}}

	if got := TimeScore(23, ranges); got != 1.0 {
		t.Errorf("hour 23 in wrapping range = %v, want 1.0", got)
	}
	if got := TimeScore(1, ranges); got != 1.0 {
		t.Errorf("hour 1 in wrapping range = %v, want 1.0", got)
	}
	if got := TimeScore(3, ranges); got != 0.6 {
		t.Errorf("hour 3 adjacent to wrapping range = %v, want 0.6", got)
	}
	if got := TimeScore(12, ranges); got != 0.3 {
		t.Errorf("hour 12 far from wrapping range = %v, want 0.3", got)
	}
}

func TestTimeScoreDefaultRanges(t *testing.T) {
	// Empty config falls back to dawn and dusk defaults.
	if got := TimeScore(6, nil); got != 1.0 {
		t.Errorf("default morning range = %v, want 1.0", got)
	}
	if got := TimeScore(17, nil); got != 1.0 {
		t.Errorf("default evening range = %v, want 1.0", got)
	}
	if got := TimeScore(12, nil); got != 0.3 {
		t.Errorf("default midday = %v, want 0.3", got)
	}
}

func TestParseHHMM(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"00:00", 0, true},
		{"06:30", 390, true},
		{"23:59", 1439, true},
		{"24:00", 0, false},
		{"12:60", 0, false},
		{"1:30", 0, false},
		{"12-30", 0, false},
		{"ab:cd", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, ok := parseHHMM(tt.in)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("parseHHMM(%q) = (%d, %v), want (%d, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func floatEq(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 1e-9
}

func floatPtr(f float64) *float64 { return &f }
