package engine

import (
	"fishcast/internal/types"
)

// The five parameter scorers each map one raw factor to a 0.0-1.0
// suitability score. Hard vetoes (storm no-go) are a rule concern, not
// a scorer concern: WindScore bottoms out at 0 but never flags.

// PressureScore scores absolute pressure by band and adjusts for the
// 3-hour trend. Falling pressure is a feeding trigger, sharp rises
// suppress activity.
func PressureScore(hPa, change3h float64) float64 {
	var base float64
	switch {
	case hPa >= 1010 && hPa <= 1020:
		base = 1.0
	case (hPa >= 1005 && hPa < 1010) || (hPa > 1020 && hPa <= 1025):
		base = 0.7
	case (hPa >= 1000 && hPa < 1005) || (hPa > 1025 && hPa <= 1030):
		base = 0.4
	default:
		base = 0.2
	}

	switch {
	case change3h < -2:
		base = min(1.0, base+0.3)
	case change3h < -1:
		base = min(1.0, base+0.15)
	case change3h > 2:
		base = max(0.0, base-0.2)
	}

	return base
}

// WindScore scores wind speed by band, with an asymmetric shore
// adjustment above 25 km/h: a poyraz gale hits the Anatolian shore
// harder while the European shore gets some protection, and lodos is
// the mirror case.
func WindScore(kmh, dirDeg float64, shore types.Shore) float64 {
	var base float64
	switch {
	case kmh < 5:
		base = 0.65
	case kmh <= 15:
		base = 0.90
	case kmh <= 25:
		base = 0.75
	case kmh <= 35:
		base = 0.40
	default:
		return 0.0
	}

	if kmh >= 25 {
		cardinal := DegreesToCardinal8(dirDeg)
		northerly := cardinal == types.WindNE || cardinal == types.WindN
		southerly := cardinal == types.WindSW || cardinal == types.WindS
		switch {
		case northerly && shore == types.ShoreAnatolian:
			base -= 0.15
		case northerly && shore == types.ShoreEuropean:
			base += 0.08
		case southerly && shore == types.ShoreEuropean:
			base -= 0.15
		case southerly && shore == types.ShoreAnatolian:
			base += 0.05
		}
	}

	return max(0.0, min(1.0, base))
}

// SeaTempScore scores sea temperature against the species' ideal band.
// Inside the band the score decays mildly with distance from the band
// midpoint; outside it decays linearly past the nearest boundary,
// scaled by the species' penalty divisor. A missing reading falls back
// to the monthly climatology. A species with no configured band scores
// a neutral 0.5.
func SeaTempScore(tempC *float64, band *types.TempBand, month int) float64 {
	if band == nil {
		return 0.5
	}

	t := 15.0
	if tempC != nil {
		t = *tempC
	} else if clim, ok := types.MonthlySeaTemp[month]; ok {
		t = clim
	}

	if t >= band.Min && t <= band.Max {
		mid := (band.Min + band.Max) / 2
		halfRange := (band.Max - band.Min) / 2
		if halfRange == 0 {
			return 1.0
		}
		distance := abs(t-mid) / halfRange
		return max(0.5, 1.0-distance*0.3)
	}

	var diff float64
	if t < band.Min {
		diff = band.Min - t
	} else {
		diff = t - band.Max
	}
	penalty := diff / band.PenaltyDivisor
	return max(0.0, 0.5-penalty)
}

// SolunarScore scores the current instant against the day's solunar
// windows: 1.0 inside a major window, 0.7 approaching one (within an
// hour of its start) or inside a minor window, otherwise a moonlit
// baseline.
func SolunarScore(hour, minute int, solunar *types.SolunarSnapshot) float64 {
	current := hour*60 + minute

	for _, w := range solunar.MajorWindows {
		if inWindowMinutes(current, w) {
			return 1.0
		}
	}

	for _, w := range solunar.MajorWindows {
		if approachingWindow(current, w, 60) {
			return 0.7
		}
	}

	for _, w := range solunar.MinorWindows {
		if inWindowMinutes(current, w) {
			return 0.7
		}
	}

	moonBonus := (solunar.MoonIlluminationPct / 100) * 0.2
	return 0.3 + moonBonus
}

// TimeScore scores the hour against the species' best-hour ranges:
// 1.0 inside a range, 0.6 within an hour of a range boundary, otherwise
// a low baseline. Ranges may wrap midnight.
func TimeScore(hour int, bestHours []types.HourRange) float64 {
	if len(bestHours) == 0 {
		bestHours = []types.HourRange{{Start: 5, End: 8}, {Start: 16, End: 19}}
	}

	base := 0.3

	for _, r := range bestHours {
		if r.Start <= r.End {
			if hour >= r.Start && hour <= r.End {
				base = 1.0
				break
			}
		} else {
			if hour >= r.Start || hour <= r.End {
				base = 1.0
				break
			}
		}
	}

	if base < 1.0 {
		for _, r := range bestHours {
			if absInt(hour-r.Start) <= 1 || absInt(hour-r.End) <= 1 {
				base = max(base, 0.6)
				break
			}
		}
	}

	return base
}

// inWindowMinutes reports whether the current minute-of-day falls in
// the window, handling midnight wrap when start > end.
func inWindowMinutes(current int, w types.SolunarWindow) bool {
	start, ok1 := parseHHMM(w.Start)
	end, ok2 := parseHHMM(w.End)
	if !ok1 || !ok2 {
		return false
	}
	if start <= end {
		return current >= start && current <= end
	}
	return current >= start || current <= end
}

// approachingWindow reports whether the current minute is within
// minutesBefore of the window's start, modulo midnight.
func approachingWindow(current int, w types.SolunarWindow, minutesBefore int) bool {
	start, ok := parseHHMM(w.Start)
	if !ok {
		return false
	}
	approachStart := ((start - minutesBefore) % 1440 + 1440) % 1440
	if approachStart <= start {
		return current >= approachStart && current < start
	}
	return current >= approachStart || current < start
}

// parseHHMM converts "HH:MM" to minutes since midnight.
func parseHHMM(s string) (int, bool) {
	if len(s) != 5 || s[2] != ':' {
		return 0, false
	}
	h := int(s[0]-'0')*10 + int(s[1]-'0')
	m := int(s[3]-'0')*10 + int(s[4]-'0')
	if s[0] < '0' || s[0] > '9' || s[1] < '0' || s[1] > '9' ||
		s[3] < '0' || s[3] > '9' || s[4] < '0' || s[4] > '9' {
		return 0, false
	}
	if h > 23 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
