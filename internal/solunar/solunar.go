// Package solunar computes lunar activity windows and daylight times
// from the calendar alone. Everything here is deterministic given an
// instant; there is no network dependency, so the decision pipeline can
// always produce a solunar input even when every upstream is down.
package solunar

import (
	"fmt"
	"math"
	"sort"
	"time"

	"fishcast/internal/types"
)

const (
	// synodicMonthDays is the mean new-moon-to-new-moon period.
	synodicMonthDays = 29.530588853

	// Reference new moon: 2000-01-06 18:14 UTC.
	epochUnix = 947182440

	istanbulLat = 41.01
	istanbulLon = 28.97
)

// Provider computes solunar and daylight snapshots for Istanbul.
type Provider struct {
	loc *time.Location
}

// NewProvider loads the Europe/Istanbul timezone. It fails only when
// the tz database is unavailable.
func NewProvider() (*Provider, error) {
	loc, err := time.LoadLocation("Europe/Istanbul")
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalEngine, "timezone Europe/Istanbul unavailable", err)
	}
	return &Provider{loc: loc}, nil
}

// Location returns the provider's timezone, shared with callers that
// need to localize run instants.
func (p *Provider) Location() *time.Location {
	return p.loc
}

// Snapshot computes the day's activity windows and moon state for the
// given instant. Major windows bracket the two lunar transits, minor
// windows bracket moonrise and moonset.
func (p *Provider) Snapshot(t time.Time) types.SolunarSnapshot {
	age := moonAge(t)
	frac := age / synodicMonthDays

	illumination := 50 * (1 - math.Cos(2*math.Pi*frac))
	illumination = math.Round(illumination*10) / 10

	// The moon transits with the sun at new moon and drifts roughly
	// 49 minutes later per day, putting the upper transit at local
	// midnight when full.
	upperTransit := math.Mod(12+frac*24, 24)
	lowerTransit := math.Mod(upperTransit+12, 24)

	majors := []types.SolunarWindow{
		windowAround(upperTransit, 1.0),
		windowAround(lowerTransit, 1.0),
	}
	minors := []types.SolunarWindow{
		windowAround(math.Mod(upperTransit+6, 24), 0.5),
		windowAround(math.Mod(upperTransit+18, 24), 0.5),
	}
	sortWindows(majors)
	sortWindows(minors)

	rating := 0.3 + phaseBonus(illumination)
	rating += math.Min(0.3, 0.1*float64(len(majors)+len(minors)))
	rating = math.Min(1.0, rating)
	rating = math.Round(rating*100) / 100

	return types.SolunarSnapshot{
		MajorWindows:        majors,
		MinorWindows:        minors,
		MoonIlluminationPct: illumination,
		MoonPhase:           phaseName(frac),
		Rating:              rating,
	}
}

// Daylight computes sunrise and sunset for Istanbul on the given
// instant's local date, using the NOAA solar position approximation.
func (p *Provider) Daylight(t time.Time) types.DaylightSnapshot {
	local := t.In(p.loc)

	sunriseUTC, sunsetUTC := solarEvents(local)

	sunrise := utcMinutesToLocal(local, sunriseUTC, p.loc)
	sunset := utcMinutesToLocal(local, sunsetUTC, p.loc)

	nowMin := local.Hour()*60 + local.Minute()
	isDay := nowMin >= sunrise && nowMin < sunset

	return types.DaylightSnapshot{
		Sunrise:    formatMinutes(sunrise),
		Sunset:     formatMinutes(sunset),
		IsDaylight: isDay,
		Timezone:   p.loc.String(),
	}
}

// moonAge is days elapsed within the current synodic cycle.
func moonAge(t time.Time) float64 {
	days := float64(t.Unix()-epochUnix) / 86400.0
	age := math.Mod(days, synodicMonthDays)
	if age < 0 {
		age += synodicMonthDays
	}
	return age
}

// phaseBonus rewards the high-activity new and full phases.
func phaseBonus(illumination float64) float64 {
	switch {
	case illumination >= 90 || illumination <= 10:
		return 0.2
	case illumination >= 70 || illumination <= 30:
		return 0.1
	default:
		return 0
	}
}

func phaseName(frac float64) string {
	switch {
	case frac < 0.0625 || frac >= 0.9375:
		return "new"
	case frac < 0.1875:
		return "waxing_crescent"
	case frac < 0.3125:
		return "first_quarter"
	case frac < 0.4375:
		return "waxing_gibbous"
	case frac < 0.5625:
		return "full"
	case frac < 0.6875:
		return "waning_gibbous"
	case frac < 0.8125:
		return "last_quarter"
	default:
		return "waning_crescent"
	}
}

// windowAround builds a window of +-halfWidth hours around a center
// hour, wrapping past midnight when needed.
func windowAround(centerHour, halfWidth float64) types.SolunarWindow {
	start := math.Mod(centerHour-halfWidth+24, 24)
	end := math.Mod(centerHour+halfWidth, 24)
	return types.SolunarWindow{
		Start: formatMinutes(int(math.Round(start * 60))),
		End:   formatMinutes(int(math.Round(end * 60))),
	}
}

func sortWindows(ws []types.SolunarWindow) {
	sort.Slice(ws, func(i, j int) bool { return ws[i].Start < ws[j].Start })
}

// solarEvents returns sunrise and sunset as minutes after UTC midnight
// for the local calendar date, per the NOAA low-accuracy algorithm.
func solarEvents(local time.Time) (sunrise, sunset int) {
	n := float64(local.YearDay())

	gamma := 2 * math.Pi / 365 * (n - 1)

	eqTime := 229.18 * (0.000075 +
		0.001868*math.Cos(gamma) - 0.032077*math.Sin(gamma) -
		0.014615*math.Cos(2*gamma) - 0.040849*math.Sin(2*gamma))

	decl := 0.006918 -
		0.399912*math.Cos(gamma) + 0.070257*math.Sin(gamma) -
		0.006758*math.Cos(2*gamma) + 0.000907*math.Sin(2*gamma) -
		0.002697*math.Cos(3*gamma) + 0.00148*math.Sin(3*gamma)

	latRad := istanbulLat * math.Pi / 180

	// 90.833 degrees accounts for refraction and the solar disk.
	cosHA := math.Cos(90.833*math.Pi/180)/(math.Cos(latRad)*math.Cos(decl)) -
		math.Tan(latRad)*math.Tan(decl)
	cosHA = math.Max(-1, math.Min(1, cosHA))
	haDeg := math.Acos(cosHA) * 180 / math.Pi

	sunriseF := 720 - 4*(istanbulLon+haDeg) - eqTime
	sunsetF := 720 - 4*(istanbulLon-haDeg) - eqTime

	return int(math.Round(sunriseF)), int(math.Round(sunsetF))
}

// utcMinutesToLocal shifts minutes-after-UTC-midnight into the local
// day, using the zone offset in effect on that date.
func utcMinutesToLocal(local time.Time, utcMinutes int, loc *time.Location) int {
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	_, offsetSec := midnight.Zone()
	m := (utcMinutes + offsetSec/60) % (24 * 60)
	if m < 0 {
		m += 24 * 60
	}
	return m
}

func formatMinutes(m int) string {
	m %= 24 * 60
	if m < 0 {
		m += 24 * 60
	}
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}
