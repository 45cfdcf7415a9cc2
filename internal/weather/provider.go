package weather

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fishcast/internal/engine"
	"fishcast/internal/types"
)

// Pressure trend classification thresholds on the 3-hour delta (hPa).
const (
	trendFallingBelow = -0.5
	trendRisingAbove  = 0.5
)

// Fallback snapshot constants: a mild poyraz day, the most ordinary
// conditions for the strait.
const (
	fallbackWindSpeedKmh  = 10
	fallbackWindDirDeg    = 45
	fallbackPressureHPa   = 1015
	fallbackPressureDelta = -0.5
	fallbackAirTempC      = 15
	fallbackCloudPct      = 40
	fallbackWaveHeightM   = 0.3
)

// Provider produces the normalized weather snapshot for a decision
// run, degrading live -> cached -> fallback. It never returns nil.
type Provider struct {
	upstream Observer
	cache    *Cache
	logger   *slog.Logger
	clock    func() time.Time
}

// NewProvider wires an upstream observer and a caller-owned cache.
func NewProvider(upstream Observer, cache *Cache, logger *slog.Logger) *Provider {
	return &Provider{
		upstream: upstream,
		cache:    cache,
		logger:   logger,
		clock:    func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the provider clock, for tests.
func (p *Provider) WithClock(clock func() time.Time) *Provider {
	p.clock = clock
	return p
}

// Snapshot fetches and normalizes current conditions for a location.
// On upstream failure it serves the cached snapshot when fresh, and
// the climatological fallback otherwise.
func (p *Provider) Snapshot(ctx context.Context, lat, lon float64) *types.WeatherSnapshot {
	now := p.clock()
	key := cacheKey(lat, lon)

	obs, err := p.upstream.Observe(ctx, lat, lon)
	if err == nil {
		snap := p.normalize(obs, now)
		p.cache.Put(key, snap, now)
		return snap
	}

	if p.logger != nil {
		p.logger.Warn("live weather unavailable", "error", err, "lat", lat, "lon", lon)
	}

	if cached, ok := p.cache.Get(key, now); ok {
		cached.DataQuality = types.DataQualityCached
		cached.DataIssues = append(cached.DataIssues, "Canlı hava verisi alınamadı, önbellek kullanıldı")
		return cached
	}

	return Fallback(now)
}

// normalize builds the live snapshot: trend classification, 8-point
// cardinal with its Turkish name, and the climatology fill for a
// missing sea temperature.
func (p *Provider) normalize(obs *Observation, now time.Time) *types.WeatherSnapshot {
	cardinal := engine.DegreesToCardinal8(obs.WindDirectionDeg)

	snap := &types.WeatherSnapshot{
		WindSpeedKmh:     obs.WindSpeedKmh,
		WindDirectionDeg: obs.WindDirectionDeg,
		WindCardinal:     cardinal,
		WindNameTR:       types.CardinalToTurkish[cardinal],

		PressureHPa:     obs.PressureHPa,
		PressureDelta3h: obs.PressureDelta3h,
		PressureTrend:   classifyTrend(obs.PressureDelta3h),

		AirTempC:      obs.AirTempC,
		CloudCoverPct: obs.CloudCoverPct,
		SeaTempC:      obs.SeaTempC,
		WaveHeightM:   obs.WaveHeightM,

		DataQuality: types.DataQualityLive,
		DataIssues:  append([]string(nil), obs.Issues...),

		ObservedAt: obs.ObservedAt,
	}

	if snap.SeaTempC == nil {
		if temp, ok := types.MonthlySeaTemp[int(now.Month())]; ok {
			t := temp
			snap.SeaTempC = &t
			snap.DataIssues = append(snap.DataIssues, "Su sıcaklığı iklim ortalamasıyla dolduruldu")
		}
	}

	return snap
}

// Fallback builds the always-available climatological snapshot for the
// given instant. Exported so the offline CLI path can use it directly.
func Fallback(now time.Time) *types.WeatherSnapshot {
	cardinal := engine.DegreesToCardinal8(fallbackWindDirDeg)
	seaTemp := types.MonthlySeaTemp[int(now.Month())]
	wave := fallbackWaveHeightM

	return &types.WeatherSnapshot{
		WindSpeedKmh:     fallbackWindSpeedKmh,
		WindDirectionDeg: fallbackWindDirDeg,
		WindCardinal:     cardinal,
		WindNameTR:       types.CardinalToTurkish[cardinal],

		PressureHPa:     fallbackPressureHPa,
		PressureDelta3h: fallbackPressureDelta,
		PressureTrend:   classifyTrend(fallbackPressureDelta),

		AirTempC:      fallbackAirTempC,
		CloudCoverPct: fallbackCloudPct,
		SeaTempC:      &seaTemp,
		WaveHeightM:   &wave,

		DataQuality: types.DataQualityFallback,
		DataIssues:  []string{"Hava sağlayıcısına ulaşılamadı, iklim ortalamaları kullanıldı"},

		ObservedAt: now,
	}
}

// Offline serves the climatological fallback unconditionally. Used when
// OFFLINE_MODE is set and by the CLI, where no upstream is wired.
type Offline struct {
	// Clock is replaceable for tests; nil means time.Now.
	Clock func() time.Time
}

// Snapshot returns the fallback snapshot for the current instant.
func (o Offline) Snapshot(_ context.Context, _, _ float64) *types.WeatherSnapshot {
	now := time.Now().UTC()
	if o.Clock != nil {
		now = o.Clock()
	}
	return Fallback(now)
}

func classifyTrend(delta3h float64) types.PressureTrend {
	switch {
	case delta3h < trendFallingBelow:
		return types.PressureFalling
	case delta3h > trendRisingAbove:
		return types.PressureRising
	default:
		return types.PressureStable
	}
}

func cacheKey(lat, lon float64) string {
	return fmt.Sprintf("%.3f,%.3f", lat, lon)
}
