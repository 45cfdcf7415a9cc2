package weather

import (
	"context"
	"strings"
	"testing"
	"time"

	"fishcast/internal/types"
)

type fakeObserver struct {
	obs *Observation
	err error
}

func (f *fakeObserver) Observe(ctx context.Context, lat, lon float64) (*Observation, error) {
	if f.err != nil {
		return nil, f.err
	}
	copied := *f.obs
	return &copied, nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func testObservation() *Observation {
	sea := 16.5
	wave := 0.4
	return &Observation{
		WindSpeedKmh:     18,
		WindDirectionDeg: 200,
		PressureHPa:      1011,
		PressureDelta3h:  -1.2,
		AirTempC:         14,
		CloudCoverPct:    70,
		SeaTempC:         &sea,
		WaveHeightM:      &wave,
		ObservedAt:       time.Date(2026, 10, 14, 6, 0, 0, 0, time.UTC),
	}
}

func TestSnapshotLive(t *testing.T) {
	now := time.Date(2026, 10, 14, 6, 30, 0, 0, time.UTC)
	cache := NewCache(time.Hour, 4)
	p := NewProvider(&fakeObserver{obs: testObservation()}, cache, nil).WithClock(fixedClock(now))

	snap := p.Snapshot(context.Background(), 41.0, 29.0)

	if snap.DataQuality != types.DataQualityLive {
		t.Errorf("quality = %q, want live", snap.DataQuality)
	}
	if snap.WindCardinal != types.WindS {
		t.Errorf("cardinal = %q, want S for 200 degrees", snap.WindCardinal)
	}
	if snap.WindNameTR != "keşişleme" {
		t.Errorf("wind name = %q", snap.WindNameTR)
	}
	if snap.PressureTrend != types.PressureFalling {
		t.Errorf("trend = %q, want falling for delta -1.2", snap.PressureTrend)
	}
	if snap.SeaTempC == nil || *snap.SeaTempC != 16.5 {
		t.Errorf("sea temp = %v, want 16.5", snap.SeaTempC)
	}
	if len(snap.DataIssues) != 0 {
		t.Errorf("issues = %v, want none", snap.DataIssues)
	}

	if _, ok := cache.Get(cacheKey(41.0, 29.0), now); !ok {
		t.Error("live snapshot should be cached")
	}
}

func TestSnapshotFillsSeaTempFromClimatology(t *testing.T) {
	obs := testObservation()
	obs.SeaTempC = nil
	now := time.Date(2026, 10, 14, 6, 30, 0, 0, time.UTC)
	p := NewProvider(&fakeObserver{obs: obs}, NewCache(time.Hour, 4), nil).WithClock(fixedClock(now))

	snap := p.Snapshot(context.Background(), 41.0, 29.0)

	if snap.SeaTempC == nil || *snap.SeaTempC != 19 {
		t.Fatalf("sea temp = %v, want October climatology 19", snap.SeaTempC)
	}
	if len(snap.DataIssues) != 1 || !strings.Contains(snap.DataIssues[0], "iklim") {
		t.Errorf("issues = %v, want climatology fill note", snap.DataIssues)
	}
}

func TestSnapshotServesCacheOnFailure(t *testing.T) {
	now := time.Date(2026, 10, 14, 6, 30, 0, 0, time.UTC)
	cache := NewCache(time.Hour, 4)
	observer := &fakeObserver{obs: testObservation()}
	p := NewProvider(observer, cache, nil).WithClock(fixedClock(now))

	// Warm the cache with a live read, then kill the upstream.
	p.Snapshot(context.Background(), 41.0, 29.0)
	observer.err = types.NewAppError(types.ErrCodeUpstreamWeather, "down", nil)

	snap := p.Snapshot(context.Background(), 41.0, 29.0)

	if snap.DataQuality != types.DataQualityCached {
		t.Errorf("quality = %q, want cached", snap.DataQuality)
	}
	if len(snap.DataIssues) == 0 || !strings.Contains(snap.DataIssues[0], "önbellek") {
		t.Errorf("issues = %v, want cache-used note", snap.DataIssues)
	}
	if snap.WindSpeedKmh != 18 {
		t.Errorf("cached wind = %v, want the live reading 18", snap.WindSpeedKmh)
	}

	// The stored entry itself must stay live-quality.
	stored, ok := cache.Get(cacheKey(41.0, 29.0), now)
	if !ok || stored.DataQuality != types.DataQualityLive {
		t.Errorf("stored entry = %+v, want untouched live snapshot", stored)
	}
}

func TestSnapshotFallsBackWhenCacheEmpty(t *testing.T) {
	now := time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)
	observer := &fakeObserver{err: types.NewAppError(types.ErrCodeUpstreamWeather, "down", nil)}
	p := NewProvider(observer, NewCache(time.Hour, 4), nil).WithClock(fixedClock(now))

	snap := p.Snapshot(context.Background(), 41.0, 29.0)
	if snap == nil {
		t.Fatal("snapshot must never be nil")
	}
	if snap.DataQuality != types.DataQualityFallback {
		t.Errorf("quality = %q, want fallback", snap.DataQuality)
	}
	if snap.WindSpeedKmh != 10 || snap.WindCardinal != types.WindNE {
		t.Errorf("fallback wind = %v %s", snap.WindSpeedKmh, snap.WindCardinal)
	}
	if snap.PressureHPa != 1015 || snap.PressureTrend != types.PressureStable {
		t.Errorf("fallback pressure = %v trend %q", snap.PressureHPa, snap.PressureTrend)
	}
	if snap.SeaTempC == nil || *snap.SeaTempC != 20 {
		t.Errorf("fallback sea temp = %v, want June climatology 20", snap.SeaTempC)
	}
	if snap.WaveHeightM == nil || *snap.WaveHeightM != 0.3 {
		t.Errorf("fallback wave = %v, want 0.3", snap.WaveHeightM)
	}
	if len(snap.DataIssues) != 1 {
		t.Errorf("issues = %v, want single provider note", snap.DataIssues)
	}
}

func TestClassifyTrend(t *testing.T) {
	tests := []struct {
		delta float64
		want  types.PressureTrend
	}{
		{-1.2, types.PressureFalling},
		{-0.51, types.PressureFalling},
		{-0.5, types.PressureStable},
		{0, types.PressureStable},
		{0.5, types.PressureStable},
		{0.6, types.PressureRising},
	}
	for _, tt := range tests {
		if got := classifyTrend(tt.delta); got != tt.want {
			t.Errorf("classifyTrend(%v) = %q, want %q", tt.delta, got, tt.want)
		}
	}
}
