package weather

import (
	"testing"
	"time"

	"fishcast/internal/types"
)

func snapshotFixture() *types.WeatherSnapshot {
	sea := 16.0
	return &types.WeatherSnapshot{
		WindSpeedKmh: 12,
		WindCardinal: types.WindNE,
		PressureHPa:  1014,
		SeaTempC:     &sea,
		DataQuality:  types.DataQualityLive,
		DataIssues:   []string{"test"},
	}
}

func TestCacheGetFresh(t *testing.T) {
	c := NewCache(time.Hour, 4)
	now := time.Date(2026, 10, 14, 6, 0, 0, 0, time.UTC)

	c.Put("k", snapshotFixture(), now)

	got, ok := c.Get("k", now.Add(30*time.Minute))
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got.WindSpeedKmh != 12 || got.DataQuality != types.DataQualityLive {
		t.Errorf("got %+v", got)
	}
}

func TestCacheExpiry(t *testing.T) {
	c := NewCache(time.Hour, 4)
	now := time.Date(2026, 10, 14, 6, 0, 0, 0, time.UTC)

	c.Put("k", snapshotFixture(), now)

	if _, ok := c.Get("k", now.Add(2*time.Hour)); ok {
		t.Error("expected expired entry to miss")
	}
	if c.Len() != 0 {
		t.Errorf("expired entry should be dropped, len = %d", c.Len())
	}
}

func TestCacheEvictsOldest(t *testing.T) {
	c := NewCache(time.Hour, 2)
	base := time.Date(2026, 10, 14, 6, 0, 0, 0, time.UTC)

	c.Put("a", snapshotFixture(), base)
	c.Put("b", snapshotFixture(), base.Add(time.Minute))
	c.Put("c", snapshotFixture(), base.Add(2*time.Minute))

	if _, ok := c.Get("a", base.Add(3*time.Minute)); ok {
		t.Error("oldest entry should have been evicted")
	}
	if _, ok := c.Get("b", base.Add(3*time.Minute)); !ok {
		t.Error("entry b should survive")
	}
	if _, ok := c.Get("c", base.Add(3*time.Minute)); !ok {
		t.Error("entry c should survive")
	}
}

func TestCacheReturnsCopies(t *testing.T) {
	c := NewCache(time.Hour, 4)
	now := time.Date(2026, 10, 14, 6, 0, 0, 0, time.UTC)

	c.Put("k", snapshotFixture(), now)

	first, _ := c.Get("k", now)
	first.DataQuality = types.DataQualityCached
	first.DataIssues = append(first.DataIssues, "mutated")

	second, _ := c.Get("k", now)
	if second.DataQuality != types.DataQualityLive {
		t.Errorf("cache entry mutated through returned copy: %q", second.DataQuality)
	}
	if len(second.DataIssues) != 1 {
		t.Errorf("issues = %v, want the original single entry", second.DataIssues)
	}
}
