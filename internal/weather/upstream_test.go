package weather

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fishcast/internal/types"
)

const forecastBody = `{
  "current": {
    "time": "2026-10-14T06:00",
    "temperature_2m": 14.2,
    "wind_speed_10m": 18.5,
    "wind_direction_10m": 45,
    "cloud_cover": 60,
    "surface_pressure": 1012.5
  },
  "hourly": {
    "time": ["2026-10-14T00:00","2026-10-14T01:00","2026-10-14T02:00","2026-10-14T03:00","2026-10-14T04:00","2026-10-14T05:00","2026-10-14T06:00"],
    "surface_pressure": [1016.0, 1015.8, 1015.5, 1015.0, 1014.0, 1013.0, 1012.5]
  }
}`

const marineBody = `{
  "current": {
    "sea_surface_temperature": 17.2,
    "wave_height": 0.6
  }
}`

func newTestUpstream(t *testing.T, handler http.Handler) *UpstreamClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewUpstreamClient(UpstreamConfig{
		ForecastBaseURL: srv.URL,
		MarineBaseURL:   srv.URL,
		RetryPolicy:     DefaultRetryPolicy(),
	}, nil,
		WithHTTPClient(srv.Client()),
		WithSleepFunc(func(time.Duration) {}),
	)
	if err != nil {
		t.Fatalf("NewUpstreamClient: %v", err)
	}
	return client
}

func TestObserve(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/forecast", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("wind_speed_unit"); got != "kmh" {
			t.Errorf("wind_speed_unit = %q, want kmh", got)
		}
		w.Write([]byte(forecastBody))
	})
	mux.HandleFunc("/v1/marine", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(marineBody))
	})

	client := newTestUpstream(t, mux)
	obs, err := client.Observe(context.Background(), 41.0, 29.0)
	if err != nil {
		t.Fatalf("Observe: %v", err)
	}

	if obs.WindSpeedKmh != 18.5 || obs.WindDirectionDeg != 45 {
		t.Errorf("wind = %v @ %v", obs.WindSpeedKmh, obs.WindDirectionDeg)
	}
	if obs.PressureHPa != 1012.5 {
		t.Errorf("pressure = %v", obs.PressureHPa)
	}
	if obs.PressureDelta3h != -2.5 {
		t.Errorf("delta3h = %v, want 1012.5 - 1015.0 = -2.5", obs.PressureDelta3h)
	}
	if obs.AirTempC != 14.2 || obs.CloudCoverPct != 60 {
		t.Errorf("air = %v cloud = %v", obs.AirTempC, obs.CloudCoverPct)
	}
	if obs.SeaTempC == nil || *obs.SeaTempC != 17.2 {
		t.Errorf("sea temp = %v", obs.SeaTempC)
	}
	if obs.WaveHeightM == nil || *obs.WaveHeightM != 0.6 {
		t.Errorf("wave = %v", obs.WaveHeightM)
	}
	want := time.Date(2026, 10, 14, 6, 0, 0, 0, time.UTC)
	if !obs.ObservedAt.Equal(want) {
		t.Errorf("observed at = %v, want %v", obs.ObservedAt, want)
	}
	if len(obs.Issues) != 0 {
		t.Errorf("issues = %v, want none", obs.Issues)
	}
}

func TestObserveMarineFailureIsNonFatal(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/forecast", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(forecastBody))
	})
	mux.HandleFunc("/v1/marine", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	client := newTestUpstream(t, mux)
	obs, err := client.Observe(context.Background(), 41.0, 29.0)
	if err != nil {
		t.Fatalf("Observe should tolerate marine failure: %v", err)
	}

	if obs.SeaTempC != nil || obs.WaveHeightM != nil {
		t.Error("sea state should be nil when the marine endpoint fails")
	}
	if len(obs.Issues) != 1 || !strings.Contains(obs.Issues[0], "Deniz durumu") {
		t.Errorf("issues = %v", obs.Issues)
	}
}

func TestObserveForecastFailure(t *testing.T) {
	attempts := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/forecast", func(w http.ResponseWriter, r *http.Request) {
		attempts++
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	client := newTestUpstream(t, mux)
	_, err := client.Observe(context.Background(), 41.0, 29.0)
	if err == nil {
		t.Fatal("expected error when the forecast endpoint is down")
	}

	var appErr *types.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("error type = %T", err)
	}
	if appErr.Code != types.ErrCodeUpstreamUnavailable {
		t.Errorf("code = %q, want upstream_unavailable", appErr.Code)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want initial try plus two retries", attempts)
	}
}

func TestPressureDelta3h(t *testing.T) {
	t.Run("mismatched series", func(t *testing.T) {
		var f forecastResponse
		f.Hourly.Time = []string{"a", "b"}
		f.Hourly.SurfacePressure = []float64{1, 2, 3}
		if got := pressureDelta3h(&f); got != 0 {
			t.Errorf("delta = %v, want 0", got)
		}
	})

	t.Run("current hour missing uses tail", func(t *testing.T) {
		var f forecastResponse
		f.Current.Time = "2026-10-14T06:30"
		f.Current.SurfacePressure = 1010
		f.Hourly.Time = []string{"t0", "t1", "t2", "t3", "t4"}
		f.Hourly.SurfacePressure = []float64{1016, 1015, 1014, 1013, 1012}
		// Tail index 4, three hours back is index 1.
		if got := pressureDelta3h(&f); got != 1010-1015 {
			t.Errorf("delta = %v, want -5", got)
		}
	})

	t.Run("short series", func(t *testing.T) {
		var f forecastResponse
		f.Hourly.Time = []string{"t0", "t1"}
		f.Hourly.SurfacePressure = []float64{1016, 1015}
		if got := pressureDelta3h(&f); got != 0 {
			t.Errorf("delta = %v, want 0", got)
		}
	})
}
