package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"fishcast/internal/security"
	"fishcast/internal/types"
)

// Observation is one raw upstream read before normalization. Sea state
// fields stay nil when the marine endpoint has no data for the point.
type Observation struct {
	WindSpeedKmh     float64
	WindDirectionDeg float64

	PressureHPa     float64
	PressureDelta3h float64

	AirTempC      float64
	CloudCoverPct float64

	SeaTempC    *float64
	WaveHeightM *float64

	ObservedAt time.Time

	// Issues records partial failures (e.g. marine endpoint down)
	// that did not prevent the observation itself.
	Issues []string
}

// Observer is the point-of-use interface the provider consumes.
type Observer interface {
	Observe(ctx context.Context, lat, lon float64) (*Observation, error)
}

// UpstreamConfig wires the Open-Meteo-compatible endpoints.
type UpstreamConfig struct {
	ForecastBaseURL string
	MarineBaseURL   string
	Timeout         time.Duration
	UserAgent       string
	RetryPolicy     RetryPolicy
}

// UpstreamClient reads current conditions and the recent pressure
// series from the forecast API, and sea state from the marine API.
type UpstreamClient struct {
	http        *resilientClient
	forecastURL string
	marineURL   string
	logger      *slog.Logger
}

var _ Observer = (*UpstreamClient)(nil)

// UpstreamOption adjusts an UpstreamClient after defaults are applied.
type UpstreamOption func(*UpstreamClient)

// WithHTTPClient replaces the SSRF-guarded HTTP client. Intended for
// tests that talk to a local server.
func WithHTTPClient(hc *http.Client) UpstreamOption {
	return func(c *UpstreamClient) {
		c.http.client = hc
	}
}

// WithSleepFunc overrides the inter-retry sleep, for tests.
func WithSleepFunc(fn func(time.Duration)) UpstreamOption {
	return func(c *UpstreamClient) {
		c.http.sleepFn = fn
	}
}

// NewUpstreamClient builds the client with an SSRF-guarded transport.
func NewUpstreamClient(cfg UpstreamConfig, logger *slog.Logger, opts ...UpstreamOption) (*UpstreamClient, error) {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	httpClient, err := security.NewSafeHTTPClient(timeout, 3)
	if err != nil {
		return nil, err
	}

	c := &UpstreamClient{
		http:        newResilientClient(httpClient, "weather-upstream", cfg.RetryPolicy, cfg.UserAgent),
		forecastURL: cfg.ForecastBaseURL,
		marineURL:   cfg.MarineBaseURL,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Upstream hourly timestamps come back in this layout when the
// timezone parameter is UTC.
const upstreamTimeLayout = "2006-01-02T15:04"

type forecastResponse struct {
	Current struct {
		Time             string  `json:"time"`
		Temperature2m    float64 `json:"temperature_2m"`
		WindSpeed10m     float64 `json:"wind_speed_10m"`
		WindDirection10m float64 `json:"wind_direction_10m"`
		CloudCover       float64 `json:"cloud_cover"`
		SurfacePressure  float64 `json:"surface_pressure"`
	} `json:"current"`
	Hourly struct {
		Time            []string  `json:"time"`
		SurfacePressure []float64 `json:"surface_pressure"`
	} `json:"hourly"`
}

type marineResponse struct {
	Current struct {
		SeaSurfaceTemperature *float64 `json:"sea_surface_temperature"`
		WaveHeight            *float64 `json:"wave_height"`
	} `json:"current"`
}

// Observe reads both endpoints. A marine failure is recorded as an
// issue but does not fail the observation; a forecast failure does.
func (c *UpstreamClient) Observe(ctx context.Context, lat, lon float64) (*Observation, error) {
	var forecast forecastResponse
	if err := c.getJSON(ctx, c.forecastEndpoint(lat, lon), &forecast); err != nil {
		return nil, err
	}

	observedAt, err := time.Parse(upstreamTimeLayout, forecast.Current.Time)
	if err != nil {
		observedAt = time.Now().UTC().Truncate(time.Hour)
	}

	obs := &Observation{
		WindSpeedKmh:     forecast.Current.WindSpeed10m,
		WindDirectionDeg: forecast.Current.WindDirection10m,
		PressureHPa:      forecast.Current.SurfacePressure,
		PressureDelta3h:  pressureDelta3h(&forecast),
		AirTempC:         forecast.Current.Temperature2m,
		CloudCoverPct:    forecast.Current.CloudCover,
		ObservedAt:       observedAt,
	}

	var marine marineResponse
	if err := c.getJSON(ctx, c.marineEndpoint(lat, lon), &marine); err != nil {
		if c.logger != nil {
			c.logger.Warn("marine endpoint unavailable", "error", err)
		}
		obs.Issues = append(obs.Issues, "Deniz durumu verisi alınamadı")
		return obs, nil
	}

	obs.SeaTempC = marine.Current.SeaSurfaceTemperature
	obs.WaveHeightM = marine.Current.WaveHeight
	return obs, nil
}

func (c *UpstreamClient) forecastEndpoint(lat, lon float64) string {
	q := url.Values{}
	q.Set("latitude", fmt.Sprintf("%.4f", lat))
	q.Set("longitude", fmt.Sprintf("%.4f", lon))
	q.Set("current", "temperature_2m,wind_speed_10m,wind_direction_10m,cloud_cover,surface_pressure")
	q.Set("hourly", "surface_pressure")
	q.Set("past_days", "1")
	q.Set("forecast_days", "1")
	q.Set("wind_speed_unit", "kmh")
	q.Set("timezone", "UTC")
	return c.forecastURL + "/v1/forecast?" + q.Encode()
}

func (c *UpstreamClient) marineEndpoint(lat, lon float64) string {
	q := url.Values{}
	q.Set("latitude", fmt.Sprintf("%.4f", lat))
	q.Set("longitude", fmt.Sprintf("%.4f", lon))
	q.Set("current", "sea_surface_temperature,wave_height")
	q.Set("timezone", "UTC")
	return c.marineURL + "/v1/marine?" + q.Encode()
}

func (c *UpstreamClient) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return types.NewAppError(types.ErrCodeUpstreamWeather, "building upstream request failed", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.NewAppError(types.ErrCodeUpstreamWeather,
			fmt.Sprintf("upstream returned status %d", resp.StatusCode), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return types.NewAppError(types.ErrCodeUpstreamWeather, "decoding upstream response failed", err)
	}
	return nil
}

// pressureDelta3h diffs the hourly series three hours behind the
// current reading. Falls back to zero when the series is too short or
// the current hour is missing from it.
func pressureDelta3h(f *forecastResponse) float64 {
	times := f.Hourly.Time
	pressures := f.Hourly.SurfacePressure
	if len(times) != len(pressures) || len(pressures) < 4 {
		return 0
	}

	idx := -1
	for i, ts := range times {
		if ts == f.Current.Time {
			idx = i
			break
		}
	}
	if idx < 0 {
		// Current reading sits between hourly points; use the tail.
		idx = len(pressures) - 1
	}
	if idx < 3 {
		return 0
	}
	return f.Current.SurfacePressure - pressures[idx-3]
}
