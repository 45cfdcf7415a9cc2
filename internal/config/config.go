// Package config defines the global configuration structure for the
// FishCast services. Configuration is loaded once at process
// initialization (Lambda cold start or server boot) and is immutable
// thereafter, following 12-Factor principles.
//
// Values are resolved via a priority chain:
//
//	OS Environment (highest) -> Dotenv File -> Struct Defaults
//
// Any missing required value or invalid format fails the process
// immediately on startup.
package config

import (
	"time"

	"fishcast/internal/types"
)

// SecretString is an alias for types.SecretString, the redacted secret
// type used throughout configuration to prevent accidental logging of
// sensitive values.
type SecretString = types.SecretString

// Config is the top-level configuration struct. It is populated once
// during process initialization and never modified. Sub-components
// receive only the specific config subsets they require.
type Config struct {
	// System Metadata
	Environment string `envconfig:"APP_ENV" validate:"required,oneof=local dev staging prod"`
	Service     string `envconfig:"SERVICE_NAME" default:"fishcast"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	// Domain Configurations
	Server   ServerConfig
	Database DatabaseConfig
	AWS      AWSConfig
	Weather  WeatherConfig
	Engine   EngineConfig
	Security SecurityConfig

	// Build Metadata (injected via ldflags, not env)
	Build BuildInfo
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port           string        `envconfig:"PORT" default:"8080"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"15s"`
}

// DatabaseConfig holds database connection and pool tuning parameters.
// URL may be empty: offline deployments (CLI, dev) run without the
// decision archive, and the wiring layer enforces presence where a
// database is actually required.
type DatabaseConfig struct {
	URL SecretString `envconfig:"DATABASE_URL"`

	// Tuning Parameters
	MaxConns          int           `envconfig:"DB_MAX_CONNS" default:"10"`
	MinConns          int           `envconfig:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime   time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"30m"`
	AcquireTimeout    time.Duration `envconfig:"DB_ACQUIRE_TIMEOUT" default:"2s"`
	HealthCheckPeriod time.Duration `envconfig:"DB_HEALTH_CHECK_PERIOD" default:"1m"`
}

// AWSConfig holds AWS resource identifiers and regional configuration.
type AWSConfig struct {
	Region string `envconfig:"AWS_REGION" default:"eu-central-1"`

	// RefreshQueueURL is the SQS queue the planner dispatches to and
	// the score worker consumes from.
	RefreshQueueURL string `envconfig:"SQS_REFRESH_QUEUE" validate:"omitempty,url"`

	// ArchiveBucket receives exported decision history before pruning.
	// Empty disables the export step.
	ArchiveBucket string `envconfig:"ARCHIVE_BUCKET"`

	// LocalStack Support (empty in prod)
	EndpointURL string `envconfig:"AWS_ENDPOINT_URL"`
}

// WeatherConfig holds the upstream weather provider settings.
type WeatherConfig struct {
	ForecastBaseURL string        `envconfig:"WEATHER_FORECAST_URL" default:"https://api.open-meteo.com" validate:"url"`
	MarineBaseURL   string        `envconfig:"WEATHER_MARINE_URL" default:"https://marine-api.open-meteo.com" validate:"url"`
	Timeout         time.Duration `envconfig:"WEATHER_TIMEOUT" default:"10s"`
	UserAgent       string        `envconfig:"WEATHER_USER_AGENT" default:"FishCast/1.0"`
	CacheTTL        time.Duration `envconfig:"WEATHER_CACHE_TTL" default:"30m"`

	// Evaluation coordinates; defaults sit mid-strait.
	Lat float64 `envconfig:"WEATHER_LAT" default:"41.01"`
	Lon float64 `envconfig:"WEATHER_LON" default:"28.97"`
}

// EngineConfig holds decision pipeline policy switches.
type EngineConfig struct {
	// OfflineMode skips live weather entirely and scores against the
	// climatological fallback.
	OfflineMode bool `envconfig:"OFFLINE_MODE" default:"false"`

	// AllowTraceFull permits full evaluation traces in served
	// documents; off by default because full traces are large.
	AllowTraceFull bool `envconfig:"ALLOW_TRACE_FULL" default:"false"`

	// ScoreWorkers bounds parallel per-spot scoring.
	ScoreWorkers int `envconfig:"SCORE_WORKERS" default:"4"`
}

// SecurityConfig holds internal access and CORS settings.
type SecurityConfig struct {
	// InternalSecret guards the internal endpoints. Empty allows
	// access with a warning log, for development only.
	InternalSecret SecretString `envconfig:"INTERNAL_API_SECRET"`

	CorsAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
}

// BuildInfo holds build-time metadata injected via ldflags.
// These values are NOT populated from environment variables.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// ConfigErrorType categorizes configuration loading failures.
type ConfigErrorType string

const (
	// ErrValidation indicates the configuration failed struct validation rules.
	ErrValidation ConfigErrorType = "VALIDATION_FAILED"
	// ErrParsing indicates a failure when parsing environment variable values
	// into their target types.
	ErrParsing ConfigErrorType = "PARSING_FAILED"
)
