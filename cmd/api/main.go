// Package main is the entry point for the FishCast API server.
//
// It loads configuration, builds the decision pipeline (catalog, weather,
// solunar, archive), wires the domain handlers onto the core chassis, and
// starts serving.
//
// In local mode (APP_ENV=local) it runs as a standard HTTP server on the
// configured port. Inside AWS Lambda it bridges API Gateway proxy events
// to the chi router via chiadapter.
//
// Graceful shutdown is handled via OS signal interception (SIGINT, SIGTERM).
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	chiadapter "github.com/awslabs/aws-lambda-go-api-proxy/chi"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fishcast/internal/api/handlers"
	"fishcast/internal/catalog"
	"fishcast/internal/config"
	"fishcast/internal/core"
	"fishcast/internal/db"
	"fishcast/internal/decision"
	"fishcast/internal/reports"
	"fishcast/internal/solunar"
	"fishcast/internal/telemetry"
	"fishcast/internal/weather"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// run encapsulates the startup lifecycle so that main() can cleanly exit on error.
func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("fishcast API starting",
		"environment", cfg.Environment,
		"version", cfg.Build.Version,
		"commit", cfg.Build.Commit,
		"port", cfg.Server.Port,
	)

	// The embedded catalog is the heart of the service; a catalog that
	// fails validation must never serve.
	cat, err := catalog.Load()
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}
	logger.Info("catalog loaded",
		"ruleset_version", cat.RulesetVersion(),
		"rules", len(cat.Rules()),
		"spots", len(cat.Spots()),
	)

	sol, err := solunar.NewProvider()
	if err != nil {
		return fmt.Errorf("creating solunar provider: %w", err)
	}

	weatherProvider, err := buildWeatherProvider(cfg, logger)
	if err != nil {
		return err
	}

	ctx := context.Background()

	metrics, err := buildMetrics(ctx, cfg, logger)
	if err != nil {
		return err
	}

	svc := &decision.Service{
		Catalog:        cat,
		Weather:        weatherProvider,
		Solunar:        sol,
		Reports:        reports.NewStaticProvider(nil),
		Metrics:        metrics,
		Logger:         logger,
		Lat:            cfg.Weather.Lat,
		Lon:            cfg.Weather.Lon,
		AllowTraceFull: cfg.Engine.AllowTraceFull,
		ScoreWorkers:   cfg.Engine.ScoreWorkers,
	}

	srv, err := core.NewServer(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	srv.Metrics = &telemetry.RequestRecorder{Publisher: metrics}
	srv.Health = core.HealthInfo{
		EngineVersion:  decision.EngineVersion,
		RulesetVersion: cat.RulesetVersion(),
		RulesCount:     len(cat.Rules()),
	}

	// The archive is optional: without DATABASE_URL every request
	// computes fresh and GET /v1/decision/{date} has no history.
	var pool *pgxpool.Pool
	if cfg.Database.URL != "" {
		pool, err = db.NewPool(ctx, cfg.Database)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		svc.Decisions = db.NewDecisionRepository(pool)
		svc.Scores = db.NewSpotScoreRepository(pool)
		srv.HealthProbes = append(srv.HealthProbes, dbProbe{pool: pool})
		srv.OnShutdown(func() error {
			pool.Close()
			return nil
		})
	} else {
		logger.Warn("DATABASE_URL not set, decision archive disabled")
	}

	decisionHandler := handlers.NewDecisionHandler(svc, logger)
	scoresHandler := handlers.NewScoresHandler(svc, logger)
	catalogHandler := handlers.NewCatalogHandler(cat, logger)
	internalHandler := handlers.NewInternalHandler(svc, srv.Validator, cfg, cat, availability(cfg, pool), logger)

	srv.V1RouteRegistrars = append(srv.V1RouteRegistrars,
		func(r chi.Router) { r.Route("/decision", decisionHandler.RegisterRoutes) },
		func(r chi.Router) { r.Route("/scores", scoresHandler.RegisterRoutes) },
		func(r chi.Router) { r.Route("/catalog", catalogHandler.RegisterRoutes) },
		func(r chi.Router) {
			r.Group(func(g chi.Router) {
				g.Use(srv.InternalAuthMiddleware)
				g.Route("/internal", internalHandler.RegisterRoutes)
			})
		},
	)

	srv.MountRoutes()

	// The metadata endpoint lives outside /v1: it describes the running
	// process, not the API contract.
	srv.Router().With(srv.InternalAuthMiddleware).Get("/_meta", internalHandler.HandleMeta)

	if isLambdaEnvironment() {
		return runLambda(srv, logger)
	}
	return runHTTPServer(srv, cfg, logger)
}

// buildWeatherProvider wires the live upstream chain, or the
// climatological fallback when offline mode is on.
func buildWeatherProvider(cfg *config.Config, logger *slog.Logger) (decision.WeatherProvider, error) {
	if cfg.Engine.OfflineMode {
		logger.Info("offline mode active, weather served from climatological fallback")
		return weather.Offline{}, nil
	}

	upstream, err := weather.NewUpstreamClient(weather.UpstreamConfig{
		ForecastBaseURL: cfg.Weather.ForecastBaseURL,
		MarineBaseURL:   cfg.Weather.MarineBaseURL,
		Timeout:         cfg.Weather.Timeout,
		UserAgent:       cfg.Weather.UserAgent,
		RetryPolicy:     weather.DefaultRetryPolicy(),
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("creating weather client: %w", err)
	}
	return weather.NewProvider(upstream, weather.NewCache(cfg.Weather.CacheTTL, 0), logger), nil
}

// buildMetrics returns a CloudWatch publisher, or the no-op publisher in
// local mode where no AWS credentials exist.
func buildMetrics(ctx context.Context, cfg *config.Config, logger *slog.Logger) (telemetry.MetricPublisher, error) {
	if cfg.Environment == "local" {
		return telemetry.NoopPublisher{}, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS configuration: %w", err)
	}
	client := cloudwatch.NewFromConfig(awsCfg, func(o *cloudwatch.Options) {
		if cfg.AWS.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.AWS.EndpointURL)
		}
	})
	return telemetry.NewCloudWatchPublisher(client, logger), nil
}

// availability reports which external data sources this process is
// wired to, for the /_meta endpoint.
func availability(cfg *config.Config, pool *pgxpool.Pool) handlers.AvailabilityFunc {
	return func() map[string]string {
		out := map[string]string{
			"weather":  "live",
			"database": "disabled",
			"queue":    "disabled",
		}
		if cfg.Engine.OfflineMode {
			out["weather"] = "offline"
		}
		if pool != nil {
			out["database"] = "configured"
		}
		if cfg.AWS.RefreshQueueURL != "" {
			out["queue"] = "configured"
		}
		return out
	}
}

// dbProbe reports archive connectivity on GET /health.
type dbProbe struct {
	pool *pgxpool.Pool
}

func (p dbProbe) Name() string { return "database" }

func (p dbProbe) Check(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// isLambdaEnvironment returns true if the process is running inside AWS Lambda.
func isLambdaEnvironment() bool {
	_, hasRuntimeAPI := os.LookupEnv("AWS_LAMBDA_RUNTIME_API")
	_, hasServerPort := os.LookupEnv("_LAMBDA_SERVER_PORT")
	return hasRuntimeAPI || hasServerPort
}

// runLambda bridges API Gateway proxy events to the chi router.
func runLambda(srv *core.Server, logger *slog.Logger) error {
	adapter := chiadapter.New(srv.Router())
	logger.Info("starting in Lambda proxy mode")
	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
	return nil
}

// runHTTPServer starts the server in standard HTTP mode with graceful shutdown.
func runHTTPServer(srv *core.Server, cfg *config.Config, logger *slog.Logger) error {
	addr := ":" + cfg.Server.Port

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)

	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-shutdown:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	logger.Info("initiating graceful shutdown")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server resource shutdown error", "error", err)
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped cleanly")
	return nil
}

// newLogger creates a structured slog.Logger configured for the given log level.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: lvl,
	})
	return slog.New(handler)
}
