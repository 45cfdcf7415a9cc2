// Package main is the entrypoint for the Score Worker Lambda function.
//
// It consumes refresh messages from the SQS queue and executes one
// decision run per message, archiving the result. Partial batch failures
// are reported via BatchItemFailures so SQS redelivers only the failed
// messages.
//
// This file handles dependency wiring (cold start) and delegates the run
// itself to the internal/decision package.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"

	"fishcast/internal/catalog"
	"fishcast/internal/config"
	"fishcast/internal/db"
	"fishcast/internal/decision"
	"fishcast/internal/reports"
	"fishcast/internal/solunar"
	"fishcast/internal/telemetry"
	"fishcast/internal/types"
	"fishcast/internal/weather"
)

// ScoreService is the subset of decision.Service the handler calls.
type ScoreService interface {
	Run(ctx context.Context, opts decision.RunOptions) (*decision.RunResult, error)
}

// handler processes one SQS batch per invocation.
type handler struct {
	service ScoreService
	logger  *slog.Logger
}

// Handle processes each record independently. A malformed body is dropped
// (redelivery cannot fix it); a failed run is reported as a batch item
// failure so SQS retries just that message.
func (h *handler) Handle(ctx context.Context, event events.SQSEvent) (events.SQSEventResponse, error) {
	var resp events.SQSEventResponse

	for _, record := range event.Records {
		var msg types.RefreshMessage
		if err := json.Unmarshal([]byte(record.Body), &msg); err != nil {
			h.logger.ErrorContext(ctx, "dropping malformed refresh message",
				"message_id", record.MessageId,
				"error", err,
			)
			continue
		}

		result, err := h.service.Run(ctx, decision.RunOptions{
			Region:     msg.Region,
			TraceLevel: msg.TraceLevel,
			Archive:    true,
		})
		if err != nil {
			h.logger.ErrorContext(ctx, "decision run failed",
				"message_id", record.MessageId,
				"batch_id", msg.BatchID,
				"run_date", msg.RunDate,
				"region", string(msg.Region),
				"error", err,
			)
			resp.BatchItemFailures = append(resp.BatchItemFailures, events.SQSBatchItemFailure{
				ItemIdentifier: record.MessageId,
			})
			continue
		}

		h.logger.InfoContext(ctx, "refresh message processed",
			"batch_id", msg.BatchID,
			"run_date", msg.RunDate,
			"region", string(msg.Region),
			"reason", msg.Reason,
			"spots", result.SpotsProcessed,
			"archive_written", result.ArchiveWritten,
			"data_quality", string(result.DataQuality),
		)
	}

	return resp, nil
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	ctx := context.Background()

	svc, err := buildService(ctx, logger)
	if err != nil {
		logger.Error("score worker cold start failed", "error", err)
		os.Exit(1)
	}

	h := &handler{service: svc, logger: logger}
	lambda.Start(h.Handle)
}

// buildService wires the full decision pipeline for archived runs.
func buildService(ctx context.Context, logger *slog.Logger) (*decision.Service, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	// The worker's entire purpose is writing the archive.
	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required for the score worker")
	}

	cat, err := catalog.Load()
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}
	sol, err := solunar.NewProvider()
	if err != nil {
		return nil, fmt.Errorf("creating solunar provider: %w", err)
	}

	var weatherProvider decision.WeatherProvider
	if cfg.Engine.OfflineMode {
		logger.Info("offline mode active, weather served from climatological fallback")
		weatherProvider = weather.Offline{}
	} else {
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
		weatherProvider = weather.NewProvider(upstream, weather.NewCache(cfg.Weather.CacheTTL, 0), logger)
	}

	pool, err := db.NewPool(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS configuration: %w", err)
	}
	cwClient := cloudwatch.NewFromConfig(awsCfg, func(o *cloudwatch.Options) {
		if cfg.AWS.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.AWS.EndpointURL)
		}
	})

	logger.Info("score worker cold start complete",
		"environment", cfg.Environment,
		"ruleset_version", cat.RulesetVersion(),
	)

	return &decision.Service{
		Catalog:        cat,
		Weather:        weatherProvider,
		Solunar:        sol,
		Reports:        reports.NewStaticProvider(nil),
		Decisions:      db.NewDecisionRepository(pool),
		Scores:         db.NewSpotScoreRepository(pool),
		Metrics:        telemetry.NewCloudWatchPublisher(cwClient, logger),
		Logger:         logger,
		Lat:            cfg.Weather.Lat,
		Lon:            cfg.Weather.Lon,
		AllowTraceFull: cfg.Engine.AllowTraceFull,
		ScoreWorkers:   cfg.Engine.ScoreWorkers,
	}, nil
}
