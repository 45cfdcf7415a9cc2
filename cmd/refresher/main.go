// Package main is the entrypoint for the Refresher Lambda function.
//
// EventBridge invokes it on the daily schedule, and operators invoke it
// manually for backfills. One invocation becomes refresh messages on the
// SQS queue; the score workers do the actual computation.
//
// This file handles dependency wiring (cold start) and delegates planning
// to the internal/scheduler package.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"fishcast/internal/config"
	"fishcast/internal/queue"
	"fishcast/internal/scheduler"
	"fishcast/internal/telemetry"
	"fishcast/internal/types"
)

// PlanEvent is the invocation payload. The zero event plans today's full
// run; every field is an override for manual invocations.
type PlanEvent struct {
	RunDate    string   `json:"run_date,omitempty"`
	Regions    []string `json:"regions,omitempty"`
	Reason     string   `json:"reason,omitempty"`
	TraceLevel string   `json:"trace_level,omitempty"`
	Limit      int      `json:"limit,omitempty"`
}

// PlanResponse reports the dispatch outcome to the invoker.
type PlanResponse struct {
	BatchID    string `json:"batch_id"`
	Dispatched int    `json:"dispatched"`
	Failed     int    `json:"failed"`
	Skipped    int    `json:"skipped"`
}

// Planner is the subset of scheduler.RefreshPlanner the handler calls.
type Planner interface {
	Plan(ctx context.Context, now time.Time, req scheduler.PlanRequest) (scheduler.PlanResult, error)
}

// newHandler builds the Lambda handler around an initialized planner.
func newHandler(planner Planner, logger *slog.Logger, clock func() time.Time) func(ctx context.Context, event PlanEvent) (PlanResponse, error) {
	return func(ctx context.Context, event PlanEvent) (PlanResponse, error) {
		regions := make([]types.RegionID, 0, len(event.Regions))
		for _, r := range event.Regions {
			regions = append(regions, types.RegionID(r))
		}

		result, err := planner.Plan(ctx, clock(), scheduler.PlanRequest{
			RunDate:    event.RunDate,
			Regions:    regions,
			Reason:     event.Reason,
			TraceLevel: types.ParseTraceLevel(event.TraceLevel),
			Limit:      event.Limit,
		})
		if err != nil {
			logger.ErrorContext(ctx, "refresh planning failed",
				"batch_id", result.BatchID,
				"error", err,
			)
			return PlanResponse{}, err
		}

		return PlanResponse{
			BatchID:    result.BatchID,
			Dispatched: result.Dispatched,
			Failed:     result.Failed,
			Skipped:    result.Skipped,
		}, nil
	}
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if cfg.AWS.RefreshQueueURL == "" {
		logger.Error("SQS_REFRESH_QUEUE is required for the refresher")
		os.Exit(1)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		logger.Error("failed to load AWS configuration", "error", err)
		os.Exit(1)
	}

	endpoint := cfg.AWS.EndpointURL
	sqsClient := sqs.NewFromConfig(awsCfg, func(o *sqs.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	cwClient := cloudwatch.NewFromConfig(awsCfg, func(o *cloudwatch.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	// Run dates are derived in the city's timezone: a 02:00 UTC tick must
	// still plan the correct local day.
	loc, err := time.LoadLocation("Europe/Istanbul")
	if err != nil {
		logger.Error("failed to load timezone", "error", err)
		os.Exit(1)
	}

	trigger := queue.NewRefreshTrigger(sqsClient, cfg.AWS.RefreshQueueURL, logger)
	metrics := telemetry.NewCloudWatchPublisher(cwClient, logger)
	planner := scheduler.NewRefreshPlanner(trigger, metrics, logger, loc)

	logger.Info("refresher cold start complete",
		"environment", cfg.Environment,
		"queue_url", cfg.AWS.RefreshQueueURL,
	)

	lambda.Start(newHandler(planner, logger, time.Now))
}
