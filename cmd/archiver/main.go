// Package main is the entrypoint for the Archiver Lambda function.
//
// EventBridge rules send MaintenancePayload events naming a task, and the
// handler routes execution to the matching scheduler service method. The
// two retention tasks share one Lambda to keep the low-frequency
// maintenance footprint small.
//
// Decision documents are exported to S3 as zstd-compressed NDJSON before
// deletion; spot score rows are derived data and are pruned without
// export.
package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"fishcast/internal/config"
	"fishcast/internal/db"
	"fishcast/internal/scheduler"
	"fishcast/internal/telemetry"
)

// MaintenanceRunner is the subset of scheduler.MaintenanceService the
// handler calls.
type MaintenanceRunner interface {
	PruneDecisions(ctx context.Context, now time.Time, retention time.Duration) (scheduler.PruneResult, error)
	PruneSpotScores(ctx context.Context, now time.Time, retention time.Duration) (scheduler.PruneResult, error)
}

// handler routes one maintenance payload to its task.
type handler struct {
	service MaintenanceRunner
	logger  *slog.Logger
	clock   func() time.Time
}

// Handle executes one maintenance task. A pinned ReferenceTime overrides
// the clock so manual invocations replay deterministically.
func (h *handler) Handle(ctx context.Context, payload scheduler.MaintenancePayload) error {
	now := h.clock()
	if payload.ReferenceTime != nil {
		now = *payload.ReferenceTime
	}

	var (
		result scheduler.PruneResult
		err    error
	)
	switch payload.Task {
	case scheduler.TaskPruneDecisions:
		result, err = h.service.PruneDecisions(ctx, now, scheduler.DecisionRetention)
	case scheduler.TaskPruneSpotScores:
		result, err = h.service.PruneSpotScores(ctx, now, scheduler.SpotScoreRetention)
	default:
		return fmt.Errorf("unknown maintenance task %q", payload.Task)
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "maintenance task failed",
			"task", string(payload.Task),
			"error", err,
		)
		return err
	}

	h.logger.InfoContext(ctx, "maintenance task complete",
		"task", string(payload.Task),
		"exported", result.Exported,
		"deleted", result.Deleted,
	)
	return nil
}

// s3API is the subset of the S3 SDK client the uploader uses.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// s3Uploader implements scheduler.ArchiveUploader against one bucket.
type s3Uploader struct {
	client s3API
	bucket string
}

func (u *s3Uploader) UploadArchive(ctx context.Context, key string, data []byte) error {
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/zstd"),
	})
	if err != nil {
		return fmt.Errorf("uploading s3://%s/%s: %w", u.bucket, key, err)
	}
	return nil
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	ctx := context.Background()

	svc, err := buildService(ctx, logger)
	if err != nil {
		logger.Error("archiver cold start failed", "error", err)
		os.Exit(1)
	}

	h := &handler{service: svc, logger: logger, clock: time.Now}
	lambda.Start(h.Handle)
}

func buildService(ctx context.Context, logger *slog.Logger) (*scheduler.MaintenanceService, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required for the archiver")
	}

	pool, err := db.NewPool(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS configuration: %w", err)
	}
	endpoint := cfg.AWS.EndpointURL
	cwClient := cloudwatch.NewFromConfig(awsCfg, func(o *cloudwatch.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	// No bucket means prune without export.
	var uploader scheduler.ArchiveUploader
	if cfg.AWS.ArchiveBucket != "" {
		s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			if endpoint != "" {
				o.BaseEndpoint = aws.String(endpoint)
				o.UsePathStyle = true
			}
		})
		uploader = &s3Uploader{client: s3Client, bucket: cfg.AWS.ArchiveBucket}
	} else {
		logger.Warn("ARCHIVE_BUCKET not set, pruning without cold-storage export")
	}

	logger.Info("archiver cold start complete",
		"environment", cfg.Environment,
		"archive_bucket", cfg.AWS.ArchiveBucket,
	)

	return scheduler.NewMaintenanceService(
		db.NewDecisionRepository(pool),
		db.NewSpotScoreRepository(pool),
		uploader,
		telemetry.NewCloudWatchPublisher(cwClient, logger),
		logger,
	), nil
}
