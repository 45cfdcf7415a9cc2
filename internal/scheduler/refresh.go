package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"fishcast/internal/telemetry"
	"fishcast/internal/types"
)

// DefaultDispatchLimit caps how many refresh messages one planner
// invocation may send. There are three regions plus the full run, so
// the limit only matters for misconfigured backfills.
const DefaultDispatchLimit = 8

// Dispatcher sends one refresh message. Satisfied by
// queue.RefreshTrigger.
type Dispatcher interface {
	Dispatch(ctx context.Context, msg types.RefreshMessage) error
}

// PlanRequest describes one planner invocation.
type PlanRequest struct {
	// RunDate in YYYY-MM-DD form. Empty means today in Istanbul time.
	RunDate string

	// Regions to dispatch for. Empty plans a single full run covering
	// all regions.
	Regions []types.RegionID

	// Reason is carried into the messages ("scheduled", "manual",
	// "backfill").
	Reason string

	// TraceLevel requested for the archived documents.
	TraceLevel types.TraceLevel

	// Limit overrides DefaultDispatchLimit when positive.
	Limit int
}

// PlanResult reports what one invocation dispatched.
type PlanResult struct {
	BatchID    string
	Dispatched int
	Failed     int
	Skipped    int
}

// RefreshPlanner turns a schedule tick into refresh messages. The
// planner itself computes nothing; the score workers do the work.
type RefreshPlanner struct {
	dispatcher Dispatcher
	metrics    telemetry.MetricPublisher
	logger     *slog.Logger
	loc        *time.Location
}

// NewRefreshPlanner creates a planner. loc is the timezone used to
// derive the run date when the request leaves it empty.
func NewRefreshPlanner(dispatcher Dispatcher, metrics telemetry.MetricPublisher, logger *slog.Logger, loc *time.Location) *RefreshPlanner {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = telemetry.NoopPublisher{}
	}
	return &RefreshPlanner{
		dispatcher: dispatcher,
		metrics:    metrics,
		logger:     logger,
		loc:        loc,
	}
}

// Plan dispatches one message per requested region, or a single
// full-run message when no regions are given. Individual dispatch
// failures are logged and counted; the batch keeps going. Plan returns
// an error only when nothing could be dispatched at all.
func (p *RefreshPlanner) Plan(ctx context.Context, now time.Time, req PlanRequest) (PlanResult, error) {
	runDate := req.RunDate
	if runDate == "" {
		runDate = now.In(p.loc).Format("2006-01-02")
	}
	reason := req.Reason
	if reason == "" {
		reason = "scheduled"
	}
	limit := req.Limit
	if limit <= 0 {
		limit = DefaultDispatchLimit
	}

	result := PlanResult{BatchID: uuid.NewString()}

	messages := p.buildMessages(result.BatchID, runDate, reason, req)
	if len(messages) > limit {
		result.Skipped = len(messages) - limit
		p.logger.WarnContext(ctx, "dispatch limit reached, truncating plan",
			"batch_id", result.BatchID,
			"planned", len(messages),
			"limit", limit,
		)
		messages = messages[:limit]
	}

	var lastErr error
	for _, msg := range messages {
		if err := p.dispatcher.Dispatch(ctx, msg); err != nil {
			p.logger.ErrorContext(ctx, "failed to dispatch refresh message",
				"batch_id", result.BatchID,
				"run_date", msg.RunDate,
				"region", string(msg.Region),
				"error", err,
			)
			result.Failed++
			lastErr = err
			continue
		}
		result.Dispatched++
		p.metrics.Count(ctx, types.MetricRefreshDispatched, 1,
			telemetry.Dim(types.DimReason, reason))
	}

	p.logger.InfoContext(ctx, "refresh plan complete",
		"batch_id", result.BatchID,
		"run_date", runDate,
		"reason", reason,
		"dispatched", result.Dispatched,
		"failed", result.Failed,
		"skipped", result.Skipped,
	)

	if result.Dispatched == 0 && lastErr != nil {
		return result, fmt.Errorf("scheduler: all %d refresh dispatches failed: %w", result.Failed, lastErr)
	}
	return result, nil
}

func (p *RefreshPlanner) buildMessages(batchID, runDate, reason string, req PlanRequest) []types.RefreshMessage {
	base := types.RefreshMessage{
		BatchID:    batchID,
		RunDate:    runDate,
		Reason:     reason,
		TraceLevel: req.TraceLevel,
	}

	if len(req.Regions) == 0 {
		return []types.RefreshMessage{base}
	}

	out := make([]types.RefreshMessage, 0, len(req.Regions))
	for _, region := range req.Regions {
		msg := base
		msg.Region = region
		out = append(out, msg)
	}
	return out
}
