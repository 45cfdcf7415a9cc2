package scheduler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"fishcast/internal/archive"
	"fishcast/internal/telemetry"
	"fishcast/internal/types"
)

// DecisionRetention is how long archived decision documents are kept
// before the maintenance job exports and prunes them.
const DecisionRetention = 365 * 24 * time.Hour

// SpotScoreRetention is the shorter window for per-spot rows, which
// exist only to serve recent score lookups.
const SpotScoreRetention = 90 * 24 * time.Hour

// PruneBatchSize is the fixed batch size for export and delete cycles.
// Fixed batches keep a single invocation inside Lambda timeouts.
const PruneBatchSize = 500

// DecisionPruneDB is the decision-table surface the maintenance job
// needs. Satisfied by db.DecisionRepository.
type DecisionPruneDB interface {
	ListBefore(ctx context.Context, cutoff string, limit int) ([]json.RawMessage, error)
	DeleteBefore(ctx context.Context, cutoff string, batchSize int) (int64, error)
}

// SpotScorePruneDB is the spot-score-table surface. Satisfied by
// db.SpotScoreRepository.
type SpotScorePruneDB interface {
	DeleteBefore(ctx context.Context, cutoff string, batchSize int) (int64, error)
}

// ArchiveUploader stores one compressed export object in cold storage.
// May be nil, in which case pruning proceeds without export.
type ArchiveUploader interface {
	UploadArchive(ctx context.Context, key string, data []byte) error
}

// PruneResult reports one maintenance run.
type PruneResult struct {
	Exported int
	Deleted  int64
}

// MaintenanceService prunes archived decisions and spot scores past
// their retention windows. Decision documents are exported as zstd
// NDJSON before deletion; spot scores are derived data and are simply
// dropped.
type MaintenanceService struct {
	decisions DecisionPruneDB
	scores    SpotScorePruneDB
	uploader  ArchiveUploader
	metrics   telemetry.MetricPublisher
	logger    *slog.Logger
}

// NewMaintenanceService creates the service. uploader may be nil when
// cold-storage export is not configured.
func NewMaintenanceService(decisions DecisionPruneDB, scores SpotScorePruneDB, uploader ArchiveUploader, metrics telemetry.MetricPublisher, logger *slog.Logger) *MaintenanceService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = telemetry.NoopPublisher{}
	}
	return &MaintenanceService{
		decisions: decisions,
		scores:    scores,
		uploader:  uploader,
		metrics:   metrics,
		logger:    logger,
	}
}

// PruneDecisions exports then deletes decision documents older than
// the retention window, in fixed-size batches until none remain.
// ListBefore and DeleteBefore both walk oldest-first with the same
// batch size, so each exported batch is exactly the batch deleted.
func (m *MaintenanceService) PruneDecisions(ctx context.Context, now time.Time, retention time.Duration) (PruneResult, error) {
	cutoff := cutoffDate(now, retention)
	var result PruneResult

	for {
		rows, err := m.decisions.ListBefore(ctx, cutoff, PruneBatchSize)
		if err != nil {
			m.metrics.Count(ctx, types.MetricArchiveFailure, 1)
			return result, fmt.Errorf("scheduler: listing expiring decisions: %w", err)
		}
		if len(rows) == 0 {
			break
		}

		if m.uploader != nil {
			key := exportKey(now, result.Exported)
			if err := m.exportBatch(ctx, key, rows); err != nil {
				m.metrics.Count(ctx, types.MetricArchiveFailure, 1)
				return result, err
			}
			result.Exported += len(rows)
			m.logger.InfoContext(ctx, "decision batch exported",
				"key", key,
				"rows", len(rows),
			)
		}

		deleted, err := m.decisions.DeleteBefore(ctx, cutoff, PruneBatchSize)
		if err != nil {
			m.metrics.Count(ctx, types.MetricArchiveFailure, 1)
			return result, fmt.Errorf("scheduler: pruning decisions: %w", err)
		}
		result.Deleted += deleted

		if deleted < PruneBatchSize {
			break
		}
	}

	m.logger.InfoContext(ctx, "decision prune complete",
		"cutoff", cutoff,
		"exported", result.Exported,
		"deleted", result.Deleted,
	)
	return result, nil
}

// PruneSpotScores deletes per-spot rows older than the retention
// window in fixed-size batches. No export: the rows are recomputable
// from the decision documents.
func (m *MaintenanceService) PruneSpotScores(ctx context.Context, now time.Time, retention time.Duration) (PruneResult, error) {
	cutoff := cutoffDate(now, retention)
	var result PruneResult

	for {
		deleted, err := m.scores.DeleteBefore(ctx, cutoff, PruneBatchSize)
		if err != nil {
			m.metrics.Count(ctx, types.MetricArchiveFailure, 1)
			return result, fmt.Errorf("scheduler: pruning spot scores: %w", err)
		}
		result.Deleted += deleted
		if deleted < PruneBatchSize {
			break
		}
	}

	m.logger.InfoContext(ctx, "spot score prune complete",
		"cutoff", cutoff,
		"deleted", result.Deleted,
	)
	return result, nil
}

func (m *MaintenanceService) exportBatch(ctx context.Context, key string, rows []json.RawMessage) error {
	var buf bytes.Buffer
	if _, err := archive.Export(&buf, rows); err != nil {
		return fmt.Errorf("scheduler: exporting decision batch: %w", err)
	}
	if err := m.uploader.UploadArchive(ctx, key, buf.Bytes()); err != nil {
		return fmt.Errorf("scheduler: uploading %s: %w", key, err)
	}
	return nil
}

func cutoffDate(now time.Time, retention time.Duration) string {
	return now.UTC().Add(-retention).Format("2006-01-02")
}

func exportKey(now time.Time, offset int) string {
	return fmt.Sprintf("decisions/%d/%02d/batch_%d_%d.ndjson.zst",
		now.Year(), now.Month(), now.UnixNano(), offset)
}
