package db

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"fishcast/internal/types"
)

// DecisionSummary is one row of the recent-decisions listing.
type DecisionSummary struct {
	Date        string            `json:"date"`
	RunID       string            `json:"run_id"`
	DataQuality types.DataQuality `json:"data_quality"`
	NoGo        bool              `json:"no_go"`
	GeneratedAt time.Time         `json:"generated_at"`
}

// DecisionRepository archives one decision document per run date in
// the decisions table. The full document is stored as JSONB; the
// columns beside it exist for listing and retention queries only.
type DecisionRepository struct {
	db DBTX
}

// NewDecisionRepository creates a repository backed by the given
// connection (pool or transaction).
func NewDecisionRepository(db DBTX) *DecisionRepository {
	return &DecisionRepository{db: db}
}

// Upsert stores the document under its date, replacing any earlier run
// for the same day. encoding/json sorts map keys, so re-marshaling an
// unchanged document is byte-stable.
func (r *DecisionRepository) Upsert(ctx context.Context, doc *types.DecisionDocument) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalUnexpected, "failed to marshal decision document", err)
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO decisions (run_date, run_id, ruleset_version, data_quality, no_go, generated_at, document, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		 ON CONFLICT (run_date) DO UPDATE
		   SET run_id = EXCLUDED.run_id,
		       ruleset_version = EXCLUDED.ruleset_version,
		       data_quality = EXCLUDED.data_quality,
		       no_go = EXCLUDED.no_go,
		       generated_at = EXCLUDED.generated_at,
		       document = EXCLUDED.document,
		       updated_at = NOW()`,
		doc.Date,
		doc.Meta.RunID,
		doc.Meta.RulesetVersion,
		string(doc.DaySummary.DataQuality),
		doc.NoGo.Active,
		doc.Meta.GeneratedAt,
		payload,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to archive decision document", err)
	}
	return nil
}

// GetByDate returns the archived document for a YYYY-MM-DD date.
func (r *DecisionRepository) GetByDate(ctx context.Context, date string) (*types.DecisionDocument, error) {
	var payload []byte
	err := r.db.QueryRow(ctx,
		`SELECT document FROM decisions WHERE run_date = $1`,
		date,
	).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NewAppError(types.ErrCodeNotFoundDecision,
				"no archived decision for date "+date, err)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to read decision document", err)
	}

	var doc types.DecisionDocument
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "archived decision document is corrupt", err)
	}
	return &doc, nil
}

// ListRecent returns summaries of the newest documents, newest first.
func (r *DecisionRepository) ListRecent(ctx context.Context, limit int) ([]DecisionSummary, error) {
	rows, err := r.db.Query(ctx,
		`SELECT run_date::text, run_id, data_quality, no_go, generated_at
		 FROM decisions
		 ORDER BY run_date DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list decisions", err)
	}
	defer rows.Close()

	var out []DecisionSummary
	for rows.Next() {
		var s DecisionSummary
		var quality string
		if err := rows.Scan(&s.Date, &s.RunID, &quality, &s.NoGo, &s.GeneratedAt); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan decision summary", err)
		}
		s.DataQuality = types.DataQuality(quality)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to iterate decision summaries", err)
	}
	return out, nil
}

// ListBefore returns raw archived documents older than the cutoff date,
// oldest first, capped at limit. Used by the maintenance export step;
// the stored JSON is passed through untouched.
func (r *DecisionRepository) ListBefore(ctx context.Context, cutoff string, limit int) ([]json.RawMessage, error) {
	rows, err := r.db.Query(ctx,
		`SELECT document FROM decisions
		 WHERE run_date < $1
		 ORDER BY run_date
		 LIMIT $2`,
		cutoff, limit,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list expiring decisions", err)
	}
	defer rows.Close()

	var out []json.RawMessage
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan expiring decision", err)
		}
		out = append(out, json.RawMessage(payload))
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to iterate expiring decisions", err)
	}
	return out, nil
}

// DeleteBefore removes at most batchSize documents older than the
// cutoff date and reports how many went away. The maintenance job
// calls this repeatedly until it returns zero.
func (r *DecisionRepository) DeleteBefore(ctx context.Context, cutoff string, batchSize int) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM decisions
		 WHERE run_date IN (
		   SELECT run_date FROM decisions
		   WHERE run_date < $1
		   ORDER BY run_date
		   LIMIT $2
		 )`,
		cutoff, batchSize,
	)
	if err != nil {
		return 0, types.NewAppError(types.ErrCodeInternalDB, "failed to prune decisions", err)
	}
	return tag.RowsAffected(), nil
}
