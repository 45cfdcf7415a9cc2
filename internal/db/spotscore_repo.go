package db

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"

	"fishcast/internal/types"
)

// SpotScoreRepository archives per-spot evaluations, one row per run
// date and spot. The score document is stored as JSONB so the detail
// endpoint can serve it back without recomputation.
type SpotScoreRepository struct {
	db DBTX
}

// NewSpotScoreRepository creates a repository backed by the given
// connection (pool or transaction).
func NewSpotScoreRepository(db DBTX) *SpotScoreRepository {
	return &SpotScoreRepository{db: db}
}

// UpsertBatch stores all spot scores of one run. Callers wanting
// atomicity pass a pgx.Tx as the repository's DBTX.
func (r *SpotScoreRepository) UpsertBatch(ctx context.Context, date string, scores []types.SpotScore) error {
	for i := range scores {
		score := &scores[i]
		payload, err := json.Marshal(score)
		if err != nil {
			return types.NewAppError(types.ErrCodeInternalUnexpected, "failed to marshal spot score", err)
		}

		_, err = r.db.Exec(ctx,
			`INSERT INTO spot_scores (run_date, spot_id, region, overall_score, no_go, document, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, NOW())
			 ON CONFLICT (run_date, spot_id) DO UPDATE
			   SET region = EXCLUDED.region,
			       overall_score = EXCLUDED.overall_score,
			       no_go = EXCLUDED.no_go,
			       document = EXCLUDED.document,
			       updated_at = NOW()`,
			date,
			score.SpotID,
			string(score.Region),
			score.OverallScore,
			score.NoGo,
			payload,
		)
		if err != nil {
			return types.NewAppError(types.ErrCodeInternalDB, "failed to archive spot score "+score.SpotID, err)
		}
	}
	return nil
}

// GetBySpot returns the archived evaluation of one spot for a date.
func (r *SpotScoreRepository) GetBySpot(ctx context.Context, date, spotID string) (*types.SpotScore, error) {
	var payload []byte
	err := r.db.QueryRow(ctx,
		`SELECT document FROM spot_scores WHERE run_date = $1 AND spot_id = $2`,
		date, spotID,
	).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NewAppError(types.ErrCodeNotFoundDecision,
				"no archived score for spot "+spotID+" on "+date, err)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to read spot score", err)
	}

	var score types.SpotScore
	if err := json.Unmarshal(payload, &score); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "archived spot score is corrupt", err)
	}
	return &score, nil
}

// ListByDate returns all archived spot scores for a date in stable
// spot-id order.
func (r *SpotScoreRepository) ListByDate(ctx context.Context, date string) ([]types.SpotScore, error) {
	rows, err := r.db.Query(ctx,
		`SELECT document FROM spot_scores WHERE run_date = $1 ORDER BY spot_id`,
		date,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list spot scores", err)
	}
	defer rows.Close()

	var out []types.SpotScore
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan spot score", err)
		}
		var score types.SpotScore
		if err := json.Unmarshal(payload, &score); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "archived spot score is corrupt", err)
		}
		out = append(out, score)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to iterate spot scores", err)
	}
	return out, nil
}

// DeleteBefore removes at most batchSize spot-score rows older than
// the cutoff date and reports how many went away.
func (r *SpotScoreRepository) DeleteBefore(ctx context.Context, cutoff string, batchSize int) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM spot_scores
		 WHERE (run_date, spot_id) IN (
		   SELECT run_date, spot_id FROM spot_scores
		   WHERE run_date < $1
		   ORDER BY run_date, spot_id
		   LIMIT $2
		 )`,
		cutoff, batchSize,
	)
	if err != nil {
		return 0, types.NewAppError(types.ErrCodeInternalDB, "failed to prune spot scores", err)
	}
	return tag.RowsAffected(), nil
}
