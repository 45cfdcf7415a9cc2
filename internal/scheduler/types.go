// Package scheduler implements the scheduled jobs: refresh planning
// (one SQS message per region per day) and archive maintenance
// (export + prune of old decision documents).
package scheduler

import "time"

// TaskType identifies which maintenance task an EventBridge event
// should run. Each constant maps to one MaintenanceService method.
type TaskType string

const (
	TaskPruneDecisions  TaskType = "prune_decisions"
	TaskPruneSpotScores TaskType = "prune_spot_scores"
)

// MaintenancePayload is the JSON payload EventBridge sends to the
// archiver Lambda. ReferenceTime lets a manual invocation pin "now"
// for deterministic execution and backfill.
type MaintenancePayload struct {
	Task          TaskType   `json:"task"`
	ReferenceTime *time.Time `json:"reference_time,omitempty"`
}
