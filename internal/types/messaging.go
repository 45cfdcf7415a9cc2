package types

// RefreshMessage is the SQS payload sent by the refresh planner to the
// score workers. One message triggers one decision run for the given
// date and optional region filter. JSON tags use snake_case so the
// payload stays readable in queue tooling.
type RefreshMessage struct {
	// BatchID groups messages dispatched by one planner invocation.
	BatchID string `json:"batch_id"`

	// RunDate is the decision date in YYYY-MM-DD form.
	RunDate string `json:"run_date"`

	// Region limits the run to one region; empty means all regions.
	Region RegionID `json:"region,omitempty"`

	// Reason records why the run was requested ("scheduled",
	// "manual", "backfill").
	Reason string `json:"reason"`

	// TraceLevel for the archived document. Workers treat unknown
	// values as none.
	TraceLevel TraceLevel `json:"trace_level,omitempty"`

	// RetryCount is carried across the SQS publish cycle and
	// incremented on transient failures before re-publishing.
	RetryCount int `json:"retry_count"`
}
