package telemetry

import (
	"context"
	"time"

	"fishcast/internal/types"
)

// RequestRecorder adapts a MetricPublisher to the per-request hook the
// HTTP chassis calls after each response. One APILatency datum per
// request, dimensioned by endpoint and status class.
type RequestRecorder struct {
	Publisher MetricPublisher
}

// RecordRequest publishes the request latency. The endpoint dimension
// carries the method so GET and POST on the same path alarm separately.
func (r *RequestRecorder) RecordRequest(method, endpoint, status string, duration time.Duration) {
	r.Publisher.Duration(context.Background(), types.MetricAPILatency, duration,
		Dim(types.DimEndpoint, method+" "+endpoint),
		Dim(types.DimStatus, status),
	)
}
