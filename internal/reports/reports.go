// Package reports feeds the optional catch-report signal into the
// confidence estimator. Report storage and submission live outside
// this system; only the per-spot aggregate signal crosses the boundary,
// so the in-tree provider is a static table loaded from configuration.
package reports

import (
	"context"

	"fishcast/internal/types"
)

// SignalProvider is the point-of-use interface the decision service
// consumes. Implementations must be safe for concurrent use.
type SignalProvider interface {
	Signal(ctx context.Context, spotID string) (types.ReportSignal, error)
}

// StaticProvider serves a fixed per-spot signal table. An empty table
// is valid and yields the zero signal everywhere, which is the default
// deployment shape.
type StaticProvider struct {
	signals map[string]types.ReportSignal
}

var _ SignalProvider = (*StaticProvider)(nil)

// NewStaticProvider copies the given table. A nil map is allowed.
func NewStaticProvider(signals map[string]types.ReportSignal) *StaticProvider {
	copied := make(map[string]types.ReportSignal, len(signals))
	for id, sig := range signals {
		copied[id] = sig
	}
	return &StaticProvider{signals: copied}
}

// Signal returns the configured signal for a spot, or the zero signal
// when none is configured. It never fails.
func (p *StaticProvider) Signal(_ context.Context, spotID string) (types.ReportSignal, error) {
	return p.signals[spotID], nil
}
