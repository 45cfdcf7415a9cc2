// Package handlers contains the HTTP handler implementations for the
// FishCast API. Handlers depend on locally-defined service interfaces so
// tests can inject mocks without pulling in the full service wiring.
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"fishcast/internal/core"
	"fishcast/internal/decision"
	"fishcast/internal/types"
)

// DecisionServiceInterface defines the service contract for the decision
// handler. Matches decision.Service but is defined locally to avoid tight
// coupling per the handler injection pattern.
type DecisionServiceInterface interface {
	Today(ctx context.Context, requested types.TraceLevel) (*types.DecisionDocument, error)
	GetByDate(ctx context.Context, date string) (*types.DecisionDocument, error)
	Run(ctx context.Context, opts decision.RunOptions) (*decision.RunResult, error)
}

// DecisionHandler maps HTTP requests to decision service methods.
type DecisionHandler struct {
	service DecisionServiceInterface
	logger  *slog.Logger
}

// NewDecisionHandler creates a new DecisionHandler with the provided dependencies.
func NewDecisionHandler(svc DecisionServiceInterface, logger *slog.Logger) *DecisionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DecisionHandler{
		service: svc,
		logger:  logger,
	}
}

// RegisterRoutes mounts the decision endpoints onto the mux.
func (h *DecisionHandler) RegisterRoutes(r chi.Router) {
	r.Get("/today", h.HandleGetToday)
	r.Get("/{date}", h.HandleGetByDate)
}

// HandleGetToday handles GET /v1/decision/today.
//
// The traceLevel query parameter selects how much rule-evaluation detail
// the document carries. An unknown value is rejected; a full trace request
// may be downgraded by the service policy guard, recorded in the document
// meta as trace_level_requested / trace_level_applied.
func (h *DecisionHandler) HandleGetToday(w http.ResponseWriter, r *http.Request) {
	requested, err := parseTraceLevelParam(r)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	doc, err := h.service.Today(r.Context(), requested)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	// Documents regenerate at most every few hours; a short private cache
	// keeps clients from hammering the read path.
	w.Header().Set("Cache-Control", "private, max-age=300")

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: doc})
}

// HandleGetByDate handles GET /v1/decision/{date}.
// The date path segment must be a calendar date in YYYY-MM-DD form.
func (h *DecisionHandler) HandleGetByDate(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	if _, err := time.Parse("2006-01-02", date); err != nil {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeValidationInvalidDate,
			"date must be in YYYY-MM-DD form",
			err,
		))
		return
	}

	doc, err := h.service.GetByDate(r.Context(), date)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	// Archived documents are immutable once the day has passed.
	w.Header().Set("Cache-Control", "private, max-age=3600")

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: doc})
}

// parseTraceLevelParam reads the optional traceLevel query parameter.
// An empty value means no trace; unknown values are rejected rather than
// silently defaulted so clients notice typos.
func parseTraceLevelParam(r *http.Request) (types.TraceLevel, error) {
	raw := r.URL.Query().Get("traceLevel")
	switch types.TraceLevel(raw) {
	case "", types.TraceNone:
		return types.TraceNone, nil
	case types.TraceMinimal:
		return types.TraceMinimal, nil
	case types.TraceFull:
		return types.TraceFull, nil
	default:
		return "", types.NewAppError(
			types.ErrCodeValidationInvalidTraceLevel,
			"traceLevel must be one of none, minimal, full",
			nil,
		)
	}
}
