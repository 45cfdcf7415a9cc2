package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"fishcast/internal/catalog"
	"fishcast/internal/config"
	"fishcast/internal/core"
	"fishcast/internal/decision"
	"fishcast/internal/types"
)

// AvailabilityFunc reports which external data sources are reachable or
// configured ("live", "configured", "disabled"). Supplied by the entry
// point so the handler does not need to know about wiring.
type AvailabilityFunc func() map[string]string

// InternalHandler serves the operator-facing endpoints: the on-demand
// refresh trigger and the runtime metadata view. Both sit behind the
// internal-secret middleware.
type InternalHandler struct {
	service      DecisionServiceInterface
	validator    *core.Validator
	cfg          *config.Config
	catalog      *catalog.Catalog
	availability AvailabilityFunc
	logger       *slog.Logger
}

// NewInternalHandler creates a new InternalHandler with the provided dependencies.
func NewInternalHandler(
	svc DecisionServiceInterface,
	val *core.Validator,
	cfg *config.Config,
	cat *catalog.Catalog,
	availability AvailabilityFunc,
	logger *slog.Logger,
) *InternalHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &InternalHandler{
		service:      svc,
		validator:    val,
		cfg:          cfg,
		catalog:      cat,
		availability: availability,
		logger:       logger,
	}
}

// RegisterRoutes mounts the internal endpoints onto the mux.
// The caller is responsible for wrapping the group in InternalAuthMiddleware.
func (h *InternalHandler) RegisterRoutes(r chi.Router) {
	r.Post("/refresh", h.HandleRefresh)
}

// RefreshRequest is the optional body of POST /v1/internal/refresh.
type RefreshRequest struct {
	Region     string `json:"region" validate:"omitempty,region"`
	TraceLevel string `json:"trace_level" validate:"omitempty,tracelevel"`
}

// RefreshResponse reports the outcome of an on-demand run.
type RefreshResponse struct {
	SpotsProcessed int               `json:"spots_processed"`
	ArchiveWritten bool              `json:"archive_written"`
	DataQuality    types.DataQuality `json:"data_quality"`
	DataIssues     []string          `json:"data_issues,omitempty"`
}

// HandleRefresh handles POST /v1/internal/refresh.
// Runs the full pipeline immediately and archives the result. The body is
// optional; when present it may restrict the run to one region or request
// a trace level.
func (h *InternalHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if r.ContentLength != 0 {
		if err := core.DecodeJSON(w, r, &req); err != nil {
			core.Error(w, r, err)
			return
		}
		if err := h.validator.ValidateStruct(req); err != nil {
			core.Error(w, r, err)
			return
		}
	}

	result, err := h.service.Run(r.Context(), decision.RunOptions{
		Region:     types.RegionID(req.Region),
		TraceLevel: types.ParseTraceLevel(req.TraceLevel),
		Archive:    true,
	})
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: RefreshResponse{
		SpotsProcessed: result.SpotsProcessed,
		ArchiveWritten: result.ArchiveWritten,
		DataQuality:    result.DataQuality,
		DataIssues:     result.DataIssues,
	}})
}

// MetaResponse is the runtime metadata served by GET /_meta.
type MetaResponse struct {
	OfflineMode        bool              `json:"offline_mode"`
	AllowTraceFull     bool              `json:"allow_trace_full"`
	RulesetVersion     string            `json:"ruleset_version"`
	RulesetFingerprint string            `json:"ruleset_fingerprint"`
	RulesCount         int               `json:"rules_count"`
	ActiveRulesCount   int               `json:"active_rules_count"`
	DisabledRuleIDs    []string          `json:"disabled_rule_ids"`
	BuildSha           string            `json:"build_sha"`
	DataSources        map[string]string `json:"data_source_availability"`
}

// HandleMeta handles GET /_meta (top level, internal-auth).
// Exposes the engine policy switches, ruleset identity, and data source
// availability for operational inspection.
func (h *InternalHandler) HandleMeta(w http.ResponseWriter, r *http.Request) {
	disabled := h.catalog.DisabledRuleIDs()
	total := len(h.catalog.Rules())

	var sources map[string]string
	if h.availability != nil {
		sources = h.availability()
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: MetaResponse{
		OfflineMode:        h.cfg.Engine.OfflineMode,
		AllowTraceFull:     h.cfg.Engine.AllowTraceFull,
		RulesetVersion:     h.catalog.RulesetVersion(),
		RulesetFingerprint: h.catalog.Fingerprint(),
		RulesCount:         total,
		ActiveRulesCount:   total - len(disabled),
		DisabledRuleIDs:    disabled,
		BuildSha:           h.cfg.Build.Commit,
		DataSources:        sources,
	}})
}
