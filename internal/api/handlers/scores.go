package handlers

import (
	"log/slog"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"fishcast/internal/core"
	"fishcast/internal/types"
)

// topSpeciesCount is how many species appear in the per-spot summary list.
const topSpeciesCount = 3

// ScoresHandler serves the per-spot score views derived from the current
// decision document.
type ScoresHandler struct {
	service DecisionServiceInterface
	logger  *slog.Logger
}

// NewScoresHandler creates a new ScoresHandler with the provided dependencies.
func NewScoresHandler(svc DecisionServiceInterface, logger *slog.Logger) *ScoresHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScoresHandler{
		service: svc,
		logger:  logger,
	}
}

// RegisterRoutes mounts the score endpoints onto the mux.
func (h *ScoresHandler) RegisterRoutes(r chi.Router) {
	r.Get("/today", h.HandleListToday)
	r.Get("/spots/{spotID}", h.HandleGetSpot)
}

// SpeciesScoreEntry is one species result keyed by ID, rendered as an
// array element so clients get a stable, score-sorted order.
type SpeciesScoreEntry struct {
	SpeciesID types.SpeciesID `json:"species_id"`
	types.SpeciesScoreResult
}

// SpotScoreSummary is the compact per-spot row in the scores listing.
type SpotScoreSummary struct {
	SpotID       string              `json:"spot_id"`
	SpotName     string              `json:"spot_name"`
	Region       types.RegionID      `json:"region"`
	OverallScore int                 `json:"overall_score"`
	NoGo         bool                `json:"no_go"`
	TopSpecies   []SpeciesScoreEntry `json:"top_species"`
}

// SpotScoreDetail is the full per-spot score with the species map
// flattened into a sorted array.
type SpotScoreDetail struct {
	SpotID       string                 `json:"spot_id"`
	SpotName     string                 `json:"spot_name"`
	Region       types.RegionID         `json:"region"`
	OverallScore int                    `json:"overall_score"`
	NoGo         bool                   `json:"no_go"`
	NoGoReasons  []string               `json:"no_go_reasons,omitempty"`
	Species      []SpeciesScoreEntry    `json:"species"`
	ActiveRules  []types.FiredRule      `json:"active_rules"`
	Trace        *types.EvaluationTrace `json:"trace,omitempty"`
}

// HandleListToday handles GET /v1/scores/today.
// Returns one summary row per spot in the document's stable catalog order,
// each carrying the top three species by score.
func (h *ScoresHandler) HandleListToday(w http.ResponseWriter, r *http.Request) {
	doc, err := h.service.Today(r.Context(), types.TraceNone)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	summaries := make([]SpotScoreSummary, 0, len(doc.Spots))
	for _, spot := range doc.Spots {
		species := sortedSpeciesEntries(spot.Species)
		if len(species) > topSpeciesCount {
			species = species[:topSpeciesCount]
		}
		summaries = append(summaries, SpotScoreSummary{
			SpotID:       spot.SpotID,
			SpotName:     spot.SpotName,
			Region:       spot.Region,
			OverallScore: spot.OverallScore,
			NoGo:         spot.NoGo,
			TopSpecies:   species,
		})
	}

	w.Header().Set("Cache-Control", "private, max-age=300")

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: summaries})
}

// HandleGetSpot handles GET /v1/scores/spots/{spotID}.
// Returns the detailed score for one spot with the species map rendered
// as an array sorted by descending score, species ID as tie-break.
func (h *ScoresHandler) HandleGetSpot(w http.ResponseWriter, r *http.Request) {
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

	spotID := chi.URLParam(r, "spotID")
	for _, spot := range doc.Spots {
		if spot.SpotID != spotID {
			continue
		}
		detail := SpotScoreDetail{
			SpotID:       spot.SpotID,
			SpotName:     spot.SpotName,
			Region:       spot.Region,
			OverallScore: spot.OverallScore,
			NoGo:         spot.NoGo,
			NoGoReasons:  spot.NoGoReasons,
			Species:      sortedSpeciesEntries(spot.Species),
			ActiveRules:  spot.ActiveRules,
			Trace:        spot.Trace,
		}

		w.Header().Set("Cache-Control", "private, max-age=300")
		core.JSON(w, r, http.StatusOK, core.APIResponse{Data: detail})
		return
	}

	core.Error(w, r, types.NewAppError(
		types.ErrCodeNotFoundSpot,
		"unknown spot: "+spotID,
		nil,
	))
}

// sortedSpeciesEntries flattens a species score map into an array sorted
// by (-score, species_id) so output order is deterministic.
func sortedSpeciesEntries(m map[types.SpeciesID]types.SpeciesScoreResult) []SpeciesScoreEntry {
	entries := make([]SpeciesScoreEntry, 0, len(m))
	for id, result := range m {
		entries = append(entries, SpeciesScoreEntry{SpeciesID: id, SpeciesScoreResult: result})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].SpeciesID < entries[j].SpeciesID
	})
	return entries
}
