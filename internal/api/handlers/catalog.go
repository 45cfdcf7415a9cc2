package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"fishcast/internal/catalog"
	"fishcast/internal/core"
	"fishcast/internal/types"
)

// CatalogHandler serves the embedded spot, species, and technique
// reference data. The catalog is immutable for the life of the process,
// so responses carry a long public cache lifetime.
type CatalogHandler struct {
	catalog *catalog.Catalog
	logger  *slog.Logger
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(cat *catalog.Catalog, logger *slog.Logger) *CatalogHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogHandler{
		catalog: cat,
		logger:  logger,
	}
}

// RegisterRoutes mounts the catalog endpoints onto the mux.
func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/spots", h.HandleListSpots)
	r.Get("/spots/{spotID}", h.HandleGetSpot)
	r.Get("/species", h.HandleListSpecies)
	r.Get("/techniques", h.HandleListTechniques)
}

// HandleListSpots handles GET /v1/catalog/spots.
func (h *CatalogHandler) HandleListSpots(w http.ResponseWriter, r *http.Request) {
	setCatalogCacheHeaders(w)
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: h.catalog.Spots()})
}

// HandleGetSpot handles GET /v1/catalog/spots/{spotID}.
func (h *CatalogHandler) HandleGetSpot(w http.ResponseWriter, r *http.Request) {
	spotID := chi.URLParam(r, "spotID")

	spot := h.catalog.SpotByID(spotID)
	if spot == nil {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeNotFoundSpot,
			"unknown spot: "+spotID,
			nil,
		))
		return
	}

	setCatalogCacheHeaders(w)
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: spot})
}

// HandleListSpecies handles GET /v1/catalog/species.
func (h *CatalogHandler) HandleListSpecies(w http.ResponseWriter, r *http.Request) {
	setCatalogCacheHeaders(w)
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: h.catalog.Species()})
}

// HandleListTechniques handles GET /v1/catalog/techniques.
func (h *CatalogHandler) HandleListTechniques(w http.ResponseWriter, r *http.Request) {
	setCatalogCacheHeaders(w)
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: h.catalog.Techniques()})
}

func setCatalogCacheHeaders(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "public, max-age=3600")
}
