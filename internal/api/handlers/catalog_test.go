package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"fishcast/internal/catalog"
	"fishcast/internal/types"
)

func makeCatalogRouter(t *testing.T) http.Handler {
	t.Helper()
	cat, err := catalog.Load()
	if err != nil {
		t.Fatalf("catalog.Load: %v", err)
	}
	h := NewCatalogHandler(cat, testLogger())
	r := chi.NewRouter()
	r.Route("/v1/catalog", h.RegisterRoutes)
	return r
}

func TestHandleListSpots(t *testing.T) {
	router := makeCatalogRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/catalog/spots", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if cc := rec.Header().Get("Cache-Control"); cc != "public, max-age=3600" {
		t.Errorf("Cache-Control = %q", cc)
	}

	var resp struct {
		Data []types.Spot `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Data) != 16 {
		t.Errorf("expected 16 spots, got %d", len(resp.Data))
	}
}

func TestHandleGetCatalogSpot(t *testing.T) {
	router := makeCatalogRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/catalog/spots/bogaz_rumeli", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp struct {
		Data types.Spot `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.ID != "bogaz_rumeli" {
		t.Errorf("spot = %q", resp.Data.ID)
	}
	if resp.Data.Region != types.RegionAvrupa {
		t.Errorf("region = %q", resp.Data.Region)
	}
}

func TestHandleGetCatalogSpot_NotFound(t *testing.T) {
	router := makeCatalogRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/catalog/spots/nonexistent", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
	resp := decodeError(t, rec)
	if resp.Error.Code != string(types.ErrCodeNotFoundSpot) {
		t.Errorf("error code = %q", resp.Error.Code)
	}
}

func TestHandleListSpecies(t *testing.T) {
	router := makeCatalogRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/catalog/species", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp struct {
		Data []types.Species `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Data) != 9 {
		t.Errorf("expected 9 species, got %d", len(resp.Data))
	}
}

func TestHandleListTechniques(t *testing.T) {
	router := makeCatalogRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/catalog/techniques", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp struct {
		Data []types.Technique `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Data) != 7 {
		t.Errorf("expected 7 techniques, got %d", len(resp.Data))
	}
}
