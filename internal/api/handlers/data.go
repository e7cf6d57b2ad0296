package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/wonny/impactlab/internal/study"
	"github.com/wonny/impactlab/internal/studyconfig"
	"github.com/wonny/impactlab/pkg/logger"
)

// DataHandler handles acquisition cache endpoints
type DataHandler struct {
	runner *study.Runner
	logger *logger.Logger
}

// NewDataHandler creates a new data handler
func NewDataHandler(runner *study.Runner, log *logger.Logger) *DataHandler {
	return &DataHandler{
		runner: runner,
		logger: log,
	}
}

// FetchRequest asks for a cache warm-up.
type FetchRequest struct {
	Locations []string `json:"locations,omitempty"`
	Start     string   `json:"start,omitempty"`
	End       string   `json:"end,omitempty"`
}

// FetchResponse reports a completed warm-up.
type FetchResponse struct {
	Status    string `json:"status"`
	Locations int    `json:"locations"`
	Start     string `json:"start"`
	End       string `json:"end"`
}

// Fetch downloads and caches all datasets for the requested locations
// POST /api/data/fetch
func (h *DataHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req FetchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sc := studyconfig.Default()
	if len(req.Locations) > 0 {
		sc.Locations = req.Locations
	}
	if req.Start != "" {
		sc.Start = req.Start
	}
	if req.End != "" {
		sc.End = req.End
	}

	if err := studyconfig.Validate(sc); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.logger.WithFields(map[string]interface{}{
		"locations": len(sc.Locations),
		"start":     sc.Start,
		"end":       sc.End,
	}).Info("Data fetch triggered")

	if err := h.runner.Prefetch(ctx, sc); err != nil {
		h.logger.WithError(err).Error("Failed to fetch data")
		respondError(w, http.StatusInternalServerError, "Failed to fetch data")
		return
	}

	respondJSON(w, http.StatusOK, FetchResponse{
		Status:    "success",
		Locations: len(sc.Locations),
		Start:     sc.Start,
		End:       sc.End,
	})
}

// DatasetStatus describes one dataset cache.
type DatasetStatus struct {
	Cached    int      `json:"cached"`
	Locations []string `json:"locations"`
}

// StatusResponse describes all dataset caches.
type StatusResponse struct {
	Mobility DatasetStatus `json:"mobility"`
	Cases    DatasetStatus `json:"cases"`
}

// Status reports which locations are cached locally
// GET /api/data/status
func (h *DataHandler) Status(w http.ResponseWriter, r *http.Request) {
	mobility, err := h.runner.Mobility().CachedLocations()
	if err != nil {
		h.logger.WithError(err).Error("Failed to list mobility cache")
		respondError(w, http.StatusInternalServerError, "Failed to list mobility cache")
		return
	}
	cases, err := h.runner.Cases().CachedLocations()
	if err != nil {
		h.logger.WithError(err).Error("Failed to list cases cache")
		respondError(w, http.StatusInternalServerError, "Failed to list cases cache")
		return
	}

	respondJSON(w, http.StatusOK, StatusResponse{
		Mobility: DatasetStatus{Cached: len(mobility), Locations: mobility},
		Cases:    DatasetStatus{Cached: len(cases), Locations: cases},
	})
}
