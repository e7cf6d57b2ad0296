package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/wonny/impactlab/internal/study"
	"github.com/wonny/impactlab/internal/studyconfig"
	"github.com/wonny/impactlab/pkg/logger"
)

// ImpactHandler handles impact scoring endpoints
type ImpactHandler struct {
	runner *study.Runner
	logger *logger.Logger
}

// NewImpactHandler creates a new impact handler
func NewImpactHandler(runner *study.Runner, log *logger.Logger) *ImpactHandler {
	return &ImpactHandler{
		runner: runner,
		logger: log,
	}
}

// ScoreRequest is an ad-hoc single-pivot scoring request.
type ScoreRequest struct {
	Location   string `json:"location"`
	Metric     string `json:"metric"`
	Date       string `json:"date"`
	Start      string `json:"start,omitempty"`
	End        string `json:"end,omitempty"`
	PreWindow  int    `json:"pre_window,omitempty"`
	PostWindow int    `json:"post_window,omitempty"`
}

// Score scores a single pivot event
// POST /api/impact/score
func (h *ImpactHandler) Score(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Unset bounds and windows fall back to the baseline study.
	base := studyconfig.Default()
	sc := &studyconfig.Config{
		Name:       "adhoc",
		Locations:  []string{req.Location},
		Start:      base.Start,
		End:        base.End,
		PreWindow:  base.PreWindow,
		PostWindow: base.PostWindow,
	}
	if req.Start != "" {
		sc.Start = req.Start
	}
	if req.End != "" {
		sc.End = req.End
	}
	if req.PreWindow != 0 {
		sc.PreWindow = req.PreWindow
	}
	if req.PostWindow != 0 {
		sc.PostWindow = req.PostWindow
	}
	sc.Pivots = []studyconfig.Pivot{{
		Location: req.Location,
		Metric:   req.Metric,
		Date:     req.Date,
	}}

	if err := studyconfig.Validate(sc); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.runner.ScorePivot(ctx, sc, sc.Pivots[0])
	if err != nil {
		h.logger.WithError(err).Error("Failed to score pivot")
		respondError(w, http.StatusInternalServerError, "Failed to score pivot")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// RunStudy scores every pivot of a study definition
// POST /api/impact/study
func (h *ImpactHandler) RunStudy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var sc studyconfig.Config
	if err := json.NewDecoder(r.Body).Decode(&sc); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := studyconfig.Validate(&sc); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.runner.Run(ctx, &sc)
	if err != nil {
		h.logger.WithError(err).Error("Failed to run study")
		respondError(w, http.StatusInternalServerError, "Failed to run study")
		return
	}

	respondJSON(w, http.StatusOK, result)
}
