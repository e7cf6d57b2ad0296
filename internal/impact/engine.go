// Package impact computes the directional impact score of a daily signal
// around a pivot date: ordinary least-squares trend lines are fitted to the
// windows before and after the pivot, and the area between them over the
// post window is normalized by the area under the pre trend.
package impact

import (
	"fmt"
	"time"

	"github.com/wonny/impactlab/internal/timeseries"
	"github.com/wonny/impactlab/pkg/config"
	"github.com/wonny/impactlab/pkg/logger"
)

// Warning flags a data-quality condition that did not stop the computation.
type Warning string

const (
	// WarnReducedWindow means gaps absorbed part of the requested window.
	WarnReducedWindow Warning = "reduced_window"
	// WarnLargeGap means the skipped-day count exceeded the configured
	// threshold on at least one side.
	WarnLargeGap Warning = "large_gap"
)

// WindowStats describes one regression window of a result.
type WindowStats struct {
	Requested   int     `json:"requested"`
	Actual      int     `json:"actual"`
	SkippedDays int     `json:"skipped_days"`
	Slope       float64 `json:"slope"`
	Intercept   float64 `json:"intercept"`
}

// Result is the outcome of one impact-score computation. When Defined is
// false there were fewer than two valid points on one side of the pivot and
// Score is meaningless; callers must check Defined before using Score.
type Result struct {
	Score    float64     `json:"score"`
	Defined  bool        `json:"defined"`
	Pre      WindowStats `json:"pre"`
	Post     WindowStats `json:"post"`
	Warnings []Warning   `json:"warnings,omitempty"`
}

// HasWarning reports whether the result carries the given warning.
func (r Result) HasWarning(w Warning) bool {
	for _, got := range r.Warnings {
		if got == w {
			return true
		}
	}
	return false
}

// Engine computes impact scores.
type Engine struct {
	gapWarnDays int
	logger      *logger.Logger
}

// NewEngine creates an impact engine from analysis config.
func NewEngine(cfg config.AnalysisConfig, log *logger.Logger) *Engine {
	return &Engine{
		gapWarnDays: cfg.GapWarnDays,
		logger:      log.WithModule("impact"),
	}
}

// ParseDate parses a pivot date given in its YYYY-MM-DD input form.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", value, err)
	}
	return timeseries.Day(t), nil
}

// Score computes the impact score of the series around the pivot date.
//
// The pre window covers up to preWindow valid days ending at or before the
// pivot; the post window covers up to postWindow valid days starting the
// day after. Gaps are skipped toward the far side, so a window can span
// more calendar days than it holds points. Structural problems with the
// series (zero or duplicate dates) are returned as errors; too little data
// on either side yields a result with Defined=false and no error.
func (e *Engine) Score(s timeseries.Series, pivot time.Time, preWindow, postWindow int) (Result, error) {
	// Sort a local copy; callers keep their own ordering.
	sorted := s.Sorted()
	if err := sorted.Validate(); err != nil {
		return Result{}, err
	}

	pivot = timeseries.Day(pivot)
	pivotNext := pivot.AddDate(0, 0, 1)

	log := e.logger.WithFields(map[string]interface{}{
		"series": s.Name,
		"pivot":  pivot.Format("2006-01-02"),
	})
	log.Debug("Computing impact score")

	pre, err := timeseries.Extract(sorted, pivot, preWindow, timeseries.Earlier)
	if err != nil {
		return Result{}, err
	}
	post, err := timeseries.Extract(sorted, pivotNext, postWindow, timeseries.Later)
	if err != nil {
		return Result{}, err
	}

	result := Result{
		Pre:  WindowStats{Requested: preWindow, Actual: pre.Len()},
		Post: WindowStats{Requested: postWindow, Actual: post.Len()},
	}

	if pre.Len() < 2 || post.Len() < 2 {
		log.WithFields(map[string]interface{}{
			"pre":  pre.Len(),
			"post": post.Len(),
		}).Warn("Not enough data points to calculate impact")
		return result, nil
	}

	if pre.Len() < preWindow || post.Len() < postWindow {
		result.Warnings = append(result.Warnings, WarnReducedWindow)
		log.WithFields(map[string]interface{}{
			"pre":  pre.Len(),
			"post": post.Len(),
		}).Warn("Using fewer data points than requested window sizes")
	}

	// Calendar days each window had to reach beyond its requested span.
	result.Pre.SkippedDays = timeseries.DaysBetween(pre.MinDate(), pivot) - preWindow + 1
	result.Post.SkippedDays = timeseries.DaysBetween(pivotNext, post.MaxDate()) - postWindow + 1
	if result.Pre.SkippedDays > e.gapWarnDays || result.Post.SkippedDays > e.gapWarnDays {
		result.Warnings = append(result.Warnings, WarnLargeGap)
		log.WithFields(map[string]interface{}{
			"pre_skipped":  result.Pre.SkippedDays,
			"post_skipped": result.Post.SkippedDays,
		}).Warn("Large gaps in data used for linear regression")
	}

	// Signed day offsets from the pivot.
	preX, preY := offsets(pre, pivot)
	postX, postY := offsets(post, pivot)

	result.Pre.Slope, result.Pre.Intercept = linearFit(preX, preY)
	result.Post.Slope, result.Post.Intercept = linearFit(postX, postY)

	// Integrate over the span the post window actually achieved.
	lo, hi := postX[0], postX[len(postX)-1]

	// The pre trend is floored at zero so a negative extrapolated
	// baseline cannot produce a negative area.
	baselineArea := integrateClampedLine(result.Pre.Slope, result.Pre.Intercept, lo, hi)
	impactArea := integrateLine(result.Post.Slope, result.Post.Intercept, lo, hi) - baselineArea

	// Degenerate flat-zero baseline: shift both areas by one instead of
	// dividing by zero. Absolute, not relative, so only used as a
	// last-resort fallback.
	if baselineArea == 0 {
		baselineArea++
		impactArea++
	}

	result.Score = impactArea / baselineArea
	result.Defined = true

	log.WithFields(map[string]interface{}{
		"score":         result.Score,
		"impact_area":   impactArea,
		"baseline_area": baselineArea,
	}).Debug("Impact score computed")

	return result, nil
}

// offsets converts a window into day offsets from the pivot plus values.
func offsets(s timeseries.Series, pivot time.Time) (xs, ys []float64) {
	xs = make([]float64, s.Len())
	ys = make([]float64, s.Len())
	for i, p := range s.Points {
		xs[i] = float64(timeseries.DaysBetween(pivot, p.Date))
		ys[i] = p.Value
	}
	return xs, ys
}
