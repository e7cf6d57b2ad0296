// Package study runs impact studies: it resolves each pivot in a study
// definition to a cached metric series and scores it with the trend
// engine.
package study

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/impactlab/internal/acquire"
	"github.com/wonny/impactlab/internal/dataset"
	"github.com/wonny/impactlab/internal/impact"
	"github.com/wonny/impactlab/internal/studyconfig"
	"github.com/wonny/impactlab/internal/timeseries"
	"github.com/wonny/impactlab/pkg/config"
	"github.com/wonny/impactlab/pkg/logger"
)

// PivotResult is the scored outcome of one pivot event.
type PivotResult struct {
	Label    string        `json:"label,omitempty"`
	Location string        `json:"location"`
	Metric   string        `json:"metric"`
	Date     string        `json:"date"`
	Result   impact.Result `json:"result"`
	Trend    impact.Trend  `json:"trend"`
}

// Result is the outcome of a full study run.
type Result struct {
	Name       string        `json:"name"`
	ConfigHash string        `json:"config_hash"`
	Pivots     []PivotResult `json:"pivots"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
}

// Runner wires the datasets to the scoring engine.
type Runner struct {
	mobility *dataset.Mobility
	cases    *dataset.Cases
	engine   *impact.Engine
	logger   *logger.Logger
}

// NewRunner creates a runner backed by the shared datalake provider.
func NewRunner(cfg *config.Config, provider acquire.Provider, log *logger.Logger) *Runner {
	return &Runner{
		mobility: dataset.NewMobility(cfg.Data, provider, log),
		cases:    dataset.NewCases(cfg.Data, provider, log),
		engine:   impact.NewEngine(cfg.Analysis, log),
		logger:   log.WithModule("study"),
	}
}

// Mobility exposes the mobility dataset for data endpoints.
func (r *Runner) Mobility() *dataset.Mobility { return r.mobility }

// Cases exposes the cases dataset for data endpoints.
func (r *Runner) Cases() *dataset.Cases { return r.cases }

// Prefetch warms the local caches for every location in the study, so
// later scoring runs touch no remote endpoint.
func (r *Runner) Prefetch(ctx context.Context, sc *studyconfig.Config) error {
	start, err := sc.StartDate()
	if err != nil {
		return err
	}
	end, err := sc.EndDate()
	if err != nil {
		return err
	}

	r.logger.WithFields(map[string]interface{}{
		"study":     sc.Name,
		"locations": len(sc.Locations),
	}).Info("Prefetching study data")

	if _, err := r.mobility.FetchClean(ctx, sc.Locations, start, end); err != nil {
		return fmt.Errorf("prefetch mobility: %w", err)
	}
	if _, err := r.cases.FetchClean(ctx, sc.Locations, start, end); err != nil {
		return fmt.Errorf("prefetch cases: %w", err)
	}
	return nil
}

// ScorePivot resolves one pivot to its metric series and scores it.
func (r *Runner) ScorePivot(ctx context.Context, sc *studyconfig.Config, p studyconfig.Pivot) (PivotResult, error) {
	start, err := sc.StartDate()
	if err != nil {
		return PivotResult{}, err
	}
	end, err := sc.EndDate()
	if err != nil {
		return PivotResult{}, err
	}
	pivot, err := p.PivotDate()
	if err != nil {
		return PivotResult{}, err
	}

	series, err := r.metricSeries(ctx, p.Location, p.Metric, start, end)
	if err != nil {
		return PivotResult{}, err
	}

	res, err := r.engine.Score(series, pivot, sc.PreWindow, sc.PostWindow)
	if err != nil {
		return PivotResult{}, err
	}

	return PivotResult{
		Label:    p.Label,
		Location: p.Location,
		Metric:   p.Metric,
		Date:     p.Date,
		Result:   res,
		Trend:    impact.Classify(res),
	}, nil
}

// Run scores every pivot in the study. A pivot whose series cannot be
// resolved fails the whole run; an undefined score does not.
func (r *Runner) Run(ctx context.Context, sc *studyconfig.Config) (*Result, error) {
	hash, err := studyconfig.Hash(sc)
	if err != nil {
		return nil, err
	}

	out := &Result{
		Name:       sc.Name,
		ConfigHash: hash,
		Pivots:     make([]PivotResult, 0, len(sc.Pivots)),
		StartedAt:  time.Now().UTC(),
	}

	for _, p := range sc.Pivots {
		pr, err := r.ScorePivot(ctx, sc, p)
		if err != nil {
			return nil, fmt.Errorf("pivot %s/%s@%s: %w", p.Location, p.Metric, p.Date, err)
		}
		r.logger.WithFields(map[string]interface{}{
			"location": pr.Location,
			"metric":   pr.Metric,
			"date":     pr.Date,
			"score":    pr.Result.Score,
			"defined":  pr.Result.Defined,
			"trend":    string(pr.Trend),
		}).Info("Pivot scored")
		out.Pivots = append(out.Pivots, pr)
	}

	out.FinishedAt = time.Now().UTC()
	return out, nil
}

func (r *Runner) metricSeries(ctx context.Context, location, metric string, start, end time.Time) (timeseries.Series, error) {
	switch {
	case isMobilityMetric(metric):
		return r.mobility.MetricSeries(ctx, location, metric, start, end)
	case isCasesMetric(metric):
		return r.cases.MetricSeries(ctx, location, metric, start, end)
	default:
		return timeseries.Series{}, fmt.Errorf("unknown metric %q", metric)
	}
}

func isMobilityMetric(metric string) bool {
	for _, m := range dataset.MobilityExpressions {
		if m == metric {
			return true
		}
	}
	return false
}

func isCasesMetric(metric string) bool {
	for _, m := range dataset.CasesExpressions {
		if m == metric {
			return true
		}
	}
	return false
}
