package study

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/impactlab/internal/external/datalake"
	"github.com/wonny/impactlab/internal/impact"
	"github.com/wonny/impactlab/internal/studyconfig"
	"github.com/wonny/impactlab/internal/timeseries"
	"github.com/wonny/impactlab/pkg/config"
	"github.com/wonny/impactlab/pkg/logger"
)

// fakeProvider serves the same daily grid for every id and expression:
// five rising pre days (slope 1), a flagged-missing pivot day, and three
// post days rising at slope 2.
type fakeProvider struct {
	calls int
}

func (f *fakeProvider) EvalMetrics(_ context.Context, req datalake.Request) (*timeseries.Table, error) {
	f.calls++

	values := map[int]float64{
		10: 10, 11: 11, 12: 12, 13: 13, 14: 14,
		15: 0, // flagged missing below
		16: 20, 17: 22, 18: 24,
	}

	table := timeseries.NewTable()
	for _, id := range req.IDs {
		for _, expr := range req.Expressions {
			for d, v := range values {
				date := time.Date(2020, 4, d, 0, 0, 0, 0, time.UTC)
				table.Set(date, id+"."+expr+".data", v)
				flag := 0.0
				if d == 15 {
					flag = 1.0
				}
				table.Set(date, id+"."+expr+".missing", flag)
			}
		}
	}
	return table, nil
}

func testRunner(t *testing.T, provider *fakeProvider) *Runner {
	t.Helper()
	cfg := &config.Config{
		Data:     config.DataConfig{Dir: t.TempDir()},
		Analysis: config.AnalysisConfig{GapWarnDays: 10},
	}
	return NewRunner(cfg, provider, logger.NewWriter(io.Discard))
}

func testStudy() *studyconfig.Config {
	return &studyconfig.Config{
		Name:       "unit",
		Locations:  []string{"Germany"},
		Start:      "2020-04-01",
		End:        "2020-04-30",
		PreWindow:  5,
		PostWindow: 3,
		Pivots: []studyconfig.Pivot{
			{Location: "Germany", Metric: "Google_GroceryMobility", Date: "2020-04-15"},
		},
	}
}

func TestScorePivot(t *testing.T) {
	provider := &fakeProvider{}
	r := testRunner(t, provider)
	sc := testStudy()

	pr, err := r.ScorePivot(context.Background(), sc, sc.Pivots[0])
	require.NoError(t, err)

	require.True(t, pr.Result.Defined)
	assert.InDelta(t, 10.0/34.0, pr.Result.Score, 1e-9)
	assert.Equal(t, impact.TrendPositive, pr.Trend)
	assert.Equal(t, "Germany", pr.Location)
}

func TestScorePivotCasesMetric(t *testing.T) {
	provider := &fakeProvider{}
	r := testRunner(t, provider)
	sc := testStudy()
	sc.Pivots[0].Metric = "JHU_ConfirmedCases"

	pr, err := r.ScorePivot(context.Background(), sc, sc.Pivots[0])
	require.NoError(t, err)
	require.True(t, pr.Result.Defined)
	assert.InDelta(t, 10.0/34.0, pr.Result.Score, 1e-9)
}

func TestScorePivotUnknownMetric(t *testing.T) {
	provider := &fakeProvider{}
	r := testRunner(t, provider)
	sc := testStudy()
	sc.Pivots[0].Metric = "Apple_DrivingMobility"

	_, err := r.ScorePivot(context.Background(), sc, sc.Pivots[0])
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown metric")
}

func TestPrefetchWarmsCache(t *testing.T) {
	provider := &fakeProvider{}
	r := testRunner(t, provider)
	sc := testStudy()

	require.NoError(t, r.Prefetch(context.Background(), sc))
	fetched := provider.calls
	assert.Equal(t, 2, fetched, "one remote call per dataset")

	// Scoring after a prefetch must be served from the local cache.
	_, err := r.ScorePivot(context.Background(), sc, sc.Pivots[0])
	require.NoError(t, err)
	assert.Equal(t, fetched, provider.calls)

	// So must a second prefetch.
	require.NoError(t, r.Prefetch(context.Background(), sc))
	assert.Equal(t, fetched, provider.calls)
}

func TestRun(t *testing.T) {
	provider := &fakeProvider{}
	r := testRunner(t, provider)
	sc := testStudy()
	sc.Pivots = append(sc.Pivots, studyconfig.Pivot{
		Location: "Germany",
		Metric:   "Google_ParksMobility",
		Date:     "2020-04-15",
	})

	res, err := r.Run(context.Background(), sc)
	require.NoError(t, err)

	assert.Equal(t, "unit", res.Name)
	assert.Len(t, res.ConfigHash, 64)
	require.Len(t, res.Pivots, 2)
	for _, pr := range res.Pivots {
		assert.True(t, pr.Result.Defined)
		assert.InDelta(t, 10.0/34.0, pr.Result.Score, 1e-9)
	}
	assert.False(t, res.FinishedAt.Before(res.StartedAt))
}
