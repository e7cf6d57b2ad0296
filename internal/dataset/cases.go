package dataset

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/wonny/impactlab/internal/acquire"
	"github.com/wonny/impactlab/internal/external/datalake"
	"github.com/wonny/impactlab/internal/store"
	"github.com/wonny/impactlab/internal/timeseries"
	"github.com/wonny/impactlab/pkg/config"
	"github.com/wonny/impactlab/pkg/logger"
)

// CasesExpressions are the JHU case-report metrics tracked per location.
var CasesExpressions = []string{
	"JHU_ConfirmedCases",
	"JHU_ConfirmedDeaths",
	"JHU_ConfirmedRecoveries",
}

const casesSubdir = "cases"

// Cases acquires and filters JHU case-report data.
type Cases struct {
	acquirer *acquire.Acquirer
	store    *store.CSVStore
	logger   *logger.Logger
}

// NewCases creates the cases dataset with its own cache directory under
// the configured data root.
func NewCases(cfg config.DataConfig, provider acquire.Provider, log *logger.Logger) *Cases {
	st := store.NewCSVStore(filepath.Join(cfg.Dir, casesSubdir), log)
	return &Cases{
		acquirer: acquire.New(provider, st, log),
		store:    st,
		logger:   log.WithModule("dataset.cases"),
	}
}

// CachedLocations returns the location ids already present in the local
// cache.
func (c *Cases) CachedLocations() ([]string, error) {
	return c.store.List()
}

// FetchClean returns cleaned confirmed-cases data for the location ids,
// one column per location. Locations missing locally are downloaded and
// cached first.
func (c *Cases) FetchClean(ctx context.Context, ids []string, start, end time.Time) (*timeseries.Table, error) {
	req := datalake.Request{
		IDs:         ids,
		Expressions: CasesExpressions,
		Start:       start,
		End:         end,
		Interval:    "DAY",
	}

	raw, err := c.acquirer.Acquire(ctx, req, Clean)
	if err != nil {
		return nil, err
	}

	return CasesOnly(raw), nil
}

// MetricSeries returns one case-report metric for one location as a
// series, acquiring and caching the location if needed.
func (c *Cases) MetricSeries(ctx context.Context, location, metric string, start, end time.Time) (timeseries.Series, error) {
	if !containsString(CasesExpressions, metric) {
		return timeseries.Series{}, fmt.Errorf("unknown case metric %q", metric)
	}

	req := datalake.Request{
		IDs:         []string{location},
		Expressions: CasesExpressions,
		Start:       start,
		End:         end,
		Interval:    "DAY",
	}

	raw, err := c.acquirer.Acquire(ctx, req, Clean)
	if err != nil {
		return timeseries.Series{}, err
	}

	name := location + "." + metric + dataSuffix
	if !raw.HasColumn(name) {
		return timeseries.Series{}, fmt.Errorf("no column %q for location %q", name, location)
	}
	return raw.Column(name), nil
}

// CasesOnly filters a cleaned case-report table down to confirmed cases,
// renaming each column to its bare location id.
func CasesOnly(table *timeseries.Table) *timeseries.Table {
	filtered := table.Select(func(name string) bool {
		return strings.Contains(name, "JHU_ConfirmedCases")
	})

	return filtered.Rename(func(name string) string {
		return strings.SplitN(name, ".", 2)[0]
	})
}
