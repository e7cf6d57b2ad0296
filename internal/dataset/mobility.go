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

// MobilityExpressions are the Google movement metrics tracked per location.
var MobilityExpressions = []string{
	"Google_GroceryMobility",
	"Google_TransitStationsMobility",
	"Google_ParksMobility",
	"Google_ResidentialMobility",
	"Google_RetailMobility",
	"Google_WorkplacesMobility",
}

const mobilitySubdir = "mobility"

// Mobility acquires and reshapes Google mobility data.
type Mobility struct {
	acquirer *acquire.Acquirer
	store    *store.CSVStore
	logger   *logger.Logger
}

// NewMobility creates the mobility dataset with its own cache directory
// under the configured data root.
func NewMobility(cfg config.DataConfig, provider acquire.Provider, log *logger.Logger) *Mobility {
	st := store.NewCSVStore(filepath.Join(cfg.Dir, mobilitySubdir), log)
	return &Mobility{
		acquirer: acquire.New(provider, st, log),
		store:    st,
		logger:   log.WithModule("dataset.mobility"),
	}
}

// CachedLocations returns the location ids already present in the local
// cache.
func (m *Mobility) CachedLocations() ([]string, error) {
	return m.store.List()
}

// MetricSeries returns one mobility metric for one location as a series,
// acquiring and caching the location if needed.
func (m *Mobility) MetricSeries(ctx context.Context, location, metric string, start, end time.Time) (timeseries.Series, error) {
	if !containsString(MobilityExpressions, metric) {
		return timeseries.Series{}, fmt.Errorf("unknown mobility metric %q", metric)
	}

	req := datalake.Request{
		IDs:         []string{location},
		Expressions: MobilityExpressions,
		Start:       start,
		End:         end,
		Interval:    "DAY",
	}

	raw, err := m.acquirer.Acquire(ctx, req, Clean)
	if err != nil {
		return timeseries.Series{}, err
	}

	name := location + "." + metric + dataSuffix
	if !raw.HasColumn(name) {
		return timeseries.Series{}, fmt.Errorf("no column %q for location %q", name, location)
	}
	return raw.Column(name), nil
}

// FetchClean returns cleaned mobility data for the location ids, grouped
// by movement category. Locations missing locally are downloaded and
// cached first.
func (m *Mobility) FetchClean(ctx context.Context, ids []string, start, end time.Time) (map[string]*timeseries.Table, error) {
	req := datalake.Request{
		IDs:         ids,
		Expressions: MobilityExpressions,
		Start:       start,
		End:         end,
		Interval:    "DAY",
	}

	raw, err := m.acquirer.Acquire(ctx, req, Clean)
	if err != nil {
		return nil, err
	}

	return GroupByCategory(raw), nil
}

// GroupByCategory splits a cleaned mobility table into one table per
// movement category, with locations as the columns. Column names follow
// the <location>.Google_<Category>Mobility.data convention.
func GroupByCategory(table *timeseries.Table) map[string]*timeseries.Table {
	result := make(map[string]*timeseries.Table)

	for _, name := range table.Columns() {
		parts := strings.Split(name, ".")
		if len(parts) != 3 {
			continue
		}
		location, metric := parts[0], parts[1]

		category := strings.TrimSuffix(strings.TrimPrefix(metric, "Google_"), "Mobility")

		grouped, ok := result[category]
		if !ok {
			grouped = timeseries.NewTable()
			result[category] = grouped
		}
		grouped.AddColumn(location, table.Column(name))
	}

	return result
}
