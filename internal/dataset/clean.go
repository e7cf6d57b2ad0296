// Package dataset holds the domain datasets built on the acquisition
// layer: Google mobility and JHU case reports, their cleaning rules, and
// the weekly decay aggregation.
package dataset

import (
	"math"
	"strings"

	"github.com/wonny/impactlab/internal/timeseries"
)

const (
	dataSuffix    = ".data"
	missingSuffix = ".missing"
)

// MapMissingToNaN blanks every data cell whose paired missingness flag is
// above zero and returns a table holding only the data columns. Any
// missing value over 0 is considered completely missing. Pure: the input
// table is not modified.
func MapMissingToNaN(table *timeseries.Table) *timeseries.Table {
	out := timeseries.NewTable()

	for _, name := range table.Columns() {
		if !strings.HasSuffix(name, dataSuffix) {
			continue
		}
		flagCol := strings.TrimSuffix(name, dataSuffix) + missingSuffix

		series := table.Column(name)
		for i, p := range series.Points {
			if flag, ok := table.Value(p.Date, flagCol); ok && flag > 0 {
				series.Points[i].Value = math.NaN()
			}
		}
		out.AddColumn(name, series)
	}

	return out
}

func containsString(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}

// Clean is the acquisition-layer transform shared by the datasets: it
// normalizes missingness flags into absent values and drops the flag
// columns before the table is persisted.
func Clean(table *timeseries.Table) (*timeseries.Table, error) {
	return MapMissingToNaN(table), nil
}
