package dataset

import (
	"math"
	"strings"
	"time"

	"github.com/wonny/impactlab/internal/timeseries"
)

// AggregateWeeklyDecay groups a daily table into weekly means for numWeeks
// weeks from start, normalizing each data column to 100 × weekly mean ÷
// mean of the seven days immediately before start. Missingness-flag
// columns are aggregated to weekly means but not normalized. Rows in the
// output are keyed by week-start date. The input must be daily data.
func AggregateWeeklyDecay(table *timeseries.Table, start time.Time, numWeeks int) *timeseries.Table {
	start = timeseries.Day(start)

	// Per-column mean of the week before the starting week.
	baselineWindow := table.Between(start.AddDate(0, 0, -7), start.AddDate(0, 0, -1))
	baseline := make(map[string]float64)
	for _, name := range table.Columns() {
		if strings.HasSuffix(name, dataSuffix) {
			baseline[name] = mean(baselineWindow.Column(name))
		}
	}

	// Weekly bucket means over the range of interest.
	ranged := table.Between(start, start.AddDate(0, 0, numWeeks*7-1))

	out := timeseries.NewTable()
	for _, name := range table.Columns() {
		series := ranged.Column(name)
		norm, isData := baseline[name]

		for week := 0; week < numWeeks; week++ {
			weekStart := start.AddDate(0, 0, week*7)
			weekEnd := weekStart.AddDate(0, 0, 6)

			value := mean(slice(series, weekStart, weekEnd))
			if isData {
				value = value / norm * 100
			}
			out.Set(weekStart, name, value)
		}
	}

	return out
}

// mean averages the valid values of a series; NaN when none exist.
func mean(s timeseries.Series) float64 {
	var sum float64
	var n int
	for _, p := range s.Points {
		if p.Missing() {
			continue
		}
		sum += p.Value
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// slice restricts a series to [from, to] inclusive.
func slice(s timeseries.Series, from, to time.Time) timeseries.Series {
	out := timeseries.Series{Name: s.Name}
	for _, p := range s.Points {
		if p.Date.Before(from) || p.Date.After(to) {
			continue
		}
		out.Points = append(out.Points, p)
	}
	return out
}
