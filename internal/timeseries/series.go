// Package timeseries holds the date-indexed data structures shared by the
// acquisition layer and the impact engine: a single named Series, a
// multi-column Table, and directional window extraction over sparse data.
package timeseries

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Point is one dated observation. A missing observation carries NaN.
type Point struct {
	Date  time.Time
	Value float64
}

// Missing reports whether the point has no usable value.
func (p Point) Missing() bool {
	return math.IsNaN(p.Value)
}

// Series is an ordered sequence of dated observations for one metric.
type Series struct {
	Name   string
	Points []Point
}

// Day normalizes a timestamp to midnight UTC so dates compare and hash
// consistently regardless of clock or zone.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole-day distance from a to b.
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours() / 24)
}

// Len returns the number of points in the series.
func (s Series) Len() int {
	return len(s.Points)
}

// Clone returns a deep copy of the series.
func (s Series) Clone() Series {
	points := make([]Point, len(s.Points))
	copy(points, s.Points)
	return Series{Name: s.Name, Points: points}
}

// Sorted returns a copy of the series ordered by date ascending.
// The receiver is left untouched.
func (s Series) Sorted() Series {
	out := s.Clone()
	sort.SliceStable(out.Points, func(i, j int) bool {
		return out.Points[i].Date.Before(out.Points[j].Date)
	})
	return out
}

// DropMissing returns a copy containing only points with usable values.
func (s Series) DropMissing() Series {
	points := make([]Point, 0, len(s.Points))
	for _, p := range s.Points {
		if !p.Missing() {
			points = append(points, p)
		}
	}
	return Series{Name: s.Name, Points: points}
}

// Validate checks the structural invariants the impact engine relies on:
// every point must carry a genuine date and, once sorted, dates must be
// unique. The series is expected to be sorted before validation.
func (s Series) Validate() error {
	for i, p := range s.Points {
		if p.Date.IsZero() {
			return fmt.Errorf("series %q: point %d has a zero date", s.Name, i)
		}
		if i > 0 && !s.Points[i-1].Date.Before(p.Date) {
			return fmt.Errorf("series %q: duplicate or unsorted date %s at point %d",
				s.Name, p.Date.Format("2006-01-02"), i)
		}
	}
	return nil
}

// Values returns the raw values in order.
func (s Series) Values() []float64 {
	values := make([]float64, len(s.Points))
	for i, p := range s.Points {
		values[i] = p.Value
	}
	return values
}

// MinDate returns the earliest date in the series. Zero time when empty.
func (s Series) MinDate() time.Time {
	if len(s.Points) == 0 {
		return time.Time{}
	}
	min := s.Points[0].Date
	for _, p := range s.Points[1:] {
		if p.Date.Before(min) {
			min = p.Date
		}
	}
	return min
}

// MaxDate returns the latest date in the series. Zero time when empty.
func (s Series) MaxDate() time.Time {
	if len(s.Points) == 0 {
		return time.Time{}
	}
	max := s.Points[0].Date
	for _, p := range s.Points[1:] {
		if p.Date.After(max) {
			max = p.Date
		}
	}
	return max
}

// searchAtOrAfter returns the index of the first point dated at or after
// origin, or len(points) when no such point exists. Points must be sorted.
func searchAtOrAfter(points []Point, origin time.Time) int {
	return sort.Search(len(points), func(i int) bool {
		return !points[i].Date.Before(origin)
	})
}

// searchAtOrBefore returns the index of the last point dated at or before
// origin, or -1 when no such point exists. Points must be sorted.
func searchAtOrBefore(points []Point, origin time.Time) int {
	return sort.Search(len(points), func(i int) bool {
		return points[i].Date.After(origin)
	}) - 1
}
