package timeseries

import (
	"math"
	"sort"
	"time"
)

// Table is a date-indexed collection of named columns. The date axis is the
// sorted union of all dates ever added; cells without an observation hold
// NaN. Column order follows insertion order so CSV round trips stay stable.
type Table struct {
	dates   []time.Time
	index   map[time.Time]int
	columns []string
	cells   map[string][]float64
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{
		index: make(map[time.Time]int),
		cells: make(map[string][]float64),
	}
}

// NumRows returns the number of date rows.
func (t *Table) NumRows() int {
	return len(t.dates)
}

// NumColumns returns the number of columns.
func (t *Table) NumColumns() int {
	return len(t.columns)
}

// Dates returns the sorted date axis.
func (t *Table) Dates() []time.Time {
	out := make([]time.Time, len(t.dates))
	copy(out, t.dates)
	return out
}

// Columns returns the column names in insertion order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.cells[name]
	return ok
}

// Value returns the cell for (date, column). The second result is false
// when the row or column does not exist; a NaN cell is returned as-is.
func (t *Table) Value(date time.Time, column string) (float64, bool) {
	values, ok := t.cells[column]
	if !ok {
		return math.NaN(), false
	}
	row, ok := t.index[Day(date)]
	if !ok {
		return math.NaN(), false
	}
	return values[row], true
}

// Set writes one cell, growing the date axis and the column as needed.
func (t *Table) Set(date time.Time, column string, value float64) {
	day := Day(date)
	row, ok := t.index[day]
	if !ok {
		row = t.insertDate(day)
	}
	values, ok := t.cells[column]
	if !ok {
		values = newNaNSlice(len(t.dates))
		t.columns = append(t.columns, column)
		t.cells[column] = values
	}
	t.cells[column][row] = value
}

// AddColumn adds a whole column from a series, merging its dates into the
// axis. An existing column of the same name is overwritten cell by cell.
func (t *Table) AddColumn(name string, s Series) {
	for _, p := range s.Points {
		t.Set(p.Date, name, p.Value)
	}
	// A fully-missing series still owns a column.
	if !t.HasColumn(name) {
		t.columns = append(t.columns, name)
		t.cells[name] = newNaNSlice(len(t.dates))
	}
}

// Column extracts one column as a series over the full date axis,
// NaN-valued where the column has no observation.
func (t *Table) Column(name string) Series {
	values, ok := t.cells[name]
	if !ok {
		return Series{Name: name}
	}
	points := make([]Point, len(t.dates))
	for i, d := range t.dates {
		points[i] = Point{Date: d, Value: values[i]}
	}
	return Series{Name: name, Points: points}
}

// OuterJoin merges another table into a new one: the date axis is the union
// of both, columns from the receiver come first, and overlapping column
// names are taken from the other table. Neither input is modified.
func (t *Table) OuterJoin(o *Table) *Table {
	out := NewTable()
	for _, name := range t.columns {
		out.AddColumn(name, t.Column(name))
	}
	for _, name := range o.columns {
		out.AddColumn(name, o.Column(name))
	}
	return out
}

// Select returns a new table containing only the columns the keep function
// accepts, over the same date axis.
func (t *Table) Select(keep func(name string) bool) *Table {
	out := NewTable()
	for _, name := range t.columns {
		if keep(name) {
			out.AddColumn(name, t.Column(name))
		}
	}
	return out
}

// Rename returns a new table with every column name passed through the
// rename function.
func (t *Table) Rename(rename func(name string) string) *Table {
	out := NewTable()
	for _, name := range t.columns {
		out.AddColumn(rename(name), t.Column(name))
	}
	return out
}

// Between returns a new table restricted to rows in [from, to] inclusive.
func (t *Table) Between(from, to time.Time) *Table {
	fromDay, toDay := Day(from), Day(to)
	out := NewTable()
	for _, name := range t.columns {
		full := t.Column(name)
		points := make([]Point, 0, len(full.Points))
		for _, p := range full.Points {
			if p.Date.Before(fromDay) || p.Date.After(toDay) {
				continue
			}
			points = append(points, p)
		}
		out.AddColumn(name, Series{Name: name, Points: points})
	}
	return out
}

// insertDate grows the axis keeping it sorted, shifting every column.
func (t *Table) insertDate(day time.Time) int {
	pos := sort.Search(len(t.dates), func(i int) bool {
		return !t.dates[i].Before(day)
	})

	t.dates = append(t.dates, time.Time{})
	copy(t.dates[pos+1:], t.dates[pos:])
	t.dates[pos] = day

	for name, values := range t.cells {
		values = append(values, math.NaN())
		copy(values[pos+1:], values[pos:])
		values[pos] = math.NaN()
		t.cells[name] = values
	}

	// Rebuild the index for shifted rows.
	for i := pos; i < len(t.dates); i++ {
		t.index[t.dates[i]] = i
	}
	return pos
}

func newNaNSlice(n int) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = math.NaN()
	}
	return values
}
