// Package store persists per-location time-series tables as CSV files,
// one file per location id. Entries are written once and then trusted
// as-is; nothing here ever deletes or rewrites an existing entry.
package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/impactlab/internal/timeseries"
	"github.com/wonny/impactlab/pkg/logger"
)

// ErrNotFound reports a cache miss. Not an error condition for callers of
// the acquisition layer; it triggers a remote fetch.
var ErrNotFound = errors.New("cache entry not found")

const dateColumn = "dates"

// CSVStore is a per-location blob store backed by a directory of CSV files.
type CSVStore struct {
	dir    string
	logger *logger.Logger
}

// NewCSVStore creates a store rooted at dir. The directory is created on
// first write, not here.
func NewCSVStore(dir string, log *logger.Logger) *CSVStore {
	return &CSVStore{
		dir:    dir,
		logger: log.WithModule("store"),
	}
}

// Has reports whether an entry exists for the id.
func (s *CSVStore) Has(id string) bool {
	path, err := s.path(id)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// List returns the ids of all persisted entries.
func (s *CSVStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read store dir: %w", err)
	}

	var ids []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".csv") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), ".csv"))
	}
	return ids, nil
}

// Read loads the table persisted for the id. Returns ErrNotFound when no
// entry exists.
func (s *CSVStore) Read(id string) (*timeseries.Table, error) {
	path, err := s.path(id)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("open cache entry %s: %w", id, err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse cache entry %s: %w", id, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("cache entry %s: empty file", id)
	}

	header := records[0]
	if len(header) == 0 || header[0] != dateColumn {
		return nil, fmt.Errorf("cache entry %s: first column must be %q", id, dateColumn)
	}

	table := timeseries.NewTable()
	for rowNum, record := range records[1:] {
		if len(record) != len(header) {
			return nil, fmt.Errorf("cache entry %s: row %d has %d cells, want %d",
				id, rowNum+1, len(record), len(header))
		}

		date, err := time.Parse("2006-01-02", record[0])
		if err != nil {
			return nil, fmt.Errorf("cache entry %s: row %d: %w", id, rowNum+1, err)
		}

		for col := 1; col < len(record); col++ {
			table.Set(date, header[col], parseCell(record[col]))
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"id":   id,
		"rows": table.NumRows(),
	}).Debug("Cache entry loaded")

	return table, nil
}

// Write persists a table for the id. The file is written to a temp path
// and renamed so a crash cannot leave a torn entry behind.
func (s *CSVStore) Write(id string, table *timeseries.Table) error {
	path, err := s.path(id)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, id+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	writer := csv.NewWriter(tmp)

	columns := table.Columns()
	header := append([]string{dateColumn}, columns...)
	if err := writer.Write(header); err != nil {
		tmp.Close()
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, date := range table.Dates() {
		record := make([]string, 0, len(header))
		record = append(record, date.Format("2006-01-02"))
		for _, col := range columns {
			value, _ := table.Value(date, col)
			record = append(record, formatCell(value))
		}
		if err := writer.Write(record); err != nil {
			tmp.Close()
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush csv: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename cache entry %s: %w", id, err)
	}

	s.logger.WithFields(map[string]interface{}{
		"id":   id,
		"rows": table.NumRows(),
		"cols": table.NumColumns(),
	}).Debug("Cache entry written")

	return nil
}

// path maps an id to its file, rejecting ids that would escape the dir.
func (s *CSVStore) path(id string) (string, error) {
	if id == "" || id != filepath.Base(id) || strings.HasPrefix(id, ".") {
		return "", fmt.Errorf("invalid location id %q", id)
	}
	return filepath.Join(s.dir, id+".csv"), nil
}

// parseCell converts a CSV cell to a value; the empty cell is missing.
func parseCell(cell string) float64 {
	if cell == "" {
		return math.NaN()
	}
	value, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return math.NaN()
	}
	return value
}

// formatCell converts a value to a CSV cell; missing becomes empty.
func formatCell(value float64) string {
	if math.IsNaN(value) {
		return ""
	}
	return strconv.FormatFloat(value, 'g', -1, 64)
}
