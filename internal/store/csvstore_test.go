package store

import (
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/impactlab/internal/timeseries"
	"github.com/wonny/impactlab/pkg/logger"
)

func testStore(t *testing.T) *CSVStore {
	t.Helper()
	return NewCSVStore(t.TempDir(), logger.NewWriter(io.Discard))
}

func testTable() *timeseries.Table {
	tbl := timeseries.NewTable()
	day := func(d int) time.Time { return time.Date(2020, 2, d, 0, 0, 0, 0, time.UTC) }
	tbl.Set(day(15), "Germany.JHU_ConfirmedCases.data", 100)
	tbl.Set(day(16), "Germany.JHU_ConfirmedCases.data", 120)
	tbl.Set(day(17), "Germany.JHU_ConfirmedCases.data", math.NaN())
	tbl.Set(day(15), "Germany.JHU_ConfirmedCases.missing", 0)
	tbl.Set(day(16), "Germany.JHU_ConfirmedCases.missing", 0)
	tbl.Set(day(17), "Germany.JHU_ConfirmedCases.missing", 100)
	return tbl
}

func TestWriteReadRoundTrip(t *testing.T) {
	s := testStore(t)
	original := testTable()

	require.NoError(t, s.Write("Germany", original))

	loaded, err := s.Read("Germany")
	require.NoError(t, err)

	assert.Equal(t, original.NumRows(), loaded.NumRows())
	assert.Equal(t, original.Columns(), loaded.Columns())

	day16 := time.Date(2020, 2, 16, 0, 0, 0, 0, time.UTC)
	v, ok := loaded.Value(day16, "Germany.JHU_ConfirmedCases.data")
	require.True(t, ok)
	assert.Equal(t, 120.0, v)

	// NaN survives the round trip as a missing cell.
	day17 := time.Date(2020, 2, 17, 0, 0, 0, 0, time.UTC)
	v, ok = loaded.Value(day17, "Germany.JHU_ConfirmedCases.data")
	require.True(t, ok)
	assert.True(t, math.IsNaN(v))
}

func TestReadMissingEntry(t *testing.T) {
	s := testStore(t)

	_, err := s.Read("Atlantis")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestHasAndList(t *testing.T) {
	s := testStore(t)

	assert.False(t, s.Has("Germany"))
	ids, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, s.Write("Germany", testTable()))
	require.NoError(t, s.Write("France", testTable()))

	assert.True(t, s.Has("Germany"))
	ids, err = s.List()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Germany", "France"}, ids)
}

func TestInvalidIDRejected(t *testing.T) {
	s := testStore(t)

	for _, id := range []string{"", "../escape", "a/b", ".hidden"} {
		err := s.Write(id, testTable())
		assert.Error(t, err, "id %q must be rejected", id)
	}
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s := NewCSVStore(dir, logger.NewWriter(io.Discard))

	require.NoError(t, s.Write("Germany", testTable()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Germany.csv", entries[0].Name())
	assert.Equal(t, filepath.Ext(entries[0].Name()), ".csv")
}
