package acquire

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/impactlab/internal/external/datalake"
	"github.com/wonny/impactlab/internal/store"
	"github.com/wonny/impactlab/internal/timeseries"
	"github.com/wonny/impactlab/pkg/logger"
)

// fakeProvider records every request it serves and fabricates one column
// per id/expression pair.
type fakeProvider struct {
	requests []datalake.Request
	err      error
}

func (f *fakeProvider) EvalMetrics(_ context.Context, req datalake.Request) (*timeseries.Table, error) {
	// Keep our own copy; the acquirer must not rely on us being polite.
	f.requests = append(f.requests, req)

	if f.err != nil {
		return nil, f.err
	}

	table := timeseries.NewTable()
	day := time.Date(2020, 2, 15, 0, 0, 0, 0, time.UTC)
	for _, id := range req.IDs {
		for _, expr := range req.Expressions {
			table.Set(day, id+"."+expr+".data", 1.0)
			table.Set(day, id+"."+expr+".missing", 0.0)
		}
	}
	return table, nil
}

func testAcquirer(t *testing.T, provider Provider) *Acquirer {
	t.Helper()
	log := logger.NewWriter(io.Discard)
	return New(provider, store.NewCSVStore(t.TempDir(), log), log)
}

func baseRequest() datalake.Request {
	return datalake.Request{
		IDs:         []string{"Germany", "France", "Italy"},
		Expressions: []string{"JHU_ConfirmedCases", "JHU_ConfirmedDeaths"},
		Start:       time.Date(2020, 2, 15, 0, 0, 0, 0, time.UTC),
		End:         time.Date(2020, 10, 15, 0, 0, 0, 0, time.UTC),
	}
}

func TestAcquireFetchesAndJoins(t *testing.T) {
	provider := &fakeProvider{}
	acq := testAcquirer(t, provider)

	table, err := acq.Acquire(context.Background(), baseRequest(), nil)
	require.NoError(t, err)

	require.Len(t, provider.requests, 3, "one remote call per uncached location")
	assert.Equal(t, 6, table.NumColumns(), "two columns per id/expression pair")
	assert.True(t, table.HasColumn("Italy.JHU_ConfirmedDeaths.missing"))
}

func TestAcquireIsIdempotent(t *testing.T) {
	provider := &fakeProvider{}
	log := logger.NewWriter(io.Discard)
	st := store.NewCSVStore(t.TempDir(), log)
	acq := New(provider, st, log)

	first, err := acq.Acquire(context.Background(), baseRequest(), nil)
	require.NoError(t, err)
	require.Len(t, provider.requests, 3)

	second, err := acq.Acquire(context.Background(), baseRequest(), nil)
	require.NoError(t, err)

	assert.Len(t, provider.requests, 3, "second run must trigger zero remote fetches")
	assert.Equal(t, first.Columns(), second.Columns())
	assert.Equal(t, first.NumRows(), second.NumRows())
}

func TestAcquirePreservesRequestAcrossIterations(t *testing.T) {
	provider := &fakeProvider{}
	acq := testAcquirer(t, provider)

	base := baseRequest()
	originalExpressions := append([]string(nil), base.Expressions...)

	_, err := acq.Acquire(context.Background(), base, nil)
	require.NoError(t, err)

	// Every per-location request carries the full original metric set;
	// the last location's effective request equals the first's.
	require.Len(t, provider.requests, 3)
	for i, req := range provider.requests {
		assert.Equal(t, originalExpressions, req.Expressions, "request %d", i)
		assert.Len(t, req.IDs, 1, "request %d must target a single location", i)
	}
	assert.Equal(t, provider.requests[0].Expressions, provider.requests[2].Expressions)

	// The base request itself is untouched.
	assert.Equal(t, originalExpressions, base.Expressions)
	assert.Equal(t, []string{"Germany", "France", "Italy"}, base.IDs)
}

func TestAcquireServesCacheWithoutRemoteCall(t *testing.T) {
	provider := &fakeProvider{}
	log := logger.NewWriter(io.Discard)
	st := store.NewCSVStore(t.TempDir(), log)
	acq := New(provider, st, log)

	// Pre-seed one location.
	seeded := timeseries.NewTable()
	seeded.Set(time.Date(2020, 2, 15, 0, 0, 0, 0, time.UTC), "Germany.JHU_ConfirmedCases.data", 42)
	require.NoError(t, st.Write("Germany", seeded))

	base := baseRequest()
	base.IDs = []string{"Germany"}

	table, err := acq.Acquire(context.Background(), base, nil)
	require.NoError(t, err)

	assert.Empty(t, provider.requests, "cached location must not hit the provider")
	v, _ := table.Value(time.Date(2020, 2, 15, 0, 0, 0, 0, time.UTC), "Germany.JHU_ConfirmedCases.data")
	assert.Equal(t, 42.0, v)
}

func TestAcquireAppliesCleanBeforePersisting(t *testing.T) {
	provider := &fakeProvider{}
	log := logger.NewWriter(io.Discard)
	dir := t.TempDir()
	st := store.NewCSVStore(dir, log)
	acq := New(provider, st, log)

	base := baseRequest()
	base.IDs = []string{"Germany"}

	clean := func(tbl *timeseries.Table) (*timeseries.Table, error) {
		return tbl.Select(func(name string) bool {
			return strings.HasSuffix(name, ".data")
		}), nil
	}

	table, err := acq.Acquire(context.Background(), base, clean)
	require.NoError(t, err)
	assert.Equal(t, 2, table.NumColumns(), "missing columns dropped by clean")

	// The persisted entry is the cleaned table.
	persisted, err := st.Read("Germany")
	require.NoError(t, err)
	assert.Equal(t, 2, persisted.NumColumns())
}

func TestAcquirePropagatesRemoteFailure(t *testing.T) {
	remoteErr := errors.New("upstream unavailable")
	provider := &fakeProvider{err: remoteErr}
	acq := testAcquirer(t, provider)

	_, err := acq.Acquire(context.Background(), baseRequest(), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, remoteErr), "remote failure must propagate unmodified")

	// Exactly one attempt: no retry, and the loop stops at the failure.
	assert.Len(t, provider.requests, 1)
}
