package journal

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) (*SQLite, string) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	j, err := NewSQLite(path)
	require.NoError(t, err)

	return j, path
}

func TestSQLiteSchemaCreated(t *testing.T) {
	t.Parallel()

	j, path := newTestSQLite(t)
	assert.NoError(t, j.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type='table' AND name IN ('runs','trades','equity')`)
	require.NoError(t, err)
	defer rows.Close()

	found := map[string]bool{}
	for rows.Next() {
		var name string
		assert.NoError(t, rows.Scan(&name))
		found[name] = true
	}
	assert.NoError(t, rows.Err())

	assert.True(t, found["runs"])
	assert.True(t, found["trades"])
	assert.True(t, found["equity"])
}

func TestSQLiteRecordAndLoad(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	defer j.Close()

	res := sampleResult(t)
	require.NoError(t, Record(j, res, "walk-seed-42"))

	run, err := j.GetRun(res.RunID)
	require.NoError(t, err)
	assert.Equal(t, res.Strategy, run.Strategy)
	assert.Equal(t, "WALK", run.Symbol)
	assert.Equal(t, "walk-seed-42", run.Dataset)
	assert.Equal(t, 40, run.Bars)
	assert.True(t, run.Start.Equal(res.Start))
	assert.True(t, run.End.Equal(res.End))
	assert.InDelta(t, res.Report.FinalEquity, run.EndBalance, 1e-9)
	assert.Equal(t, 2, run.Trades)
	assert.Equal(t, res.Report.Sharpe, run.Report.Sharpe)
	assert.Equal(t, res.Report.ProfitFactor.Valid, run.Report.ProfitFactor.Valid)
	assert.Contains(t, string(run.Config), "InitialCash")

	trades, err := j.ListTradesByRunID(res.RunID)
	require.NoError(t, err)
	require.Len(t, trades, 2)
	for i, tr := range trades {
		want := res.Trades[i]
		assert.Equal(t, want.ID, tr.TradeID)
		assert.Equal(t, "long", tr.Side)
		assert.InDelta(t, want.Size, tr.Size, 1e-9)
		assert.InDelta(t, want.EntryPrice, tr.EntryPrice, 1e-9)
		assert.InDelta(t, want.ExitPrice, tr.ExitPrice, 1e-9)
		assert.InDelta(t, want.PnL, tr.RealizedPL, 1e-9)
		assert.True(t, want.EntryTime.Equal(tr.EntryTime))
		assert.True(t, want.ExitTime.Equal(tr.ExitTime))
	}

	equity, err := j.ListEquityByRunID(res.RunID)
	require.NoError(t, err)
	require.Len(t, equity, len(res.Snapshots))
	for i, e := range equity {
		assert.Equal(t, i, e.Bar)
		assert.InDelta(t, res.Snapshots[i].Equity, e.Equity, 1e-9)
	}
}

func TestSQLiteGetRunNotFound(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	defer j.Close()

	_, err := j.GetRun("nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)

	trades, err := j.ListTradesByRunID("nonexistent")
	assert.NoError(t, err)
	assert.Empty(t, trades)
}

func TestSQLiteDuplicateRunRejected(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	defer j.Close()

	run, _, _, err := FromResult(sampleResult(t), "")
	require.NoError(t, err)
	require.NoError(t, j.RecordRun(run))
	assert.Error(t, j.RecordRun(run))
}

func TestSQLiteListRuns(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	defer j.Close()

	base, _, _, err := FromResult(sampleResult(t), "")
	require.NoError(t, err)
	for i, id := range []string{"A", "B", "C"} {
		r := base
		r.RunID = id
		r.Created = base.Created.Add(time.Duration(i) * time.Minute)
		require.NoError(t, j.RecordRun(r))
	}

	runs, err := j.ListRuns(0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "C", runs[0].RunID)
	assert.Equal(t, "A", runs[2].RunID)

	runs, err = j.ListRuns(2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestNullableMetricColumns(t *testing.T) {
	t.Parallel()

	j, path := newTestSQLite(t)

	run, _, _, err := FromResult(sampleResult(t), "")
	require.NoError(t, err)
	run.Report.ProfitFactor.Valid = false
	require.NoError(t, j.RecordRun(run))
	require.NoError(t, j.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var pf sql.NullFloat64
	require.NoError(t, db.QueryRow(`SELECT profit_factor FROM runs WHERE run_id = ?`, run.RunID).Scan(&pf))
	assert.False(t, pf.Valid)
}
