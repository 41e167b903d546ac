package iocache

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/huangsam/foilact/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTarget(id string) schema.TargetResult {
	return schema.TargetResult{
		TargetID:       id,
		Material:       "Nb",
		IrradiationEnd: "2024-03-01 10:00:00",
		BeamEnergy:     17.4,
		Nuclides: []schema.NuclideResult{
			{Nuclide: "Zr-89", Predicted: 1200, MeanActEoB: 1100, ErrMeanActEoB: 40, Measurements: 2},
			{Nuclide: "Nb-92m", MeanActEoB: 50, ErrMeanActEoB: 5, Measurements: 1},
		},
	}
}

func TestResultStore_NoneBackend(t *testing.T) {
	store, err := NewResultStore(schema.NoneBackend, "")
	require.NoError(t, err)

	runID, err := store.BeginRun("uuid", time.Now(), map[string]any{"k": "v"})
	assert.NoError(t, err)
	assert.Equal(t, int64(0), runID)
	assert.NoError(t, store.RecordTarget(1, sampleTarget("a12")))
	assert.NoError(t, store.EndRun(1, time.Now(), 1))

	runs, err := store.GetAllRuns()
	assert.NoError(t, err)
	assert.Empty(t, runs)
	assert.NoError(t, store.Close())
}

func TestResultStore_SQLite(t *testing.T) {
	store, err := NewResultStore(schema.SQLiteBackend, filepath.Join(t.TempDir(), "results.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	runID, err := store.BeginRun("6f1c", start, map[string]any{"software": "interwinner", "workers": 2})
	require.NoError(t, err)
	assert.Greater(t, runID, int64(0))

	require.NoError(t, store.RecordTarget(runID, sampleTarget("a12")))
	require.NoError(t, store.RecordTarget(runID, sampleTarget("a13")))
	require.NoError(t, store.RecordTarget(runID, schema.TargetResult{TargetID: "empty"}))
	require.NoError(t, store.EndRun(runID, start.Add(2500*time.Millisecond), 3))

	// Same target and nuclide twice in one run violates the primary key
	assert.Error(t, store.RecordTarget(runID, sampleTarget("a12")))

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "6f1c", runs[0].RunUUID)
	assert.True(t, start.Equal(runs[0].StartTime))
	require.NotNil(t, runs[0].EndTime)
	require.NotNil(t, runs[0].DurationMs)
	assert.Equal(t, int64(2500), *runs[0].DurationMs)
	require.NotNil(t, runs[0].TotalTargets)
	assert.Equal(t, int64(3), *runs[0].TotalTargets)
	require.NotNil(t, runs[0].ConfigParams)
	assert.JSONEq(t, `{"software":"interwinner","workers":2}`, *runs[0].ConfigParams)

	rows, err := store.GetAllActivities()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "a12", rows[0].TargetID)
	assert.Equal(t, "Nb-92m", rows[0].Nuclide)
	assert.Equal(t, "Zr-89", rows[1].Nuclide)
	assert.Equal(t, 1100.0, rows[1].MeanActEoB)
	assert.Equal(t, int64(2), rows[1].Measurements)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 1, status.TotalRuns)
	assert.Equal(t, runID, status.LastRunID)
	assert.Equal(t, 3, status.TotalTargets)
	assert.Equal(t, int64(4), status.TableSizes[activitiesTable])
	assert.Equal(t, int64(1), status.TableSizes[runsTable])

	var buf bytes.Buffer
	PrintStoreStatus(&buf, status)
	assert.Contains(t, buf.String(), "Total Runs: 1")
	assert.Contains(t, buf.String(), "foilact_activities: 4 rows")
}

func TestResultStore_EndUnknownRun(t *testing.T) {
	store, err := NewResultStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	assert.Error(t, store.EndRun(42, time.Now(), 0))
}

func TestMigrateResults_NoneBackend(t *testing.T) {
	err := MigrateResults(schema.NoneBackend, "", -1)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not supported for NoneBackend")
}

func TestMigrateResults_SQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migrate.db")

	require.NoError(t, MigrateResults(schema.SQLiteBackend, dbPath, -1))
	_, err := os.Stat(dbPath)
	assert.NoError(t, err)

	// No change
	assert.NoError(t, MigrateResults(schema.SQLiteBackend, dbPath, -1))
	assert.NoError(t, MigrateResults(schema.SQLiteBackend, dbPath, 1))
	assert.NoError(t, MigrateResults(schema.SQLiteBackend, dbPath, 0))
	assert.NoError(t, MigrateResults(schema.SQLiteBackend, dbPath, 2))

	// The store opens cleanly on a migrated database
	store, err := NewResultStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	assert.NoError(t, store.Close())
}

func TestInitAndCloseStores(t *testing.T) {
	dir := t.TempDir()
	initOnce = sync.Once{}
	closeOnce = sync.Once{}
	t.Cleanup(func() {
		initOnce = sync.Once{}
		closeOnce = sync.Once{}
		Manager = &StoreManagerImpl{}
	})

	cachePath := filepath.Join(dir, "cache.db")
	storePath := filepath.Join(dir, "results.db")
	require.NoError(t, InitStores(schema.SQLiteBackend, cachePath, schema.SQLiteBackend, storePath))
	// Idempotent
	require.NoError(t, InitStores(schema.SQLiteBackend, cachePath, schema.SQLiteBackend, storePath))

	assert.NotNil(t, Manager.GetReportCache())
	assert.NotNil(t, Manager.GetResultStore())

	CloseStores()
	CloseStores()

	for _, p := range []string{cachePath, storePath} {
		_, err := os.Stat(p)
		assert.NoError(t, err)
	}

	require.NoError(t, ClearReportCache(schema.SQLiteBackend, cachePath, ""))
	require.NoError(t, ClearResults(schema.SQLiteBackend, storePath, ""))
	for _, p := range []string{cachePath, storePath} {
		_, err := os.Stat(p)
		assert.True(t, os.IsNotExist(err))
	}
}

func TestInitStoresFailure(t *testing.T) {
	initOnce = sync.Once{}
	t.Cleanup(func() {
		initOnce = sync.Once{}
		Manager = &StoreManagerImpl{}
	})

	err := InitStores(schema.DatabaseBackend("redis"), "", "", "")
	assert.Error(t, err)
	assert.Nil(t, Manager.GetReportCache())
}

func TestClearTables(t *testing.T) {
	assert.NoError(t, ClearResults(schema.NoneBackend, "", ""))
	assert.Error(t, ClearResults(schema.SQLiteBackend, "", ""))
	assert.Error(t, ClearReportCache(schema.DatabaseBackend("redis"), "", ""))
	// Removing a file that does not exist is fine
	assert.NoError(t, ClearReportCache(schema.SQLiteBackend, filepath.Join(t.TempDir(), "none.db"), ""))
}

func TestExportResults(t *testing.T) {
	dir := t.TempDir()
	store, err := NewResultStore(schema.SQLiteBackend, filepath.Join(dir, "results.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	var buf bytes.Buffer
	out := filepath.Join(dir, "export")
	assert.Error(t, ExportResults(store, "", &buf))
	assert.Error(t, ExportResults(nil, out, &buf))
	assert.ErrorContains(t, ExportResults(store, out, &buf), "no results")

	runID, err := store.BeginRun("r1", time.Now(), nil)
	require.NoError(t, err)
	require.NoError(t, store.RecordTarget(runID, sampleTarget("a12")))
	require.NoError(t, store.EndRun(runID, time.Now(), 1))

	require.NoError(t, ExportResults(store, out, &buf))
	assert.Contains(t, buf.String(), "Exported 1 runs")
	assert.Contains(t, buf.String(), "Exported 2 activity records")
	for _, suffix := range []string{".runs.parquet", ".activities.parquet"} {
		info, err := os.Stat(out + suffix)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}
}

func TestStoreManager(t *testing.T) {
	cache := &MockCacheStore{}
	results := &MockResultStore{}
	mgr := NewStoreManager(cache, results)
	assert.Same(t, cache, mgr.GetReportCache())
	assert.Same(t, results, mgr.GetResultStore())
}
