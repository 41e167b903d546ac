package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/foilact/internal/contract"
	"github.com/huangsam/foilact/schema"
)

// Table names for result tracking.
const (
	runsTable       = "foilact_runs"
	activitiesTable = "foilact_activities"
)

// ResultStoreImpl implements the ResultStore interface.
type ResultStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.ResultStore = &ResultStoreImpl{} // Compile-time check

// NewResultStore opens the result tables on backend, creating them when needed.
func NewResultStore(backend schema.DatabaseBackend, connStr string) (*ResultStoreImpl, error) {
	if backend == schema.NoneBackend {
		return &ResultStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr, GetStoreDBFilePath())
	if err != nil {
		return nil, fmt.Errorf("result store: %w", err)
	}
	if err := createResultTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create result tables: %w", err)
	}
	return &ResultStoreImpl{db: db, backend: backend}, nil
}

// BeginRun creates a new run and returns its numeric ID.
func (rs *ResultStoreImpl) BeginRun(runUUID string, startTime time.Time, configParams map[string]any) (int64, error) {
	if rs.db == nil {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quotedTableName := quoteTableName(runsTable, rs.backend)
	query := fmt.Sprintf(`INSERT INTO %s (run_uuid, start_time, config_params) VALUES (%s)`,
		quotedTableName, placeholders(rs.backend, 3))
	args := []any{runUUID, formatTime(startTime, rs.backend), string(configJSON)}

	var runID int64
	switch rs.backend {
	case schema.PostgreSQLBackend:
		err = rs.db.QueryRow(query+" RETURNING run_id", args...).Scan(&runID)
	default: // SQLite and MySQL
		var result sql.Result
		result, err = rs.db.Exec(query, args...)
		if err == nil {
			runID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	return runID, nil
}

// RecordTarget stores one row per nuclide of result.
func (rs *ResultStoreImpl) RecordTarget(runID int64, result schema.TargetResult) error {
	if rs.db == nil || len(result.Nuclides) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (run_id, target_id, nuclide, material, irradiation_end, beam_energy,
		                predicted, mean_act_eob, err_mean_act_eob, thin_target_yield,
		                err_thin_target_yield, measurements)
		VALUES (%s)
	`, quoteTableName(activitiesTable, rs.backend), placeholders(rs.backend, 12))

	tx, err := rs.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	stmt, err := tx.Prepare(query)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to prepare activity insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, n := range result.Nuclides {
		if _, err := stmt.Exec(
			runID, result.TargetID, n.Nuclide, result.Material, result.IrradiationEnd, result.BeamEnergy,
			n.Predicted, n.MeanActEoB, n.ErrMeanActEoB, n.ThinTargetYield,
			n.ErrThinYield, n.Measurements,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert activity %s/%s: %w", result.TargetID, n.Nuclide, err)
		}
	}
	return tx.Commit()
}

// EndRun updates the run with completion data.
func (rs *ResultStoreImpl) EndRun(runID int64, endTime time.Time, totalTargets int) error {
	if rs.db == nil {
		return nil
	}

	quotedTableName := quoteTableName(runsTable, rs.backend)
	row := rs.db.QueryRow(fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = %s`,
		quotedTableName, placeholders(rs.backend, 1)), runID)
	startTime, err := rs.scanTime(row)
	if err != nil {
		return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}

	durationMs := endTime.Sub(startTime).Milliseconds()
	var query string
	switch rs.backend {
	case schema.PostgreSQLBackend:
		query = fmt.Sprintf(`UPDATE %s SET end_time = $1, duration_ms = $2, total_targets = $3 WHERE run_id = $4`, quotedTableName)
	default: // SQLite and MySQL
		query = fmt.Sprintf(`UPDATE %s SET end_time = ?, duration_ms = ?, total_targets = ? WHERE run_id = ?`, quotedTableName)
	}
	if _, err := rs.db.Exec(query, formatTime(endTime, rs.backend), durationMs, totalTargets, runID); err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (rs *ResultStoreImpl) Close() error {
	if rs.db != nil {
		return rs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the result store.
func (rs *ResultStoreImpl) GetStatus() (schema.StoreStatus, error) {
	status := schema.StoreStatus{
		Backend:    string(rs.backend),
		Connected:  rs.db != nil,
		TableSizes: make(map[string]int64),
	}
	if rs.db == nil {
		return status, nil
	}

	quotedRuns := quoteTableName(runsTable, rs.backend)
	if err := rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedRuns)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		row := rs.db.QueryRow(fmt.Sprintf("SELECT run_id FROM %s ORDER BY run_id DESC LIMIT 1", quotedRuns))
		if err := row.Scan(&status.LastRunID); err != nil {
			return status, fmt.Errorf("failed to get last run id: %w", err)
		}
		last, err := rs.scanTime(rs.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id DESC LIMIT 1", quotedRuns)))
		if err != nil {
			return status, fmt.Errorf("failed to get last run time: %w", err)
		}
		status.LastRunTime = last
		oldest, err := rs.scanTime(rs.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", quotedRuns)))
		if err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		status.OldestRunTime = oldest

		row = rs.db.QueryRow(fmt.Sprintf("SELECT COALESCE(SUM(total_targets), 0) FROM %s", quotedRuns))
		if err := row.Scan(&status.TotalTargets); err != nil {
			return status, fmt.Errorf("failed to get total targets: %w", err)
		}
	}

	for _, table := range []string{runsTable, activitiesTable} {
		var count int64
		row := rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, rs.backend)))
		if err := row.Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	return status, nil
}

// GetAllRuns returns every recorded run ordered by ID.
func (rs *ResultStoreImpl) GetAllRuns() ([]schema.RunRecord, error) {
	if rs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, run_uuid, start_time, end_time, duration_ms, total_targets, config_params
		FROM %s ORDER BY run_id`, quoteTableName(runsTable, rs.backend))
	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRecord
	for rows.Next() {
		var record schema.RunRecord
		switch rs.backend {
		case schema.SQLiteBackend:
			var startStr string
			var endStr *string
			if err := rows.Scan(&record.RunID, &record.RunUUID, &startStr, &endStr,
				&record.DurationMs, &record.TotalTargets, &record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan run: %w", err)
			}
			if record.StartTime, err = time.Parse(time.RFC3339Nano, startStr); err != nil {
				return nil, fmt.Errorf("failed to parse start_time: %w", err)
			}
			if endStr != nil {
				end, err := time.Parse(time.RFC3339Nano, *endStr)
				if err != nil {
					return nil, fmt.Errorf("failed to parse end_time: %w", err)
				}
				record.EndTime = &end
			}
		default: // MySQL and PostgreSQL
			if err := rows.Scan(&record.RunID, &record.RunUUID, &record.StartTime, &record.EndTime,
				&record.DurationMs, &record.TotalTargets, &record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan run: %w", err)
			}
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return results, nil
}

// GetAllActivities returns every recorded activity row.
func (rs *ResultStoreImpl) GetAllActivities() ([]schema.ActivityRecord, error) {
	if rs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, target_id, nuclide, material, irradiation_end, beam_energy,
		predicted, mean_act_eob, err_mean_act_eob, thin_target_yield, err_thin_target_yield, measurements
		FROM %s ORDER BY run_id, target_id, nuclide`, quoteTableName(activitiesTable, rs.backend))
	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.ActivityRecord
	for rows.Next() {
		var r schema.ActivityRecord
		if err := rows.Scan(&r.RunID, &r.TargetID, &r.Nuclide, &r.Material, &r.IrradiationEnd, &r.BeamEnergy,
			&r.Predicted, &r.MeanActEoB, &r.ErrMeanActEoB, &r.ThinTargetYield, &r.ErrThinYield, &r.Measurements); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activities: %w", err)
	}
	return results, nil
}

// scanTime reads a single timestamp column, stored as text on SQLite.
func (rs *ResultStoreImpl) scanTime(row *sql.Row) (time.Time, error) {
	if rs.backend != schema.SQLiteBackend {
		var t time.Time
		err := row.Scan(&t)
		return t, err
	}
	var s string
	if err := row.Scan(&s); err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339Nano, s)
}

// formatTime converts a time.Time to the appropriate format for the backend.
func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	if backend == schema.SQLiteBackend {
		return t.UTC().Format(time.RFC3339Nano)
	}
	return t
}
