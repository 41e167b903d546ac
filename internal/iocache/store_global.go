package iocache

import (
	"database/sql"
	"fmt"
	"os"
	"sync"

	"github.com/huangsam/foilact/internal/contract"
	"github.com/huangsam/foilact/schema"
)

// reportCacheTable is the name of the table for parsed-report caching.
const reportCacheTable = "foilact_report_cache"

// Global Manager instance for main logic.
var (
	Manager   = &StoreManagerImpl{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// GetCacheDBFilePath returns the path to the SQLite DB file for the report cache.
func GetCacheDBFilePath() string {
	return contract.GetCacheDBFilePath()
}

// GetStoreDBFilePath returns the path to the SQLite DB file for the result store.
func GetStoreDBFilePath() string {
	return contract.GetStoreDBFilePath()
}

// InitStores initializes the global manager with the report cache and result store.
// An empty backend leaves the corresponding store unset.
func InitStores(cacheBackend schema.DatabaseBackend, cacheConnStr string, storeBackend schema.DatabaseBackend, storeConnStr string) error {
	var initErr error

	initOnce.Do(func() {
		var reports contract.CacheStore
		if cacheBackend != "" {
			cs, err := NewCacheStore(reportCacheTable, cacheBackend, cacheConnStr)
			if err != nil {
				initErr = fmt.Errorf("failed to initialize report cache: %w", err)
				return
			}
			reports = cs
		}

		var results contract.ResultStore
		if storeBackend != "" {
			rs, err := NewResultStore(storeBackend, storeConnStr)
			if err != nil {
				if reports != nil {
					_ = reports.Close()
				}
				initErr = fmt.Errorf("failed to initialize result store: %w", err)
				return
			}
			results = rs
		}

		Manager.Lock()
		Manager.reports = reports
		Manager.results = results
		Manager.Unlock()
	})

	return initErr
}

// CloseStores should be called on application shutdown.
func CloseStores() {
	closeOnce.Do(func() {
		Manager.Lock()
		defer Manager.Unlock()
		if Manager.reports != nil {
			_ = Manager.reports.Close()
		}
		if Manager.results != nil {
			_ = Manager.results.Close()
		}
	})
}

// ClearReportCache removes every cached report. SQLite deletes the database file,
// MySQL and PostgreSQL drop the table.
func ClearReportCache(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	return clearTables(backend, dbFilePath, connStr, reportCacheTable)
}

// ClearResults removes every recorded run and activity.
func ClearResults(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	return clearTables(backend, dbFilePath, connStr, activitiesTable, runsTable, "schema_migrations")
}

func clearTables(backend schema.DatabaseBackend, dbFilePath, connStr string, tables ...string) error {
	switch backend {
	case schema.SQLiteBackend:
		if dbFilePath == "" {
			return fmt.Errorf("dbFilePath cannot be empty for SQLite backend")
		}
		if err := os.Remove(dbFilePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove SQLite database file %s: %w", dbFilePath, err)
		}
		return nil

	case schema.MySQLBackend, schema.PostgreSQLBackend:
		for _, table := range tables {
			if err := clearSQLTable(backend, connStr, table); err != nil {
				return err
			}
		}
		return nil

	case schema.NoneBackend:
		return nil

	default:
		return fmt.Errorf("unsupported backend for clearing: %s", backend)
	}
}

// clearSQLTable connects to the SQL database and drops the table if it exists.
func clearSQLTable(backend schema.DatabaseBackend, connStr, tableName string) error {
	db, err := sql.Open(driverName(backend), connStr)
	if err != nil {
		return fmt.Errorf("failed to connect to %s database: %w", backend, err)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping %s database: %w", backend, err)
	}

	query := fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteTableName(tableName, backend))
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", tableName, err)
	}
	return nil
}
