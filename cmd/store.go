package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/foilact/internal/contract"
	"github.com/huangsam/foilact/internal/iocache"
	"github.com/huangsam/foilact/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// storeBackends reads and validates both backends from the loaded configuration.
func storeBackends() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	cacheBackend := schema.DatabaseBackend(viper.GetString("cache-backend"))
	cacheConn := viper.GetString("cache-db-connect")
	if err := contract.ValidateDatabaseConnectionString(cacheBackend, cacheConn); err != nil {
		return err
	}

	// Handle empty backend as NoneBackend
	storeBackend := schema.DatabaseBackend(viper.GetString("store-backend"))
	if storeBackend == "" {
		storeBackend = schema.NoneBackend
	}
	storeConn := viper.GetString("store-db-connect")
	if err := contract.ValidateDatabaseConnectionString(storeBackend, storeConn); err != nil {
		return err
	}

	cfg.CacheBackend = cacheBackend
	cfg.CacheDBConnect = cacheConn
	cfg.StoreBackend = storeBackend
	cfg.StoreDBConnect = storeConn
	cfg.OutputFile = viper.GetString("output-file")
	return nil
}

// storeSetup loads minimal configuration needed for store operations.
// This is used by commands that need store access without full shared setup.
func storeSetup(_ *cobra.Command, _ []string) error {
	if err := storeBackends(); err != nil {
		return err
	}
	if err := iocache.InitStores(cfg.CacheBackend, cfg.CacheDBConnect, cfg.StoreBackend, cfg.StoreDBConnect); err != nil {
		return fmt.Errorf("failed to initialize stores: %w", err)
	}
	storeManager = iocache.Manager
	return nil
}

// storeMigrateSetup does NOT initialize stores or create tables, allowing migrations
// to run on a fresh database.
func storeMigrateSetup(_ *cobra.Command, _ []string) error {
	if err := storeBackends(); err != nil {
		return err
	}
	// For SQLite backend with empty connection string, use default path
	if cfg.StoreBackend == schema.SQLiteBackend && cfg.StoreDBConnect == "" {
		cfg.StoreDBConnect = contract.GetStoreDBFilePath()
	}
	return nil
}

// storeCmd focused on report cache and result store management.
//
// Note: Store subcommands use minimal initialization instead of the full sharedSetup
// used by pipeline commands. This avoids reference data validation for simple
// store operations.
var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the report cache and the result store",
	Long: `Manage the parsed-report cache and the history of pipeline runs.

The report cache keeps parsed reports keyed by file path, size and modification time
so repeated runs skip parsing. The result store, when enabled, records every run and
its per-target, per-nuclide activities.

Supported backends: SQLite, MySQL, PostgreSQL, or None

Subcommands:
  status  - Show cache and store statistics
  clear   - Remove cached reports and/or recorded runs
  export  - Export recorded runs to Parquet
  migrate - Run result store schema migrations

Examples:
  foilact store status
  foilact store export --store-backend sqlite --output-file history`,
}

// storeStatusCmd shows cache and store status.
var storeStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Display cache and store statistics and connection details",
	Args:    cobra.NoArgs,
	PreRunE: storeSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if cache := storeManager.GetReportCache(); cache != nil {
			status, err := cache.GetStatus()
			if err != nil {
				contract.LogFatal("Failed to get cache status", err)
			}
			iocache.PrintCacheStatus(os.Stdout, status)
		}
		if results := storeManager.GetResultStore(); results != nil {
			status, err := results.GetStatus()
			if err != nil {
				contract.LogFatal("Failed to get store status", err)
			}
			iocache.PrintStoreStatus(os.Stdout, status)
		}
	},
}

// storeClearCmd clears cached reports, recorded results or both.
var storeClearCmd = &cobra.Command{
	Use:   "clear [cache|results|all]",
	Short: "Remove cached reports and/or recorded runs",
	Long: `Delete cached reports, recorded runs, or both (the default).

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the tables

WARNING: Clearing results cannot be undone. Consider exporting first.`,
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"cache", "results", "all"},
	PreRunE:   storeMigrateSetup,
	Run: func(_ *cobra.Command, args []string) {
		what := "all"
		if len(args) == 1 {
			what = args[0]
		}
		if what == "cache" || what == "all" {
			if err := iocache.ClearReportCache(cfg.CacheBackend, contract.GetCacheDBFilePath(), cfg.CacheDBConnect); err != nil {
				contract.LogFatal("Failed to clear report cache", err)
			}
			fmt.Println("Report cache cleared successfully.")
		}
		if (what == "results" || what == "all") && cfg.StoreBackend != schema.NoneBackend {
			if err := iocache.ClearResults(cfg.StoreBackend, contract.GetStoreDBFilePath(), cfg.StoreDBConnect); err != nil {
				contract.LogFatal("Failed to clear results", err)
			}
			fmt.Println("Result store cleared successfully.")
		}
	},
}

// storeExportCmd exports recorded runs to Parquet files.
var storeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export recorded runs and activities to Parquet",
	Long: `Export all recorded runs and activities to two Parquet files named after
--output-file (<name>.runs.parquet and <name>.activities.parquet).

Examples:
  foilact store export --output-file history
  duckdb -c "SELECT * FROM read_parquet('history.activities.parquet') LIMIT 10"`,
	Args:    cobra.NoArgs,
	PreRunE: storeSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExportResults(storeManager.GetResultStore(), cfg.OutputFile, os.Stdout); err != nil {
			contract.LogFatal("Failed to export results", err)
		}
	},
}

// storeMigrateCmd runs database migrations for the result store.
var storeMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run result store schema migrations (upgrades/downgrades)",
	Long: `Manage schema versions of the result store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  foilact store migrate --store-backend sqlite
  foilact store migrate --target-version 0`,
	Args:    cobra.NoArgs,
	PreRunE: storeMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateResults(cfg.StoreBackend, cfg.StoreDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
