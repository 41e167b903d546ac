// Package cmd defines the command-line interface for foilact.
package cmd

import (
	"github.com/huangsam/foilact/internal/contract"
	"github.com/huangsam/foilact/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(calibrateCmd)
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(transportCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(storeCmd)
	rootCmd.AddCommand(mcpCmd)

	// Add the store subcommands to the parent store command
	storeCmd.AddCommand(storeStatusCmd)
	storeCmd.AddCommand(storeClearCmd)
	storeCmd.AddCommand(storeExportCmd)
	storeCmd.AddCommand(storeMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("nuclide-data", "", "Workbook with the NuclideData sheet and one gamma-line sheet per nuclide")
	rootCmd.PersistentFlags().String("materials-data", "", "Workbook with the material nuclide inventory and molecular weights")
	rootCmd.PersistentFlags().String("beam-data", "", "Workbook with the beam characteristics per degrader")
	rootCmd.PersistentFlags().String("irradiations", "", "Workbook with the irradiation log")
	rootCmd.PersistentFlags().String("xs-dir", "", "Directory of monitor cross-section tables (<Element-Mass>.csv)")
	rootCmd.PersistentFlags().String("reports-dir", "", "Directory of gamma spectrometry reports")
	rootCmd.PersistentFlags().String("software", string(schema.InterWinner), "Report format: interwinner or genie2k")
	rootCmd.PersistentFlags().Int("degree", contract.DefaultDegree, "Number of coefficients of the efficiency regression")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or xlsx or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Report cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("store-backend", string(schema.NoneBackend), "Result store backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("store-db-connect", "", "Database connection string for the result store (SQLite files must differ from the cache)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug or info or warn or error")
	rootCmd.PersistentFlags().String("log-file", "", "Also write JSON logs to this size-rotated file")
	rootCmd.PersistentFlags().String("simulator", "TRIM", "Ion transport executable used by the transport command")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of calibrateCmd to Viper
	calibrateCmd.Flags().Float64Slice("energies", nil, "Energies (keV) at which to evaluate every fitted curve")
	if err := viper.BindPFlags(calibrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding calibrate flags", err)
	}

	// Bind all flags of transportCmd to Viper
	transportCmd.Flags().String("deck", "", "YAML input deck describing the beam and target layers")
	transportCmd.Flags().String("transport-output", "", "Directory holding an existing TRANSMIT.txt (skips the simulation)")
	if err := viper.BindPFlags(transportCmd.Flags()); err != nil {
		contract.LogFatal("Error binding transport flags", err)
	}

	// Bind all flags of storeMigrateCmd to Viper
	storeMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(storeMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding store migrate flags", err)
	}
}
