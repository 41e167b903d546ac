package contract

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/huangsam/foilact/schema"
)

// Default values for configuration.
const (
	DefaultPrecision = 3
	DefaultDegree    = 5
	MinDegree        = 2
	MaxDegree        = 8
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// EfficiencySourceRaw maps a detector to the workbook holding its calibration sheets.
// A list is used instead of a map because viper lower-cases map keys.
type EfficiencySourceRaw struct {
	Detector string `mapstructure:"detector" yaml:"detector"`
	Workbook string `mapstructure:"workbook" yaml:"workbook"`
}

// Config holds the runtime configuration for a run.
// This struct remains the "final, validated" config.
type Config struct {
	NuclideData   string
	MaterialsData string
	BeamData      string
	Irradiations  string
	XSDir         string
	Efficiency    map[string]string // detector -> workbook
	ReportsDir    string

	Software schema.Software
	Degree   int
	Workers  int

	Output     schema.OutputMode
	OutputFile string
	Precision  int
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	StoreBackend   schema.DatabaseBackend
	StoreDBConnect string // Please use env var as this is plaintext

	LogLevel string
	LogFile  string

	Simulator string // transport executable
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Reference data ---
	NuclideData   string                `mapstructure:"nuclide-data" yaml:"nuclide-data"`
	MaterialsData string                `mapstructure:"materials-data" yaml:"materials-data"`
	BeamData      string                `mapstructure:"beam-data" yaml:"beam-data"`
	Irradiations  string                `mapstructure:"irradiations" yaml:"irradiations"`
	XSDir         string                `mapstructure:"xs-dir" yaml:"xs-dir"`
	Efficiency    []EfficiencySourceRaw `mapstructure:"efficiency" yaml:"efficiency"`
	ReportsDir    string                `mapstructure:"reports-dir" yaml:"reports-dir"`

	// --- Processing ---
	Software string `mapstructure:"software" yaml:"software"`
	Degree   int    `mapstructure:"degree" yaml:"degree"`
	Workers  int    `mapstructure:"workers" yaml:"workers"`

	// --- Output ---
	Output     string `mapstructure:"output" yaml:"output"`
	OutputFile string `mapstructure:"output-file" yaml:"output-file"`
	Precision  int    `mapstructure:"precision" yaml:"precision"`
	Width      int    `mapstructure:"width" yaml:"width"`
	Color      string `mapstructure:"color" yaml:"color"`

	// --- Persistence ---
	CacheBackend   string `mapstructure:"cache-backend" yaml:"cache-backend"`
	CacheDBConnect string `mapstructure:"cache-db-connect" yaml:"-"`
	StoreBackend   string `mapstructure:"store-backend" yaml:"store-backend"`
	StoreDBConnect string `mapstructure:"store-db-connect" yaml:"-"`

	// --- Logging ---
	LogLevel string `mapstructure:"log-level" yaml:"log-level"`
	LogFile  string `mapstructure:"log-file" yaml:"log-file"`

	// --- Transport ---
	Simulator string `mapstructure:"simulator" yaml:"simulator"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Efficiency != nil {
		clone.Efficiency = make(map[string]string, len(c.Efficiency))
		maps.Copy(clone.Efficiency, c.Efficiency)
	}
	return &clone
}

// Detectors returns the configured detector names in a stable order.
func (c *Config) Detectors() []string {
	return slices.Sorted(maps.Keys(c.Efficiency))
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	if err := processReferencePaths(cfg, input); err != nil {
		return err
	}
	return nil
}

// validateSimpleInputs handles the scalar processing options.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.Software = schema.Software(strings.ToLower(strings.TrimSpace(input.Software)))
	if _, ok := schema.ValidSoftware[cfg.Software]; !ok {
		return fmt.Errorf("%w: invalid software '%s'. must be interwinner or genie2k", ErrConfiguration, input.Software)
	}

	if input.Degree < MinDegree || input.Degree > MaxDegree {
		return fmt.Errorf("%w: degree must be between %d and %d", ErrConfiguration, MinDegree, MaxDegree)
	}
	cfg.Degree = input.Degree

	if input.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1", ErrConfiguration)
	}
	cfg.Workers = input.Workers

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("%w: invalid output format '%s'. must be text, csv, json, xlsx, parquet", ErrConfiguration, input.Output)
	}
	cfg.OutputFile = strings.TrimSpace(input.OutputFile)
	if (cfg.Output == schema.XLSXOut || cfg.Output == schema.ParquetOut) && cfg.OutputFile == "" {
		return fmt.Errorf("%w: --output-file is required for %s output", ErrConfiguration, cfg.Output)
	}

	if input.Precision < 1 || input.Precision > 10 {
		return fmt.Errorf("%w: precision must be between 1 and 10", ErrConfiguration)
	}
	cfg.Precision = input.Precision
	cfg.Width = input.Width

	useColors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("%w: invalid color value: %v", ErrConfiguration, err)
	}
	cfg.UseColors = useColors

	cfg.LogLevel = input.LogLevel
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	cfg.LogFile = input.LogFile
	cfg.Simulator = input.Simulator
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("%w: a connection string is required when using %s backend", ErrConfiguration, backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("%w: MySQL connection string must contain '@tcp(' for host:port specification", ErrConfiguration)
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("%w: MySQL connection string must contain '/' followed by database name", ErrConfiguration)
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("%w: a connection string is required when using %s backend", ErrConfiguration, backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("%w: PostgreSQL connection string must contain 'host=' parameter", ErrConfiguration)
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("%w: PostgreSQL connection string must contain 'dbname=' parameter", ErrConfiguration)
		}
	}
	return nil
}

// validateBackendConfigs validates cache and result store backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("%w: invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", ErrConfiguration, input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	cfg.StoreBackend = schema.DatabaseBackend(strings.ToLower(input.StoreBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.StoreBackend]; !ok {
		return fmt.Errorf("%w: invalid store backend '%s'. must be sqlite, mysql, postgresql, none", ErrConfiguration, input.StoreBackend)
	}
	cfg.StoreDBConnect = input.StoreDBConnect
	if err := ValidateDatabaseConnectionString(cfg.StoreBackend, cfg.StoreDBConnect); err != nil {
		return err
	}

	// Both stores may share a server but never the same SQLite file
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.StoreBackend == schema.SQLiteBackend {
		cachePath := cfg.CacheDBConnect
		if cachePath == "" {
			cachePath = GetCacheDBFilePath()
		}
		storePath := cfg.StoreDBConnect
		if storePath == "" {
			storePath = GetStoreDBFilePath()
		}
		if cachePath == storePath {
			return fmt.Errorf("%w: cache and result store must use different SQLite database files. Both resolve to %q", ErrConfiguration, cachePath)
		}
	}
	return nil
}

// processReferencePaths copies reference locations and resolves the detector map.
func processReferencePaths(cfg *Config, input *ConfigRawInput) error {
	cfg.NuclideData = input.NuclideData
	cfg.MaterialsData = input.MaterialsData
	cfg.BeamData = input.BeamData
	cfg.Irradiations = input.Irradiations
	cfg.XSDir = input.XSDir
	cfg.ReportsDir = input.ReportsDir

	cfg.Efficiency = make(map[string]string, len(input.Efficiency))
	for _, src := range input.Efficiency {
		detector := strings.TrimSpace(src.Detector)
		if detector == "" || strings.TrimSpace(src.Workbook) == "" {
			return fmt.Errorf("%w: efficiency entries need both detector and workbook", ErrConfiguration)
		}
		if _, dup := cfg.Efficiency[detector]; dup {
			return fmt.Errorf("%w: detector %q listed twice under efficiency", ErrConfiguration, detector)
		}
		cfg.Efficiency[detector] = src.Workbook
	}
	return nil
}

// ValidateRunInputs checks that every reference location needed by a full run exists.
func ValidateRunInputs(cfg *Config) error {
	files := map[string]string{
		"nuclide-data":   cfg.NuclideData,
		"materials-data": cfg.MaterialsData,
		"beam-data":      cfg.BeamData,
		"irradiations":   cfg.Irradiations,
	}
	for _, key := range slices.Sorted(maps.Keys(files)) {
		if err := requireFile(key, files[key]); err != nil {
			return err
		}
	}
	for _, key := range []string{"xs-dir", "reports-dir"} {
		dir := cfg.XSDir
		if key == "reports-dir" {
			dir = cfg.ReportsDir
		}
		if err := requireDir(key, dir); err != nil {
			return err
		}
	}
	if len(cfg.Efficiency) == 0 {
		return fmt.Errorf("%w: at least one efficiency workbook must be configured", ErrConfiguration)
	}
	for _, detector := range cfg.Detectors() {
		if err := requireFile("efficiency workbook for "+detector, cfg.Efficiency[detector]); err != nil {
			return err
		}
	}
	return nil
}

func requireFile(key, path string) error {
	if path == "" {
		return fmt.Errorf("%w: %s is not set", ErrConfiguration, key)
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %s %q: %v", ErrConfiguration, key, path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s %q is a directory", ErrConfiguration, key, path)
	}
	return nil
}

func requireDir(key, path string) error {
	if path == "" {
		return fmt.Errorf("%w: %s is not set", ErrConfiguration, key)
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %s %q: %v", ErrConfiguration, key, path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s %q is not a directory", ErrConfiguration, key, path)
	}
	return nil
}

// GetCacheDBFilePath returns the path to the SQLite DB file for the report cache.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".foilact_cache.db"
	}
	return filepath.Join(homeDir, ".foilact_cache.db")
}

// GetStoreDBFilePath returns the path to the SQLite DB file for the result store.
func GetStoreDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".foilact_results.db"
	}
	return filepath.Join(homeDir, ".foilact_results.db")
}
