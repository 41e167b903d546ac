package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// Software represents the spectrometry software that produced a report.
	Software string

	// HalfLifeUnit represents the unit a half-life is tabulated in.
	HalfLifeUnit string

	// DatabaseBackend represents the database backend for caching and results.
	DatabaseBackend string

	// Agreement classifies measured activity against the predicted one.
	Agreement string
)

// All output modes supported.
const (
	TextOut    OutputMode = "text" // default
	CSVOut     OutputMode = "csv"
	JSONOut    OutputMode = "json"
	XLSXOut    OutputMode = "xlsx"
	ParquetOut OutputMode = "parquet"
)

// All report variants supported.
const (
	InterWinner Software = "interwinner" // candidate isotopes listing
	Genie2K     Software = "genie2k"     // peak table
)

// All half-life units supported.
const (
	Seconds HalfLifeUnit = "s"
	Minutes HalfLifeUnit = "m"
	Hours   HalfLifeUnit = "h"
	Days    HalfLifeUnit = "d"
	Years   HalfLifeUnit = "y"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// Agreement classes between measurement and prediction.
const (
	AgreementGood    Agreement = "Good"
	AgreementFair    Agreement = "Fair"
	AgreementPoor    Agreement = "Poor"
	AgreementMissing Agreement = "n/a"
)

// DateTimeLayout is the canonical acquisition and irradiation timestamp form.
const DateTimeLayout = "2006-01-02 15:04:05"

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut:    {},
	CSVOut:     {},
	JSONOut:    {},
	XLSXOut:    {},
	ParquetOut: {},
}

// ValidSoftware lists all valid report variants.
var ValidSoftware = map[Software]struct{}{
	InterWinner: {},
	Genie2K:     {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// HalfLifeSeconds maps each unit to its length in seconds. A year is 365 days.
var HalfLifeSeconds = map[HalfLifeUnit]float64{
	Seconds: 1,
	Minutes: 60,
	Hours:   60 * 60,
	Days:    60 * 60 * 24,
	Years:   60 * 60 * 24 * 365,
}
