package contract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/foilact/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRawInput() *ConfigRawInput {
	return &ConfigRawInput{
		Software:     "interwinner",
		Degree:       DefaultDegree,
		Workers:      2,
		Output:       "text",
		Precision:    DefaultPrecision,
		Color:        "no",
		CacheBackend: "none",
		StoreBackend: "none",
		Efficiency: []EfficiencySourceRaw{
			{Detector: "OIPA Lab 35", Workbook: "lab35.xlsx"},
		},
	}
}

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*ConfigRawInput)
		expectError bool
	}{
		{name: "valid minimal config", mutate: func(*ConfigRawInput) {}},
		{name: "software is case-insensitive", mutate: func(in *ConfigRawInput) { in.Software = "Genie2K" }},
		{name: "invalid software", mutate: func(in *ConfigRawInput) { in.Software = "gammavision" }, expectError: true},
		{name: "degree too small", mutate: func(in *ConfigRawInput) { in.Degree = 1 }, expectError: true},
		{name: "degree too large", mutate: func(in *ConfigRawInput) { in.Degree = 12 }, expectError: true},
		{name: "zero workers", mutate: func(in *ConfigRawInput) { in.Workers = 0 }, expectError: true},
		{name: "invalid output", mutate: func(in *ConfigRawInput) { in.Output = "html" }, expectError: true},
		{name: "xlsx without file", mutate: func(in *ConfigRawInput) { in.Output = "xlsx" }, expectError: true},
		{
			name: "xlsx with file",
			mutate: func(in *ConfigRawInput) {
				in.Output = "xlsx"
				in.OutputFile = "out.xlsx"
			},
		},
		{name: "bad precision", mutate: func(in *ConfigRawInput) { in.Precision = 0 }, expectError: true},
		{name: "bad color", mutate: func(in *ConfigRawInput) { in.Color = "sometimes" }, expectError: true},
		{name: "invalid cache backend", mutate: func(in *ConfigRawInput) { in.CacheBackend = "redis" }, expectError: true},
		{
			name: "mysql without connection string",
			mutate: func(in *ConfigRawInput) {
				in.StoreBackend = "mysql"
			},
			expectError: true,
		},
		{
			name: "valid mysql store",
			mutate: func(in *ConfigRawInput) {
				in.StoreBackend = "mysql"
				in.StoreDBConnect = "user:pass@tcp(localhost:3306)/foilact"
			},
		},
		{
			name: "same sqlite file for both stores",
			mutate: func(in *ConfigRawInput) {
				in.CacheBackend = "sqlite"
				in.StoreBackend = "sqlite"
				in.CacheDBConnect = "/tmp/shared.db"
				in.StoreDBConnect = "/tmp/shared.db"
			},
			expectError: true,
		},
		{
			name: "duplicate detector",
			mutate: func(in *ConfigRawInput) {
				in.Efficiency = append(in.Efficiency, EfficiencySourceRaw{Detector: "OIPA Lab 35", Workbook: "other.xlsx"})
			},
			expectError: true,
		},
		{
			name: "efficiency entry without workbook",
			mutate: func(in *ConfigRawInput) {
				in.Efficiency = []EfficiencySourceRaw{{Detector: "OIPA Lab 109"}}
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validRawInput()
			tt.mutate(input)
			cfg := &Config{}
			err := ProcessAndValidate(cfg, input)
			if tt.expectError {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrConfiguration)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestProcessAndValidateValues(t *testing.T) {
	input := validRawInput()
	input.Software = " Genie2K "
	input.Output = "JSON"
	input.Color = "yes"
	input.Efficiency = append(input.Efficiency, EfficiencySourceRaw{Detector: "OIPA Lab 109", Workbook: "lab109.xlsx"})

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))

	assert.Equal(t, schema.Genie2K, cfg.Software)
	assert.Equal(t, schema.JSONOut, cfg.Output)
	assert.True(t, cfg.UseColors)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, []string{"OIPA Lab 109", "OIPA Lab 35"}, cfg.Detectors())
	assert.Equal(t, "lab109.xlsx", cfg.Efficiency["OIPA Lab 109"])
}

func TestConfigClone(t *testing.T) {
	cfg := &Config{Efficiency: map[string]string{"OIPA Lab 35": "a.xlsx"}, Degree: 5}
	clone := cfg.Clone()
	clone.Efficiency["OIPA Lab 35"] = "b.xlsx"
	clone.Degree = 3

	assert.Equal(t, "a.xlsx", cfg.Efficiency["OIPA Lab 35"])
	assert.Equal(t, 5, cfg.Degree)
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	tests := []struct {
		name    string
		backend schema.DatabaseBackend
		conn    string
		wantErr bool
	}{
		{"sqlite empty", schema.SQLiteBackend, "", false},
		{"none", schema.NoneBackend, "", false},
		{"mysql ok", schema.MySQLBackend, "u:p@tcp(h:3306)/db", false},
		{"mysql no tcp", schema.MySQLBackend, "u:p@h/db", true},
		{"mysql no db", schema.MySQLBackend, "u:p@tcp(h:3306)", true},
		{"postgres ok", schema.PostgreSQLBackend, "host=h user=u dbname=db", false},
		{"postgres no host", schema.PostgreSQLBackend, "user=u dbname=db", true},
		{"postgres no dbname", schema.PostgreSQLBackend, "host=h user=u", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDatabaseConnectionString(tt.backend, tt.conn)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateRunInputs(t *testing.T) {
	dir := t.TempDir()
	touch := func(name string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
		return p
	}
	cfg := &Config{
		NuclideData:   touch("nuclides.xlsx"),
		MaterialsData: touch("materials.xlsx"),
		BeamData:      touch("beam.xlsx"),
		Irradiations:  touch("irradiations.xlsx"),
		XSDir:         dir,
		ReportsDir:    dir,
		Efficiency:    map[string]string{"OIPA Lab 35": touch("lab35.xlsx")},
	}
	require.NoError(t, ValidateRunInputs(cfg))

	missing := cfg.Clone()
	missing.BeamData = filepath.Join(dir, "nope.xlsx")
	assert.ErrorIs(t, ValidateRunInputs(missing), ErrConfiguration)

	notDir := cfg.Clone()
	notDir.ReportsDir = cfg.NuclideData
	assert.ErrorIs(t, ValidateRunInputs(notDir), ErrConfiguration)

	noEff := cfg.Clone()
	noEff.Efficiency = nil
	assert.ErrorIs(t, ValidateRunInputs(noEff), ErrConfiguration)
}
