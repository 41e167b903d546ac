package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/foilact/internal/contract"
	"github.com/huangsam/foilact/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleRun() *schema.RunResult {
	return &schema.RunResult{
		RunID:    "run-1",
		Started:  time.Date(2023, 5, 4, 12, 0, 0, 0, time.UTC),
		Duration: 1500 * time.Millisecond,
		Software: schema.Genie2K,
		Targets: []schema.TargetResult{
			{
				TargetID:       "A12",
				Material:       "Nb",
				Degrader:       "5",
				IrradiationEnd: "2023-05-04 11:00:00",
				BeamEnergy:     12.5,
				ErrBeamEnergy:  0.2,
				BeamCurrent:    1.5,
				Nuclides: []schema.NuclideResult{
					{Nuclide: "Mo-93m", SelectedLine: 263.1, Predicted: 1000, MeanActEoB: 1100, ErrMeanActEoB: 50, Measurements: 2, Agreement: schema.AgreementGood},
					{Nuclide: "Zr-89", SelectedLine: 909.15, Predicted: 200, MeanActEoB: 0, Agreement: schema.AgreementMissing},
				},
				Measurements: []schema.MeasurementResult{{Source: "A12_01.txt"}, {Source: "A12_02.txt"}},
			},
			{
				TargetID:       "B07",
				Material:       "Ti",
				IrradiationEnd: "2023-05-05 09:30:00",
				BeamEnergy:     8,
				Nuclides: []schema.NuclideResult{
					{Nuclide: "V-48", SelectedLine: 983.5, Predicted: 50, MeanActEoB: 90, ErrMeanActEoB: 5, Measurements: 1, Agreement: schema.AgreementPoor},
				},
			},
			{
				TargetID:       "A13",
				Material:       "Nb",
				IrradiationEnd: "2023-05-06 10:00:00",
				BeamEnergy:     14,
				Nuclides: []schema.NuclideResult{
					{Nuclide: "Nb-92m", SelectedLine: 934.4, Predicted: 10, MeanActEoB: 11, ErrMeanActEoB: 1, Measurements: 1, Agreement: schema.AgreementGood},
				},
			},
		},
		Skipped: []string{"C99_01.txt"},
	}
}

func TestWriteRunTable(t *testing.T) {
	cfg := &contract.Config{Precision: 2, Workers: 4, StoreBackend: schema.SQLiteBackend}
	fmtFloat, fmtSci := createFormatters(cfg.Precision)

	var buf bytes.Buffer
	require.NoError(t, writeRunTable(&buf, sampleRun(), cfg, fmtFloat, fmtSci))

	out := buf.String()
	assert.Contains(t, out, "Mo-93m")
	assert.Contains(t, out, "1.10e+03")
	assert.Contains(t, out, "Processed 3 targets from 2 reports (1 skipped)")
	assert.Contains(t, out, "Run run-1 completed in 1.5s with 4 workers")
}

func TestWriteRunCSV(t *testing.T) {
	fmtFloat, fmtSci := createFormatters(3)

	var buf bytes.Buffer
	require.NoError(t, writeRunCSV(&buf, sampleRun(), fmtFloat, fmtSci))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 5) // header + 4 nuclide rows

	assert.Equal(t, "run_id", records[0][0])
	assert.Equal(t, "agreement", records[0][len(records[0])-1])
	assert.Equal(t, []string{"run-1", "A12", "Nb", "5"}, records[1][:4])
	assert.Equal(t, "Mo-93m", records[1][8])
	assert.Equal(t, "1.100e+03", records[1][11])
	assert.Equal(t, "Good", records[1][16])
	assert.Equal(t, "n/a", records[2][16])
}

func TestPrintRunResultsJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")
	cfg := &contract.Config{Output: schema.JSONOut, OutputFile: path, Precision: 3}

	require.NoError(t, PrintRunResults(sampleRun(), cfg))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded schema.RunResult
	require.NoError(t, json.Unmarshal(content, &decoded))
	assert.Equal(t, "run-1", decoded.RunID)
	require.Len(t, decoded.Targets, 3)
	assert.Equal(t, 1100.0, decoded.Targets[0].Nuclides[0].MeanActEoB)
}

func TestPrintRunResultsXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.xlsx")
	cfg := &contract.Config{Output: schema.XLSXOut, OutputFile: path, Precision: 3}

	require.NoError(t, PrintRunResults(sampleRun(), cfg))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{"Nb_foils", "Ti_foils"}, f.GetSheetList())

	rows, err := f.GetRows("Nb_foils")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{
		"Target No.", "Irradiation datetime", "Proton energy (MeV)",
		"Mo-93m_eval", "Zr-89_eval", "Nb-92m_eval",
		"Mo-93m", "Zr-89", "Nb-92m",
		"err_Mo-93m", "err_Zr-89", "err_Nb-92m",
	}, rows[0])
	assert.Equal(t, "A12", rows[1][0])
	assert.Equal(t, "1100", rows[1][6])
	assert.Equal(t, "A13", rows[2][0])
	assert.Equal(t, "11", rows[2][8])

	rows, err = f.GetRows("Ti_foils")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "90", rows[1][4])
}

func TestWriteResultsWorkbookEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	require.NoError(t, writeResultsWorkbook(nil, path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	assert.Equal(t, []string{"Sheet1"}, f.GetSheetList())

	assert.Error(t, writeResultsWorkbook(nil, ""))
}

func TestPrintReports(t *testing.T) {
	reports := []*schema.Report{
		{
			Source:        "reports/A12_01.txt",
			Software:      schema.Genie2K,
			TargetID:      "A12",
			Detector:      "OIPA Lab 109",
			DetectorLevel: "200 cm",
			LiveTime:      3500,
			RealTime:      3600,
			AcquiredAt:    "2023-05-04 12:00:00",
			Peaks:         []schema.Peak{{Energy: 500, Net: 1000, ErrNet: 30}, {Energy: 909.15, Net: 200, ErrNet: 15}},
		},
		{Source: "reports/A12_02.txt", Software: schema.Genie2K, TargetID: "A12"},
	}

	t.Run("csv row per peak", func(t *testing.T) {
		fmtFloat, fmtSci := createFormatters(2)
		var buf bytes.Buffer
		require.NoError(t, writeReportsCSV(&buf, reports, fmtFloat, fmtSci))

		records, err := csv.NewReader(&buf).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 4)
		assert.Equal(t, "500.00", records[1][8])
		assert.Equal(t, "909.15", records[2][8])
		assert.Equal(t, "", records[3][8])
	})

	t.Run("table", func(t *testing.T) {
		cfg := &contract.Config{Precision: 1, Width: 120}
		fmtFloat, _ := createFormatters(cfg.Precision)
		var buf bytes.Buffer
		require.NoError(t, writeReportsTable(&buf, reports, cfg, fmtFloat))
		assert.Contains(t, buf.String(), "Parsed 2 reports with 2 peaks")
		assert.Contains(t, buf.String(), "3500.0")
	})

	t.Run("unsupported", func(t *testing.T) {
		cfg := &contract.Config{Output: schema.ParquetOut, OutputFile: "x.parquet"}
		err := PrintReports(reports, cfg)
		require.ErrorIs(t, err, contract.ErrConfiguration)
	})
}

func TestPrintCalibrationsCSV(t *testing.T) {
	out := &schema.CalibrationOutput{
		Summaries: []schema.CalibrationSummary{
			{Detector: "OIPA Lab 109", Level: "200 cm", Points: 6, Coefficients: []float64{-3.5, 0.2}, MSE: 1e-4, AdjustedR2: 0.998, MinEnergy: 59.5, MaxEnergy: 1408},
		},
	}
	fmtFloat, fmtSci := createFormatters(2)

	var buf bytes.Buffer
	require.NoError(t, writeCalibrationsCSV(&buf, out.Summaries, fmtFloat, fmtSci))
	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "-3.50e+00 2.00e-01", records[1][7])

	out.Curves = []schema.EfficiencyCurve{
		{Detector: "OIPA Lab 109", Level: "200 cm", Points: []schema.EfficiencyPoint{{Energy: 500, Efficiency: 0.02, Err: 0.001}}},
	}
	path := filepath.Join(t.TempDir(), "curves.csv")
	require.NoError(t, PrintCalibrations(out, &contract.Config{Output: schema.CSVOut, OutputFile: path, Precision: 2}))
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "detector,level,energy,efficiency,err", lines[0])
	assert.Equal(t, "OIPA Lab 109,200 cm,500.00,2.00e-02,1.00e-03", lines[1])
}

func TestWriteCalibrationTable(t *testing.T) {
	out := &schema.CalibrationOutput{
		Summaries: []schema.CalibrationSummary{{Detector: "D1", Level: "L1", Points: 4, MinEnergy: 100, MaxEnergy: 1000}},
		Curves:    []schema.EfficiencyCurve{{Detector: "D1", Level: "L1", Points: []schema.EfficiencyPoint{{Energy: 661.7, Efficiency: 0.01}}}},
	}
	fmtFloat, fmtSci := createFormatters(1)

	var buf bytes.Buffer
	require.NoError(t, writeCalibrationTable(&buf, out, fmtFloat, fmtSci))
	assert.Contains(t, buf.String(), "100.0 - 1000.0")
	assert.Contains(t, buf.String(), "661.7")
}

func TestPrintPredictionsCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preds.csv")
	preds := []schema.Prediction{{TargetID: "A12", Material: "Nb", BeamEnergy: 12.5, Nuclide: "Mo-93m", Predicted: 1234}}

	require.NoError(t, PrintPredictions(preds, &contract.Config{Output: schema.CSVOut, OutputFile: path, Precision: 2}))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "target_id,material,beam_energy,nuclide,predicted\nA12,Nb,12.50,Mo-93m,1.23e+03\n", string(content))
}

func TestPrintTransport(t *testing.T) {
	result := schema.TransportResult{Projectile: "proton", Layer: "Nb", Ions: 1000, Mean: 12.346, Sigma: 0.456}

	path := filepath.Join(t.TempDir(), "transport.txt")
	require.NoError(t, PrintTransport(result, &contract.Config{Output: schema.TextOut, OutputFile: path, Precision: 2}))
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "proton through Nb: 12.35 ± 0.46 MeV (1000 ions)\n", string(content))

	err = PrintTransport(result, &contract.Config{Output: schema.XLSXOut, OutputFile: "x.xlsx"})
	assert.ErrorIs(t, err, contract.ErrConfiguration)
}

func TestOutWriterDelegates(t *testing.T) {
	ow := NewOutWriter()
	dir := t.TempDir()

	cfg := &contract.Config{Output: schema.JSONOut, Precision: 3}
	cfg.OutputFile = filepath.Join(dir, "preds.json")
	require.NoError(t, ow.WritePredictions([]schema.Prediction{{TargetID: "A12"}}, cfg))
	assert.FileExists(t, cfg.OutputFile)

	cfg.OutputFile = filepath.Join(dir, "reports.json")
	require.NoError(t, ow.WriteReports(nil, cfg))
	assert.FileExists(t, cfg.OutputFile)
}
