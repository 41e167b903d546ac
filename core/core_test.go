package core

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/foilact/internal/contract"
	"github.com/huangsam/foilact/internal/refdata"
	"github.com/huangsam/foilact/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// saveWorkbook writes the given sheets, in order, into dir/name.
func saveWorkbook(t *testing.T, dir, name string, sheets []string, rows map[string][][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	for i, sheet := range sheets {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", sheet))
		} else {
			_, err := f.NewSheet(sheet)
			require.NoError(t, err)
		}
		for r, row := range rows[sheet] {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			values := row
			require.NoError(t, f.SetSheetRow(sheet, cell, &values))
		}
	}
	path := filepath.Join(dir, name)
	require.NoError(t, f.SaveAs(path))
	return path
}

// referenceConfig writes a complete set of reference workbooks, a cross-section
// directory and a report directory, and returns a config pointing at them.
func referenceConfig(t *testing.T) *contract.Config {
	t.Helper()
	dir := t.TempDir()

	nuclides := saveWorkbook(t, dir, "nuclides.xlsx", []string{refdata.NuclideSheet, "Test-1"}, map[string][][]any{
		refdata.NuclideSheet: {
			{"nuclide", "half_life", "err_half_life", "uom", "selected_g_line"},
			{"Test-1", 1, 0.01, "h", 500},
		},
		"Test-1": {
			{"energy", "intensity", "err_intensity"},
			{500, 50, 1},
		},
	})
	materials := saveWorkbook(t, dir, "materials.xlsx", []string{refdata.InventorySheet, refdata.WeightsSheet}, map[string][][]any{
		refdata.InventorySheet: {{"Y"}, {"Test-1"}},
		refdata.WeightsSheet: {
			{"material", "mol_weight", "density"},
			{"Y", 88.906, 4.47},
		},
	})
	beams := saveWorkbook(t, dir, "beams.xlsx", []string{refdata.BeamSheet}, map[string][][]any{
		refdata.BeamSheet: {
			{"degrader", "energy", "err_energy", "current"},
			{"D5", 14.8, 0.3, 0.4},
		},
	})
	irradiations := saveWorkbook(t, dir, "irradiations.xlsx", []string{refdata.IrradiationSheet}, map[string][][]any{
		refdata.IrradiationSheet: {
			{"dt_start", "dt_end", "target_no", "material", "mass", "thickness", "current", "degrader"},
			{"2019-11-05 10:00:00", "2019-11-05 11:00:00", "A12", "Y", 20, 25, 25, "D5"},
			{"2019-11-05 10:00:00", "2019-11-05 11:00:00", "B07", "Y", 20, 25, 25, "D5"},
		},
	})

	calibration := [][]any{{
		"energy", "intensity", "err_intensity", "net_counts", "err_net_counts",
		"half_life", "err_half_life", "uom", "ref_act", "err_ref_act",
		"ref_date", "datetime_meas", "t_live", "t_real",
	}}
	for _, line := range [][2]float64{{100, 90000}, {300, 52000}, {600, 30000}, {1000, 21000}, {1500, 15000}} {
		calibration = append(calibration, []any{
			line[0], 80, 0.5, line[1], line[1] * 0.01,
			30, 0.1, "y", 5000, 75,
			"2020-01-01 00:00:00", "2020-01-01 00:00:00", 900, 1000,
		})
	}
	efficiency := saveWorkbook(t, dir, "efficiency.xlsx", []string{testLevel}, map[string][][]any{testLevel: calibration})

	xsDir := filepath.Join(dir, "xs")
	require.NoError(t, os.Mkdir(xsDir, 0o755))
	writeFile(t, xsDir, "Test-1.csv", "energy,data,uncert\n10,100,5\n20,200,8\n")

	return &contract.Config{
		NuclideData:   nuclides,
		MaterialsData: materials,
		BeamData:      beams,
		Irradiations:  irradiations,
		XSDir:         xsDir,
		Efficiency:    map[string]string{testDetector: efficiency},
		ReportsDir:    testReportsDir(t),
		Software:      schema.Genie2K,
		Degree:        2,
		Workers:       2,
		Precision:     contract.DefaultPrecision,
		Output:        schema.JSONOut,
		OutputFile:    filepath.Join(dir, "out.json"),
		StoreBackend:  schema.NoneBackend,
	}
}

func TestLoadInputs(t *testing.T) {
	cfg := referenceConfig(t)

	in, err := LoadInputs(context.Background(), cfg)
	require.NoError(t, err)
	assert.Len(t, in.Irradiations, 2)

	cal, err := in.Calibrations.Lookup(testDetector, testLevel)
	require.NoError(t, err)
	assert.True(t, cal.InRange(500))
	assert.False(t, cal.InRange(50))
}

func TestExecuteRunWritesJSON(t *testing.T) {
	cfg := referenceConfig(t)

	require.NoError(t, ExecuteRun(context.Background(), cfg, nil))

	content, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	var result schema.RunResult
	require.NoError(t, json.Unmarshal(content, &result))

	require.Len(t, result.Targets, 2)
	a12 := result.Targets[0]
	assert.Equal(t, "A12", a12.TargetID)
	assert.Equal(t, 14.8, a12.BeamEnergy)
	require.Len(t, a12.Nuclides, 1)
	assert.Equal(t, "Test-1", a12.Nuclides[0].Nuclide)
	assert.Greater(t, a12.Nuclides[0].MeanActEoB, 0.0)
	assert.Greater(t, a12.Nuclides[0].Predicted, 0.0)
	assert.NotEqual(t, schema.AgreementMissing, a12.Nuclides[0].Agreement)
	assert.Len(t, a12.Measurements, 2)

	assert.Len(t, result.Skipped, 2)
}

func TestExecuteRunValidatesInputs(t *testing.T) {
	cfg := referenceConfig(t)
	cfg.XSDir = filepath.Join(t.TempDir(), "missing")

	err := ExecuteRun(context.Background(), cfg, nil)
	require.ErrorIs(t, err, contract.ErrConfiguration)
	assert.NoFileExists(t, cfg.OutputFile)
}

func TestExecuteRunBadReference(t *testing.T) {
	cfg := referenceConfig(t)
	cfg.BeamData = saveWorkbook(t, t.TempDir(), "beams.xlsx", []string{"Wrong"}, map[string][][]any{
		"Wrong": {{"degrader"}, {"D5"}},
	})

	err := ExecuteRun(context.Background(), cfg, nil)
	assert.ErrorIs(t, err, contract.ErrConfiguration)
}

func TestCalibrate(t *testing.T) {
	cfg := referenceConfig(t)

	out, err := Calibrate(context.Background(), cfg, nil)
	require.NoError(t, err)
	require.Len(t, out.Summaries, 1)
	assert.Equal(t, testDetector, out.Summaries[0].Detector)
	assert.Equal(t, testLevel, out.Summaries[0].Level)
	assert.Equal(t, 5, out.Summaries[0].Points)
	assert.Equal(t, 100.0, out.Summaries[0].MinEnergy)
	assert.Equal(t, 1500.0, out.Summaries[0].MaxEnergy)
	assert.Empty(t, out.Curves)

	out, err = Calibrate(context.Background(), cfg, []float64{500, 661.7})
	require.NoError(t, err)
	require.Len(t, out.Curves, 1)
	require.Len(t, out.Curves[0].Points, 2)
	for _, p := range out.Curves[0].Points {
		assert.Greater(t, p.Efficiency, 0.0)
		assert.Greater(t, p.Err, 0.0)
	}

	cfg.Efficiency = nil
	_, err = Calibrate(context.Background(), cfg, nil)
	assert.ErrorIs(t, err, contract.ErrConfiguration)
}

func TestExecuteCalibrateCSV(t *testing.T) {
	cfg := referenceConfig(t)
	cfg.Output = schema.CSVOut
	cfg.OutputFile = filepath.Join(t.TempDir(), "calibration.csv")

	require.NoError(t, ExecuteCalibrate(context.Background(), cfg, []float64{500}))
	content, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), "detector,level,energy,efficiency,err")
	assert.Contains(t, string(content), testDetector+","+testLevel+",500.000,")
}

func TestPredict(t *testing.T) {
	cfg := referenceConfig(t)

	preds, err := Predict(cfg, nil)
	require.NoError(t, err)
	require.Len(t, preds, 2)
	assert.Equal(t, "A12", preds[0].TargetID)
	assert.Equal(t, "B07", preds[1].TargetID)
	assert.Equal(t, preds[0].Predicted, preds[1].Predicted, "identical irradiations predict identically")
	assert.Greater(t, preds[0].Predicted, 0.0)

	preds, err = Predict(cfg, []string{"b07", "B07"})
	require.NoError(t, err)
	require.Len(t, preds, 1)
	assert.Equal(t, "B07", preds[0].TargetID)
	assert.Equal(t, "Y", preds[0].Material)

	_, err = Predict(cfg, []string{"Z99"})
	assert.ErrorIs(t, err, contract.ErrNotFound)
}

func TestExecuteParse(t *testing.T) {
	cfg := referenceConfig(t)

	require.NoError(t, ExecuteParse(context.Background(), cfg, nil, nil))
	content, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)

	var reports []schema.Report
	require.NoError(t, json.Unmarshal(content, &reports))
	// notes.txt is dropped, the empty A12_02 report is kept
	require.Len(t, reports, 4)
	assert.Equal(t, "A12", reports[0].TargetID)
	assert.Len(t, reports[0].Peaks, 1)
	assert.Empty(t, reports[1].Peaks)
}

func TestParseReportsNothingParsed(t *testing.T) {
	dir := t.TempDir()
	junk := writeFile(t, dir, "junk.txt", "nothing here\n")

	_, err := ParseReports(context.Background(), []string{junk, filepath.Join(dir, "missing.txt")}, schema.Genie2K)
	assert.ErrorIs(t, err, contract.ErrParse)
}

func TestParseReportsCanceled(t *testing.T) {
	dir := testReportsDir(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ParseReports(ctx, []string{filepath.Join(dir, "A12_01.txt")}, schema.Genie2K)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExecuteTransportFromOutput(t *testing.T) {
	cfg := &contract.Config{Output: schema.JSONOut, OutputFile: filepath.Join(t.TempDir(), "transport.json"), Precision: 3}

	require.NoError(t, ExecuteTransport(context.Background(), cfg, "", filepath.Join("transport", "testdata")))

	content, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	var res schema.TransportResult
	require.NoError(t, json.Unmarshal(content, &res))
	assert.Equal(t, 3, res.Ions)
	assert.InDelta(t, 15.0, res.Mean, 1e-9)
}

func TestExecuteTransportMissingDeck(t *testing.T) {
	cfg := &contract.Config{Simulator: "trim"}
	err := ExecuteTransport(context.Background(), cfg, filepath.Join(t.TempDir(), "deck.yaml"), "")
	assert.ErrorIs(t, err, contract.ErrConfiguration)
}
