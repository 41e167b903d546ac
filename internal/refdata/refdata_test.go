package refdata

import (
	"path/filepath"
	"testing"

	"github.com/huangsam/foilact/internal/contract"
	"github.com/huangsam/foilact/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// writeWorkbook saves a workbook whose sheets are given in order as name -> rows.
func writeWorkbook(t *testing.T, name string, sheets []string, rows map[string][][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	for i, sheetName := range sheets {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", sheetName))
		} else {
			_, err := f.NewSheet(sheetName)
			require.NoError(t, err)
		}
		for r, row := range rows[sheetName] {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			values := row
			require.NoError(t, f.SetSheetRow(sheetName, cell, &values))
		}
	}
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestLoadNuclides(t *testing.T) {
	path := writeWorkbook(t, "nuclides.xlsx", []string{NuclideSheet, "Zr-89", "Nb-92m"}, map[string][][]any{
		NuclideSheet: {
			{"nuclide", "half_life", "err_half_life", "uom", "selected_g_line", "comment"},
			{"Zr-89", 78.41, 0.12, "h", 909.15, "monitor"},
			{"Nb-92m", 10.15, 0.02, "D", 934.44},
			{"Y-88", 106.626, nil, "d", 898.042},
		},
		"Zr-89": {
			{"energy", "intensity", "err_intensity"},
			{909.15, 99.04, 0.01},
			{1713.0, 0.745, 0.011},
		},
		"Nb-92m": {
			{"intensity", "energy", "err_intensity"},
			{99.15, 934.44, 0.04},
		},
	})

	data, err := LoadNuclides(path)
	require.NoError(t, err)
	require.Len(t, data, 2, "row with an empty err_half_life is dropped")

	assert.Equal(t, "Zr-89", data[0].Name)
	assert.InDelta(t, 78.41, data[0].HalfLife, 1e-12)
	assert.Equal(t, schema.Hours, data[0].Unit)
	assert.Len(t, data[0].Lines, 2)
	assert.InDelta(t, 1713.0, data[0].Lines[1].Energy, 1e-12)

	assert.Equal(t, schema.Days, data[1].Unit, "units are lower-cased")
	require.Len(t, data[1].Lines, 1)
	assert.InDelta(t, 934.44, data[1].Lines[0].Energy, 1e-12, "columns are addressed by header")
	assert.InDelta(t, 99.15, data[1].Lines[0].Intensity, 1e-12)
}

func TestLoadNuclidesMissingGammaSheet(t *testing.T) {
	path := writeWorkbook(t, "nuclides.xlsx", []string{NuclideSheet}, map[string][][]any{
		NuclideSheet: {
			{"nuclide", "half_life", "err_half_life", "uom", "selected_g_line"},
			{"Zr-89", 78.41, 0.12, "h", 909.15},
		},
	})
	_, err := LoadNuclides(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, contract.ErrConfiguration)
	assert.Contains(t, err.Error(), `sheet "Zr-89"`)
}

func TestLoadMaterials(t *testing.T) {
	path := writeWorkbook(t, "materials.xlsx", []string{InventorySheet, WeightsSheet}, map[string][][]any{
		InventorySheet: {
			{"Nb", "Ti", "Orphan"},
			{"Nb-92m", "Sc-46", "X-1"},
			{"Zr-89", "Sc-48"},
			{nil, "Sc-46"},
		},
		WeightsSheet: {
			{"material", "mol_weight", "density"},
			{"Nb", 92.906, 8.57},
			{"Ti", 47.867, 4.506},
			{"Cu", 63.546, 8.96},
		},
	})

	mats, err := LoadMaterials(path)
	require.NoError(t, err)
	require.Len(t, mats, 3)

	assert.Equal(t, schema.Material{Name: "Nb", MolarMass: 92.906, Density: 8.57, Inventory: []string{"Nb-92m", "Zr-89"}}, mats[0])
	assert.Equal(t, []string{"Sc-46", "Sc-48"}, mats[1].Inventory, "duplicates collapse")
	assert.Empty(t, mats[2].Inventory)
}

func TestLoadMaterialsMissingColumn(t *testing.T) {
	path := writeWorkbook(t, "materials.xlsx", []string{InventorySheet, WeightsSheet}, map[string][][]any{
		InventorySheet: {{"Nb"}, {"Zr-89"}},
		WeightsSheet: {
			{"material", "mol_weight"},
			{"Nb", 92.906},
		},
	})
	_, err := LoadMaterials(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, contract.ErrConfiguration)
	assert.Contains(t, err.Error(), `"density"`)
}

func TestLoadBeams(t *testing.T) {
	path := writeWorkbook(t, "beam.xlsx", []string{BeamSheet}, map[string][][]any{
		BeamSheet: {
			{"degrader", "energy", "err_energy", "current"},
			{"D1", 17.8, 0.4, 0.9},
			{2, 12.1, 0.6, 0.7},
		},
	})
	beams, err := LoadBeams(path)
	require.NoError(t, err)
	require.Len(t, beams, 2)
	assert.Equal(t, schema.Beam{Degrader: "D1", Energy: 17.8, ErrEnergy: 0.4, Current: 0.9}, beams[0])
	assert.Equal(t, "2", beams[1].Degrader)
}

func TestLoadIrradiations(t *testing.T) {
	path := writeWorkbook(t, "irr.xlsx", []string{IrradiationSheet}, map[string][][]any{
		IrradiationSheet: {
			{"dt_start", "dt_end", "target_no", "material", "mass", "thickness", "integral", "current", "degrader"},
			{"2023-05-04 10:00:00", "2023-05-04 10:30:00", "A12", "Nb", 21.3, 25, 100, 50, "D1"},
			{"04.05.2023 11:00:00", "2023-05-04 11:15", 7, "Ti", 11.0, 25, 100, 25, "D2"},
		},
	})
	irrs, err := LoadIrradiations(path)
	require.NoError(t, err)
	require.Len(t, irrs, 2)

	assert.Equal(t, schema.Irradiation{
		Start:     "2023-05-04 10:00:00",
		End:       "2023-05-04 10:30:00",
		TargetID:  "A12",
		Material:  "Nb",
		Mass:      21.3,
		Thickness: 25,
		Current:   50,
		Degrader:  "D1",
	}, irrs[0])
	assert.Equal(t, "2023-05-04 11:00:00", irrs[1].Start)
	assert.Equal(t, "2023-05-04 11:15:00", irrs[1].End)
	assert.Equal(t, "7", irrs[1].TargetID)
}

func TestLoadIrradiationsRejectsDuplicatesAndBadDates(t *testing.T) {
	header := []any{"dt_start", "dt_end", "target_no", "material", "mass", "thickness", "current", "degrader"}

	dup := writeWorkbook(t, "dup.xlsx", []string{IrradiationSheet}, map[string][][]any{
		IrradiationSheet: {
			header,
			{"2023-05-04 10:00:00", "2023-05-04 10:30:00", "A12", "Nb", 21.3, 25, 50, "D1"},
			{"2023-05-04 11:00:00", "2023-05-04 11:30:00", "a12", "Nb", 21.3, 25, 50, "D1"},
		},
	})
	_, err := LoadIrradiations(dup)
	assert.ErrorIs(t, err, contract.ErrValidation)

	bad := writeWorkbook(t, "bad.xlsx", []string{IrradiationSheet}, map[string][][]any{
		IrradiationSheet: {
			header,
			{"yesterday", "2023-05-04 10:30:00", "A12", "Nb", 21.3, 25, 50, "D1"},
		},
	})
	_, err = LoadIrradiations(bad)
	assert.ErrorIs(t, err, contract.ErrValidation)
}

func TestLoadCalibrationPoints(t *testing.T) {
	header := []any{
		"energy", "intensity", "err_intensity", "net_counts", "err_net_counts",
		"half_life", "err_half_life", "uom", "ref_act", "err_ref_act",
		"ref_date", "datetime_meas", "t_live", "t_real",
	}
	path := writeWorkbook(t, "eff.xlsx", []string{"Level 1", "Level 2"}, map[string][][]any{
		"Level 1": {
			header,
			{661.657, 85.1, 0.2, 120000, 400, 30.08, 0.09, "y", 37000, 500, "2020-01-01 12:00:00", "2023-05-04 09:00:00", 3600, 3610},
			{1332.492, 99.98, 0.0006, 50000, 250, 5.2713, 0.0008, "y", 40000, 600, "2020-01-01 12:00:00", "2023-05-04 09:00:00", 3600, 3610},
		},
		"Level 2": {
			header,
			{661.657, 85.1, 0.2, 30000, 200, 30.08, 0.09, "Y", 37000, 500, "2020-01-01 12:00:00", "2023-05-05 09:00:00", 1800, 1802},
		},
	})

	levels, err := LoadCalibrationPoints(path)
	require.NoError(t, err)
	require.Len(t, levels, 2)
	require.Len(t, levels["Level 1"], 2)

	p := levels["Level 2"][0]
	assert.Equal(t, schema.Years, p.Unit)
	assert.Equal(t, "2020-01-01 12:00:00", p.RefDate)
	assert.Equal(t, "2023-05-05 09:00:00", p.MeasuredAt)
	assert.InDelta(t, 1802.0, p.RealTime, 1e-12)
	assert.InDelta(t, 37000.0, p.RefActivity, 1e-12)
}

func TestOpenWorkbookErrors(t *testing.T) {
	_, err := LoadBeams("")
	assert.ErrorIs(t, err, contract.ErrConfiguration)

	_, err = LoadBeams(filepath.Join(t.TempDir(), "missing.xlsx"))
	assert.ErrorIs(t, err, contract.ErrConfiguration)

	path := writeWorkbook(t, "beam.xlsx", []string{"Other"}, map[string][][]any{"Other": {{"a"}}})
	_, err = LoadBeams(path)
	assert.ErrorIs(t, err, contract.ErrConfiguration)
}

func TestSheetCellHelpers(t *testing.T) {
	s := &sheet{name: "S", source: "x.xlsx", header: map[string]int{"a": 0, "b": 1, "when": 2}}

	assert.Equal(t, "", s.str([]string{"1"}, "b"), "short rows read as empty")
	assert.Equal(t, "12", s.text([]string{"12.0"}, "a"))
	assert.Equal(t, "12.5", s.text([]string{"12.5"}, "a"))

	_, err := s.num([]string{"abc"}, "a")
	assert.ErrorIs(t, err, contract.ErrValidation)

	// 45050.5 is 2023-05-04 12:00 in the 1900 date system.
	got, err := s.dateTime([]string{"", "", "45050.5"}, "when")
	require.NoError(t, err)
	assert.Equal(t, "2023-05-04 12:00:00", got)
}
