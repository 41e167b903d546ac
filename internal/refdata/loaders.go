package refdata

import (
	"fmt"
	"slices"
	"strings"

	"github.com/huangsam/foilact/internal/contract"
	"github.com/huangsam/foilact/schema"
	"github.com/xuri/excelize/v2"
)

// Sheet names of the reference workbooks.
const (
	NuclideSheet     = "NuclideData"
	InventorySheet   = "Material_NuclideInventory"
	WeightsSheet     = "MolecularWeights"
	BeamSheet        = "BeamCharacteristics"
	IrradiationSheet = "Irradiations"
)

var (
	nuclideColumns     = []string{"nuclide", "half_life", "err_half_life", "uom", "selected_g_line"}
	gammaColumns       = []string{"energy", "intensity", "err_intensity"}
	weightColumns      = []string{"material", "mol_weight", "density"}
	beamColumns        = []string{"degrader", "energy", "err_energy", "current"}
	irradiationColumns = []string{"dt_start", "dt_end", "target_no", "material", "mass", "thickness", "current", "degrader"}
	calibrationColumns = []string{
		"energy", "intensity", "err_intensity", "net_counts", "err_net_counts",
		"half_life", "err_half_life", "uom", "ref_act", "err_ref_act",
		"ref_date", "datetime_meas", "t_live", "t_real",
	}
)

// LoadNuclides reads the NuclideData sheet and, for every nuclide listed there, the
// gamma-line sheet named after it.
func LoadNuclides(path string) ([]schema.NuclideData, error) {
	f, err := openWorkbook(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	s, err := readSheet(f, path, NuclideSheet, nuclideColumns...)
	if err != nil {
		return nil, err
	}

	out := make([]schema.NuclideData, 0, len(s.rows))
	for _, row := range s.rows {
		vals, err := s.nums(row, "half_life", "err_half_life", "selected_g_line")
		if err != nil {
			return nil, err
		}
		d := schema.NuclideData{
			Name:         s.str(row, "nuclide"),
			HalfLife:     vals[0],
			ErrHalfLife:  vals[1],
			Unit:         schema.HalfLifeUnit(strings.ToLower(s.str(row, "uom"))),
			SelectedLine: vals[2],
		}
		lines, err := loadGammaLines(f, path, d.Name)
		if err != nil {
			return nil, err
		}
		d.Lines = lines
		out = append(out, d)
	}
	contract.LogDebug("Loaded nuclide data", "nuclides", len(out), "source", path)
	return out, nil
}

func loadGammaLines(f *excelize.File, path, nuclide string) ([]schema.GammaLine, error) {
	s, err := readSheet(f, path, nuclide, gammaColumns...)
	if err != nil {
		return nil, err
	}
	lines := make([]schema.GammaLine, 0, len(s.rows))
	for _, row := range s.rows {
		vals, err := s.nums(row, gammaColumns...)
		if err != nil {
			return nil, err
		}
		lines = append(lines, schema.GammaLine{Energy: vals[0], Intensity: vals[1], ErrIntensity: vals[2]})
	}
	return lines, nil
}

// LoadMaterials joins the nuclide inventory of each material (one column per
// material) with its molar weight and density. Inventory columns without a weights
// row are ignored.
func LoadMaterials(path string) ([]schema.Material, error) {
	f, err := openWorkbook(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	inv, err := readSheet(f, path, InventorySheet)
	if err != nil {
		return nil, err
	}
	weights, err := readSheet(f, path, WeightsSheet, weightColumns...)
	if err != nil {
		return nil, err
	}

	out := make([]schema.Material, 0, len(weights.rows))
	for _, row := range weights.rows {
		vals, err := weights.nums(row, "mol_weight", "density")
		if err != nil {
			return nil, err
		}
		name := weights.str(row, "material")
		m := schema.Material{Name: name, MolarMass: vals[0], Density: vals[1]}
		if _, ok := inv.header[normalizeHeader(name)]; ok {
			for _, r := range inv.rows {
				if nuc := inv.str(r, normalizeHeader(name)); nuc != "" && !slices.Contains(m.Inventory, nuc) {
					m.Inventory = append(m.Inventory, nuc)
				}
			}
		} else {
			contract.LogDebug("Material has no nuclide inventory", "material", name)
		}
		out = append(out, m)
	}
	return out, nil
}

// LoadBeams reads the simulated beam characteristics keyed by degrader.
func LoadBeams(path string) ([]schema.Beam, error) {
	f, err := openWorkbook(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	s, err := readSheet(f, path, BeamSheet, beamColumns...)
	if err != nil {
		return nil, err
	}
	out := make([]schema.Beam, 0, len(s.rows))
	for _, row := range s.rows {
		vals, err := s.nums(row, "energy", "err_energy", "current")
		if err != nil {
			return nil, err
		}
		out = append(out, schema.Beam{
			Degrader:  s.text(row, "degrader"),
			Energy:    vals[0],
			ErrEnergy: vals[1],
			Current:   vals[2],
		})
	}
	return out, nil
}

// LoadIrradiations reads the irradiation log. Duplicate target numbers are rejected.
func LoadIrradiations(path string) ([]schema.Irradiation, error) {
	f, err := openWorkbook(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	s, err := readSheet(f, path, IrradiationSheet, irradiationColumns...)
	if err != nil {
		return nil, err
	}
	out := make([]schema.Irradiation, 0, len(s.rows))
	seen := make(map[string]struct{}, len(s.rows))
	for _, row := range s.rows {
		start, err := s.dateTime(row, "dt_start")
		if err != nil {
			return nil, err
		}
		end, err := s.dateTime(row, "dt_end")
		if err != nil {
			return nil, err
		}
		vals, err := s.nums(row, "mass", "thickness", "current")
		if err != nil {
			return nil, err
		}
		id := s.text(row, "target_no")
		if _, dup := seen[strings.ToLower(id)]; dup {
			return nil, fmt.Errorf("%w: target %s listed twice in %s", contract.ErrValidation, id, path)
		}
		seen[strings.ToLower(id)] = struct{}{}
		out = append(out, schema.Irradiation{
			Start:     start,
			End:       end,
			TargetID:  id,
			Material:  s.str(row, "material"),
			Mass:      vals[0],
			Thickness: vals[1],
			Current:   vals[2],
			Degrader:  s.text(row, "degrader"),
		})
	}
	return out, nil
}

// LoadCalibrationPoints reads an efficiency workbook. Every sheet is one detector
// level and every row one reference-source line.
func LoadCalibrationPoints(workbook string) (map[string][]schema.CalibrationPoint, error) {
	f, err := openWorkbook(workbook)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	out := make(map[string][]schema.CalibrationPoint)
	for _, level := range f.GetSheetList() {
		s, err := readSheet(f, workbook, level, calibrationColumns...)
		if err != nil {
			return nil, err
		}
		points := make([]schema.CalibrationPoint, 0, len(s.rows))
		for _, row := range s.rows {
			p, err := calibrationPoint(s, row)
			if err != nil {
				return nil, err
			}
			points = append(points, p)
		}
		out[level] = points
	}
	return out, nil
}

func calibrationPoint(s *sheet, row []string) (schema.CalibrationPoint, error) {
	vals, err := s.nums(row,
		"energy", "intensity", "err_intensity", "net_counts", "err_net_counts",
		"half_life", "err_half_life", "ref_act", "err_ref_act", "t_live", "t_real")
	if err != nil {
		return schema.CalibrationPoint{}, err
	}
	refDate, err := s.dateTime(row, "ref_date")
	if err != nil {
		return schema.CalibrationPoint{}, err
	}
	measured, err := s.dateTime(row, "datetime_meas")
	if err != nil {
		return schema.CalibrationPoint{}, err
	}
	return schema.CalibrationPoint{
		Energy:         vals[0],
		Intensity:      vals[1],
		ErrIntensity:   vals[2],
		Net:            vals[3],
		ErrNet:         vals[4],
		HalfLife:       vals[5],
		ErrHalfLife:    vals[6],
		Unit:           schema.HalfLifeUnit(strings.ToLower(s.str(row, "uom"))),
		RefActivity:    vals[7],
		ErrRefActivity: vals[8],
		RefDate:        refDate,
		MeasuredAt:     measured,
		LiveTime:       vals[9],
		RealTime:       vals[10],
	}, nil
}
