package outwriter

import (
	"fmt"
	"slices"

	"github.com/huangsam/foilact/schema"
	"github.com/xuri/excelize/v2"
)

// Fixed leading columns of every results sheet.
var workbookLeadColumns = []string{"Target No.", "Irradiation datetime", "Proton energy (MeV)"}

// materialSheet groups the targets of one material.
type materialSheet struct {
	material string
	nuclides []string
	targets  []schema.TargetResult
}

// groupByMaterial keeps materials in order of first appearance. The nuclide columns
// are the union of the nuclides of the material's targets, in target order.
func groupByMaterial(targets []schema.TargetResult) []*materialSheet {
	var sheets []*materialSheet
	index := make(map[string]*materialSheet)
	for _, t := range targets {
		s, ok := index[t.Material]
		if !ok {
			s = &materialSheet{material: t.Material}
			index[t.Material] = s
			sheets = append(sheets, s)
		}
		s.targets = append(s.targets, t)
		for _, n := range t.Nuclides {
			if !slices.Contains(s.nuclides, n.Nuclide) {
				s.nuclides = append(s.nuclides, n.Nuclide)
			}
		}
	}
	return sheets
}

// header lists the lead columns, then predicted, mean and uncertainty per nuclide.
func (s *materialSheet) header() []any {
	row := make([]any, 0, len(workbookLeadColumns)+3*len(s.nuclides))
	for _, c := range workbookLeadColumns {
		row = append(row, c)
	}
	for _, n := range s.nuclides {
		row = append(row, n+"_eval")
	}
	for _, n := range s.nuclides {
		row = append(row, n)
	}
	for _, n := range s.nuclides {
		row = append(row, "err_"+n)
	}
	return row
}

func (s *materialSheet) row(t schema.TargetResult) []any {
	byName := make(map[string]schema.NuclideResult, len(t.Nuclides))
	for _, n := range t.Nuclides {
		byName[n.Nuclide] = n
	}
	row := []any{t.TargetID, t.IrradiationEnd, t.BeamEnergy}
	for _, n := range s.nuclides {
		row = append(row, byName[n].Predicted)
	}
	for _, n := range s.nuclides {
		row = append(row, byName[n].MeanActEoB)
	}
	for _, n := range s.nuclides {
		row = append(row, byName[n].ErrMeanActEoB)
	}
	return row
}

// sheetName returns the results sheet of a material.
func sheetName(material string) string {
	return material + "_foils"
}

// writeResultsWorkbook writes one "<material>_foils" sheet per material with one
// row per target.
func writeResultsWorkbook(targets []schema.TargetResult, path string) error {
	if path == "" {
		return fmt.Errorf("xlsx output needs an output file")
	}
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	for i, s := range groupByMaterial(targets) {
		name := sheetName(s.material)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return err
		}

		header := s.header()
		if err := f.SetSheetRow(name, "A1", &header); err != nil {
			return err
		}
		last, err := excelize.CoordinatesToCellName(len(header), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(name, "A1", last, bold); err != nil {
			return err
		}
		for r, t := range s.targets {
			cell, err := excelize.CoordinatesToCellName(1, r+2)
			if err != nil {
				return err
			}
			row := s.row(t)
			if err := f.SetSheetRow(name, cell, &row); err != nil {
				return err
			}
		}
	}
	return f.SaveAs(path)
}
