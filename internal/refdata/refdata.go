// Package refdata reads the reference workbooks of a run: nuclide data and gamma
// lines, target materials, beam characteristics, the irradiation log and the
// efficiency calibration sheets.
//
// Every sheet is addressed by its header row, so column order does not matter and
// extra columns are ignored. Rows missing a required cell are dropped. A missing
// file, sheet or column is a configuration error.
package refdata

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/foilact/internal/contract"
	"github.com/huangsam/foilact/schema"
	"github.com/xuri/excelize/v2"
)

// Accepted textual date layouts besides native spreadsheet dates.
var dateLayouts = []string{
	schema.DateTimeLayout,
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"02.01.2006 15:04:05",
	"2006-01-02",
}

// sheet is a header-addressed view of one worksheet.
type sheet struct {
	name   string
	source string
	header map[string]int
	rows   [][]string
}

// openWorkbook opens an xlsx file and returns it with a close func.
func openWorkbook(path string) (*excelize.File, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: workbook path is not set", contract.ErrConfiguration)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening workbook %s: %v", contract.ErrConfiguration, path, err)
	}
	return f, nil
}

// readSheet loads a sheet and checks that the required columns exist. Rows with an
// empty required cell are dropped.
func readSheet(f *excelize.File, source, name string, required ...string) (*sheet, error) {
	if !slices.Contains(f.GetSheetList(), name) {
		return nil, fmt.Errorf("%w: sheet %q not found in %s", contract.ErrConfiguration, name, source)
	}
	rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: reading sheet %q of %s: %v", contract.ErrConfiguration, name, source, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet %q of %s has no header row", contract.ErrConfiguration, name, source)
	}

	s := &sheet{name: name, source: source, header: make(map[string]int, len(rows[0]))}
	for i, col := range rows[0] {
		key := normalizeHeader(col)
		if key == "" {
			continue
		}
		if _, dup := s.header[key]; !dup {
			s.header[key] = i
		}
	}
	for _, col := range required {
		if _, ok := s.header[col]; !ok {
			return nil, fmt.Errorf("%w: column %q missing from sheet %q of %s", contract.ErrConfiguration, col, name, source)
		}
	}

	for i, row := range rows[1:] {
		if s.incomplete(row, required) {
			if !blank(row) {
				contract.LogDebug("Dropped incomplete row", "sheet", name, "row", i+2, "source", source)
			}
			continue
		}
		s.rows = append(s.rows, row)
	}
	return s, nil
}

func normalizeHeader(col string) string {
	return strings.ToLower(strings.TrimSpace(col))
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func (s *sheet) incomplete(row []string, required []string) bool {
	for _, col := range required {
		if s.str(row, col) == "" {
			return true
		}
	}
	return false
}

// str returns the trimmed cell of a column, or "" when the row is short.
func (s *sheet) str(row []string, col string) string {
	idx, ok := s.header[col]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func (s *sheet) num(row []string, col string) (float64, error) {
	raw := s.str(row, col)
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: column %q of sheet %q in %s holds %q, not a number", contract.ErrValidation, col, s.name, s.source, raw)
	}
	return v, nil
}

// dateTime accepts native spreadsheet dates (serial numbers) and the textual layouts
// in dateLayouts, and returns the canonical layout.
func (s *sheet) dateTime(row []string, col string) (string, error) {
	raw := s.str(row, col)
	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return "", fmt.Errorf("%w: column %q of sheet %q in %s: %v", contract.ErrValidation, col, s.name, s.source, err)
		}
		return t.Round(time.Second).Format(schema.DateTimeLayout), nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(schema.DateTimeLayout), nil
		}
	}
	return "", fmt.Errorf("%w: column %q of sheet %q in %s holds %q, not a date", contract.ErrValidation, col, s.name, s.source, raw)
}

// nums reads several numeric columns of a row at once.
func (s *sheet) nums(row []string, cols ...string) ([]float64, error) {
	out := make([]float64, len(cols))
	for i, col := range cols {
		v, err := s.num(row, col)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// text returns a cell that is read as an identifier. Integral numbers lose the
// trailing ".0" some spreadsheets store.
func (s *sheet) text(row []string, col string) string {
	raw := s.str(row, col)
	if v, err := strconv.ParseFloat(raw, 64); err == nil && v == float64(int64(v)) && strings.Contains(raw, ".") {
		return strconv.FormatInt(int64(v), 10)
	}
	return raw
}
