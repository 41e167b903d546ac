package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/huangsam/foilact/internal/contract"
	"github.com/huangsam/foilact/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintCalibrations outputs fitted efficiency curves and, when energies were
// requested, the efficiencies evaluated at them.
func PrintCalibrations(out *schema.CalibrationOutput, cfg *contract.Config) error {
	fmtFloat, fmtSci := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, out)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			if len(out.Curves) > 0 {
				return writeCurvesCSV(w, out.Curves, fmtFloat, fmtSci)
			}
			return writeCalibrationsCSV(w, out.Summaries, fmtFloat, fmtSci)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.XLSXOut, schema.ParquetOut:
		return errUnsupported(cfg.Output, "calibrations")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCalibrationTable(w, out, fmtFloat, fmtSci)
		}, "Wrote table")
	}
	return nil
}

func joinCoefficients(cs []float64, fmtSci func(float64) string) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = fmtSci(c)
	}
	return strings.Join(parts, " ")
}

func writeCalibrationTable(w io.Writer, out *schema.CalibrationOutput, fmtFloat, fmtSci func(float64) string) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Detector", "Level", "Points", "Range (keV)", "MSE", "Adj. R²"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	data := make([][]string, 0, len(out.Summaries))
	for _, s := range out.Summaries {
		data = append(data, []string{
			s.Detector,
			s.Level,
			strconv.Itoa(s.Points),
			fmtFloat(s.MinEnergy) + " - " + fmtFloat(s.MaxEnergy),
			fmtSci(s.MSE),
			fmtFloat(s.AdjustedR2),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	if len(out.Curves) == 0 {
		return nil
	}

	curves := tablewriter.NewWriter(w)
	curves.Header([]string{"Detector", "Level", "Energy (keV)", "Efficiency", "Err"})
	curves.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	var points [][]string
	for _, c := range out.Curves {
		for _, p := range c.Points {
			points = append(points, []string{c.Detector, c.Level, fmtFloat(p.Energy), fmtSci(p.Efficiency), fmtSci(p.Err)})
		}
	}
	if err := curves.Bulk(points); err != nil {
		return err
	}
	return curves.Render()
}

func writeCalibrationsCSV(w io.Writer, summaries []schema.CalibrationSummary, fmtFloat, fmtSci func(float64) string) error {
	header := []string{"detector", "level", "points", "min_energy", "max_energy", "mse", "adjusted_r2", "coefficients"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, s := range summaries {
			rec := []string{
				s.Detector,
				s.Level,
				strconv.Itoa(s.Points),
				fmtFloat(s.MinEnergy),
				fmtFloat(s.MaxEnergy),
				fmtSci(s.MSE),
				fmtFloat(s.AdjustedR2),
				joinCoefficients(s.Coefficients, fmtSci),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeCurvesCSV(w io.Writer, curves []schema.EfficiencyCurve, fmtFloat, fmtSci func(float64) string) error {
	header := []string{"detector", "level", "energy", "efficiency", "err"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, c := range curves {
			for _, p := range c.Points {
				if err := cw.Write([]string{c.Detector, c.Level, fmtFloat(p.Energy), fmtSci(p.Efficiency), fmtSci(p.Err)}); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
