package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/huangsam/foilact/internal/contract"
	"github.com/huangsam/foilact/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintPredictions outputs predicted EoB activities.
func PrintPredictions(preds []schema.Prediction, cfg *contract.Config) error {
	fmtFloat, fmtSci := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, preds)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		header := []string{"target_id", "material", "beam_energy", "nuclide", "predicted"}
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
				for _, p := range preds {
					if err := cw.Write([]string{p.TargetID, p.Material, fmtFloat(p.BeamEnergy), p.Nuclide, fmtSci(p.Predicted)}); err != nil {
						return err
					}
				}
				return nil
			})
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.XLSXOut, schema.ParquetOut:
		return errUnsupported(cfg.Output, "predictions")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			table := tablewriter.NewWriter(w)
			table.Header([]string{"Target", "Material", "Energy (MeV)", "Nuclide", "Predicted (Bq)"})
			table.Configure(func(cfg *tablewriter.Config) {
				cfg.Row.Alignment.Global = tw.AlignRight
			})
			data := make([][]string, 0, len(preds))
			for _, p := range preds {
				data = append(data, []string{p.TargetID, p.Material, fmtFloat(p.BeamEnergy), p.Nuclide, fmtSci(p.Predicted)})
			}
			if err := table.Bulk(data); err != nil {
				return err
			}
			return table.Render()
		}, "Wrote table")
	}
	return nil
}
