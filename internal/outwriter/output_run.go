package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/huangsam/foilact/internal/contract"
	"github.com/huangsam/foilact/internal/parquet"
	"github.com/huangsam/foilact/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintRunResults outputs the results of a run, dispatching based on the output format configured.
func PrintRunResults(result *schema.RunResult, cfg *contract.Config) error {
	fmtFloat, fmtSci := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRunCSV(w, result, fmtFloat, fmtSci)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.XLSXOut:
		if err := writeResultsWorkbook(result.Targets, cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing XLSX output: %w", err)
		}
		fmt.Fprintf(os.Stderr, "💾 Wrote XLSX to %s\n", cfg.OutputFile)
	case schema.ParquetOut:
		rows := parquet.ActivitiesFromTargets(0, result.Targets)
		if err := parquet.WriteActivitiesParquet(rows, cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		fmt.Fprintf(os.Stderr, "💾 Wrote Parquet to %s\n", cfg.OutputFile)
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRunTable(w, result, cfg, fmtFloat, fmtSci)
		}, "Wrote table")
	}
	return nil
}

// writeRunTable writes one row per target and nuclide, followed by a run summary.
func writeRunTable(w io.Writer, result *schema.RunResult, cfg *contract.Config, fmtFloat, fmtSci func(float64) string) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Target", "Material", "Energy (MeV)", "Nuclide", "Predicted (Bq)", "EoB (Bq)", "Err (Bq)", "Yield (Bq/µA)", "N", "Agreement"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	measured := 0
	for _, t := range result.Targets {
		measured += len(t.Measurements)
		for _, n := range t.Nuclides {
			data = append(data, []string{
				t.TargetID,
				t.Material,
				fmtFloat(t.BeamEnergy),
				n.Nuclide,
				fmtSci(n.Predicted),
				fmtSci(n.MeanActEoB),
				fmtSci(n.ErrMeanActEoB),
				fmtSci(n.ThinTargetYield),
				strconv.Itoa(n.Measurements),
				agreementLabel(n.Agreement, cfg),
			})
		}
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Processed %d targets from %d reports (%d skipped)\n", len(result.Targets), measured, len(result.Skipped)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Run %s completed in %v with %d workers. Store backend: %s\n", result.RunID, result.Duration, cfg.Workers, cfg.StoreBackend); err != nil {
		return err
	}
	return nil
}

// writeRunCSV writes one record per target and nuclide.
func writeRunCSV(w io.Writer, result *schema.RunResult, fmtFloat, fmtSci func(float64) string) error {
	header := []string{
		"run_id",
		"target_id",
		"material",
		"degrader",
		"irradiation_end",
		"beam_energy",
		"err_beam_energy",
		"beam_current",
		"nuclide",
		"selected_line",
		"predicted",
		"mean_act_eob",
		"err_mean_act_eob",
		"thin_target_yield",
		"err_thin_target_yield",
		"measurements",
		"agreement",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, t := range result.Targets {
			for _, n := range t.Nuclides {
				rec := []string{
					result.RunID,
					t.TargetID,
					t.Material,
					t.Degrader,
					t.IrradiationEnd,
					fmtFloat(t.BeamEnergy),
					fmtFloat(t.ErrBeamEnergy),
					fmtFloat(t.BeamCurrent),
					n.Nuclide,
					fmtFloat(n.SelectedLine),
					fmtSci(n.Predicted),
					fmtSci(n.MeanActEoB),
					fmtSci(n.ErrMeanActEoB),
					fmtSci(n.ThinTargetYield),
					fmtSci(n.ErrThinYield),
					strconv.Itoa(n.Measurements),
					string(n.Agreement),
				}
				if err := cw.Write(rec); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
