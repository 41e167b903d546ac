package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/foilact/internal/contract"
	"github.com/huangsam/foilact/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintReports outputs parsed report metadata and peaks.
func PrintReports(reports []*schema.Report, cfg *contract.Config) error {
	fmtFloat, fmtSci := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, reports)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeReportsCSV(w, reports, fmtFloat, fmtSci)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.XLSXOut, schema.ParquetOut:
		return errUnsupported(cfg.Output, "parsed reports")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeReportsTable(w, reports, cfg, fmtFloat)
		}, "Wrote table")
	}
	return nil
}

// writeReportsTable writes one row per report with its acquisition metadata.
func writeReportsTable(w io.Writer, reports []*schema.Report, cfg *contract.Config, fmtFloat func(float64) string) error {
	maxWidth := GetMaxSourceWidth(cfg)

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Source", "Target", "Detector", "Level", "Acquired", "Live (s)", "Real (s)", "Peaks"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	data := make([][]string, 0, len(reports))
	peaks := 0
	for _, r := range reports {
		peaks += len(r.Peaks)
		data = append(data, []string{
			contract.TruncatePath(r.Source, maxWidth),
			r.TargetID,
			r.Detector,
			r.DetectorLevel,
			r.AcquiredAt,
			fmtFloat(r.LiveTime),
			fmtFloat(r.RealTime),
			strconv.Itoa(len(r.Peaks)),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Parsed %d reports with %d peaks\n", len(reports), peaks)
	return err
}

// writeReportsCSV writes one record per peak. Reports without peaks still get a record.
func writeReportsCSV(w io.Writer, reports []*schema.Report, fmtFloat, fmtSci func(float64) string) error {
	header := []string{
		"source",
		"software",
		"target_id",
		"detector",
		"detector_level",
		"acquired_at",
		"live_time",
		"real_time",
		"energy",
		"net",
		"err_net",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range reports {
			lead := []string{
				r.Source,
				string(r.Software),
				r.TargetID,
				r.Detector,
				r.DetectorLevel,
				r.AcquiredAt,
				fmtFloat(r.LiveTime),
				fmtFloat(r.RealTime),
			}
			if len(r.Peaks) == 0 {
				if err := cw.Write(append(lead, "", "", "")); err != nil {
					return err
				}
				continue
			}
			for _, p := range r.Peaks {
				rec := append(append([]string{}, lead...), fmtFloat(p.Energy), fmtSci(p.Net), fmtSci(p.ErrNet))
				if err := cw.Write(rec); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
