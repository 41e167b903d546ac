package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/foilact/internal/contract"
	"github.com/huangsam/foilact/schema"
)

// PrintTransport outputs the fitted transmitted-energy distribution.
func PrintTransport(result schema.TransportResult, cfg *contract.Config) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		header := []string{"projectile", "layer", "ions", "mean", "sigma"}
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
				return cw.Write([]string{result.Projectile, result.Layer, strconv.Itoa(result.Ions), fmtFloat(result.Mean), fmtFloat(result.Sigma)})
			})
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.XLSXOut, schema.ParquetOut:
		return errUnsupported(cfg.Output, "transport results")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			_, err := fmt.Fprintf(w, "%s through %s: %s ± %s MeV (%d ions)\n",
				result.Projectile, result.Layer, fmtFloat(result.Mean), fmtFloat(result.Sigma), result.Ions)
			return err
		}, "Wrote summary")
	}
	return nil
}
