// Package outwriter has output and writer logic.
package outwriter

import (
	"github.com/huangsam/foilact/internal/contract"
	"github.com/huangsam/foilact/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteRun prints the results of a pipeline run using the configured output format.
func (ow *OutWriter) WriteRun(result *schema.RunResult, cfg *contract.Config) error {
	return PrintRunResults(result, cfg)
}

// WriteReports prints parsed reports using the configured output format.
func (ow *OutWriter) WriteReports(reports []*schema.Report, cfg *contract.Config) error {
	return PrintReports(reports, cfg)
}

// WriteCalibrations prints efficiency fits using the configured output format.
func (ow *OutWriter) WriteCalibrations(out *schema.CalibrationOutput, cfg *contract.Config) error {
	return PrintCalibrations(out, cfg)
}

// WritePredictions prints predicted EoB activities using the configured output format.
func (ow *OutWriter) WritePredictions(preds []schema.Prediction, cfg *contract.Config) error {
	return PrintPredictions(preds, cfg)
}

// WriteTransport prints a fitted transmitted-energy distribution using the configured output format.
func (ow *OutWriter) WriteTransport(result schema.TransportResult, cfg *contract.Config) error {
	return PrintTransport(result, cfg)
}
