// Package core has the pipeline orchestration: reference loading, report parsing,
// activity reconstruction and prediction, plus the entry points of each command.
package core

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/huangsam/foilact/core/efficiency"
	"github.com/huangsam/foilact/core/target"
	"github.com/huangsam/foilact/core/transport"
	"github.com/huangsam/foilact/core/xs"
	"github.com/huangsam/foilact/internal/contract"
	"github.com/huangsam/foilact/internal/outwriter"
	"github.com/huangsam/foilact/internal/refdata"
	"github.com/huangsam/foilact/schema"
)

// ExecuteRun runs the full pipeline and writes the results in the configured format.
// It serves as the main entry point for the 'run' command.
func ExecuteRun(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	if err := contract.ValidateRunInputs(cfg); err != nil {
		return err
	}
	in, err := LoadInputs(ctx, cfg)
	if err != nil {
		return err
	}
	result, err := Run(ctx, cfg, in, mgr)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteRun(result, cfg)
}

// LoadInputs reads the reference workbooks named by cfg and fits the efficiency
// registry. Any failure here is fatal for a run.
func LoadInputs(ctx context.Context, cfg *contract.Config) (*Inputs, error) {
	ref, irrs, err := loadReference(cfg)
	if err != nil {
		return nil, err
	}
	reg, err := efficiency.BuildRegistry(ctx, cfg.Efficiency, refdata.LoadCalibrationPoints, cfg.Degree, cfg.Workers)
	if err != nil {
		return nil, err
	}
	contract.LogDebug("Efficiency registry ready", "calibrations", reg.Len())
	return &Inputs{
		Irradiations: irrs,
		Reference:    ref,
		Calibrations: reg,
		Predictor:    xs.NewLibrary(cfg.XSDir),
	}, nil
}

// loadReference reads nuclides, materials, beams and the irradiation log.
func loadReference(cfg *contract.Config) (*target.Reference, []schema.Irradiation, error) {
	nuclides, err := refdata.LoadNuclides(cfg.NuclideData)
	if err != nil {
		return nil, nil, err
	}
	materials, err := refdata.LoadMaterials(cfg.MaterialsData)
	if err != nil {
		return nil, nil, err
	}
	beams, err := refdata.LoadBeams(cfg.BeamData)
	if err != nil {
		return nil, nil, err
	}
	irrs, err := refdata.LoadIrradiations(cfg.Irradiations)
	if err != nil {
		return nil, nil, err
	}
	ref, err := target.NewReference(nuclides, materials, beams)
	if err != nil {
		return nil, nil, err
	}
	return ref, irrs, nil
}

// ExecuteParse parses report files and prints their metadata and peaks. Without
// paths every report of the configured directory is parsed.
func ExecuteParse(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, paths []string) error {
	if len(paths) == 0 {
		var err error
		if paths, err = listReports(cfg.ReportsDir); err != nil {
			return err
		}
	}
	reports, err := ParseReportsWithStore(ctx, mgr, paths, cfg.Software)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteReports(reports, cfg)
}

// ParseReportsWithStore is ParseReports reading through the report cache of mgr.
func ParseReportsWithStore(ctx context.Context, mgr contract.StoreManager, paths []string, sw schema.Software) ([]*schema.Report, error) {
	return ParseReports(contextWithStoreManager(ctx, mgr), paths, sw)
}

// ParseReports parses the given files in order. Unreadable or malformed reports are
// logged and left out; empty reports are kept. It fails only when nothing parsed.
func ParseReports(ctx context.Context, paths []string, sw schema.Software) ([]*schema.Report, error) {
	var reports []*schema.Report
	for _, p := range parseAll(ctx, paths, sw) {
		if p.err != nil && !errors.Is(p.err, contract.ErrEmptyResult) {
			if errors.Is(p.err, context.Canceled) || errors.Is(p.err, context.DeadlineExceeded) {
				return nil, p.err
			}
			contract.LogWarn("Report skipped", p.err)
			continue
		}
		reports = append(reports, p.report)
	}
	if len(reports) == 0 {
		return nil, fmt.Errorf("%w: none of %d report(s) could be parsed", contract.ErrParse, len(paths))
	}
	return reports, nil
}

func parseAll(ctx context.Context, paths []string, sw schema.Software) []parsedReport {
	out := make([]parsedReport, len(paths))
	for i, path := range paths {
		out[i] = parseOne(ctx, path, sw)
	}
	return out
}

// ExecuteCalibrate fits every configured efficiency workbook and prints the fit
// quality of each level. When energies are given, each curve is also evaluated there.
func ExecuteCalibrate(ctx context.Context, cfg *contract.Config, energies []float64) error {
	out, err := Calibrate(ctx, cfg, energies)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteCalibrations(out, cfg)
}

// Calibrate builds the efficiency registry and summarizes it.
func Calibrate(ctx context.Context, cfg *contract.Config, energies []float64) (*schema.CalibrationOutput, error) {
	if len(cfg.Efficiency) == 0 {
		return nil, fmt.Errorf("%w: no efficiency workbooks configured", contract.ErrConfiguration)
	}
	reg, err := efficiency.BuildRegistry(ctx, cfg.Efficiency, refdata.LoadCalibrationPoints, cfg.Degree, cfg.Workers)
	if err != nil {
		return nil, err
	}
	out := &schema.CalibrationOutput{Summaries: reg.Summaries()}
	if len(energies) == 0 {
		return out, nil
	}
	for _, s := range out.Summaries {
		cal, err := reg.Lookup(s.Detector, s.Level)
		if err != nil {
			return nil, err
		}
		out.Curves = append(out.Curves, schema.EfficiencyCurve{
			Detector: s.Detector,
			Level:    s.Level,
			Points:   cal.EvaluateAll(energies),
		})
	}
	return out, nil
}

// ExecutePredict prints the expected EoB activities of the given targets, or of
// every target in the irradiation log.
func ExecutePredict(_ context.Context, cfg *contract.Config, targetIDs []string) error {
	preds, err := Predict(cfg, targetIDs)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WritePredictions(preds, cfg)
}

// Predict computes predictions from the reference data alone, without reports.
func Predict(cfg *contract.Config, targetIDs []string) ([]schema.Prediction, error) {
	ref, irrs, err := loadReference(cfg)
	if err != nil {
		return nil, err
	}
	targets, err := target.NewList(irrs, ref)
	if err != nil {
		return nil, err
	}

	selected := targets.All()
	if len(targetIDs) > 0 {
		selected = selected[:0:0]
		for _, id := range targetIDs {
			t, ok := targets.Get(id)
			if !ok {
				return nil, fmt.Errorf("%w: target %q is not in the irradiation log", contract.ErrNotFound, id)
			}
			if !slices.Contains(selected, t) {
				selected = append(selected, t)
			}
		}
	}

	lib := xs.NewLibrary(cfg.XSDir)
	var preds []schema.Prediction
	for _, t := range selected {
		if err := t.Predict(lib); err != nil {
			return nil, err
		}
		for _, n := range t.Nuclides.All() {
			preds = append(preds, schema.Prediction{
				TargetID:   t.ID(),
				Material:   t.Material.Name,
				BeamEnergy: t.Beam.Energy,
				Nuclide:    n.Name,
				Predicted:  n.Predicted,
			})
		}
	}
	return preds, nil
}

// ExecuteTransport fits the transmitted-energy distribution of a beam. With an
// output directory an existing TRANSMIT file is read; otherwise the configured
// simulator is run on the input deck.
func ExecuteTransport(ctx context.Context, cfg *contract.Config, deckPath, outputDir string) error {
	start := time.Now()
	var (
		tr  *transport.Transmit
		err error
	)
	if strings.TrimSpace(outputDir) != "" {
		tr, err = transport.ReadTransmit(outputDir)
	} else {
		var deck *transport.Deck
		if deck, err = transport.ReadDeck(deckPath); err != nil {
			return err
		}
		tr, err = transport.ExecSimulator{Executable: cfg.Simulator}.Simulate(ctx, deck)
	}
	if err != nil {
		return err
	}
	res, err := tr.Result()
	if err != nil {
		return err
	}
	contract.LogDebug("Transport fitted", "ions", res.Ions, "elapsed", time.Since(start))
	return outwriter.NewOutWriter().WriteTransport(res, cfg)
}
