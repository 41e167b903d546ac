package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/foilact/core/target"
	"github.com/huangsam/foilact/internal/contract"
	"github.com/huangsam/foilact/schema"
)

// Inputs is the reference data a run works from.
type Inputs struct {
	Irradiations []schema.Irradiation
	Reference    *target.Reference
	Calibrations target.Calibrations
	Predictor    target.Predictor
}

// parsedReport is one entry of the report directory after parsing.
type parsedReport struct {
	path   string
	report *schema.Report
	err    error
}

// Run executes the pipeline: it builds the targets, reads the report directory once,
// hands every report to its target and then processes the targets on cfg.Workers
// goroutines. Reports that cannot be parsed or matched to a target are skipped with a
// warning. The first fatal target error, in target order, aborts the run.
func Run(ctx context.Context, cfg *contract.Config, in *Inputs, mgr contract.StoreManager) (*schema.RunResult, error) {
	start := time.Now()
	runUUID := uuid.NewString()
	if !shouldSuppressHeader(ctx) {
		contract.LogInfo("Starting run",
			"run_id", runUUID,
			"reports_dir", cfg.ReportsDir,
			"software", cfg.Software,
			"workers", cfg.Workers,
		)
	}

	// Add store manager to context for use in worker goroutines
	ctx = contextWithStoreManager(ctx, mgr)

	// --- 1. Targets ---
	targets, err := target.NewList(in.Irradiations, in.Reference)
	if err != nil {
		return nil, err
	}

	// --- 2. Reports ---
	parsed, err := readReports(ctx, cfg.ReportsDir, cfg.Software, cfg.Workers)
	if err != nil {
		return nil, err
	}
	skipped := distributeReports(targets, parsed)

	// --- 3. Begin Run Tracking (if configured) ---
	var store contract.ResultStore
	if mgr != nil {
		store = mgr.GetResultStore()
	}
	var runID int64
	if store != nil {
		params := map[string]any{
			"reports_dir": cfg.ReportsDir,
			"software":    string(cfg.Software),
			"degree":      cfg.Degree,
			"workers":     cfg.Workers,
			"detectors":   cfg.Detectors(),
		}
		runID, err = store.BeginRun(runUUID, start, params)
		if err != nil {
			contract.LogWarn("Run tracking initialization failed", err)
		} else if runID > 0 {
			ctx = withRunID(ctx, runID)
		}
	}

	// --- 4. Target processing ---
	results, errs := processTargets(ctx, cfg.Workers, targets.All(), in)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	// --- 5. End Run Tracking ---
	if store != nil && runID > 0 {
		if err := store.EndRun(runID, time.Now(), len(results)); err != nil {
			contract.LogWarn("Failed to finalize run tracking", err)
		}
	}

	return &schema.RunResult{
		RunID:    runUUID,
		Started:  start,
		Duration: time.Since(start),
		Software: cfg.Software,
		Targets:  results,
		Skipped:  skipped,
	}, nil
}

// listReports returns the regular, non-hidden files of dir in name order.
func listReports(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: reading reports directory: %v", contract.ErrConfiguration, err)
	}
	var paths []string
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	slices.Sort(paths)
	return paths, nil
}

// readReports parses every report of dir on a worker pool. Results keep the
// directory order.
func readReports(ctx context.Context, dir string, sw schema.Software, workers int) ([]parsedReport, error) {
	paths, err := listReports(dir)
	if err != nil {
		return nil, err
	}
	out := make([]parsedReport, len(paths))

	idxCh := make(chan int, len(paths))
	var wg sync.WaitGroup
	for range max(workers, 1) {
		wg.Go(func() {
			for i := range idxCh {
				// Each goroutine writes to a unique index of out
				out[i] = parseOne(ctx, paths[i], sw)
			}
		})
	}
	for i := range paths {
		idxCh <- i
	}
	close(idxCh)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func parseOne(ctx context.Context, path string, sw schema.Software) parsedReport {
	if err := ctx.Err(); err != nil {
		return parsedReport{path: path, err: err}
	}
	info, err := os.Stat(path)
	if err != nil {
		return parsedReport{path: path, err: err}
	}
	rep, err := cachedParseReport(ctx, path, info, sw)
	return parsedReport{path: path, report: rep, err: err}
}

// distributeReports hands each parsed report to its target and returns the paths of
// the reports that were skipped.
func distributeReports(targets *target.List, parsed []parsedReport) []string {
	var skipped []string
	for _, p := range parsed {
		if p.err != nil && !errors.Is(p.err, contract.ErrEmptyResult) {
			contract.LogWarn("Report skipped", p.err)
			skipped = append(skipped, p.path)
			continue
		}
		if p.err != nil {
			contract.LogWarn("Report has no peaks", p.err)
		}
		t, ok := targets.Get(p.report.TargetID)
		if !ok {
			contract.LogWarn("Report skipped", fmt.Errorf("%w: no irradiation record for target %q of %s", contract.ErrNotFound, p.report.TargetID, p.path))
			skipped = append(skipped, p.path)
			continue
		}
		if err := t.AddReport(p.report); err != nil {
			contract.LogWarn("Report skipped", err)
			skipped = append(skipped, p.path)
		}
	}
	return skipped
}

// processTargets computes activities, means and predictions of every target using a
// worker pool. Results and errors are indexed like targets.
func processTargets(ctx context.Context, workers int, targets []*target.Target, in *Inputs) ([]schema.TargetResult, []error) {
	results := make([]schema.TargetResult, len(targets))
	errs := make([]error, len(targets))

	idxCh := make(chan int, len(targets))
	var wg sync.WaitGroup
	for range max(workers, 1) {
		wg.Go(func() {
			for i := range idxCh {
				if err := ctx.Err(); err != nil {
					errs[i] = err
					continue
				}
				results[i], errs[i] = processTarget(ctx, targets[i], in)
			}
		})
	}
	for i := range targets {
		idxCh <- i
	}
	close(idxCh)
	wg.Wait()

	return results, errs
}

// processTarget runs the per-target chain and records the outcome when run
// tracking is enabled.
func processTarget(ctx context.Context, t *target.Target, in *Inputs) (schema.TargetResult, error) {
	if err := t.ComputeActivities(in.Calibrations); err != nil {
		return schema.TargetResult{}, err
	}
	t.ComputeMeans()
	if in.Predictor != nil {
		if err := t.Predict(in.Predictor); err != nil {
			return schema.TargetResult{}, err
		}
	}
	res := t.Result()
	if runID, ok := getRunID(ctx); ok && runID > 0 {
		recordTarget(ctx, runID, res)
	}
	return res, nil
}

// recordTarget stores a target result through the store manager of the context.
func recordTarget(ctx context.Context, runID int64, res schema.TargetResult) {
	mgr := storeManagerFromContext(ctx)
	if mgr == nil {
		return
	}
	store := mgr.GetResultStore()
	if store == nil {
		return
	}
	if err := store.RecordTarget(runID, res); err != nil {
		contract.LogWarn("Failed to record target", fmt.Errorf("target %s: %w", res.TargetID, err))
	}
}
