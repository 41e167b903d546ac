package efficiency

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/huangsam/foilact/internal/contract"
	"github.com/huangsam/foilact/schema"
	"golang.org/x/sync/errgroup"
)

// Key identifies a calibration by detector and detector level.
type Key struct {
	Detector string
	Level    string
}

func (k Key) String() string { return k.Detector + "/" + k.Level }

// Loader reads the calibration lines of one workbook, grouped by detector level.
type Loader func(workbook string) (map[string][]schema.CalibrationPoint, error)

// Registry holds the fitted calibrations of every configured detector.
type Registry struct {
	mu   sync.RWMutex
	cals map[Key]*Calibration
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{cals: make(map[Key]*Calibration)}
}

// Add stores a calibration, replacing any earlier one with the same key.
func (r *Registry) Add(c *Calibration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cals[Key{Detector: c.Detector, Level: c.Level}] = c
}

// Lookup returns the calibration for a detector level.
func (r *Registry) Lookup(detector, level string) (*Calibration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.cals[Key{Detector: detector, Level: level}]
	if !ok {
		return nil, fmt.Errorf("%w: no efficiency calibration for detector %q level %q", contract.ErrConfiguration, detector, level)
	}
	return c, nil
}

// Len returns the number of calibrations.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cals)
}

// Summaries lists every calibration ordered by detector then level.
func (r *Registry) Summaries() []schema.CalibrationSummary {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := slices.SortedFunc(maps.Keys(r.cals), func(a, b Key) int {
		return cmp.Or(cmp.Compare(a.Detector, b.Detector), cmp.Compare(a.Level, b.Level))
	})
	out := make([]schema.CalibrationSummary, 0, len(keys))
	for _, k := range keys {
		out = append(out, r.cals[k].Summary())
	}
	return out
}

// BuildRegistry loads every workbook and fits each level concurrently, one goroutine
// per detector. The first failure cancels the remaining work.
func BuildRegistry(ctx context.Context, workbooks map[string]string, load Loader, degree, workers int) (*Registry, error) {
	reg := NewRegistry()
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}

	for _, detector := range slices.Sorted(maps.Keys(workbooks)) {
		workbook := workbooks[detector]
		g.Go(func() error {
			levels, err := load(workbook)
			if err != nil {
				return fmt.Errorf("loading efficiency workbook for %s: %w", detector, err)
			}
			for _, level := range slices.Sorted(maps.Keys(levels)) {
				if err := ctx.Err(); err != nil {
					return err
				}
				cal, err := Fit(detector, level, levels[level], degree)
				if err != nil {
					return err
				}
				reg.Add(cal)
				contract.LogDebug("Fitted efficiency", "detector", detector, "level", level, "adj_r2", cal.AdjustedR2)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reg, nil
}
