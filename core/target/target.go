// Package target aggregates the measurements of irradiated foils into mean EoB
// activities, thin-target yields and cross-section predictions.
package target

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/huangsam/foilact/core/activity"
	"github.com/huangsam/foilact/core/efficiency"
	"github.com/huangsam/foilact/core/nuclide"
	"github.com/huangsam/foilact/core/xs"
	"github.com/huangsam/foilact/internal/contract"
	"github.com/huangsam/foilact/schema"
)

// ErrCoolingTime is the assumed uncertainty of every cooling time, in seconds.
const ErrCoolingTime = 2.0

// referenceCurrent is the splitter current (µA) at which beam currents are tabulated.
const referenceCurrent = 50.0

// Calibrations looks up the efficiency curve of a detector level.
type Calibrations interface {
	Lookup(detector, level string) (*efficiency.Calibration, error)
}

// Predictor returns the expected EoB activity of a nuclide.
type Predictor interface {
	Predict(nuclide string, in xs.Input) (float64, error)
}

// Reference is the reference data shared by every target of a run.
type Reference struct {
	Nuclides  *nuclide.Set
	Materials map[string]schema.Material
	Beams     map[string]schema.Beam
}

// NewReference validates the nuclide table and indexes materials and beams.
func NewReference(nuclides []schema.NuclideData, materials []schema.Material, beams []schema.Beam) (*Reference, error) {
	set, err := nuclide.NewSet()
	if err != nil {
		return nil, err
	}
	for _, d := range nuclides {
		n, err := nuclide.New(d)
		if err != nil {
			return nil, err
		}
		if err := set.Add(n); err != nil {
			return nil, err
		}
	}
	set.SortByElement()

	ref := &Reference{
		Nuclides:  set,
		Materials: make(map[string]schema.Material, len(materials)),
		Beams:     make(map[string]schema.Beam, len(beams)),
	}
	for _, m := range materials {
		ref.Materials[m.Name] = m
	}
	for _, b := range beams {
		ref.Beams[b.Degrader] = b
	}
	return ref, nil
}

// Measurement is one acquisition of a target.
type Measurement struct {
	Report      *schema.Report
	CoolingTime float64
	Nuclides    *nuclide.Set
}

// Result exports the measurement.
func (m *Measurement) Result() schema.MeasurementResult {
	lines := make(map[string][]schema.LineResult, m.Nuclides.Len())
	for _, n := range m.Nuclides.All() {
		lines[n.Name] = n.LineResults()
	}
	return schema.MeasurementResult{
		AcquiredAt:    m.Report.AcquiredAt,
		Detector:      m.Report.Detector,
		DetectorLevel: m.Report.DetectorLevel,
		LiveTime:      m.Report.LiveTime,
		RealTime:      m.Report.RealTime,
		CoolingTime:   m.CoolingTime,
		Source:        m.Report.Source,
		Lines:         lines,
	}
}

// Target is one irradiated foil.
type Target struct {
	Irradiation     schema.Irradiation
	IrradiationTime float64
	Beam            schema.Beam
	ActualCurrent   float64 // µA on target
	Material        schema.Material
	Nuclides        *nuclide.Set
	Measurements    []*Measurement
}

// New builds a target from its irradiation record. The nuclides are those of the
// material inventory, in reference order.
func New(irr schema.Irradiation, ref *Reference) (*Target, error) {
	tIrr, err := activity.TimeDifference(irr.Start, irr.End)
	if err != nil {
		return nil, fmt.Errorf("target %s: %w", irr.TargetID, err)
	}
	beam, ok := ref.Beams[irr.Degrader]
	if !ok {
		return nil, fmt.Errorf("%w: no beam characteristics for degrader %q of target %s", contract.ErrNotFound, irr.Degrader, irr.TargetID)
	}
	mat, ok := ref.Materials[irr.Material]
	if !ok {
		return nil, fmt.Errorf("%w: target material %q of target %s", contract.ErrNotFound, irr.Material, irr.TargetID)
	}
	return &Target{
		Irradiation:     irr,
		IrradiationTime: tIrr,
		Beam:            beam,
		ActualCurrent:   irr.Current / referenceCurrent * beam.Current,
		Material:        mat,
		Nuclides:        ref.Nuclides.Select(mat.Inventory),
	}, nil
}

// ID returns the target identifier.
func (t *Target) ID() string { return t.Irradiation.TargetID }

// Matches reports whether a report identifier refers to this target.
func (t *Target) Matches(id string) bool {
	return strings.EqualFold(strings.TrimSpace(id), strings.TrimSpace(t.ID()))
}

// AddReport records an acquisition of the target and matches its peaks. Measurements
// stay ordered by acquisition time.
func (t *Target) AddReport(rep *schema.Report) error {
	if !t.Matches(rep.TargetID) {
		return fmt.Errorf("%w: report %s is for target %q, not %q", contract.ErrValidation, rep.Source, rep.TargetID, t.ID())
	}
	tCool, err := activity.TimeDifference(t.Irradiation.End, rep.AcquiredAt)
	if err != nil {
		return fmt.Errorf("report %s: %w", rep.Source, err)
	}
	m := &Measurement{Report: rep, CoolingTime: tCool, Nuclides: t.Nuclides.Clone()}
	for _, n := range m.Nuclides.All() {
		n.MatchPeaks(rep.Peaks)
	}
	t.Measurements = append(t.Measurements, m)
	slices.SortStableFunc(t.Measurements, func(a, b *Measurement) int {
		return cmp.Compare(a.Report.AcquiredAt, b.Report.AcquiredAt)
	})
	return nil
}

// ComputeActivities evaluates activities and EoB activities of every measurement.
// A measurement taken with an uncalibrated detector level aborts the computation.
func (t *Target) ComputeActivities(cals Calibrations) error {
	for _, m := range t.Measurements {
		cal, err := cals.Lookup(m.Report.Detector, m.Report.DetectorLevel)
		if err != nil {
			return fmt.Errorf("target %s, report %s: %w", t.ID(), m.Report.Source, err)
		}
		for _, n := range m.Nuclides.All() {
			for _, line := range n.Lines {
				if line.Net != 0 && !cal.InRange(line.Energy) {
					contract.LogDebug("Line outside calibrated energy range", "target", t.ID(), "nuclide", n.Name, "energy", line.Energy, "level", m.Report.DetectorLevel)
				}
			}
			for _, e := range n.ComputeActivities(cal, m.Report.LiveTime, m.Report.RealTime, m.CoolingTime) {
				contract.LogWarn("Activity zeroed",
					fmt.Errorf("target %s, %s at %.2f keV: efficiency or intensity is zero", t.ID(), n.Name, e))
			}
		}
	}
	return nil
}

// ComputeMeans combines the EoB activities of the selected line of each nuclide over
// all measurements and derives the thin-target yield.
func (t *Target) ComputeMeans() {
	for _, n := range t.Nuclides.All() {
		var values, errs []float64
		for _, m := range t.Measurements {
			mn, ok := m.Nuclides.Get(n.Name)
			if !ok {
				continue
			}
			sel, ok := mn.SelectedLine()
			if !ok || sel.ActEoB == 0 {
				continue
			}
			values = append(values, sel.ActEoB)
			errs = append(errs, sel.ErrActEoB)
		}
		n.MeanActEoB, n.ErrMeanActEoB = MeanEoB(values, errs)
		n.Contributions = len(values)
		n.ThinTargetYield, n.ErrThinYield = ThinTargetYield(n.MeanActEoB, n.ErrMeanActEoB, t.ActualCurrent)
	}
}

// Predict fills the expected EoB activity of each nuclide. Nuclides without a usable
// monitor cross-section keep a zero prediction; any other failure is returned.
func (t *Target) Predict(p Predictor) error {
	for _, n := range t.Nuclides.All() {
		act, err := p.Predict(n.Name, xs.Input{
			BeamEnergy:      t.Beam.Energy,
			IrradiationTime: t.IrradiationTime,
			Current:         t.ActualCurrent,
			Density:         t.Material.Density,
			Thickness:       t.Irradiation.Thickness,
			Lambda:          n.Lambda,
			MolarMass:       t.Material.MolarMass,
		})
		switch {
		case err == nil:
			n.Predicted = act
		case errors.Is(err, contract.ErrNotFound):
			contract.LogDebug("No monitor cross-section", "nuclide", n.Name)
		case errors.Is(err, xs.ErrOutOfRange):
			contract.LogWarn("Prediction skipped", fmt.Errorf("target %s: %w", t.ID(), err))
		default:
			return fmt.Errorf("target %s: %w", t.ID(), err)
		}
	}
	return nil
}

// Result exports the target with its measurements.
func (t *Target) Result() schema.TargetResult {
	res := schema.TargetResult{
		TargetID:       t.ID(),
		Material:       t.Material.Name,
		Degrader:       t.Irradiation.Degrader,
		IrradiationEnd: t.Irradiation.End,
		IrradiationSec: t.IrradiationTime,
		BeamEnergy:     t.Beam.Energy,
		ErrBeamEnergy:  t.Beam.ErrEnergy,
		BeamCurrent:    t.ActualCurrent,
	}
	for _, n := range t.Nuclides.All() {
		res.Nuclides = append(res.Nuclides, schema.NuclideResult{
			Nuclide:         n.Name,
			SelectedLine:    n.SelectedEnergy,
			Predicted:       n.Predicted,
			MeanActEoB:      n.MeanActEoB,
			ErrMeanActEoB:   n.ErrMeanActEoB,
			ThinTargetYield: n.ThinTargetYield,
			ErrThinYield:    n.ErrThinYield,
			Measurements:    n.Contributions,
			Agreement:       contract.ClassifyAgreement(n.MeanActEoB, n.Predicted),
		})
	}
	for _, m := range t.Measurements {
		res.Measurements = append(res.Measurements, m.Result())
	}
	return res
}

// MeanEoB combines non-zero EoB activities. No values give 0 ± 0 and a single value is
// returned as is. Otherwise the inverse-variance weighted mean is used; values that
// carry no uncertainty dominate and are averaged on their own with zero uncertainty.
func MeanEoB(values, errs []float64) (float64, float64) {
	switch len(values) {
	case 0:
		return 0, 0
	case 1:
		return values[0], errs[0]
	}

	var exact []float64
	for i, e := range errs {
		if e == 0 {
			exact = append(exact, values[i])
		}
	}
	if len(exact) > 0 {
		var sum float64
		for _, v := range exact {
			sum += v
		}
		return sum / float64(len(exact)), 0
	}

	var sumW, sumWX float64
	for i, v := range values {
		w := 1 / (errs[i] * errs[i])
		sumW += w
		sumWX += w * v
	}
	return sumWX / sumW, math.Sqrt(1 / sumW)
}

// ThinTargetYield normalises an activity and its uncertainty by the beam current.
func ThinTargetYield(act, errAct, current float64) (float64, float64) {
	if current == 0 {
		return 0, 0
	}
	return act / current, errAct / current
}
