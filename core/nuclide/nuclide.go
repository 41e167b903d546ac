// Package nuclide models radionuclides with their gamma lines and the per-line
// activities derived from one acquisition.
package nuclide

import (
	"fmt"
	"math"
	"slices"

	"github.com/huangsam/foilact/core/activity"
	"github.com/huangsam/foilact/internal/contract"
	"github.com/huangsam/foilact/schema"
)

// MatchTolerance is the largest energy deviation (keV, exclusive) between a peak and a line.
const MatchTolerance = 1.0

// lineEnergyEpsilon absorbs spreadsheet rounding when locating the selected line.
const lineEnergyEpsilon = 1e-6

// LineRecord is one gamma line together with everything measured for it.
type LineRecord struct {
	schema.GammaLine
	Net       float64
	ErrNet    float64
	Act       float64
	ErrAct    float64
	ActEoB    float64
	ErrActEoB float64
}

// Evaluator returns the detector efficiency and its uncertainty at an energy.
type Evaluator interface {
	Evaluate(energy float64) (float64, float64)
}

// Nuclide is a radionuclide with its decay data and ordered gamma lines.
type Nuclide struct {
	Name           string
	HalfLife       float64
	ErrHalfLife    float64
	Unit           schema.HalfLifeUnit
	Lambda         float64
	ErrLambda      float64
	SelectedEnergy float64
	Lines          []LineRecord

	// Target-level results
	MeanActEoB      float64
	ErrMeanActEoB   float64
	Contributions   int
	Predicted       float64
	ThinTargetYield float64
	ErrThinYield    float64
}

// New builds a nuclide from its reference data. The selected line must be one of the
// tabulated gamma lines.
func New(d schema.NuclideData) (*Nuclide, error) {
	lambda, errLambda, err := activity.DecayConstant(d.HalfLife, d.ErrHalfLife, d.Unit)
	if err != nil {
		return nil, fmt.Errorf("nuclide %s: %w", d.Name, err)
	}
	n := &Nuclide{
		Name:           d.Name,
		HalfLife:       d.HalfLife,
		ErrHalfLife:    d.ErrHalfLife,
		Unit:           d.Unit,
		Lambda:         lambda,
		ErrLambda:      errLambda,
		SelectedEnergy: d.SelectedLine,
		Lines:          make([]LineRecord, len(d.Lines)),
	}
	for i, g := range d.Lines {
		n.Lines[i] = LineRecord{GammaLine: g}
	}
	if _, ok := n.SelectedLine(); !ok {
		return nil, fmt.Errorf("%w: selected line %.3f keV of %s is not in its gamma-line table", contract.ErrValidation, d.SelectedLine, d.Name)
	}
	return n, nil
}

// Clone returns a copy with fresh measurement and target-level results.
func (n *Nuclide) Clone() *Nuclide {
	c := *n
	c.Lines = make([]LineRecord, len(n.Lines))
	for i, l := range n.Lines {
		c.Lines[i] = LineRecord{GammaLine: l.GammaLine}
	}
	c.MeanActEoB, c.ErrMeanActEoB, c.Contributions = 0, 0, 0
	c.Predicted, c.ThinTargetYield, c.ErrThinYield = 0, 0, 0
	return &c
}

// SelectedLine returns the record of the line used for target-level means.
func (n *Nuclide) SelectedLine() (*LineRecord, bool) {
	i := slices.IndexFunc(n.Lines, func(l LineRecord) bool {
		return math.Abs(l.Energy-n.SelectedEnergy) <= lineEnergyEpsilon
	})
	if i < 0 {
		return nil, false
	}
	return &n.Lines[i], true
}

// MatchPeaks assigns to every line the net area of the closest peak within
// MatchTolerance. Equidistant peaks resolve to the lowest peak index. Lines without a
// peak get zero net counts and zero uncertainty.
func (n *Nuclide) MatchPeaks(peaks []schema.Peak) {
	for i := range n.Lines {
		line := &n.Lines[i]
		if j := closestPeak(line.Energy, peaks); j >= 0 {
			line.Net, line.ErrNet = peaks[j].Net, peaks[j].ErrNet
		} else {
			line.Net, line.ErrNet = 0, 0
		}
	}
}

func closestPeak(energy float64, peaks []schema.Peak) int {
	best, bestDev := -1, MatchTolerance
	for j, p := range peaks {
		dev := math.Abs(p.Energy - energy)
		if dev < bestDev {
			best, bestDev = j, dev
		}
	}
	return best
}

// ComputeActivities fills the activity and EoB activity of every line for an
// acquisition with the given live and real time, cooled for tCool seconds since the end
// of irradiation. It returns the energies of lines whose activity was zeroed because the
// efficiency or intensity made it undefined.
func (n *Nuclide) ComputeActivities(eval Evaluator, liveTime, realTime, tCool float64) []float64 {
	var degenerate []float64
	for i := range n.Lines {
		line := &n.Lines[i]
		eff, errEff := eval.Evaluate(line.Energy)
		act := activity.Measured(activity.MeasuredInput{
			Net: line.Net, ErrNet: line.ErrNet,
			LiveTime: liveTime, RealTime: realTime,
			Lambda: n.Lambda, ErrLambda: n.ErrLambda,
			Efficiency: eff, ErrEfficiency: errEff,
			Intensity: line.Intensity, ErrIntensity: line.ErrIntensity,
		})
		eob := activity.BackCorrect(act, n.Lambda, n.ErrLambda, tCool)
		line.Act, line.ErrAct = act.Activity, act.Err
		line.ActEoB, line.ErrActEoB = eob.Activity, eob.Err
		if act.Degenerate {
			degenerate = append(degenerate, line.Energy)
		}
	}
	return degenerate
}

// LineResults exports the per-line values.
func (n *Nuclide) LineResults() []schema.LineResult {
	out := make([]schema.LineResult, len(n.Lines))
	for i, l := range n.Lines {
		out[i] = schema.LineResult{
			Energy: l.Energy,
			Net:    l.Net, ErrNet: l.ErrNet,
			Act: l.Act, ErrAct: l.ErrAct,
			ActEoB: l.ActEoB, ErrActEoB: l.ErrActEoB,
		}
	}
	return out
}
