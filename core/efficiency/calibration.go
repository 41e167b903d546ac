// Package efficiency fits and evaluates detector efficiency curves.
//
// The model is a polynomial in ln(E) for ln(efficiency), estimated by weighted least
// squares with weights equal to the inverse squared relative uncertainty of each
// experimental efficiency. Calibrations are grouped by detector and detector level in a
// Registry that is built once and handed to the activity computations.
package efficiency

import (
	"fmt"
	"math"

	"github.com/huangsam/foilact/core/activity"
	"github.com/huangsam/foilact/internal/contract"
	"github.com/huangsam/foilact/schema"
)

// Calibration is one fitted efficiency curve. It is immutable once returned by Fit.
type Calibration struct {
	Detector     string
	Level        string
	Coefficients []float64   // b, lowest power first
	Design       [][]float64 // X, one row per calibration line
	Weights      []float64   // diagonal of W
	Covariance   [][]float64 // (XᵀWX)⁻¹
	MSE          float64
	AdjustedR2   float64
	MinEnergy    float64
	MaxEnergy    float64
}

// ExperimentalEfficiency reconstructs the activity of a reference source from its
// measured line and divides it by the certified activity decayed to the measurement.
func ExperimentalEfficiency(p schema.CalibrationPoint) (float64, float64, error) {
	lambda, errLambda, err := activity.DecayConstant(p.HalfLife, p.ErrHalfLife, p.Unit)
	if err != nil {
		return 0, 0, err
	}
	tRef, err := activity.TimeDifference(p.RefDate, p.MeasuredAt)
	if err != nil {
		return 0, 0, err
	}
	measured := activity.Measured(activity.MeasuredInput{
		Net: p.Net, ErrNet: p.ErrNet,
		LiveTime: p.LiveTime, RealTime: p.RealTime,
		Lambda: lambda, ErrLambda: errLambda,
		Efficiency: 1,
		Intensity:  p.Intensity, ErrIntensity: p.ErrIntensity,
	})
	act := activity.BackCorrect(measured, lambda, errLambda, tRef)
	if act.Activity <= 0 || p.RefActivity <= 0 {
		return 0, 0, fmt.Errorf("%w: no usable activity for the %.2f keV line", contract.ErrValue, p.Energy)
	}
	eff := act.Activity / p.RefActivity
	rel := math.Hypot(act.Err/act.Activity, p.ErrRefActivity/p.RefActivity)
	return eff, rel * eff, nil
}

// Fit estimates a curve with p coefficients from the calibration lines. Lines whose
// experimental efficiency cannot be formed or carries no uncertainty are left out.
func Fit(detector, level string, points []schema.CalibrationPoint, p int) (*Calibration, error) {
	if p < 1 {
		return nil, fmt.Errorf("%w: at least one coefficient is required", contract.ErrConfiguration)
	}

	var x [][]float64
	var y, w, energies []float64
	for _, pt := range points {
		if pt.Energy <= 0 {
			continue
		}
		eff, errEff, err := ExperimentalEfficiency(pt)
		if err != nil || errEff <= 0 || math.IsNaN(errEff) {
			contract.LogDebug("Skipping calibration line", "detector", detector, "level", level, "energy", pt.Energy, "error", err)
			continue
		}
		x = append(x, powers(math.Log(pt.Energy), p))
		y = append(y, math.Log(eff))
		w = append(w, 1/sq(errEff/eff))
		energies = append(energies, pt.Energy)
	}

	n := len(y)
	if n <= p {
		return nil, fmt.Errorf("%w: %s/%s has %d usable lines, need more than %d", contract.ErrConfiguration, detector, level, n, p)
	}

	// Normal equations: (XᵀWX) b = XᵀWY
	xtwx := make([][]float64, p)
	xtwy := make([]float64, p)
	for i := range p {
		xtwx[i] = make([]float64, p)
		for k := range n {
			xtwy[i] += x[k][i] * w[k] * y[k]
			for j := range p {
				xtwx[i][j] += x[k][i] * w[k] * x[k][j]
			}
		}
	}
	cov, err := invert(xtwx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s/%s: %v", contract.ErrConfiguration, detector, level, err)
	}
	b := matVec(cov, xtwy)

	var sse, sumW, sumWY float64
	for k := range n {
		r := y[k] - dot(b, x[k])
		sse += w[k] * r * r
		sumW += w[k]
		sumWY += w[k] * y[k]
	}
	mean := sumWY / sumW
	var ssto float64
	for k := range n {
		ssto += w[k] * sq(y[k]-mean)
	}
	adj := 0.0
	if ssto > 0 {
		adj = 1 - float64(n-1)/float64(n-p)*sse/ssto
	}

	minE, maxE := energies[0], energies[0]
	for _, e := range energies {
		minE = math.Min(minE, e)
		maxE = math.Max(maxE, e)
	}

	return &Calibration{
		Detector:     detector,
		Level:        level,
		Coefficients: b,
		Design:       x,
		Weights:      w,
		Covariance:   cov,
		MSE:          sse / float64(n-p),
		AdjustedR2:   adj,
		MinEnergy:    minE,
		MaxEnergy:    maxE,
	}, nil
}

// Evaluate returns the efficiency at energy E (keV) and its uncertainty from the
// regression prediction variance.
func (c *Calibration) Evaluate(energy float64) (float64, float64) {
	if energy <= 0 {
		return 0, 0
	}
	xm := powers(math.Log(energy), len(c.Coefficients))
	eff := math.Exp(dot(c.Coefficients, xm))
	variance := c.MSE * dot(xm, matVec(c.Covariance, xm))
	if variance < 0 {
		variance = 0
	}
	return eff, eff * math.Sqrt(variance)
}

// EvaluateAll evaluates each energy independently with the same coefficients.
func (c *Calibration) EvaluateAll(energies []float64) []schema.EfficiencyPoint {
	out := make([]schema.EfficiencyPoint, len(energies))
	for i, e := range energies {
		eff, err := c.Evaluate(e)
		out[i] = schema.EfficiencyPoint{Energy: e, Efficiency: eff, Err: err}
	}
	return out
}

// InRange reports whether energy lies within the calibrated lines.
func (c *Calibration) InRange(energy float64) bool {
	return energy >= c.MinEnergy && energy <= c.MaxEnergy
}

// Summary describes the fit for display.
func (c *Calibration) Summary() schema.CalibrationSummary {
	return schema.CalibrationSummary{
		Detector:     c.Detector,
		Level:        c.Level,
		Points:       len(c.Design),
		Coefficients: append([]float64(nil), c.Coefficients...),
		MSE:          c.MSE,
		AdjustedR2:   c.AdjustedR2,
		MinEnergy:    c.MinEnergy,
		MaxEnergy:    c.MaxEnergy,
	}
}

func powers(v float64, p int) []float64 {
	out := make([]float64, p)
	acc := 1.0
	for i := range p {
		out[i] = acc
		acc *= v
	}
	return out
}

func sq(v float64) float64 { return v * v }

func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

func matVec(m [][]float64, v []float64) []float64 {
	out := make([]float64, len(m))
	for i, row := range m {
		out[i] = dot(row, v)
	}
	return out
}
