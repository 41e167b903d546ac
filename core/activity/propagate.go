package activity

import "math"

// MeasuredInput carries one gamma line of one acquisition into the correction chain.
// Intensities are in percent.
type MeasuredInput struct {
	Net, ErrNet               float64
	LiveTime, RealTime        float64
	Lambda, ErrLambda         float64
	Efficiency, ErrEfficiency float64
	Intensity, ErrIntensity   float64
}

// Result is an activity in Bq with its absolute uncertainty.
type Result struct {
	Activity float64 `json:"activity"`
	Err      float64 `json:"err"`

	// Degenerate is set when efficiency or intensity left the activity undefined
	// and the result was zeroed.
	Degenerate bool `json:"-"`
}

// DeadTime returns the dead-time correction real/live. It carries no uncertainty.
func DeadTime(liveTime, realTime float64) float64 {
	return realTime / liveTime
}

// DecayDuringMeasurement returns λ/(1 − e^{−λt}) and its uncertainty for an
// acquisition of real time t.
func DecayDuringMeasurement(lambda, errLambda, realTime float64) (float64, float64) {
	x := lambda * realTime
	denom := -math.Expm1(-x)
	c := lambda / denom
	errC := (1 - math.Exp(-x)*(1+x)) / (denom * denom) * errLambda
	return c, errC
}

// Cooling returns the decay factor e^{λt} over t seconds and its uncertainty.
func Cooling(lambda, errLambda, t float64) (float64, float64) {
	c := math.Exp(lambda * t)
	return c, t * c * errLambda
}

// Measured applies the dead-time and decay-during-measurement corrections and divides
// by efficiency and emission probability. A line with zero net counts yields zero
// activity with zero uncertainty.
func Measured(in MeasuredInput) Result {
	denom := in.Efficiency * in.Intensity / 100
	if denom == 0 || !finite(denom) || in.LiveTime <= 0 {
		return Result{Degenerate: in.Net != 0}
	}

	cdt := DeadTime(in.LiveTime, in.RealTime)
	cmeas, errCmeas := DecayDuringMeasurement(in.Lambda, in.ErrLambda, in.RealTime)
	act := cdt * cmeas * in.Net / denom
	if !finite(act) {
		return Result{Degenerate: true}
	}
	if act == 0 {
		return Result{}
	}

	rel := sq(in.ErrNet/in.Net) +
		sq(in.ErrEfficiency/in.Efficiency) +
		sq(in.ErrIntensity/in.Intensity) +
		sq(errCmeas/cmeas)
	return Result{Activity: act, Err: zeroNaN(act * math.Sqrt(rel))}
}

// BackCorrect extrapolates a measured activity to t seconds earlier.
// A zero activity keeps a zero uncertainty regardless of t.
func BackCorrect(r Result, lambda, errLambda, t float64) Result {
	if r.Activity == 0 {
		return Result{Degenerate: r.Degenerate}
	}
	c, errC := Cooling(lambda, errLambda, t)
	eob := r.Activity * c
	rel := math.Sqrt(sq(r.Err/r.Activity) + sq(errC/c))
	return Result{Activity: eob, Err: zeroNaN(rel * eob)}
}

func sq(x float64) float64 { return x * x }

func finite(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }

func zeroNaN(x float64) float64 {
	if !finite(x) {
		return 0
	}
	return math.Abs(x)
}
