package core

import (
	"fmt"

	"github.com/huangsam/foilact/core/activity"
	"github.com/huangsam/foilact/internal/contract"
	"github.com/huangsam/foilact/schema"
)

// LineInput is one gamma line of one acquisition, with everything needed to turn
// its net area into an activity without reference workbooks.
type LineInput struct {
	Net           float64             `json:"net"`
	ErrNet        float64             `json:"err_net"`
	LiveTime      float64             `json:"live_time"`
	RealTime      float64             `json:"real_time"`
	HalfLife      float64             `json:"half_life"`
	ErrHalfLife   float64             `json:"err_half_life"`
	Unit          schema.HalfLifeUnit `json:"unit"`
	Efficiency    float64             `json:"efficiency"`
	ErrEfficiency float64             `json:"err_efficiency"`
	Intensity     float64             `json:"intensity"` // %
	ErrIntensity  float64             `json:"err_intensity"`
	CoolingTime   float64             `json:"cooling_time"` // s between EoB and acquisition start
}

// LineActivity is the activity at acquisition start and extrapolated to EoB.
type LineActivity struct {
	Act       float64 `json:"act"`
	ErrAct    float64 `json:"err_act"`
	ActEoB    float64 `json:"act_eob"`
	ErrActEoB float64 `json:"err_act_eob"`
}

// ComputeLineActivity runs the correction chain on a single line.
func ComputeLineActivity(in LineInput) (LineActivity, error) {
	if in.LiveTime <= 0 || in.RealTime < in.LiveTime {
		return LineActivity{}, fmt.Errorf("%w: live time %g s must be positive and not exceed real time %g s", contract.ErrValidation, in.LiveTime, in.RealTime)
	}
	if in.CoolingTime < 0 {
		return LineActivity{}, fmt.Errorf("%w: cooling time %g s is negative", contract.ErrValidation, in.CoolingTime)
	}
	lambda, errLambda, err := activity.DecayConstant(in.HalfLife, in.ErrHalfLife, in.Unit)
	if err != nil {
		return LineActivity{}, err
	}
	act := activity.Measured(activity.MeasuredInput{
		Net: in.Net, ErrNet: in.ErrNet,
		LiveTime: in.LiveTime, RealTime: in.RealTime,
		Lambda: lambda, ErrLambda: errLambda,
		Efficiency: in.Efficiency, ErrEfficiency: in.ErrEfficiency,
		Intensity: in.Intensity, ErrIntensity: in.ErrIntensity,
	})
	if act.Degenerate {
		contract.LogWarn("Line activity undefined", fmt.Errorf("%w: efficiency %g, intensity %g", contract.ErrValue, in.Efficiency, in.Intensity))
	}
	eob := activity.BackCorrect(act, lambda, errLambda, in.CoolingTime)
	return LineActivity{Act: act.Activity, ErrAct: act.Err, ActEoB: eob.Activity, ErrActEoB: eob.Err}, nil
}
