package schema

import "time"

// LineResult is the per-line outcome of one measurement.
type LineResult struct {
	Energy    float64 `json:"energy"`
	Net       float64 `json:"net"`
	ErrNet    float64 `json:"err_net"`
	Act       float64 `json:"act"`
	ErrAct    float64 `json:"err_act"`
	ActEoB    float64 `json:"act_eob"`
	ErrActEoB float64 `json:"err_act_eob"`
}

// MeasurementResult summarizes one acquisition of a target.
type MeasurementResult struct {
	AcquiredAt    string                  `json:"acquired_at"`
	Detector      string                  `json:"detector"`
	DetectorLevel string                  `json:"detector_level"`
	LiveTime      float64                 `json:"live_time"`
	RealTime      float64                 `json:"real_time"`
	CoolingTime   float64                 `json:"cooling_time"`
	Source        string                  `json:"source"`
	Lines         map[string][]LineResult `json:"lines"` // keyed by nuclide name
}

// NuclideResult is the target-level outcome for one nuclide.
type NuclideResult struct {
	Nuclide         string    `json:"nuclide"`
	SelectedLine    float64   `json:"selected_line"`
	Predicted       float64   `json:"predicted"`
	MeanActEoB      float64   `json:"mean_act_eob"`
	ErrMeanActEoB   float64   `json:"err_mean_act_eob"`
	ThinTargetYield float64   `json:"thin_target_yield"`
	ErrThinYield    float64   `json:"err_thin_target_yield"`
	Measurements    int       `json:"measurements"` // acquisitions contributing to the mean
	Agreement       Agreement `json:"agreement"`
}

// TargetResult is the complete outcome for one irradiated foil.
type TargetResult struct {
	TargetID       string              `json:"target_id"`
	Material       string              `json:"material"`
	Degrader       string              `json:"degrader"`
	IrradiationEnd string              `json:"irradiation_end"`
	IrradiationSec float64             `json:"irradiation_time"`
	BeamEnergy     float64             `json:"beam_energy"`
	ErrBeamEnergy  float64             `json:"err_beam_energy"`
	BeamCurrent    float64             `json:"beam_current"`
	Nuclides       []NuclideResult     `json:"nuclides"`
	Measurements   []MeasurementResult `json:"measurements"`
}

// RunResult is the outcome of a full pipeline run.
type RunResult struct {
	RunID    string         `json:"run_id"`
	Started  time.Time      `json:"started"`
	Duration time.Duration  `json:"duration"`
	Software Software       `json:"software"`
	Targets  []TargetResult `json:"targets"`
	Skipped  []string       `json:"skipped_reports"`
}

// CalibrationSummary describes one fitted efficiency curve.
type CalibrationSummary struct {
	Detector     string    `json:"detector"`
	Level        string    `json:"level"`
	Points       int       `json:"points"`
	Coefficients []float64 `json:"coefficients"`
	MSE          float64   `json:"mse"`
	AdjustedR2   float64   `json:"adjusted_r2"`
	MinEnergy    float64   `json:"min_energy"`
	MaxEnergy    float64   `json:"max_energy"`
}

// EfficiencyPoint is one evaluated efficiency.
type EfficiencyPoint struct {
	Energy     float64 `json:"energy"`
	Efficiency float64 `json:"efficiency"`
	Err        float64 `json:"err"`
}

// TransportResult is the fitted transmitted-energy distribution.
type TransportResult struct {
	Projectile string  `json:"projectile"`
	Layer      string  `json:"layer"`
	Ions       int     `json:"ions"`
	Mean       float64 `json:"mean"`  // MeV
	Sigma      float64 `json:"sigma"` // MeV
}

// EfficiencyCurve is a calibration evaluated at requested energies.
type EfficiencyCurve struct {
	Detector string            `json:"detector"`
	Level    string            `json:"level"`
	Points   []EfficiencyPoint `json:"points"`
}

// CalibrationOutput is the outcome of fitting every configured efficiency workbook.
type CalibrationOutput struct {
	Summaries []CalibrationSummary `json:"calibrations"`
	Curves    []EfficiencyCurve    `json:"curves,omitempty"`
}

// Prediction is the expected EoB activity of one nuclide in one target.
type Prediction struct {
	TargetID   string  `json:"target_id"`
	Material   string  `json:"material"`
	BeamEnergy float64 `json:"beam_energy"` // MeV
	Nuclide    string  `json:"nuclide"`
	Predicted  float64 `json:"predicted"` // Bq
}
