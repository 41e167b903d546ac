package schema

// Peak is one fitted peak taken from a spectrometry report.
type Peak struct {
	Energy float64 `json:"energy"`  // keV
	Net    float64 `json:"net"`     // net peak area (counts)
	ErrNet float64 `json:"err_net"` // absolute uncertainty of the net area
}

// Report holds the acquisition metadata and peak list of one report file.
type Report struct {
	Source        string   `json:"source"`
	Software      Software `json:"software"`
	TargetID      string   `json:"target_id"`
	Detector      string   `json:"detector"`
	DetectorLevel string   `json:"detector_level"`
	LiveTime      float64  `json:"live_time"`
	RealTime      float64  `json:"real_time"`
	AcquiredAt    string   `json:"acquired_at"` // DateTimeLayout
	Peaks         []Peak   `json:"peaks"`
}

// GammaLine is one tabulated emission line of a nuclide.
type GammaLine struct {
	Energy       float64 `json:"energy"`        // keV
	Intensity    float64 `json:"intensity"`     // %
	ErrIntensity float64 `json:"err_intensity"` // %
}

// CalibrationPoint is one reference-source line used to fit a detector efficiency.
type CalibrationPoint struct {
	Energy         float64
	Intensity      float64 // %
	ErrIntensity   float64 // %
	Net            float64
	ErrNet         float64
	HalfLife       float64
	ErrHalfLife    float64
	Unit           HalfLifeUnit
	RefActivity    float64 // Bq at RefDate
	ErrRefActivity float64
	RefDate        string // DateTimeLayout
	MeasuredAt     string // DateTimeLayout
	LiveTime       float64
	RealTime       float64
}
