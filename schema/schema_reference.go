package schema

// NuclideData is one row of the nuclide reference table together with its gamma lines.
type NuclideData struct {
	Name         string       `json:"name"`
	HalfLife     float64      `json:"half_life"`
	ErrHalfLife  float64      `json:"err_half_life"`
	Unit         HalfLifeUnit `json:"unit"`
	SelectedLine float64      `json:"selected_line"`
	Lines        []GammaLine  `json:"lines"`
}

// Material holds the physical data of a target material.
type Material struct {
	Name      string   `json:"name"`
	MolarMass float64  `json:"molar_mass"` // g/mol
	Density   float64  `json:"density"`    // g/cm^3
	Inventory []string `json:"inventory"`  // nuclides expected in the material
}

// Beam is the simulated proton beam behind one degrader setting.
type Beam struct {
	Degrader  string  `json:"degrader"`
	Energy    float64 `json:"energy"` // MeV
	ErrEnergy float64 `json:"err_energy"`
	Current   float64 `json:"current"` // µA
}

// Irradiation is one row of the irradiation log.
type Irradiation struct {
	Start     string  `json:"start"` // DateTimeLayout
	End       string  `json:"end"`   // DateTimeLayout
	TargetID  string  `json:"target_id"`
	Material  string  `json:"material"`
	Mass      float64 `json:"mass"`      // mg
	Thickness float64 `json:"thickness"` // µm
	Current   float64 `json:"current"`   // µA extracted by the beam splitter
	Degrader  string  `json:"degrader"`
}
