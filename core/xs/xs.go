// Package xs predicts EoB activities from tabulated monitor cross-sections.
package xs

import (
	"cmp"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/huangsam/foilact/internal/contract"
	"github.com/patrickmn/go-cache"
)

// Physical constants and unit conversions of the thin-target formula.
const (
	ElementaryCharge = 1.6021766208e-19 // C
	Avogadro         = 6.022140857e23   // 1/mol
	ProjectileCharge = 1                // protons

	microAmpToAmp = 1e-6
	millibarnToCm = 1e-27
	micronToCm    = 1e-4
)

// ErrOutOfRange reports a beam energy outside a tabulated cross-section.
var ErrOutOfRange = fmt.Errorf("%w: energy outside tabulated cross-section", contract.ErrValue)

var namePattern = regexp.MustCompile(`^[a-zA-Z]+-\d+m?$`)

// Table is a monitor cross-section sorted by energy (MeV, millibarn).
type Table struct {
	Nuclide string
	Energy  []float64
	Sigma   []float64
	Uncert  []float64
}

// Interpolate evaluates the cross-section at energy by linear interpolation.
func (t *Table) Interpolate(energy float64) (float64, error) {
	n := len(t.Energy)
	if math.IsNaN(energy) || energy < t.Energy[0] || energy > t.Energy[n-1] {
		return 0, fmt.Errorf("%w: %s at %g MeV (table %g-%g MeV)", ErrOutOfRange, t.Nuclide, energy, t.Energy[0], t.Energy[n-1])
	}
	i, found := slices.BinarySearch(t.Energy, energy)
	if found {
		return t.Sigma[i], nil
	}
	x0, x1 := t.Energy[i-1], t.Energy[i]
	y0, y1 := t.Sigma[i-1], t.Sigma[i]
	return y0 + (y1-y0)*(energy-x0)/(x1-x0), nil
}

// Input holds the target and beam quantities entering the thin-target formula.
type Input struct {
	BeamEnergy      float64 // MeV
	IrradiationTime float64 // s
	Current         float64 // µA
	Density         float64 // g/cm^3
	Thickness       float64 // µm
	Lambda          float64 // 1/s
	MolarMass       float64 // g/mol
}

// Activity applies the thin-target activation formula to a cross-section in millibarn.
func Activity(sigma float64, in Input) float64 {
	return sigma * millibarnToCm * in.Current * microAmpToAmp * Avogadro * in.Density *
		in.Thickness * micronToCm * -math.Expm1(-in.Lambda*in.IrradiationTime) /
		(ElementaryCharge * ProjectileCharge * in.MolarMass)
}

// Library loads cross-section tables from a directory, one CSV file per nuclide,
// and keeps them in memory once read.
type Library struct {
	dir    string
	tables *cache.Cache
}

// NewLibrary returns a library reading tables from dir.
func NewLibrary(dir string) *Library {
	return &Library{dir: dir, tables: cache.New(cache.NoExpiration, 0)}
}

// Table returns the cross-section table of a nuclide named like "Zr-89".
func (l *Library) Table(nuclide string) (*Table, error) {
	if !namePattern.MatchString(nuclide) {
		return nil, fmt.Errorf("%w: nuclide name %q must look like Element-MassNumber", contract.ErrValue, nuclide)
	}
	if cached, found := l.tables.Get(nuclide); found {
		return cached.(*Table), nil
	}

	path, err := l.find(nuclide)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: cross-section for %s: %v", contract.ErrNotFound, nuclide, err)
	}
	defer func() { _ = f.Close() }()

	table, err := ReadTable(nuclide, f)
	if err != nil {
		return nil, err
	}
	l.tables.Set(nuclide, table, cache.NoExpiration)
	return table, nil
}

// Predict interpolates the cross-section of nuclide at the beam energy and returns the
// expected EoB activity in Bq.
func (l *Library) Predict(nuclide string, in Input) (float64, error) {
	table, err := l.Table(nuclide)
	if err != nil {
		return 0, err
	}
	sigma, err := table.Interpolate(in.BeamEnergy)
	if err != nil {
		return 0, err
	}
	return Activity(sigma, in), nil
}

// Available lists the nuclides with a table in the library directory.
func (l *Library) Available() ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: cross-section directory: %v", contract.ErrConfiguration, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name, _, _ := strings.Cut(e.Name(), ".")
		if namePattern.MatchString(name) {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out, nil
}

// find prefers <nuclide>.csv and otherwise accepts any file named <nuclide>.<ext>.
func (l *Library) find(nuclide string) (string, error) {
	direct := filepath.Join(l.dir, nuclide+".csv")
	if _, err := os.Stat(direct); err == nil {
		return direct, nil
	}
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return "", fmt.Errorf("%w: cross-section directory: %v", contract.ErrConfiguration, err)
	}
	for _, e := range entries {
		if name, _, _ := strings.Cut(e.Name(), "."); name == nuclide && !e.IsDir() {
			return filepath.Join(l.dir, e.Name()), nil
		}
	}
	return "", fmt.Errorf("%w: monitor cross-section data for nuclide %q", contract.ErrNotFound, nuclide)
}

// ReadTable parses a CSV table with energy, data and uncert columns.
func ReadTable(nuclide string, r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: cross-section file for %s is empty", contract.ErrValue, nuclide)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: parsing cross-section file for %s: %v", contract.ErrValue, nuclide, err)
	}
	cols := map[string]int{"energy": -1, "data": -1, "uncert": -1}
	for i, h := range header {
		if _, ok := cols[strings.ToLower(strings.TrimSpace(h))]; ok {
			cols[strings.ToLower(strings.TrimSpace(h))] = i
		}
	}
	for name, idx := range cols {
		if idx < 0 && name != "uncert" {
			return nil, fmt.Errorf("%w: cross-section file for %s has no %q column", contract.ErrValue, nuclide, name)
		}
	}

	type point struct{ e, s, u float64 }
	var points []point
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: parsing cross-section file for %s: %v", contract.ErrValue, nuclide, err)
		}
		var p point
		if p.e, err = cell(rec, cols["energy"]); err != nil {
			return nil, fmt.Errorf("%w: %s energy: %v", contract.ErrValue, nuclide, err)
		}
		if p.s, err = cell(rec, cols["data"]); err != nil {
			return nil, fmt.Errorf("%w: %s data: %v", contract.ErrValue, nuclide, err)
		}
		if cols["uncert"] >= 0 {
			if p.u, err = cell(rec, cols["uncert"]); err != nil {
				return nil, fmt.Errorf("%w: %s uncert: %v", contract.ErrValue, nuclide, err)
			}
		}
		points = append(points, p)
	}
	if len(points) < 2 {
		return nil, fmt.Errorf("%w: cross-section file for %s needs at least two points", contract.ErrValue, nuclide)
	}

	slices.SortFunc(points, func(a, b point) int { return cmp.Compare(a.e, b.e) })
	t := &Table{Nuclide: nuclide}
	for _, p := range points {
		t.Energy = append(t.Energy, p.e)
		t.Sigma = append(t.Sigma, p.s)
		t.Uncert = append(t.Uncert, p.u)
	}
	return t, nil
}

func cell(rec []string, idx int) (float64, error) {
	if idx >= len(rec) {
		return 0, errors.New("missing column")
	}
	return strconv.ParseFloat(strings.TrimSpace(rec[idx]), 64)
}
