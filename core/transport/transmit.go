// Package transport wraps an external ion-transport code. It writes the simulation
// deck, runs the executable and fits the energy spectrum of transmitted ions.
package transport

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/huangsam/foilact/internal/contract"
	"github.com/huangsam/foilact/schema"
)

const eVToMeV = 1e-6

var (
	trimCalc = regexp.MustCompile(`=+\s+TRIM\s+Calc\.=\s+([a-zA-Z]+)\((\d+)\s*([a-zA-Z]+)\)\s+==>\s+(.+?)\s*\(\s+(\d+)\s+([a-zA-Z]+)\)`)
	columns  = regexp.MustCompile(`\s*Numb\s+Numb\s+\(eV\)\s+X\(A\)\s+Y\(A\)\s+Z\(A\)\s+Cos\(X\)\s+Cos\(Y\)\s+Cos\(Z\)\s*`)
)

// Quantity is a value with its unit as written in the output file.
type Quantity struct {
	Value float64
	Unit  string
}

// Transmit is the content of a TRANSMIT.txt file.
type Transmit struct {
	Projectile string
	BeamEnergy Quantity
	Layer      string
	Thickness  Quantity
	Energies   []float64 // MeV, transmitted ions only
}

// ParseTransmit reads the calculation header and the transmitted-ion rows.
func ParseTransmit(r io.Reader) (*Transmit, error) {
	t := &Transmit{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var headerSeen, collecting bool
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if !headerSeen {
			if m := trimCalc.FindStringSubmatch(line); m != nil {
				headerSeen = true
				t.Projectile = m[1]
				t.BeamEnergy = Quantity{Value: atof(m[2]), Unit: m[3]}
				t.Layer = m[4]
				t.Thickness = Quantity{Value: atof(m[5]), Unit: m[6]}
			}
		}
		if !collecting {
			collecting = columns.MatchString(line)
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 10 || !strings.HasPrefix(fields[0], "T") {
			continue
		}
		e, err := strconv.ParseFloat(fields[3], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: transmitted ion energy %q", contract.ErrParse, fields[3])
		}
		t.Energies = append(t.Energies, e*eVToMeV)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading transmit file: %w", err)
	}
	if !headerSeen {
		return nil, &contract.MissingFieldError{Field: "TRIM Calc.", Source: "TRANSMIT.txt"}
	}
	if !collecting {
		return nil, &contract.MissingFieldError{Field: "column header", Source: "TRANSMIT.txt"}
	}
	return t, nil
}

// FitGaussian returns the maximum-likelihood normal mean and standard deviation.
func FitGaussian(energies []float64) (float64, float64, error) {
	if len(energies) == 0 {
		return 0, 0, &contract.EmptyResultError{Source: "TRANSMIT.txt"}
	}
	var sum float64
	for _, e := range energies {
		sum += e
	}
	mean := sum / float64(len(energies))
	var ss float64
	for _, e := range energies {
		ss += (e - mean) * (e - mean)
	}
	return mean, math.Sqrt(ss / float64(len(energies))), nil
}

// Result fits the transmitted spectrum.
func (t *Transmit) Result() (schema.TransportResult, error) {
	mean, sigma, err := FitGaussian(t.Energies)
	if err != nil {
		return schema.TransportResult{}, fmt.Errorf("no transmitted %s at %g %s through %s: %w",
			t.Projectile, t.BeamEnergy.Value, t.BeamEnergy.Unit, t.Layer, err)
	}
	return schema.TransportResult{
		Projectile: t.Projectile,
		Layer:      t.Layer,
		Ions:       len(t.Energies),
		Mean:       mean,
		Sigma:      sigma,
	}, nil
}

func atof(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}
