package transport

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/huangsam/foilact/internal/contract"
	"gopkg.in/yaml.v3"
)

// Output file names of the transport code.
const (
	TransmitFile    = "TRANSMIT.txt"
	OutputSubdir    = "SRIM Outputs"
	DeckFile        = "deck.yaml"
	defaultProject  = "H"
	defaultIonCount = 1000
)

// Layer is one slab of the stack crossed by the beam.
type Layer struct {
	Name      string             `yaml:"name"`
	Thickness float64            `yaml:"thickness_um"`
	Density   float64            `yaml:"density"` // g/cm^3
	Elements  map[string]float64 `yaml:"elements"`
}

// Deck is the simulation input.
type Deck struct {
	Projectile string  `yaml:"projectile"`
	Energy     float64 `yaml:"energy_mev"`
	Ions       int     `yaml:"ions"`
	Layers     []Layer `yaml:"layers"`
}

// Validate fills defaults and checks the stack.
func (d *Deck) Validate() error {
	if d.Projectile == "" {
		d.Projectile = defaultProject
	}
	if d.Ions <= 0 {
		d.Ions = defaultIonCount
	}
	if d.Energy <= 0 {
		return fmt.Errorf("%w: beam energy must be positive", contract.ErrConfiguration)
	}
	if len(d.Layers) == 0 {
		return fmt.Errorf("%w: at least one layer is required", contract.ErrConfiguration)
	}
	for _, l := range d.Layers {
		if l.Thickness <= 0 {
			return fmt.Errorf("%w: layer %q needs a positive thickness", contract.ErrConfiguration, l.Name)
		}
	}
	return nil
}

// ReadDeck loads a deck from a YAML file.
func ReadDeck(path string) (*Deck, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contract.ErrConfiguration, err)
	}
	var d Deck
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("%w: deck %s: %v", contract.ErrConfiguration, path, err)
	}
	return &d, d.Validate()
}

// Simulator runs a transport calculation.
type Simulator interface {
	Simulate(ctx context.Context, deck *Deck) (*Transmit, error)
}

// ExecSimulator runs an external executable in WorkDir with the deck path as its only
// argument and reads the transmitted ions it leaves behind.
type ExecSimulator struct {
	Executable string
	WorkDir    string
}

// Simulate implements Simulator.
func (s ExecSimulator) Simulate(ctx context.Context, deck *Deck) (*Transmit, error) {
	if err := deck.Validate(); err != nil {
		return nil, err
	}
	exe, err := exec.LookPath(s.Executable)
	if err != nil {
		return nil, fmt.Errorf("%w: transport executable %q: %v", contract.ErrConfiguration, s.Executable, err)
	}
	workDir := s.WorkDir
	if workDir == "" {
		workDir = filepath.Dir(exe)
	}

	data, err := yaml.Marshal(deck)
	if err != nil {
		return nil, err
	}
	deckPath := filepath.Join(workDir, DeckFile)
	if err := os.WriteFile(deckPath, data, 0o644); err != nil {
		return nil, fmt.Errorf("%w: writing deck: %v", contract.ErrConfiguration, err)
	}

	cmd := exec.CommandContext(ctx, exe, deckPath)
	cmd.Dir = workDir
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("transport run failed: %w: %s", err, out)
	}
	return ReadTransmit(workDir)
}

// ReadTransmit parses TRANSMIT.txt in dir, falling back to its output subdirectory.
func ReadTransmit(dir string) (*Transmit, error) {
	f, err := os.Open(filepath.Join(dir, TransmitFile))
	if errors.Is(err, os.ErrNotExist) {
		contract.LogDebug("Transmit file not in work dir, trying output subdirectory", "dir", dir)
		f, err = os.Open(filepath.Join(dir, OutputSubdir, TransmitFile))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s not found under %s: %v", contract.ErrConfiguration, TransmitFile, dir, err)
	}
	defer func() { _ = f.Close() }()
	return ParseTransmit(f)
}
