// Package report extracts acquisition metadata and fitted peak lists from the text
// reports written by gamma spectrometry software.
package report

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/foilact/internal/contract"
	"github.com/huangsam/foilact/schema"
)

// reportDateLayout is the day-first timestamp written by both report variants.
const reportDateLayout = "02.01.2006 15:04:05"

// Parser turns the text of one report into a schema.Report.
type Parser interface {
	Parse(name string, text string) (*schema.Report, error)
}

// ForSoftware returns the parser for a report variant.
func ForSoftware(sw schema.Software) (Parser, error) {
	switch sw {
	case schema.InterWinner:
		return interWinner{}, nil
	case schema.Genie2K:
		return genie2K{}, nil
	}
	return nil, fmt.Errorf("%w: unsupported report software %q", contract.ErrConfiguration, sw)
}

// Parse reads a whole report and parses it with the parser of sw. The returned report
// is non-nil together with an *EmptyResultError when the peak list is empty.
func Parse(name string, r io.Reader, sw schema.Software) (*schema.Report, error) {
	p, err := ForSoftware(sw)
	if err != nil {
		return nil, err
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	text := string(bytes.ReplaceAll(raw, []byte("\r\n"), []byte("\n")))

	rep, err := p.Parse(name, text)
	if err != nil {
		return nil, err
	}
	rep.Source = name
	rep.Software = sw
	if err := validate(rep); err != nil {
		return nil, err
	}
	if len(rep.Peaks) == 0 {
		return rep, &contract.EmptyResultError{Source: name}
	}
	return rep, nil
}

// ParseFile opens path and parses it.
func ParseFile(path string, sw schema.Software) (*schema.Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contract.ErrNotFound, err)
	}
	defer func() { _ = f.Close() }()
	return Parse(path, f, sw)
}

func validate(rep *schema.Report) error {
	if rep.LiveTime <= 0 {
		return fmt.Errorf("%w: %s has non-positive live time %g", contract.ErrValidation, rep.Source, rep.LiveTime)
	}
	if rep.LiveTime > rep.RealTime {
		return fmt.Errorf("%w: %s has live time %g above real time %g", contract.ErrValidation, rep.Source, rep.LiveTime, rep.RealTime)
	}
	return nil
}

// TargetIDFromName returns the leading token of a report file name before the first
// underscore, without directory or extension.
func TargetIDFromName(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	if i := strings.IndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}
	if i := strings.IndexByte(base, '_'); i >= 0 {
		base = base[:i]
	}
	return base
}

// canonicalDate re-emits a day-first report timestamp in schema.DateTimeLayout.
func canonicalDate(value string) (string, error) {
	t, err := time.Parse(reportDateLayout, strings.TrimSpace(value))
	if err != nil {
		return "", fmt.Errorf("%w: acquisition date %q: %v", contract.ErrParse, value, err)
	}
	return t.Format(schema.DateTimeLayout), nil
}

func parseFloat(field, value, source string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q in %s", contract.ErrParse, field, value, source)
	}
	return v, nil
}
