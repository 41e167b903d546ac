package report

import (
	"regexp"
	"strings"

	"github.com/huangsam/foilact/internal/contract"
	"github.com/huangsam/foilact/schema"
)

// interWinnerDetector is the only detector that writes InterWinner reports.
const interWinnerDetector = "OIPA Lab 35"

const (
	candidateListHeader = "List by energies (with candidate isotopes)"
	confirmedListHeader = "List by energies (with confirmed isotopes)"
)

var (
	iwLiveTime = regexp.MustCompile(`Acq\.time \(live\):\s+([\d\.]+)\s+s`)
	iwRealTime = regexp.MustCompile(`Acq\.time \(real\):\s+([\d\.]+)\s+s`)
	iwDate     = regexp.MustCompile(`Acquisition date:\s+([\d\.:\s]+)`)
	iwLevel    = regexp.MustCompile(`\s*(Rille\s\d+)`)

	// Tables that carry a NETTO-NUL column between NET and UNCERT.
	iwNettoHeader = regexp.MustCompile(`(?m)\|No\.\|\s+Energy\s+\|[\s+]?FWHM\s+\|[\s+]?FWTM\s+\|\s+GROSS\s+\|\s+NET\s+\|\s+NETTO-NUL\s+\|UNCERT\[\%\]\|\s+EFF\.\[\%\]\s+\|\s+ISOTOPE\s+\|.*$`)
	iwRowNetto    = regexp.MustCompile(`\|\s*\d+\|[\\\/\|\s]*(\d+\.\d+)\s*\|[\s\d\.\d\*]*\|[\d\.\s\*]+?\|\s*\d+\|\s*(\d+\.\d*)\s*\|[\d\.\s]+?\|\s*(\d+\.\d+).*$`)
	iwRowNet      = regexp.MustCompile(`\|\s*\d+\|[\\\/\|\s]*(\d+\.\d+)\s*\|[\s\d\.\d\*]*\|[\d\.\s\*]+?\|\s*\d+\|\s*(\d+\.\d*)\s*\|\s*(\d+\.\d+).*$`)
)

// interWinner parses the candidate-isotope listing. Metadata lines may appear anywhere;
// the last occurrence wins. Peak uncertainties are given in percent of the net area.
type interWinner struct{}

func (interWinner) Parse(name, text string) (*schema.Report, error) {
	rep := &schema.Report{
		TargetID: TargetIDFromName(name),
		Detector: interWinnerDetector,
	}

	row := iwRowNet
	if iwNettoHeader.MatchString(text) {
		row = iwRowNetto
	}

	var live, realTime, date string
	collecting := false
	for line := range strings.SplitSeq(text, "\n") {
		if m := iwLiveTime.FindStringSubmatch(line); m != nil {
			live = m[1]
		}
		if m := iwRealTime.FindStringSubmatch(line); m != nil {
			realTime = m[1]
		}
		if m := iwDate.FindStringSubmatch(line); m != nil {
			date = strings.TrimSpace(m[1])
		}
		if m := iwLevel.FindStringSubmatch(line); m != nil {
			rep.DetectorLevel = strings.ReplaceAll(strings.TrimSpace(m[1]), " ", "_")
		}

		if strings.Contains(line, candidateListHeader) {
			collecting = true
			continue
		}
		if strings.Contains(line, confirmedListHeader) {
			break
		}
		if !collecting {
			continue
		}
		m := row.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		peak, err := interWinnerPeak(m, name)
		if err != nil {
			return nil, err
		}
		rep.Peaks = append(rep.Peaks, peak)
	}

	for _, f := range [][2]string{
		{"live_time", live},
		{"real_time", realTime},
		{"datetime_meas", date},
		{"detector_level", rep.DetectorLevel},
	} {
		if f[1] == "" {
			return nil, &contract.MissingFieldError{Field: f[0], Source: name}
		}
	}

	var err error
	if rep.LiveTime, err = parseFloat("live time", live, name); err != nil {
		return nil, err
	}
	if rep.RealTime, err = parseFloat("real time", realTime, name); err != nil {
		return nil, err
	}
	if rep.AcquiredAt, err = canonicalDate(date); err != nil {
		return nil, err
	}
	return rep, nil
}

func interWinnerPeak(m []string, source string) (schema.Peak, error) {
	energy, err := parseFloat("energy", m[1], source)
	if err != nil {
		return schema.Peak{}, err
	}
	net, err := parseFloat("net area", m[2], source)
	if err != nil {
		return schema.Peak{}, err
	}
	uncert, err := parseFloat("uncertainty", m[3], source)
	if err != nil {
		return schema.Peak{}, err
	}
	return schema.Peak{Energy: energy, Net: net, ErrNet: net * uncert / 100}, nil
}
