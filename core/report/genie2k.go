package report

import (
	"regexp"
	"strings"

	"github.com/huangsam/foilact/internal/contract"
	"github.com/huangsam/foilact/schema"
)

type genieField struct {
	key     string
	pattern *regexp.Regexp
}

// Genie2K metadata fields in the order they are checked. The first match wins.
var genieFields = []genieField{
	{"tar_id", regexp.MustCompile(`(?m)Sample ID\s+:\s(\S+)\s+$`)},
	{"detector_level", regexp.MustCompile(`(?m)Detector level\s+:\s(.+?\scm)\s+$`)},
	{"detector", regexp.MustCompile(`(?m)Detector\s+:\s(.*?)\s*$`)},
	{"datetime_meas", regexp.MustCompile(`(?m)Acquisition Time\s+:\s+(\d{2}\.\d{2}\.\d{4} \d{2}:\d{2}:\d{2})\s*$`)},
	{"live_time", regexp.MustCompile(`(?m)Live Time\s+:\s+([\d.]+)\sseconds$`)},
	{"real_time", regexp.MustCompile(`(?m)Real Time\s+:\s+([\d.]+)\sseconds$`)},
}

var (
	genieHeader = regexp.MustCompile(`\s*Peak\s+ROI\s+ROI\s+Peak\s+Energy\s+FWHM\s+Net Peak\s+Net Area\s+Continuum\s*$`)
	genieRow    = regexp.MustCompile(`\s*[mM]?\s*\d+\s+\d+-\s*\d+\s+[\d.]+\s+([\d.]+)\s+[\d.]+\s+([\d.E+]+)\s+([\d.]+)\s+[\d.E+]+\s*$`)
)

// genie2K parses the peak-table report. Uncertainties are absolute and rows run from
// the table header to the end of the file.
type genie2K struct{}

func (genie2K) Parse(name, text string) (*schema.Report, error) {
	values := make(map[string]string, len(genieFields))
	for _, f := range genieFields {
		m := f.pattern.FindStringSubmatch(text)
		if m == nil {
			return nil, &contract.MissingFieldError{Field: f.key, Source: name}
		}
		values[f.key] = m[1]
	}

	rep := &schema.Report{
		TargetID:      strings.ToLower(values["tar_id"]),
		Detector:      values["detector"],
		DetectorLevel: values["detector_level"],
	}
	var err error
	if rep.AcquiredAt, err = canonicalDate(values["datetime_meas"]); err != nil {
		return nil, err
	}
	if rep.LiveTime, err = parseFloat("live time", values["live_time"], name); err != nil {
		return nil, err
	}
	if rep.RealTime, err = parseFloat("real time", values["real_time"], name); err != nil {
		return nil, err
	}

	collecting := false
	for line := range strings.SplitSeq(text, "\n") {
		if genieHeader.MatchString(line) {
			collecting = true
			continue
		}
		if !collecting {
			continue
		}
		m := genieRow.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		var p schema.Peak
		if p.Energy, err = parseFloat("energy", m[1], name); err != nil {
			return nil, err
		}
		if p.Net, err = parseFloat("net area", m[2], name); err != nil {
			return nil, err
		}
		if p.ErrNet, err = parseFloat("net area uncertainty", m[3], name); err != nil {
			return nil, err
		}
		rep.Peaks = append(rep.Peaks, p)
	}
	return rep, nil
}
