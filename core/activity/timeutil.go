package activity

import (
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/foilact/internal/contract"
	"github.com/huangsam/foilact/schema"
)

var timeLayouts = []string{
	schema.DateTimeLayout, // fractional seconds are accepted after the seconds field
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
}

// ParseTime reads a timestamp in the canonical layout. All timestamps are taken as UTC.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: cannot parse timestamp %q", contract.ErrValue, s)
}

// TimeDifference returns the seconds elapsed from a to b. It is negative when b precedes a.
func TimeDifference(a, b string) (float64, error) {
	ta, err := ParseTime(a)
	if err != nil {
		return 0, err
	}
	tb, err := ParseTime(b)
	if err != nil {
		return 0, err
	}
	return tb.Sub(ta).Seconds(), nil
}
