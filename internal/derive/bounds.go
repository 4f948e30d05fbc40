package derive

import (
	"fmt"
	"strings"
	"time"
)

var (
	timeLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02 15:04"}
	dateLayouts = []string{"2006-01-02", "01-02"}
)

// ParseBound reads a date-range bound. It accepts an RFC 3339 time, a date
// and time without zone, a date, or a month-day ("07-15"). A date given
// without a time is the start of that day, or its last second when end is
// set, so "start=06-01&end=06-30" covers all of June. Empty input is an open
// bound.
//
// Record times are local standard time, so a zone offset is dropped and the
// wall clock kept: "2001-01-01T05:00:00+02:00" is 05:00 on January 1.
func ParseBound(s string, end bool) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC), nil
		}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if end {
				t = t.Add(24*time.Hour - time.Second)
			}
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: cannot parse date %q", ErrInvalidRequest, s)
}
