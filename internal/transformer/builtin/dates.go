package builtin

import (
	"time"
)

// DateLayouts are tried in order by ParseDate.
var DateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"01/02/2006",
	"02.01.2006",
}

// ParseDate parses s with the first matching layout in DateLayouts and
// returns the calendar date at midnight UTC. The time of day is discarded;
// the date is taken in the offset the value was written in.
func ParseDate(s string) (time.Time, bool) {
	s = Clean(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}
