package timeparse

import (
	"strings"
	"time"
)

// Provider timestamps are usually local wall-clock times without an offset
// ("2025-06-01T10:35:00"), but offsets and a trailing Z also occur.
var layouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// ParseTimestamp parses an ISO-8601 style timestamp. Values without an offset
// are read as UTC so that two naive timestamps subtract as wall-clock times.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &time.ParseError{
		Value:   s,
		Message: ": unable to parse timestamp",
	}
}

// MinutesBetween returns the whole minutes from start to end, floored.
// ok is false when either timestamp is missing or malformed.
func MinutesBetween(start, end string) (minutes int, ok bool) {
	if start == "" || end == "" {
		return 0, false
	}
	from, err := ParseTimestamp(start)
	if err != nil {
		return 0, false
	}
	to, err := ParseTimestamp(end)
	if err != nil {
		return 0, false
	}
	d := to.Sub(from)
	m := int(d / time.Minute)
	if d < 0 && d%time.Minute != 0 {
		m--
	}
	return m, true
}
