package domain

import (
	"strings"
	"time"
)

// TimeLayout is the wire format for all timestamps: RFC 3339 UTC with a
// fixed six-digit fractional second and a literal Z suffix. The fixed width
// keeps timestamp strings lexicographically ordered, which the feed's
// since-cursor and the history engine's date sorting rely on.
const TimeLayout = "2006-01-02T15:04:05.000000Z"

// Timestamp formats t as a wire timestamp in UTC.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime parses a wire timestamp. It tolerates the variants stored
// historically: with or without fractional seconds, and with either a Z
// suffix or a numeric offset.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	layouts := []string{
		TimeLayout,
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	var firstErr error
	for _, layout := range layouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

// DateKey returns the UTC calendar date (YYYY-MM-DD) component of a wire
// timestamp. The feed buffer uses it for day-scoped pruning.
func DateKey(ts string) string {
	if len(ts) < 10 {
		return ts
	}
	return ts[:10]
}
