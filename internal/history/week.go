package history

import (
	"fmt"
	"time"

	"github.com/agentdeck/agentdeck/internal/domain"
)

// UnknownWeek is the bucket for tasks with no parseable date.
const UnknownWeek = "Unknown"

// WeekKey returns the ISO 8601 week key ("2026-W06") for a wire timestamp,
// or UnknownWeek when the timestamp is empty or unparseable.
func WeekKey(ts string) string {
	if ts == "" {
		return UnknownWeek
	}
	t, err := domain.ParseTime(ts)
	if err != nil {
		return UnknownWeek
	}
	return weekKeyOf(t)
}

func weekKeyOf(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// WeekLabel renders a week key as its Monday-Sunday span, e.g.
// "Feb 3 - Feb 9, 2026". Unparseable keys are returned verbatim.
func WeekLabel(key string) string {
	if key == UnknownWeek {
		return UnknownWeek
	}
	var year, week int
	if _, err := fmt.Sscanf(key, "%d-W%d", &year, &week); err != nil {
		return key
	}

	// January 4 is always inside ISO week 1.
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	mondayOffset := (int(jan4.Weekday()) + 6) % 7
	start := jan4.AddDate(0, 0, -mondayOffset+(week-1)*7)
	end := start.AddDate(0, 0, 6)

	return fmt.Sprintf("%s %d - %s %d, %d",
		start.Month().String()[:3], start.Day(),
		end.Month().String()[:3], end.Day(),
		year)
}
