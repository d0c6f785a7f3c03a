package services

import (
	"fmt"
	"time"
)

const periodKeyLayout = "2006-01-02"

// PeriodKeyFor returns the UTC calendar-day key that scopes repeatable awards.
func PeriodKeyFor(t time.Time) string {
	return t.UTC().Format(periodKeyLayout)
}

// PeriodBounds returns the [start, end) window for a period key.
func PeriodBounds(periodKey string) (time.Time, time.Time, error) {
	start, err := time.Parse(periodKeyLayout, periodKey)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid period key %q: %w", periodKey, err)
	}
	return start, start.Add(24 * time.Hour), nil
}
