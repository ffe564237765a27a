package workflow

import (
	"time"

	"kpiflow/internal/constants"
)

// parseDate parses a calendar date in the store's "2006-01-02" layout.
func parseDate(s string) (time.Time, error) {
	return time.Parse(constants.DateLayout, s)
}

// dateOnly truncates t to a UTC calendar date so it compares cleanly with
// parsed store dates.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ExpectedProgress returns the percentage of the task's date window that has
// elapsed as of today, as an integer in [0, 100]. It is the benchmark the UI
// shows next to the owner's self-reported progress.
//
// Malformed dates yield 0; a zero-length window counts as fully elapsed.
func ExpectedProgress(startDate, endDate string, today time.Time) int {
	start, err := parseDate(startDate)
	if err != nil {
		return 0
	}
	end, err := parseDate(endDate)
	if err != nil {
		return 0
	}

	day := dateOnly(today)
	if day.Before(start) {
		return 0
	}
	if day.After(end) {
		return 100
	}

	total := int(end.Sub(start).Hours() / 24)
	if total <= 0 {
		return 100
	}
	elapsed := int(day.Sub(start).Hours() / 24)
	return elapsed * 100 / total
}
