package normalize

import "time"

// DateLayout is the ISO date format used by the provider and by callers
const DateLayout = "2006-01-02"

const (
	indicatorLookbackDays = 100
	calendarLookaheadDays = 30
)

// IndicatorWindow resolves the date range for an indicator query.
// A missing to date means today and a missing from date means 100 days
// before the to date.
func IndicatorWindow(now time.Time, from, to string) (string, string) {
	if to == "" {
		to = now.Format(DateLayout)
	}
	if from == "" {
		anchor, err := time.Parse(DateLayout, to)
		if err != nil {
			anchor = now
		}
		from = anchor.AddDate(0, 0, -indicatorLookbackDays).Format(DateLayout)
	}
	return from, to
}

// CalendarWindow resolves the date range for an earnings calendar query.
// A missing to date means 30 days from today and a missing from date means today.
func CalendarWindow(now time.Time, from, to string) (string, string) {
	if to == "" {
		to = now.AddDate(0, 0, calendarLookaheadDays).Format(DateLayout)
	}
	if from == "" {
		from = now.Format(DateLayout)
	}
	return from, to
}

// InWindow reports whether an ISO date lies within [from, to].
// Comparison is lexicographic, which matches chronological order only for
// zero-padded YYYY-MM-DD strings.
func InWindow(date, from, to string) bool {
	return from <= date && date <= to
}
