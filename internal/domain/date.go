package domain

import "time"

// DateLayout is the wire format for calendar dates. Loan and reservation
// date arithmetic is calendar-day granular; no time-of-day component is
// ever significant.
const DateLayout = "2006-01-02"

// DateOnly truncates t to its calendar day in UTC.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// FormatDate renders a time as its calendar day.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
