package schema

import "time"

// CivilDate truncates t to midnight UTC of its calendar day.
func CivilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddDays shifts a civil date by n days.
func AddDays(t time.Time, n int) time.Time {
	return CivilDate(t).AddDate(0, 0, n)
}

// DaysBetween returns the whole number of days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(CivilDate(b).Sub(CivilDate(a)).Hours() / 24)
}

// MonthStart returns the first day of t's month.
func MonthStart(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

// FormatDate renders a civil date as YYYY-MM-DD, or empty for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}
