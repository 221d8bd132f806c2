package core

import "time"

// Calendar arithmetic for due dates and overdue day counts. All day math is
// done in UTC on day boundaries, so the time of day of an operation never
// changes how many days a loan is overdue.

// StartOfDay truncates a timestamp to midnight UTC of its calendar day.
func StartOfDay(t time.Time) time.Time {
	utc := t.UTC()

	return time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
}

// AddDays shifts a timestamp by whole calendar days.
func AddDays(t time.Time, days int) time.Time {
	return t.AddDate(0, 0, days)
}

// WholeDaysBetween counts the whole calendar days from one timestamp's day to
// another's. The result is negative when "to" lies on an earlier day.
func WholeDaysBetween(from time.Time, to time.Time) int {
	return int(StartOfDay(to).Sub(StartOfDay(from)).Hours() / 24)
}
