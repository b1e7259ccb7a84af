// Package calendar converts between working-day offsets and calendar dates.
// Only weekends are skipped; there is no holiday calendar.
package calendar

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the plain calendar date format used in plan files and flags.
const DateLayout = "2006-01-02"

// Midnight returns the calendar day t falls on in its own location, as
// 00:00 UTC. Every plan date is held in this form so dates compare as days.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IsWeekday reports whether t falls on Monday through Friday.
func IsWeekday(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// AddBusinessDays returns the day reached by advancing n working days from
// the day of start. n <= 0 returns that day unchanged. A zero start falls
// back to today.
func AddBusinessDays(start time.Time, n int) time.Time {
	if start.IsZero() {
		start = time.Now()
	}
	start = Midnight(start)
	if n <= 0 {
		return start
	}
	cur := start
	for count := 0; count < n; {
		cur = cur.AddDate(0, 0, 1)
		if IsWeekday(cur) {
			count++
		}
	}
	return cur
}

// BusinessDayDiff counts the working days after start up to and including end.
// Each date is reduced to its own calendar day; 0 is returned when end is
// before start.
func BusinessDayDiff(start, end time.Time) int {
	s := Midnight(start)
	e := Midnight(end)
	if e.Before(s) {
		return 0
	}
	count := 0
	for cur := s; cur.Before(e); {
		cur = cur.AddDate(0, 0, 1)
		if IsWeekday(cur) {
			count++
		}
	}
	return count
}

// ParseDate accepts a plain date (2006-01-02) or an RFC3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return Midnight(t), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: expected YYYY-MM-DD", s)
	}
	return Midnight(t), nil
}

// Format renders t as a plain date, or "N/A" for the zero time.
func Format(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Format(DateLayout)
}
