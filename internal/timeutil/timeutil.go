// Package timeutil holds the calendar and clock arithmetic shared by
// the balance engine, the importers and the CLI. Everything in here is
// pure; callers pass "now" in.
package timeutil

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// StartOfDay truncates t to local midnight.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
}

// SameDay reports whether a and b fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// At places a wall clock on the calendar date of day.
func At(day time.Time, hour, minute int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, time.Local)
}

// WeekRange returns the Monday 00:00 start and the exclusive end of the
// ISO week containing t.
func WeekRange(t time.Time) (time.Time, time.Time) {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	start := StartOfDay(t).AddDate(0, 0, -(weekday - 1))
	return start, start.AddDate(0, 0, 7)
}

// MonthRange returns the first of the month 00:00 and the exclusive end.
func MonthRange(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.Local)
	return start, start.AddDate(0, 1, 0)
}

// YearRange returns January 1st 00:00 and the exclusive end of the year.
func YearRange(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), 1, 1, 0, 0, 0, 0, time.Local)
	return start, start.AddDate(1, 0, 0)
}

// ISOWeekLabel renders the ISO week of t as "2024-W48".
func ISOWeekLabel(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// IsWorkday reports whether date is a working day under the given
// week pattern. With alternateWeeks set, even ISO weeks use the
// alternate set and odd weeks the primary one.
func IsWorkday(date time.Time, primary, alternate []time.Weekday, alternateWeeks bool) bool {
	set := primary
	if alternateWeeks {
		if _, week := date.ISOWeek(); week%2 == 0 {
			set = alternate
		}
	}
	for _, wd := range set {
		if date.Weekday() == wd {
			return true
		}
	}
	return false
}

// HoursBetween returns the span from start to end in hours. Negative
// when end precedes start.
func HoursBetween(start, end time.Time) float64 {
	return end.Sub(start).Hours()
}

// ParseDayKey reads a YYYY-MM-DD day key into local midnight.
func ParseDayKey(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DayLayout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}

// ParseDateLiteral reads a calendar date in ISO, dotted or slashed
// form. Dotted and slashed dates are day-first.
func ParseDateLiteral(s string) (time.Time, error) {
	str := strings.TrimSpace(s)
	for _, layout := range []string{DayLayout, "2.1.2006", "2/1/2006"} {
		if t, err := time.ParseInLocation(layout, str, time.Local); err == nil {
			return StartOfDay(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// ParseClockLiteral reads a wall clock in HH:MM or HH.MM form.
func ParseClockLiteral(s string) (hour, minute int, err error) {
	str := strings.TrimSpace(s)
	for _, layout := range []string{"15:04", "15.04"} {
		if t, perr := time.Parse(layout, str); perr == nil {
			return t.Hour(), t.Minute(), nil
		}
	}
	return 0, 0, fmt.Errorf("unrecognized clock %q", s)
}

// FormatHours renders a fractional hour count as "7h 30m". Zero is
// "0h"; sub-hour values drop the hour part.
func FormatHours(hours float64) string {
	sign := ""
	if hours < 0 {
		sign = "-"
		hours = -hours
	}
	totalMinutes := int(math.Round(hours * 60))
	h := totalMinutes / 60
	m := totalMinutes % 60
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%s%dh %dm", sign, h, m)
	case h > 0:
		return fmt.Sprintf("%s%dh", sign, h)
	case m > 0:
		return fmt.Sprintf("%s%dm", sign, m)
	default:
		return "0h"
	}
}

// FormatSignedHours is FormatHours with an explicit plus on positive
// values, used for flextime balances.
func FormatSignedHours(hours float64) string {
	if hours > 0 {
		return "+" + FormatHours(hours)
	}
	return FormatHours(hours)
}
