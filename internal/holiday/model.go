// Package holiday reads and appends the planned-absence calendar that
// lives in its own markdown note: a section heading followed by a
// fenced block of dated list lines.
package holiday

import (
	"time"

	"github.com/timeflowhq/timeflow/internal/timeutil"
)

// Status classifies a planned day relative to today and the timer list.
type Status string

const (
	// StatusPlanned marks a day that has not passed yet.
	StatusPlanned Status = "planned"
	// StatusDue marks a past day waiting for conversion.
	StatusDue Status = "due"
	// StatusConverted marks a past day that has a matching timer entry.
	StatusConverted Status = "converted"
	// StatusSkipped marks a past day whose type never converts.
	StatusSkipped Status = "skipped"
)

// Entry is one planned absence. Start and End are set only when the
// note line carries an explicit clock window.
type Entry struct {
	Date        time.Time
	Type        string
	Description string
	HalfDay     bool
	Start       *time.Time
	End         *time.Time
}

// Status reports where the entry sits in the conversion lifecycle.
// hasTimer tells whether a timer already covers the day under this
// type; converts tells whether the type converts at all.
func (e Entry) Status(today time.Time, hasTimer, converts bool) Status {
	if !e.Date.Before(timeutil.StartOfDay(today)) {
		return StatusPlanned
	}
	if hasTimer {
		return StatusConverted
	}
	if !converts {
		return StatusSkipped
	}
	return StatusDue
}

// Calendar is the parsed absence list in note order.
type Calendar struct {
	Entries []Entry
}

// ByDay indexes the entries by their day key. Multiple entries may
// share a day.
func (c Calendar) ByDay() map[string][]Entry {
	byDay := make(map[string][]Entry, len(c.Entries))
	for _, e := range c.Entries {
		key := e.Date.Format(timeutil.DayLayout)
		byDay[key] = append(byDay[key], e)
	}
	return byDay
}

// ForDay returns the entries covering the given date.
func (c Calendar) ForDay(day time.Time) []Entry {
	var matched []Entry
	for _, e := range c.Entries {
		if timeutil.SameDay(e.Date, day) {
			matched = append(matched, e)
		}
	}
	return matched
}
