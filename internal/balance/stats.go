package balance

import (
	"sort"
	"time"

	"github.com/timeflowhq/timeflow/internal/timekeep"
	"github.com/timeflowhq/timeflow/internal/timeutil"
)

// TypeStats aggregates one behavior within a period. MaxDays and Over
// are filled only for year periods, where the cap applies; the cap is
// informational and never blocks anything.
type TypeStats struct {
	ID      string
	Label   string
	Icon    string
	Days    int
	Hours   float64
	MaxDays *int
	Over    bool
}

// PeriodStats is the aggregate for a week, month or year. Weekend work
// is reported on its own and never merged into the weekday total.
type PeriodStats struct {
	Label        string
	From         time.Time
	To           time.Time
	GoalHours    float64
	ActualHours  float64
	WeekendHours float64
	Delta        float64
	ByType       []TypeStats
}

// WeekStats aggregates the ISO week containing ref. Day deltas accrue
// only through ref's date; the goal covers the whole period.
func (e *Engine) WeekStats(entries []timekeep.FlatEntry, ref time.Time) PeriodStats {
	from, to := timeutil.WeekRange(ref)
	return e.periodStats(entries, from, to, ref, timeutil.ISOWeekLabel(ref), false)
}

// MonthStats aggregates the calendar month containing ref.
func (e *Engine) MonthStats(entries []timekeep.FlatEntry, ref time.Time) PeriodStats {
	from, to := timeutil.MonthRange(ref)
	return e.periodStats(entries, from, to, ref, from.Format("January 2006"), false)
}

// YearStats aggregates the calendar year containing ref and compares
// each behavior against its yearly day cap.
func (e *Engine) YearStats(entries []timekeep.FlatEntry, ref time.Time) PeriodStats {
	from, to := timeutil.YearRange(ref)
	return e.periodStats(entries, from, to, ref, from.Format("2006"), true)
}

func (e *Engine) periodStats(entries []timekeep.FlatEntry, from, to, ref time.Time, label string, capYear bool) PeriodStats {
	stats := PeriodStats{Label: label, From: from, To: to}
	cutoff := timeutil.StartOfDay(ref)

	typeDays := make(map[string]map[string]bool)
	typeHours := make(map[string]float64)

	for _, d := range e.Days(entries, from, to.AddDate(0, 0, -1)) {
		stats.GoalHours += d.Goal
		if d.Weekend {
			stats.WeekendHours += d.Actual
		} else {
			stats.ActualHours += d.Actual
		}
		if !d.Date.After(cutoff) {
			stats.Delta += d.Delta
		}

		for _, en := range d.Entries {
			if en.Behavior == nil || !en.Behavior.IncludeInStats {
				continue
			}
			id := en.Behavior.ID
			if typeDays[id] == nil {
				typeDays[id] = make(map[string]bool)
			}
			typeDays[id][d.Date.Format(timeutil.DayLayout)] = true
			typeHours[id] += en.Duration
		}
	}

	ids := make([]string, 0, len(typeDays))
	for id := range typeDays {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		b := e.cfg.BehaviorFor(id)
		if b == nil {
			continue
		}
		ts := TypeStats{
			ID:    id,
			Label: b.DisplayLabel(),
			Icon:  b.Icon,
			Days:  len(typeDays[id]),
			Hours: typeHours[id],
		}
		if capYear && b.MaxDaysPerYear != nil {
			ts.MaxDays = b.MaxDaysPerYear
			ts.Over = ts.Days > *b.MaxDaysPerYear
		}
		stats.ByType = append(stats.ByType, ts)
	}
	return stats
}
