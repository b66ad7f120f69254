// Package balance derives daily goals, flextime deltas and the running
// balance from flattened timer entries, the effective settings and the
// holiday calendar. Everything is recomputed from the full history on
// every call, so backdated edits are picked up for free.
package balance

import (
	"math"
	"strings"
	"time"

	"github.com/timeflowhq/timeflow/internal/config"
	"github.com/timeflowhq/timeflow/internal/holiday"
	"github.com/timeflowhq/timeflow/internal/timekeep"
	"github.com/timeflowhq/timeflow/internal/timeutil"
)

// Engine is a fixed view over settings and calendar. It holds no
// entry state; entries are passed into every computation.
type Engine struct {
	cfg       config.Settings
	byDay     map[string][]holiday.Entry
	primary   []time.Weekday
	alternate []time.Weekday
}

// NewEngine builds an engine over the given settings and calendar.
func NewEngine(cfg config.Settings, cal holiday.Calendar) *Engine {
	primary, alternate := cfg.WorkdaySets()
	return &Engine{
		cfg:       cfg,
		byDay:     cal.ByDay(),
		primary:   primary,
		alternate: alternate,
	}
}

// EntryDelta pairs a flattened entry with its resolved behavior and
// its signed flextime contribution.
type EntryDelta struct {
	timekeep.FlatEntry
	Behavior *config.Behavior
	Flextime float64
}

// TypeID is the stats bucket of the entry: the behavior id when the
// name matched the registry, otherwise the lowercased name itself.
func (d EntryDelta) TypeID() string {
	if d.Behavior != nil {
		return d.Behavior.ID
	}
	return strings.ToLower(d.Name)
}

// DaySummary is one day's computed numbers.
type DaySummary struct {
	Date    time.Time
	Goal    float64
	Actual  float64
	Delta   float64
	Weekend bool
	Entries []EntryDelta
}

// resolved carries an entry whose name has been matched against the
// behavior registry exactly once. A nil behavior means ordinary work.
type resolved struct {
	entry    timekeep.FlatEntry
	behavior *config.Behavior
}

func (e *Engine) resolve(entries []timekeep.FlatEntry) map[string][]resolved {
	grouped := make(map[string][]resolved)
	for _, en := range entries {
		key := en.Start.Format(timeutil.DayLayout)
		grouped[key] = append(grouped[key], resolved{entry: en, behavior: e.cfg.BehaviorFor(en.Name)})
	}
	return grouped
}

// GoalFor computes the hours owed on date, given that day's entries.
func (e *Engine) GoalFor(date time.Time, dayEntries []timekeep.FlatEntry) float64 {
	rs := make([]resolved, 0, len(dayEntries))
	for _, en := range dayEntries {
		rs = append(rs, resolved{entry: en, behavior: e.cfg.BehaviorFor(en.Name)})
	}
	return e.goalFor(date, rs)
}

// goalFor applies the reductions in order: non-workdays owe nothing, a
// full no-hours calendar day owes nothing, a half one owes the half
// amount, and a no-hours timer entry zeroes the day for absences that
// never made it into the calendar.
func (e *Engine) goalFor(date time.Time, dayEntries []resolved) float64 {
	if !timeutil.IsWorkday(date, e.primary, e.alternate, e.cfg.UseAlternatingWeeks) {
		return 0
	}

	halfDay := false
	for _, h := range e.byDay[date.Format(timeutil.DayLayout)] {
		b := e.cfg.BehaviorFor(h.Type)
		if b == nil || !b.NoHoursRequired {
			continue
		}
		if h.HalfDay {
			halfDay = true
			continue
		}
		return 0
	}
	if halfDay {
		return e.cfg.HalfDayGoalHours()
	}

	for _, r := range dayEntries {
		if r.behavior != nil && r.behavior.NoHoursRequired {
			return 0
		}
	}
	return e.cfg.FullDayHours()
}

func isOrdinary(b *config.Behavior) bool {
	return b == nil || b.FlextimeEffect == config.EffectNone
}

// dayNumbers computes a day's total hours, its delta, and per-entry
// flextime annotations. The ordinary bucket is charged against the
// goal exactly once, also on an empty day; a day holding only withdraw
// or accumulate entries skips that charge so their adjustments stand
// alone.
func (e *Engine) dayNumbers(goal float64, dayEntries []resolved) (actual, delta float64, annotated []EntryDelta) {
	ordinarySum := 0.0
	ordinaryCount := 0
	for _, r := range dayEntries {
		actual += r.entry.Duration
		if isOrdinary(r.behavior) {
			ordinarySum += r.entry.Duration
			ordinaryCount++
		}
	}

	annotated = make([]EntryDelta, 0, len(dayEntries))
	for _, r := range dayEntries {
		ed := EntryDelta{FlatEntry: r.entry, Behavior: r.behavior}
		switch {
		case isOrdinary(r.behavior):
			if ordinarySum != 0 {
				ed.Flextime = r.entry.Duration - goal*(r.entry.Duration/ordinarySum)
			}
		case r.behavior.FlextimeEffect == config.EffectWithdraw:
			ed.Flextime = -r.entry.Duration
		case r.behavior.FlextimeEffect == config.EffectAccumulate:
			ed.Flextime = math.Max(0, r.entry.Duration-goal)
		}
		delta += ed.Flextime
		annotated = append(annotated, ed)
	}

	if ordinarySum == 0 && (ordinaryCount > 0 || len(dayEntries) == 0) {
		delta -= goal
	}
	return actual, delta, annotated
}

// Days summarizes every calendar date from from through to inclusive,
// including days without entries.
func (e *Engine) Days(entries []timekeep.FlatEntry, from, to time.Time) []DaySummary {
	grouped := e.resolve(entries)

	var days []DaySummary
	last := timeutil.StartOfDay(to)
	for d := timeutil.StartOfDay(from); !d.After(last); d = d.AddDate(0, 0, 1) {
		dayEntries := grouped[d.Format(timeutil.DayLayout)]
		goal := e.goalFor(d, dayEntries)
		actual, delta, annotated := e.dayNumbers(goal, dayEntries)
		days = append(days, DaySummary{
			Date:    d,
			Goal:    goal,
			Actual:  actual,
			Delta:   delta,
			Weekend: isWeekend(d),
			Entries: annotated,
		})
	}
	return days
}

// Balance computes the running flextime balance from the configured
// start date through asOf. Without a configured start the earliest
// entry opens the ledger; no entries means zero.
func (e *Engine) Balance(entries []timekeep.FlatEntry, asOf time.Time) float64 {
	start, ok := e.startFor(entries)
	if !ok || start.After(asOf) {
		return 0
	}
	total := 0.0
	for _, d := range e.Days(entries, start, asOf) {
		total += d.Delta
	}
	return total
}

// HolidayEntries returns the calendar entries covering date.
func (e *Engine) HolidayEntries(date time.Time) []holiday.Entry {
	return e.byDay[date.Format(timeutil.DayLayout)]
}

// Thresholds exposes the configured balance display bounds.
func (e *Engine) Thresholds() config.Thresholds {
	return e.cfg.BalanceThresholds
}

func (e *Engine) startFor(entries []timekeep.FlatEntry) (time.Time, bool) {
	if t := e.cfg.StartDate(); !t.IsZero() {
		return t, true
	}
	var earliest time.Time
	for _, en := range entries {
		if earliest.IsZero() || en.Start.Before(earliest) {
			earliest = en.Start
		}
	}
	if earliest.IsZero() {
		return time.Time{}, false
	}
	return timeutil.StartOfDay(earliest), true
}

func isWeekend(d time.Time) bool {
	return d.Weekday() == time.Saturday || d.Weekday() == time.Sunday
}
