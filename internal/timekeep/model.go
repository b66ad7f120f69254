// Package timekeep owns the canonical timer list: the model persisted
// inside the note's fenced blocks, the codec that reads and writes
// them, and the store that serializes all mutations.
package timekeep

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/timeflowhq/timeflow/internal/timeutil"
)

// Timer is one raw start/stop record. An active timer has a start and
// no end. SubEntries groups sub-sessions under a named block; the
// collapsed flag decides how the group flattens.
type Timer struct {
	Name       string              `json:"name"`
	StartTime  *timeutil.LocalTime `json:"startTime"`
	EndTime    *timeutil.LocalTime `json:"endTime"`
	Collapsed  bool                `json:"collapsed,omitempty"`
	SubEntries []Timer             `json:"subEntries,omitempty"`
}

// Active reports whether the timer is running.
func (t Timer) Active() bool {
	return t.StartTime != nil && t.EndTime == nil
}

// Stop completes the timer at now. It reports false and changes
// nothing when the timer never started or has already ended.
func (t *Timer) Stop(now time.Time) bool {
	if t.StartTime == nil || t.EndTime != nil {
		return false
	}
	end := timeutil.NewLocal(now)
	t.EndTime = &end
	return true
}

// Key is the record identity used for import deduplication: the name
// plus the exact start and end texts.
func (t Timer) Key() string {
	var b strings.Builder
	b.WriteString(strings.ToLower(t.Name))
	b.WriteByte('|')
	if t.StartTime != nil {
		b.WriteString(t.StartTime.String())
	}
	b.WriteByte('|')
	if t.EndTime != nil {
		b.WriteString(t.EndTime.String())
	}
	return b.String()
}

// Document is the persisted root. Settings carries a legacy overlay
// embedded in the entries block; current notes keep the overlay in its
// own block instead.
type Document struct {
	Entries  []Timer         `json:"entries"`
	Settings json.RawMessage `json:"settings,omitempty"`
}

// FlatEntry is a flattened leaf ready for the balance engine.
type FlatEntry struct {
	Name     string
	Start    time.Time
	End      time.Time
	Duration float64
}

// Flatten expands the timer tree into completed leaves. A collapsed
// group is replaced by its children, recursively; a group left
// expanded counts as one block. Records without both endpoints are
// dropped, which keeps a still-running timer out of the balance until
// it stops.
func Flatten(entries []Timer) []FlatEntry {
	var flat []FlatEntry
	for _, t := range entries {
		if t.Collapsed && len(t.SubEntries) > 0 {
			flat = append(flat, Flatten(t.SubEntries)...)
			continue
		}
		if t.StartTime == nil || t.EndTime == nil {
			continue
		}
		start, end := t.StartTime.Time, t.EndTime.Time
		flat = append(flat, FlatEntry{
			Name:     t.Name,
			Start:    start,
			End:      end,
			Duration: timeutil.HoursBetween(start, end),
		})
	}
	return flat
}

// collectKeys walks the whole tree so that an import cannot duplicate
// a record hidden inside a group.
func collectKeys(entries []Timer, into map[string]bool) {
	for _, t := range entries {
		into[t.Key()] = true
		if len(t.SubEntries) > 0 {
			collectKeys(t.SubEntries, into)
		}
	}
}

// normalizeTimers rewrites legacy timestamps in place: values whose
// stored text is not in the canonical local layout are re-serialized,
// and values at exact local midnight move to 08:00. Reports whether
// anything changed; a second pass over the result is always a no-op.
func normalizeTimers(entries []Timer) bool {
	changed := false
	for i := range entries {
		if normalizeTimestamp(&entries[i].StartTime) {
			changed = true
		}
		if normalizeTimestamp(&entries[i].EndTime) {
			changed = true
		}
		if len(entries[i].SubEntries) > 0 && normalizeTimers(entries[i].SubEntries) {
			changed = true
		}
	}
	return changed
}

func normalizeTimestamp(ts **timeutil.LocalTime) bool {
	if *ts == nil {
		return false
	}
	v := **ts
	t := v.Time

	midnight := t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0
	if !midnight && v.Canonical() {
		return false
	}
	if midnight {
		t = time.Date(t.Year(), t.Month(), t.Day(), 8, 0, 0, 0, time.Local)
	}
	fixed := timeutil.NewLocal(t)
	*ts = &fixed
	return true
}
