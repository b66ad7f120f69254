package timekeep

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/timeflowhq/timeflow/internal/config"
	"github.com/timeflowhq/timeflow/internal/holiday"
	"github.com/timeflowhq/timeflow/internal/notes"
	"github.com/timeflowhq/timeflow/internal/timeutil"
)

const (
	dirPermissions  = 0o755
	filePermissions = 0o644
)

// Store owns the canonical entry list and serializes every mutation
// into the timekeep note. All I/O fails soft: reads fall back to an
// empty list, failed writes keep the in-memory state and are logged.
type Store struct {
	mu            sync.Mutex
	path          string
	reloadWindow  time.Duration
	doc           Document
	settingsRaw   []byte
	isSaving      bool
	lastSaveStart time.Time
	onChange      []func()
}

// NewStore points a store at the note path. Nothing is read until
// Load.
func NewStore(path string, reloadWindow time.Duration) *Store {
	return &Store{path: path, reloadWindow: reloadWindow}
}

// Path returns the note path backing the store.
func (s *Store) Path() string {
	return s.path
}

// OnChange registers fn to run after every successful persist.
func (s *Store) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = append(s.onChange, fn)
}

// Load reads the note from disk. A missing file or an unparseable
// timekeep block resets the in-memory list to empty.
func (s *Store) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Printf("timeflow: read note: %v", err)
		}
		s.doc = Document{}
		s.settingsRaw = nil
		return
	}

	doc, settings, err := ParseNote(string(data))
	if err != nil {
		log.Printf("timeflow: %v", err)
		s.doc = Document{}
		s.settingsRaw = nil
		return
	}
	s.doc = doc
	s.settingsRaw = settings
}

// ReloadSafe reports whether an externally observed file change may be
// re-read without racing a write from this process.
func (s *Store) ReloadSafe(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isSaving {
		return false
	}
	return now.Sub(s.lastSaveStart) >= s.reloadWindow
}

// Entries returns a copy of the current entry list in insertion order.
func (s *Store) Entries() []Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Timer(nil), s.doc.Entries...)
}

// FlatEntries flattens the current tree for the balance engine.
func (s *Store) FlatEntries() []FlatEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Flatten(s.doc.Entries)
}

// Active returns the most recently started timer that is still
// running.
func (s *Store) Active() (Timer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.doc.Entries) - 1; i >= 0; i-- {
		if s.doc.Entries[i].Active() {
			return s.doc.Entries[i], true
		}
	}
	return Timer{}, false
}

// SettingsRaw returns the raw settings overlay, nil when the note has
// none.
func (s *Store) SettingsRaw() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.settingsRaw...)
}

// SetSettings replaces the settings overlay and persists.
func (s *Store) SetSettings(raw []byte) bool {
	saved := false
	s.withSave(func() bool {
		s.settingsRaw = append([]byte(nil), raw...)
		return true
	}, &saved)
	return saved
}

// Start appends a running timer and persists. It never refuses; a
// failed write keeps the timer in memory.
func (s *Store) Start(name string, now time.Time) Timer {
	start := timeutil.NewLocal(now)
	timer := Timer{Name: name, StartTime: &start}
	s.withSave(func() bool {
		s.doc.Entries = append(s.doc.Entries, timer)
		return true
	}, nil)
	return timer
}

// StopActive completes the most recently started running timer.
// Reports false, leaving the store untouched, when nothing runs.
func (s *Store) StopActive(now time.Time) (Timer, bool) {
	var stopped Timer
	found := false
	s.withSave(func() bool {
		for i := len(s.doc.Entries) - 1; i >= 0; i-- {
			if s.doc.Entries[i].Stop(now) {
				stopped = s.doc.Entries[i]
				found = true
				return true
			}
		}
		return false
	}, nil)
	return stopped, found
}

// Add appends a completed record, such as a manual entry.
func (s *Store) Add(t Timer) {
	s.withSave(func() bool {
		s.doc.Entries = append(s.doc.Entries, t)
		return true
	}, nil)
}

// Delete removes the entry at index (0-based, top level) and reports
// whether one was found.
func (s *Store) Delete(index int) (Timer, bool) {
	var removed Timer
	found := false
	s.withSave(func() bool {
		if index < 0 || index >= len(s.doc.Entries) {
			return false
		}
		removed = s.doc.Entries[index]
		s.doc.Entries = append(s.doc.Entries[:index], s.doc.Entries[index+1:]...)
		found = true
		return true
	}, nil)
	return removed, found
}

// Merge folds imported entries into the list, deduplicated by the
// (name, start, end) identity against every record in the tree.
// Duplicates are an expected outcome, counted separately from adds.
func (s *Store) Merge(incoming []Timer) (added, skipped int) {
	s.withSave(func() bool {
		existing := make(map[string]bool)
		collectKeys(s.doc.Entries, existing)
		for _, t := range incoming {
			key := t.Key()
			if existing[key] {
				skipped++
				continue
			}
			existing[key] = true
			s.doc.Entries = append(s.doc.Entries, t)
			added++
		}
		return added > 0
	}, nil)
	return added, skipped
}

// NormalizeTimestamps rewrites legacy timestamp forms in memory and
// reports whether anything changed. The caller decides whether to
// persist the result.
func (s *Store) NormalizeTimestamps() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return normalizeTimers(s.doc.Entries)
}

// ConvertPastPlannedDays materializes calendar entries dated before
// today into timer entries, one per day and type, skipping days that
// already have a matching timer. Returns the number converted.
func (s *Store) ConvertPastPlannedDays(cal holiday.Calendar, cfg config.Settings, today time.Time) int {
	converted := 0
	cutoff := timeutil.StartOfDay(today)
	s.withSave(func() bool {
		for _, e := range cal.Entries {
			if !e.Date.Before(cutoff) {
				continue
			}
			behavior := cfg.BehaviorFor(e.Type)
			if behavior == nil || !behavior.ConvertsPastDays() {
				continue
			}
			if hasEntryOn(s.doc.Entries, e.Date, e.Type) {
				continue
			}
			s.doc.Entries = append(s.doc.Entries, plannedTimer(e, *behavior, cfg))
			converted++
		}
		return converted > 0
	}, nil)
	return converted
}

// HasEntryOn reports whether any timer in the tree matches the day and
// name. Conversion uses the same guard.
func (s *Store) HasEntryOn(day time.Time, name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return hasEntryOn(s.doc.Entries, day, name)
}

// Save persists the current in-memory state.
func (s *Store) Save() bool {
	saved := false
	s.withSave(func() bool { return true }, &saved)
	return saved
}

// withSave runs fn under the lock, persists when fn reports a change,
// and fires change listeners after a successful write. savedOut, when
// non-nil, receives the persist outcome.
func (s *Store) withSave(fn func() bool, savedOut *bool) {
	s.mu.Lock()
	saved := false
	if fn() {
		saved = s.persistLocked()
	}
	if savedOut != nil {
		*savedOut = saved
	}
	var listeners []func()
	if saved {
		listeners = append(listeners, s.onChange...)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

// persistLocked rewrites the note's fenced blocks around whatever else
// the file contains. The saving flag is always cleared, so a failed
// write cannot wedge reload suppression.
func (s *Store) persistLocked() bool {
	s.isSaving = true
	s.lastSaveStart = time.Now()
	defer func() { s.isSaving = false }()

	if err := s.ensureLocked(); err != nil {
		log.Printf("timeflow: prepare note: %v", err)
		return false
	}

	current, err := os.ReadFile(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("timeflow: read note before save: %v", err)
		return false
	}

	out, err := RenderNote(string(current), s.doc, s.settingsRaw)
	if err != nil {
		log.Printf("timeflow: %v", err)
		return false
	}
	if err := notes.WriteLines(s.path, notes.SplitLines(out)); err != nil {
		log.Printf("timeflow: save note: %v", err)
		return false
	}
	return true
}

// ensureLocked guarantees the note file exists, seeding a fresh one
// with the header and an empty entries block. Losing the creation race
// to another writer counts as success.
func (s *Store) ensureLocked() error {
	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat note: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), dirPermissions); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}

	seed, err := RenderNote("", Document{}, nil)
	if err != nil {
		return err
	}

	file, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePermissions)
	if errors.Is(err, fs.ErrExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("create note: %w", err)
	}
	defer file.Close()

	if _, err := file.WriteString(seed); err != nil {
		return fmt.Errorf("seed note: %w", err)
	}
	return nil
}

func hasEntryOn(entries []Timer, day time.Time, name string) bool {
	for _, t := range entries {
		if t.StartTime != nil && strings.EqualFold(t.Name, name) && timeutil.SameDay(t.StartTime.Time, day) {
			return true
		}
		if len(t.SubEntries) > 0 && hasEntryOn(t.SubEntries, day, name) {
			return true
		}
	}
	return false
}

// plannedTimer synthesizes the timer for a past planned day. Withdraw
// types get a real window so the spent hours are visible; other types
// get the zero-length placeholder and leave the goal adjustment to the
// engine. An explicit window on the calendar line wins.
func plannedTimer(e holiday.Entry, b config.Behavior, cfg config.Settings) Timer {
	start := timeutil.At(e.Date, 8, 0)
	end := start

	switch {
	case e.Start != nil && e.End != nil:
		start, end = *e.Start, *e.End
	case b.FlextimeEffect == config.EffectWithdraw:
		hours := cfg.FullDayHours()
		if e.HalfDay {
			hours = cfg.HalfDayGoalHours()
		}
		end = start.Add(time.Duration(hours * float64(time.Hour)))
	}

	startLT := timeutil.NewLocal(start)
	endLT := timeutil.NewLocal(end)
	return Timer{Name: e.Type, StartTime: &startLT, EndTime: &endLT}
}
