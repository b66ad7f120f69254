package timekeep

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/timeflowhq/timeflow/internal/config"
	"github.com/timeflowhq/timeflow/internal/holiday"
)

func newTempStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "timekeep.md"), 500*time.Millisecond)
}

func TestStartStopRoundTrip(t *testing.T) {
	store := newTempStore(t)
	store.Load()

	startAt := time.Date(2024, time.November, 25, 8, 0, 0, 0, time.Local)
	store.Start("jobb", startAt)

	if _, ok := store.Active(); !ok {
		t.Fatalf("expected an active timer after start")
	}

	stopped, ok := store.StopActive(startAt.Add(8 * time.Hour))
	if !ok {
		t.Fatalf("expected the running timer to stop")
	}
	if got, want := stopped.EndTime.String(), "2024-11-25T16:00:00"; got != want {
		t.Errorf("EndTime = %q, want %q", got, want)
	}

	// A fresh store over the same file sees the persisted record.
	reloaded := NewStore(store.Path(), 500*time.Millisecond)
	reloaded.Load()
	entries := reloaded.Entries()
	if got, want := len(entries), 1; got != want {
		t.Fatalf("reloaded %d entries, want %d", got, want)
	}
	if entries[0].Active() {
		t.Errorf("reloaded entry still active: %+v", entries[0])
	}
}

func TestStopWithoutActiveTimer(t *testing.T) {
	store := newTempStore(t)
	store.Load()

	if _, ok := store.StopActive(time.Now()); ok {
		t.Fatalf("stop with no running timer must report a no-op")
	}
	if len(store.Entries()) != 0 {
		t.Errorf("no-op stop modified the store")
	}
	if _, err := os.Stat(store.Path()); !os.IsNotExist(err) {
		t.Errorf("no-op stop should not create the note")
	}
}

func TestLoadMissingAndCorrupt(t *testing.T) {
	store := newTempStore(t)
	store.Load()
	if len(store.Entries()) != 0 {
		t.Errorf("missing file should load as empty")
	}

	if err := os.MkdirAll(filepath.Dir(store.Path()), 0o755); err != nil {
		t.Fatal(err)
	}
	corrupt := "# Notat\n```timekeep\n{\"entries\": [oops\n```\n"
	if err := os.WriteFile(store.Path(), []byte(corrupt), 0o644); err != nil {
		t.Fatal(err)
	}

	store.Load()
	if len(store.Entries()) != 0 {
		t.Errorf("corrupt block should reset to empty")
	}
}

func TestMergeDeduplicates(t *testing.T) {
	store := newTempStore(t)
	store.Load()

	batch := []Timer{
		{Name: "jobb", StartTime: localAt(2024, time.November, 25, 8, 0), EndTime: localAt(2024, time.November, 25, 16, 0)},
		{Name: "jobb", StartTime: localAt(2024, time.November, 26, 8, 0), EndTime: localAt(2024, time.November, 26, 16, 0)},
	}

	added, skipped := store.Merge(batch)
	if added != 2 || skipped != 0 {
		t.Fatalf("first merge = (%d, %d), want (2, 0)", added, skipped)
	}

	added, skipped = store.Merge(batch)
	if added != 0 || skipped != 2 {
		t.Errorf("second merge = (%d, %d), want (0, 2)", added, skipped)
	}

	// A duplicate hiding inside a group is still a duplicate.
	store.Add(Timer{
		Name:      "gruppe",
		Collapsed: true,
		SubEntries: []Timer{
			{Name: "jobb", StartTime: localAt(2024, time.November, 27, 8, 0), EndTime: localAt(2024, time.November, 27, 12, 0)},
		},
	})
	added, skipped = store.Merge([]Timer{
		{Name: "jobb", StartTime: localAt(2024, time.November, 27, 8, 0), EndTime: localAt(2024, time.November, 27, 12, 0)},
	})
	if added != 0 || skipped != 1 {
		t.Errorf("nested duplicate merge = (%d, %d), want (0, 1)", added, skipped)
	}
}

func TestDelete(t *testing.T) {
	store := newTempStore(t)
	store.Load()
	store.Add(Timer{Name: "jobb", StartTime: localAt(2024, time.November, 25, 8, 0), EndTime: localAt(2024, time.November, 25, 16, 0)})

	if _, ok := store.Delete(5); ok {
		t.Errorf("deleting an unknown index must report false")
	}

	removed, ok := store.Delete(0)
	if !ok {
		t.Fatalf("expected the entry to be removed")
	}
	if removed.Name != "jobb" {
		t.Errorf("removed = %+v", removed)
	}
	if len(store.Entries()) != 0 {
		t.Errorf("entry list not empty after delete")
	}
}

func TestReloadSafeSuppression(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "timekeep.md"), 10*time.Second)
	store.Load()

	if !store.ReloadSafe(time.Now()) {
		t.Fatalf("a store that never saved must be safe to reload")
	}

	store.Start("jobb", time.Now())

	if store.ReloadSafe(time.Now()) {
		t.Errorf("reload right after a save must be suppressed")
	}
	if !store.ReloadSafe(time.Now().Add(11 * time.Second)) {
		t.Errorf("reload after the window must be allowed")
	}
}

func TestChangeNotification(t *testing.T) {
	store := newTempStore(t)
	store.Load()

	fired := 0
	store.OnChange(func() { fired++ })

	store.Start("jobb", time.Now())
	if fired != 1 {
		t.Errorf("fired = %d after start, want 1", fired)
	}

	store.StopActive(time.Now())
	if fired != 2 {
		t.Errorf("fired = %d after stop, want 2", fired)
	}

	// A no-op must not notify.
	store.StopActive(time.Now())
	if fired != 2 {
		t.Errorf("fired = %d after no-op stop, want 2", fired)
	}
}

func TestPersistKeepsSurroundingMarkdown(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "timekeep.md")
	seed := `# Min timeoversikt

Notater jeg vil beholde.

` + "```timekeep" + `
{"entries": []}
` + "```" + `

Handleliste: melk, brød.
`
	if err := os.WriteFile(path, []byte(seed), 0o644); err != nil {
		t.Fatal(err)
	}

	store := NewStore(path, 500*time.Millisecond)
	store.Load()
	store.Start("jobb", time.Date(2024, time.November, 25, 8, 0, 0, 0, time.Local))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)
	for _, want := range []string{"# Min timeoversikt", "Notater jeg vil beholde.", "Handleliste: melk, brød.", `"name": "jobb"`} {
		if !strings.Contains(content, want) {
			t.Errorf("note lost %q after save:\n%s", want, content)
		}
	}
}

func TestSettingsPersistence(t *testing.T) {
	store := newTempStore(t)
	store.Load()

	if !store.SetSettings([]byte(`{"baseWorkday": 8}`)) {
		t.Fatalf("SetSettings failed")
	}

	reloaded := NewStore(store.Path(), 500*time.Millisecond)
	reloaded.Load()
	if got := string(reloaded.SettingsRaw()); !strings.Contains(got, `"baseWorkday": 8`) {
		t.Errorf("settings did not survive the round trip: %s", got)
	}
}

func TestConvertPastPlannedDays(t *testing.T) {
	store := newTempStore(t)
	store.Load()

	today := time.Date(2025, time.June, 15, 10, 0, 0, 0, time.Local)
	cfg := config.Default()

	windowStart := time.Date(2025, time.June, 11, 12, 0, 0, 0, time.Local)
	windowEnd := time.Date(2025, time.June, 11, 15, 45, 0, 0, time.Local)

	cal := holiday.Calendar{Entries: []holiday.Entry{
		{Date: day(2025, time.June, 10), Type: "ferie"},
		{Date: day(2025, time.June, 12), Type: "avspasering", HalfDay: true},
		{Date: day(2025, time.June, 11), Type: "avspasering", Start: &windowStart, End: &windowEnd},
		{Date: day(2025, time.June, 13), Type: "helligdag"},
		{Date: day(2025, time.June, 20), Type: "ferie"},
		{Date: day(2025, time.June, 9), Type: "kurs"},
	}}

	converted := store.ConvertPastPlannedDays(cal, cfg, today)
	if got, want := converted, 3; got != want {
		t.Fatalf("converted = %d, want %d", got, want)
	}

	entries := store.Entries()
	if got, want := len(entries), 3; got != want {
		t.Fatalf("len(entries) = %d, want %d", got, want)
	}

	// Full-day absence becomes the zero-length placeholder.
	ferie := entries[0]
	if ferie.Name != "ferie" {
		t.Errorf("first converted entry = %+v", ferie)
	}
	if got, want := ferie.StartTime.String(), "2025-06-10T08:00:00"; got != want {
		t.Errorf("ferie start = %q, want %q", got, want)
	}
	if got, want := ferie.EndTime.String(), "2025-06-10T08:00:00"; got != want {
		t.Errorf("ferie end = %q, want %q", got, want)
	}

	// Half-day comp time gets half the daily goal as a real window.
	halv := entries[1]
	if got, want := halv.StartTime.String(), "2025-06-12T08:00:00"; got != want {
		t.Errorf("half-day start = %q, want %q", got, want)
	}
	if got, want := halv.EndTime.String(), "2025-06-12T11:45:00"; got != want {
		t.Errorf("half-day end = %q, want %q", got, want)
	}

	// An explicit window on the calendar line wins.
	eksplisitt := entries[2]
	if got, want := eksplisitt.StartTime.String(), "2025-06-11T12:00:00"; got != want {
		t.Errorf("explicit start = %q, want %q", got, want)
	}
	if got, want := eksplisitt.EndTime.String(), "2025-06-11T15:45:00"; got != want {
		t.Errorf("explicit end = %q, want %q", got, want)
	}

	// Converting again adds nothing.
	if again := store.ConvertPastPlannedDays(cal, cfg, today); again != 0 {
		t.Errorf("second conversion added %d entries", again)
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}
