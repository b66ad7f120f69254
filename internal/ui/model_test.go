package ui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/timeflowhq/timeflow/internal/config"
	"github.com/timeflowhq/timeflow/internal/holiday"
	"github.com/timeflowhq/timeflow/internal/i18n"
	"github.com/timeflowhq/timeflow/internal/timekeep"
	"github.com/timeflowhq/timeflow/internal/timeutil"
)

// testNow pins the dashboard clock to a Monday so goal math and view
// headers stay stable no matter when the tests run.
var testNow = time.Date(2024, time.November, 25, 12, 0, 0, 0, time.Local)

func newTestModel(t *testing.T) (Model, *timekeep.Store, config.App) {
	t.Helper()
	app := config.DefaultApp(t.TempDir())
	store := timekeep.NewStore(app.TimekeepPath(), app.ReloadWindow())
	store.Load()
	m := NewModel(context.Background(), store, config.Default(), app, i18n.New("en"))
	return m, store, app
}

// loadNow runs the snapshot command synchronously and applies its
// message, the way the Bubble Tea runtime would.
func loadNow(t *testing.T, m Model) Model {
	t.Helper()
	updated, _ := m.Update(m.loadCmd(true)())
	return updated.(Model)
}

func pinClock(m Model) Model {
	m.now = testNow
	first, _ := timeutil.MonthRange(testNow)
	m.month = first
	m.year = testNow.Year()
	return m
}

func keyPress(k string) tea.KeyMsg {
	switch k {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

func press(t *testing.T, m Model, k string) Model {
	t.Helper()
	updated, _ := m.Update(keyPress(k))
	return updated.(Model)
}

func completed(name string, start, end time.Time) timekeep.Timer {
	s := timeutil.NewLocal(start)
	e := timeutil.NewLocal(end)
	return timekeep.Timer{Name: name, StartTime: &s, EndTime: &e}
}

func assertView(t *testing.T, view string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestNewModelStartsLoading(t *testing.T) {
	m, _, _ := newTestModel(t)
	if !strings.Contains(m.View(), "Loading notes") {
		t.Fatalf("expected loading view, got:\n%s", m.View())
	}
}

func TestOverviewCards(t *testing.T) {
	m, store, _ := newTestModel(t)
	store.Add(completed("jobb", timeutil.At(testNow, 8, 0), timeutil.At(testNow, 16, 30)))

	m = pinClock(loadNow(t, m))
	view := m.View()

	assertView(t, view,
		"Overview", "Calendar", "Statistics",
		"Today", "Worked: 8h 30m / 7h 30m",
		"Flextime balance", "+1h",
		"This week", "This month",
		"No timer is running",
	)
}

func TestOverviewShowsRunningTimer(t *testing.T) {
	m, store, _ := newTestModel(t)
	store.Start("jobb", time.Now().Add(-30*time.Minute))

	m = loadNow(t, m)
	assertView(t, m.View(), "jobb running since")
}

func TestOverviewAllowances(t *testing.T) {
	m, store, _ := newTestModel(t)
	day1 := testNow.AddDate(0, 0, -7)
	day2 := testNow.AddDate(0, 0, -6)
	store.Add(completed("ferie", timeutil.At(day1, 8, 0), timeutil.At(day1, 8, 0)))
	store.Add(completed("ferie", timeutil.At(day2, 8, 0), timeutil.At(day2, 8, 0)))

	m = pinClock(loadNow(t, m))
	assertView(t, m.View(), "Vacation days used", "🏖 Ferie: 2 / 25")
}

func TestTabKeyCyclesViews(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = pinClock(loadNow(t, m))

	m = press(t, m, "tab")
	assertView(t, m.View(), "November 2024", "Tu")

	m = press(t, m, "tab")
	assertView(t, m.View(), "2024", "Oct")

	m = press(t, m, "tab")
	assertView(t, m.View(), "Flextime balance")

	m = press(t, m, "shift+tab")
	assertView(t, m.View(), "Oct")
}

func TestCalendarMonthNavigation(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = pinClock(loadNow(t, m))
	m = press(t, m, "tab")

	m = press(t, m, "left")
	assertView(t, m.View(), "October 2024")

	m = press(t, m, "t")
	assertView(t, m.View(), "November 2024")

	m = press(t, m, "right")
	assertView(t, m.View(), "December 2024")
}

func TestCalendarShowsPlannedDays(t *testing.T) {
	m, _, app := newTestModel(t)
	err := holiday.Append(app.HolidayPath(), app.HolidaySection, holiday.Entry{
		Date: time.Date(2024, time.November, 28, 0, 0, 0, 0, time.Local),
		Type: "ferie",
	})
	if err != nil {
		t.Fatalf("append holiday: %v", err)
	}

	m = pinClock(loadNow(t, m))
	m = press(t, m, "tab")

	assertView(t, m.View(), "28🏖", "2024-11-28  🏖 Ferie")
}

func TestStatsYearNavigation(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = pinClock(loadNow(t, m))
	m = press(t, m, "tab")
	m = press(t, m, "tab")

	m = press(t, m, "right")
	view := m.View()
	assertView(t, view, "2025")
	if strings.Contains(view, "Jan █") || strings.Contains(view, "Jan ░") {
		t.Errorf("future year should have no month rows:\n%s", view)
	}

	m = press(t, m, "left")
	m = press(t, m, "left")
	assertView(t, m.View(), "2023", "Dec")
}

func TestQuitKey(t *testing.T) {
	m, _, _ := newTestModel(t)
	_, cmd := m.Update(keyPress("q"))
	if cmd == nil {
		t.Fatal("expected a command from q")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected quit message")
	}
}

func TestReloadKeyShowsSpinner(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = loadNow(t, m)

	updated, cmd := m.Update(keyPress("r"))
	m = updated.(Model)
	if cmd == nil {
		t.Fatal("expected reload command")
	}
	if !strings.Contains(m.View(), "Loading notes") {
		t.Fatalf("expected loading view after reload, got:\n%s", m.View())
	}
}

func TestTickAdvancesClockAndSchedulesRefresh(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = pinClock(loadNow(t, m))

	for i := 1; i <= refreshEvery; i++ {
		updated, cmd := m.Update(tickMsg(testNow.Add(time.Duration(i) * time.Second)))
		m = updated.(Model)
		if cmd == nil {
			t.Fatalf("tick %d returned no follow-up command", i)
		}
	}
	if m.sinceRefresh != 0 {
		t.Fatalf("sinceRefresh = %d, want 0 after %d ticks", m.sinceRefresh, refreshEvery)
	}
	if !m.now.Equal(testNow.Add(time.Duration(refreshEvery) * time.Second)) {
		t.Fatalf("clock not advanced, now = %v", m.now)
	}
}

func TestCancelledContextQuitsOnTick(t *testing.T) {
	app := config.DefaultApp(t.TempDir())
	store := timekeep.NewStore(app.TimekeepPath(), app.ReloadWindow())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := NewModel(ctx, store, config.Default(), app, i18n.New("en"))
	_, cmd := m.Update(tickMsg(time.Now()))
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected quit after context cancellation")
	}
}

func TestNorwegianLabels(t *testing.T) {
	app := config.DefaultApp(t.TempDir())
	store := timekeep.NewStore(app.TimekeepPath(), app.ReloadWindow())
	store.Load()

	m := NewModel(context.Background(), store, config.Default(), app, i18n.New("nb"))
	m = pinClock(loadNow(t, m))

	assertView(t, m.View(), "Oversikt", "Kalender", "Fleksitidsaldo", "I dag")
}
