package cli

import (
	"fmt"
	"testing"
	"time"

	"github.com/timeflowhq/timeflow/internal/timekeep"
	"github.com/timeflowhq/timeflow/internal/timeutil"
)

func addCompleted(t *testing.T, env *Env, name string, start, end time.Time) {
	t.Helper()
	s := timeutil.NewLocal(start)
	e := timeutil.NewLocal(end)
	env.Store.Add(timekeep.Timer{Name: name, StartTime: &s, EndTime: &e})
}

func TestBalanceCommand(t *testing.T) {
	env := newTestEnv(t)
	addCompleted(t, env, "jobb",
		time.Date(2024, 11, 25, 8, 0, 0, 0, time.Local),
		time.Date(2024, 11, 25, 16, 30, 0, 0, time.Local))

	out := executeCommand(t, newBalanceCommand(env), "--date", "2024-11-25")
	assertContains(t, out, "Balance as of 2024-11-25: +1h")
}

func TestBalanceCommandBeforeFirstEntry(t *testing.T) {
	env := newTestEnv(t)
	addCompleted(t, env, "jobb",
		time.Date(2024, 11, 25, 8, 0, 0, 0, time.Local),
		time.Date(2024, 11, 25, 16, 0, 0, 0, time.Local))

	out := executeCommand(t, newBalanceCommand(env), "--date", "2024-11-20")
	assertContains(t, out, "Balance as of 2024-11-20: 0h")
}

func TestListCommand(t *testing.T) {
	env := newTestEnv(t)

	out := executeCommand(t, newListCommand(env))
	assertContains(t, out, "(no entries)")

	addCompleted(t, env, "jobb",
		time.Date(2024, 11, 25, 8, 0, 0, 0, time.Local),
		time.Date(2024, 11, 25, 16, 0, 0, 0, time.Local))
	addCompleted(t, env, "kurs",
		time.Date(2024, 11, 26, 9, 0, 0, 0, time.Local),
		time.Date(2024, 11, 26, 11, 0, 0, 0, time.Local))

	out = executeCommand(t, newListCommand(env))
	assertContains(t, out, "1. jobb 2024-11-25 08:00-16:00 8h")
	assertContains(t, out, "2. kurs 2024-11-26 09:00-11:00 2h")
}

func TestListCommandWeekFilter(t *testing.T) {
	env := newTestEnv(t)
	addCompleted(t, env, "jobb",
		time.Date(2024, 11, 25, 8, 0, 0, 0, time.Local),
		time.Date(2024, 11, 25, 16, 0, 0, 0, time.Local))

	out := executeCommand(t, newListCommand(env), "--week")
	assertContains(t, out, "(no entries)")
}

func TestReportCommandWeek(t *testing.T) {
	env := newTestEnv(t)

	out := executeCommand(t, newReportCommand(env))
	assertContains(t, out, "Worked: ")
	assertContains(t, out, "Goal: ")
	assertContains(t, out, "Balance: ")
}

func TestReportCommandYear(t *testing.T) {
	env := newTestEnv(t)

	out := executeCommand(t, newReportCommand(env), "--year")
	assertContains(t, out, fmt.Sprintf("%d (", time.Now().Year()))
}
