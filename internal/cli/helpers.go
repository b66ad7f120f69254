package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/timeflowhq/timeflow/internal/balance"
	"github.com/timeflowhq/timeflow/internal/i18n"
	"github.com/timeflowhq/timeflow/internal/timekeep"
	"github.com/timeflowhq/timeflow/internal/timeutil"
)

func resolveDate(dateFlag string) (time.Time, error) {
	if dateFlag == "" {
		return timeutil.StartOfDay(time.Now()), nil
	}

	parsed, err := timeutil.ParseDateLiteral(dateFlag)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date: %w", err)
	}
	return timeutil.StartOfDay(parsed), nil
}

func resolveClock(date time.Time, value string) (time.Time, error) {
	h, m, err := timeutil.ParseClockLiteral(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time: %w", err)
	}
	return timeutil.At(date, h, m), nil
}

func formatTimer(t timekeep.Timer) string {
	builder := strings.Builder{}
	builder.Grow(32 + len(t.Name))

	builder.WriteString(t.Name)
	if t.StartTime == nil {
		return builder.String()
	}

	builder.WriteString(" ")
	builder.WriteString(t.StartTime.Format("2006-01-02 15:04"))
	if t.EndTime == nil {
		builder.WriteString(" (running)")
		return builder.String()
	}

	builder.WriteString("-")
	builder.WriteString(t.EndTime.Format("15:04"))
	if !timeutil.SameDay(t.StartTime.Time, t.EndTime.Time) {
		builder.WriteString("+")
	}
	builder.WriteString(" ")
	builder.WriteString(timeutil.FormatHours(timeutil.HoursBetween(t.StartTime.Time, t.EndTime.Time)))

	return builder.String()
}

func printPeriodStats(cmd *cobra.Command, tr i18n.Translator, stats balance.PeriodStats) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "%s (%s to %s)\n", stats.Label,
		stats.From.Format(timeutil.DayLayout),
		stats.To.AddDate(0, 0, -1).Format(timeutil.DayLayout))
	fmt.Fprintf(out, "  %s: %s / %s: %s\n",
		tr.T("worked.label"), timeutil.FormatHours(stats.ActualHours),
		tr.T("goal.label"), timeutil.FormatHours(stats.GoalHours))
	fmt.Fprintf(out, "  %s: %s\n", tr.T("balance.label"), timeutil.FormatSignedHours(stats.Delta))
	if stats.WeekendHours > 0 {
		fmt.Fprintf(out, "  %s: %s\n", tr.T("weekend.label"), timeutil.FormatHours(stats.WeekendHours))
	}

	for _, ts := range stats.ByType {
		line := fmt.Sprintf("  %s %s: %d", ts.Icon, ts.Label, ts.Days)
		if ts.MaxDays != nil {
			line += fmt.Sprintf("/%d", *ts.MaxDays)
		}
		line += fmt.Sprintf(" (%s)", timeutil.FormatHours(ts.Hours))
		if ts.Over {
			line += " " + tr.T("vacation.over")
		}
		fmt.Fprintln(out, line)
	}
}
