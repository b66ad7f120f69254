package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/timeflowhq/timeflow/internal/timekeep"
	"github.com/timeflowhq/timeflow/internal/timeutil"
)

const (
	cellWidth = 5
	barWidth  = 16
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#1565C0")).
			Padding(0, 1)

	tabStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Foreground(lipgloss.Color("#626262"))

	activeTabStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Bold(true).
			Underline(true).
			Foreground(lipgloss.Color("#FAFAFA"))

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#1565C0")).
			Padding(0, 2).
			MarginRight(1)

	cardTitleStyle = lipgloss.NewStyle().Bold(true)

	positiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	negativeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F7DC6F")).Bold(true)
	progressStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
	todayStyle    = lipgloss.NewStyle().Bold(true).Reverse(true)
)

// View renders the frame.
func (m Model) View() string {
	if m.loading || m.engine == nil {
		return fmt.Sprintf("\n  %s %s\n", m.spin.View(), m.tr.T("dashboard.loading"))
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("timeflow  " + m.now.Format("Mon 2 Jan 15:04:05")))
	b.WriteString("\n")
	b.WriteString(m.tabBar())
	b.WriteString("\n\n")

	switch m.tab {
	case tabCalendar:
		b.WriteString(m.calendarView())
	case tabStats:
		b.WriteString(m.statsView())
	default:
		b.WriteString(m.overviewView())
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n")
	return b.String()
}

func (m Model) tabBar() string {
	labels := []string{m.tr.T("tab.overview"), m.tr.T("tab.calendar"), m.tr.T("tab.stats")}
	parts := make([]string, len(labels))
	for i, label := range labels {
		style := tabStyle
		if tab(i) == m.tab {
			style = activeTabStyle
		}
		parts[i] = style.Render(label)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

// overviewView lays the cards out side by side, falling back to a
// vertical stack when the terminal is too narrow.
func (m Model) overviewView() string {
	cards := []string{m.todayCard(), m.balanceCard()}
	if allowances := m.allowanceCard(); allowances != "" {
		cards = append(cards, allowances)
	}

	joined := lipgloss.JoinHorizontal(lipgloss.Top, cards...)
	if m.width > 0 && lipgloss.Width(joined) > m.width {
		return lipgloss.JoinVertical(lipgloss.Left, cards...)
	}
	return joined
}

// todayCard shows progress toward today's goal. A running timer counts
// into the bar even though the balance ignores it until it stops.
func (m Model) todayCard() string {
	today := timeutil.StartOfDay(m.now)
	day := m.engine.Days(m.entries, today, today)[0]

	actual := day.Actual
	if m.running && m.active.StartTime != nil && timeutil.SameDay(m.active.StartTime.Time, today) {
		actual += m.now.Sub(m.active.StartTime.Time).Hours()
	}

	var b strings.Builder
	b.WriteString(cardTitleStyle.Render(m.tr.T("today.label")))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s: %s / %s\n",
		m.tr.T("worked.label"),
		timeutil.FormatHours(actual),
		timeutil.FormatHours(day.Goal))
	b.WriteString(progressBar(progressFraction(actual, day.Goal), barWidth))
	b.WriteString("\n")

	if m.running && m.active.StartTime != nil {
		elapsed := m.now.Sub(m.active.StartTime.Time).Hours()
		b.WriteString(m.tr.Tf("timer.running",
			m.active.Name, m.active.StartTime.Format("15:04"), timeutil.FormatHours(elapsed)))
	} else {
		b.WriteString(mutedStyle.Render(m.tr.T("timer.none")))
	}
	return cardStyle.Render(b.String())
}

func (m Model) balanceCard() string {
	bal := m.engine.Balance(m.entries, m.now)
	week := m.engine.WeekStats(m.entries, m.now)
	month := m.engine.MonthStats(m.entries, m.now)

	var b strings.Builder
	b.WriteString(cardTitleStyle.Render(m.tr.T("balance.label")))
	b.WriteString("\n")
	b.WriteString(m.balanceStyle(bal).Render(timeutil.FormatSignedHours(bal)))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s: %s\n", m.tr.T("week.label"), timeutil.FormatSignedHours(week.Delta))
	fmt.Fprintf(&b, "%s: %s", m.tr.T("month.label"), timeutil.FormatSignedHours(month.Delta))
	return cardStyle.Render(b.String())
}

// allowanceCard lists the behaviors carrying a yearly day cap, such as
// vacation. Empty when nothing capped was used this year.
func (m Model) allowanceCard() string {
	stats := m.engine.YearStats(m.entries, m.now)

	var lines []string
	for _, ts := range stats.ByType {
		if ts.MaxDays == nil {
			continue
		}
		line := fmt.Sprintf("%s %s: %d / %d", ts.Icon, ts.Label, ts.Days, *ts.MaxDays)
		if ts.Over {
			line += " " + warnStyle.Render(m.tr.T("vacation.over"))
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return ""
	}

	body := cardTitleStyle.Render(m.tr.T("vacation.used")) + "\n" + strings.Join(lines, "\n")
	return cardStyle.Render(body)
}

// balanceStyle picks the color for the running balance: red below the
// low threshold, warning above the high one, green in between.
func (m Model) balanceStyle(v float64) lipgloss.Style {
	th := m.engine.Thresholds()
	switch {
	case v < th.Low:
		return negativeStyle
	case v > th.High:
		return warnStyle
	default:
		return positiveStyle
	}
}

func (m Model) calendarView() string {
	first, end := timeutil.MonthRange(m.month)
	weekStart, _ := timeutil.WeekRange(first)
	worked := workedDays(m.entries)

	var b strings.Builder
	b.WriteString(cardTitleStyle.Render(m.month.Format("January 2006")))
	b.WriteString("\n")
	for _, wd := range strings.Fields(m.tr.T("calendar.weekdays")) {
		b.WriteString(mutedStyle.Width(cellWidth).Render(wd))
	}
	b.WriteString("\n")

	for row := weekStart; row.Before(end); row = row.AddDate(0, 0, 7) {
		for i := 0; i < 7; i++ {
			b.WriteString(m.calendarCell(row.AddDate(0, 0, i), first, end, worked))
		}
		b.WriteString("\n")
	}

	if listing := m.monthHolidayLines(first, end); listing != "" {
		b.WriteString("\n")
		b.WriteString(listing)
	}
	return b.String()
}

// calendarCell renders one day of the grid: blank outside the month,
// reverse video on today, muted on weekends, bold on days with logged
// entries, with the behavior icon appended on planned days.
func (m Model) calendarCell(day, first, end time.Time, worked map[string]bool) string {
	if day.Before(first) || !day.Before(end) {
		return strings.Repeat(" ", cellWidth)
	}

	text := fmt.Sprintf("%2d", day.Day())
	if icon := m.holidayIcon(day); icon != "" {
		text += icon
	}

	style := lipgloss.NewStyle()
	switch {
	case timeutil.SameDay(day, m.now):
		style = todayStyle
	case day.Weekday() == time.Saturday || day.Weekday() == time.Sunday:
		style = mutedStyle
	case worked[day.Format(timeutil.DayLayout)]:
		style = style.Bold(true)
	}
	return style.Width(cellWidth).Render(text)
}

func (m Model) holidayIcon(day time.Time) string {
	for _, h := range m.engine.HolidayEntries(day) {
		if b := m.cfg.BehaviorFor(h.Type); b != nil && b.Icon != "" {
			return b.Icon
		}
		return "•"
	}
	return ""
}

// monthHolidayLines lists the planned days of the visible month under
// the grid, in date order.
func (m Model) monthHolidayLines(first, end time.Time) string {
	var b strings.Builder
	for day := first; day.Before(end); day = day.AddDate(0, 0, 1) {
		for _, h := range m.engine.HolidayEntries(day) {
			label := h.Type
			if bh := m.cfg.BehaviorFor(h.Type); bh != nil {
				label = bh.Icon + " " + bh.DisplayLabel()
			}
			fmt.Fprintf(&b, "%s  %s", h.Date.Format(timeutil.DayLayout), label)
			if h.Description != "" {
				b.WriteString("  " + mutedStyle.Render(h.Description))
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m Model) statsView() string {
	stats := m.engine.YearStats(m.entries, m.statsRef())

	var b strings.Builder
	b.WriteString(cardTitleStyle.Render(stats.Label))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s: %s / %s: %s\n",
		m.tr.T("worked.label"), timeutil.FormatHours(stats.ActualHours),
		m.tr.T("goal.label"), timeutil.FormatHours(stats.GoalHours))

	deltaStyle := positiveStyle
	if stats.Delta < 0 {
		deltaStyle = negativeStyle
	}
	fmt.Fprintf(&b, "%s: %s\n", m.tr.T("balance.label"), deltaStyle.Render(timeutil.FormatSignedHours(stats.Delta)))
	if stats.WeekendHours > 0 {
		fmt.Fprintf(&b, "%s: %s\n", m.tr.T("weekend.label"), timeutil.FormatHours(stats.WeekendHours))
	}

	if len(stats.ByType) > 0 {
		b.WriteString("\n")
		for _, ts := range stats.ByType {
			line := fmt.Sprintf("%s %s: %d", ts.Icon, ts.Label, ts.Days)
			if ts.MaxDays != nil {
				line = fmt.Sprintf("%s / %d", line, *ts.MaxDays)
			}
			line = fmt.Sprintf("%s (%s)", line, timeutil.FormatHours(ts.Hours))
			if ts.Over {
				line += " " + warnStyle.Render(m.tr.T("vacation.over"))
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(m.monthRows())
	return b.String()
}

// statsRef anchors the yearly delta cutoff: now for the running year,
// the year's last day for past years, its first for future ones.
func (m Model) statsRef() time.Time {
	switch {
	case m.year == m.now.Year():
		return m.now
	case m.year < m.now.Year():
		return time.Date(m.year, 12, 31, 0, 0, 0, 0, time.Local)
	default:
		return time.Date(m.year, 1, 1, 0, 0, 0, 0, time.Local)
	}
}

// monthRows renders one goal-progress line per month of the visible
// year, stopping at the current month while the year is still running.
func (m Model) monthRows() string {
	last := 12
	switch {
	case m.year == m.now.Year():
		last = int(m.now.Month())
	case m.year > m.now.Year():
		last = 0
	}

	var b strings.Builder
	for mo := 1; mo <= last; mo++ {
		ref := time.Date(m.year, time.Month(mo), 1, 0, 0, 0, 0, time.Local)
		stats := m.engine.MonthStats(m.entries, ref)
		fmt.Fprintf(&b, "%s %s %s / %s\n",
			ref.Format("Jan"),
			progressBar(progressFraction(stats.ActualHours, stats.GoalHours), barWidth),
			timeutil.FormatHours(stats.ActualHours),
			timeutil.FormatHours(stats.GoalHours))
	}
	return b.String()
}

func workedDays(entries []timekeep.FlatEntry) map[string]bool {
	worked := make(map[string]bool, len(entries))
	for _, e := range entries {
		worked[e.Start.Format(timeutil.DayLayout)] = true
	}
	return worked
}

// progressBar renders fraction as a fixed-width block bar.
func progressBar(fraction float64, width int) string {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	filled := int(fraction*float64(width) + 0.5)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return progressStyle.Render(bar)
}

func progressFraction(actual, goal float64) float64 {
	if goal <= 0 {
		if actual > 0 {
			return 1
		}
		return 0
	}
	return actual / goal
}
