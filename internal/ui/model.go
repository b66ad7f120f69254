// Package ui renders the dashboard: a Bubble Tea program with tabbed
// views over the balance engine's numbers. The model never mutates the
// store; it only snapshots it off the update loop.
package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/timeflowhq/timeflow/internal/balance"
	"github.com/timeflowhq/timeflow/internal/config"
	"github.com/timeflowhq/timeflow/internal/holiday"
	"github.com/timeflowhq/timeflow/internal/i18n"
	"github.com/timeflowhq/timeflow/internal/timekeep"
	"github.com/timeflowhq/timeflow/internal/timeutil"
)

// refreshEvery is the number of clock ticks between note re-reads.
// External edits show up within this window; our own saves are shielded
// by the store's reload guard.
const refreshEvery = 15

// Model owns Bubble Tea state for the dashboard.
type Model struct {
	ctx   context.Context
	store *timekeep.Store
	cfg   config.Settings
	app   config.App
	tr    i18n.Translator

	tab   tab
	month time.Time
	year  int
	now   time.Time

	entries []timekeep.FlatEntry
	active  timekeep.Timer
	running bool
	engine  *balance.Engine

	keys keyMap
	help help.Model
	spin spinner.Model

	width        int
	height       int
	loading      bool
	sinceRefresh int
}

type tab uint8

const (
	tabOverview tab = iota
	tabCalendar
	tabStats
	tabCount
)

type tickMsg time.Time

// dataMsg carries a fresh snapshot of the notes. Loading never fails
// loudly; a broken note arrives here as an empty snapshot.
type dataMsg struct {
	entries []timekeep.FlatEntry
	active  timekeep.Timer
	running bool
	engine  *balance.Engine
}

// NewModel seeds the dashboard model. Nothing is read until Init.
func NewModel(ctx context.Context, store *timekeep.Store, cfg config.Settings, app config.App, tr i18n.Translator) Model {
	now := time.Now()
	first, _ := timeutil.MonthRange(now)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		ctx:     ctx,
		store:   store,
		cfg:     cfg,
		app:     app,
		tr:      tr,
		tab:     tabOverview,
		month:   first,
		year:    now.Year(),
		now:     now,
		keys:    defaultKeyMap(tr),
		help:    help.New(),
		spin:    sp,
		loading: true,
	}
}

// Init starts the spinner, the clock and the first snapshot.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.tickCmd(), m.loadCmd(false))
}

// Update wires dashboard state transitions from input, the clock and
// async snapshots.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case tickMsg:
		return m.handleTick(msg)
	case dataMsg:
		m.loading = false
		m.entries = msg.entries
		m.active = msg.active
		m.running = msg.running
		m.engine = msg.engine
		return m, nil
	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	default:
		return m, nil
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.NextTab):
		m.tab = (m.tab + 1) % tabCount
	case key.Matches(msg, m.keys.PrevTab):
		m.tab = (m.tab + tabCount - 1) % tabCount
	case key.Matches(msg, m.keys.Left):
		m = m.shiftPeriod(-1)
	case key.Matches(msg, m.keys.Right):
		m = m.shiftPeriod(1)
	case key.Matches(msg, m.keys.Today):
		first, _ := timeutil.MonthRange(m.now)
		m.month = first
		m.year = m.now.Year()
	case key.Matches(msg, m.keys.Reload):
		m.loading = true
		return m, tea.Batch(m.spin.Tick, m.loadCmd(true))
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

// shiftPeriod moves the visible month or year. The overview always
// shows "now" and ignores navigation.
func (m Model) shiftPeriod(delta int) Model {
	switch m.tab {
	case tabCalendar:
		m.month = m.month.AddDate(0, delta, 0)
	case tabStats:
		m.year += delta
	}
	return m
}

func (m Model) handleTick(msg tickMsg) (tea.Model, tea.Cmd) {
	if m.ctx.Err() != nil {
		return m, tea.Quit
	}
	m.now = time.Time(msg)
	m.sinceRefresh++
	if m.sinceRefresh >= refreshEvery {
		m.sinceRefresh = 0
		return m, tea.Batch(m.tickCmd(), m.loadCmd(false))
	}
	return m, m.tickCmd()
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// loadCmd snapshots the notes off the update loop. force bypasses the
// reload guard, used for the first load and the explicit reload key;
// the periodic refresh leaves the guard on so it cannot race a save
// from a CLI invocation sharing the note.
func (m Model) loadCmd(force bool) tea.Cmd {
	store, cfg, app := m.store, m.cfg, m.app
	return func() tea.Msg {
		if force || store.ReloadSafe(time.Now()) {
			store.Load()
		}
		cal := holiday.Load(app.HolidayPath(), app.HolidaySection)
		active, running := store.Active()
		return dataMsg{
			entries: store.FlatEntries(),
			active:  active,
			running: running,
			engine:  balance.NewEngine(cfg, cal),
		}
	}
}

// keyMap declares the dashboard bindings. Left and Right share one
// help entry; Right stays out of the help lists.
type keyMap struct {
	NextTab key.Binding
	PrevTab key.Binding
	Left    key.Binding
	Right   key.Binding
	Today   key.Binding
	Reload  key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func defaultKeyMap(tr i18n.Translator) keyMap {
	return keyMap{
		NextTab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", tr.T("help.tab")),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/→", tr.T("help.navigate")),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
		),
		Today: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", tr.T("today.label")),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", tr.T("help.reload")),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", tr.T("help.more")),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", tr.T("help.quit")),
		),
	}
}

// ShortHelp is the single help line under the dashboard.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextTab, k.Left, k.Reload, k.Quit}
}

// FullHelp is the expanded listing behind the "?" toggle.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextTab, k.Left, k.Today},
		{k.Reload, k.Help, k.Quit},
	}
}
