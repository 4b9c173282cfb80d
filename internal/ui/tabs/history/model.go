// Package history provides the history tab for viewing per-counter summaries.
package history

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/dhikr-tally/internal/app"
	"github.com/j-veylop/dhikr-tally/internal/models"
)

// keyMap defines the key bindings specific to the history tab.
type keyMap struct {
	NextKind    key.Binding
	PrevKind    key.Binding
	ToggleRange key.Binding
	Refresh     key.Binding
	Up          key.Binding
	Down        key.Binding
}

// defaultKeyMap returns the default key bindings for the history tab.
func defaultKeyMap() keyMap {
	return keyMap{
		NextKind: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next counter"),
		),
		PrevKind: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "prev counter"),
		),
		ToggleRange: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "toggle time range"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
	}
}

// Model represents the history tab state.
type Model struct {
	state    *app.State
	width    int
	height   int
	keys     keyMap
	viewport viewport.Model

	// Current view state
	kindIndex int
	timeRange models.TimeRange
	loading   bool
}

// New creates a new history model showing days of history by default.
func New(state *app.State, days int) *Model {
	return &Model{
		state:     state,
		keys:      defaultKeyMap(),
		viewport:  viewport.New(0, 0),
		timeRange: models.TimeRangeFor(days),
	}
}

// Init initializes the history tab.
func (m *Model) Init() tea.Cmd {
	return m.load()
}

// Kind returns the counter whose history is shown.
func (m *Model) Kind() models.Kind {
	return models.Kinds[m.kindIndex]
}

// TimeRange returns the selected window.
func (m *Model) TimeRange() models.TimeRange {
	return m.timeRange
}

// load asks the app to aggregate the selected counter and window.
func (m *Model) load() tea.Cmd {
	m.loading = true
	kind, days := m.Kind(), m.timeRange.Days()
	return func() tea.Msg {
		return app.LoadSummaryMsg{Kind: kind, Days: days}
	}
}

// Update handles messages for the history tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case app.SummaryLoadedMsg:
		if m.matches(msg.Summary) {
			m.loading = false
		}

	case app.CountChangedMsg:
		if msg.Kind == m.Kind() {
			return m, m.reload()
		}

	case app.DayChangedMsg, app.CountsLoadedMsg:
		return m, m.reload()

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	return m, nil
}

// reload refreshes the summary in place, keeping the current one on screen.
func (m *Model) reload() tea.Cmd {
	kind, days := m.Kind(), m.timeRange.Days()
	return func() tea.Msg {
		return app.LoadSummaryMsg{Kind: kind, Days: days}
	}
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (app.Tab, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.NextKind):
		m.kindIndex = (m.kindIndex + 1) % len(models.Kinds)
		return m, m.load()

	case key.Matches(msg, m.keys.PrevKind):
		m.kindIndex = (m.kindIndex - 1 + len(models.Kinds)) % len(models.Kinds)
		return m, m.load()

	case key.Matches(msg, m.keys.ToggleRange):
		m.timeRange = m.timeRange.Next()
		return m, m.load()

	case key.Matches(msg, m.keys.Refresh):
		return m, m.load()
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// summary returns the cached summary for the current selection.
func (m *Model) summary() (models.Summary, bool) {
	s, ok := m.state.Summary(m.Kind())
	if !ok || !m.matches(s) {
		return models.Summary{}, false
	}
	return s, true
}

func (m *Model) matches(s models.Summary) bool {
	return s.Kind == m.Kind() && len(s.Days) == m.timeRange.Days()
}

// SetSize sets the available size for the history tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = max(width-6, 0)
	m.viewport.Height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.NextKind,
		m.keys.ToggleRange,
		m.keys.Refresh,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.NextKind, m.keys.PrevKind},
		{m.keys.ToggleRange, m.keys.Refresh},
		{m.keys.Up, m.keys.Down},
	}
}
