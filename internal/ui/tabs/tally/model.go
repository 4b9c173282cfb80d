// Package tally provides the counting tab shared by every counter kind.
package tally

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/dhikr-tally/internal/app"
	"github.com/j-veylop/dhikr-tally/internal/counter"
	"github.com/j-veylop/dhikr-tally/internal/models"
	"github.com/j-veylop/dhikr-tally/internal/services"
	"github.com/j-veylop/dhikr-tally/internal/ui/components"
)

// keyMap defines the key bindings specific to a tally tab.
type keyMap struct {
	Tap        key.Binding
	NextPhrase key.Binding
	PrevPhrase key.Binding
	Reset      key.Binding
	EditTarget key.Binding
	Confirm    key.Binding
	Cancel     key.Binding
}

func defaultKeyMap(editable bool) keyMap {
	km := keyMap{
		Tap: key.NewBinding(
			key.WithKeys(" ", "enter"),
			key.WithHelp("space", "count"),
		),
		NextPhrase: key.NewBinding(
			key.WithKeys("right", "l", "down", "j"),
			key.WithHelp("→/l", "next phrase"),
		),
		PrevPhrase: key.NewBinding(
			key.WithKeys("left", "h", "up", "k"),
			key.WithHelp("←/h", "prev phrase"),
		),
		Reset: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reset session"),
		),
		EditTarget: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "set target"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "save"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
	km.EditTarget.SetEnabled(editable)
	return km
}

// Options configures a tally tab for one counter kind.
type Options struct {
	Kind models.Kind
	// Target is the session target. Zero means the session has no target.
	Target int
	// StopAtTarget refuses taps once the target is reached.
	StopAtTarget bool
	// EditableTarget lets the user change the target from the tab.
	EditableTarget bool
	// PerRound persists one count per completed session instead of one per
	// tap.
	PerRound bool
}

// OptionsFor returns the standard options for kind.
func OptionsFor(kind models.Kind, tasbeehTarget int) Options {
	switch kind {
	case models.KindTasbeeh:
		return Options{Kind: kind, Target: tasbeehTarget, EditableTarget: true}
	case models.KindDhikr:
		return Options{Kind: kind, Target: models.DhikrTarget, StopAtTarget: true, PerRound: true}
	default:
		return Options{Kind: kind}
	}
}

// Model represents a tally tab.
type Model struct {
	state        *app.State
	commands     *app.Commands
	catalogue    models.Catalogue
	session      *counter.Session
	opts         Options
	keys         keyMap
	spinner      components.LoadingSpinner
	viewport     viewport.Model
	bar          components.TargetBar
	targetInput  textinput.Model
	selected     int
	width        int
	height       int
	editing      bool
	showReminder bool
}

// New creates a tally tab.
func New(state *app.State, commands *app.Commands, catalogue models.Catalogue, opts Options) *Model {
	ti := textinput.New()
	ti.Placeholder = strconv.Itoa(max(opts.Target, models.DefaultTasbeehTarget))
	ti.CharLimit = 6
	ti.Width = 8
	ti.Validate = func(s string) error {
		if s == "" {
			return nil
		}
		_, err := strconv.Atoi(s)
		return err
	}

	return &Model{
		state:       state,
		commands:    commands,
		catalogue:   catalogue,
		session:     counter.NewSession(opts.Target, opts.StopAtTarget),
		opts:        opts,
		keys:        defaultKeyMap(opts.EditableTarget),
		spinner:     components.NewSpinner("Loading counts..."),
		viewport:    viewport.New(0, 0),
		bar:         components.NewTargetBar(30),
		targetInput: ti,
	}
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Init()
}

// Capturing reports whether the target field has the keyboard.
func (m *Model) Capturing() bool {
	return m.editing
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.editing {
			cmds = append(cmds, m.handleEditKey(msg))
		} else {
			cmds = append(cmds, m.handleKeyMsg(msg))
		}

	case app.CountChangedMsg:
		// Voice triggers count toward the open session as if tapped.
		if msg.Kind == m.opts.Kind && msg.Source == services.SourceVoice {
			cmds = append(cmds, m.tapSession())
		}

	case app.DayChangedMsg:
		m.resetSession()
		cmds = append(cmds, m.bar.Set(0, m.session.Target()))

	case components.AnimationTickMsg:
		var cmd tea.Cmd
		m.bar, cmd = m.bar.Update(msg)
		cmds = append(cmds, cmd)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	phrases := m.phrases()

	switch {
	case key.Matches(msg, m.keys.Tap):
		return m.tap()
	case key.Matches(msg, m.keys.NextPhrase):
		if len(phrases) > 0 {
			m.selectPhrase((m.selected + 1) % len(phrases))
		}
	case key.Matches(msg, m.keys.PrevPhrase):
		if len(phrases) > 0 {
			m.selectPhrase((m.selected - 1 + len(phrases)) % len(phrases))
		}
	case key.Matches(msg, m.keys.Reset):
		m.resetSession()
		return m.bar.Set(0, m.session.Target())
	case key.Matches(msg, m.keys.EditTarget):
		m.editing = true
		m.targetInput.SetValue("")
		return m.targetInput.Focus()
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) handleEditKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		m.editing = false
		m.targetInput.Blur()
		value := strings.TrimSpace(m.targetInput.Value())
		target, err := strconv.Atoi(value)
		if err != nil || target <= 0 {
			return m.commands.NotifyError("Target must be a positive number")
		}
		m.SetTarget(target)
		return tea.Batch(
			m.bar.Set(0, target),
			m.commands.NotifyInfo("Target set to "+value),
		)
	case key.Matches(msg, m.keys.Cancel):
		m.editing = false
		m.targetInput.Blur()
		return nil
	}

	var cmd tea.Cmd
	m.targetInput, cmd = m.targetInput.Update(msg)
	return cmd
}

// tap counts one user repetition: the session moves and the daily tally is
// persisted.
func (m *Model) tap() tea.Cmd {
	phrase, ok := m.currentPhrase()
	if !ok {
		return nil
	}

	before := m.session.Reached()
	cmd := m.tapSession()
	if cmd == nil {
		return m.commands.NotifyInfo("Session complete. Press r to start again")
	}

	m.commands.SetVoiceTarget(m.opts.Kind, phrase.ID)

	cmds := []tea.Cmd{cmd}
	switch {
	case !m.opts.PerRound:
		cmds = append(cmds, m.commands.Increment(m.opts.Kind, phrase.ID))
	case !before && m.session.Reached():
		cmds = append(cmds, m.commands.Increment(m.opts.Kind, phrase.ID))
	}
	return tea.Batch(cmds...)
}

// tapSession advances the session only. It returns nil when the session
// refused the tap.
func (m *Model) tapSession() tea.Cmd {
	accepted, reachedNow := m.session.Tap()
	if !accepted {
		return nil
	}

	cmds := []tea.Cmd{m.bar.Set(m.session.Count(), m.session.Target())}
	if reachedNow {
		phrase, _ := m.currentPhrase()
		if m.opts.Kind == models.KindDhikr && strings.EqualFold(phrase.ID, "Allahu akbar") {
			m.showReminder = true
		}
		cmds = append(cmds, m.commands.TargetReached(m.opts.Kind, phrase.Label, m.session.Target()))
	}
	return tea.Batch(cmds...)
}

func (m *Model) selectPhrase(i int) {
	if i == m.selected {
		return
	}
	m.selected = i
	m.resetSession()
	if phrase, ok := m.currentPhrase(); ok {
		m.commands.SetVoiceTarget(m.opts.Kind, phrase.ID)
	}
}

func (m *Model) resetSession() {
	m.session.Reset()
	m.showReminder = false
}

// SetTarget changes the session target and starts a new session.
func (m *Model) SetTarget(target int) {
	m.session.SetTarget(target)
	m.showReminder = false
}

// Session exposes the running session.
func (m *Model) Session() *counter.Session {
	return m.session
}

func (m *Model) phrases() []models.Phrase {
	return m.catalogue.Phrases(m.opts.Kind)
}

func (m *Model) currentPhrase() (models.Phrase, bool) {
	phrases := m.phrases()
	if m.selected < 0 || m.selected >= len(phrases) {
		return models.Phrase{}, false
	}
	return phrases[m.selected], true
}

// SetSize sets the available size for the tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	// DocStyle takes two columns of margin and one of padding per side.
	m.viewport.Width = max(width-6, 0)
	m.viewport.Height = height
	m.bar.SetWidth(min(max(width-30, 10), 50))
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	if m.editing {
		return []key.Binding{m.keys.Confirm, m.keys.Cancel}
	}
	return []key.Binding{m.keys.Tap, m.keys.NextPhrase, m.keys.Reset, m.keys.EditTarget}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Tap, m.keys.Reset},
		{m.keys.NextPhrase, m.keys.PrevPhrase},
		{m.keys.EditTarget},
	}
}
