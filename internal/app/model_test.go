package app

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/dhikr-tally/internal/counter"
	"github.com/j-veylop/dhikr-tally/internal/models"
	"github.com/j-veylop/dhikr-tally/internal/services"
)

// recordingTab remembers the messages it receives.
type recordingTab struct {
	msgs      []tea.Msg
	capturing bool
}

func (r *recordingTab) Init() tea.Cmd { return nil }
func (r *recordingTab) Update(msg tea.Msg) (Tab, tea.Cmd) {
	r.msgs = append(r.msgs, msg)
	return r, nil
}
func (r *recordingTab) View() string              { return "recording tab" }
func (r *recordingTab) SetSize(int, int)          {}
func (r *recordingTab) ShortHelp() []key.Binding  { return nil }
func (r *recordingTab) FullHelp() [][]key.Binding { return nil }
func (r *recordingTab) Capturing() bool           { return r.capturing }

func (r *recordingTab) received(match func(tea.Msg) bool) bool {
	for _, m := range r.msgs {
		if match(m) {
			return true
		}
	}
	return false
}

func newRecordingTabs(m *Model) []*recordingTab {
	tabs := make([]*recordingTab, len(m.tabNames))
	appTabs := make([]Tab, len(m.tabNames))
	for i := range tabs {
		tabs[i] = &recordingTab{}
		appTabs[i] = tabs[i]
	}
	m.SetTabs(appTabs)
	return tabs
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestNewModel(t *testing.T) {
	model := NewModel(nil)
	if model == nil {
		t.Fatal("NewModel returned nil")
	}
	if model.state == nil {
		t.Error("State should be initialized")
	}
	if model.GetActiveTab() != TabTasbeeh {
		t.Error("Default tab should be Tasbeeh")
	}
	if len(model.tabs) != 6 {
		t.Errorf("Should have 6 tabs placeholder, got %d", len(model.tabs))
	}
}

func TestModel_Init(t *testing.T) {
	model := NewModel(nil)
	if model.Init() == nil {
		t.Error("Init returned nil command")
	}
	if len(model.state.GetNotifications()) != 1 {
		t.Error("Init should show the loading notification")
	}
}

func TestModel_Update_WindowSize(t *testing.T) {
	model := NewModel(nil)
	newModel, _ := model.Update(tea.WindowSizeMsg{Width: 100, Height: 50})

	m, ok := newModel.(*Model)
	if !ok {
		t.Fatal("Update returned wrong model type")
	}
	if m.width != 100 || m.height != 50 {
		t.Errorf("Size = %dx%d, want 100x50", m.width, m.height)
	}
	if !m.IsReady() {
		t.Error("Model should be ready after WindowSizeMsg")
	}
}

func TestModel_TabKeys(t *testing.T) {
	model := NewModel(nil)
	newRecordingTabs(model)

	model.Update(runeKey('5'))
	if model.activeTab != TabHistory {
		t.Errorf("ActiveTab = %v, want History", model.activeTab)
	}

	model.Update(tea.KeyMsg{Type: tea.KeyTab})
	if model.activeTab != TabInfo {
		t.Errorf("ActiveTab = %v, want Info", model.activeTab)
	}

	model.Update(tea.KeyMsg{Type: tea.KeyTab})
	if model.activeTab != TabTasbeeh {
		t.Errorf("Tab should wrap to Tasbeeh, got %v", model.activeTab)
	}

	model.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	if model.activeTab != TabInfo {
		t.Errorf("Shift+Tab should wrap to Info, got %v", model.activeTab)
	}

	model.Update(TabSwitchMsg{Tab: TabDurood})
	if model.activeTab != TabDurood {
		t.Errorf("ActiveTab = %v, want Durood", model.activeTab)
	}

	model.Update(TabSwitchMsg{Tab: TabID(42)})
	if model.activeTab != TabDurood {
		t.Error("Out of range tab should be ignored")
	}
}

func TestModel_CapturingTabGetsKeys(t *testing.T) {
	model := NewModel(nil)
	tabs := newRecordingTabs(model)
	tabs[TabTasbeeh].capturing = true

	model.Update(runeKey('3'))
	if model.activeTab != TabTasbeeh {
		t.Error("Digits should go to the capturing tab")
	}
	if !tabs[TabTasbeeh].received(func(m tea.Msg) bool { _, ok := m.(tea.KeyMsg); return ok }) {
		t.Error("Capturing tab should receive the key")
	}

	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("Ctrl+C should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Ctrl+C should quit even while capturing")
	}
}

func TestModel_GlobalKeysNotForwarded(t *testing.T) {
	model := NewModel(nil)
	tabs := newRecordingTabs(model)

	model.Update(runeKey('2'))
	for _, m := range tabs[TabTasbeeh].msgs {
		if _, ok := m.(tea.KeyMsg); ok {
			t.Error("Tab switch key should not reach the tab")
		}
	}

	model.Update(runeKey(' '))
	if !tabs[TabDhikr].received(func(m tea.Msg) bool { _, ok := m.(tea.KeyMsg); return ok }) {
		t.Error("Other keys should reach the active tab")
	}
}

func TestModel_SharedMessagesReachAllTabs(t *testing.T) {
	model := NewModel(nil)
	tabs := newRecordingTabs(model)

	model.Update(CountChangedMsg{Kind: models.KindDurood, Record: counter.DayRecord{Total: 1}})
	for i, tab := range tabs {
		if !tab.received(func(m tea.Msg) bool { _, ok := m.(CountChangedMsg); return ok }) {
			t.Errorf("Tab %d did not receive CountChangedMsg", i)
		}
	}

	model.Update(TickMsg{Time: time.Now()})
	if tabs[TabDhikr].received(func(m tea.Msg) bool { _, ok := m.(TickMsg); return ok }) {
		t.Error("Inactive tab should not receive TickMsg")
	}
}

func TestModel_Update_Tick(t *testing.T) {
	model := NewModel(nil)
	_, cmd := model.Update(TickMsg{Time: time.Now()})
	if cmd == nil {
		t.Error("TickMsg should return a command (next tick)")
	}
}

func TestModel_DayRollover(t *testing.T) {
	mgr, clock := newTestManager(t)
	model := NewModel(mgr)

	cmds := model.handleTick()
	if len(cmds) != 1 {
		t.Fatalf("Same day tick should only reschedule, got %d cmds", len(cmds))
	}

	clock.Advance(1)
	cmds = model.handleTick()
	if len(cmds) != 3 {
		t.Fatalf("Rollover should reload counts, got %d cmds", len(cmds))
	}
	msg, ok := cmds[2]().(DayChangedMsg)
	if !ok || msg.Date != testDay.AddDays(1) {
		t.Errorf("DayChangedMsg = %#v", msg)
	}
	if model.lastDate != testDay.AddDays(1) {
		t.Error("lastDate should advance")
	}
}

func TestModel_CountsLoaded(t *testing.T) {
	model := NewModel(nil)
	model.Init()

	model.Update(CountsLoadedMsg{Counts: map[models.Kind]DayCounts{
		models.KindDhikr: {Today: counter.DayRecord{Total: 33}},
	}})

	if model.state.IsInitialLoading() {
		t.Error("Initial loading should be false")
	}
	if model.state.Counts(models.KindDhikr).Today.Total != 33 {
		t.Error("Counts should be stored")
	}
	if len(model.state.GetNotifications()) != 0 {
		t.Error("Loading notification should be cleared")
	}
}

func TestModel_View(t *testing.T) {
	model := NewModel(nil)

	if view := model.View(); !strings.Contains(view, "Loading...") {
		t.Error("View should show Loading when not ready")
	}

	model.ready = true
	model.width = 140
	model.height = 24

	view := model.View()
	for _, name := range []string{"Tasbeeh", "Durood", "History"} {
		if !strings.Contains(view, name) {
			t.Errorf("View should show %s tab", name)
		}
	}
	if !strings.Contains(view, "not yet implemented") {
		t.Error("View should show placeholder text")
	}

	model.state.SetDegraded(models.KindDurood, true)
	if !strings.Contains(model.View(), "not saving") {
		t.Error("Navbar should warn when storage is degraded")
	}
}

func TestModel_Help(t *testing.T) {
	model := NewModel(nil)
	model.ready = true
	model.width = 80
	model.height = 24

	model.Update(ToggleHelpMsg{})
	if !model.showHelp {
		t.Error("showHelp should be true")
	}
	if !strings.Contains(model.View(), "Keyboard Shortcuts") {
		t.Error("View should show help modal")
	}

	model.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if model.showHelp {
		t.Error("Esc should close help")
	}

	model.Update(runeKey('?'))
	if !model.showHelp {
		t.Error("? should toggle help")
	}
}

func TestModel_Notifications(t *testing.T) {
	model := NewModel(nil)
	model.Update(AddNotificationMsg{Message: "Test Note", Type: NotificationInfo})

	if len(model.state.GetNotifications()) != 1 {
		t.Errorf("Expected 1 notification, got %d", len(model.state.GetNotifications()))
	}

	model.ready = true
	model.width = 80
	model.height = 24
	if !strings.Contains(model.View(), "Test Note") {
		t.Error("View should show notification")
	}

	model.Update(RemoveNotificationMsg{ID: "nonexistent"})
	if len(model.state.GetNotifications()) != 1 {
		t.Error("Unknown ID should not remove anything")
	}
}

func TestModel_HandleServiceEvent(t *testing.T) {
	model := NewModel(nil)
	rec := counter.DayRecord{Date: testDay, Total: 2, Details: map[string]int{"0": 2}}

	cmd := model.handleServiceEvent(services.CountChangedEvent{Kind: models.KindDurood, Source: services.SourceVoice, Record: rec})
	if cmd == nil {
		t.Fatal("CountChangedEvent should produce a command")
	}
	changed, ok := cmd().(CountChangedMsg)
	if !ok || changed.Source != services.SourceVoice || changed.Record.Total != 2 {
		t.Errorf("CountChangedMsg = %#v", changed)
	}
	if model.state.Counts(models.KindDurood).Today.Total != 2 {
		t.Error("State should hold the new record")
	}

	if cmd := model.handleServiceEvent(services.VoiceEvent{Kind: models.KindIstighfar, Text: "astaghfirullah", Matched: true}); cmd == nil {
		t.Error("Matched voice event should notify")
	}
	if v, ok := model.state.Voice(); !ok || !v.Matched {
		t.Error("Voice status should be stored")
	}
	if cmd := model.handleServiceEvent(services.VoiceEvent{Kind: models.KindIstighfar, Text: "hello"}); cmd != nil {
		t.Error("Unmatched voice event should be silent")
	}

	if cmd := model.handleServiceEvent(services.ErrorEvent{Service: "voice", Error: errors.New("boom")}); cmd == nil {
		t.Error("Error event should trigger notification command")
	}
}

func TestModel_DegradedLifecycle(t *testing.T) {
	model := NewModel(nil)

	model.handleServiceEvent(services.StorageDegradedEvent{Kind: models.KindTasbeeh, Error: errors.New("disk full")})
	model.handleServiceEvent(services.StorageDegradedEvent{Kind: models.KindDurood, Error: errors.New("disk full")})

	notifs := model.state.GetNotifications()
	if len(notifs) != 1 || notifs[0].ID != DegradedNotificationID || notifs[0].Type != NotificationWarning {
		t.Fatalf("Expected one sticky warning, got %+v", notifs)
	}

	if cmd := model.handleServiceEvent(services.StorageRecoveredEvent{Kind: models.KindTasbeeh}); cmd != nil {
		t.Error("Partial recovery should stay silent")
	}
	if len(model.state.GetNotifications()) != 1 {
		t.Error("Warning should stay while a counter is degraded")
	}

	if cmd := model.handleServiceEvent(services.StorageRecoveredEvent{Kind: models.KindDurood}); cmd == nil {
		t.Error("Full recovery should notify")
	}
	if len(model.state.GetNotifications()) != 0 {
		t.Error("Warning should be removed after recovery")
	}
}

func TestModel_TargetReached(t *testing.T) {
	mgr, _ := newTestManager(t)
	model := NewModel(mgr)

	cmds := model.handleTargetReached(TargetReachedMsg{Kind: models.KindDhikr, Category: "Allahu akbar", Target: 33})
	if len(cmds) != 2 {
		t.Fatalf("Expected toast and desktop commands, got %d", len(cmds))
	}
	add, ok := cmds[0]().(AddNotificationMsg)
	if !ok || !strings.Contains(add.Message, "33") || add.Type != NotificationSuccess {
		t.Errorf("Toast = %#v", add)
	}
	if msg := cmds[1](); msg != nil {
		t.Errorf("Desktop command should return nil, got %#v", msg)
	}
}

func TestModel_LoadSummaryMsg(t *testing.T) {
	mgr, _ := newTestManager(t)
	model := NewModel(mgr)

	cmds := model.handleAppMsg(LoadSummaryMsg{Kind: models.KindTasbeeh, Days: 7})
	if len(cmds) != 1 {
		t.Fatalf("Expected one command, got %d", len(cmds))
	}
	loaded, ok := cmds[0]().(SummaryLoadedMsg)
	if !ok {
		t.Fatal("Expected SummaryLoadedMsg")
	}
	model.Update(loaded)
	if _, ok := model.state.Summary(models.KindTasbeeh); !ok {
		t.Error("Summary should be stored")
	}
}

func TestModel_HandleSpinnerTick(t *testing.T) {
	model := NewModel(nil)
	_, cmd := model.Update(spinner.TickMsg{})
	if cmd == nil {
		t.Error("Spinner tick should return command")
	}
}

func TestTabID_String(t *testing.T) {
	for tab, want := range map[TabID]string{
		TabTasbeeh:   "Tasbeeh",
		TabDhikr:     "Dhikr",
		TabIstighfar: "Istighfar",
		TabDurood:    "Durood",
		TabHistory:   "History",
		TabInfo:      "Info",
		TabID(999):   "Unknown",
	} {
		if got := tab.String(); got != want {
			t.Errorf("TabID(%d).String() = %q, want %q", tab, got, want)
		}
	}
}

func TestTabFor(t *testing.T) {
	for _, kind := range models.Kinds {
		if got := TabFor(kind); got.String() != kind.Title() {
			t.Errorf("TabFor(%s) = %v", kind, got)
		}
	}
}

func TestDefaultKeyMap(t *testing.T) {
	km := DefaultKeyMap()
	if len(km.Tabs) != 6 {
		t.Errorf("Expected 6 tab bindings, got %d", len(km.Tabs))
	}
	if len(km.ShortHelp()) == 0 || len(km.FullHelp()) == 0 {
		t.Error("Help bindings empty")
	}
}
