package app

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/dhikr-tally/internal/config"
	"github.com/j-veylop/dhikr-tally/internal/counter"
	"github.com/j-veylop/dhikr-tally/internal/kv"
	"github.com/j-veylop/dhikr-tally/internal/models"
	"github.com/j-veylop/dhikr-tally/internal/services"
)

func newTestManager(t *testing.T) (*services.Manager, *counter.ManualClock) {
	t.Helper()
	cfg := &config.Config{
		Catalogue:      models.DefaultCatalogue(),
		StorageBackend: config.BackendMemory,
		TasbeehTarget:  models.DefaultTasbeehTarget,
		HistoryDays:    7,
	}
	clock := counter.NewManualClock(testDay)
	mgr, err := services.NewManagerWithOptions(cfg, services.Options{
		Backend: kv.NewMemoryStore(),
		Clock:   clock,
	})
	if err != nil {
		t.Fatalf("NewManagerWithOptions failed: %v", err)
	}
	t.Cleanup(func() { _ = mgr.Close() })
	return mgr, clock
}

func TestCommands_NilManager(t *testing.T) {
	cmds := NewCommands(nil)
	if cmds.Increment(models.KindDurood, "0") != nil {
		t.Error("Increment without manager should be nil")
	}
	if cmds.LoadCounts() != nil {
		t.Error("LoadCounts without manager should be nil")
	}
	if cmds.LoadSummary(models.KindDurood, 7) != nil {
		t.Error("LoadSummary without manager should be nil")
	}
	cmds.SetVoiceTarget(models.KindDurood, "0")
}

func TestCommands_Notifications(t *testing.T) {
	cmds := NewCommands(nil)

	tests := []struct {
		name string
		fn   func(string) tea.Cmd
		want NotificationType
	}{
		{"Success", cmds.NotifySuccess, NotificationSuccess},
		{"Error", cmds.NotifyError, NotificationError},
		{"Info", cmds.NotifyInfo, NotificationInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.fn("msg")()

			addMsg, ok := msg.(AddNotificationMsg)
			if !ok {
				t.Fatalf("Expected AddNotificationMsg, got %T", msg)
			}
			if addMsg.Type != tt.want {
				t.Errorf("Type = %v, want %v", addMsg.Type, tt.want)
			}
			if addMsg.Message != "msg" {
				t.Errorf("Message = %q, want msg", addMsg.Message)
			}
			if addMsg.Duration <= 0 {
				t.Error("Notification should expire")
			}
		})
	}
}

func TestCommands_Increment(t *testing.T) {
	mgr, _ := newTestManager(t)
	cmds := NewCommands(mgr)

	msg := cmds.Increment(models.KindTasbeeh, "subhanallah")()
	res, ok := msg.(IncrementResultMsg)
	if !ok {
		t.Fatalf("Expected IncrementResultMsg, got %T", msg)
	}
	if res.Kind != models.KindTasbeeh || res.Record.Total != 1 {
		t.Errorf("IncrementResultMsg = %+v", res)
	}
	if res.Record.Details["subhanallah"] != 1 {
		t.Errorf("Details = %v", res.Record.Details)
	}
}

func TestCommands_LoadCounts(t *testing.T) {
	mgr, clock := newTestManager(t)
	cmds := NewCommands(mgr)

	cmds.Increment(models.KindDurood, "0")()
	clock.Advance(1)
	cmds.Increment(models.KindDurood, "1")()
	cmds.Increment(models.KindDurood, "1")()

	msg, ok := cmds.LoadCounts()().(CountsLoadedMsg)
	if !ok {
		t.Fatal("Expected CountsLoadedMsg")
	}
	if len(msg.Counts) != len(models.Kinds) {
		t.Errorf("Counts for %d kinds, want %d", len(msg.Counts), len(models.Kinds))
	}
	durood := msg.Counts[models.KindDurood]
	if durood.Today.Total != 2 || durood.Yesterday.Total != 1 {
		t.Errorf("Durood counts = %+v", durood)
	}
}

func TestCommands_LoadSummary(t *testing.T) {
	mgr, _ := newTestManager(t)
	cmds := NewCommands(mgr)
	cmds.Increment(models.KindIstighfar, "0")()

	msg, ok := cmds.LoadSummary(models.KindIstighfar, 14)().(SummaryLoadedMsg)
	if !ok {
		t.Fatal("Expected SummaryLoadedMsg")
	}
	if msg.Summary.Kind != models.KindIstighfar || len(msg.Summary.Days) != 14 || msg.Summary.Total != 1 {
		t.Errorf("Summary = %+v", msg.Summary)
	}
}

func TestCommands_SetVoiceTarget(t *testing.T) {
	mgr, _ := newTestManager(t)
	NewCommands(mgr).SetVoiceTarget(models.KindDurood, "2")

	kind, cat := mgr.VoiceTarget()
	if kind != models.KindDurood || cat != "2" {
		t.Errorf("VoiceTarget = %s/%s", kind, cat)
	}
}

func TestCommands_TargetReached(t *testing.T) {
	msg := NewCommands(nil).TargetReached(models.KindDhikr, "Allahu akbar", 33)()
	got, ok := msg.(TargetReachedMsg)
	if !ok || got.Target != 33 || got.Kind != models.KindDhikr {
		t.Errorf("TargetReached = %#v", msg)
	}
}

func TestClearNotificationCmd(t *testing.T) {
	if clearNotificationCmd("id", 1) == nil {
		t.Error("clearNotificationCmd returned nil")
	}
}
