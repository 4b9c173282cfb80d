package history

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/dhikr-tally/internal/app"
	"github.com/j-veylop/dhikr-tally/internal/counter"
	"github.com/j-veylop/dhikr-tally/internal/models"
)

var testDay = counter.Date{Year: 2026, Month: time.October, Day: 17}

func weekOf(kind models.Kind, totals ...int) models.Summary {
	days := make([]counter.DayRecord, len(totals))
	for i, n := range totals {
		d := testDay.AddDays(i - len(totals) + 1)
		rec := counter.EmptyRecord(d)
		if n > 0 {
			rec.Details["0"] = n
			rec.Total = n
		}
		days[i] = rec
	}
	return models.BuildSummary(kind, days, models.DefaultCatalogue())
}

func TestNew(t *testing.T) {
	m := New(app.NewState(), 14)
	if m.TimeRange() != models.TimeRange14Days {
		t.Errorf("TimeRange = %v, want 14 days", m.TimeRange())
	}
	if m.Kind() != models.KindTasbeeh {
		t.Errorf("Kind = %v, want tasbeeh", m.Kind())
	}
}

func TestModel_Init(t *testing.T) {
	m := New(app.NewState(), 7)
	msg, ok := m.Init()().(app.LoadSummaryMsg)
	if !ok {
		t.Fatal("Init should request a summary")
	}
	if msg.Kind != models.KindTasbeeh || msg.Days != 7 {
		t.Errorf("LoadSummaryMsg = %+v", msg)
	}
	if !m.loading {
		t.Error("Init should mark the tab loading")
	}
}

func TestModel_Keys(t *testing.T) {
	tests := []struct {
		name     string
		key      tea.KeyMsg
		wantKind models.Kind
		wantDays int
	}{
		{"next kind", tea.KeyMsg{Type: tea.KeyRight}, models.KindDhikr, 7},
		{"prev kind wraps", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'h'}}, models.KindDurood, 7},
		{"toggle range", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'t'}}, models.KindTasbeeh, 14},
		{"refresh", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}}, models.KindTasbeeh, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(app.NewState(), 7)
			_, cmd := m.Update(tt.key)
			if cmd == nil {
				t.Fatal("expected a load command")
			}
			msg, ok := cmd().(app.LoadSummaryMsg)
			if !ok || msg.Kind != tt.wantKind || msg.Days != tt.wantDays {
				t.Errorf("got %#v, want %s/%d", msg, tt.wantKind, tt.wantDays)
			}
		})
	}
}

func TestModel_ReloadsOnCountChange(t *testing.T) {
	m := New(app.NewState(), 7)

	if _, cmd := m.Update(app.CountChangedMsg{Kind: models.KindDurood}); cmd != nil {
		t.Error("changes to other counters should not reload")
	}
	if _, cmd := m.Update(app.CountChangedMsg{Kind: models.KindTasbeeh}); cmd == nil {
		t.Error("changes to the shown counter should reload")
	}
	if _, cmd := m.Update(app.DayChangedMsg{Date: testDay}); cmd == nil {
		t.Error("day change should reload")
	}
}

func TestModel_SummaryLoaded(t *testing.T) {
	state := app.NewState()
	m := New(state, 7)
	m.Init()
	m.SetSize(120, 80)

	if !strings.Contains(m.View(), "Loading history") {
		t.Error("View should show loading before the summary arrives")
	}

	// A summary for another window does not finish loading.
	state.SetSummary(weekOf(models.KindTasbeeh, 1, 2, 3))
	m.Update(app.SummaryLoadedMsg{Summary: weekOf(models.KindTasbeeh, 1, 2, 3)})
	if !m.loading {
		t.Error("mismatched summary should not clear loading")
	}

	s := weekOf(models.KindTasbeeh, 0, 3, 0, 5, 12, 4, 6)
	state.SetSummary(s)
	m.Update(app.SummaryLoadedMsg{Summary: s})
	if m.loading {
		t.Error("matching summary should clear loading")
	}

	view := m.View()
	for _, want := range []string{"History: Tasbeeh", "30", "4.3", "12 on", "4 days", "5 of 7", "By Phrase"} {
		if !strings.Contains(view, want) {
			t.Errorf("View missing %q", want)
		}
	}
}

func TestModel_ViewNoCounts(t *testing.T) {
	state := app.NewState()
	m := New(state, 7)
	m.SetSize(120, 60)

	if !strings.Contains(m.View(), "No history loaded") {
		t.Error("View should prompt for a refresh")
	}

	state.SetSummary(weekOf(models.KindTasbeeh, 0, 0, 0, 0, 0, 0, 0))
	if !strings.Contains(m.View(), "No tasbeeh counted") {
		t.Error("View should report an empty window")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("Astaghfirullah", 20); got != "Astaghfirullah" {
		t.Errorf("truncate short = %q", got)
	}
	if got := truncate("Astaghfirullah", 6); got != "Astag…" {
		t.Errorf("truncate long = %q", got)
	}
}

func TestModel_Help(t *testing.T) {
	m := New(app.NewState(), 7)
	if len(m.ShortHelp()) == 0 {
		t.Error("ShortHelp empty")
	}
	if len(m.FullHelp()) == 0 {
		t.Error("FullHelp empty")
	}
}
