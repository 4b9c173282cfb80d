package services

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/j-veylop/dhikr-tally/internal/config"
	"github.com/j-veylop/dhikr-tally/internal/counter"
	"github.com/j-veylop/dhikr-tally/internal/db"
	"github.com/j-veylop/dhikr-tally/internal/kv"
	"github.com/j-veylop/dhikr-tally/internal/models"
	"github.com/j-veylop/dhikr-tally/internal/voice"
)

var testDay = counter.Date{Year: 2026, Month: time.October, Day: 17}

// failingBackend is a memory backend whose writes can be switched off.
type failingBackend struct {
	*kv.MemoryStore
	mu   sync.Mutex
	fail bool
}

func (f *failingBackend) Set(ctx context.Context, key, value string) error {
	f.mu.Lock()
	fail := f.fail
	f.mu.Unlock()
	if fail {
		return errors.New("disk full")
	}
	return f.MemoryStore.Set(ctx, key, value)
}

func (f *failingBackend) setFail(v bool) {
	f.mu.Lock()
	f.fail = v
	f.mu.Unlock()
}

func newTestConfig() *config.Config {
	return &config.Config{
		Catalogue:      models.DefaultCatalogue(),
		StorageBackend: config.BackendMemory,
		TasbeehTarget:  models.DefaultTasbeehTarget,
		HistoryDays:    7,
	}
}

func newTestManager(t *testing.T, cfg *config.Config, backend Backend) (*Manager, *counter.ManualClock) {
	t.Helper()
	if backend == nil {
		backend = kv.NewMemoryStore()
	}
	clock := counter.NewManualClock(testDay)
	mgr, err := NewManagerWithOptions(cfg, Options{Backend: backend, Clock: clock})
	require.NoError(t, err)
	t.Cleanup(func() { _ = mgr.Close() })
	return mgr, clock
}

func voiceTranscript(text string) voice.Transcript {
	return voice.Transcript{ID: "t", File: "note.txt", Text: text}
}

func voiceError(err error) voice.Transcript {
	return voice.Transcript{ID: "t", File: "note.wav", Err: err}
}

func nextEvent(t *testing.T, ch <-chan ServiceEvent) ServiceEvent {
	t.Helper()
	select {
	case e := <-ch:
		return e
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestNewManager_SQLite(t *testing.T) {
	cfg := newTestConfig()
	cfg.StorageBackend = config.BackendSQLite
	cfg.DatabasePath = filepath.Join(t.TempDir(), "tally.db")

	mgr, err := NewManager(cfg)
	require.NoError(t, err)
	defer mgr.Close()

	assert.Contains(t, mgr.BackendName(), "sqlite")
	for _, kind := range models.Kinds {
		require.NotNil(t, mgr.Store(kind), kind)
		assert.Equal(t, kind.Namespace(), mgr.Store(kind).Namespace())
	}
	assert.False(t, mgr.VoiceEnabled())
}

func TestNewManager_BadBackend(t *testing.T) {
	cfg := newTestConfig()
	cfg.StorageBackend = config.BackendRedis
	cfg.RedisAddr = "127.0.0.1:1"

	_, err := NewManager(cfg)
	assert.Error(t, err)
}

func TestManager_IncrementBroadcasts(t *testing.T) {
	mgr, _ := newTestManager(t, newTestConfig(), nil)
	ch, cmd := mgr.Subscribe()
	require.NotNil(t, cmd)

	rec := mgr.Increment(context.Background(), models.KindDurood, "0")
	assert.Equal(t, 1, rec.Total)

	e := nextEvent(t, ch)
	changed, ok := e.(CountChangedEvent)
	require.True(t, ok, "got %T", e)
	assert.Equal(t, models.KindDurood, changed.Kind)
	assert.Equal(t, SourceTap, changed.Source)
	assert.Equal(t, map[string]int{"0": 1}, changed.Record.Details)
}

func TestManager_UnknownKind(t *testing.T) {
	mgr, _ := newTestManager(t, newTestConfig(), nil)

	assert.Nil(t, mgr.Store(models.Kind("prayer")))
	assert.Equal(t, counter.DayRecord{}, mgr.Increment(context.Background(), models.Kind("prayer"), "x"))
	assert.False(t, mgr.Summary(context.Background(), models.Kind("prayer"), 7).HasData())
}

func TestManager_Summary(t *testing.T) {
	ctx := context.Background()
	mgr, clock := newTestManager(t, newTestConfig(), nil)

	mgr.Increment(ctx, models.KindTasbeeh, "subhanallah")
	clock.Advance(1)
	mgr.Increment(ctx, models.KindTasbeeh, "subhanallah")
	mgr.Increment(ctx, models.KindTasbeeh, "alhamdulillah")

	s := mgr.Summary(ctx, models.KindTasbeeh, 7)
	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 2, s.ActiveDays)
	assert.Equal(t, 2, s.Streak)
	require.Len(t, s.Days, 7)
	assert.Equal(t, clock.Today(), s.Days[len(s.Days)-1].Date)
}

func TestManager_VoiceTarget(t *testing.T) {
	mgr, _ := newTestManager(t, newTestConfig(), nil)

	kind, cat := mgr.VoiceTarget()
	assert.Equal(t, models.KindIstighfar, kind)
	assert.Equal(t, "0", cat)

	mgr.SetVoiceTarget(models.KindDurood, "2")
	kind, cat = mgr.VoiceTarget()
	assert.Equal(t, models.KindDurood, kind)
	assert.Equal(t, "2", cat)
}

func TestManager_HandleTranscript(t *testing.T) {
	ctx := context.Background()
	mgr, _ := newTestManager(t, newTestConfig(), nil)
	ch, _ := mgr.Subscribe()

	mgr.handleTranscript(voiceTranscript("Astaghfirullah"))
	assert.IsType(t, CountChangedEvent{}, nextEvent(t, ch))
	ve := nextEvent(t, ch).(VoiceEvent)
	assert.True(t, ve.Matched)

	mgr.handleTranscript(voiceTranscript("subhanallah"))
	ve = nextEvent(t, ch).(VoiceEvent)
	assert.False(t, ve.Matched)

	assert.Equal(t, 1, mgr.Store(models.KindIstighfar).Today(ctx).Total)
}

func TestManager_HandleTranscriptError(t *testing.T) {
	mgr, _ := newTestManager(t, newTestConfig(), nil)
	ch, _ := mgr.Subscribe()

	mgr.handleTranscript(voiceError(errors.New("boom")))
	e, ok := nextEvent(t, ch).(ErrorEvent)
	require.True(t, ok)
	assert.Equal(t, "voice", e.Service)
}

func TestManager_VoiceInbox(t *testing.T) {
	cfg := newTestConfig()
	cfg.VoiceInbox = t.TempDir()
	mgr, _ := newTestManager(t, cfg, nil)
	require.True(t, mgr.VoiceEnabled())
	ch, _ := mgr.Subscribe()

	require.NoError(t, os.WriteFile(filepath.Join(cfg.VoiceInbox, "a.txt"), []byte("astaghfirullah"), 0o600))

	deadline := time.After(5 * time.Second)
	for {
		select {
		case e := <-ch:
			if ve, ok := e.(VoiceEvent); ok {
				assert.True(t, ve.Matched)
				assert.Equal(t, "a.txt", ve.File)
				assert.Equal(t, 1, mgr.Store(models.KindIstighfar).Today(context.Background()).Total)
				return
			}
		case <-deadline:
			t.Fatal("no voice event")
		}
	}
}

func TestManager_DegradedAndRecovered(t *testing.T) {
	ctx := context.Background()
	var notified []string
	orig := desktopNotify
	desktopNotify = func(title, _ string) error {
		notified = append(notified, title)
		return nil
	}
	defer func() { desktopNotify = orig }()

	cfg := newTestConfig()
	cfg.DesktopNotify = true
	backend := &failingBackend{MemoryStore: kv.NewMemoryStore()}
	mgr, _ := newTestManager(t, cfg, backend)
	ch, _ := mgr.Subscribe()

	backend.setFail(true)
	for range counter.DefaultFailureThreshold {
		mgr.Increment(ctx, models.KindDurood, "0")
	}

	var degraded, recovered bool
	for !degraded {
		if e, ok := nextEvent(t, ch).(StorageDegradedEvent); ok {
			degraded = true
			assert.Equal(t, models.KindDurood, e.Kind)
			assert.Error(t, e.Error)
		}
	}
	assert.Len(t, notified, 1)

	backend.setFail(false)
	rec := mgr.Increment(ctx, models.KindDurood, "0")
	assert.Equal(t, counter.DefaultFailureThreshold+1, rec.Total)

	for !recovered {
		if e, ok := nextEvent(t, ch).(StorageRecoveredEvent); ok {
			recovered = true
			assert.Equal(t, models.KindDurood, e.Kind)
		}
	}
}

func TestManager_NotifyDisabled(t *testing.T) {
	called := false
	orig := desktopNotify
	desktopNotify = func(string, string) error { called = true; return nil }
	defer func() { desktopNotify = orig }()

	mgr, _ := newTestManager(t, newTestConfig(), nil)
	mgr.Notify("title", "body")
	assert.False(t, called)
}

func TestManager_MigratesSingleSlotsOnStart(t *testing.T) {
	ctx := context.Background()
	backend := kv.NewMemoryStore()
	require.NoError(t, backend.Set(ctx, "@istighfar_count", "12"))
	require.NoError(t, backend.Set(ctx, "@istighfar_date", "2026-10-16"))

	mgr, _ := newTestManager(t, newTestConfig(), backend)

	assert.Equal(t, 12, mgr.Store(models.KindIstighfar).Yesterday(ctx).Total)
	assert.Equal(t, 0, mgr.Store(models.KindIstighfar).Today(ctx).Total)
}

func writeDump(t *testing.T, entries map[string]string) string {
	t.Helper()
	data, err := json.Marshal(entries)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "dump.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestManager_ImportDump(t *testing.T) {
	dump := map[string]string{
		"@durood_2026-10-15":    `{"total":4,"details":{"0":4}}`,
		"@durood_count":         "9",
		"@durood_date":          "2026-10-16",
		"@breakdown_2026-10-17": `{"total":1,"details":{"subhanallah":1}}`,
		"@theme":                "dark",
	}

	t.Run("Memory", func(t *testing.T) {
		ctx := context.Background()
		backend := kv.NewMemoryStore()
		mgr, _ := newTestManager(t, newTestConfig(), backend)

		n, err := mgr.ImportDump(ctx, writeDump(t, dump))
		require.NoError(t, err)
		assert.Equal(t, 4, n)

		durood := mgr.Store(models.KindDurood)
		assert.Equal(t, 4, durood.Day(ctx, testDay.AddDays(-2)).Total)
		assert.Equal(t, 9, durood.Yesterday(ctx).Total)
		assert.Equal(t, 1, mgr.Store(models.KindTasbeeh).Today(ctx).Total)

		_, ok, _ := backend.Get(ctx, "@theme")
		assert.False(t, ok)
	})

	t.Run("SQLite", func(t *testing.T) {
		ctx := context.Background()
		database, err := db.New(filepath.Join(t.TempDir(), "tally.db"))
		require.NoError(t, err)
		mgr, _ := newTestManager(t, newTestConfig(), database)

		require.NoError(t, database.Set(ctx, "@breakdown_2026-10-17", `{"total":7,"details":{"subhanallah":7}}`))

		n, err := mgr.ImportDump(ctx, writeDump(t, dump))
		require.NoError(t, err)
		assert.Equal(t, 3, n)
		assert.Equal(t, 7, mgr.Store(models.KindTasbeeh).Today(ctx).Total, "existing keys are not overwritten")
		assert.Equal(t, 9, mgr.Store(models.KindDurood).Yesterday(ctx).Total)
	})

	t.Run("MissingFile", func(t *testing.T) {
		mgr, _ := newTestManager(t, newTestConfig(), nil)
		_, err := mgr.ImportDump(context.Background(), filepath.Join(t.TempDir(), "none.json"))
		assert.Error(t, err)
	})
}

func TestManager_Subscription(t *testing.T) {
	mgr, _ := newTestManager(t, newTestConfig(), nil)

	ch, cmd := mgr.Subscribe()
	require.NotNil(t, ch)
	require.NotNil(t, cmd)

	mgr.Unsubscribe(ch)
	_, ok := <-ch
	assert.False(t, ok, "channel should be closed")
}

func TestManager_CloseIdempotent(t *testing.T) {
	mgr, err := NewManagerWithOptions(newTestConfig(), Options{Backend: kv.NewMemoryStore()})
	require.NoError(t, err)
	ch, _ := mgr.Subscribe()

	require.NoError(t, mgr.Close())
	require.NoError(t, mgr.Close())

	_, ok := <-ch
	assert.False(t, ok)
}

func TestWaitForEvent(t *testing.T) {
	ch := make(chan ServiceEvent, 1)
	ch <- StorageRecoveredEvent{Kind: models.KindDhikr}

	msg := WaitForEvent(ch)()
	assert.Equal(t, StorageRecoveredEvent{Kind: models.KindDhikr}, msg)

	close(ch)
	assert.Nil(t, WaitForEvent(ch)())
}

func TestBackendName(t *testing.T) {
	assert.Equal(t, "memory", BackendName(kv.NewMemoryStore()))
	assert.Equal(t, "custom", BackendName(&failingBackend{MemoryStore: kv.NewMemoryStore()}))
}

func TestServiceEvent_Interface(t *testing.T) {
	var _ ServiceEvent = CountChangedEvent{}
	var _ ServiceEvent = VoiceEvent{}
	var _ ServiceEvent = StorageDegradedEvent{}
	var _ ServiceEvent = StorageRecoveredEvent{}
	var _ ServiceEvent = ErrorEvent{}
}
