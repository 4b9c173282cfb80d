// Package services provides service orchestration for the TUI.
package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gen2brain/beeep"

	"github.com/j-veylop/dhikr-tally/internal/config"
	"github.com/j-veylop/dhikr-tally/internal/counter"
	"github.com/j-veylop/dhikr-tally/internal/db"
	"github.com/j-veylop/dhikr-tally/internal/kv"
	"github.com/j-veylop/dhikr-tally/internal/logger"
	"github.com/j-veylop/dhikr-tally/internal/metrics"
	"github.com/j-veylop/dhikr-tally/internal/models"
	"github.com/j-veylop/dhikr-tally/internal/voice"
)

// Increment sources.
const (
	SourceTap   = "tap"
	SourceVoice = "voice"
	SourceCLI   = "cli"
)

type (
	// CountChangedEvent is emitted after an increment is applied.
	CountChangedEvent struct {
		Kind   models.Kind
		Source string
		Record counter.DayRecord
	}

	// VoiceEvent is emitted for every transcript read from the inbox.
	VoiceEvent struct {
		Kind    models.Kind
		File    string
		Text    string
		Matched bool
	}

	// StorageDegradedEvent is emitted when writes for a counter keep failing.
	StorageDegradedEvent struct {
		Error error
		Kind  models.Kind
	}

	// StorageRecoveredEvent is emitted when writes succeed again.
	StorageRecoveredEvent struct {
		Kind models.Kind
	}

	// ErrorEvent is emitted when an error occurs in any service.
	ErrorEvent struct {
		Error   error
		Service string
	}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (CountChangedEvent) isServiceEvent()     {}
func (VoiceEvent) isServiceEvent()            {}
func (StorageDegradedEvent) isServiceEvent()  {}
func (StorageRecoveredEvent) isServiceEvent() {}
func (ErrorEvent) isServiceEvent()            {}

// desktopNotify sends a desktop notification. Replaced in tests.
var desktopNotify = func(title, body string) error {
	return beeep.Notify(title, body, "")
}

// Options customizes a Manager beyond what Config describes.
type Options struct {
	// Backend overrides the backend selected by the config.
	Backend Backend
	// Clock overrides the system clock for every store.
	Clock counter.Clock
	// FailureThreshold is the number of consecutive failed writes before a
	// store reports itself degraded. Zero keeps the store default.
	FailureThreshold int
}

// Manager orchestrates services and event routing.
type Manager struct {
	backend     Backend
	clock       counter.Clock
	threshold   int
	cfg         *config.Config
	stores      map[models.Kind]*counter.Store
	inbox       *voice.Inbox
	eventChan   chan ServiceEvent
	stopChan    chan struct{}
	subscribers []chan<- ServiceEvent
	voiceKind   models.Kind
	voiceCat    string
	wg          sync.WaitGroup
	mu          sync.RWMutex
	closeOnce   sync.Once
}

// NewManager creates a new service manager from configuration.
func NewManager(cfg *config.Config) (*Manager, error) {
	return NewManagerWithOptions(cfg, Options{})
}

// NewManagerWithOptions creates a manager with explicit overrides.
func NewManagerWithOptions(cfg *config.Config, opts Options) (*Manager, error) {
	if cfg.Catalogue == nil {
		cfg.Catalogue = models.DefaultCatalogue()
	}

	backend := opts.Backend
	if backend == nil {
		var err error
		backend, err = OpenBackend(context.Background(), cfg)
		if err != nil {
			return nil, err
		}
	}

	clock := opts.Clock
	if clock == nil {
		clock = counter.SystemClock{}
	}

	m := &Manager{
		backend:   backend,
		clock:     clock,
		threshold: opts.FailureThreshold,
		cfg:       cfg,
		stores:    make(map[models.Kind]*counter.Store, len(models.Kinds)),
		eventChan: make(chan ServiceEvent, 100),
		stopChan:  make(chan struct{}),
		voiceKind: models.KindIstighfar,
	}
	if phrases := cfg.Catalogue.Phrases(models.KindIstighfar); len(phrases) > 0 {
		m.voiceCat = phrases[0].ID
	}

	for _, kind := range models.Kinds {
		m.stores[kind] = m.newStore(kind)
	}

	if err := m.MigrateSingleSlots(context.Background()); err != nil {
		logger.Warn("single-slot migration incomplete", "error", err)
	}

	if cfg.VoiceEnabled() {
		var transcriber *voice.Transcriber
		if cfg.TranscribeURL != "" {
			transcriber = voice.NewTranscriber(cfg.TranscribeURL, cfg.TranscribeTimeout)
		}
		inbox, err := voice.NewInbox(cfg.VoiceInbox, transcriber)
		if err != nil {
			_ = backend.Close()
			return nil, fmt.Errorf("failed to start voice inbox: %w", err)
		}
		m.inbox = inbox
	}

	m.wg.Add(1)
	go m.routeEvents()

	return m, nil
}

func (m *Manager) newStore(kind models.Kind) *counter.Store {
	return counter.New(kind.Namespace(), m.backend,
		counter.WithClock(m.clock),
		counter.WithFailureThreshold(m.threshold),
		counter.WithDegradedHook(func(err error) {
			m.broadcast(StorageDegradedEvent{Kind: kind, Error: err})
			m.Notify("Tally is not being saved",
				fmt.Sprintf("%s counts are kept in memory only until storage recovers.", kind.Title()))
		}),
		counter.WithRecoveredHook(func() {
			m.broadcast(StorageRecoveredEvent{Kind: kind})
		}),
	)
}

// routeEvents routes events from individual services to subscribers.
func (m *Manager) routeEvents() {
	defer m.wg.Done()

	var transcripts <-chan voice.Transcript
	if m.inbox != nil {
		transcripts = m.inbox.Events()
	}

	for {
		select {
		case t := <-transcripts:
			m.handleTranscript(t)

		case <-m.stopChan:
			return
		}
	}
}

// handleTranscript turns a matching transcript into one increment of the
// currently selected voice category.
func (m *Manager) handleTranscript(t voice.Transcript) {
	if t.Err != nil {
		m.broadcast(ErrorEvent{Service: "voice", Error: t.Err})
		return
	}

	kind, category := m.VoiceTarget()
	matched := voice.Matches(t.Text, models.TriggerPhrase(kind))

	if matched {
		metrics.RecordTranscript(metrics.OutcomeMatched)
		m.increment(context.Background(), kind, category, SourceVoice)
	} else {
		metrics.RecordTranscript(metrics.OutcomeUnmatched)
	}

	m.broadcast(VoiceEvent{Kind: kind, File: t.File, Text: t.Text, Matched: matched})
}

// Increment records one tap for kind/category and broadcasts the result.
func (m *Manager) Increment(ctx context.Context, kind models.Kind, category string) counter.DayRecord {
	return m.increment(ctx, kind, category, SourceTap)
}

// IncrementFrom is Increment with an explicit source label.
func (m *Manager) IncrementFrom(ctx context.Context, kind models.Kind, category, source string) counter.DayRecord {
	return m.increment(ctx, kind, category, source)
}

func (m *Manager) increment(ctx context.Context, kind models.Kind, category, source string) counter.DayRecord {
	store := m.Store(kind)
	if store == nil {
		return counter.DayRecord{}
	}
	rec := store.Increment(ctx, category)
	m.broadcast(CountChangedEvent{Kind: kind, Source: source, Record: rec})
	return rec
}

// Store returns the counter store for kind, or nil for an unknown kind.
func (m *Manager) Store(kind models.Kind) *counter.Store {
	return m.stores[kind]
}

// Date returns the current date as seen by the stores.
func (m *Manager) Date() counter.Date {
	return m.clock.Today()
}

// Summary aggregates the last days records of kind.
func (m *Manager) Summary(ctx context.Context, kind models.Kind, days int) models.Summary {
	store := m.Store(kind)
	if store == nil {
		return models.Summary{Kind: kind}
	}
	return models.BuildSummary(kind, slices.Collect(store.History(ctx, days)), m.cfg.Catalogue)
}

// SetVoiceTarget selects which counter and category voice triggers feed.
func (m *Manager) SetVoiceTarget(kind models.Kind, category string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.voiceKind = kind
	m.voiceCat = category
}

// VoiceTarget returns the counter and category voice triggers feed.
func (m *Manager) VoiceTarget() (models.Kind, string) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.voiceKind, m.voiceCat
}

// VoiceEnabled reports whether the voice inbox is being watched.
func (m *Manager) VoiceEnabled() bool {
	return m.inbox != nil
}

// Notify sends a desktop notification when enabled in the config.
func (m *Manager) Notify(title, body string) {
	if !m.cfg.DesktopNotify {
		return
	}
	if err := desktopNotify(title, body); err != nil {
		logger.Debug("desktop notification failed", "error", err)
	}
}

// MigrateSingleSlots moves counts from the older single-slot keys into the
// dated scheme for every kind that used them.
func (m *Manager) MigrateSingleSlots(ctx context.Context) error {
	var errs []error
	for _, kind := range models.Kinds {
		countKey, dateKey, ok := kind.LegacySlots()
		if !ok {
			continue
		}
		if _, err := m.stores[kind].ImportSingleSlot(ctx, countKey, dateKey); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", kind, err))
		}
	}
	return errors.Join(errs...)
}

// ImportDump copies counter keys from an AsyncStorage export into the
// backend without overwriting, then migrates single-slot keys. It returns
// the number of keys added.
func (m *Manager) ImportDump(ctx context.Context, path string) (int, error) {
	entries, err := db.ReadAsyncStorageDump(path)
	if err != nil {
		return 0, err
	}

	prefixes := models.Namespaces()
	for _, kind := range models.Kinds {
		if countKey, dateKey, ok := kind.LegacySlots(); ok {
			prefixes = append(prefixes, countKey, dateKey)
		}
	}

	var imported int
	if database, ok := m.backend.(*db.DB); ok {
		imported, err = database.ImportEntries(ctx, entries, prefixes)
		if err != nil {
			return 0, err
		}
		if err := database.Vacuum(); err != nil {
			logger.Warn("vacuum after import failed", "error", err)
		}
	} else {
		for key, value := range entries {
			if !hasAnyPrefix(key, prefixes) {
				continue
			}
			written, err := kv.SetIfAbsent(ctx, m.backend, key, value)
			if err != nil {
				return imported, fmt.Errorf("failed to import %s: %w", key, err)
			}
			if written {
				imported++
			}
		}
	}

	logger.Info("imported AsyncStorage dump", "path", path, "keys", imported)
	return imported, m.MigrateSingleSlots(ctx)
}

// Catalogue returns the phrase catalogue.
func (m *Manager) Catalogue() models.Catalogue {
	return m.cfg.Catalogue
}

// Config returns the configuration the manager was built from.
func (m *Manager) Config() *config.Config {
	return m.cfg
}

// BackendName describes the storage backend for display.
func (m *Manager) BackendName() string {
	return BackendName(m.backend)
}

// broadcast sends an event to all subscribers.
func (m *Manager) broadcast(event ServiceEvent) {
	// Send to main event channel
	select {
	case m.eventChan <- event:
	default:
	}

	// Send to subscribers
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

// Subscribe creates a channel for receiving service events.
// Returns a tea.Cmd that can be used in Bubble Tea's Init or Update.
func (m *Manager) Subscribe() (chan ServiceEvent, tea.Cmd) {
	ch := make(chan ServiceEvent, 50)

	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	return ch, waitForEvent(ch)
}

// waitForEvent returns a tea.Cmd that waits for the next event.
func waitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return event
	}
}

// WaitForEvent returns a tea.Cmd for the next event on a channel.
func WaitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return waitForEvent(ch)
}

// Unsubscribe removes a subscriber channel.
func (m *Manager) Unsubscribe(ch chan ServiceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// Close closes the manager and all its services.
func (m *Manager) Close() error {
	var errs []error

	m.closeOnce.Do(func() {
		close(m.stopChan)

		if m.inbox != nil {
			if err := m.inbox.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		m.wg.Wait()

		m.mu.Lock()
		for _, sub := range m.subscribers {
			close(sub)
		}
		m.subscribers = nil
		m.mu.Unlock()

		if err := m.backend.Close(); err != nil {
			errs = append(errs, err)
		}
	})

	return errors.Join(errs...)
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
