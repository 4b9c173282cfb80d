// Package counter keeps per-day devotional tallies in a key/value store.
//
// Each Store owns one namespace (for example "@istighfar_") and addresses a
// day's record under namespace+YYYY-MM-DD. "Today" is read from the injected
// Clock on every call, so a midnight rollover needs no timer. Storage and
// decode failures are logged and masked with empty records; they never reach
// the caller.
package counter

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/j-veylop/dhikr-tally/internal/kv"
	"github.com/j-veylop/dhikr-tally/internal/logger"
	"github.com/j-veylop/dhikr-tally/internal/metrics"
)

// Error kinds masked by the store. They are logged, not returned.
var (
	ErrStorageRead  = errors.New("storage read failed")
	ErrStorageWrite = errors.New("storage write failed")
	ErrDecode       = errors.New("stored value could not be decoded")
)

// DefaultFailureThreshold is the number of consecutive failed writes after
// which a store reports itself degraded.
const DefaultFailureThreshold = 3

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used to compute today's date.
func WithClock(c Clock) Option {
	return func(s *Store) { s.clock = c }
}

// WithFailureThreshold sets how many consecutive write failures trigger the
// degraded hook. Values below 1 are ignored.
func WithFailureThreshold(n int) Option {
	return func(s *Store) {
		if n >= 1 {
			s.threshold = n
		}
	}
}

// WithDegradedHook registers fn to run once per streak of failed writes.
func WithDegradedHook(fn func(err error)) Option {
	return func(s *Store) { s.onDegraded = fn }
}

// WithRecoveredHook registers fn to run when a write succeeds after the store
// was degraded.
func WithRecoveredHook(fn func()) Option {
	return func(s *Store) { s.onRecovered = fn }
}

// Store is a DailyCounterStore bound to one namespace.
type Store struct {
	namespace   string
	backend     kv.Store
	clock       Clock
	threshold   int
	onDegraded  func(error)
	onRecovered func()

	mu       sync.Mutex
	overlay  map[Date]DayRecord
	failures int
	degraded bool
}

// New returns a Store writing under namespace to backend.
func New(namespace string, backend kv.Store, opts ...Option) *Store {
	s := &Store{
		namespace: namespace,
		backend:   backend,
		clock:     SystemClock{},
		threshold: DefaultFailureThreshold,
		overlay:   make(map[Date]DayRecord),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Namespace returns the key prefix of the store.
func (s *Store) Namespace() string {
	return s.namespace
}

// Key returns the storage key for d.
func (s *Store) Key(d Date) string {
	return s.namespace + d.String()
}

// Degraded reports whether recent writes have been failing.
func (s *Store) Degraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.degraded
}

// Increment adds one to category for the current date and returns the
// updated record. A legacy flat-integer value for today is replaced by a
// fresh breakdown. A stored record with a total but no breakdown has that
// total carried into category, so the new total is the old one plus one.
func (s *Store) Increment(ctx context.Context, category string) DayRecord {
	var hook func()

	s.mu.Lock()
	today := s.clock.Today()

	rec, ok := s.overlay[today]
	if ok {
		rec = rec.Clone()
	} else {
		rec = s.load(ctx, today, true)
	}

	if len(rec.Details) == 0 && rec.Total > 0 {
		rec.Details[category] = rec.Total
	}
	rec.Details[category]++
	rec.Total = sumDetails(rec.Details)

	if err := s.write(ctx, today, rec); err != nil {
		s.overlay[today] = rec.Clone()
		s.failures++
		metrics.RecordStorageError(s.namespace, metrics.KindWrite)
		logger.Error("failed to persist count", "namespace", s.namespace, "date", today.String(), "error", err)

		if s.failures >= s.threshold && !s.degraded {
			s.degraded = true
			metrics.SetDegraded(s.namespace, true)
			if s.onDegraded != nil {
				fn := s.onDegraded
				hook = func() { fn(err) }
			}
		}
	} else {
		delete(s.overlay, today)
		s.flushOverlay(ctx)
		s.failures = 0
		if s.degraded {
			s.degraded = false
			metrics.SetDegraded(s.namespace, false)
			hook = s.onRecovered
		}
	}
	s.mu.Unlock()

	metrics.RecordIncrement(s.namespace)
	if hook != nil {
		hook()
	}
	return rec
}

// Today returns the record for the current date.
func (s *Store) Today(ctx context.Context) DayRecord {
	return s.Day(ctx, s.clock.Today())
}

// Yesterday returns the record for the day before the current date.
func (s *Store) Yesterday(ctx context.Context) DayRecord {
	return s.Day(ctx, s.clock.Today().AddDays(-1))
}

// Day returns the record for d, or an empty record when none is stored or
// it cannot be read.
func (s *Store) Day(ctx context.Context, d Date) DayRecord {
	s.mu.Lock()
	rec, ok := s.overlay[d]
	s.mu.Unlock()
	if ok {
		return rec.Clone()
	}
	return s.load(ctx, d, false)
}

// History yields days consecutive records ending today, oldest first. The
// window is recomputed from the clock and the backend every time the
// sequence is ranged over.
func (s *Store) History(ctx context.Context, days int) iter.Seq[DayRecord] {
	return func(yield func(DayRecord) bool) {
		if days <= 0 {
			return
		}
		start := s.clock.Today().AddDays(-(days - 1))
		for i := range days {
			if !yield(s.Day(ctx, start.AddDays(i))) {
				return
			}
		}
	}
}

// ErrNotListable is returned by RecordedDates when the backend cannot
// enumerate keys.
var ErrNotListable = errors.New("backend cannot list keys")

// RecordedDates returns every date that has a record in this namespace,
// including days held in memory after failed writes, oldest first. Keys
// under the namespace that are not dated are skipped.
func (s *Store) RecordedDates(ctx context.Context) ([]Date, error) {
	lister, ok := s.backend.(kv.Lister)
	if !ok {
		return nil, ErrNotListable
	}

	keys, err := lister.Keys(ctx, s.namespace)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageRead, err)
	}

	seen := make(map[Date]bool, len(keys))
	for _, key := range keys {
		d, err := ParseDate(strings.TrimPrefix(key, s.namespace))
		if err != nil {
			continue
		}
		seen[d] = true
	}

	s.mu.Lock()
	for d := range s.overlay {
		seen[d] = true
	}
	s.mu.Unlock()

	dates := slices.Collect(maps.Keys(seen))
	slices.SortFunc(dates, func(a, b Date) int {
		switch {
		case a.Before(b):
			return -1
		case b.Before(a):
			return 1
		default:
			return 0
		}
	})
	return dates, nil
}

// flushOverlay retries the writes of earlier days that were only kept in
// memory. Entries that still fail stay in the overlay. Caller holds s.mu.
func (s *Store) flushOverlay(ctx context.Context) {
	for d, rec := range s.overlay {
		if err := s.write(ctx, d, rec); err != nil {
			logger.Warn("failed to persist held count", "namespace", s.namespace, "date", d.String(), "error", err)
			continue
		}
		delete(s.overlay, d)
		logger.Info("persisted held count", "namespace", s.namespace, "date", d.String(), "total", rec.Total)
	}
}

// load reads and decodes the record for d. With forWrite set, a legacy
// flat-integer value is discarded instead of migrated.
func (s *Store) load(ctx context.Context, d Date, forWrite bool) DayRecord {
	key := s.Key(d)

	raw, ok, err := s.backend.Get(ctx, key)
	if err != nil {
		metrics.RecordStorageError(s.namespace, metrics.KindRead)
		logger.Error("failed to read count", "key", key, "error", fmt.Errorf("%w: %w", ErrStorageRead, err))
		return EmptyRecord(d)
	}
	if !ok {
		return EmptyRecord(d)
	}

	v, err := ParseStored(raw)
	if err != nil {
		metrics.RecordStorageError(s.namespace, metrics.KindDecode)
		logger.Warn("discarding undecodable count", "key", key, "error", err)
		return EmptyRecord(d)
	}

	if _, legacy := v.(LegacyCount); legacy && forWrite {
		return EmptyRecord(d)
	}

	rec := MigrateLegacy(v)
	rec.Date = d
	return rec
}

func (s *Store) write(ctx context.Context, d Date, rec DayRecord) error {
	value, err := rec.Encode()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStorageWrite, err)
	}
	if err := s.backend.Set(ctx, s.Key(d), value); err != nil {
		return fmt.Errorf("%w: %w", ErrStorageWrite, err)
	}
	return nil
}
