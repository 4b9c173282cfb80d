// Package app provides the main Bubble Tea application model and state management.
package app

import (
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/j-veylop/dhikr-tally/internal/counter"
	"github.com/j-veylop/dhikr-tally/internal/models"
)

// NotificationType defines the type of notification.
type NotificationType int

const (
	// NotificationSuccess represents a success notification.
	NotificationSuccess NotificationType = iota
	// NotificationError represents an error notification.
	NotificationError
	// NotificationWarning represents a warning notification.
	NotificationWarning
	// NotificationInfo represents an informational notification.
	NotificationInfo
	// NotificationLoading represents a loading notification with spinner.
	NotificationLoading
)

const (
	// LoadingNotificationID is the fixed ID for loading notifications.
	LoadingNotificationID = "__loading__"

	// DegradedNotificationID is the fixed ID for the storage warning.
	DegradedNotificationID = "__degraded__"

	maxNotifications = 10
)

// String returns the string representation of a NotificationType.
func (n NotificationType) String() string {
	switch n {
	case NotificationSuccess:
		return "success"
	case NotificationError:
		return "error"
	case NotificationWarning:
		return "warning"
	case NotificationInfo:
		return "info"
	case NotificationLoading:
		return "loading"
	default:
		return "unknown"
	}
}

// Notification represents a user-facing notification message.
type Notification struct {
	CreatedAt time.Time
	ID        string
	Message   string
	Type      NotificationType
	Duration  time.Duration
}

// IsExpired returns true if the notification has expired.
func (n *Notification) IsExpired() bool {
	if n.Duration <= 0 {
		return false
	}
	return time.Since(n.CreatedAt) > n.Duration
}

// DayCounts holds the two records shown under a counter.
type DayCounts struct {
	Today     counter.DayRecord
	Yesterday counter.DayRecord
}

// VoiceStatus is the last transcript seen by the voice inbox.
type VoiceStatus struct {
	At      time.Time
	Kind    models.Kind
	Text    string
	Matched bool
}

// State is the data shared by every tab.
type State struct {
	LastUpdated time.Time
	counts      map[models.Kind]DayCounts
	summaries   map[models.Kind]models.Summary
	degraded    map[models.Kind]bool
	voice       *VoiceStatus

	notifications []Notification
	mu            sync.RWMutex
	initial       bool
}

// NewState creates an empty state that is still loading.
func NewState() *State {
	return &State{
		counts:        make(map[models.Kind]DayCounts),
		summaries:     make(map[models.Kind]models.Summary),
		degraded:      make(map[models.Kind]bool),
		notifications: make([]Notification, 0),
		initial:       true,
	}
}

// IsInitialLoading returns true if initial data is still loading.
func (s *State) IsInitialLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initial
}

// SetInitialLoading marks whether initial data is still loading.
func (s *State) SetInitialLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initial = loading
}

// SetCounts replaces the records of every kind in counts.
func (s *State) SetCounts(counts map[models.Kind]DayCounts) {
	s.mu.Lock()
	defer s.mu.Unlock()

	maps.Copy(s.counts, counts)
	s.LastUpdated = time.Now()
}

// SetToday updates today's record for kind. A record for a later date moves
// the previous today into yesterday.
func (s *State) SetToday(kind models.Kind, rec counter.DayRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.counts[kind]
	if c.Today.Date.Before(rec.Date) && c.Today.Date.AddDays(1) == rec.Date {
		c.Yesterday = c.Today
	}
	c.Today = rec
	s.counts[kind] = c
	s.LastUpdated = time.Now()
}

// Counts returns the records shown for kind.
func (s *State) Counts(kind models.Kind) DayCounts {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counts[kind]
}

// SetSummary stores the aggregated history for a kind.
func (s *State) SetSummary(summary models.Summary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaries[summary.Kind] = summary
}

// Summary returns the aggregated history for kind.
func (s *State) Summary(kind models.Kind) (models.Summary, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	summary, ok := s.summaries[kind]
	return summary, ok
}

// SetDegraded records whether writes for kind are failing.
func (s *State) SetDegraded(kind models.Kind, degraded bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if degraded {
		s.degraded[kind] = true
	} else {
		delete(s.degraded, kind)
	}
}

// IsDegraded reports whether writes for kind are failing.
func (s *State) IsDegraded(kind models.Kind) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.degraded[kind]
}

// AnyDegraded reports whether any counter is failing to persist.
func (s *State) AnyDegraded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.degraded) > 0
}

// SetVoice records the latest transcript.
func (s *State) SetVoice(v VoiceStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.voice = &v
}

// Voice returns the latest transcript, if any.
func (s *State) Voice() (VoiceStatus, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.voice == nil {
		return VoiceStatus{}, false
	}
	return *s.voice, true
}

// AddNotification adds a new notification and returns its ID.
func (s *State) AddNotification(notifType NotificationType, message string, duration time.Duration) string {
	return s.putNotification(uuid.NewString(), notifType, message, duration)
}

// SetNotification adds or replaces the notification with a fixed id.
func (s *State) SetNotification(id string, notifType NotificationType, message string, duration time.Duration) {
	s.putNotification(id, notifType, message, duration)
}

func (s *State) putNotification(id string, notifType NotificationType, message string, duration time.Duration) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := Notification{
		ID:        id,
		Type:      notifType,
		Message:   message,
		CreatedAt: time.Now(),
		Duration:  duration,
	}

	for i := range s.notifications {
		if s.notifications[i].ID == id {
			s.notifications[i] = n
			return id
		}
	}

	s.notifications = append(s.notifications, n)

	// Keep only the last 10 notifications
	if len(s.notifications) > maxNotifications {
		s.notifications = s.notifications[len(s.notifications)-maxNotifications:]
	}

	return id
}

// RemoveNotification removes a notification by ID.
func (s *State) RemoveNotification(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// ClearExpiredNotifications removes all expired notifications.
func (s *State) ClearExpiredNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	s.notifications = active
}

// GetNotifications returns a copy of all active notifications.
func (s *State) GetNotifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}

	return active
}

// ClearAllNotifications removes all notifications.
func (s *State) ClearAllNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = make([]Notification, 0)
}

// SetLoadingNotification sets a loading notification message.
func (s *State) SetLoadingNotification(message string) {
	s.SetNotification(LoadingNotificationID, NotificationLoading, message, 0)
}

// ClearLoadingNotification removes the loading notification.
func (s *State) ClearLoadingNotification() {
	s.RemoveNotification(LoadingNotificationID)
}

// TimeSinceUpdate returns the duration since the last update.
func (s *State) TimeSinceUpdate() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.LastUpdated.IsZero() {
		return 0
	}
	return time.Since(s.LastUpdated)
}
