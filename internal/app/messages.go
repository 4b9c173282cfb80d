package app

import (
	"time"

	"github.com/j-veylop/dhikr-tally/internal/counter"
	"github.com/j-veylop/dhikr-tally/internal/models"
	"github.com/j-veylop/dhikr-tally/internal/services"
)

// TickMsg is sent periodically to trigger state refresh.
type TickMsg struct {
	Time time.Time
}

// CountsLoadedMsg contains today's and yesterday's records for every kind.
type CountsLoadedMsg struct {
	Counts map[models.Kind]DayCounts
}

// SummaryLoadedMsg contains the aggregated history of one kind.
type SummaryLoadedMsg struct {
	Summary models.Summary
}

// LoadSummaryMsg requests the history of a kind over a number of days.
type LoadSummaryMsg struct {
	Kind models.Kind
	Days int
}

// IncrementResultMsg is returned after a tap has been recorded.
type IncrementResultMsg struct {
	Kind   models.Kind
	Record counter.DayRecord
}

// CountChangedMsg is forwarded to tabs whenever a counter changes, whatever
// the source of the increment.
type CountChangedMsg struct {
	Kind   models.Kind
	Source string
	Record counter.DayRecord
}

// TargetReachedMsg is sent by a counter tab when its session reaches the
// target.
type TargetReachedMsg struct {
	Kind     models.Kind
	Category string
	Target   int
}

// DayChangedMsg is sent when the local date rolls over while the app runs.
type DayChangedMsg struct {
	Date counter.Date
}

// AddNotificationMsg requests adding a new notification.
type AddNotificationMsg struct {
	Message  string
	Type     NotificationType
	Duration time.Duration
}

// RemoveNotificationMsg requests removal of a notification.
type RemoveNotificationMsg struct {
	ID string
}

// ServiceEventMsg wraps a service event from the service manager.
type ServiceEventMsg struct {
	Event services.ServiceEvent
}

// ErrorMsg represents a general error.
type ErrorMsg struct {
	Error   error
	Context string
}

// TabSwitchMsg requests switching to a specific tab.
type TabSwitchMsg struct {
	Tab TabID
}

// ToggleHelpMsg toggles the help display.
type ToggleHelpMsg struct{}

// SubscriptionEventMsg is the callback wrapper for service subscription.
type SubscriptionEventMsg struct {
	Channel chan services.ServiceEvent
}
