package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/dhikr-tally/internal/models"
	"github.com/j-veylop/dhikr-tally/internal/services"
)

const (
	// DefaultTickInterval is the default interval between ticks.
	DefaultTickInterval = 2 * time.Second

	// DefaultNotificationDuration is the default duration for notifications.
	DefaultNotificationDuration = 5 * time.Second

	// QuickNotificationDuration is for brief notifications.
	QuickNotificationDuration = 3 * time.Second

	// LongNotificationDuration is for important notifications.
	LongNotificationDuration = 10 * time.Second
)

// tickCmd returns a command that sends a TickMsg after the specified interval.
func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// defaultTickCmd returns a command that sends a TickMsg after the default interval.
func defaultTickCmd() tea.Cmd {
	return tickCmd(DefaultTickInterval)
}

// loadCountsCmd returns a command that reads today's and yesterday's
// records of every kind.
func loadCountsCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		counts := make(map[models.Kind]DayCounts, len(models.Kinds))
		for _, kind := range models.Kinds {
			store := mgr.Store(kind)
			counts[kind] = DayCounts{
				Today:     store.Today(ctx),
				Yesterday: store.Yesterday(ctx),
			}
		}
		return CountsLoadedMsg{Counts: counts}
	}
}

// loadSummaryCmd returns a command that aggregates the history of kind.
func loadSummaryCmd(mgr *services.Manager, kind models.Kind, days int) tea.Cmd {
	return func() tea.Msg {
		return SummaryLoadedMsg{Summary: mgr.Summary(context.Background(), kind, days)}
	}
}

// incrementCmd returns a command that records one tap.
func incrementCmd(mgr *services.Manager, kind models.Kind, category string) tea.Cmd {
	return func() tea.Msg {
		rec := mgr.Increment(context.Background(), kind, category)
		return IncrementResultMsg{Kind: kind, Record: rec}
	}
}

// subscribeToServicesCmd returns a command that subscribes to service events.
func subscribeToServicesCmd(mgr *services.Manager) tea.Cmd {
	ch, _ := mgr.Subscribe()
	return func() tea.Msg {
		return SubscriptionEventMsg{Channel: ch}
	}
}

// waitForServiceEventCmd returns a command that waits for the next service event.
func waitForServiceEventCmd(ch <-chan services.ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return ServiceEventMsg{Event: event}
	}
}

// clearNotificationCmd returns a command that removes a notification after a delay.
func clearNotificationCmd(id string, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(_ time.Time) tea.Msg {
		return RemoveNotificationMsg{ID: id}
	})
}

func notifyCmd(notifType NotificationType, message string, duration time.Duration) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     notifType,
			Message:  message,
			Duration: duration,
		}
	}
}

// notifySuccessCmd returns a command that adds a success notification.
func notifySuccessCmd(message string) tea.Cmd {
	return notifyCmd(NotificationSuccess, message, DefaultNotificationDuration)
}

// notifyErrorCmd returns a command that adds an error notification.
func notifyErrorCmd(message string) tea.Cmd {
	return notifyCmd(NotificationError, message, LongNotificationDuration)
}

// notifyInfoCmd returns a command that adds an info notification.
func notifyInfoCmd(message string) tea.Cmd {
	return notifyCmd(NotificationInfo, message, QuickNotificationDuration)
}

// Commands provides a public interface to the command functions.
type Commands struct {
	manager *services.Manager
}

// NewCommands creates a new Commands instance.
func NewCommands(mgr *services.Manager) *Commands {
	return &Commands{manager: mgr}
}

// Increment returns a command that records one tap for kind/category.
func (c *Commands) Increment(kind models.Kind, category string) tea.Cmd {
	if c.manager == nil {
		return nil
	}
	return incrementCmd(c.manager, kind, category)
}

// LoadCounts returns a command that reloads every counter.
func (c *Commands) LoadCounts() tea.Cmd {
	if c.manager == nil {
		return nil
	}
	return loadCountsCmd(c.manager)
}

// LoadSummary returns a command that aggregates the history of kind.
func (c *Commands) LoadSummary(kind models.Kind, days int) tea.Cmd {
	if c.manager == nil {
		return nil
	}
	return loadSummaryCmd(c.manager, kind, days)
}

// SetVoiceTarget points voice triggers at kind/category.
func (c *Commands) SetVoiceTarget(kind models.Kind, category string) {
	if c.manager != nil {
		c.manager.SetVoiceTarget(kind, category)
	}
}

// TargetReached returns a command announcing a completed session.
func (c *Commands) TargetReached(kind models.Kind, category string, target int) tea.Cmd {
	return func() tea.Msg {
		return TargetReachedMsg{Kind: kind, Category: category, Target: target}
	}
}

// NotifySuccess returns a command that adds a success notification.
func (c *Commands) NotifySuccess(message string) tea.Cmd {
	return notifySuccessCmd(message)
}

// NotifyError returns a command that adds an error notification.
func (c *Commands) NotifyError(message string) tea.Cmd {
	return notifyErrorCmd(message)
}

// NotifyInfo returns a command that adds an info notification.
func (c *Commands) NotifyInfo(message string) tea.Cmd {
	return notifyInfoCmd(message)
}
