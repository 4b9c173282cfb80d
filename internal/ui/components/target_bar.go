package components

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/dhikr-tally/internal/counter"
	"github.com/j-veylop/dhikr-tally/internal/ui/styles"
)

var lastID atomic.Int64

// AnimationTickMsg advances the fill animation of one TargetBar.
type AnimationTickMsg struct {
	Time time.Time
	ID   int
	tag  int
}

// TargetBar renders session progress toward a target. The fill color
// follows the session's progress band.
type TargetBar struct {
	progress       progress.Model
	id             int
	tag            int
	count          int
	target         int
	currentPercent float64
	targetPercent  float64
}

// NewTargetBar creates a bar of the given width.
func NewTargetBar(width int) TargetBar {
	p := progress.New(
		progress.WithSolidFill(string(styles.BandStartColor)),
		progress.WithWidth(max(width, 10)),
		progress.WithoutPercentage(),
	)
	p.EmptyColor = string(styles.BgLight)

	return TargetBar{progress: p, id: int(lastID.Add(1))}
}

// ID returns the bar's unique identifier.
func (b TargetBar) ID() int { return b.id }

func (b TargetBar) tick() tea.Cmd {
	id, tag := b.id, b.tag
	return tea.Tick(time.Millisecond*50, func(t time.Time) tea.Msg {
		return AnimationTickMsg{Time: t, ID: id, tag: tag}
	})
}

// Update moves the displayed fill toward the latest value. Ticks addressed
// to other bars, or made stale by a later Set, are ignored.
func (b TargetBar) Update(msg tea.Msg) (TargetBar, tea.Cmd) {
	tick, ok := msg.(AnimationTickMsg)
	if !ok || tick.ID != b.id || tick.tag != b.tag {
		return b, nil
	}

	diff := b.targetPercent - b.currentPercent
	if diff == 0 {
		return b, nil
	}

	step := max(abs(diff)/4, 0.01)
	switch {
	case abs(diff) <= step:
		b.currentPercent = b.targetPercent
	case diff > 0:
		b.currentPercent += step
	default:
		b.currentPercent -= step
	}

	return b, b.tick()
}

// Set records a new count and target and restarts the fill animation.
func (b *TargetBar) Set(count, target int) tea.Cmd {
	b.count = count
	b.target = target
	b.targetPercent = percentOf(count, target)
	b.tag++
	return b.tick()
}

// SetWidth sets the progress bar width.
func (b *TargetBar) SetWidth(width int) {
	b.progress.Width = max(width, 10)
}

// Count returns the last count set on the bar.
func (b TargetBar) Count() int { return b.count }

// Percent returns the fill currently displayed, in [0, 1].
func (b TargetBar) Percent() float64 { return b.currentPercent }

// View renders the bar with a "count / target" label. Without a target only
// the count is shown.
func (b TargetBar) View() string {
	band := counter.BandFor(b.count, b.target)
	color := styles.BandColor(band)

	labelStyle := lipgloss.NewStyle().Foreground(color).Bold(true)
	if b.target <= 0 {
		return labelStyle.Render(fmt.Sprintf("%d", b.count))
	}

	p := b.progress
	p.FullColor = string(color)

	return lipgloss.JoinHorizontal(
		lipgloss.Center,
		p.ViewAs(b.currentPercent),
		" ",
		labelStyle.Render(fmt.Sprintf("%d / %d", b.count, b.target)),
	)
}

// SimpleTargetBar renders a static bar without a progress model, for
// one-line summaries.
func SimpleTargetBar(count, target, width int) string {
	width = max(width, 5)
	filled := int(percentOf(count, target) * float64(width))
	color := styles.BandColor(counter.BandFor(count, target))

	bar := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled)) +
		lipgloss.NewStyle().Foreground(styles.Subtle).Render(strings.Repeat("░", width-filled))

	return fmt.Sprintf("[%s] %d/%d", bar, count, target)
}

func percentOf(count, target int) float64 {
	if target <= 0 {
		return 0
	}
	return min(max(float64(count)/float64(target), 0), 1)
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
