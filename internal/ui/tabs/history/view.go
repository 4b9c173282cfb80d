package history

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/dhikr-tally/internal/models"
	"github.com/j-veylop/dhikr-tally/internal/ui/components"
	"github.com/j-veylop/dhikr-tally/internal/ui/styles"
)

// View renders the history tab.
func (m *Model) View() string {
	summary, ok := m.summary()
	if !ok {
		if m.loading {
			return m.renderLoading()
		}
		return m.renderEmpty()
	}

	sections := []string{m.renderHeader()}
	if !summary.HasData() {
		sections = append(sections, styles.HelpStyle.Render(
			fmt.Sprintf("No %s counted in the last %d days.", strings.ToLower(m.Kind().Title()), len(summary.Days)),
		))
	} else {
		sections = append(sections,
			m.renderStats(summary),
			m.renderDailyChart(summary),
			m.renderCategories(summary),
		)
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) renderLoading() string {
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(styles.HelpStyle.Render("Loading history data..."))
}

func (m *Model) renderEmpty() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		styles.HelpStyle.Render("No history loaded yet. Press r to refresh."),
	)
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) renderHeader() string {
	title := styles.TitleStyle.Render("History: " + m.Kind().Title())

	rangeStyle := lipgloss.NewStyle().
		Foreground(styles.Primary).
		Bold(true).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Primary)

	rangeIndicator := rangeStyle.Render(fmt.Sprintf("[t] %s", m.timeRange.String()))
	header := lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", rangeIndicator)

	kinds := make([]string, 0, len(models.Kinds))
	for i, k := range models.Kinds {
		if i == m.kindIndex {
			kinds = append(kinds, styles.SelectedListItemStyle.Render(k.Title()))
		} else {
			kinds = append(kinds, styles.ListItemStyle.Render(k.Title()))
		}
	}
	selector := styles.HelpStyle.Render("←/→ ") + strings.Join(kinds, styles.HelpStyle.Render(" · "))

	return lipgloss.JoinVertical(lipgloss.Left, header, selector, "")
}

func (m *Model) renderStats(s models.Summary) string {
	cardWidth := max(m.width-8, 40)

	stat := func(label, value string) string {
		return fmt.Sprintf("  %s %s",
			styles.ProgressLabelStyle.Width(14).Render(label),
			lipgloss.NewStyle().Bold(true).Foreground(styles.Primary).Render(value),
		)
	}

	best := "-"
	if s.BestDay.Total > 0 {
		best = fmt.Sprintf("%d on %s %s", s.BestDay.Total, s.BestDay.Date.Weekday().String()[:3], s.BestDay.Date)
	}

	titleIcon := lipgloss.NewStyle().Foreground(styles.Primary).Render("◈")
	rows := []string{
		fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render("Summary")),
		stat("Total", fmt.Sprintf("%d", s.Total)),
		stat("Daily average", fmt.Sprintf("%.1f", s.Average)),
		stat("Best day", best),
		stat("Streak", fmt.Sprintf("%d days", s.Streak)),
		stat("Active days", fmt.Sprintf("%d of %d", s.ActiveDays, len(s.Days))),
	}

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderDailyChart(s models.Summary) string {
	cardWidth := max(m.width-8, 40)

	titleIcon := lipgloss.NewStyle().Foreground(styles.Primary).Render("📈")
	rows := []string{
		fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render("Daily Counts")),
		"",
	}

	chartWidth := max(cardWidth-14, 30)
	chart := components.RenderLineChart(s.Series(), chartWidth, 8,
		fmt.Sprintf("Last %d days", len(s.Days)))
	for line := range strings.SplitSeq(chart, "\n") {
		rows = append(rows, "  "+line)
	}

	if len(s.Days) <= 7 {
		values := make([]int, len(s.Days))
		labels := make([]string, len(s.Days))
		for i, d := range s.Days {
			values[i] = d.Total
			labels[i] = d.Date.Weekday().String()[:3]
		}
		rows = append(rows, "", "  "+components.RenderWeekdayStrip(values, labels))
	}

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderCategories(s models.Summary) string {
	cardWidth := max(m.width-8, 40)

	titleIcon := lipgloss.NewStyle().Foreground(styles.Primary).Render("📅")
	rows := []string{
		fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render("By Phrase")),
		"",
	}

	values := make([]int, len(s.Categories))
	labels := make([]string, len(s.Categories))
	for i, c := range s.Categories {
		values[i] = c.Count
		labels[i] = truncate(c.Label, 28)
	}

	chart := components.RenderBarChart(values, labels, max(cardWidth-8, 30))
	for line := range strings.SplitSeq(chart, "\n") {
		rows = append(rows, "  "+line)
	}

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
