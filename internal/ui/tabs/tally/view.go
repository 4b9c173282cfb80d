package tally

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/dhikr-tally/internal/models"
	"github.com/j-veylop/dhikr-tally/internal/ui/components"
	"github.com/j-veylop/dhikr-tally/internal/ui/styles"
)

// View renders the tally tab.
func (m *Model) View() string {
	if m.state.IsInitialLoading() {
		return components.RenderSpinnerCentered(m.spinner, m.width, m.height)
	}

	sections := []string{
		m.renderTitle(),
		m.renderPhraseSelector(),
		m.renderPhrase(),
		m.renderCounter(),
	}
	if m.showReminder {
		sections = append(sections, m.renderReminder())
	}
	if m.editing {
		sections = append(sections, m.renderTargetInput())
	}
	sections = append(sections, m.renderDaily())

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render(m.opts.Kind.Title())

	var hint string
	switch {
	case m.opts.PerRound:
		hint = fmt.Sprintf("Rounds of %d, one completion saved per round", m.session.Target())
	case m.session.Target() > 0:
		hint = fmt.Sprintf("Session target %d", m.session.Target())
	default:
		hint = "Every count is saved to today's tally"
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, styles.HelpStyle.Render(hint), "")
}

func (m *Model) renderPhraseSelector() string {
	phrases := m.phrases()
	if len(phrases) == 0 {
		return styles.HelpStyle.Render("No phrases configured") + "\n"
	}

	items := make([]string, 0, len(phrases))
	for i, p := range phrases {
		if i == m.selected {
			items = append(items, styles.SelectedListItemStyle.Render("▸ "+p.Label))
		} else {
			items = append(items, styles.ListItemStyle.Render("  "+p.Label))
		}
	}

	width := max(m.width-8, 40)
	row := lipgloss.JoinHorizontal(lipgloss.Top, strings.Join(items, "   "))
	if lipgloss.Width(row) > width {
		row = lipgloss.JoinVertical(lipgloss.Left, items...)
	}
	return row + "\n"
}

func (m *Model) renderPhrase() string {
	phrase, ok := m.currentPhrase()
	if !ok {
		return ""
	}

	var lines []string
	if phrase.Arabic != "" {
		lines = append(lines, styles.ArabicStyle.Render(phrase.Arabic))
	}
	if phrase.Transliteration != "" {
		lines = append(lines, phrase.Transliteration)
	}
	if phrase.Meaning != "" {
		lines = append(lines, styles.MeaningStyle.Render(phrase.Meaning))
	}
	if len(lines) == 0 {
		lines = append(lines, phrase.Label)
	}

	return styles.CardStyle.Width(max(m.width-8, 40)).Render(
		lipgloss.JoinVertical(lipgloss.Left, lines...),
	)
}

func (m *Model) renderCounter() string {
	count := styles.GetCountStyle(m.session.Band()).
		Width(14).
		Render(strconv.Itoa(m.session.Count()))

	parts := []string{count}
	if m.session.Target() > 0 {
		parts = append(parts, "", m.bar.View())
	}
	if m.session.Reached() {
		done := "Target reached"
		if m.opts.StopAtTarget {
			done += ", press r for a new round"
		}
		parts = append(parts, styles.SuccessTextStyle.Render("✓ "+done))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...) + "\n"
}

func (m *Model) renderReminder() string {
	r := models.TahlilReminder
	body := lipgloss.JoinVertical(lipgloss.Left,
		styles.CardTitleStyle.Render("Complete the hundred with the tahlil"),
		styles.ArabicStyle.Render(r.Arabic),
		r.Transliteration,
		styles.MeaningStyle.Render(r.Meaning),
	)
	return styles.ReminderStyle.Width(max(m.width-10, 40)).Render(body) + "\n"
}

func (m *Model) renderTargetInput() string {
	return styles.FocusedBorderStyle.Render(
		fmt.Sprintf("New target: %s", m.targetInput.View()),
	) + "\n"
}

func (m *Model) renderDaily() string {
	counts := m.state.Counts(m.opts.Kind)

	label := "Today"
	if m.opts.PerRound {
		label = "Rounds today"
	}

	var rows []string
	titleIcon := lipgloss.NewStyle().Foreground(styles.Primary).Render("◈")
	rows = append(rows, fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render("Daily tally")))
	rows = append(rows, fmt.Sprintf("  %s %s   %s %s",
		styles.HelpStyle.Render(label),
		lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(counts.Today.Total)),
		styles.HelpStyle.Render("Yesterday"),
		strconv.Itoa(counts.Yesterday.Total),
	))

	if len(counts.Today.Details) > 0 {
		rows = append(rows, "")
		for _, id := range counts.Today.Categories() {
			rows = append(rows, fmt.Sprintf("  %s %d",
				styles.ListItemStyle.Render(m.catalogue.Label(m.opts.Kind, id)+":"),
				counts.Today.Details[id],
			))
		}
	}

	if m.state.IsDegraded(m.opts.Kind) {
		rows = append(rows, "", styles.WarningTextStyle.Render("  ⚠ Storage unavailable, counting in memory only"))
	}

	return styles.CardStyle.Width(max(m.width-8, 40)).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}
