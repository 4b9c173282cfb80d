package info

import (
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/dhikr-tally/internal/config"
	"github.com/j-veylop/dhikr-tally/internal/models"
	"github.com/j-veylop/dhikr-tally/internal/ui/styles"
	"github.com/j-veylop/dhikr-tally/internal/version"
)

// View renders the info tab.
func (m *Model) View() string {
	sections := []string{
		m.renderTitle(),
		m.renderStorageCard(),
		m.renderVoiceCard(),
		m.renderAboutCard(),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Info")
	subtitle := styles.HelpStyle.Render("Configuration and application information")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) cardWidth() int {
	return min(max(m.width-8, 50), 80)
}

func (m *Model) renderStorageCard() string {
	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Storage"), "")

	if m.config == nil {
		rows = append(rows, styles.HelpStyle.Render("Configuration not loaded"))
	} else {
		rows = append(rows, m.renderConfigRow("Backend", m.backend))
		switch m.config.StorageBackend {
		case config.BackendRedis:
			rows = append(rows, m.renderConfigRow("Redis", fmt.Sprintf("%s db %d", m.config.RedisAddr, m.config.RedisDB)))
		case config.BackendMemory:
			rows = append(rows, m.renderConfigRow("Location", "in memory, lost on exit"))
		default:
			rows = append(rows, m.renderConfigRow("Database", m.config.DatabasePath))
		}
		rows = append(rows,
			m.renderConfigRow("Phrases", orDefault(m.config.PhrasesPath, "built in")),
			m.renderConfigRow("Tasbeeh Target", strconv.Itoa(m.config.TasbeehTarget)),
			m.renderConfigRow("History Days", strconv.Itoa(m.config.HistoryDays)),
			m.renderConfigRow("Metrics", orDefault(m.config.MetricsAddr, "disabled")),
			m.renderConfigRow("Log File", orDefault(m.config.LogPath, "disabled")),
		)
	}

	rows = append(rows, "")
	for _, k := range models.Kinds {
		status := styles.SuccessTextStyle.Render("saving")
		if m.state.IsDegraded(k) {
			status = styles.WarningTextStyle.Render("not saving, in memory only")
		}
		rows = append(rows, m.renderConfigRow(k.Title(), status))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderVoiceCard() string {
	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Voice"), "")

	if m.config == nil || !m.config.VoiceEnabled() {
		rows = append(rows, styles.HelpStyle.Render("Voice inbox disabled. Set VOICE_INBOX to enable."))
	} else {
		rows = append(rows,
			m.renderConfigRow("Inbox", m.config.VoiceInbox),
			m.renderConfigRow("Transcriber", orDefault(m.config.TranscribeURL, "text files only")),
		)
	}

	if v, ok := m.state.Voice(); ok {
		result := styles.WarningTextStyle.Render("no trigger")
		if v.Matched {
			result = styles.SuccessTextStyle.Render("counted " + v.Kind.Title())
		}
		rows = append(rows,
			"",
			m.renderConfigRow("Last Heard", fmt.Sprintf("%q", v.Text)),
			m.renderConfigRow("Result", result),
			m.renderConfigRow("At", v.At.Format(time.Kitchen)),
		)
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderConfigRow renders a configuration key-value row.
func (m *Model) renderConfigRow(label, value string) string {
	labelStyle := lipgloss.NewStyle().
		Width(18).
		Foreground(styles.TextMuted)

	valueStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary)

	return labelStyle.Render(label+":") + " " + valueStyle.Render(value)
}

func (m *Model) renderAboutCard() string {
	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("About Dhikr Tally"), "")

	rows = append(rows,
		m.renderConfigRow("Version", version.GetVersion()),
		m.renderConfigRow("Build Date", version.GetDate()),
		m.renderConfigRow("Git Commit", version.GetCommit()),
		m.renderConfigRow("Go Version", runtime.Version()),
		m.renderConfigRow("Platform", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)),
	)

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
