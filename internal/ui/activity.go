package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/vitrine/internal/logtail"
)

type activityMsg struct {
	entries []logtail.Entry
	err     error
}

func (m *Model) initActivityViewport() {
	m.activityViewport = viewport.New(m.width-2, m.contentHeight()-2)
}

func (m *Model) resizeActivityViewport() {
	m.activityViewport.Width = max(m.width-2, 0)
	m.activityViewport.Height = max(m.contentHeight()-2, 0)
}

// refreshActivity reads the tail of the log file.
func (m Model) refreshActivity() tea.Cmd {
	path := m.logPath
	if path == "" {
		return nil
	}
	return func() tea.Msg {
		entries, err := logtail.ReadEntries(path, ActivityLineLimit)
		return activityMsg{entries: entries, err: err}
	}
}

func (m *Model) applyActivity(msg activityMsg) {
	m.activityErr = msg.err
	if msg.err != nil {
		return
	}
	following := m.activityViewport.AtBottom() || m.activityViewport.TotalLineCount() == 0
	m.activityViewport.SetContent(m.formatActivity(msg.entries))
	if following {
		m.activityViewport.GotoBottom()
	}
}

func (m Model) formatActivity(entries []logtail.Entry) string {
	styles := m.theme.Styles()
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		line := truncate(e.Format(), max(m.width-4, 20))
		lines = append(lines, m.levelStyle(e.Level, styles).Render(line))
	}
	return strings.Join(lines, "\n")
}

func (m Model) levelStyle(level string, styles Styles) lipgloss.Style {
	switch level {
	case "error", "dpanic", "panic", "fatal":
		return styles.DangerText
	case "warn":
		return styles.WarningText
	case "debug":
		return styles.FaintText
	default:
		return styles.Text
	}
}

// handleActivityKey processes keyboard input for the activity view.
func (m Model) handleActivityKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Down):
		m.activityViewport.ScrollDown(1)
	case key.Matches(msg, m.keys.Up):
		m.activityViewport.ScrollUp(1)
	case key.Matches(msg, m.keys.Top):
		m.activityViewport.GotoTop()
	case key.Matches(msg, m.keys.Bottom):
		m.activityViewport.GotoBottom()
	case key.Matches(msg, m.keys.Reload):
		return m, m.refreshActivity()
	}
	return m, nil
}

// renderActivity renders the log tail.
func (m Model) renderActivity() string {
	styles := m.theme.Styles()
	title := "Activity " + truncateMiddle(m.logPath, 50)

	var content string
	switch {
	case m.logPath == "":
		content = styles.MutedText.Render("Logging is not configured")
	case m.activityErr != nil:
		content = styles.DangerText.Render(truncate("Log unavailable: "+m.activityErr.Error(), m.width-4))
	default:
		content = m.activityViewport.View()
	}
	return m.renderTitledBox(title, content, m.width, m.contentHeight(), true)
}
