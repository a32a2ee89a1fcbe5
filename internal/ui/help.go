package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const helpKeyWidth = 10

// renderHelp renders the help overlay from the key map, so the listed keys
// are always the bound ones.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()
	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.theme.Warning)).
		Width(helpKeyWidth)

	var columns []string
	for _, sections := range m.keys.helpColumns() {
		var b strings.Builder
		for i, section := range sections {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(styles.AccentText.Bold(true).Render(section.title))
			b.WriteString("\n")
			for _, binding := range section.bindings {
				h := binding.Help()
				b.WriteString(keyStyle.Render(h.Key))
				b.WriteString(styles.Text.Render(h.Desc))
				b.WriteString("\n")
			}
		}
		columns = append(columns, lipgloss.NewStyle().Width(32).Render(strings.TrimSuffix(b.String(), "\n")))
	}

	content := styles.Text.Bold(true).Render("Keyboard Shortcuts") + "\n" +
		styles.FaintText.Render(strings.Repeat("─", 30)) + "\n\n" +
		lipgloss.JoinHorizontal(lipgloss.Top, columns...) + "\n\n" +
		styles.FaintText.Render("press any key to close")

	return centerModal(m.theme, content, 72, m.width, m.height)
}
