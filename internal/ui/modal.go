package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Modal is a dialog drawn over the active view. While open it receives
// every key; HandleKey reports whether it should close. Criteria changes a
// modal makes are picked up from the filter engine revision.
type Modal interface {
	HandleKey(msg tea.KeyMsg, keys keyMap) (cmd tea.Cmd, closed bool)
	View(theme Theme, width, height int) string
}
