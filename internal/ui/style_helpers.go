package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// BgStyle renders text segments on one background color. Lipgloss resets
// the background after every styled segment, so the spaces between words
// and segments have to carry the color themselves.
// See: https://github.com/charmbracelet/lipgloss/discussions/78
type BgStyle struct {
	bg   lipgloss.Color
	fill lipgloss.Style
}

// NewBgStyle creates a background helper for the given color.
func NewBgStyle(bgColor string) BgStyle {
	bg := lipgloss.Color(bgColor)
	return BgStyle{bg: bg, fill: lipgloss.NewStyle().Background(bg)}
}

// Render styles each word of text and joins the words with background
// spaces. Runs of spaces are kept.
func (b BgStyle) Render(text string, style lipgloss.Style) string {
	if text == "" {
		return ""
	}
	style = style.Background(b.bg)
	words := strings.Split(text, " ")
	for i, w := range words {
		if w != "" {
			words[i] = style.Render(w)
		}
	}
	return strings.Join(words, b.Space())
}

// Space returns a single background space.
func (b BgStyle) Space() string {
	return b.Spaces(1)
}

// Spaces returns n background spaces.
func (b BgStyle) Spaces(n int) string {
	return b.fill.Render(strings.Repeat(" ", max(n, 0)))
}

// Sep renders a separator on the background.
func (b BgStyle) Sep(sep string) string {
	return b.fill.Render(sep)
}

// Join joins rendered parts with a background separator.
func (b BgStyle) Join(parts []string, sep string) string {
	return strings.Join(parts, b.Sep(sep))
}

// Chip renders a bracketed filter chip.
func (b BgStyle) Chip(label string, style lipgloss.Style) string {
	return b.Render("["+label+"]", style)
}

// Line pads rendered content to width so the whole row carries the
// background.
func (b BgStyle) Line(content string, width int) string {
	return b.fill.Width(width).Render(content)
}
