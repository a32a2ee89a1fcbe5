package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/five82/vitrine/internal/shelf"
)

// handleCompareKey processes keyboard input for the compare view.
func (m Model) handleCompareKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.compare == nil {
		return m, nil
	}
	items := m.compareSnap.Items

	switch {
	case key.Matches(msg, m.keys.Right), key.Matches(msg, m.keys.Down):
		if m.compareCol < len(items)-1 {
			m.compareCol++
		}
	case key.Matches(msg, m.keys.Left), key.Matches(msg, m.keys.Up):
		if m.compareCol > 0 {
			m.compareCol--
		}
	case key.Matches(msg, m.keys.Remove):
		if m.compareCol < len(items) {
			m.compare.Remove(m.ctx, items[m.compareCol].ID)
		}
	case key.Matches(msg, m.keys.ClearAll):
		m.compare.Clear(m.ctx)
	case key.Matches(msg, m.keys.HideCompareBar):
		m.compare.SetVisible(!m.compare.Visible())
	}

	m.syncShelves()
	return m, nil
}

// handleWishlistKey processes keyboard input for the wishlist view.
func (m Model) handleWishlistKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.wishlist == nil {
		return m, nil
	}
	items := m.wishlistSnap.Items

	switch {
	case key.Matches(msg, m.keys.Down):
		if m.wishlistRow < len(items)-1 {
			m.wishlistRow++
		}
	case key.Matches(msg, m.keys.Up):
		if m.wishlistRow > 0 {
			m.wishlistRow--
		}
	case key.Matches(msg, m.keys.Top):
		m.wishlistRow = 0
	case key.Matches(msg, m.keys.Bottom):
		m.wishlistRow = max(len(items)-1, 0)
	case key.Matches(msg, m.keys.Remove):
		if m.wishlistRow < len(items) {
			m.wishlist.Remove(m.ctx, items[m.wishlistRow].ID)
		}
	case key.Matches(msg, m.keys.ClearAll):
		m.wishlist.Clear(m.ctx)
	case key.Matches(msg, m.keys.AddCompare):
		// Moving keeps the item wishlisted when compare is full.
		if m.wishlistRow < len(items) && m.compare != nil {
			item := items[m.wishlistRow]
			if m.compare.Add(m.ctx, item) == shelf.Added {
				m.wishlist.Remove(m.ctx, item.ID)
			}
		}
	}

	m.syncShelves()
	return m, nil
}

// renderCompare renders compared items side by side, one column each.
func (m Model) renderCompare() string {
	styles := m.theme.Styles()
	height := m.contentHeight()
	snap := m.compareSnap

	title := fmt.Sprintf("Compare %d/%d", len(snap.Items), snap.Capacity)
	if msg := emptyShelfMessage(snap, "Compare is empty. Press a on a product to add it."); msg != "" {
		return m.renderTitledBox(title, styles.MutedText.Render(msg), m.width, height, true)
	}

	labelWidth := 10
	colWidth := max((m.width-2-labelWidth)/len(snap.Items), 12)
	cheapest := lowestPrice(snap.Items)

	type field struct {
		label  string
		render func(shelf.Item) string
	}
	fields := []field{
		{"Name", func(it shelf.Item) string { return it.Name }},
		{"Price", func(it shelf.Item) string { return formatPrice(it.Price) }},
		{"Category", func(it shelf.Item) string { return it.Category }},
		{"Rating", func(it shelf.Item) string { return formatRating(it.Rating) }},
		{"Added", func(it shelf.Item) string { return it.AddedAt.Local().Format("Jan 2 15:04") }},
	}

	var lines []string
	for _, f := range fields {
		var b strings.Builder
		b.WriteString(styles.MutedText.Width(labelWidth).Render(f.label))
		for i, item := range snap.Items {
			style := styles.Text
			switch {
			case i == m.compareCol:
				style = styles.Selected
			case f.label == "Price" && item.Price.Equal(cheapest):
				style = styles.SuccessText
			}
			b.WriteString(style.Width(colWidth).Render(truncate(f.render(item), colWidth-1)))
		}
		lines = append(lines, b.String())
	}
	lines = append(lines, "", styles.FaintText.Render("h/l select · d remove · D clear"))

	return m.renderTitledBox(title, strings.Join(lines, "\n"), m.width, height, true)
}

// renderWishlist renders the wishlist as rows.
func (m Model) renderWishlist() string {
	styles := m.theme.Styles()
	height := m.contentHeight()
	snap := m.wishlistSnap

	title := fmt.Sprintf("Wishlist %d/%d", len(snap.Items), snap.Capacity)
	if msg := emptyShelfMessage(snap, "Wishlist is empty. Press w on a product to save it."); msg != "" {
		return m.renderTitledBox(title, styles.MutedText.Render(msg), m.width, height, true)
	}

	width := m.width - 2
	rows := height - 2
	start := 0
	if rows > 0 && m.wishlistRow >= rows {
		start = m.wishlistRow - rows + 1
	}

	var lines []string
	for i := start; i < len(snap.Items) && (rows <= 0 || i < start+rows); i++ {
		item := snap.Items[i]
		selected := i == m.wishlistRow
		bgColor := m.theme.FocusBg
		if selected {
			bgColor = m.theme.SelectionBg
		}
		bg := NewBgStyle(bgColor)

		var nameStyle, metaStyle, priceStyle lipgloss.Style
		if selected {
			sel := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.SelectionText))
			nameStyle, metaStyle, priceStyle = sel, sel, sel
		} else {
			nameStyle, metaStyle, priceStyle = styles.Text, styles.MutedText, styles.Price
		}

		price := formatPrice(item.Price)
		meta := item.Category
		nameWidth := max(width-len(price)-len(meta)-8, 10)
		content := bg.Render(truncate(item.Name, nameWidth), nameStyle) +
			bg.Render(" · ", metaStyle) + bg.Render(price, priceStyle)
		if meta != "" {
			content += bg.Render(" · "+meta, metaStyle)
		}
		lines = append(lines, bg.Line(content, width))
	}

	return m.renderTitledBox(title, strings.Join(lines, "\n"), m.width, height, true)
}

func emptyShelfMessage(snap shelf.Snapshot, empty string) string {
	switch {
	case snap.State != shelf.Ready:
		return "Loading saved items..."
	case len(snap.Items) == 0:
		return empty
	default:
		return ""
	}
}

func lowestPrice(items []shelf.Item) decimal.Decimal {
	if len(items) == 0 {
		return decimal.Zero
	}
	low := items[0].Price
	for _, it := range items[1:] {
		low = decimal.Min(low, it.Price)
	}
	return low
}
