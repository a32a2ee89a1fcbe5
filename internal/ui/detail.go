package ui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-faster/errors"

	"github.com/five82/vitrine/internal/catalog"
)

// detailState tracks the product shown in the detail pane. Responses for
// any other id are stale and dropped.
type detailState struct {
	id       string
	loading  bool
	product  *catalog.Product
	rendered string
	err      error
}

type detailMsg struct {
	id       string
	product  catalog.Product
	rendered string
	err      error
}

// selectDetail points the detail pane at the selected product and fetches
// its full record unless it is already shown.
func (m *Model) selectDetail() tea.Cmd {
	p, ok := m.selectedProduct()
	if !ok {
		m.detail = detailState{}
		return nil
	}
	if m.detail.id == p.ID && (m.detail.loading || m.detail.product != nil) {
		return nil
	}
	m.detail = detailState{id: p.ID, loading: true}
	if m.client == nil {
		return nil
	}
	return fetchDetailCmd(m.ctx, m.client, p.ID, m.detailTextWidth())
}

func (m Model) detailTextWidth() int {
	if m.width >= LayoutExtraWideWidth {
		return m.width - m.width*40/100 - 6
	}
	return max(m.width-m.width*50/100-6, 20)
}

func fetchDetailCmd(ctx context.Context, client catalog.Fetcher, id string, width int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, DetailFetchTimeout)
		defer cancel()

		product, err := client.FetchProduct(ctx, id)
		if err != nil {
			return detailMsg{id: id, err: err}
		}
		rendered, err := renderMarkdown(product.Description, width)
		if err != nil {
			rendered = product.Description
		}
		return detailMsg{id: id, product: product, rendered: rendered}
	}
}

func (m *Model) applyDetail(msg detailMsg) {
	if msg.id != m.detail.id {
		return
	}
	m.detail.loading = false
	if msg.err != nil {
		m.detail.err = msg.err
		return
	}
	product := msg.product
	m.detail.product = &product
	m.detail.rendered = msg.rendered
	m.detail.err = nil
}

// renderMarkdown renders a product description for the terminal.
func renderMarkdown(text string, width int) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(max(width, 20)),
	)
	if err != nil {
		return "", errors.Wrap(err, "create markdown renderer")
	}
	out, err := r.Render(text)
	if err != nil {
		return "", errors.Wrap(err, "render markdown")
	}
	return strings.Trim(out, "\n"), nil
}

// renderDetail renders the detail pane for the selected product.
func (m Model) renderDetail(width, height int) string {
	styles := m.theme.Styles().WithBackground(m.theme.SurfaceAlt)
	bg := NewBgStyle(m.theme.SurfaceAlt)

	listed, ok := m.selectedProduct()
	if !ok {
		return styles.MutedText.Render("Select a product")
	}
	p := listed
	if m.detail.product != nil && m.detail.id == listed.ID {
		p = *m.detail.product
	}

	row := func(label, value string, style lipgloss.Style) string {
		return bg.Render(padRight(label, 10), styles.MutedText) + bg.Render(value, style)
	}

	lines := []string{
		bg.Render(truncate(p.Name, width), styles.Text.Bold(true)),
		"",
		row("Price", formatPrice(p.Price), styles.Price),
	}
	if p.CategoryName != "" {
		lines = append(lines, row("Category", p.CategoryName, styles.Text))
	}
	if stars := formatRating(p.Rating); stars != "" {
		lines = append(lines, row("Rating", stars, styles.WarningText))
	}
	if p.Status != "" {
		lines = append(lines, bg.Render(padRight("Status", 10), styles.MutedText)+styles.StatusStyle(p.Status).Render(p.Status))
	}

	var shelves []string
	if m.compare != nil && m.compare.Contains(p.ID) {
		shelves = append(shelves, "compare")
	}
	if m.wishlist != nil && m.wishlist.Contains(p.ID) {
		shelves = append(shelves, "wishlist")
	}
	if len(shelves) > 0 {
		lines = append(lines, row("On", strings.Join(shelves, ", "), styles.AccentText))
	}
	lines = append(lines, "")

	switch {
	case m.detail.loading:
		lines = append(lines, bg.Render(m.spinner.View()+" Loading description...", styles.MutedText))
	case m.detail.err != nil:
		lines = append(lines, bg.Render(truncate("Description unavailable: "+m.detail.err.Error(), width), styles.DangerText))
	case m.detail.rendered != "":
		lines = append(lines, strings.Split(m.detail.rendered, "\n")...)
	}

	if height > 0 && len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}
