package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/five82/vitrine/internal/catalog"
	"github.com/five82/vitrine/internal/filter"
	"github.com/five82/vitrine/internal/shelf"
	"github.com/five82/vitrine/internal/state"
)

type listingMsg struct {
	ticket state.Ticket
	page   catalog.Page
	err    error
}

type categoriesMsg struct {
	categories []catalog.Category
	metadata   *catalog.FilterMetadata
	err        error
}

// loadListing begins a fetch for the current criteria. The ticket is taken
// here, on the update goroutine, so gesture order decides which response
// wins.
func (m Model) loadListing() tea.Cmd {
	if m.client == nil {
		return nil
	}
	ticket := m.listing.Begin(m.ctx, m.engine.ToQuery())
	client := m.client
	return func() tea.Msg {
		page, err := client.FetchProducts(ticket.Ctx, ticket.Query)
		return listingMsg{ticket: ticket, page: page, err: err}
	}
}

// reload refetches the listing after a criteria change.
func (m *Model) reload() tea.Cmd {
	m.selectedRow = 0
	cmd := m.loadListing()
	m.snapshot = m.listing.Snapshot()
	return cmd
}

func (m Model) handleListing(msg listingMsg) (tea.Model, tea.Cmd) {
	applied := m.listing.Complete(msg.ticket, msg.page, msg.err)
	m.snapshot = m.listing.Snapshot()
	if !applied {
		m.logger.Debug("stale listing response discarded", zap.Uint64("seq", msg.ticket.Seq))
		return m, nil
	}
	if msg.err != nil {
		m.logger.Warn("listing fetch failed", zap.Error(msg.err))
		return m, nil
	}
	m.selectedRow = clampIndex(m.selectedRow, len(m.snapshot.Results))
	next := m.selectDetail()
	return m, next
}

func fetchCategoriesCmd(ctx context.Context, client catalog.Fetcher) tea.Cmd {
	return func() tea.Msg {
		var (
			msg categoriesMsg
			g   errgroup.Group
		)
		g.Go(func() error {
			cats, err := client.FetchCategories(ctx)
			msg.categories = cats
			return err
		})
		g.Go(func() error {
			meta, err := client.FetchFilterMetadata(ctx)
			if err == nil {
				msg.metadata = &meta
			}
			return err
		})
		msg.err = g.Wait()
		return msg
	}
}

// handleCatalogKey processes keyboard input for the catalog view.
func (m Model) handleCatalogKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	results := m.snapshot.Results

	switch {
	case key.Matches(msg, m.keys.Down):
		if m.selectedRow < len(results)-1 {
			m.selectedRow++
			next := m.selectDetail()
			return m, next
		}
	case key.Matches(msg, m.keys.Up):
		if m.selectedRow > 0 {
			m.selectedRow--
			next := m.selectDetail()
			return m, next
		}
	case key.Matches(msg, m.keys.Top):
		m.selectedRow = 0
		next := m.selectDetail()
		return m, next
	case key.Matches(msg, m.keys.Bottom):
		m.selectedRow = max(len(results)-1, 0)
		next := m.selectDetail()
		return m, next

	case key.Matches(msg, m.keys.Filter):
		m.modal = newFilterModal(m.engine)
	case key.Matches(msg, m.keys.Categories):
		m.modal = newCategoryPicker(m.engine, m.categories)

	case key.Matches(msg, m.keys.CycleSort):
		criteria := m.engine.Criteria()
		sortKey := criteria.Sort.Next()
		if err := m.engine.SetSort(sortKey); err != nil {
			return m, nil
		}
		m.prefs.Sort = string(sortKey)
		m.savePrefs()
		next := m.reload()
		return m, next

	case key.Matches(msg, m.keys.NextPage):
		if !m.snapshot.HasNext {
			return m, nil
		}
		if err := m.engine.SetPage(m.engine.Criteria().Page + 1); err != nil {
			return m, nil
		}
		next := m.reload()
		return m, next
	case key.Matches(msg, m.keys.PrevPage):
		page := m.engine.Criteria().Page
		if page <= 1 {
			return m, nil
		}
		if err := m.engine.SetPage(page - 1); err != nil {
			return m, nil
		}
		next := m.reload()
		return m, next

	case key.Matches(msg, m.keys.ClearFilters):
		before := m.engine.Revision()
		m.engine.ClearAll()
		if m.engine.Revision() != before {
			next := m.reload()
			return m, next
		}
	case key.Matches(msg, m.keys.ClearLast):
		active := m.engine.Active()
		if len(active) == 0 {
			return m, nil
		}
		if err := m.engine.Clear(active[len(active)-1]); err != nil {
			return m, nil
		}
		next := m.reload()
		return m, next
	case key.Matches(msg, m.keys.Reload):
		next := m.reload()
		return m, next

	case key.Matches(msg, m.keys.AddCompare):
		if p, ok := m.selectedProduct(); ok && m.compare != nil {
			m.compare.Add(m.ctx, shelf.FromProduct(p, time.Now()))
			m.syncShelves()
		}
	case key.Matches(msg, m.keys.ToggleWish):
		if p, ok := m.selectedProduct(); ok && m.wishlist != nil {
			if m.wishlist.Contains(p.ID) {
				m.wishlist.Remove(m.ctx, p.ID)
			} else {
				m.wishlist.Add(m.ctx, shelf.FromProduct(p, time.Now()))
			}
			m.syncShelves()
		}
	case key.Matches(msg, m.keys.HideCompareBar):
		if m.compare != nil {
			m.compare.SetVisible(!m.compare.Visible())
			m.syncShelves()
		}
	}

	return m, nil
}

func (m Model) selectedProduct() (catalog.Product, bool) {
	results := m.snapshot.Results
	if m.selectedRow < 0 || m.selectedRow >= len(results) {
		return catalog.Product{}, false
	}
	return results[m.selectedRow], true
}

// renderCatalog renders chips, the result list with the detail pane, and
// the compare bar.
func (m Model) renderCatalog() string {
	styles := m.theme.Styles()
	height := m.contentHeight()

	chips := m.renderChips()
	height--

	bar := m.renderCompareBar()
	if bar != "" {
		height--
	}

	var body string
	switch {
	case len(m.snapshot.Results) == 0 && m.snapshot.Loading:
		body = lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center,
			styles.MutedText.Render(m.spinner.View()+" Loading products..."))
	case len(m.snapshot.Results) == 0 && m.snapshot.LastError != nil:
		body = lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center,
			styles.DangerText.Render("Catalog unavailable")+"\n"+
				styles.MutedText.Render(truncate(m.snapshot.LastError.Error(), m.width-4))+"\n"+
				styles.FaintText.Render("press r to retry"))
	case len(m.snapshot.Results) == 0 && m.snapshot.HasResults:
		msg := "No products match"
		if m.engine.IsActive() {
			msg += " (x clears filters)"
		}
		body = lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center, styles.MutedText.Render(msg))
	case len(m.snapshot.Results) == 0:
		body = lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center, styles.MutedText.Render("No products"))
	default:
		body = m.renderResults(height)
	}

	parts := []string{chips, body}
	if bar != "" {
		parts = append(parts, bar)
	}
	return strings.Join(parts, "\n")
}

func (m Model) renderResults(height int) string {
	listWidth := m.width
	showDetail := m.width >= LayoutCompactWidth
	if showDetail {
		if m.width >= LayoutExtraWideWidth {
			listWidth = m.width * 40 / 100
		} else {
			listWidth = m.width * 50 / 100
		}
	}

	title := m.resultsTitle()
	list := m.renderTitledBox(title, m.renderResultRows(listWidth-2, height-2), listWidth, height, true)
	if !showDetail {
		return list
	}

	detailWidth := m.width - listWidth
	detail := m.renderTitledBox("Details", m.renderDetail(detailWidth-4, height-2), detailWidth, height, false)
	return lipgloss.JoinHorizontal(lipgloss.Top, list, detail)
}

func (m Model) resultsTitle() string {
	s := m.snapshot
	title := fmt.Sprintf("Products (%d)", s.Count)
	if s.TotalPages > 1 {
		title += fmt.Sprintf(" %d/%d", max(s.Page, 1), s.TotalPages)
	}
	if s.Loading {
		title += " " + m.spinner.View()
	}
	return title
}

// renderResultRows renders the listing as styled rows, scrolled so the
// selection stays visible.
func (m Model) renderResultRows(width, height int) string {
	results := m.snapshot.Results
	start := 0
	if height > 0 && m.selectedRow >= height {
		start = m.selectedRow - height + 1
	}
	end := len(results)
	if height > 0 {
		end = min(end, start+height)
	}

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		selected := i == m.selectedRow
		bgColor := m.theme.FocusBg
		if selected {
			bgColor = m.theme.SelectionBg
		}
		content := m.formatResultRow(results[i], width, bgColor, selected)
		lines = append(lines, NewBgStyle(bgColor).Line(content, width))
	}
	return strings.Join(lines, "\n")
}

// formatResultRow formats one product row.
// Format: "[C][W] Name · $Price"
func (m Model) formatResultRow(p catalog.Product, width int, bgColor string, selected bool) string {
	bg := NewBgStyle(bgColor)

	marks := ""
	if m.compare != nil && m.compare.Contains(p.ID) {
		marks += "C"
	} else {
		marks += " "
	}
	if m.wishlist != nil && m.wishlist.Contains(p.ID) {
		marks += "♥"
	} else {
		marks += " "
	}

	price := formatPrice(p.Price)
	nameWidth := max(width-len([]rune(marks))-len(price)-5, 10)

	var markStyle, nameStyle, sepStyle, priceStyle lipgloss.Style
	if selected {
		selText := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.SelectionText))
		markStyle, nameStyle, sepStyle, priceStyle = selText, selText, selText, selText
	} else {
		styles := m.theme.Styles()
		markStyle = styles.AccentText
		nameStyle = styles.Text
		sepStyle = styles.FaintText
		priceStyle = styles.Price
	}

	return bg.Render(marks, markStyle) + bg.Space() +
		bg.Render(truncate(p.Name, nameWidth), nameStyle) +
		bg.Render(" · ", sepStyle) +
		bg.Render(price, priceStyle)
}

// renderChips renders the applied narrowing filters and the sort order.
func (m Model) renderChips() string {
	styles := m.theme.Styles().WithBackground(m.theme.Background)
	bg := NewBgStyle(m.theme.Background)
	criteria := m.engine.Criteria()

	var parts []string
	for _, dim := range m.engine.Active() {
		parts = append(parts, bg.Chip(m.chipLabel(dim, criteria), styles.Chip))
	}
	if len(parts) == 0 {
		parts = append(parts, bg.Render("no filters", styles.FaintText))
	}
	parts = append(parts, bg.Render("sort:", styles.MutedText)+bg.Space()+bg.Render(criteria.Sort.Label(), styles.Text))

	return bg.Line(bg.Join(parts, "  "), m.width)
}

func (m Model) chipLabel(dim filter.Dimension, c filter.Criteria) string {
	switch dim {
	case filter.DimCategory:
		return "category: " + m.categoryName(c.Category)
	case filter.DimSubcategory:
		return "sub: " + m.categoryName(c.Subcategory)
	case filter.DimPrice:
		return fmt.Sprintf("price: %s-%s", formatPrice(c.MinPrice), formatPrice(c.MaxPrice))
	case filter.DimSearch:
		return fmt.Sprintf("search: %q", truncate(c.Search, 24))
	default:
		return titleCase(string(dim))
	}
}

func (m Model) categoryName(id string) string {
	for _, parent := range m.categories {
		if parent.ID == id {
			return parent.Name
		}
		for _, sub := range parent.Subcategories {
			if sub.ID == id {
				return sub.Name
			}
		}
	}
	return id
}

// renderCompareBar renders the compare shelf summary while it is visible.
func (m Model) renderCompareBar() string {
	snap := m.compareSnap
	if m.compare == nil || !snap.Visible || len(snap.Items) == 0 {
		return ""
	}
	styles := m.theme.Styles().WithBackground(m.theme.SurfaceAlt)
	bg := NewBgStyle(m.theme.SurfaceAlt)

	names := make([]string, 0, len(snap.Items))
	for _, item := range snap.Items {
		names = append(names, truncate(item.Name, 20))
	}
	label := fmt.Sprintf("Compare %d/%d", len(snap.Items), snap.Capacity)
	content := bg.Render(label, styles.AccentText.Bold(true)) + bg.Spaces(2) +
		bg.Render(strings.Join(names, " · "), styles.Text) + bg.Spaces(2) +
		bg.Render("2:open v:hide", styles.FaintText)

	return bg.Line(content, m.width)
}

// renderTitledBox renders content in a box with the title embedded in the top border.
// Matches the frame style: ┌─── Title ───┐
func (m Model) renderTitledBox(title, content string, width, height int, focused bool) string {
	var borderColorStr, bgColorStr string
	if focused {
		borderColorStr = m.theme.BorderFocus
		bgColorStr = m.theme.FocusBg
	} else {
		borderColorStr = m.theme.Border
		bgColorStr = m.theme.SurfaceAlt
	}
	bg := NewBgStyle(bgColorStr)
	borderStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(borderColorStr))
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.Text))

	innerWidth := max(width-2, 0)
	title = truncate(title, max(innerWidth-4, 1))
	titleLen := lipgloss.Width(title)
	leftPad := max((innerWidth-titleLen-2)/2, 0)
	rightPad := max(innerWidth-titleLen-2-leftPad, 0)

	topBorder := bg.Render("┌", borderStyle) +
		bg.Render(strings.Repeat("─", leftPad), borderStyle) +
		bg.Render(" "+title+" ", titleStyle) +
		bg.Render(strings.Repeat("─", rightPad), borderStyle) +
		bg.Render("┐", borderStyle)

	bottomBorder := bg.Render("└", borderStyle) +
		bg.Render(strings.Repeat("─", innerWidth), borderStyle) +
		bg.Render("┘", borderStyle)

	contentStyle := lipgloss.NewStyle().Width(innerWidth).MaxWidth(innerWidth).Background(lipgloss.Color(bgColorStr))

	contentLines := strings.Split(content, "\n")
	boxHeight := max(height-2, 0)

	paddedLines := make([]string, 0, boxHeight)
	for i := 0; i < boxHeight; i++ {
		var line string
		if i < len(contentLines) {
			line = contentLines[i]
		}
		paddedLines = append(paddedLines,
			bg.Render("│", borderStyle)+
				contentStyle.Render(line)+
				bg.Render("│", borderStyle))
	}

	return topBorder + "\n" + strings.Join(paddedLines, "\n") + "\n" + bottomBorder
}
