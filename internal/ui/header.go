package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/vitrine/internal/notify"
	"github.com/five82/vitrine/internal/shelf"
)

// renderHeader renders the status bar: logo, view tabs, listing state and
// shelf counters.
func (m Model) renderHeader() string {
	// Header uses Surface background
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	compact := m.width < LayoutCompactWidth

	parts := []string{bg.Render("vitrine", styles.Logo)}

	tabs := make([]string, 0, len(viewOrder))
	for i, v := range viewOrder {
		label := fmt.Sprintf("%d %s", i+1, v)
		if compact {
			label = fmt.Sprintf("%d", i+1)
		}
		if v == m.currentView {
			tabs = append(tabs, bg.Render(label, styles.AccentText.Bold(true)))
		} else {
			tabs = append(tabs, bg.Render(label, styles.MutedText))
		}
	}
	parts = append(parts, bg.Join(tabs, " "))

	parts = append(parts, m.listingStatus(styles, bg))
	parts = append(parts,
		m.shelfCounter("C", m.compareSnap, styles, bg),
		m.shelfCounter("W", m.wishlistSnap, styles, bg),
	)

	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Surface)).
		Foreground(lipgloss.Color(m.theme.Text)).
		Width(m.width).
		Render(bg.Join(parts, "  "))
}

func (m Model) listingStatus(styles Styles, bg BgStyle) string {
	s := m.snapshot
	switch {
	case s.IsOffline():
		return bg.Render("● OFFLINE", styles.DangerText)
	case s.LastError != nil:
		return bg.Render("● "+classifyFetchError(s.LastError), styles.WarningText)
	case s.Loading:
		return bg.Render(m.spinner.View()+" loading", styles.InfoText)
	case s.HasResults:
		return bg.Render("●", styles.SuccessText) + bg.Space() +
			bg.Render(fmt.Sprintf("%d products", s.Count), styles.Text)
	default:
		return bg.Render("○ connecting", styles.MutedText)
	}
}

func (m Model) shelfCounter(label string, snap shelf.Snapshot, styles Styles, bg BgStyle) string {
	if snap.State != shelf.Ready {
		return bg.Render(label+":…", styles.FaintText)
	}
	style := styles.Text
	if snap.Capacity > 0 && len(snap.Items) >= snap.Capacity {
		style = styles.WarningText
	}
	return bg.Render(label+":", styles.MutedText) + bg.Render(fmt.Sprintf("%d/%d", len(snap.Items), snap.Capacity), style)
}

// classifyFetchError shortens a listing error for the header.
func classifyFetchError(err error) string {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "connection refused"):
		return "REFUSED"
	case strings.Contains(msg, "deadline exceeded"), strings.Contains(msg, "timeout"):
		return "TIMEOUT"
	case strings.Contains(msg, "no such host"):
		return "DNS"
	case strings.Contains(msg, "status 5"):
		return "SERVER ERROR"
	default:
		return "ERROR"
	}
}

// renderCommandBar renders the command hints bar.
func (m Model) renderCommandBar() string {
	// Command bar uses Surface background
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd

	switch m.currentView {
	case ViewCompare:
		commands = []cmd{
			{"h/l", "Select"},
			{"d", "Remove"},
			{"D", "Clear"},
			{"1", "Catalog"},
			{"?", "More"},
		}
	case ViewWishlist:
		commands = []cmd{
			{"j/k", "Navigate"},
			{"a", "Move to compare"},
			{"d", "Remove"},
			{"D", "Clear"},
			{"?", "More"},
		}
	case ViewActivity:
		commands = []cmd{
			{"j/k", "Scroll"},
			{"r", "Reload"},
			{"1", "Catalog"},
			{"?", "More"},
		}
	default: // ViewCatalog
		commands = []cmd{
			{"/", "Filter"},
			{"c", "Category"},
			{"s", m.engine.Criteria().Sort.Label()},
			{"n/p", "Page"},
			{"a", "Compare"},
			{"w", "Wishlist"},
			{"x", "Clear"},
			{"?", "More"},
		}
	}

	colon := bg.Sep(":")
	segments := make([]string, 0, len(commands)+1)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}

	// Add theme indicator
	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).Render(strings.Join(segments, bg.Spaces(2)))
}

// renderToast renders the newest active notification.
func (m Model) renderToast() string {
	if m.toast == nil {
		return ""
	}
	styles := m.theme.Styles().WithBackground(m.theme.SurfaceAlt)
	bg := NewBgStyle(m.theme.SurfaceAlt)

	var style lipgloss.Style
	switch m.toast.Kind {
	case notify.Added:
		style = styles.SuccessText
	case notify.CapacityExceeded, notify.Warning:
		style = styles.WarningText
	case notify.Error:
		style = styles.DangerText
	default:
		style = styles.InfoText
	}
	return bg.Line(bg.Render("» "+truncate(m.toast.Message, m.width-4), style), m.width)
}
