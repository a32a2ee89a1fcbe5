package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/five82/vitrine/internal/filter"
)

const (
	fieldSearch = iota
	fieldMinPrice
	fieldMaxPrice
	fieldCount
)

var filterFieldLabels = [fieldCount]string{"Search", "Min price", "Max price"}

// filterModal edits the search text and the price range together. Nothing
// is applied until enter, and an invalid form applies nothing.
type filterModal struct {
	engine *filter.Engine
	inputs [fieldCount]textinput.Model
	focus  int
	err    string
}

func newFilterModal(engine *filter.Engine) *filterModal {
	criteria := engine.Criteria()
	bounds := engine.Bounds()

	f := &filterModal{engine: engine}
	for i := range f.inputs {
		input := textinput.New()
		input.Prompt = ""
		input.CharLimit = 64
		input.Width = 30
		f.inputs[i] = input
	}

	f.inputs[fieldSearch].Placeholder = "name or description"
	f.inputs[fieldSearch].SetValue(criteria.Search)

	f.inputs[fieldMinPrice].Placeholder = bounds.Min.String()
	if !criteria.MinPrice.Equal(bounds.Min) {
		f.inputs[fieldMinPrice].SetValue(criteria.MinPrice.String())
	}
	f.inputs[fieldMaxPrice].Placeholder = bounds.Max.String()
	if !criteria.MaxPrice.Equal(bounds.Max) {
		f.inputs[fieldMaxPrice].SetValue(criteria.MaxPrice.String())
	}

	f.inputs[fieldSearch].Focus()
	return f
}

// HandleKey implements Modal.
func (f *filterModal) HandleKey(msg tea.KeyMsg, keys keyMap) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, keys.Escape):
		return nil, true
	case key.Matches(msg, keys.Confirm):
		if err := f.apply(); err != nil {
			f.err = err.Error()
			return nil, false
		}
		return nil, true
	case key.Matches(msg, keys.NextField):
		f.setFocus((f.focus + 1) % fieldCount)
		return nil, false
	case key.Matches(msg, keys.PrevField):
		f.setFocus((f.focus + fieldCount - 1) % fieldCount)
		return nil, false
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	f.err = ""
	return cmd, false
}

func (f *filterModal) setFocus(idx int) {
	f.inputs[f.focus].Blur()
	f.focus = idx
	f.inputs[f.focus].Focus()
}

// apply validates both prices before touching the engine.
func (f *filterModal) apply() error {
	bounds := f.engine.Bounds()
	minPrice, err := parseBound(f.inputs[fieldMinPrice].Value(), bounds.Min)
	if err != nil {
		return errors.Wrap(err, "min price")
	}
	maxPrice, err := parseBound(f.inputs[fieldMaxPrice].Value(), bounds.Max)
	if err != nil {
		return errors.Wrap(err, "max price")
	}
	if err := f.engine.SetPriceRange(minPrice, maxPrice); err != nil {
		return err
	}
	return f.engine.SetSearch(f.inputs[fieldSearch].Value())
}

func parseBound(raw string, fallback decimal.Decimal) (decimal.Decimal, error) {
	raw = strings.TrimPrefix(strings.TrimSpace(raw), "$")
	if raw == "" {
		return fallback, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, filter.ErrInvalidPrice
	}
	return d, nil
}

// View implements Modal.
func (f *filterModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Filter products"))
	b.WriteString("\n\n")

	for i, input := range f.inputs {
		label := styles.MutedText.Width(12).Render(filterFieldLabels[i])
		if i == f.focus {
			label = styles.AccentText.Width(12).Render(filterFieldLabels[i])
		}
		b.WriteString(label)
		b.WriteString(input.View())
		b.WriteString("\n")
	}

	bounds := f.engine.Bounds()
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render("prices " + formatPrice(bounds.Min) + " to " + formatPrice(bounds.Max) + ", blank for no limit"))
	if f.err != "" {
		b.WriteString("\n")
		b.WriteString(styles.DangerText.Render(f.err))
	}
	b.WriteString("\n\n")
	b.WriteString(styles.FaintText.Render("enter apply · tab next · esc cancel"))

	return centerModal(theme, b.String(), 50, width, height)
}

// centerModal frames content and places it in the middle of the screen.
func centerModal(theme Theme, content string, modalWidth, width, height int) string {
	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(theme.Accent)).
		Padding(1, 2).
		Width(modalWidth)

	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		modal.Render(content),
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(theme.Background)),
	)
}
