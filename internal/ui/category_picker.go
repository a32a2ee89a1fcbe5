package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/vitrine/internal/catalog"
	"github.com/five82/vitrine/internal/filter"
)

type pickerOption struct {
	id    string
	label string
	count int
}

// categoryPicker walks the two-level category tree. Choosing a parent with
// subcategories applies it and descends; choosing anything else applies it
// and closes.
type categoryPicker struct {
	engine     *filter.Engine
	categories []catalog.Category
	parent     *catalog.Category
	cursor     int
	err        string
}

func newCategoryPicker(engine *filter.Engine, categories []catalog.Category) *categoryPicker {
	p := &categoryPicker{engine: engine, categories: categories}
	current := engine.Criteria().Category
	for i, opt := range p.options() {
		if opt.id == current {
			p.cursor = i
		}
	}
	return p
}

func (p *categoryPicker) options() []pickerOption {
	if p.parent == nil {
		opts := []pickerOption{{id: filter.All, label: "All categories"}}
		for _, c := range p.categories {
			if c.IsParent() {
				opts = append(opts, pickerOption{id: c.ID, label: c.Name, count: c.ProductCount})
			}
		}
		return opts
	}
	opts := []pickerOption{{id: filter.All, label: "All " + p.parent.Name}}
	for _, c := range p.parent.Subcategories {
		opts = append(opts, pickerOption{id: c.ID, label: c.Name, count: c.ProductCount})
	}
	return opts
}

// HandleKey implements Modal.
func (p *categoryPicker) HandleKey(msg tea.KeyMsg, keys keyMap) (tea.Cmd, bool) {
	opts := p.options()

	switch {
	case key.Matches(msg, keys.Down):
		if p.cursor < len(opts)-1 {
			p.cursor++
		}
	case key.Matches(msg, keys.Up):
		if p.cursor > 0 {
			p.cursor--
		}
	case key.Matches(msg, keys.Escape), key.Matches(msg, keys.Left):
		if p.parent == nil {
			return nil, true
		}
		p.ascend()
	case key.Matches(msg, keys.Confirm), key.Matches(msg, keys.Right):
		if len(opts) == 0 {
			return nil, true
		}
		return nil, p.choose(opts[p.cursor])
	}
	return nil, false
}

// choose applies opt and reports whether the picker is done.
func (p *categoryPicker) choose(opt pickerOption) bool {
	if p.parent != nil {
		if err := p.engine.SetSubcategory(opt.id); err != nil {
			p.err = err.Error()
			return false
		}
		return true
	}

	if err := p.engine.SetCategory(opt.id); err != nil {
		p.err = err.Error()
		return false
	}
	for i := range p.categories {
		c := p.categories[i]
		if c.ID == opt.id && len(c.Subcategories) > 0 {
			p.parent = &c
			p.cursor = 0
			p.err = ""
			return false
		}
	}
	return true
}

func (p *categoryPicker) ascend() {
	id := p.parent.ID
	p.parent = nil
	p.cursor = 0
	for i, opt := range p.options() {
		if opt.id == id {
			p.cursor = i
		}
	}
}

// View implements Modal.
func (p *categoryPicker) View(theme Theme, width, height int) string {
	styles := theme.Styles()

	title := "Category"
	if p.parent != nil {
		title = p.parent.Name
	}

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render(title))
	b.WriteString("\n\n")

	opts := p.options()
	if len(p.categories) == 0 {
		b.WriteString(styles.MutedText.Render("Categories unavailable"))
		b.WriteString("\n")
	}
	for i, opt := range opts {
		label := opt.label
		if opt.count > 0 {
			label = fmt.Sprintf("%s (%d)", label, opt.count)
		}
		if i == p.cursor {
			b.WriteString(styles.Selected.Render("› " + label))
		} else {
			b.WriteString(styles.Text.Render("  " + label))
		}
		b.WriteString("\n")
	}
	if p.err != "" {
		b.WriteString("\n")
		b.WriteString(styles.DangerText.Render(p.err))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render("enter choose · h back · esc close"))

	return centerModal(theme, b.String(), 40, width, height)
}
