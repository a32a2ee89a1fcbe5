package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Tab        key.Binding
	ShiftTab   key.Binding
	Escape     key.Binding

	// View switching
	ViewCatalog  key.Binding
	ViewCompare  key.Binding
	ViewWishlist key.Binding
	ViewActivity key.Binding

	// Navigation
	Up     key.Binding
	Down   key.Binding
	Left   key.Binding
	Right  key.Binding
	Top    key.Binding
	Bottom key.Binding

	// Catalog actions
	Filter         key.Binding
	Categories     key.Binding
	CycleSort      key.Binding
	NextPage       key.Binding
	PrevPage       key.Binding
	AddCompare     key.Binding
	ToggleWish     key.Binding
	ClearFilters   key.Binding
	ClearLast      key.Binding
	Reload         key.Binding
	HideCompareBar key.Binding

	// Shelf actions
	Remove   key.Binding
	ClearAll key.Binding

	// Modal input
	Confirm   key.Binding
	NextField key.Binding
	PrevField key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		// Global
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Cycle views"),
		),
		ShiftTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "Cycle views (reverse)"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Back / close"),
		),

		// View switching
		ViewCatalog: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "Catalog"),
		),
		ViewCompare: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "Compare"),
		),
		ViewWishlist: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "Wishlist"),
		),
		ViewActivity: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "Activity"),
		),

		// Navigation
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Move down"),
		),
		Left: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("h", "Previous column"),
		),
		Right: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("l", "Next column"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Go to bottom"),
		),

		// Catalog actions
		Filter: key.NewBinding(
			key.WithKeys("/", "F"),
			key.WithHelp("/", "Search and price"),
		),
		Categories: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "Pick category"),
		),
		CycleSort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Cycle sort"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("n", "]"),
			key.WithHelp("n/]", "Next page"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("p", "["),
			key.WithHelp("p/[", "Previous page"),
		),
		AddCompare: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "Add to compare"),
		),
		ToggleWish: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "Toggle wishlist"),
		),
		ClearFilters: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "Clear all filters"),
		),
		ClearLast: key.NewBinding(
			key.WithKeys("backspace"),
			key.WithHelp("bksp", "Clear last filter"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Reload"),
		),
		HideCompareBar: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "Hide compare bar"),
		),

		// Shelf actions
		Remove: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "Remove"),
		),
		ClearAll: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "Clear shelf"),
		),

		// Modal input
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Confirm"),
		),
		NextField: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "Next field"),
		),
		PrevField: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab", "Previous field"),
		),
	}
}

// helpSection groups bindings under a title in the help overlay.
type helpSection struct {
	title    string
	bindings []key.Binding
}

// helpColumns lays the help overlay out in two columns.
func (k keyMap) helpColumns() [2][]helpSection {
	return [2][]helpSection{
		{
			{"Views", []key.Binding{k.Tab, k.ViewCatalog, k.ViewCompare, k.ViewWishlist, k.ViewActivity, k.Escape}},
			{"Navigation", []key.Binding{k.Up, k.Down, k.Top, k.Bottom, k.Left, k.Right}},
			{"General", []key.Binding{k.CycleTheme, k.Help, k.Quit}},
		},
		{
			{"Catalog", []key.Binding{k.Filter, k.Categories, k.CycleSort, k.NextPage, k.PrevPage, k.ClearFilters, k.ClearLast, k.Reload}},
			{"Shelves", []key.Binding{k.AddCompare, k.ToggleWish, k.HideCompareBar, k.Remove, k.ClearAll}},
		},
	}
}
