package ui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/five82/vitrine/internal/catalog"
	"github.com/five82/vitrine/internal/filter"
	"github.com/five82/vitrine/internal/notify"
	"github.com/five82/vitrine/internal/prefs"
	"github.com/five82/vitrine/internal/shelf"
	"github.com/five82/vitrine/internal/state"
)

// View represents the current active view.
type View int

const (
	ViewCatalog View = iota
	ViewCompare
	ViewWishlist
	ViewActivity
)

var viewOrder = []View{ViewCatalog, ViewCompare, ViewWishlist, ViewActivity}

func (v View) String() string {
	switch v {
	case ViewCompare:
		return "Compare"
	case ViewWishlist:
		return "Wishlist"
	case ViewActivity:
		return "Activity"
	default:
		return "Catalog"
	}
}

// Options configures the UI.
type Options struct {
	Context   context.Context
	Client    catalog.Fetcher
	Listing   *state.Store
	Compare   *shelf.Store
	Wishlist  *shelf.Store
	Notices   *notify.Queue
	Logger    *zap.Logger
	LogPath   string
	Bounds    filter.Bounds
	PageSize  int
	Prefs     prefs.Prefs
	PrefsPath string
	Tick      time.Duration
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	client    catalog.Fetcher
	listing   *state.Store
	compare   *shelf.Store
	wishlist  *shelf.Store
	notices   *notify.Queue
	logger    *zap.Logger
	logPath   string
	prefs     prefs.Prefs
	prefsPath string
	tick      time.Duration

	// UI state
	theme       Theme
	keys        keyMap
	currentView View
	width       int
	height      int
	ready       bool
	showHelp    bool
	modal       Modal
	spinner     spinner.Model

	// Catalog state
	engine      *filter.Engine
	snapshot    state.Snapshot
	selectedRow int
	categories  []catalog.Category
	metadata    *catalog.FilterMetadata
	detail      detailState

	// Shelf state
	compareSnap  shelf.Snapshot
	wishlistSnap shelf.Snapshot
	compareCol   int
	wishlistRow  int

	// Activity state
	activityViewport viewport.Model
	activityErr      error

	toast *notify.Notification
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	listing := opts.Listing
	if listing == nil {
		listing = &state.Store{}
	}

	tick := opts.Tick
	if tick == 0 {
		tick = DefaultUIInterval
	}

	userPrefs := opts.Prefs
	if userPrefs.Theme == "" {
		userPrefs = prefs.Defaults()
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	m := Model{
		ctx:         ctx,
		client:      opts.Client,
		listing:     listing,
		compare:     opts.Compare,
		wishlist:    opts.Wishlist,
		notices:     opts.Notices,
		logger:      logger,
		logPath:     opts.LogPath,
		prefs:       userPrefs,
		prefsPath:   prefsPath,
		tick:        tick,
		theme:       GetTheme(userPrefs.Theme),
		keys:        DefaultKeyMap(),
		currentView: ViewCatalog,
		spinner:     spinner.New(spinner.WithSpinner(spinner.Dot)),
		engine: filter.NewEngine(filter.Options{
			Bounds:   opts.Bounds,
			PageSize: opts.PageSize,
			Sort:     filter.SortKey(userPrefs.Sort),
		}),
	}
	m.syncShelves()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnterAltScreen,
		tickCmd(m.tick),
		m.spinner.Tick,
	}
	if m.client != nil {
		cmds = append(cmds, m.loadListing(), fetchCategoriesCmd(m.ctx, m.client))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.initActivityViewport()
		}
		m.ready = true
		m.resizeActivityViewport()
		return m, nil

	case tickMsg:
		return m.handleTick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case listingMsg:
		return m.handleListing(msg)

	case categoriesMsg:
		if msg.err != nil {
			m.logger.Warn("category fetch failed", zap.Error(msg.err))
			return m, nil
		}
		m.categories = msg.categories
		m.metadata = msg.metadata
		m.engine.SetCategories(msg.categories)
		return m, nil

	case detailMsg:
		m.applyDetail(msg)
		return m, nil

	case shelfChangedMsg:
		m.syncShelves()
		return m, nil

	case noticeMsg:
		m.refreshToast()
		return m, nil

	case activityMsg:
		m.applyActivity(msg)
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	// Show help overlay if active
	if m.showHelp {
		return m.renderHelp()
	}

	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}

	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Handle help overlay
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	if m.modal != nil {
		return m.handleModalKey(msg)
	}

	// Global keys
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.listing.Cancel()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.prefs.Theme = m.theme.Name
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.Tab):
		return m.switchView(m.nextView(1))

	case key.Matches(msg, m.keys.ShiftTab):
		return m.switchView(m.nextView(-1))

	case key.Matches(msg, m.keys.ViewCatalog):
		return m.switchView(ViewCatalog)

	case key.Matches(msg, m.keys.ViewCompare):
		return m.switchView(ViewCompare)

	case key.Matches(msg, m.keys.ViewWishlist):
		return m.switchView(ViewWishlist)

	case key.Matches(msg, m.keys.ViewActivity):
		return m.switchView(ViewActivity)

	case key.Matches(msg, m.keys.Escape):
		return m.switchView(ViewCatalog)
	}

	// View-specific keys
	switch m.currentView {
	case ViewCatalog:
		return m.handleCatalogKey(msg)
	case ViewCompare:
		return m.handleCompareKey(msg)
	case ViewWishlist:
		return m.handleWishlistKey(msg)
	case ViewActivity:
		return m.handleActivityKey(msg)
	}

	return m, nil
}

// handleModalKey forwards input to the open modal and reloads the listing
// when the modal changed the criteria.
func (m Model) handleModalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	before := m.engine.Revision()
	cmd, closed := m.modal.HandleKey(msg, m.keys)
	if closed {
		m.modal = nil
	}
	if m.engine.Revision() != before {
		reloadCmd := m.reload()
		return m, tea.Batch(cmd, reloadCmd)
	}
	return m, cmd
}

func (m Model) nextView(step int) View {
	idx := 0
	for i, v := range viewOrder {
		if v == m.currentView {
			idx = i
			break
		}
	}
	idx = (idx + step + len(viewOrder)) % len(viewOrder)
	return viewOrder[idx]
}

func (m Model) switchView(v View) (tea.Model, tea.Cmd) {
	m.currentView = v
	if v == ViewActivity {
		next := m.refreshActivity()
		return m, next
	}
	return m, nil
}

// handleTick expires toasts and keeps the activity view current.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{tickCmd(m.tick)}

	m.refreshToast()

	if m.currentView == ViewActivity {
		if cmd := m.refreshActivity(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}

	return m, tea.Batch(cmds...)
}

// syncShelves copies the current shelf snapshots into the model.
func (m *Model) syncShelves() {
	if m.compare != nil {
		m.compareSnap = m.compare.Snapshot()
		m.compareCol = clampIndex(m.compareCol, len(m.compareSnap.Items))
	}
	if m.wishlist != nil {
		m.wishlistSnap = m.wishlist.Snapshot()
		m.wishlistRow = clampIndex(m.wishlistRow, len(m.wishlistSnap.Items))
	}
}

func (m *Model) refreshToast() {
	m.toast = nil
	if m.notices == nil {
		return
	}
	if n, ok := m.notices.Latest(); ok {
		m.toast = &n
	}
}

func (m *Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	if err := prefs.Save(m.prefsPath, m.prefs); err != nil {
		m.logger.Warn("save preferences failed", zap.Error(err))
	}
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder

	// Header line 1: logo, views, listing status
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	// Header line 2: command bar
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")

	// Main content
	b.WriteString(m.renderContent())

	if toast := m.renderToast(); toast != "" {
		b.WriteString("\n")
		b.WriteString(toast)
	}

	return b.String()
}

// contentHeight is the space left for the active view.
func (m Model) contentHeight() int {
	h := m.height - 2 // header + command bar
	if m.toast != nil {
		h--
	}
	return max(h, 3)
}

// renderContent renders the main content area based on current view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewCatalog:
		return m.renderCatalog()
	case ViewCompare:
		return m.renderCompare()
	case ViewWishlist:
		return m.renderWishlist()
	case ViewActivity:
		return m.renderActivity()
	default:
		return ""
	}
}

func clampIndex(idx, n int) int {
	if n == 0 || idx < 0 {
		return 0
	}
	if idx >= n {
		return n - 1
	}
	return idx
}

// Messages

type tickMsg time.Time

type shelfChangedMsg struct{}

type noticeMsg struct{}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))

	// Listeners fire from inside shelf mutations, some of which run in
	// Update itself, so they must not block on the program's event loop.
	wake := func(msg tea.Msg) func() {
		return func() { go p.Send(msg) }
	}
	for _, s := range []*shelf.Store{opts.Compare, opts.Wishlist} {
		if s == nil {
			continue
		}
		changed := wake(shelfChangedMsg{})
		unsubscribe := s.OnChange(func(shelf.Snapshot) { changed() })
		defer unsubscribe()
	}
	if opts.Notices != nil {
		opts.Notices.OnNotify(wake(noticeMsg{}))
		defer opts.Notices.OnNotify(nil)
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}
