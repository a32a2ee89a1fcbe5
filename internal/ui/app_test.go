package ui

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/five82/vitrine/internal/catalog"
	"github.com/five82/vitrine/internal/catalog/catalogfake"
	"github.com/five82/vitrine/internal/filter"
	"github.com/five82/vitrine/internal/notify"
	"github.com/five82/vitrine/internal/prefs"
	"github.com/five82/vitrine/internal/shelf"
	"github.com/five82/vitrine/internal/storage"
)

type harness struct {
	fake      *catalogfake.Server
	client    *catalog.Client
	compare   *shelf.Store
	wishlist  *shelf.Store
	queue     *notify.Queue
	prefsPath string
}

func newHarness(t *testing.T) (*harness, Model) {
	t.Helper()
	ctx := context.Background()

	products, categories := catalogfake.DemoCatalog()
	fake := catalogfake.New(products, categories)
	srv := httptest.NewServer(fake.Handler())
	t.Cleanup(srv.Close)

	client, err := catalog.NewClient(srv.URL + catalogfake.APIPrefix)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	queue := notify.NewQueue(0)
	mem := storage.NewMemory()
	compare := shelf.New(mem, shelf.Options{Key: "vitrine.compare", Label: "compare", Notifier: queue})
	wishlist := shelf.New(mem, shelf.Options{Key: "vitrine.wishlist", Label: "wishlist", Capacity: 50, Notifier: queue})
	for _, s := range []*shelf.Store{compare, wishlist} {
		if err := s.Initialize(ctx); err != nil {
			t.Fatalf("Initialize() error = %v", err)
		}
	}

	h := &harness{
		fake:      fake,
		client:    client,
		compare:   compare,
		wishlist:  wishlist,
		queue:     queue,
		prefsPath: filepath.Join(t.TempDir(), "prefs.toml"),
	}

	m := New(Options{
		Context:   ctx,
		Client:    client,
		Compare:   compare,
		Wishlist:  wishlist,
		Notices:   queue,
		PageSize:  6,
		PrefsPath: h.prefsPath,
	})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	m = apply(t, m, m.loadListing())
	return h, m
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	return model, cmd
}

// apply runs cmd and feeds every resulting message back into the model.
// Only use it with commands that do not wait on timers.
func apply(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		return m
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			m = apply(t, m, c)
		}
		return m
	}
	m, _ = update(t, m, msg)
	return m
}

func press(keys string) tea.KeyMsg {
	switch keys {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(keys)}
}

func TestListingLoadsFirstPageAndDetail(t *testing.T) {
	_, m := newHarness(t)

	if got := len(m.snapshot.Results); got != 6 {
		t.Fatalf("results = %d, want 6", got)
	}
	if m.snapshot.Count != 18 || !m.snapshot.HasNext {
		t.Fatalf("count = %d hasNext = %v, want 18 true", m.snapshot.Count, m.snapshot.HasNext)
	}
	if m.snapshot.Loading {
		t.Fatal("snapshot still loading after completion")
	}

	first := m.snapshot.Results[0]
	if m.detail.id != first.ID || !m.detail.loading {
		t.Fatalf("detail = %+v, want loading %s", m.detail, first.ID)
	}
	m = apply(t, m, fetchDetailCmd(context.Background(), m.client, first.ID, 60))
	if m.detail.product == nil || m.detail.product.Description == "" {
		t.Fatalf("detail product = %+v, want full record", m.detail.product)
	}
	if m.detail.loading || m.detail.rendered == "" {
		t.Fatalf("detail = %+v, want rendered description", m.detail)
	}
}

func TestStaleListingResponseIsDropped(t *testing.T) {
	_, m := newHarness(t)

	older := m.loadListing()
	if err := m.engine.SetPage(2); err != nil {
		t.Fatalf("SetPage() error = %v", err)
	}
	newer := m.loadListing()

	newerMsg := newer()
	olderMsg := older()

	// The older response arrives last and must not win.
	m, _ = update(t, m, newerMsg)
	m, _ = update(t, m, olderMsg)

	if m.snapshot.Page != 2 {
		t.Fatalf("page = %d, want 2", m.snapshot.Page)
	}
	if m.snapshot.LastError != nil {
		t.Fatalf("LastError = %v, want nil (stale cancellation must not surface)", m.snapshot.LastError)
	}
	if m.snapshot.Discarded != 1 {
		t.Fatalf("Discarded = %d, want 1", m.snapshot.Discarded)
	}
}

func TestPagingGestures(t *testing.T) {
	_, m := newHarness(t)

	m, cmd := update(t, m, press("n"))
	m = apply(t, m, cmd)
	if m.snapshot.Page != 2 || m.engine.Criteria().Page != 2 {
		t.Fatalf("page = %d/%d, want 2", m.snapshot.Page, m.engine.Criteria().Page)
	}

	m, cmd = update(t, m, press("p"))
	m = apply(t, m, cmd)
	if m.snapshot.Page != 1 {
		t.Fatalf("page = %d, want 1", m.snapshot.Page)
	}

	m, cmd = update(t, m, press("p"))
	if cmd != nil {
		t.Fatal("previous page on page 1 issued a fetch")
	}
}

func TestAddToCompareStopsAtCapacity(t *testing.T) {
	h, m := newHarness(t)

	for i := 0; i < 5; i++ {
		m, _ = update(t, m, press("a"))
		m, _ = update(t, m, press("j"))
	}

	if got := h.compare.Len(); got != 4 {
		t.Fatalf("compare.Len() = %d, want 4", got)
	}
	if h.compare.Contains(m.snapshot.Results[4].ID) {
		t.Fatal("fifth product was added past capacity")
	}
	if got := len(m.compareSnap.Items); got != 4 {
		t.Fatalf("model compare snapshot = %d items, want 4", got)
	}

	m, _ = update(t, m, noticeMsg{})
	if m.toast == nil || m.toast.Kind != notify.CapacityExceeded {
		t.Fatalf("toast = %+v, want capacity exceeded", m.toast)
	}
	if !strings.Contains(m.View(), "capacity exceeded") {
		t.Fatal("View() does not show the capacity toast")
	}
}

func TestWishlistToggle(t *testing.T) {
	h, m := newHarness(t)
	id := m.snapshot.Results[0].ID

	m, _ = update(t, m, press("w"))
	if !h.wishlist.Contains(id) {
		t.Fatalf("wishlist missing %s after w", id)
	}
	m, _ = update(t, m, press("w"))
	if h.wishlist.Contains(id) {
		t.Fatalf("wishlist still has %s after second w", id)
	}
	_ = m
}

func TestFilterModalAppliesSearchAndPrice(t *testing.T) {
	h, m := newHarness(t)

	m, _ = update(t, m, press("/"))
	if _, ok := m.modal.(*filterModal); !ok {
		t.Fatalf("modal = %T, want *filterModal", m.modal)
	}
	m, _ = update(t, m, press("camera"))
	m, _ = update(t, m, press("tab"))
	m, _ = update(t, m, press("100"))
	m, cmd := update(t, m, press("enter"))

	if m.modal != nil {
		t.Fatal("modal still open after enter")
	}
	c := m.engine.Criteria()
	if c.Search != "camera" || !c.MinPrice.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("criteria = %+v, want search camera min 100", c)
	}

	m = apply(t, m, cmd)
	reqs := h.fake.Requests()
	last := reqs[len(reqs)-1]
	if last.Get("q") != "camera" || last.Get("minPrice") != "100" {
		t.Fatalf("last request = %v, want q=camera minPrice=100", last)
	}
	if last.Get("maxPrice") != "" {
		t.Fatalf("maxPrice = %q, want omitted at the bound", last.Get("maxPrice"))
	}
	if m.snapshot.Query.Search != "camera" {
		t.Fatalf("applied query = %+v, want the camera search", m.snapshot.Query)
	}
}

func TestFilterModalRejectsInvertedRange(t *testing.T) {
	_, m := newHarness(t)
	before := m.engine.Criteria()

	m, _ = update(t, m, press("/"))
	m, _ = update(t, m, press("lamp"))
	m, _ = update(t, m, press("tab"))
	m, _ = update(t, m, press("500"))
	m, _ = update(t, m, press("tab"))
	m, _ = update(t, m, press("100"))
	m, cmd := update(t, m, press("enter"))

	fm, ok := m.modal.(*filterModal)
	if !ok {
		t.Fatal("modal closed on an invalid range")
	}
	if fm.err == "" {
		t.Fatal("modal shows no error for min > max")
	}
	if cmd != nil {
		t.Fatal("invalid form issued a fetch")
	}
	if !m.engine.Criteria().Equal(before) {
		t.Fatalf("criteria changed to %+v, want untouched", m.engine.Criteria())
	}

	m, _ = update(t, m, press("esc"))
	if m.modal != nil {
		t.Fatal("esc did not close the modal")
	}
}

func TestCategoryPickerDescendsToSubcategory(t *testing.T) {
	h, m := newHarness(t)
	m = apply(t, m, fetchCategoriesCmd(context.Background(), h.client))
	if len(m.categories) != 3 {
		t.Fatalf("categories = %d, want 3", len(m.categories))
	}

	m, _ = update(t, m, press("c"))
	m, _ = update(t, m, press("j"))
	m, _ = update(t, m, press("enter"))

	if got := m.engine.Criteria().Category; got != "cat-electronics" {
		t.Fatalf("category = %q, want cat-electronics", got)
	}
	picker, ok := m.modal.(*categoryPicker)
	if !ok || picker.parent == nil || picker.parent.ID != "cat-electronics" {
		t.Fatalf("picker = %+v, want descended into electronics", m.modal)
	}

	m, _ = update(t, m, press("j"))
	m, _ = update(t, m, press("j"))
	m, cmd := update(t, m, press("enter"))
	if m.modal != nil {
		t.Fatal("picker still open after choosing a subcategory")
	}
	if got := m.engine.Criteria().Subcategory; got != "sub-cameras" {
		t.Fatalf("subcategory = %q, want sub-cameras", got)
	}

	m = apply(t, m, cmd)
	reqs := h.fake.Requests()
	last := reqs[len(reqs)-1]
	if last.Get("category") != "Electronics" || last.Get("subcategory") != "sub-cameras" {
		t.Fatalf("last request = %v, want category=Electronics subcategory=sub-cameras", last)
	}
	for _, p := range m.snapshot.Results {
		if p.SubCategoryID != "sub-cameras" {
			t.Fatalf("result %s in %s, want only cameras", p.ID, p.SubCategoryID)
		}
	}
}

func TestClearGestures(t *testing.T) {
	_, m := newHarness(t)
	if err := m.engine.SetSearch("lamp"); err != nil {
		t.Fatalf("SetSearch() error = %v", err)
	}
	if err := m.engine.SetCategory("cat-home"); err != nil {
		t.Fatalf("SetCategory() error = %v", err)
	}

	m, cmd := update(t, m, press("backspace"))
	if cmd == nil {
		t.Fatal("backspace issued no fetch")
	}
	if m.engine.Criteria().Search != "" || m.engine.Criteria().Category != "cat-home" {
		t.Fatalf("criteria = %+v, want search cleared and category kept", m.engine.Criteria())
	}

	m, cmd = update(t, m, press("x"))
	if cmd == nil {
		t.Fatal("clear all issued no fetch")
	}
	if m.engine.IsActive() {
		t.Fatalf("active = %v, want none", m.engine.Active())
	}

	_, cmd = update(t, m, press("x"))
	if cmd != nil {
		t.Fatal("clear all with nothing active issued a fetch")
	}
}

func TestSortCycleSavesPreference(t *testing.T) {
	h, m := newHarness(t)

	m, cmd := update(t, m, press("s"))
	if cmd == nil {
		t.Fatal("sort change issued no fetch")
	}
	want := filter.SortNewest.Next()
	if got := m.engine.Criteria().Sort; got != want {
		t.Fatalf("sort = %q, want %q", got, want)
	}

	saved, err := prefs.Load(h.prefsPath)
	if err != nil {
		t.Fatalf("prefs.Load() error = %v", err)
	}
	if saved.Sort != string(want) {
		t.Fatalf("saved sort = %q, want %q", saved.Sort, want)
	}
}

func TestViewSwitching(t *testing.T) {
	_, m := newHarness(t)

	m, _ = update(t, m, press("tab"))
	if m.currentView != ViewCompare {
		t.Fatalf("view = %v, want Compare", m.currentView)
	}
	m, _ = update(t, m, press("3"))
	if m.currentView != ViewWishlist {
		t.Fatalf("view = %v, want Wishlist", m.currentView)
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.currentView != ViewCompare {
		t.Fatalf("view = %v, want Compare", m.currentView)
	}
	m, _ = update(t, m, press("esc"))
	if m.currentView != ViewCatalog {
		t.Fatalf("view = %v, want Catalog", m.currentView)
	}

	m, _ = update(t, m, press("?"))
	if !m.showHelp || !strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Fatal("help overlay not shown")
	}
	m, _ = update(t, m, press("x"))
	if m.showHelp {
		t.Fatal("help overlay still shown after a key")
	}
}

func TestCompareViewRemove(t *testing.T) {
	h, m := newHarness(t)
	first, second := m.snapshot.Results[0], m.snapshot.Results[1]

	m, _ = update(t, m, press("a"))
	m, _ = update(t, m, press("j"))
	m, _ = update(t, m, press("a"))

	m, _ = update(t, m, press("2"))
	view := m.View()
	if !strings.Contains(view, first.Name) || !strings.Contains(view, "Compare 2/4") {
		t.Fatalf("compare view missing items:\n%s", view)
	}

	m, _ = update(t, m, press("l"))
	m, _ = update(t, m, press("d"))
	if h.compare.Contains(second.ID) || !h.compare.Contains(first.ID) {
		t.Fatalf("compare = %+v, want only %s", h.compare.Items(), first.ID)
	}
	if m.compareCol != 0 {
		t.Fatalf("compareCol = %d, want clamped to 0", m.compareCol)
	}

	m, _ = update(t, m, press("D"))
	if h.compare.Len() != 0 {
		t.Fatalf("compare.Len() = %d, want 0 after D", h.compare.Len())
	}
}

func TestWishlistMoveToCompare(t *testing.T) {
	h, m := newHarness(t)
	id := m.snapshot.Results[0].ID

	m, _ = update(t, m, press("w"))
	m, _ = update(t, m, press("3"))
	m, _ = update(t, m, press("a"))

	if h.wishlist.Contains(id) || !h.compare.Contains(id) {
		t.Fatalf("wishlist=%v compare=%v, want %s moved to compare", h.wishlist.Items(), h.compare.Items(), id)
	}
}

func TestDetailResponseForOtherProductIsIgnored(t *testing.T) {
	_, m := newHarness(t)
	m.detail = detailState{id: "prod-02", loading: true}

	m.applyDetail(detailMsg{id: "prod-01", product: catalog.Product{ID: "prod-01"}})
	if m.detail.product != nil || !m.detail.loading {
		t.Fatalf("detail = %+v, want untouched", m.detail)
	}
}

func TestCatalogUnavailableShowsRetry(t *testing.T) {
	h, m := newHarness(t)
	h.fake.FailNext(1)

	m, cmd := update(t, m, press("r"))
	m = apply(t, m, cmd)

	if m.snapshot.LastError == nil {
		t.Fatal("LastError = nil, want the failed fetch")
	}
	if len(m.snapshot.Results) != 6 {
		t.Fatalf("results = %d, want previous 6 kept", len(m.snapshot.Results))
	}

	m, cmd = update(t, m, press("r"))
	m = apply(t, m, cmd)
	if m.snapshot.LastError != nil {
		t.Fatalf("LastError = %v after retry, want nil", m.snapshot.LastError)
	}
}

func TestActivityViewTailsLog(t *testing.T) {
	_, m := newHarness(t)
	logPath := filepath.Join(t.TempDir(), "vitrine.log")
	lines := `{"level":"info","ts":1767600000.5,"logger":"app","msg":"vitrine starting"}
{"level":"warn","ts":1767600001.5,"logger":"shelf","msg":"snapshot write failed","error":"quota exceeded"}
`
	if err := os.WriteFile(logPath, []byte(lines), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	m.logPath = logPath

	m, cmd := update(t, m, press("4"))
	if m.currentView != ViewActivity {
		t.Fatalf("view = %v, want Activity", m.currentView)
	}
	m = apply(t, m, cmd)

	if m.activityErr != nil {
		t.Fatalf("activityErr = %v", m.activityErr)
	}
	view := m.activityViewport.View()
	for _, want := range []string{"vitrine starting", "snapshot write failed", "quota exceeded"} {
		if !strings.Contains(view, want) {
			t.Fatalf("activity view missing %q:\n%s", want, view)
		}
	}
}
