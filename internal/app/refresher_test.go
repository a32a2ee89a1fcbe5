package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/goleak"

	"github.com/five82/vitrine/internal/catalog"
	"github.com/five82/vitrine/internal/shelf"
	"github.com/five82/vitrine/internal/storage"
)

func TestCalculateBackoff(t *testing.T) {
	baseInterval := time.Minute

	tests := []struct {
		name     string
		failures int
		want     time.Duration
	}{
		{"zero failures", 0, time.Minute},
		{"negative failures", -1, time.Minute},
		{"one failure", 1, 2 * time.Minute},
		{"two failures", 2, 4 * time.Minute},
		{"three failures capped", 3, 5 * time.Minute}, // Would be 8m, capped to 5m
		{"many failures capped", 40, 5 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calculateBackoff(tt.failures, baseInterval)
			if got != tt.want {
				t.Errorf("calculateBackoff(%d, %v) = %v, want %v", tt.failures, baseInterval, got, tt.want)
			}
		})
	}
}

func TestCalculateBackoff_MaxCap(t *testing.T) {
	baseInterval := 2 * time.Second
	for failures := 0; failures <= 64; failures++ {
		got := calculateBackoff(failures, baseInterval)
		if got > maxBackoff {
			t.Errorf("calculateBackoff(%d, %v) = %v, exceeds maxBackoff %v", failures, baseInterval, got, maxBackoff)
		}
	}
}

type fakeFetcher struct {
	mu       sync.Mutex
	products map[string]catalog.Product
	fail     map[string]error
	calls    map[string]int
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		products: make(map[string]catalog.Product),
		fail:     make(map[string]error),
		calls:    make(map[string]int),
	}
}

func (f *fakeFetcher) set(p catalog.Product) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products[p.ID] = p
}

func (f *fakeFetcher) callCount(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[id]
}

func (f *fakeFetcher) FetchProducts(context.Context, catalog.Query) (catalog.Page, error) {
	return catalog.Page{}, errors.New("not implemented")
}

func (f *fakeFetcher) FetchProduct(ctx context.Context, id string) (catalog.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[id]++
	if err := f.fail[id]; err != nil {
		return catalog.Product{}, err
	}
	p, ok := f.products[id]
	if !ok {
		return catalog.Product{}, catalog.ErrNotFound
	}
	return p, nil
}

func (f *fakeFetcher) FetchCategories(context.Context) ([]catalog.Category, error) {
	return nil, nil
}

func (f *fakeFetcher) FetchFilterMetadata(context.Context) (catalog.FilterMetadata, error) {
	return catalog.FilterMetadata{}, nil
}

func product(id, name, price string) catalog.Product {
	return catalog.Product{ID: id, Name: name, Price: decimal.RequireFromString(price)}
}

func readyShelf(t *testing.T, key string, products ...catalog.Product) *shelf.Store {
	t.Helper()
	s := shelf.New(storage.NewMemory(), shelf.Options{Key: key, Capacity: 4})
	if err := s.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	for _, p := range products {
		if got := s.Add(context.Background(), shelf.FromProduct(p, time.Now())); got != shelf.Added {
			t.Fatalf("Add(%s) = %v, want %v", p.ID, got, shelf.Added)
		}
	}
	return s
}

func TestRefreshOnceUpdatesInPlace(t *testing.T) {
	compare := readyShelf(t, "compare", product("a", "Lamp", "10"), product("b", "Kettle", "20"))
	wishlist := readyShelf(t, "wishlist", product("b", "Kettle", "20"), product("c", "Tent", "30"))

	fetcher := newFakeFetcher()
	fetcher.set(product("a", "Lamp", "12.50"))
	fetcher.set(product("b", "Kettle", "20"))
	// c is gone from the catalog

	updated, err := refreshOnce(context.Background(), fetcher, []*shelf.Store{compare, wishlist})
	if err != nil {
		t.Fatalf("refreshOnce() error = %v", err)
	}
	if updated != 1 {
		t.Fatalf("updated = %d, want 1", updated)
	}
	if got := fetcher.callCount("b"); got != 1 {
		t.Fatalf("FetchProduct(b) calls = %d, want 1 (ids are deduplicated)", got)
	}

	items := compare.Items()
	if items[0].ID != "a" || !items[0].Price.Equal(decimal.RequireFromString("12.50")) {
		t.Fatalf("compare[0] = %+v, want a at 12.50", items[0])
	}
	if got := wishlist.Len(); got != 2 {
		t.Fatalf("wishlist.Len() = %d, want 2 (missing products stay shelved)", got)
	}
}

func TestRefreshOnceReportsFailures(t *testing.T) {
	compare := readyShelf(t, "compare", product("a", "Lamp", "10"), product("b", "Kettle", "20"))

	fetcher := newFakeFetcher()
	fetcher.set(product("a", "Lamp", "11"))
	fetcher.fail["b"] = errors.New("connection refused")

	updated, err := refreshOnce(context.Background(), fetcher, []*shelf.Store{compare})
	if err == nil {
		t.Fatal("refreshOnce() error = nil, want failure for b")
	}
	if updated != 1 {
		t.Fatalf("updated = %d, want 1", updated)
	}
	if got := compare.Items()[1].Price; !got.Equal(decimal.RequireFromString("20")) {
		t.Fatalf("b price = %v, want unchanged 20", got)
	}
}

func TestStartRefresherStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	compare := readyShelf(t, "compare", product("a", "Lamp", "10"))
	fetcher := newFakeFetcher()
	fetcher.set(product("a", "Lamp", "9"))

	ctx, cancel := context.WithCancel(context.Background())
	done := StartRefresher(ctx, fetcher, 10*time.Millisecond, nil, compare)

	deadline := time.Now().Add(2 * time.Second)
	for !compare.Items()[0].Price.Equal(decimal.NewFromInt(9)) {
		if time.Now().After(deadline) {
			cancel()
			t.Fatal("refresher did not update the shelf")
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("refresher did not stop after cancel")
	}
}

func TestStartRefresherDisabled(t *testing.T) {
	defer goleak.VerifyNone(t)

	done := StartRefresher(context.Background(), newFakeFetcher(), 0, nil, readyShelf(t, "compare"))
	select {
	case <-done:
	default:
		t.Fatal("done channel open, want closed when interval is zero")
	}
}
