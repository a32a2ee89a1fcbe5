package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/five82/vitrine/internal/catalog"
	"github.com/five82/vitrine/internal/config"
	"github.com/five82/vitrine/internal/filter"
	"github.com/five82/vitrine/internal/prefs"
	"github.com/five82/vitrine/internal/shelf"
	"github.com/five82/vitrine/internal/storage"
)

func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(config.EnvAPIURL, "")
	t.Setenv(config.EnvStorageBackend, "")
	t.Setenv(config.EnvRedisURL, "")
	return home
}

func TestBootstrapDemo(t *testing.T) {
	home := isolateHome(t)
	ctx := context.Background()

	env, err := Bootstrap(ctx, Options{
		ConfigPath: filepath.Join(home, "missing.toml"),
		PrefsPath:  filepath.Join(home, "prefs.toml"),
		Demo:       true,
	})
	if err != nil {
		t.Fatalf("Bootstrap() error = %v", err)
	}
	defer env.Close()

	if env.Config.Storage.Backend != storage.BackendMemory {
		t.Fatalf("storage backend = %q, want %q", env.Config.Storage.Backend, storage.BackendMemory)
	}
	if err := env.Initialize(ctx); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if got := env.Compare.State(); got != shelf.Ready {
		t.Fatalf("compare state = %v, want %v", got, shelf.Ready)
	}
	if got := env.Wishlist.Capacity(); got != 50 {
		t.Fatalf("wishlist capacity = %d, want 50", got)
	}

	page, err := env.Client.FetchProducts(ctx, catalog.Query{Page: 1, Limit: 5})
	if err != nil {
		t.Fatalf("FetchProducts() error = %v", err)
	}
	if len(page.Results) != 5 || !page.HasNext {
		t.Fatalf("page = %d results hasNext=%v, want 5 with more", len(page.Results), page.HasNext)
	}

	if _, err := os.Stat(filepath.Join(home, ".local", "state", "vitrine", "vitrine.log")); err != nil {
		t.Fatalf("log file missing: %v", err)
	}
}

func TestBootstrapPersistsAcrossRestarts(t *testing.T) {
	home := isolateHome(t)
	ctx := context.Background()
	cfgPath := filepath.Join(home, "config.toml")
	data := "api_url = \"http://127.0.0.1:1/api/v1\"\n\n[storage]\nbackend = \"sqlite\"\npath = \"" + filepath.Join(home, "data") + "\"\n"
	if err := os.WriteFile(cfgPath, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	open := func() *Env {
		env, err := Bootstrap(ctx, Options{ConfigPath: cfgPath})
		if err != nil {
			t.Fatalf("Bootstrap() error = %v", err)
		}
		if err := env.Initialize(ctx); err != nil {
			t.Fatalf("Initialize() error = %v", err)
		}
		return env
	}

	env := open()
	env.Compare.Add(ctx, shelf.Item{ID: "prod-01", Name: "Lamp"})
	env.Wishlist.Add(ctx, shelf.Item{ID: "prod-02", Name: "Kettle"})
	env.Close()

	env = open()
	defer env.Close()
	if !env.Compare.Contains("prod-01") || env.Compare.Contains("prod-02") {
		t.Fatalf("compare = %+v, want only prod-01", env.Compare.Items())
	}
	if !env.Wishlist.Contains("prod-02") {
		t.Fatalf("wishlist = %+v, want prod-02", env.Wishlist.Items())
	}
}

func TestEnvShelfLookup(t *testing.T) {
	env := &Env{
		Compare:  shelf.New(storage.NewMemory(), shelf.Options{Key: CompareKey, Label: "compare"}),
		Wishlist: shelf.New(storage.NewMemory(), shelf.Options{Key: WishlistKey, Label: "wishlist"}),
	}
	if s, ok := env.Shelf("wishlist"); !ok || s != env.Wishlist {
		t.Fatalf("Shelf(wishlist) = %v, %v; want wishlist store", s, ok)
	}
	if _, ok := env.Shelf("cart"); ok {
		t.Fatal("Shelf(cart) ok = true, want false")
	}
}

func TestFilterOptionsAppliesPrefs(t *testing.T) {
	env := &Env{
		Config: config.Config{Listing: config.Listing{
			PageSize: 12,
			PriceMin: decimal.Zero,
			PriceMax: decimal.NewFromInt(5000),
		}},
		Prefs: prefs.Prefs{Sort: "rating", PageSize: 24},
	}

	opts := env.FilterOptions()
	if opts.PageSize != 24 || opts.Sort != filter.SortRating {
		t.Fatalf("FilterOptions() = %+v, want page size 24 sorted by rating", opts)
	}
	if !opts.Bounds.Max.Equal(decimal.NewFromInt(5000)) {
		t.Fatalf("Bounds.Max = %s, want 5000", opts.Bounds.Max)
	}

	env.Prefs = prefs.Prefs{}
	if got := env.FilterOptions().PageSize; got != 12 {
		t.Fatalf("PageSize without prefs = %d, want 12", got)
	}
}
