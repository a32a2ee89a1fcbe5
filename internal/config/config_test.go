package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvAPIURL, "")
	t.Setenv(EnvStorageBackend, "")
	t.Setenv(EnvRedisURL, "")
}

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	clearEnv(t)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIURL != defaultAPIURL {
		t.Fatalf("APIURL = %q, want %q", cfg.APIURL, defaultAPIURL)
	}

	wantStorage, err := expandPath(defaultStoragePath)
	if err != nil {
		t.Fatalf("expandPath(defaultStoragePath) returned error: %v", err)
	}
	if cfg.Storage.Path != wantStorage || cfg.Storage.Backend != "file" {
		t.Fatalf("Storage = %+v, want file at %q", cfg.Storage, wantStorage)
	}
	if cfg.Compare.Capacity != 4 || cfg.Wishlist.Capacity != 50 {
		t.Fatalf("capacities = %d/%d, want 4/50", cfg.Compare.Capacity, cfg.Wishlist.Capacity)
	}
	if !cfg.Listing.PriceMax.Equal(decimal.NewFromInt(300000)) || cfg.Listing.PageSize != 12 {
		t.Fatalf("Listing = %+v, want page size 12 and max 300000", cfg.Listing)
	}
	if cfg.Refresh.Interval != time.Minute {
		t.Fatalf("Refresh.Interval = %v, want 1m", cfg.Refresh.Interval)
	}
	if !strings.HasPrefix(cfg.Log.Path, home) {
		t.Fatalf("Log.Path = %q, want it under HOME %q", cfg.Log.Path, home)
	}
}

func TestLoad_ParsesAndTrimsTOML(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
api_url = "  https://shop.example.com/api/v1  "

[storage]
backend = " SQLite "
path = "~/vitrine/state.db"

[compare]
capacity = 3

[listing]
page_size = 24
price_min = 5.0
price_max = 2500.5

[refresh]
interval = 0

[log]
level = "DEBUG"
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIURL != "https://shop.example.com/api/v1" {
		t.Fatalf("APIURL = %q", cfg.APIURL)
	}
	if cfg.Storage.Backend != "sqlite" || cfg.Storage.Path != filepath.Join(home, "vitrine", "state.db") {
		t.Fatalf("Storage = %+v, want sqlite under HOME", cfg.Storage)
	}
	if cfg.Compare.Capacity != 3 || cfg.Wishlist.Capacity != defaultWishlistCapacity {
		t.Fatalf("capacities = %d/%d, want 3/%d", cfg.Compare.Capacity, cfg.Wishlist.Capacity, defaultWishlistCapacity)
	}
	if cfg.Listing.PageSize != 24 ||
		!cfg.Listing.PriceMin.Equal(decimal.NewFromInt(5)) ||
		!cfg.Listing.PriceMax.Equal(decimal.RequireFromString("2500.5")) {
		t.Fatalf("Listing = %+v", cfg.Listing)
	}
	if cfg.Refresh.Interval != 0 {
		t.Fatalf("Refresh.Interval = %v, want disabled", cfg.Refresh.Interval)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("Log.Level = %q, want debug", cfg.Log.Level)
	}
}

func TestLoad_ParsesYAML(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(`
api_url: http://10.0.0.5:9000/api/v1
storage:
  backend: redis
  redis_url: redis://cache:6379/2
wishlist:
  capacity: 10
refresh:
  interval: 15
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIURL != "http://10.0.0.5:9000/api/v1" || cfg.Storage.Backend != "redis" || cfg.Storage.RedisURL != "redis://cache:6379/2" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.Wishlist.Capacity != 10 || cfg.Refresh.Interval != 15*time.Second {
		t.Fatalf("wishlist %d refresh %v, want 10 and 15s", cfg.Wishlist.Capacity, cfg.Refresh.Interval)
	}
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv(EnvAPIURL, "http://override:1/api/v1")
	t.Setenv(EnvStorageBackend, "memory")
	t.Setenv(EnvRedisURL, "redis://env:6379")

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("api_url = \"http://file/api/v1\"\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIURL != "http://override:1/api/v1" || cfg.Storage.Backend != "memory" || cfg.Storage.RedisURL != "redis://env:6379" {
		t.Fatalf("cfg = %+v, want env overrides", cfg)
	}
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	clearEnv(t)

	cases := map[string]string{
		"backend":   "[storage]\nbackend = \"floppy\"\n",
		"capacity":  "[compare]\ncapacity = -1\n",
		"page size": "[listing]\npage_size = 500\n",
		"prices":    "[listing]\nprice_min = 10\nprice_max = 5\n",
		"refresh":   "[refresh]\ninterval = -5\n",
		"syntax":    "api_url = \n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
				t.Fatalf("WriteFile: %v", err)
			}
			if _, err := Load(path); err == nil {
				t.Fatalf("Load returned nil error for %s", name)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := ExpandPath("~/x")
	if err != nil || got != filepath.Join(home, "x") {
		t.Fatalf("ExpandPath(~/x) = %q, %v", got, err)
	}
	if _, err := ExpandPath("   "); err == nil {
		t.Fatalf("ExpandPath(blank) returned nil error")
	}
}
