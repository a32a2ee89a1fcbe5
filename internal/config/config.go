package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config captures everything vitrine reads at startup.
type Config struct {
	APIURL   string
	Storage  Storage
	Compare  Shelf
	Wishlist Shelf
	Listing  Listing
	Refresh  Refresh
	Log      Log
}

// Storage selects the snapshot backend.
type Storage struct {
	Backend  string
	Path     string
	RedisURL string
}

// Shelf configures one bounded set.
type Shelf struct {
	Capacity int
}

// Listing configures the catalog view.
type Listing struct {
	PageSize int
	PriceMin decimal.Decimal
	PriceMax decimal.Decimal
}

// Refresh configures the background shelf refresher. A zero Interval
// disables it.
type Refresh struct {
	Interval time.Duration
}

// Log configures the log file.
type Log struct {
	Path  string
	Level string
}

const (
	defaultConfigPath       = "~/.config/vitrine/config.toml"
	defaultAPIURL           = "http://127.0.0.1:8081/api/v1"
	defaultStorageBackend   = "file"
	defaultStoragePath      = "~/.local/share/vitrine"
	defaultCompareCapacity  = 4
	defaultWishlistCapacity = 50
	defaultPageSize         = 12
	defaultPriceMax         = 300000
	defaultRefreshSeconds   = 60
	defaultLogPath          = "~/.local/state/vitrine/vitrine.log"
	defaultLogLevel         = "info"
)

// Environment variables that override the file.
const (
	EnvAPIURL         = "VITRINE_API_URL"
	EnvStorageBackend = "VITRINE_STORAGE_BACKEND"
	EnvRedisURL       = "VITRINE_REDIS_URL"
)

var validBackends = map[string]bool{"file": true, "sqlite": true, "redis": true, "memory": true}

type rawConfig struct {
	APIURL  string `toml:"api_url" yaml:"api_url"`
	Storage struct {
		Backend  string `toml:"backend" yaml:"backend"`
		Path     string `toml:"path" yaml:"path"`
		RedisURL string `toml:"redis_url" yaml:"redis_url"`
	} `toml:"storage" yaml:"storage"`
	Compare struct {
		Capacity int `toml:"capacity" yaml:"capacity"`
	} `toml:"compare" yaml:"compare"`
	Wishlist struct {
		Capacity int `toml:"capacity" yaml:"capacity"`
	} `toml:"wishlist" yaml:"wishlist"`
	Listing struct {
		PageSize int      `toml:"page_size" yaml:"page_size"`
		PriceMin *float64 `toml:"price_min" yaml:"price_min"`
		PriceMax *float64 `toml:"price_max" yaml:"price_max"`
	} `toml:"listing" yaml:"listing"`
	Refresh struct {
		Interval *int `toml:"interval" yaml:"interval"`
	} `toml:"refresh" yaml:"refresh"`
	Log struct {
		Path  string `toml:"path" yaml:"path"`
		Level string `toml:"level" yaml:"level"`
	} `toml:"log" yaml:"log"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIURL: defaultAPIURL,
		Storage: Storage{
			Backend: defaultStorageBackend,
			Path:    mustExpand(defaultStoragePath),
		},
		Compare:  Shelf{Capacity: defaultCompareCapacity},
		Wishlist: Shelf{Capacity: defaultWishlistCapacity},
		Listing: Listing{
			PageSize: defaultPageSize,
			PriceMin: decimal.Zero,
			PriceMax: decimal.NewFromInt(defaultPriceMax),
		},
		Refresh: Refresh{Interval: defaultRefreshSeconds * time.Second},
		Log: Log{
			Path:  mustExpand(defaultLogPath),
			Level: defaultLogLevel,
		},
	}
}

// Load locates and parses the vitrine config, falling back to defaults when
// missing. Files ending in .yaml or .yml are read as YAML, everything else as
// TOML. Environment overrides are applied last.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			applyEnv(&cfg)
			return cfg, cfg.Validate()
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	switch strings.ToLower(filepath.Ext(resolved)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(bytes, &raw)
	default:
		err = toml.Unmarshal(bytes, &raw)
	}
	if err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	merge(&cfg, raw)
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func merge(cfg *Config, raw rawConfig) {
	if v := strings.TrimSpace(raw.APIURL); v != "" {
		cfg.APIURL = v
	}
	if v := strings.TrimSpace(raw.Storage.Backend); v != "" {
		cfg.Storage.Backend = strings.ToLower(v)
	}
	if v := strings.TrimSpace(raw.Storage.Path); v != "" {
		cfg.Storage.Path = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.Storage.RedisURL); v != "" {
		cfg.Storage.RedisURL = v
	}
	if raw.Compare.Capacity != 0 {
		cfg.Compare.Capacity = raw.Compare.Capacity
	}
	if raw.Wishlist.Capacity != 0 {
		cfg.Wishlist.Capacity = raw.Wishlist.Capacity
	}
	if raw.Listing.PageSize != 0 {
		cfg.Listing.PageSize = raw.Listing.PageSize
	}
	if raw.Listing.PriceMin != nil {
		cfg.Listing.PriceMin = decimal.NewFromFloat(*raw.Listing.PriceMin)
	}
	if raw.Listing.PriceMax != nil {
		cfg.Listing.PriceMax = decimal.NewFromFloat(*raw.Listing.PriceMax)
	}
	if raw.Refresh.Interval != nil {
		cfg.Refresh.Interval = time.Duration(*raw.Refresh.Interval) * time.Second
	}
	if v := strings.TrimSpace(raw.Log.Path); v != "" {
		cfg.Log.Path = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.Log.Level); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		cfg.APIURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvStorageBackend)); v != "" {
		cfg.Storage.Backend = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvRedisURL)); v != "" {
		cfg.Storage.RedisURL = v
	}
}

// Validate reports settings that cannot work.
func (c Config) Validate() error {
	if !validBackends[c.Storage.Backend] {
		return fmt.Errorf("invalid storage.backend %q", c.Storage.Backend)
	}
	if c.Compare.Capacity < 1 {
		return fmt.Errorf("compare.capacity must be positive, got %d", c.Compare.Capacity)
	}
	if c.Wishlist.Capacity < 1 {
		return fmt.Errorf("wishlist.capacity must be positive, got %d", c.Wishlist.Capacity)
	}
	if c.Listing.PageSize < 1 || c.Listing.PageSize > 100 {
		return fmt.Errorf("listing.page_size must be between 1 and 100, got %d", c.Listing.PageSize)
	}
	if c.Listing.PriceMin.IsNegative() || !c.Listing.PriceMin.LessThan(c.Listing.PriceMax) {
		return fmt.Errorf("listing price range %s..%s is invalid", c.Listing.PriceMin, c.Listing.PriceMax)
	}
	if c.Refresh.Interval < 0 {
		return fmt.Errorf("refresh.interval must not be negative")
	}
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

// ExpandPath resolves a leading ~ and makes path absolute.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
