package app

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/five82/vitrine/internal/catalog"
	"github.com/five82/vitrine/internal/catalog/catalogfake"
	"github.com/five82/vitrine/internal/config"
	"github.com/five82/vitrine/internal/filter"
	"github.com/five82/vitrine/internal/logging"
	"github.com/five82/vitrine/internal/notify"
	"github.com/five82/vitrine/internal/prefs"
	"github.com/five82/vitrine/internal/shelf"
	"github.com/five82/vitrine/internal/state"
	"github.com/five82/vitrine/internal/storage"
	"github.com/five82/vitrine/internal/ui"
)

// Storage keys for the two shelves.
const (
	CompareKey  = "vitrine.compare"
	WishlistKey = "vitrine.wishlist"
)

const demoLatency = 300 * time.Millisecond

// Options configure the vitrine application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/vitrine/prefs.toml
	Verbose    bool
	Demo       bool   // serve the bundled demo catalog and keep shelves in memory
	APIURL     string // overrides the configured catalog URL
}

// Env holds the wired components shared by the TUI and the CLI
// subcommands.
type Env struct {
	Config    config.Config
	Prefs     prefs.Prefs
	PrefsPath string
	Logger    *zap.Logger
	Snapshots storage.Snapshots
	Client    catalog.Fetcher
	Compare   *shelf.Store
	Wishlist  *shelf.Store
	Notices   *notify.Queue

	closers []func() error
}

// Bootstrap loads configuration and builds every component. The shelves
// are returned uninitialized; call Initialize to hydrate them.
func Bootstrap(ctx context.Context, opts Options) (*Env, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.APIURL != "" {
		cfg.APIURL = opts.APIURL
	}

	logger, err := logging.New(logging.Options{
		Path:    cfg.Log.Path,
		Level:   cfg.Log.Level,
		Verbose: opts.Verbose,
	})
	if err != nil {
		return nil, err
	}

	env := &Env{Config: cfg, PrefsPath: opts.PrefsPath, Logger: logger}

	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		logger.Warn("preferences unavailable; using defaults", zap.Error(err))
	}
	env.Prefs = userPrefs

	if opts.Demo {
		apiURL, stop, err := startDemo(logger)
		if err != nil {
			env.Close()
			return nil, err
		}
		env.closers = append(env.closers, stop)
		env.Config.APIURL = apiURL
		env.Config.Storage.Backend = storage.BackendMemory
	}

	snapshots, err := storage.Open(ctx, storage.Options{
		Backend:  env.Config.Storage.Backend,
		Path:     env.Config.Storage.Path,
		RedisURL: env.Config.Storage.RedisURL,
	})
	if err != nil {
		env.Close()
		return nil, fmt.Errorf("open %s storage: %w", env.Config.Storage.Backend, err)
	}
	env.Snapshots = snapshots
	env.closers = append(env.closers, snapshots.Close)

	client, err := catalog.NewClient(env.Config.APIURL)
	if err != nil {
		env.Close()
		return nil, fmt.Errorf("init catalog client: %w", err)
	}
	env.Client = client

	env.Notices = notify.NewQueue(0)
	notifier := notify.Multi(notify.NewLog(logger.Named("notify")), env.Notices)

	env.Compare = shelf.New(snapshots, shelf.Options{
		Key:      CompareKey,
		Capacity: env.Config.Compare.Capacity,
		Label:    "compare",
		Notifier: notifier,
		Logger:   logger.Named("shelf"),
	})
	env.Wishlist = shelf.New(snapshots, shelf.Options{
		Key:      WishlistKey,
		Capacity: env.Config.Wishlist.Capacity,
		Label:    "wishlist",
		Notifier: notifier,
		Logger:   logger.Named("shelf"),
	})

	logger.Info("bootstrapped",
		zap.String("api_url", env.Config.APIURL),
		zap.String("storage", env.Config.Storage.Backend),
		zap.Bool("demo", opts.Demo),
	)
	return env, nil
}

// Initialize hydrates both shelves concurrently.
func (e *Env) Initialize(ctx context.Context) error {
	var g errgroup.Group
	for _, s := range e.Shelves() {
		g.Go(func() error {
			if err := s.Initialize(ctx); err != nil && !errors.Is(err, shelf.ErrAlreadyInitialized) {
				return errors.Wrapf(err, "hydrate %s", s.Label())
			}
			return nil
		})
	}
	return g.Wait()
}

// Shelves returns the compare and wishlist stores.
func (e *Env) Shelves() []*shelf.Store {
	return []*shelf.Store{e.Compare, e.Wishlist}
}

// Shelf returns the store with the given label.
func (e *Env) Shelf(label string) (*shelf.Store, bool) {
	for _, s := range e.Shelves() {
		if s != nil && s.Label() == label {
			return s, true
		}
	}
	return nil, false
}

// Close releases storage and the demo server, then flushes the logger.
func (e *Env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			e.Logger.Warn("close failed", zap.Error(err))
		}
	}
	e.closers = nil
	_ = e.Logger.Sync()
}

// Run boots the vitrine TUI until the user quits or the context is
// cancelled. The shelves hydrate in the background while the UI starts;
// gestures made in the meantime are queued by the shelves themselves.
func Run(ctx context.Context, opts Options) error {
	env, err := Bootstrap(ctx, opts)
	if err != nil {
		return err
	}
	defer env.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	hydrated := make(chan struct{})
	go func() {
		defer close(hydrated)
		if err := env.Initialize(ctx); err != nil {
			env.Logger.Error("hydration failed", zap.Error(err))
		}
	}()

	refreshed := StartRefresher(ctx, env.Client, env.Config.Refresh.Interval, env.Logger.Named("refresher"), env.Shelves()...)

	filterOpts := env.FilterOptions()
	uiErr := ui.Run(ui.Options{
		Context:   ctx,
		Client:    env.Client,
		Listing:   &state.Store{},
		Compare:   env.Compare,
		Wishlist:  env.Wishlist,
		Notices:   env.Notices,
		Logger:    env.Logger.Named("ui"),
		LogPath:   env.Config.Log.Path,
		Bounds:    filterOpts.Bounds,
		PageSize:  filterOpts.PageSize,
		Prefs:     env.Prefs,
		PrefsPath: env.PrefsPath,
	})

	cancel()
	<-hydrated
	<-refreshed
	return uiErr
}

// FilterOptions returns the listing engine settings: configured price
// bounds, and the page size and sort with user preferences applied.
func (e *Env) FilterOptions() filter.Options {
	l := e.Config.Listing
	pageSize := l.PageSize
	if e.Prefs.PageSize > 0 {
		pageSize = e.Prefs.PageSize
	}
	return filter.Options{
		Bounds:   filter.Bounds{Min: l.PriceMin, Max: l.PriceMax},
		PageSize: pageSize,
		Sort:     filter.SortKey(e.Prefs.Sort),
	}
}

// startDemo serves the bundled catalog on a loopback port and returns its
// API root.
func startDemo(logger *zap.Logger) (string, func() error, error) {
	products, categories := catalogfake.DemoCatalog()
	fake := catalogfake.New(products, categories)
	fake.SetLatency(demoLatency)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, fmt.Errorf("listen for demo catalog: %w", err)
	}
	srv := &http.Server{
		Handler:           fake.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("demo catalog stopped", zap.Error(err))
		}
	}()

	apiURL := "http://" + ln.Addr().String() + catalogfake.APIPrefix
	logger.Info("demo catalog listening", zap.String("api_url", apiURL))

	stop := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
	return apiURL, stop, nil
}
