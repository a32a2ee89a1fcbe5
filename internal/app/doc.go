// Package app is the composition root for vitrine.
//
// # Overview
//
// Bootstrap turns a config file and preferences into a wired Env: the zap
// logger, one storage.Snapshots backend shared by both shelves, the catalog
// client, the notification queue, and the compare and wishlist stores. The
// TUI (Run) and the cobra subcommands both start from an Env.
//
// # Startup
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       │
//	       ├─────> config.Load()        TOML or YAML, env overrides
//	       ├─────> logging.New()        JSON log file
//	       ├─────> storage.Open()       file, sqlite, redis or memory
//	       ├─────> shelf.New() x2       compare, wishlist
//	       ├─────> Env.Initialize()     hydrate (background)
//	       ├─────> StartRefresher()     keep shelved snapshots fresh
//	       └─────> ui.Run()             TUI (blocks)
//
// Hydration runs concurrently with the first frame. Gestures made before it
// finishes are queued by the shelves and replayed against the stored
// contents.
//
// # Refresher
//
// StartRefresher re-fetches every shelved product by id on a fixed interval
// with at most four requests in flight, and applies the results through
// shelf.Update so positions and AddedAt are kept. A round with failures
// doubles the next delay up to five minutes. Products the catalog no longer
// has are left untouched.
//
// # Demo mode
//
// With Options.Demo the bundled catalog is served from a loopback port by
// catalogfake and shelves live in memory, so nothing on disk is touched.
package app
