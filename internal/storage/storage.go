// Package storage persists opaque snapshots under namespace keys.
//
// Shelves share one Snapshots instance and each owns a single key
// (e.g. "vitrine.compare"). Backends are interchangeable: file for the
// default single-user setup, sqlite for a single database file, redis for a
// profile shared between machines, memory for tests and the demo.
package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// Snapshots reads and writes serialized snapshots by key.
type Snapshots interface {
	// Read returns the stored bytes. ok is false when the key has never been
	// written or was deleted.
	Read(ctx context.Context, key string) (data []byte, ok bool, err error)
	Write(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Options select and configure a backend.
type Options struct {
	Backend  string
	Path     string // directory for file, database path for sqlite
	RedisURL string
}

// Open constructs the backend named by opts.Backend. An empty backend means
// file.
func Open(ctx context.Context, opts Options) (Snapshots, error) {
	backend := strings.ToLower(strings.TrimSpace(opts.Backend))
	switch backend {
	case "", BackendFile:
		return NewFile(opts.Path)
	case BackendSQLite:
		path := opts.Path
		if filepath.Ext(path) == "" {
			path = filepath.Join(path, "vitrine.db")
		}
		return NewSQLite(ctx, path)
	case BackendRedis:
		return NewRedis(ctx, opts.RedisURL)
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}

func validKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("snapshot key is empty")
	}
	return nil
}
