package app

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/five82/vitrine/internal/catalog"
	"github.com/five82/vitrine/internal/shelf"
)

const (
	// maxBackoff caps the delay between refreshes after repeated failures.
	maxBackoff = 5 * time.Minute

	refreshConcurrency = 4
)

// StartRefresher launches a background goroutine that re-fetches every
// shelved product at a fixed cadence and updates the shelves in place.
// Failed rounds back off exponentially. The returned channel is closed once
// the goroutine exits; a non-positive interval disables refreshing.
func StartRefresher(ctx context.Context, fetcher catalog.Fetcher, interval time.Duration, logger *zap.Logger, shelves ...*shelf.Store) <-chan struct{} {
	done := make(chan struct{})
	if interval <= 0 || fetcher == nil || len(shelves) == 0 {
		close(done)
		return done
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	go func() {
		defer close(done)
		timer := time.NewTimer(interval)
		defer timer.Stop()

		failures := 0
		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}

			updated, err := refreshOnce(ctx, fetcher, shelves)
			switch {
			case ctx.Err() != nil:
				return
			case err != nil:
				failures++
				logger.Warn("shelf refresh failed",
					zap.Error(err),
					zap.Int("consecutive_failures", failures),
				)
			default:
				failures = 0
			}
			if updated > 0 {
				logger.Debug("shelf refresh applied", zap.Int("updated", updated))
			}
			timer.Reset(calculateBackoff(failures, interval))
		}
	}()
	return done
}

// calculateBackoff doubles the base interval per consecutive failure, capped
// at maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	d := base
	for i := 0; i < failures; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}

// refreshOnce fetches each shelved product once and applies the results.
// A product the catalog no longer has stays shelved as-is. It returns how
// many items changed and the first fetch error, if any.
func refreshOnce(ctx context.Context, fetcher catalog.Fetcher, shelves []*shelf.Store) (int, error) {
	ids := shelvedIDs(shelves)
	if len(ids) == 0 {
		return 0, nil
	}

	var (
		mu     sync.Mutex
		fresh  = make(map[string]catalog.Product, len(ids))
		failed []error
	)
	var g errgroup.Group
	g.SetLimit(refreshConcurrency)
	for _, id := range ids {
		g.Go(func() error {
			product, err := fetcher.FetchProduct(ctx, id)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case errors.Is(err, catalog.ErrNotFound):
			case err != nil:
				failed = append(failed, errors.Wrapf(err, "refresh %s", id))
			default:
				fresh[id] = product
			}
			return nil
		})
	}
	_ = g.Wait()

	now := time.Now()
	updated := 0
	for _, s := range shelves {
		if s == nil {
			continue
		}
		for _, item := range s.Items() {
			product, ok := fresh[item.ID]
			if !ok {
				continue
			}
			if s.Update(ctx, shelf.FromProduct(product, now)) == shelf.Updated {
				updated++
			}
		}
	}

	if len(failed) > 0 {
		return updated, errors.Wrapf(failed[0], "%d of %d products failed", len(failed), len(ids))
	}
	return updated, nil
}

func shelvedIDs(shelves []*shelf.Store) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, s := range shelves {
		if s == nil {
			continue
		}
		for _, item := range s.Items() {
			if seen[item.ID] {
				continue
			}
			seen[item.ID] = true
			ids = append(ids, item.ID)
		}
	}
	return ids
}
