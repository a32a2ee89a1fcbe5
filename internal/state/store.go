package state

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/five82/vitrine/internal/catalog"
)

// Snapshot represents the latest listing data available to the UI.
type Snapshot struct {
	Results             []catalog.Product
	Count               int
	HasNext             bool
	Page                int
	TotalPages          int
	Query               catalog.Query // query of the applied results
	HasResults          bool
	Loading             bool
	Pending             catalog.Query // query of the in-flight fetch
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int    // Number of consecutive fetch failures
	Discarded           uint64 // stale responses dropped so far
}

// IsOffline returns true when the catalog has been unreachable for multiple
// fetches in a row.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Ticket identifies one listing fetch. Ctx is cancelled as soon as a newer
// fetch begins.
type Ticket struct {
	Seq   uint64
	Query catalog.Query
	Ctx   context.Context
}

// Store holds the listing snapshot and guards it against out-of-order
// responses: only the most recently begun fetch may complete it.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
	seq      uint64
	cancel   context.CancelFunc
}

// Begin starts a fetch for query, cancelling any fetch still in flight.
func (s *Store) Begin(parent context.Context, query catalog.Query) Ticket {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	s.seq++
	s.cancel = cancel
	s.snapshot.Loading = true
	s.snapshot.Pending = query
	return Ticket{Seq: s.seq, Query: query, Ctx: ctx}
}

// Complete applies the result of the fetch identified by t. Results from a
// superseded fetch are discarded and Complete returns false. On error the
// previous results are kept and the error is recorded for visibility.
func (s *Store) Complete(t Ticket, page catalog.Page, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.Seq != s.seq {
		s.snapshot.Discarded++
		return false
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.snapshot.Loading = false
	s.snapshot.Pending = catalog.Query{}
	s.snapshot.LastUpdated = time.Now()

	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.ConsecutiveFailures++
		return true
	}

	s.snapshot.Results = cloneProducts(page.Results)
	s.snapshot.Count = page.Count
	s.snapshot.HasNext = page.HasNext
	s.snapshot.Page = page.Number
	s.snapshot.TotalPages = page.TotalPages
	s.snapshot.Query = t.Query
	s.snapshot.HasResults = true
	s.snapshot.LastError = nil
	s.snapshot.ConsecutiveFailures = 0
	return true
}

// Cancel abandons the in-flight fetch, if any. Its eventual Complete is
// discarded.
func (s *Store) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.seq++
	s.snapshot.Loading = false
	s.snapshot.Pending = catalog.Query{}
}

// Current returns the sequence number of the newest fetch.
func (s *Store) Current() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seq
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Results = cloneProducts(s.snapshot.Results)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func cloneProducts(items []catalog.Product) []catalog.Product {
	if len(items) == 0 {
		return nil
	}
	dup := make([]catalog.Product, len(items))
	copy(dup, items)
	return dup
}
