package shelf

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/five82/vitrine/internal/notify"
	"github.com/five82/vitrine/internal/storage"
)

const defaultCapacity = 4

var (
	// ErrAlreadyInitialized is returned by a second Initialize call.
	ErrAlreadyInitialized = errors.New("shelf already initialized")
	// ErrNotReady is returned by Purge before hydration completes.
	ErrNotReady = errors.New("shelf not hydrated")
)

// Options configure a Store.
type Options struct {
	Key      string // storage key, e.g. "vitrine.compare"
	Capacity int    // zero means 4
	Label    string // shown in notifications, e.g. "compare"
	Notifier notify.Notifier
	Logger   *zap.Logger
	Now      func() time.Time
}

// Snapshot is a point-in-time copy of a Store.
type Snapshot struct {
	Items    []Item
	Capacity int
	Visible  bool
	State    State
}

// Store is a bounded, ordered, duplicate-free set of items persisted under a
// single storage key.
//
// Mutations received before Initialize finishes are queued in arrival order
// and applied against the hydrated contents, so a persisted snapshot is never
// overwritten by a pre-hydration default.
type Store struct {
	snapshots storage.Snapshots
	key       string
	label     string
	capacity  int
	notifier  notify.Notifier
	logger    *zap.Logger
	now       func() time.Time

	mu        sync.Mutex
	state     State
	items     []Item
	visible   bool
	pending   []mutation
	version   uint64
	listeners map[int]func(Snapshot)
	nextID    int

	persistMu      sync.Mutex
	persisted      uint64
	persistFailing bool
}

type opKind int

const (
	opAdd opKind = iota
	opRemove
	opUpdate
	opClear
)

type mutation struct {
	op   opKind
	item Item
	id   string
}

type notice struct {
	kind notify.Kind
	msg  string
}

// New builds a Store in the Uninitialized state.
func New(snapshots storage.Snapshots, opts Options) *Store {
	capacity := opts.Capacity
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	label := strings.TrimSpace(opts.Label)
	if label == "" {
		label = opts.Key
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notify.Discard
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Store{
		snapshots: snapshots,
		key:       opts.Key,
		label:     label,
		capacity:  capacity,
		notifier:  notifier,
		logger:    logger.With(zap.String("shelf", label)),
		now:       now,
		listeners: make(map[int]func(Snapshot)),
	}
}

// Initialize hydrates the store from storage exactly once. A missing, corrupt
// or unreadable snapshot hydrates as empty; that is logged, not returned.
func (s *Store) Initialize(ctx context.Context) error {
	s.mu.Lock()
	if s.state != Uninitialized {
		s.mu.Unlock()
		return ErrAlreadyInitialized
	}
	s.state = Hydrating
	s.mu.Unlock()
	s.dispatch()

	items := s.hydrate(ctx)

	s.mu.Lock()
	s.items = items
	s.state = Ready
	queued := s.pending
	s.pending = nil

	var notices []notice
	changed := false
	for _, m := range queued {
		outcome, n := s.apply(m)
		notices = append(notices, n...)
		changed = changed || outcome.Changed()
	}
	data, version := s.stage(changed)
	s.mu.Unlock()

	if len(queued) > 0 {
		s.logger.Debug("replayed queued mutations", zap.Int("count", len(queued)))
	}
	s.finish(ctx, data, version, notices, true)
	return nil
}

func (s *Store) hydrate(ctx context.Context) []Item {
	data, ok, err := s.snapshots.Read(ctx, s.key)
	if err != nil {
		s.logger.Warn("snapshot read failed; starting empty", zap.Error(err))
		return nil
	}
	if !ok {
		return nil
	}
	items, err := Decode(data)
	if err != nil {
		s.logger.Warn("snapshot corrupt; starting empty", zap.Error(err))
		return nil
	}
	if len(items) > s.capacity {
		s.logger.Warn("snapshot exceeds capacity; truncating",
			zap.Int("items", len(items)), zap.Int("capacity", s.capacity))
		items = items[:s.capacity]
	}
	return items
}

// OnChange registers fn to receive a snapshot after every state change. fn
// runs on the goroutine that made the change, outside the store lock.
func (s *Store) OnChange(fn func(Snapshot)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// Add appends item unless it is already present or the shelf is full.
func (s *Store) Add(ctx context.Context, item Item) Outcome {
	item.ID = strings.TrimSpace(item.ID)
	if item.ID == "" {
		return Invalid
	}
	if item.AddedAt.IsZero() {
		item.AddedAt = s.now()
	}
	return s.mutate(ctx, mutation{op: opAdd, item: item})
}

// Remove drops the item with id if present.
func (s *Store) Remove(ctx context.Context, id string) Outcome {
	id = strings.TrimSpace(id)
	if id == "" {
		return Invalid
	}
	return s.mutate(ctx, mutation{op: opRemove, id: id})
}

// Clear empties the shelf.
func (s *Store) Clear(ctx context.Context) Outcome {
	return s.mutate(ctx, mutation{op: opClear})
}

// Update replaces the stored snapshot for item.ID in place. The original
// AddedAt is kept.
func (s *Store) Update(ctx context.Context, item Item) Outcome {
	item.ID = strings.TrimSpace(item.ID)
	if item.ID == "" {
		return Invalid
	}
	return s.mutate(ctx, mutation{op: opUpdate, item: item})
}

// Purge empties the shelf and deletes its persisted snapshot.
func (s *Store) Purge(ctx context.Context) error {
	s.mu.Lock()
	if s.state != Ready {
		s.mu.Unlock()
		return ErrNotReady
	}
	s.items = nil
	s.visible = false
	s.version++
	version := s.version
	s.mu.Unlock()

	s.persistMu.Lock()
	err := s.snapshots.Delete(ctx, s.key)
	if err == nil {
		s.persisted = version
	}
	s.persistMu.Unlock()

	s.dispatch()
	if err != nil {
		return errors.Wrap(err, "purge snapshot")
	}
	s.logger.Info("snapshot purged")
	return nil
}

func (s *Store) mutate(ctx context.Context, m mutation) Outcome {
	s.mu.Lock()
	if s.state != Ready {
		s.pending = append(s.pending, m)
		s.mu.Unlock()
		s.logger.Debug("mutation queued until hydrated")
		return Deferred
	}
	outcome, notices := s.apply(m)
	data, version := s.stage(outcome.Changed())
	s.mu.Unlock()

	s.finish(ctx, data, version, notices, outcome.Changed())
	return outcome
}

// apply must be called with s.mu held.
func (s *Store) apply(m mutation) (Outcome, []notice) {
	switch m.op {
	case opAdd:
		if s.indexOf(m.item.ID) >= 0 {
			return Duplicate, nil
		}
		if len(s.items) >= s.capacity {
			return Full, []notice{{
				kind: notify.CapacityExceeded,
				msg:  fmt.Sprintf("capacity exceeded: %s holds at most %d items", s.label, s.capacity),
			}}
		}
		s.items = append(s.items, m.item)
		s.visible = true
		return Added, []notice{{kind: notify.Added, msg: fmt.Sprintf("Added %s to %s", displayName(m.item), s.label)}}

	case opRemove:
		idx := s.indexOf(m.id)
		if idx < 0 {
			return Missing, nil
		}
		removed := s.items[idx]
		s.items = append(s.items[:idx:idx], s.items[idx+1:]...)
		return Removed, []notice{{kind: notify.Removed, msg: fmt.Sprintf("Removed %s from %s", displayName(removed), s.label)}}

	case opUpdate:
		idx := s.indexOf(m.item.ID)
		if idx < 0 {
			return Missing, nil
		}
		if s.items[idx].sameSnapshot(m.item) {
			return Unchanged, nil
		}
		m.item.AddedAt = s.items[idx].AddedAt
		s.items[idx] = m.item
		return Updated, nil

	case opClear:
		had := len(s.items)
		s.items = nil
		if had == 0 {
			return Cleared, nil
		}
		return Cleared, []notice{{kind: notify.Removed, msg: fmt.Sprintf("Cleared %s", s.label)}}
	}
	return Invalid, nil
}

// stage must be called with s.mu held. It bumps the version and encodes the
// current items when changed is true.
func (s *Store) stage(changed bool) ([]byte, uint64) {
	if !changed {
		return nil, 0
	}
	s.version++
	data, err := Encode(s.items)
	if err != nil {
		s.logger.Error("snapshot encode failed", zap.Error(err))
		return nil, 0
	}
	return data, s.version
}

func (s *Store) finish(ctx context.Context, data []byte, version uint64, notices []notice, changed bool) {
	if data != nil {
		s.persist(ctx, data, version)
	}
	for _, n := range notices {
		s.notifier.Notify(n.kind, n.msg)
	}
	if changed {
		s.dispatch()
	}
}

// persist writes data unless a newer version already reached storage.
// Failures are logged and swallowed; memory stays authoritative.
func (s *Store) persist(ctx context.Context, data []byte, version uint64) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	if version <= s.persisted {
		return
	}
	if err := s.snapshots.Write(ctx, s.key, data); err != nil {
		s.logger.Warn("snapshot write failed", zap.Error(err), zap.Uint64("version", version))
		if !s.persistFailing {
			s.persistFailing = true
			s.notifier.Notify(notify.Warning, fmt.Sprintf("persist failed: %s changes are kept for this session only", s.label))
		}
		return
	}
	s.persisted = version
	if s.persistFailing {
		s.persistFailing = false
		s.logger.Info("snapshot write recovered")
	}
}

func (s *Store) dispatch() {
	s.mu.Lock()
	if len(s.listeners) == 0 {
		s.mu.Unlock()
		return
	}
	snap := s.snapshotLocked()
	fns := make([]func(Snapshot), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func (s *Store) indexOf(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Items:    cloneItems(s.items),
		Capacity: s.capacity,
		Visible:  s.visible,
		State:    s.state,
	}
}

// Snapshot returns a copy of the current contents and flags.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Items returns the items in insertion order.
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneItems(s.items)
}

// Contains reports whether id is on the shelf.
func (s *Store) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexOf(strings.TrimSpace(id)) >= 0
}

// Len returns the number of items.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Capacity returns the maximum number of items.
func (s *Store) Capacity() int { return s.capacity }

// Full reports whether another Add would be rejected.
func (s *Store) Full() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items) >= s.capacity
}

// State returns the hydration state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Label returns the display name given in Options.
func (s *Store) Label() string { return s.label }

// Visible reports the summary bar flag. Add sets it; the view hides it.
func (s *Store) Visible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

// SetVisible sets the summary bar flag. It is not persisted.
func (s *Store) SetVisible(v bool) {
	s.mu.Lock()
	changed := s.visible != v
	s.visible = v
	s.mu.Unlock()
	if changed {
		s.dispatch()
	}
}

func cloneItems(items []Item) []Item {
	if len(items) == 0 {
		return nil
	}
	dup := make([]Item, len(items))
	copy(dup, items)
	return dup
}

func displayName(item Item) string {
	if name := strings.TrimSpace(item.Name); name != "" {
		return name
	}
	return item.ID
}
