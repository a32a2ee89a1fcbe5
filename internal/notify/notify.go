// Package notify carries short user-visible messages from the domain stores
// to whoever displays them: a log file, the TUI toast line, or both.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Kind classifies a notification.
type Kind int

const (
	Info Kind = iota
	Added
	Removed
	CapacityExceeded
	Warning
	Error
)

func (k Kind) String() string {
	switch k {
	case Added:
		return "added"
	case Removed:
		return "removed"
	case CapacityExceeded:
		return "capacity exceeded"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "info"
	}
}

// Notification is one message.
type Notification struct {
	ID      uuid.UUID
	Kind    Kind
	Message string
	At      time.Time
}

// Notifier is fire-and-forget; implementations must not block the caller.
type Notifier interface {
	Notify(kind Kind, message string)
}

// Func adapts a function to Notifier.
type Func func(kind Kind, message string)

// Notify implements Notifier.
func (f Func) Notify(kind Kind, message string) { f(kind, message) }

// Discard drops every notification.
var Discard Notifier = Func(func(Kind, string) {})

// Multi fans a notification out to each notifier in order.
func Multi(notifiers ...Notifier) Notifier {
	list := make([]Notifier, 0, len(notifiers))
	for _, n := range notifiers {
		if n != nil {
			list = append(list, n)
		}
	}
	return Func(func(kind Kind, message string) {
		for _, n := range list {
			n.Notify(kind, message)
		}
	})
}

// Log writes notifications to a zap logger.
type Log struct {
	logger *zap.Logger
}

// NewLog returns a Notifier backed by logger. A nil logger discards.
func NewLog(logger *zap.Logger) *Log {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Log{logger: logger}
}

// Notify implements Notifier.
func (l *Log) Notify(kind Kind, message string) {
	fields := []zap.Field{zap.String("kind", kind.String())}
	switch kind {
	case Warning, CapacityExceeded:
		l.logger.Warn(message, fields...)
	case Error:
		l.logger.Error(message, fields...)
	default:
		l.logger.Info(message, fields...)
	}
}

const (
	defaultTTL   = 4 * time.Second
	maxQueueSize = 32
)

// Queue retains recent notifications for display. Each one stays active for
// the queue's TTL.
type Queue struct {
	mu    sync.Mutex
	ttl   time.Duration
	items []Notification
	now   func() time.Time
	wake  func()
}

// NewQueue returns a Queue. A ttl <= 0 uses four seconds.
func NewQueue(ttl time.Duration) *Queue {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Queue{ttl: ttl, now: time.Now}
}

// OnNotify registers fn to be called after each Notify, outside the lock.
// The TUI uses it to schedule a redraw.
func (q *Queue) OnNotify(fn func()) {
	q.mu.Lock()
	q.wake = fn
	q.mu.Unlock()
}

// Notify implements Notifier.
func (q *Queue) Notify(kind Kind, message string) {
	q.mu.Lock()
	q.items = append(q.items, Notification{
		ID:      uuid.New(),
		Kind:    kind,
		Message: message,
		At:      q.now(),
	})
	if len(q.items) > maxQueueSize {
		q.items = append([]Notification(nil), q.items[len(q.items)-maxQueueSize:]...)
	}
	wake := q.wake
	q.mu.Unlock()

	if wake != nil {
		wake()
	}
}

// Active returns the unexpired notifications, oldest first, and drops the
// expired ones.
func (q *Queue) Active() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()

	cutoff := q.now().Add(-q.ttl)
	kept := q.items[:0]
	for _, n := range q.items {
		if n.At.After(cutoff) {
			kept = append(kept, n)
		}
	}
	q.items = kept
	if len(kept) == 0 {
		return nil
	}
	return append([]Notification(nil), kept...)
}

// Latest returns the newest active notification.
func (q *Queue) Latest() (Notification, bool) {
	active := q.Active()
	if len(active) == 0 {
		return Notification{}, false
	}
	return active[len(active)-1], true
}
