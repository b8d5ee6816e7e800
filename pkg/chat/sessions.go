package chat

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/malariainfo/pkg/cache"
	"github.com/dmitrymomot/malariainfo/pkg/decisiontree"
	"github.com/dmitrymomot/malariainfo/pkg/logger"
)

const (
	// DefaultSessionTTL is how long an untouched session survives.
	DefaultSessionTTL = 30 * time.Minute

	subscriberBuffer = 32
)

// Sessions owns the live widgets, one per visitor. Widgets expire after a
// period without access; expiry closes them and ends their subscriptions.
type Sessions struct {
	tree    *decisiontree.Tree
	store   *cache.Memory[*Widget]
	logger  *slog.Logger
	subs    map[string]map[chan Event]struct{}
	widget  []Option
	ttl     time.Duration
	maxSize int
	mu      sync.Mutex
}

// SessionsOption configures Sessions.
type SessionsOption func(*Sessions)

// WithSessionTTL sets the idle lifetime of a session.
func WithSessionTTL(d time.Duration) SessionsOption {
	return func(s *Sessions) {
		if d > 0 {
			s.ttl = d
		}
	}
}

// WithMaxSessions caps live sessions; the least recently used is closed
// when the cap is reached. Zero means unbounded.
func WithMaxSessions(n int) SessionsOption {
	return func(s *Sessions) { s.maxSize = n }
}

// WithWidgetOptions applies opts to every widget created.
func WithWidgetOptions(opts ...Option) SessionsOption {
	return func(s *Sessions) { s.widget = append(s.widget, opts...) }
}

// WithSessionsLogger sets the logger.
func WithSessionsLogger(l *slog.Logger) SessionsOption {
	return func(s *Sessions) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSessions creates an empty registry over tree.
func NewSessions(tree *decisiontree.Tree, opts ...SessionsOption) *Sessions {
	s := &Sessions{
		tree:    tree,
		logger:  logger.NewNope(),
		subs:    make(map[string]map[chan Event]struct{}),
		ttl:     DefaultSessionTTL,
		maxSize: 10000,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.store = cache.NewMemory(
		cache.WithDefaultTTL[*Widget](s.ttl),
		cache.WithSweepInterval[*Widget](min(s.ttl, time.Minute)),
		cache.WithMaxEntries[*Widget](s.maxSize),
		cache.WithSlidingExpiration[*Widget](),
		cache.WithEvictFunc(s.evicted),
	)
	return s
}

// Create opens a new conversation at the tree root.
func (s *Sessions) Create(ctx context.Context, locale string) (*Widget, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}

	opts := append([]Option{}, s.widget...)
	opts = append(opts,
		WithID(id.String()),
		WithLocale(locale),
		WithObserver(s.publish),
	)
	w := New(s.tree, opts...)

	if err := w.Start(s.tree.RootID()); err != nil {
		return nil, err
	}
	if err := s.store.Set(ctx, w.ID(), w, 0); err != nil {
		w.Close()
		return nil, err
	}

	s.logger.DebugContext(ctx, "chat session created",
		slog.String("session_id", w.ID()),
		slog.String("locale", locale),
	)
	return w, nil
}

// Get returns a live session and extends its lifetime.
func (s *Sessions) Get(ctx context.Context, id string) (*Widget, error) {
	w, err := s.store.Get(ctx, id)
	if errors.Is(err, cache.ErrNotFound) {
		return nil, ErrSessionNotFound
	}
	return w, err
}

// Delete closes and forgets a session. Unknown ids are not an error.
func (s *Sessions) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

// Subscribe streams events of session id until cancel is called or the
// session ends, at which point the channel is closed. Slow subscribers
// miss events rather than block the widget.
func (s *Sessions) Subscribe(ctx context.Context, id string) (<-chan Event, func(), error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, nil, err
	}

	ch := make(chan Event, subscriberBuffer)

	s.mu.Lock()
	if s.subs[id] == nil {
		s.subs[id] = make(map[chan Event]struct{})
	}
	s.subs[id][ch] = struct{}{}
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if set, ok := s.subs[id]; ok {
				if _, ok := set[ch]; ok {
					delete(set, ch)
					close(ch)
				}
				if len(set) == 0 {
					delete(s.subs, id)
				}
			}
		})
	}
	return ch, cancel, nil
}

// TTL returns the idle lifetime of a session.
func (s *Sessions) TTL() time.Duration {
	return s.ttl
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	return s.store.Len()
}

// Close ends every session.
func (s *Sessions) Close() error {
	return s.store.Close()
}

func (s *Sessions) publish(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for ch := range s.subs[e.SessionID] {
		select {
		case ch <- e:
		default:
			s.logger.Warn("chat subscriber too slow, event dropped",
				slog.String("session_id", e.SessionID),
				slog.String("event", string(e.Type)),
			)
		}
	}
}

func (s *Sessions) evicted(id string, w *Widget) {
	w.Close()

	s.mu.Lock()
	for ch := range s.subs[id] {
		close(ch)
	}
	delete(s.subs, id)
	s.mu.Unlock()
}
