package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

type memoryItem[V any] struct {
	expiresAt time.Time // zero: never
	value     V
	key       string
	ttl       time.Duration
}

// Memory is a process-local cache with TTL expiry and optional LRU bound.
// Eviction callbacks run outside the cache lock, so they may call back into it.
type Memory[V any] struct {
	items   map[string]*list.Element
	order   *list.List // front = most recently used
	onEvict func(key string, value V)
	now     func() time.Time
	done    chan struct{}

	defaultTTL time.Duration
	sweepEvery time.Duration
	maxEntries int
	sliding    bool

	mu     sync.Mutex
	closed bool
}

// MemoryOption configures a Memory cache.
type MemoryOption[V any] func(*Memory[V])

// WithDefaultTTL is used when Set receives a zero TTL. Default: 1 hour.
func WithDefaultTTL[V any](d time.Duration) MemoryOption[V] {
	return func(m *Memory[V]) { m.defaultTTL = d }
}

// WithSweepInterval sets how often expired entries are purged in the
// background. Zero disables the sweeper. Default: 1 minute.
func WithSweepInterval[V any](d time.Duration) MemoryOption[V] {
	return func(m *Memory[V]) { m.sweepEvery = d }
}

// WithMaxEntries bounds the cache; the least recently used entry is evicted
// when full. Zero means unbounded.
func WithMaxEntries[V any](n int) MemoryOption[V] {
	return func(m *Memory[V]) { m.maxEntries = n }
}

// WithEvictFunc registers a callback for every entry that leaves the cache:
// expiry, LRU eviction, Delete and Close.
func WithEvictFunc[V any](fn func(key string, value V)) MemoryOption[V] {
	return func(m *Memory[V]) { m.onEvict = fn }
}

// WithSlidingExpiration makes every successful Get push the expiry forward
// by the entry's TTL.
func WithSlidingExpiration[V any]() MemoryOption[V] {
	return func(m *Memory[V]) { m.sliding = true }
}

// WithClock overrides the time source.
func WithClock[V any](now func() time.Time) MemoryOption[V] {
	return func(m *Memory[V]) { m.now = now }
}

// NewMemory creates a Memory cache and starts its sweeper.
func NewMemory[V any](opts ...MemoryOption[V]) *Memory[V] {
	m := &Memory[V]{
		items:      make(map[string]*list.Element),
		order:      list.New(),
		now:        time.Now,
		done:       make(chan struct{}),
		defaultTTL: time.Hour,
		sweepEvery: time.Minute,
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.sweepEvery > 0 {
		go m.sweep()
	}

	return m
}

func (m *Memory[V]) Get(_ context.Context, key string) (V, error) {
	var zero V

	m.mu.Lock()
	elem, ok := m.items[key]
	if !ok {
		m.mu.Unlock()
		return zero, ErrNotFound
	}

	it := elem.Value.(*memoryItem[V])
	now := m.now()
	if m.expired(it, now) {
		m.unlink(elem)
		m.mu.Unlock()
		m.notify(it)
		return zero, ErrNotFound
	}

	if m.sliding && it.ttl > 0 {
		it.expiresAt = now.Add(it.ttl)
	}
	m.order.MoveToFront(elem)
	m.mu.Unlock()

	return it.value, nil
}

func (m *Memory[V]) Set(_ context.Context, key string, value V, ttl time.Duration) error {
	m.mu.Lock()

	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}

	if ttl == 0 {
		ttl = m.defaultTTL
	}
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = m.now().Add(ttl)
	}

	if elem, ok := m.items[key]; ok {
		it := elem.Value.(*memoryItem[V])
		it.value, it.expiresAt, it.ttl = value, expiresAt, ttl
		m.order.MoveToFront(elem)
		m.mu.Unlock()
		return nil
	}

	var evicted *memoryItem[V]
	if m.maxEntries > 0 && len(m.items) >= m.maxEntries {
		if back := m.order.Back(); back != nil {
			evicted = m.unlink(back)
		}
	}

	m.items[key] = m.order.PushFront(&memoryItem[V]{
		key:       key,
		value:     value,
		expiresAt: expiresAt,
		ttl:       ttl,
	})
	m.mu.Unlock()

	if evicted != nil {
		m.notify(evicted)
	}
	return nil
}

func (m *Memory[V]) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}

	elem, ok := m.items[key]
	if !ok {
		m.mu.Unlock()
		return nil
	}
	it := m.unlink(elem)
	m.mu.Unlock()

	m.notify(it)
	return nil
}

// Len reports the number of stored entries, including expired ones not yet swept.
func (m *Memory[V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Close stops the sweeper and evicts every entry. Safe to call more than once.
func (m *Memory[V]) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	close(m.done)

	drained := make([]*memoryItem[V], 0, len(m.items))
	for e := m.order.Front(); e != nil; e = e.Next() {
		drained = append(drained, e.Value.(*memoryItem[V]))
	}
	m.items = make(map[string]*list.Element)
	m.order.Init()
	m.mu.Unlock()

	for _, it := range drained {
		m.notify(it)
	}
	return nil
}

// Purge removes expired entries immediately.
func (m *Memory[V]) Purge() {
	m.mu.Lock()
	now := m.now()
	var expired []*memoryItem[V]
	for e := m.order.Back(); e != nil; {
		prev := e.Prev()
		if it := e.Value.(*memoryItem[V]); m.expired(it, now) {
			expired = append(expired, m.unlink(e))
		}
		e = prev
	}
	m.mu.Unlock()

	for _, it := range expired {
		m.notify(it)
	}
}

func (m *Memory[V]) sweep() {
	ticker := time.NewTicker(m.sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.Purge()
		}
	}
}

func (m *Memory[V]) expired(it *memoryItem[V], now time.Time) bool {
	return !it.expiresAt.IsZero() && now.After(it.expiresAt)
}

// unlink must be called with mu held.
func (m *Memory[V]) unlink(elem *list.Element) *memoryItem[V] {
	it := m.order.Remove(elem).(*memoryItem[V])
	delete(m.items, it.key)
	return it
}

func (m *Memory[V]) notify(it *memoryItem[V]) {
	if m.onEvict != nil {
		m.onEvict(it.key, it.value)
	}
}

var _ Cache[any] = (*Memory[any])(nil)
