package messages

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/malariainfo/pkg/cache"
	"github.com/dmitrymomot/malariainfo/pkg/logger"
)

// DefaultTTL is the bundle cache window.
const DefaultTTL = time.Hour

// Loader serves bundles from a cache, fetching on miss.
type Loader struct {
	fetcher Fetcher
	store   cache.Cache[Bundle]
	fill    *cache.Loader[Bundle]
	logger  *slog.Logger
	ttl     time.Duration
	owned   bool
}

// Option configures a Loader.
type Option func(*Loader)

// WithCache stores bundles in c instead of a private in-memory cache.
// The caller keeps ownership of c.
func WithCache(c cache.Cache[Bundle]) Option {
	return func(l *Loader) {
		if c != nil {
			l.store = c
			l.owned = false
		}
	}
}

// WithTTL sets the cache window. Default: one hour.
func WithTTL(d time.Duration) Option {
	return func(l *Loader) {
		if d > 0 {
			l.ttl = d
		}
	}
}

// WithLogger sets the logger used for fetch failures.
func WithLogger(lg *slog.Logger) Option {
	return func(l *Loader) {
		if lg != nil {
			l.logger = lg
		}
	}
}

// NewLoader creates a Loader over f.
func NewLoader(f Fetcher, opts ...Option) *Loader {
	l := &Loader{
		fetcher: f,
		ttl:     DefaultTTL,
		logger:  logger.NewNope(),
	}
	for _, opt := range opts {
		opt(l)
	}

	if l.store == nil {
		l.store = cache.NewMemory(
			cache.WithDefaultTTL[Bundle](l.ttl),
			cache.WithSweepInterval[Bundle](l.ttl),
		)
		l.owned = true
	}
	l.fill = cache.NewLoader(l.store)

	return l
}

// Load returns the bundle for locale. It never fails: when the bundle cannot
// be fetched the failure is logged and an empty Bundle is returned uncached.
func (l *Loader) Load(ctx context.Context, locale string) Bundle {
	b, err := l.fill.Get(ctx, locale, func(ctx context.Context) (Bundle, time.Duration, error) {
		return l.fetch(ctx, locale)
	})
	if err != nil {
		l.logger.WarnContext(ctx, "translations unavailable, falling back to keys",
			slog.String("locale", locale),
			slog.String("error", err.Error()),
		)
		return Bundle{}
	}
	return b
}

// Refresh fetches locale unconditionally and replaces the cached bundle.
// On failure the previous bundle stays in place and the error is returned.
func (l *Loader) Refresh(ctx context.Context, locale string) error {
	b, ttl, err := l.fetch(ctx, locale)
	if err != nil {
		return err
	}
	return l.store.Set(ctx, locale, b, ttl)
}

// Invalidate drops the cached bundle for locale.
func (l *Loader) Invalidate(ctx context.Context, locale string) error {
	return l.fill.Forget(ctx, locale)
}

// Close releases the private cache, if any.
func (l *Loader) Close() error {
	if l.owned {
		return l.store.Close()
	}
	return nil
}

func (l *Loader) fetch(ctx context.Context, locale string) (Bundle, time.Duration, error) {
	b, err := l.fetcher.Fetch(ctx, locale)
	if err != nil {
		return nil, 0, err
	}
	return b, l.ttl, nil
}
