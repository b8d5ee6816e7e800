// Package cache provides a small generic cache with an in-process backend
// (TTL plus optional LRU bound) and a Redis backend.
//
// The in-process backend holds translation bundles and live chat sessions;
// its eviction callback is how idle sessions get closed:
//
//	sessions := cache.NewMemory[*chat.Widget](
//		cache.WithDefaultTTL[*chat.Widget](30*time.Minute),
//		cache.WithSlidingExpiration[*chat.Widget](),
//		cache.WithEvictFunc(func(_ string, w *chat.Widget) { w.Close() }),
//	)
//
// The Redis backend shares bundles between replicas. Values are encoded
// with a Codec, JSON by default.
//
// Loader wraps any Cache with miss coalescing: concurrent Gets for the same
// missing key run the fill function once, and failed fills are not stored.
//
//	l := cache.NewLoader[messages.Bundle](c)
//	b, err := l.Get(ctx, "yo", func(ctx context.Context) (messages.Bundle, time.Duration, error) {
//		b, err := fetch(ctx, "yo")
//		return b, time.Hour, err
//	})
package cache
