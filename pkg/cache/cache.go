package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"golang.org/x/sync/singleflight"
)

// Cache stores values of type V under string keys.
//
// TTL passed to Set:
//   - positive: entry expires after the duration
//   - zero: the backend's default TTL applies
//   - negative: entry never expires
type Cache[V any] interface {
	Get(ctx context.Context, key string) (V, error)
	Set(ctx context.Context, key string, value V, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Codec converts values to bytes for backends that store raw data.
type Codec[V any] interface {
	Encode(v V) ([]byte, error)
	Decode(data []byte) (V, error)
}

// JSONCodec is the default Codec.
type JSONCodec[V any] struct{}

func (JSONCodec[V]) Encode(v V) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Join(ErrEncode, err)
	}
	return data, nil
}

func (JSONCodec[V]) Decode(data []byte) (V, error) {
	var v V
	if err := json.Unmarshal(data, &v); err != nil {
		return v, errors.Join(ErrDecode, err)
	}
	return v, nil
}

// Loader fills a Cache on misses, running at most one fill per key at a time.
// Failed fills are returned to every waiter and never stored.
type Loader[V any] struct {
	cache Cache[V]
	group singleflight.Group
}

// NewLoader wraps c with miss coalescing.
func NewLoader[V any](c Cache[V]) *Loader[V] {
	return &Loader[V]{cache: c}
}

// Cache returns the underlying cache.
func (l *Loader[V]) Cache() Cache[V] {
	return l.cache
}

type filled[V any] struct {
	val V
	ttl time.Duration
}

// Get returns the cached value for key or calls fill to produce it.
// fill returns the value and the TTL to store it with.
func (l *Loader[V]) Get(ctx context.Context, key string, fill func(ctx context.Context) (V, time.Duration, error)) (V, error) {
	if v, err := l.cache.Get(ctx, key); err == nil {
		return v, nil
	}

	res, err, _ := l.group.Do(key, func() (any, error) {
		// A concurrent fill may have finished between the miss and Do.
		if v, err := l.cache.Get(ctx, key); err == nil {
			return filled[V]{val: v}, nil
		}

		v, ttl, err := fill(ctx)
		if err != nil {
			return nil, err
		}

		_ = l.cache.Set(ctx, key, v, ttl)
		return filled[V]{val: v, ttl: ttl}, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}

	return res.(filled[V]).val, nil
}

// Forget drops key from the cache and from any in-flight fill bookkeeping.
func (l *Loader[V]) Forget(ctx context.Context, key string) error {
	l.group.Forget(key)
	return l.cache.Delete(ctx, key)
}
