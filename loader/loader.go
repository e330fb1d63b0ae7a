// Package loader puts a read-through layer in front of a cache.
//
// On a miss the [Loader] asks a [Source] for the value and stores it.
// Concurrent misses for the same key share one call to the source, which
// keeps a cold cache from stampeding the backend.
//
//	c := lfu.MustNew[string, *User](1000, nil)
//	users := loader.New[string, *User](c, loader.SourceFunc[string, *User](
//	    func(ctx context.Context, id string) (*User, error) {
//	        return db.GetUser(ctx, id)
//	    }))
//	u, err := users.Get(ctx, "123")
package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/sync/singleflight"
)

// ErrNotFound is returned by a Source when the key does not exist.
// It is passed through unwrapped and the miss is not cached.
var ErrNotFound = errors.New("loader: key not found")

// Store is the cache a Loader reads through. *lfu.Cache satisfies it.
type Store[K comparable, V any] interface {
	Get(key K) (V, bool)
	Put(key K, value V)
}

// A Source loads the value for a key from the backing system.
type Source[K comparable, V any] interface {
	Load(ctx context.Context, key K) (V, error)
}

// SourceFunc implements Source with a function.
type SourceFunc[K comparable, V any] func(ctx context.Context, key K) (V, error)

func (f SourceFunc[K, V]) Load(ctx context.Context, key K) (V, error) {
	return f(ctx, key)
}

type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger used for load debug output.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

type Loader[K comparable, V any] struct {
	store  Store[K, V]
	source Source[K, V]
	group  singleflight.Group
	log    *slog.Logger
}

func New[K comparable, V any](store Store[K, V], source Source[K, V], opts ...Option) *Loader[K, V] {
	if store == nil || source == nil {
		panic("loader: nil store or source")
	}
	o := &options{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(o)
	}
	return &Loader[K, V]{
		store:  store,
		source: source,
		log:    o.logger,
	}
}

// Get returns the cached value for key, loading and caching it on a miss.
// A caller whose ctx ends while waiting gets ctx.Err(); the shared load
// keeps running for the other waiters.
func (l *Loader[K, V]) Get(ctx context.Context, key K) (V, error) {
	if v, ok := l.store.Get(key); ok {
		return v, nil
	}

	ch := l.group.DoChan(flightKey(key), func() (any, error) {
		return l.load(context.WithoutCancel(ctx), key)
	})

	var zero V
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		v, _ := res.Val.(V)
		return v, nil
	}
}

func (l *Loader[K, V]) load(ctx context.Context, key K) (V, error) {
	value, err := l.source.Load(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return value, err
		}
		return value, fmt.Errorf("loader: load %v: %w", key, err)
	}
	l.store.Put(key, value)
	l.log.Debug("loader: populated cache", slog.Any("key", key))
	return value, nil
}

// flightKey renders the dynamic type and Go-syntax value of key, so keys
// that only differ in type, such as int(1) and int64(1) behind an
// interface K, never share a load.
func flightKey[K comparable](key K) string {
	return fmt.Sprintf("%T:%#v", key, key)
}
