package registry

import (
	"context"
	"fmt"
	"sync"
)

// future is the in-flight or completed result of a single construction.
type future[T any] struct {
	done chan struct{}
	val  T
	err  error
}

// startFuture runs fn on its own goroutine and returns immediately. fn gets a
// context that keeps the values of ctx but never its cancellation, so a caller
// that stops waiting does not abort the construction.
func startFuture[T any](ctx context.Context, fn func(context.Context) (T, error)) *future[T] {
	f := &future[T]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		defer func() {
			if r := recover(); r != nil {
				f.err = fmt.Errorf("%w: %v", ErrProviderPanic, r)
			}
		}()
		f.val, f.err = fn(context.WithoutCancel(ctx))
	}()
	return f
}

// wait blocks until the construction finishes or ctx is done. A finished
// result wins over a cancelled ctx.
func (f *future[T]) wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	default:
	}
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// lazyCache pairs env-keyed provider bindings with their memoized results.
// A binding is consulted to decide whether the node answers at all; the
// result slot is created on first access and kept for the node's lifetime,
// failures included.
type lazyCache[T any] struct {
	mu        sync.Mutex
	providers map[string]func(context.Context) (T, error)
	results   map[string]*future[T]
}

func newLazyCache[T any]() *lazyCache[T] {
	return &lazyCache[T]{
		providers: make(map[string]func(context.Context) (T, error)),
		results:   make(map[string]*future[T]),
	}
}

// bind stores fn under env and reports whether a binding already existed.
func (c *lazyCache[T]) bind(env string, fn func(context.Context) (T, error)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, exists := c.providers[env]
	c.providers[env] = fn
	return exists
}

// get returns the future for env, starting the construction when this is
// the first access. The slot is published before the lock is released, so
// concurrent callers share one construction. ok is false when env has no
// local binding.
func (c *lazyCache[T]) get(ctx context.Context, env string, wrap func(func(context.Context) (T, error)) func(context.Context) (T, error)) (*future[T], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fn, ok := c.providers[env]
	if !ok {
		return nil, false
	}
	if f, exists := c.results[env]; exists {
		return f, true
	}
	f := startFuture(ctx, wrap(fn))
	c.results[env] = f
	return f, true
}
