package registry

import (
	"context"
	"sync/atomic"
)

type registryKey struct{}

var defaultRegistry atomic.Pointer[Registry]

func init() {
	defaultRegistry.Store(New())
}

// Default returns the process-wide registry used when no registry is bound
// to the context.
func Default() *Registry {
	return defaultRegistry.Load()
}

// ResetDefaultForTesting discards the process-wide registry and replaces it
// with an empty one. Only tests should call it.
func ResetDefaultForTesting() {
	defaultRegistry.Store(New())
}

// WithRegistry returns a copy of ctx in which r is the current registry.
// Everything derived from the returned context, including goroutines it is
// handed to, resolves r through Current.
func WithRegistry(ctx context.Context, r *Registry) context.Context {
	return context.WithValue(ctx, registryKey{}, r)
}

// FromContext returns the registry bound to ctx, if any.
func FromContext(ctx context.Context) (*Registry, bool) {
	r, ok := ctx.Value(registryKey{}).(*Registry)
	return r, ok && r != nil
}

// Current returns the registry bound to ctx, or Default when none is bound.
func Current(ctx context.Context) *Registry {
	if r, ok := FromContext(ctx); ok {
		return r
	}
	return Default()
}

// RunInRegistry calls fn with r bound as the current registry for the whole
// of fn, including work fn starts with the context it receives.
func RunInRegistry[T any](ctx context.Context, r *Registry, fn func(context.Context) (T, error)) (T, error) {
	return fn(WithRegistry(ctx, r))
}

// RunInIsolatedRegistry calls fn with a fresh root registry bound. Nothing
// registered on the current registry or the default one is visible to fn.
// The new registry shares the logger, observer and tracer of the current one.
func RunInIsolatedRegistry[T any](ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	return RunInRegistry(ctx, newRegistry(nil, Current(ctx).opts), fn)
}

// RunInTempRegistry calls fn with a child of the current registry bound.
// Registrations made by fn land on the child and are dropped when fn
// returns; the current registry is left untouched.
func RunInTempRegistry[T any](ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	return RunInRegistry(ctx, Current(ctx).NewChild(), fn)
}
