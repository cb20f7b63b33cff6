package registry

import (
	"context"
	"slices"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Initializer performs the deferred setup of a plugin, typically registering
// the plugin's actions against the registry bound to ctx.
type Initializer func(ctx context.Context) (any, error)

// PluginProvider is a named plugin with a deferred initializer.
type PluginProvider struct {
	Name        string
	Initializer Initializer
}

// RegisterPluginProvider stores p under name on this node. The initializer
// is wrapped so that it runs at most once for this registration, no matter
// how many callers trigger it or whether it fails. It receives a context
// bound to r. Nothing runs at registration time.
func (r *Registry) RegisterPluginProvider(name string, p PluginProvider) {
	initFn := p.Initializer
	if initFn == nil {
		initFn = func(context.Context) (any, error) { return nil, nil }
	}
	wrapped := &PluginProvider{
		Name:        name,
		Initializer: r.memoizeInitializer(name, initFn),
	}

	r.mu.Lock()
	_, exists := r.plugins[name]
	r.plugins[name] = wrapped
	r.mu.Unlock()

	if exists {
		r.log().Warn("plugin already registered, overwriting", zap.String("plugin", name))
		return
	}
	r.log().Debug("registered plugin", zap.String("plugin", name))
}

// LookupPlugin returns the plugin registered under name on r or its
// ancestors, or nil. The returned initializer is the memoized one.
func (r *Registry) LookupPlugin(name string) *PluginProvider {
	for n := r; n != nil; n = n.parent {
		n.mu.RLock()
		p, ok := n.plugins[name]
		n.mu.RUnlock()
		if ok {
			cp := *p
			return &cp
		}
	}
	return nil
}

// InitializePlugin runs the initializer of the plugin registered under name
// on this node and returns its memoized result. Plugins of ancestors are not
// considered; an unknown name yields nil, nil.
func (r *Registry) InitializePlugin(ctx context.Context, name string) (any, error) {
	r.mu.RLock()
	p, ok := r.plugins[name]
	r.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return p.Initializer(ctx)
}

// ListPlugins returns the sorted names of all plugins visible from r.
func (r *Registry) ListPlugins() []string {
	seen := make(map[string]struct{})
	for n := r; n != nil; n = n.parent {
		n.mu.RLock()
		for name := range n.plugins {
			seen[name] = struct{}{}
		}
		n.mu.RUnlock()
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (r *Registry) memoizeInitializer(name string, initFn Initializer) Initializer {
	var (
		once sync.Once
		fut  *future[any]
	)
	return func(ctx context.Context) (any, error) {
		// Called from inside this very initializer: the result is not
		// available yet and waiting for it would never return.
		if initializing(ctx, r, name) {
			return nil, nil
		}
		once.Do(func() {
			ictx := withInitializing(WithRegistry(ctx, r), r, name)
			fut = startFuture(ictx, func(ctx context.Context) (any, error) {
				return r.runInitializer(ctx, name, initFn)
			})
		})
		return fut.wait(ctx)
	}
}

func (r *Registry) runInitializer(ctx context.Context, name string, initFn Initializer) (any, error) {
	ctx, span := r.tracer().Start(ctx, "registry.InitializePlugin",
		trace.WithAttributes(attribute.String("registry.plugin", name)))
	defer span.End()

	logger := r.log().With(zap.String("plugin", name))
	logger.Debug("initializing plugin")

	start := time.Now()
	v, err := initFn(ctx)
	took := time.Since(start)
	r.opts.observer.PluginInitialized(name, took, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Error("plugin initialization failed", zap.Error(err))
		return nil, err
	}
	logger.Debug("plugin initialized", zap.Duration("took", took))
	return v, nil
}

// initFrame records the plugins whose initializer is running on the current
// call chain.
type initFrame struct {
	registry *Registry
	name     string
	next     *initFrame
}

type initKey struct{}

func withInitializing(ctx context.Context, r *Registry, name string) context.Context {
	next, _ := ctx.Value(initKey{}).(*initFrame)
	return context.WithValue(ctx, initKey{}, &initFrame{registry: r, name: name, next: next})
}

func initializing(ctx context.Context, r *Registry, name string) bool {
	f, _ := ctx.Value(initKey{}).(*initFrame)
	for ; f != nil; f = f.next {
		if f.registry == r && f.name == name {
			return true
		}
	}
	return false
}
