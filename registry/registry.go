package registry

import (
	"context"
	"maps"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BaSui01/flowreg/flowstate"
	"github.com/BaSui01/flowreg/tracestore"
)

const tracerName = "github.com/BaSui01/flowreg/registry"

// TraceStoreProvider builds the trace store of one environment.
type TraceStoreProvider func(ctx context.Context) (tracestore.Store, error)

// FlowStateStoreProvider builds the flow-state store of one environment.
type FlowStateStoreProvider func(ctx context.Context) (flowstate.Store, error)

// Registry is one node of a registry chain. It is safe for concurrent use.
// The parent is never modified through a child and may be shared by any
// number of children.
type Registry struct {
	parent *Registry
	opts   options

	mu      sync.RWMutex
	actions map[string]Action
	plugins map[string]*PluginProvider
	schemas map[string]Schema

	traceStores     *lazyCache[tracestore.Store]
	flowStateStores *lazyCache[flowstate.Store]
}

type options struct {
	logger         *zap.Logger
	observer       Observer
	tracerProvider trace.TracerProvider
}

// Option configures a Registry created by New. Children created with
// NewChild inherit the options of their parent.
type Option func(*options)

// WithLogger sets the logger. Without it the registry logs through zap.L().
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithObserver sets the observer notified of lookups and constructions.
func WithObserver(obs Observer) Option {
	return func(o *options) { o.observer = obs }
}

// WithTracerProvider sets the OpenTelemetry tracer provider used for plugin
// initialization and provider construction spans. Without it the global
// provider is used.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) { o.tracerProvider = tp }
}

// New creates a root registry with no parent.
func New(opts ...Option) *Registry {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return newRegistry(nil, o)
}

func newRegistry(parent *Registry, o options) *Registry {
	if o.observer == nil {
		o.observer = nopObserver{}
	}
	return &Registry{
		parent:          parent,
		opts:            o,
		actions:         make(map[string]Action),
		plugins:         make(map[string]*PluginProvider),
		schemas:         make(map[string]Schema),
		traceStores:     newLazyCache[tracestore.Store](),
		flowStateStores: newLazyCache[flowstate.Store](),
	}
}

// NewChild creates a registry whose lookups fall back to r. Children are
// cheap; registrations on the child never reach r.
func (r *Registry) NewChild() *Registry {
	return newRegistry(r, r.opts)
}

// IsChild reports whether r has a parent.
func (r *Registry) IsChild() bool { return r.parent != nil }

// Parent returns the parent registry, or nil for a root.
func (r *Registry) Parent() *Registry { return r.parent }

func (r *Registry) log() *zap.Logger {
	if r.opts.logger != nil {
		return r.opts.logger.With(zap.String("component", "registry"))
	}
	return zap.L().With(zap.String("component", "registry"))
}

func (r *Registry) tracer() trace.Tracer {
	tp := r.opts.tracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return tp.Tracer(tracerName)
}

// RegisterAction stores a under /<typ>/<a.Name()> on this node. An existing
// local entry is overwritten with a warning. It panics if typ is not a known
// action type or a is nil.
func (r *Registry) RegisterAction(typ ActionType, a Action) {
	if !typ.Valid() {
		panic("registry: unknown action type " + string(typ))
	}
	if a == nil {
		panic("registry: nil action")
	}
	key := ActionKey(typ, a.Name())

	r.mu.Lock()
	_, exists := r.actions[key]
	r.actions[key] = a
	r.mu.Unlock()

	if exists {
		r.log().Warn("action already registered, overwriting", zap.String("key", key))
		return
	}
	r.log().Debug("registered action", zap.String("key", key))
}

// LookupAction returns the action stored under key. On a local miss for a key
// shaped like /<type>/<plugin>/<name> the plugin is initialized first and
// the local table checked again; after that the parent is asked. A nil
// action with a nil error means the key is unknown.
func (r *Registry) LookupAction(ctx context.Context, key string) (Action, error) {
	a, err := r.lookupAction(ctx, key)
	if err != nil {
		return nil, err
	}
	r.opts.observer.ActionLookup(key, a != nil)
	return a, nil
}

func (r *Registry) lookupAction(ctx context.Context, key string) (Action, error) {
	if a := r.localAction(key); a != nil {
		return a, nil
	}
	if plugin, ok := pluginNameFromKey(key); ok {
		if _, err := r.InitializePlugin(ctx, plugin); err != nil {
			return nil, err
		}
		if a := r.localAction(key); a != nil {
			return a, nil
		}
	}
	if r.parent != nil {
		return r.parent.lookupAction(ctx, key)
	}
	return nil, nil
}

func (r *Registry) localAction(key string) Action {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.actions[key]
}

// ListActions returns every action visible from r keyed by action key. All
// plugins known to each node are initialized first so that their actions
// are included. Entries on r shadow entries of its ancestors.
func (r *Registry) ListActions(ctx context.Context) (map[string]Action, error) {
	if err := r.initializeAllPlugins(ctx); err != nil {
		return nil, err
	}

	out := make(map[string]Action)
	if r.parent != nil {
		inherited, err := r.parent.ListActions(ctx)
		if err != nil {
			return nil, err
		}
		maps.Copy(out, inherited)
	}

	r.mu.RLock()
	maps.Copy(out, r.actions)
	r.mu.RUnlock()
	return out, nil
}

func (r *Registry) initializeAllPlugins(ctx context.Context) error {
	r.mu.RLock()
	names := make([]string, 0, len(r.plugins))
	for name := range r.plugins {
		names = append(names, name)
	}
	r.mu.RUnlock()

	g, gctx := errgroup.WithContext(ctx)
	for _, name := range names {
		g.Go(func() error {
			_, err := r.InitializePlugin(gctx, name)
			return err
		})
	}
	return g.Wait()
}

// RegisterTraceStore binds the trace store provider of env on this node.
// The provider is not called until the first LookupTraceStore for env.
func (r *Registry) RegisterTraceStore(env string, p TraceStoreProvider) {
	if r.traceStores.bind(env, p) {
		r.log().Warn("trace store provider already registered, overwriting",
			zap.String("env", env))
	}
}

// LookupTraceStore returns the trace store of env. When this node has a
// provider bound for env it answers, building the store on first access;
// otherwise the parent is asked. A nil store with a nil error means no
// provider is bound anywhere in the chain.
func (r *Registry) LookupTraceStore(ctx context.Context, env string) (tracestore.Store, error) {
	if f, ok := r.traceStores.get(ctx, env, observed[tracestore.Store](r, KindTraceStore, env)); ok {
		return f.wait(ctx)
	}
	if r.parent != nil {
		return r.parent.LookupTraceStore(ctx, env)
	}
	return nil, nil
}

// RegisterFlowStateStore binds the flow-state store provider of env on this
// node. The provider is not called until the first LookupFlowStateStore.
func (r *Registry) RegisterFlowStateStore(env string, p FlowStateStoreProvider) {
	if r.flowStateStores.bind(env, p) {
		r.log().Warn("flow state store provider already registered, overwriting",
			zap.String("env", env))
	}
}

// LookupFlowStateStore is the flow-state counterpart of LookupTraceStore.
func (r *Registry) LookupFlowStateStore(ctx context.Context, env string) (flowstate.Store, error) {
	if f, ok := r.flowStateStores.get(ctx, env, observed[flowstate.Store](r, KindFlowStateStore, env)); ok {
		return f.wait(ctx)
	}
	if r.parent != nil {
		return r.parent.LookupFlowStateStore(ctx, env)
	}
	return nil, nil
}

// observed decorates a provider with a span, an observer callback and a ctx
// bound to the owning registry.
func observed[T any](r *Registry, kind, env string) func(func(context.Context) (T, error)) func(context.Context) (T, error) {
	return func(fn func(context.Context) (T, error)) func(context.Context) (T, error) {
		return func(ctx context.Context) (T, error) {
			ctx, span := r.tracer().Start(WithRegistry(ctx, r), "registry.construct",
				trace.WithAttributes(
					attribute.String("registry.kind", kind),
					attribute.String("registry.env", env),
				))
			defer span.End()

			start := time.Now()
			v, err := fn(ctx)
			took := time.Since(start)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				r.log().Error("provider construction failed",
					zap.String("kind", kind), zap.String("env", env), zap.Error(err))
			}
			r.opts.observer.ProviderConstructed(kind, env, took, err)
			return v, err
		}
	}
}
