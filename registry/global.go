package registry

import (
	"context"

	"github.com/BaSui01/flowreg/flowstate"
	"github.com/BaSui01/flowreg/tracestore"
)

// The functions below act on Current(ctx).

// RegisterAction registers a on the current registry.
func RegisterAction(ctx context.Context, typ ActionType, a Action) {
	Current(ctx).RegisterAction(typ, a)
}

// LookupAction looks key up from the current registry.
func LookupAction(ctx context.Context, key string) (Action, error) {
	return Current(ctx).LookupAction(ctx, key)
}

// ListActions lists the actions visible from the current registry.
func ListActions(ctx context.Context) (map[string]Action, error) {
	return Current(ctx).ListActions(ctx)
}

// RegisterTraceStore binds the trace store provider of env on the current registry.
func RegisterTraceStore(ctx context.Context, env string, p TraceStoreProvider) {
	Current(ctx).RegisterTraceStore(env, p)
}

// LookupTraceStore returns the trace store of env seen from the current registry.
func LookupTraceStore(ctx context.Context, env string) (tracestore.Store, error) {
	return Current(ctx).LookupTraceStore(ctx, env)
}

// RegisterFlowStateStore binds the flow-state store provider of env on the current registry.
func RegisterFlowStateStore(ctx context.Context, env string, p FlowStateStoreProvider) {
	Current(ctx).RegisterFlowStateStore(env, p)
}

// LookupFlowStateStore returns the flow-state store of env seen from the current registry.
func LookupFlowStateStore(ctx context.Context, env string) (flowstate.Store, error) {
	return Current(ctx).LookupFlowStateStore(ctx, env)
}

// RegisterPluginProvider registers p under name on the current registry.
func RegisterPluginProvider(ctx context.Context, name string, p PluginProvider) {
	Current(ctx).RegisterPluginProvider(name, p)
}

// LookupPlugin returns the plugin named name, searching up from the current registry.
func LookupPlugin(ctx context.Context, name string) *PluginProvider {
	return Current(ctx).LookupPlugin(name)
}

// InitializePlugin runs the named plugin's memoized initializer on the current registry.
func InitializePlugin(ctx context.Context, name string) (any, error) {
	return Current(ctx).InitializePlugin(ctx, name)
}

// RegisterSchema registers s under name on the current registry.
func RegisterSchema(ctx context.Context, name string, s Schema) error {
	return Current(ctx).RegisterSchema(name, s)
}

// LookupSchema returns the schema named name, searching up from the current registry.
func LookupSchema(ctx context.Context, name string) *Schema {
	return Current(ctx).LookupSchema(name)
}
