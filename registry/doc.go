// Package registry indexes the pluggable resources of a flowreg runtime:
// actions, trace stores, flow-state stores, schemas and lazily initialized
// plugins.
//
// Registries form a singly linked chain. Registrations only touch the node
// they are made on; lookups walk from the node towards the root, so a local
// entry always shadows the same key further up. A node never knows about its
// children.
//
// The "current" registry travels in context.Context. Package level functions
// such as RegisterAction and LookupAction resolve it with Current, falling
// back to the process-wide Default registry when nothing is bound:
//
//	ctx := context.Background()
//	registry.RegisterPluginProvider(ctx, "myplugin", registry.PluginProvider{
//	    Initializer: func(ctx context.Context) (any, error) {
//	        registry.RegisterAction(ctx, registry.ActionTypeModel, registry.NewAction("myplugin/gpt", registry.ActionDesc{}))
//	        return nil, nil
//	    },
//	})
//	a, err := registry.LookupAction(ctx, "/model/myplugin/gpt") // initializes myplugin once
//
// Overlay scopes are created with RunInTempRegistry (child of the current
// registry, discarded afterwards) and RunInIsolatedRegistry (fresh root with
// no visibility into the default registry).
//
// Absence is never an error: lookups report a missing entry as a nil value
// with a nil error.
package registry
