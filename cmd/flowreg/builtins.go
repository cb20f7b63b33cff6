package main

import (
	"context"
	"fmt"

	"github.com/BaSui01/flowreg/registry"
)

// builtinPlugin is the plugin every flowreg process registers. Its actions
// only appear after the plugin is initialized, which makes `flowreg actions`
// a quick check that lazy plugin resolution works end to end.
const builtinPlugin = "flowreg"

var echoSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"message": map[string]any{"type": "string"},
	},
	"required": []any{"message"},
}

func registerBuiltins(reg *registry.Registry) error {
	if err := reg.RegisterSchema(builtinPlugin+"/Echo", registry.Schema{JSONSchema: echoSchema}); err != nil {
		return fmt.Errorf("register builtin schema: %w", err)
	}

	reg.RegisterPluginProvider(builtinPlugin, registry.PluginProvider{
		Name: builtinPlugin,
		Initializer: func(ctx context.Context) (any, error) {
			registry.RegisterAction(ctx, registry.ActionTypeCustom, registry.NewAction(builtinPlugin+"/echo", registry.ActionDesc{
				Description:  "Returns its input unchanged.",
				InputSchema:  echoSchema,
				OutputSchema: echoSchema,
			}))
			registry.RegisterAction(ctx, registry.ActionTypeTool, registry.NewAction(builtinPlugin+"/now", registry.ActionDesc{
				Description: "Reports the current server time.",
				OutputSchema: map[string]any{
					"type":   "string",
					"format": "date-time",
				},
			}))
			return nil, nil
		},
	})
	return nil
}
