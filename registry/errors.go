package registry

import "errors"

// Sentinel errors for the registry.
var (
	// ErrInvalidSchema is returned by RegisterSchema when an entry does not
	// carry exactly one of a structured schema or a raw JSON schema.
	ErrInvalidSchema = errors.New("schema must set exactly one of Schema or JSONSchema")

	// ErrProviderPanic wraps a panic raised by a provider function or a plugin
	// initializer. The panic is converted so that every waiter is released.
	ErrProviderPanic = errors.New("provider panicked")
)
