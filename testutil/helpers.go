package testutil

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/flowreg/registry"
)

const defaultTestTimeout = 30 * time.Second

// TestContext returns a context cancelled when t finishes or after 30s.
func TestContext(t *testing.T) context.Context {
	return TestContextWithTimeout(t, defaultTestTimeout)
}

// TestContextWithTimeout is TestContext with a custom deadline.
func TestContextWithTimeout(t *testing.T, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)
	return ctx
}

// CancelledContext returns a context that is already done. Registry lookups
// given one return context.Canceled without aborting a started construction.
func CancelledContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx
}

// ScopedContext returns a test context whose current registry is reg.
func ScopedContext(t *testing.T, reg *registry.Registry) context.Context {
	return registry.WithRegistry(TestContext(t), reg)
}

// AssertJSONEqual compares the JSON encodings of expected and actual, so a
// typed value can be checked against one decoded into map[string]any.
func AssertJSONEqual(t *testing.T, expected, actual any) {
	t.Helper()
	want, err := json.Marshal(expected)
	require.NoError(t, err, "marshal expected")
	got, err := json.Marshal(actual)
	require.NoError(t, err, "marshal actual")
	assert.JSONEq(t, string(want), string(got))
}

// MustParseJSON decodes s into a T and panics on malformed input.
func MustParseJSON[T any](s string) T {
	var v T
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		panic(err)
	}
	return v
}
