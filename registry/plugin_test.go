package registry

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// modelPlugin registers /model/<name>/<model> for every model when
// initialized, through the package-level API.
func modelPlugin(name string, calls *atomic.Int32, models ...string) PluginProvider {
	return PluginProvider{
		Name: name,
		Initializer: func(ctx context.Context) (any, error) {
			calls.Add(1)
			for _, m := range models {
				RegisterAction(ctx, ActionTypeModel, NewAction(name+"/"+m, ActionDesc{}))
			}
			return name + "-ready", nil
		},
	}
}

func TestRegistry_LookupAction_InitializesPlugin(t *testing.T) {
	ctx := context.Background()
	r := New()

	var calls atomic.Int32
	r.RegisterPluginProvider("myplugin", modelPlugin("myplugin", &calls, "gpt"))
	assert.Equal(t, int32(0), calls.Load(), "registration must not initialize")

	a, err := r.LookupAction(ctx, "/model/myplugin/gpt")
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, "myplugin/gpt", a.Name())

	a, err = r.LookupAction(ctx, "/model/myplugin/other")
	require.NoError(t, err)
	assert.Nil(t, a)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRegistry_LookupAction_ConcurrentPluginResolution(t *testing.T) {
	ctx := context.Background()
	r := New()

	var calls atomic.Int32
	r.RegisterPluginProvider("myplugin", modelPlugin("myplugin", &calls, "gpt"))

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a, err := r.LookupAction(ctx, "/model/myplugin/gpt")
			assert.NoError(t, err)
			assert.NotNil(t, a)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), calls.Load())
}

func TestRegistry_LookupAction_MalformedKeysSkipPlugins(t *testing.T) {
	ctx := context.Background()
	r := New()

	var calls atomic.Int32
	r.RegisterPluginProvider("myplugin", modelPlugin("myplugin", &calls, "gpt"))

	for _, key := range []string{"/model/myplugin", "/model/myplugin/gpt/extra", "myplugin"} {
		a, err := r.LookupAction(ctx, key)
		require.NoError(t, err, key)
		assert.Nil(t, a, key)
	}
	assert.Equal(t, int32(0), calls.Load())
}

func TestRegistry_LookupAction_EmptyPluginSegment(t *testing.T) {
	ctx := context.Background()
	r := New()

	var calls atomic.Int32
	r.RegisterPluginProvider("", modelPlugin("", &calls, "gpt"))

	for range 3 {
		a, err := r.LookupAction(ctx, "/model//gpt")
		require.NoError(t, err)
		require.NotNil(t, a)
		assert.Equal(t, "/gpt", a.Name())
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestRegistry_ListActions_InitializesAllPlugins(t *testing.T) {
	ctx := context.Background()
	parent := New()
	child := parent.NewChild()

	var parentCalls, childCalls atomic.Int32
	parent.RegisterPluginProvider("base", modelPlugin("base", &parentCalls, "a", "b"))
	child.RegisterPluginProvider("extra", modelPlugin("extra", &childCalls, "c"))

	all, err := child.ListActions(ctx)
	require.NoError(t, err)
	assert.Contains(t, all, "/model/base/a")
	assert.Contains(t, all, "/model/base/b")
	assert.Contains(t, all, "/model/extra/c")
	assert.Equal(t, int32(1), parentCalls.Load())
	assert.Equal(t, int32(1), childCalls.Load())

	// Plugin registrations land on the node that owns the plugin.
	parentAll, err := parent.ListActions(ctx)
	require.NoError(t, err)
	assert.NotContains(t, parentAll, "/model/extra/c")

	_, err = child.ListActions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(1), parentCalls.Load())
	assert.Equal(t, int32(1), childCalls.Load())
}

func TestRegistry_ListActions_PropagatesPluginFailure(t *testing.T) {
	r := New()
	boom := errors.New("init failed")
	r.RegisterPluginProvider("broken", PluginProvider{
		Initializer: func(context.Context) (any, error) { return nil, boom },
	})

	_, err := r.ListActions(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestRegistry_InitializePlugin_LocalOnly(t *testing.T) {
	ctx := context.Background()
	parent := New()
	child := parent.NewChild()

	var calls atomic.Int32
	parent.RegisterPluginProvider("myplugin", modelPlugin("myplugin", &calls, "gpt"))

	got, err := child.InitializePlugin(ctx, "myplugin")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, int32(0), calls.Load())

	got, err = parent.InitializePlugin(ctx, "myplugin")
	require.NoError(t, err)
	assert.Equal(t, "myplugin-ready", got)

	got, err = parent.InitializePlugin(ctx, "myplugin")
	require.NoError(t, err)
	assert.Equal(t, "myplugin-ready", got)
	assert.Equal(t, int32(1), calls.Load())

	got, err = parent.InitializePlugin(ctx, "unknown")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRegistry_LookupAction_PluginOnParentResolvesThroughParent(t *testing.T) {
	ctx := context.Background()
	parent := New()
	child := parent.NewChild()

	var calls atomic.Int32
	parent.RegisterPluginProvider("myplugin", modelPlugin("myplugin", &calls, "gpt"))

	a, err := child.LookupAction(ctx, "/model/myplugin/gpt")
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRegistry_LookupPlugin(t *testing.T) {
	parent := New()
	child := parent.NewChild()

	var calls atomic.Int32
	parent.RegisterPluginProvider("shared", modelPlugin("shared", &calls))
	child.RegisterPluginProvider("local", modelPlugin("local", &calls))

	p := child.LookupPlugin("shared")
	require.NotNil(t, p)
	assert.Equal(t, "shared", p.Name)
	assert.NotNil(t, child.LookupPlugin("local"))
	assert.Nil(t, parent.LookupPlugin("local"))
	assert.Nil(t, child.LookupPlugin("missing"))
	assert.Equal(t, []string{"local", "shared"}, child.ListPlugins())

	// The looked-up initializer is the memoized one.
	_, err := p.Initializer(context.Background())
	require.NoError(t, err)
	_, err = parent.InitializePlugin(context.Background(), "shared")
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRegistry_InitializePlugin_FailureIsCached(t *testing.T) {
	ctx := context.Background()
	r := New()
	boom := errors.New("bad credentials")

	var calls atomic.Int32
	r.RegisterPluginProvider("flaky", PluginProvider{
		Initializer: func(context.Context) (any, error) {
			calls.Add(1)
			return nil, boom
		},
	})

	for range 3 {
		_, err := r.InitializePlugin(ctx, "flaky")
		assert.ErrorIs(t, err, boom)
	}
	_, err := r.LookupAction(ctx, "/model/flaky/x")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRegistry_InitializePlugin_ReentrantLookup(t *testing.T) {
	ctx := context.Background()
	r := New()

	var calls atomic.Int32
	r.RegisterPluginProvider("self", PluginProvider{
		Initializer: func(ctx context.Context) (any, error) {
			calls.Add(1)
			RegisterAction(ctx, ActionTypeModel, NewAction("self/a", ActionDesc{}))
			// Looking up a sibling key re-enters this plugin's resolution.
			a, err := LookupAction(ctx, "/model/self/b")
			if err != nil {
				return nil, err
			}
			if a != nil {
				return nil, errors.New("unexpected action")
			}
			return "done", nil
		},
	})

	a, err := r.LookupAction(ctx, "/model/self/a")
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRegistry_InitializePlugin_Span(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	r := New(WithTracerProvider(tp))

	boom := errors.New("boom")
	r.RegisterPluginProvider("traced", PluginProvider{
		Initializer: func(context.Context) (any, error) { return nil, boom },
	})
	_, err := r.InitializePlugin(context.Background(), "traced")
	require.ErrorIs(t, err, boom)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "registry.InitializePlugin", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
}
