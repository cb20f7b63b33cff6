package reflection

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/BaSui01/flowreg/config"
	"github.com/BaSui01/flowreg/internal/metrics"
	"github.com/BaSui01/flowreg/registry"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}

func TestChain_Order(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(okHandler(), mw("a"), mw("b"), mw("c"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestRecovery(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	h := Recovery(zap.New(core))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/actions", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "client-id")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "client-id", seen)

	assert.Empty(t, RequestIDFromContext(context.Background()))
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := RequestLogger(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/actions", nil))

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(http.StatusTeapot), entries[0].ContextMap()["status"])
}

func TestMetricsMiddleware(t *testing.T) {
	promReg := prometheus.NewRegistry()
	collector := metrics.NewCollector("mw", promReg, nil)
	h := Metrics(collector)(okHandler())

	for i := 0; i < 3; i++ {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/envs/dev/traces/abc", nil))
	}

	// Per-request values are folded into one route label.
	count, err := testutil.GatherAndCount(promReg, "mw_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRouteLabel(t *testing.T) {
	tests := map[string]string{
		"/api/__health":                 "/api/__health",
		"/api/actions":                  "/api/actions",
		"/api/actions/model/google/gem": "/api/actions/:type/:name",
		"/api/envs/dev/traces":          "/api/envs/:env/traces",
		"/api/envs/prod/traces/t1":      "/api/envs/:env/traces/:id",
		"/api/envs/dev/flowStates/f1":   "/api/envs/:env/flowStates/:id",
		"/metrics":                      "/metrics",
		"/wp-admin":                     "other",
	}
	for path, want := range tests {
		assert.Equal(t, want, routeLabel(path), path)
	}
}

func TestOTelTracing(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	orig := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(orig) })

	h := OTelTracing()(okHandler())
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/envs/dev/traces/t1", nil))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "GET /api/envs/:env/traces/:id", spans[0].Name())
}

func TestRateLimiter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := RateLimiter(ctx, 1, 2, zap.NewNop())(okHandler())

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/actions", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// Other clients have their own bucket.
	req := httptest.NewRequest(http.MethodGet, "/api/actions", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestJWTAuth(t *testing.T) {
	h := JWTAuth("s3cret", "flowreg-cli", []string{healthPath}, zap.NewNop())(okHandler())
	exp := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name     string
		path     string
		auth     string
		wantCode int
	}{
		{name: "health skips auth", path: healthPath, wantCode: http.StatusOK},
		{name: "missing header", path: "/api/actions", wantCode: http.StatusUnauthorized},
		{name: "not bearer", path: "/api/actions", auth: "Basic abc", wantCode: http.StatusUnauthorized},
		{
			name:     "valid token",
			path:     "/api/actions",
			auth:     "Bearer " + signToken(t, "s3cret", jwt.MapClaims{"iss": "flowreg-cli", "exp": exp}),
			wantCode: http.StatusOK,
		},
		{
			name:     "wrong secret",
			path:     "/api/actions",
			auth:     "Bearer " + signToken(t, "other", jwt.MapClaims{"iss": "flowreg-cli", "exp": exp}),
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "wrong issuer",
			path:     "/api/actions",
			auth:     "Bearer " + signToken(t, "s3cret", jwt.MapClaims{"iss": "someone", "exp": exp}),
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "expired",
			path:     "/api/actions",
			auth:     "Bearer " + signToken(t, "s3cret", jwt.MapClaims{"iss": "flowreg-cli", "exp": time.Now().Add(-time.Hour).Unix()}),
			wantCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestNewAPI(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.DefaultReflectionConfig()
	cfg.JWTSecret = "s3cret"
	reg := registry.New()
	reg.RegisterAction(registry.ActionTypeFlow, registry.NewAction("summarize", registry.ActionDesc{}))

	promReg := prometheus.NewRegistry()
	api := NewAPI(ctx, reg, cfg, metrics.NewCollector("api", promReg, nil), promReg, zap.NewNop())

	// Health stays open; everything else requires a token.
	rec := httptest.NewRecorder()
	api.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, healthPath, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = httptest.NewRecorder()
	api.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/actions", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/actions", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "s3cret", jwt.MapClaims{"exp": time.Now().Add(time.Minute).Unix()}))
	rec = httptest.NewRecorder()
	api.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/flow/summarize")
}
