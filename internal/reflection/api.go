package reflection

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/BaSui01/flowreg/config"
	"github.com/BaSui01/flowreg/internal/metrics"
	"github.com/BaSui01/flowreg/registry"
)

// healthPath is always served without authentication.
const healthPath = "/api/__health"

// NewAPI assembles the reflection handler for reg behind its middleware
// chain. collector and gatherer may be nil. ctx bounds background work of
// the rate limiter.
func NewAPI(ctx context.Context, reg *registry.Registry, cfg config.ReflectionConfig, collector *metrics.Collector, gatherer prometheus.Gatherer, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("component", "reflection"))

	var opts []HandlerOption
	if gatherer != nil {
		opts = append(opts, WithGatherer(gatherer))
	}
	handler := NewHandler(reg, logger, opts...)

	mws := []Middleware{
		Recovery(logger),
		RequestID(),
		RequestLogger(logger),
	}
	if collector != nil {
		mws = append(mws, Metrics(collector))
	}
	mws = append(mws, OTelTracing())
	if cfg.RateLimitRPS > 0 {
		mws = append(mws, RateLimiter(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst, logger))
	}
	if cfg.JWTSecret != "" {
		mws = append(mws, JWTAuth(cfg.JWTSecret, cfg.JWTIssuer, []string{healthPath}, logger))
	}

	return Chain(handler, mws...)
}
