package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/BaSui01/flowreg/registry"
)

// =============================================================================
// 📊 指标收集器
// =============================================================================

// Collector 指标收集器, 同时实现 registry.Observer
type Collector struct {
	// HTTP 指标
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpResponseSize    *prometheus.HistogramVec

	// Registry 指标
	actionLookupsTotal    *prometheus.CounterVec
	pluginInitsTotal      *prometheus.CounterVec
	pluginInitDuration    *prometheus.HistogramVec
	providerBuildsTotal   *prometheus.CounterVec
	providerBuildDuration *prometheus.HistogramVec

	// 数据库指标
	dbConnectionsOpen *prometheus.GaugeVec
	dbConnectionsIdle *prometheus.GaugeVec

	logger *zap.Logger
}

// 编译期接口检查
var _ registry.Observer = (*Collector)(nil)

// NewCollector 创建指标收集器
// 指标注册到 reg, reg 为 nil 时使用 prometheus.DefaultRegisterer
func NewCollector(namespace string, reg prometheus.Registerer, logger *zap.Logger) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	factory := promauto.With(reg)

	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	// HTTP 指标
	c.httpRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of reflection API requests",
		},
		[]string{"method", "path", "status"},
	)

	c.httpRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Reflection API request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	c.httpResponseSize = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_response_size_bytes",
			Help:      "Reflection API response size in bytes",
			Buckets:   prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	// Registry 指标
	c.actionLookupsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "action_lookups_total",
			Help:      "Total number of action lookups",
		},
		[]string{"action_type", "result"}, // result: hit, miss
	)

	c.pluginInitsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plugin_initializations_total",
			Help:      "Total number of plugin initializer runs",
		},
		[]string{"plugin", "status"},
	)

	c.pluginInitDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "plugin_initialization_duration_seconds",
			Help:      "Plugin initializer duration in seconds",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10, 30},
		},
		[]string{"plugin"},
	)

	c.providerBuildsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_constructions_total",
			Help:      "Total number of store provider runs",
		},
		[]string{"kind", "env", "status"},
	)

	c.providerBuildDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_construction_duration_seconds",
			Help:      "Store provider duration in seconds",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10, 30},
		},
		[]string{"kind", "env"},
	)

	// 数据库指标
	c.dbConnectionsOpen = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_connections_open",
			Help:      "Number of open database connections",
		},
		[]string{"database"},
	)

	c.dbConnectionsIdle = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_connections_idle",
			Help:      "Number of idle database connections",
		},
		[]string{"database"},
	)

	c.logger.Info("metrics collector initialized", zap.String("namespace", namespace))

	return c
}

// =============================================================================
// 🎯 HTTP 指标记录
// =============================================================================

// RecordHTTPRequest 记录 HTTP 请求
func (c *Collector) RecordHTTPRequest(method, path string, status int, duration time.Duration, responseSize int64) {
	c.httpRequestsTotal.WithLabelValues(method, path, statusCode(status)).Inc()
	c.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	c.httpResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
}

// =============================================================================
// 🗂️ Registry 指标记录
// =============================================================================

// ActionLookup 记录动作查找 (registry.Observer)
func (c *Collector) ActionLookup(key string, found bool) {
	result := "miss"
	if found {
		result = "hit"
	}
	c.actionLookupsTotal.WithLabelValues(actionType(key), result).Inc()
}

// PluginInitialized 记录插件初始化 (registry.Observer)
func (c *Collector) PluginInitialized(name string, took time.Duration, err error) {
	c.pluginInitsTotal.WithLabelValues(name, outcome(err)).Inc()
	c.pluginInitDuration.WithLabelValues(name).Observe(took.Seconds())
}

// ProviderConstructed 记录存储构造 (registry.Observer)
func (c *Collector) ProviderConstructed(kind, env string, took time.Duration, err error) {
	c.providerBuildsTotal.WithLabelValues(kind, env, outcome(err)).Inc()
	c.providerBuildDuration.WithLabelValues(kind, env).Observe(took.Seconds())
}

// =============================================================================
// 🗄️ 数据库指标记录
// =============================================================================

// RecordDBConnections 记录数据库连接数
func (c *Collector) RecordDBConnections(database string, open, idle int) {
	c.dbConnectionsOpen.WithLabelValues(database).Set(float64(open))
	c.dbConnectionsIdle.WithLabelValues(database).Set(float64(idle))
}

// =============================================================================
// 🔧 辅助函数
// =============================================================================

// statusCode 将 HTTP 状态码转换为字符串
func statusCode(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}

// actionType 仅取合法 key 的类型段作为标签, 控制标签基数
func actionType(key string) string {
	typ, _, ok := registry.ParseActionKey(key)
	if !ok {
		return "invalid"
	}
	return string(typ)
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
