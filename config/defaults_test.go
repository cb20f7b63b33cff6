package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/flowreg/flowstate"
	"github.com/BaSui01/flowreg/tracestore"
)

// --- DefaultConfig aggregate ---

func TestDefaultConfig_ContainsAllSubConfigs(t *testing.T) {
	cfg := DefaultConfig()
	require.NotNil(t, cfg)

	assert.NotEqual(t, RuntimeConfig{}, cfg.Runtime)
	assert.NotEqual(t, ReflectionConfig{}, cfg.Reflection)
	assert.NotEqual(t, DatabaseConfig{}, cfg.Database)
	assert.NotEqual(t, tracestore.Config{}, cfg.TraceStore)
	assert.NotEqual(t, flowstate.Config{}, cfg.FlowState)
	assert.NotEqual(t, TelemetryConfig{}, cfg.Telemetry)
	assert.NotEmpty(t, cfg.Log.Level)
}

// --- Individual Default*Config functions ---

func TestDefaultRuntimeConfig(t *testing.T) {
	cfg := DefaultRuntimeConfig()
	assert.Equal(t, EnvProd, cfg.Env)
	assert.False(t, cfg.IsDev())
}

func TestDefaultReflectionConfig(t *testing.T) {
	cfg := DefaultReflectionConfig()
	assert.Equal(t, "127.0.0.1:3100", cfg.Addr)
	assert.Equal(t, 30*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.WriteTimeout)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 50.0, cfg.RateLimitRPS)
	assert.Equal(t, 100, cfg.RateLimitBurst)
	assert.Empty(t, cfg.JWTSecret)
}

func TestDefaultDatabaseConfig(t *testing.T) {
	cfg := DefaultDatabaseConfig()
	assert.Equal(t, "sqlite", cfg.Driver)
	assert.Equal(t, "flowreg.db", cfg.Name)
	assert.Equal(t, 25, cfg.MaxOpenConns)
	assert.Equal(t, 5, cfg.MaxIdleConns)
	assert.Equal(t, 5*time.Minute, cfg.ConnMaxLifetime)
	assert.Equal(t, "flowreg.db", cfg.DSN())
}

func TestDefaultStoreConfigs(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, tracestore.StoreTypeMemory, cfg.TraceStore.Type)
	assert.Equal(t, flowstate.StoreTypeMemory, cfg.FlowState.Type)
	assert.Equal(t, "localhost:6379", cfg.FlowState.Redis.Addr)
	assert.Equal(t, flowstate.DefaultKeyPrefix, cfg.FlowState.Redis.KeyPrefix)
}

func TestDefaultLogConfig(t *testing.T) {
	cfg := DefaultLogConfig()
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, []string{"stdout"}, cfg.OutputPaths)
	assert.True(t, cfg.EnableCaller)
	assert.False(t, cfg.EnableStacktrace)
	assert.Empty(t, cfg.File.Path)
	assert.Equal(t, 50, cfg.File.MaxSizeMB)
	assert.Equal(t, 3, cfg.File.MaxBackups)
	assert.Equal(t, 7, cfg.File.MaxAgeDays)
}

func TestDefaultTelemetryConfig(t *testing.T) {
	cfg := DefaultTelemetryConfig()
	assert.False(t, cfg.Enabled)
	assert.Equal(t, "localhost:4317", cfg.OTLPEndpoint)
	assert.Equal(t, "flowreg", cfg.ServiceName)
	assert.Equal(t, 0.1, cfg.SampleRate)
}

func TestDefaultConfig_IsValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}
