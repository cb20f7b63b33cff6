// =============================================================================
// 📦 flowreg 默认配置
// =============================================================================
// 提供所有配置项的合理默认值
// =============================================================================
package config

import (
	"time"

	"github.com/BaSui01/flowreg/flowstate"
	"github.com/BaSui01/flowreg/tracestore"
)

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Runtime:    DefaultRuntimeConfig(),
		Reflection: DefaultReflectionConfig(),
		Database:   DefaultDatabaseConfig(),
		TraceStore: tracestore.DefaultConfig(),
		FlowState:  flowstate.DefaultConfig(),
		Log:        DefaultLogConfig(),
		Telemetry:  DefaultTelemetryConfig(),
	}
}

// DefaultRuntimeConfig 返回默认运行时配置
func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{Env: EnvProd}
}

// DefaultReflectionConfig 返回默认反射服务器配置
func DefaultReflectionConfig() ReflectionConfig {
	return ReflectionConfig{
		Addr:            "127.0.0.1:3100",
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		RateLimitRPS:    50,
		RateLimitBurst:  100,
	}
}

// DefaultDatabaseConfig 返回默认数据库配置
func DefaultDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Driver:          "sqlite",
		Host:            "localhost",
		Port:            5432,
		User:            "flowreg",
		Password:        "",
		Name:            "flowreg.db",
		SSLMode:         "disable",
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
	}
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:            "info",
		Format:           "json",
		OutputPaths:      []string{"stdout"},
		EnableCaller:     true,
		EnableStacktrace: false,
		File: LogFileConfig{
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 7,
		},
	}
}

// DefaultTelemetryConfig 返回默认遥测配置
func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:      false,
		OTLPEndpoint: "localhost:4317",
		ServiceName:  "flowreg",
		SampleRate:   0.1,
	}
}
