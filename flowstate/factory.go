package flowstate

import (
	"fmt"

	"go.uber.org/zap"
)

// DefaultKeyPrefix is the Redis key prefix used when none is configured.
const DefaultKeyPrefix = "flowreg:"

// StoreType represents the type of storage backend
type StoreType string

const (
	StoreTypeMemory StoreType = "memory"
	StoreTypeRedis  StoreType = "redis"
)

// Config selects a flow-state store backend.
type Config struct {
	Type  StoreType   `yaml:"type" json:"type" env:"TYPE"`
	Redis RedisConfig `yaml:"redis" json:"redis" env:"REDIS"`
}

// RedisConfig contains Redis-specific configuration
type RedisConfig struct {
	Addr      string `yaml:"addr" json:"addr" env:"ADDR"`
	Password  string `yaml:"password" json:"password" env:"PASSWORD"`
	DB        int    `yaml:"db" json:"db" env:"DB"`
	PoolSize  int    `yaml:"pool_size" json:"pool_size" env:"POOL_SIZE"`
	KeyPrefix string `yaml:"key_prefix" json:"key_prefix" env:"KEY_PREFIX"`
}

// DefaultConfig returns the default flow-state store configuration.
func DefaultConfig() Config {
	return Config{
		Type: StoreTypeMemory,
		Redis: RedisConfig{
			Addr:      "localhost:6379",
			PoolSize:  10,
			KeyPrefix: DefaultKeyPrefix,
		},
	}
}

// New creates the Store selected by cfg.
func New(cfg Config, logger *zap.Logger) (Store, error) {
	switch cfg.Type {
	case StoreTypeMemory, "":
		return NewMemoryStore(), nil
	case StoreTypeRedis:
		return NewRedisStore(cfg.Redis, logger)
	default:
		return nil, fmt.Errorf("unsupported flow state store type: %s", cfg.Type)
	}
}
