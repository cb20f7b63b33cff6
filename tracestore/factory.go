package tracestore

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StoreType represents the type of storage backend
type StoreType string

const (
	StoreTypeMemory StoreType = "memory"
	StoreTypeGorm   StoreType = "gorm"
)

// Config selects a trace store backend.
type Config struct {
	Type StoreType `yaml:"type" json:"type" env:"TYPE"`
}

// DefaultConfig returns the default trace store configuration.
func DefaultConfig() Config {
	return Config{Type: StoreTypeMemory}
}

// New creates the Store selected by cfg. db is only used by the gorm backend.
func New(cfg Config, db *gorm.DB, logger *zap.Logger) (Store, error) {
	switch cfg.Type {
	case StoreTypeMemory, "":
		return NewMemoryStore(), nil
	case StoreTypeGorm:
		if db == nil {
			return nil, fmt.Errorf("trace store type %q requires a database", cfg.Type)
		}
		return NewGormStore(db, logger)
	default:
		return nil, fmt.Errorf("unsupported trace store type: %s", cfg.Type)
	}
}
