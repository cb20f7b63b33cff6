package migration

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/BaSui01/flowreg/config"
	"github.com/BaSui01/flowreg/internal/database"
)

// NewMigratorFromConfig opens the configured database and returns a
// migrator that owns the connection.
func NewMigratorFromConfig(cfg config.DatabaseConfig, logger *zap.Logger) (*DefaultMigrator, error) {
	dbType, err := ParseDatabaseType(cfg.Driver)
	if err != nil {
		return nil, fmt.Errorf("invalid database type: %w", err)
	}

	db, err := database.Open(cfg, logger)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	m, err := NewMigrator(sqlDB, Config{DatabaseType: dbType}, logger)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return m, nil
}
