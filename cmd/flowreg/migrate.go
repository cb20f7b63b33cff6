package main

import (
	"context"
	"flag"
	"io"

	"go.uber.org/zap"

	"github.com/BaSui01/flowreg/internal/migration"
)

// runMigrate applies trace-store schema migrations against the configured
// database: flowreg migrate [--config path] <up|down|down-all|goto N|force N|version|status|info>.
func runMigrate(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to config file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var cfgArgs []string
	if *configPath != "" {
		cfgArgs = []string{"--config", *configPath}
	}
	cfg, err := loadConfig("migrate", cfgArgs)
	if err != nil {
		return err
	}

	logger := initLogger(cfg.Log)
	defer func() { _ = logger.Sync() }()

	migrator, err := migration.NewMigratorFromConfig(cfg.Database, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := migrator.Close(); err != nil {
			logger.Warn("closing migrator failed", zap.Error(err))
		}
	}()

	cli := migration.NewCLI(migrator)
	cli.SetOutput(out)

	var command string
	rest := fs.Args()
	if len(rest) > 0 {
		command, rest = rest[0], rest[1:]
	}
	return cli.Run(context.Background(), command, rest)
}
