// =============================================================================
// flowreg 主入口
// =============================================================================
// 使用方法:
//
//	flowreg serve                       # 启动服务
//	flowreg serve --config config.yaml  # 指定配置文件
//	flowreg actions                     # 打印注册表中的全部动作
//	flowreg migrate up                  # 执行 trace 表迁移
//	flowreg version                     # 显示版本信息
//	flowreg health                      # 检查反射 API
// =============================================================================

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/flowreg/config"
	"github.com/BaSui01/flowreg/registry"
)

// =============================================================================
// 📦 版本信息（构建时注入）
// =============================================================================

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// =============================================================================
// 🎯 主函数
// =============================================================================

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(os.Args[2:])
	case "actions":
		err = runActions(os.Args[2:], os.Stdout)
	case "migrate":
		err = runMigrate(os.Args[2:], os.Stdout)
	case "version":
		printVersion()
	case "health":
		err = runHealthCheck(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

// loadConfig 解析 --config 参数并加载经过校验的配置
func loadConfig(name string, args []string) (*config.Config, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to config file")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	loader := config.NewLoader().WithValidator((*config.Config).Validate)
	if *configPath != "" {
		loader = loader.WithConfigPath(*configPath)
	}
	return loader.Load()
}

// =============================================================================
// 🖥️ serve 命令
// =============================================================================

func runServe(args []string) error {
	cfg, err := loadConfig("serve", args)
	if err != nil {
		return err
	}

	logger := initLogger(cfg.Log)
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting flowreg",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit),
		zap.String("env", cfg.Runtime.Env),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := NewApp(cfg, logger)
	if err != nil {
		return err
	}
	if err := app.Start(ctx); err != nil {
		app.Close(context.Background())
		return err
	}

	runErr := app.Wait(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	app.Close(shutdownCtx)

	logger.Info("flowreg stopped")
	return runErr
}

// =============================================================================
// 📋 actions 命令
// =============================================================================

// runActions 打印注册表中的全部动作, 包括插件延迟注册的动作
func runActions(args []string, out io.Writer) error {
	cfg, err := loadConfig("actions", args)
	if err != nil {
		return err
	}

	app, err := NewApp(cfg, zap.NewNop())
	if err != nil {
		return err
	}
	defer app.Close(context.Background())

	ctx := registry.WithRegistry(context.Background(), app.Registry())
	actions, err := registry.ListActions(ctx)
	if err != nil {
		return fmt.Errorf("list actions: %w", err)
	}

	descs := make(map[string]registry.ActionDesc, len(actions))
	for key, a := range actions {
		descs[key] = registry.DescribeAction(key, a)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(descs)
}

// =============================================================================
// 🏥 健康检查命令
// =============================================================================

func runHealthCheck(args []string) error {
	fs := flag.NewFlagSet("health", flag.ContinueOnError)
	addr := fs.String("addr", "http://127.0.0.1:3100", "Reflection API address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(*addr + "/api/__health")
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed: status %d", resp.StatusCode)
	}

	fmt.Println("OK")
	return nil
}

// =============================================================================
// 📋 版本和帮助
// =============================================================================

func printVersion() {
	fmt.Printf("flowreg %s\n", Version)
	fmt.Printf("  Build Time: %s\n", BuildTime)
	fmt.Printf("  Git Commit: %s\n", GitCommit)
}

func printUsage() {
	fmt.Println(`flowreg - hierarchical action and store registry

Usage:
  flowreg <command> [options]

Commands:
  serve     Bind stores and serve the reflection API (dev)
  actions   Print all registered actions as JSON
  migrate   Manage the trace store schema (up, down, down-all, goto, force, version, status, info)
  version   Show version information
  health    Check the reflection API
  help      Show this help message

Options for 'serve', 'actions' and 'migrate':
  --config <path>   Path to configuration file (YAML)

Examples:
  FLOWREG_RUNTIME_ENV=dev flowreg serve
  flowreg serve --config /etc/flowreg/config.yaml
  flowreg actions
  flowreg migrate --config config.yaml up
  flowreg health --addr http://127.0.0.1:3100`)
}
