// Package main is the entry point for the routing daemon.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/vyrodovalexey/avrouter/internal/config"
	"github.com/vyrodovalexey/avrouter/internal/observability"
)

// Version information (set at build time).
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

// cliFlags holds command line flags.
type cliFlags struct {
	configPath  string
	logLevel    string
	logFormat   string
	showVersion bool
}

func main() {
	flags := parseFlags()

	if flags.showVersion {
		printVersion()
		return
	}

	logger := initLogger(flags)
	defer func() { _ = logger.Sync() }()

	cfg, configPath := loadAndValidateConfig(flags.configPath, logger)
	app := initApplication(cfg, logger)

	runDaemon(app, configPath, logger)
}

// parseFlags parses command line flags.
func parseFlags() cliFlags {
	configPath := flag.String("config", getEnvOrDefault("ROUTERD_CONFIG_PATH", "configs/routerd.yaml"),
		"Path to configuration file")
	logLevel := flag.String("log-level", getEnvOrDefault("ROUTERD_LOG_LEVEL", "info"),
		"Log level (debug, info, warn, error)")
	logFormat := flag.String("log-format", getEnvOrDefault("ROUTERD_LOG_FORMAT", "json"),
		"Log format (json, console)")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	return cliFlags{
		configPath:  *configPath,
		logLevel:    *logLevel,
		logFormat:   *logFormat,
		showVersion: *showVersion,
	}
}

// printVersion prints version information and exits.
func printVersion() {
	fmt.Printf("routerd version %s\n", version)
	fmt.Printf("  Build time: %s\n", buildTime)
	fmt.Printf("  Git commit: %s\n", gitCommit)
}

// initLogger initializes the logger.
func initLogger(flags cliFlags) observability.Logger {
	logger, err := observability.NewLogger(observability.LogConfig{
		Level:  flags.logLevel,
		Format: flags.logFormat,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	return logger
}

// fatalWithSync flushes buffered log entries before logging at fatal
// level, which exits the process.
func fatalWithSync(logger observability.Logger, msg string, fields ...observability.Field) {
	_ = logger.Sync()
	logger.Fatal(msg, fields...)
}

// loadAndValidateConfig loads and validates the configuration. It
// returns the parsed configuration and the resolved path, which the
// config watcher later watches for changes.
func loadAndValidateConfig(configPath string, logger observability.Logger) (*config.Config, string) {
	logger.Info("starting routerd",
		observability.String("version", version),
		observability.String("config", configPath),
	)

	resolved, err := config.ResolveConfigPath(configPath)
	if err != nil {
		fatalWithSync(logger, "configuration file not found", observability.Error(err))
		return nil, "" // unreachable in production; allows test to continue
	}

	cfg, err := config.LoadConfig(resolved)
	if err != nil {
		fatalWithSync(logger, "failed to load configuration", observability.Error(err))
		return nil, "" // unreachable in production; allows test to continue
	}

	if err := config.ValidateConfig(cfg); err != nil {
		fatalWithSync(logger, "invalid configuration", observability.Error(err))
		return nil, "" // unreachable in production; allows test to continue
	}

	logger.Info("configuration loaded",
		observability.String("listen", cfg.Listen.Address),
		observability.String("admin", cfg.Admin.Address),
		observability.Int("routes", len(cfg.Routes)),
		observability.Bool("metrics", cfg.Metrics.Enabled),
		observability.Bool("tracing", cfg.Tracing.Enabled),
	)

	return cfg, resolved
}
