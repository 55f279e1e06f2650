package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/vyrodovalexey/avrouter/internal/config"
	"github.com/vyrodovalexey/avrouter/internal/observability"
)

// runDaemon starts the listeners and the configuration watcher, then
// blocks until a shutdown signal arrives. Listeners are bound before
// serving starts so a taken port fails loudly at boot.
func runDaemon(app *application, configPath string, logger observability.Logger) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watcher, err := startConfigWatcher(ctx, app, configPath)
	if err != nil {
		// Without a watcher the daemon still serves the boot-time table.
		logger.Warn("configuration watcher unavailable",
			observability.String("path", configPath),
			observability.Error(err),
		)
	} else {
		app.watcher = watcher
	}

	listener, err := net.Listen("tcp", app.server.Addr)
	if err != nil {
		fatalWithSync(logger, "failed to bind listen address",
			observability.String("address", app.server.Addr),
			observability.Error(err),
		)
		return // unreachable in production; allows test to continue
	}

	adminListener, err := net.Listen("tcp", app.adminServer.Addr)
	if err != nil {
		fatalWithSync(logger, "failed to bind admin address",
			observability.String("address", app.adminServer.Addr),
			observability.Error(err),
		)
		return // unreachable in production; allows test to continue
	}

	go serveHTTP(app.server, listener, "http", logger)
	go serveHTTP(app.adminServer, adminListener, "admin", logger)

	logger.Info("daemon started",
		observability.String("listen", listener.Addr().String()),
		observability.String("admin", adminListener.Addr().String()),
		observability.String("version", version),
	)

	waitForShutdown(app, logger)
}

// serveHTTP runs a server on its listener until shutdown.
func serveHTTP(server *http.Server, listener net.Listener, name string, logger observability.Logger) {
	if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server terminated",
			observability.String("server", name),
			observability.Error(err),
		)
	}
}

// waitForShutdown blocks until SIGINT or SIGTERM, handling SIGHUP as a
// manual reload along the way.
func waitForShutdown(app *application, logger observability.Logger) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sig)

	for s := range sig {
		if s == syscall.SIGHUP {
			handleReloadSignal(app, logger)
			continue
		}

		logger.Info("received shutdown signal",
			observability.String("signal", s.String()),
		)
		shutdown(app, logger)
		return
	}
}

// handleReloadSignal reloads the configuration on SIGHUP.
func handleReloadSignal(app *application, logger observability.Logger) {
	logger.Info("received SIGHUP, reloading configuration")

	if app.watcher == nil {
		logger.Warn("configuration watcher is not running; reload skipped")
		return
	}
	if err := app.watcher.ForceReload(); err != nil {
		recordReloadFailure(app, err)
	}
}

// shutdown drains and stops the daemon. Readiness fails from the
// first step on, so load balancers stop sending traffic before the
// listeners close.
func shutdown(app *application, logger observability.Logger) {
	logger.Info("shutting down")
	app.healthChecker.SetDraining(true)

	if app.watcher != nil {
		if err := app.watcher.Stop(); err != nil {
			logger.Warn("failed to stop configuration watcher",
				observability.Error(err),
			)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.DefaultShutdownTimeout)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		logger.Error("http server shutdown failed",
			observability.Error(err),
		)
	}
	if err := app.adminServer.Shutdown(ctx); err != nil {
		logger.Error("admin server shutdown failed",
			observability.Error(err),
		)
	}

	if app.rateLimiter != nil {
		app.rateLimiter.Stop()
	}
	if app.tracer != nil {
		if err := app.tracer.Shutdown(ctx); err != nil {
			logger.Warn("tracer shutdown failed",
				observability.Error(err),
			)
		}
	}

	logger.Info("daemon stopped")
}
