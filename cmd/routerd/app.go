package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vyrodovalexey/avrouter"
	"github.com/vyrodovalexey/avrouter/internal/config"
	"github.com/vyrodovalexey/avrouter/internal/health"
	"github.com/vyrodovalexey/avrouter/internal/middleware"
	"github.com/vyrodovalexey/avrouter/internal/observability"
)

// application holds the daemon's long-lived components. reloadMu
// serializes configuration reloads, which arrive from both the file
// watcher and the SIGHUP handler.
type application struct {
	reloadMu      sync.Mutex
	config        *config.Config
	logger        observability.Logger
	metrics       *observability.Metrics
	tracer        *observability.Tracer
	healthChecker *health.Checker
	reloadMetrics *reloadMetrics
	reloadState   *reloadState
	rateLimiter   *middleware.RateLimiter
	router        atomic.Pointer[avrouter.Router]
	server        *http.Server
	adminServer   *http.Server
	watcher       *config.Watcher
}

// initApplication wires every component from the loaded configuration.
// Failures here are fatal: a daemon that cannot build its route table
// or admin surface has nothing to serve.
func initApplication(cfg *config.Config, logger observability.Logger) *application {
	app := &application{
		config:      cfg,
		logger:      logger,
		reloadState: &reloadState{},
	}

	app.metrics = observability.NewMetrics("routerd")
	app.metrics.SetBuildInfo(version, gitCommit, buildTime)

	tracer, err := initTracer(cfg)
	if err != nil {
		fatalWithSync(logger, "failed to initialize tracing", observability.Error(err))
		return nil // unreachable in production; allows test to continue
	}
	app.tracer = tracer

	app.reloadMetrics = newReloadMetrics(app.metrics)
	app.healthChecker = health.NewChecker(version, logger)

	initClientIPExtractor(cfg, logger)

	router, err := buildRouter(cfg)
	if err != nil {
		fatalWithSync(logger, "failed to build route table", observability.Error(err))
		return nil // unreachable in production; allows test to continue
	}
	app.router.Store(router)
	app.metrics.SetRoutesLoaded(router.Len())

	chain := buildMiddlewareChain(app, logger)
	app.rateLimiter = chain.rateLimiter
	app.server = createServer(cfg.Listen, chain.handler)

	adminRouter, err := buildAdminRouter(app)
	if err != nil {
		fatalWithSync(logger, "failed to build admin endpoints", observability.Error(err))
		return nil // unreachable in production; allows test to continue
	}
	app.adminServer = createAdminServer(cfg.Admin.Address, adminRouter)

	registerHealthChecks(app)
	health.GetHealthMetrics().Init()

	return app
}

// initTracer creates the tracer from the tracing section. A disabled
// section still yields a usable no-op tracer.
func initTracer(cfg *config.Config) (*observability.Tracer, error) {
	return observability.NewTracer(observability.TracerConfig{
		Enabled:      cfg.Tracing.Enabled,
		ServiceName:  cfg.Tracing.ServiceName,
		OTLPEndpoint: cfg.Tracing.Endpoint,
		SamplingRate: cfg.Tracing.SampleRate,
	})
}

// initClientIPExtractor installs the trusted-proxy aware client IP
// extractor used by per-client rate limiting.
func initClientIPExtractor(cfg *config.Config, logger observability.Logger) {
	if cfg.Limits == nil || len(cfg.Limits.TrustedProxies) == 0 {
		return
	}
	middleware.SetGlobalIPExtractor(middleware.NewClientIPExtractor(cfg.Limits.TrustedProxies))
	logger.Info("client IP extractor configured",
		observability.Int("trustedProxies", len(cfg.Limits.TrustedProxies)),
	)
}

// registerHealthChecks registers the daemon's readiness checks. The
// routes check is advisory: an intentionally empty table degrades the
// report without failing the probe.
func registerHealthChecks(app *application) {
	app.healthChecker.RegisterCheck("config", func(_ context.Context) error {
		return app.reloadState.LastError()
	})
	app.healthChecker.RegisterCheck("router", func(_ context.Context) error {
		if app.router.Load() == nil {
			return errors.New("no route table loaded")
		}
		return nil
	})
	app.healthChecker.RegisterCheck("routes", func(_ context.Context) error {
		router := app.router.Load()
		if router == nil || router.Len() == 0 {
			return errors.New("route table is empty")
		}
		return nil
	}, health.WithCritical(false))
}

// buildRouter constructs a router from the configured route table.
// Registration is all-or-nothing: the first failure aborts the build
// and the previous table stays in service.
func buildRouter(cfg *config.Config) (*avrouter.Router, error) {
	router := avrouter.New(avrouter.WithMetrics(cfg.Metrics.Enabled))

	for _, rc := range cfg.Routes {
		if err := router.Handle(rc.Method, rc.Path, buildRouteHandler(rc)); err != nil {
			return nil, fmt.Errorf("route %s %s: %w", rc.Method, rc.Path, err)
		}
	}

	router.NotFound(jsonFallbackHandler())
	return router, nil
}

// buildRouteHandler creates the handler for one configured route.
func buildRouteHandler(rc config.RouteConfig) avrouter.Handler {
	if rc.Echo {
		return echoHandler(rc)
	}
	return fixedResponseHandler(rc)
}

// placeholderPattern matches {name} references in fixed response
// bodies.
var placeholderPattern = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandPlaceholders substitutes {name} references with the matched
// route parameters. Unknown names are left as written.
func expandPlaceholders(body string, ps avrouter.Params) string {
	if !strings.Contains(body, "{") {
		return body
	}
	return placeholderPattern.ReplaceAllStringFunc(body, func(m string) string {
		if v, ok := ps.Find(m[1 : len(m)-1]); ok {
			return v
		}
		return m
	})
}

// fixedResponseHandler serves the configured static response,
// expanding route parameter placeholders in the body.
func fixedResponseHandler(rc config.RouteConfig) avrouter.Handler {
	status := http.StatusOK
	body := ""
	contentType := "text/plain; charset=utf-8"
	if rc.Response != nil {
		if rc.Response.Status != 0 {
			status = rc.Response.Status
		}
		body = rc.Response.Body
		if rc.Response.ContentType != "" {
			contentType = rc.Response.ContentType
		}
	}

	return avrouter.HandlerFunc(func(w http.ResponseWriter, r *http.Request, ps avrouter.Params) {
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(status)
		_, _ = io.WriteString(w, expandPlaceholders(body, ps))
	})
}

// echoResponse is the reply body of an echo route.
type echoResponse struct {
	Route   string              `json:"route,omitempty"`
	Method  string              `json:"method"`
	Path    string              `json:"path"`
	Pattern string              `json:"pattern"`
	Params  map[string]string   `json:"params,omitempty"`
	Query   map[string][]string `json:"query,omitempty"`
	Headers map[string][]string `json:"headers,omitempty"`
}

// echoHandler reflects the request back as JSON. Binding names come
// from the configured pattern, so the reply lists exactly the
// parameters that pattern captures.
func echoHandler(rc config.RouteConfig) avrouter.Handler {
	names := bindingNames(rc.Path)

	return avrouter.HandlerFunc(func(w http.ResponseWriter, r *http.Request, ps avrouter.Params) {
		resp := echoResponse{
			Route:   rc.Name,
			Method:  r.Method,
			Path:    r.URL.Path,
			Pattern: rc.Path,
			Query:   r.URL.Query(),
			Headers: r.Header,
		}
		if len(names) > 0 {
			params := make(map[string]string, len(names))
			for _, name := range names {
				if v, ok := ps.Find(name); ok {
					params[name] = v
				}
			}
			resp.Params = params
		}
		writeJSON(w, http.StatusOK, resp)
	})
}

// bindingNames extracts the parameter binding names from a route
// pattern. A bare "*" wildcard has no name and contributes nothing.
func bindingNames(pattern string) []string {
	var names []string
	for _, seg := range strings.Split(pattern, "/") {
		if seg == "" {
			continue
		}
		switch seg[0] {
		case ':':
			names = append(names, seg[1:])
		case '*':
			if len(seg) > 1 {
				names = append(names, seg[1:])
			}
		}
	}
	return names
}

// jsonFallbackHandler writes structured miss responses. The router
// sets the Allow header before delegating on a method miss, which is
// how the fallback tells a 405 from a 404.
func jsonFallbackHandler() avrouter.Handler {
	return avrouter.HandlerFunc(func(w http.ResponseWriter, r *http.Request, _ avrouter.Params) {
		if allow := w.Header().Get("Allow"); allow != "" {
			writeJSON(w, http.StatusMethodNotAllowed, map[string]string{
				"error":  "method not allowed",
				"method": r.Method,
				"path":   r.URL.Path,
				"allow":  allow,
			})
			return
		}
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "route not found",
			"path":  r.URL.Path,
		})
	})
}

// buildAdminRouter assembles the operational endpoints. The admin
// router runs with match metrics off so probe traffic stays out of the
// routing counters.
func buildAdminRouter(app *application) (*avrouter.Router, error) {
	router := avrouter.New(avrouter.WithMetrics(false))

	if app.config.Metrics.Enabled {
		if err := router.Get("/metrics", avrouter.WrapHandler(app.metrics.Handler())); err != nil {
			return nil, err
		}
	}
	if err := app.healthChecker.RegisterRoutes(router); err != nil {
		return nil, err
	}
	if err := router.Get("/routes", routeListHandler(&app.router)); err != nil {
		return nil, err
	}

	return router, nil
}

// routeListHandler reports the currently loaded route table.
func routeListHandler(router *atomic.Pointer[avrouter.Router]) avrouter.Handler {
	type routeEntry struct {
		Method  string `json:"method"`
		Pattern string `json:"pattern"`
	}

	return avrouter.HandlerFunc(func(w http.ResponseWriter, _ *http.Request, _ avrouter.Params) {
		current := router.Load()
		if current == nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"error": "router not ready",
			})
			return
		}

		routes := current.Routes()
		entries := make([]routeEntry, 0, len(routes))
		for _, route := range routes {
			entries = append(entries, routeEntry{Method: route.Method, Pattern: route.Pattern})
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"count":  len(entries),
			"routes": entries,
		})
	})
}

// createServer builds the route listener from the listen section.
// Zero duration values leave the corresponding timeout unset; the
// header read timeout is always bounded.
func createServer(cfg config.ListenConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Address,
		Handler:           handler,
		ReadTimeout:       cfg.ReadTimeout.Duration(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.WriteTimeout.Duration(),
		IdleTimeout:       cfg.IdleTimeout.Duration(),
	}
}

// createAdminServer builds the admin listener with fixed conservative
// timeouts.
func createAdminServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

// writeJSON writes v as a JSON response body.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
