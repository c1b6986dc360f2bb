package internal

import (
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/dlproxy/pkg/health"
	"github.com/dmitrymomot/dlproxy/pkg/logger"
)

// Default server timeouts (hardcoded, opinionated).
const (
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20 // 1MB
	defaultShutdownTimeout   = 30 * time.Second
)

// App orchestrates the application lifecycle.
// It manages HTTP routing, middleware, and graceful shutdown.
// App is immutable after creation - all configuration is done via New().
type App struct {
	router                  chi.Router
	errorHandler            ErrorHandler
	notFoundHandler         HandlerFunc
	methodNotAllowedHandler HandlerFunc
	telemetry               *telemetryConfig
	logger                  *slog.Logger
	static                  fs.FS
	middlewares             []Middleware
	httpMiddlewares         []func(http.Handler) http.Handler
	handlers                []Handler
}

// New creates a new application with the given options.
// The App is immutable after creation.
//
// Example:
//
//	app := dlproxy.New(
//	    dlproxy.WithMiddleware(middlewares.RequestID()),
//	    dlproxy.WithHandlers(handlers.NewRedirect(svc, homepage)),
//	)
func New(opts ...Option) *App {
	a := &App{
		router: chi.NewRouter(),
		logger: logger.NewNope(),
	}

	for _, opt := range opts {
		opt(a)
	}

	a.setupRoutes()
	return a
}

// Router returns the underlying chi.Router for the App.
func (a *App) Router() chi.Router {
	return a.router
}

// ServeHTTP dispatches the request to the router.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// TelemetryHandler returns the handler served on the telemetry listener,
// or nil when telemetry is not enabled.
func (a *App) TelemetryHandler() http.Handler {
	if a.telemetry == nil {
		return nil
	}

	r := chi.NewRouter()
	r.Method(http.MethodGet, a.telemetry.metricsPath, promhttp.HandlerFor(a.telemetry.gatherer, promhttp.HandlerOpts{}))
	r.Get(a.telemetry.livenessPath, health.LivenessHandler())
	r.Get(a.telemetry.readinessPath, health.ReadinessHandler(a.telemetry.checks, health.WithLogger(a.logger)))
	return r
}

// Run starts the HTTP server (and the telemetry listener when configured)
// and blocks until shutdown.
//
// Example:
//
//	err := app.Run(":8080",
//	    dlproxy.Logger(log),
//	    dlproxy.TelemetryAddress(":9090"),
//	    dlproxy.ShutdownHook(db.Shutdown(pool)),
//	)
func (a *App) Run(addr string, opts ...RunOption) error {
	cfg := buildRunConfig(opts...)

	var telemetry http.Handler
	if cfg.telemetryAddress != "" {
		telemetry = a.TelemetryHandler()
	}

	return runServer(runtimeConfig{
		handler:          a,
		address:          addr,
		telemetry:        telemetry,
		telemetryAddress: cfg.telemetryAddress,
		logger:           cfg.logger,
		shutdownTimeout:  cfg.shutdownTimeout,
		shutdownHooks:    cfg.shutdownHooks,
		baseCtx:          cfg.baseCtx,
	})
}

// setupRoutes configures the router with middleware and handlers.
func (a *App) setupRoutes() {
	a.router.Use(a.httpMiddlewares...)

	notFound := a.notFoundHandler
	if notFound == nil {
		notFound = defaultNotFound
	}
	if a.static != nil {
		notFound = a.staticFallback(notFound)
	}
	a.router.NotFound(a.wrapHandler(notFound))

	if a.methodNotAllowedHandler != nil {
		a.router.MethodNotAllowed(a.wrapHandler(a.methodNotAllowedHandler))
	}

	r := &routerAdapter{router: a.router, app: a}
	for _, h := range a.handlers {
		h.Routes(r)
	}
}

// wrapHandler converts a HandlerFunc to http.HandlerFunc.
// Global middleware wraps route middleware, so errors returned by the handler
// pass through every global middleware before reaching the app error handler.
func (a *App) wrapHandler(h HandlerFunc, mw ...Middleware) http.HandlerFunc {
	h = chain(chain(h, mw...), a.middlewares...)
	return func(w http.ResponseWriter, r *http.Request) {
		c := newContext(w, r, a.logger)
		if err := h(c); err != nil {
			a.handleError(c, err)
		}
	}
}

// handleError handles errors that reached the end of the middleware chain.
func (a *App) handleError(c Context, err error) {
	if c.Written() {
		return
	}
	if a.errorHandler != nil {
		_ = a.errorHandler(c, err)
		return
	}

	f := Classify(err)
	c.LogError("unhandled request error", slog.Any("error", err))
	http.Error(c.Response(), f.Message(), f.StatusCode())
}

// staticFallback serves files from the static root for otherwise unmatched
// GET and HEAD requests. Directories are never listed.
func (a *App) staticFallback(next HandlerFunc) HandlerFunc {
	fileServer := http.FileServerFS(a.static)

	return func(c Context) error {
		r := c.Request()
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			return next(c)
		}

		name := strings.TrimPrefix(r.URL.Path, "/")
		if name == "" || strings.HasSuffix(name, "/") || !fs.ValidPath(name) {
			return next(c)
		}
		info, err := fs.Stat(a.static, name)
		if err != nil || info.IsDir() {
			return next(c)
		}

		c.SetHeader("Cache-Control", "public, max-age=3600")
		c.SetHeader("X-Content-Type-Options", "nosniff")
		fileServer.ServeHTTP(c.Response(), r)
		return nil
	}
}

func defaultNotFound(c Context) error {
	return c.String(http.StatusNotFound, "404 page not found\n")
}

// telemetryConfig holds the telemetry listener configuration.
type telemetryConfig struct {
	gatherer      prometheus.Gatherer
	checks        health.Checks
	metricsPath   string
	livenessPath  string
	readinessPath string
}

// Default telemetry paths.
const (
	defaultMetricsPath   = "/metrics"
	defaultLivenessPath  = "/health/live"
	defaultReadinessPath = "/health/ready"
)

// TelemetryOption configures the telemetry endpoints.
type TelemetryOption func(*telemetryConfig)

// WithReadinessCheck adds a named readiness check.
// Checks run in parallel during readiness probe.
//
// Example:
//
//	dlproxy.WithReadinessCheck("postgres", db.Healthcheck(pool))
func WithReadinessCheck(name string, fn health.CheckFunc) TelemetryOption {
	return func(c *telemetryConfig) {
		if c.checks == nil {
			c.checks = make(health.Checks)
		}
		c.checks[name] = fn
	}
}

// WithGatherer replaces the Prometheus registry served on /metrics.
// Defaults to prometheus.DefaultGatherer.
func WithGatherer(g prometheus.Gatherer) TelemetryOption {
	return func(c *telemetryConfig) {
		if g != nil {
			c.gatherer = g
		}
	}
}

// WithLivenessPath sets a custom liveness endpoint path.
// Defaults to "/health/live".
func WithLivenessPath(path string) TelemetryOption {
	return func(c *telemetryConfig) {
		if path != "" {
			c.livenessPath = path
		}
	}
}

// WithReadinessPath sets a custom readiness endpoint path.
// Defaults to "/health/ready".
func WithReadinessPath(path string) TelemetryOption {
	return func(c *telemetryConfig) {
		if path != "" {
			c.readinessPath = path
		}
	}
}
