package internal

import (
	"io/fs"
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/dlproxy/pkg/logger"
)

// Option configures the application.
type Option func(*App)

// WithMiddleware adds global middleware to the application.
// Middleware is applied in the order provided and wraps every route,
// including the not-found handler, so returned errors are visible to it.
func WithMiddleware(mw ...Middleware) Option {
	return func(a *App) {
		a.middlewares = append(a.middlewares, mw...)
	}
}

// WithHTTPMiddleware adds net/http middleware that runs before routing.
// Use it for concerns that never inspect handler errors (real IP, metrics, rate limits).
//
// Example:
//
//	dlproxy.New(
//	    dlproxy.WithHTTPMiddleware(middleware.RealIP),
//	)
func WithHTTPMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return func(a *App) {
		a.httpMiddlewares = append(a.httpMiddlewares, mw...)
	}
}

// WithHandlers registers handlers that declare routes.
// Each handler's Routes method is called during setup.
func WithHandlers(h ...Handler) Option {
	return func(a *App) {
		a.handlers = append(a.handlers, h...)
	}
}

// WithStaticFallback serves files from fsys for requests no route matched.
// Directory listings are disabled. Misses fall through to the not-found handler.
//
// Example:
//
//	dlproxy.New(
//	    dlproxy.WithStaticFallback(os.DirFS("./assets")),
//	)
func WithStaticFallback(fsys fs.FS) Option {
	return func(a *App) {
		a.static = fsys
	}
}

// WithStaticDir is WithStaticFallback for a directory on disk.
// An empty dir disables the fallback.
func WithStaticDir(dir string) Option {
	return func(a *App) {
		if dir != "" {
			a.static = os.DirFS(dir)
		}
	}
}

// WithErrorHandler sets the handler for errors that no middleware turned into a response.
func WithErrorHandler(h ErrorHandler) Option {
	return func(a *App) {
		a.errorHandler = h
	}
}

// WithNotFoundHandler sets a custom 404 handler.
//
// Example:
//
//	dlproxy.WithNotFoundHandler(func(c dlproxy.Context) error {
//	    return c.String(http.StatusNotFound, "Page not found")
//	})
func WithNotFoundHandler(h HandlerFunc) Option {
	return func(a *App) {
		a.notFoundHandler = h
	}
}

// WithMethodNotAllowedHandler sets a custom 405 handler.
func WithMethodNotAllowedHandler(h HandlerFunc) Option {
	return func(a *App) {
		a.methodNotAllowedHandler = h
	}
}

// WithTelemetry enables the metrics and health endpoints served by the telemetry listener.
// Liveness (/health/live): Always returns OK if process is running.
// Readiness (/health/ready): Runs all configured checks.
//
// Example:
//
//	dlproxy.WithTelemetry(
//	    dlproxy.WithReadinessCheck("postgres", db.Healthcheck(pool)),
//	)
func WithTelemetry(opts ...TelemetryOption) Option {
	return func(a *App) {
		cfg := &telemetryConfig{
			gatherer:      prometheus.DefaultGatherer,
			metricsPath:   defaultMetricsPath,
			livenessPath:  defaultLivenessPath,
			readinessPath: defaultReadinessPath,
		}
		for _, opt := range opts {
			opt(cfg)
		}
		a.telemetry = cfg
	}
}

// WithLogger creates a logger with a component name and optional extractors.
// The component name is added to every log entry for easy filtering.
// Extractors pull values from context (e.g., request_id).
func WithLogger(component string, extractors ...logger.ContextExtractor) Option {
	return func(a *App) {
		a.logger = logger.New(extractors...).With("component", component)
	}
}

// WithCustomLogger sets a fully custom logger.
// Use this when you need complete control over logging configuration.
func WithCustomLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}
