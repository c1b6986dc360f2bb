package dlproxy

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/dlproxy/internal"
	"github.com/dmitrymomot/dlproxy/pkg/health"
	"github.com/dmitrymomot/dlproxy/pkg/logger"
)

// Type aliases - public API
type (
	// App orchestrates the application lifecycle.
	// It manages HTTP routing, middleware, telemetry and graceful shutdown.
	App = internal.App

	// Router is the interface handlers use to declare routes.
	Router = internal.Router

	// Context provides request/response access and helper methods.
	Context = internal.Context

	// Handler declares routes on a router.
	Handler = internal.Handler

	// HandlerFunc is the signature for route handlers.
	HandlerFunc = internal.HandlerFunc

	// Middleware wraps a HandlerFunc to add cross-cutting concerns.
	Middleware = internal.Middleware

	// ErrorHandler handles errors that no middleware turned into a response.
	ErrorHandler = internal.ErrorHandler

	// Option configures the application.
	Option = internal.Option

	// RunOption configures the server runtime.
	RunOption = internal.RunOption

	// TelemetryOption configures the metrics and health endpoints.
	TelemetryOption = internal.TelemetryOption

	// Component is the interface for renderable templates.
	Component = internal.Component

	// Failure is the tagged error handlers return to select an error page.
	Failure = internal.Failure

	// Kind classifies a Failure.
	Kind = internal.Kind

	// ContextExtractor extracts a slog attribute from context.
	// Used with WithLogger to add request-scoped values to logs.
	ContextExtractor = logger.ContextExtractor

	// Extractor tries value sources in order and returns the first match.
	Extractor = internal.Extractor

	// ExtractorSource reads one value from the request.
	ExtractorSource = internal.ExtractorSource
)

// Failure kinds.
const (
	KindInternal       = internal.KindInternal
	KindUnauthorized   = internal.KindUnauthorized
	KindTemplateRender = internal.KindTemplateRender
)

// New creates a new application with the given options.
func New(opts ...Option) *App {
	return internal.New(opts...)
}

// Application options

// WithMiddleware adds global middleware wrapping every route and the not-found handler.
func WithMiddleware(mw ...Middleware) Option {
	return internal.WithMiddleware(mw...)
}

// WithHTTPMiddleware adds net/http middleware that runs before routing.
func WithHTTPMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return internal.WithHTTPMiddleware(mw...)
}

// WithHandlers registers handlers that declare routes.
func WithHandlers(h ...Handler) Option {
	return internal.WithHandlers(h...)
}

// WithStaticFallback serves files from fsys for requests no route matched.
func WithStaticFallback(fsys fs.FS) Option {
	return internal.WithStaticFallback(fsys)
}

// WithStaticDir serves files from dir for requests no route matched.
func WithStaticDir(dir string) Option {
	return internal.WithStaticDir(dir)
}

// WithErrorHandler sets the handler for errors no middleware handled.
func WithErrorHandler(h ErrorHandler) Option {
	return internal.WithErrorHandler(h)
}

// WithNotFoundHandler sets a custom 404 handler.
func WithNotFoundHandler(h HandlerFunc) Option {
	return internal.WithNotFoundHandler(h)
}

// WithMethodNotAllowedHandler sets a custom 405 handler.
func WithMethodNotAllowedHandler(h HandlerFunc) Option {
	return internal.WithMethodNotAllowedHandler(h)
}

// WithTelemetry enables /metrics and the health endpoints on the telemetry listener.
func WithTelemetry(opts ...TelemetryOption) Option {
	return internal.WithTelemetry(opts...)
}

// WithLogger creates a logger with a component name and optional extractors.
func WithLogger(component string, extractors ...ContextExtractor) Option {
	return internal.WithLogger(component, extractors...)
}

// WithCustomLogger sets a fully custom logger.
func WithCustomLogger(l *slog.Logger) Option {
	return internal.WithCustomLogger(l)
}

// Telemetry options

// WithReadinessCheck adds a named readiness check.
func WithReadinessCheck(name string, fn health.CheckFunc) TelemetryOption {
	return internal.WithReadinessCheck(name, fn)
}

// WithGatherer replaces the Prometheus registry served on /metrics.
func WithGatherer(g prometheus.Gatherer) TelemetryOption {
	return internal.WithGatherer(g)
}

// WithLivenessPath sets a custom liveness endpoint path.
func WithLivenessPath(path string) TelemetryOption {
	return internal.WithLivenessPath(path)
}

// WithReadinessPath sets a custom readiness endpoint path.
func WithReadinessPath(path string) TelemetryOption {
	return internal.WithReadinessPath(path)
}

// Run options

// Logger sets the runtime logger.
func Logger(l *slog.Logger) RunOption {
	return internal.Logger(l)
}

// TelemetryAddress sets the telemetry listener address. Empty disables it.
func TelemetryAddress(addr string) RunOption {
	return internal.TelemetryAddress(addr)
}

// ShutdownTimeout sets the timeout for graceful shutdown.
func ShutdownTimeout(d time.Duration) RunOption {
	return internal.ShutdownTimeout(d)
}

// ShutdownHook registers a cleanup function to run during shutdown.
func ShutdownHook(fn func(context.Context) error) RunOption {
	return internal.ShutdownHook(fn)
}

// WithContext sets a custom base context for signal handling.
func WithContext(ctx context.Context) RunOption {
	return internal.WithContext(ctx)
}

// Failures

// Unauthorized wraps err as a failure rendered with the unauthorized page (401).
func Unauthorized(err error) *Failure {
	return internal.Unauthorized(err)
}

// Internal wraps err as a failure rendered with the generic error page (500).
func Internal(err error) *Failure {
	return internal.Internal(err)
}

// Classify returns the Failure carried by err; anything else is internal.
func Classify(err error) *Failure {
	return internal.Classify(err)
}

// Helpers

// ContextValue retrieves a typed value from the context.
// Returns the zero value of T if the key is not found or the type doesn't match.
func ContextValue[T any](c Context, key any) T {
	return internal.ContextValue[T](c, key)
}

// ClientIP strips the port from a RemoteAddr value.
func ClientIP(remoteAddr string) string {
	return internal.ClientIP(remoteAddr)
}

// NewExtractor creates an Extractor that tries the given sources in order.
func NewExtractor(sources ...ExtractorSource) Extractor {
	return internal.NewExtractor(sources...)
}

// FromHeader reads a trimmed request header.
func FromHeader(name string) ExtractorSource {
	return internal.FromHeader(name)
}

// FromRemoteAddr reads the peer IP from the request RemoteAddr.
func FromRemoteAddr() ExtractorSource {
	return internal.FromRemoteAddr()
}
