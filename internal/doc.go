// Package internal provides the HTTP substrate of the download proxy.
//
// This package is internal. Import "github.com/dmitrymomot/dlproxy" instead,
// which re-exports the public API.
//
// # Core Types
//
//   - App: Orchestrates HTTP routing, the telemetry listener and graceful shutdown
//   - Context: Request/response access plus logging helpers; also a context.Context
//   - Router: Interface handlers use to declare routes
//   - Handler: Interface implemented by types that declare routes on a router
//   - HandlerFunc: Signature for route handlers that return errors
//   - Middleware: Wraps handlers; global middleware sees every handler error
//   - Failure: Tagged error (unauthorized, internal, template render) returned by handlers
//
// # Application Structure
//
//	app := internal.New(
//	    internal.WithMiddleware(middlewares.ErrorPages(pages), middlewares.Recover()),
//	    internal.WithHTTPMiddleware(middlewares.Metrics()),
//	    internal.WithHandlers(redirectHandler),
//	    internal.WithStaticDir("./assets"),
//	    internal.WithTelemetry(internal.WithReadinessCheck("postgres", db.Healthcheck(pool))),
//	)
//
// # Error Handling
//
// Handlers return errors instead of writing error responses. Global middleware
// wraps every route and the not-found handler, so an error page middleware can
// turn any returned error into a response:
//
//	func (h *Handler) redirect(c internal.Context) error {
//	    res, err := h.svc.Redirect(c, req)
//	    if errors.Is(err, download.ErrUnauthorized) {
//	        return internal.Unauthorized(err)
//	    }
//	    ...
//	}
//
// Classify maps any error to a Failure: a Failure anywhere in the chain wins,
// everything else is internal. Errors that reach the end of the chain
// unhandled get a plain-text response with the classified status.
//
// # Server Runtime
//
//	err := app.Run(":8080",
//	    internal.Logger(log),
//	    internal.TelemetryAddress(":9090"),
//	    internal.ShutdownHook(db.Shutdown(pool)),
//	)
//
// Run blocks until SIGINT/SIGTERM, then drains in-flight requests and runs
// the shutdown hooks within the shutdown timeout.
package internal
