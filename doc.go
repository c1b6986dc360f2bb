// Package dlproxy is a secret-gated download redirector.
//
// A client presents an opaque per-file secret in the URL path. The service
// resolves the secret against PostgreSQL into S3 coordinates, confirms the
// object exists, presigns a short-lived GET URL carrying the download
// filename and answers with a temporary redirect to it. Object bytes never
// flow through the service.
//
// This package exposes the HTTP substrate the service is built on:
//
//	app := dlproxy.New(
//	    dlproxy.WithLogger("dlproxy", middlewares.RequestIDExtractor()),
//	    dlproxy.WithMiddleware(
//	        middlewares.RequestID(),
//	        middlewares.ErrorPages(pages.Page),
//	        middlewares.Recover(),
//	    ),
//	    dlproxy.WithHandlers(handlers.NewRedirectHandler(svc, homepage)),
//	    dlproxy.WithStaticDir("./assets"),
//	    dlproxy.WithTelemetry(dlproxy.WithReadinessCheck("postgres", db.Healthcheck(pool))),
//	)
//	err := app.Run(":8080", dlproxy.TelemetryAddress(":9090"))
//
// Handlers return errors. Wrap them with Unauthorized or Internal to select
// the page rendered by middlewares.ErrorPages; unwrapped errors are internal.
//
// The download pipeline lives in pkg/download, the S3 side in pkg/storage
// and the binary in cmd/dlproxy.
package dlproxy
