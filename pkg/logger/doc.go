// Package logger provides structured logging with context extraction,
// attribute redaction and optional Sentry integration.
//
// Loggers are plain *slog.Logger values. A decorator injects request-scoped
// attributes (such as the request ID) from the context on every call, and the
// handlers replace the values of sensitive keys like "secret" with [Redacted]
// so download secrets never reach a log sink.
//
// # Basic Usage
//
//	log := logger.NewWithConfig(os.Stdout, logger.Config{Level: "debug", Format: "text"},
//		middlewares.RequestIDExtractor(),
//	)
//	log.InfoContext(ctx, "resolved", slog.String("secret", s)) // secret=[REDACTED]
//
// # Sentry
//
// NewWithSentry fans records out to the local handler and to Sentry.
// Errors become Sentry issues; warnings are kept as logs. With an empty DSN
// it behaves like NewWithConfig.
//
//	log := logger.NewWithSentry(os.Stdout, cfg.Log, cfg.Sentry, extractors...)
//	defer logger.FlushSentry()(context.Background())
//
// NewNope returns a logger that discards everything, used as a default.
package logger
