// Command dlproxy serves secret download links as redirects to presigned S3 URLs.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/dlproxy"
	"github.com/dmitrymomot/dlproxy/handlers"
	"github.com/dmitrymomot/dlproxy/middlewares"
	"github.com/dmitrymomot/dlproxy/migrations"
	"github.com/dmitrymomot/dlproxy/pkg/db"
	"github.com/dmitrymomot/dlproxy/pkg/download"
	"github.com/dmitrymomot/dlproxy/pkg/health"
	"github.com/dmitrymomot/dlproxy/pkg/logger"
	"github.com/dmitrymomot/dlproxy/pkg/storage"
	"github.com/dmitrymomot/dlproxy/views"
)

func main() {
	check := flag.Bool("check", false, "validate configuration and exit")
	flag.Parse()

	cfg, err := loadConfig(nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if *check {
		fmt.Fprintln(os.Stdout, "configuration ok")
		return
	}

	log := logger.NewWithSentry(os.Stdout, cfg.Log, cfg.Sentry, middlewares.RequestIDExtractor())
	if err := run(context.Background(), cfg, log); err != nil {
		log.Error("application error", slog.Any("error", err))
		_ = logger.FlushSentry()(context.Background())
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg Config, log *slog.Logger) error {
	pool, err := db.Connect(ctx, cfg.DB)
	if err != nil {
		return err
	}

	if cfg.DB.AutoMigrate {
		if err := db.Migrate(ctx, pool, migrations.FS, cfg.DB.MigrationsTable, log); err != nil {
			pool.Close()
			return err
		}
	}

	checks := health.Checks{"postgres": db.Healthcheck(pool)}
	if err := health.Run(ctx, checks, health.WithTimeout(5*time.Second), health.WithLogger(log)); err != nil {
		pool.Close()
		return err
	}

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		pool.Close()
		return err
	}

	repo := download.NewRepository(pool)
	svc, err := download.NewService(repo, repo, download.StoreClients(store), download.Config{
		PresignTTL:   cfg.PresignedTTL.Duration(),
		ProbeTimeout: cfg.ProbeTimeout,
	})
	if err != nil {
		pool.Close()
		return err
	}

	pages, err := views.New(cfg.TemplatesDir)
	if err != nil {
		pool.Close()
		return err
	}

	var httpMiddlewares []func(http.Handler) http.Handler
	if cfg.TrustProxyHeaders {
		httpMiddlewares = append(httpMiddlewares, middleware.RealIP)
	}
	httpMiddlewares = append(httpMiddlewares,
		middlewares.Metrics(),
		middlewares.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	var errorPageOpts []middlewares.ErrorPagesOption
	if cfg.TrustProxyHeaders {
		errorPageOpts = append(errorPageOpts, middlewares.WithForwardedProto())
	}

	app := dlproxy.New(
		dlproxy.WithCustomLogger(log.With("component", "dlproxy")),
		dlproxy.WithHTTPMiddleware(httpMiddlewares...),
		dlproxy.WithMiddleware(
			middlewares.RequestID(),
			middlewares.ErrorPages(pages.Page, errorPageOpts...),
			middlewares.Recover(),
			middlewares.Timeout(cfg.RequestTimeout),
		),
		dlproxy.WithHandlers(handlers.NewRedirectHandler(svc, cfg.RedirectHomepage)),
		dlproxy.WithStaticDir(cfg.StaticDir),
		dlproxy.WithTelemetry(dlproxy.WithReadinessCheck("postgres", db.Healthcheck(pool))),
	)

	log.Info("starting dlproxy",
		slog.String("address", cfg.HTTPAddress),
		slog.String("telemetry_address", cfg.TelemetryAddress),
		slog.Duration("presigned_ttl", cfg.PresignedTTL.Duration()),
		slog.Bool("auto_migrate", cfg.DB.AutoMigrate),
	)

	return app.Run(cfg.HTTPAddress,
		dlproxy.Logger(log),
		dlproxy.WithContext(ctx),
		dlproxy.TelemetryAddress(cfg.TelemetryAddress),
		dlproxy.ShutdownTimeout(cfg.ShutdownTimeout),
		dlproxy.ShutdownHook(db.Shutdown(pool)),
		dlproxy.ShutdownHook(logger.FlushSentry()),
	)
}
