// Package db provides PostgreSQL connection pooling and migrations.
//
// It wraps [github.com/jackc/pgx/v5/pgxpool] with retrying startup,
// a readiness check and [github.com/pressly/goose/v3] migrations.
//
// # Configuration
//
// All settings are loaded from environment variables:
//
//	DATABASE_URL                - PostgreSQL connection URL (required)
//	DATABASE_MAX_CONNS          - Maximum open connections (default: 10)
//	DATABASE_MIN_CONNS          - Minimum idle connections (default: 2)
//	DATABASE_HEALTHCHECK_PERIOD - Health check interval (default: 1m)
//	DATABASE_MAX_CONN_IDLE_TIME - Maximum connection idle time (default: 10m)
//	DATABASE_MAX_CONN_LIFETIME  - Maximum connection lifetime (default: 30m)
//	DATABASE_RETRY_ATTEMPTS     - Connection retry attempts (default: 3)
//	DATABASE_RETRY_INTERVAL     - Base retry interval (default: 5s)
//	DATABASE_MIGRATIONS_TABLE   - Migrations table name (default: schema_migrations)
//	DATABASE_AUTO_MIGRATE       - Apply migrations at startup (default: false)
//
// # Usage
//
//	pool, err := db.Connect(ctx, cfg.DB)
//	if err != nil {
//		return err
//	}
//	if cfg.DB.AutoMigrate {
//		if err := db.Migrate(ctx, pool, migrations.FS, cfg.DB.MigrationsTable, log); err != nil {
//			return err
//		}
//	}
//
// [Healthcheck] returns a closure for readiness probes and [Shutdown] a hook
// that closes the pool after the HTTP server drained.
//
// # Errors
//
//   - [ErrFailedToParseDBConfig] - Invalid connection URL
//   - [ErrFailedToOpenDBConnection] - Connection or ping failed after all retries
//   - [ErrHealthcheckFailed] - Database ping failed
//   - [ErrSetDialect], [ErrApplyMigrations] - Migration failures
package db
