package db

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// goose keeps its settings in package globals.
var gooseMu sync.Mutex

// Migrate applies all pending migrations from fsys (SQL files at its root).
func Migrate(ctx context.Context, pool *pgxpool.Pool, fsys fs.FS, migrationTable string, log *slog.Logger) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	// Bridge pgx connection pool to the database/sql interface required by goose.
	// The wrapper shares pool connections, so it is not closed here.
	db := stdlib.OpenDBFromPool(pool)

	goose.SetBaseFS(fsys)
	defer goose.SetBaseFS(nil)
	goose.SetLogger(&gooseLoggerAdapter{log: log})
	if migrationTable != "" {
		goose.SetTableName(migrationTable)
	}

	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Join(ErrSetDialect, err)
	}

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return errors.Join(ErrApplyMigrations, err)
	}

	version, err := goose.GetDBVersionContext(ctx, db)
	if err == nil {
		log.InfoContext(ctx, "database migrated", slog.Int64("version", version))
	}
	return nil
}

type gooseLoggerAdapter struct {
	log *slog.Logger
}

func (g *gooseLoggerAdapter) Printf(format string, args ...any) {
	g.log.Info(fmt.Sprintf(format, args...), slog.String("component", "goose"))
}

func (g *gooseLoggerAdapter) Fatalf(format string, args ...any) {
	// goose returns an error after calling Fatalf; exiting here would skip shutdown.
	g.log.Error(fmt.Sprintf(format, args...), slog.String("component", "goose"))
}
