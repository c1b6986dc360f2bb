package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Shutdown returns a function that closes the database connection pool.
// Use with dlproxy.ShutdownHook so the pool outlives in-flight requests.
//
// Example:
//
//	app.Run(addr, dlproxy.ShutdownHook(db.Shutdown(pool)))
func Shutdown(pool *pgxpool.Pool) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		pool.Close()
		return nil
	}
}
