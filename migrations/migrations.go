// Package migrations embeds the PostgreSQL schema used by the download proxy.
package migrations

import "embed"

// FS holds the goose SQL migrations at its root.
//
//go:embed *.sql
var FS embed.FS
