// Package migrations embeds the PostgreSQL schema of the catalog store.
package migrations

import "embed"

// FS holds the *.up.sql files applied by database.RunMigrations.
//
//go:embed *.sql
var FS embed.FS
