// Package migrations embeds the SQL schema for the analytics database.
package migrations

import "embed"

// FS holds the versioned up/down migration files.
//
//go:embed *.sql
var FS embed.FS
