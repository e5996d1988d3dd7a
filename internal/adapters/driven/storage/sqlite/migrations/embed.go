// Package migrations embeds the SQL schema for the SQLite vector store.
package migrations

import "embed"

// FS contains the versioned migration files.
//
//go:embed *.sql
var FS embed.FS
