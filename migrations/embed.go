// Package migrations embeds the dev server's SQL migrations.
package migrations

import "embed"

// FS holds the goose migration files.
//
//go:embed *.sql
var FS embed.FS
