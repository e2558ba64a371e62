// Package migrations embeds the goose SQL migrations for the caption run
// store.
package migrations

import "embed"

// FS holds the *.sql migration files.
//
//go:embed *.sql
var FS embed.FS
