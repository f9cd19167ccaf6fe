package migrations

import "embed"

// FS contains the embedded SQLite migrations for the migration journal.
//
//go:embed *.sql
var FS embed.FS
