// Package migrations holds the embedded goose migrations for the SQLite
// question store. They are applied at store initialization and by cmd/migrate.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
