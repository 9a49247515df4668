// Package migrations embeds the PostgreSQL schema files. Files are applied
// in lexical order and each is recorded in schema_migrations once applied.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
