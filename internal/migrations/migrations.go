// Package migrations embeds the goose migrations for the SQL storage
// drivers. Each dialect has its own directory because column types differ.
package migrations

import "embed"

//go:embed sqlite/*.sql postgres/*.sql
var Migrations embed.FS
