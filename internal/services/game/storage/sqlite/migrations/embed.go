// Package migrations embeds the save slot schema.
package migrations

import "embed"

// FS contains embedded SQLite migrations for save slots.
//
//go:embed *.sql
var FS embed.FS
