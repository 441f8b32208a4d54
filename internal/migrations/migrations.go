// Package migrations embeds the PostgreSQL schema for agents, sessions, and messages.
package migrations

import "embed"

// FS holds the up and down migrations in golang-migrate file naming.
//
//go:embed *.sql
var FS embed.FS
