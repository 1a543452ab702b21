package migrations

import "embed"

// Files contains SQL migrations embedded into the binary.
//
// Migrations use a flat naming convention (e.g., 001_init.sql) and are
// applied in lexical order by the runner in the store package.
//
//go:embed *.sql
var Files embed.FS
