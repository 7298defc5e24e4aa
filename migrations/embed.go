// Package migrations holds the ledger schema, applied in filename order at startup.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
