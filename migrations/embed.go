// Package migrations — SQL-схема Postgres (goose), встроенная в бинарь.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
