// Package migrations embebe los archivos SQL versionados para goose.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
