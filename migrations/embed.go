// Package migrations embebe los archivos SQL de cada dialecto.
// Formato de archivo: {version}_{name}.sql (ej: 0001_init.sql).
package migrations

import "embed"

//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS
