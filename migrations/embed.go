// Package migrations embebe el esquema SQL para aplicarlo al arrancar (postgres.Migrate).
package migrations

import "embed"

// FS contiene los scripts *.sql en orden lexicográfico de aplicación.
//
//go:embed *.sql
var FS embed.FS
