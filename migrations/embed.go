// Package migrations embeds the document table schema applied by the
// postgres docstore backend at startup.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
