// Package migrations embeds the notification journal schema for each
// supported database.
package migrations

import "embed"

//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS
