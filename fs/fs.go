// Package appfs exposes the app's embedded static files: database migrations,
// email templates and the common-passwords list.
package appfs

import "embed"

//go:embed all:assets migrations
var FS embed.FS
