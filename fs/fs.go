package appfs

import "embed"

// FS holds the application's non-code assets: SQL migrations and mail templates.
//go:embed migrations templates
var FS embed.FS
