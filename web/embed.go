// Package web bundles the schedule screen served at /.
package web

import "embed"

//go:embed index.html
var FS embed.FS
