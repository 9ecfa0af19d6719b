// Package web provides the embedded landing page and browser game client.
package web

import (
	"embed"
	"io/fs"
)

//go:embed static
var StaticFiles embed.FS

// Static returns the static/ directory as the site root.
func Static() fs.FS {
	sub, err := fs.Sub(StaticFiles, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
