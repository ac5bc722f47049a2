// Package web embeds the browser UI.
package web

import (
	"embed"
	"io/fs"
)

//go:embed static
var content embed.FS

// StaticFS returns the static file system rooted at static/.
func StaticFS() fs.FS {
	sub, err := fs.Sub(content, "static")
	if err != nil {
		// static is embedded above; Sub only fails on an invalid path.
		panic(err)
	}
	return sub
}
