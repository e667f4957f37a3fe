// Package web carries static assets compiled into the binary.
package web

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Templates returns the embedded default section templates, rooted so that
// template names resolve directly to <name>.html.
func Templates() fs.FS {
	sub, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}
