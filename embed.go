// Package addressbook provides embedded runtime resources.
package addressbook

import (
	"embed"
	"io/fs"
)

//go:embed templates/config.yaml
var rawTemplates embed.FS

// Templates is the embedded templates filesystem with the "templates/" prefix stripped.
var Templates = mustSub(rawTemplates, "templates")

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

// ExampleConfig returns the annotated example configuration file.
func ExampleConfig() []byte {
	data, err := fs.ReadFile(Templates, "config.yaml")
	if err != nil {
		panic(err)
	}
	return data
}
