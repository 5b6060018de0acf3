// Package web embeds the HTML templates and static assets served by the app.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var funcs = template.FuncMap{
	"minutes": func(v float64) string { return fmt.Sprintf("%.2f", v) },
	"date":    func(t time.Time) string { return t.Format("2006-01-02 15:04") },
}

// Templates parses every page. Pages are addressed by file name, e.g. "login.html".
func Templates() (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
}

// Static is the asset tree rooted at static/.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
