// cmd/api/templates.go
// Server-side HTML rendering for the web and admin surfaces.
package main

import (
	"bytes"
	"html/template"
	"net/http"
	"path/filepath"
)

// render writes the given page wrapped in the site layout. The page template
// is executed into a buffer first, so a template error can still produce a
// clean 500 instead of a half-written response.
func (app *applicationDependencies) render(w http.ResponseWriter, r *http.Request, status int, page string, data any) {
	tmpl, err := template.ParseFiles(
		filepath.Join("templates", "layout.html"),
		filepath.Join("templates", page),
	)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	buf := new(bytes.Buffer)
	err = tmpl.ExecuteTemplate(buf, "layout", data)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
