package testutil

import (
	"html/template"
	"io/fs"
	"net/http"
	"testing"

	"github.com/dalemusser/hydrotrim/internal/app/resources"
)

// ParseTemplates parses the shared layout plus every templates/*.gohtml
// in the given feature filesystems.
func ParseTemplates(t *testing.T, features ...fs.FS) *template.Template {
	t.Helper()

	tmpl, err := template.New("root").ParseFS(resources.FS, "templates/*.gohtml")
	if err != nil {
		t.Fatalf("parse shared templates: %v", err)
	}
	for _, fsys := range features {
		if tmpl, err = tmpl.ParseFS(fsys, "templates/*.gohtml"); err != nil {
			t.Fatalf("parse feature templates: %v", err)
		}
	}
	return tmpl
}

// Renderer returns a render function backed by html/template, standing in
// for the template engine in handler tests. Execution errors fail the test.
func Renderer(t *testing.T, features ...fs.FS) func(w http.ResponseWriter, r *http.Request, name string, data any) {
	t.Helper()
	tmpl := ParseTemplates(t, features...)
	return func(w http.ResponseWriter, r *http.Request, name string, data any) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := tmpl.ExecuteTemplate(w, name, data); err != nil {
			t.Errorf("render %s: %v", name, err)
		}
	}
}
