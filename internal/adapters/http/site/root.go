// Package site serves the embedded dashboard: a single page that
// queries the JSON API and renders rating history charts.
package site

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Register attaches the dashboard routes to the router. The page is
// served at / with its assets alongside.
func Register(_ context.Context, r chi.Router) {
	if r == nil {
		panic("router is nil")
	}

	files := http.FileServer(FS())
	r.Handle("/", files)
	r.Handle("/app.js", files)
	r.Handle("/style.css", files)
}
