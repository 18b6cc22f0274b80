// Package site renders the HTML dashboard and serves its stylesheet.
package site

import (
	"context"
	"errors"
	"net/http"
)

// Error constants
var (
	ErrTemplate = errors.New("dashboard template parse failed")
	ErrRender   = errors.New("dashboard render failed")
)

// Register attaches the embedded stylesheet routes to mux under /static/.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(FS())))
}
