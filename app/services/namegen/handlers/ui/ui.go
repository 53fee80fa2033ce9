// Package ui serves the single page viewer for the session api.
package ui

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/ardanlabs/namegen/foundation/web"
)

//go:embed assets
var assets embed.FS

// Page holds the values rendered into the index page.
type Page struct {
	Title     string
	ProgramID string
	Cluster   string
}

// Handlers manages the viewer endpoints.
type Handlers struct {
	page  Page
	index *template.Template
	files http.Handler
}

// New parses the index template and prepares the asset file server.
func New(page Page) (*Handlers, error) {
	index, err := template.ParseFS(assets, "assets/views/index.html")
	if err != nil {
		return nil, fmt.Errorf("parse index: %w", err)
	}

	sub, err := fs.Sub(assets, "assets")
	if err != nil {
		return nil, fmt.Errorf("sub assets: %w", err)
	}

	h := Handlers{
		page:  page,
		index: index,
		files: http.StripPrefix("/assets/", http.FileServer(http.FS(sub))),
	}

	return &h, nil
}

// Index renders the viewer page.
func (h *Handlers) Index(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if err := web.SetStatusCode(ctx, http.StatusOK); err != nil {
		return err
	}

	if err := h.index.Execute(w, h.page); err != nil {
		return fmt.Errorf("render index: %w", err)
	}

	return nil
}

// Assets serves the static files of the viewer.
func (h *Handlers) Assets(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	h.files.ServeHTTP(w, r)
	return nil
}
