// Package web serves the browser UI: server-rendered pages for listing,
// viewing, creating, renaming, deleting and downloading files.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"

	"github.com/go-chi/chi/v5"

	"github.com/starford/txtshelf/internal/fileservice"
)

const (
	layoutPage  = "layout.html"
	titleSuffix = " - txtshelf"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Handler renders the UI pages.
type Handler struct {
	svc           *fileservice.Service
	templateCache map[string]*template.Template
}

// NewHandler compiles every page template together with the layout.
func NewHandler(svc *fileservice.Service) (*Handler, error) {
	pages, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("web: glob templates: %w", err)
	}

	cache := make(map[string]*template.Template, len(pages))
	for _, p := range pages {
		name := path.Base(p)
		if name == layoutPage {
			continue
		}
		tmpl, err := template.New(name).ParseFS(templateFS, "templates/"+layoutPage, p)
		if err != nil {
			return nil, fmt.Errorf("web: parse %s: %w", name, err)
		}
		cache[name] = tmpl
	}
	return &Handler{svc: svc, templateCache: cache}, nil
}

// NewRouter returns the UI routes with the _method override applied.
func NewRouter(svc *fileservice.Service) (chi.Router, error) {
	h, err := NewHandler(svc)
	if err != nil {
		return nil, err
	}
	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(MethodOverride)

	r.Get("/", h.Index)
	r.Get("/details/{name}", h.Details)
	r.Get("/create", h.CreateForm)
	r.Post("/create", h.Create)
	r.Delete("/delete/{name}", h.Delete)
	r.Get("/update/{name}", h.UpdateForm)
	r.Put("/update/{name}", h.Update)
	r.Get("/download/{name}", h.Download)

	files := http.FileServer(http.FS(static))
	r.Get("/scripts.js", files.ServeHTTP)
	r.Get("/styles/*", files.ServeHTTP)

	return r, nil
}

// render executes the layout for pageName into a buffer so a template error
// never leaves a half-written page.
func (h *Handler) render(w http.ResponseWriter, status int, pageName, title string, data any) {
	tmpl, ok := h.templateCache[pageName]
	if !ok {
		slog.Error("web: template not found", slog.String("page", pageName))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	renderData := struct {
		Title string
		Data  any
	}{
		Title: title + titleSuffix,
		Data:  data,
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, layoutPage, renderData); err != nil {
		slog.Error("web: render failed", slog.String("page", pageName), slog.String("error", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("web: write failed", slog.String("error", err.Error()))
	}
}
