// Package api implements the txtshelf JSON API using chi.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/txtshelf/internal/fileservice"
)

// NewRouter creates a chi router with all API routes mounted.
// sseHandler and wsHandler, if non-nil, are mounted at GET /events and
// GET /ws.
func NewRouter(svc *fileservice.Service, sseHandler, wsHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()

	// Files CRUD.
	r.Get("/files", h.ListFiles)
	r.Post("/files", h.CreateFile)
	r.Get("/files/{name}", h.GetFile)
	r.Put("/files/{name}", h.RenameFile)
	r.Delete("/files/{name}", h.DeleteFile)
	r.Get("/files/{name}/download", h.DownloadFile)

	// Search.
	r.Get("/search", h.Search)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}
	if wsHandler != nil {
		r.Get("/ws", wsHandler.ServeHTTP)
	}

	return r
}
