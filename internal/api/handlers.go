package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/txtshelf/internal/checksum"
	"github.com/starford/txtshelf/internal/fileservice"
)

const maxBodyBytes = 10 << 20

// Handler holds API route handlers.
type Handler struct {
	svc *fileservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *fileservice.Service) *Handler {
	return &Handler{svc: svc}
}

// ListFiles handles GET /api/files.
//
//	@Summary		List stored files
//	@Tags			files
//	@Produce		json
//	@Success		200	{object}	FileListResponse
//	@Router			/files [get]
func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	files, err := h.svc.List(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, FileListResponse{Files: files, Total: len(files)})
}

// GetFile handles GET /api/files/{name}.
//
//	@Summary		Get a file with its content
//	@Tags			files
//	@Produce		json
//	@Param			name	path		string	true	"Filename including .txt"
//	@Success		200		{object}	FileResponse
//	@Success		304		"Not modified"
//	@Failure		404		{object}	errResponse
//	@Router			/files/{name} [get]
func (h *Handler) GetFile(w http.ResponseWriter, r *http.Request) {
	f, err := h.svc.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	etag := checksum.ETag(f.Checksum)
	w.Header().Set("ETag", etag)
	w.Header().Set("Last-Modified", lastModified(f.UpdatedAt))
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// CreateFile handles POST /api/files.
//
//	@Summary		Create a new file
//	@Tags			files
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateFileRequest	true	"File to create"
//	@Success		201		{object}	models.FileInfo
//	@Failure		400		{object}	errResponse
//	@Router			/files [post]
func (h *Handler) CreateFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req CreateFileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, r, "invalid JSON body")
		return
	}
	info, err := h.svc.Create(r.Context(), req.Filename, []byte(req.Content))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/files/"+info.Name)
	writeJSON(w, http.StatusCreated, info)
}

// RenameFile handles PUT /api/files/{name}.
//
//	@Summary		Rename a file
//	@Tags			files
//	@Accept			json
//	@Produce		json
//	@Param			name	path		string				true	"Current filename including .txt"
//	@Param			body	body		RenameFileRequest	true	"New name without extension"
//	@Success		200		{object}	models.FileInfo
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Router			/files/{name} [put]
func (h *Handler) RenameFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req RenameFileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, r, "invalid JSON body")
		return
	}
	info, err := h.svc.Rename(r.Context(), chi.URLParam(r, "name"), req.NewFilename)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// DeleteFile handles DELETE /api/files/{name}.
//
//	@Summary		Delete a file
//	@Tags			files
//	@Param			name	path	string	true	"Filename including .txt"
//	@Success		204		"File deleted"
//	@Failure		404		{object}	errResponse
//	@Router			/files/{name} [delete]
func (h *Handler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
		WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DownloadFile handles GET /api/files/{name}/download.
//
//	@Summary		Download a file as an attachment
//	@Tags			files
//	@Produce		plain
//	@Param			name	path	string	true	"Filename including .txt"
//	@Success		200		"File content"
//	@Failure		404		{object}	errResponse
//	@Router			/files/{name}/download [get]
func (h *Handler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Open(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteDownload(w, st)
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across files
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		WriteBadRequest(w, r, "query parameter 'q' is required")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	hits, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	results := make([]SearchResult, len(hits))
	for i, hit := range hits {
		results[i] = SearchResult{Name: hit.Name, Title: hit.Title, Snippet: hit.Snippet}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}
