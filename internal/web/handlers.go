package web

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/txtshelf/internal/api"
	"github.com/starford/txtshelf/internal/filename"
	"github.com/starford/txtshelf/internal/models"
	"github.com/starford/txtshelf/internal/parser"
)

const maxFormBytes = 10 << 20

type detailsView struct {
	File    *models.File
	Summary *parser.Result
}

type createView struct {
	Filename string
	Content  string
	Error    string
}

type updateView struct {
	Filename    string
	NewFilename string
	Error       string
}

// Index handles GET /.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	files, err := h.svc.List(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.render(w, http.StatusOK, "index.html", "Files", files)
}

// Details handles GET /details/{name}.
func (h *Handler) Details(w http.ResponseWriter, r *http.Request) {
	f, err := h.svc.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.render(w, http.StatusOK, "details.html", f.Name, detailsView{
		File:    f,
		Summary: parser.Parse([]byte(f.Content)),
	})
}

// CreateForm handles GET /create.
func (h *Handler) CreateForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "create.html", "New file", createView{})
}

// Create handles POST /create. It accepts a form or a JSON body with
// filename and content and redirects to the index on success.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Filename string `json:"filename"`
		Content  string `json:"content"`
	}
	if !decode(w, r, &in, func() {
		in.Filename = r.PostFormValue("filename")
		in.Content = r.PostFormValue("content")
	}) {
		return
	}

	if _, err := h.svc.Create(r.Context(), in.Filename, []byte(in.Content)); err != nil {
		if !isForm(r) {
			api.WriteError(w, r, err)
			return
		}
		f := api.Report(r, err)
		h.render(w, f.Status, "create.html", "New file", createView{
			Filename: in.Filename,
			Content:  in.Content,
			Error:    f.Message,
		})
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Delete handles DELETE /delete/{name}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
		h.fail(w, r, err)
		return
	}
	h.done(w, r, "File deleted successfully")
}

// UpdateForm handles GET /update/{name}.
func (h *Handler) UpdateForm(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if _, err := h.svc.Get(r.Context(), name); err != nil {
		h.renderError(w, r, err)
		return
	}
	h.render(w, http.StatusOK, "update.html", "Rename "+name, updateView{
		Filename:    name,
		NewFilename: filename.Token(name),
	})
}

// Update handles PUT /update/{name}. The body carries newFilename, the new
// name without extension.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	var in struct {
		NewFilename string `json:"newFilename"`
	}
	if !decode(w, r, &in, func() {
		in.NewFilename = r.PostFormValue("newFilename")
	}) {
		return
	}

	if _, err := h.svc.Rename(r.Context(), name, in.NewFilename); err != nil {
		if !isForm(r) {
			api.WriteError(w, r, err)
			return
		}
		f := api.Report(r, err)
		h.render(w, f.Status, "update.html", "Rename "+name, updateView{
			Filename:    name,
			NewFilename: in.NewFilename,
			Error:       f.Message,
		})
		return
	}
	h.done(w, r, "File updated successfully")
}

// Download handles GET /download/{name}.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Open(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	api.WriteDownload(w, st)
}

// decode fills in from a JSON body, or calls fromForm for form posts. It
// writes a 400 and returns false when the body cannot be read.
func decode(w http.ResponseWriter, r *http.Request, in any, fromForm func()) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if isForm(r) {
		fromForm()
		return true
	}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(in); err != nil {
			api.WriteBadRequest(w, r, "invalid JSON body")
			return false
		}
	}
	return true
}

// done answers a successful mutation: forms go back to the index, scripted
// requests get a JSON message.
func (h *Handler) done(w http.ResponseWriter, r *http.Request, msg string) {
	if isForm(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	api.WriteJSON(w, http.StatusOK, api.MessageResponse{Message: msg})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if isForm(r) {
		h.renderError(w, r, err)
		return
	}
	api.WriteError(w, r, err)
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	f := api.Report(r, err)
	h.render(w, f.Status, "error.html", http.StatusText(f.Status), f)
}
