package api

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/starford/txtshelf/internal/storage"
)

// WriteDownload streams st to w as an attachment. st is always closed.
func WriteDownload(w http.ResponseWriter, st *storage.Stream) {
	defer st.Close()

	h := w.Header()
	h.Set("Content-Type", "text/plain; charset=utf-8")
	h.Set("Content-Disposition", `attachment; filename="`+st.Name+`"`)
	h.Set("Content-Length", strconv.FormatInt(st.Size, 10))
	h.Set("Last-Modified", lastModified(st.ModTime))
	w.WriteHeader(http.StatusOK)

	// Headers are gone by now, so a failed copy can only be logged.
	if _, err := io.Copy(w, st); err != nil {
		slog.Warn("download interrupted", slog.String("name", st.Name), slog.String("error", err.Error()))
	}
}

// lastModified formats t for the Last-Modified header.
func lastModified(t time.Time) string {
	return t.UTC().Format(http.TimeFormat)
}
