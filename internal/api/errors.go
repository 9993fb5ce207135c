package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/starford/txtshelf/internal/accesslog"
	"github.com/starford/txtshelf/internal/apperr"
	"github.com/starford/txtshelf/internal/filename"
)

// Failure is the client-facing view of an error.
type Failure struct {
	Status  int
	Type    string
	Message string
}

// errorMap is the single mapping from error kinds to HTTP outcomes. It is
// shared by every route so a kind always yields the same status.
var errorMap = []struct {
	kind    error
	status  int
	errType string
	message string
}{
	{apperr.ErrInvalidName, http.StatusBadRequest, "Invalid Filename Error", "invalid filename"},
	{apperr.ErrAlreadyExists, http.StatusBadRequest, "File Exists Error", "a file with the same name already exists"},
	{apperr.ErrNotFound, http.StatusNotFound, "File Not Found Error", "file not found"},
	{apperr.ErrAccessDenied, http.StatusForbidden, "Permission Denied Error", "permission denied"},
}

// Describe maps err onto its Failure. Unknown errors become a 500 whose
// message does not leak the cause.
func Describe(err error) Failure {
	var ve *filename.ValidationError
	if errors.As(err, &ve) {
		return Failure{Status: http.StatusBadRequest, Type: "Invalid Filename Error", Message: ve.Msg}
	}
	for _, e := range errorMap {
		if errors.Is(err, e.kind) {
			return Failure{Status: e.status, Type: e.errType, Message: e.message}
		}
	}
	return Failure{Status: http.StatusInternalServerError, Type: "Internal Server Error", Message: "internal error"}
}

// Report records err on the access log line and logs server-side failures.
// It returns the Failure so callers can render it in their own format.
func Report(r *http.Request, err error) Failure {
	f := Describe(err)
	accesslog.Annotate(r, f.Type, f.Message, err)
	if f.Status >= http.StatusInternalServerError {
		slog.Error("request failed",
			slog.String("method", r.Method),
			slog.String("url", r.URL.RequestURI()),
			slog.String("error", err.Error()))
	}
	return f
}

// WriteError reports err and writes it as a JSON error body.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	f := Report(r, err)
	writeJSON(w, f.Status, errorBody(f.Message))
}

// WriteBadRequest rejects a malformed request before it reaches the service.
func WriteBadRequest(w http.ResponseWriter, r *http.Request, msg string) {
	accesslog.Annotate(r, "Bad Request Error", msg, nil)
	writeJSON(w, http.StatusBadRequest, errorBody(msg))
}
