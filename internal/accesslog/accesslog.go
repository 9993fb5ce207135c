// Package accesslog writes one structured line per HTTP request with the
// response status and, when a handler reported one, the error behind it.
package accesslog

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

const none = "None"

type recordKey struct{}

// record is filled in by handlers through Annotate while the request runs.
type record struct {
	method      string
	errType     string
	description string
	fullError   string
}

// Open returns a JSON logger appending to path, or writing to stdout when
// path is empty. The returned closer must be called on shutdown.
func Open(path string) (*slog.Logger, io.Closer, error) {
	if path == "" {
		return slog.New(slog.NewJSONHandler(os.Stdout, nil)), io.NopCloser(nil), nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return slog.New(slog.NewJSONHandler(f, nil)), f, nil
}

// Middleware logs every request to logger after the handler returns.
func Middleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &record{method: r.Method}
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r.WithContext(context.WithValue(r.Context(), recordKey{}, rec)))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			attrs := []slog.Attr{
				slog.Int("status", status),
				slog.String("method", rec.method),
				slog.String("url", r.URL.RequestURI()),
				slog.String("error_type", orNone(rec.errType)),
				slog.String("error_description", orNone(rec.description)),
				slog.Duration("duration", time.Since(start)),
			}
			if rec.fullError != "" {
				attrs = append(attrs, slog.String("full_error", rec.fullError))
			}
			logger.LogAttrs(r.Context(), slog.LevelInfo, "request", attrs...)
		})
	}
}

// Annotate attaches error details to the access log line of r. It is a
// no-op outside Middleware.
func Annotate(r *http.Request, errType, description string, err error) {
	rec, ok := r.Context().Value(recordKey{}).(*record)
	if !ok {
		return
	}
	rec.errType = errType
	rec.description = description
	if err != nil {
		rec.fullError = err.Error()
	}
}

// SetMethod records the method a request was dispatched as when a handler
// rewrites it, such as a form POST overridden to DELETE.
func SetMethod(r *http.Request, method string) {
	if rec, ok := r.Context().Value(recordKey{}).(*record); ok {
		rec.method = method
	}
}

func orNone(s string) string {
	if s == "" {
		return none
	}
	return s
}
