package web

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/txtshelf/internal/accesslog"
)

const methodField = "_method"

var overridable = map[string]bool{
	http.MethodPut:    true,
	http.MethodPatch:  true,
	http.MethodDelete: true,
}

// MethodOverride lets HTML forms, which can only POST, reach PUT and DELETE
// routes. The method is taken from the _method query parameter or form
// field. Only POST requests are rewritten.
func MethodOverride(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			m := r.URL.Query().Get(methodField)
			if m == "" && isForm(r) {
				m = r.PostFormValue(methodField)
			}
			m = strings.ToUpper(m)
			if overridable[m] {
				r.Method = m
				accesslog.SetMethod(r, m)
				// chi fixes the routing method once a parent router has
				// matched a mount, so it has to be updated as well.
				if rctx := chi.RouteContext(r.Context()); rctx != nil {
					rctx.RouteMethod = m
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}

// isForm reports whether r carries an HTML form body.
func isForm(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return strings.HasPrefix(ct, "application/x-www-form-urlencoded") ||
		strings.HasPrefix(ct, "multipart/form-data")
}
