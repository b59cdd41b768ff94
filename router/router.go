// Package router provides the outer net/http-facing entry point for a
// fsroute server. It wraps chi purely as a catch-all mux — chi's own
// route matching and MethodNotAllowed handling are bypassed entirely
// in favor of the fsroute Matcher's specificity rules (§4.4), which
// chi has no equivalent of.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Router mounts a single fsroute http.Handler behind chi's wildcard
// routing, grounded on the teacher's PathValue-bridge router but
// adapted so chi never makes a matching decision of its own.
type Router struct {
	mux chi.Router
}

// New creates a Router that forwards every request to handler.
// handler is expected to be a *server.Server (or anything satisfying
// http.Handler) doing fsroute's own matching, middleware, and error
// rendering.
func New(handler http.Handler) *Router {
	mux := chi.NewRouter()
	mux.Handle("/*", handler)
	return &Router{mux: mux}
}

// Mount attaches an additional http.Handler (e.g. a static file server,
// a pprof endpoint) at prefix, ahead of the catch-all fsroute mount.
func (r *Router) Mount(prefix string, handler http.Handler) {
	r.mux.Mount(prefix, handler)
}

// ServeHTTP implements http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}
