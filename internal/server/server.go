// Package server exposes the session API over HTTP and serves the static
// frontend shell. All session state lives in the session store; handlers
// only translate between HTTP and the session controller.
package server

import (
	"embed"
	"io/fs"
	"net/http"
	"strings"

	"narasi-web/internal/session"
)

//go:embed all:static
var staticFS embed.FS

// Server wires the session store to the HTTP routes.
type Server struct {
	sessions *session.Store
}

// New creates a server backed by the given session store.
func New(sessions *session.Store) *Server {
	return &Server{sessions: sessions}
}

// Handler builds the full route table wrapped in logging and CORS
// middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/healthz", s.handleHealthz)
	mux.HandleFunc("POST /api/session", s.handleCreateSession)
	mux.HandleFunc("GET /api/session/{id}", s.handleGetSession)
	mux.HandleFunc("POST /api/session/{id}/goal", s.handleSelectGoal)
	mux.HandleFunc("POST /api/session/{id}/mode", s.handleSelectMode)
	mux.HandleFunc("POST /api/session/{id}/generate", s.handleGenerate)
	mux.HandleFunc("POST /api/session/{id}/revise", s.handleRevise)
	mux.HandleFunc("POST /api/session/{id}/reset", s.handleReset)

	// Frontend static files (SPA fallback)
	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	fileServer := http.FileServer(http.FS(staticSub))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		// Security headers
		w.Header().Set("Content-Security-Policy", "default-src 'self'; img-src 'self' blob: data:; style-src 'self' 'unsafe-inline'; connect-src 'self'")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		// SPA fallback: if the file doesn't exist, serve index.html
		path := r.URL.Path
		if path != "/" {
			f, err := staticSub.Open(strings.TrimPrefix(path, "/"))
			if err != nil {
				r.URL.Path = "/"
			} else {
				f.Close()
			}
		}
		fileServer.ServeHTTP(w, r)
	})

	return withLogging(withCORS(mux))
}
