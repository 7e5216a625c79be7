package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/ansuz/internal/engine"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(eng *engine.Engine, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(eng)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Search.
	r.Get("/search", h.Search)

	// Notes by id prefix.
	r.Get("/notes/{prefix}", h.GetNote)
	r.Get("/resolve/{id}", h.Resolve)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
