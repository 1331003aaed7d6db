package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/memos/internal/memoservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *memoservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Memos.
	r.Get("/memos", h.ListMemos)
	r.Post("/memos", h.CreateMemo)
	r.Get("/memos/by-date", h.MemosByDate)
	r.Put("/memos/{id}", h.UpdateMemo)
	r.Delete("/memos/{id}", h.DeleteMemo)

	// Tags and classification.
	r.Get("/tags", h.Tags)
	r.Get("/quick-tags", h.QuickTags)
	r.Post("/classify", h.Classify)

	r.Get("/stats", h.Stats)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
