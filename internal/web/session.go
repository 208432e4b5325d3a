package web

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/justestif/go-vibe-discovery/internal/session"
)

type sessionKey struct{}

// loadSession resolves {sessionID} through the registry and stores the
// session in the request context.
func (h *Handlers) loadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "sessionID")
		s, err := h.registry.Get(r.Context(), id)
		if err != nil {
			respondErr(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), sessionKey{}, s)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// sessionFrom returns the session loaded by loadSession.
func sessionFrom(r *http.Request) *session.Session {
	s, _ := r.Context().Value(sessionKey{}).(*session.Session)
	return s
}
