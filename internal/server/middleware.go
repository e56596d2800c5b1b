package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/sniperrun/internal/room"
)

type ctxKey int

const ctxKeyRoom ctxKey = iota

func roomMiddleware(rooms *room.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			code := chi.URLParam(r, "code")
			if code == "" {
				writeError(w, http.StatusNotFound, "room not found")
				return
			}

			rm, err := rooms.Get(code)
			if err != nil {
				writeError(w, http.StatusNotFound, "room not found")
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyRoom, rm)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func roomFrom(r *http.Request) *room.Room {
	return r.Context().Value(ctxKeyRoom).(*room.Room)
}
