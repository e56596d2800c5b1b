package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/sniperrun/internal/store"
)

const maxListLimit = 100

type ScoreboardResponse struct {
	Wins map[string]int64 `json:"wins"`
}

func handleListMatches(logger *slog.Logger, results ResultStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 20
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				writeError(w, http.StatusBadRequest, "limit must be a positive integer")
				return
			}
			limit = min(n, maxListLimit)
		}

		list, err := results.ListResults(r.Context(), limit)
		if err != nil {
			logger.Error("listing matches", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func handleGetMatch(logger *slog.Logger, results ResultStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := results.GetResult(r.Context(), chi.URLParam(r, "id"))
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "match not found")
			return
		}
		if err != nil {
			logger.Error("getting match", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func handleScoreboard(logger *slog.Logger, scores ScoreSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wins, err := scores.Counts(r.Context())
		if err != nil {
			logger.Error("reading scoreboard", "error", err)
			writeError(w, http.StatusServiceUnavailable, "scoreboard unavailable")
			return
		}
		writeJSON(w, http.StatusOK, ScoreboardResponse{Wins: wins})
	}
}

func handleRoomScoreboard(logger *slog.Logger, scores ScoreSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := roomFrom(r).Code
		wins, err := scores.RoomCounts(r.Context(), code)
		if err != nil {
			logger.Error("reading room scoreboard", "room", code, "error", err)
			writeError(w, http.StatusServiceUnavailable, "scoreboard unavailable")
			return
		}
		writeJSON(w, http.StatusOK, ScoreboardResponse{Wins: wins})
	}
}
