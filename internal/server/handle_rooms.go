package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/playperu/sniperrun/internal/room"
)

type CreateRoomResponse struct {
	Code    string `json:"code"`
	HostKey string `json:"hostKey"`
}

type CloseRoomRequest struct {
	HostKey string `json:"hostKey"`
}

func handleCreateRoom(logger *slog.Logger, rooms *room.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code, key, err := rooms.CreateRoom()
		if errors.Is(err, room.ErrTooManyRooms) {
			writeError(w, http.StatusServiceUnavailable, "too many rooms")
			return
		}
		if err != nil {
			logger.Error("creating room", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		logger.Info("room created", "room", code)
		writeJSON(w, http.StatusCreated, CreateRoomResponse{Code: code, HostKey: key})
	}
}

func handleListRooms(rooms *room.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, rooms.List())
	}
}

func handleRoomState() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := roomFrom(r).State()
		if err != nil {
			writeError(w, http.StatusNotFound, "room closed")
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}

func handleCloseRoom(logger *slog.Logger, rooms *room.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CloseRoomRequest
		if err := readJSON(w, r, &req); err != nil || req.HostKey == "" {
			writeError(w, http.StatusBadRequest, "hostKey is required")
			return
		}

		code := roomFrom(r).Code
		err := rooms.Close(code, req.HostKey)
		switch {
		case errors.Is(err, room.ErrBadHostKey):
			writeError(w, http.StatusForbidden, "bad host key")
			return
		case errors.Is(err, room.ErrRoomNotFound):
			writeError(w, http.StatusNotFound, "room not found")
			return
		case err != nil:
			logger.Error("closing room", "room", code, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		logger.Info("room closed by host", "room", code)
		w.WriteHeader(http.StatusNoContent)
	}
}
