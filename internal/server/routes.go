package server

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"
)

func addRoutes(r chi.Router, logger *slog.Logger, deps Deps) {
	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("Sniper Run API", "/openapi.json", "/docs"))

	r.Route("/api/rooms", func(r chi.Router) {
		r.Post("/", handleCreateRoom(logger, deps.Rooms))
		r.Get("/", handleListRooms(deps.Rooms))

		// {code} resolved by roomMiddleware.
		r.Route("/{code}", func(r chi.Router) {
			r.Use(roomMiddleware(deps.Rooms))
			r.Get("/", handleRoomState())
			r.Post("/close", handleCloseRoom(logger, deps.Rooms))
			r.Get("/events", handleEvents(deps.Events))
			r.Get("/play", handlePlay(logger))
			r.Get("/scoreboard", handleRoomScoreboard(logger, deps.Scores))
		})
	})

	r.Get("/api/matches", handleListMatches(logger, deps.Results))
	r.Get("/api/matches/{id}", handleGetMatch(logger, deps.Results))
	r.Get("/api/scoreboard", handleScoreboard(logger, deps.Scores))
}
