package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/playperu/sniperrun/internal/protocol"
	"github.com/playperu/sniperrun/internal/room"
	"github.com/playperu/sniperrun/internal/store"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse maps each dependency to its check result.
type HealthResponse map[string]struct {
	Status    string `json:"status" enum:"ok,degraded,error"`
	LatencyMS int64  `json:"latency_ms"`
}

type roomPath struct {
	Code string `path:"code" description:"Six character room code."`
}

type matchPath struct {
	ID string `path:"id"`
}

type listMatchesQuery struct {
	Limit int `query:"limit" minimum:"1" maximum:"100" default:"20"`
}

type closeRoomRequest struct {
	roomPath
	CloseRoomRequest
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Sniper Run API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Match server for the sniper-vs-runners party game.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of backend dependencies. Redis is optional and reports degraded.")
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// GET /metrics
	getMetrics, _ := r.NewOperationContext(http.MethodGet, "/metrics")
	getMetrics.SetSummary("Prometheus metrics")
	getMetrics.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/plain"))
	_ = r.AddOperation(getMetrics)

	// POST /api/rooms
	createRoom, _ := r.NewOperationContext(http.MethodPost, "/api/rooms")
	createRoom.SetSummary("Create room")
	createRoom.SetDescription("Starts a room on the title scene. The host key is shown once and is needed to close the room.")
	createRoom.AddRespStructure(CreateRoomResponse{}, openapi.WithHTTPStatus(http.StatusCreated))
	createRoom.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(createRoom)

	// GET /api/rooms
	listRooms, _ := r.NewOperationContext(http.MethodGet, "/api/rooms")
	listRooms.SetSummary("List rooms")
	listRooms.AddRespStructure([]room.Info{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(listRooms)

	// GET /api/rooms/{code}
	getRoom, _ := r.NewOperationContext(http.MethodGet, "/api/rooms/{code}")
	getRoom.SetSummary("Room state")
	getRoom.SetDescription("Returns the same snapshot that is streamed to players.")
	getRoom.AddReqStructure(roomPath{})
	getRoom.AddRespStructure(protocol.State{}, openapi.WithHTTPStatus(http.StatusOK))
	getRoom.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getRoom)

	// POST /api/rooms/{code}/close
	closeRoom, _ := r.NewOperationContext(http.MethodPost, "/api/rooms/{code}/close")
	closeRoom.SetSummary("Close room")
	closeRoom.SetDescription("Stops the room and disconnects its clients. Requires the host key.")
	closeRoom.AddReqStructure(closeRoomRequest{})
	closeRoom.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusNoContent))
	closeRoom.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	closeRoom.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusForbidden))
	closeRoom.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(closeRoom)

	// GET /api/rooms/{code}/events
	getEvents, _ := r.NewOperationContext(http.MethodGet, "/api/rooms/{code}/events")
	getEvents.SetSummary("SSE event stream")
	getEvents.SetDescription("Server-Sent Events for joins, deaths, revivals, join lock, scene loads, outcomes and sound effects.")
	getEvents.AddReqStructure(roomPath{})
	getEvents.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	_ = r.AddOperation(getEvents)

	// GET /api/rooms/{code}/play
	getPlay, _ := r.NewOperationContext(http.MethodGet, "/api/rooms/{code}/play")
	getPlay.SetSummary("Play websocket")
	getPlay.SetDescription("Upgrades to a WebSocket. Send hello, then join and input; the server sends welcome, joined, rejected and state.")
	getPlay.AddReqStructure(roomPath{})
	getPlay.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusSwitchingProtocols),
		openapi.WithContentType("text/plain"))
	_ = r.AddOperation(getPlay)

	// GET /api/rooms/{code}/scoreboard
	getRoomScores, _ := r.NewOperationContext(http.MethodGet, "/api/rooms/{code}/scoreboard")
	getRoomScores.SetSummary("Room scoreboard")
	getRoomScores.AddReqStructure(roomPath{})
	getRoomScores.AddRespStructure(ScoreboardResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getRoomScores.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getRoomScores)

	// GET /api/matches
	listMatches, _ := r.NewOperationContext(http.MethodGet, "/api/matches")
	listMatches.SetSummary("Recent matches")
	listMatches.AddReqStructure(listMatchesQuery{})
	listMatches.AddRespStructure([]store.MatchResult{}, openapi.WithHTTPStatus(http.StatusOK))
	listMatches.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(listMatches)

	// GET /api/matches/{id}
	getMatch, _ := r.NewOperationContext(http.MethodGet, "/api/matches/{id}")
	getMatch.SetSummary("Get match")
	getMatch.AddReqStructure(matchPath{})
	getMatch.AddRespStructure(store.MatchResult{}, openapi.WithHTTPStatus(http.StatusOK))
	getMatch.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getMatch)

	// GET /api/scoreboard
	getScores, _ := r.NewOperationContext(http.MethodGet, "/api/scoreboard")
	getScores.SetSummary("Scoreboard")
	getScores.SetDescription("Wins per outcome across all rooms.")
	getScores.AddRespStructure(ScoreboardResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getScores.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getScores)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
