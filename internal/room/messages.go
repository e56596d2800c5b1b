package room

import (
	"github.com/playperu/sniperrun/internal/match"
	"github.com/playperu/sniperrun/internal/protocol"
)

// Conn is a client connection. Send must not block the room goroutine.
type Conn interface {
	Send([]byte) error
	Close() error
}

// Connect attaches a client as a spectator.
type Connect struct {
	Conn  Conn
	Name  string
	Reply chan<- ConnectResult
}

type ConnectResult struct {
	ClientID string
}

// Join asks for a player slot for a connected client's device.
type Join struct {
	ClientID string
	Reply    chan<- JoinResult
}

type JoinResult struct {
	PlayerID string
	Number   int
	Role     match.Role
	Err      error
}

// Input carries the latest device state of a client.
type Input struct {
	ClientID string
	Input    protocol.Input
}

// Leave is issued on disconnect.
type Leave struct {
	ClientID string
}

// Snapshot requests the current state.
type Snapshot struct {
	Reply chan<- protocol.State
}
