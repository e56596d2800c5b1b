// Package protocol is the JSON wire format spoken on the play websocket.
// Every frame is an Envelope whose type selects the payload.
package protocol

import (
	"encoding/json"
)

const Version = 1

const (
	MsgHello    = "hello"
	MsgJoin     = "join"
	MsgInput    = "input"
	MsgWelcome  = "welcome"
	MsgJoined   = "joined"
	MsgRejected = "rejected"
	MsgState    = "state"
	MsgError    = "error"
)

type Envelope struct {
	T string          `json:"t"`
	P json.RawMessage `json:"p"`
}
