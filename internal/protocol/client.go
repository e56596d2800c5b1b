package protocol

// Messages sent by clients.

type Hello struct {
	V    int    `json:"v"`
	Name string `json:"name,omitempty"`
}

// Join asks for a player slot. It carries no data; the device is the
// connection that sent it.
type Join struct{}

// Input is the client's device state. Look is the pointer delta since the
// previous input; the press flags are edges seen since the previous input.
type Input struct {
	MoveX      float64 `json:"mx"`
	MoveY      float64 `json:"my"`
	LookX      float64 `json:"lx,omitempty"`
	LookY      float64 `json:"ly,omitempty"`
	Jump       bool    `json:"jump,omitempty"`
	Attack     bool    `json:"attack,omitempty"`
	AttackHeld bool    `json:"attackHeld,omitempty"`
	AnyKey     bool    `json:"any,omitempty"`
}
