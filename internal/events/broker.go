// Package events fans room events out to SSE subscribers.
package events

import (
	"encoding/json"
	"sync"
)

const (
	TypePlayerJoined  = "player_joined"
	TypePlayerLeft    = "player_left"
	TypePlayerDied    = "player_died"
	TypePlayerRevived = "player_revived"
	TypeJoinLocked    = "join_locked"
	TypeJoinOpened    = "join_opened"
	TypeZoneEntered   = "zone_entered"
	TypeScene         = "scene"
	TypeOutcome       = "outcome"
	TypeSFX           = "sfx"
	TypeRoomClosed    = "room_closed"
)

// Event is the payload published to a room's subscribers.
type Event struct {
	Type    string `json:"type"`
	Player  string `json:"player,omitempty"`
	Name    string `json:"name,omitempty"`
	Number  int    `json:"number,omitempty"`
	Role    string `json:"role,omitempty"`
	Zone    string `json:"zone,omitempty"`
	Scene   *int   `json:"scene,omitempty"`
	Outcome string `json:"outcome,omitempty"`
	Clip    string `json:"clip,omitempty"`
}

// Broker is an in-process pub/sub keyed by room code.
type Broker struct {
	mu   sync.RWMutex
	subs map[string]map[chan []byte]struct{}
}

func NewBroker() *Broker {
	return &Broker{
		subs: make(map[string]map[chan []byte]struct{}),
	}
}

// Subscribe returns a channel that receives JSON-encoded events for room.
func (b *Broker) Subscribe(room string) chan []byte {
	ch := make(chan []byte, 32)
	b.mu.Lock()
	if b.subs[room] == nil {
		b.subs[room] = make(map[chan []byte]struct{})
	}
	b.subs[room][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes ch from the room's subscribers.
func (b *Broker) Unsubscribe(room string, ch chan []byte) {
	b.mu.Lock()
	delete(b.subs[room], ch)
	if len(b.subs[room]) == 0 {
		delete(b.subs, room)
	}
	b.mu.Unlock()
}

// Publish sends an event to every subscriber of room without blocking.
func (b *Broker) Publish(room string, event Event) {
	data, _ := json.Marshal(event)
	b.mu.RLock()
	for ch := range b.subs[room] {
		select {
		case ch <- data:
		default:
			// Drop if subscriber is slow.
		}
	}
	b.mu.RUnlock()
}

func (b *Broker) Subscribers(room string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[room])
}
