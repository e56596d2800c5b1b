// Package audio is the process-wide sound service. The server does not play
// sound; it tells each room's clients which one-shot clip to play and which
// music track runs across scene loads.
package audio

import (
	"log/slog"
	"sync"

	"github.com/playperu/sniperrun/internal/events"
	"github.com/playperu/sniperrun/internal/match"
)

var knownClips = map[match.Clip]bool{
	match.ClipRunnerSpawn: true,
	match.ClipRunnerDeath: true,
	match.ClipSniperShot:  true,
}

type Service struct {
	broker *events.Broker
	music  string
	logger *slog.Logger

	mu     sync.RWMutex
	closed bool

	// OnPlay observes every clip sent to clients.
	OnPlay func(room string, clip match.Clip)
}

func New(broker *events.Broker, music string, logger *slog.Logger) *Service {
	return &Service{broker: broker, music: music, logger: logger}
}

// Music is the track that persists across scenes.
func (s *Service) Music() string { return s.music }

// ForRoom returns the match.Audio a room hands to its match.
func (s *Service) ForRoom(code string) match.Audio {
	return roomAudio{svc: s, room: code}
}

// Close stops further clip events. It is safe to call more than once.
func (s *Service) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

func (s *Service) play(room string, clip match.Clip) {
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return
	}
	if !knownClips[clip] {
		s.logger.Debug("unknown clip dropped", "room", room, "clip", clip)
		return
	}
	s.broker.Publish(room, events.Event{Type: events.TypeSFX, Clip: string(clip)})
	if s.OnPlay != nil {
		s.OnPlay(room, clip)
	}
}

type roomAudio struct {
	svc  *Service
	room string
}

func (a roomAudio) PlayOneShot(c match.Clip) { a.svc.play(a.room, c) }
