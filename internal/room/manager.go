package room

import (
	"cmp"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math/big"
	"slices"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/playperu/sniperrun/internal/match"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrTooManyRooms = errors.New("too many rooms")
	ErrBadHostKey   = errors.New("bad host key")
)

// Info is returned by the API for the room list.
type Info struct {
	Code    string `json:"code"`
	Players int    `json:"players"`
	Clients int    `json:"clients"`
}

type ManagerConfig struct {
	// Room is the template every new room starts from.
	Room Options

	// AudioFor returns the sound effect sink for a room code.
	AudioFor func(code string) match.Audio

	// OnOpen and OnClose run outside the manager lock. OnClose may run on
	// the closing room's goroutine.
	OnOpen  func(code string)
	OnClose func(code string)

	MaxRooms int
	HashCost int
}

// Manager holds rooms by code. Rooms are removed when their last client
// leaves or when the host closes them.
type Manager struct {
	mu    sync.RWMutex
	rooms map[string]*entry
	cfg   ManagerConfig
}

type entry struct {
	room    *Room
	keyHash []byte
}

func NewManager(cfg ManagerConfig) *Manager {
	if cfg.HashCost == 0 {
		cfg.HashCost = bcrypt.DefaultCost
	}
	return &Manager{
		rooms: make(map[string]*entry),
		cfg:   cfg,
	}
}

const codeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// CreateRoom starts a room under a fresh 6-char code and returns the code
// with the host key needed to close it.
func (m *Manager) CreateRoom() (string, string, error) {
	key, err := newHostKey()
	if err != nil {
		return "", "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(key), m.cfg.HashCost)
	if err != nil {
		return "", "", fmt.Errorf("hashing host key: %w", err)
	}

	m.mu.Lock()
	if m.cfg.MaxRooms > 0 && len(m.rooms) >= m.cfg.MaxRooms {
		m.mu.Unlock()
		return "", "", ErrTooManyRooms
	}
	var code string
	for code == "" || m.rooms[code] != nil {
		if code, err = generateCode(rand.Reader, 6); err != nil {
			m.mu.Unlock()
			return "", "", err
		}
	}

	opts := m.cfg.Room
	if m.cfg.AudioFor != nil {
		opts.Audio = m.cfg.AudioFor(code)
	}
	r := New(code, opts)
	r.OnEmpty = m.removeRoom
	m.rooms[code] = &entry{room: r, keyHash: hash}
	m.mu.Unlock()

	opts.Metrics.RoomOpened()
	go r.Run()
	if m.cfg.OnOpen != nil {
		m.cfg.OnOpen(code)
	}
	return code, key, nil
}

func (m *Manager) Get(code string) (*Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.rooms[code]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return e.room, nil
}

// List returns all active rooms ordered by code.
func (m *Manager) List() []Info {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Info, 0, len(m.rooms))
	for code, e := range m.rooms {
		out = append(out, Info{Code: code, Players: e.room.NumPlayers(), Clients: e.room.NumClients()})
	}
	slices.SortFunc(out, func(a, b Info) int { return cmp.Compare(a.Code, b.Code) })
	return out
}

// Close stops a room if key matches the one issued at creation.
func (m *Manager) Close(code, key string) error {
	m.mu.RLock()
	e, ok := m.rooms[code]
	m.mu.RUnlock()
	if !ok {
		return ErrRoomNotFound
	}
	if err := bcrypt.CompareHashAndPassword(e.keyHash, []byte(key)); err != nil {
		return ErrBadHostKey
	}
	m.removeRoom(code)
	return nil
}

// CloseAll stops every room and waits for their goroutines to exit.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	closed := make([]*Room, 0, len(m.rooms))
	for code, e := range m.rooms {
		closed = append(closed, e.room)
		delete(m.rooms, code)
	}
	m.mu.Unlock()

	for _, r := range closed {
		m.stop(r)
	}
	for _, r := range closed {
		<-r.Done()
	}
}

func (m *Manager) removeRoom(code string) {
	m.mu.Lock()
	e, ok := m.rooms[code]
	delete(m.rooms, code)
	m.mu.Unlock()
	if ok {
		m.stop(e.room)
	}
}

func (m *Manager) stop(r *Room) {
	r.Stop()
	m.cfg.Room.Metrics.RoomClosed()
	if m.cfg.OnClose != nil {
		m.cfg.OnClose(r.Code)
	}
}

func generateCode(src io.Reader, n int) (string, error) {
	b := make([]byte, n)
	max := big.NewInt(int64(len(codeChars)))
	for i := range b {
		idx, err := rand.Int(src, max)
		if err != nil {
			return "", fmt.Errorf("generating room code: %w", err)
		}
		b[i] = codeChars[idx.Int64()]
	}
	return string(b), nil
}

func newHostKey() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating host key: %w", err)
	}
	return hex.EncodeToString(b), nil
}
