package room

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrRoomNotFound is returned when a room code does not resolve to a live room.
var ErrRoomNotFound = errors.New("room not found")

// Registry tracks all live rooms by code and indexes connections to room
// codes. The connection index stores only the code, never room data, so
// rooms have exactly one owning copy.
// All methods are safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	rooms   map[string]*Room  // code → room
	conns   map[string]string // connection ID → room code
	codeLen int
}

// NewRegistry creates an empty Registry generating codes of the given length.
//
// Precondition: codeLen > 0.
func NewRegistry(codeLen int) *Registry {
	if codeLen <= 0 {
		panic("room.NewRegistry: codeLen must be > 0")
	}
	return &Registry{
		rooms:   make(map[string]*Room),
		conns:   make(map[string]string),
		codeLen: codeLen,
	}
}

// CreateRoom creates a room owned by hostID, optionally with a game already
// selected. Codes are regenerated until unused, so uniqueness is guaranteed
// rather than merely probable.
//
// Precondition: hostID must be non-empty.
// Postcondition: Returns a room with a unique code registered under hostID.
func (g *Registry) CreateRoom(hostID, game string) (*Room, error) {
	if hostID == "" {
		return nil, fmt.Errorf("room.CreateRoom: hostID must not be empty")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	var code string
	for {
		code = randomCode(g.codeLen)
		if _, taken := g.rooms[code]; !taken {
			break
		}
	}

	state := StateLobbyIdle
	if game != "" {
		state = StateLobbyGameSelected
	}

	r := &Room{
		Code:      code,
		HostID:    hostID,
		Game:      game,
		GameState: state,
		LobbyData: make(map[string]int),
		CreatedAt: time.Now(),
	}
	g.rooms[code] = r
	g.conns[hostID] = code

	return r, nil
}

// JoinRoom adds a player to the room with the given code. Joining with an
// already-joined identifier is idempotent and returns the room unchanged,
// tolerating duplicate join messages from an unreliable transport.
//
// Postcondition: Returns ErrRoomNotFound when no room has the code.
func (g *Registry) JoinRoom(code, playerID, name string) (*Room, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	r, ok := g.rooms[code]
	if !ok {
		return nil, fmt.Errorf("joining %q: %w", code, ErrRoomNotFound)
	}

	if _, joined := r.Player(playerID); joined {
		return r, nil
	}

	r.Players = append(r.Players, &Player{
		ID:          playerID,
		Name:        name,
		IsConnected: true,
	})
	if r.GameState == StateLobbyIdle {
		r.GameState = StateLobby
	}
	g.conns[playerID] = code

	return r, nil
}

// AddBot adds a synthetic player to the room. Same semantics as JoinRoom
// with the bot flag set.
func (g *Registry) AddBot(code, botID, name string) (*Room, error) {
	r, err := g.JoinRoom(code, botID, name)
	if err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if p, ok := r.Player(botID); ok {
		p.IsBot = true
	}
	return r, nil
}

// Get returns the room with the given code.
//
// Postcondition: Returns (room, true) if found, or (nil, false) otherwise.
func (g *Registry) Get(code string) (*Room, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	r, ok := g.rooms[code]
	return r, ok
}

// RoomForConn resolves a connection identifier to its room.
//
// Postcondition: Returns (room, true) if the connection is indexed and its
// room is still live, or (nil, false) otherwise.
func (g *Registry) RoomForConn(connID string) (*Room, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	code, ok := g.conns[connID]
	if !ok {
		return nil, false
	}
	r, ok := g.rooms[code]
	return r, ok
}

// KickPlayer removes the player from the room and drops its connection
// index entry. Returns whether a player was removed.
func (g *Registry) KickPlayer(code, playerID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	r, ok := g.rooms[code]
	if !ok {
		return false
	}
	if !r.removePlayer(playerID) {
		return false
	}
	delete(g.conns, playerID)
	return true
}

// RemovePlayer removes whatever the connection identifier references:
// a host (the whole room is torn down) or an ordinary player (only that
// player leaves). Idempotent — an unknown connection is a no-op.
//
// Postcondition: Returns (wasHost, room, true) when something was removed,
// or (false, nil, false) for an unknown connection. The returned room is the
// affected room (already deleted from the registry in the host case).
func (g *Registry) RemovePlayer(connID string) (bool, *Room, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	code, ok := g.conns[connID]
	if !ok {
		return false, nil, false
	}
	delete(g.conns, connID)

	r, ok := g.rooms[code]
	if !ok {
		return false, nil, false
	}

	if r.HostID == connID {
		g.deleteRoomLocked(r)
		return true, r, true
	}

	r.removePlayer(connID)
	return false, r, true
}

// RemoveRoom tears down the room with the given code, unindexing the host
// and every player. Idempotent.
func (g *Registry) RemoveRoom(code string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if r, ok := g.rooms[code]; ok {
		g.deleteRoomLocked(r)
	}
}

// ExpiredCodes returns the codes of rooms older than maxAge, without
// removing them. Callers cancel per-room resources first, then sweep with
// CleanupOldRooms.
func (g *Registry) ExpiredCodes(maxAge time.Duration) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	cutoff := time.Now().Add(-maxAge)
	var codes []string
	for code, r := range g.rooms {
		if r.CreatedAt.Before(cutoff) {
			codes = append(codes, code)
		}
	}
	return codes
}

// CleanupOldRooms removes every room older than maxAge, bounding memory in
// a long-running process with abandoned rooms.
//
// Postcondition: Returns the codes removed; younger rooms are untouched.
func (g *Registry) CleanupOldRooms(maxAge time.Duration) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	cutoff := time.Now().Add(-maxAge)
	var removed []string
	for code, r := range g.rooms {
		if r.CreatedAt.Before(cutoff) {
			g.deleteRoomLocked(r)
			removed = append(removed, code)
		}
	}
	return removed
}

// Codes returns the codes of all live rooms, in no particular order.
func (g *Registry) Codes() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	codes := make([]string, 0, len(g.rooms))
	for code := range g.rooms {
		codes = append(codes, code)
	}
	return codes
}

// Count returns the number of live rooms.
func (g *Registry) Count() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.rooms)
}

// deleteRoomLocked removes the room and every connection index entry that
// points at it. Caller must hold g.mu.
func (g *Registry) deleteRoomLocked(r *Room) {
	delete(g.conns, r.HostID)
	for _, p := range r.Players {
		delete(g.conns, p.ID)
	}
	delete(g.rooms, r.Code)
}
