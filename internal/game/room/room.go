// Package room owns the canonical in-memory table of game rooms and the
// connection-to-room index.
package room

import "time"

// GameState is the lifecycle phase of a room.
type GameState string

const (
	StateLobbyIdle         GameState = "LOBBY_IDLE"
	StateLobby             GameState = "LOBBY"
	StateLobbyGameSelected GameState = "LOBBY_GAME_SELECTED"
	StatePlaying           GameState = "PLAYING"
	StateGameOver          GameState = "GAME_OVER"
)

// Player is one joined participant. The ID doubles as the connection
// identifier the transport layer routes messages by.
type Player struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Score        int    `json:"score"`
	IsConnected  bool   `json:"isConnected"`
	IsEliminated bool   `json:"isEliminated"`
	IsBot        bool   `json:"isBot"`
}

// Room is the unit of isolation for one host and its joined players.
//
// Invariant: GameData's shape always matches the currently selected Game.
// Invariant: HostID references the connection that created the room.
//
// Room fields are mutated only from the single-threaded action dispatch;
// the Registry lock covers only membership in the rooms table itself.
type Room struct {
	Code      string
	HostID    string
	Game      string
	GameState GameState
	Players   []*Player
	GameData  any
	LobbyData map[string]int
	CreatedAt time.Time

	// Session is the game strategy attached at game start, so per-action
	// dispatch does not re-match on the Game string. Typed as any to keep
	// the strategy contract out of this package.
	Session any
}

// Player returns the joined player with the given ID.
//
// Postcondition: Returns (player, true) if found, or (nil, false) otherwise.
func (r *Room) Player(id string) (*Player, bool) {
	for _, p := range r.Players {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// ActivePlayers returns the players that are connected and not eliminated,
// in join order.
func (r *Room) ActivePlayers() []*Player {
	out := make([]*Player, 0, len(r.Players))
	for _, p := range r.Players {
		if p.IsConnected && !p.IsEliminated {
			out = append(out, p)
		}
	}
	return out
}

// ResetForGameStart clears scores and eliminations ahead of a (re)start.
func (r *Room) ResetForGameStart() {
	for _, p := range r.Players {
		p.Score = 0
		p.IsEliminated = false
	}
}

// HasPlayerName reports whether any joined player already uses name.
func (r *Room) HasPlayerName(name string) bool {
	for _, p := range r.Players {
		if p.Name == name {
			return true
		}
	}
	return false
}

// removePlayer drops the player with the given ID from the join-ordered list.
// Returns whether a player was removed.
func (r *Room) removePlayer(id string) bool {
	for i, p := range r.Players {
		if p.ID == id {
			r.Players = append(r.Players[:i], r.Players[i+1:]...)
			return true
		}
	}
	return false
}
