// Package engine hosts the per-game-type state machines and the
// dispatcher that routes host and player actions to them.
package engine

import (
	"go.uber.org/zap"

	"github.com/spillrom/spillrom/internal/game/room"
)

// Engine resolves connections to rooms and dispatches actions, handling
// the room-lifecycle actions itself and delegating the rest to the game
// strategy attached to the room.
//
// Engine assumes the caller serializes action processing: one action
// runs to completion before the next begins.
type Engine struct {
	registry *room.Registry
	log      *zap.Logger
}

// NewEngine creates an Engine over the given registry.
//
// Precondition: registry and log must be non-nil.
func NewEngine(registry *room.Registry, log *zap.Logger) *Engine {
	return &Engine{registry: registry, log: log}
}

// HandleHostAction dispatches an action from the room's host. Actions
// from connections that do not resolve to a room they host are dropped
// with a nil effect; sockets can race with room teardown, so this is
// routine, not an error.
func (e *Engine) HandleHostAction(connID, action string, data map[string]any) *Effect {
	r, ok := e.registry.RoomForConn(connID)
	if !ok {
		e.log.Debug("host action for unknown connection", zap.String("action", action))
		return nil
	}
	if r.HostID != connID {
		e.log.Debug("host action from non-host connection",
			zap.String("room", r.Code), zap.String("action", action))
		return nil
	}

	switch action {
	case "select-game":
		return e.selectGame(r, data)
	case "start-game":
		return e.startGame(r, data)
	case "end-game":
		return e.endGame(r)
	case "return-to-lobby":
		return e.returnToLobby(r)
	case "kick-player":
		return e.kickPlayer(r, data)
	}

	if r.GameState != room.StatePlaying {
		return nil
	}
	session, ok := r.Session.(Game)
	if !ok {
		return nil
	}
	return session.HandleHostAction(r, action, data)
}

// HandlePlayerAction dispatches an action from a joined player. Unknown
// connections and players absent from the room produce a nil effect.
func (e *Engine) HandlePlayerAction(connID, action string, data map[string]any) *Effect {
	r, ok := e.registry.RoomForConn(connID)
	if !ok {
		e.log.Debug("player action for unknown connection", zap.String("action", action))
		return nil
	}
	if _, ok := r.Player(connID); !ok {
		return nil
	}

	if action == "lobby-score" {
		return e.lobbyScore(r, connID, data)
	}

	if r.GameState != room.StatePlaying {
		return nil
	}
	session, ok := r.Session.(Game)
	if !ok {
		return nil
	}
	return session.HandlePlayerAction(r, connID, action, data)
}

func (e *Engine) selectGame(r *room.Room, data map[string]any) *Effect {
	if r.GameState == room.StatePlaying {
		return nil
	}
	game, ok := getString(data, "game")
	if !ok || game == "" {
		return nil
	}

	r.Game = game
	r.GameData = nil
	r.Session = nil
	r.GameState = room.StateLobbyGameSelected

	e.log.Info("game selected", zap.String("room", r.Code), zap.String("game", game))
	return Broadcast("game-selected", map[string]any{"game": game})
}

func (e *Engine) startGame(r *room.Room, data map[string]any) *Effect {
	if r.Game == "" {
		return nil
	}

	session := NewGame(r.Game)
	r.ResetForGameStart()
	r.GameData = session.Initialize(r.Players, data)
	r.Session = session
	r.GameState = room.StatePlaying

	e.log.Info("game started",
		zap.String("room", r.Code),
		zap.String("game", r.Game),
		zap.Int("players", len(r.Players)))
	return Broadcast("game-started", map[string]any{
		"game":    r.Game,
		"players": r.Players,
	})
}

func (e *Engine) endGame(r *room.Room) *Effect {
	if r.GameState != room.StatePlaying {
		return nil
	}
	r.GameState = room.StateGameOver

	e.log.Info("game ended", zap.String("room", r.Code), zap.String("game", r.Game))
	return Broadcast("game-ended", map[string]any{
		"game":    r.Game,
		"players": r.Players,
	})
}

func (e *Engine) returnToLobby(r *room.Room) *Effect {
	if r.GameState != room.StatePlaying && r.GameState != room.StateGameOver {
		return nil
	}

	// The game-data variant is discarded, never reused across starts.
	r.GameData = nil
	r.Session = nil
	if r.Game != "" {
		r.GameState = room.StateLobbyGameSelected
	} else if len(r.Players) > 0 {
		r.GameState = room.StateLobby
	} else {
		r.GameState = room.StateLobbyIdle
	}

	return Broadcast("returned-to-lobby", map[string]any{"players": r.Players})
}

func (e *Engine) kickPlayer(r *room.Room, data map[string]any) *Effect {
	playerID, ok := getString(data, "playerId")
	if !ok {
		return nil
	}
	if !e.registry.KickPlayer(r.Code, playerID) {
		return nil
	}

	e.log.Info("player kicked", zap.String("room", r.Code), zap.String("player", playerID))
	return Broadcast("player-kicked", map[string]any{
		"playerId": playerID,
		"players":  r.Players,
	})
}

func (e *Engine) lobbyScore(r *room.Room, playerID string, data map[string]any) *Effect {
	if r.GameState == room.StatePlaying {
		return nil
	}
	points, ok := getInt(data, "points")
	if !ok || points <= 0 {
		return nil
	}

	r.LobbyData[playerID] += points
	return Broadcast("lobby-scores", map[string]any{"scores": r.LobbyData})
}
