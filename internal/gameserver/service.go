// Package gameserver is the transport boundary: it accepts websocket
// connections, resolves them to rooms, feeds actions into the game
// engine and fans effect descriptors out to their audiences.
package gameserver

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spillrom/spillrom/internal/game/bot"
	"github.com/spillrom/spillrom/internal/game/engine"
	"github.com/spillrom/spillrom/internal/game/room"
	"github.com/spillrom/spillrom/internal/observability"
)

// Sender delivers an event envelope to one connection. The hub
// implements it; tests substitute a recorder.
type Sender interface {
	Send(connID, event string, payload any)
	CloseConn(connID string)
}

// Service serializes all action processing for the whole process: one
// action runs to completion, including its effect fan-out, before the
// next begins. The only deferred work is bot timers and the expiry
// sweep, both of which re-enter through these methods.
type Service struct {
	mu       sync.Mutex
	registry *room.Registry
	engine   *engine.Engine
	bots     *bot.Engine
	sender   Sender
	log      *zap.Logger
}

// NewService wires the engine and the bot engine over a shared
// registry. Bot actions dispatch through PlayerAction, the same entry
// real players use, so chained behaviors ride the normal path.
//
// Precondition: registry, sender and log must be non-nil; maxBots > 0.
func NewService(registry *room.Registry, sender Sender, maxBots int, log *zap.Logger) *Service {
	s := &Service{
		registry: registry,
		sender:   sender,
		log:      log,
	}
	s.engine = engine.NewEngine(registry, log)
	s.bots = bot.NewEngine(registry, s.PlayerAction, maxBots, log)
	return s
}

// CreateRoom creates a room hosted by the connection and tells the host
// its code.
func (s *Service) CreateRoom(connID, game string) (*room.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.registry.CreateRoom(connID, game)
	if err != nil {
		return nil, err
	}

	observability.WithRoom(s.log, r.Code).Info("room created", zap.String("game", game))
	s.sender.Send(connID, "room-created", map[string]any{
		"code": r.Code,
		"game": r.Game,
	})
	return r, nil
}

// Join adds the connection to the room as a player. An unknown code is
// answered with a join-denied message rather than an error; duplicate
// joins are idempotent.
func (s *Service) Join(connID, code, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.registry.JoinRoom(code, connID, name)
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			s.sender.Send(connID, "join-denied", map[string]any{
				"code":   code,
				"reason": "room not found",
			})
			return
		}
		observability.WithRoom(s.log, code).Error("join failed", zap.Error(err))
		return
	}

	s.sender.Send(connID, "room-joined", map[string]any{
		"code":      r.Code,
		"game":      r.Game,
		"gameState": r.GameState,
		"players":   r.Players,
	})
	s.broadcast(r, "player-joined", map[string]any{
		"playerId": connID,
		"players":  r.Players,
	})
}

// HostAction feeds a host action into the engine and delivers the
// resulting effect.
func (s *Service) HostAction(connID, action string, data map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deliver(connID, s.engine.HandleHostAction(connID, action, data))
}

// PlayerAction feeds a player action into the engine and delivers the
// resulting effect. Bot timers call this too.
func (s *Service) PlayerAction(connID, action string, data map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deliver(connID, s.engine.HandlePlayerAction(connID, action, data))
}

// Disconnect removes whatever the connection references. A departing
// host closes the whole room; a departing player is announced to the
// rest of the room.
func (s *Service) Disconnect(connID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wasHost, r, ok := s.registry.RemovePlayer(connID)
	if !ok {
		return
	}

	if wasHost {
		observability.WithRoom(s.log, r.Code).Info("host left, closing room")
		s.bots.Disable(r.Code)
		for _, p := range r.Players {
			s.sender.Send(p.ID, "room-closed", map[string]any{"code": r.Code})
			s.sender.CloseConn(p.ID)
		}
		return
	}

	s.broadcast(r, "player-left", map[string]any{
		"playerId": connID,
		"players":  r.Players,
	})
}

// EnableDemo turns demo mode on for the room.
func (s *Service) EnableDemo(code string, count int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.registry.Get(code)
	if !ok {
		return room.ErrRoomNotFound
	}
	if _, err := s.bots.Enable(code, count); err != nil {
		return err
	}
	s.broadcast(r, "players-updated", map[string]any{"players": r.Players})
	return nil
}

// DisableDemo turns demo mode off for the room.
func (s *Service) DisableDemo(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.registry.Get(code)
	if !ok {
		return room.ErrRoomNotFound
	}
	if s.bots.Disable(code) {
		s.broadcast(r, "players-updated", map[string]any{"players": r.Players})
	}
	return nil
}

// Sweep removes rooms older than maxAge. Per-room bot state is
// cancelled before the room is discarded; no events are emitted for
// swept rooms, they are assumed abandoned.
func (s *Service) Sweep(maxAge time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, code := range s.registry.ExpiredCodes(maxAge) {
		s.bots.Disable(code)
	}
	removed := s.registry.CleanupOldRooms(maxAge)
	if len(removed) > 0 {
		s.log.Info("swept expired rooms", zap.Strings("rooms", removed))
	}
	return len(removed)
}

// Shutdown cancels all demo-mode timers.
func (s *Service) Shutdown() {
	s.bots.Shutdown()
}

// deliver fans one effect out to its audiences: the broadcast to the
// whole room, the host payload to the host connection and the player
// payload back to the acting connection, independently. Bots observe
// the broadcast exactly like real clients.
func (s *Service) deliver(connID string, eff *engine.Effect) {
	if eff == nil {
		return
	}
	r, ok := s.registry.RoomForConn(connID)
	if !ok {
		return
	}

	if eff.Event != "" {
		s.broadcast(r, eff.Event, eff.Payload)
	}
	if eff.HostEvent != "" {
		s.sender.Send(r.HostID, eff.HostEvent, eff.HostPayload)
	}
	if eff.PlayerEvent != "" {
		s.sender.Send(connID, eff.PlayerEvent, eff.PlayerPayload)
	}
}

func (s *Service) broadcast(r *room.Room, event string, payload map[string]any) {
	s.sender.Send(r.HostID, event, payload)
	for _, p := range r.Players {
		if !p.IsBot {
			s.sender.Send(p.ID, event, payload)
		}
	}
	s.bots.OnBroadcast(r.Code, event, payload)
}
