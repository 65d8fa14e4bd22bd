// Package bot drives demo mode: synthetic players that join a room and
// react to the same broadcast events a real client would receive,
// feeding their actions back through the normal dispatch path.
package bot

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spillrom/spillrom/internal/game/room"
	"github.com/spillrom/spillrom/internal/observability"
)

// Dispatch re-enters the server's player-action path on behalf of a
// bot. Implementations must serialize processing the way they do for
// real players.
type Dispatch func(playerID, action string, data map[string]any)

// Engine manages demo-mode bots per room. Enable, Disable and
// OnBroadcast are expected to be called from the single-threaded action
// dispatch; scheduled actions fire on timer goroutines and re-enter
// that dispatch via the Dispatch function.
type Engine struct {
	registry *room.Registry
	dispatch Dispatch
	sched    *Scheduler
	log      *zap.Logger
	maxBots  int

	mu    sync.Mutex
	demos map[string][]string // room code → bot connection IDs
}

// NewEngine creates a bot Engine.
//
// Precondition: registry, dispatch and log must be non-nil; maxBots > 0.
func NewEngine(registry *room.Registry, dispatch Dispatch, maxBots int, log *zap.Logger) *Engine {
	if maxBots <= 0 {
		panic("bot.NewEngine: maxBots must be > 0")
	}
	return &Engine{
		registry: registry,
		dispatch: dispatch,
		sched:    NewScheduler(),
		log:      log,
		maxBots:  maxBots,
		demos:    make(map[string][]string),
	}
}

// Enable turns demo mode on for the room, adding up to count bots with
// names that do not collide with present players. Enabling a room that
// already has demo mode replaces its bots.
//
// Postcondition: Returns the bot players added, or ErrRoomNotFound
// (wrapped) when the code does not resolve.
func (e *Engine) Enable(code string, count int) ([]*room.Player, error) {
	r, ok := e.registry.Get(code)
	if !ok {
		return nil, room.ErrRoomNotFound
	}
	e.Disable(code)

	if count <= 0 || count > e.maxBots {
		count = e.maxBots
	}

	ids := make([]string, 0, count)
	bots := make([]*room.Player, 0, count)
	for i := 0; i < count; i++ {
		botID := "bot-" + uuid.NewString()
		name := pickName(r.HasPlayerName)
		if _, err := e.registry.AddBot(code, botID, name); err != nil {
			return nil, err
		}
		p, _ := r.Player(botID)
		ids = append(ids, botID)
		bots = append(bots, p)
	}

	e.mu.Lock()
	e.demos[code] = ids
	e.mu.Unlock()

	observability.WithRoom(e.log, code).Info("demo mode enabled", zap.Int("bots", len(ids)))
	return bots, nil
}

// Disable turns demo mode off for the room: every pending scheduled
// action is cancelled before the bots are removed, so no bot acts on a
// room it has left. Returns whether demo mode was active.
func (e *Engine) Disable(code string) bool {
	e.mu.Lock()
	ids, active := e.demos[code]
	delete(e.demos, code)
	e.mu.Unlock()

	if !active {
		return false
	}

	cancelled := e.sched.CancelRoom(code)
	for _, id := range ids {
		e.registry.RemovePlayer(id)
	}

	observability.WithRoom(e.log, code).Info("demo mode disabled",
		zap.Int("bots", len(ids)),
		zap.Int("cancelledTasks", cancelled))
	return true
}

// IsActive reports whether demo mode is on for the room.
func (e *Engine) IsActive(code string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.demos[code]
	return ok
}

// BotIDs returns the bot connection IDs for the room.
func (e *Engine) BotIDs(code string) []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.demos[code]...)
}

// Shutdown cancels every pending bot action across all rooms.
func (e *Engine) Shutdown() {
	e.mu.Lock()
	e.demos = make(map[string][]string)
	e.mu.Unlock()
	e.sched.CancelAll()
}

// OnBroadcast feeds a room-wide broadcast to the bots, exactly as real
// clients see it. Must be called from the dispatch path so room state
// may be read safely while deciding how to react.
func (e *Engine) OnBroadcast(code, event string, payload map[string]any) {
	e.mu.Lock()
	ids, active := e.demos[code]
	e.mu.Unlock()
	if !active {
		return
	}
	r, ok := e.registry.Get(code)
	if !ok {
		return
	}
	e.react(r, ids, event, payload)
}

// schedule queues a bot action. The room and demo state are re-checked
// at fire time: cancellation normally wins, this is defense against a
// task that already fired when Disable ran.
func (e *Engine) schedule(code, botID string, delay time.Duration, action string, data map[string]any) {
	e.sched.Schedule(code, delay, func() {
		defer func() {
			if rec := recover(); rec != nil {
				e.log.Error("bot action panicked",
					zap.String("room", code),
					zap.String("bot", botID),
					zap.String("action", action),
					zap.Any("panic", rec))
			}
		}()

		if !e.IsActive(code) {
			return
		}
		if _, ok := e.registry.Get(code); !ok {
			return
		}
		e.dispatch(botID, action, data)
	})
}
