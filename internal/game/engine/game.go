package engine

import "github.com/spillrom/spillrom/internal/game/room"

// Game is the contract every game type implements. A single instance is
// selected at game start and attached to the room, so per-action
// dispatch never re-matches on the game-type string.
//
// Handlers operate on the room's GameData variant, which Initialize
// builds fresh for every start. Returning nil means the action had no
// observable effect; wrong-phase or malformed actions return nil rather
// than an error, so one bad client message cannot halt a room.
type Game interface {
	// Initialize builds the game's initial data variant. Pure
	// construction; config carries optional host-supplied settings.
	Initialize(players []*room.Player, config map[string]any) any

	HandleHostAction(r *room.Room, action string, data map[string]any) *Effect

	HandlePlayerAction(r *room.Room, playerID, action string, data map[string]any) *Effect
}

var builders = map[string]func() Game{
	"ja-eller-nei": func() Game { return &JaEllerNei{} },
	"quiz":         func() Game { return &Quiz{} },
	"tallkamp":     func() Game { return &Tallkamp{} },
	"tidslinje":    func() Game { return &Tidslinje{} },
	"gjett-bildet": func() Game { return &GjettBildet{} },
	"slange":       func() Game { return &Slange{} },
}

// NewGame returns the strategy for the given game type. An unknown type
// yields NopGame: unsupported game types are not an error, they simply
// produce no effects.
func NewGame(gameType string) Game {
	if build, ok := builders[gameType]; ok {
		return build()
	}
	return NopGame{}
}

// KnownGame reports whether the game type has a real implementation.
func KnownGame(gameType string) bool {
	_, ok := builders[gameType]
	return ok
}

// GameTypes returns the supported game-type tags.
func GameTypes() []string {
	out := make([]string, 0, len(builders))
	for t := range builders {
		out = append(out, t)
	}
	return out
}

// NopGame is the explicit fallback for unknown game types.
type NopGame struct{}

func (NopGame) Initialize([]*room.Player, map[string]any) any { return map[string]any{} }

func (NopGame) HandleHostAction(*room.Room, string, map[string]any) *Effect { return nil }

func (NopGame) HandlePlayerAction(*room.Room, string, string, map[string]any) *Effect { return nil }
