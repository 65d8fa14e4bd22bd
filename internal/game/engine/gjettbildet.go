package engine

import (
	"github.com/spillrom/spillrom/internal/game/answer"
	"github.com/spillrom/spillrom/internal/game/room"
)

const (
	defaultTileCount = 9
	pointsPerTile    = 10
	minGuessPoints   = 10
)

// GjettBildet is the picture-guessing race: the host reveals tiles of a
// hidden image one by one, players buzz for the exclusive right to
// guess, and a correct guess scores more the fewer tiles are showing.
type GjettBildet struct{}

// GjettBildetData is the game-data variant for one gjett-bildet session.
type GjettBildetData struct {
	ImageIndex int          `json:"imageIndex"`
	Image      string       `json:"image"`
	Answers    []string     `json:"-"`
	TotalTiles int          `json:"totalTiles"`
	Revealed   []int        `json:"revealed"`
	Buzzer     *BuzzerQueue `json:"buzzer"`
	RoundOver  bool         `json:"roundOver"`
}

func (GjettBildet) Initialize(players []*room.Player, config map[string]any) any {
	return &GjettBildetData{Buzzer: NewBuzzerQueue()}
}

func (g GjettBildet) HandleHostAction(r *room.Room, action string, data map[string]any) *Effect {
	d, ok := r.GameData.(*GjettBildetData)
	if !ok {
		return nil
	}

	switch action {
	case "show-image":
		image, ok := getString(data, "image")
		if !ok || image == "" {
			return nil
		}
		accepted, ok := getStringSlice(data, "answers")
		if !ok || len(accepted) == 0 {
			return nil
		}
		tiles, ok := getInt(data, "tiles")
		if !ok || tiles <= 0 {
			tiles = defaultTileCount
		}

		if d.Image != "" {
			d.ImageIndex++
		}
		d.Image = image
		d.Answers = accepted
		d.TotalTiles = tiles
		d.Revealed = nil
		d.Buzzer.Reset()
		d.RoundOver = false

		return Broadcast("image-shown", map[string]any{
			"image":      image,
			"totalTiles": tiles,
			"index":      d.ImageIndex,
		}).WithHost("answer-key", map[string]any{"answers": accepted})

	case "reveal-tile":
		if d.RoundOver || d.Image == "" {
			return nil
		}
		tile, ok := getInt(data, "tile")
		if !ok || tile < 0 || tile >= d.TotalTiles {
			return nil
		}
		for _, t := range d.Revealed {
			if t == tile {
				return nil
			}
		}
		d.Revealed = append(d.Revealed, tile)

		return Broadcast("tile-revealed", map[string]any{
			"tile":     tile,
			"revealed": d.Revealed,
		})

	case "clear-buzzer":
		if d.Buzzer.Active == "" {
			return nil
		}
		// Timeout: the stalled guesser loses the slot but keeps the
		// right to buzz again later.
		next := d.Buzzer.Advance(false)
		return Broadcast("buzzer-cleared", map[string]any{"nextPlayerId": next})
	}
	return nil
}

func (g GjettBildet) HandlePlayerAction(r *room.Room, playerID, action string, data map[string]any) *Effect {
	d, ok := r.GameData.(*GjettBildetData)
	if !ok || d.RoundOver || d.Image == "" {
		return nil
	}

	switch action {
	case "buzz":
		switch d.Buzzer.Buzz(playerID) {
		case BuzzWon:
			return Broadcast("player-buzzed", map[string]any{"playerId": playerID})
		case BuzzQueued:
			return ToPlayer("buzz-queued", map[string]any{
				"position": d.Buzzer.Position(playerID),
			})
		default:
			return nil
		}

	case "guess":
		if d.Buzzer.Active != playerID {
			return nil
		}
		guess, ok := getString(data, "guess")
		if !ok || guess == "" {
			return nil
		}

		res := answer.Check(guess, d.Answers, answer.Options{})
		if !res.Correct {
			// A miss locks the player out for this image and hands
			// the slot to the next buzzer.
			next := d.Buzzer.Advance(true)
			return Broadcast("guess-wrong", map[string]any{
				"playerId":     playerID,
				"guess":        guess,
				"nextPlayerId": next,
			})
		}

		points := g.points(d)
		if p, ok := r.Player(playerID); ok {
			p.Score += points
		}
		d.RoundOver = true

		return Broadcast("guess-correct", map[string]any{
			"playerId": playerID,
			"answer":   res.BestMatch,
			"points":   points,
			"players":  r.Players,
		})
	}
	return nil
}

// points weighs the reward by reveal progress: every still-hidden tile
// is worth pointsPerTile, with a floor so a last-tile guess still pays.
func (g GjettBildet) points(d *GjettBildetData) int {
	unrevealed := d.TotalTiles - len(d.Revealed)
	points := unrevealed * pointsPerTile
	if points < minGuessPoints {
		points = minGuessPoints
	}
	return points
}
