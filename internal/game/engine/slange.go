package engine

import (
	"strings"

	"github.com/valyala/fastrand"

	"github.com/spillrom/spillrom/internal/game/room"
)

const pointsPerWord = 10

// slangeLetters are the starting letters a chain may open with; letters
// that begin few or no Norwegian words are left out.
const slangeLetters = "abdefghijklmnoprstuv"

// Slange is the word-chain game: each word must start with the previous
// word's last letter, no word may be used twice, and buzzing claims the
// turn to extend the chain.
type Slange struct{}

// SlangeData is the game-data variant for one slange session.
//
// The chain is the single owned record of accepted words; the used-word
// index is maintained alongside it by appendWord and is never mutated
// elsewhere. UsedWordList derives the serializable view on demand.
type SlangeData struct {
	RequiredLetter string       `json:"requiredLetter"`
	Chain          []string     `json:"chain"`
	Buzzer         *BuzzerQueue `json:"buzzer"`
	Mode           string       `json:"mode"`
	Category       string       `json:"category"`

	used map[string]bool
}

// UsedWordList returns the used words in chain order, lower-cased.
func (d *SlangeData) UsedWordList() []string {
	out := make([]string, len(d.Chain))
	for i, w := range d.Chain {
		out[i] = strings.ToLower(w)
	}
	return out
}

func (d *SlangeData) appendWord(word string) {
	d.Chain = append(d.Chain, word)
	d.used[strings.ToLower(word)] = true
	d.RequiredLetter = lastLetter(word)
}

func (Slange) Initialize(players []*room.Player, config map[string]any) any {
	mode, _ := getString(config, "mode")
	if mode != "cooperative" {
		mode = "competitive"
	}
	category, _ := getString(config, "category")

	return &SlangeData{
		Buzzer:   NewBuzzerQueue(),
		Mode:     mode,
		Category: category,
		used:     make(map[string]bool),
	}
}

func (g Slange) HandleHostAction(r *room.Room, action string, data map[string]any) *Effect {
	d, ok := r.GameData.(*SlangeData)
	if !ok {
		return nil
	}

	switch action {
	case "start-chain":
		letter, ok := getString(data, "letter")
		letter = strings.ToLower(strings.TrimSpace(letter))
		if !ok || len([]rune(letter)) != 1 {
			letter = randomStartLetter()
		}
		if category, ok := getString(data, "category"); ok {
			d.Category = category
		}

		d.RequiredLetter = letter
		d.Chain = nil
		d.used = make(map[string]bool)
		d.Buzzer.Reset()

		return Broadcast("chain-started", map[string]any{
			"letter":   letter,
			"category": d.Category,
			"mode":     d.Mode,
		})

	case "clear-buzzer":
		if d.Buzzer.Active == "" {
			return nil
		}
		next := d.Buzzer.Advance(false)
		return Broadcast("buzzer-cleared", map[string]any{"nextPlayerId": next})
	}
	return nil
}

func (g Slange) HandlePlayerAction(r *room.Room, playerID, action string, data map[string]any) *Effect {
	d, ok := r.GameData.(*SlangeData)
	if !ok || d.RequiredLetter == "" {
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

	case "submit-word":
		if d.Buzzer.Active != playerID {
			return nil
		}
		raw, ok := getString(data, "word")
		if !ok {
			return nil
		}
		word := strings.TrimSpace(raw)

		if reason := g.rejectReason(d, word); reason != "" {
			// The chain is untouched; the turn goes back to the queue.
			next := d.Buzzer.Advance(false)
			return Broadcast("word-rejected", map[string]any{
				"playerId":     playerID,
				"word":         word,
				"reason":       reason,
				"nextPlayerId": next,
			})
		}

		d.appendWord(word)
		if d.Mode == "competitive" {
			if p, ok := r.Player(playerID); ok {
				p.Score += pointsPerWord
			}
		}
		next := d.Buzzer.Advance(false)

		return Broadcast("word-accepted", map[string]any{
			"playerId":     playerID,
			"word":         word,
			"nextLetter":   d.RequiredLetter,
			"chainLength":  len(d.Chain),
			"nextPlayerId": next,
			"players":      r.Players,
		})
	}
	return nil
}

func (g Slange) rejectReason(d *SlangeData, word string) string {
	lower := strings.ToLower(word)
	switch {
	case len([]rune(lower)) < 2:
		return "too short"
	case !strings.HasPrefix(lower, d.RequiredLetter):
		return "wrong starting letter"
	case d.used[lower]:
		return "already used"
	}
	return ""
}

// lastLetter returns the final rune of the word, lower-cased.
func lastLetter(word string) string {
	runes := []rune(strings.ToLower(word))
	if len(runes) == 0 {
		return ""
	}
	return string(runes[len(runes)-1])
}

func randomStartLetter() string {
	letters := []rune(slangeLetters)
	return string(letters[fastrand.Uint32n(uint32(len(letters)))])
}
