package bot

import (
	"strconv"
	"time"

	"github.com/valyala/fastrand"

	"github.com/spillrom/spillrom/internal/game/engine"
	"github.com/spillrom/spillrom/internal/game/room"
)

// Reaction probabilities per eligible bot, in percent. Not every bot
// acts on every event; a full sweep of identical reactions would give
// the simulation away instantly.
const (
	answerChance = 80
	buzzChance   = 50
)

// react translates one broadcast into scheduled bot actions for the
// room's current game.
func (e *Engine) react(r *room.Room, ids []string, event string, payload map[string]any) {
	bots := eligible(r, ids)
	if len(bots) == 0 {
		return
	}

	switch event {
	case "question-shown":
		for _, id := range bots {
			if chance(answerChance) {
				e.schedule(r.Code, id, thinkDelay(), "answer",
					map[string]any{"answer": e.pickAnswer(r, payload)})
			}
		}

	case "round-started":
		switch r.Game {
		case "tallkamp":
			numbers, _ := payload["numbers"].([]int)
			if len(numbers) == 0 {
				return
			}
			for _, id := range bots {
				if chance(answerChance) {
					e.schedule(r.Code, id, thinkDelay(), "submit-expression",
						map[string]any{"expression": randomExpression(numbers)})
				}
			}
		case "tidslinje":
			events, _ := payload["events"].([]map[string]any)
			if len(events) < 2 {
				return
			}
			for _, id := range bots {
				if chance(answerChance) {
					e.schedule(r.Code, id, thinkDelay(), "submit-order",
						map[string]any{"order": randomOrder(len(events))})
				}
			}
		}

	case "image-shown", "tile-revealed", "chain-started":
		for _, id := range bots {
			if chance(buzzChance) {
				e.schedule(r.Code, id, buzzDelay(), "buzz", nil)
			}
		}

	case "buzzer-cleared":
		// Clearing may promote a queued bot straight to the active slot;
		// that bot owes its follow-up, everyone else may race to buzz.
		next, _ := payload["nextPlayerId"].(string)
		for _, id := range bots {
			if id == next {
				e.scheduleFollowUp(r, id)
			} else if chance(buzzChance) {
				e.schedule(r.Code, id, buzzDelay(), "buzz", nil)
			}
		}

	case "player-buzzed":
		// The winning buzzer follows up; payload names the winner just
		// as it does for real clients.
		winner, _ := payload["playerId"].(string)
		if isBot(bots, winner) {
			e.scheduleFollowUp(r, winner)
		}

	case "guess-wrong", "word-accepted", "word-rejected":
		// The queue may have promoted a bot straight to the active
		// slot; everyone else gets a chance to buzz again.
		next, _ := payload["nextPlayerId"].(string)
		for _, id := range bots {
			if id == next {
				e.scheduleFollowUp(r, id)
			} else if id != winnerOf(payload) && chance(buzzChance) {
				e.schedule(r.Code, id, buzzDelay(), "buzz", nil)
			}
		}
	}
}

// scheduleFollowUp queues the action a bot owes after winning the buzz:
// a guess in gjett-bildet, a chain word in slange.
func (e *Engine) scheduleFollowUp(r *room.Room, botID string) {
	switch r.Game {
	case "gjett-bildet":
		e.schedule(r.Code, botID, thinkDelay(), "guess",
			map[string]any{"guess": randomWord()})
	case "slange":
		d, ok := r.GameData.(*engine.SlangeData)
		if !ok {
			return
		}
		avoid := make(map[string]bool)
		for _, w := range d.UsedWordList() {
			avoid[w] = true
		}
		e.schedule(r.Code, botID, thinkDelay(), "submit-word",
			map[string]any{"word": wordStartingWith(d.RequiredLetter, avoid)})
	}
}

// pickAnswer chooses a plausible answer for the current question.
func (e *Engine) pickAnswer(r *room.Room, payload map[string]any) string {
	if r.Game == "ja-eller-nei" {
		if chance(50) {
			return "ja"
		}
		return "nei"
	}
	if choices, ok := payload["choices"].([]string); ok && len(choices) > 0 {
		return choices[fastrand.Uint32n(uint32(len(choices)))]
	}
	return randomWord()
}

// eligible filters the bot IDs down to those still present, connected
// and not eliminated.
func eligible(r *room.Room, ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		p, ok := r.Player(id)
		if ok && p.IsConnected && !p.IsEliminated {
			out = append(out, id)
		}
	}
	return out
}

func isBot(ids []string, id string) bool {
	for _, b := range ids {
		if b == id {
			return true
		}
	}
	return false
}

func winnerOf(payload map[string]any) string {
	id, _ := payload["playerId"].(string)
	return id
}

func chance(percent uint32) bool {
	return fastrand.Uint32n(100) < percent
}

// buzzDelay is the reaction window for racing to the buzzer.
func buzzDelay() time.Duration {
	return time.Duration(300+fastrand.Uint32n(1200)) * time.Millisecond
}

// thinkDelay is the longer window for composing an answer.
func thinkDelay() time.Duration {
	return time.Duration(1000+fastrand.Uint32n(3000)) * time.Millisecond
}

// randomExpression builds a submission from the pool: one number, or
// the sum or product of two distinct pool entries.
func randomExpression(numbers []int) string {
	if len(numbers) >= 2 && chance(60) {
		i := fastrand.Uint32n(uint32(len(numbers)))
		j := fastrand.Uint32n(uint32(len(numbers) - 1))
		if j >= i {
			j++
		}
		op := " + "
		if chance(30) {
			op = " * "
		}
		return strconv.Itoa(numbers[i]) + op + strconv.Itoa(numbers[j])
	}
	return strconv.Itoa(numbers[fastrand.Uint32n(uint32(len(numbers)))])
}

// randomOrder returns a random permutation of 0..n-1.
func randomOrder(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j := int(fastrand.Uint32n(uint32(i + 1)))
		out[i], out[j] = out[j], out[i]
	}
	return out
}
