package engine

import (
	"sort"

	"github.com/spillrom/spillrom/internal/game/room"
)

// tallkampLadder is the points awarded by closeness rank; everyone who
// submitted past fourth place still gets the last rung.
var tallkampLadder = []int{100, 75, 50, 25}

// Tallkamp is the number-crunching game: the host announces a target
// and a pool of numbers, players build one arithmetic expression from
// the pool, and closeness to the target decides the round.
type Tallkamp struct{}

type tallkampSubmission struct {
	Expression string `json:"expression"`
	Result     int    `json:"result"`
	Order      int    `json:"-"`
}

// TallkampData is the game-data variant for one tallkamp session.
type TallkampData struct {
	Target      int                           `json:"target"`
	Numbers     []int                         `json:"numbers"`
	Countdown   int                           `json:"countdown"`
	RoundActive bool                          `json:"roundActive"`
	Submissions map[string]tallkampSubmission `json:"-"`
}

func (Tallkamp) Initialize(players []*room.Player, config map[string]any) any {
	return &TallkampData{Submissions: make(map[string]tallkampSubmission)}
}

func (g Tallkamp) HandleHostAction(r *room.Room, action string, data map[string]any) *Effect {
	d, ok := r.GameData.(*TallkampData)
	if !ok {
		return nil
	}

	switch action {
	case "start-round":
		target, ok := getInt(data, "target")
		if !ok {
			return nil
		}
		numbers, ok := getIntSlice(data, "numbers")
		if !ok || len(numbers) == 0 {
			return nil
		}
		countdown, _ := getInt(data, "countdown")

		d.Target = target
		d.Numbers = numbers
		d.Countdown = countdown
		d.RoundActive = true
		d.Submissions = make(map[string]tallkampSubmission)

		return Broadcast("round-started", map[string]any{
			"target":    target,
			"numbers":   numbers,
			"countdown": countdown,
		})

	case "end-round":
		if !d.RoundActive {
			return nil
		}
		d.RoundActive = false

		results := g.score(r, d)
		return Broadcast("round-ended", map[string]any{
			"target":  d.Target,
			"results": results,
			"players": r.Players,
		})
	}
	return nil
}

// score ranks submissions by distance to the target, breaking ties by
// earlier submission, and awards ladder points down the ranking.
func (g Tallkamp) score(r *room.Room, d *TallkampData) []map[string]any {
	type ranked struct {
		playerID string
		sub      tallkampSubmission
		diff     int
	}

	all := make([]ranked, 0, len(d.Submissions))
	for id, sub := range d.Submissions {
		diff := sub.Result - d.Target
		if diff < 0 {
			diff = -diff
		}
		all = append(all, ranked{playerID: id, sub: sub, diff: diff})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].diff != all[j].diff {
			return all[i].diff < all[j].diff
		}
		return all[i].sub.Order < all[j].sub.Order
	})

	results := make([]map[string]any, 0, len(all))
	for rank, entry := range all {
		points := tallkampLadder[len(tallkampLadder)-1]
		if rank < len(tallkampLadder) {
			points = tallkampLadder[rank]
		}
		if p, ok := r.Player(entry.playerID); ok {
			p.Score += points
		}
		results = append(results, map[string]any{
			"playerId":   entry.playerID,
			"expression": entry.sub.Expression,
			"result":     entry.sub.Result,
			"diff":       entry.diff,
			"points":     points,
		})
	}
	return results
}

func (g Tallkamp) HandlePlayerAction(r *room.Room, playerID, action string, data map[string]any) *Effect {
	if action != "submit-expression" {
		return nil
	}
	d, ok := r.GameData.(*TallkampData)
	if !ok || !d.RoundActive {
		return nil
	}
	if _, submitted := d.Submissions[playerID]; submitted {
		return nil
	}

	expr, ok := getString(data, "expression")
	if !ok || expr == "" {
		return nil
	}

	result, err := EvalExpression(expr, d.Numbers)
	if err != nil {
		return ToPlayer("expression-rejected", map[string]any{
			"expression": expr,
			"reason":     err.Error(),
		})
	}

	d.Submissions[playerID] = tallkampSubmission{
		Expression: expr,
		Result:     result,
		Order:      len(d.Submissions),
	}

	return Broadcast("player-submitted", map[string]any{
		"playerId":  playerID,
		"submitted": len(d.Submissions),
	}).WithPlayer("expression-accepted", map[string]any{
		"expression": expr,
		"result":     result,
	})
}
