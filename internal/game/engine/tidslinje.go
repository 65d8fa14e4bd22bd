package engine

import (
	"github.com/valyala/fastrand"

	"github.com/spillrom/spillrom/internal/game/room"
)

// Tidslinje is the ordering game: the host supplies events in true
// chronological order, players see them shuffled and submit the
// ordering they believe is correct. Scoring rewards how many pairs of
// events a submission puts in the right relative order.
type Tidslinje struct{}

type tidslinjeSubmission struct {
	Order     []int `json:"order"`
	Submitted int   `json:"-"`
}

// TidslinjeData is the game-data variant for one tidslinje session.
// Events holds the true chronological order; Display is the shuffled
// presentation order broadcast to players, as indices into Events.
type TidslinjeData struct {
	Events      []string                       `json:"-"`
	Display     []int                          `json:"display"`
	Countdown   int                            `json:"countdown"`
	RoundActive bool                           `json:"roundActive"`
	Submissions map[string]tidslinjeSubmission `json:"-"`
}

func (Tidslinje) Initialize(players []*room.Player, config map[string]any) any {
	return &TidslinjeData{Submissions: make(map[string]tidslinjeSubmission)}
}

func (g Tidslinje) HandleHostAction(r *room.Room, action string, data map[string]any) *Effect {
	d, ok := r.GameData.(*TidslinjeData)
	if !ok {
		return nil
	}

	switch action {
	case "start-round":
		events, ok := getStringSlice(data, "events")
		if !ok || len(events) < 2 {
			return nil
		}
		countdown, _ := getInt(data, "countdown")

		d.Events = events
		d.Display = shuffledIndices(len(events))
		d.Countdown = countdown
		d.RoundActive = true
		d.Submissions = make(map[string]tidslinjeSubmission)

		shown := make([]map[string]any, len(d.Display))
		for pos, idx := range d.Display {
			shown[pos] = map[string]any{"index": idx, "text": events[idx]}
		}

		return Broadcast("round-started", map[string]any{
			"events":    shown,
			"countdown": countdown,
		})

	case "end-round":
		if !d.RoundActive {
			return nil
		}
		d.RoundActive = false

		results := make([]map[string]any, 0, len(d.Submissions))
		for id, sub := range d.Submissions {
			points := orderingScore(sub.Order)
			if p, ok := r.Player(id); ok {
				p.Score += points
			}
			results = append(results, map[string]any{
				"playerId": id,
				"order":    sub.Order,
				"points":   points,
			})
		}

		return Broadcast("round-ended", map[string]any{
			"trueOrder": d.Events,
			"results":   results,
			"players":   r.Players,
		})
	}
	return nil
}

func (g Tidslinje) HandlePlayerAction(r *room.Room, playerID, action string, data map[string]any) *Effect {
	if action != "submit-order" {
		return nil
	}
	d, ok := r.GameData.(*TidslinjeData)
	if !ok || !d.RoundActive {
		return nil
	}
	if _, submitted := d.Submissions[playerID]; submitted {
		return nil
	}

	order, ok := getIntSlice(data, "order")
	if !ok || !isPermutation(order, len(d.Events)) {
		return nil
	}

	d.Submissions[playerID] = tidslinjeSubmission{Order: order, Submitted: len(d.Submissions)}

	return Broadcast("player-submitted", map[string]any{
		"playerId":  playerID,
		"submitted": len(d.Submissions),
	}).WithPlayer("order-received", map[string]any{"order": order})
}

// orderingScore measures pairwise agreement with the true chronology:
// 100 times the share of event pairs the submission places in the
// correct relative order. The true order is ascending indices, so a
// pair is correct when the earlier-listed index is the smaller one.
func orderingScore(order []int) int {
	n := len(order)
	if n < 2 {
		return 0
	}
	pairs := n * (n - 1) / 2
	correct := 0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if order[i] < order[j] {
				correct++
			}
		}
	}
	return 100 * correct / pairs
}

// isPermutation reports whether order contains each of 0..n-1 exactly
// once.
func isPermutation(order []int, n int) bool {
	if len(order) != n || n == 0 {
		return false
	}
	seen := make([]bool, n)
	for _, idx := range order {
		if idx < 0 || idx >= n || seen[idx] {
			return false
		}
		seen[idx] = true
	}
	return true
}

// shuffledIndices returns 0..n-1 in Fisher-Yates shuffled order for
// presentation; re-shuffles once if the shuffle lands on the true
// order, so the round is never pre-solved.
func shuffledIndices(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	for attempt := 0; attempt < 2; attempt++ {
		for i := n - 1; i > 0; i-- {
			j := int(fastrand.Uint32n(uint32(i + 1)))
			out[i], out[j] = out[j], out[i]
		}
		if !isSorted(out) {
			break
		}
	}
	return out
}

func isSorted(order []int) bool {
	for i := 1; i < len(order); i++ {
		if order[i] < order[i-1] {
			return false
		}
	}
	return true
}
