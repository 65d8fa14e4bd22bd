package engine

// BuzzerQueue arbitrates who may act next in the buzz-to-answer games.
// The first buzz wins the active slot; later buzzes queue FIFO. A miss
// can lock its player out for the rest of the round.
//
// Invariant: Active never appears in Queue, and a locked-out player is
// never Active.
type BuzzerQueue struct {
	Active    string          `json:"active"`
	Queue     []string        `json:"queue"`
	LockedOut map[string]bool `json:"lockedOut"`
}

func NewBuzzerQueue() *BuzzerQueue {
	return &BuzzerQueue{LockedOut: make(map[string]bool)}
}

// BuzzOutcome classifies a single buzz attempt.
type BuzzOutcome int

const (
	// BuzzRejected means the buzz was ignored: the player is locked
	// out, already active, or already queued.
	BuzzRejected BuzzOutcome = iota
	// BuzzWon means the player now holds the active slot.
	BuzzWon
	// BuzzQueued means the player joined the FIFO queue.
	BuzzQueued
)

// Buzz registers a buzz attempt by the given player.
func (b *BuzzerQueue) Buzz(playerID string) BuzzOutcome {
	if b.LockedOut[playerID] || b.Active == playerID {
		return BuzzRejected
	}
	for _, id := range b.Queue {
		if id == playerID {
			return BuzzRejected
		}
	}
	if b.Active == "" {
		b.Active = playerID
		return BuzzWon
	}
	b.Queue = append(b.Queue, playerID)
	return BuzzQueued
}

// Advance clears the active slot, optionally locking the departing
// player out, and promotes the first queued player that is not locked
// out. Returns the new active player, or "" when the queue is empty.
func (b *BuzzerQueue) Advance(lockCurrent bool) string {
	if lockCurrent && b.Active != "" {
		b.LockedOut[b.Active] = true
	}
	b.Active = ""
	for len(b.Queue) > 0 {
		next := b.Queue[0]
		b.Queue = b.Queue[1:]
		if !b.LockedOut[next] {
			b.Active = next
			break
		}
	}
	return b.Active
}

// Position returns the 1-based queue position of the player, or 0 if
// the player is not queued.
func (b *BuzzerQueue) Position(playerID string) int {
	for i, id := range b.Queue {
		if id == playerID {
			return i + 1
		}
	}
	return 0
}

// Reset clears the active slot, the queue and all lockouts for a new
// round.
func (b *BuzzerQueue) Reset() {
	b.Active = ""
	b.Queue = nil
	b.LockedOut = make(map[string]bool)
}
