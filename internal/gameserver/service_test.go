package gameserver

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spillrom/spillrom/internal/game/room"
)

type sentMessage struct {
	connID  string
	event   string
	payload any
}

// recorder is a Sender that captures everything for assertions.
type recorder struct {
	mu     sync.Mutex
	sent   []sentMessage
	closed []string
}

func (r *recorder) Send(connID, event string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentMessage{connID: connID, event: event, payload: payload})
}

func (r *recorder) CloseConn(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = append(r.closed, connID)
}

func (r *recorder) eventsFor(connID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, m := range r.sent {
		if m.connID == connID {
			out = append(out, m.event)
		}
	}
	return out
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = nil
	r.closed = nil
}

func newTestService(t *testing.T) (*Service, *room.Registry, *recorder) {
	t.Helper()
	reg := room.NewRegistry(4)
	rec := &recorder{}
	return NewService(reg, rec, 8, zap.NewNop()), reg, rec
}

func TestCreateRoom(t *testing.T) {
	svc, reg, rec := newTestService(t)

	r, err := svc.CreateRoom("host", "quiz")
	require.NoError(t, err)
	assert.Equal(t, 1, reg.Count())
	assert.Equal(t, []string{"room-created"}, rec.eventsFor("host"))
	assert.Equal(t, "quiz", r.Game)
}

func TestJoin(t *testing.T) {
	svc, _, rec := newTestService(t)
	r, _ := svc.CreateRoom("host", "")
	rec.reset()

	svc.Join("p1", r.Code, "Kari")

	assert.Equal(t, []string{"room-joined", "player-joined"}, rec.eventsFor("p1"))
	assert.Equal(t, []string{"player-joined"}, rec.eventsFor("host"))
}

func TestJoin_UnknownRoomDenied(t *testing.T) {
	svc, _, rec := newTestService(t)

	svc.Join("p1", "ZZZZ", "Kari")
	assert.Equal(t, []string{"join-denied"}, rec.eventsFor("p1"))
}

func TestActionEffectFanOut(t *testing.T) {
	svc, _, rec := newTestService(t)
	r, _ := svc.CreateRoom("host", "quiz")
	svc.Join("p1", r.Code, "Kari")
	svc.Join("p2", r.Code, "Per")
	svc.HostAction("host", "start-game", nil)
	rec.reset()

	// show-question broadcasts to the room and sends the answer key to
	// the host only.
	svc.HostAction("host", "show-question", map[string]any{
		"question": "Hovedstad i Frankrike?",
		"answers":  []any{"Paris"},
	})
	assert.Equal(t, []string{"question-shown", "answer-key"}, rec.eventsFor("host"))
	assert.Equal(t, []string{"question-shown"}, rec.eventsFor("p1"))
	assert.Equal(t, []string{"question-shown"}, rec.eventsFor("p2"))

	rec.reset()

	// answer broadcasts progress and confirms to the acting player only.
	svc.PlayerAction("p1", "answer", map[string]any{"answer": "Paris"})
	assert.Equal(t, []string{"player-answered", "answer-received"}, rec.eventsFor("p1"))
	assert.Equal(t, []string{"player-answered"}, rec.eventsFor("p2"))
}

func TestNilEffectSendsNothing(t *testing.T) {
	svc, _, rec := newTestService(t)
	r, _ := svc.CreateRoom("host", "quiz")
	svc.Join("p1", r.Code, "Kari")
	rec.reset()

	svc.PlayerAction("p1", "no-such-action", nil)
	svc.HostAction("host", "reveal-answer", nil)
	svc.PlayerAction("ghost", "answer", map[string]any{"answer": "x"})

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Empty(t, rec.sent)
}

func TestDisconnect_PlayerAnnounced(t *testing.T) {
	svc, reg, rec := newTestService(t)
	r, _ := svc.CreateRoom("host", "")
	svc.Join("p1", r.Code, "Kari")
	svc.Join("p2", r.Code, "Per")
	rec.reset()

	svc.Disconnect("p1")

	assert.Equal(t, []string{"player-left"}, rec.eventsFor("host"))
	assert.Equal(t, []string{"player-left"}, rec.eventsFor("p2"))
	assert.Empty(t, rec.eventsFor("p1"))
	assert.Equal(t, 1, reg.Count())
}

func TestDisconnect_HostClosesRoom(t *testing.T) {
	svc, reg, rec := newTestService(t)
	r, _ := svc.CreateRoom("host", "")
	svc.Join("p1", r.Code, "Kari")
	rec.reset()

	svc.Disconnect("host")

	assert.Equal(t, []string{"room-closed"}, rec.eventsFor("p1"))
	assert.Contains(t, rec.closed, "p1")
	assert.Equal(t, 0, reg.Count())
}

func TestDisconnect_UnknownConnectionIgnored(t *testing.T) {
	svc, _, rec := newTestService(t)
	svc.Disconnect("ghost")

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Empty(t, rec.sent)
}

func TestEnableAndDisableDemo(t *testing.T) {
	svc, _, rec := newTestService(t)
	r, _ := svc.CreateRoom("host", "quiz")
	rec.reset()

	require.NoError(t, svc.EnableDemo(r.Code, 3))
	assert.Len(t, r.Players, 3)
	assert.Equal(t, []string{"players-updated"}, rec.eventsFor("host"))

	require.NoError(t, svc.DisableDemo(r.Code))
	assert.Empty(t, r.Players)

	assert.ErrorIs(t, svc.EnableDemo("ZZZZ", 2), room.ErrRoomNotFound)
	assert.ErrorIs(t, svc.DisableDemo("ZZZZ"), room.ErrRoomNotFound)
}

func TestBotsDoNotGetDirectSends(t *testing.T) {
	svc, _, rec := newTestService(t)
	r, _ := svc.CreateRoom("host", "quiz")
	require.NoError(t, svc.EnableDemo(r.Code, 2))
	rec.reset()

	svc.HostAction("host", "start-game", nil)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	for _, m := range rec.sent {
		assert.Equal(t, "host", m.connID, "bots have no socket to deliver to")
	}
}

func TestSweep(t *testing.T) {
	svc, reg, _ := newTestService(t)
	old, _ := svc.CreateRoom("host1", "quiz")
	young, _ := svc.CreateRoom("host2", "quiz")
	require.NoError(t, svc.EnableDemo(old.Code, 2))
	old.CreatedAt = time.Now().Add(-2 * time.Hour)

	removed := svc.Sweep(time.Hour)
	assert.Equal(t, 1, removed)

	_, ok := reg.Get(old.Code)
	assert.False(t, ok)
	_, ok = reg.Get(young.Code)
	assert.True(t, ok)

	// Demo state for the swept room is gone; no stray timers remain.
	assert.False(t, svc.bots.IsActive(old.Code))
}
