package room

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestCreateRoom_CodesUniqueAndWellFormed(t *testing.T) {
	g := NewRegistry(4)
	seen := make(map[string]bool)

	for i := 0; i < 500; i++ {
		r, err := g.CreateRoom(fmt.Sprintf("host%d", i), "")
		require.NoError(t, err)
		require.Len(t, r.Code, 4)
		for _, c := range r.Code {
			assert.True(t, strings.ContainsRune(Alphabet, c), "code %q contains %q outside the alphabet", r.Code, c)
		}
		assert.False(t, seen[r.Code], "code %q issued twice", r.Code)
		seen[r.Code] = true
	}
	assert.Equal(t, 500, g.Count())
}

func TestCreateRoom_EmptyHost(t *testing.T) {
	g := NewRegistry(4)
	_, err := g.CreateRoom("", "")
	assert.Error(t, err)
}

func TestCreateRoom_WithGamePreselected(t *testing.T) {
	g := NewRegistry(4)
	r, err := g.CreateRoom("host", "quiz")
	require.NoError(t, err)
	assert.Equal(t, "quiz", r.Game)
	assert.Equal(t, StateLobbyGameSelected, r.GameState)
}

func TestJoinRoom(t *testing.T) {
	g := NewRegistry(4)
	r, err := g.CreateRoom("host", "")
	require.NoError(t, err)

	joined, err := g.JoinRoom(r.Code, "p1", "Kari")
	require.NoError(t, err)
	assert.Equal(t, r, joined)
	assert.Equal(t, StateLobby, r.GameState)

	p, ok := r.Player("p1")
	require.True(t, ok)
	assert.Equal(t, "Kari", p.Name)
	assert.True(t, p.IsConnected)
	assert.False(t, p.IsBot)
}

func TestJoinRoom_Idempotent(t *testing.T) {
	g := NewRegistry(4)
	r, _ := g.CreateRoom("host", "")

	first, err := g.JoinRoom(r.Code, "p1", "Kari")
	require.NoError(t, err)
	second, err := g.JoinRoom(r.Code, "p1", "Kari")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, r.Players, 1)
}

func TestJoinRoom_NotFound(t *testing.T) {
	g := NewRegistry(4)
	_, err := g.JoinRoom("ZZZZ", "p1", "Kari")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestJoinRoom_PreservesJoinOrder(t *testing.T) {
	g := NewRegistry(4)
	r, _ := g.CreateRoom("host", "")
	for i := 0; i < 5; i++ {
		_, err := g.JoinRoom(r.Code, fmt.Sprintf("p%d", i), fmt.Sprintf("Spiller %d", i))
		require.NoError(t, err)
	}
	for i, p := range r.Players {
		assert.Equal(t, fmt.Sprintf("p%d", i), p.ID)
	}
}

func TestAddBot(t *testing.T) {
	g := NewRegistry(4)
	r, _ := g.CreateRoom("host", "")

	_, err := g.AddBot(r.Code, "bot-1", "Robo-Ola")
	require.NoError(t, err)

	p, ok := r.Player("bot-1")
	require.True(t, ok)
	assert.True(t, p.IsBot)

	byConn, ok := g.RoomForConn("bot-1")
	require.True(t, ok)
	assert.Equal(t, r, byConn)
}

func TestKickPlayer(t *testing.T) {
	g := NewRegistry(4)
	r, _ := g.CreateRoom("host", "")
	_, _ = g.JoinRoom(r.Code, "p1", "Kari")

	assert.True(t, g.KickPlayer(r.Code, "p1"))
	assert.Len(t, r.Players, 0)
	_, ok := g.RoomForConn("p1")
	assert.False(t, ok)

	assert.False(t, g.KickPlayer(r.Code, "p1"))
	assert.False(t, g.KickPlayer("ZZZZ", "p1"))
}

func TestRemovePlayer_Ordinary(t *testing.T) {
	g := NewRegistry(4)
	r, _ := g.CreateRoom("host", "")
	_, _ = g.JoinRoom(r.Code, "p1", "Kari")

	wasHost, affected, ok := g.RemovePlayer("p1")
	require.True(t, ok)
	assert.False(t, wasHost)
	assert.Equal(t, r, affected)
	assert.Len(t, r.Players, 0)
	assert.Equal(t, 1, g.Count())
}

func TestRemovePlayer_HostTearsDownRoom(t *testing.T) {
	g := NewRegistry(4)
	r, _ := g.CreateRoom("host", "")
	_, _ = g.JoinRoom(r.Code, "p1", "Kari")

	wasHost, affected, ok := g.RemovePlayer("host")
	require.True(t, ok)
	assert.True(t, wasHost)
	assert.Equal(t, r.Code, affected.Code)
	assert.Equal(t, 0, g.Count())

	// Players of a torn-down room are unindexed too.
	_, ok = g.RoomForConn("p1")
	assert.False(t, ok)
}

func TestRemovePlayer_Idempotent(t *testing.T) {
	g := NewRegistry(4)
	r, _ := g.CreateRoom("host", "")
	_, _ = g.JoinRoom(r.Code, "p1", "Kari")

	_, _, ok := g.RemovePlayer("p1")
	require.True(t, ok)
	_, _, ok = g.RemovePlayer("p1")
	assert.False(t, ok)
	_, _, ok = g.RemovePlayer("never-joined")
	assert.False(t, ok)
}

func TestCleanupOldRooms(t *testing.T) {
	g := NewRegistry(4)
	old, _ := g.CreateRoom("host1", "")
	young, _ := g.CreateRoom("host2", "")
	old.CreatedAt = time.Now().Add(-2 * time.Hour)

	removed := g.CleanupOldRooms(time.Hour)
	assert.Equal(t, []string{old.Code}, removed)

	_, ok := g.Get(old.Code)
	assert.False(t, ok)
	got, ok := g.Get(young.Code)
	require.True(t, ok)
	assert.Equal(t, young, got)

	_, ok = g.RoomForConn("host1")
	assert.False(t, ok)
}

func TestExpiredCodes_DoesNotRemove(t *testing.T) {
	g := NewRegistry(4)
	old, _ := g.CreateRoom("host1", "")
	old.CreatedAt = time.Now().Add(-2 * time.Hour)

	codes := g.ExpiredCodes(time.Hour)
	assert.Equal(t, []string{old.Code}, codes)
	assert.Equal(t, 1, g.Count())
}

func TestPropertyRegistryIndexConsistent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := NewRegistry(4)

		numRooms := rapid.IntRange(1, 8).Draw(t, "num_rooms")
		var codes []string
		for i := 0; i < numRooms; i++ {
			r, err := g.CreateRoom(fmt.Sprintf("host%d", i), "")
			if err != nil {
				t.Fatalf("create: %v", err)
			}
			codes = append(codes, r.Code)
		}

		numJoins := rapid.IntRange(0, 30).Draw(t, "num_joins")
		for i := 0; i < numJoins; i++ {
			code := codes[rapid.IntRange(0, numRooms-1).Draw(t, "join_room")]
			id := fmt.Sprintf("p%d", rapid.IntRange(0, 15).Draw(t, "join_player"))
			_, _ = g.JoinRoom(code, id, "Spiller "+id)
		}

		numRemoves := rapid.IntRange(0, 10).Draw(t, "num_removes")
		for i := 0; i < numRemoves; i++ {
			id := fmt.Sprintf("p%d", rapid.IntRange(0, 15).Draw(t, "remove_player"))
			_, _, _ = g.RemovePlayer(id)
		}

		// Every indexed connection must resolve to a live room that
		// actually contains it (or hosts it).
		for _, code := range codes {
			r, ok := g.Get(code)
			if !ok {
				continue
			}
			for _, p := range r.Players {
				got, ok := g.RoomForConn(p.ID)
				if !ok || got.Code != r.Code {
					t.Fatalf("player %s of room %s not indexed to its room", p.ID, r.Code)
				}
			}
			got, ok := g.RoomForConn(r.HostID)
			if !ok || got.Code != r.Code {
				t.Fatalf("host of room %s not indexed to its room", r.Code)
			}
		}
	})
}
