package game

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRoomCodeFormat(t *testing.T) {
	s, _ := newTestService()

	for i := 0; i < 100; i++ {
		s.mu.Lock()
		code := s.newRoomCode()
		s.mu.Unlock()

		assert.Equal(t, roomCodeLength, len(code))
		for _, ch := range code {
			assert.True(t, strings.ContainsRune(roomCodeAlphabet, ch), "unexpected character %q in %s", ch, code)
		}
		// Ambiguous characters never appear.
		assert.NotContains(t, code, "0")
		assert.NotContains(t, code, "O")
		assert.NotContains(t, code, "1")
		assert.NotContains(t, code, "I")
	}
}

func TestNewRoomCodeAvoidsLiveRooms(t *testing.T) {
	s, _ := newTestService()

	s.mu.Lock()
	taken := s.newRoomCode()
	s.rooms[taken] = &Room{Code: taken}
	for i := 0; i < 500; i++ {
		assert.NotEqual(t, taken, s.newRoomCode())
	}
	s.mu.Unlock()
}

func TestBroadcastExcludes(t *testing.T) {
	s, sender := newTestService()
	_, ids := setupRoom(t, s, TypeDoodle, 3)
	room, _ := s.FindRoom(mustRoomCode(t, s, ids[0]))
	sender.reset()

	room.mu.Lock()
	s.broadcast(room, "test_event", struct{}{}, ids[1])
	room.mu.Unlock()

	assert.Len(t, sender.forConn(ids[0], "test_event"), 1)
	assert.Len(t, sender.forConn(ids[1], "test_event"), 0)
	assert.Len(t, sender.forConn(ids[2], "test_event"), 1)
}

func TestPlayerInfoMapping(t *testing.T) {
	s, _ := newTestService()
	_, ids := setupRoom(t, s, TypeDoodle, 2)
	room, _ := s.FindRoom(mustRoomCode(t, s, ids[0]))

	room.mu.Lock()
	infos := s.playerInfos(room)
	room.mu.Unlock()

	assert.Len(t, infos, 2)
	assert.Equal(t, ids[0], infos[0].SocketID)
	assert.Equal(t, "Alice", infos[0].Username)
	assert.True(t, infos[0].IsHost)
	assert.False(t, infos[1].IsHost)
	assert.True(t, infos[0].CanGuess)
}

func mustRoomCode(t *testing.T, s *Service, connID string) string {
	t.Helper()
	p, ok := s.FindPlayer(connID)
	if !ok || p.RoomCode == "" {
		t.Fatalf("player %s is not in a room", connID)
	}
	return p.RoomCode
}
