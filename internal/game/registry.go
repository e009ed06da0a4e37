package game

import (
	"math/rand"
	"sync"
)

// Sender delivers one event to one connection. The transport layer implements
// it; delivery failures are its problem, the core never sees them.
type Sender interface {
	Send(connID string, event string, payload any)
}

// Ambiguous characters (0/O, 1/I) are excluded from room codes.
const (
	roomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	roomCodeLength   = 6
)

// Service owns every live room and player. The service mutex guards only the
// two maps; per-room state is guarded by each room's own mutex.
type Service struct {
	mu      sync.RWMutex
	rooms   map[string]*Room
	players map[string]*Player

	sender  Sender
	history HistoryStore
}

func NewService(sender Sender, history HistoryStore) *Service {
	return &Service{
		rooms:   make(map[string]*Room),
		players: make(map[string]*Player),
		sender:  sender,
		history: history,
	}
}

func (s *Service) FindPlayer(connID string) (*Player, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.players[connID]
	return p, ok
}

func (s *Service) FindRoom(code string) (*Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[code]
	return r, ok
}

// newRoomCode returns a code no live room holds. Caller must hold s.mu.
func (s *Service) newRoomCode() string {
	for {
		b := make([]byte, roomCodeLength)
		for i := range b {
			b[i] = roomCodeAlphabet[rand.Intn(len(roomCodeAlphabet))]
		}
		code := string(b)
		if _, taken := s.rooms[code]; !taken {
			return code
		}
	}
}

// playersInRoom resolves the member ids to live players, preserving join
// order. Caller must hold room.mu.
func (s *Service) playersInRoom(room *Room) []*Player {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Player, 0, len(room.Members))
	for _, id := range room.Members {
		if p, ok := s.players[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

func (s *Service) playerInfo(room *Room, p *Player) PlayerInfo {
	return PlayerInfo{
		SocketID:   p.ID,
		Username:   p.Username,
		Score:      p.Score,
		IsHost:     p.ID == room.HostID,
		IsDrawing:  p.IsActive,
		HasGuessed: p.HasAnswered,
		CanGuess:   p.CanParticipate,
		Avatar:     p.Avatar,
	}
}

func (s *Service) playerInfos(room *Room) []PlayerInfo {
	players := s.playersInRoom(room)
	out := make([]PlayerInfo, 0, len(players))
	for _, p := range players {
		out = append(out, s.playerInfo(room, p))
	}
	return out
}

// broadcast fans an event out to every member except the excluded ids.
// Caller must hold room.mu.
func (s *Service) broadcast(room *Room, event string, payload any, exclude ...string) {
	for _, id := range room.Members {
		skip := false
		for _, ex := range exclude {
			if id == ex {
				skip = true
				break
			}
		}
		if !skip {
			s.sender.Send(id, event, payload)
		}
	}
}

func (s *Service) sendTo(connID string, event string, payload any) {
	s.sender.Send(connID, event, payload)
}

func (s *Service) systemChat(room *Room, text string) {
	s.broadcast(room, "chat_message", ChatMessagePayload{Player: "System", Text: text, IsSystem: true})
}

func (s *Service) broadcastPlayerList(room *Room) {
	s.broadcast(room, "player_list", PlayerListPayload{Players: s.playerInfos(room)})
}
