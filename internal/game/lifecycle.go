package game

import (
	"errors"
	"fmt"
	"log"
	"time"
)

var (
	ErrUnknownConnection = errors.New("UNKNOWN_CONNECTION: Connection is not registered")
	ErrAlreadyInRoom     = errors.New("ALREADY_IN_ROOM: Leave your current room first")
	ErrInvalidGameType   = errors.New("INVALID_GAME_TYPE: Unknown game type")
	ErrRoomNotFound      = errors.New("ROOM_NOT_FOUND: Room not found")
	ErrRoomFull          = errors.New("ROOM_FULL: Room is full")
	ErrGameAlreadyEnded  = errors.New("GAME_ALREADY_ENDED: This game has already ended")
	ErrNotInRoom         = errors.New("NOT_IN_ROOM: You are not in a room")
	ErrNotHost           = errors.New("NOT_HOST: Only the host can do that")
	ErrNotEnoughPlayers  = errors.New("NOT_ENOUGH_PLAYERS: Need more players to start")
	ErrGameInProgress    = errors.New("GAME_IN_PROGRESS: The game has already started")
	ErrNotYourTurn       = errors.New("NOT_YOUR_TURN: It is not your turn")
	ErrInvalidMove       = errors.New("INVALID_MOVE: That move is not allowed")
	ErrNotInRound        = errors.New("NOT_IN_ROUND: No round is in progress")
)

// RegisterPlayer records a fresh connection. Identity comes from the
// transport layer; a guest gets a generated name there, not here.
func (s *Service) RegisterPlayer(connID, userID, username, avatar string) *Player {
	p := &Player{
		ID:       connID,
		UserID:   userID,
		Username: username,
		Avatar:   avatar,
		JoinedAt: time.Now(),
	}
	s.mu.Lock()
	s.players[connID] = p
	s.mu.Unlock()
	return p
}

// Disconnect tears a connection down: leave whatever room it was in, then
// forget the player.
func (s *Service) Disconnect(connID string) {
	s.LeaveRoom(connID)
	s.mu.Lock()
	delete(s.players, connID)
	s.mu.Unlock()
}

func (s *Service) CreateRoom(connID string, t GameType) error {
	p, ok := s.FindPlayer(connID)
	if !ok {
		return ErrUnknownConnection
	}
	if !ValidGameType(t) {
		return ErrInvalidGameType
	}
	if p.RoomCode != "" {
		return ErrAlreadyInRoom
	}

	s.mu.Lock()
	code := s.newRoomCode()
	room := &Room{
		Code:     code,
		GameType: t,
		Config:   ConfigFor(t),
		HostID:   connID,
		Members:  []string{connID},
		Phase:    PhaseWaiting,
	}
	room.engine = s.engineFor(t)
	s.rooms[code] = room
	s.mu.Unlock()

	room.mu.Lock()
	defer room.mu.Unlock()
	p.RoomCode = code
	p.CanParticipate = true

	s.sendTo(connID, "room_created", RoomCreatedPayload{RoomID: code, GameType: t})
	s.broadcastPlayerList(room)
	log.Printf("Room %s created (%s) by %s", code, t, p.Username)
	return nil
}

func (s *Service) JoinRoom(connID, code string) error {
	p, ok := s.FindPlayer(connID)
	if !ok {
		return ErrUnknownConnection
	}
	if p.RoomCode != "" {
		return ErrAlreadyInRoom
	}
	room, ok := s.FindRoom(code)
	if !ok {
		return ErrRoomNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()
	if room.closed {
		return ErrRoomNotFound
	}
	if room.Phase == PhaseGameEnd {
		return ErrGameAlreadyEnded
	}
	if len(room.Members) >= room.Config.MaxPlayers {
		return ErrRoomFull
	}

	// A joiner during the start countdown is in before the first turn builds
	// the order, so only a truly mid-game join is restricted.
	lateJoin := room.Phase != PhaseWaiting && room.Phase != PhaseStarting
	room.Members = append(room.Members, connID)
	p.RoomCode = code
	p.Score = 0
	p.HasAnswered = false
	p.IsActive = false
	p.CanParticipate = !lateJoin

	s.sendTo(connID, "room_joined", RoomJoinedPayload{
		RoomID:   code,
		GameType: room.GameType,
		Players:  s.playerInfos(room),
	})
	s.broadcast(room, "player_joined", PlayerJoinedPayload{Player: s.playerInfo(room, p)}, connID)
	s.broadcastPlayerList(room)
	if lateJoin {
		s.systemChat(room, fmt.Sprintf("%s joined mid-game and can play from the next turn.", p.Username))
	}
	log.Printf("Player %s joined room %s", p.Username, code)
	return nil
}

// LeaveRoom is idempotent. It covers both the explicit leave message and the
// disconnect path.
func (s *Service) LeaveRoom(connID string) {
	p, ok := s.FindPlayer(connID)
	if !ok || p.RoomCode == "" {
		return
	}
	room, ok := s.FindRoom(p.RoomCode)
	if !ok {
		p.RoomCode = ""
		return
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	wasHost := room.HostID == connID
	leftInfo := s.playerInfo(room, p)
	room.removeMember(connID)

	if len(room.Members) == 0 {
		room.closed = true
		room.timers.cancelAll()
		s.mu.Lock()
		delete(s.rooms, room.Code)
		s.mu.Unlock()
		s.resetPlayerAfterLeave(p)
		log.Printf("Room %s deleted (empty)", room.Code)
		return
	}

	newHost := ""
	if wasHost {
		room.HostID = room.Members[0]
		newHost = room.HostID
	}
	s.broadcast(room, "player_left", PlayerLeftPayload{Player: leftInfo, NewHost: newHost})
	if newHost != "" {
		if h, ok := s.FindPlayer(newHost); ok {
			s.systemChat(room, fmt.Sprintf("%s is now the host.", h.Username))
		}
	}

	inRound := room.Phase == PhasePicking || room.Phase == PhasePlaying ||
		room.Phase == PhaseRoundEnd
	if inRound {
		room.engine.HandleActiveDisconnect(room, p)
	}
	s.resetPlayerAfterLeave(p)

	if room.Phase != PhaseWaiting && room.Phase != PhaseGameEnd &&
		len(room.Members) < room.Config.MinPlayers {
		s.pauseRoom(room)
	}
	s.broadcastPlayerList(room)
	log.Printf("Player %s left room %s", p.Username, room.Code)
}

func (s *Service) resetPlayerAfterLeave(p *Player) {
	p.RoomCode = ""
	p.Score = 0
	p.IsActive = false
	p.HasAnswered = false
	p.CanParticipate = false
	p.LastGuessAt = time.Time{}
}

// pauseRoom drops a running game back to the lobby when the head count falls
// below the minimum. Caller must hold room.mu.
func (s *Service) pauseRoom(room *Room) {
	room.timers.cancelAll()
	room.Phase = PhaseWaiting
	room.Round = 0
	room.TurnOrder = nil
	room.TurnIndex = 0
	room.Word = ""
	room.WordChoices = nil
	room.TimeLeft = 0
	room.Reveal = RevealState{}
	room.Board = BoardState{}
	room.Arena = ArenaState{}
	for _, m := range s.playersInRoom(room) {
		m.IsActive = false
		m.HasAnswered = false
		m.CanParticipate = true
	}
	s.systemChat(room, "Not enough players to continue. Game paused.")
}

// PlayAgain resets a finished game back to the lobby. Host only.
func (s *Service) PlayAgain(connID string) error {
	p, ok := s.FindPlayer(connID)
	if !ok {
		return ErrUnknownConnection
	}
	room, ok := s.FindRoom(p.RoomCode)
	if !ok {
		return ErrNotInRoom
	}

	room.mu.Lock()
	defer room.mu.Unlock()
	if room.HostID != connID {
		return ErrNotHost
	}
	if room.Phase != PhaseGameEnd {
		return ErrGameInProgress
	}

	room.timers.cancelAll()
	room.Phase = PhaseWaiting
	room.Round = 0
	room.TurnOrder = nil
	room.TurnIndex = 0
	room.Word = ""
	room.WordChoices = nil
	room.TimeLeft = 0
	room.Reveal = RevealState{}
	room.Board = BoardState{}
	room.Arena = ArenaState{}
	for _, m := range s.playersInRoom(room) {
		m.Score = 0
		m.IsActive = false
		m.HasAnswered = false
		m.CanParticipate = true
	}
	s.broadcastPlayerList(room)
	s.systemChat(room, "The host started a new game lobby.")
	return nil
}
