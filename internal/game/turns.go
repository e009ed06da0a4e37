package game

import (
	"fmt"
	"log"
)

// StartGame moves a lobby into its first turn. Host only.
func (s *Service) StartGame(connID string) error {
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
	if room.Phase != PhaseWaiting {
		return ErrGameInProgress
	}
	if len(room.Members) < room.Config.MinPlayers {
		return ErrNotEnoughPlayers
	}

	room.Round = 0
	room.TurnIndex = 0
	room.TurnOrder = nil
	for _, m := range s.playersInRoom(room) {
		m.Score = 0
		m.RoundScore = 0
		m.HasAnswered = false
		m.IsActive = false
		m.CanParticipate = true
	}
	// Claims the room before the delayed first turn so a second start_game in
	// the window is rejected.
	room.Phase = PhaseStarting
	s.broadcast(room, "game_starting", GameStartingPayload{TotalRounds: room.Config.TotalRounds})
	log.Printf("Room %s starting %s game with %d players", room.Code, room.GameType, len(room.Members))

	room.timers.scheduleAfter(room.Config.StartDelay, func(gen uint64) {
		room.mu.Lock()
		defer room.mu.Unlock()
		if room.closed || !room.timers.delayAlive(gen) {
			return
		}
		s.beginTurn(room)
	})
	return nil
}

// beginTurn advances to the next turn. For the word modes that means the next
// holder in the shuffled order, wrapping into a new round; the board and
// reflex modes count whole rounds. Caller must hold room.mu.
func (s *Service) beginTurn(room *Room) {
	if room.closed || room.Phase == PhaseGameEnd {
		return
	}
	room.timers.cancelAll()

	for _, m := range s.playersInRoom(room) {
		m.HasAnswered = false
		m.IsActive = false
		m.RoundScore = 0
		m.CanParticipate = true
	}
	room.Word = ""
	room.WordChoices = nil
	room.Reveal = RevealState{}

	switch room.GameType {
	case TypeTicTacToe, TypeFruitNinja:
		room.Round++
		if room.Round > room.Config.TotalRounds {
			s.endGame(room)
			return
		}
		room.engine.StartRound(room)
		return
	}

	if room.TurnIndex >= len(room.TurnOrder) || len(room.TurnOrder) == 0 {
		room.Round++
		if room.Round > room.Config.TotalRounds {
			s.endGame(room)
			return
		}
		room.TurnOrder = shuffleStrings(room.Members)
		room.TurnIndex = 0
	}

	holder := room.TurnOrder[room.TurnIndex]
	room.TurnIndex++
	hp, ok := s.FindPlayer(holder)
	if !ok {
		// Departed holder still in the order; skipping is bounded by the
		// member count.
		s.beginTurn(room)
		return
	}

	hp.IsActive = true
	room.engine.StartRound(room)
}

// activePlayer returns the member currently holding the active role.
// Caller must hold room.mu.
func (s *Service) activePlayer(room *Room) (*Player, bool) {
	for _, m := range s.playersInRoom(room) {
		if m.IsActive {
			return m, true
		}
	}
	return nil, false
}

// beginPickPhase hands the active holder their word choices and starts the
// pick clock. Shared by the word modes. Caller must hold room.mu.
func (s *Service) beginPickPhase(room *Room, hp *Player) {
	room.Phase = PhasePicking
	room.WordChoices = pickRandomWords(room.Config.WordChoices)
	s.broadcastPlayerList(room)
	s.sendTo(hp.ID, "pick_word", PickWordPayload{Words: room.WordChoices})
	s.systemChat(room, fmt.Sprintf("%s is choosing a word...", hp.Username))

	s.startRoomCountdown(room, room.Config.PickTime, nil, func(room *Room) {
		if room.Phase != PhasePicking {
			return
		}
		// Pick timeout: the first choice is taken automatically.
		if err := room.engine.SelectSecret(room, hp, room.WordChoices[0]); err != nil {
			log.Printf("Room %s auto-pick failed: %v", room.Code, err)
		}
	})
}

// startRoomCountdown drives TimeLeft down once per second, broadcasting
// timer_update, until expiry or cancellation. onTick and onExpire run with
// the room lock held.
func (s *Service) startRoomCountdown(room *Room, seconds int, onTick, onExpire func(*Room)) {
	room.TimeLeft = seconds
	room.timers.startCountdown(func(gen uint64) bool {
		room.mu.Lock()
		defer room.mu.Unlock()
		if room.closed || !room.timers.countdownAlive(gen) {
			return false
		}
		room.TimeLeft--
		s.broadcast(room, "timer_update", TimerUpdatePayload{TimeLeft: room.TimeLeft})
		if onTick != nil {
			onTick(room)
		}
		if room.TimeLeft <= 0 {
			room.timers.cancelCountdown()
			if onExpire != nil {
				onExpire(room)
			}
			return false
		}
		return true
	})
}

// roundStartPayload builds the shared round_start announcement. Word modes
// pass the holder and secret length; the board and reflex modes pass neither.
func (s *Service) roundStartPayload(room *Room, holderName string, wordLen int) RoundStartPayload {
	totalTurns := len(room.TurnOrder)
	currentTurn := room.TurnIndex
	if totalTurns == 0 {
		totalTurns = 1
		currentTurn = 1
	}
	return RoundStartPayload{
		Round:       room.Round,
		TotalRounds: room.Config.TotalRounds,
		Drawer:      holderName,
		WordLength:  wordLen,
		TotalTurns:  totalTurns,
		CurrentTurn: currentTurn,
	}
}

// endRound closes the current turn: reveal, leaderboard, pause, next turn.
// Idempotent via the phase guard. Caller must hold room.mu.
func (s *Service) endRound(room *Room) {
	if room.Phase != PhasePlaying && room.Phase != PhasePicking {
		return
	}
	room.timers.cancelAll()
	room.Phase = PhaseRoundEnd

	s.broadcast(room, "round_end", RoundEndPayload{
		Word:        room.Word,
		Leaderboard: s.leaderboard(room),
	})
	// Role flags drop right away so the pause renders nobody as drawing.
	for _, m := range s.playersInRoom(room) {
		m.IsActive = false
		m.HasAnswered = false
	}
	s.broadcastPlayerList(room)

	room.timers.scheduleAfter(room.Config.RoundEndDelay, func(gen uint64) {
		room.mu.Lock()
		defer room.mu.Unlock()
		if room.closed || !room.timers.delayAlive(gen) {
			return
		}
		if room.Phase != PhaseRoundEnd {
			return
		}
		s.beginTurn(room)
	})
}

// endRoundEarly debounces the transition so a last correct guess can land on
// screens before the reveal. Caller must hold room.mu.
func (s *Service) endRoundEarly(room *Room) {
	room.timers.scheduleAfter(room.Config.EarlyEndDelay, func(gen uint64) {
		room.mu.Lock()
		defer room.mu.Unlock()
		if room.closed || !room.timers.delayAlive(gen) {
			return
		}
		s.endRound(room)
	})
}

// maybeEndEarly ends the turn once every eligible answerer has answered.
// A turn with zero eligible answerers runs to the clock instead.
func (s *Service) maybeEndEarly(room *Room) {
	eligible := 0
	done := 0
	for _, m := range s.playersInRoom(room) {
		if m.IsActive || !m.CanParticipate {
			continue
		}
		eligible++
		if m.HasAnswered {
			done++
		}
	}
	if eligible > 0 && done == eligible {
		s.endRoundEarly(room)
	}
}

// SelectWord is the active holder's pick during the picking phase.
func (s *Service) SelectWord(connID, word string) error {
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
	if room.Phase != PhasePicking || !p.IsActive {
		return ErrNotYourTurn
	}
	valid := false
	for _, w := range room.WordChoices {
		if w == word {
			valid = true
			break
		}
	}
	if !valid {
		return ErrNotYourTurn
	}
	return room.engine.SelectSecret(room, p, word)
}

// HandleAction routes one in-round action to the room's engine. A guess
// outside a word round falls back to plain chat.
func (s *Service) HandleAction(connID string, act Action) error {
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
	if room.closed {
		return ErrNotInRoom
	}

	if act.Kind == ActionGuess && s.guessIsChat(room, p) {
		s.broadcast(room, "chat_message", ChatMessagePayload{Player: p.Username, Text: act.Text})
		return nil
	}
	if room.Phase != PhasePlaying {
		return ErrNotInRound
	}
	return room.engine.HandleAction(room, p, act)
}

// guessIsChat: guesses outside a live word round, or in modes without word
// guessing at all, are ordinary chat.
func (s *Service) guessIsChat(room *Room, p *Player) bool {
	if room.GameType == TypeTicTacToe || room.GameType == TypeFruitNinja {
		return true
	}
	if room.Phase != PhasePlaying {
		return true
	}
	// The holder and already-correct guessers chat instead of guessing; the
	// engine decides the rest.
	return false
}

// RelayDraw forwards a canvas event from the drawer to everyone else. The
// payload is opaque to the server.
func (s *Service) RelayDraw(connID string, event string, payload any) {
	p, ok := s.FindPlayer(connID)
	if !ok {
		return
	}
	room, ok := s.FindRoom(p.RoomCode)
	if !ok {
		return
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	if room.GameType != TypeDoodle || !p.IsActive {
		return
	}
	s.broadcast(room, event, payload, connID)
}
