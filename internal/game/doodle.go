package game

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// doodleEngine runs the draw-and-guess mode. The drawer picks a secret word,
// everyone else races the clock to type it; the canvas itself is an opaque
// relay handled at the transport layer.
type doodleEngine struct {
	s *Service
}

func (e *doodleEngine) StartRound(room *Room) {
	if hp, ok := e.s.activePlayer(room); ok {
		e.s.beginPickPhase(room, hp)
	}
}

func (e *doodleEngine) SelectSecret(room *Room, p *Player, word string) error {
	if room.Phase != PhasePicking || !p.IsActive {
		return ErrNotYourTurn
	}
	room.timers.cancelAll()
	room.Word = word
	room.WordChoices = nil
	room.Phase = PhasePlaying
	room.Reveal = RevealState{
		Mask:     newMask(word),
		Schedule: buildRevealSchedule(word, room.Config.RoundTime),
	}

	e.s.sendTo(p.ID, "you_are_drawing", YouAreDrawingPayload{Word: word})
	e.s.broadcast(room, "round_start", e.s.roundStartPayload(room, p.Username, len(word)))
	e.s.broadcast(room, "word_hint", WordHintPayload{Hint: maskHint(room.Reveal.Mask)}, p.ID)
	e.s.systemChat(room, fmt.Sprintf("%s is drawing now!", p.Username))
	e.s.broadcastPlayerList(room)

	drawerID := p.ID
	e.s.startRoomCountdown(room, room.Config.RoundTime,
		func(room *Room) {
			if idxs, ok := room.Reveal.Schedule[room.TimeLeft]; ok && room.Phase == PhasePlaying {
				for _, i := range idxs {
					room.Reveal.Mask[i] = string(room.Word[i])
				}
				e.s.broadcast(room, "word_hint", WordHintPayload{Hint: maskHint(room.Reveal.Mask)}, drawerID)
			}
		},
		func(room *Room) {
			e.s.systemChat(room, "Time's up!")
			e.s.endRound(room)
		})
	return nil
}

func (e *doodleEngine) HandleAction(room *Room, p *Player, act Action) error {
	if act.Kind != ActionGuess {
		return ErrNotInRound
	}
	return e.s.handleWordGuess(room, p, act.Text)
}

func (e *doodleEngine) HandleActiveDisconnect(room *Room, p *Player) {
	e.s.wordModeDisconnect(room, p, "The drawer left the game.")
}

// handleWordGuess is the doodle guess path: full-word matching with time
// scoring, near-miss hints and leak suppression. Caller must hold room.mu.
func (s *Service) handleWordGuess(room *Room, p *Player, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	// Mid-round joiners are told privately; nothing reaches the room.
	if !p.CanParticipate {
		s.sendTo(p.ID, "chat_message", ChatMessagePayload{
			Player:   "System",
			Text:     "You can't guess this round (joined mid-game).",
			IsSystem: true,
		})
		return nil
	}
	// The holder and finished guessers chat instead.
	if p.IsActive || p.HasAnswered {
		s.sayWithoutLeaking(room, p, text)
		return nil
	}

	now := time.Now()
	if now.Sub(p.LastGuessAt) < room.Config.GuessRateLimit {
		return nil
	}
	p.LastGuessAt = now

	if strings.EqualFold(text, room.Word) {
		points := timeScore(room.TimeLeft, room.Config.RoundTime)
		p.HasAnswered = true
		p.Score += points
		p.RoundScore += points
		if hp, ok := s.activePlayer(room); ok {
			hp.Score += room.Config.DrawerBonus
			hp.RoundScore += room.Config.DrawerBonus
		}
		s.broadcast(room, "correct_guess", CorrectGuessPayload{
			Player:     p.Username,
			Score:      points,
			TotalScore: p.Score,
		})
		s.systemChat(room, fmt.Sprintf("%s guessed the word!", p.Username))
		s.broadcastPlayerList(room)
		s.maybeEndEarly(room)
		return nil
	}

	s.sayWithoutLeaking(room, p, text)
	if isCloseGuess(text, room.Word) {
		s.sendTo(p.ID, "close_guess", CloseGuessPayload{Text: text})
	}
	return nil
}

// sayWithoutLeaking broadcasts a chat line unless it would give the secret
// away, in which case only the author sees it.
func (s *Service) sayWithoutLeaking(room *Room, p *Player, text string) {
	msg := ChatMessagePayload{Player: p.Username, Text: text}
	if room.Word != "" && leaksAnswer(text, room.Word) {
		s.sendTo(p.ID, "chat_message", msg)
		return
	}
	s.broadcast(room, "chat_message", msg)
}

// wordModeDisconnect is the shared leave handler for doodle and hangman: a
// departed holder aborts the turn, a departed guesser may complete the
// all-answered condition. Caller must hold room.mu.
func (s *Service) wordModeDisconnect(room *Room, p *Player, holderLeftMsg string) {
	if !p.IsActive {
		if room.Phase == PhasePlaying {
			s.maybeEndEarly(room)
		}
		return
	}
	switch room.Phase {
	case PhasePicking:
		s.systemChat(room, holderLeftMsg)
		room.timers.cancelAll()
		s.beginTurn(room)
	case PhasePlaying:
		s.systemChat(room, holderLeftMsg)
		s.endRoundEarly(room)
	}
}

// timeScore rewards fast answers: ceil of the remaining-time share of 100,
// floored at 10.
func timeScore(remaining, total int) int {
	if total <= 0 {
		return 10
	}
	points := (100*remaining + total - 1) / total
	if points < 10 {
		points = 10
	}
	return points
}

// newMask hides every letter; spaces show from the start.
func newMask(word string) []string {
	mask := make([]string, len(word))
	for i := 0; i < len(word); i++ {
		if word[i] == ' ' {
			mask[i] = " "
		}
	}
	return mask
}

func maskHint(mask []string) string {
	var b strings.Builder
	for _, c := range mask {
		if c == "" {
			b.WriteByte('_')
		} else {
			b.WriteString(c)
		}
	}
	return b.String()
}

// buildRevealSchedule plans automatic letter reveals for the drawing round:
// at most 75% of the letters, in random order, between half the clock and the
// final tenth, packed toward the start of that window.
func buildRevealSchedule(word string, total int) map[int][]int {
	var letters []int
	for i := 0; i < len(word); i++ {
		if word[i] != ' ' {
			letters = append(letters, i)
		}
	}
	maxReveals := len(letters) * 3 / 4
	if maxReveals == 0 || total < 4 {
		return map[int][]int{}
	}

	start := total / 2
	stop := total / 10
	if stop < 1 {
		stop = 1
	}
	span := start - stop
	order := rand.Perm(len(letters))

	sched := make(map[int][]int)
	for k := 0; k < maxReveals; k++ {
		frac := float64(k) / float64(maxReveals)
		t := start - int(float64(span)*frac*frac)
		if t < stop {
			t = stop
		}
		sched[t] = append(sched[t], letters[order[k]])
	}
	return sched
}
