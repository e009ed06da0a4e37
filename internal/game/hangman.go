package game

import (
	"fmt"
	"strings"
	"time"
)

// hangmanEngine runs the letter-guessing mode. One player sets the word, the
// rest reveal it letter by letter against a shared wrong-guess budget.
type hangmanEngine struct {
	s *Service
}

func (e *hangmanEngine) StartRound(room *Room) {
	if hp, ok := e.s.activePlayer(room); ok {
		e.s.beginPickPhase(room, hp)
	}
}

func (e *hangmanEngine) SelectSecret(room *Room, p *Player, word string) error {
	if room.Phase != PhasePicking || !p.IsActive {
		return ErrNotYourTurn
	}
	room.timers.cancelAll()
	room.Word = word
	room.WordChoices = nil
	room.Phase = PhasePlaying
	room.Reveal = RevealState{
		Mask:           newMask(word),
		GuessedLetters: []string{},
	}

	e.s.sendTo(p.ID, "you_are_drawing", YouAreDrawingPayload{Word: word})
	e.s.broadcast(room, "round_start", e.s.roundStartPayload(room, p.Username, len(word)))
	e.broadcastUpdate(room)
	e.s.systemChat(room, fmt.Sprintf("%s picked a word. Start guessing!", p.Username))
	e.s.broadcastPlayerList(room)

	e.s.startRoomCountdown(room, room.Config.RoundTime, nil, func(room *Room) {
		e.s.systemChat(room, "Time's up! The word survives.")
		e.s.endRound(room)
	})
	return nil
}

func (e *hangmanEngine) HandleAction(room *Room, p *Player, act Action) error {
	switch act.Kind {
	case ActionGuessLetter:
		return e.guessLetter(room, p, act.Letter)
	case ActionGuess:
		return e.guessWord(room, p, act.Text)
	}
	return ErrNotInRound
}

func (e *hangmanEngine) guessLetter(room *Room, p *Player, letter string) error {
	letter = strings.ToLower(strings.TrimSpace(letter))
	if len(letter) != 1 || letter[0] < 'a' || letter[0] > 'z' {
		return nil
	}
	if p.IsActive || !p.CanParticipate {
		return ErrNotYourTurn
	}
	for _, g := range room.Reveal.GuessedLetters {
		if g == letter {
			return nil
		}
	}
	room.Reveal.GuessedLetters = append(room.Reveal.GuessedLetters, letter)

	hits := 0
	lower := strings.ToLower(room.Word)
	for i := 0; i < len(lower); i++ {
		if string(lower[i]) == letter {
			room.Reveal.Mask[i] = string(room.Word[i])
			hits++
		}
	}

	if hits > 0 {
		p.Score += correctLetterPoints
		p.RoundScore += correctLetterPoints
		e.s.systemChat(room, fmt.Sprintf("%s found letter '%s'!", p.Username, strings.ToUpper(letter)))
	} else {
		e.scoreWrongGuess(room, p, fmt.Sprintf("%s guessed '%s'. Not in the word!", p.Username, strings.ToUpper(letter)))
	}
	e.broadcastUpdate(room)
	e.s.broadcastPlayerList(room)

	if e.maskComplete(room) {
		e.s.systemChat(room, "The word is revealed. Guessers win!")
		e.s.endRoundEarly(room)
	} else if e.budgetExhausted(room) {
		e.s.systemChat(room, "Out of guesses! The word setter wins this one.")
		e.s.endRoundEarly(room)
	}
	return nil
}

// guessWord is the whole-word shortcut: a bigger time-scaled reward when
// right, one spent wrong guess when not.
func (e *hangmanEngine) guessWord(room *Room, p *Player, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if !p.CanParticipate {
		e.s.sendTo(p.ID, "chat_message", ChatMessagePayload{
			Player:   "System",
			Text:     "You can't guess this round (joined mid-game).",
			IsSystem: true,
		})
		return nil
	}
	if p.IsActive || p.HasAnswered {
		e.s.sayWithoutLeaking(room, p, text)
		return nil
	}

	now := time.Now()
	if now.Sub(p.LastGuessAt) < room.Config.GuessRateLimit {
		return nil
	}
	p.LastGuessAt = now

	if strings.EqualFold(text, room.Word) {
		points := wordShortcutScore(room.TimeLeft, room.Config.RoundTime)
		p.HasAnswered = true
		p.Score += points
		p.RoundScore += points
		for i := 0; i < len(room.Word); i++ {
			room.Reveal.Mask[i] = string(room.Word[i])
		}
		e.s.broadcast(room, "correct_guess", CorrectGuessPayload{
			Player:     p.Username,
			Score:      points,
			TotalScore: p.Score,
		})
		e.s.systemChat(room, fmt.Sprintf("%s guessed the whole word!", p.Username))
		e.broadcastUpdate(room)
		e.s.broadcastPlayerList(room)
		e.s.endRoundEarly(room)
		return nil
	}

	e.s.sayWithoutLeaking(room, p, text)
	e.scoreWrongGuess(room, p, "")
	e.broadcastUpdate(room)
	e.s.broadcastPlayerList(room)
	if e.budgetExhausted(room) {
		e.s.systemChat(room, "Out of guesses! The word setter wins this one.")
		e.s.endRoundEarly(room)
	}
	return nil
}

func (e *hangmanEngine) HandleActiveDisconnect(room *Room, p *Player) {
	e.s.wordModeDisconnect(room, p, "The word setter left the game.")
}

const (
	correctLetterPoints = 15
	wrongGuessSetterPts = 5
)

// scoreWrongGuess spends one unit of the shared budget and pays the setter.
func (e *hangmanEngine) scoreWrongGuess(room *Room, p *Player, notice string) {
	room.Reveal.WrongGuesses++
	if hp, ok := e.s.activePlayer(room); ok {
		hp.Score += wrongGuessSetterPts
		hp.RoundScore += wrongGuessSetterPts
	}
	if notice != "" {
		e.s.systemChat(room, notice)
	}
}

func (e *hangmanEngine) maskComplete(room *Room) bool {
	for _, c := range room.Reveal.Mask {
		if c == "" {
			return false
		}
	}
	return true
}

func (e *hangmanEngine) budgetExhausted(room *Room) bool {
	return room.Reveal.WrongGuesses >= room.Config.MaxWrongGuesses
}

func (e *hangmanEngine) broadcastUpdate(room *Room) {
	e.s.broadcast(room, "hangman_update", HangmanUpdatePayload{
		RevealedWord:    room.Reveal.Mask,
		WrongGuesses:    room.Reveal.WrongGuesses,
		GuessedLetters:  room.Reveal.GuessedLetters,
		MaxWrongGuesses: room.Config.MaxWrongGuesses,
	})
}

// wordShortcutScore mirrors timeScore with a larger budget: ceil of the
// remaining share of 150, floored at 20.
func wordShortcutScore(remaining, total int) int {
	if total <= 0 {
		return 20
	}
	points := (150*remaining + total - 1) / total
	if points < 20 {
		points = 20
	}
	return points
}
