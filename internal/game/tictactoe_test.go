package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func startTttMatch(t *testing.T, s *Service) (*Room, string, string) {
	t.Helper()
	code, ids := setupRoom(t, s, TypeTicTacToe, 2)
	room, _ := s.FindRoom(code)
	fastDelays(room)

	assert.NoError(t, s.StartGame(ids[0]))
	waitForPhase(t, room, PhasePlaying)

	room.mu.Lock()
	x, o := room.Board.PlayerX, room.Board.PlayerO
	room.mu.Unlock()
	return room, x, o
}

func move(s *Service, connID string, cell int) error {
	return s.HandleAction(connID, Action{Kind: ActionBoardMove, Cell: cell})
}

// Test: a straight win line settles the round
// Why: Placement, win detection and the series tally all meet here
func TestTttWinningLine(t *testing.T) {
	s, sender := newTestService()
	room, x, o := startTttMatch(t, s)
	sender.reset()

	assert.NoError(t, move(s, x, 0))
	assert.NoError(t, move(s, o, 3))
	assert.NoError(t, move(s, x, 1))
	assert.NoError(t, move(s, o, 4))
	assert.NoError(t, move(s, x, 2))

	results := sender.ofType("ttt_round_result")
	assert.Len(t, results, 2)
	res := results[0].Payload.(TttRoundResultPayload)
	assert.Equal(t, "X", res.Result)
	assert.Equal(t, []int{0, 1, 2}, res.WinLine)
	assert.Equal(t, map[string]int{"X": 1, "O": 0}, res.RoundWins)

	xp, _ := s.FindPlayer(x)
	room.mu.Lock()
	assert.Equal(t, roundWinPoints, xp.Score)
	room.mu.Unlock()
}

func TestTttMoveGuards(t *testing.T) {
	s, _ := newTestService()
	_, x, o := startTttMatch(t, s)

	// O cannot move first.
	assert.ErrorIs(t, move(s, o, 0), ErrNotYourTurn)

	assert.NoError(t, move(s, x, 4))
	assert.ErrorIs(t, move(s, o, 4), ErrInvalidMove, "occupied cell")
	assert.ErrorIs(t, move(s, o, 9), ErrInvalidMove, "out of bounds")
	assert.ErrorIs(t, move(s, o, -1), ErrInvalidMove)

	// X cannot move twice in a row.
	assert.ErrorIs(t, move(s, x, 0), ErrNotYourTurn)
}

// Test: a full board with no line is a draw
// Why: Draws award no series point and no score
func TestTttDraw(t *testing.T) {
	s, sender := newTestService()
	room, x, o := startTttMatch(t, s)
	sender.reset()

	cells := []struct {
		who  string
		cell int
	}{
		{x, 0}, {o, 1}, {x, 2}, {o, 4}, {x, 3}, {o, 5}, {x, 7}, {o, 6}, {x, 8},
	}
	for _, m := range cells {
		assert.NoError(t, move(s, m.who, m.cell))
	}

	res, ok := sender.last("ttt_round_result")
	assert.True(t, ok)
	payload := res.Payload.(TttRoundResultPayload)
	assert.Equal(t, "draw", payload.Result)
	assert.Empty(t, payload.WinLine)
	assert.Equal(t, map[string]int{"X": 0, "O": 0}, payload.RoundWins)

	xp, _ := s.FindPlayer(x)
	op, _ := s.FindPlayer(o)
	room.mu.Lock()
	assert.Equal(t, 0, xp.Score)
	assert.Equal(t, 0, op.Score)
	room.mu.Unlock()
}

func TestTttFindWinAllLines(t *testing.T) {
	e := &tictactoeEngine{}
	for _, l := range winLines {
		room := &Room{}
		for _, i := range l {
			room.Board.Cells[i] = "X"
		}
		line, won := e.findWin(room, "X")
		assert.True(t, won, "line %v not detected", l)
		assert.Equal(t, []int{l[0], l[1], l[2]}, line)
		_, won = e.findWin(room, "O")
		assert.False(t, won)
	}
}

// Test: the X mark alternates between rounds
// Why: Going first is an advantage that must swap hands
func TestTttMarkSwapsBetweenRounds(t *testing.T) {
	s, _ := newTestService()
	room, x, o := startTttMatch(t, s)

	assert.NoError(t, move(s, x, 0))
	assert.NoError(t, move(s, o, 3))
	assert.NoError(t, move(s, x, 1))
	assert.NoError(t, move(s, o, 4))
	assert.NoError(t, move(s, x, 2))

	assert.Eventually(t, func() bool {
		room.mu.Lock()
		defer room.mu.Unlock()
		return room.Round == 2 && room.Phase == PhasePlaying
	}, 2*time.Second, 5*time.Millisecond)

	room.mu.Lock()
	assert.Equal(t, o, room.Board.PlayerX, "last round's O opens this one")
	assert.Equal(t, x, room.Board.PlayerO)
	room.mu.Unlock()
}

// Test: two round wins end the match
// Why: The series target is the mode's win condition
func TestTttSeriesEndsMatch(t *testing.T) {
	s, sender := newTestService()
	room, x, o := startTttMatch(t, s)

	// Round 1: X wins the top row.
	assert.NoError(t, move(s, x, 0))
	assert.NoError(t, move(s, o, 3))
	assert.NoError(t, move(s, x, 1))
	assert.NoError(t, move(s, o, 4))
	assert.NoError(t, move(s, x, 2))

	assert.Eventually(t, func() bool {
		room.mu.Lock()
		defer room.mu.Unlock()
		return room.Round == 2 && room.Phase == PhasePlaying
	}, 2*time.Second, 5*time.Millisecond)

	// Round 2: the same player now holds O and wins again.
	sender.reset()
	assert.NoError(t, move(s, o, 3)) // o from round 1 is X now
	assert.NoError(t, move(s, x, 0))
	assert.NoError(t, move(s, o, 4))
	assert.NoError(t, move(s, x, 1))
	assert.NoError(t, move(s, o, 7)) // col 1 blocked by x at 1
	assert.NoError(t, move(s, x, 2)) // top row, second series win

	assert.Eventually(t, func() bool {
		return len(sender.ofType("game_end")) > 0
	}, 2*time.Second, 5*time.Millisecond)

	end, _ := sender.last("game_end")
	xp, _ := s.FindPlayer(x)
	assert.Equal(t, xp.Username, end.Payload.(GameEndPayload).Winner)
}

// Test: a player leaving mid-match forfeits it
// Why: A one-player board game cannot continue or pause
func TestTttDisconnectForfeits(t *testing.T) {
	s, sender := newTestService()
	room, x, o := startTttMatch(t, s)
	sender.reset()

	s.LeaveRoom(o)

	assert.Equal(t, PhaseGameEnd, currentPhase(room))
	assert.NotEmpty(t, sender.ofType("game_end"))

	xp, _ := s.FindPlayer(x)
	room.mu.Lock()
	assert.Equal(t, roundWinPoints, xp.Score)
	room.mu.Unlock()
}

// Test: running out the move clock forfeits the round
// Why: One stalled player must not freeze the match
func TestTttMoveTimeoutForfeits(t *testing.T) {
	s, sender := newTestService()
	code, ids := setupRoom(t, s, TypeTicTacToe, 2)
	room, _ := s.FindRoom(code)
	fastDelays(room)
	room.mu.Lock()
	room.Config.RoundTime = 1
	room.mu.Unlock()

	assert.NoError(t, s.StartGame(ids[0]))
	waitForPhase(t, room, PhasePlaying)
	sender.reset()

	// X never moves; the clock hands the round to O.
	assert.Eventually(t, func() bool {
		res, ok := sender.last("ttt_round_result")
		return ok && res.Payload.(TttRoundResultPayload).Result == "O"
	}, 5*time.Second, 20*time.Millisecond)
}
