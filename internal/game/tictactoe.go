package game

import (
	"fmt"
	"log"
)

// tictactoeEngine runs the two-player board mode as a best-of series. Marks
// swap between rounds; the per-move clock forfeits slow players.
type tictactoeEngine struct {
	s *Service
}

var winLines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

const roundWinPoints = 100

func (e *tictactoeEngine) StartRound(room *Room) {
	if len(room.Members) < 2 {
		return
	}
	// X alternates with the round number.
	xi := (room.Round - 1) % 2
	wins := room.Board.SeriesWins
	if wins == nil {
		wins = make(map[string]int)
	}
	room.Board = BoardState{
		CurrentMark: "X",
		PlayerX:     room.Members[xi],
		PlayerO:     room.Members[1-xi],
		SeriesWins:  wins,
	}
	room.Phase = PhasePlaying

	e.setTurnHolder(room, room.Board.PlayerX)
	e.s.broadcast(room, "round_start", e.s.roundStartPayload(room, "", 0))
	e.broadcastBoard(room)
	e.s.broadcastPlayerList(room)
	e.startMoveClock(room)
}

func (e *tictactoeEngine) SelectSecret(room *Room, p *Player, word string) error {
	return ErrNotYourTurn
}

func (e *tictactoeEngine) HandleAction(room *Room, p *Player, act Action) error {
	if act.Kind != ActionBoardMove {
		return ErrNotInRound
	}
	mark, ok := e.markOf(room, p.ID)
	if !ok || mark != room.Board.CurrentMark {
		return ErrNotYourTurn
	}
	if act.Cell < 0 || act.Cell > 8 || room.Board.Cells[act.Cell] != "" {
		return ErrInvalidMove
	}

	room.Board.Cells[act.Cell] = mark
	room.Board.LastMove = &BoardMovePayload{Cell: act.Cell, Mark: mark, Player: p.Username}

	if line, won := e.findWin(room, mark); won {
		e.finishRound(room, p.ID, mark, line)
		return nil
	}
	if e.boardFull(room) {
		e.finishRound(room, "", "draw", nil)
		return nil
	}

	if room.Board.CurrentMark == "X" {
		room.Board.CurrentMark = "O"
		e.setTurnHolder(room, room.Board.PlayerO)
	} else {
		room.Board.CurrentMark = "X"
		e.setTurnHolder(room, room.Board.PlayerX)
	}
	e.broadcastBoard(room)
	e.s.broadcastPlayerList(room)
	e.startMoveClock(room)
	return nil
}

func (e *tictactoeEngine) HandleActiveDisconnect(room *Room, p *Player) {
	// Either player leaving ends the whole match for the survivor.
	room.timers.cancelAll()
	if remaining := e.s.playersInRoom(room); len(remaining) == 1 {
		winner := remaining[0]
		winner.Score += roundWinPoints
		winner.RoundScore += roundWinPoints
		e.s.systemChat(room, fmt.Sprintf("%s left. %s wins the match!", p.Username, winner.Username))
	}
	e.s.endGame(room)
}

// startMoveClock arms the per-move countdown; running out forfeits the round
// to the opponent.
func (e *tictactoeEngine) startMoveClock(room *Room) {
	e.s.startRoomCountdown(room, room.Config.RoundTime, nil, func(room *Room) {
		if room.Phase != PhasePlaying {
			return
		}
		slow := room.Board.PlayerX
		winnerID := room.Board.PlayerO
		winnerMark := "O"
		if room.Board.CurrentMark == "O" {
			slow = room.Board.PlayerO
			winnerID = room.Board.PlayerX
			winnerMark = "X"
		}
		if sp, ok := e.s.FindPlayer(slow); ok {
			e.s.systemChat(room, fmt.Sprintf("%s ran out of time!", sp.Username))
		}
		e.finishRound(room, winnerID, winnerMark, nil)
	})
}

// finishRound settles one board: result is "X", "O" or "draw". Caller must
// hold room.mu.
func (e *tictactoeEngine) finishRound(room *Room, winnerID, result string, line []int) {
	room.timers.cancelAll()
	room.Phase = PhaseRoundEnd

	if winnerID != "" {
		room.Board.SeriesWins[winnerID]++
		if wp, ok := e.s.FindPlayer(winnerID); ok {
			wp.Score += roundWinPoints
			wp.RoundScore += roundWinPoints
		}
	}
	if line == nil {
		line = []int{}
	}
	e.s.broadcast(room, "ttt_round_result", TttRoundResultPayload{
		Result:    result,
		WinLine:   line,
		Board:     room.Board.Cells[:],
		RoundWins: e.wireWins(room),
	})
	e.s.broadcastPlayerList(room)
	log.Printf("Room %s tictactoe round %d result: %s", room.Code, room.Round, result)

	seriesOver := winnerID != "" && room.Board.SeriesWins[winnerID] >= room.Config.SeriesTarget
	room.timers.scheduleAfter(room.Config.RoundEndDelay, func(gen uint64) {
		room.mu.Lock()
		defer room.mu.Unlock()
		if room.closed || !room.timers.delayAlive(gen) || room.Phase != PhaseRoundEnd {
			return
		}
		if seriesOver {
			e.s.endGame(room)
			return
		}
		e.s.beginTurn(room)
	})
}

func (e *tictactoeEngine) setTurnHolder(room *Room, id string) {
	for _, m := range e.s.playersInRoom(room) {
		m.IsActive = m.ID == id
	}
}

func (e *tictactoeEngine) markOf(room *Room, id string) (string, bool) {
	switch id {
	case room.Board.PlayerX:
		return "X", true
	case room.Board.PlayerO:
		return "O", true
	}
	return "", false
}

func (e *tictactoeEngine) findWin(room *Room, mark string) ([]int, bool) {
	for _, l := range winLines {
		if room.Board.Cells[l[0]] == mark && room.Board.Cells[l[1]] == mark && room.Board.Cells[l[2]] == mark {
			return []int{l[0], l[1], l[2]}, true
		}
	}
	return nil, false
}

func (e *tictactoeEngine) boardFull(room *Room) bool {
	for _, c := range room.Board.Cells {
		if c == "" {
			return false
		}
	}
	return true
}

// wireWins converts the connection-keyed series tally to the X/O shape the
// client renders.
func (e *tictactoeEngine) wireWins(room *Room) map[string]int {
	return map[string]int{
		"X": room.Board.SeriesWins[room.Board.PlayerX],
		"O": room.Board.SeriesWins[room.Board.PlayerO],
	}
}

func (e *tictactoeEngine) broadcastBoard(room *Room) {
	xName, oName := "", ""
	if p, ok := e.s.FindPlayer(room.Board.PlayerX); ok {
		xName = p.Username
	}
	if p, ok := e.s.FindPlayer(room.Board.PlayerO); ok {
		oName = p.Username
	}
	e.s.broadcast(room, "ttt_update", TttUpdatePayload{
		Board:       room.Board.Cells[:],
		CurrentMark: room.Board.CurrentMark,
		PlayerX:     room.Board.PlayerX,
		PlayerO:     room.Board.PlayerO,
		PlayerXName: xName,
		PlayerOName: oName,
		LastMove:    room.Board.LastMove,
	})
}
