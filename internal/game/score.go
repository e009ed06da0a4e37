package game

import (
	"context"
	"log"
	"sort"
	"time"
)

// HistoryStore is the persistence collaborator. The server package implements
// it over Postgres; nil disables history entirely.
type HistoryStore interface {
	SaveGameHistory(ctx context.Context, rec HistoryRecord) error
}

type HistoryEntry struct {
	UserID   string
	Username string
	Score    int
	Rank     int
	Won      bool
}

type HistoryRecord struct {
	RoomCode    string
	GameType    GameType
	TotalRounds int
	Winner      string
	Entries     []HistoryEntry
	FinishedAt  time.Time
}

const persistTimeout = 5 * time.Second

// leaderboard ranks members by score, descending, stable on join order.
// Caller must hold room.mu.
func (s *Service) leaderboard(room *Room) []LeaderboardEntry {
	players := s.playersInRoom(room)
	out := make([]LeaderboardEntry, 0, len(players))
	for _, p := range players {
		out = append(out, LeaderboardEntry{
			ID:         p.ID,
			Username:   p.Username,
			Avatar:     p.Avatar,
			Score:      p.Score,
			RoundScore: p.RoundScore,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// endGame finishes the session: final leaderboard, winner announcement, and a
// fire-and-forget history write. Caller must hold room.mu.
func (s *Service) endGame(room *Room) {
	if room.Phase == PhaseGameEnd {
		return
	}
	room.timers.cancelAll()
	room.Phase = PhaseGameEnd

	lb := s.leaderboard(room)
	winner := "Nobody"
	if len(lb) > 0 {
		winner = lb[0].Username
	}
	s.broadcast(room, "game_end", GameEndPayload{Leaderboard: lb, Winner: winner})
	s.broadcastPlayerList(room)
	log.Printf("Game %s completed in room %s, winner: %s", room.GameType, room.Code, winner)

	s.persistHistory(room, lb, winner)
}

// persistHistory snapshots the result under the lock and writes it on its own
// goroutine. A failed write is logged and otherwise ignored; game_end never
// waits on the database.
func (s *Service) persistHistory(room *Room, lb []LeaderboardEntry, winner string) {
	if s.history == nil {
		return
	}
	players := s.playersInRoom(room)
	byID := make(map[string]*Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}

	rec := HistoryRecord{
		RoomCode:    room.Code,
		GameType:    room.GameType,
		TotalRounds: room.Config.TotalRounds,
		Winner:      winner,
		FinishedAt:  time.Now(),
	}
	for i, e := range lb {
		entry := HistoryEntry{
			Username: e.Username,
			Score:    e.Score,
			Rank:     i + 1,
			Won:      e.Username == winner,
		}
		if p, ok := byID[e.ID]; ok {
			entry.UserID = p.UserID
		}
		rec.Entries = append(rec.Entries, entry)
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := s.history.SaveGameHistory(ctx, rec); err != nil {
			log.Printf("Failed to persist history for room %s: %v", rec.RoomCode, err)
		}
	}()
}
