package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"partyhub-server/internal/game"
)

// PersistenceManager writes finished games to the database. It implements the
// game package's HistoryStore; the core calls it fire-and-forget, so every
// method here must be safe to fail without taking a game down with it.
type PersistenceManager struct {
	db *sql.DB
}

// NewPersistenceManager creates a new persistence manager
func NewPersistenceManager(db *sql.DB) *PersistenceManager {
	return &PersistenceManager{
		db: db,
	}
}

// SaveGameHistory records one finished game and bumps the aggregate counters
// of every identified player in it.
func (pm *PersistenceManager) SaveGameHistory(ctx context.Context, rec game.HistoryRecord) error {
	entries, err := json.Marshal(rec.Entries)
	if err != nil {
		return fmt.Errorf("failed to serialize history entries: %w", err)
	}

	query := `
		INSERT INTO game_history (room_code, game_type, total_rounds, winner, entries, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = pm.db.ExecContext(
		ctx,
		query,
		rec.RoomCode,
		string(rec.GameType),
		rec.TotalRounds,
		rec.Winner,
		string(entries),
		rec.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save history for room %s: %w", rec.RoomCode, err)
	}

	for _, entry := range rec.Entries {
		// Guests carry no stable id; only history records them.
		if entry.UserID == "" {
			continue
		}
		if err := pm.upsertPlayerStats(ctx, entry); err != nil {
			return fmt.Errorf("failed to update stats for %s: %w", entry.Username, err)
		}
	}

	return nil
}

// upsertPlayerStats increments the per-user lifetime counters.
func (pm *PersistenceManager) upsertPlayerStats(ctx context.Context, entry game.HistoryEntry) error {
	won := 0
	if entry.Won {
		won = 1
	}

	query := `
		INSERT INTO player_stats (user_id, username, games_played, games_won, total_score)
		VALUES ($1, $2, 1, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			username = EXCLUDED.username,
			games_played = player_stats.games_played + 1,
			games_won = player_stats.games_won + EXCLUDED.games_won,
			total_score = player_stats.total_score + EXCLUDED.total_score
	`

	_, err := pm.db.ExecContext(ctx, query, entry.UserID, entry.Username, won, entry.Score)
	return err
}

// LoadPlayerStats returns the lifetime counters for one user.
func (pm *PersistenceManager) LoadPlayerStats(ctx context.Context, userID string) (played, wonCount, totalScore int, err error) {
	query := `
		SELECT games_played, games_won, total_score FROM player_stats WHERE user_id = $1
	`

	err = pm.db.QueryRowContext(ctx, query, userID).Scan(&played, &wonCount, &totalScore)
	if err == sql.ErrNoRows {
		return 0, 0, 0, nil
	}
	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to load stats for %s: %w", userID, err)
	}
	return played, wonCount, totalScore, nil
}

// CountGameHistory returns how many finished games are recorded for a room
// code. Used by tests and diagnostics.
func (pm *PersistenceManager) CountGameHistory(ctx context.Context, roomCode string) (int, error) {
	var n int
	err := pm.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM game_history WHERE room_code = $1`, roomCode).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count history for %s: %w", roomCode, err)
	}
	return n, nil
}
