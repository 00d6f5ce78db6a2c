// Package storage provides SQLite-based persistence for scores, campaign
// save slots and per-level records.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/tui-koopa/internal/core"
)

// Store manages the SQLite database connection.
type Store struct {
	db *sql.DB
}

// ScoreEntry represents a single high score record.
type ScoreEntry struct {
	ID        int64
	GameID    string
	Score     int
	CreatedAt time.Time
}

// LevelRecord is the best result recorded for one world-level.
type LevelRecord struct {
	GameID    string
	World     int
	Level     int
	BestScore int
	BestTime  int // seconds left on the clock at the flag, higher is better
	Clears    int
	UpdatedAt time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS scores (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			game_id TEXT NOT NULL,
			score INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_scores_game_id ON scores(game_id);
		CREATE INDEX IF NOT EXISTS idx_scores_top ON scores(game_id, score DESC);

		CREATE TABLE IF NOT EXISTS save_slots (
			game_id TEXT NOT NULL,
			slot TEXT NOT NULL,
			summary TEXT NOT NULL DEFAULT '',
			payload BLOB NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (game_id, slot)
		);

		CREATE TABLE IF NOT EXISTS level_records (
			game_id TEXT NOT NULL,
			world INTEGER NOT NULL,
			level INTEGER NOT NULL,
			best_score INTEGER NOT NULL DEFAULT 0,
			best_time INTEGER NOT NULL DEFAULT 0,
			clears INTEGER NOT NULL DEFAULT 0,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (game_id, world, level)
		);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveScore records a new score for the given game.
// Returns the ID of the inserted record.
func (s *Store) SaveScore(gameID string, score int) (int64, error) {
	result, err := s.db.Exec(
		"INSERT INTO scores (game_id, score) VALUES (?, ?)",
		gameID, score,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save score: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// TopScores retrieves the top N scores for the given game.
// Results are ordered by score descending.
func (s *Store) TopScores(gameID string, limit int) ([]ScoreEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT id, game_id, score, created_at
		 FROM scores
		 WHERE game_id = ?
		 ORDER BY score DESC
		 LIMIT ?`,
		gameID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query scores: %w", err)
	}
	defer rows.Close()

	var entries []ScoreEntry
	for rows.Next() {
		var e ScoreEntry
		var createdAt any
		if err := rows.Scan(&e.ID, &e.GameID, &e.Score, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, nil
}

// HighScore returns the highest score for the given game.
// Returns 0 if no scores exist.
func (s *Store) HighScore(gameID string) (int, error) {
	var score sql.NullInt64
	err := s.db.QueryRow(
		"SELECT MAX(score) FROM scores WHERE game_id = ?",
		gameID,
	).Scan(&score)

	if err != nil {
		return 0, fmt.Errorf("storage: cannot query high score: %w", err)
	}

	if !score.Valid {
		return 0, nil
	}

	return int(score.Int64), nil
}

// ClearScores deletes all scores for the given game.
func (s *Store) ClearScores(gameID string) error {
	_, err := s.db.Exec("DELETE FROM scores WHERE game_id = ?", gameID)
	if err != nil {
		return fmt.Errorf("storage: cannot clear scores: %w", err)
	}
	return nil
}

// SaveSlot writes or replaces a campaign payload.
func (s *Store) SaveSlot(game, slot, summary string, payload []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO save_slots (game_id, slot, summary, payload, updated_at)
		 VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(game_id, slot) DO UPDATE SET
		   summary = excluded.summary,
		   payload = excluded.payload,
		   updated_at = excluded.updated_at`,
		game, slot, summary, payload,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save slot %q: %w", slot, err)
	}
	return nil
}

// LoadSlot returns the payload of a slot, or core.ErrSlotNotFound.
func (s *Store) LoadSlot(game, slot string) ([]byte, error) {
	var payload []byte
	err := s.db.QueryRow(
		"SELECT payload FROM save_slots WHERE game_id = ? AND slot = ?",
		game, slot,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("storage: slot %q: %w", slot, core.ErrSlotNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot load slot %q: %w", slot, err)
	}
	return payload, nil
}

// ListSlots returns the slots of a game, most recently saved first.
func (s *Store) ListSlots(game string) ([]core.SlotInfo, error) {
	rows, err := s.db.Query(
		`SELECT slot, game_id, summary, updated_at
		 FROM save_slots
		 WHERE game_id = ?
		 ORDER BY updated_at DESC, slot`,
		game,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot list slots: %w", err)
	}
	defer rows.Close()

	var slots []core.SlotInfo
	for rows.Next() {
		var info core.SlotInfo
		var updatedAt any
		if err := rows.Scan(&info.Name, &info.Game, &info.Summary, &updatedAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan slot row: %w", err)
		}
		info.UpdatedAt = parseTime(updatedAt)
		slots = append(slots, info)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return slots, nil
}

// DeleteSlot removes a slot. Deleting a missing slot is not an error.
func (s *Store) DeleteSlot(game, slot string) error {
	_, err := s.db.Exec("DELETE FROM save_slots WHERE game_id = ? AND slot = ?", game, slot)
	if err != nil {
		return fmt.Errorf("storage: cannot delete slot %q: %w", slot, err)
	}
	return nil
}

var _ core.SaveStore = (*Store)(nil)

// RecordClear folds one level clear into the level's record, keeping the
// best score and best remaining time.
func (s *Store) RecordClear(gameID string, world, level, score, timeLeft int) error {
	_, err := s.db.Exec(
		`INSERT INTO level_records (game_id, world, level, best_score, best_time, clears, updated_at)
		 VALUES (?, ?, ?, ?, ?, 1, CURRENT_TIMESTAMP)
		 ON CONFLICT(game_id, world, level) DO UPDATE SET
		   best_score = MAX(best_score, excluded.best_score),
		   best_time = MAX(best_time, excluded.best_time),
		   clears = clears + 1,
		   updated_at = excluded.updated_at`,
		gameID, world, level, score, timeLeft,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot record clear %d-%d: %w", world, level, err)
	}
	return nil
}

// LevelRecords returns every recorded level of a game in world-level order.
func (s *Store) LevelRecords(gameID string) ([]LevelRecord, error) {
	rows, err := s.db.Query(
		`SELECT game_id, world, level, best_score, best_time, clears, updated_at
		 FROM level_records
		 WHERE game_id = ?
		 ORDER BY world, level`,
		gameID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query level records: %w", err)
	}
	defer rows.Close()

	var records []LevelRecord
	for rows.Next() {
		var r LevelRecord
		var updatedAt any
		if err := rows.Scan(&r.GameID, &r.World, &r.Level, &r.BestScore, &r.BestTime, &r.Clears, &updatedAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan record row: %w", err)
		}
		r.UpdatedAt = parseTime(updatedAt)
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return records, nil
}

// GameStats contains aggregated statistics for a game.
type GameStats struct {
	GameID     string
	GamesCount int
	HighScore  int
	AvgScore   float64
	TotalScore int64
	LastPlayed time.Time
}

// GetGameStats retrieves aggregated statistics for a specific game.
func (s *Store) GetGameStats(gameID string) (*GameStats, error) {
	stats := &GameStats{GameID: gameID}

	err := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(MAX(score), 0), COALESCE(AVG(score), 0), COALESCE(SUM(score), 0)
		 FROM scores WHERE game_id = ?`,
		gameID,
	).Scan(&stats.GamesCount, &stats.HighScore, &stats.AvgScore, &stats.TotalScore)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get game stats: %w", err)
	}

	var lastPlayed any
	err = s.db.QueryRow(
		`SELECT created_at FROM scores WHERE game_id = ? ORDER BY created_at DESC LIMIT 1`,
		gameID,
	).Scan(&lastPlayed)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("storage: cannot get last played: %w", err)
	}
	if err == nil {
		stats.LastPlayed = parseTime(lastPlayed)
	}

	return stats, nil
}

// parseTime handles both time.Time and string datetimes from the driver.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
