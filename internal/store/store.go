// Package store handles SQLite persistence of attempt history.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/typetest/internal/logging"
	"github.com/verte-zerg/typetest/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for attempt history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS attempts (
			id TEXT PRIMARY KEY,
			position INTEGER NOT NULL,
			recorded_at TEXT NOT NULL,
			wpm INTEGER NOT NULL,
			accuracy REAL NOT NULL,
			duration_s INTEGER NOT NULL
		);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_attempts_position ON attempts(position);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Load returns the stored history. Unreadable or corrupt data yields an empty history.
func (s *Store) Load(ctx context.Context) model.History {
	attempts, err := s.ListAttempts(ctx, model.HistoryConfig{})
	if err != nil {
		logging.Logger.Warn("discarding unreadable attempt history", "error", err)
		return model.History{}
	}
	return model.History(attempts)
}

// Save replaces the stored history with history in a single transaction.
func (s *Store) Save(ctx context.Context, history model.History) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM attempts`); err != nil {
		return err
	}
	if len(history) > 0 {
		stmt, perr := tx.PrepareContext(ctx,
			`INSERT INTO attempts (id, position, recorded_at, wpm, accuracy, duration_s)
			 VALUES (?, ?, ?, ?, ?, ?)`)
		if perr != nil {
			err = perr
			return err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for i, a := range history {
			if _, err = stmt.ExecContext(ctx,
				a.ID,
				i,
				a.Timestamp.UTC().Format(time.RFC3339Nano),
				a.WPM,
				a.Accuracy,
				a.DurationSeconds,
			); err != nil {
				return fmt.Errorf("failed to insert attempt %d: %w", i, err)
			}
		}
	}
	err = tx.Commit()
	return err
}

// ListAttempts returns stored attempts in chronological order, filtered by cfg.Since.
// Last and Window are applied by callers.
func (s *Store) ListAttempts(ctx context.Context, cfg model.HistoryConfig) ([]model.Attempt, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, recorded_at, wpm, accuracy, duration_s FROM attempts ORDER BY position ASC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	attempts := []model.Attempt{}
	for rows.Next() {
		var a model.Attempt
		var recordedAt string
		if err := rows.Scan(&a.ID, &recordedAt, &a.WPM, &a.Accuracy, &a.DurationSeconds); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, recordedAt)
		if err != nil {
			return nil, fmt.Errorf("attempt %s: bad timestamp: %w", a.ID, err)
		}
		a.Timestamp = parsed
		if err := validate(a); err != nil {
			return nil, err
		}
		if cfg.Since != nil && a.Timestamp.Before(*cfg.Since) {
			continue
		}
		attempts = append(attempts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return attempts, nil
}

func validate(a model.Attempt) error {
	switch {
	case a.WPM < 0:
		return fmt.Errorf("attempt %s: negative wpm %d", a.ID, a.WPM)
	case math.IsNaN(a.Accuracy) || a.Accuracy < 0 || a.Accuracy > 100:
		return fmt.Errorf("attempt %s: accuracy out of range: %v", a.ID, a.Accuracy)
	case a.DurationSeconds <= 0:
		return fmt.Errorf("attempt %s: bad duration %d", a.ID, a.DurationSeconds)
	}
	return nil
}
