package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"black-oil/internal/store"
)

var _ store.Store = (*DB)(nil)

const sessionColumns = `id, name, scenario, seed, day, cash, final_assets, status, created_at, updated_at`

// CreateSession inserts a new session; an empty ID is assigned a UUID.
func (db *DB) CreateSession(ctx context.Context, s *store.Session, state []byte) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.Status == "" {
		s.Status = store.StatusActive
	}
	now := time.Now().UTC()
	s.CreatedAt, s.UpdatedAt = now, now

	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO sessions (id, name, scenario, seed, day, cash, final_assets, status, state_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, s.ID, s.Name, s.Scenario, s.Seed, s.Day, s.Cash, s.FinalAssets, s.Status, string(state), now, now)
	if err != nil {
		return fmt.Errorf("create session %s: %w", s.ID, err)
	}
	return nil
}

// SaveSession overwrites the metadata and save document of a session.
func (db *DB) SaveSession(ctx context.Context, s *store.Session, state []byte) error {
	s.UpdatedAt = time.Now().UTC()
	result, err := db.conn.ExecContext(ctx, `
		UPDATE sessions
		SET name = ?, scenario = ?, day = ?, cash = ?, final_assets = ?, status = ?, state_json = ?, updated_at = ?
		WHERE id = ?
	`, s.Name, s.Scenario, s.Day, s.Cash, s.FinalAssets, s.Status, string(state), s.UpdatedAt, s.ID)
	if err != nil {
		return fmt.Errorf("save session %s: %w", s.ID, err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("save session %s: %w", s.ID, store.ErrSessionNotFound)
	}
	return nil
}

// GetSession retrieves session metadata by ID.
func (db *DB) GetSession(ctx context.Context, id string) (*store.Session, error) {
	row := db.conn.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get session %s: %w", id, store.ErrSessionNotFound)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// LoadState returns the stored save document.
func (db *DB) LoadState(ctx context.Context, id string) ([]byte, error) {
	var state string
	err := db.conn.QueryRowContext(ctx, `SELECT state_json FROM sessions WHERE id = ?`, id).Scan(&state)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load session %s: %w", id, store.ErrSessionNotFound)
	}
	if err != nil {
		return nil, err
	}
	return []byte(state), nil
}

// ListSessions returns all sessions, most recently updated first.
func (db *DB) ListSessions(ctx context.Context) ([]*store.Session, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT `+sessionColumns+` FROM sessions ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*store.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// DeleteSession removes a session. Reports go with it.
func (db *DB) DeleteSession(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("delete session %s: %w", id, store.ErrSessionNotFound)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (*store.Session, error) {
	var s store.Session
	var status string
	if err := row.Scan(&s.ID, &s.Name, &s.Scenario, &s.Seed, &s.Day, &s.Cash, &s.FinalAssets,
		&status, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	s.Status = store.Status(status)
	return &s, nil
}
