package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS sessions (
	id           TEXT PRIMARY KEY,
	name         TEXT NOT NULL,
	scenario     TEXT NOT NULL,
	seed         BIGINT NOT NULL,
	day          INTEGER NOT NULL,
	cash         INTEGER NOT NULL,
	final_assets INTEGER NOT NULL DEFAULT 0,
	status       TEXT NOT NULL,
	state        JSONB NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS day_reports (
	id                 BIGSERIAL PRIMARY KEY,
	session_id         TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
	day                INTEGER NOT NULL,
	production         INTEGER NOT NULL,
	refined            INTEGER NOT NULL,
	contract_delivered INTEGER NOT NULL,
	maintenance_cost   INTEGER NOT NULL,
	interest_cost      INTEGER NOT NULL,
	cash               INTEGER NOT NULL,
	price              INTEGER NOT NULL,
	petrol_price       INTEGER NOT NULL,
	events             JSONB NOT NULL,
	created_at         TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_day_reports_session ON day_reports(session_id, day);
`

// PostgresStore implements Store on PostgreSQL. Save documents are kept
// as JSONB.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the tables when they do not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateSession(ctx context.Context, sess *Session, state []byte) error {
	if sess.ID == "" {
		sess.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	sess.CreatedAt, sess.UpdatedAt = now, now
	_, err := s.pool.Exec(ctx,
		`INSERT INTO sessions (id, name, scenario, seed, day, cash, final_assets, status, state, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::JSONB, $10, $11)`,
		sess.ID, sess.Name, sess.Scenario, sess.Seed, sess.Day, sess.Cash, sess.FinalAssets,
		sess.Status, string(state), sess.CreatedAt, sess.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create session %s: %w", sess.ID, err)
	}
	return nil
}

func (s *PostgresStore) SaveSession(ctx context.Context, sess *Session, state []byte) error {
	sess.UpdatedAt = time.Now().UTC()
	tag, err := s.pool.Exec(ctx,
		`UPDATE sessions
		 SET name = $2, scenario = $3, day = $4, cash = $5, final_assets = $6, status = $7,
		     state = $8::JSONB, updated_at = $9
		 WHERE id = $1`,
		sess.ID, sess.Name, sess.Scenario, sess.Day, sess.Cash, sess.FinalAssets, sess.Status,
		string(state), sess.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save session %s: %w", sess.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("save session %s: %w", sess.ID, ErrSessionNotFound)
	}
	return nil
}

func (s *PostgresStore) GetSession(ctx context.Context, id string) (*Session, error) {
	var sess Session
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, scenario, seed, day, cash, final_assets, status, created_at, updated_at
		 FROM sessions WHERE id = $1`, id).
		Scan(&sess.ID, &sess.Name, &sess.Scenario, &sess.Seed, &sess.Day, &sess.Cash,
			&sess.FinalAssets, &sess.Status, &sess.CreatedAt, &sess.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("get session %s: %w", id, ErrSessionNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}
	return &sess, nil
}

func (s *PostgresStore) LoadState(ctx context.Context, id string) ([]byte, error) {
	var state string
	err := s.pool.QueryRow(ctx, `SELECT state::TEXT FROM sessions WHERE id = $1`, id).Scan(&state)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("load session %s: %w", id, ErrSessionNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	return []byte(state), nil
}

func (s *PostgresStore) ListSessions(ctx context.Context) ([]*Session, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, scenario, seed, day, cash, final_assets, status, created_at, updated_at
		 FROM sessions ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		var sess Session
		if err := rows.Scan(&sess.ID, &sess.Name, &sess.Scenario, &sess.Seed, &sess.Day, &sess.Cash,
			&sess.FinalAssets, &sess.Status, &sess.CreatedAt, &sess.UpdatedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, &sess)
	}
	return sessions, rows.Err()
}

func (s *PostgresStore) DeleteSession(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete session %s: %w", id, ErrSessionNotFound)
	}
	return nil
}

func (s *PostgresStore) AppendReport(ctx context.Context, r *DayReport) error {
	events, err := json.Marshal(r.Events)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO day_reports (session_id, day, production, refined, contract_delivered,
		                          maintenance_cost, interest_cost, cash, price, petrol_price, events, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11::JSONB, $12)`,
		r.SessionID, r.Day, r.Production, r.Refined, r.ContractDelivered,
		r.MaintenanceCost, r.InterestCost, r.Cash, r.Price, r.PetrolPrice, string(events), r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append report %s day %d: %w", r.SessionID, r.Day, err)
	}
	return nil
}

func (s *PostgresStore) Reports(ctx context.Context, sessionID string) ([]*DayReport, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT session_id, day, production, refined, contract_delivered,
		        maintenance_cost, interest_cost, cash, price, petrol_price, events::TEXT, created_at
		 FROM day_reports WHERE session_id = $1 ORDER BY day, id`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []*DayReport
	for rows.Next() {
		var r DayReport
		var events string
		if err := rows.Scan(&r.SessionID, &r.Day, &r.Production, &r.Refined, &r.ContractDelivered,
			&r.MaintenanceCost, &r.InterestCost, &r.Cash, &r.Price, &r.PetrolPrice, &events, &r.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(events), &r.Events); err != nil {
			return nil, fmt.Errorf("decode events for day %d: %w", r.Day, err)
		}
		reports = append(reports, &r)
	}
	return reports, rows.Err()
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

