package database

import (
	"context"
	"fmt"

	"black-oil/internal/game"
	"black-oil/internal/store"
)

// AppendReport stores a day report and its event lines in one transaction.
func (db *DB) AppendReport(ctx context.Context, r *store.DayReport) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions WHERE id = ?`, r.SessionID).Scan(&exists); err != nil {
		return err
	}
	if exists == 0 {
		return fmt.Errorf("append report %s: %w", r.SessionID, store.ErrSessionNotFound)
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO day_reports (session_id, day, production, refined, contract_delivered,
		                         maintenance_cost, interest_cost, cash, price, petrol_price, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.SessionID, r.Day, r.Production, r.Refined, r.ContractDelivered,
		r.MaintenanceCost, r.InterestCost, r.Cash, r.Price, r.PetrolPrice, r.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert report for day %d: %w", r.Day, err)
	}
	reportID, err := result.LastInsertId()
	if err != nil {
		return err
	}

	for i, e := range r.Events {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO report_events (report_id, seq, kind, message, amount) VALUES (?, ?, ?, ?, ?)
		`, reportID, i, string(e.Kind), e.Message, e.Amount); err != nil {
			return fmt.Errorf("insert report event %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// Reports returns a session's reports ordered by day.
func (db *DB) Reports(ctx context.Context, sessionID string) ([]*store.DayReport, error) {
	if _, err := db.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, session_id, day, production, refined, contract_delivered,
		       maintenance_cost, interest_cost, cash, price, petrol_price, created_at
		FROM day_reports
		WHERE session_id = ?
		ORDER BY day ASC, id ASC
	`, sessionID)
	if err != nil {
		return nil, err
	}

	var reports []*store.DayReport
	byID := make(map[int64]*store.DayReport)
	for rows.Next() {
		var id int64
		r := &store.DayReport{}
		if err := rows.Scan(&id, &r.SessionID, &r.Day, &r.Production, &r.Refined, &r.ContractDelivered,
			&r.MaintenanceCost, &r.InterestCost, &r.Cash, &r.Price, &r.PetrolPrice, &r.CreatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		reports = append(reports, r)
		byID[id] = r
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// The report rows must be closed first: the pool holds one connection.
	events, err := db.conn.QueryContext(ctx, `
		SELECT e.report_id, e.kind, e.message, e.amount
		FROM report_events e
		JOIN day_reports r ON r.id = e.report_id
		WHERE r.session_id = ?
		ORDER BY e.report_id ASC, e.seq ASC
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer events.Close()

	for events.Next() {
		var reportID int64
		var kind string
		var e game.Event
		if err := events.Scan(&reportID, &kind, &e.Message, &e.Amount); err != nil {
			return nil, err
		}
		e.Kind = game.EventKind(kind)
		if r, ok := byID[reportID]; ok {
			r.Events = append(r.Events, e)
		}
	}
	return reports, events.Err()
}
