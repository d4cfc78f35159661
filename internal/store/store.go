// Package store defines session persistence. The SQLite database is the
// default backend; PostgreSQL, a Redis read-through cache and an in-memory
// store implement the same interface.
package store

import (
	"context"
	"errors"
	"time"

	"black-oil/internal/game"
)

// ErrSessionNotFound is returned when no session has the requested ID.
var ErrSessionNotFound = errors.New("session not found")

// Status is the lifecycle state of a session.
type Status string

const (
	StatusActive   Status = "active"
	StatusFinished Status = "finished"
)

// Session is the listing metadata of a stored game. The game itself is
// stored as an opaque save document next to it.
type Session struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Scenario    string    `json:"scenario"`
	Seed        int64     `json:"seed"`
	Day         int       `json:"day"`
	Cash        int       `json:"cash"`
	FinalAssets int       `json:"finalAssets"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Summarize refreshes the metadata from the live game.
func (s *Session) Summarize(g *game.GameState) {
	s.Scenario = g.Scenario.Name
	s.Day = g.Day
	s.Cash = g.Cash
	s.FinalAssets = g.FinalAssets()
	s.Status = StatusActive
	if g.SeasonOver() {
		s.Status = StatusFinished
	}
}

// DayReport is a persisted day advance.
type DayReport struct {
	SessionID string `json:"sessionId"`
	game.EconomySnapshot
	Cash        int       `json:"cash"`
	Price       int       `json:"price"`
	PetrolPrice int       `json:"petrolPrice"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewDayReport captures a snapshot together with the closing prices.
func NewDayReport(sessionID string, snap *game.EconomySnapshot, g *game.GameState) *DayReport {
	r := &DayReport{
		SessionID:       sessionID,
		EconomySnapshot: *snap,
		Cash:            g.Cash,
		Price:           g.Price,
		PetrolPrice:     g.PetrolPrice,
		CreatedAt:       time.Now().UTC(),
	}
	r.Events = append([]game.Event(nil), snap.Events...)
	return r
}

// Store is the persistence interface for sessions and their day reports.
type Store interface {
	// CreateSession persists a new session. An empty ID is assigned.
	CreateSession(ctx context.Context, s *Session, state []byte) error

	// SaveSession replaces the metadata and save document of a session.
	SaveSession(ctx context.Context, s *Session, state []byte) error

	// GetSession returns session metadata.
	GetSession(ctx context.Context, id string) (*Session, error)

	// LoadState returns the save document of a session.
	LoadState(ctx context.Context, id string) ([]byte, error)

	// ListSessions returns all sessions, most recently updated first.
	ListSessions(ctx context.Context) ([]*Session, error)

	// DeleteSession removes a session and its reports.
	DeleteSession(ctx context.Context, id string) error

	// AppendReport records a day advance.
	AppendReport(ctx context.Context, r *DayReport) error

	// Reports returns the reports of a session in day order.
	Reports(ctx context.Context, sessionID string) ([]*DayReport, error)

	Close() error
}
