package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore implements Store with in-memory maps. Used for tests and
// throwaway servers.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*memorySession
}

type memorySession struct {
	meta    Session
	state   []byte
	reports []*DayReport
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*memorySession)}
}

func (s *MemoryStore) CreateSession(_ context.Context, sess *Session, state []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess.ID == "" {
		sess.ID = uuid.New().String()
	}
	if _, exists := s.sessions[sess.ID]; exists {
		return fmt.Errorf("session %s already exists", sess.ID)
	}
	now := time.Now().UTC()
	sess.CreatedAt, sess.UpdatedAt = now, now
	s.sessions[sess.ID] = &memorySession{meta: *sess, state: append([]byte(nil), state...)}
	return nil
}

func (s *MemoryStore) SaveSession(_ context.Context, sess *Session, state []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.sessions[sess.ID]
	if !ok {
		return fmt.Errorf("save session %s: %w", sess.ID, ErrSessionNotFound)
	}
	sess.CreatedAt = m.meta.CreatedAt
	sess.UpdatedAt = time.Now().UTC()
	m.meta = *sess
	m.state = append([]byte(nil), state...)
	return nil
}

func (s *MemoryStore) GetSession(_ context.Context, id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("get session %s: %w", id, ErrSessionNotFound)
	}
	meta := m.meta
	return &meta, nil
}

func (s *MemoryStore) LoadState(_ context.Context, id string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("load session %s: %w", id, ErrSessionNotFound)
	}
	return append([]byte(nil), m.state...), nil
}

func (s *MemoryStore) ListSessions(_ context.Context) ([]*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Session, 0, len(s.sessions))
	for _, m := range s.sessions {
		meta := m.meta
		out = append(out, &meta)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (s *MemoryStore) DeleteSession(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return fmt.Errorf("delete session %s: %w", id, ErrSessionNotFound)
	}
	delete(s.sessions, id)
	return nil
}

func (s *MemoryStore) AppendReport(_ context.Context, r *DayReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.sessions[r.SessionID]
	if !ok {
		return fmt.Errorf("append report %s: %w", r.SessionID, ErrSessionNotFound)
	}
	copied := *r
	m.reports = append(m.reports, &copied)
	return nil
}

func (s *MemoryStore) Reports(_ context.Context, sessionID string) ([]*DayReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("reports %s: %w", sessionID, ErrSessionNotFound)
	}
	out := make([]*DayReport, len(m.reports))
	for i, r := range m.reports {
		copied := *r
		out[i] = &copied
	}
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }
