package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CachedStore wraps a primary Store with a Redis read-through cache for
// session metadata and save documents. Writes go to the primary and then
// refresh or drop the cached copy.
type CachedStore struct {
	primary Store
	rdb     *redis.Client
	ttl     time.Duration
}

// NewCachedStore creates a cached wrapper around a primary store.
func NewCachedStore(primary Store, rdb *redis.Client, ttl time.Duration) *CachedStore {
	return &CachedStore{
		primary: primary,
		rdb:     rdb,
		ttl:     ttl,
	}
}

// --- Write-through ---

func (s *CachedStore) CreateSession(ctx context.Context, sess *Session, state []byte) error {
	if err := s.primary.CreateSession(ctx, sess, state); err != nil {
		return err
	}
	s.cache(ctx, sess, state)
	return nil
}

func (s *CachedStore) SaveSession(ctx context.Context, sess *Session, state []byte) error {
	if err := s.primary.SaveSession(ctx, sess, state); err != nil {
		s.rdb.Del(ctx, sessionKey(sess.ID), stateKey(sess.ID))
		return err
	}
	s.cache(ctx, sess, state)
	return nil
}

func (s *CachedStore) DeleteSession(ctx context.Context, id string) error {
	s.rdb.Del(ctx, sessionKey(id), stateKey(id))
	return s.primary.DeleteSession(ctx, id)
}

// --- Read-through ---

func (s *CachedStore) GetSession(ctx context.Context, id string) (*Session, error) {
	data, err := s.rdb.Get(ctx, sessionKey(id)).Bytes()
	if err == nil {
		var sess Session
		if json.Unmarshal(data, &sess) == nil {
			return &sess, nil
		}
	}

	sess, err := s.primary.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(sess); err == nil {
		s.rdb.Set(ctx, sessionKey(id), data, s.ttl)
	}
	return sess, nil
}

func (s *CachedStore) LoadState(ctx context.Context, id string) ([]byte, error) {
	if data, err := s.rdb.Get(ctx, stateKey(id)).Bytes(); err == nil {
		return data, nil
	}

	state, err := s.primary.LoadState(ctx, id)
	if err != nil {
		return nil, err
	}
	s.rdb.Set(ctx, stateKey(id), state, s.ttl)
	return state, nil
}

// --- Passthrough ---

func (s *CachedStore) ListSessions(ctx context.Context) ([]*Session, error) {
	return s.primary.ListSessions(ctx)
}

func (s *CachedStore) AppendReport(ctx context.Context, r *DayReport) error {
	return s.primary.AppendReport(ctx, r)
}

func (s *CachedStore) Reports(ctx context.Context, sessionID string) ([]*DayReport, error) {
	return s.primary.Reports(ctx, sessionID)
}

// Close closes the primary store and the Redis client.
func (s *CachedStore) Close() error {
	err := s.primary.Close()
	if cerr := s.rdb.Close(); err == nil {
		err = cerr
	}
	return err
}

func (s *CachedStore) cache(ctx context.Context, sess *Session, state []byte) {
	if data, err := json.Marshal(sess); err == nil {
		s.rdb.Set(ctx, sessionKey(sess.ID), data, s.ttl)
	}
	s.rdb.Set(ctx, stateKey(sess.ID), state, s.ttl)
}

func sessionKey(id string) string { return fmt.Sprintf("blackoil:session:%s", id) }
func stateKey(id string) string   { return fmt.Sprintf("blackoil:state:%s", id) }
