package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"

	"black-oil/internal/game"
	"black-oil/internal/metrics"
	"black-oil/internal/save"
	"black-oil/internal/store"
)

// ErrUnknownScenario is returned when a session is created for a scenario
// the catalog does not have.
var ErrUnknownScenario = errors.New("unknown scenario")

// liveSession is a session loaded in memory. Its mutex serializes every
// read and mutation of the game.
type liveSession struct {
	mu   sync.Mutex
	meta *store.Session
	game *game.GameState
}

// Sessions owns the in-memory sessions and writes them back to the store
// after every mutation.
type Sessions struct {
	store   store.Store
	catalog *game.Catalog
	loader  *save.Loader
	log     *slog.Logger

	mu   sync.Mutex
	live map[string]*liveSession
}

// NewSessions creates a session manager over a store.
func NewSessions(st store.Store, catalog *game.Catalog, log *slog.Logger) *Sessions {
	return &Sessions{
		store:   st,
		catalog: catalog,
		loader:  save.NewLoader(catalog),
		log:     log,
		live:    make(map[string]*liveSession),
	}
}

// Create starts and stores a new game. An empty scenario means the catalog
// default; a nil seed picks one at random.
func (m *Sessions) Create(ctx context.Context, name, scenario string, seed *int64) (*store.Session, *game.GameState, error) {
	sc := m.catalog.Default()
	if scenario != "" {
		var ok bool
		if sc, ok = m.catalog.Get(scenario); !ok {
			return nil, nil, fmt.Errorf("%w: %q", ErrUnknownScenario, scenario)
		}
	}
	var s int64
	if seed != nil {
		s = *seed
	} else {
		s = rand.Int64N(1 << 53)
	}
	if name == "" {
		name = sc.Name
	}

	g := game.NewGame(sc, s)
	meta := &store.Session{Name: name, Seed: s}
	meta.Summarize(g)
	data, err := save.Marshal(g)
	if err != nil {
		return nil, nil, err
	}
	if err := m.store.CreateSession(ctx, meta, data); err != nil {
		metrics.StoreErrors.WithLabelValues("create").Inc()
		return nil, nil, err
	}

	m.mu.Lock()
	m.live[meta.ID] = &liveSession{meta: meta, game: g}
	m.mu.Unlock()
	metrics.ActiveSessions.Inc()

	m.log.Info("session created", "session", meta.ID, "scenario", sc.Name, "seed", s)
	copied := *meta
	return &copied, g.View(), nil
}

// get returns the live session, loading it from the store on first use.
func (m *Sessions) get(ctx context.Context, id string) (*liveSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ls, ok := m.live[id]; ok {
		return ls, nil
	}
	meta, err := m.store.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	data, err := m.store.LoadState(ctx, id)
	if err != nil {
		return nil, err
	}
	g, err := m.loader.Unmarshal(data)
	if err != nil {
		metrics.StoreErrors.WithLabelValues("decode").Inc()
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	ls := &liveSession{meta: meta, game: g}
	m.live[id] = ls
	metrics.ActiveSessions.Inc()
	m.log.Info("session loaded", "session", id, "day", g.Day)
	return ls, nil
}

// State returns the session metadata and a view of its game.
func (m *Sessions) State(ctx context.Context, id string) (*store.Session, *game.GameState, error) {
	ls, err := m.get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()
	meta := *ls.meta
	return &meta, ls.game.View(), nil
}

// Apply runs a player action. Rejected actions are reported in the Outcome
// and leave the stored session untouched.
func (m *Sessions) Apply(ctx context.Context, id string, a game.Action) (game.Outcome, *game.GameState, error) {
	ls, err := m.get(ctx, id)
	if err != nil {
		return game.Outcome{}, nil, err
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()

	checkpoint, err := save.Marshal(ls.game)
	if err != nil {
		return game.Outcome{}, nil, err
	}
	outcome, err := ls.game.Apply(a)
	if err != nil {
		return game.Outcome{}, nil, err
	}
	result := "ok"
	if !outcome.OK {
		result = "rejected"
		m.log.Debug("action rejected", "session", id, "action", a.Type, "reason", outcome.Reason)
	} else if err := m.persist(ctx, ls); err != nil {
		m.rollback(ls, checkpoint)
		return game.Outcome{}, nil, err
	}
	metrics.ActionsTotal.WithLabelValues(string(a.Type), result).Inc()
	return outcome, ls.game.View(), nil
}

// NextDay advances the session and records the day report.
func (m *Sessions) NextDay(ctx context.Context, id string) (*game.EconomySnapshot, *game.GameState, error) {
	ls, err := m.get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()

	checkpoint, err := save.Marshal(ls.game)
	if err != nil {
		return nil, nil, err
	}
	snap, err := ls.game.NextDay()
	if err != nil {
		return nil, nil, err
	}
	if err := m.persist(ctx, ls); err != nil {
		m.rollback(ls, checkpoint)
		return nil, nil, err
	}
	if err := m.store.AppendReport(ctx, store.NewDayReport(id, snap, ls.game)); err != nil {
		metrics.StoreErrors.WithLabelValues("report").Inc()
		m.log.Error("failed to append day report", "session", id, "day", snap.Day, "err", err)
	}

	metrics.DaysAdvanced.Inc()
	if ls.game.SeasonOver() {
		metrics.SeasonsFinished.Inc()
		m.log.Info("season finished", "session", id, "final_assets", ls.game.FinalAssets())
	}
	m.log.Info("day advanced", "session", id, "day", snap.Day, "production", snap.Production, "cash", ls.game.Cash)
	return snap, ls.game.View(), nil
}

// Offers returns today's trade and contract offers. Drawing them for the
// first time changes the game, so the session is saved when that happens.
func (m *Sessions) Offers(ctx context.Context, id string) ([]game.TradeOffer, []game.ContractOffer, error) {
	ls, err := m.get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()

	before := ls.game.Offers
	checkpoint, err := save.Marshal(ls.game)
	if err != nil {
		return nil, nil, err
	}
	trade := ls.game.TradeOffers()
	contracts := ls.game.ContractOffers()
	if before.TradeDay != ls.game.Offers.TradeDay || before.ContractDay != ls.game.Offers.ContractDay {
		if err := m.persist(ctx, ls); err != nil {
			m.rollback(ls, checkpoint)
			return nil, nil, err
		}
	}
	return trade, contracts, nil
}

// Reports returns the stored day reports of a session.
func (m *Sessions) Reports(ctx context.Context, id string) ([]*store.DayReport, error) {
	return m.store.Reports(ctx, id)
}

// List returns the stored sessions.
func (m *Sessions) List(ctx context.Context) ([]*store.Session, error) {
	return m.store.ListSessions(ctx)
}

// Delete unloads and removes a session.
func (m *Sessions) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	if _, ok := m.live[id]; ok {
		delete(m.live, id)
		metrics.ActiveSessions.Dec()
	}
	m.mu.Unlock()

	if err := m.store.DeleteSession(ctx, id); err != nil {
		return err
	}
	m.log.Info("session deleted", "session", id)
	return nil
}

// rollback restores the game captured before a mutation whose save failed,
// so memory never runs ahead of the store. If the checkpoint cannot be
// decoded the session is unloaded and reloaded from the store on next use.
// The caller holds ls.mu.
func (m *Sessions) rollback(ls *liveSession, checkpoint []byte) {
	g, err := m.loader.Unmarshal(checkpoint)
	if err == nil {
		ls.game = g
		ls.meta.Summarize(g)
		return
	}
	m.log.Error("failed to roll back session", "session", ls.meta.ID, "err", err)
	m.mu.Lock()
	if m.live[ls.meta.ID] == ls {
		delete(m.live, ls.meta.ID)
		metrics.ActiveSessions.Dec()
	}
	m.mu.Unlock()
}

// persist writes the session back. The caller holds ls.mu.
func (m *Sessions) persist(ctx context.Context, ls *liveSession) error {
	ls.meta.Summarize(ls.game)
	data, err := save.Marshal(ls.game)
	if err != nil {
		return err
	}
	if err := m.store.SaveSession(ctx, ls.meta, data); err != nil {
		metrics.StoreErrors.WithLabelValues("save").Inc()
		m.log.Error("failed to save session", "session", ls.meta.ID, "err", err)
		return err
	}
	return nil
}
