package client

import (
	"context"
	"errors"
	"sync"

	"black-oil/internal/game"
	"black-oil/internal/protocol"
	"black-oil/internal/store"
)

// Backend runs the game for the REPL, either in process or on a server.
// Results use the protocol payloads so both modes print the same way.
type Backend interface {
	State(ctx context.Context) (*game.GameState, error)
	Apply(ctx context.Context, a game.Action) (*protocol.ActionResultPayload, error)
	NextDay(ctx context.Context) (*protocol.DayReportPayload, error)
	Offers(ctx context.Context) (*protocol.OffersPayload, error)
	Reports(ctx context.Context) ([]*store.DayReport, error)
	Close() error
}

// LocalSessionID labels the day reports of an in-process game.
const LocalSessionID = "local"

// Local plays a game in process.
type Local struct {
	mu      sync.Mutex
	game    *game.GameState
	reports []*store.DayReport
}

// NewLocal wraps a game.
func NewLocal(g *game.GameState) *Local {
	return &Local{game: g}
}

// Game returns the live game. Callers must not mutate it concurrently with
// the backend.
func (l *Local) Game() *game.GameState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.game
}

func (l *Local) State(context.Context) (*game.GameState, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.game.View(), nil
}

func (l *Local) Apply(_ context.Context, a game.Action) (*protocol.ActionResultPayload, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	outcome, err := l.game.Apply(a)
	if err != nil {
		return nil, err
	}
	return &protocol.ActionResultPayload{
		Action:  a.Type,
		OK:      outcome.OK,
		Message: outcome.Message,
		Code:    protocol.CodeFor(outcome.Reason),
		Revenue: outcome.Revenue,
		State:   l.game.View(),
	}, nil
}

func (l *Local) NextDay(context.Context) (*protocol.DayReportPayload, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	snap, err := l.game.NextDay()
	if err != nil {
		return nil, err
	}
	l.reports = append(l.reports, store.NewDayReport(LocalSessionID, snap, l.game))
	return &protocol.DayReportPayload{
		Report:      snap,
		State:       l.game.View(),
		SeasonOver:  l.game.SeasonOver(),
		FinalAssets: l.game.FinalAssets(),
	}, nil
}

func (l *Local) Offers(context.Context) (*protocol.OffersPayload, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return &protocol.OffersPayload{Trade: l.game.TradeOffers(), Contracts: l.game.ContractOffers()}, nil
}

func (l *Local) Reports(context.Context) ([]*store.DayReport, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*store.DayReport(nil), l.reports...), nil
}

func (l *Local) Close() error { return nil }

// Remote plays a session hosted by a server.
type Remote struct {
	net     *NetworkClient
	session *store.Session
}

// NewRemote wraps a connected network client.
func NewRemote(net *NetworkClient) *Remote {
	return &Remote{net: net}
}

// Session returns the open session, or nil.
func (r *Remote) Session() *store.Session {
	return r.session
}

// Create starts a new session on the server and opens it.
func (r *Remote) Create(ctx context.Context, name, scenario string, seed *int64) (*game.GameState, error) {
	var opened protocol.SessionOpenedPayload
	req := protocol.CreateSessionPayload{Name: name, Scenario: scenario, Seed: seed}
	if err := r.net.Request(ctx, protocol.TypeCreateSession, req, &opened); err != nil {
		return nil, err
	}
	r.session = opened.Session
	return opened.State, nil
}

// Open attaches to an existing session.
func (r *Remote) Open(ctx context.Context, id string) (*game.GameState, error) {
	var opened protocol.SessionOpenedPayload
	if err := r.net.Request(ctx, protocol.TypeOpenSession, protocol.OpenSessionPayload{SessionID: id}, &opened); err != nil {
		return nil, err
	}
	r.session = opened.Session
	return opened.State, nil
}

// List returns the sessions stored on the server.
func (r *Remote) List(ctx context.Context) ([]*store.Session, error) {
	var list protocol.SessionListPayload
	if err := r.net.Request(ctx, protocol.TypeListSessions, nil, &list); err != nil {
		return nil, err
	}
	return list.Sessions, nil
}

func (r *Remote) State(ctx context.Context) (*game.GameState, error) {
	var p protocol.GameStatePayload
	if err := r.net.Request(ctx, protocol.TypeGetState, nil, &p); err != nil {
		return nil, err
	}
	return p.State, nil
}

func (r *Remote) Apply(ctx context.Context, a game.Action) (*protocol.ActionResultPayload, error) {
	var result protocol.ActionResultPayload
	if err := r.net.Request(ctx, protocol.TypeAction, protocol.ActionPayload{Action: a}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *Remote) NextDay(ctx context.Context) (*protocol.DayReportPayload, error) {
	var report protocol.DayReportPayload
	if err := r.net.Request(ctx, protocol.TypeNextDay, nil, &report); err != nil {
		return nil, remoteGameError(err)
	}
	return &report, nil
}

func (r *Remote) Offers(ctx context.Context) (*protocol.OffersPayload, error) {
	var offers protocol.OffersPayload
	if err := r.net.Request(ctx, protocol.TypeGetOffers, nil, &offers); err != nil {
		return nil, err
	}
	return &offers, nil
}

func (r *Remote) Reports(ctx context.Context) ([]*store.DayReport, error) {
	var p protocol.ReportsPayload
	if err := r.net.Request(ctx, protocol.TypeGetReports, nil, &p); err != nil {
		return nil, err
	}
	return p.Reports, nil
}

func (r *Remote) Close() error {
	r.net.Disconnect()
	return nil
}

// remoteGameError restores the game sentinel for errors the REPL checks.
func remoteGameError(err error) error {
	var e *protocol.ErrorPayload
	if errors.As(err, &e) && e.Code == protocol.ErrCodeSeasonOver {
		return errors.Join(game.ErrSeasonOver, err)
	}
	return err
}
