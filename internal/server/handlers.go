package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"black-oil/internal/game"
	"black-oil/internal/protocol"
)

// Version is reported to clients in the welcome message.
const Version = "0.3.0"

const handlerTimeout = 10 * time.Second

var (
	errNoSession      = errors.New("no session is open on this connection")
	errInvalidPayload = errors.New("invalid payload")
	errUnknownMessage = errors.New("unknown message type")
)

// Handlers processes incoming WebSocket messages.
type Handlers struct {
	sessions *Sessions
	hub      *Hub
	log      *slog.Logger
}

// NewHandlers creates a new handler set. The hub is attached by the server.
func NewHandlers(sessions *Sessions, log *slog.Logger) *Handlers {
	return &Handlers{sessions: sessions, log: log}
}

// Handle routes a message to the appropriate handler.
func (h *Handlers) Handle(client *Client, msg *protocol.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	var err error
	switch msg.Type {
	case protocol.TypePing:
		err = h.reply(client, msg, protocol.TypePong, struct{}{})
	case protocol.TypeCreateSession:
		err = h.handleCreateSession(ctx, client, msg)
	case protocol.TypeOpenSession:
		err = h.handleOpenSession(ctx, client, msg)
	case protocol.TypeCloseSession:
		h.hub.Unbind(client)
		err = h.reply(client, msg, protocol.TypeSessionClosed, struct{}{})
	case protocol.TypeListSessions:
		err = h.handleListSessions(ctx, client, msg)
	case protocol.TypeAction:
		err = h.handleAction(ctx, client, msg)
	case protocol.TypeNextDay:
		err = h.handleNextDay(ctx, client, msg)
	case protocol.TypeGetState:
		err = h.handleGetState(ctx, client, msg)
	case protocol.TypeGetOffers:
		err = h.handleGetOffers(ctx, client, msg)
	case protocol.TypeGetReports:
		err = h.handleGetReports(ctx, client, msg)
	default:
		err = fmt.Errorf("%w: %q", errUnknownMessage, msg.Type)
	}

	if err != nil {
		h.sendError(client, msg, err)
	}
}

func (h *Handlers) handleCreateSession(ctx context.Context, client *Client, msg *protocol.Message) error {
	var payload protocol.CreateSessionPayload
	if err := msg.ParsePayload(&payload); err != nil {
		return fmt.Errorf("%w: %v", errInvalidPayload, err)
	}
	meta, state, err := h.sessions.Create(ctx, payload.Name, payload.Scenario, payload.Seed)
	if err != nil {
		return err
	}
	h.hub.Bind(client, meta.ID)
	return h.reply(client, msg, protocol.TypeSessionOpened, protocol.SessionOpenedPayload{Session: meta, State: state})
}

func (h *Handlers) handleOpenSession(ctx context.Context, client *Client, msg *protocol.Message) error {
	var payload protocol.OpenSessionPayload
	if err := msg.ParsePayload(&payload); err != nil || payload.SessionID == "" {
		return errInvalidPayload
	}
	meta, state, err := h.sessions.State(ctx, payload.SessionID)
	if err != nil {
		return err
	}
	h.hub.Bind(client, meta.ID)
	return h.reply(client, msg, protocol.TypeSessionOpened, protocol.SessionOpenedPayload{Session: meta, State: state})
}

func (h *Handlers) handleListSessions(ctx context.Context, client *Client, msg *protocol.Message) error {
	sessions, err := h.sessions.List(ctx)
	if err != nil {
		return err
	}
	return h.reply(client, msg, protocol.TypeSessionList, protocol.SessionListPayload{Sessions: sessions})
}

func (h *Handlers) handleAction(ctx context.Context, client *Client, msg *protocol.Message) error {
	id, err := h.boundSession(client)
	if err != nil {
		return err
	}
	var payload protocol.ActionPayload
	if err := msg.ParsePayload(&payload); err != nil {
		return fmt.Errorf("%w: %v", errInvalidPayload, err)
	}

	outcome, state, err := h.sessions.Apply(ctx, id, payload.Action)
	if err != nil {
		return err
	}
	result := protocol.ActionResultPayload{
		Action:  payload.Type,
		OK:      outcome.OK,
		Message: outcome.Message,
		Code:    protocol.CodeFor(outcome.Reason),
		Revenue: outcome.Revenue,
		State:   state,
	}
	if outcome.OK {
		h.hub.notifySession(id, client, protocol.TypeGameState, protocol.GameStatePayload{State: state})
	}
	return h.reply(client, msg, protocol.TypeActionResult, result)
}

func (h *Handlers) handleNextDay(ctx context.Context, client *Client, msg *protocol.Message) error {
	id, err := h.boundSession(client)
	if err != nil {
		return err
	}
	snap, state, err := h.sessions.NextDay(ctx, id)
	if err != nil {
		return err
	}
	report := protocol.DayReportPayload{
		Report:      snap,
		State:       state,
		SeasonOver:  state.SeasonOver(),
		FinalAssets: state.FinalAssets(),
	}
	h.hub.notifySession(id, client, protocol.TypeDayReport, report)
	return h.reply(client, msg, protocol.TypeDayReport, report)
}

func (h *Handlers) handleGetState(ctx context.Context, client *Client, msg *protocol.Message) error {
	id, err := h.boundSession(client)
	if err != nil {
		return err
	}
	_, state, err := h.sessions.State(ctx, id)
	if err != nil {
		return err
	}
	return h.reply(client, msg, protocol.TypeGameState, protocol.GameStatePayload{State: state})
}

func (h *Handlers) handleGetOffers(ctx context.Context, client *Client, msg *protocol.Message) error {
	id, err := h.boundSession(client)
	if err != nil {
		return err
	}
	trade, contracts, err := h.sessions.Offers(ctx, id)
	if err != nil {
		return err
	}
	return h.reply(client, msg, protocol.TypeOffers, protocol.OffersPayload{Trade: trade, Contracts: contracts})
}

func (h *Handlers) handleGetReports(ctx context.Context, client *Client, msg *protocol.Message) error {
	id, err := h.boundSession(client)
	if err != nil {
		return err
	}
	reports, err := h.sessions.Reports(ctx, id)
	if err != nil {
		return err
	}
	return h.reply(client, msg, protocol.TypeReports, protocol.ReportsPayload{Reports: reports})
}

func (h *Handlers) boundSession(client *Client) (string, error) {
	id := h.hub.SessionOf(client)
	if id == "" {
		return "", errNoSession
	}
	return id, nil
}

func (h *Handlers) sendWelcome(client *Client) {
	names := make([]string, 0)
	for _, s := range h.sessions.catalog.All() {
		names = append(names, s.Name)
	}
	msg, err := protocol.NewMessage(protocol.TypeWelcome, protocol.WelcomePayload{ServerVersion: Version, Scenarios: names})
	if err != nil {
		return
	}
	client.Send(msg)
}

func (h *Handlers) reply(client *Client, req *protocol.Message, msgType protocol.MessageType, payload any) error {
	msg, err := protocol.Reply(req, msgType, payload)
	if err != nil {
		return err
	}
	client.Send(msg)
	return nil
}

// sendError reports a failed request to the client. req may be nil when
// the request could not be decoded.
func (h *Handlers) sendError(client *Client, req *protocol.Message, err error) {
	code := errorCode(err)
	if code == protocol.ErrCodeInternalError {
		h.log.Error("request failed", "err", err)
	} else {
		h.log.Debug("request rejected", "code", code, "err", err)
	}
	msg, merr := protocol.Reply(req, protocol.TypeError, protocol.ErrorPayload{Code: code, Message: err.Error()})
	if merr != nil {
		return
	}
	client.Send(msg)
}

// errorCode maps handler and game errors to protocol codes.
func errorCode(err error) protocol.ErrorCode {
	switch {
	case errors.Is(err, errNoSession):
		return protocol.ErrCodeNoSession
	case errors.Is(err, errInvalidPayload):
		return protocol.ErrCodeInvalidPayload
	case errors.Is(err, errUnknownMessage):
		return protocol.ErrCodeUnknownMessage
	case errors.Is(err, ErrUnknownScenario):
		return protocol.ErrCodeScenarioNotFound
	case errors.Is(err, game.ErrUnknownAction):
		return protocol.ErrCodeInvalidAction
	}
	return protocol.CodeFor(err)
}
