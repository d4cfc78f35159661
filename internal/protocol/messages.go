// Package protocol defines the WebSocket messages exchanged between the
// Black Oil server and remote clients.
package protocol

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"black-oil/internal/game"
	"black-oil/internal/store"
)

// MessageType identifies the type of message.
type MessageType string

// Session message types
const (
	TypeCreateSession MessageType = "create_session"
	TypeOpenSession   MessageType = "open_session"
	TypeSessionOpened MessageType = "session_opened"
	TypeCloseSession  MessageType = "close_session"
	TypeSessionClosed MessageType = "session_closed"
	TypeListSessions  MessageType = "list_sessions"
	TypeSessionList   MessageType = "session_list"
)

// Game message types
const (
	TypeAction       MessageType = "action"
	TypeActionResult MessageType = "action_result"
	TypeNextDay      MessageType = "next_day"
	TypeDayReport    MessageType = "day_report"
	TypeGetState     MessageType = "get_state"
	TypeGameState    MessageType = "game_state"
	TypeGetOffers    MessageType = "get_offers"
	TypeOffers       MessageType = "offers"
	TypeGetReports   MessageType = "get_reports"
	TypeReports      MessageType = "reports"
)

// System message types
const (
	TypeWelcome MessageType = "welcome"
	TypeError   MessageType = "error"
	TypePing    MessageType = "ping"
	TypePong    MessageType = "pong"
)

// Message is the envelope for all messages.
type Message struct {
	Type      MessageType     `json:"type"`
	ID        string          `json:"id"`
	Timestamp int64           `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// NewMessage creates a new message with the given type and payload.
func NewMessage(msgType MessageType, payload any) (*Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      msgType,
		ID:        uuid.New().String(),
		Timestamp: time.Now().UnixMilli(),
		Payload:   data,
	}, nil
}

// Reply creates a response carrying the ID of the request it answers.
func Reply(req *Message, msgType MessageType, payload any) (*Message, error) {
	msg, err := NewMessage(msgType, payload)
	if err != nil {
		return nil, err
	}
	if req != nil && req.ID != "" {
		msg.ID = req.ID
	}
	return msg, nil
}

// ParsePayload unmarshals the payload into the given type.
func (m *Message) ParsePayload(v any) error {
	if len(m.Payload) == 0 {
		return nil
	}
	return json.Unmarshal(m.Payload, v)
}

// ErrorCode represents an error type.
type ErrorCode string

const (
	ErrCodeInvalidTile      ErrorCode = "invalid_tile"
	ErrCodeAlreadyOwned     ErrorCode = "already_owned"
	ErrCodeNotOwned         ErrorCode = "not_owned"
	ErrCodeInsufficientCash ErrorCode = "insufficient_cash"
	ErrCodeAlreadyBuilt     ErrorCode = "already_built"
	ErrCodeNotBuilt         ErrorCode = "not_built"
	ErrCodeMaxLevel         ErrorCode = "max_level"
	ErrCodeLimitReached     ErrorCode = "limit_reached"
	ErrCodeNoBalance        ErrorCode = "no_balance"
	ErrCodeNothingToSell    ErrorCode = "nothing_to_sell"
	ErrCodeInvalidOffer     ErrorCode = "invalid_offer"
	ErrCodeInvalidVolume    ErrorCode = "invalid_volume"
	ErrCodeInvalidCommodity ErrorCode = "invalid_commodity"
	ErrCodeSeasonOver       ErrorCode = "season_over"
	ErrCodeInvalidAction    ErrorCode = "invalid_action"
	ErrCodeInvalidPayload   ErrorCode = "invalid_payload"
	ErrCodeUnknownMessage   ErrorCode = "unknown_message"
	ErrCodeNoSession        ErrorCode = "no_session"
	ErrCodeSessionNotFound  ErrorCode = "session_not_found"
	ErrCodeScenarioNotFound ErrorCode = "scenario_not_found"
	ErrCodeInternalError    ErrorCode = "internal_error"
)

var reasonCodes = []struct {
	err  error
	code ErrorCode
}{
	{game.ErrInvalidTile, ErrCodeInvalidTile},
	{game.ErrAlreadyOwned, ErrCodeAlreadyOwned},
	{game.ErrNotOwned, ErrCodeNotOwned},
	{game.ErrInsufficientCash, ErrCodeInsufficientCash},
	{game.ErrAlreadyBuilt, ErrCodeAlreadyBuilt},
	{game.ErrNotBuilt, ErrCodeNotBuilt},
	{game.ErrMaxLevel, ErrCodeMaxLevel},
	{game.ErrLimitReached, ErrCodeLimitReached},
	{game.ErrNoBalance, ErrCodeNoBalance},
	{game.ErrNothingToSell, ErrCodeNothingToSell},
	{game.ErrInvalidOffer, ErrCodeInvalidOffer},
	{game.ErrInvalidVolume, ErrCodeInvalidVolume},
	{game.ErrInvalidCommodity, ErrCodeInvalidCommodity},
	{game.ErrSeasonOver, ErrCodeSeasonOver},
	{game.ErrUnknownAction, ErrCodeInvalidAction},
	{store.ErrSessionNotFound, ErrCodeSessionNotFound},
}

// CodeFor maps a game reason or store error to its wire code.
func CodeFor(err error) ErrorCode {
	if err == nil {
		return ""
	}
	for _, rc := range reasonCodes {
		if errors.Is(err, rc.err) {
			return rc.code
		}
	}
	return ErrCodeInternalError
}

// ErrorPayload is the payload for error messages.
type ErrorPayload struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func (e *ErrorPayload) Error() string {
	return string(e.Code) + ": " + e.Message
}
