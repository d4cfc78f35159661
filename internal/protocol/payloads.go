package protocol

import (
	"black-oil/internal/game"
	"black-oil/internal/store"
)

// ==================== Session ====================

// CreateSessionPayload starts a new game. A nil seed lets the server pick.
type CreateSessionPayload struct {
	Name     string `json:"name"`
	Scenario string `json:"scenario"`
	Seed     *int64 `json:"seed,omitempty"`
}

type OpenSessionPayload struct {
	SessionID string `json:"sessionId"`
}

// SessionOpenedPayload confirms the session bound to the connection.
type SessionOpenedPayload struct {
	Session *store.Session  `json:"session"`
	State   *game.GameState `json:"state"`
}

type SessionListPayload struct {
	Sessions []*store.Session `json:"sessions"`
}

// ==================== Game ====================

// ActionPayload wraps a player action.
type ActionPayload struct {
	game.Action
}

type ActionResultPayload struct {
	Action  game.ActionType `json:"action"`
	OK      bool            `json:"ok"`
	Message string          `json:"message"`
	Code    ErrorCode       `json:"code,omitempty"`
	Revenue int             `json:"revenue,omitempty"`
	State   *game.GameState `json:"state"`
}

// DayReportPayload is the reply to next_day.
type DayReportPayload struct {
	Report      *game.EconomySnapshot `json:"report"`
	State       *game.GameState       `json:"state"`
	SeasonOver  bool                  `json:"seasonOver"`
	FinalAssets int                   `json:"finalAssets"`
}

type GameStatePayload struct {
	State *game.GameState `json:"state"`
}

type OffersPayload struct {
	Trade     []game.TradeOffer    `json:"trade"`
	Contracts []game.ContractOffer `json:"contracts"`
}

type ReportsPayload struct {
	Reports []*store.DayReport `json:"reports"`
}

// ==================== System ====================

type WelcomePayload struct {
	ServerVersion string   `json:"serverVersion"`
	Scenarios     []string `json:"scenarios"`
}
