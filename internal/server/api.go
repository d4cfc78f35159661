package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"black-oil/internal/game"
	"black-oil/internal/protocol"
	"black-oil/internal/store"
)

type sessionResponse struct {
	Session *store.Session  `json:"session"`
	State   *game.GameState `json:"state"`
}

func (s *Server) handleListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sessions.catalog.All())
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.sessions.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if sessions == nil {
		sessions = []*store.Session{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req protocol.CreateSessionPayload
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	meta, state, err := s.sessions.Create(r.Context(), req.Name, req.Scenario, req.Seed)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{Session: meta, State: state})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	meta, state, err := s.sessions.State(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Session: meta, State: state})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.sessions.Delete(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	s.hub.DetachSession(id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	var a game.Action
	if err := decodeBody(r, &a); err != nil {
		s.writeError(w, err)
		return
	}
	id := chi.URLParam(r, "id")
	outcome, state, err := s.sessions.Apply(r.Context(), id, a)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if outcome.OK {
		s.hub.notifySession(id, nil, protocol.TypeGameState, protocol.GameStatePayload{State: state})
	}
	writeJSON(w, http.StatusOK, protocol.ActionResultPayload{
		Action:  a.Type,
		OK:      outcome.OK,
		Message: outcome.Message,
		Code:    protocol.CodeFor(outcome.Reason),
		Revenue: outcome.Revenue,
		State:   state,
	})
}

func (s *Server) handleNextDay(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	snap, state, err := s.sessions.NextDay(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	report := protocol.DayReportPayload{
		Report:      snap,
		State:       state,
		SeasonOver:  state.SeasonOver(),
		FinalAssets: state.FinalAssets(),
	}
	s.hub.notifySession(id, nil, protocol.TypeDayReport, report)
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleOffers(w http.ResponseWriter, r *http.Request) {
	trade, contracts, err := s.sessions.Offers(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, protocol.OffersPayload{Trade: trade, Contracts: contracts})
}

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	reports, err := s.sessions.Reports(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if reports == nil {
		reports = []*store.DayReport{}
	}
	writeJSON(w, http.StatusOK, reports)
}

func decodeBody(r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errInvalidPayload, err)
	}
	return nil
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errorCode(err)
	status := http.StatusInternalServerError
	switch code {
	case protocol.ErrCodeSessionNotFound:
		status = http.StatusNotFound
	case protocol.ErrCodeInvalidPayload, protocol.ErrCodeInvalidAction, protocol.ErrCodeScenarioNotFound:
		status = http.StatusBadRequest
	case protocol.ErrCodeSeasonOver:
		status = http.StatusConflict
	default:
		s.log.Error("request failed", "err", err)
	}
	writeJSON(w, status, protocol.ErrorPayload{Code: code, Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
