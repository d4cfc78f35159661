package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"black-oil/internal/game"
	"black-oil/internal/protocol"
	"black-oil/internal/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := New(Config{
		Store:  store.NewMemoryStore(),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		srv.hub.Stop()
	})
	return ts
}

func doJSON(t *testing.T, method, url string, body any, out any) int {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, r)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, url, err)
		}
	}
	return resp.StatusCode
}

func createSession(t *testing.T, ts *httptest.Server) sessionResponse {
	t.Helper()
	seed := int64(42)
	var created sessionResponse
	status := doJSON(t, http.MethodPost, ts.URL+"/api/sessions",
		protocol.CreateSessionPayload{Name: "test run", Seed: &seed}, &created)
	if status != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", status)
	}
	return created
}

func TestAPI_Health(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}
}

func TestAPI_ListScenarios(t *testing.T) {
	ts := newTestServer(t)

	var scenarios []game.Scenario
	if status := doJSON(t, http.MethodGet, ts.URL+"/api/scenarios", nil, &scenarios); status != http.StatusOK {
		t.Fatalf("Expected 200, got %d", status)
	}
	if len(scenarios) != 3 || scenarios[0].Name != "Frontier Boom" {
		t.Errorf("Unexpected scenarios: %+v", scenarios)
	}
}

func TestAPI_SessionFlow(t *testing.T) {
	ts := newTestServer(t)
	created := createSession(t, ts)

	if created.Session.ID == "" || created.Session.Scenario != "Frontier Boom" {
		t.Fatalf("Unexpected session: %+v", created.Session)
	}
	if created.State.Day != 1 || created.State.Cash != 5200 {
		t.Fatalf("Unexpected initial state: day=%d cash=%d", created.State.Day, created.State.Cash)
	}
	base := ts.URL + "/api/sessions/" + created.Session.ID

	var result protocol.ActionResultPayload
	status := doJSON(t, http.MethodPost, base+"/actions", game.Action{Type: game.ActionBuyLand}, &result)
	if status != http.StatusOK || !result.OK {
		t.Fatalf("Buy land failed: %d %+v", status, result)
	}
	if result.State.Cash != 5200-600 {
		t.Errorf("Expected cash 4600, got %d", result.State.Cash)
	}

	status = doJSON(t, http.MethodPost, base+"/actions", game.Action{Type: game.ActionBuyLand}, &result)
	if status != http.StatusOK || result.OK || result.Code != protocol.ErrCodeAlreadyOwned {
		t.Errorf("Expected already_owned rejection, got %d %+v", status, result)
	}

	var report protocol.DayReportPayload
	if status := doJSON(t, http.MethodPost, base+"/next-day", nil, &report); status != http.StatusOK {
		t.Fatalf("Expected 200, got %d", status)
	}
	if report.Report.Day != 2 || report.State.Day != 2 {
		t.Errorf("Expected day 2, got report=%d state=%d", report.Report.Day, report.State.Day)
	}

	var reports []store.DayReport
	doJSON(t, http.MethodGet, base+"/reports", nil, &reports)
	if len(reports) != 1 || reports[0].Day != 2 {
		t.Errorf("Expected one report for day 2, got %+v", reports)
	}

	var got sessionResponse
	doJSON(t, http.MethodGet, base, nil, &got)
	if got.Session.Day != 2 || !got.State.Tiles[0].Owner.IsPlayer() {
		t.Errorf("Expected persisted progress, got day=%d owner=%v", got.Session.Day, got.State.Tiles[0].Owner)
	}

	var offers protocol.OffersPayload
	doJSON(t, http.MethodGet, base+"/offers", nil, &offers)
	if len(offers.Trade) != game.TradeOfferSize || len(offers.Contracts) != 3 {
		t.Errorf("Unexpected offers: %+v", offers)
	}

	if status := doJSON(t, http.MethodDelete, base, nil, nil); status != http.StatusNoContent {
		t.Errorf("Expected 204, got %d", status)
	}
	var apiErr protocol.ErrorPayload
	if status := doJSON(t, http.MethodGet, base, nil, &apiErr); status != http.StatusNotFound {
		t.Errorf("Expected 404 after delete, got %d", status)
	}
	if apiErr.Code != protocol.ErrCodeSessionNotFound {
		t.Errorf("Expected session_not_found, got %q", apiErr.Code)
	}
}

func TestAPI_Errors(t *testing.T) {
	ts := newTestServer(t)
	created := createSession(t, ts)
	base := ts.URL + "/api/sessions/" + created.Session.ID

	tests := []struct {
		name   string
		method string
		url    string
		body   any
		status int
		code   protocol.ErrorCode
	}{
		{"unknown scenario", http.MethodPost, ts.URL + "/api/sessions", protocol.CreateSessionPayload{Scenario: "Atlantis"}, http.StatusBadRequest, protocol.ErrCodeScenarioNotFound},
		{"unknown action", http.MethodPost, base + "/actions", game.Action{Type: "teleport"}, http.StatusBadRequest, protocol.ErrCodeInvalidAction},
		{"missing session", http.MethodPost, ts.URL + "/api/sessions/nope/next-day", nil, http.StatusNotFound, protocol.ErrCodeSessionNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var apiErr protocol.ErrorPayload
			if status := doJSON(t, tt.method, tt.url, tt.body, &apiErr); status != tt.status {
				t.Errorf("Expected %d, got %d", tt.status, status)
			}
			if apiErr.Code != tt.code {
				t.Errorf("Expected code %q, got %q", tt.code, apiErr.Code)
			}
		})
	}

	req, _ := http.NewRequest(http.MethodPost, base+"/actions", strings.NewReader("{not json"))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for bad JSON, got %d", resp.StatusCode)
	}
}

type wsConn struct {
	t    *testing.T
	conn *websocket.Conn
}

func dialWS(t *testing.T, ts *httptest.Server) *wsConn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return &wsConn{t: t, conn: conn}
}

func (c *wsConn) send(msgType protocol.MessageType, payload any) *protocol.Message {
	c.t.Helper()
	msg, err := protocol.NewMessage(msgType, payload)
	if err != nil {
		c.t.Fatal(err)
	}
	if err := c.conn.WriteJSON(msg); err != nil {
		c.t.Fatalf("write: %v", err)
	}
	return msg
}

func (c *wsConn) expect(msgType protocol.MessageType, payload any) *protocol.Message {
	c.t.Helper()
	c.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg protocol.Message
	if err := c.conn.ReadJSON(&msg); err != nil {
		c.t.Fatalf("read: %v", err)
	}
	if msg.Type != msgType {
		c.t.Fatalf("Expected %s, got %s: %s", msgType, msg.Type, msg.Payload)
	}
	if payload != nil {
		if err := msg.ParsePayload(payload); err != nil {
			c.t.Fatal(err)
		}
	}
	return &msg
}

func TestWebSocket_PlayFlow(t *testing.T) {
	ts := newTestServer(t)
	ws := dialWS(t, ts)

	var welcome protocol.WelcomePayload
	ws.expect(protocol.TypeWelcome, &welcome)
	if welcome.ServerVersion != Version || len(welcome.Scenarios) != 3 {
		t.Errorf("Unexpected welcome: %+v", welcome)
	}

	req := ws.send(protocol.TypeAction, protocol.ActionPayload{Action: game.Action{Type: game.ActionBuyLand}})
	var wsErr protocol.ErrorPayload
	if reply := ws.expect(protocol.TypeError, &wsErr); reply.ID != req.ID || wsErr.Code != protocol.ErrCodeNoSession {
		t.Errorf("Expected no_session error for request %s, got %s %+v", req.ID, reply.ID, wsErr)
	}

	seed := int64(7)
	req = ws.send(protocol.TypeCreateSession, protocol.CreateSessionPayload{Scenario: "Desert Wildcat", Seed: &seed})
	var opened protocol.SessionOpenedPayload
	if reply := ws.expect(protocol.TypeSessionOpened, &opened); reply.ID != req.ID {
		t.Errorf("Expected reply to carry request ID %s, got %s", req.ID, reply.ID)
	}
	if opened.Session.Scenario != "Desert Wildcat" || opened.State.Cash != 6200 {
		t.Fatalf("Unexpected session: %+v cash=%d", opened.Session, opened.State.Cash)
	}

	ws.send(protocol.TypeAction, protocol.ActionPayload{Action: game.Action{Type: game.ActionBuyLand, Row: 1, Col: 1}})
	var result protocol.ActionResultPayload
	ws.expect(protocol.TypeActionResult, &result)
	if !result.OK || result.State.Cash != 6200-700 {
		t.Errorf("Unexpected action result: ok=%v cash=%d", result.OK, result.State.Cash)
	}

	ws.send(protocol.TypeNextDay, nil)
	var report protocol.DayReportPayload
	ws.expect(protocol.TypeDayReport, &report)
	if report.State.Day != 2 || report.SeasonOver {
		t.Errorf("Unexpected day report: day=%d over=%v", report.State.Day, report.SeasonOver)
	}

	ws.send(protocol.TypeGetReports, nil)
	var reports protocol.ReportsPayload
	ws.expect(protocol.TypeReports, &reports)
	if len(reports.Reports) != 1 {
		t.Errorf("Expected 1 report, got %d", len(reports.Reports))
	}

	ws.send(protocol.TypePing, nil)
	ws.expect(protocol.TypePong, nil)

	ws.send("dance", nil)
	ws.expect(protocol.TypeError, &wsErr)
	if wsErr.Code != protocol.ErrCodeUnknownMessage {
		t.Errorf("Expected unknown_message, got %q", wsErr.Code)
	}
}

func TestWebSocket_SessionBroadcast(t *testing.T) {
	ts := newTestServer(t)
	created := createSession(t, ts)

	a, b := dialWS(t, ts), dialWS(t, ts)
	for _, ws := range []*wsConn{a, b} {
		ws.expect(protocol.TypeWelcome, nil)
		ws.send(protocol.TypeOpenSession, protocol.OpenSessionPayload{SessionID: created.Session.ID})
		ws.expect(protocol.TypeSessionOpened, nil)
	}

	a.send(protocol.TypeAction, protocol.ActionPayload{Action: game.Action{Type: game.ActionBuyLand}})
	a.expect(protocol.TypeActionResult, nil)

	var update protocol.GameStatePayload
	b.expect(protocol.TypeGameState, &update)
	if !update.State.Tiles[0].Owner.IsPlayer() {
		t.Error("Expected the second client to see the purchase")
	}
}
