package client

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"black-oil/internal/game"
	"black-oil/internal/protocol"
	"black-oil/internal/server"
	"black-oil/internal/store"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWebSocketURL(t *testing.T) {
	tests := []struct{ in, want string }{
		{"localhost:30000", "ws://localhost:30000/ws"},
		{"http://oil.example.com", "ws://oil.example.com/ws"},
		{"https://oil.example.com/", "wss://oil.example.com/ws"},
		{"wss://oil.example.com/ws", "wss://oil.example.com/ws"},
	}
	for _, tt := range tests {
		if got := WebSocketURL(tt.in); got != tt.want {
			t.Errorf("WebSocketURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestConfig_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "black-oil", "config.json")

	missing, err := loadConfigFile(path)
	if err != nil || missing.LastServer != "localhost:30000" {
		t.Fatalf("Expected defaults for a missing file, got %+v %v", missing, err)
	}

	cfg := DefaultConfig()
	cfg.LastServer = "oil.example.com:443"
	cfg.LastSession = "abc"
	if err := cfg.saveFile(path); err != nil {
		t.Fatal(err)
	}
	got, err := loadConfigFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if *got != *cfg {
		t.Errorf("Expected %+v, got %+v", cfg, got)
	}
}

func TestLocal_PlayAndReports(t *testing.T) {
	ctx := context.Background()
	l := NewLocal(game.NewGame(game.BuiltInScenarios()[0], 9))

	result, err := l.Apply(ctx, game.Action{Type: game.ActionBuyLand})
	if err != nil || !result.OK {
		t.Fatalf("Buy failed: %+v %v", result, err)
	}
	result, _ = l.Apply(ctx, game.Action{Type: game.ActionDrill, Row: 4, Col: 4})
	if result.OK || result.Code != protocol.ErrCodeNotOwned {
		t.Errorf("Expected not_owned, got %+v", result)
	}
	if _, err := l.Apply(ctx, game.Action{Type: "teleport"}); !errors.Is(err, game.ErrUnknownAction) {
		t.Errorf("Expected ErrUnknownAction, got %v", err)
	}

	for i := 0; i < 2; i++ {
		if _, err := l.NextDay(ctx); err != nil {
			t.Fatal(err)
		}
	}
	reports, _ := l.Reports(ctx)
	if len(reports) != 2 || reports[1].Day != 3 || reports[0].SessionID != LocalSessionID {
		t.Errorf("Unexpected reports: %+v", reports)
	}

	state, _ := l.State(ctx)
	state.Cash = -1
	if l.Game().Cash == -1 {
		t.Error("State should return a copy")
	}
}

func TestLocal_SeasonOver(t *testing.T) {
	g := game.NewGame(game.BuiltInScenarios()[0], 9)
	g.Day = g.Scenario.MaxDays
	l := NewLocal(g)

	if _, err := l.NextDay(context.Background()); !errors.Is(err, game.ErrSeasonOver) {
		t.Errorf("Expected ErrSeasonOver, got %v", err)
	}
}

func TestRemote_AgainstServer(t *testing.T) {
	srv := server.New(server.Config{Store: store.NewMemoryStore(), Logger: quietLogger()})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	net := NewNetworkClient(quietLogger())
	if err := net.Connect(ctx, ts.URL); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	r := NewRemote(net)
	defer r.Close()

	var noSession *protocol.ErrorPayload
	if _, err := r.State(ctx); !errors.As(err, &noSession) || noSession.Code != protocol.ErrCodeNoSession {
		t.Errorf("Expected no_session before opening, got %v", err)
	}

	seed := int64(3)
	state, err := r.Create(ctx, "remote run", "", &seed)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if state.Day != 1 || r.Session() == nil {
		t.Fatalf("Unexpected state after create: day=%d session=%v", state.Day, r.Session())
	}

	result, err := r.Apply(ctx, game.Action{Type: game.ActionBuyLand, Row: 2, Col: 2})
	if err != nil || !result.OK {
		t.Fatalf("Remote buy failed: %+v %v", result, err)
	}
	report, err := r.NextDay(ctx)
	if err != nil || report.State.Day != 2 {
		t.Fatalf("Remote next day failed: %+v %v", report, err)
	}
	offers, err := r.Offers(ctx)
	if err != nil || len(offers.Contracts) != 3 {
		t.Errorf("Unexpected offers: %+v %v", offers, err)
	}
	reports, err := r.Reports(ctx)
	if err != nil || len(reports) != 1 {
		t.Errorf("Expected one report, got %d %v", len(reports), err)
	}
	sessions, err := r.List(ctx)
	if err != nil || len(sessions) != 1 || sessions[0].Name != "remote run" {
		t.Errorf("Unexpected sessions: %+v %v", sessions, err)
	}
}
