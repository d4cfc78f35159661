package client

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"black-oil/internal/game"
	"black-oil/internal/save"
)

func newTestREPL(t *testing.T) (*REPL, *Local, *bytes.Buffer) {
	t.Helper()
	l := NewLocal(game.NewGame(game.BuiltInScenarios()[0], 21))
	var out bytes.Buffer
	r := NewREPL(l, &out, filepath.Join(t.TempDir(), "save.json"), quietLogger())
	r.Clipboard = func([]byte) error { return errors.New("no display") }
	return r, l, &out
}

func TestREPL_PlaysCommands(t *testing.T) {
	r, l, out := newTestREPL(t)
	ctx := context.Background()

	for _, line := range []string{"buy 1 1", "survey 1 1", "next"} {
		if _, err := r.Exec(ctx, line); err != nil {
			t.Fatalf("Exec(%q) failed: %v", line, err)
		}
	}
	g := l.Game()
	tile, _ := g.Tile(0, 0)
	if !tile.Owner.IsPlayer() || tile.Survey == nil {
		t.Errorf("Expected leased and surveyed tile, got %+v", tile)
	}
	if g.Day != 2 {
		t.Errorf("Expected day 2, got %d", g.Day)
	}
	if !strings.Contains(out.String(), "Day 2:") {
		t.Errorf("Expected a day report in output:\n%s", out.String())
	}
}

func TestREPL_ErrorsDoNotQuit(t *testing.T) {
	r, _, _ := newTestREPL(t)
	ctx := context.Background()

	for _, line := range []string{"blargh", "buy 1", "sell water"} {
		quit, err := r.Exec(ctx, line)
		if err == nil || quit {
			t.Errorf("Exec(%q) = quit %v, err %v; want an error", line, quit, err)
		}
	}
	if quit, err := r.Exec(ctx, "quit"); !quit || err != nil {
		t.Errorf("Expected quit, got %v %v", quit, err)
	}
}

func TestREPL_SaveRoundTrip(t *testing.T) {
	r, l, _ := newTestREPL(t)
	ctx := context.Background()
	r.Exec(ctx, "buy 2 2")
	r.Exec(ctx, "next")

	if _, err := r.Exec(ctx, "save"); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := save.NewLoader(nil).LoadFile(r.SavePath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if loaded.Day != l.Game().Day || loaded.Cash != l.Game().Cash {
		t.Errorf("Expected day %d cash %d, got day %d cash %d", l.Game().Day, l.Game().Cash, loaded.Day, loaded.Cash)
	}
}

func TestREPL_ExportReportsClipboardFailure(t *testing.T) {
	r, _, _ := newTestREPL(t)

	if _, err := r.Exec(context.Background(), "export"); err == nil || !strings.Contains(err.Error(), "no display") {
		t.Errorf("Expected clipboard error, got %v", err)
	}

	var copied []byte
	r.Clipboard = func(data []byte) error { copied = data; return nil }
	if _, err := r.Exec(context.Background(), "export"); err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(copied, []byte(`"save_version": 3`)) {
		t.Errorf("Expected save JSON on the clipboard, got %.80s", copied)
	}
}

func TestREPL_HistoryCSV(t *testing.T) {
	r, _, _ := newTestREPL(t)
	ctx := context.Background()
	r.Exec(ctx, "next")
	r.Exec(ctx, "next")

	path := filepath.Join(t.TempDir(), "out", "history.csv")
	if _, err := r.Exec(ctx, "history csv "+path); err != nil {
		t.Fatalf("history csv failed: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(rows[0], ",") != "day,category,message,amount" {
		t.Errorf("Unexpected header %v", rows[0])
	}
	if len(rows) < 13 || rows[1][0] != "2" || rows[len(rows)-1][0] != "3" {
		t.Errorf("Expected rows for days 2 and 3, got %d rows", len(rows))
	}
}

func TestREPL_SeasonOver(t *testing.T) {
	r, l, out := newTestREPL(t)
	l.Game().Day = l.Game().Scenario.MaxDays

	if _, err := r.Exec(context.Background(), "next"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "The season is over") {
		t.Errorf("Expected season over message, got:\n%s", out.String())
	}
}

func TestREPL_Run(t *testing.T) {
	r, l, out := newTestREPL(t)

	in := strings.NewReader("status\nbuy 1 2\nmap\nquit\nnext\n")
	if err := r.Run(context.Background(), in); err != nil {
		t.Fatal(err)
	}
	if l.Game().Day != 1 {
		t.Error("Input after quit should not run")
	}
	if !strings.Contains(out.String(), "  1 ") || !strings.Contains(out.String(), "P-") {
		t.Errorf("Expected the map with the leased tile, got:\n%s", out.String())
	}
}

func TestRenderMap(t *testing.T) {
	g := game.NewGame(game.BuiltInScenarios()[0], 4)
	t0, _ := g.Tile(0, 0)
	t0.Owner = game.PlayerOwner()
	t0.Drilled = true
	t0.PumpLevel = 2
	t1, _ := g.Tile(0, 1)
	t1.Owner = game.RivalOwner(g.Competitors[0].ID)

	lines := strings.Split(RenderMap(g), "\n")
	if !strings.HasPrefix(lines[1], "  1  P2 "+string(g.Competitors[0].Name[0])+"-") {
		t.Errorf("Unexpected first row %q", lines[1])
	}
	if len(lines) < 6 {
		t.Fatalf("Expected %d grid rows, got %q", g.Scenario.GridSize, lines)
	}
}
