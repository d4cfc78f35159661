package save

import (
	"bytes"
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"black-oil/internal/game"
)

func testLoader(t *testing.T) *Loader {
	t.Helper()
	l := NewLoader(nil)
	l.Rand = rand.New(rand.NewPCG(1, 2))
	return l
}

func playedGame(t *testing.T) *game.GameState {
	t.Helper()
	catalog, err := game.NewCatalog()
	if err != nil {
		t.Fatal(err)
	}
	g := game.NewGame(catalog.Default(), 5)
	for _, a := range []game.Action{
		{Type: game.ActionBuyLand, Row: 0, Col: 0},
		{Type: game.ActionSurvey, Row: 0, Col: 0},
		{Type: game.ActionDrill, Row: 0, Col: 0},
		{Type: game.ActionBuildPump, Row: 0, Col: 0},
	} {
		if _, err := g.Apply(a); err != nil {
			t.Fatalf("Apply %s: %v", a.Type, err)
		}
	}
	for i := 0; i < 4; i++ {
		if _, err := g.NextDay(); err != nil {
			t.Fatal(err)
		}
	}
	g.TradeOffers()
	g.ContractOffers()
	return g
}

func TestRoundTrip_RestoresSessionAndRandomStream(t *testing.T) {
	g := playedGame(t)

	data, err := Marshal(g)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	back, err := testLoader(t).Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if !reflect.DeepEqual(g.View(), back.View()) {
		t.Fatal("Restored session differs from the original")
	}

	want, err := g.NextDay()
	if err != nil {
		t.Fatal(err)
	}
	got, err := back.NextDay()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(want, got) || g.Price != back.Price || g.Cash != back.Cash {
		t.Errorf("Restored session diverged after a day: %+v vs %+v", want, got)
	}
}

func TestMarshal_UsesSnakeCaseAndTuples(t *testing.T) {
	data, err := Marshal(playedGame(t))
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{`"save_version": 3`, `"petrol_price"`, `"transport_hub"`, `"output_rate"`, `"owner": "player"`, `"rng_state"`} {
		if !bytes.Contains(data, []byte(key)) {
			t.Errorf("Expected %s in save", key)
		}
	}
	if !bytes.Contains(data, []byte(`"decorations": [`+"\n"+`    [`)) {
		t.Error("Expected decorations encoded as tuples")
	}
}

const versionOneSave = `{
  "scenario": "Desert Wildcat",
  "day": 12,
  "cash": 4100,
  "price": 70,
  "auto_refine": false,
  "competitors": [
    {"name": "Desert Drill", "cash": 5000, "aggressiveness": 0.5, "color": "#c0a060"}
  ],
  "tiles": [
    {"row": 0, "col": 0, "reserve": 80, "output_rate": 12, "owner": "player", "drilled": true,
     "pump_level": 1, "storage": 9, "survey_low": 60, "survey_high": 100},
    {"row": 0, "col": 1, "reserve": 50, "output_rate": 8, "owner": "Desert Drill", "drilled": false,
     "pump_level": 0, "storage": 0, "capacity": 30, "survey_low": null, "survey_high": null},
    {"row": 1, "col": 0, "reserve": 50, "output_rate": 8, "owner": "Gone Corp", "drilled": false,
     "pump_level": 0, "storage": 0}
  ],
  "decorations": [[10, 20, 5, "#3a2f1f"]]
}`

func TestUnmarshal_MigratesVersionOne(t *testing.T) {
	g, err := testLoader(t).Unmarshal([]byte(versionOneSave))
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if g.Scenario.Name != "Desert Wildcat" || g.Day != 12 || g.Cash != 4100 {
		t.Errorf("Unexpected header: %s day %d cash %d", g.Scenario.Name, g.Day, g.Cash)
	}
	if !g.AutoRefine {
		t.Error("Expected auto refine enabled for version 1 saves")
	}

	first := g.Tiles[0]
	if first.Survey == nil || first.Survey.Low != 60 || first.Survey.High != 100 {
		t.Errorf("Expected survey 60-100, got %+v", first.Survey)
	}
	if !first.Owner.IsPlayer() || first.Capacity != game.DefaultCapacity {
		t.Errorf("Unexpected first tile: %+v", first)
	}
	second := g.Tiles[1]
	if !second.Owner.IsRival(0) || second.Survey != nil || second.Capacity != 30 {
		t.Errorf("Unexpected second tile: %+v", second)
	}
	if third, _ := g.Tile(1, 0); third == nil || !third.Owner.IsUnclaimed() || third.Reserve != 50 {
		t.Errorf("Expected unknown owner name to leave the tile unclaimed, got %+v", third)
	}

	c := g.Competitors[0]
	if c.StorageThreshold != 30 || c.RiskTolerance != 0.5 || c.Discipline != 0.5 {
		t.Errorf("Expected competitor defaults, got %+v", c)
	}
	if len(g.Buyers) != len(game.DefaultBuyers()) {
		t.Errorf("Expected default buyers, got %d", len(g.Buyers))
	}
	if g.MapSeed < 1000 || g.MapSeed > 9999 {
		t.Errorf("Expected generated map seed, got %d", g.MapSeed)
	}
	if g.PetrolPrice < game.PetrolPriceMin || g.PetrolPrice > game.PetrolPriceMax {
		t.Errorf("Expected generated petrol price, got %d", g.PetrolPrice)
	}
	if g.LoanLimit != game.DefaultLoanLimit || g.MarketDemand != game.BaseDemand {
		t.Errorf("Unexpected defaults: limit %d demand %d", g.LoanLimit, g.MarketDemand)
	}
	if len(g.Decorations) != 1 || g.Decorations[0].Color != "#3a2f1f" {
		t.Errorf("Unexpected decorations: %+v", g.Decorations)
	}
}

func TestUnmarshal_VersionTwoKeepsAutoRefine(t *testing.T) {
	g, err := testLoader(t).Unmarshal([]byte(`{"save_version": 2, "scenario": "Frontier Boom", "auto_refine": false}`))
	if err != nil {
		t.Fatal(err)
	}
	if g.AutoRefine {
		t.Error("Expected auto refine to stay off")
	}
}

func TestUnmarshal_RegeneratesEmptyWorld(t *testing.T) {
	g, err := testLoader(t).Unmarshal([]byte(`{"save_version": 3, "scenario": "Atlantis", "map_seed": 4242}`))
	if err != nil {
		t.Fatal(err)
	}
	if g.Scenario.Name != "Frontier Boom" {
		t.Errorf("Expected fallback scenario, got %q", g.Scenario.Name)
	}
	n := g.Scenario.GridSize
	if len(g.Tiles) != n*n {
		t.Fatalf("Expected %d tiles, got %d", n*n, len(g.Tiles))
	}
	want := game.GenerateTiles(g.Scenario, 4242)
	for i := range want {
		if g.Tiles[i].Reserve != want[i].Reserve {
			t.Fatalf("Tile %d not generated from the map seed", i)
		}
	}
	if g.Price != g.Scenario.PriceMin || g.Cash != g.Scenario.StartingCash || g.Day != 1 {
		t.Errorf("Unexpected defaults: price %d cash %d day %d", g.Price, g.Cash, g.Day)
	}
	if len(g.Competitors) != 3 || len(g.Decorations) == 0 {
		t.Error("Expected default competitors and decorations")
	}
}

func TestUnmarshal_RepairsTileValues(t *testing.T) {
	data := `{"save_version": 3, "scenario": "Frontier Boom", "map_seed": 77, "tiles": [
	  {"row": 0, "col": 0, "reserve": -5, "output_rate": -3, "owner": "player", "drilled": true,
	   "pump_level": 9, "storage": 50, "capacity": 20, "survey": {"low": 90, "high": 40}},
	  {"row": 0, "col": 1, "reserve": 30, "output_rate": 8, "owner": null,
	   "pump_level": -1, "storage": -4, "capacity": 5}
	]}`
	g, err := testLoader(t).Unmarshal([]byte(data))
	if err != nil {
		t.Fatal(err)
	}

	first, _ := g.Tile(0, 0)
	if first.Reserve != 0 || first.OutputRate != 0 {
		t.Errorf("Expected reserve and output clamped to 0, got %d and %d", first.Reserve, first.OutputRate)
	}
	if first.Storage != 20 || first.Capacity != 20 {
		t.Errorf("Expected storage clamped to capacity 20, got %d/%d", first.Storage, first.Capacity)
	}
	if first.PumpLevel != game.MaxPumpLevel {
		t.Errorf("Expected pump level %d, got %d", game.MaxPumpLevel, first.PumpLevel)
	}
	if first.Survey == nil || first.Survey.Low != 40 || first.Survey.High != 90 {
		t.Errorf("Expected survey range 40-90, got %+v", first.Survey)
	}

	second, _ := g.Tile(0, 1)
	if second.Capacity != game.DefaultCapacity || second.Storage != 0 || second.PumpLevel != 0 {
		t.Errorf("Unexpected second tile: %+v", second)
	}
}

func TestUnmarshal_FillsMissingTiles(t *testing.T) {
	data := `{"save_version": 3, "scenario": "Frontier Boom", "map_seed": 4242, "tiles": [
	  {"row": 2, "col": 3, "reserve": 11, "output_rate": 9, "owner": "player", "storage": 4},
	  {"row": 40, "col": 0, "reserve": 99, "output_rate": 9, "owner": "player"}
	]}`
	g, err := testLoader(t).Unmarshal([]byte(data))
	if err != nil {
		t.Fatal(err)
	}

	n := g.Scenario.GridSize
	if len(g.Tiles) != n*n {
		t.Fatalf("Expected %d tiles, got %d", n*n, len(g.Tiles))
	}
	want := game.GenerateTiles(g.Scenario, 4242)
	for i, tile := range g.Tiles {
		if tile.Row != i/n || tile.Col != i%n {
			t.Fatalf("Tile %d at %d,%d out of order", i, tile.Row, tile.Col)
		}
		if tile.Row == 2 && tile.Col == 3 {
			if tile.Reserve != 11 || tile.Storage != 4 || !tile.Owner.IsPlayer() {
				t.Errorf("Expected saved tile kept, got %+v", tile)
			}
			continue
		}
		if tile.Reserve != want[i].Reserve || !tile.Owner.IsUnclaimed() {
			t.Errorf("Expected tile %d generated from the map seed, got %+v", i, tile)
		}
	}
}

func TestUnmarshal_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"future version", `{"save_version": 9}`, ErrUnsupportedVersion},
		{"not json", `{"day":`, ErrCorrupt},
		{"not an object", `null`, ErrCorrupt},
		{"bad tile", `{"save_version": 3, "tiles": [{"row": "a"}]}`, ErrCorrupt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := testLoader(t).Unmarshal([]byte(tt.data)); !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestSaveFile_CompressedRoundTrip(t *testing.T) {
	g := playedGame(t)
	dir := t.TempDir()

	for _, name := range []string{"plain.json", "packed" + CompressedExt} {
		path := filepath.Join(dir, "saves", name)
		if err := SaveFile(path, g); err != nil {
			t.Fatalf("SaveFile(%s) failed: %v", name, err)
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		compressed := strings.HasSuffix(name, CompressedExt)
		if compressed == bytes.HasPrefix(raw, []byte("{")) {
			t.Errorf("%s: unexpected encoding", name)
		}

		back, err := testLoader(t).LoadFile(path)
		if err != nil {
			t.Fatalf("LoadFile(%s) failed: %v", name, err)
		}
		if back.Day != g.Day || back.Cash != g.Cash || !reflect.DeepEqual(back.Tiles, g.Tiles) {
			t.Errorf("%s: restored session differs", name)
		}
	}
}
