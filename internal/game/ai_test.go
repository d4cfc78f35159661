package game

import "testing"

func singleRival(g *GameState, cash int) *Competitor {
	c := DefaultCompetitors()[0]
	c.Cash = cash
	g.Competitors = []*Competitor{c}
	return c
}

func TestCompetitorTurns_ExpandsToRichTileAndDevelops(t *testing.T) {
	g := createTestState(t)
	c := singleRival(g, 10000)
	rich, _ := g.Tile(2, 2)
	rich.Reserve = 170
	other, _ := g.Tile(1, 1)
	other.Reserve = 100
	g.SetRand(&scriptedSource{floats: []float64{0.1}, ints: []int{0}})

	events := g.CompetitorTurns()

	if !rich.Owner.IsRival(c.ID) {
		t.Fatalf("Expected rival to claim the richest tile, owner = %v", rich.Owner)
	}
	if !rich.Drilled || rich.PumpLevel != 1 {
		t.Errorf("Expected tile drilled with a level 1 pump, got drilled=%v pump=%d", rich.Drilled, rich.PumpLevel)
	}
	wantCash := 10000 - g.Scenario.LandCost - g.Scenario.DrillCost - g.Scenario.PumpCost
	if c.Cash != wantCash {
		t.Errorf("Expected cash %d, got %d", wantCash, c.Cash)
	}
	if len(events) != 1 || events[0].Message != "Iron Ridge secured land at (3, 3)." {
		t.Errorf("Unexpected events: %+v", events)
	}
}

func TestCompetitorTurns_NoExpansionWithoutCash(t *testing.T) {
	g := createTestState(t)
	singleRival(g, 100)
	g.SetRand(&scriptedSource{floats: []float64{0.1}})

	if events := g.CompetitorTurns(); len(events) != 0 {
		t.Errorf("Expected no events, got %+v", events)
	}
	for _, tile := range g.Tiles {
		if !tile.Owner.IsUnclaimed() {
			t.Fatalf("Tile %s claimed without cash", tile.Label())
		}
	}
}

func TestCompetitorTurns_LiquidatesWhenPriceClearsDiscipline(t *testing.T) {
	g := createTestState(t)
	c := singleRival(g, 0)
	g.Price = 100
	tile, _ := g.Tile(0, 0)
	tile.Owner = RivalOwner(c.ID)
	tile.Drilled = true
	tile.PumpLevel = 1
	tile.Capacity = 40
	tile.Storage = 40

	events := g.CompetitorTurns()

	if c.Cash != 4000 || tile.Storage != 0 {
		t.Errorf("Expected 40 barrels sold for 4000, got cash=%d storage=%d", c.Cash, tile.Storage)
	}
	if len(events) != 1 || events[0].Message != "Iron Ridge sold 40 barrels for $4000." {
		t.Errorf("Unexpected events: %+v", events)
	}
}

func TestCompetitorTurns_HoardsWhenPriceWeak(t *testing.T) {
	g := createTestState(t)
	c := singleRival(g, 1000)
	g.Price = 30
	tile, _ := g.Tile(0, 0)
	tile.Owner = RivalOwner(c.ID)
	tile.Drilled = true
	tile.PumpLevel = 1
	tile.Storage = 15

	g.CompetitorTurns()

	if tile.Capacity != DefaultCapacity+RivalStorageExpansion {
		t.Errorf("Expected capacity %d, got %d", DefaultCapacity+RivalStorageExpansion, tile.Capacity)
	}
	if tile.PumpLevel != 1 {
		t.Errorf("Expected no pump upgrade at a weak price, got level %d", tile.PumpLevel)
	}
	if tile.Storage != 15 || c.Cash != 1000-g.Scenario.StorageCost {
		t.Errorf("Expected stock held and storage paid, got storage=%d cash=%d", tile.Storage, c.Cash)
	}
}

func TestCompetitorTurns_UpgradesWhenPriceBeatsRisk(t *testing.T) {
	g := createTestState(t)
	c := singleRival(g, PumpUpgradeCost)
	g.Price = 110
	tile, _ := g.Tile(0, 0)
	tile.Owner = RivalOwner(c.ID)
	tile.Drilled = true
	tile.PumpLevel = 1

	g.CompetitorTurns()

	if tile.PumpLevel != 2 || c.Cash != 0 {
		t.Errorf("Expected upgrade to level 2, got level=%d cash=%d", tile.PumpLevel, c.Cash)
	}
}

func TestCompetitorTurns_LeavesPlayerTilesAlone(t *testing.T) {
	g := createTestState(t)
	singleRival(g, 10000)
	mine := givePlayer(g, 0, 0)
	mine.Reserve = 170
	g.SetRand(&scriptedSource{floats: []float64{0.1}, ints: []int{0}})

	g.CompetitorTurns()

	if !mine.Owner.IsPlayer() || mine.Drilled {
		t.Error("Rival touched a player tile")
	}
}
