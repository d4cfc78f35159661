package game

import "fmt"

// Outcome is the result of a player action. A failed action leaves the
// state untouched; Reason classifies the failure.
type Outcome struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
	Reason  error  `json:"-"`
	Revenue int    `json:"revenue,omitempty"`
}

func succeed(msg string) Outcome {
	return Outcome{OK: true, Message: msg}
}

func fail(reason error, msg string) Outcome {
	return Outcome{Message: msg, Reason: reason}
}

func (g *GameState) playerTile(row, col int) (*Tile, Outcome, bool) {
	t, ok := g.Tile(row, col)
	if !ok {
		return nil, fail(ErrInvalidTile, fmt.Sprintf("No tile at (%d, %d).", row+1, col+1)), false
	}
	if !t.Owner.IsPlayer() {
		return nil, fail(ErrNotOwned, "Tile not owned."), false
	}
	return t, Outcome{}, true
}

// BuyLand leases an unclaimed tile.
func (g *GameState) BuyLand(row, col int) Outcome {
	t, ok := g.Tile(row, col)
	if !ok {
		return fail(ErrInvalidTile, fmt.Sprintf("No tile at (%d, %d).", row+1, col+1))
	}
	if !t.Owner.IsUnclaimed() {
		return fail(ErrAlreadyOwned, "Tile already owned.")
	}
	if g.Cash < g.Scenario.LandCost {
		return fail(ErrInsufficientCash, "Insufficient cash to buy land.")
	}
	t.Owner = PlayerOwner()
	g.Cash -= g.Scenario.LandCost
	return succeed(fmt.Sprintf("Bought land at %s.", t.Label()))
}

// SurveyTile estimates a player tile's reserve within a 15-35% error band.
func (g *GameState) SurveyTile(row, col int) Outcome {
	t, o, ok := g.playerTile(row, col)
	if !ok {
		return o
	}
	if g.Cash < SurveyCost {
		return fail(ErrInsufficientCash, "Insufficient cash to run a survey.")
	}
	g.Cash -= SurveyCost
	est := SurveyRange{Low: 0, High: 10}
	if t.Reserve > 0 {
		e := uniform(g.Rand(), 0.15, 0.35)
		est.Low = max(0, int(float64(t.Reserve)*(1-e)))
		est.High = int(float64(t.Reserve) * (1 + e))
	}
	t.Survey = &est
	return succeed(fmt.Sprintf("Survey complete for %s. Estimate: %d-%d barrels.", t.Label(), est.Low, est.High))
}

// DrillWell drills a player tile, revealing whether it holds oil. A drilled
// tile may be drilled again at full cost.
func (g *GameState) DrillWell(row, col int) Outcome {
	t, o, ok := g.playerTile(row, col)
	if !ok {
		return o
	}
	if g.Cash < g.Scenario.DrillCost {
		return fail(ErrInsufficientCash, "Insufficient cash to drill.")
	}
	t.Drilled = true
	g.Cash -= g.Scenario.DrillCost
	if t.Reserve <= 0 {
		return succeed("Dry well! No oil in this tile.")
	}
	return succeed(fmt.Sprintf("Drilled well. Estimated reserves: %d barrels.", t.Reserve))
}

// BuildPump installs a level 1 pump on a player tile. The tile need not be
// drilled first.
func (g *GameState) BuildPump(row, col int) Outcome {
	t, o, ok := g.playerTile(row, col)
	if !ok {
		return o
	}
	if t.HasPump() {
		return fail(ErrAlreadyBuilt, "Pump already installed.")
	}
	if g.Cash < g.Scenario.PumpCost {
		return fail(ErrInsufficientCash, "Insufficient cash to build pump.")
	}
	t.PumpLevel = 1
	g.Cash -= g.Scenario.PumpCost
	return succeed("Pump installed. Production will start next day.")
}

// UpgradePump raises a pump one level.
func (g *GameState) UpgradePump(row, col int) Outcome {
	t, ok := g.Tile(row, col)
	if !ok {
		return fail(ErrInvalidTile, fmt.Sprintf("No tile at (%d, %d).", row+1, col+1))
	}
	if !t.Owner.IsPlayer() || !t.HasPump() {
		return fail(ErrNotBuilt, "Pump not installed.")
	}
	if t.PumpLevel >= MaxPumpLevel {
		return fail(ErrMaxLevel, "Pump already at max level.")
	}
	if g.Cash < PumpUpgradeCost {
		return fail(ErrInsufficientCash, "Insufficient cash to upgrade pump.")
	}
	t.PumpLevel++
	g.Cash -= PumpUpgradeCost
	return succeed(fmt.Sprintf("Pump upgraded to level %d.", t.PumpLevel))
}

// AddStorage expands a player tile's storage capacity.
func (g *GameState) AddStorage(row, col int) Outcome {
	t, o, ok := g.playerTile(row, col)
	if !ok {
		return o
	}
	if g.Cash < g.Scenario.StorageCost {
		return fail(ErrInsufficientCash, "Insufficient cash to expand storage.")
	}
	t.Capacity += StorageExpansion
	g.Cash -= g.Scenario.StorageCost
	return succeed(fmt.Sprintf("Added storage on tile %s.", t.Label()))
}

// BuildRefinery builds the level 1 refinery.
func (g *GameState) BuildRefinery() Outcome {
	if g.Refinery.Active() {
		return fail(ErrAlreadyBuilt, "Refinery already built.")
	}
	if g.Cash < RefineryBuildCost {
		return fail(ErrInsufficientCash, "Insufficient cash to build refinery.")
	}
	g.Cash -= RefineryBuildCost
	g.Refinery = Refinery{Level: 1, Capacity: RefineryBaseCapacity}
	return succeed("Refinery built.")
}

// UpgradeRefinery adds a level and 60% of base capacity.
func (g *GameState) UpgradeRefinery() Outcome {
	if !g.Refinery.Active() {
		return fail(ErrNotBuilt, "No refinery to upgrade.")
	}
	if g.Cash < RefineryUpgradeCost {
		return fail(ErrInsufficientCash, "Insufficient cash to upgrade refinery.")
	}
	g.Cash -= RefineryUpgradeCost
	g.Refinery.Level++
	g.Refinery.Capacity += RefineryBaseCapacity * 6 / 10
	return succeed(fmt.Sprintf("Refinery upgraded to level %d.", g.Refinery.Level))
}

// BuildHub builds the level 1 transport hub.
func (g *GameState) BuildHub() Outcome {
	if g.Hub.Active() {
		return fail(ErrAlreadyBuilt, "Transport hub already built.")
	}
	if g.Cash < HubBuildCost {
		return fail(ErrInsufficientCash, "Insufficient cash to build transport hub.")
	}
	g.Cash -= HubBuildCost
	g.Hub = TransportHub{Level: 1}
	return succeed("Transport hub constructed.")
}

// UpgradeHub raises the hub one level, up to HubMaxLevel.
func (g *GameState) UpgradeHub() Outcome {
	if !g.Hub.Active() {
		return fail(ErrNotBuilt, "No transport hub to upgrade.")
	}
	if g.Hub.Level >= HubMaxLevel {
		return fail(ErrMaxLevel, "Transport hub already at max level.")
	}
	if g.Cash < HubUpgradeCost {
		return fail(ErrInsufficientCash, "Insufficient cash to upgrade hub.")
	}
	g.Cash -= HubUpgradeCost
	g.Hub.Level++
	return succeed(fmt.Sprintf("Transport hub upgraded to level %d.", g.Hub.Level))
}

// FundResearch buys one research level.
func (g *GameState) FundResearch() Outcome {
	if g.Cash < ResearchCost {
		return fail(ErrInsufficientCash, "Insufficient cash to fund research.")
	}
	g.Cash -= ResearchCost
	g.ResearchLevel++
	return succeed("Research complete. Efficiency improved.")
}

// SellOil sells all stored crude at the market price.
func (g *GameState) SellOil() Outcome {
	volume := g.PlayerStorage()
	if volume <= 0 {
		return fail(ErrNothingToSell, "No oil to sell.")
	}
	revenue := volume * g.Price
	g.Cash += revenue
	g.WithdrawOil(volume)
	o := succeed(fmt.Sprintf("Sold %d barrels.", volume))
	o.Revenue = revenue
	return o
}

// SellPetrol sells all stored petrol at the petrol price.
func (g *GameState) SellPetrol() Outcome {
	volume := g.PetrolStorage
	if volume <= 0 {
		return fail(ErrNothingToSell, "No petrol to sell.")
	}
	revenue := volume * g.PetrolPrice
	g.Cash += revenue
	g.PetrolStorage = 0
	o := succeed(fmt.Sprintf("Sold %d barrels of petrol.", volume))
	o.Revenue = revenue
	return o
}

// SetAutoRefine toggles daily refining.
func (g *GameState) SetAutoRefine(on bool) Outcome {
	g.AutoRefine = on
	if on {
		return succeed("Auto-refine enabled.")
	}
	return succeed("Auto-refine disabled.")
}
