package game

import "sort"

// CompetitorTurns lets every rival expand and operate once. It runs after
// the day pipeline, so rival sales do not feed that day's market supply.
func (g *GameState) CompetitorTurns() []Event {
	var s EconomySnapshot
	for _, c := range g.Competitors {
		if g.Rand().Float64() < c.Aggressiveness {
			g.rivalExpand(c, &s)
		}
		g.rivalOperate(c, &s)
	}
	return s.Events
}

// rivalExpand claims one of the richest unclaimed tiles.
func (g *GameState) rivalExpand(c *Competitor, s *EconomySnapshot) {
	var open []*Tile
	for _, t := range g.Tiles {
		if t.Owner.IsUnclaimed() {
			open = append(open, t)
		}
	}
	if len(open) == 0 || c.Cash < g.Scenario.LandCost {
		return
	}
	sort.SliceStable(open, func(i, j int) bool { return open[i].Reserve > open[j].Reserve })
	target := open[randInt(g.Rand(), 0, min(RivalExpansionPool, len(open))-1)]
	target.Owner = RivalOwner(c.ID)
	c.Cash -= g.Scenario.LandCost
	s.add(EventRivalLand, g.Scenario.LandCost, "%s secured land at %s.", c.Name, target.Label())
}

// rivalOperate develops each owned tile in order: drill, pump, upgrade,
// storage. Stored crude is liquidated when the price clears discipline.
func (g *GameState) rivalOperate(c *Competitor, s *EconomySnapshot) {
	ratio := g.PriceRatio()
	owner := RivalOwner(c.ID)
	for _, t := range g.Tiles {
		if t.Owner != owner {
			continue
		}
		if !t.Drilled && c.Cash >= g.Scenario.DrillCost {
			t.Drilled = true
			c.Cash -= g.Scenario.DrillCost
		}
		if t.Drilled && !t.HasPump() && t.Reserve > 0 && c.Cash >= g.Scenario.PumpCost {
			t.PumpLevel = 1
			c.Cash -= g.Scenario.PumpCost
		}
		if t.HasPump() && t.PumpLevel < MaxPumpLevel && c.Cash >= PumpUpgradeCost && ratio > c.RiskTolerance {
			t.PumpLevel++
			c.Cash -= PumpUpgradeCost
		}
		if t.HasPump() && t.AvailableCapacity() < RivalStorageExpansion && c.Cash >= g.Scenario.StorageCost && ratio < 1-c.Discipline {
			t.Capacity += RivalStorageExpansion
			c.Cash -= g.Scenario.StorageCost
		}
	}

	stored := g.StorageOf(owner)
	if stored < c.StorageThreshold || ratio <= c.Discipline {
		return
	}
	revenue := stored * g.Price
	c.Cash += revenue
	for _, t := range g.Tiles {
		if t.Owner == owner {
			t.Storage = 0
		}
	}
	if stored > 0 {
		s.add(EventRivalSale, revenue, "%s sold %d barrels for $%d.", c.Name, stored, revenue)
	}
}
