package game

// produceOil moves barrels from reserve to storage on every pumped tile,
// rivals included.
func (g *GameState) produceOil(s *EconomySnapshot) {
	g.LastDayProduction = 0
	for _, t := range g.Tiles {
		if !t.HasPump() || t.Reserve <= 0 || t.AvailableCapacity() <= 0 {
			continue
		}
		output := min(t.CurrentOutput(), t.Reserve, t.AvailableCapacity())
		t.Reserve -= output
		t.Storage += output
		s.Production += output
		g.Totals.OilProduced += output
		g.LastDayProduction += output
		if t.Reserve == 0 {
			s.add(EventWellDry, t.Storage, "Well at %s ran dry. Storage holds %d barrels.", t.Label(), t.Storage)
		}
	}
}

// refineOil converts player crude to petrol up to refinery capacity.
func (g *GameState) refineOil(s *EconomySnapshot) {
	if !g.Refinery.Active() || !g.AutoRefine {
		return
	}
	available := g.PlayerStorage()
	if available <= 0 {
		return
	}
	amount := min(available, g.Refinery.Capacity)
	if amount <= 0 {
		return
	}
	g.WithdrawOil(amount)
	g.PetrolStorage += amount
	s.Refined += amount
	g.Totals.PetrolRefined += amount
	s.add(EventRefined, amount, "Refined %d barrels into petrol.", amount)
}

// WithdrawOil drains player storage in grid order, emptying each tile
// before moving on. It returns the barrels actually removed, which is less
// than amount only when storage runs out.
func (g *GameState) WithdrawOil(amount int) int {
	if amount <= 0 {
		return 0
	}
	remaining := amount
	for _, t := range g.Tiles {
		if remaining <= 0 {
			break
		}
		if !t.Owner.IsPlayer() {
			continue
		}
		take := min(t.Storage, remaining)
		t.Storage -= take
		remaining -= take
	}
	return amount - max(0, remaining)
}
