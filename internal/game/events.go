package game

import "fmt"

// randomEvent rolls at most one exogenous event for the day.
func (g *GameState) randomEvent(s *EconomySnapshot) {
	r := g.Rand()
	g.EventMessage = ""
	if r.Float64() >= g.Scenario.EventChance {
		return
	}
	roll := r.Float64()
	switch {
	case roll < 0.35:
		loss := randInt(r, 150, 450)
		g.Cash = max(0, g.Cash-loss)
		g.EventMessage = fmt.Sprintf("Equipment repairs cost $%d.", loss)
		s.add(EventRepairs, loss, "%s", g.EventMessage)
	case roll < 0.65:
		bonus := randInt(r, 120, 480)
		g.Cash += bonus
		g.EventMessage = fmt.Sprintf("Pipeline bonus payout: $%d.", bonus)
		s.add(EventPipelineBonus, bonus, "%s", g.EventMessage)
	default:
		if g.Price >= g.Scenario.PriceMax {
			return
		}
		g.Price = min(g.Price+PriceShock, g.Scenario.PriceMax)
		g.EventMessage = "Rumors of shortage raise oil prices."
		s.add(EventPriceShock, PriceShock, "%s", g.EventMessage)
	}
}
