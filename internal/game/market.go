package game

import "math"

// updateMarketConditions walks the trend and re-rolls demand. Supply lags
// production by one day.
func (g *GameState) updateMarketConditions() {
	r := g.Rand()
	g.MarketTrend = clampFloat(g.MarketTrend+uniform(r, -0.6, 0.6), -MarketTrendMax, MarketTrendMax)
	bias := int(math.Floor(g.MarketTrend * 18))
	g.MarketDemand = max(DemandFloor, BaseDemand+bias+randInt(r, -DemandVariance, DemandVariance))
	g.MarketSupply = g.LastDayProduction
}

// applyMarket moves the oil price from trend and supply pressure.
// Must run after updateMarketConditions.
func (g *GameState) applyMarket() {
	pressure := clamp(g.MarketDemand-g.MarketSupply, -PressureLimit, PressureLimit)
	delta := g.MarketTrend*6 + float64(pressure)*MarketImpact + float64(randInt(g.Rand(), -10, 10))
	g.Price = clamp(int(float64(g.Price)+delta), g.Scenario.PriceMin, g.Scenario.PriceMax)
}

// applyPetrolMarket drifts petrol within global bounds, pulled up by crude.
func (g *GameState) applyPetrolMarket() {
	pull := max(0, g.Price-g.Scenario.PriceMin) / 10
	delta := randInt(g.Rand(), -10, 10) + pull
	g.PetrolPrice = clamp(g.PetrolPrice+delta, PetrolPriceMin, PetrolPriceMax)
}

// PriceRatio is the oil price relative to the scenario ceiling.
func (g *GameState) PriceRatio() float64 {
	if g.Scenario.PriceMax <= 0 {
		return 0
	}
	return float64(g.Price) / float64(g.Scenario.PriceMax)
}
