package game

// AdvanceDay runs the daily pipeline in its fixed order. The caller
// advances the day counter first; NextDay does both.
func (g *GameState) AdvanceDay() *EconomySnapshot {
	s := &EconomySnapshot{Day: g.Day}
	g.produceOil(s)
	g.processContracts(s)
	g.refineOil(s)
	g.updateMarketConditions()
	g.applyMarket()
	g.applyPetrolMarket()
	g.randomEvent(s)
	g.maintenanceAndInterest(s)
	g.DayPhase = (g.DayPhase + 1) % 4
	return s
}

// NextDay moves to the following day and returns its report, with rival
// activity appended after the pipeline events. On the final day it returns
// ErrSeasonOver and changes nothing.
func (g *GameState) NextDay() (*EconomySnapshot, error) {
	if g.SeasonOver() {
		return nil, ErrSeasonOver
	}
	g.Day++
	g.Offers = Offers{}
	s := g.AdvanceDay()
	s.Events = append(s.Events, g.CompetitorTurns()...)
	return s, nil
}
