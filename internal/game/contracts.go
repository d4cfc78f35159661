package game

import "github.com/shopspring/decimal"

// processContracts delivers against every open contract, then counts each
// one down. Expired contracts are removed whether or not they were filled.
func (g *GameState) processContracts(s *EconomySnapshot) {
	if len(g.Contracts) == 0 {
		return
	}
	bonus := decimal.NewFromInt(1).Add(g.Hub.DeliveryBonus())
	open := make([]*Contract, 0, len(g.Contracts))
	for _, c := range append([]*Contract(nil), g.Contracts...) {
		deliverable := min(c.Remaining(), g.PlayerStorage())
		if deliverable > 0 {
			g.WithdrawOil(deliverable)
			c.Delivered += deliverable
			g.Totals.ContractDelivered += deliverable
			revenue := int(decimal.NewFromInt(int64(deliverable * c.Price)).Mul(bonus).Floor().IntPart())
			g.Cash += revenue
			s.ContractDelivered += deliverable
			s.add(EventContractDeliver, revenue, "Delivered %d barrels to %s for $%d.", deliverable, c.Name, revenue)
		}
		c.DaysRemaining--
		if c.DaysRemaining > 0 {
			open = append(open, c)
			continue
		}
		if c.Remaining() > 0 {
			g.Cash = max(0, g.Cash-ContractPenalty)
			s.add(EventContractMissed, ContractPenalty, "Missed contract with %s. Penalty: $%d.", c.Name, ContractPenalty)
		}
	}
	g.Contracts = open
}
