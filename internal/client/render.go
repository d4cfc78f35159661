package client

import (
	"fmt"
	"strings"

	"black-oil/internal/game"
	"black-oil/internal/protocol"
	"black-oil/internal/store"
)

// RenderStatus summarizes finances and production.
func RenderStatus(g *game.GameState) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s - day %d of %d\n", g.Scenario.Name, g.Day, g.Scenario.MaxDays))
	sb.WriteString(fmt.Sprintf("Cash: $%d   Loan: $%d of $%d at %.0f%%\n", g.Cash, g.LoanBalance, g.LoanLimit, g.LoanRate*100))
	sb.WriteString(fmt.Sprintf("Oil: $%d/bbl   Petrol: $%d/bbl   Demand: %d\n", g.Price, g.PetrolPrice, g.MarketDemand))
	sb.WriteString(fmt.Sprintf("Stock: %d bbl crude, %d bbl petrol\n", g.PlayerStorage(), g.PetrolStorage))

	refinery := "not built"
	if g.Refinery.Active() {
		refinery = fmt.Sprintf("level %d, %d bbl/day", g.Refinery.Level, g.Refinery.Capacity)
	}
	hub := "not built"
	if g.Hub.Active() {
		hub = fmt.Sprintf("level %d", g.Hub.Level)
	}
	auto := "off"
	if g.AutoRefine {
		auto = "on"
	}
	sb.WriteString(fmt.Sprintf("Refinery: %s (auto %s)   Hub: %s   Research: %d\n", refinery, auto, hub, g.ResearchLevel))
	sb.WriteString(fmt.Sprintf("Produced: %d   Refined: %d   Delivered: %d\n",
		g.Totals.OilProduced, g.Totals.PetrolRefined, g.Totals.ContractDelivered))
	sb.WriteString(fmt.Sprintf("Assets: $%d\n", g.FinalAssets()))
	if g.NewsMessage != "" {
		sb.WriteString("News: " + g.NewsMessage + "\n")
	}
	if g.EventMessage != "" {
		sb.WriteString("Event: " + g.EventMessage + "\n")
	}
	return sb.String()
}

// RenderMap draws the tile grid. Each cell shows the owner (P for the
// player, the rival's initial, . when unclaimed) and development: a pump
// level, W for a drilled well, - for bare land, ? for a surveyed tile.
func RenderMap(g *game.GameState) string {
	var sb strings.Builder
	n := g.Scenario.GridSize

	sb.WriteString("    ")
	for col := 1; col <= n; col++ {
		sb.WriteString(fmt.Sprintf("%3d", col))
	}
	sb.WriteString("\n")

	for row := 0; row < n; row++ {
		sb.WriteString(fmt.Sprintf("%3d ", row+1))
		for col := 0; col < n; col++ {
			t, _ := g.Tile(row, col)
			sb.WriteString(" " + tileCell(g, t))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\nP you")
	for _, c := range g.Competitors {
		sb.WriteString(fmt.Sprintf("   %c %s", initial(c.Name), c.Name))
	}
	sb.WriteString("\n")
	return sb.String()
}

func tileCell(g *game.GameState, t *game.Tile) string {
	if t == nil {
		return "  "
	}
	owner := byte('.')
	switch {
	case t.Owner.IsPlayer():
		owner = 'P'
	case !t.Owner.IsUnclaimed():
		for _, c := range g.Competitors {
			if t.Owner.IsRival(c.ID) {
				owner = initial(c.Name)
			}
		}
	}

	dev := byte(' ')
	switch {
	case t.PumpLevel > 0:
		dev = byte('0' + min(t.PumpLevel, 9))
	case t.Drilled:
		dev = 'W'
	case t.Survey != nil:
		dev = '?'
	case !t.Owner.IsUnclaimed():
		dev = '-'
	}
	return string([]byte{owner, dev})
}

func initial(name string) byte {
	if name == "" {
		return 'R'
	}
	return name[0]
}

// RenderOffers lists the day's buyers, numbered for the trade command.
func RenderOffers(offers []game.TradeOffer) string {
	if len(offers) == 0 {
		return "No buyers today.\n"
	}
	var sb strings.Builder
	sb.WriteString("Buyers today:\n")
	for i, o := range offers {
		sb.WriteString(fmt.Sprintf("  %d. %s (%s) wants %d bbl: oil $%d, petrol $%d\n",
			i+1, o.Name, o.Category, o.Demand, o.OilPrice, o.PetrolPrice))
	}
	return sb.String()
}

// RenderContracts lists contract offers and the active contracts.
func RenderContracts(offers []game.ContractOffer, active []*game.Contract) string {
	var sb strings.Builder
	if len(offers) == 0 {
		sb.WriteString("No contract offers left today.\n")
	} else {
		sb.WriteString("Contract offers:\n")
		for i, o := range offers {
			sb.WriteString(fmt.Sprintf("  %d. %s: %d bbl at $%d over %d days\n", i+1, o.Name, o.Volume, o.Price, o.Duration))
		}
	}
	if len(active) > 0 {
		sb.WriteString("Active contracts:\n")
		for _, c := range active {
			sb.WriteString(fmt.Sprintf("  %s: %d/%d bbl delivered at $%d, %d days left\n", c.Name, c.Delivered, c.Volume, c.Price, c.DaysRemaining))
		}
	}
	return sb.String()
}

// RenderDayReport prints a day advance.
func RenderDayReport(r *protocol.DayReportPayload) string {
	var sb strings.Builder
	s := r.Report
	sb.WriteString(fmt.Sprintf("Day %d: produced %d bbl, refined %d, delivered %d. Maintenance $%d, interest $%d.\n",
		s.Day, s.Production, s.Refined, s.ContractDelivered, s.MaintenanceCost, s.InterestCost))
	for _, e := range s.Events {
		sb.WriteString("  " + e.Message + "\n")
	}
	if r.SeasonOver {
		sb.WriteString(fmt.Sprintf("Season over. Final assets: $%d\n", r.FinalAssets))
	}
	return sb.String()
}

// RenderHistory prints one line per stored day report.
func RenderHistory(reports []*store.DayReport) string {
	if len(reports) == 0 {
		return "No days played yet.\n"
	}
	var sb strings.Builder
	for _, r := range reports {
		sb.WriteString(fmt.Sprintf("Day %2d  cash $%-7d oil $%-4d produced %-4d refined %-4d events %d\n",
			r.Day, r.Cash, r.Price, r.Production, r.Refined, len(r.Events)))
	}
	return sb.String()
}
