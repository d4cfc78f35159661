package game

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	minEfficiency   = decimal.New(5, -1)
	maxResearchCut  = decimal.New(3, -1)
	researchPerStep = decimal.New(3, -2)
)

// MaintenanceEfficiency is the multiplier research and the hub apply to
// upkeep, never below one half.
func (g *GameState) MaintenanceEfficiency() decimal.Decimal {
	research := decimal.Min(maxResearchCut, researchPerStep.Mul(decimal.NewFromInt(int64(g.ResearchLevel))))
	eff := decimal.NewFromInt(1).Sub(research).Sub(g.Hub.MaintenanceDiscount())
	return decimal.Max(minEfficiency, eff)
}

// DailyUpkeep is the maintenance bill the next day will charge.
func (g *GameState) DailyUpkeep() int {
	base := MaintenanceCost + g.PlayerPumps()*PumpUpkeep
	if g.Refinery.Active() {
		base += MaintenanceCost
	}
	return int(g.MaintenanceEfficiency().Mul(decimal.NewFromInt(int64(base))).Floor().IntPart())
}

// maintenanceAndInterest charges upkeep and compounds the loan.
func (g *GameState) maintenanceAndInterest(s *EconomySnapshot) {
	if cost := g.DailyUpkeep(); cost > 0 {
		g.Cash = max(0, g.Cash-cost)
		s.MaintenanceCost = cost
	}
	if g.LoanBalance > 0 {
		interest := int(decimal.NewFromInt(int64(g.LoanBalance)).Mul(decimal.NewFromFloat(g.LoanRate)).Floor().IntPart())
		g.LoanBalance += interest
		s.InterestCost = interest
	}
}

// TakeLoan borrows one chunk, or what is left under the limit.
func (g *GameState) TakeLoan() Outcome {
	if g.LoanBalance >= g.LoanLimit {
		return fail(ErrLimitReached, "Loan limit reached.")
	}
	amount := min(LoanChunk, g.LoanLimit-g.LoanBalance)
	g.Cash += amount
	g.LoanBalance += amount
	return succeed(fmt.Sprintf("Took a loan for $%d.", amount))
}

// RepayLoan pays back one chunk, or the whole balance when smaller.
func (g *GameState) RepayLoan() Outcome {
	if g.LoanBalance <= 0 {
		return fail(ErrNoBalance, "No loan balance.")
	}
	amount := min(LoanChunk, g.LoanBalance)
	if g.Cash < amount {
		return fail(ErrInsufficientCash, "Insufficient cash to repay loan.")
	}
	g.Cash -= amount
	g.LoanBalance -= amount
	return succeed(fmt.Sprintf("Repaid $%d of loans.", amount))
}
