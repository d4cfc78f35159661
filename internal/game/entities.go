package game

import "github.com/shopspring/decimal"

// Competitor is an AI-controlled rival driven by three scalar traits.
type Competitor struct {
	ID               int     `json:"id"`
	Name             string  `json:"name"`
	Cash             int     `json:"cash"`
	Aggressiveness   float64 `json:"aggressiveness"`
	Color            string  `json:"color"` // presentation only
	StorageThreshold int     `json:"storageThreshold"`
	RiskTolerance    float64 `json:"riskTolerance"`
	Discipline       float64 `json:"discipline"`
}

// DefaultCompetitors returns the fixed rival roster.
func DefaultCompetitors() []*Competitor {
	return []*Competitor{
		{ID: 0, Name: "Iron Ridge", Cash: 4200, Aggressiveness: 0.55, Color: "#ef4444", StorageThreshold: 35, RiskTolerance: 0.7, Discipline: 0.6},
		{ID: 1, Name: "Desert Drill", Cash: 3800, Aggressiveness: 0.45, Color: "#f97316", StorageThreshold: 30, RiskTolerance: 0.55, Discipline: 0.5},
		{ID: 2, Name: "Silver Creek", Cash: 3400, Aggressiveness: 0.4, Color: "#a855f7", StorageThreshold: 28, RiskTolerance: 0.45, Discipline: 0.7},
	}
}

// Contract is a delivery obligation signed by the player.
type Contract struct {
	Name          string `json:"name"`
	Volume        int    `json:"volume"`
	Price         int    `json:"price"`
	DaysRemaining int    `json:"daysRemaining"`
	Delivered     int    `json:"delivered"`
}

// Remaining is the undelivered volume.
func (c *Contract) Remaining() int {
	return max(0, c.Volume-c.Delivered)
}

// Buyer is a spot-market counterparty.
type Buyer struct {
	Name       string  `json:"name"`
	Category   string  `json:"category"`
	Demand     int     `json:"demand"`
	Multiplier float64 `json:"multiplier"`
	Reputation int     `json:"reputation"`
}

// DefaultBuyers returns the starting buyer roster.
func DefaultBuyers() []*Buyer {
	return []*Buyer{
		{Name: "Kingston Rail", Category: "Company", Demand: 140, Multiplier: 1.05},
		{Name: "Northern Navy", Category: "Nation", Demand: 160, Multiplier: 1.1},
		{Name: "Harbor Authority", Category: "Company", Demand: 120, Multiplier: 1.0},
		{Name: "Imperial Trade Office", Category: "Nation", Demand: 110, Multiplier: 1.12},
		{Name: "Frontier Republic", Category: "Nation", Demand: 100, Multiplier: 0.98},
	}
}

// PriceFor is the unit price the buyer pays at the given market price.
// Each reputation point adds 2%.
func (b *Buyer) PriceFor(market int) int {
	bonus := decimal.NewFromInt(1).Add(decimal.New(2, -2).Mul(decimal.NewFromInt(int64(b.Reputation))))
	p := decimal.NewFromInt(int64(market)).
		Mul(decimal.NewFromFloat(b.Multiplier)).
		Mul(bonus).
		Floor().
		IntPart()
	return max(1, int(p))
}

// Refinery converts crude into petrol once built.
type Refinery struct {
	Level    int `json:"level"`
	Capacity int `json:"capacity"`
}

// Active reports whether the refinery has been built.
func (r Refinery) Active() bool {
	return r.Level > 0
}

// TransportHub boosts contract revenue and trims maintenance.
type TransportHub struct {
	Level int `json:"level"`
}

// Active reports whether the hub has been built.
func (h TransportHub) Active() bool {
	return h.Level > 0
}

// DeliveryBonus is the fractional bonus on contract revenue, 5% per level.
func (h TransportHub) DeliveryBonus() decimal.Decimal {
	return decimal.New(5, -2).Mul(decimal.NewFromInt(int64(h.Level)))
}

// MaintenanceDiscount is the fractional maintenance reduction, 3% per level.
func (h TransportHub) MaintenanceDiscount() decimal.Decimal {
	return decimal.New(3, -2).Mul(decimal.NewFromInt(int64(h.Level)))
}

// Decoration is one entry of the cosmetic map overlay.
type Decoration struct {
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Size  int    `json:"size"`
	Color string `json:"color"`
}
