package game

import "fmt"

// Commodity is a tradable product.
type Commodity string

const (
	Oil    Commodity = "oil"
	Petrol Commodity = "petrol"
)

// ParseCommodity accepts "oil"/"crude" and "petrol"/"gas".
func ParseCommodity(s string) (Commodity, error) {
	switch s {
	case "oil", "crude":
		return Oil, nil
	case "petrol", "gas", "gasoline":
		return Petrol, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCommodity, s)
}

// Offers are the trade and contract offers open on a given day.
type Offers struct {
	TradeDay    int             `json:"tradeDay,omitempty"`
	TradeBuyers []int           `json:"tradeBuyers,omitempty"`
	ContractDay int             `json:"contractDay,omitempty"`
	Contracts   []ContractOffer `json:"contracts,omitempty"`
}

func (o Offers) clone() Offers {
	o.TradeBuyers = append([]int(nil), o.TradeBuyers...)
	o.Contracts = append([]ContractOffer(nil), o.Contracts...)
	return o
}

// TradeOffer is a buyer quote on the spot market.
type TradeOffer struct {
	Buyer       int    `json:"buyer"` // index into GameState.Buyers
	Name        string `json:"name"`
	Category    string `json:"category"`
	Demand      int    `json:"demand"`
	OilPrice    int    `json:"oilPrice"`
	PetrolPrice int    `json:"petrolPrice"`
}

// ContractOffer is an unsigned delivery contract.
type ContractOffer struct {
	Name     string `json:"name"`
	Volume   int    `json:"volume"`
	Price    int    `json:"price"`
	Duration int    `json:"duration"`
}

// TradeOffers returns today's spot buyers. The sample is fixed per map and
// day; demand of the sampled buyers is nudged once when the day's offers
// are first drawn.
func (g *GameState) TradeOffers() []TradeOffer {
	if g.Offers.TradeDay != g.Day {
		rng := seededRNG(g.MapSeed+int64(g.Day), "trade")
		picked := sampleIndexes(rng, len(g.Buyers), TradeOfferSize)
		for _, i := range picked {
			b := g.Buyers[i]
			b.Demand = clamp(b.Demand+randInt(rng, -20, 20), TradeMinVolume, TradeMaxVolume)
		}
		g.Offers.TradeDay = g.Day
		g.Offers.TradeBuyers = picked
	}
	out := make([]TradeOffer, 0, len(g.Offers.TradeBuyers))
	for _, i := range g.Offers.TradeBuyers {
		if i < 0 || i >= len(g.Buyers) {
			continue
		}
		b := g.Buyers[i]
		out = append(out, TradeOffer{
			Buyer:       i,
			Name:        b.Name,
			Category:    b.Category,
			Demand:      b.Demand,
			OilPrice:    b.PriceFor(g.Price),
			PetrolPrice: b.PriceFor(g.PetrolPrice),
		})
	}
	return out
}

// ContractOffers returns today's contract offers, drawing them on first use.
func (g *GameState) ContractOffers() []ContractOffer {
	if g.Offers.ContractDay != g.Day {
		r := g.Rand()
		base := randInt(r, 60, 140)
		offers := make([]ContractOffer, 0, ContractOfferSize)
		for i := 0; i < ContractOfferSize; i++ {
			offers = append(offers, ContractOffer{
				Volume:   base + randInt(r, -20, 40),
				Price:    max(g.Price+randInt(r, -5, 25), g.Scenario.PriceMin),
				Duration: randInt(r, 3, 7),
				Name:     contractCounterparties[r.IntN(len(contractCounterparties))],
			})
		}
		g.Offers.ContractDay = g.Day
		g.Offers.Contracts = offers
	}
	return append([]ContractOffer(nil), g.Offers.Contracts...)
}

// TradeCapacity is the most the player can sell in one trade.
func (g *GameState) TradeCapacity(c Commodity) int {
	switch c {
	case Oil:
		return min(g.PlayerStorage(), TradeMaxVolume)
	case Petrol:
		return min(g.PetrolStorage, TradeMaxVolume)
	}
	return 0
}

// tradeOfferCount is the number of trade offers for today without drawing
// them.
func (g *GameState) tradeOfferCount() int {
	if g.Offers.TradeDay != g.Day {
		return min(TradeOfferSize, len(g.Buyers))
	}
	n := 0
	for _, i := range g.Offers.TradeBuyers {
		if i >= 0 && i < len(g.Buyers) {
			n++
		}
	}
	return n
}

func (g *GameState) contractOfferCount() int {
	if g.Offers.ContractDay != g.Day {
		return ContractOfferSize
	}
	return len(g.Offers.Contracts)
}

// AcceptTrade sells to one of today's buyers at their quoted price.
// The volume is capped by stock and the per-trade maximum. Offers are drawn
// only once the trade is known to succeed.
func (g *GameState) AcceptTrade(offer int, c Commodity, volume int) Outcome {
	if offer < 0 || offer >= g.tradeOfferCount() {
		return fail(ErrInvalidOffer, "No such trade offer.")
	}
	if c != Oil && c != Petrol {
		return fail(ErrInvalidCommodity, "Unknown commodity.")
	}
	if volume <= 0 {
		return fail(ErrInvalidVolume, "Trade volume must be positive.")
	}
	available := g.TradeCapacity(c)
	if available <= 0 {
		if c == Petrol {
			return fail(ErrNothingToSell, "No petrol to sell.")
		}
		return fail(ErrNothingToSell, "No oil to sell.")
	}
	volume = min(volume, available)
	b := g.Buyers[g.TradeOffers()[offer].Buyer]

	market := g.Price
	if c == Petrol {
		market = g.PetrolPrice
	}
	revenue := volume * b.PriceFor(market)
	g.Cash += revenue
	b.Demand = max(0, b.Demand-volume)
	b.Reputation = min(ReputationMax, b.Reputation+1)
	if c == Petrol {
		g.PetrolStorage -= volume
	} else {
		g.WithdrawOil(volume)
	}
	o := succeed(fmt.Sprintf("Sold %d barrels of %s to %s for $%d.", volume, c, b.Name, revenue))
	o.Revenue = revenue
	return o
}

// SignContract commits stored crude to one of today's contract offers.
// The committed volume is capped by stock and the per-trade maximum.
func (g *GameState) SignContract(offer int, volume int) Outcome {
	if offer < 0 || offer >= g.contractOfferCount() {
		return fail(ErrInvalidOffer, "No such contract offer.")
	}
	if volume <= 0 {
		return fail(ErrInvalidVolume, "Contract volume must be positive.")
	}
	available := g.TradeCapacity(Oil)
	if available <= 0 {
		return fail(ErrNothingToSell, "No oil available to commit.")
	}
	offers := g.ContractOffers()
	o := offers[offer]
	c := &Contract{
		Name:          o.Name,
		Volume:        min(volume, o.Volume, available),
		Price:         o.Price,
		DaysRemaining: o.Duration,
	}
	g.Contracts = append(g.Contracts, c)
	g.Offers.Contracts = append(offers[:offer:offer], offers[offer+1:]...)
	return succeed(fmt.Sprintf("Signed contract with %s for %d barrels at $%d.", c.Name, c.Volume, c.Price))
}
