// Package game contains the core simulation for Black Oil: the world grid,
// the market model and the day-advance pipeline.
// It performs no I/O; callers drive it through actions and NextDay.
package game

import (
	"fmt"
	"math/rand/v2"
)

// GameState is the aggregate root of one game session.
type GameState struct {
	Scenario      Scenario `json:"scenario"`
	Day           int      `json:"day"`
	DayPhase      int      `json:"dayPhase"` // cosmetic cycle 0..3
	Cash          int      `json:"cash"`
	Price         int      `json:"price"`
	PetrolPrice   int      `json:"petrolPrice"`
	PetrolStorage int      `json:"petrolStorage"`
	EventMessage  string   `json:"eventMessage"`
	NewsMessage   string   `json:"newsMessage"`

	Tiles       []*Tile       `json:"tiles"` // row-major
	Competitors []*Competitor `json:"competitors"`
	Contracts   []*Contract   `json:"contracts"`
	Buyers      []*Buyer      `json:"buyers"`

	Refinery      Refinery     `json:"refinery"`
	Hub           TransportHub `json:"transportHub"`
	ResearchLevel int          `json:"researchLevel"`
	AutoRefine    bool         `json:"autoRefine"`

	LoanBalance int     `json:"loanBalance"`
	LoanLimit   int     `json:"loanLimit"`
	LoanRate    float64 `json:"loanRate"`

	MarketTrend       float64 `json:"marketTrend"`
	MarketSupply      int     `json:"marketSupply"`
	MarketDemand      int     `json:"marketDemand"`
	LastDayProduction int     `json:"lastDayProduction"`

	Totals Totals `json:"totals"`
	Offers Offers `json:"offers"`

	MapSeed     int64        `json:"mapSeed"`
	Decorations []Decoration `json:"decorations"`

	rng Source
	pcg *rand.PCG
}

// Totals are the season-long production counters.
type Totals struct {
	OilProduced       int `json:"oilProduced"`
	PetrolRefined     int `json:"petrolRefined"`
	ContractDelivered int `json:"contractDelivered"`
}

// NewGame starts a fresh session for the scenario.
// The seed fixes every random draw of the session, map included.
func NewGame(scenario Scenario, seed int64) *GameState {
	g := &GameState{}
	g.ReseedRand(seed)

	g.Scenario = scenario
	g.Day = 1
	g.Cash = scenario.StartingCash
	g.MapSeed = int64(randInt(g.rng, 1000, 9999))
	g.Price = randInt(g.rng, scenario.PriceMin, scenario.PriceMax)
	g.PetrolPrice = randInt(g.rng, PetrolPriceMin, PetrolPriceMax)
	g.Tiles = GenerateTiles(scenario, g.MapSeed)
	g.Decorations = GenerateDecorations(g.MapSeed, scenario.GridSize)
	g.Competitors = DefaultCompetitors()
	g.Buyers = DefaultBuyers()
	g.LoanLimit = DefaultLoanLimit
	g.LoanRate = DefaultLoanRate
	g.AutoRefine = true
	g.MarketDemand = BaseDemand
	return g
}

// GenerateTiles builds the row-major grid for a map seed.
func GenerateTiles(scenario Scenario, mapSeed int64) []*Tile {
	rng := seededRNG(mapSeed, "tiles")
	tiles := make([]*Tile, 0, scenario.GridSize*scenario.GridSize)
	for row := 0; row < scenario.GridSize; row++ {
		for col := 0; col < scenario.GridSize; col++ {
			reserve := randInt(rng, 0, ReserveMax)
			tiles = append(tiles, NewTile(row, col, reserve, randInt(rng, OutputRateMin, OutputRateMax)))
		}
	}
	return tiles
}

// GenerateDecorations builds the cosmetic overlay for a map seed.
func GenerateDecorations(mapSeed int64, gridSize int) []Decoration {
	rng := seededRNG(mapSeed, "decorations")
	out := make([]Decoration, 0, gridSize*gridSize*3)
	for i := 0; i < gridSize*gridSize*3; i++ {
		out = append(out, Decoration{
			X:     randInt(rng, 0, 599),
			Y:     randInt(rng, 0, 599),
			Size:  randInt(rng, 4, 12),
			Color: decorationColors[rng.IntN(len(decorationColors))],
		})
	}
	return out
}

// Rand returns the session's random source.
func (g *GameState) Rand() Source {
	if g.rng == nil {
		g.ReseedRand(g.MapSeed + int64(g.Day))
	}
	return g.rng
}

// SetRand replaces the random source. A source set this way is not
// persisted by RandState.
func (g *GameState) SetRand(src Source) {
	g.rng = src
	g.pcg = nil
}

// ReseedRand resets the session generator to a seed.
func (g *GameState) ReseedRand(seed int64) {
	g.pcg = seededPCG(seed, "session")
	g.rng = rand.New(g.pcg)
}

// RandState serializes the generator so a reloaded session continues the
// same stream. It returns nil when the source is not a session PCG.
func (g *GameState) RandState() ([]byte, error) {
	if g.pcg == nil {
		return nil, nil
	}
	return g.pcg.MarshalBinary()
}

// RestoreRand loads a generator state produced by RandState.
func (g *GameState) RestoreRand(data []byte) error {
	pcg := &rand.PCG{}
	if err := pcg.UnmarshalBinary(data); err != nil {
		return fmt.Errorf("restore rng: %w", err)
	}
	g.pcg = pcg
	g.rng = rand.New(pcg)
	return nil
}

// Tile returns the tile at a 0-based grid position.
func (g *GameState) Tile(row, col int) (*Tile, bool) {
	n := g.Scenario.GridSize
	if row < 0 || col < 0 || row >= n || col >= n {
		return nil, false
	}
	i := row*n + col
	if i >= len(g.Tiles) {
		return nil, false
	}
	t := g.Tiles[i]
	if t.Row != row || t.Col != col {
		for _, candidate := range g.Tiles {
			if candidate.Row == row && candidate.Col == col {
				return candidate, true
			}
		}
		return nil, false
	}
	return t, true
}

// StorageOf sums the barrels stored on tiles held by an owner.
func (g *GameState) StorageOf(owner Owner) int {
	total := 0
	for _, t := range g.Tiles {
		if t.Owner == owner {
			total += t.Storage
		}
	}
	return total
}

// PlayerStorage is the player's total crude in storage.
func (g *GameState) PlayerStorage() int {
	return g.StorageOf(PlayerOwner())
}

// PlayerPumps counts pumps on player tiles.
func (g *GameState) PlayerPumps() int {
	n := 0
	for _, t := range g.Tiles {
		if t.Owner.IsPlayer() && t.HasPump() {
			n++
		}
	}
	return n
}

// CompetitorByID returns the competitor with the given ID.
func (g *GameState) CompetitorByID(id int) (*Competitor, bool) {
	for _, c := range g.Competitors {
		if c.ID == id {
			return c, true
		}
	}
	return nil, false
}

// CompetitorByName returns the competitor with the given name.
func (g *GameState) CompetitorByName(name string) (*Competitor, bool) {
	for _, c := range g.Competitors {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// OwnerName renders an owner for display: "" for unclaimed tiles.
func (g *GameState) OwnerName(o Owner) string {
	switch o.Kind {
	case PlayerOwned:
		return "player"
	case RivalOwned:
		if c, ok := g.CompetitorByID(o.Rival); ok {
			return c.Name
		}
		return o.String()
	default:
		return ""
	}
}

// SeasonOver reports whether the final day has been reached.
func (g *GameState) SeasonOver() bool {
	return g.Day >= g.Scenario.MaxDays
}

// FinalAssets values the player's position at current prices, net of debt.
func (g *GameState) FinalAssets() int {
	return g.Cash + g.PlayerStorage()*g.Price + g.PetrolStorage*g.PetrolPrice - g.LoanBalance
}

// View returns a deep copy for presentation code. Mutating it does not
// affect the session.
func (g *GameState) View() *GameState {
	c := *g
	c.rng, c.pcg = nil, nil
	c.Tiles = make([]*Tile, len(g.Tiles))
	for i, t := range g.Tiles {
		c.Tiles[i] = t.clone()
	}
	c.Competitors = make([]*Competitor, len(g.Competitors))
	for i, comp := range g.Competitors {
		cc := *comp
		c.Competitors[i] = &cc
	}
	c.Contracts = make([]*Contract, len(g.Contracts))
	for i, k := range g.Contracts {
		kk := *k
		c.Contracts[i] = &kk
	}
	c.Buyers = make([]*Buyer, len(g.Buyers))
	for i, b := range g.Buyers {
		bb := *b
		c.Buyers[i] = &bb
	}
	c.Decorations = append([]Decoration(nil), g.Decorations...)
	c.Offers = g.Offers.clone()
	return &c
}
