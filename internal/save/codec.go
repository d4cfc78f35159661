package save

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"black-oil/internal/game"
)

var (
	ErrCorrupt            = errors.New("save: corrupt document")
	ErrUnsupportedVersion = errors.New("save: unsupported version")
)

const playerOwnerName = "player"

// Encode converts a session to the current save schema.
func Encode(g *game.GameState) (*File, error) {
	rngState, err := g.RandState()
	if err != nil {
		return nil, err
	}

	f := &File{
		SaveVersion:            CurrentVersion,
		Scenario:               g.Scenario.Name,
		Day:                    ptr(g.Day),
		Cash:                   ptr(g.Cash),
		Price:                  ptr(g.Price),
		PetrolPrice:            ptr(g.PetrolPrice),
		EventMessage:           g.EventMessage,
		NewsMessage:            g.NewsMessage,
		LoanBalance:            g.LoanBalance,
		LoanLimit:              ptr(g.LoanLimit),
		LoanRate:               ptr(g.LoanRate),
		ResearchLevel:          g.ResearchLevel,
		AutoRefine:             ptr(g.AutoRefine),
		Refinery:               RefineryRecord{Level: g.Refinery.Level, Capacity: g.Refinery.Capacity},
		TransportHub:           HubRecord{Level: g.Hub.Level},
		TotalOilProduced:       g.Totals.OilProduced,
		TotalPetrolRefined:     g.Totals.PetrolRefined,
		TotalContractDelivered: g.Totals.ContractDelivered,
		PetrolStorage:          g.PetrolStorage,
		DayPhase:               g.DayPhase,
		MarketTrend:            g.MarketTrend,
		MarketSupply:           g.MarketSupply,
		MarketDemand:           ptr(g.MarketDemand),
		LastDayProduction:      g.LastDayProduction,
		MapSeed:                ptr(g.MapSeed),
		RNGState:               rngState,
	}

	for _, d := range g.Decorations {
		f.Decorations = append(f.Decorations, DecorationTuple{X: d.X, Y: d.Y, Size: d.Size, Color: d.Color})
	}
	for _, t := range g.Tiles {
		rec := TileRecord{
			Row:        t.Row,
			Col:        t.Col,
			Reserve:    t.Reserve,
			OutputRate: t.OutputRate,
			Drilled:    t.Drilled,
			PumpLevel:  t.PumpLevel,
			Storage:    t.Storage,
			Capacity:   ptr(t.Capacity),
		}
		switch t.Owner.Kind {
		case game.PlayerOwned:
			rec.Owner = ptr(playerOwnerName)
		case game.RivalOwned:
			c, ok := g.CompetitorByID(t.Owner.Rival)
			if !ok {
				return nil, fmt.Errorf("tile %s: unknown competitor %d", t.Label(), t.Owner.Rival)
			}
			rec.Owner = ptr(c.Name)
		}
		if t.Survey != nil {
			rec.Survey = &SurveyRecord{Low: t.Survey.Low, High: t.Survey.High}
		}
		f.Tiles = append(f.Tiles, rec)
	}
	for _, c := range g.Competitors {
		f.Competitors = append(f.Competitors, CompetitorRecord{
			Name:             c.Name,
			Cash:             c.Cash,
			Aggressiveness:   c.Aggressiveness,
			Color:            c.Color,
			StorageThreshold: ptr(c.StorageThreshold),
			RiskTolerance:    ptr(c.RiskTolerance),
			Discipline:       ptr(c.Discipline),
		})
	}
	for _, c := range g.Contracts {
		f.Contracts = append(f.Contracts, ContractRecord{
			Name:          c.Name,
			Volume:        c.Volume,
			Price:         c.Price,
			DaysRemaining: c.DaysRemaining,
			Delivered:     c.Delivered,
		})
	}
	for _, b := range g.Buyers {
		f.Buyers = append(f.Buyers, BuyerRecord{
			Name:       b.Name,
			Category:   b.Category,
			Demand:     b.Demand,
			Multiplier: b.Multiplier,
			Reputation: b.Reputation,
		})
	}
	if g.Offers.TradeDay != 0 || g.Offers.ContractDay != 0 {
		offers := &OffersRecord{
			TradeDay:    g.Offers.TradeDay,
			TradeBuyers: append([]int(nil), g.Offers.TradeBuyers...),
			ContractDay: g.Offers.ContractDay,
		}
		for _, o := range g.Offers.Contracts {
			offers.Contracts = append(offers.Contracts, ContractOfferRecord(o))
		}
		f.Offers = offers
	}
	return f, nil
}

// Loader restores sessions from save documents.
type Loader struct {
	Catalog *game.Catalog
	// Rand fills fields that are missing and have no deterministic default.
	Rand *rand.Rand
}

// NewLoader returns a Loader over the catalog. A nil catalog means the
// built-in scenarios.
func NewLoader(catalog *game.Catalog) *Loader {
	if catalog == nil {
		catalog, _ = game.NewCatalog()
	}
	seed := uint64(time.Now().UnixNano())
	return &Loader{Catalog: catalog, Rand: rand.New(rand.NewPCG(seed, seed>>17))}
}

// Decode restores a session, defaulting missing fields and regenerating
// empty collections.
func (l *Loader) Decode(f *File) (*game.GameState, error) {
	scenario := l.Catalog.Resolve(f.Scenario)
	g := &game.GameState{
		Scenario:          scenario,
		Day:               orDefault(f.Day, 1),
		Cash:              orDefault(f.Cash, scenario.StartingCash),
		Price:             orDefault(f.Price, scenario.PriceMin),
		EventMessage:      f.EventMessage,
		NewsMessage:       f.NewsMessage,
		LoanBalance:       f.LoanBalance,
		LoanLimit:         orDefault(f.LoanLimit, game.DefaultLoanLimit),
		LoanRate:          orDefault(f.LoanRate, game.DefaultLoanRate),
		ResearchLevel:     f.ResearchLevel,
		AutoRefine:        orDefault(f.AutoRefine, true),
		Refinery:          game.Refinery{Level: f.Refinery.Level, Capacity: f.Refinery.Capacity},
		Hub:               game.TransportHub{Level: f.TransportHub.Level},
		PetrolStorage:     f.PetrolStorage,
		DayPhase:          f.DayPhase,
		MarketTrend:       f.MarketTrend,
		MarketSupply:      f.MarketSupply,
		MarketDemand:      orDefault(f.MarketDemand, game.BaseDemand),
		LastDayProduction: f.LastDayProduction,
		Totals: game.Totals{
			OilProduced:       f.TotalOilProduced,
			PetrolRefined:     f.TotalPetrolRefined,
			ContractDelivered: f.TotalContractDelivered,
		},
	}
	if f.PetrolPrice != nil {
		g.PetrolPrice = *f.PetrolPrice
	} else {
		g.PetrolPrice = game.PetrolPriceMin + l.Rand.IntN(game.PetrolPriceMax-game.PetrolPriceMin+1)
	}
	if f.MapSeed != nil {
		g.MapSeed = *f.MapSeed
	} else {
		g.MapSeed = 1000 + l.Rand.Int64N(9000)
	}

	if len(f.Competitors) == 0 {
		g.Competitors = game.DefaultCompetitors()
	}
	for i, c := range f.Competitors {
		g.Competitors = append(g.Competitors, &game.Competitor{
			ID:               i,
			Name:             c.Name,
			Cash:             c.Cash,
			Aggressiveness:   c.Aggressiveness,
			Color:            c.Color,
			StorageThreshold: orDefault(c.StorageThreshold, 30),
			RiskTolerance:    orDefault(c.RiskTolerance, 0.5),
			Discipline:       orDefault(c.Discipline, 0.5),
		})
	}

	g.Tiles = l.decodeTiles(g, f.Tiles)

	for _, c := range f.Contracts {
		g.Contracts = append(g.Contracts, &game.Contract{
			Name:          c.Name,
			Volume:        c.Volume,
			Price:         c.Price,
			DaysRemaining: c.DaysRemaining,
			Delivered:     c.Delivered,
		})
	}

	if len(f.Buyers) == 0 {
		g.Buyers = game.DefaultBuyers()
	}
	for _, b := range f.Buyers {
		g.Buyers = append(g.Buyers, &game.Buyer{
			Name:       b.Name,
			Category:   b.Category,
			Demand:     b.Demand,
			Multiplier: b.Multiplier,
			Reputation: b.Reputation,
		})
	}

	if len(f.Decorations) == 0 {
		g.Decorations = game.GenerateDecorations(g.MapSeed, scenario.GridSize)
	}
	for _, d := range f.Decorations {
		g.Decorations = append(g.Decorations, game.Decoration{X: d.X, Y: d.Y, Size: d.Size, Color: d.Color})
	}

	if f.Offers != nil {
		g.Offers = game.Offers{
			TradeDay:    f.Offers.TradeDay,
			TradeBuyers: append([]int(nil), f.Offers.TradeBuyers...),
			ContractDay: f.Offers.ContractDay,
		}
		for _, o := range f.Offers.Contracts {
			g.Offers.Contracts = append(g.Offers.Contracts, game.ContractOffer(o))
		}
	}

	if len(f.RNGState) > 0 {
		if err := g.RestoreRand(f.RNGState); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
	} else {
		g.ReseedRand(g.MapSeed + int64(g.Day))
	}
	return g, nil
}

// decodeTiles lays saved tiles over the grid generated from the map seed.
// Positions the save does not cover, or covers only with an out-of-grid
// record, keep the generated tile. Values are clamped so that storage fits
// in capacity and reserve, output and pump level are not negative.
func (l *Loader) decodeTiles(g *game.GameState, recs []TileRecord) []*game.Tile {
	n := g.Scenario.GridSize
	tiles := game.GenerateTiles(g.Scenario, g.MapSeed)
	for _, rec := range recs {
		if rec.Row < 0 || rec.Col < 0 || rec.Row >= n || rec.Col >= n {
			continue
		}
		t := game.NewTile(rec.Row, rec.Col, max(rec.Reserve, 0), max(rec.OutputRate, 0))
		t.Drilled = rec.Drilled
		t.PumpLevel = min(max(rec.PumpLevel, 0), game.MaxPumpLevel)
		t.Capacity = max(orDefault(rec.Capacity, game.DefaultCapacity), game.DefaultCapacity)
		t.Storage = min(max(rec.Storage, 0), t.Capacity)
		t.Owner = l.ownerFor(g, rec.Owner)
		if rec.Survey != nil {
			low, high := max(rec.Survey.Low, 0), max(rec.Survey.High, 0)
			t.Survey = &game.SurveyRange{Low: min(low, high), High: max(low, high)}
		}
		tiles[rec.Row*n+rec.Col] = t
	}
	return tiles
}

// ownerFor maps a saved owner name back to an Owner. Names that match no
// competitor leave the tile unclaimed.
func (l *Loader) ownerFor(g *game.GameState, name *string) game.Owner {
	if name == nil || *name == "" {
		return game.NoOwner
	}
	if *name == playerOwnerName {
		return game.PlayerOwner()
	}
	if c, ok := g.CompetitorByName(*name); ok {
		return game.RivalOwner(c.ID)
	}
	return game.NoOwner
}

// Marshal encodes a session as indented JSON.
func Marshal(g *game.GameState) ([]byte, error) {
	f, err := Encode(g)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(f, "", "  ")
}

// Unmarshal parses, migrates and restores a save.
func (l *Loader) Unmarshal(data []byte) (*game.GameState, error) {
	f, err := decodeFile(data)
	if err != nil {
		return nil, err
	}
	return l.Decode(f)
}

func ptr[T any](v T) *T { return &v }

func orDefault[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}
