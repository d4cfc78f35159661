package game

import (
	"fmt"
	"strings"
)

// Scenario is an immutable game configuration selected at game start.
type Scenario struct {
	Name         string  `json:"name" yaml:"name"`
	Description  string  `json:"description" yaml:"description"`
	GridSize     int     `json:"gridSize" yaml:"grid_size"`
	MaxDays      int     `json:"maxDays" yaml:"max_days"`
	StartingCash int     `json:"startingCash" yaml:"starting_cash"`
	LandCost     int     `json:"landCost" yaml:"land_cost"`
	DrillCost    int     `json:"drillCost" yaml:"drill_cost"`
	PumpCost     int     `json:"pumpCost" yaml:"pump_cost"`
	StorageCost  int     `json:"storageCost" yaml:"storage_cost"`
	PriceMin     int     `json:"priceMin" yaml:"price_min"`
	PriceMax     int     `json:"priceMax" yaml:"price_max"`
	EventChance  float64 `json:"eventChance" yaml:"event_chance"`
	Theme        string  `json:"theme" yaml:"theme"` // presentation only
}

// Validate reports whether the scenario can drive a game.
func (s Scenario) Validate() error {
	switch {
	case strings.TrimSpace(s.Name) == "":
		return fmt.Errorf("scenario name is required")
	case s.GridSize < 1:
		return fmt.Errorf("scenario %q: grid size must be positive", s.Name)
	case s.MaxDays < 1:
		return fmt.Errorf("scenario %q: max days must be positive", s.Name)
	case s.StartingCash < 0:
		return fmt.Errorf("scenario %q: starting cash must not be negative", s.Name)
	case s.LandCost < 0 || s.DrillCost < 0 || s.PumpCost < 0 || s.StorageCost < 0:
		return fmt.Errorf("scenario %q: costs must not be negative", s.Name)
	case s.PriceMin < 1 || s.PriceMax < s.PriceMin:
		return fmt.Errorf("scenario %q: invalid price range %d-%d", s.Name, s.PriceMin, s.PriceMax)
	case s.EventChance < 0 || s.EventChance > 1:
		return fmt.Errorf("scenario %q: event chance must be within [0, 1]", s.Name)
	}
	return nil
}

// BuiltInScenarios returns the shipped scenario catalog.
func BuiltInScenarios() []Scenario {
	return []Scenario{
		{
			Name:         "Frontier Boom",
			Description:  "Balanced market with steady reserves and moderate costs.",
			GridSize:     5,
			MaxDays:      30,
			StartingCash: 5200,
			LandCost:     600,
			DrillCost:    800,
			PumpCost:     1200,
			StorageCost:  200,
			PriceMin:     30,
			PriceMax:     120,
			EventChance:  0.35,
			Theme:        "prairie",
		},
		{
			Name:         "Desert Wildcat",
			Description:  "Higher drilling costs and sparser oil, but bigger price swings.",
			GridSize:     6,
			MaxDays:      28,
			StartingCash: 6200,
			LandCost:     700,
			DrillCost:    1000,
			PumpCost:     1400,
			StorageCost:  240,
			PriceMin:     25,
			PriceMax:     150,
			EventChance:  0.4,
			Theme:        "desert",
		},
		{
			Name:         "Coastal Rush",
			Description:  "Compact grid, high reserves, and fierce competition.",
			GridSize:     4,
			MaxDays:      24,
			StartingCash: 4500,
			LandCost:     650,
			DrillCost:    900,
			PumpCost:     1300,
			StorageCost:  220,
			PriceMin:     35,
			PriceMax:     110,
			EventChance:  0.32,
			Theme:        "coastal",
		},
	}
}

// Catalog is an ordered, name-addressable set of scenarios.
type Catalog struct {
	scenarios []Scenario
}

// NewCatalog builds a catalog from the built-in scenarios plus extras.
// Extras with a name already in the catalog replace the earlier entry.
func NewCatalog(extra ...Scenario) (*Catalog, error) {
	c := &Catalog{scenarios: BuiltInScenarios()}
	for _, s := range extra {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if i := c.index(s.Name); i >= 0 {
			c.scenarios[i] = s
			continue
		}
		c.scenarios = append(c.scenarios, s)
	}
	return c, nil
}

// All returns a copy of every scenario in catalog order.
func (c *Catalog) All() []Scenario {
	out := make([]Scenario, len(c.scenarios))
	copy(out, c.scenarios)
	return out
}

// Default returns the first scenario in the catalog.
func (c *Catalog) Default() Scenario {
	return c.scenarios[0]
}

// Get looks up a scenario by case-insensitive name.
func (c *Catalog) Get(name string) (Scenario, bool) {
	if i := c.index(name); i >= 0 {
		return c.scenarios[i], true
	}
	return Scenario{}, false
}

// Resolve returns the named scenario or the default one when the name is unknown.
func (c *Catalog) Resolve(name string) Scenario {
	if s, ok := c.Get(name); ok {
		return s
	}
	return c.Default()
}

func (c *Catalog) index(name string) int {
	name = strings.TrimSpace(name)
	for i, s := range c.scenarios {
		if strings.EqualFold(s.Name, name) {
			return i
		}
	}
	return -1
}

// ScenarioByName looks up a built-in scenario.
func ScenarioByName(name string) (Scenario, bool) {
	for _, s := range BuiltInScenarios() {
		if strings.EqualFold(s.Name, strings.TrimSpace(name)) {
			return s, true
		}
	}
	return Scenario{}, false
}
