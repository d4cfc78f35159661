// Package save reads and writes versioned game saves.
//
// A save is a JSON object whose fields mirror game.GameState. Older
// versions are upgraded by the migrations in migrate.go before decoding;
// fields still missing afterwards fall back to documented defaults.
package save

import (
	"encoding/json"
	"fmt"
)

// CurrentVersion is the schema version written by Encode.
const CurrentVersion = 3

// File is the on-disk save document. Pointer fields are optional and are
// defaulted when absent.
type File struct {
	SaveVersion  int    `json:"save_version"`
	Scenario     string `json:"scenario"`
	Day          *int   `json:"day,omitempty"`
	Cash         *int   `json:"cash,omitempty"`
	Price        *int   `json:"price,omitempty"`
	PetrolPrice  *int   `json:"petrol_price,omitempty"`
	EventMessage string `json:"event_message"`
	NewsMessage  string `json:"news_message"`

	LoanBalance   int      `json:"loan_balance"`
	LoanLimit     *int     `json:"loan_limit,omitempty"`
	LoanRate      *float64 `json:"loan_rate,omitempty"`
	ResearchLevel int      `json:"research_level"`
	AutoRefine    *bool    `json:"auto_refine,omitempty"`

	Refinery     RefineryRecord `json:"refinery"`
	TransportHub HubRecord      `json:"transport_hub"`

	TotalOilProduced       int `json:"total_oil_produced"`
	TotalPetrolRefined     int `json:"total_petrol_refined"`
	TotalContractDelivered int `json:"total_contract_delivered"`
	PetrolStorage          int `json:"petrol_storage"`
	DayPhase               int `json:"day_phase"`

	MarketTrend       float64 `json:"market_trend"`
	MarketSupply      int     `json:"market_supply"`
	MarketDemand      *int    `json:"market_demand,omitempty"`
	LastDayProduction int     `json:"last_day_production"`

	MapSeed     *int64            `json:"map_seed,omitempty"`
	Decorations []DecorationTuple `json:"decorations,omitempty"`

	Tiles       []TileRecord       `json:"tiles,omitempty"`
	Competitors []CompetitorRecord `json:"competitors,omitempty"`
	Contracts   []ContractRecord   `json:"contracts,omitempty"`
	Buyers      []BuyerRecord      `json:"buyers,omitempty"`

	// Added in version 3.
	RNGState []byte        `json:"rng_state,omitempty"`
	Offers   *OffersRecord `json:"offers,omitempty"`
}

type RefineryRecord struct {
	Level    int `json:"level"`
	Capacity int `json:"capacity"`
}

type HubRecord struct {
	Level int `json:"level"`
}

// TileRecord stores the owner as null, "player" or a competitor name.
type TileRecord struct {
	Row        int           `json:"row"`
	Col        int           `json:"col"`
	Reserve    int           `json:"reserve"`
	OutputRate int           `json:"output_rate"`
	Owner      *string       `json:"owner"`
	Drilled    bool          `json:"drilled"`
	PumpLevel  int           `json:"pump_level"`
	Storage    int           `json:"storage"`
	Capacity   *int          `json:"capacity,omitempty"`
	Survey     *SurveyRecord `json:"survey,omitempty"`
}

type SurveyRecord struct {
	Low  int `json:"low"`
	High int `json:"high"`
}

type CompetitorRecord struct {
	Name             string   `json:"name"`
	Cash             int      `json:"cash"`
	Aggressiveness   float64  `json:"aggressiveness"`
	Color            string   `json:"color"`
	StorageThreshold *int     `json:"storage_threshold,omitempty"`
	RiskTolerance    *float64 `json:"risk_tolerance,omitempty"`
	Discipline       *float64 `json:"discipline,omitempty"`
}

type ContractRecord struct {
	Name          string `json:"name"`
	Volume        int    `json:"volume"`
	Price         int    `json:"price"`
	DaysRemaining int    `json:"days_remaining"`
	Delivered     int    `json:"delivered"`
}

type BuyerRecord struct {
	Name       string  `json:"name"`
	Category   string  `json:"category"`
	Demand     int     `json:"demand"`
	Multiplier float64 `json:"multiplier"`
	Reputation int     `json:"reputation"`
}

type OffersRecord struct {
	TradeDay    int                   `json:"trade_day"`
	TradeBuyers []int                 `json:"trade_buyers"`
	ContractDay int                   `json:"contract_day"`
	Contracts   []ContractOfferRecord `json:"contracts"`
}

type ContractOfferRecord struct {
	Name     string `json:"name"`
	Volume   int    `json:"volume"`
	Price    int    `json:"price"`
	Duration int    `json:"duration"`
}

// DecorationTuple is encoded as [x, y, size, color].
type DecorationTuple struct {
	X     int
	Y     int
	Size  int
	Color string
}

func (d DecorationTuple) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{d.X, d.Y, d.Size, d.Color})
}

func (d *DecorationTuple) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 4 {
		return fmt.Errorf("decoration: expected 4 elements, got %d", len(raw))
	}
	for i, dst := range []any{&d.X, &d.Y, &d.Size, &d.Color} {
		if err := json.Unmarshal(raw[i], dst); err != nil {
			return fmt.Errorf("decoration element %d: %w", i, err)
		}
	}
	return nil
}
