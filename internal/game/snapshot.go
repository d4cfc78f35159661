package game

import "fmt"

// EventKind classifies a report line.
type EventKind string

const (
	EventWellDry         EventKind = "well_dry"
	EventRefined         EventKind = "refined"
	EventContractDeliver EventKind = "contract_delivery"
	EventContractMissed  EventKind = "contract_missed"
	EventRepairs         EventKind = "repairs"
	EventPipelineBonus   EventKind = "pipeline_bonus"
	EventPriceShock      EventKind = "price_shock"
	EventRivalLand       EventKind = "rival_land"
	EventRivalSale       EventKind = "rival_sale"
)

// Event is one narrative line of a day report.
// Amount carries the barrels or dollars the line is about, when there is one.
type Event struct {
	Kind    EventKind `json:"kind"`
	Message string    `json:"message"`
	Amount  int       `json:"amount,omitempty"`
}

// EconomySnapshot is the report of a single day advance.
type EconomySnapshot struct {
	Day               int     `json:"day"`
	Production        int     `json:"production"`
	Refined           int     `json:"refined"`
	ContractDelivered int     `json:"contractDelivered"`
	MaintenanceCost   int     `json:"maintenanceCost"`
	InterestCost      int     `json:"interestCost"`
	Events            []Event `json:"events"`
}

func (s *EconomySnapshot) add(kind EventKind, amount int, format string, args ...any) {
	s.Events = append(s.Events, Event{Kind: kind, Message: fmt.Sprintf(format, args...), Amount: amount})
}

// Messages returns the event lines in order.
func (s *EconomySnapshot) Messages() []string {
	out := make([]string, len(s.Events))
	for i, e := range s.Events {
		out[i] = e.Message
	}
	return out
}
