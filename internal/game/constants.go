package game

// Balancing constants shared by every scenario.
const (
	OutputRateMin = 6
	OutputRateMax = 22
	ReserveMax    = 170

	DefaultCapacity  = 20
	MaxPumpLevel     = 3
	SurveyCost       = 350
	PumpUpgradeCost  = 700
	StorageExpansion = 15

	LoanChunk        = 2000
	DefaultLoanLimit = 6000
	DefaultLoanRate  = 0.06

	ResearchCost    = 500
	MaintenanceCost = 120
	PumpUpkeep      = 15

	ContractPenalty = 250

	RefineryBuildCost    = 3200
	RefineryUpgradeCost  = 1800
	RefineryBaseCapacity = 40

	PetrolPriceMin = 55
	PetrolPriceMax = 160

	HubBuildCost   = 1800
	HubUpgradeCost = 900
	HubMaxLevel    = 3

	BaseDemand     = 120
	DemandVariance = 45
	DemandFloor    = 40
	MarketTrendMax = 2.5
	MarketImpact   = 0.35
	PressureLimit  = 50
	PriceShock     = 12

	TradeMinVolume    = 20
	TradeMaxVolume    = 120
	ReputationMax     = 5
	TradeOfferSize    = 3
	ContractOfferSize = 3

	// Rivals expand storage in smaller steps than the player.
	RivalStorageExpansion = 10
	RivalExpansionPool    = 4
)

// contractCounterparties are the names contract offers are drawn from.
var contractCounterparties = []string{"Rail Consortium", "Harbor Authority", "Frontier Army", "Steel Works"}

// decorationColors is the palette for the map's decorative overlay.
var decorationColors = []string{"#0f172a", "#1e293b", "#334155", "#0f172a"}
