package game

import (
	"errors"
	"fmt"
)

// ActionType names a player action.
type ActionType string

const (
	ActionBuyLand         ActionType = "buy_land"
	ActionSurvey          ActionType = "survey"
	ActionDrill           ActionType = "drill"
	ActionBuildPump       ActionType = "build_pump"
	ActionUpgradePump     ActionType = "upgrade_pump"
	ActionAddStorage      ActionType = "add_storage"
	ActionBuildRefinery   ActionType = "build_refinery"
	ActionUpgradeRefinery ActionType = "upgrade_refinery"
	ActionBuildHub        ActionType = "build_hub"
	ActionUpgradeHub      ActionType = "upgrade_hub"
	ActionResearch        ActionType = "research"
	ActionTakeLoan        ActionType = "take_loan"
	ActionRepayLoan       ActionType = "repay_loan"
	ActionSellOil         ActionType = "sell_oil"
	ActionSellPetrol      ActionType = "sell_petrol"
	ActionAcceptTrade     ActionType = "accept_trade"
	ActionSignContract    ActionType = "sign_contract"
	ActionAutoRefine      ActionType = "auto_refine"
)

// ErrUnknownAction is returned by Apply for an unrecognized action type.
var ErrUnknownAction = errors.New("unknown action")

// Action is a serializable player action. Row and Col are 0-based.
type Action struct {
	Type      ActionType `json:"type"`
	Row       int        `json:"row,omitempty"`
	Col       int        `json:"col,omitempty"`
	Offer     int        `json:"offer,omitempty"`
	Volume    int        `json:"volume,omitempty"`
	Commodity Commodity  `json:"commodity,omitempty"`
	Enabled   bool       `json:"enabled,omitempty"`
}

// Apply runs an action against the state.
func (g *GameState) Apply(a Action) (Outcome, error) {
	switch a.Type {
	case ActionBuyLand:
		return g.BuyLand(a.Row, a.Col), nil
	case ActionSurvey:
		return g.SurveyTile(a.Row, a.Col), nil
	case ActionDrill:
		return g.DrillWell(a.Row, a.Col), nil
	case ActionBuildPump:
		return g.BuildPump(a.Row, a.Col), nil
	case ActionUpgradePump:
		return g.UpgradePump(a.Row, a.Col), nil
	case ActionAddStorage:
		return g.AddStorage(a.Row, a.Col), nil
	case ActionBuildRefinery:
		return g.BuildRefinery(), nil
	case ActionUpgradeRefinery:
		return g.UpgradeRefinery(), nil
	case ActionBuildHub:
		return g.BuildHub(), nil
	case ActionUpgradeHub:
		return g.UpgradeHub(), nil
	case ActionResearch:
		return g.FundResearch(), nil
	case ActionTakeLoan:
		return g.TakeLoan(), nil
	case ActionRepayLoan:
		return g.RepayLoan(), nil
	case ActionSellOil:
		return g.SellOil(), nil
	case ActionSellPetrol:
		return g.SellPetrol(), nil
	case ActionAcceptTrade:
		c := a.Commodity
		if c == "" {
			c = Oil
		}
		return g.AcceptTrade(a.Offer, c, a.Volume), nil
	case ActionSignContract:
		return g.SignContract(a.Offer, a.Volume), nil
	case ActionAutoRefine:
		return g.SetAutoRefine(a.Enabled), nil
	}
	return Outcome{}, fmt.Errorf("%w: %q", ErrUnknownAction, a.Type)
}
