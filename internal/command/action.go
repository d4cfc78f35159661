package command

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"black-oil/internal/game"
)

// ErrNotAction is returned by Action for commands the REPL handles itself.
var ErrNotAction = errors.New("command is not a game action")

var tileActions = map[Verb]game.ActionType{
	VerbBuy:     game.ActionBuyLand,
	VerbSurvey:  game.ActionSurvey,
	VerbDrill:   game.ActionDrill,
	VerbPump:    game.ActionBuildPump,
	VerbUpgrade: game.ActionUpgradePump,
	VerbStorage: game.ActionAddStorage,
}

// Action translates a command into a game action. Tile coordinates and
// offer numbers are 1-based on the command line. The state decides whether
// refinery and hub build or upgrade.
func (c Command) Action(g *game.GameState) (game.Action, error) {
	if t, ok := tileActions[c.Verb]; ok {
		row, err := c.index(0, "row")
		if err != nil {
			return game.Action{}, err
		}
		col, err := c.index(1, "col")
		if err != nil {
			return game.Action{}, err
		}
		return game.Action{Type: t, Row: row, Col: col}, nil
	}

	switch c.Verb {
	case VerbRefinery:
		if g.Refinery.Active() {
			return game.Action{Type: game.ActionUpgradeRefinery}, nil
		}
		return game.Action{Type: game.ActionBuildRefinery}, nil
	case VerbHub:
		if g.Hub.Active() {
			return game.Action{Type: game.ActionUpgradeHub}, nil
		}
		return game.Action{Type: game.ActionBuildHub}, nil
	case VerbResearch:
		return game.Action{Type: game.ActionResearch}, nil
	case VerbLoan:
		return game.Action{Type: game.ActionTakeLoan}, nil
	case VerbRepay:
		return game.Action{Type: game.ActionRepayLoan}, nil
	case VerbSell:
		commodity, err := c.commodity(0)
		if err != nil {
			return game.Action{}, err
		}
		if commodity == game.Petrol {
			return game.Action{Type: game.ActionSellPetrol}, nil
		}
		return game.Action{Type: game.ActionSellOil}, nil
	case VerbTrade:
		offer, err := c.index(0, "offer")
		if err != nil {
			return game.Action{}, err
		}
		commodity, err := c.commodity(1)
		if err != nil {
			return game.Action{}, err
		}
		volume, err := c.number(2, "volume")
		if err != nil {
			return game.Action{}, err
		}
		return game.Action{Type: game.ActionAcceptTrade, Offer: offer, Commodity: commodity, Volume: volume}, nil
	case VerbSign:
		offer, err := c.index(0, "offer")
		if err != nil {
			return game.Action{}, err
		}
		volume, err := c.number(1, "volume")
		if err != nil {
			return game.Action{}, err
		}
		return game.Action{Type: game.ActionSignContract, Offer: offer, Volume: volume}, nil
	case VerbAutoRefine:
		switch strings.ToLower(c.Args[0]) {
		case "on", "yes", "true":
			return game.Action{Type: game.ActionAutoRefine, Enabled: true}, nil
		case "off", "no", "false":
			return game.Action{Type: game.ActionAutoRefine, Enabled: false}, nil
		}
		return game.Action{}, fmt.Errorf("autorefine: expected on or off, got %q", c.Args[0])
	}
	return game.Action{}, ErrNotAction
}

func (c Command) number(i int, name string) (int, error) {
	if i >= len(c.Args) {
		return 0, fmt.Errorf("%s: missing %s", c.Verb, name)
	}
	n, err := strconv.Atoi(c.Args[i])
	if err != nil {
		return 0, fmt.Errorf("%s: %s must be a number, got %q", c.Verb, name, c.Args[i])
	}
	return n, nil
}

// index reads a 1-based argument and returns it 0-based.
func (c Command) index(i int, name string) (int, error) {
	n, err := c.number(i, name)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, fmt.Errorf("%s: %s starts at 1, got %d", c.Verb, name, n)
	}
	return n - 1, nil
}

func (c Command) commodity(i int) (game.Commodity, error) {
	switch strings.ToLower(c.Args[i]) {
	case "oil", "crude":
		return game.Oil, nil
	case "petrol", "gas", "gasoline":
		return game.Petrol, nil
	}
	return "", fmt.Errorf("%s: expected oil or petrol, got %q", c.Verb, c.Args[i])
}
