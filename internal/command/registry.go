// Package command parses the Black Oil REPL input into commands and game
// actions. Misspelled verbs are matched by edit distance.
package command

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Verb is the canonical name of a command.
type Verb string

const (
	VerbBuy        Verb = "buy"
	VerbSurvey     Verb = "survey"
	VerbDrill      Verb = "drill"
	VerbPump       Verb = "pump"
	VerbUpgrade    Verb = "upgrade"
	VerbStorage    Verb = "storage"
	VerbRefinery   Verb = "refinery"
	VerbHub        Verb = "hub"
	VerbResearch   Verb = "research"
	VerbLoan       Verb = "loan"
	VerbRepay      Verb = "repay"
	VerbSell       Verb = "sell"
	VerbOffers     Verb = "offers"
	VerbTrade      Verb = "trade"
	VerbContracts  Verb = "contracts"
	VerbSign       Verb = "sign"
	VerbAutoRefine Verb = "autorefine"
	VerbNext       Verb = "next"
	VerbStatus     Verb = "status"
	VerbMap        Verb = "map"
	VerbSave       Verb = "save"
	VerbExport     Verb = "export"
	VerbHistory    Verb = "history"
	VerbHelp       Verb = "help"
	VerbQuit       Verb = "quit"
)

// Def describes one command.
type Def struct {
	Verb    Verb
	Aliases []string
	Usage   string
	Summary string
	MinArgs int
	MaxArgs int
}

var defaultDefs = []Def{
	{VerbBuy, []string{"lease"}, "buy <row> <col>", "Lease a tile", 2, 2},
	{VerbSurvey, []string{"scout"}, "survey <row> <col>", "Estimate a tile's reserve", 2, 2},
	{VerbDrill, []string{"well"}, "drill <row> <col>", "Drill a well on a leased tile", 2, 2},
	{VerbPump, nil, "pump <row> <col>", "Install a pump on a drilled tile", 2, 2},
	{VerbUpgrade, []string{"up"}, "upgrade <row> <col>", "Upgrade a tile's pump", 2, 2},
	{VerbStorage, []string{"tank"}, "storage <row> <col>", "Add storage to a tile", 2, 2},
	{VerbRefinery, []string{"refine"}, "refinery", "Build or upgrade the refinery", 0, 0},
	{VerbHub, []string{"rail"}, "hub", "Build or upgrade the transport hub", 0, 0},
	{VerbResearch, []string{"rnd"}, "research", "Fund pump research", 0, 0},
	{VerbLoan, []string{"borrow"}, "loan", "Draw from the credit line", 0, 0},
	{VerbRepay, []string{"payback"}, "repay", "Repay part of the loan", 0, 0},
	{VerbSell, nil, "sell oil|petrol", "Sell all stock at the spot price", 1, 1},
	{VerbOffers, []string{"market"}, "offers", "Show today's buyer offers", 0, 0},
	{VerbTrade, []string{"deal"}, "trade <offer> oil|petrol <volume>", "Sell to an offered buyer", 3, 3},
	{VerbContracts, nil, "contracts", "Show contract offers and active contracts", 0, 0},
	{VerbSign, nil, "sign <offer> <volume>", "Sign a contract offer", 2, 2},
	{VerbAutoRefine, []string{"auto"}, "autorefine on|off", "Toggle automatic refining", 1, 1},
	{VerbNext, []string{"n", "end", "day"}, "next", "Advance to the next day", 0, 0},
	{VerbStatus, []string{"s", "info"}, "status", "Show finances and production", 0, 0},
	{VerbMap, []string{"m", "tiles", "grid"}, "map", "Show the tile grid", 0, 0},
	{VerbSave, nil, "save [path]", "Write the save file", 0, 1},
	{VerbExport, []string{"copy"}, "export", "Copy the save to the clipboard", 0, 0},
	{VerbHistory, []string{"log"}, "history [csv <path>]", "Show or export day reports", 0, 2},
	{VerbHelp, []string{"h", "?", "commands"}, "help", "List commands", 0, 0},
	{VerbQuit, []string{"q", "exit"}, "quit", "Leave the game", 0, 0},
}

type phrase struct {
	verb  Verb
	alias string
}

// Registry holds the known commands and their aliases.
type Registry struct {
	defs    map[Verb]Def
	order   []Verb
	phrases []phrase
}

func NewRegistry() *Registry {
	return &Registry{defs: make(map[Verb]Def)}
}

// DefaultRegistry returns the registry of every REPL command.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, d := range defaultDefs {
		r.Register(d)
	}
	return r
}

// Register adds a command, replacing one with the same verb.
func (r *Registry) Register(d Def) {
	if _, ok := r.defs[d.Verb]; !ok {
		r.order = append(r.order, d.Verb)
	}
	r.defs[d.Verb] = d
	r.phrases = append(r.phrases, phrase{verb: d.Verb, alias: string(d.Verb)})
	for _, a := range d.Aliases {
		r.phrases = append(r.phrases, phrase{verb: d.Verb, alias: strings.ToLower(a)})
	}
}

// Defs returns the commands in registration order.
func (r *Registry) Defs() []Def {
	out := make([]Def, 0, len(r.order))
	for _, v := range r.order {
		out = append(out, r.defs[v])
	}
	return out
}

type candidate struct {
	verb  Verb
	score float64
}

// match ranks the verbs for a token: exact and alias hits first, then
// unique prefixes, then edit-distance near misses.
func (r *Registry) match(token string) []candidate {
	best := make(map[Verb]float64)
	for _, p := range r.phrases {
		var score float64
		switch {
		case token == p.alias && p.alias == string(p.verb):
			score = 1
		case token == p.alias:
			score = 0.97
		case len(token) >= 2 && strings.HasPrefix(p.alias, token):
			score = 0.9
		case len(token) >= 3:
			dist := levenshtein.ComputeDistance(token, p.alias)
			if dist > distanceLimit(len(p.alias)) {
				continue
			}
			score = 0.72 - 0.08*float64(dist)
		default:
			continue
		}
		if score > best[p.verb] {
			best[p.verb] = score
		}
	}

	cands := make([]candidate, 0, len(best))
	for v, s := range best {
		cands = append(cands, candidate{verb: v, score: s})
	}
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].score == cands[j].score {
			return cands[i].verb < cands[j].verb
		}
		return cands[i].score > cands[j].score
	})
	return cands
}

func distanceLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}
