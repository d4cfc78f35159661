package command

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmpty is returned for a blank line.
var ErrEmpty = errors.New("empty command")

// UnknownError is returned when no verb matches the input confidently.
type UnknownError struct {
	Input       string
	Suggestions []Verb
}

func (e *UnknownError) Error() string {
	if len(e.Suggestions) == 0 {
		return fmt.Sprintf("unknown command %q, type help for a list", e.Input)
	}
	names := make([]string, len(e.Suggestions))
	for i, s := range e.Suggestions {
		names[i] = string(s)
	}
	return fmt.Sprintf("unknown command %q, did you mean %s?", e.Input, strings.Join(names, " or "))
}

// UsageError is returned when a command has the wrong number of arguments.
type UsageError struct {
	Def Def
}

func (e *UsageError) Error() string {
	return "usage: " + e.Def.Usage
}

// Command is a parsed line of input.
type Command struct {
	Verb Verb
	Args []string
	Raw  string
}

// Parser turns input lines into commands.
type Parser struct {
	registry *Registry
}

func New() *Parser {
	return &Parser{registry: DefaultRegistry()}
}

// Defs lists the known commands.
func (p *Parser) Defs() []Def {
	return p.registry.Defs()
}

// Parse reads one line. A misspelled verb is accepted when a single command
// is a clear best match; otherwise the close candidates are suggested.
func (p *Parser) Parse(line string) (Command, error) {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return Command{}, ErrEmpty
	}
	word := strings.ToLower(tokens[0])

	cands := p.registry.match(word)
	if len(cands) == 0 || cands[0].score < 0.5 {
		return Command{}, &UnknownError{Input: word}
	}
	if len(cands) > 1 && cands[0].score < 0.97 {
		// Near misses are accepted only when nothing else comes close.
		if cands[0].score-cands[1].score < 0.05 || (cands[0].score < 0.9 && cands[1].score > 0.5) {
			return Command{}, &UnknownError{Input: word, Suggestions: []Verb{cands[0].verb, cands[1].verb}}
		}
	}

	def := p.registry.defs[cands[0].verb]
	args := tokens[1:]
	if len(args) < def.MinArgs || len(args) > def.MaxArgs {
		return Command{}, &UsageError{Def: def}
	}
	return Command{Verb: def.Verb, Args: args, Raw: line}, nil
}
