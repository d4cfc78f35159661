package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"black-oil/internal/command"
	"black-oil/internal/game"
	"black-oil/internal/protocol"
	"black-oil/internal/save"
)

// REPL reads commands and plays them against a backend.
type REPL struct {
	Backend  Backend
	Parser   *command.Parser
	Out      io.Writer
	Log      *slog.Logger
	SavePath string

	// Clipboard receives the save JSON for export. Defaults to the system
	// clipboard.
	Clipboard func([]byte) error
}

// NewREPL creates a REPL writing to out.
func NewREPL(b Backend, out io.Writer, savePath string, log *slog.Logger) *REPL {
	if log == nil {
		log = slog.Default()
	}
	return &REPL{
		Backend:   b,
		Parser:    command.New(),
		Out:       out,
		Log:       log,
		SavePath:  savePath,
		Clipboard: CopyToClipboard,
	}
}

// Run reads lines until quit, end of input or a connection failure.
func (r *REPL) Run(ctx context.Context, in io.Reader) error {
	if state, err := r.Backend.State(ctx); err == nil {
		fmt.Fprint(r.Out, RenderStatus(state))
	}
	fmt.Fprintln(r.Out, "Type help for commands.")

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(r.Out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(r.Out)
			return scanner.Err()
		}
		quit, err := r.Exec(ctx, scanner.Text())
		if err != nil {
			if errors.Is(err, ErrNotConnected) || errors.Is(err, context.Canceled) {
				return err
			}
			fmt.Fprintln(r.Out, describeError(err))
		}
		if quit {
			return nil
		}
	}
}

// Exec runs one line. Usage, rule and network errors are returned for the
// caller to print; quit reports whether the player asked to leave.
func (r *REPL) Exec(ctx context.Context, line string) (quit bool, err error) {
	cmd, err := r.Parser.Parse(line)
	if errors.Is(err, command.ErrEmpty) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	switch cmd.Verb {
	case command.VerbQuit:
		return true, nil
	case command.VerbHelp:
		r.help()
	case command.VerbStatus:
		state, err := r.Backend.State(ctx)
		if err != nil {
			return false, err
		}
		fmt.Fprint(r.Out, RenderStatus(state))
	case command.VerbMap:
		state, err := r.Backend.State(ctx)
		if err != nil {
			return false, err
		}
		fmt.Fprint(r.Out, RenderMap(state))
	case command.VerbNext:
		return false, r.nextDay(ctx)
	case command.VerbOffers:
		offers, err := r.Backend.Offers(ctx)
		if err != nil {
			return false, err
		}
		fmt.Fprint(r.Out, RenderOffers(offers.Trade))
	case command.VerbContracts:
		offers, err := r.Backend.Offers(ctx)
		if err != nil {
			return false, err
		}
		state, err := r.Backend.State(ctx)
		if err != nil {
			return false, err
		}
		fmt.Fprint(r.Out, RenderContracts(offers.Contracts, state.Contracts))
	case command.VerbSave:
		path := r.SavePath
		if len(cmd.Args) > 0 {
			path = cmd.Args[0]
		}
		return false, r.save(ctx, path)
	case command.VerbExport:
		return false, r.export(ctx)
	case command.VerbHistory:
		return false, r.history(ctx, cmd.Args)
	default:
		return false, r.act(ctx, cmd)
	}
	return false, nil
}

func (r *REPL) act(ctx context.Context, cmd command.Command) error {
	state, err := r.Backend.State(ctx)
	if err != nil {
		return err
	}
	action, err := cmd.Action(state)
	if err != nil {
		return err
	}
	result, err := r.Backend.Apply(ctx, action)
	if err != nil {
		return err
	}
	fmt.Fprintln(r.Out, result.Message)
	if !result.OK {
		r.Log.Debug("action rejected", "action", action.Type, "code", result.Code)
	}
	return nil
}

func (r *REPL) nextDay(ctx context.Context) error {
	report, err := r.Backend.NextDay(ctx)
	if errors.Is(err, game.ErrSeasonOver) {
		state, serr := r.Backend.State(ctx)
		if serr != nil {
			return serr
		}
		fmt.Fprintf(r.Out, "The season is over. Final assets: $%d\n", state.FinalAssets())
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprint(r.Out, RenderDayReport(report))
	return nil
}

// snapshot returns the game to save. The local game keeps its generator
// state; a remote view is reseeded from the map seed when loaded.
func (r *REPL) snapshot(ctx context.Context) (*game.GameState, error) {
	if l, ok := r.Backend.(*Local); ok {
		return l.Game(), nil
	}
	return r.Backend.State(ctx)
}

func (r *REPL) save(ctx context.Context, path string) error {
	if path == "" {
		return errors.New("save: no path configured")
	}
	g, err := r.snapshot(ctx)
	if err != nil {
		return err
	}
	if err := save.SaveFile(path, g); err != nil {
		return err
	}
	r.Log.Info("game saved", "path", path, "day", g.Day)
	fmt.Fprintf(r.Out, "Saved day %d to %s\n", g.Day, path)
	return nil
}

func (r *REPL) export(ctx context.Context) error {
	g, err := r.snapshot(ctx)
	if err != nil {
		return err
	}
	data, err := save.Marshal(g)
	if err != nil {
		return err
	}
	if err := r.Clipboard(data); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	fmt.Fprintf(r.Out, "Copied %d bytes of save data to the clipboard.\n", len(data))
	return nil
}

func (r *REPL) history(ctx context.Context, args []string) error {
	reports, err := r.Backend.Reports(ctx)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		fmt.Fprint(r.Out, RenderHistory(reports))
		return nil
	}
	if len(args) != 2 || !strings.EqualFold(args[0], "csv") {
		return errors.New("usage: history [csv <path>]")
	}
	if err := SaveHistoryCSV(args[1], reports); err != nil {
		return err
	}
	fmt.Fprintf(r.Out, "Wrote %d days to %s\n", len(reports), args[1])
	return nil
}

func (r *REPL) help() {
	for _, d := range r.Parser.Defs() {
		fmt.Fprintf(r.Out, "  %-34s %s\n", d.Usage, d.Summary)
	}
}

// describeError renders server error replies without the code prefix.
func describeError(err error) string {
	var e *protocol.ErrorPayload
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
