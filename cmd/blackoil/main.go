package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"

	"black-oil/internal/client"
	"black-oil/internal/game"
	"black-oil/internal/save"
)

func main() {
	scenario := flag.String("scenario", "", "Scenario name for a new game")
	seed := flag.Int64("seed", 0, "Seed for a new game (0 picks one)")
	loadPath := flag.String("load", "", "Save file to continue")
	savePath := flag.String("save", "", "Save file written by the save command")
	serverAddr := flag.String("server", "", "Play on a server instead of locally (host:port)")
	sessionID := flag.String("session", "", "Server session to open (default creates one)")
	profile := flag.String("profile", "", "Profile name for separate config (e.g., player1, player2)")
	verbose := flag.Bool("v", false, "Debug logging")
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	client.SetProfile(*profile)
	cfg, err := client.LoadConfig()
	if err != nil {
		logger.Warn("config not loaded", "err", err)
	}
	if *savePath != "" {
		cfg.SavePath = *savePath
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var backend client.Backend
	if *serverAddr != "" {
		backend, err = remoteBackend(ctx, cfg, *serverAddr, *sessionID, *scenario, *seed, logger)
	} else {
		backend, err = localBackend(*loadPath, *scenario, *seed)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer backend.Close()

	if *scenario != "" {
		cfg.LastScenario = *scenario
	}
	if err := cfg.Save(); err != nil {
		logger.Warn("config not saved", "err", err)
	}

	repl := client.NewREPL(backend, os.Stdout, cfg.SavePath, logger)
	if err := repl.Run(ctx, os.Stdin); err != nil && ctx.Err() == nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func localBackend(loadPath, scenario string, seed int64) (client.Backend, error) {
	catalog, err := game.NewCatalog()
	if err != nil {
		return nil, err
	}
	if loadPath != "" {
		g, err := save.NewLoader(catalog).LoadFile(loadPath)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", loadPath, err)
		}
		return client.NewLocal(g), nil
	}

	sc := catalog.Default()
	if scenario != "" {
		var ok bool
		if sc, ok = catalog.Get(scenario); !ok {
			return nil, fmt.Errorf("unknown scenario %q", scenario)
		}
	}
	if seed == 0 {
		seed = rand.Int64N(1 << 53)
	}
	return client.NewLocal(game.NewGame(sc, seed)), nil
}

func remoteBackend(ctx context.Context, cfg *client.Config, addr, sessionID, scenario string, seed int64, logger *slog.Logger) (client.Backend, error) {
	net := client.NewNetworkClient(logger)
	net.OnDisconnect = func(err error) {
		if err != nil {
			fmt.Fprintln(os.Stderr, "connection lost:", err)
		}
	}
	if err := net.Connect(ctx, addr); err != nil {
		return nil, err
	}
	remote := client.NewRemote(net)

	var err error
	if sessionID != "" {
		_, err = remote.Open(ctx, sessionID)
	} else {
		var s *int64
		if seed != 0 {
			s = &seed
		}
		_, err = remote.Create(ctx, "", scenario, s)
	}
	if err != nil {
		net.Disconnect()
		return nil, err
	}

	cfg.LastServer = addr
	cfg.LastSession = remote.Session().ID
	fmt.Printf("Playing session %s on %s\n", remote.Session().ID, addr)
	return remote, nil
}
