package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	charmlog "github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/guesspot/cmd/guesspot/shared"
	"github.com/lox/guesspot/internal/game"
	"github.com/lox/guesspot/internal/server"
)

// ServerCmd runs the game server
type ServerCmd struct {
	Config  string `short:"c" default:"guesspot.hcl" help:"Path to HCL config file"`
	Addr    string `help:"Override listen address from config"`
	Debug   bool   `short:"d" help:"Enable debug logging"`
	LogJSON bool   `help:"Emit structured JSON logs instead of console output"`
}

func (cmd *ServerCmd) Run() error {
	logger := shared.SetupLogger(cmd.Debug, cmd.LogJSON)

	config, err := server.LoadConfig(cmd.Config)
	if err != nil {
		return err
	}
	if err := config.Validate(); err != nil {
		return err
	}

	addr := config.ServerAddress()
	if cmd.Addr != "" {
		addr = cmd.Addr
	}

	subsystemLog := charmlog.New(os.Stderr)
	if cmd.Debug || config.Server.LogLevel == "debug" {
		subsystemLog.SetLevel(charmlog.DebugLevel)
	}

	seed := config.Game.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rules := config.Rules()
	draw := game.NewSeededDraw(seed, rules.MinNumber, rules.MaxNumber)
	treasury := game.NewMemoryTreasury()

	bus := game.NewEventBus()
	manager := game.NewManager(rules, config.Game.Admin, draw, treasury,
		game.WithEventBus(bus),
		game.WithLogger(subsystemLog),
	)

	service := server.NewGameService(manager, subsystemLog)
	bus.Subscribe(service)

	srv := server.NewServer(addr, service, subsystemLog)

	logger.Info().
		Str("addr", addr).
		Str("admin", config.Game.Admin).
		Int64("fee", rules.RegistrationFee).
		Int("max_players", rules.MaxPlayers).
		Msg("starting guesspot server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-ctx.Done()
		logger.Info().Msg("shutting down")
		return srv.Stop()
	})

	return g.Wait()
}
