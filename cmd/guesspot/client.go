package main

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	charmlog "github.com/charmbracelet/log"

	"github.com/lox/guesspot/internal/client"
	"github.com/lox/guesspot/internal/tui"
)

// PlayCmd connects to a server as an interactive player
type PlayCmd struct {
	URL   string `short:"u" default:"ws://localhost:8080/ws" help:"Server WebSocket URL"`
	Name  string `short:"n" required:"" help:"Player name"`
	Debug bool   `short:"d" help:"Log client debug output to stderr"`
}

func (cmd *PlayCmd) Run() error {
	return runTUI(cmd.URL, cmd.Name, cmd.Debug, false)
}

// WatchCmd connects to a server as a read-only spectator
type WatchCmd struct {
	URL   string `short:"u" default:"ws://localhost:8080/ws" help:"Server WebSocket URL"`
	Name  string `short:"n" default:"spectator" help:"Spectator name"`
	Debug bool   `short:"d" help:"Log client debug output to stderr"`
}

func (cmd *WatchCmd) Run() error {
	return runTUI(cmd.URL, cmd.Name, cmd.Debug, true)
}

func runTUI(url, name string, debug, watchOnly bool) error {
	// The TUI owns the terminal, so client logs go nowhere unless debugging
	logger := charmlog.New(io.Discard)
	if debug {
		logger = charmlog.New(os.Stderr)
		logger.SetLevel(charmlog.DebugLevel)
	}

	c := client.NewClient(url, name, logger)
	if err := c.Connect(); err != nil {
		return fmt.Errorf("could not connect to %s: %w", url, err)
	}
	defer func() { _ = c.Close() }()

	model := tui.NewModel(c, logger, watchOnly)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}
