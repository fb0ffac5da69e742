package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version kong.VersionFlag `short:"v" help:"Show version"`
	Server  ServerCmd        `cmd:"" help:"Run the guessing game server"`
	Play    PlayCmd          `cmd:"" help:"Connect as an interactive player"`
	Watch   WatchCmd         `cmd:"" help:"Watch a running game read-only"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("guesspot"),
		kong.Description("Round-based number-guessing game with staked prize pools"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
