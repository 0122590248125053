package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

// Globals are flags shared by every command
type Globals struct {
	Config    string `kong:"default='spudgame.hcl',type='path',help='HCL config file (defaults are used if missing)'"`
	Debug     bool   `kong:"help='Enable debug logging'"`
	LogFormat string `kong:"default='text',enum='text,json',help='Log format (text, json)'"`
}

type CLI struct {
	Globals `embed:""`

	Version    kong.VersionFlag `short:"v" help:"Show version"`
	Play       PlayCmd          `cmd:"" default:"withargs" help:"Play a single game in the terminal"`
	Simulate   SimulateCmd      `cmd:"" help:"Play many seeded games and report statistics"`
	Serve      ServeCmd         `cmd:"" help:"Play games back to back and stream them to websocket spectators"`
	Step       StepCmd          `cmd:"" help:"Step through a game one round at a time"`
	VersionCmd VersionCmd       `cmd:"" name:"version" help:"Print the version"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("spudgame"),
		kong.Description("Hot potato guessing game with a growing prize pool"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
