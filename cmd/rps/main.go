package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version kong.VersionFlag `short:"v" help:"Show version"`
	Server  ServerCmd        `cmd:"" help:"Serve the browser game"`
	Play    PlayCmd          `cmd:"" help:"Play in the terminal against a local computer"`
	Client  ClientCmd        `cmd:"" help:"Play in the terminal against a running server"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("rps"),
		kong.Description("Rock Paper Scissors against the computer"),
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
