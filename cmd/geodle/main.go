package main

import (
	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version kong.VersionFlag `short:"v" help:"Show version"`
	Config  string           `short:"c" default:"geodle.hcl" help:"Path to the HCL configuration file"`

	Play     PlayCmd     `cmd:"" help:"Play an interactive guessing round"`
	Variants VariantsCmd `cmd:"" help:"List game variants and their entity counts"`
	Results  ResultsCmd  `cmd:"" help:"Show recent results for a user"`
}

func main() {
	// Optional .env for local oracle credentials and endpoints.
	_ = godotenv.Load()

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("geodle"),
		kong.Description("Geography guessing game session engine"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run(&cli)
	ctx.FatalIfErrorf(err)
}
