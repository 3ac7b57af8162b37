package main

import (
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/adocxref/cmd/adocxref/commands"
	"git.home.luguber.info/inful/adocxref/internal/version"
)

func main() {
	var cli commands.CLI
	g := &commands.Global{}
	ctx := kong.Parse(&cli,
		kong.Name("adocxref"),
		kong.Description("Resolve anchors and rewrite cross references in Antora AsciiDoc content."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
		kong.Bind(g),
	)
	err := ctx.Run(&cli)
	os.Exit(commands.ExitCode(err, cli.Verbose, g))
}
