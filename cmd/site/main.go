package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/prettyirrelevant/eniola.wtf/cmd/site/commands"
	"github.com/prettyirrelevant/eniola.wtf/internal/foundation/errors"
	"github.com/prettyirrelevant/eniola.wtf/internal/version"
)

func main() {
	cli := &commands.CLI{}
	global := commands.NewGlobal(os.Stdout)
	parser := kong.Parse(cli,
		kong.Name("site"),
		kong.Description("Personal site and blog: serve it, export it, inspect its posts."),
		kong.UsageOnError(),
		kong.Vars{"version": version.Get().String()},
		kong.Bind(global),
	)

	if err := parser.Run(cli); err != nil {
		adapter := errors.NewCLIErrorAdapter(cli.Verbose, slog.Default())
		os.Exit(adapter.Report(os.Stderr, err))
	}
}
