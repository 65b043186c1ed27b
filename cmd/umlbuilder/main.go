// Command umlbuilder renders PlantUML diagram sources incrementally.
package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/umlbuilder/cmd/umlbuilder/commands"
	"git.home.luguber.info/inful/umlbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/umlbuilder/internal/version"
)

func main() {
	cli := &commands.CLI{}
	parser := kong.Parse(cli,
		kong.Name("umlbuilder"),
		kong.Description("Incremental PlantUML diagram builder"),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)

	global := &commands.Global{Logger: slog.Default(), Out: os.Stdout}
	err := parser.Run(global, cli)
	errors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
}
