package main

import (
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"
)

var (
	// Version information (set via ldflags during build)
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	app := &cli.App{
		Name:  "solpay",
		Usage: "Solana Pay payment utility CLI",
		Description: `A command-line tool for generating Solana Pay payment URLs,
verifying on-chain payments, and talking to the solpay service.

The pay commands work standalone against a Solana RPC endpoint; the
client commands require a running solpay server.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Commands: []*cli.Command{
			generateURLCommand(),
			verifyCommand(),
			balanceCommand(),
			// Client commands (HTTP API)
			clientCommands(),
			// Server utility commands
			{
				Name:  "server",
				Usage: "Server utility commands",
				Subcommands: []*cli.Command{
					healthCommand(),
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
