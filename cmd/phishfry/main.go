package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "phishfry",
		Usage: "remove or restore a phishing message across every mailbox it reached",
		Description: `PhishFry resolves a recipient address to every mailbox the message
actually reached (distribution list members, group mailbox owners and
recipients of forwards and replies) and soft-deletes or restores the
message in each of them, reporting a per-address outcome.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to the configuration file",
				Value:   defaultConfigPath(),
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "enable debug logging (including request/response XML)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "delete",
				Usage:     "soft delete a message from every mailbox it was delivered to",
				ArgsUsage: "RECIPIENT MESSAGE_ID",
				Action:    deleteAction,
			},
			{
				Name:      "restore",
				Usage:     "restore a soft-deleted message to every mailbox it was deleted from",
				ArgsUsage: "RECIPIENT MESSAGE_ID",
				Action:    restoreAction,
			},
			{
				Name:      "resolve",
				Usage:     "list every mailbox an address ultimately delivers to",
				ArgsUsage: "RECIPIENT",
				Action:    resolveAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// defaultConfigPath is config.ini next to the executable.
func defaultConfigPath() string {
	exe, err := os.Executable()
	if err != nil {
		return "config.ini"
	}
	return filepath.Join(filepath.Dir(exe), "config.ini")
}
