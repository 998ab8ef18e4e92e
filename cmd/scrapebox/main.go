package main

import (
	"context"
	"fmt"
	"os"

	"github.com/neox5/scrapebox/internal/version"
	"github.com/urfave/cli/v3"
)

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:      "scrapebox",
		Usage:     "Synthetic metrics endpoint for exercising monitoring systems",
		Version:   version.String(),
		Writer:    os.Stdout,
		ErrWriter: os.Stderr,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log level (debug, info, warn, error)",
				Sources: cli.EnvVars("SCRAPEBOX_LOG_LEVEL"),
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			randomCommand(),
			mealsCommand(),
			wildlifeCommand(),
			scrapeCommand(),
		},
	}
}
