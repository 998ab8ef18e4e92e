package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/neox5/scrapebox/internal/app"
	"github.com/neox5/scrapebox/internal/config"
	"github.com/neox5/scrapebox/internal/logger"
	"github.com/neox5/scrapebox/internal/scrape"
	"github.com/neox5/scrapebox/internal/version"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

var errInvalidArgumentCount = errors.New("invalid argument count")

const randomUsage = "Invalid command line arguments. Must be: <low> <high> <port>"

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the scenarios and exporters of a configuration file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "config.yaml",
				Usage:   "path to configuration file",
				Sources: cli.EnvVars("SCRAPEBOX_CONFIG"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := config.Load(cmd.String("config"))
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return run(ctx, cmd, cfg)
		},
	}
}

func randomCommand() *cli.Command {
	return &cli.Command{
		Name:      "random",
		Usage:     "expose one gauge holding a random number between low and high",
		ArgsUsage: "<low> <high> <port>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			low, high, port, err := parseRandomArgs(cmd.Args().Slice())
			if errors.Is(err, errInvalidArgumentCount) {
				fmt.Fprintln(cmd.Root().ErrWriter, randomUsage)
				fmt.Fprintf(cmd.Root().ErrWriter, "Usage: %s random %s\n", cmd.Root().Name, cmd.ArgsUsage)
				return err
			}
			if err != nil {
				return err
			}

			cfg := config.Default()
			cfg.Export.Prometheus.Port = port
			cfg.Scenarios = []config.ScenarioConfig{{
				Type: config.ScenarioRandomRange,
				Low:  low,
				High: high,
			}}
			return run(ctx, cmd, cfg)
		},
	}
}

func mealsCommand() *cli.Command {
	return fixedScenarioCommand(config.ScenarioMeals, "expose method invocation and meal counters")
}

func wildlifeCommand() *cli.Command {
	return fixedScenarioCommand(config.ScenarioWildlife, "expose animal sighting and simulated request metrics")
}

func fixedScenarioCommand(scenario config.ScenarioType, usage string) *cli.Command {
	return &cli.Command{
		Name:  string(scenario),
		Usage: usage,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Value:   config.DefaultPrometheusPort,
				Usage:   "listen port",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := config.Default()
			cfg.Export.Prometheus.Port = int(cmd.Int("port"))
			cfg.Scenarios = []config.ScenarioConfig{{Type: scenario}}
			return run(ctx, cmd, cfg)
		},
	}
}

func scrapeCommand() *cli.Command {
	return &cli.Command{
		Name:      "scrape",
		Usage:     "print the samples exposed by a metrics endpoint",
		ArgsUsage: "<url>",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "timeout",
				Value: scrape.DefaultTimeout,
				Usage: "request timeout",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return fmt.Errorf("%w: expected <url>", errInvalidArgumentCount)
			}

			families, err := scrape.NewClient(cmd.Duration("timeout")).Scrape(ctx, cmd.Args().First())
			if err != nil {
				return err
			}
			for _, line := range scrape.Lines(families) {
				fmt.Fprintln(cmd.Root().Writer, line)
			}
			return nil
		},
	}
}

func parseRandomArgs(args []string) (low, high float64, port int, err error) {
	if len(args) != 3 {
		return 0, 0, 0, errInvalidArgumentCount
	}
	if low, err = strconv.ParseFloat(args[0], 64); err != nil {
		return 0, 0, 0, fmt.Errorf("invalid low bound %q: %w", args[0], err)
	}
	if high, err = strconv.ParseFloat(args[1], 64); err != nil {
		return 0, 0, 0, fmt.Errorf("invalid high bound %q: %w", args[1], err)
	}
	if port, err = strconv.Atoi(args[2]); err != nil {
		return 0, 0, 0, fmt.Errorf("invalid port %q: %w", args[2], err)
	}
	return low, high, port, nil
}

// run validates cfg, builds the logger and blocks until SIGINT or SIGTERM.
func run(ctx context.Context, cmd *cli.Command, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	level := cfg.Settings.LogLevel
	if l := cmd.String("log-level"); l != "" {
		level = l
	}
	if cmd.Bool("debug") {
		level = "debug"
	}
	log, err := logger.New(level)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	defer func() { _ = log.Sync() }()

	fields := []zap.Field{
		zap.String("version", version.String()),
		zap.String("command", cmd.Name),
		zap.Strings("args", cmd.Args().Slice()),
	}
	if cfg.Export.PrometheusEnabled() {
		fields = append(fields, zap.Int("port", cfg.Export.Prometheus.Port))
	}
	log.Info("starting scrapebox", fields...)

	application, err := app.New(cfg, log)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	shutdownCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return application.Run(shutdownCtx)
}
