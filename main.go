package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/okra-platform/ddgen/internal/commands"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	short := commit
	if len(commit) > 7 {
		short = commit[:7]
	}

	return fmt.Sprintf("%s (%s) %s", version, short, date)
}

func main() {
	ctrl := &commands.Controller{
		Flags: &commands.Flags{},
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	app := &cli.Command{
		Name:    "ddgen",
		Usage:   "Generate data-driven API sources from interface definition XML",
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log level (debug, info, warn, error, fatal, panic)",
				Sources: cli.EnvVars("DDGEN_LOG_LEVEL"),
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to ddgen.json (default: searched from the working directory upwards)",
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			level, err := zerolog.ParseLevel(c.String("log-level"))
			if err != nil {
				return ctx, fmt.Errorf("failed to parse log level: %w", err)
			}

			log.Logger = log.Level(level)
			ctrl.Flags.LogLevel = c.String("log-level")
			ctrl.Flags.ConfigPath = c.String("config")

			return ctx, nil
		},
		Commands: []*cli.Command{
			{
				Name:      "emit",
				Usage:     "Print the files the generator will produce",
				ArgsUsage: "[definition.xml...]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "absolute",
						Usage: "prefix paths with the output directory",
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					return ctrl.Emit(ctx, c.Args().Slice(), c.Bool("absolute"))
				},
			},
			{
				Name:      "generate",
				Usage:     "Run the generator for every definition",
				ArgsUsage: "[definition.xml...]",
				Action: func(ctx context.Context, c *cli.Command) error {
					return ctrl.Generate(ctx, c.Args().Slice())
				},
			},
			{
				Name:      "build",
				Usage:     "Run the generator for definitions whose outputs are stale",
				ArgsUsage: "[definition.xml...]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "regenerate even when outputs are up to date",
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					return ctrl.Build(ctx, c.Args().Slice(), c.Bool("force"))
				},
			},
			{
				Name:  "resolve",
				Usage: "Show which generator would be used",
				Action: func(ctx context.Context, c *cli.Command) error {
					return ctrl.Resolve(ctx)
				},
			},
			{
				Name:  "watch",
				Usage: "Rebuild whenever a definition changes",
				Action: func(ctx context.Context, c *cli.Command) error {
					return ctrl.Watch(ctx)
				},
			},
			{
				Name:  "init",
				Usage: "Create a ddgen.json in the current directory",
				Action: func(ctx context.Context, c *cli.Command) error {
					return ctrl.Init(ctx)
				},
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := app.Run(ctx, os.Args); err != nil {
		ev := log.Fatal().Err(err)
		if kind := commands.FailureKind(err); kind != "" {
			ev = ev.Str("kind", kind)
		}
		ev.Msg("failed to run ddgen")
	}
}
