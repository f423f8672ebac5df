package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/atharvakonge/finance/internal/app"
	"github.com/atharvakonge/finance/internal/cli"
	"github.com/atharvakonge/finance/internal/config"
	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")

	env := &cli.Env{Open: open, Out: os.Stdout, Err: os.Stderr}
	env.SetFlags(flag.CommandLine)
	cli.Register(commander, env)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

// open wires the application from the environment. Logging is quiet unless
// LOG_LEVEL asks otherwise.
func open(ctx context.Context) (*app.App, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if os.Getenv("LOG_LEVEL") == "" {
		cfg.LogLevel = "error"
	}
	logger, err := app.NewLogger(cfg)
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	return a, func() {
		cancel()
		a.Close()
		logger.Sync()
	}, nil
}
