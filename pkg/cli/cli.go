package cli

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/m-mizutani/ctxlog"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/shipit/pkg/cli/config"
	"github.com/m-mizutani/shipit/pkg/domain/types"
)

// Run runs the CLI application
func Run(ctx context.Context, args []string) error {
	var (
		loggerCfg  config.Logger
		sentryCfg  config.Sentry
		configPath string
		logger     *slog.Logger
	)

	// .env is optional, variables already set in the environment are kept
	_ = godotenv.Load()

	flags := append(loggerCfg.Flags(), sentryCfg.Flags()...)
	flags = append(flags, &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to the TOML configuration file",
		Value:       config.DefaultConfigFile,
		Destination: &configPath,
		Sources:     cli.EnvVars("SHIPIT_CONFIG"),
	})

	app := &cli.Command{
		Name:    "shipit",
		Usage:   "Commit, tag, push and publish a release in one command",
		Version: types.Version,
		Flags:   flags,
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			var err error
			logger, err = loggerCfg.Configure()
			if err != nil {
				return nil, err
			}
			logger = logger.With("run_id", uuid.NewString())

			if err := sentryCfg.Configure(); err != nil {
				return nil, err
			}

			slog.SetDefault(logger)
			ctx = ctxlog.With(ctx, logger)
			return ctx, nil
		},
		Commands: []*cli.Command{
			cmdRelease(&configPath),
		},
	}

	if err := app.Run(ctx, args); err != nil {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Error("CLI execution failed", slog.Any("error", err))
		sentryCfg.Report(err)
		return err
	}

	return nil
}
