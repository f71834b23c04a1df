package cli

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/ctxlog"
	"github.com/urfave/cli/v3"

	"github.com/dogamak/wasmpub/pkg/cli/config"
	"github.com/dogamak/wasmpub/pkg/domain/types"
)

// Run runs the CLI application
func Run(ctx context.Context, args []string) error {
	var loggerCfg config.Logger
	var logger *slog.Logger

	app := &cli.Command{
		Name:    "wasmpub",
		Usage:   "Publish wasm-pack build output to an npm registry",
		Version: types.Version,
		Flags:   loggerCfg.Flags(),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			var err error
			logger, err = loggerCfg.Configure()
			if err != nil {
				return nil, err
			}

			slog.SetDefault(logger)
			ctx = ctxlog.With(ctx, logger)

			if dsn := os.Getenv("WASMPUB_SENTRY_DSN"); dsn != "" {
				if err := sentry.Init(sentry.ClientOptions{
					Dsn:     dsn,
					Release: "wasmpub@" + types.Version,
				}); err != nil {
					logger.Warn("Failed to initialize Sentry", slog.Any("error", err))
				}
			}

			return ctx, nil
		},
		Commands: []*cli.Command{
			cmdPublish(),
			cmdVerify(),
			cmdStatus(),
		},
	}

	if err := app.Run(ctx, args); err != nil {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Error("CLI execution failed", slog.Any("error", err))

		if sentry.CurrentHub().Client() != nil {
			sentry.CaptureException(err)
			sentry.Flush(2 * time.Second)
		}

		return err
	}

	return nil
}
