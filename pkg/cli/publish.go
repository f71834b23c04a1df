package cli

import (
	"context"
	"log/slog"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/dogamak/wasmpub/pkg/cli/config"
	"github.com/dogamak/wasmpub/pkg/infra/notify"
	"github.com/dogamak/wasmpub/pkg/infra/npm"
	"github.com/dogamak/wasmpub/pkg/infra/registry"
	"github.com/dogamak/wasmpub/pkg/usecase"
)

func cmdPublish() *cli.Command {
	var (
		registryCfg config.Registry
		artifactCfg config.Artifact
		notifyCfg   config.Notify
		fileCfg     config.File

		dryRun         bool
		skipConfirm    bool
		confirmTimeout time.Duration
	)

	flags := append(registryCfg.Flags(), artifactCfg.Flags()...)
	flags = append(flags, notifyCfg.Flags()...)
	flags = append(flags, fileCfg.Flags()...)
	flags = append(flags,
		&cli.BoolFlag{
			Name:        "dry-run",
			Usage:       "Run npm publish --dry-run without credentials",
			Destination: &dryRun,
		},
		&cli.BoolFlag{
			Name:        "skip-confirm",
			Usage:       "Skip post-publish registry confirmation",
			Destination: &skipConfirm,
		},
		&cli.DurationFlag{
			Name:        "confirm-timeout",
			Usage:       "How long to wait for the registry to confirm the version",
			Value:       30 * time.Second,
			Destination: &confirmTimeout,
		},
	)

	return &cli.Command{
		Name:    "publish",
		Aliases: []string{"p"},
		Usage:   "Publish the prebuilt package to the registry",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			if err := fileCfg.Overlay(c, &registryCfg, &artifactCfg, &notifyCfg); err != nil {
				return err
			}

			registryURL, err := registryCfg.Configure()
			if err != nil {
				return err
			}

			client := registry.NewClient(registryURL, registry.WithToken(registryCfg.Token))
			publisher := npm.NewRunner()

			verifier := usecase.NewVerify(artifactCfg.Dir,
				usecase.WithRegistry(client),
				usecase.WithPublisher(publisher),
				usecase.WithToken(registryCfg.Token),
				usecase.WithAllowMissingToken(dryRun),
			)

			publishUC := usecase.NewPublish(
				artifactCfg.Dir, registryURL, registryCfg.Token,
				client, publisher, npm.NpmrcWriter{},
				usecase.WithVerifier(verifier),
				usecase.WithReadmeSync(artifactCfg.Readme),
				usecase.WithDistTag(registryCfg.Tag),
				usecase.WithAccess(registryCfg.Access),
				usecase.WithDryRun(dryRun),
				usecase.WithSkipConfirm(skipConfirm),
				usecase.WithConfirmTimeout(confirmTimeout),
			)

			result, runErr := publishUC.Publish(ctx)

			if notifyCfg.Enabled() && !dryRun {
				notifier := notify.NewSlack(notifyCfg.SlackWebhookURL)
				if err := notifier.NotifyResult(ctx, result, runErr); err != nil {
					logger.Warn("Failed to send notification", slog.Any("error", err))
				}
			}

			if runErr != nil {
				return goerr.Wrap(runErr, "publish failed")
			}

			logger.Info("Published package",
				slog.String("package", result.Plan.PackageName),
				slog.String("version", result.Plan.Version),
				slog.String("registry", result.Plan.RegistryURL),
				slog.Bool("dry_run", result.Plan.DryRun),
			)
			return nil
		},
	}
}
