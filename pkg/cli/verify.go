package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/dogamak/wasmpub/pkg/cli/config"
	"github.com/dogamak/wasmpub/pkg/domain/model"
	"github.com/dogamak/wasmpub/pkg/domain/types"
	"github.com/dogamak/wasmpub/pkg/infra/npm"
	"github.com/dogamak/wasmpub/pkg/infra/registry"
	"github.com/dogamak/wasmpub/pkg/usecase"
)

func cmdVerify() *cli.Command {
	var (
		registryCfg config.Registry
		artifactCfg config.Artifact
		fileCfg     config.File

		offline           bool
		allowMissingToken bool
	)

	flags := append(registryCfg.Flags(), artifactCfg.Flags()...)
	flags = append(flags, fileCfg.Flags()...)
	flags = append(flags,
		&cli.BoolFlag{
			Name:        "offline",
			Usage:       "Skip registry-side checks",
			Destination: &offline,
		},
		&cli.BoolFlag{
			Name:        "allow-missing-token",
			Usage:       "Do not fail when no registry token is configured",
			Destination: &allowMissingToken,
		},
	)

	return &cli.Command{
		Name:    "verify",
		Aliases: []string{"v"},
		Usage:   "Run publish preflight checks without publishing",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := fileCfg.Overlay(c, &registryCfg, &artifactCfg, nil); err != nil {
				return err
			}

			opts := []usecase.VerifyOption{
				usecase.WithToken(registryCfg.Token),
				usecase.WithAllowMissingToken(allowMissingToken),
				usecase.WithPublisher(npm.NewRunner()),
			}

			if !offline {
				registryURL, err := registryCfg.Configure()
				if err != nil {
					return err
				}
				client := registry.NewClient(registryURL, registry.WithToken(registryCfg.Token))
				opts = append(opts, usecase.WithRegistry(client))
			}

			report, err := usecase.NewVerify(artifactCfg.Dir, opts...).Verify(ctx)
			if err != nil {
				return err
			}

			printReport(report)

			if !report.OK() {
				return goerr.New("preflight checks failed",
					goerr.V("failed", len(report.Failed())),
					goerr.T(types.ErrTagPreflight),
				)
			}
			return nil
		},
	}
}

// printReport renders the check report for humans. color disables itself
// when stdout is not a terminal.
func printReport(report *model.CheckReport) {
	pass := color.New(color.FgGreen).SprintFunc()
	fail := color.New(color.FgRed).SprintFunc()

	for _, check := range report.Checks {
		mark := pass("ok  ")
		if !check.Passed {
			mark = fail("FAIL")
		}
		fmt.Printf("%s %-15s %s\n", mark, check.Name, check.Detail)
	}
}
