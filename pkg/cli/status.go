package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/urfave/cli/v3"

	"github.com/dogamak/wasmpub/pkg/cli/config"
	"github.com/dogamak/wasmpub/pkg/domain/model"
	"github.com/dogamak/wasmpub/pkg/domain/types"
	"github.com/dogamak/wasmpub/pkg/infra/registry"
)

func cmdStatus() *cli.Command {
	var (
		registryCfg config.Registry
		artifactCfg config.Artifact
		fileCfg     config.File

		packageName string
	)

	flags := append(registryCfg.Flags(), artifactCfg.Flags()...)
	flags = append(flags, fileCfg.Flags()...)
	flags = append(flags,
		&cli.StringFlag{
			Name:        "package",
			Usage:       "Package name to look up (default: name from the artifact manifest)",
			Destination: &packageName,
		},
	)

	return &cli.Command{
		Name:    "status",
		Aliases: []string{"st"},
		Usage:   "Show registry state for the package",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := fileCfg.Overlay(c, &registryCfg, &artifactCfg, nil); err != nil {
				return err
			}

			var manifest *model.Manifest
			if packageName == "" {
				var err error
				manifest, err = model.LoadManifest(artifactCfg.Dir)
				if err != nil {
					return err
				}
				packageName = manifest.Name
			}

			registryURL, err := registryCfg.Configure()
			if err != nil {
				return err
			}
			client := registry.NewClient(registryURL, registry.WithToken(registryCfg.Token))

			packument, err := client.GetPackument(ctx, packageName)
			if errors.Is(err, types.ErrPackageNotFound) {
				fmt.Printf("%s has never been published to %s\n", packageName, registryURL)
				return nil
			}
			if err != nil {
				return err
			}

			versions := packument.VersionList()
			sort.Strings(versions)

			fmt.Printf("package:  %s\n", packument.Name)
			fmt.Printf("registry: %s\n", registryURL)
			if modified := packument.Modified(); !modified.IsZero() {
				fmt.Printf("modified: %s\n", modified.Format("2006-01-02 15:04:05 MST"))
			}

			fmt.Println("dist-tags:")
			tags := make([]string, 0, len(packument.DistTags))
			for tag := range packument.DistTags {
				tags = append(tags, tag)
			}
			sort.Strings(tags)
			for _, tag := range tags {
				fmt.Printf("  %s: %s\n", tag, packument.DistTags[tag])
			}

			fmt.Printf("versions (%d):\n", len(versions))
			for _, v := range versions {
				fmt.Printf("  %s\n", v)
			}

			if manifest != nil {
				if packument.HasVersion(manifest.Version) {
					fmt.Printf("local %s is already published\n", manifest.Version)
				} else {
					fmt.Printf("local %s is not published yet\n", manifest.Version)
				}
			}

			return nil
		},
	}
}
