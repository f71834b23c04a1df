package config

import "github.com/urfave/cli/v3"

// Artifact holds build output configuration
type Artifact struct {
	Dir    string
	Readme string
}

// Flags returns CLI flags for artifact configuration
func (c *Artifact) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "dir",
			Usage:       "Directory containing the prebuilt package (wasm-pack output)",
			Value:       "pkg",
			Destination: &c.Dir,
			Sources:     cli.EnvVars("WASMPUB_DIR"),
		},
		&cli.StringFlag{
			Name:        "readme",
			Usage:       "README to sync into the package before publishing (empty disables)",
			Destination: &c.Readme,
			Sources:     cli.EnvVars("WASMPUB_README"),
		},
	}
}
