package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
)

// File holds the optional TOML config file path
type File struct {
	Path string
}

// Flags returns CLI flags for the config file
func (c *File) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Usage:       "Path to a wasmpub.toml config file",
			Destination: &c.Path,
			Sources:     cli.EnvVars("WASMPUB_CONFIG"),
		},
	}
}

// fileConfig mirrors the wasmpub.toml schema.
type fileConfig struct {
	Registry struct {
		URL    string `toml:"url"`
		Tag    string `toml:"tag"`
		Access string `toml:"access"`
	} `toml:"registry"`
	Artifact struct {
		Dir    string `toml:"dir"`
		Readme string `toml:"readme"`
	} `toml:"artifact"`
	Notify struct {
		SlackWebhookURL string `toml:"slack_webhook_url"`
	} `toml:"notify"`
}

// Overlay loads the config file, if any, and fills in values that were not
// given on the command line or environment. Flags and env always win over
// the file; the file never carries the token.
func (c *File) Overlay(cmd *cli.Command, registry *Registry, artifact *Artifact, notify *Notify) error {
	if c.Path == "" {
		return nil
	}

	data, err := os.ReadFile(c.Path)
	if err != nil {
		return goerr.Wrap(err, "failed to read config file", goerr.V("path", c.Path))
	}

	var parsed fileConfig
	if err := toml.Unmarshal(data, &parsed); err != nil {
		return goerr.Wrap(err, "failed to parse config file", goerr.V("path", c.Path))
	}

	if registry != nil {
		if parsed.Registry.URL != "" && !cmd.IsSet("registry") {
			registry.URL = parsed.Registry.URL
		}
		if parsed.Registry.Tag != "" && !cmd.IsSet("tag") {
			registry.Tag = parsed.Registry.Tag
		}
		if parsed.Registry.Access != "" && !cmd.IsSet("access") {
			registry.Access = parsed.Registry.Access
		}
	}

	if artifact != nil {
		if parsed.Artifact.Dir != "" && !cmd.IsSet("dir") {
			artifact.Dir = parsed.Artifact.Dir
		}
		if parsed.Artifact.Readme != "" && !cmd.IsSet("readme") {
			artifact.Readme = parsed.Artifact.Readme
		}
	}

	if notify != nil {
		if parsed.Notify.SlackWebhookURL != "" && !cmd.IsSet("slack-webhook-url") {
			notify.SlackWebhookURL = parsed.Notify.SlackWebhookURL
		}
	}

	return nil
}
