package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/urfave/cli/v3"

	"github.com/dogamak/wasmpub/pkg/cli/config"
)

// runOverlay parses args through a throwaway command and applies the config
// file overlay, returning the resulting configs.
func runOverlay(t *testing.T, args []string) (*config.Registry, *config.Artifact, *config.Notify) {
	t.Helper()

	var (
		registryCfg config.Registry
		artifactCfg config.Artifact
		notifyCfg   config.Notify
		fileCfg     config.File
	)

	flags := append(registryCfg.Flags(), artifactCfg.Flags()...)
	flags = append(flags, notifyCfg.Flags()...)
	flags = append(flags, fileCfg.Flags()...)

	cmd := &cli.Command{
		Name:  "test",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			return fileCfg.Overlay(c, &registryCfg, &artifactCfg, &notifyCfg)
		},
	}

	gt.NoError(t, cmd.Run(context.Background(), append([]string{"test"}, args...)))
	return &registryCfg, &artifactCfg, &notifyCfg
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wasmpub.toml")
	gt.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestFile_Overlay(t *testing.T) {
	path := writeConfigFile(t, `
[registry]
url = "https://registry.example.com"
tag = "next"

[artifact]
dir = "dist"
readme = "README.md"

[notify]
slack_webhook_url = "https://hooks.slack.com/services/T/B/X"
`)

	registryCfg, artifactCfg, notifyCfg := runOverlay(t, []string{"--config", path})

	gt.Value(t, registryCfg.URL).Equal("https://registry.example.com")
	gt.Value(t, registryCfg.Tag).Equal("next")
	// Not in the file, flag default survives.
	gt.Value(t, registryCfg.Access).Equal("public")
	gt.Value(t, artifactCfg.Dir).Equal("dist")
	gt.Value(t, artifactCfg.Readme).Equal("README.md")
	gt.Value(t, notifyCfg.SlackWebhookURL).Equal("https://hooks.slack.com/services/T/B/X")
}

func TestFile_Overlay_FlagsWin(t *testing.T) {
	path := writeConfigFile(t, `
[registry]
url = "https://registry.example.com"
tag = "next"
`)

	registryCfg, _, _ := runOverlay(t, []string{"--config", path, "--tag", "beta"})

	gt.Value(t, registryCfg.URL).Equal("https://registry.example.com")
	gt.Value(t, registryCfg.Tag).Equal("beta")
}

func TestFile_Overlay_NoFile(t *testing.T) {
	registryCfg, artifactCfg, _ := runOverlay(t, nil)

	gt.Value(t, registryCfg.URL).Equal("https://registry.npmjs.org")
	gt.Value(t, artifactCfg.Dir).Equal("pkg")
}

func TestFile_Overlay_MissingFile(t *testing.T) {
	var fileCfg config.File
	fileCfg.Path = filepath.Join(t.TempDir(), "missing.toml")

	cmd := &cli.Command{
		Name: "test",
		Action: func(ctx context.Context, c *cli.Command) error {
			return fileCfg.Overlay(c, nil, nil, nil)
		},
	}

	gt.Error(t, cmd.Run(context.Background(), []string{"test"}))
}

func TestFile_Overlay_InvalidTOML(t *testing.T) {
	path := writeConfigFile(t, `registry = not toml`)

	var fileCfg config.File
	fileCfg.Path = path

	cmd := &cli.Command{
		Name: "test",
		Action: func(ctx context.Context, c *cli.Command) error {
			return fileCfg.Overlay(c, nil, nil, nil)
		},
	}

	gt.Error(t, cmd.Run(context.Background(), []string{"test"}))
}
