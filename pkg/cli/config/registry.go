package config

import (
	"net/url"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// Registry holds npm registry configuration
type Registry struct {
	URL    string
	Token  string
	Tag    string
	Access string
}

// Flags returns CLI flags for registry configuration
func (c *Registry) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "registry",
			Usage:       "npm registry base URL",
			Value:       "https://registry.npmjs.org",
			Destination: &c.URL,
			Sources:     cli.EnvVars("WASMPUB_REGISTRY"),
		},
		&cli.StringFlag{
			Name:        "token",
			Usage:       "Registry auth token",
			Destination: &c.Token,
			Sources:     cli.EnvVars("NPM_TOKEN", "WASMPUB_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "tag",
			Usage:       "dist-tag to publish under",
			Value:       "latest",
			Destination: &c.Tag,
			Sources:     cli.EnvVars("WASMPUB_TAG"),
		},
		&cli.StringFlag{
			Name:        "access",
			Usage:       "npm access level (public, restricted)",
			Value:       "public",
			Destination: &c.Access,
			Sources:     cli.EnvVars("WASMPUB_ACCESS"),
		},
	}
}

// Configure validates the registry URL and returns its normalized form
// without a trailing slash.
func (c *Registry) Configure() (string, error) {
	u, err := url.Parse(c.URL)
	if err != nil {
		return "", goerr.Wrap(err, "invalid registry URL", goerr.V("url", c.URL))
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", goerr.New("registry URL must be http or https", goerr.V("url", c.URL))
	}
	if u.Host == "" {
		return "", goerr.New("registry URL has no host", goerr.V("url", c.URL))
	}

	return strings.TrimSuffix(u.String(), "/"), nil
}
