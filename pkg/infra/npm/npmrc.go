package npm

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/dogamak/wasmpub/pkg/domain/types"
)

// NpmrcWriter writes the registry credential into a project-scoped .npmrc,
// the same file the original publish workflow produced inside the build
// output directory before invoking npm.
type NpmrcWriter struct{}

// WriteNpmrc writes `//<host>/<path>:_authToken=<token>` into <dir>/.npmrc
// with owner-only permissions. The returned cleanup removes the file and
// must run once the publish attempt is over, success or not.
func (NpmrcWriter) WriteNpmrc(dir, registryURL, token string) (func() error, error) {
	scope, err := registryScope(registryURL)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(dir, ".npmrc")
	content := scope + ":_authToken=" + token + "\n"

	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return nil, goerr.Wrap(err, "failed to write .npmrc",
			goerr.V("path", path),
			goerr.T(types.ErrTagNpm),
		)
	}

	cleanup := func() error {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return goerr.Wrap(err, "failed to remove .npmrc", goerr.V("path", path))
		}
		return nil
	}

	return cleanup, nil
}

// registryScope converts a registry URL into the scheme-less prefix npm uses
// for credential lines, e.g. https://registry.npmjs.org -> //registry.npmjs.org/
func registryScope(registryURL string) (string, error) {
	u, err := url.Parse(registryURL)
	if err != nil || u.Host == "" {
		return "", goerr.New("invalid registry URL for credential scope",
			goerr.V("url", registryURL),
			goerr.T(types.ErrTagNpm),
		)
	}

	scope := "//" + u.Host + u.Path
	if !strings.HasSuffix(scope, "/") {
		scope += "/"
	}

	return scope, nil
}
