package model

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// Manifest is the subset of package.json that the publish pipeline reads.
// Fields the tool does not act on are left out on purpose; the npm CLI reads
// the full manifest itself at publish time.
type Manifest struct {
	Name        string     `json:"name"`
	Version     string     `json:"version"`
	Description string     `json:"description,omitempty"`
	Main        string     `json:"main,omitempty"`
	Types       string     `json:"types,omitempty"`
	Files       []string   `json:"files,omitempty"`
	Repository  Repository `json:"repository,omitempty"`
}

// Repository is the repository field of package.json.
type Repository struct {
	Type string `json:"type,omitempty"`
	URL  string `json:"url,omitempty"`
}

// versionPattern accepts MAJOR.MINOR.PATCH with optional pre-release and
// build metadata suffixes.
var versionPattern = regexp.MustCompile(`^\d+\.\d+\.\d+(-[0-9A-Za-z.-]+)?(\+[0-9A-Za-z.-]+)?$`)

// namePattern accepts npm package names, optionally scoped.
var namePattern = regexp.MustCompile(`^(@[a-z0-9~-][a-z0-9._~-]*/)?[a-z0-9~-][a-z0-9._~-]*$`)

// LoadManifest reads and parses package.json from the given directory.
func LoadManifest(dir string) (*Manifest, error) {
	path := filepath.Join(dir, "package.json")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read package manifest", goerr.V("path", path))
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, goerr.Wrap(err, "failed to parse package manifest", goerr.V("path", path))
	}

	return &manifest, nil
}

// Validate checks that the manifest carries a publishable name and version.
func (m *Manifest) Validate() error {
	if m.Name == "" {
		return goerr.New("package manifest has no name")
	}
	if len(m.Name) > 214 {
		return goerr.New("package name exceeds 214 characters", goerr.V("name", m.Name))
	}
	if strings.HasPrefix(m.Name, ".") || strings.HasPrefix(m.Name, "_") {
		return goerr.New("package name must not start with '.' or '_'", goerr.V("name", m.Name))
	}
	if !namePattern.MatchString(m.Name) {
		return goerr.New("package name is not a valid npm name", goerr.V("name", m.Name))
	}

	if m.Version == "" {
		return goerr.New("package manifest has no version", goerr.V("name", m.Name))
	}
	if !versionPattern.MatchString(m.Version) {
		return goerr.New("package version is not valid semver",
			goerr.V("name", m.Name),
			goerr.V("version", m.Version),
		)
	}

	return nil
}

// Scoped reports whether the package name carries an npm scope.
func (m *Manifest) Scoped() bool {
	return strings.HasPrefix(m.Name, "@")
}
