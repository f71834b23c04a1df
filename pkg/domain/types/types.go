package types

import "github.com/m-mizutani/goerr/v2"

// Version is the tool version, overridden at build time via
// -ldflags "-X github.com/dogamak/wasmpub/pkg/domain/types.Version=..."
var Version = "dev"

// Error tags classify failures by the stage they occurred in.
var (
	// ErrTagPreflight marks failures detected before anything was published.
	ErrTagPreflight = goerr.NewTag("preflight")

	// ErrTagRegistry marks failures while talking to the npm registry.
	ErrTagRegistry = goerr.NewTag("registry")

	// ErrTagNpm marks failures of the external npm CLI invocation.
	ErrTagNpm = goerr.NewTag("npm")
)

// ErrPackageNotFound is returned by registry lookups when the registry has no
// document for the package, i.e. nothing has been published under that name.
var ErrPackageNotFound = goerr.New("package not found in registry", goerr.T(ErrTagRegistry))
