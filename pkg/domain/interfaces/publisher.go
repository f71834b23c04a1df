package interfaces

import (
	"context"

	"github.com/dogamak/wasmpub/pkg/domain/model"
)

// Publisher wraps the external npm CLI.
type Publisher interface {
	// Version returns the npm CLI version, failing when npm is not installed.
	Version(ctx context.Context) (string, error)

	// Publish runs `npm publish` for the plan's artifact directory.
	Publish(ctx context.Context, plan *model.PublishPlan) error
}

// CredentialWriter manages the registry credential file inside the artifact
// directory. WriteNpmrc returns a cleanup function that removes the file; it
// must be called once the publish attempt is over, regardless of outcome.
type CredentialWriter interface {
	WriteNpmrc(dir, registryURL, token string) (func() error, error)
}
