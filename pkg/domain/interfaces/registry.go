package interfaces

import (
	"context"

	"github.com/dogamak/wasmpub/pkg/domain/model"
)

// RegistryClient defines the read-only operations against an npm registry
// that the publish pipeline needs. The actual upload is delegated to the npm
// CLI and is not part of this interface.
type RegistryClient interface {
	// GetPackument fetches the registry metadata document for a package.
	// Returns ErrPackageNotFound when the package has never been published.
	GetPackument(ctx context.Context, name string) (*model.Packument, error)

	// Ping checks basic registry reachability.
	Ping(ctx context.Context) error

	// Whoami resolves the username behind the configured token. Used to
	// fail fast on an invalid credential before npm is invoked.
	Whoami(ctx context.Context) (string, error)
}
