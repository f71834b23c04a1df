package interfaces

import (
	"context"

	"github.com/dogamak/wasmpub/pkg/domain/model"
)

// PublishUseCase defines the publish pipeline.
type PublishUseCase interface {
	// Publish runs preflight, credential setup, npm publish and registry
	// confirmation for the configured artifact directory.
	Publish(ctx context.Context) (*model.PublishResult, error)
}

// VerifyUseCase defines the preflight checks.
type VerifyUseCase interface {
	// Verify runs all preflight checks and returns their report. The error
	// is non-nil only when the checks themselves could not be executed.
	Verify(ctx context.Context) (*model.CheckReport, error)
}
