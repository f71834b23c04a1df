package model

import (
	"time"

	"github.com/google/uuid"
)

// PublishPlan holds the resolved inputs of a single publish run.
type PublishPlan struct {
	RunID       string // Correlation ID attached to all log output of the run
	PackageName string // Package name from the artifact manifest
	Version     string // Version from the artifact manifest
	ArtifactDir string // Directory containing the prebuilt package
	RegistryURL string // Normalized registry base URL
	DistTag     string // dist-tag to publish under (npm --tag)
	Access      string // npm --access value
	DryRun      bool   // Pass --dry-run to npm and skip credential handling
}

// NewPublishPlan builds a plan for the given manifest and settings.
func NewPublishPlan(manifest *Manifest, dir, registryURL, distTag, access string, dryRun bool) *PublishPlan {
	return &PublishPlan{
		RunID:       uuid.NewString(),
		PackageName: manifest.Name,
		Version:     manifest.Version,
		ArtifactDir: dir,
		RegistryURL: registryURL,
		DistTag:     distTag,
		Access:      access,
		DryRun:      dryRun,
	}
}

// PublishResult is the outcome of a publish run.
type PublishResult struct {
	Plan         *PublishPlan
	ReadmeSynced bool          // README was copied into the artifact directory
	Confirmed    bool          // Version was observed in the registry packument
	Duration     time.Duration // Wall time of the whole pipeline
}
