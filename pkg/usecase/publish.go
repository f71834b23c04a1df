package usecase

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/dogamak/wasmpub/pkg/domain/interfaces"
	"github.com/dogamak/wasmpub/pkg/domain/model"
	"github.com/dogamak/wasmpub/pkg/domain/types"
)

const confirmInterval = 2 * time.Second

type publishUseCase struct {
	dir            string
	readmePath     string
	registryURL    string
	token          string
	distTag        string
	access         string
	dryRun         bool
	skipConfirm    bool
	confirmTimeout time.Duration

	verifier  interfaces.VerifyUseCase
	registry  interfaces.RegistryClient
	publisher interfaces.Publisher
	creds     interfaces.CredentialWriter
}

// PublishOption is a functional option for the publish use case
type PublishOption func(*publishUseCase)

// WithReadmeSync copies the given README into the artifact directory before
// publishing when the two differ. Empty path disables the sync.
func WithReadmeSync(path string) PublishOption {
	return func(uc *publishUseCase) {
		uc.readmePath = path
	}
}

// WithDistTag sets the dist-tag to publish under
func WithDistTag(tag string) PublishOption {
	return func(uc *publishUseCase) {
		uc.distTag = tag
	}
}

// WithAccess sets the npm access level
func WithAccess(access string) PublishOption {
	return func(uc *publishUseCase) {
		uc.access = access
	}
}

// WithDryRun runs npm publish with --dry-run and skips credentials and
// registry confirmation
func WithDryRun(dryRun bool) PublishOption {
	return func(uc *publishUseCase) {
		uc.dryRun = dryRun
	}
}

// WithSkipConfirm disables the post-publish registry confirmation
func WithSkipConfirm(skip bool) PublishOption {
	return func(uc *publishUseCase) {
		uc.skipConfirm = skip
	}
}

// WithConfirmTimeout bounds the post-publish registry confirmation
func WithConfirmTimeout(timeout time.Duration) PublishOption {
	return func(uc *publishUseCase) {
		uc.confirmTimeout = timeout
	}
}

// WithVerifier installs the preflight gate run before publishing
func WithVerifier(verifier interfaces.VerifyUseCase) PublishOption {
	return func(uc *publishUseCase) {
		uc.verifier = verifier
	}
}

// NewPublish creates a new instance of PublishUseCase. The registry client,
// publisher and credential writer are required; behavior is tuned through
// options.
func NewPublish(
	dir, registryURL, token string,
	registryClient interfaces.RegistryClient,
	publisher interfaces.Publisher,
	creds interfaces.CredentialWriter,
	opts ...PublishOption,
) interfaces.PublishUseCase {
	uc := &publishUseCase{
		dir:            dir,
		registryURL:    registryURL,
		token:          token,
		distTag:        "latest",
		access:         "public",
		confirmTimeout: 30 * time.Second,
		registry:       registryClient,
		publisher:      publisher,
		creds:          creds,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// Publish runs the publish pipeline: preflight, README sync, credential
// setup, npm publish, registry confirmation.
func (uc *publishUseCase) Publish(ctx context.Context) (*model.PublishResult, error) {
	start := time.Now()

	manifest, err := model.LoadManifest(uc.dir)
	if err != nil {
		return nil, goerr.Wrap(err, "artifact directory is not publishable",
			goerr.V("dir", uc.dir),
			goerr.T(types.ErrTagPreflight),
		)
	}
	if err := manifest.Validate(); err != nil {
		return nil, goerr.Wrap(err, "package manifest is not publishable", goerr.T(types.ErrTagPreflight))
	}

	plan := model.NewPublishPlan(manifest, uc.dir, uc.registryURL, uc.distTag, uc.access, uc.dryRun)
	result := &model.PublishResult{Plan: plan}

	logger := ctxlog.From(ctx).With(
		"run_id", plan.RunID,
		"package", plan.PackageName,
		"version", plan.Version,
	)
	ctx = ctxlog.With(ctx, logger)

	logger.Info("Starting publish run",
		"registry", plan.RegistryURL,
		"tag", plan.DistTag,
		"access", plan.Access,
		"dry_run", plan.DryRun,
	)

	if uc.verifier != nil {
		report, err := uc.verifier.Verify(ctx)
		if err != nil {
			return result, goerr.Wrap(err, "preflight could not run", goerr.T(types.ErrTagPreflight))
		}
		if !report.OK() {
			return result, preflightError(report)
		}
	}

	if uc.readmePath != "" {
		synced, err := syncReadme(ctx, uc.dir, uc.readmePath)
		if err != nil {
			return result, err
		}
		result.ReadmeSynced = synced
	}

	if !plan.DryRun {
		if uc.token == "" {
			return result, goerr.New("registry token is required to publish", goerr.T(types.ErrTagPreflight))
		}

		cleanup, err := uc.creds.WriteNpmrc(uc.dir, uc.registryURL, uc.token)
		if err != nil {
			return result, err
		}
		defer func() {
			if err := cleanup(); err != nil {
				logger.Warn("Failed to remove credential file", "error", err)
			}
		}()
	}

	if err := uc.publisher.Publish(ctx, plan); err != nil {
		return result, err
	}

	if !plan.DryRun && !uc.skipConfirm {
		if err := uc.confirm(ctx, plan); err != nil {
			return result, err
		}
		result.Confirmed = true
	}

	result.Duration = time.Since(start)

	logger.Info("Publish run finished",
		"confirmed", result.Confirmed,
		"readme_synced", result.ReadmeSynced,
		"duration_ms", result.Duration.Milliseconds(),
	)

	return result, nil
}

// confirm polls the registry until the published version shows up in the
// packument or the timeout expires.
func (uc *publishUseCase) confirm(ctx context.Context, plan *model.PublishPlan) error {
	logger := ctxlog.From(ctx)

	ctx, cancel := context.WithTimeout(ctx, uc.confirmTimeout)
	defer cancel()

	ticker := time.NewTicker(confirmInterval)
	defer ticker.Stop()

	for {
		packument, err := uc.registry.GetPackument(ctx, plan.PackageName)
		switch {
		case errors.Is(err, types.ErrPackageNotFound):
			// Registry has not materialized the package yet, keep polling.
		case err != nil:
			logger.Warn("Registry confirmation attempt failed", "error", err)
		case packument.HasVersion(plan.Version):
			logger.Info("Registry confirmed published version")
			return nil
		}

		select {
		case <-ctx.Done():
			return goerr.New("registry did not confirm the published version in time",
				goerr.V("package", plan.PackageName),
				goerr.V("version", plan.Version),
				goerr.V("timeout", uc.confirmTimeout.String()),
				goerr.T(types.ErrTagRegistry),
			)
		case <-ticker.C:
		}
	}
}

// preflightError folds the failed checks into a single tagged error.
func preflightError(report *model.CheckReport) error {
	var details []string
	for _, check := range report.Failed() {
		details = append(details, check.Name+": "+check.Detail)
	}

	return goerr.New("preflight checks failed",
		goerr.V("failed", strings.Join(details, "; ")),
		goerr.T(types.ErrTagPreflight),
	)
}

// syncReadme copies the repository README into the artifact directory when
// the copy there is missing or stale. wasm-pack duplicates the crate README
// into its output; this keeps a hand-maintained README current instead.
func syncReadme(ctx context.Context, dir, readmePath string) (bool, error) {
	logger := ctxlog.From(ctx)

	src, err := os.ReadFile(readmePath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warn("README to sync does not exist, skipping", "path", readmePath)
			return false, nil
		}
		return false, goerr.Wrap(err, "failed to read README", goerr.V("path", readmePath))
	}

	dst := filepath.Join(dir, "README.md")
	current, err := os.ReadFile(dst)
	if err == nil && bytes.Equal(current, src) {
		return false, nil
	}

	if err := os.WriteFile(dst, src, 0644); err != nil {
		return false, goerr.Wrap(err, "failed to write README into artifact directory", goerr.V("path", dst))
	}

	logger.Info("Synced README into artifact directory", "from", readmePath, "to", dst)
	return true, nil
}
