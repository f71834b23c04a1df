package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/ctxlog"

	"github.com/dogamak/wasmpub/pkg/domain/interfaces"
	"github.com/dogamak/wasmpub/pkg/domain/model"
	"github.com/dogamak/wasmpub/pkg/domain/types"
)

type verifyUseCase struct {
	dir               string
	token             string
	allowMissingToken bool
	registry          interfaces.RegistryClient
	publisher         interfaces.Publisher
}

// VerifyOption is a functional option for the verify use case
type VerifyOption func(*verifyUseCase)

// WithRegistry enables registry-side checks (ping, whoami, duplicate version)
func WithRegistry(client interfaces.RegistryClient) VerifyOption {
	return func(uc *verifyUseCase) {
		uc.registry = client
	}
}

// WithPublisher enables the npm CLI presence check
func WithPublisher(publisher interfaces.Publisher) VerifyOption {
	return func(uc *verifyUseCase) {
		uc.publisher = publisher
	}
}

// WithToken supplies the registry token for credential checks
func WithToken(token string) VerifyOption {
	return func(uc *verifyUseCase) {
		uc.token = token
	}
}

// WithAllowMissingToken downgrades a missing token from failure to pass
func WithAllowMissingToken(allow bool) VerifyOption {
	return func(uc *verifyUseCase) {
		uc.allowMissingToken = allow
	}
}

// NewVerify creates a new instance of VerifyUseCase for the given artifact
// directory. Registry and npm checks run only when the matching option is
// supplied, so the preflight degrades gracefully for offline use.
func NewVerify(dir string, opts ...VerifyOption) interfaces.VerifyUseCase {
	uc := &verifyUseCase{
		dir: dir,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// Verify runs all preflight checks and returns their report.
func (uc *verifyUseCase) Verify(ctx context.Context) (*model.CheckReport, error) {
	logger := ctxlog.From(ctx)
	report := &model.CheckReport{}

	manifest := uc.checkArtifact(report)
	uc.checkToken(report)

	if uc.publisher != nil {
		if version, err := uc.publisher.Version(ctx); err != nil {
			report.Add("npm-cli", false, err.Error())
		} else {
			report.Add("npm-cli", true, "npm "+version)
		}
	}

	if uc.registry != nil {
		uc.checkRegistry(ctx, report, manifest)
	}

	logger.Info("Preflight checks finished",
		"dir", uc.dir,
		"checks", len(report.Checks),
		"failed", len(report.Failed()),
	)

	return report, nil
}

// checkArtifact validates the artifact directory and its manifest. Returns
// the manifest when it loaded and validated, nil otherwise.
func (uc *verifyUseCase) checkArtifact(report *model.CheckReport) *model.Manifest {
	info, err := os.Stat(uc.dir)
	switch {
	case err != nil:
		report.Add("artifact-dir", false, fmt.Sprintf("cannot access %s: %v", uc.dir, err))
		return nil
	case !info.IsDir():
		report.Add("artifact-dir", false, uc.dir+" is not a directory")
		return nil
	default:
		report.Add("artifact-dir", true, uc.dir)
	}

	manifest, err := model.LoadManifest(uc.dir)
	if err != nil {
		report.Add("manifest", false, err.Error())
		return nil
	}
	if err := manifest.Validate(); err != nil {
		report.Add("manifest", false, err.Error())
		return nil
	}
	report.Add("manifest", true, fmt.Sprintf("%s@%s", manifest.Name, manifest.Version))

	uc.checkFiles(report, manifest)
	uc.checkWasm(report, manifest)

	return manifest
}

// checkFiles verifies every file listed in the manifest files field exists.
func (uc *verifyUseCase) checkFiles(report *model.CheckReport, manifest *model.Manifest) {
	var missing []string
	for _, name := range manifest.Files {
		if _, err := os.Stat(filepath.Join(uc.dir, name)); err != nil {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		report.Add("files", false, "missing: "+strings.Join(missing, ", "))
		return
	}
	report.Add("files", true, fmt.Sprintf("%d listed files present", len(manifest.Files)))
}

// checkWasm verifies the package actually carries a non-empty wasm binary:
// the main entry when set, plus at least one *.wasm in the directory.
func (uc *verifyUseCase) checkWasm(report *model.CheckReport, manifest *model.Manifest) {
	if manifest.Main != "" {
		if _, err := os.Stat(filepath.Join(uc.dir, manifest.Main)); err != nil {
			report.Add("wasm-artifact", false, "main entry missing: "+manifest.Main)
			return
		}
	}

	matches, err := filepath.Glob(filepath.Join(uc.dir, "*.wasm"))
	if err != nil || len(matches) == 0 {
		report.Add("wasm-artifact", false, "no .wasm file in "+uc.dir)
		return
	}

	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil || info.Size() == 0 {
			report.Add("wasm-artifact", false, "empty wasm binary: "+filepath.Base(match))
			return
		}
	}

	report.Add("wasm-artifact", true, filepath.Base(matches[0]))
}

// checkToken verifies the registry credential is configured.
func (uc *verifyUseCase) checkToken(report *model.CheckReport) {
	switch {
	case uc.token != "":
		report.Add("token", true, "registry token configured")
	case uc.allowMissingToken:
		report.Add("token", true, "no token, allowed by flag")
	default:
		report.Add("token", false, "registry token is not set")
	}
}

// checkRegistry runs the registry-side checks.
func (uc *verifyUseCase) checkRegistry(ctx context.Context, report *model.CheckReport, manifest *model.Manifest) {
	if err := uc.registry.Ping(ctx); err != nil {
		report.Add("registry-ping", false, err.Error())
		return
	}
	report.Add("registry-ping", true, "registry reachable")

	if uc.token != "" {
		if user, err := uc.registry.Whoami(ctx); err != nil {
			report.Add("registry-auth", false, err.Error())
		} else {
			report.Add("registry-auth", true, "authenticated as "+user)
		}
	}

	if manifest == nil {
		return
	}

	packument, err := uc.registry.GetPackument(ctx, manifest.Name)
	switch {
	case errors.Is(err, types.ErrPackageNotFound):
		report.Add("version-free", true, "package not published yet")
	case err != nil:
		report.Add("version-free", false, err.Error())
	case packument.HasVersion(manifest.Version):
		report.Add("version-free", false,
			fmt.Sprintf("%s@%s is already published", manifest.Name, manifest.Version))
	default:
		report.Add("version-free", true, manifest.Version+" not yet in registry")
	}
}
