package usecase_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/dogamak/wasmpub/pkg/domain/model"
	"github.com/dogamak/wasmpub/pkg/domain/types"
	"github.com/dogamak/wasmpub/pkg/usecase"
)

// MockRegistryClient is a mock implementation of RegistryClient
type MockRegistryClient struct {
	packument    *model.Packument
	packumentErr error
	pingErr      error
	whoamiUser   string
	whoamiErr    error

	getCalls int
}

func (m *MockRegistryClient) GetPackument(ctx context.Context, name string) (*model.Packument, error) {
	m.getCalls++
	if m.packumentErr != nil {
		return nil, m.packumentErr
	}
	return m.packument, nil
}

func (m *MockRegistryClient) Ping(ctx context.Context) error {
	return m.pingErr
}

func (m *MockRegistryClient) Whoami(ctx context.Context) (string, error) {
	if m.whoamiErr != nil {
		return "", m.whoamiErr
	}
	return m.whoamiUser, nil
}

// MockPublisher is a mock implementation of Publisher
type MockPublisher struct {
	version    string
	versionErr error
	publishErr error

	published []*model.PublishPlan
}

func (m *MockPublisher) Version(ctx context.Context) (string, error) {
	if m.versionErr != nil {
		return "", m.versionErr
	}
	return m.version, nil
}

func (m *MockPublisher) Publish(ctx context.Context, plan *model.PublishPlan) error {
	m.published = append(m.published, plan)
	return m.publishErr
}

// writeArtifact creates a publishable wasm-pack style output directory.
func writeArtifact(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	manifest := `{
		"name": "ttk91",
		"version": "0.1.2",
		"main": "ttk91_wasm.js",
		"files": ["ttk91_wasm_bg.wasm", "ttk91_wasm.js", "ttk91_wasm.d.ts"]
	}`
	gt.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte(manifest), 0644))
	gt.NoError(t, os.WriteFile(filepath.Join(dir, "ttk91_wasm.js"), []byte("export {}"), 0644))
	gt.NoError(t, os.WriteFile(filepath.Join(dir, "ttk91_wasm.d.ts"), []byte("export {}"), 0644))
	gt.NoError(t, os.WriteFile(filepath.Join(dir, "ttk91_wasm_bg.wasm"), []byte{0x00, 0x61, 0x73, 0x6d}, 0644))

	return dir
}

func findCheck(t *testing.T, report *model.CheckReport, name string) model.Check {
	t.Helper()
	for _, check := range report.Checks {
		if check.Name == name {
			return check
		}
	}
	t.Fatalf("check %s not in report", name)
	return model.Check{}
}

func TestVerify_AllChecksPass(t *testing.T) {
	dir := writeArtifact(t)
	registry := &MockRegistryClient{
		packument:  &model.Packument{Name: "ttk91", Versions: map[string]model.PackumentEntry{"0.1.0": {}}},
		whoamiUser: "dogamak",
	}
	publisher := &MockPublisher{version: "10.2.3"}

	uc := usecase.NewVerify(dir,
		usecase.WithToken("token"),
		usecase.WithRegistry(registry),
		usecase.WithPublisher(publisher),
	)

	report, err := uc.Verify(context.Background())
	gt.NoError(t, err)
	gt.Value(t, report.OK()).Equal(true)
	gt.Value(t, findCheck(t, report, "version-free").Passed).Equal(true)
	gt.String(t, findCheck(t, report, "registry-auth").Detail).Contains("dogamak")
}

func TestVerify_MissingArtifactDir(t *testing.T) {
	uc := usecase.NewVerify(filepath.Join(t.TempDir(), "missing"), usecase.WithToken("token"))

	report, err := uc.Verify(context.Background())
	gt.NoError(t, err)
	gt.Value(t, report.OK()).Equal(false)
	gt.Value(t, findCheck(t, report, "artifact-dir").Passed).Equal(false)
}

func TestVerify_BadManifest(t *testing.T) {
	dir := t.TempDir()
	gt.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte(`{"name": "TTK91", "version": "1.0.0"}`), 0644))

	uc := usecase.NewVerify(dir, usecase.WithToken("token"))
	report, err := uc.Verify(context.Background())
	gt.NoError(t, err)
	gt.Value(t, findCheck(t, report, "manifest").Passed).Equal(false)
}

func TestVerify_MissingListedFile(t *testing.T) {
	dir := writeArtifact(t)
	gt.NoError(t, os.Remove(filepath.Join(dir, "ttk91_wasm.d.ts")))

	uc := usecase.NewVerify(dir, usecase.WithToken("token"))
	report, err := uc.Verify(context.Background())
	gt.NoError(t, err)

	check := findCheck(t, report, "files")
	gt.Value(t, check.Passed).Equal(false)
	gt.String(t, check.Detail).Contains("ttk91_wasm.d.ts")
}

func TestVerify_EmptyWasmBinary(t *testing.T) {
	dir := writeArtifact(t)
	gt.NoError(t, os.WriteFile(filepath.Join(dir, "ttk91_wasm_bg.wasm"), nil, 0644))

	uc := usecase.NewVerify(dir, usecase.WithToken("token"))
	report, err := uc.Verify(context.Background())
	gt.NoError(t, err)
	gt.Value(t, findCheck(t, report, "wasm-artifact").Passed).Equal(false)
}

func TestVerify_MissingToken(t *testing.T) {
	dir := writeArtifact(t)

	uc := usecase.NewVerify(dir)
	report, err := uc.Verify(context.Background())
	gt.NoError(t, err)
	gt.Value(t, findCheck(t, report, "token").Passed).Equal(false)

	uc = usecase.NewVerify(dir, usecase.WithAllowMissingToken(true))
	report, err = uc.Verify(context.Background())
	gt.NoError(t, err)
	gt.Value(t, findCheck(t, report, "token").Passed).Equal(true)
}

func TestVerify_VersionAlreadyPublished(t *testing.T) {
	dir := writeArtifact(t)
	registry := &MockRegistryClient{
		packument:  &model.Packument{Name: "ttk91", Versions: map[string]model.PackumentEntry{"0.1.2": {}}},
		whoamiUser: "dogamak",
	}

	uc := usecase.NewVerify(dir, usecase.WithToken("token"), usecase.WithRegistry(registry))
	report, err := uc.Verify(context.Background())
	gt.NoError(t, err)

	check := findCheck(t, report, "version-free")
	gt.Value(t, check.Passed).Equal(false)
	gt.String(t, check.Detail).Contains("already published")
}

func TestVerify_PackageNeverPublished(t *testing.T) {
	dir := writeArtifact(t)
	registry := &MockRegistryClient{
		packumentErr: types.ErrPackageNotFound,
		whoamiUser:   "dogamak",
	}

	uc := usecase.NewVerify(dir, usecase.WithToken("token"), usecase.WithRegistry(registry))
	report, err := uc.Verify(context.Background())
	gt.NoError(t, err)
	gt.Value(t, findCheck(t, report, "version-free").Passed).Equal(true)
}

func TestVerify_RegistryUnreachable(t *testing.T) {
	dir := writeArtifact(t)
	registry := &MockRegistryClient{
		pingErr: types.ErrPackageNotFound, // any error will do
	}

	uc := usecase.NewVerify(dir, usecase.WithToken("token"), usecase.WithRegistry(registry))
	report, err := uc.Verify(context.Background())
	gt.NoError(t, err)
	gt.Value(t, findCheck(t, report, "registry-ping").Passed).Equal(false)
	// Dependent registry checks are skipped when the registry is unreachable.
	gt.Number(t, registry.getCalls).Equal(0)
}

func TestVerify_NpmMissing(t *testing.T) {
	dir := writeArtifact(t)
	publisher := &MockPublisher{versionErr: types.ErrPackageNotFound} // any error will do

	uc := usecase.NewVerify(dir, usecase.WithToken("token"), usecase.WithPublisher(publisher))
	report, err := uc.Verify(context.Background())
	gt.NoError(t, err)
	gt.Value(t, findCheck(t, report, "npm-cli").Passed).Equal(false)
}
