package npm

import (
	"bufio"
	"context"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/dogamak/wasmpub/pkg/domain/interfaces"
	"github.com/dogamak/wasmpub/pkg/domain/model"
	"github.com/dogamak/wasmpub/pkg/domain/types"
)

// stderrTailLines is how many trailing stderr lines are attached to a
// publish failure.
const stderrTailLines = 20

type runner struct {
	bin string
}

// Option is a functional option for runner configuration
type Option func(*runner)

// WithBinary overrides the npm executable path. Used by tests.
func WithBinary(bin string) Option {
	return func(r *runner) {
		r.bin = bin
	}
}

// NewRunner creates a Publisher backed by the npm CLI on PATH.
func NewRunner(opts ...Option) interfaces.Publisher {
	r := &runner{
		bin: "npm",
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Version returns the npm CLI version.
func (r *runner) Version(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, r.bin, "--version").Output()
	if err != nil {
		return "", goerr.Wrap(err, "npm is not available",
			goerr.V("bin", r.bin),
			goerr.T(types.ErrTagNpm),
		)
	}

	return strings.TrimSpace(string(out)), nil
}

// Publish runs `npm publish` inside the plan's artifact directory. The npm
// output is streamed into the logger line by line; on failure the trailing
// stderr lines are attached to the returned error.
func (r *runner) Publish(ctx context.Context, plan *model.PublishPlan) error {
	logger := ctxlog.From(ctx)

	args := []string{
		"publish",
		"--registry", plan.RegistryURL,
		"--tag", plan.DistTag,
		"--access", plan.Access,
	}
	if plan.DryRun {
		args = append(args, "--dry-run")
	}

	cmd := exec.CommandContext(ctx, r.bin, args...)
	cmd.Dir = plan.ArtifactDir
	cmd.Env = os.Environ()

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return goerr.Wrap(err, "failed to open npm stdout", goerr.T(types.ErrTagNpm))
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return goerr.Wrap(err, "failed to open npm stderr", goerr.T(types.ErrTagNpm))
	}

	logger.Info("Invoking npm publish",
		"bin", r.bin,
		"args", strings.Join(args, " "),
		"dir", plan.ArtifactDir,
	)

	if err := cmd.Start(); err != nil {
		return goerr.Wrap(err, "failed to start npm",
			goerr.V("bin", r.bin),
			goerr.T(types.ErrTagNpm),
		)
	}

	var wg sync.WaitGroup
	var tail []string

	wg.Add(2)
	go func() {
		defer wg.Done()
		streamLines(stdout, func(line string) {
			logger.Info("npm: " + line)
		})
	}()
	go func() {
		defer wg.Done()
		streamLines(stderr, func(line string) {
			logger.Warn("npm: " + line)
			tail = append(tail, line)
			if len(tail) > stderrTailLines {
				tail = tail[1:]
			}
		})
	}()

	wg.Wait()

	if err := cmd.Wait(); err != nil {
		return goerr.Wrap(err, "npm publish failed",
			goerr.V("package", plan.PackageName),
			goerr.V("version", plan.Version),
			goerr.V("stderr", strings.Join(tail, "\n")),
			goerr.T(types.ErrTagNpm),
		)
	}

	return nil
}

// streamLines feeds each line of r to fn until EOF.
func streamLines(r io.Reader, fn func(string)) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line != "" {
			fn(line)
		}
	}
}
