// Package compose deploys compose stacks by shelling out to the docker CLI.
package compose

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// runFunc executes a command and returns its output and exit code. A code
// of -1 with a non-nil error means the command never ran.
type runFunc func(ctx context.Context, name string, args ...string) (stdout, stderr string, code int, err error)

// Executor materializes compose documents to disk and drives
// `docker compose` against them.
type Executor struct {
	dir    string
	run    runFunc
	logger *slog.Logger
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithDir sets the directory compose files are written to.
func WithDir(dir string) ExecutorOption {
	return func(e *Executor) {
		e.dir = dir
	}
}

// WithLogger sets the executor's logger.
func WithLogger(logger *slog.Logger) ExecutorOption {
	return func(e *Executor) {
		e.logger = logger
	}
}

// NewExecutor creates an executor writing compose files under the system
// temp directory.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{
		dir:    os.TempDir(),
		run:    runCommand,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Deploy validates the document, writes it to a file unique to this
// invocation, tears down any previous stack under the project name, and
// brings the stack up detached. The file is removed on every return path.
// The returned string is the engine's service listing.
func (e *Executor) Deploy(ctx context.Context, project, composeYAML string) (string, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(composeYAML), &doc); err != nil {
		return "", fmt.Errorf("invalid YAML format: %w", err)
	}

	dockerBin, err := exec.LookPath("docker")
	if err != nil {
		return "", errors.New("docker executable not found")
	}

	path := filepath.Join(e.dir, fmt.Sprintf("%s-%s-compose.yml", project, uuid.New().String()[:8]))
	if err := os.WriteFile(path, []byte(composeYAML), 0o600); err != nil {
		return "", fmt.Errorf("write compose file: %w", err)
	}
	defer func() {
		if err := os.Remove(path); err != nil {
			e.logger.Warn("compose: temp file cleanup failed", "path", path, "error", err)
		}
	}()

	// A failed teardown is expected when the project has never been
	// deployed.
	if _, stderr, code, err := e.compose(ctx, dockerBin, path, project, "down", "--volumes"); err != nil || code != 0 {
		e.logger.Warn("compose: down before deploy failed",
			"project", project, "code", code, "stderr", strings.TrimSpace(stderr), "error", err)
	}

	_, stderr, code, err := e.compose(ctx, dockerBin, path, project, "up", "-d")
	if err != nil {
		return "", fmt.Errorf("deploy failed with code %d: %s", code, err)
	}
	if code != 0 {
		return "", fmt.Errorf("deploy failed with code %d: %s", code, strings.TrimSpace(stderr))
	}

	services, stderr, code, err := e.compose(ctx, dockerBin, path, project, "ps")
	if err != nil || code != 0 {
		e.logger.Warn("compose: service listing failed",
			"project", project, "code", code, "stderr", strings.TrimSpace(stderr), "error", err)
		return "Unable to list services", nil
	}

	return strings.TrimSpace(services), nil
}

// compose runs one docker compose subcommand against the materialized file.
func (e *Executor) compose(ctx context.Context, dockerBin, file, project string, args ...string) (string, string, int, error) {
	argv := append([]string{"compose", "-f", file, "-p", project}, args...)
	return e.run(ctx, dockerBin, argv...)
}

func runCommand(ctx context.Context, name string, args ...string) (string, string, int, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return stdout.String(), stderr.String(), exitErr.ExitCode(), nil
		}
		return stdout.String(), stderr.String(), -1, err
	}

	return stdout.String(), stderr.String(), 0, nil
}
