package chart_renderer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/Asterixfoods/asterix-charts/chart_renderer/contracts"
)

// Locations probed when the generator is not on PATH. Homebrew on Apple
// silicon keeps /opt/homebrew/bin off the PATH of GUI-launched processes.
var defaultSearchPaths = []string{
	"/opt/homebrew/bin",
	"/usr/local/bin",
}

// ExecChartRenderer runs the external chart generator as a subprocess with
// an explicit working directory.
type ExecChartRenderer struct {
	command     string
	args        []string
	extraEnv    []string
	timeout     time.Duration
	searchPaths []string
}

// NewExecChartRenderer creates a renderer for the given generator command.
// extraEnv entries (KEY=VALUE) are appended to the inherited environment;
// timeout 0 means the generator may run as long as it needs.
func NewExecChartRenderer(command string, args []string, extraEnv []string, timeout time.Duration) contracts.IChartRenderer {
	return &ExecChartRenderer{
		command:     command,
		args:        args,
		extraEnv:    extraEnv,
		timeout:     timeout,
		searchPaths: defaultSearchPaths,
	}
}

// Command returns the configured generator command.
func (r *ExecChartRenderer) Command() string {
	return r.command
}

// Resolve locates the generator binary: PATH first, then the common install
// locations. The returned error carries an actionable hint.
func (r *ExecChartRenderer) Resolve() (string, error) {
	if path, err := exec.LookPath(r.command); err == nil {
		return path, nil
	}

	for _, dir := range r.searchPaths {
		candidate := filepath.Join(dir, r.command)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%s not found on PATH; install the Asterix chart generator or set generator.command in asterix-config.yaml", r.command)
}

// Render launches the generator with workDir as its working directory. The
// generator finds the staged summary_data.csv there and writes its chart
// folder next to it; stdout and stderr stream through unchanged.
func (r *ExecChartRenderer) Render(ctx context.Context, workDir string) error {
	bin, err := r.Resolve()
	if err != nil {
		return err
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, bin, r.args...)
	cmd.Dir = workDir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin
	cmd.Env = append(os.Environ(), r.extraEnv...)

	if err := cmd.Run(); err != nil {
		if r.timeout > 0 && ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("%s timed out after %s", r.command, r.timeout)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("%s exited with code %d", r.command, exitErr.ExitCode())
		}
		return fmt.Errorf("running %s: %w", r.command, err)
	}
	return nil
}
