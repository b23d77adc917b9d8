// Package command provides command execution adapters.
package command

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"

	"github.com/felixgeelhaar/pactverify/internal/ports"
)

// RealRunner executes external commands.
type RealRunner struct{}

// NewRealRunner creates a new RealRunner.
func NewRealRunner() *RealRunner {
	return &RealRunner{}
}

// Run executes the call and captures its output. A non-zero exit code is
// reported through the result, not as an error.
func (r *RealRunner) Run(ctx context.Context, call ports.CommandCall) (ports.CommandResult, error) {
	cmd := exec.CommandContext(ctx, call.Command, call.Args...)
	if len(call.Env) > 0 {
		cmd.Env = append(os.Environ(), call.Env...)
	}

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	result := ports.CommandResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return result, err
	}

	return result, nil
}

var _ ports.CommandRunner = (*RealRunner)(nil)
