//go:build e2e

package framework

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"testing"
)

// Result captures one invocation of the binary.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Runner invokes pactverify subcommands inside an Environment.
type Runner struct {
	t   *testing.T
	env *Environment
}

// NewRunner creates a runner for env.
func NewRunner(t *testing.T, env *Environment) *Runner {
	return &Runner{t: t, env: env}
}

// Run executes the binary with args. A non-zero exit is reported in the
// result; failing to start the binary fails the test.
func (r *Runner) Run(args ...string) *Result {
	r.t.Helper()

	cmd := exec.Command(r.env.binary, args...)
	cmd.Dir = r.env.Dir()
	cmd.Env = []string{"HOME=" + r.env.Dir(), "PATH=" + os.Getenv("PATH")}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	res := &Result{}
	err := cmd.Run()
	var exitErr *exec.ExitError
	switch {
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
	case err != nil:
		r.t.Fatalf("running pactverify %v: %v", args, err)
	}
	res.Stdout, res.Stderr = stdout.String(), stderr.String()
	return res
}

// Version runs `pactverify version`.
func (r *Runner) Version() *Result {
	return r.Run("version")
}

// Explain runs `pactverify plan --explain`.
func (r *Runner) Explain() *Result {
	return r.Run("plan", "--explain")
}

// Plan runs `pactverify plan` against verify.yaml.
func (r *Runner) Plan(args ...string) *Result {
	return r.Run(append([]string{"plan", "--config", r.env.ConfigPath()}, args...)...)
}

// Verify runs `pactverify verify` against verify.yaml with the given
// verifier binary.
func (r *Runner) Verify(verifierBinary string, args ...string) *Result {
	base := []string{"verify", "--config", r.env.ConfigPath(), "--verifier-binary", verifierBinary}
	return r.Run(append(base, args...)...)
}

// MockService runs `pactverify mock-service`.
func (r *Runner) MockService(args ...string) *Result {
	return r.Run(append([]string{"mock-service"}, args...)...)
}
