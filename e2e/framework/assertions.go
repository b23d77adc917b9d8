//go:build e2e

package framework

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// AssertSuccess checks for exit code 0.
func AssertSuccess(t *testing.T, r *Result) {
	t.Helper()
	assert.Zero(t, r.ExitCode, "stdout:\n%s\nstderr:\n%s", r.Stdout, r.Stderr)
}

// AssertFailed checks for a non-zero exit code.
func AssertFailed(t *testing.T, r *Result) {
	t.Helper()
	assert.NotZero(t, r.ExitCode, "stdout:\n%s", r.Stdout)
}

// AssertExitCode checks for a specific exit code.
func AssertExitCode(t *testing.T, r *Result, want int) {
	t.Helper()
	assert.Equal(t, want, r.ExitCode, "stdout:\n%s\nstderr:\n%s", r.Stdout, r.Stderr)
}

// AssertStdoutContains checks stdout for every fragment.
func AssertStdoutContains(t *testing.T, r *Result, fragments ...string) {
	t.Helper()
	for _, f := range fragments {
		assert.Contains(t, r.Stdout, f)
	}
}

// AssertStderrContains checks stderr for a fragment.
func AssertStderrContains(t *testing.T, r *Result, fragment string) {
	t.Helper()
	assert.Contains(t, r.Stderr, fragment)
}
