//go:build e2e

// Package framework builds the pactverify binary once and runs it inside
// per-test working directories.
package framework

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	buildOnce sync.Once
	builtPath string
	buildErr  error
)

// moduleRoot walks up from the working directory to the directory holding go.mod.
func moduleRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found above %s", dir)
		}
		dir = parent
	}
}

func buildPactverify() (string, error) {
	buildOnce.Do(func() {
		root, err := moduleRoot()
		if err != nil {
			buildErr = err
			return
		}

		builtPath = filepath.Join(os.TempDir(), "pactverify-e2e")
		cmd := exec.Command("go", "build", "-o", builtPath, "./cmd/pactverify")
		cmd.Dir = root
		var stderr bytes.Buffer
		cmd.Stderr = &stderr
		if err := cmd.Run(); err != nil {
			buildErr = fmt.Errorf("go build: %w: %s", err, stderr.String())
		}
	})
	return builtPath, buildErr
}

// Environment is a scratch working directory for one scenario. Relative pact
// paths in verify.yaml resolve against it.
type Environment struct {
	t      *testing.T
	dir    string
	binary string
}

// NewEnvironment builds the binary if needed and creates a working directory.
func NewEnvironment(t *testing.T) *Environment {
	t.Helper()

	binary, err := buildPactverify()
	require.NoError(t, err)

	return &Environment{t: t, dir: t.TempDir(), binary: binary}
}

// Dir is the working directory commands run in.
func (e *Environment) Dir() string {
	return e.dir
}

// ConfigPath is the options file written by WriteConfig.
func (e *Environment) ConfigPath() string {
	return filepath.Join(e.dir, "verify.yaml")
}

// WriteConfig writes verify.yaml.
func (e *Environment) WriteConfig(content string) {
	e.t.Helper()
	require.NoError(e.t, os.WriteFile(e.ConfigPath(), []byte(content), 0o644))
}

// WritePact writes pacts/<name> and returns its path relative to Dir.
func (e *Environment) WritePact(name, content string) string {
	e.t.Helper()

	rel := filepath.Join("pacts", name)
	require.NoError(e.t, os.MkdirAll(filepath.Join(e.dir, "pacts"), 0o755))
	require.NoError(e.t, os.WriteFile(filepath.Join(e.dir, rel), []byte(content), 0o644))
	return rel
}
