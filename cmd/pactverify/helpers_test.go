package main

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/spf13/cobra"
)

// testCommand returns a detached command writing stdout to the buffer.
func testCommand() (*cobra.Command, *bytes.Buffer) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	cmd.SetErr(io.Discard)
	cmd.SetContext(context.Background())
	return cmd, &buf
}

// resetGlobals restores every package-level flag after the test.
func resetGlobals(t *testing.T) {
	t.Helper()

	saved := struct {
		cfgFile, envFile, credsFile, profile, logFormat, verifyBinary string
		verbose, planExplain                                          bool
		planFlags, verifyFlags                                        optionFlags
	}{cfgFile, envFile, credsFile, profile, logFormat, verifyBinary, verbose, planExplain, planFlags, verifyFlags}
	savedFS, savedEngine, savedStarter := newFileSystem, newVerifierEngine, newProcessStarter
	savedMS := msCfg

	t.Cleanup(func() {
		cfgFile, envFile, credsFile, profile, logFormat, verifyBinary = saved.cfgFile, saved.envFile, saved.credsFile, saved.profile, saved.logFormat, saved.verifyBinary
		verbose, planExplain = saved.verbose, saved.planExplain
		planFlags, verifyFlags = saved.planFlags, saved.verifyFlags
		newFileSystem, newVerifierEngine, newProcessStarter = savedFS, savedEngine, savedStarter
		msCfg = savedMS
	})
}
