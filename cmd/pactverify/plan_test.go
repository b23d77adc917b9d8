package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/pactverify/internal/app"
	"github.com/felixgeelhaar/pactverify/internal/domain/compiler"
	"github.com/felixgeelhaar/pactverify/internal/ports"
	"github.com/felixgeelhaar/pactverify/internal/testutil"
	"github.com/felixgeelhaar/pactverify/internal/testutil/mocks"
)

func TestPlanCmd_Flags(t *testing.T) {
	for _, name := range []string{"explain", "provider", "provider-base-url", "pact-url", "header", "publish"} {
		assert.NotNil(t, planCmd.Flags().Lookup(name), name)
	}
}

func TestRunPlan_Explain(t *testing.T) {
	resetGlobals(t)
	planExplain = true

	cmd, buf := testCommand()
	require.NoError(t, runPlan(cmd, nil))

	out := buf.String()
	for i, name := range compiler.ExecutionOrder() {
		assert.Contains(t, out, name.String(), "entry %d", i+1)
	}
	assert.Contains(t, out, "applies if: always")
}

func TestRunPlan_FromConfigFile(t *testing.T) {
	resetGlobals(t)

	dir := t.TempDir()
	pacts := filepath.Join(dir, "pacts")
	fs := mocks.NewFileSystem()
	fs.AddDir(pacts)
	newFileSystem = func() ports.FileSystem { return fs }

	cfgFile = testutil.WriteTempFile(t, dir, "verify.yaml", `
provider: orders
providerBaseUrl: http://localhost:8080
pactUrls:
  - `+pacts+`
`)
	planFlags = optionFlags{filterState: "an order exists"}

	cmd, buf := testCommand()
	require.NoError(t, runPlan(cmd, nil))

	out := buf.String()
	assert.Contains(t, out, "Verifier setup")
	assert.Contains(t, out, "Success")
	assert.Contains(t, out, "Ignore")
	assert.Contains(t, out, "3 succeeded, 0 failed, 6 ignored")
	assert.Contains(t, out, `set_provider_info name="orders" scheme="http" host="localhost" port=8080`)
	assert.Contains(t, out, `set_filter_info description="" state="an order exists" no_state=false`)
	assert.Contains(t, out, `add_directory_source path="`+pacts+`"`)
}

func TestRunPlan_FailedSetup(t *testing.T) {
	resetGlobals(t)
	newFileSystem = func() ports.FileSystem { return mocks.NewFileSystem() }
	planFlags = optionFlags{provider: "orders", providerBaseURL: "http://localhost:8080", headers: []string{"BadHeader"}}

	cmd, buf := testCommand()
	err := runPlan(cmd, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, app.ErrSetupFailed)
	assert.Contains(t, buf.String(), "Fail")
	assert.Contains(t, buf.String(), "BadHeader")
}

func TestRunPlan_MissingProviderURL(t *testing.T) {
	resetGlobals(t)
	newFileSystem = func() ports.FileSystem { return mocks.NewFileSystem() }
	planFlags = optionFlags{provider: "orders"}

	cmd, _ := testCommand()
	err := runPlan(cmd, nil)

	require.Error(t, err)
	assert.True(t, compiler.IsProviderURLInvalid(err))
	assert.Contains(t, formatError(err), "Use an absolute URL")
}

func TestRunPlan_MissingConfig(t *testing.T) {
	resetGlobals(t)
	cfgFile = filepath.Join(t.TempDir(), "missing.yaml")

	cmd, _ := testCommand()
	err := runPlan(cmd, nil)
	require.Error(t, err)
	assert.Contains(t, formatError(err), "missing.yaml")
}

func TestStatusLabel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Success", statusLabel(compiler.StatusSuccess))
	assert.Equal(t, "Fail", statusLabel(compiler.StatusFail))
	assert.Equal(t, "Ignore", statusLabel(compiler.StatusIgnore))
}
