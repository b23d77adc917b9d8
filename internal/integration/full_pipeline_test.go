//go:build integration

package integration

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/pactverify/internal/adapters/engine"
	"github.com/felixgeelhaar/pactverify/internal/adapters/filesystem"
	"github.com/felixgeelhaar/pactverify/internal/app"
	"github.com/felixgeelhaar/pactverify/internal/domain/compiler"
	"github.com/felixgeelhaar/pactverify/internal/domain/config"
	"github.com/felixgeelhaar/pactverify/internal/ports"
	"github.com/felixgeelhaar/pactverify/internal/testutil"
	"github.com/felixgeelhaar/pactverify/internal/testutil/mocks"
)

const passingReport = `{
  "version": "1",
  "examples": [],
  "summary": {"duration": 0.25, "example_count": 3, "failure_count": 0, "pending_count": 1},
  "summary_line": "3 examples, 0 failures, 1 pending"
}`

// TestFullPipeline_LoadPlanVerify drives the real filesystem, the options
// loader, the compiler and the CLI engine against a stubbed verifier binary.
func TestFullPipeline_LoadPlanVerify(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	pactsDir := testutil.WriteTempDir(t, dir, "pacts")
	pactFile := testutil.WriteTempFile(t, dir, "web-orders.json", "{}")
	credsPath := testutil.WriteFixtureToDir(t, dir, "credentials.ini", "credentials")

	cfgPath := testutil.WriteTempFile(t, dir, "verify.yaml", testutil.NewOptionsBuilder("orders").
		WithBaseURL("http://localhost:8080/api").
		WithPactURLs(pactsDir, pactFile, "https://broker.example.com/pacts/latest").
		WithStateSetup("http://localhost:8080/_states").
		WithHeaders("X-Trace:on").
		ToYAML())

	verifier := app.New(filesystem.NewRealFileSystem())
	opts, err := verifier.Load(app.Sources{
		ConfigPath:      cfgPath,
		CredentialsPath: credsPath,
	}, config.VerificationOptions{})
	require.NoError(t, err)

	plan, err := verifier.Plan(context.Background(), opts)
	require.NoError(t, err)
	require.True(t, plan.Result.OK, plan.Result.Messages)

	dirOutcome, ok := plan.Result.Outcome(compiler.DirectorySource)
	require.True(t, ok)
	assert.Equal(t, 3, dirOutcome.Calls)
	assert.Contains(t, plan.Transcript, `add_directory_source path="`+pactsDir+`"`)
	assert.Contains(t, plan.Transcript, `add_file_source path="`+pactFile+`"`)
	assert.Contains(t, plan.Transcript, `url_source url="https://broker.example.com/pacts/latest" username="ci" password="****"`)

	runner := mocks.NewCommandRunner()
	runner.SetDefault(ports.CommandResult{Stdout: passingReport})
	cli := engine.NewCLIEngine(runner)

	run, err := verifier.Verify(context.Background(), cli, opts)
	require.NoError(t, err)
	assert.True(t, run.Report.Passed)
	assert.Equal(t, 3, run.Report.ExampleCount)
	assert.Equal(t, 1, run.Report.PendingCount)

	calls := runner.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, engine.DefaultVerifierBinary, calls[0].Command)
	args := strings.Join(calls[0].Args, " ")
	assert.Contains(t, args, "--provider-name orders")
	assert.Contains(t, args, "--dir "+pactsDir)
	assert.Contains(t, args, "--file "+pactFile)
	assert.Contains(t, args, "--state-change-url http://localhost:8080/_states")
	assert.Contains(t, args, "--header X-Trace=on")
	assert.True(t, strings.HasSuffix(args, "--json-output"))
}

func TestFullPipeline_MissingSourceBlocksVerification(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	missing := filepath.Join(dir, "nope")
	cfgPath := testutil.WriteTempFile(t, dir, "verify.yaml",
		testutil.NewOptionsBuilder("orders").WithBaseURL("http://localhost:8080").WithPactURLs(missing).ToYAML())

	verifier := app.New(filesystem.NewRealFileSystem())
	opts, err := verifier.Load(app.Sources{ConfigPath: cfgPath}, config.VerificationOptions{})
	require.NoError(t, err)

	runner := mocks.NewCommandRunner()
	_, err = verifier.Verify(context.Background(), engine.NewCLIEngine(runner), opts)

	require.ErrorIs(t, err, app.ErrSetupFailed)
	assert.Contains(t, err.Error(), "Pact file or directory '"+missing+"' doesn't exist")
	assert.Empty(t, runner.Calls())
}
