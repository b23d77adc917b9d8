package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/pactverify/internal/adapters/command"
	"github.com/felixgeelhaar/pactverify/internal/adapters/engine"
	"github.com/felixgeelhaar/pactverify/internal/app"
	"github.com/felixgeelhaar/pactverify/internal/ports"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify the provider against its pacts",
	Long: `Verify compiles your verification options into verifier setup calls and
runs the pact verifier. If any setup call fails, verification is not started.`,
	RunE: runVerify,
}

var (
	verifyFlags  optionFlags
	verifyBinary string
)

// errVerificationFailed is returned when the verifier ran and reported failures.
var errVerificationFailed = errors.New("verification failed")

// newVerifierEngine is replaced in tests.
var newVerifierEngine = func(binary string) ports.VerifierEngine {
	return engine.NewCLIEngine(command.NewRealRunner(), engine.WithBinary(binary))
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyFlags.bind(verifyCmd)
	verifyCmd.Flags().StringVar(&verifyBinary, "verifier-binary", engine.DefaultVerifierBinary, "pact verifier executable")
}

func runVerify(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	logger, err := newLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	verifier := app.New(newFileSystem(), app.WithLogger(logger))

	opts, err := verifier.Load(sources(), verifyFlags.options())
	if err != nil {
		return err
	}

	run, err := verifier.Verify(cmd.Context(), newVerifierEngine(verifyBinary), opts)
	if run != nil {
		renderOutcomes(out, run.Result)
	}
	if err != nil {
		return err
	}

	renderReport(out, run.Report)
	if !run.Report.Passed {
		return fmt.Errorf("%w: %d of %d examples failed",
			errVerificationFailed, run.Report.FailureCount, run.Report.ExampleCount)
	}
	return nil
}
