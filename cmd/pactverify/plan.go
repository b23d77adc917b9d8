package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/pactverify/internal/adapters/filesystem"
	"github.com/felixgeelhaar/pactverify/internal/app"
	"github.com/felixgeelhaar/pactverify/internal/ports"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show the verifier setup calls without running verification",
	Long: `Plan resolves your verification options and compiles them against a
recording engine. Nothing is sent to the provider or the broker.

This command:
1. Loads the options file and applies environment and credentials fallbacks
2. Evaluates every setup call in execution order
3. Prints each call's status and the recorded call transcript

Use --explain to list every setup call and when it applies.`,
	RunE: runPlan,
}

var (
	planFlags   optionFlags
	planExplain bool
)

// newFileSystem is replaced in tests.
var newFileSystem = func() ports.FileSystem {
	return filesystem.NewRealFileSystem()
}

func init() {
	rootCmd.AddCommand(planCmd)

	planFlags.bind(planCmd)
	planCmd.Flags().BoolVar(&planExplain, "explain", false, "explain every setup call instead of planning")
}

func runPlan(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	if planExplain {
		renderExplanations(out)
		return nil
	}

	logger, err := newLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	verifier := app.New(newFileSystem(), app.WithLogger(logger))

	opts, err := verifier.Load(sources(), planFlags.options())
	if err != nil {
		return err
	}

	plan, err := verifier.Plan(cmd.Context(), opts)
	if err != nil {
		return fmt.Errorf("plan failed: %w", err)
	}

	renderOutcomes(out, plan.Result)
	_, _ = fmt.Fprintln(out)
	renderTranscript(out, plan.Transcript)

	if !plan.Result.OK {
		return fmt.Errorf("%w: %d setup calls failed", app.ErrSetupFailed, len(plan.Result.Errors()))
	}
	return nil
}
