package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/pactverify/internal/adapters/logging"
	"github.com/felixgeelhaar/pactverify/internal/domain/compiler"
	"github.com/felixgeelhaar/pactverify/internal/domain/config"
	"github.com/felixgeelhaar/pactverify/internal/ports"
)

var (
	// Global flags
	cfgFile   string
	envFile   string
	credsFile string
	profile   string
	verbose   bool
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "pactverify",
	Short: "Compile pact verification options into verifier setup calls",
	Long: `pactverify turns provider verification options into the ordered
setup calls the native pact verifier expects, then runs verification.

Options are resolved in precedence order:
  flags/config file → environment (.env) → credentials profile`,
	SilenceErrors: true, // We handle error formatting ourselves
	SilenceUsage:  true, // Don't show usage on error
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "verification options file (yaml, yml, json or toml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file layered under the process environment")
	rootCmd.PersistentFlags().StringVar(&credsFile, "credentials", "", "INI file with broker credentials profiles")
	rootCmd.PersistentFlags().StringVar(&profile, "profile", config.DefaultProfile, "credentials profile")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", logging.FormatText, "log format (text, json, pretty)")

	registerFlagCompletions()

	rootCmd.AddCommand(versionCmd)
}

// newLogger builds the logger selected by --log-format. Verbose output
// lowers the level to debug.
func newLogger(w io.Writer) (ports.Logger, error) {
	level := ports.LevelInfo
	if verbose {
		level = ports.LevelDebug
	}
	return logging.New(logFormat, level, w)
}

// formatError returns a user-friendly error message.
// With verbose=false: shows only the user message and suggestion.
// With verbose=true: also shows the underlying technical error.
func formatError(err error) string {
	var userErr *config.UserError
	if errors.As(err, &userErr) {
		msg := userErr.Message
		if userErr.Context != "" {
			msg += fmt.Sprintf(" (at %s)", userErr.Context)
		}
		if userErr.Suggestion != "" {
			msg += fmt.Sprintf("\n\nSuggestion: %s", userErr.Suggestion)
		}
		if verbose && userErr.Underlying != nil {
			msg += fmt.Sprintf("\n\nTechnical details: %v", userErr.Underlying)
		}
		return msg
	}

	var descErr *compiler.DescriptorError
	if errors.As(err, &descErr) {
		if verbose {
			return descErr.Format()
		}
		msg := descErr.Error()
		if descErr.Suggestion != "" {
			msg += fmt.Sprintf("\n\nSuggestion: %s", descErr.Suggestion)
		}
		return msg
	}

	return err.Error()
}

// printError prints an error message to stderr with proper formatting.
func printError(err error) {
	printErrorTo(os.Stderr, err)
}

// printErrorTo prints an error message to the given writer.
func printErrorTo(w io.Writer, err error) {
	_, _ = fmt.Fprintf(w, "Error: %s\n", formatError(err))
}

// registerFlagCompletions sets up custom completions for global flags.
func registerFlagCompletions() {
	_ = rootCmd.RegisterFlagCompletionFunc("config", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"yaml", "yml", "json", "toml"}, cobra.ShellCompDirectiveFilterFileExt
	})

	_ = rootCmd.RegisterFlagCompletionFunc("log-format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{
			"text\tPlain key=value lines",
			"json\tOne JSON object per line",
			"pretty\tColoured console output",
		}, cobra.ShellCompDirectiveNoFileComp
	})
}
