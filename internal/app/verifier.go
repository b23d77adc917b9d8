// Package app provides the main application logic for pactverify.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/pactverify/internal/adapters/engine"
	"github.com/felixgeelhaar/pactverify/internal/adapters/logging"
	"github.com/felixgeelhaar/pactverify/internal/domain/compiler"
	"github.com/felixgeelhaar/pactverify/internal/domain/config"
	"github.com/felixgeelhaar/pactverify/internal/ports"
)

// ErrSetupFailed is returned by Verify when at least one descriptor failed.
// The verification run is not started in that case.
var ErrSetupFailed = errors.New("verifier setup failed")

// Sources names where verification options are read from. Empty paths are
// skipped.
type Sources struct {
	ConfigPath      string
	EnvFile         string
	CredentialsPath string
	Profile         string
}

// Plan is the outcome of compiling options against the recording engine.
type Plan struct {
	Result     compiler.Result
	Calls      []engine.Call
	Transcript string
}

// Run is the outcome of a verification attempt.
type Run struct {
	Result   compiler.Result
	Report   ports.VerificationReport
	Executed bool
	Duration time.Duration
}

// Verifier is the main application orchestrator.
type Verifier struct {
	compiler *compiler.Compiler
	loader   *config.Loader
	logger   ports.Logger
	now      func() time.Time
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithLogger sets the logger passed to the compiler and used for run events.
// Without one, run events go to the context logger.
func WithLogger(logger ports.Logger) Option {
	return func(v *Verifier) { v.logger = logger }
}

// WithClock overrides time.Now for run durations.
func WithClock(now func() time.Time) Option {
	return func(v *Verifier) { v.now = now }
}

// New creates a new Verifier probing pact sources through fs.
func New(fs ports.FileSystem, opts ...Option) *Verifier {
	v := &Verifier{
		loader: config.NewLoader(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}

	var compilerOpts []compiler.Option
	if v.logger != nil {
		compilerOpts = append(compilerOpts, compiler.WithLogger(v.logger))
	}
	v.compiler = compiler.New(fs, compilerOpts...)

	return v
}

// Load reads the options file named by src, or starts from overrides when
// there is none, and resolves them against the dotenv layer and the
// credentials profile. Non-zero override fields replace file values.
func (v *Verifier) Load(src Sources, overrides config.VerificationOptions) (*config.Resolved, error) {
	var opts config.VerificationOptions
	if src.ConfigPath != "" {
		loaded, err := v.loader.Load(src.ConfigPath)
		if err != nil {
			return nil, err
		}
		opts = loaded
	}
	opts = overlay(opts, overrides)

	env, err := config.NewEnvironment(src.EnvFile)
	if err != nil {
		return nil, err
	}

	creds, err := config.LoadCredentials(src.CredentialsPath, src.Profile)
	if err != nil {
		return nil, err
	}

	return config.Resolve(opts, env, creds), nil
}

// Plan compiles opts against an in-process recorder and returns the
// outcomes and the call transcript. A failed descriptor is reported in the
// result, not as an error.
func (v *Verifier) Plan(ctx context.Context, opts *config.Resolved) (*Plan, error) {
	if opts == nil {
		return nil, compiler.ErrNilOptions
	}

	rec := engine.NewRecorder()
	h, err := rec.NewSession(ctx, opts.Provider, opts.ProviderVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to open session: %w", err)
	}
	defer rec.Shutdown(h)

	result, err := v.compiler.Compile(ctx, rec, h, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to compile: %w", err)
	}

	return &Plan{
		Result:     result,
		Calls:      rec.Calls(h),
		Transcript: rec.Transcript(h),
	}, nil
}

// Verify opens a session on eng, compiles opts into it and, when every
// descriptor succeeded or was ignored, runs verification. The session is
// always shut down.
func (v *Verifier) Verify(ctx context.Context, eng ports.VerifierEngine, opts *config.Resolved) (*Run, error) {
	if opts == nil {
		return nil, compiler.ErrNilOptions
	}

	start := v.now()
	h, err := eng.NewSession(ctx, opts.Provider, opts.ProviderVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to open session: %w", err)
	}
	defer eng.Shutdown(h)

	result, err := v.compiler.Compile(ctx, eng, h, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to compile: %w", err)
	}

	run := &Run{Result: result}
	if !result.OK {
		run.Duration = v.now().Sub(start)
		return run, fmt.Errorf("%w: %s", ErrSetupFailed, strings.Join(result.Messages, "; "))
	}

	v.info(ctx, "running verification", ports.F("provider", opts.Provider), ports.F("session", h.ID()))

	report, err := eng.Execute(ctx, h)
	run.Duration = v.now().Sub(start)
	if err != nil {
		return run, fmt.Errorf("failed to run verification: %w", err)
	}
	run.Report = report
	run.Executed = true

	v.info(ctx, "verification finished",
		ports.F("passed", report.Passed),
		ports.F("examples", report.ExampleCount),
		ports.F("failures", report.FailureCount),
	)

	return run, nil
}

func (v *Verifier) info(ctx context.Context, msg string, fields ...ports.Field) {
	logger := v.logger
	if logger == nil {
		logger = logging.FromContext(ctx)
	}
	logger.Info(ctx, msg, fields...)
}

// overlay copies every non-zero field of o onto base.
func overlay(base, o config.VerificationOptions) config.VerificationOptions {
	setString := func(dst *string, src string) {
		if src != "" {
			*dst = src
		}
	}
	setStrings := func(dst *[]string, src []string) {
		if len(src) > 0 {
			*dst = src
		}
	}

	setString(&base.Provider, o.Provider)
	setString(&base.ProviderBaseURL, o.ProviderBaseURL)
	setStrings(&base.PactURLs, o.PactURLs)
	setString(&base.PactBrokerURL, o.PactBrokerURL)
	setString(&base.PactBrokerUsername, o.PactBrokerUsername)
	setString(&base.PactBrokerPassword, o.PactBrokerPassword)
	setString(&base.PactBrokerToken, o.PactBrokerToken)
	setString(&base.ProviderStatesSetupURL, o.ProviderStatesSetupURL)
	setString(&base.FilterDescription, o.FilterDescription)
	setString(&base.FilterState, o.FilterState)
	base.FilterNoState = base.FilterNoState || o.FilterNoState
	base.DisableSSLVerification = base.DisableSSLVerification || o.DisableSSLVerification
	if o.TimeoutMillis > 0 {
		base.TimeoutMillis = o.TimeoutMillis
	}
	base.PublishVerificationResult = base.PublishVerificationResult || o.PublishVerificationResult
	setString(&base.ProviderVersion, o.ProviderVersion)
	setString(&base.BuildURL, o.BuildURL)
	setStrings(&base.ProviderVersionTags, o.ProviderVersionTags)
	setString(&base.ProviderVersionBranch, o.ProviderVersionBranch)
	setString(&base.ProviderBranch, o.ProviderBranch)
	setStrings(&base.ConsumerFilters, o.ConsumerFilters)
	if o.CustomProviderHeaders.Len() > 0 {
		base.CustomProviderHeaders = o.CustomProviderHeaders
	}
	if len(o.ConsumerVersionSelectors) > 0 {
		base.ConsumerVersionSelectors = o.ConsumerVersionSelectors
	}
	setStrings(&base.ConsumerVersionTags, o.ConsumerVersionTags)
	base.EnablePending = base.EnablePending || o.EnablePending
	setString(&base.IncludeWIPPactsSince, o.IncludeWIPPactsSince)

	return base
}
