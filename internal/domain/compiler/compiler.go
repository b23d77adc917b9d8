// Package compiler turns resolved verification options into the ordered
// sequence of native setup calls that precede a verification run.
// It provides the pipeline: Options → Descriptor table → Engine calls → Result.
package compiler

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/pactverify/internal/domain/config"
	"github.com/felixgeelhaar/pactverify/internal/ports"
)

// ErrNilOptions is returned when Compile is called without options.
var ErrNilOptions = errors.New("compile requires resolved options")

// Compiler runs the descriptor table against one engine session. It holds no
// state between passes.
type Compiler struct {
	fs          ports.FileSystem
	logger      ports.Logger
	descriptors []Descriptor
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithLogger sets the logger used for per-descriptor debug output.
func WithLogger(logger ports.Logger) Option {
	return func(c *Compiler) {
		c.logger = logger
	}
}

// New creates a Compiler that inspects pact sources through fs.
func New(fs ports.FileSystem, opts ...Option) *Compiler {
	c := &Compiler{
		fs:          fs,
		descriptors: Descriptors(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile evaluates every descriptor exactly once, in execution order,
// against the session h. A FAIL never skips later descriptors. The returned
// error is reserved for conditions that make the whole pass meaningless: an
// unparsable provider URL or a cancelled context.
func (c *Compiler) Compile(ctx context.Context, engine ports.VerifierSetup, h *ports.SessionHandle, opts *config.Resolved) (Result, error) {
	if opts == nil {
		return Result{}, ErrNilOptions
	}

	log := c.logger
	if log == nil {
		log = ports.LoggerFromContext(ctx)
	}

	in := Input{Engine: engine, Handle: h, Options: opts, FS: c.fs}
	outcomes := make([]Outcome, 0, len(c.descriptors))

	for _, d := range c.descriptors {
		if err := ctx.Err(); err != nil {
			return Result{}, NewCompileAbortedError(d.Name(), err)
		}

		outcome, err := d.ValidateAndExecute(in)
		if err != nil {
			if log != nil {
				log.Error(ctx, "descriptor aborted compile", ports.F("descriptor", d.Name()), ports.Err(err))
			}
			return Result{}, err
		}

		if log != nil {
			log.Debug(ctx, "descriptor evaluated",
				ports.F("descriptor", d.Name()),
				ports.F("status", outcome.Status),
				ports.F("calls", outcome.Calls))
			for _, msg := range outcome.Messages() {
				log.Warn(ctx, msg, ports.F("descriptor", d.Name()))
			}
		}
		outcomes = append(outcomes, outcome)
	}

	return Aggregate(outcomes), nil
}
