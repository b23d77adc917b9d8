// Package process spawns and signals external process groups.
package process

import (
	"context"
	"fmt"
	"io"
	"os/exec"

	"github.com/felixgeelhaar/pactverify/internal/domain/mockservice"
)

// ExecStarter starts processes with os/exec, each in a new process group.
type ExecStarter struct {
	stdout io.Writer
	stderr io.Writer
}

// Option configures an ExecStarter.
type Option func(*ExecStarter)

// WithOutput forwards the child's stdout and stderr.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(s *ExecStarter) {
		s.stdout = stdout
		s.stderr = stderr
	}
}

// NewExecStarter creates a new ExecStarter.
func NewExecStarter(opts ...Option) *ExecStarter {
	s := &ExecStarter{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches binary. The process outlives ctx; callers end it through
// Terminate or Kill.
func (s *ExecStarter) Start(ctx context.Context, binary string, args []string) (mockservice.Process, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cmd := exec.Command(binary, args...)
	cmd.Stdout = s.stdout
	cmd.Stderr = s.stderr
	setProcessGroup(cmd)

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting %s: %w", binary, err)
	}

	p := &execProcess{cmd: cmd, done: make(chan struct{})}
	go p.wait()
	return p, nil
}

type execProcess struct {
	cmd  *exec.Cmd
	done chan struct{}
}

func (p *execProcess) wait() {
	_ = p.cmd.Wait()
	close(p.done)
}

func (p *execProcess) Pid() int {
	return p.cmd.Process.Pid
}

func (p *execProcess) Terminate() error {
	if p.exited() {
		return nil
	}
	return terminateGroup(p.cmd)
}

func (p *execProcess) Kill() error {
	if p.exited() {
		return nil
	}
	return killGroup(p.cmd)
}

func (p *execProcess) Done() <-chan struct{} {
	return p.done
}

func (p *execProcess) exited() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

var _ mockservice.ProcessStarter = (*ExecStarter)(nil)
