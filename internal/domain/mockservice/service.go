// Package mockservice supervises a local mock service process: it spawns the
// binary, polls it until it answers, and tears the process group down again.
package mockservice

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/felixgeelhaar/statekit"

	"github.com/felixgeelhaar/pactverify/internal/ports"
)

// State is the lifecycle state of the mock service.
type State string

const (
	// StateStopped means no process is running.
	StateStopped State = "stopped"
	// StateStarting means the process was spawned and is being polled.
	StateStarting State = "starting"
	// StateRunning means the service answered a health check.
	StateRunning State = "running"
	// StateStopping means the group was signalled and is being polled down.
	StateStopping State = "stopping"
	// StateError means a start or stop sequence failed.
	StateError State = "error"
)

// Event types for the lifecycle machine.
const (
	EventStart   = "START"
	EventStarted = "STARTED"
	EventStop    = "STOP"
	EventStopped = "STOPPED"
	EventFail    = "FAIL"
)

var (
	// ErrInvalidTransition is returned when Start or Stop is called in a
	// state that does not allow it.
	ErrInvalidTransition = errors.New("invalid mock service transition")
	// ErrStartFailed is returned when the service never became healthy.
	ErrStartFailed = errors.New("mock service failed to start")
	// ErrStopFailed is returned when the service did not go down in time.
	ErrStopFailed = errors.New("mock service failed to stop")

	errAttemptsExhausted = errors.New("health check attempts exhausted")
	errExited            = errors.New("process exited")
)

// Event describes one lifecycle transition.
type Event struct {
	From State
	To   State
	At   time.Time
}

// Context is the machine context.
type Context struct {
	Pid       int
	StartedAt time.Time
	Attempts  int
	LastError error
}

// Status is a snapshot of the service.
type Status struct {
	State     State
	Pid       int
	StartedAt time.Time
	Attempts  int
	LastError error
}

type runtimeContext struct {
	mu  sync.RWMutex
	ctx Context
}

func (r *runtimeContext) recordStart(pid, attempts int, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ctx.Pid = pid
	r.ctx.Attempts = attempts
	r.ctx.StartedAt = at
	r.ctx.LastError = nil
}

func (r *runtimeContext) recordError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ctx.Pid = 0
	r.ctx.LastError = err
}

func (r *runtimeContext) recordStop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ctx.Pid = 0
}

func (r *runtimeContext) snapshot() Context {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ctx
}

// Service runs one mock service process at a time.
type Service struct {
	cfg     Config
	starter ProcessStarter
	checker HealthChecker
	logger  ports.Logger
	now     func() time.Time

	// op serializes Start and Stop.
	op sync.Mutex

	mu      sync.RWMutex
	interp  *statekit.Interpreter[Context]
	proc    Process
	onEvent func(Event)
	runtime *runtimeContext
}

// Option configures a Service.
type Option func(*Service)

// WithHealthChecker replaces the HTTP health checker.
func WithHealthChecker(c HealthChecker) Option {
	return func(s *Service) { s.checker = c }
}

// WithLogger sets the logger used for lifecycle transitions.
func WithLogger(l ports.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithEventHandler registers fn for every transition.
func WithEventHandler(fn func(Event)) Option {
	return func(s *Service) { s.onEvent = fn }
}

// WithClock overrides time.Now for event timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New validates cfg and builds a stopped service.
func New(cfg Config, starter ProcessStarter, opts ...Option) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if starter == nil {
		return nil, fmt.Errorf("process starter is required")
	}

	s := &Service{
		cfg:     cfg,
		starter: starter,
		now:     time.Now,
		runtime: &runtimeContext{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.checker == nil {
		s.checker = NewHTTPChecker(cfg.BaseURL(), time.Second)
	}

	interp, err := buildMachine(s.runtime)
	if err != nil {
		return nil, fmt.Errorf("failed to build state machine: %w", err)
	}
	interp.Start()
	s.interp = interp

	return s, nil
}

// buildMachine constructs the lifecycle machine. Actions write through the
// captured runtime pointer.
func buildMachine(runtime *runtimeContext) (*statekit.Interpreter[Context], error) {
	machine, err := statekit.NewMachine[Context]("mock-service").
		WithInitial("stopped").
		WithContext(runtime.snapshot()).
		WithAction("recordStart", func(_ *Context, event statekit.Event) {
			if payload, ok := event.Payload.(map[string]interface{}); ok {
				pid, _ := payload["pid"].(int)
				attempts, _ := payload["attempts"].(int)
				at, _ := payload["at"].(time.Time)
				runtime.recordStart(pid, attempts, at)
			}
		}).
		WithAction("recordError", func(_ *Context, event statekit.Event) {
			if payload, ok := event.Payload.(map[string]interface{}); ok {
				if err, ok := payload["error"].(error); ok {
					runtime.recordError(err)
				}
			}
		}).
		WithAction("recordStop", func(_ *Context, _ statekit.Event) {
			runtime.recordStop()
		}).
		State("stopped").
		OnEntry("recordStop").
		On(EventStart).Target("starting").Done().
		State("starting").
		On(EventStarted).Target("running").
		On(EventFail).Target("error").Done().
		State("running").
		OnEntry("recordStart").
		On(EventStop).Target("stopping").
		On(EventFail).Target("error").Done().
		State("stopping").
		On(EventStopped).Target("stopped").
		On(EventFail).Target("error").Done().
		State("error").
		OnEntry("recordError").
		On(EventStart).Target("starting").
		On(EventStop).Target("stopped").Done().
		Build()

	if err != nil {
		return nil, err
	}

	return statekit.NewInterpreter(machine), nil
}

// State returns the current state.
func (s *Service) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return State(s.interp.State().Value)
}

// Status returns a snapshot of the service.
func (s *Service) Status() Status {
	rc := s.runtime.snapshot()
	return Status{
		State:     s.State(),
		Pid:       rc.Pid,
		StartedAt: rc.StartedAt,
		Attempts:  rc.Attempts,
		LastError: rc.LastError,
	}
}

// Exited is closed when the running process exits. It is nil when no
// process is running.
func (s *Service) Exited() <-chan struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.proc == nil {
		return nil
	}
	return s.proc.Done()
}

// Start spawns the service and polls it until it answers, at most
// MaxAttempts times within StartTimeout. On failure the process group is
// killed and the service moves to the error state.
func (s *Service) Start(ctx context.Context) error {
	s.op.Lock()
	defer s.op.Unlock()

	if to := s.send(ctx, EventStart, nil); to != StateStarting {
		return fmt.Errorf("%w: cannot start from %s", ErrInvalidTransition, to)
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.StartTimeout)
	defer cancel()

	proc, err := s.starter.Start(ctx, s.cfg.Binary, s.cfg.Args)
	if err != nil {
		return s.fail(ctx, fmt.Errorf("%w: %w", ErrStartFailed, err))
	}

	attempts, err := pollUntil(ctx, s.cfg.PollInterval, s.cfg.MaxAttempts, func(ctx context.Context) (bool, error) {
		select {
		case <-proc.Done():
			return false, errExited
		default:
		}
		return s.checker.Healthy(ctx), nil
	})
	if err != nil {
		s.reap(proc)
		return s.fail(ctx, fmt.Errorf("%w after %d attempts at %s: %w", ErrStartFailed, attempts, s.cfg.Address(), err))
	}

	s.mu.Lock()
	s.proc = proc
	s.mu.Unlock()

	s.send(ctx, EventStarted, map[string]interface{}{
		"pid":      proc.Pid(),
		"attempts": attempts,
		"at":       s.now(),
	})
	return nil
}

// Stop signals the process group and polls until the service no longer
// answers and the process has exited, bounded by StopTimeout. Stopping a
// stopped service is a no-op; stopping from the error state clears it.
func (s *Service) Stop(ctx context.Context) error {
	s.op.Lock()
	defer s.op.Unlock()

	switch state := s.State(); state {
	case StateStopped:
		return nil
	case StateError:
		s.send(ctx, EventStop, nil)
		return nil
	case StateRunning:
	default:
		return fmt.Errorf("%w: cannot stop from %s", ErrInvalidTransition, state)
	}

	s.send(ctx, EventStop, nil)

	s.mu.Lock()
	proc := s.proc
	s.proc = nil
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.StopTimeout)
	defer cancel()

	if err := proc.Terminate(); err != nil {
		s.reap(proc)
		return s.fail(ctx, fmt.Errorf("%w: %w", ErrStopFailed, err))
	}

	_, err := pollUntil(ctx, s.cfg.PollInterval, 0, func(ctx context.Context) (bool, error) {
		if s.checker.Healthy(ctx) {
			return false, nil
		}
		select {
		case <-proc.Done():
			return true, nil
		default:
			return false, nil
		}
	})
	if err != nil {
		s.reap(proc)
		return s.fail(ctx, fmt.Errorf("%w within %s: %w", ErrStopFailed, s.cfg.StopTimeout, err))
	}

	s.send(ctx, EventStopped, nil)
	return nil
}

// reap kills the group and waits briefly for the leader.
func (s *Service) reap(proc Process) {
	_ = proc.Kill()
	select {
	case <-proc.Done():
	case <-time.After(s.cfg.StopTimeout):
	}
}

func (s *Service) fail(ctx context.Context, err error) error {
	s.send(ctx, EventFail, map[string]interface{}{"error": err})
	if s.logger != nil {
		s.logger.Error(ctx, "mock service failed", ports.Err(err))
	}
	return err
}

// send delivers an event and reports the resulting state. A transition
// is logged and passed to the event handler.
func (s *Service) send(ctx context.Context, event string, payload map[string]interface{}) State {
	s.mu.Lock()
	from := State(s.interp.State().Value)
	if payload != nil {
		s.interp.Send(statekit.Event{Type: statekit.EventType(event), Payload: payload})
	} else {
		s.interp.Send(statekit.Event{Type: statekit.EventType(event)})
	}
	to := State(s.interp.State().Value)
	handler := s.onEvent
	s.mu.Unlock()

	if from == to {
		return to
	}

	ev := Event{From: from, To: to, At: s.now()}
	if s.logger != nil {
		s.logger.Info(ctx, "mock service transition",
			ports.F("from", string(from)),
			ports.F("to", string(to)),
			ports.F("address", s.cfg.Address()),
		)
	}
	if handler != nil {
		handler(ev)
	}
	return to
}
