package mockservice

import "context"

// Process is a running mock service process group.
type Process interface {
	// Pid returns the process id of the group leader.
	Pid() int
	// Terminate asks the whole group to exit.
	Terminate() error
	// Kill forcibly ends the whole group.
	Kill() error
	// Done is closed once the leader has exited.
	Done() <-chan struct{}
}

// ProcessStarter spawns a binary in its own process group.
type ProcessStarter interface {
	Start(ctx context.Context, binary string, args []string) (Process, error)
}

// HealthChecker reports whether the service answers at its address.
type HealthChecker interface {
	Healthy(ctx context.Context) bool
}
