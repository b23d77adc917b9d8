//go:build e2e

package framework

import "testing"

// Scenario chains Given/When/Then steps, logging each one.
type Scenario struct {
	t      *testing.T
	env    *Environment
	runner *Runner
	result *Result
}

// NewScenario creates a scenario with a fresh Environment.
func NewScenario(t *testing.T) *Scenario {
	env := NewEnvironment(t)
	return &Scenario{t: t, env: env, runner: NewRunner(t, env)}
}

// Given prepares the environment.
func (s *Scenario) Given(description string, setup func(*Environment)) *Scenario {
	s.t.Helper()
	s.t.Logf("Given %s", description)
	setup(s.env)
	return s
}

// When runs the command under test.
func (s *Scenario) When(description string, action func(*Runner) *Result) *Scenario {
	s.t.Helper()
	s.t.Logf("When %s", description)
	s.result = action(s.runner)
	return s
}

// Then checks the last result.
func (s *Scenario) Then(description string, check func(*testing.T, *Result)) *Scenario {
	s.t.Helper()
	s.t.Logf("Then %s", description)
	check(s.t, s.result)
	return s
}

// And continues a Then.
func (s *Scenario) And(description string, check func(*testing.T, *Result)) *Scenario {
	return s.Then(description, check)
}
