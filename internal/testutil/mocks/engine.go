package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/felixgeelhaar/pactverify/internal/ports"
)

// EngineCall is one recorded call against the mock engine.
type EngineCall struct {
	Op     string
	Handle string
	Args   []interface{}
}

// Engine is a thread-safe test double for ports.VerifierEngine. It records
// every call and can be told to fail specific operations.
type Engine struct {
	mu       sync.Mutex
	calls    []EngineCall
	failures map[string]error
	report   ports.VerificationReport
	execErr  error
	sessions int
	closed   map[string]bool
	openErr  error
}

// NewEngine creates a new Engine mock whose Execute reports a pass.
func NewEngine() *Engine {
	return &Engine{
		failures: make(map[string]error),
		closed:   make(map[string]bool),
		report:   ports.VerificationReport{Passed: true},
	}
}

// FailOn makes every call to op return err.
func (e *Engine) FailOn(op string, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failures[op] = err
}

// FailOpen makes NewSession return err.
func (e *Engine) FailOpen(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.openErr = err
}

// SetReport sets what Execute returns.
func (e *Engine) SetReport(report ports.VerificationReport, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.report = report
	e.execErr = err
}

// Calls returns all recorded calls.
func (e *Engine) Calls() []EngineCall {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]EngineCall(nil), e.calls...)
}

// Ops returns the recorded operation names in call order.
func (e *Engine) Ops() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	ops := make([]string, len(e.calls))
	for i, c := range e.calls {
		ops[i] = c.Op
	}
	return ops
}

// CallsTo returns the recorded calls for one operation.
func (e *Engine) CallsTo(op string) []EngineCall {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []EngineCall
	for _, c := range e.calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Closed reports whether Shutdown was called for h.
func (e *Engine) Closed(h *ports.SessionHandle) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed[h.ID()]
}

func (e *Engine) record(op string, h *ports.SessionHandle, args ...interface{}) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, EngineCall{Op: op, Handle: h.ID(), Args: args})
	return e.failures[op]
}

// NewSession implements ports.SessionOpener.
func (e *Engine) NewSession(_ context.Context, name, version string) (*ports.SessionHandle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.openErr != nil {
		return nil, e.openErr
	}
	e.sessions++
	h := ports.NewSessionHandle(fmt.Sprintf("session-%d", e.sessions))
	e.calls = append(e.calls, EngineCall{Op: "new_session", Handle: h.ID(), Args: []interface{}{name, version}})
	return h, nil
}

// Shutdown implements ports.SessionOpener.
func (e *Engine) Shutdown(h *ports.SessionHandle) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed[h.ID()] {
		return
	}
	e.closed[h.ID()] = true
	e.calls = append(e.calls, EngineCall{Op: "shutdown", Handle: h.ID()})
}

// SetProviderInfo implements ports.VerifierSetup.
func (e *Engine) SetProviderInfo(h *ports.SessionHandle, name, scheme, host string, port uint16, path string) error {
	return e.record("set_provider_info", h, name, scheme, host, port, path)
}

// SetFilterInfo implements ports.VerifierSetup.
func (e *Engine) SetFilterInfo(h *ports.SessionHandle, description, state string, noState bool) error {
	return e.record("set_filter_info", h, description, state, noState)
}

// SetProviderState implements ports.VerifierSetup.
func (e *Engine) SetProviderState(h *ports.SessionHandle, url string, teardown, body bool) error {
	return e.record("set_provider_state", h, url, teardown, body)
}

// SetVerificationOptions implements ports.VerifierSetup.
func (e *Engine) SetVerificationOptions(h *ports.SessionHandle, disableSSLVerification bool, timeoutMillis uint64) error {
	return e.record("set_verification_options", h, disableSSLVerification, timeoutMillis)
}

// SetPublishOptions implements ports.VerifierSetup.
func (e *Engine) SetPublishOptions(h *ports.SessionHandle, providerVersion, buildURL string, providerTags []string, providerBranch string) error {
	return e.record("set_publish_options", h, providerVersion, buildURL, providerTags, providerBranch)
}

// SetConsumerFilters implements ports.VerifierSetup.
func (e *Engine) SetConsumerFilters(h *ports.SessionHandle, consumers []string) error {
	return e.record("set_consumer_filters", h, consumers)
}

// AddCustomHeader implements ports.VerifierSetup.
func (e *Engine) AddCustomHeader(h *ports.SessionHandle, name, value string) error {
	return e.record("add_custom_header", h, name, value)
}

// AddFileSource implements ports.VerifierSetup.
func (e *Engine) AddFileSource(h *ports.SessionHandle, path string) error {
	return e.record("add_file_source", h, path)
}

// AddDirectorySource implements ports.VerifierSetup.
func (e *Engine) AddDirectorySource(h *ports.SessionHandle, path string) error {
	return e.record("add_directory_source", h, path)
}

// URLSource implements ports.VerifierSetup.
func (e *Engine) URLSource(h *ports.SessionHandle, url, username, password, token string) error {
	return e.record("url_source", h, url, username, password, token)
}

// BrokerSourceWithSelectors implements ports.VerifierSetup.
func (e *Engine) BrokerSourceWithSelectors(h *ports.SessionHandle, url, username, password, token string,
	enablePending bool, includeWIPPactsSince string, providerTags []string, providerBranch string,
	consumerVersionSelectors []string, consumerVersionTags []string) error {
	return e.record("broker_source_with_selectors", h, url, username, password, token,
		enablePending, includeWIPPactsSince, providerTags, providerBranch,
		consumerVersionSelectors, consumerVersionTags)
}

// Execute implements ports.VerifierEngine.
func (e *Engine) Execute(_ context.Context, h *ports.SessionHandle) (ports.VerificationReport, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, EngineCall{Op: "execute", Handle: h.ID()})
	return e.report, e.execErr
}

// Ensure Engine implements ports.VerifierEngine.
var _ ports.VerifierEngine = (*Engine)(nil)
