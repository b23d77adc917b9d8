package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/pactverify/internal/ports"
)

// DefaultVerifierBinary is the verifier executable looked up on PATH.
const DefaultVerifierBinary = "pact_verifier_cli"

// verifierResponse is the JSON report printed by the verifier.
type verifierResponse struct {
	Version  string `json:"version"`
	Examples []struct {
		Description string `json:"description"`
		Status      string `json:"status"`
		Exception   struct {
			Message string `json:"message"`
		} `json:"exception,omitempty"`
	} `json:"examples"`
	Summary struct {
		Duration     float64 `json:"duration"`
		ExampleCount int     `json:"example_count"`
		FailureCount int     `json:"failure_count"`
		PendingCount int     `json:"pending_count"`
	} `json:"summary"`
	SummaryLine string `json:"summary_line"`
}

type cliSession struct {
	args   []string
	once   map[string]bool
	closed bool
}

func (s *cliSession) value(name, v string) {
	s.args = append(s.args, name, v)
}

// single adds a flag only the first time it is seen in the session.
func (s *cliSession) single(name string, v ...string) {
	if s.once[name] {
		return
	}
	s.once[name] = true
	s.args = append(s.args, name)
	s.args = append(s.args, v...)
}

// CLIEngine drives the verifier through its command line. Setup calls
// accumulate flags per session; Execute runs the binary once.
type CLIEngine struct {
	mu       sync.Mutex
	runner   ports.CommandRunner
	binary   string
	sessions map[string]*cliSession
	newID    func() string
}

// CLIOption configures a CLIEngine.
type CLIOption func(*CLIEngine)

// WithBinary sets the verifier executable.
func WithBinary(path string) CLIOption {
	return func(e *CLIEngine) {
		if path != "" {
			e.binary = path
		}
	}
}

// WithSessionIDs overrides how session identifiers are minted.
func WithSessionIDs(fn func() string) CLIOption {
	return func(e *CLIEngine) {
		e.newID = fn
	}
}

// NewCLIEngine creates a CLIEngine that runs commands through runner.
func NewCLIEngine(runner ports.CommandRunner, opts ...CLIOption) *CLIEngine {
	e := &CLIEngine{
		runner:   runner,
		binary:   DefaultVerifierBinary,
		sessions: make(map[string]*cliSession),
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Args returns the flags accumulated for h.
func (e *CLIEngine) Args(h *ports.SessionHandle) []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if s, ok := e.sessions[h.ID()]; ok {
		return append([]string(nil), s.args...)
	}
	return nil
}

func (e *CLIEngine) with(h *ports.SessionHandle, op string, fn func(s *cliSession)) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.sessions[h.ID()]
	if !ok {
		return fmt.Errorf("%s: %w", op, ErrUnknownSession)
	}
	if s.closed {
		return fmt.Errorf("%s: %w", op, ErrSessionClosed)
	}
	fn(s)
	return nil
}

func (s *cliSession) credentials(username, password, token string) {
	if username != "" {
		s.single("--user", username)
	}
	if password != "" {
		s.single("--password", password)
	}
	if token != "" {
		s.single("--token", token)
	}
}

// NewSession implements ports.SessionOpener.
func (e *CLIEngine) NewSession(ctx context.Context, name, version string) (*ports.SessionHandle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	h := ports.NewSessionHandle(e.newID())
	s := &cliSession{once: make(map[string]bool)}
	if name != "" {
		s.single("--provider-name", name)
	}
	if version != "" {
		s.single("--provider-version", version)
	}
	e.sessions[h.ID()] = s
	return h, nil
}

// Shutdown implements ports.SessionOpener.
func (e *CLIEngine) Shutdown(h *ports.SessionHandle) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if s, ok := e.sessions[h.ID()]; ok {
		s.closed = true
	}
}

// SetProviderInfo implements ports.VerifierSetup.
func (e *CLIEngine) SetProviderInfo(h *ports.SessionHandle, name, scheme, host string, port uint16, path string) error {
	return e.with(h, "set_provider_info", func(s *cliSession) {
		if name != "" {
			s.single("--provider-name", name)
		}
		if scheme != "" {
			s.single("--transport", scheme)
		}
		if host != "" {
			s.single("--hostname", host)
		}
		if port != 0 {
			s.single("--port", strconv.Itoa(int(port)))
		}
		if path != "" && path != "/" {
			s.single("--base-path", path)
		}
	})
}

// SetFilterInfo implements ports.VerifierSetup.
func (e *CLIEngine) SetFilterInfo(h *ports.SessionHandle, description, state string, noState bool) error {
	return e.with(h, "set_filter_info", func(s *cliSession) {
		if description != "" {
			s.single("--filter-description", description)
		}
		if state != "" {
			s.single("--filter-state", state)
		}
		if noState {
			s.single("--filter-no-state")
		}
	})
}

// SetProviderState implements ports.VerifierSetup.
func (e *CLIEngine) SetProviderState(h *ports.SessionHandle, url string, teardown, body bool) error {
	return e.with(h, "set_provider_state", func(s *cliSession) {
		s.single("--state-change-url", url)
		if teardown {
			s.single("--state-change-teardown")
		}
		if !body {
			s.single("--state-change-as-query")
		}
	})
}

// SetVerificationOptions implements ports.VerifierSetup.
func (e *CLIEngine) SetVerificationOptions(h *ports.SessionHandle, disableSSLVerification bool, timeoutMillis uint64) error {
	return e.with(h, "set_verification_options", func(s *cliSession) {
		if disableSSLVerification {
			s.single("--disable-ssl-verification")
		}
		s.single("--request-timeout", strconv.FormatUint(timeoutMillis, 10))
	})
}

// SetPublishOptions implements ports.VerifierSetup.
func (e *CLIEngine) SetPublishOptions(h *ports.SessionHandle, providerVersion, buildURL string, providerTags []string, providerBranch string) error {
	return e.with(h, "set_publish_options", func(s *cliSession) {
		s.single("--publish")
		s.single("--provider-version", providerVersion)
		if buildURL != "" {
			s.single("--build-url", buildURL)
		}
		if len(providerTags) > 0 {
			s.single("--provider-tags", strings.Join(providerTags, ","))
		}
		if providerBranch != "" {
			s.single("--provider-branch", providerBranch)
		}
	})
}

// SetConsumerFilters implements ports.VerifierSetup.
func (e *CLIEngine) SetConsumerFilters(h *ports.SessionHandle, consumers []string) error {
	return e.with(h, "set_consumer_filters", func(s *cliSession) {
		for _, c := range consumers {
			s.value("--filter-consumer", c)
		}
	})
}

// AddCustomHeader implements ports.VerifierSetup. The CLI takes NAME=VALUE.
func (e *CLIEngine) AddCustomHeader(h *ports.SessionHandle, name, value string) error {
	return e.with(h, "add_custom_header", func(s *cliSession) {
		s.value("--header", name+"="+value)
	})
}

// AddFileSource implements ports.VerifierSetup.
func (e *CLIEngine) AddFileSource(h *ports.SessionHandle, path string) error {
	return e.with(h, "add_file_source", func(s *cliSession) {
		s.value("--file", path)
	})
}

// AddDirectorySource implements ports.VerifierSetup.
func (e *CLIEngine) AddDirectorySource(h *ports.SessionHandle, path string) error {
	return e.with(h, "add_directory_source", func(s *cliSession) {
		s.value("--dir", path)
	})
}

// URLSource implements ports.VerifierSetup.
func (e *CLIEngine) URLSource(h *ports.SessionHandle, url, username, password, token string) error {
	return e.with(h, "url_source", func(s *cliSession) {
		s.value("--url", url)
		s.credentials(username, password, token)
	})
}

// BrokerSourceWithSelectors implements ports.VerifierSetup.
func (e *CLIEngine) BrokerSourceWithSelectors(h *ports.SessionHandle, url, username, password, token string,
	enablePending bool, includeWIPPactsSince string, providerTags []string, providerBranch string,
	consumerVersionSelectors []string, consumerVersionTags []string) error {
	return e.with(h, "broker_source_with_selectors", func(s *cliSession) {
		s.single("--broker-url", url)
		s.credentials(username, password, token)
		if enablePending {
			s.single("--enable-pending")
		}
		if includeWIPPactsSince != "" {
			s.single("--include-wip-pacts-since", includeWIPPactsSince)
		}
		if len(providerTags) > 0 {
			s.single("--provider-tags", strings.Join(providerTags, ","))
		}
		if providerBranch != "" {
			s.single("--provider-branch", providerBranch)
		}
		for _, sel := range consumerVersionSelectors {
			s.value("--consumer-version-selectors", sel)
		}
		if len(consumerVersionTags) > 0 {
			s.single("--consumer-version-tags", strings.Join(consumerVersionTags, ","))
		}
	})
}

// Execute implements ports.VerifierEngine. It runs the verifier once with
// every accumulated flag and decodes its JSON report when one is printed.
func (e *CLIEngine) Execute(ctx context.Context, h *ports.SessionHandle) (ports.VerificationReport, error) {
	var args []string
	if err := e.with(h, "execute", func(s *cliSession) {
		args = append(append([]string(nil), s.args...), "--json-output")
	}); err != nil {
		return ports.VerificationReport{}, err
	}

	started := time.Now()
	result, err := e.runner.Run(ctx, ports.CommandCall{Command: e.binary, Args: args})
	if err != nil {
		return ports.VerificationReport{}, fmt.Errorf("running %s: %w", e.binary, err)
	}

	report := ports.VerificationReport{
		Passed:   result.Success(),
		Duration: time.Since(started),
		Output:   strings.TrimSpace(result.Stdout + "\n" + result.Stderr),
	}

	var resp verifierResponse
	if jsonErr := json.Unmarshal([]byte(result.Stdout), &resp); jsonErr == nil {
		report.ExampleCount = resp.Summary.ExampleCount
		report.FailureCount = resp.Summary.FailureCount
		report.PendingCount = resp.Summary.PendingCount
		if resp.Summary.Duration > 0 {
			report.Duration = time.Duration(resp.Summary.Duration * float64(time.Second))
		}
		if resp.SummaryLine != "" {
			report.Output = resp.SummaryLine
		}
		for _, ex := range resp.Examples {
			if ex.Status == "failed" {
				report.Output += fmt.Sprintf("\n- %s: %s", ex.Description, ex.Exception.Message)
			}
		}
		report.Passed = report.Passed && resp.Summary.FailureCount == 0
	}

	return report, nil
}

// Ensure CLIEngine implements ports.VerifierEngine.
var _ ports.VerifierEngine = (*CLIEngine)(nil)
