// Package engine provides implementations of ports.VerifierEngine.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/pactverify/internal/ports"
)

// Errors returned for misuse of a session.
var (
	ErrUnknownSession = errors.New("unknown session")
	ErrSessionClosed  = errors.New("session already shut down")
)

// Arg is one named argument of a recorded call.
type Arg struct {
	Name  string
	Value interface{}
}

// Call is one recorded engine call.
type Call struct {
	Op   string
	Args []Arg
}

// String renders the call as `op name=value ...`. Strings are quoted and
// lists use JSON-style brackets.
func (c Call) String() string {
	var b strings.Builder
	b.WriteString(c.Op)
	for _, a := range c.Args {
		b.WriteByte(' ')
		b.WriteString(a.Name)
		b.WriteByte('=')
		b.WriteString(renderValue(a.Value))
	}
	return b.String()
}

func renderValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return strconv.Quote(val)
	case []string:
		quoted := make([]string, len(val))
		for i, s := range val {
			quoted[i] = strconv.Quote(s)
		}
		return "[" + strings.Join(quoted, ",") + "]"
	default:
		return fmt.Sprintf("%v", val)
	}
}

type session struct {
	calls  []Call
	closed bool
}

// Recorder is a dry-run engine. It accepts every setup call, records it per
// session and never contacts a provider. It backs `pactverify plan`.
type Recorder struct {
	mu       sync.Mutex
	sessions map[string]*session
	failures map[string]error
	newID    func() string
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithIDGenerator overrides how session identifiers are minted.
func WithIDGenerator(fn func() string) RecorderOption {
	return func(r *Recorder) {
		r.newID = fn
	}
}

// NewRecorder creates a Recorder that mints random session identifiers.
func NewRecorder(opts ...RecorderOption) *Recorder {
	r := &Recorder{
		sessions: make(map[string]*session),
		failures: make(map[string]error),
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FailOn makes every call to op fail with err after being recorded.
func (r *Recorder) FailOn(op string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[op] = err
}

// Calls returns the calls recorded for h.
func (r *Recorder) Calls(h *ports.SessionHandle) []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[h.ID()]
	if !ok {
		return nil
	}
	return append([]Call(nil), s.calls...)
}

// Transcript renders the calls recorded for h, one per line.
func (r *Recorder) Transcript(h *ports.SessionHandle) string {
	var b strings.Builder
	for _, c := range r.Calls(h) {
		b.WriteString(c.String())
		b.WriteByte('\n')
	}
	return b.String()
}

func (r *Recorder) record(h *ports.SessionHandle, op string, args ...Arg) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[h.ID()]
	if !ok {
		return fmt.Errorf("%s: %w", op, ErrUnknownSession)
	}
	if s.closed {
		return fmt.Errorf("%s: %w", op, ErrSessionClosed)
	}
	s.calls = append(s.calls, Call{Op: op, Args: args})
	return r.failures[op]
}

// NewSession implements ports.SessionOpener.
func (r *Recorder) NewSession(ctx context.Context, name, version string) (*ports.SessionHandle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.failures["new_session"]; err != nil {
		return nil, err
	}

	h := ports.NewSessionHandle(r.newID())
	r.sessions[h.ID()] = &session{
		calls: []Call{{Op: "new_session", Args: []Arg{{"name", name}, {"version", version}}}},
	}
	return h, nil
}

// Shutdown implements ports.SessionOpener.
func (r *Recorder) Shutdown(h *ports.SessionHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[h.ID()]; ok && !s.closed {
		s.calls = append(s.calls, Call{Op: "shutdown"})
		s.closed = true
	}
}

// SetProviderInfo implements ports.VerifierSetup.
func (r *Recorder) SetProviderInfo(h *ports.SessionHandle, name, scheme, host string, port uint16, path string) error {
	return r.record(h, "set_provider_info",
		Arg{"name", name}, Arg{"scheme", scheme}, Arg{"host", host}, Arg{"port", port}, Arg{"path", path})
}

// SetFilterInfo implements ports.VerifierSetup.
func (r *Recorder) SetFilterInfo(h *ports.SessionHandle, description, state string, noState bool) error {
	return r.record(h, "set_filter_info",
		Arg{"description", description}, Arg{"state", state}, Arg{"no_state", noState})
}

// SetProviderState implements ports.VerifierSetup.
func (r *Recorder) SetProviderState(h *ports.SessionHandle, url string, teardown, body bool) error {
	return r.record(h, "set_provider_state",
		Arg{"url", url}, Arg{"teardown", teardown}, Arg{"body", body})
}

// SetVerificationOptions implements ports.VerifierSetup.
func (r *Recorder) SetVerificationOptions(h *ports.SessionHandle, disableSSLVerification bool, timeoutMillis uint64) error {
	return r.record(h, "set_verification_options",
		Arg{"disable_ssl_verification", disableSSLVerification}, Arg{"timeout", timeoutMillis})
}

// SetPublishOptions implements ports.VerifierSetup.
func (r *Recorder) SetPublishOptions(h *ports.SessionHandle, providerVersion, buildURL string, providerTags []string, providerBranch string) error {
	return r.record(h, "set_publish_options",
		Arg{"provider_version", providerVersion}, Arg{"build_url", buildURL},
		Arg{"provider_tags", providerTags}, Arg{"provider_branch", providerBranch})
}

// SetConsumerFilters implements ports.VerifierSetup.
func (r *Recorder) SetConsumerFilters(h *ports.SessionHandle, consumers []string) error {
	return r.record(h, "set_consumer_filters", Arg{"consumers", consumers})
}

// AddCustomHeader implements ports.VerifierSetup.
func (r *Recorder) AddCustomHeader(h *ports.SessionHandle, name, value string) error {
	return r.record(h, "add_custom_header", Arg{"name", name}, Arg{"value", value})
}

// AddFileSource implements ports.VerifierSetup.
func (r *Recorder) AddFileSource(h *ports.SessionHandle, path string) error {
	return r.record(h, "add_file_source", Arg{"path", path})
}

// AddDirectorySource implements ports.VerifierSetup.
func (r *Recorder) AddDirectorySource(h *ports.SessionHandle, path string) error {
	return r.record(h, "add_directory_source", Arg{"path", path})
}

// URLSource implements ports.VerifierSetup. Secrets are masked in the record.
func (r *Recorder) URLSource(h *ports.SessionHandle, url, username, password, token string) error {
	return r.record(h, "url_source",
		Arg{"url", url}, Arg{"username", username}, Arg{"password", mask(password)}, Arg{"token", mask(token)})
}

// BrokerSourceWithSelectors implements ports.VerifierSetup. Secrets are
// masked in the record.
func (r *Recorder) BrokerSourceWithSelectors(h *ports.SessionHandle, url, username, password, token string,
	enablePending bool, includeWIPPactsSince string, providerTags []string, providerBranch string,
	consumerVersionSelectors []string, consumerVersionTags []string) error {
	return r.record(h, "broker_source_with_selectors",
		Arg{"url", url}, Arg{"username", username}, Arg{"password", mask(password)}, Arg{"token", mask(token)},
		Arg{"enable_pending", enablePending}, Arg{"include_wip_pacts_since", includeWIPPactsSince},
		Arg{"provider_tags", providerTags}, Arg{"provider_branch", providerBranch},
		Arg{"consumer_version_selectors", consumerVersionSelectors},
		Arg{"consumer_version_tags", consumerVersionTags})
}

// Execute implements ports.VerifierEngine. Nothing is verified; the report
// carries the transcript.
func (r *Recorder) Execute(ctx context.Context, h *ports.SessionHandle) (ports.VerificationReport, error) {
	if err := ctx.Err(); err != nil {
		return ports.VerificationReport{}, err
	}
	if err := r.record(h, "execute"); err != nil {
		return ports.VerificationReport{}, err
	}
	return ports.VerificationReport{Passed: true, Output: r.Transcript(h)}, nil
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return "****"
}

// Ensure Recorder implements ports.VerifierEngine.
var _ ports.VerifierEngine = (*Recorder)(nil)
