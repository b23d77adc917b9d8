package ports

import (
	"context"
	"time"
)

// SessionHandle identifies one verification session inside the engine.
// The zero value is not a valid handle; obtain one from SessionOpener.NewSession.
type SessionHandle struct {
	id string
}

// NewSessionHandle wraps an engine-issued identifier.
func NewSessionHandle(id string) *SessionHandle {
	return &SessionHandle{id: id}
}

// ID returns the engine-issued identifier.
func (h *SessionHandle) ID() string {
	if h == nil {
		return ""
	}
	return h.id
}

// String implements fmt.Stringer.
func (h *SessionHandle) String() string {
	return h.ID()
}

// SessionOpener opens and releases engine sessions.
type SessionOpener interface {
	// NewSession creates a session for the named provider.
	NewSession(ctx context.Context, name, version string) (*SessionHandle, error)

	// Shutdown releases the session. Calling it twice is a no-op.
	Shutdown(h *SessionHandle)
}

// VerifierSetup is the ordered setup surface of the native verifier.
// Implementations do not reorder calls; the caller is responsible for
// issuing them in the order the engine expects.
type VerifierSetup interface {
	SetProviderInfo(h *SessionHandle, name, scheme, host string, port uint16, path string) error
	SetFilterInfo(h *SessionHandle, description, state string, noState bool) error
	SetProviderState(h *SessionHandle, url string, teardown, body bool) error
	SetVerificationOptions(h *SessionHandle, disableSSLVerification bool, timeoutMillis uint64) error
	SetPublishOptions(h *SessionHandle, providerVersion, buildURL string, providerTags []string, providerBranch string) error
	SetConsumerFilters(h *SessionHandle, consumers []string) error
	AddCustomHeader(h *SessionHandle, name, value string) error
	AddFileSource(h *SessionHandle, path string) error
	AddDirectorySource(h *SessionHandle, path string) error
	URLSource(h *SessionHandle, url, username, password, token string) error
	BrokerSourceWithSelectors(h *SessionHandle, url, username, password, token string,
		enablePending bool, includeWIPPactsSince string, providerTags []string, providerBranch string,
		consumerVersionSelectors []string, consumerVersionTags []string) error
}

// VerificationReport summarises a verification run.
type VerificationReport struct {
	Passed       bool
	ExampleCount int
	FailureCount int
	PendingCount int
	Duration     time.Duration
	Output       string
}

// VerifierEngine is the full native engine: session management, setup, and
// the verification run itself.
type VerifierEngine interface {
	SessionOpener
	VerifierSetup

	// Execute runs verification for a fully configured session.
	Execute(ctx context.Context, h *SessionHandle) (VerificationReport, error)
}
