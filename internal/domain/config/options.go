// Package config models verification options: the user-facing settings,
// the environment fallbacks they are resolved against, and the loaders that
// read them from files.
package config

import (
	"encoding/json"
	"fmt"
	"sort"
)

// DefaultTimeoutMillis is the request timeout used when verification options
// apply but no timeout was configured.
const DefaultTimeoutMillis = 30000

// VerificationOptions is the immutable snapshot of what a user asked for.
// Zero values mean "not configured".
type VerificationOptions struct {
	Provider        string
	ProviderBaseURL string

	// PactURLs lists pact sources: http(s) URLs, directories or files.
	PactURLs []string

	PactBrokerURL      string
	PactBrokerUsername string
	PactBrokerPassword string
	PactBrokerToken    string

	ProviderStatesSetupURL string

	FilterDescription string
	FilterState       string
	FilterNoState     bool

	DisableSSLVerification bool
	// TimeoutMillis is the per-request timeout; 0 means unset.
	TimeoutMillis uint64

	PublishVerificationResult bool
	ProviderVersion           string
	BuildURL                  string
	ProviderVersionTags       []string
	ProviderVersionBranch     string
	// ProviderBranch is the legacy alias of ProviderVersionBranch.
	ProviderBranch string

	ConsumerFilters       []string
	CustomProviderHeaders CustomHeaders

	ConsumerVersionSelectors []ConsumerVersionSelector
	ConsumerVersionTags      []string
	EnablePending            bool
	IncludeWIPPactsSince     string
}

// Branch returns the provider version branch, falling back to the legacy alias.
func (o VerificationOptions) Branch() string {
	if o.ProviderVersionBranch != "" {
		return o.ProviderVersionBranch
	}
	return o.ProviderBranch
}

// ConsumerVersionSelector picks which consumer pacts a broker should return.
// Field order is the serialization order.
type ConsumerVersionSelector struct {
	MainBranch         bool   `json:"mainBranch,omitempty" yaml:"mainBranch" toml:"mainBranch"`
	Branch             string `json:"branch,omitempty" yaml:"branch" toml:"branch"`
	MatchingBranch     bool   `json:"matchingBranch,omitempty" yaml:"matchingBranch" toml:"matchingBranch"`
	Tag                string `json:"tag,omitempty" yaml:"tag" toml:"tag"`
	FallbackTag        string `json:"fallbackTag,omitempty" yaml:"fallbackTag" toml:"fallbackTag"`
	Latest             bool   `json:"latest,omitempty" yaml:"latest" toml:"latest"`
	Consumer           string `json:"consumer,omitempty" yaml:"consumer" toml:"consumer"`
	DeployedOrReleased bool   `json:"deployedOrReleased,omitempty" yaml:"deployedOrReleased" toml:"deployedOrReleased"`
	Deployed           bool   `json:"deployed,omitempty" yaml:"deployed" toml:"deployed"`
	Released           bool   `json:"released,omitempty" yaml:"released" toml:"released"`
	Environment        string `json:"environment,omitempty" yaml:"environment" toml:"environment"`
}

// Canonical serializes the selector to the compact JSON token the engine expects.
func (s ConsumerVersionSelector) Canonical() (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// HeaderPair is one name/value custom header.
type HeaderPair struct {
	Name  string
	Value string
}

// CustomHeaders holds custom provider headers in one of two shapes: a list
// of "Name: Value" strings that still need parsing, or a name to value
// mapping that needs none.
type CustomHeaders struct {
	entries []string
	pairs   map[string]string
	mapping bool
}

// HeaderList builds the list form.
func HeaderList(entries ...string) CustomHeaders {
	return CustomHeaders{entries: append([]string(nil), entries...)}
}

// HeaderMap builds the mapping form.
func HeaderMap(pairs map[string]string) CustomHeaders {
	copied := make(map[string]string, len(pairs))
	for k, v := range pairs {
		copied[k] = v
	}
	return CustomHeaders{pairs: copied, mapping: true}
}

// IsMapping reports whether the headers were given as a mapping.
func (h CustomHeaders) IsMapping() bool {
	return h.mapping
}

// Len returns the number of configured entries in either form.
func (h CustomHeaders) Len() int {
	if h.mapping {
		return len(h.pairs)
	}
	return len(h.entries)
}

// Entries returns the raw list entries. Empty for the mapping form.
func (h CustomHeaders) Entries() []string {
	return append([]string(nil), h.entries...)
}

// Pairs returns the mapping form sorted by header name so that execution is
// deterministic. Empty for the list form.
func (h CustomHeaders) Pairs() []HeaderPair {
	names := make([]string, 0, len(h.pairs))
	for name := range h.pairs {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]HeaderPair, 0, len(names))
	for _, name := range names {
		pairs = append(pairs, HeaderPair{Name: name, Value: h.pairs[name]})
	}
	return pairs
}

// NewCustomHeaders converts a decoded YAML/TOML value into CustomHeaders.
// Accepted shapes are a list of strings and a mapping of strings to scalars.
func NewCustomHeaders(raw interface{}) (CustomHeaders, error) {
	switch v := raw.(type) {
	case nil:
		return CustomHeaders{}, nil
	case []string:
		return HeaderList(v...), nil
	case []interface{}:
		entries := make([]string, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return CustomHeaders{}, NewConfigInvalidError(
					fmt.Sprintf("customProviderHeaders[%d]", i),
					fmt.Sprintf("expected a string, got %T", item))
			}
			entries = append(entries, s)
		}
		return HeaderList(entries...), nil
	case map[string]string:
		return HeaderMap(v), nil
	case map[string]interface{}:
		pairs := make(map[string]string, len(v))
		for name, value := range v {
			switch value.(type) {
			case string, bool, int, int64, uint64, float64:
				pairs[name] = fmt.Sprintf("%v", value)
			default:
				return CustomHeaders{}, NewConfigInvalidError(
					"customProviderHeaders."+name,
					fmt.Sprintf("expected a scalar value, got %T", value))
			}
		}
		return HeaderMap(pairs), nil
	default:
		return CustomHeaders{}, NewConfigInvalidError("customProviderHeaders",
			fmt.Sprintf("expected a list of \"Name: Value\" strings or a mapping, got %T", raw))
	}
}
