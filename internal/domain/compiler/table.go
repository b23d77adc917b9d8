package compiler

import (
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/felixgeelhaar/pactverify/internal/domain/config"
	"github.com/felixgeelhaar/pactverify/internal/ports"
)

// descriptorTable maps every function name to its validator. Declaration
// order here is irrelevant; the compiler sorts by execution position.
var descriptorTable = map[FunctionName]validateFunc{
	BrokerSourceWithSelectors: validateBrokerSource,
	ConsumerFilters:           validateConsumerFilters,
	CustomHeader:              validateCustomHeaders,
	DirectorySource:           validateDirectorySource,
	FilterInfo:                validateFilterInfo,
	ProviderInfo:              validateProviderInfo,
	ProviderState:             validateProviderState,
	PublishOptions:            validatePublishOptions,
	VerificationOptions:       validateVerificationOptions,
}

// Descriptors returns the full table in execution order.
func Descriptors() []Descriptor {
	names := make([]FunctionName, 0, len(descriptorTable))
	for name := range descriptorTable {
		names = append(names, name)
	}
	ordered, err := orderNames(names, executionOrder)
	if err != nil {
		panic("invalid descriptor table: " + err.Error())
	}

	out := make([]Descriptor, len(ordered))
	for i, name := range ordered {
		out[i] = descriptor{name: name, validate: descriptorTable[name]}
	}
	return out
}

// errNotAbsoluteURL rejects relative references, which url.Parse accepts.
var errNotAbsoluteURL = errors.New("scheme and host are required")

// validateProviderInfo never ignores. A base URL that is missing, relative or
// unparsable aborts the pass.
func validateProviderInfo(opts *config.Resolved, _ ports.FileSystem) (validation, error) {
	u, err := url.Parse(opts.ProviderBaseURL)
	if err != nil {
		return validation{}, NewProviderURLInvalidError(opts.ProviderBaseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return validation{}, NewProviderURLInvalidError(opts.ProviderBaseURL, errNotAbsoluteURL)
	}

	port, err := providerPort(u)
	if err != nil {
		return validation{}, NewProviderURLInvalidError(opts.ProviderBaseURL, err)
	}

	name, scheme, host, path := opts.Provider, u.Scheme, u.Hostname(), u.Path
	return applicable(call{op: "set_provider_info", invoke: func(e ports.VerifierSetup, h *ports.SessionHandle) error {
		return e.SetProviderInfo(h, name, scheme, host, port, path)
	}}), nil
}

// providerPort returns the explicit port, or the scheme default.
func providerPort(u *url.URL) (uint16, error) {
	if p := u.Port(); p != "" {
		n, err := strconv.ParseUint(p, 10, 16)
		if err != nil {
			return 0, err
		}
		return uint16(n), nil
	}
	switch strings.ToLower(u.Scheme) {
	case "http":
		return 80, nil
	case "https":
		return 443, nil
	}
	return 0, nil
}

func validateFilterInfo(opts *config.Resolved, _ ports.FileSystem) (validation, error) {
	if !opts.HasFilters() {
		return notApplicable(), nil
	}
	description, state, noState := opts.FilterDescription, opts.FilterState, opts.FilterNoState
	return applicable(call{op: "set_filter_info", invoke: func(e ports.VerifierSetup, h *ports.SessionHandle) error {
		return e.SetFilterInfo(h, description, state, noState)
	}}), nil
}

// validateProviderState always asks for setup before and teardown after
// each interaction.
func validateProviderState(opts *config.Resolved, _ ports.FileSystem) (validation, error) {
	if opts.ProviderStatesSetupURL == "" {
		return notApplicable(), nil
	}
	stateURL := opts.ProviderStatesSetupURL
	return applicable(call{op: "set_provider_state", invoke: func(e ports.VerifierSetup, h *ports.SessionHandle) error {
		return e.SetProviderState(h, stateURL, true, true)
	}}), nil
}

func validateVerificationOptions(opts *config.Resolved, _ ports.FileSystem) (validation, error) {
	if !opts.DisableSSLVerification && opts.TimeoutMillis == 0 {
		return notApplicable(), nil
	}
	timeout := opts.TimeoutMillis
	if timeout == 0 {
		timeout = config.DefaultTimeoutMillis
	}
	disableSSL := opts.DisableSSLVerification
	return applicable(call{op: "set_verification_options", invoke: func(e ports.VerifierSetup, h *ports.SessionHandle) error {
		return e.SetVerificationOptions(h, disableSSL, timeout)
	}}), nil
}

// validatePublishOptions needs both a publish request and a provider version.
func validatePublishOptions(opts *config.Resolved, _ ports.FileSystem) (validation, error) {
	if !opts.PublishResults || opts.ProviderVersion == "" {
		return notApplicable(), nil
	}
	version, buildURL, branch := opts.ProviderVersion, opts.BuildURL, opts.Branch()
	tags := nonNil(opts.ProviderVersionTags)
	return applicable(call{op: "set_publish_options", invoke: func(e ports.VerifierSetup, h *ports.SessionHandle) error {
		return e.SetPublishOptions(h, version, buildURL, tags, branch)
	}}), nil
}

func validateConsumerFilters(opts *config.Resolved, _ ports.FileSystem) (validation, error) {
	if len(opts.ConsumerFilters) == 0 {
		return notApplicable(), nil
	}
	consumers := opts.ConsumerFilters
	return applicable(call{op: "set_consumer_filters", invoke: func(e ports.VerifierSetup, h *ports.SessionHandle) error {
		return e.SetConsumerFilters(h, consumers)
	}}), nil
}

// validateCustomHeaders checks list entries one by one. Mapping pairs need no
// validation. Values are passed through untrimmed.
func validateCustomHeaders(opts *config.Resolved, _ ports.FileSystem) (validation, error) {
	headers := opts.CustomProviderHeaders
	if headers.Len() == 0 {
		return notApplicable(), nil
	}

	v := applicable()
	if headers.IsMapping() {
		for _, pair := range headers.Pairs() {
			v.add(headerCall(pair.Name, pair.Value))
		}
		return v, nil
	}

	for _, entry := range headers.Entries() {
		name, value, ok := splitHeader(entry)
		if !ok {
			v.reject(NewCustomHeaderInvalidError(entry))
			continue
		}
		v.add(headerCall(name, value))
	}
	return v, nil
}

// splitHeader splits on every colon and requires exactly two parts.
func splitHeader(entry string) (name, value string, ok bool) {
	parts := strings.Split(entry, ":")
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}

func headerCall(name, value string) call {
	return call{op: "add_custom_header", invoke: func(e ports.VerifierSetup, h *ports.SessionHandle) error {
		return e.AddCustomHeader(h, name, value)
	}}
}

// validateDirectorySource classifies each configured location and merges the
// valid ones onto their engine call.
func validateDirectorySource(opts *config.Resolved, fs ports.FileSystem) (validation, error) {
	if len(opts.PactURLs) == 0 {
		return notApplicable(), nil
	}

	v := applicable()
	for _, location := range opts.PactURLs {
		kind, err := Classify(fs, location)
		if err != nil {
			v.reject(asDescriptorError(err, DirectorySource))
			continue
		}
		v.add(mergeSource(kind, location, opts))
	}
	return v, nil
}

// validateBrokerSource needs a broker URL and a provider name. Each selector
// is passed as its own JSON token.
func validateBrokerSource(opts *config.Resolved, _ ports.FileSystem) (validation, error) {
	if opts.PactBrokerURL == "" || opts.Provider == "" {
		return notApplicable(), nil
	}

	v := applicable()
	selectors := make([]string, 0, len(opts.ConsumerVersionSelectors))
	for i, selector := range opts.ConsumerVersionSelectors {
		token, err := selector.Canonical()
		if err != nil {
			v.reject(NewSelectorInvalidError(i, err))
			continue
		}
		selectors = append(selectors, token)
	}

	brokerURL := opts.PactBrokerURL
	username, password, token := opts.PactBrokerUsername, opts.PactBrokerPassword, opts.PactBrokerToken
	pending, wipSince, branch := opts.EnablePending, opts.IncludeWIPPactsSince, opts.Branch()
	providerTags := nonNil(opts.ProviderVersionTags)
	consumerTags := nonNil(opts.ConsumerVersionTags)

	v.add(call{op: "broker_source_with_selectors", invoke: func(e ports.VerifierSetup, h *ports.SessionHandle) error {
		return e.BrokerSourceWithSelectors(h, brokerURL, username, password, token,
			pending, wipSince, providerTags, branch, selectors, consumerTags)
	}})
	return v, nil
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

func asDescriptorError(err error, name FunctionName) *DescriptorError {
	if de, ok := err.(*DescriptorError); ok {
		return de
	}
	return NewDescriptorError(ErrCodeSourceUnresolved, err.Error()).WithDescriptor(name)
}
