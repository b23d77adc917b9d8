package compiler

// Explanation describes what a setup call does and when it applies.
// Used by `pactverify plan --explain`.
type Explanation struct {
	summary   string
	appliesIf string
	call      string
}

// Explain returns the explanation for name. Unknown names yield an empty
// Explanation.
func Explain(name FunctionName) Explanation {
	return explanations[name]
}

var explanations = map[FunctionName]Explanation{
	ProviderInfo: {
		summary:   "Registers the provider name and the scheme, host, port and path requests are sent to.",
		appliesIf: "always",
		call:      "set_provider_info",
	},
	FilterInfo: {
		summary:   "Restricts verification to interactions matching a description or provider state.",
		appliesIf: "a description, state or no-state filter is set by option or PACT_DESCRIPTION, PACT_PROVIDER_STATE, PACT_PROVIDER_NO_STATE",
		call:      "set_filter_info",
	},
	ProviderState: {
		summary:   "Calls the state setup URL before each interaction and again for teardown.",
		appliesIf: "providerStatesSetupUrl is set",
		call:      "set_provider_state",
	},
	VerificationOptions: {
		summary:   "Controls TLS verification and the per-request timeout (default 30000 ms).",
		appliesIf: "disableSslVerification is true or timeout is set",
		call:      "set_verification_options",
	},
	PublishOptions: {
		summary:   "Publishes results to the broker under the given provider version, tags and branch.",
		appliesIf: "publishing is requested and providerVersion is set",
		call:      "set_publish_options",
	},
	ConsumerFilters: {
		summary:   "Only verifies pacts from the named consumers.",
		appliesIf: "consumerFilters is non-empty",
		call:      "set_consumer_filters",
	},
	CustomHeader: {
		summary:   "Adds a header to every request replayed against the provider.",
		appliesIf: "customProviderHeaders has entries",
		call:      "add_custom_header",
	},
	DirectorySource: {
		summary:   "Adds each pact source as a URL, directory or file source.",
		appliesIf: "pactUrls is non-empty",
		call:      "url_source | add_directory_source | add_file_source",
	},
	BrokerSourceWithSelectors: {
		summary:   "Fetches pacts for the provider from a broker using consumer version selectors.",
		appliesIf: "a broker URL and a provider name are set",
		call:      "broker_source_with_selectors",
	},
}

// Summary returns a brief description of what the call does.
func (e Explanation) Summary() string {
	return e.summary
}

// AppliesIf describes the configuration that makes the call applicable.
func (e Explanation) AppliesIf() string {
	return e.appliesIf
}

// Call names the native call or calls issued.
func (e Explanation) Call() string {
	return e.call
}

// IsEmpty returns true if this explanation has no content.
func (e Explanation) IsEmpty() bool {
	return e.summary == "" && e.appliesIf == ""
}
