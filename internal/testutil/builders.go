package testutil

import (
	"encoding/json"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/pactverify/internal/domain/config"
)

// OptionsBuilder builds verification options and the matching options file.
type OptionsBuilder struct {
	opts config.VerificationOptions
}

// NewOptionsBuilder creates a builder for the named provider.
func NewOptionsBuilder(provider string) *OptionsBuilder {
	return &OptionsBuilder{opts: config.VerificationOptions{Provider: provider}}
}

// WithBaseURL sets the provider base URL.
func (b *OptionsBuilder) WithBaseURL(u string) *OptionsBuilder {
	b.opts.ProviderBaseURL = u
	return b
}

// WithPactURLs appends pact sources.
func (b *OptionsBuilder) WithPactURLs(urls ...string) *OptionsBuilder {
	b.opts.PactURLs = append(b.opts.PactURLs, urls...)
	return b
}

// WithBroker sets the broker URL and token.
func (b *OptionsBuilder) WithBroker(u, token string) *OptionsBuilder {
	b.opts.PactBrokerURL = u
	b.opts.PactBrokerToken = token
	return b
}

// WithStateSetup sets the provider state change URL.
func (b *OptionsBuilder) WithStateSetup(u string) *OptionsBuilder {
	b.opts.ProviderStatesSetupURL = u
	return b
}

// WithTimeout sets the request timeout in milliseconds.
func (b *OptionsBuilder) WithTimeout(ms uint64) *OptionsBuilder {
	b.opts.TimeoutMillis = ms
	return b
}

// WithPublish requests publishing under version.
func (b *OptionsBuilder) WithPublish(version string, tags ...string) *OptionsBuilder {
	b.opts.PublishVerificationResult = true
	b.opts.ProviderVersion = version
	b.opts.ProviderVersionTags = tags
	return b
}

// WithHeaders sets list-form custom headers.
func (b *OptionsBuilder) WithHeaders(entries ...string) *OptionsBuilder {
	b.opts.CustomProviderHeaders = config.HeaderList(entries...)
	return b
}

// WithSelectors appends consumer version selectors.
func (b *OptionsBuilder) WithSelectors(selectors ...config.ConsumerVersionSelector) *OptionsBuilder {
	b.opts.ConsumerVersionSelectors = append(b.opts.ConsumerVersionSelectors, selectors...)
	return b
}

// Build returns the options.
func (b *OptionsBuilder) Build() config.VerificationOptions {
	return b.opts
}

// ToYAML renders the options as an options file. Only set fields are written.
func (b *OptionsBuilder) ToYAML() string {
	doc := map[string]interface{}{}
	set := func(key string, v interface{}, ok bool) {
		if ok {
			doc[key] = v
		}
	}

	o := b.opts
	set("provider", o.Provider, o.Provider != "")
	set("providerBaseUrl", o.ProviderBaseURL, o.ProviderBaseURL != "")
	set("pactUrls", o.PactURLs, len(o.PactURLs) > 0)
	set("pactBrokerUrl", o.PactBrokerURL, o.PactBrokerURL != "")
	set("pactBrokerToken", o.PactBrokerToken, o.PactBrokerToken != "")
	set("providerStatesSetupUrl", o.ProviderStatesSetupURL, o.ProviderStatesSetupURL != "")
	set("timeout", o.TimeoutMillis, o.TimeoutMillis > 0)
	set("publishVerificationResult", true, o.PublishVerificationResult)
	set("providerVersion", o.ProviderVersion, o.ProviderVersion != "")
	set("providerVersionTags", o.ProviderVersionTags, len(o.ProviderVersionTags) > 0)
	set("customProviderHeaders", o.CustomProviderHeaders.Entries(), o.CustomProviderHeaders.Len() > 0)
	set("consumerVersionSelectors", selectorMaps(o.ConsumerVersionSelectors), len(o.ConsumerVersionSelectors) > 0)

	out, err := yaml.Marshal(doc)
	if err != nil {
		panic(err)
	}
	return string(out)
}

// selectorMaps drops unset selector fields using their omitempty JSON tags.
func selectorMaps(selectors []config.ConsumerVersionSelector) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(selectors))
	for _, s := range selectors {
		raw, err := json.Marshal(s)
		if err != nil {
			panic(err)
		}
		var m map[string]interface{}
		if err := json.Unmarshal(raw, &m); err != nil {
			panic(err)
		}
		out = append(out, m)
	}
	return out
}
