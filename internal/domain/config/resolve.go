package config

// Resolved is VerificationOptions with every environment and credentials
// fallback applied. It is the only input the setup compiler reads.
type Resolved struct {
	VerificationOptions

	// PublishResults is true when publishing was requested by option or by
	// PACT_BROKER_PUBLISH_VERIFICATION_RESULTS.
	PublishResults bool
}

// Resolve applies fallbacks in precedence order: explicit option, then
// environment variable, then credentials profile. The input is not modified.
func Resolve(opts VerificationOptions, env Environment, creds Credentials) *Resolved {
	r := &Resolved{VerificationOptions: opts}

	r.PactBrokerURL = firstNonEmpty(opts.PactBrokerURL, lookupString(env, EnvBrokerBaseURL), creds.BrokerURL)
	r.PactBrokerUsername = firstNonEmpty(opts.PactBrokerUsername, lookupString(env, EnvBrokerUsername), creds.Username)
	r.PactBrokerPassword = firstNonEmpty(opts.PactBrokerPassword, lookupString(env, EnvBrokerPassword), creds.Password)
	r.PactBrokerToken = firstNonEmpty(opts.PactBrokerToken, lookupString(env, EnvBrokerToken), creds.Token)

	r.FilterDescription = firstNonEmpty(opts.FilterDescription, lookupString(env, EnvFilterDescription))
	r.FilterState = firstNonEmpty(opts.FilterState, lookupString(env, EnvFilterState))
	r.FilterNoState = opts.FilterNoState || lookupFlag(env, EnvFilterNoState)

	r.PublishResults = opts.PublishVerificationResult || lookupFlag(env, EnvPublishResults)

	r.PactURLs = cloneStrings(opts.PactURLs)
	r.ConsumerFilters = cloneStrings(opts.ConsumerFilters)
	r.ProviderVersionTags = cloneStrings(opts.ProviderVersionTags)
	r.ConsumerVersionTags = cloneStrings(opts.ConsumerVersionTags)
	if opts.ConsumerVersionSelectors != nil {
		r.ConsumerVersionSelectors = append([]ConsumerVersionSelector(nil), opts.ConsumerVersionSelectors...)
	}

	return r
}

// HasFilters reports whether any interaction filter is set.
func (r *Resolved) HasFilters() bool {
	return r.FilterDescription != "" || r.FilterState != "" || r.FilterNoState
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}
