package main

import (
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/pactverify/internal/app"
	"github.com/felixgeelhaar/pactverify/internal/domain/config"
)

// optionFlags are the verification options that can be given on the
// command line. Set values override the options file.
type optionFlags struct {
	provider          string
	providerBaseURL   string
	providerVersion   string
	pactURLs          []string
	brokerURL         string
	stateSetupURL     string
	filterDescription string
	filterState       string
	filterNoState     bool
	consumers         []string
	headers           []string
	publish           bool
	enablePending     bool
}

func (f *optionFlags) bind(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.provider, "provider", "", "provider name")
	flags.StringVar(&f.providerBaseURL, "provider-base-url", "", "base URL the provider listens on")
	flags.StringVar(&f.providerVersion, "provider-version", "", "provider application version")
	flags.StringSliceVar(&f.pactURLs, "pact-url", nil, "pact file, directory or URL (repeatable)")
	flags.StringVar(&f.brokerURL, "broker-url", "", "pact broker base URL")
	flags.StringVar(&f.stateSetupURL, "provider-states-setup-url", "", "provider state change URL")
	flags.StringVar(&f.filterDescription, "filter-description", "", "only verify interactions matching this description")
	flags.StringVar(&f.filterState, "filter-state", "", "only verify interactions with this provider state")
	flags.BoolVar(&f.filterNoState, "filter-no-state", false, "only verify interactions without a provider state")
	flags.StringSliceVar(&f.consumers, "consumer", nil, "only verify pacts from this consumer (repeatable)")
	flags.StringArrayVar(&f.headers, "header", nil, "custom provider header as 'Name: Value' (repeatable)")
	flags.BoolVar(&f.publish, "publish", false, "publish verification results to the broker")
	flags.BoolVar(&f.enablePending, "enable-pending", false, "enable pending pacts")
}

func (f *optionFlags) options() config.VerificationOptions {
	opts := config.VerificationOptions{
		Provider:                  f.provider,
		ProviderBaseURL:           f.providerBaseURL,
		ProviderVersion:           f.providerVersion,
		PactURLs:                  f.pactURLs,
		PactBrokerURL:             f.brokerURL,
		ProviderStatesSetupURL:    f.stateSetupURL,
		FilterDescription:         f.filterDescription,
		FilterState:               f.filterState,
		FilterNoState:             f.filterNoState,
		ConsumerFilters:           f.consumers,
		PublishVerificationResult: f.publish,
		EnablePending:             f.enablePending,
	}
	if len(f.headers) > 0 {
		opts.CustomProviderHeaders = config.HeaderList(f.headers...)
	}
	return opts
}

// sources returns where the global flags say options come from.
func sources() app.Sources {
	return app.Sources{
		ConfigPath:      cfgFile,
		EnvFile:         envFile,
		CredentialsPath: credsFile,
		Profile:         profile,
	}
}
