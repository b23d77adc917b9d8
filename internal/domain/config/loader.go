package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// document is the on-disk shape of a verification options file. Keys follow
// the camelCase names used by pact tooling.
type document struct {
	Provider        string   `yaml:"provider" toml:"provider"`
	ProviderBaseURL string   `yaml:"providerBaseUrl" toml:"providerBaseUrl"`
	PactURLs        []string `yaml:"pactUrls" toml:"pactUrls"`

	PactBrokerURL      string `yaml:"pactBrokerUrl" toml:"pactBrokerUrl"`
	PactBrokerUsername string `yaml:"pactBrokerUsername" toml:"pactBrokerUsername"`
	PactBrokerPassword string `yaml:"pactBrokerPassword" toml:"pactBrokerPassword"`
	PactBrokerToken    string `yaml:"pactBrokerToken" toml:"pactBrokerToken"`

	ProviderStatesSetupURL string `yaml:"providerStatesSetupUrl" toml:"providerStatesSetupUrl"`

	FilterDescription string `yaml:"filterDescription" toml:"filterDescription"`
	FilterState       string `yaml:"filterState" toml:"filterState"`
	FilterNoState     bool   `yaml:"filterNoState" toml:"filterNoState"`

	DisableSSLVerification bool   `yaml:"disableSslVerification" toml:"disableSslVerification"`
	Timeout                uint64 `yaml:"timeout" toml:"timeout"`

	PublishVerificationResult bool     `yaml:"publishVerificationResult" toml:"publishVerificationResult"`
	ProviderVersion           string   `yaml:"providerVersion" toml:"providerVersion"`
	BuildURL                  string   `yaml:"buildUrl" toml:"buildUrl"`
	ProviderVersionTags       []string `yaml:"providerVersionTags" toml:"providerVersionTags"`
	ProviderVersionBranch     string   `yaml:"providerVersionBranch" toml:"providerVersionBranch"`
	ProviderBranch            string   `yaml:"providerBranch" toml:"providerBranch"`

	ConsumerFilters       []string    `yaml:"consumerFilters" toml:"consumerFilters"`
	CustomProviderHeaders interface{} `yaml:"customProviderHeaders" toml:"customProviderHeaders"`

	ConsumerVersionSelectors []ConsumerVersionSelector `yaml:"consumerVersionSelectors" toml:"consumerVersionSelectors"`
	ConsumerVersionTags      []string                  `yaml:"consumerVersionTags" toml:"consumerVersionTags"`
	EnablePending            bool                      `yaml:"enablePending" toml:"enablePending"`
	IncludeWIPPactsSince     string                    `yaml:"includeWipPactsSince" toml:"includeWipPactsSince"`
}

func (d document) options() (VerificationOptions, error) {
	headers, err := NewCustomHeaders(d.CustomProviderHeaders)
	if err != nil {
		return VerificationOptions{}, err
	}

	return VerificationOptions{
		Provider:                  d.Provider,
		ProviderBaseURL:           d.ProviderBaseURL,
		PactURLs:                  d.PactURLs,
		PactBrokerURL:             d.PactBrokerURL,
		PactBrokerUsername:        d.PactBrokerUsername,
		PactBrokerPassword:        d.PactBrokerPassword,
		PactBrokerToken:           d.PactBrokerToken,
		ProviderStatesSetupURL:    d.ProviderStatesSetupURL,
		FilterDescription:         d.FilterDescription,
		FilterState:               d.FilterState,
		FilterNoState:             d.FilterNoState,
		DisableSSLVerification:    d.DisableSSLVerification,
		TimeoutMillis:             d.Timeout,
		PublishVerificationResult: d.PublishVerificationResult,
		ProviderVersion:           d.ProviderVersion,
		BuildURL:                  d.BuildURL,
		ProviderVersionTags:       d.ProviderVersionTags,
		ProviderVersionBranch:     d.ProviderVersionBranch,
		ProviderBranch:            d.ProviderBranch,
		ConsumerFilters:           d.ConsumerFilters,
		CustomProviderHeaders:     headers,
		ConsumerVersionSelectors:  d.ConsumerVersionSelectors,
		ConsumerVersionTags:       d.ConsumerVersionTags,
		EnablePending:             d.EnablePending,
		IncludeWIPPactsSince:      d.IncludeWIPPactsSince,
	}, nil
}

// Format is a supported options file syntax.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFor picks a format from the file extension. JSON is decoded by the
// YAML parser, which accepts it as a subset.
func FormatFor(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return FormatYAML, true
	case ".toml":
		return FormatTOML, true
	default:
		return "", false
	}
}

// Loader loads verification options from the filesystem.
type Loader struct{}

// NewLoader creates a new Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads and decodes the options file at path.
func (l *Loader) Load(path string) (VerificationOptions, error) {
	format, ok := FormatFor(path)
	if !ok {
		return VerificationOptions{}, NewUnsupportedFormatError(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return VerificationOptions{}, NewConfigNotFoundError(path)
		}
		return VerificationOptions{}, err
	}

	opts, err := Parse(data, format)
	if err != nil {
		var userErr *UserError
		if errors.As(err, &userErr) {
			return VerificationOptions{}, err
		}
		return VerificationOptions{}, NewConfigParseError(path, err)
	}
	return opts, nil
}

// Parse decodes options from raw bytes in the given format.
func Parse(data []byte, format Format) (VerificationOptions, error) {
	var doc document

	switch format {
	case FormatYAML:
		if len(bytes.TrimSpace(data)) == 0 {
			return VerificationOptions{}, nil
		}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return VerificationOptions{}, err
		}
	case FormatTOML:
		if err := toml.Unmarshal(data, &doc); err != nil {
			return VerificationOptions{}, err
		}
	default:
		return VerificationOptions{}, NewUnsupportedFormatError(string(format))
	}

	return doc.options()
}
