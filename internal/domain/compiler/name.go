package compiler

import (
	"errors"
	"strings"
)

// FunctionName identifies one logical setup call of the native verifier.
// The set is closed.
type FunctionName string

const (
	ProviderInfo              FunctionName = "provider_info"
	FilterInfo                FunctionName = "filter_info"
	ProviderState             FunctionName = "provider_state"
	VerificationOptions       FunctionName = "verification_options"
	PublishOptions            FunctionName = "publish_options"
	ConsumerFilters           FunctionName = "consumer_filters"
	CustomHeader              FunctionName = "custom_header"
	DirectorySource           FunctionName = "directory_source"
	BrokerSourceWithSelectors FunctionName = "broker_source_with_selectors"
)

// ErrUnknownFunctionName is returned when parsing a name outside the closed set.
var ErrUnknownFunctionName = errors.New("unknown setup function name")

var knownNames = map[FunctionName]bool{
	ProviderInfo:              true,
	FilterInfo:                true,
	ProviderState:             true,
	VerificationOptions:       true,
	PublishOptions:            true,
	ConsumerFilters:           true,
	CustomHeader:              true,
	DirectorySource:           true,
	BrokerSourceWithSelectors: true,
}

// ParseFunctionName accepts snake_case or kebab-case names.
func ParseFunctionName(value string) (FunctionName, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(value)), "-", "_")
	name := FunctionName(normalized)
	if !knownNames[name] {
		return "", ErrUnknownFunctionName
	}
	return name, nil
}

// String returns the string representation.
func (n FunctionName) String() string {
	return string(n)
}

// IsKnown reports whether n belongs to the closed set.
func (n FunctionName) IsKnown() bool {
	return knownNames[n]
}
