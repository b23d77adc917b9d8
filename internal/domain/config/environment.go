package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Environment variables consulted as fallbacks for explicit options.
const (
	EnvBrokerBaseURL     = "PACT_BROKER_BASE_URL"
	EnvBrokerUsername    = "PACT_BROKER_USERNAME"
	EnvBrokerPassword    = "PACT_BROKER_PASSWORD"
	EnvBrokerToken       = "PACT_BROKER_TOKEN"
	EnvPublishResults    = "PACT_BROKER_PUBLISH_VERIFICATION_RESULTS"
	EnvFilterDescription = "PACT_DESCRIPTION"
	EnvFilterState       = "PACT_PROVIDER_STATE"
	EnvFilterNoState     = "PACT_PROVIDER_NO_STATE"
)

// Environment is a read-only key/value lookup.
type Environment interface {
	Lookup(key string) (string, bool)
}

// MapEnvironment is an Environment backed by a map. Useful in tests.
type MapEnvironment map[string]string

// Lookup implements Environment.
func (m MapEnvironment) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

type processEnvironment struct{}

func (processEnvironment) Lookup(key string) (string, bool) {
	return os.LookupEnv(key)
}

// ProcessEnvironment returns the current process environment.
func ProcessEnvironment() Environment {
	return processEnvironment{}
}

// Layered consults each environment in order and returns the first hit.
type Layered []Environment

// Lookup implements Environment.
func (l Layered) Lookup(key string) (string, bool) {
	for _, env := range l {
		if env == nil {
			continue
		}
		if v, ok := env.Lookup(key); ok {
			return v, true
		}
	}
	return "", false
}

// NewEnvironment returns the process environment layered over the variables
// of an optional dotenv file. The process environment is never modified.
func NewEnvironment(dotenvPath string) (Environment, error) {
	if dotenvPath == "" {
		return ProcessEnvironment(), nil
	}

	vars, err := godotenv.Read(dotenvPath)
	if err != nil {
		return nil, &UserError{
			Code:       ErrCodeEnvFileInvalid,
			Message:    "failed to read env file",
			Context:    dotenvPath,
			Suggestion: "Check that the file exists and uses KEY=value lines.",
			Underlying: err,
		}
	}

	return Layered{ProcessEnvironment(), MapEnvironment(vars)}, nil
}

// lookupString returns the variable when it is set to a non-empty value.
func lookupString(env Environment, key string) string {
	if env == nil {
		return ""
	}
	v, _ := env.Lookup(key)
	return v
}

// lookupFlag reports whether the variable is set to any non-empty value.
// The value is not parsed: "false" and "0" count as set.
func lookupFlag(env Environment, key string) bool {
	return lookupString(env, key) != ""
}
