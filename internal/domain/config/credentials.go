package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/ini.v1"
)

// DefaultProfile is the credentials profile used when none is named.
const DefaultProfile = "default"

// Credentials are broker credentials read from a profile file. They rank
// below both explicit options and environment variables.
type Credentials struct {
	BrokerURL string
	Username  string
	Password  string
	Token     string
}

// LoadCredentials reads one profile from an INI credentials file:
//
//	[default]
//	broker_url = https://broker.example.com
//	token      = abc123
//
// An empty path yields empty credentials.
func LoadCredentials(path, profile string) (Credentials, error) {
	if path == "" {
		return Credentials{}, nil
	}
	if profile == "" {
		profile = DefaultProfile
	}

	file, err := ini.Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Credentials{}, &UserError{
				Code:       ErrCodeCredentialsNotFound,
				Message:    "credentials file not found",
				Context:    path,
				Suggestion: "Check the path passed with --credentials.",
				Underlying: err,
			}
		}
		return Credentials{}, &UserError{
			Code:       ErrCodeCredentialsInvalid,
			Message:    "failed to parse credentials file",
			Context:    path,
			Suggestion: "Credentials files use INI syntax with one [profile] section per broker.",
			Underlying: err,
		}
	}

	section, err := file.GetSection(profile)
	if err != nil {
		return Credentials{}, &UserError{
			Code:       ErrCodeProfileNotFound,
			Message:    fmt.Sprintf("credentials profile %q not found", profile),
			Context:    path,
			Suggestion: "Add the section to the credentials file or pass a different --profile.",
			Underlying: err,
		}
	}

	return Credentials{
		BrokerURL: section.Key("broker_url").String(),
		Username:  section.Key("username").String(),
		Password:  section.Key("password").String(),
		Token:     section.Key("token").String(),
	}, nil
}
