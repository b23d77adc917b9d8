package mockservice

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/felixgeelhaar/pactverify/internal/domain/config"
)

// DefaultBinary is the mock service executable looked up on PATH.
const DefaultBinary = "pact-stub-service"

// Config describes how to launch and supervise a mock service process.
type Config struct {
	// Binary is the executable to spawn.
	Binary string `yaml:"binary" validate:"required"`
	// Args are passed to the binary unchanged.
	Args []string `yaml:"args"`
	// Host is where the service is expected to listen.
	Host string `yaml:"host" validate:"required,hostname|ip"`
	// Port is where the service is expected to listen.
	Port int `yaml:"port" validate:"min=1,max=65535"`

	// PollInterval is the delay between health checks.
	PollInterval time.Duration `yaml:"poll_interval" validate:"gt=0"`
	// MaxAttempts bounds the number of health checks while starting.
	MaxAttempts int `yaml:"max_attempts" validate:"min=1"`
	// StartTimeout bounds the whole start sequence.
	StartTimeout time.Duration `yaml:"start_timeout" validate:"gt=0"`
	// StopTimeout bounds the wait for the service to go down.
	StopTimeout time.Duration `yaml:"stop_timeout" validate:"gt=0"`
}

// DefaultConfig returns a configuration for a service on localhost:port.
func DefaultConfig(port int) Config {
	return Config{
		Binary:       DefaultBinary,
		Host:         "localhost",
		Port:         port,
		PollInterval: 100 * time.Millisecond,
		MaxAttempts:  50,
		StartTimeout: 10 * time.Second,
		StopTimeout:  5 * time.Second,
	}
}

// Address returns host:port.
func (c Config) Address() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// BaseURL returns the root URL polled for health.
func (c Config) BaseURL() string {
	return "http://" + c.Address() + "/"
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks the configuration. The first failing field is reported
// as a CONFIG_INVALID user error.
func (c Config) Validate() error {
	err := structValidator().Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return config.NewConfigInvalidError(fe.Field(), describeTag(fe)).
			WithSuggestion("Check the mock service flags").
			WithUnderlying(err)
	}
	return config.NewConfigInvalidError("mock service", err.Error()).WithUnderlying(err)
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return "must be positive"
	case "hostname|ip":
		return "must be a hostname or IP address"
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}
