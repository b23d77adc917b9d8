package mockservice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/pactverify/internal/domain/config"
)

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{name: "default is valid", mutate: func(*Config) {}},
		{name: "ip host is valid", mutate: func(c *Config) { c.Host = "127.0.0.1" }},
		{name: "missing binary", mutate: func(c *Config) { c.Binary = "" }, wantField: "Binary"},
		{name: "missing host", mutate: func(c *Config) { c.Host = "" }, wantField: "Host"},
		{name: "bad host", mutate: func(c *Config) { c.Host = "not a host!" }, wantField: "Host"},
		{name: "port zero", mutate: func(c *Config) { c.Port = 0 }, wantField: "Port"},
		{name: "port too large", mutate: func(c *Config) { c.Port = 70000 }, wantField: "Port"},
		{name: "zero poll interval", mutate: func(c *Config) { c.PollInterval = 0 }, wantField: "PollInterval"},
		{name: "zero attempts", mutate: func(c *Config) { c.MaxAttempts = 0 }, wantField: "MaxAttempts"},
		{name: "negative start timeout", mutate: func(c *Config) { c.StartTimeout = -time.Second }, wantField: "StartTimeout"},
		{name: "zero stop timeout", mutate: func(c *Config) { c.StopTimeout = 0 }, wantField: "StopTimeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig(8080)
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.True(t, config.IsUserError(err, config.ErrCodeConfigInvalid))
			ue := config.GetUserError(err)
			require.NotNil(t, ue)
			assert.Equal(t, tt.wantField, ue.Context)
		})
	}
}

func TestConfig_Addresses(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig(1234)
	assert.Equal(t, "localhost:1234", cfg.Address())
	assert.Equal(t, "http://localhost:1234/", cfg.BaseURL())
}

func TestConfig_ValidateMessage(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig(0)
	err := cfg.Validate()
	require.Error(t, err)
	assert.Equal(t, "Port: must be at least 1 (at Port)", err.Error())
}
