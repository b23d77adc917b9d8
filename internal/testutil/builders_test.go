package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/felixgeelhaar/pactverify/internal/domain/config"
)

func TestOptionsBuilder_ToYAML(t *testing.T) {
	t.Parallel()

	got := NewOptionsBuilder("orders").
		WithBaseURL("http://localhost:8080").
		WithPactURLs("./pacts").
		WithHeaders("X-Trace: on").
		WithSelectors(config.ConsumerVersionSelector{MainBranch: true}).
		ToYAML()

	AssertYAMLEquals(t, `
provider: orders
providerBaseUrl: http://localhost:8080
pactUrls: [./pacts]
customProviderHeaders: ["X-Trace: on"]
consumerVersionSelectors:
  - mainBranch: true
`, got)
}

func TestOptionsBuilder_Build(t *testing.T) {
	t.Parallel()

	opts := NewOptionsBuilder("orders").WithPublish("1.0.0", "main").WithTimeout(500).Build()

	assert.Equal(t, "orders", opts.Provider)
	assert.True(t, opts.PublishVerificationResult)
	assert.Equal(t, []string{"main"}, opts.ProviderVersionTags)
	assert.Equal(t, uint64(500), opts.TimeoutMillis)
}

func TestLoadFixture(t *testing.T) {
	t.Parallel()

	assert.Contains(t, string(LoadFixture(t, "verify.yaml")), "provider: orders")
	path := WriteFixtureToDir(t, t.TempDir(), "credentials.ini", "credentials")
	assert.FileExists(t, path)
}
