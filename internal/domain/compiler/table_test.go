package compiler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/pactverify/internal/domain/config"
	"github.com/felixgeelhaar/pactverify/internal/ports"
	"github.com/felixgeelhaar/pactverify/internal/testutil/mocks"
)

func resolved(opts config.VerificationOptions) *config.Resolved {
	return config.Resolve(opts, config.MapEnvironment{}, config.Credentials{})
}

func runDescriptor(t *testing.T, name FunctionName, opts *config.Resolved, fs ports.FileSystem, engine *mocks.Engine) Outcome {
	t.Helper()
	if fs == nil {
		fs = mocks.NewFileSystem()
	}
	d := descriptor{name: name, validate: descriptorTable[name]}
	outcome, err := d.ValidateAndExecute(Input{
		Engine:  engine,
		Handle:  ports.NewSessionHandle("session-1"),
		Options: opts,
		FS:      fs,
	})
	require.NoError(t, err)
	assert.Equal(t, name, outcome.Name)
	return outcome
}

func TestProviderInfo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		baseURL  string
		expected []interface{}
	}{
		{"explicit port", "http://localhost:8080/", []interface{}{"P", "http", "localhost", uint16(8080), "/"}},
		{"https default port", "https://api.example.com", []interface{}{"P", "https", "api.example.com", uint16(443), ""}},
		{"http default port with path", "http://orders.internal/api/v1", []interface{}{"P", "http", "orders.internal", uint16(80), "/api/v1"}},
		{"ipv6 host", "http://[::1]:9000/", []interface{}{"P", "http", "::1", uint16(9000), "/"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			engine := mocks.NewEngine()
			outcome := runDescriptor(t, ProviderInfo,
				resolved(config.VerificationOptions{Provider: "P", ProviderBaseURL: tt.baseURL}), nil, engine)

			assert.Equal(t, StatusSuccess, outcome.Status)
			calls := engine.CallsTo("set_provider_info")
			require.Len(t, calls, 1)
			assert.Equal(t, tt.expected, calls[0].Args)
		})
	}
}

func TestProviderInfo_UnparsableURLAborts(t *testing.T) {
	t.Parallel()

	for _, baseURL := range []string{
		"http://[::1",
		"http://host:abc/",
		"http://host:70000/",
		"",
		"not a url",
		"localhost:8080",
		"/relative/path",
		"http:///no-host",
	} {
		t.Run(baseURL, func(t *testing.T) {
			t.Parallel()
			engine := mocks.NewEngine()
			d := descriptor{name: ProviderInfo, validate: descriptorTable[ProviderInfo]}

			_, err := d.ValidateAndExecute(Input{
				Engine:  engine,
				Handle:  ports.NewSessionHandle("s"),
				Options: resolved(config.VerificationOptions{ProviderBaseURL: baseURL}),
			})

			require.Error(t, err)
			assert.ErrorIs(t, err, &DescriptorError{Code: ErrCodeProviderURLInvalid})
			assert.True(t, IsProviderURLInvalid(err))
			assert.Empty(t, engine.Calls())
		})
	}
}

func TestFilterInfo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		opts     config.VerificationOptions
		env      config.MapEnvironment
		status   Status
		expected []interface{}
	}{
		{name: "nothing set", status: StatusIgnore},
		{
			name:     "description option",
			opts:     config.VerificationOptions{FilterDescription: "a request for orders"},
			status:   StatusSuccess,
			expected: []interface{}{"a request for orders", "", false},
		},
		{
			name:     "state from env",
			env:      config.MapEnvironment{config.EnvFilterState: "orders exist"},
			status:   StatusSuccess,
			expected: []interface{}{"", "orders exist", false},
		},
		{
			name:     "no state from env",
			env:      config.MapEnvironment{config.EnvFilterNoState: "true"},
			status:   StatusSuccess,
			expected: []interface{}{"", "", true},
		},
		{
			name:     "no state env set to false still counts",
			env:      config.MapEnvironment{config.EnvFilterNoState: "false"},
			status:   StatusSuccess,
			expected: []interface{}{"", "", true},
		},
		{
			name:   "empty env values are unset",
			env:    config.MapEnvironment{config.EnvFilterDescription: "", config.EnvFilterState: ""},
			status: StatusIgnore,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			engine := mocks.NewEngine()
			opts := config.Resolve(tt.opts, tt.env, config.Credentials{})
			outcome := runDescriptor(t, FilterInfo, opts, nil, engine)

			assert.Equal(t, tt.status, outcome.Status)
			calls := engine.CallsTo("set_filter_info")
			if tt.expected == nil {
				assert.Empty(t, calls)
				return
			}
			require.Len(t, calls, 1)
			assert.Equal(t, tt.expected, calls[0].Args)
		})
	}
}

func TestProviderState(t *testing.T) {
	t.Parallel()

	engine := mocks.NewEngine()
	outcome := runDescriptor(t, ProviderState, resolved(config.VerificationOptions{}), nil, engine)
	assert.Equal(t, StatusIgnore, outcome.Status)

	outcome = runDescriptor(t, ProviderState,
		resolved(config.VerificationOptions{ProviderStatesSetupURL: "http://localhost:8080/_states"}), nil, engine)
	assert.Equal(t, StatusSuccess, outcome.Status)

	calls := engine.CallsTo("set_provider_state")
	require.Len(t, calls, 1)
	assert.Equal(t, []interface{}{"http://localhost:8080/_states", true, true}, calls[0].Args)
}

func TestVerificationOptions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		opts     config.VerificationOptions
		expected []interface{}
	}{
		{name: "nothing set"},
		{name: "ssl disabled uses default timeout", opts: config.VerificationOptions{DisableSSLVerification: true}, expected: []interface{}{true, uint64(30000)}},
		{name: "timeout only", opts: config.VerificationOptions{TimeoutMillis: 5000}, expected: []interface{}{false, uint64(5000)}},
		{name: "both", opts: config.VerificationOptions{DisableSSLVerification: true, TimeoutMillis: 10}, expected: []interface{}{true, uint64(10)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			engine := mocks.NewEngine()
			outcome := runDescriptor(t, VerificationOptions, resolved(tt.opts), nil, engine)

			calls := engine.CallsTo("set_verification_options")
			if tt.expected == nil {
				assert.Equal(t, StatusIgnore, outcome.Status)
				assert.Empty(t, calls)
				return
			}
			assert.Equal(t, StatusSuccess, outcome.Status)
			require.Len(t, calls, 1)
			assert.Equal(t, tt.expected, calls[0].Args)
		})
	}
}

func TestPublishOptions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		opts     config.VerificationOptions
		env      config.MapEnvironment
		expected []interface{}
	}{
		{name: "publish without version is ignored", opts: config.VerificationOptions{PublishVerificationResult: true}},
		{name: "version without publish is ignored", opts: config.VerificationOptions{ProviderVersion: "1.0.0"}},
		{
			name:     "publish flag and version",
			opts:     config.VerificationOptions{PublishVerificationResult: true, ProviderVersion: "1.0.0"},
			expected: []interface{}{"1.0.0", "", []string{}, ""},
		},
		{
			name: "publish from env with tags and legacy branch",
			opts: config.VerificationOptions{
				ProviderVersion:     "2.0.0",
				BuildURL:            "https://ci/build/7",
				ProviderVersionTags: []string{"main"},
				ProviderBranch:      "legacy-branch",
			},
			env:      config.MapEnvironment{config.EnvPublishResults: "true"},
			expected: []interface{}{"2.0.0", "https://ci/build/7", []string{"main"}, "legacy-branch"},
		},
		{
			name:     "publish env set to 0 still counts",
			opts:     config.VerificationOptions{ProviderVersion: "4.0.0"},
			env:      config.MapEnvironment{config.EnvPublishResults: "0"},
			expected: []interface{}{"4.0.0", "", []string{}, ""},
		},
		{
			name: "explicit branch beats legacy alias",
			opts: config.VerificationOptions{
				PublishVerificationResult: true,
				ProviderVersion:           "3.0.0",
				ProviderVersionBranch:     "feat/x",
				ProviderBranch:            "legacy-branch",
			},
			expected: []interface{}{"3.0.0", "", []string{}, "feat/x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			engine := mocks.NewEngine()
			opts := config.Resolve(tt.opts, tt.env, config.Credentials{})
			outcome := runDescriptor(t, PublishOptions, opts, nil, engine)

			calls := engine.CallsTo("set_publish_options")
			if tt.expected == nil {
				assert.Equal(t, StatusIgnore, outcome.Status)
				assert.Empty(t, calls)
				return
			}
			assert.Equal(t, StatusSuccess, outcome.Status)
			require.Len(t, calls, 1)
			assert.Equal(t, tt.expected, calls[0].Args)
		})
	}
}

func TestConsumerFilters(t *testing.T) {
	t.Parallel()

	for _, filters := range [][]string{nil, {}} {
		engine := mocks.NewEngine()
		outcome := runDescriptor(t, ConsumerFilters, resolved(config.VerificationOptions{ConsumerFilters: filters}), nil, engine)
		assert.Equal(t, StatusIgnore, outcome.Status)
		assert.Empty(t, engine.Calls())
	}

	engine := mocks.NewEngine()
	outcome := runDescriptor(t, ConsumerFilters,
		resolved(config.VerificationOptions{ConsumerFilters: []string{"web", "mobile"}}), nil, engine)

	assert.Equal(t, StatusSuccess, outcome.Status)
	calls := engine.CallsTo("set_consumer_filters")
	require.Len(t, calls, 1)
	assert.Equal(t, []interface{}{[]string{"web", "mobile"}}, calls[0].Args)
}

func TestCustomHeader_ListValidatesPerEntry(t *testing.T) {
	t.Parallel()

	engine := mocks.NewEngine()
	opts := resolved(config.VerificationOptions{
		CustomProviderHeaders: config.HeaderList("X-Test: 1", "BadHeader"),
	})

	outcome := runDescriptor(t, CustomHeader, opts, nil, engine)

	assert.Equal(t, StatusFail, outcome.Status)
	require.Len(t, outcome.Messages(), 1)
	assert.Contains(t, outcome.Messages()[0], `"BadHeader"`)

	calls := engine.CallsTo("add_custom_header")
	require.Len(t, calls, 1)
	// The value keeps its leading space: entries are split, not trimmed.
	assert.Equal(t, []interface{}{"X-Test", " 1"}, calls[0].Args)
}

func TestCustomHeader_ColonCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		entry string
		valid bool
	}{
		{"X-Test:1", true},
		{"X-Test: 1", true},
		{"X-Empty:", true},
		{"NoColon", false},
		{"Authorization: Bearer a:b", false},
		{"X-Url: http://example.com", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.entry, func(t *testing.T) {
			t.Parallel()
			engine := mocks.NewEngine()
			outcome := runDescriptor(t, CustomHeader,
				resolved(config.VerificationOptions{CustomProviderHeaders: config.HeaderList(tt.entry)}), nil, engine)

			if tt.valid {
				assert.Equal(t, StatusSuccess, outcome.Status)
				assert.Len(t, engine.CallsTo("add_custom_header"), 1)
				return
			}
			assert.Equal(t, StatusFail, outcome.Status)
			assert.Empty(t, engine.Calls())
		})
	}
}

func TestCustomHeader_MappingExecutesEveryPairSorted(t *testing.T) {
	t.Parallel()

	engine := mocks.NewEngine()
	opts := resolved(config.VerificationOptions{
		CustomProviderHeaders: config.HeaderMap(map[string]string{"X-B": "b:with:colons", "X-A": "a"}),
	})

	outcome := runDescriptor(t, CustomHeader, opts, nil, engine)

	assert.Equal(t, StatusSuccess, outcome.Status)
	calls := engine.CallsTo("add_custom_header")
	require.Len(t, calls, 2)
	assert.Equal(t, []interface{}{"X-A", "a"}, calls[0].Args)
	assert.Equal(t, []interface{}{"X-B", "b:with:colons"}, calls[1].Args)
}

func TestCustomHeader_EmptyIsIgnored(t *testing.T) {
	t.Parallel()

	for _, headers := range []config.CustomHeaders{{}, config.HeaderList(), config.HeaderMap(nil)} {
		engine := mocks.NewEngine()
		outcome := runDescriptor(t, CustomHeader, resolved(config.VerificationOptions{CustomProviderHeaders: headers}), nil, engine)
		assert.Equal(t, StatusIgnore, outcome.Status)
	}
}

func TestCustomHeader_EngineFailureIsFolded(t *testing.T) {
	t.Parallel()

	engine := mocks.NewEngine()
	engine.FailOn("add_custom_header", errors.New("boom"))

	outcome := runDescriptor(t, CustomHeader,
		resolved(config.VerificationOptions{CustomProviderHeaders: config.HeaderList("A:1", "B:2")}), nil, engine)

	assert.Equal(t, StatusFail, outcome.Status)
	assert.Equal(t, []string{"add_custom_header: boom", "add_custom_header: boom"}, outcome.Messages())
	assert.Equal(t, 2, outcome.Calls)
}

func TestDirectorySource(t *testing.T) {
	t.Parallel()

	t.Run("no locations", func(t *testing.T) {
		t.Parallel()
		engine := mocks.NewEngine()
		outcome := runDescriptor(t, DirectorySource, resolved(config.VerificationOptions{}), nil, engine)
		assert.Equal(t, StatusIgnore, outcome.Status)
	})

	t.Run("real directory", func(t *testing.T) {
		t.Parallel()
		engine := mocks.NewEngine()
		outcome := runDescriptor(t, DirectorySource,
			resolved(config.VerificationOptions{PactURLs: []string{"./pacts"}}), newSourceFS(), engine)

		assert.Equal(t, StatusSuccess, outcome.Status)
		assert.Equal(t, []string{"add_directory_source"}, engine.Ops())
	})

	t.Run("mixed locations", func(t *testing.T) {
		t.Parallel()
		engine := mocks.NewEngine()
		opts := config.Resolve(config.VerificationOptions{
			PactURLs: []string{
				"https://broker.example.com/pacts/web.json",
				"./missing",
				"./pacts/web-orders.json",
				"./latest.json",
				"./pact.sock",
			},
			PactBrokerUsername: "explicit-user",
		}, config.MapEnvironment{config.EnvBrokerPassword: "env-pass"}, config.Credentials{})

		outcome := runDescriptor(t, DirectorySource, opts, newSourceFS(), engine)

		assert.Equal(t, StatusFail, outcome.Status)
		assert.Equal(t, []string{
			"Pact file or directory './missing' doesn't exist",
			"Pact source './pact.sock' is not a file or directory (found other)",
		}, outcome.Messages())
		assert.Equal(t, []string{"url_source", "add_file_source", "add_file_source"}, engine.Ops())

		url := engine.CallsTo("url_source")[0]
		assert.Equal(t, []interface{}{"https://broker.example.com/pacts/web.json", "explicit-user", "env-pass", ""}, url.Args)
	})
}

func TestBrokerSource(t *testing.T) {
	t.Parallel()

	t.Run("requires broker url", func(t *testing.T) {
		t.Parallel()
		engine := mocks.NewEngine()
		outcome := runDescriptor(t, BrokerSourceWithSelectors, resolved(config.VerificationOptions{Provider: "P"}), nil, engine)
		assert.Equal(t, StatusIgnore, outcome.Status)
	})

	t.Run("requires provider", func(t *testing.T) {
		t.Parallel()
		engine := mocks.NewEngine()
		outcome := runDescriptor(t, BrokerSourceWithSelectors,
			resolved(config.VerificationOptions{PactBrokerURL: "https://broker"}), nil, engine)
		assert.Equal(t, StatusIgnore, outcome.Status)
	})

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()
		engine := mocks.NewEngine()
		opts := config.Resolve(config.VerificationOptions{Provider: "P"},
			config.MapEnvironment{config.EnvBrokerBaseURL: "https://env-broker", config.EnvBrokerToken: "tok"},
			config.Credentials{})

		outcome := runDescriptor(t, BrokerSourceWithSelectors, opts, nil, engine)

		assert.Equal(t, StatusSuccess, outcome.Status)
		calls := engine.CallsTo("broker_source_with_selectors")
		require.Len(t, calls, 1)
		assert.Equal(t, []interface{}{
			"https://env-broker", "", "", "tok",
			false, "", []string{}, "",
			[]string{}, []string{},
		}, calls[0].Args)
	})

	t.Run("selectors serialized individually", func(t *testing.T) {
		t.Parallel()
		engine := mocks.NewEngine()
		opts := resolved(config.VerificationOptions{
			Provider:             "P",
			PactBrokerURL:        "https://broker",
			EnablePending:        true,
			IncludeWIPPactsSince: "2024-01-01",
			ProviderVersionTags:  []string{"main"},
			ProviderBranch:       "legacy",
			ConsumerVersionTags:  []string{"prod"},
			ConsumerVersionSelectors: []config.ConsumerVersionSelector{
				{MainBranch: true},
				{Tag: "prod", Latest: true},
			},
		})

		outcome := runDescriptor(t, BrokerSourceWithSelectors, opts, nil, engine)

		assert.Equal(t, StatusSuccess, outcome.Status)
		calls := engine.CallsTo("broker_source_with_selectors")
		require.Len(t, calls, 1)
		args := calls[0].Args
		assert.Equal(t, true, args[4])
		assert.Equal(t, "2024-01-01", args[5])
		assert.Equal(t, []string{"main"}, args[6])
		assert.Equal(t, "legacy", args[7])
		assert.Equal(t, []string{`{"mainBranch":true}`, `{"tag":"prod","latest":true}`}, args[8])
		assert.Equal(t, []string{"prod"}, args[9])
	})
}
