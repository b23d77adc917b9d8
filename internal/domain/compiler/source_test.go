package compiler

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/pactverify/internal/domain/config"
	"github.com/felixgeelhaar/pactverify/internal/ports"
	"github.com/felixgeelhaar/pactverify/internal/testutil/mocks"
)

func newSourceFS() *mocks.FileSystem {
	m := mocks.NewFileSystem()
	m.AddDir("./pacts")
	m.AddFile("./pacts/web-orders.json", "{}")
	m.AddSymlink("./latest.json", "./pacts/web-orders.json")
	m.AddOther("./pact.sock")
	return m
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		location string
		want     SourceKind
		wantErr  bool
	}{
		{"http://broker.example.com/pacts/provider/orders", SourceURL, false},
		{"https://broker.example.com/p.json", SourceURL, false},
		{"HTTPS://broker.example.com/p.json", SourceURL, false},
		{"./pacts", SourceDirectory, false},
		{"./pacts/web-orders.json", SourceFile, false},
		{"./latest.json", SourceFile, false},
		{"./pact.sock", SourceInvalid, true},
		{"./missing", SourceInvalid, true},
		{"http://", SourceInvalid, true},
		{"http:pacts", SourceInvalid, true},
		{"ftp://broker.example.com/p.json", SourceInvalid, true},
	}

	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			t.Parallel()
			got, err := Classify(newSourceFS(), tt.location)
			assert.Equal(t, tt.want, got)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.location)
				assert.ErrorIs(t, err, &DescriptorError{Code: ErrCodeSourceUnresolved})
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestClassify_URLNeverTouchesDisk(t *testing.T) {
	t.Parallel()

	m := mocks.NewFileSystem()
	m.AddDir("https://example.com/pacts")

	kind, err := Classify(m, "https://example.com/pacts")

	require.NoError(t, err)
	assert.Equal(t, SourceURL, kind)
	assert.Empty(t, m.Lstats())
}

func TestClassify_LstatErrorKeepsCause(t *testing.T) {
	t.Parallel()

	m := mocks.NewFileSystem()
	m.SetLstatError("/restricted", fs.ErrPermission)

	_, err := Classify(m, "/restricted")

	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrPermission)
	assert.Contains(t, err.Error(), "Pact file or directory '/restricted' doesn't exist")
}

func TestSourceKind_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "url", SourceURL.String())
	assert.Equal(t, "directory", SourceDirectory.String())
	assert.Equal(t, "file", SourceFile.String())
	assert.Equal(t, "invalid", SourceInvalid.String())
}

func TestMergeSource(t *testing.T) {
	t.Parallel()

	opts := &config.Resolved{VerificationOptions: config.VerificationOptions{
		PactBrokerUsername: "user",
		PactBrokerPassword: "pass",
		PactBrokerToken:    "token",
	}}
	engine := mocks.NewEngine()
	h := ports.NewSessionHandle("s")

	for _, c := range []call{
		mergeSource(SourceURL, "https://broker/p.json", opts),
		mergeSource(SourceDirectory, "./pacts", opts),
		mergeSource(SourceFile, "./p.json", opts),
	} {
		require.NoError(t, c.invoke(engine, h))
	}

	calls := engine.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, "url_source", calls[0].Op)
	assert.Equal(t, []interface{}{"https://broker/p.json", "user", "pass", "token"}, calls[0].Args)
	assert.Equal(t, "add_directory_source", calls[1].Op)
	assert.Equal(t, []interface{}{"./pacts"}, calls[1].Args)
	assert.Equal(t, "add_file_source", calls[2].Op)
	assert.Equal(t, []interface{}{"./p.json"}, calls[2].Args)
}
