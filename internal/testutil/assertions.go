package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// AssertYAMLEquals asserts that two YAML strings are semantically equal.
func AssertYAMLEquals(t testing.TB, expected, actual string, msgAndArgs ...interface{}) {
	t.Helper()

	var expectedMap, actualMap interface{}

	err := yaml.Unmarshal([]byte(expected), &expectedMap)
	require.NoError(t, err, "failed to parse expected YAML")

	err = yaml.Unmarshal([]byte(actual), &actualMap)
	require.NoError(t, err, "failed to parse actual YAML")

	assert.Equal(t, expectedMap, actualMap, msgAndArgs...)
}

// AssertErrorContains asserts that err contains the expected message.
func AssertErrorContains(t testing.TB, err error, expected string, msgAndArgs ...interface{}) {
	t.Helper()

	require.Error(t, err)
	assert.Contains(t, err.Error(), expected, msgAndArgs...)
}

// AssertEventually asserts that a condition becomes true within a timeout.
// waitFor and tick are in milliseconds.
func AssertEventually(t testing.TB, condition func() bool, waitForMs, tickMs int, msgAndArgs ...interface{}) {
	t.Helper()

	waitFor := time.Duration(waitForMs) * time.Millisecond
	tick := time.Duration(tickMs) * time.Millisecond

	assert.Eventually(t, condition, waitFor, tick, msgAndArgs...)
}
