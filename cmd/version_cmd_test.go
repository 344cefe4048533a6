package cmd

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/fulmenhq/starcat/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersion_JSON(t *testing.T) {
	out, err := execRoot(t, []string{"version", "--json"})
	require.NoError(t, err, out)

	var v map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &v), out)
	for _, key := range []string{"version", "gitCommit", "buildDate", "goVersion", "platform"} {
		_, ok := v[key].(string)
		assert.True(t, ok, "expected %s field in JSON", key)
	}
	assert.False(t, logger.Current().JSON, "version --json must not switch log format")

	_, err = execRoot(t, []string{"--json", "version"})
	require.NoError(t, err)
	assert.True(t, logger.Current().JSON)
}

func TestVersion_Plain(t *testing.T) {
	out, err := execRoot(t, []string{"version"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "starcat "))
	assert.NotContains(t, out, "Go version")

	out, err = execRoot(t, []string{"version", "--extended"})
	require.NoError(t, err)
	assert.Contains(t, out, "Go version:")
	assert.Contains(t, out, "Platform:")
}
