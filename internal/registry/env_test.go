// ABOUTME: Tests for the env overlay file parsing.
// ABOUTME: Covers missing files, comments, quoting, and process env precedence.

package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnv_MissingFile(t *testing.T) {
	store := NewStore(t.TempDir())

	env, err := store.LoadEnv()
	require.NoError(t, err)
	assert.Equal(t, Env{}, env)
}

func TestLoadEnv_ParsesFile(t *testing.T) {
	dir := t.TempDir()
	content := `# defaults for parley
PARLEY_AGENT_URL=https://agent.example.com

PARLEY_BEARER_TOKEN="tok-123"
not a key value line
PARLEY_API_KEY = spaced
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "env"), []byte(content), 0o600))

	env, err := NewStore(dir).LoadEnv()
	require.NoError(t, err)
	assert.Equal(t, "https://agent.example.com", env.AgentURL)
	assert.Equal(t, "tok-123", env.BearerToken)
	assert.Equal(t, "spaced", env.APIKey)
}

func TestLoadEnv_ProcessEnvWins(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "env"),
		[]byte("PARLEY_AGENT_URL=https://file.example.com\n"), 0o600))
	t.Setenv(EnvAgentURL, "https://process.example.com")

	env, err := NewStore(dir).LoadEnv()
	require.NoError(t, err)
	assert.Equal(t, "https://process.example.com", env.AgentURL)
}
