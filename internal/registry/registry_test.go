// ABOUTME: Tests for the persisted agent profile store.
// ABOUTME: Covers round-trips, missing/corrupt files, id uniqueness, and removal.

package registry

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_Load_MissingFile(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "does-not-exist"))

	reg, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, reg)
}

func TestStore_Load_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	require.NoError(t, os.WriteFile(store.Path(), []byte("{not json"), 0o600))

	_, err := store.Load()
	require.Error(t, err)

	var corrupt *ConfigCorruptError
	assert.True(t, errors.As(err, &corrupt), "want ConfigCorruptError, got %T", err)
}

func TestStore_RoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())

	reg := Registry{}
	id, err := store.Add(reg, &AgentProfile{
		URL:          "https://agent.example.com",
		Name:         "Example",
		AuthType:     AuthAPIKey,
		APIKeyHeader: "X-API-Key",
		APIKey:       "secret",
	})
	require.NoError(t, err)

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Contains(t, loaded, id)
	assert.Equal(t, "https://agent.example.com", loaded[id].URL)
	assert.Equal(t, AuthAPIKey, loaded[id].AuthType)
	assert.Equal(t, "X-API-Key", loaded[id].APIKeyHeader)
	assert.Equal(t, "secret", loaded[id].APIKey)

	// save(load()) is the identity on a well-formed store
	require.NoError(t, store.Save(loaded))
	again, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, loaded, again)
}

func TestStore_Add_UniqueIdentifiers(t *testing.T) {
	store := NewStore(t.TempDir())
	reg := Registry{}

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		id, err := store.Add(reg, &AgentProfile{URL: "https://a.example.com", AuthType: AuthNone})
		require.NoError(t, err)
		assert.Len(t, id, 8)
		assert.False(t, seen[id], "duplicate identifier %s", id)
		seen[id] = true
	}
	assert.Len(t, reg, 20)
}

func TestStore_Add_InvalidProfile(t *testing.T) {
	store := NewStore(t.TempDir())

	tests := []struct {
		name    string
		profile AgentProfile
	}{
		{"missing url", AgentProfile{AuthType: AuthNone}},
		{"api-key without header", AgentProfile{URL: "https://a", AuthType: AuthAPIKey, APIKey: "k"}},
		{"bearer without token", AgentProfile{URL: "https://a", AuthType: AuthBearer}},
		{"custom without header", AgentProfile{URL: "https://a", AuthType: AuthCustom}},
		{"none with secret", AgentProfile{URL: "https://a", AuthType: AuthNone, APIKey: "k"}},
		{"unknown mode", AgentProfile{URL: "https://a", AuthType: "magic"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := tt.profile
			_, err := store.Add(Registry{}, &profile)
			assert.Error(t, err)
		})
	}
}

func TestStore_Remove(t *testing.T) {
	store := NewStore(t.TempDir())
	reg := Registry{}

	keep, err := store.Add(reg, &AgentProfile{URL: "https://keep.example.com", AuthType: AuthNone})
	require.NoError(t, err)
	gone, err := store.Add(reg, &AgentProfile{URL: "https://gone.example.com", AuthType: AuthNone})
	require.NoError(t, err)

	require.NoError(t, store.Remove(reg, gone))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.NotContains(t, loaded, gone)
	assert.Contains(t, loaded, keep)
}

func TestStore_Remove_NotFound(t *testing.T) {
	store := NewStore(t.TempDir())
	reg := Registry{}

	id, err := store.Add(reg, &AgentProfile{URL: "https://a.example.com", AuthType: AuthNone})
	require.NoError(t, err)

	err = store.Remove(reg, "nope1234")
	assert.ErrorIs(t, err, ErrNotFound)

	// Registry unchanged
	assert.Contains(t, reg, id)
	assert.Len(t, reg, 1)
}

func TestStore_Reset(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	_, err := store.Add(Registry{}, &AgentProfile{URL: "https://a.example.com", AuthType: AuthNone})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "env"), []byte("PARLEY_AGENT_URL=x\n"), 0o600))

	require.NoError(t, store.Reset())
	_, err = os.Stat(store.Path())
	assert.True(t, os.IsNotExist(err))

	// Idempotent
	require.NoError(t, store.Reset())
}
