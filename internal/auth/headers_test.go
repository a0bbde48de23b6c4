// ABOUTME: Tests for outgoing header construction from agent profiles.
// ABOUTME: Verifies mode-specific headers and caller-header precedence.

package auth

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/2389/parley/internal/registry"
)

func TestHeaders_APIKey(t *testing.T) {
	profile := &registry.AgentProfile{
		URL:          "https://a.example.com",
		AuthType:     registry.AuthAPIKey,
		APIKeyHeader: "X-Key",
		APIKey:       "abc",
	}

	extra := http.Header{}
	extra.Set("X-Trace", "t-1")

	headers := Headers(profile, extra)
	assert.Equal(t, "abc", headers.Get("X-Key"))
	assert.Equal(t, "t-1", headers.Get("X-Trace"))
}

func TestHeaders_APIKey_DefaultHeaderName(t *testing.T) {
	profile := &registry.AgentProfile{
		AuthType: registry.AuthAPIKey,
		APIKey:   "abc",
	}

	headers := Headers(profile, nil)
	assert.Equal(t, "abc", headers.Get(DefaultAPIKeyHeader))
}

func TestHeaders_Bearer(t *testing.T) {
	profile := &registry.AgentProfile{
		AuthType:    registry.AuthBearer,
		BearerToken: "tok-1",
	}

	headers := Headers(profile, nil)
	assert.Equal(t, "Bearer tok-1", headers.Get("Authorization"))
}

func TestHeaders_Custom(t *testing.T) {
	profile := &registry.AgentProfile{
		AuthType:     registry.AuthCustom,
		CustomHeader: &registry.CustomHeader{Name: "X-Tenant", Value: "acme"},
	}

	headers := Headers(profile, nil)
	assert.Equal(t, "acme", headers.Get("X-Tenant"))
}

func TestHeaders_CallerWinsOnCollision(t *testing.T) {
	profile := &registry.AgentProfile{
		AuthType:    registry.AuthBearer,
		BearerToken: "profile-token",
	}

	extra := http.Header{}
	extra.Set("Authorization", "Bearer caller-token")

	headers := Headers(profile, extra)
	assert.Equal(t, "Bearer caller-token", headers.Get("Authorization"))
}

func TestHeaders_NoneAndNil(t *testing.T) {
	extra := http.Header{}
	extra.Set("X-Trace", "t-2")

	headers := Headers(&registry.AgentProfile{AuthType: registry.AuthNone}, extra)
	assert.Len(t, headers, 1)

	headers = Headers(nil, extra)
	assert.Equal(t, "t-2", headers.Get("X-Trace"))
}
