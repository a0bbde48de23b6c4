// ABOUTME: Outgoing header construction from a saved agent profile.
// ABOUTME: Profile credentials merge under caller-supplied headers, never over them.

package auth

import (
	"net/http"

	"github.com/2389/parley/internal/registry"
)

// DefaultAPIKeyHeader is used when a profile predates the header-name field.
const DefaultAPIKeyHeader = "X-API-Key"

// Headers builds the outgoing header set for a profile. Caller-supplied
// extras are copied first and win on name collisions: the profile's
// credential header is only added when the caller did not set it.
func Headers(profile *registry.AgentProfile, extra http.Header) http.Header {
	headers := http.Header{}
	for name, values := range extra {
		for _, v := range values {
			headers.Add(name, v)
		}
	}

	if profile == nil {
		return headers
	}

	setIfAbsent := func(name, value string) {
		if headers.Get(name) == "" {
			headers.Set(name, value)
		}
	}

	switch profile.AuthType {
	case registry.AuthAPIKey:
		name := profile.APIKeyHeader
		if name == "" {
			name = DefaultAPIKeyHeader
		}
		setIfAbsent(name, profile.APIKey)
	case registry.AuthBearer:
		setIfAbsent("Authorization", "Bearer "+profile.BearerToken)
	case registry.AuthCustom:
		if profile.CustomHeader != nil {
			setIfAbsent(profile.CustomHeader.Name, profile.CustomHeader.Value)
		}
	}

	return headers
}
