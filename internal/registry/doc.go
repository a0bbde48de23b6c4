// ABOUTME: Package doc for the registry package
// ABOUTME: Documents the persisted agent profile store and env overlay

// Package registry provides the durable store of saved agent profiles.
//
// # Overview
//
// Profiles map a locally generated 8-character identifier to a connection
// profile: endpoint URL, display name, and authentication material. The
// store is a single JSON object at agents.json inside the parley config
// directory, rewritten wholesale after every mutation. The file is meant
// to be human-editable.
//
// # Store Layout
//
//	{
//	  "3f1a9c2e": {
//	    "url": "https://agent.example.com",
//	    "name": "Example Agent",
//	    "auth_type": "api-key",
//	    "api_key_header": "X-API-Key",
//	    "api_key": "..."
//	  }
//	}
//
// Exactly one auth_type is active per profile; secret fields are present
// only when the mode requires them.
//
// # Env Overlay
//
// An optional env file next to agents.json holds key=value defaults
// (PARLEY_AGENT_URL, PARLEY_BEARER_TOKEN, PARLEY_API_KEY) consulted only
// when no explicit profile is supplied. Reset removes both files.
package registry
