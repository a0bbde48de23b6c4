// ABOUTME: Tests for CLI helpers: header flag parsing and env overlay profiles.

package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/parley/internal/registry"
	"github.com/2389/parley/internal/ui"
)

func TestParseHeaders(t *testing.T) {
	headers := parseHeaders([]string{
		"X-Trace-Id=abc123",
		"Accept-Language: en",
		"X-Multi=one",
		"X-Multi=two",
		"malformed",
		"=novalue",
	})

	assert.Equal(t, []string{"abc123"}, headers["X-Trace-Id"])
	assert.Equal(t, []string{"en"}, headers["Accept-Language"])
	assert.Equal(t, []string{"one", "two"}, headers["X-Multi"])
	assert.NotContains(t, headers, "malformed")
	assert.NotContains(t, headers, "")
}

func TestParseHeadersEmpty(t *testing.T) {
	assert.Nil(t, parseHeaders(nil))
}

func TestPickSwitchTarget_SingleAgent(t *testing.T) {
	color.NoColor = true
	out := &bytes.Buffer{}
	console := ui.NewConsole(strings.NewReader(""), out)

	agents := registry.Registry{
		"a1b2c3d4": {URL: "https://one.example.com", Name: "One"},
	}

	assert.Nil(t, pickSwitchTarget(console, agents))
	assert.Contains(t, out.String(), "--add", "user is told how to add an agent")
	assert.NotContains(t, out.String(), "Select an agent", "no menu with a single agent")
}

func TestPickSwitchTarget_Menu(t *testing.T) {
	color.NoColor = true
	out := &bytes.Buffer{}
	console := ui.NewConsole(strings.NewReader("2\n"), out)

	agents := registry.Registry{
		"a1b2c3d4": {URL: "https://one.example.com", Name: "One"},
		"b2c3d4e5": {URL: "https://two.example.com", Name: "Two"},
	}

	profile := pickSwitchTarget(console, agents)
	require.NotNil(t, profile)
	assert.Equal(t, "Two", profile.Name)
}

func TestProfileFromEnv(t *testing.T) {
	tests := []struct {
		name string
		env  registry.Env
		want registry.AuthType
	}{
		{"no credentials", registry.Env{AgentURL: "https://a.example.com"}, registry.AuthNone},
		{"bearer", registry.Env{AgentURL: "https://a.example.com", BearerToken: "tok"}, registry.AuthBearer},
		{"api key", registry.Env{AgentURL: "https://a.example.com", APIKey: "key"}, registry.AuthAPIKey},
		{"bearer wins", registry.Env{AgentURL: "https://a.example.com", BearerToken: "tok", APIKey: "key"}, registry.AuthBearer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := profileFromEnv(tt.env)
			assert.Equal(t, tt.env.AgentURL, profile.URL)
			assert.Equal(t, tt.want, profile.AuthType)
		})
	}
}
