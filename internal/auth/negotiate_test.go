// ABOUTME: Tests for credential negotiation against scripted cards and prompts.
// ABOUTME: Covers unavailable cards, scheme mapping, and empty-secret failures.

package auth

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/parley/internal/a2a"
	"github.com/2389/parley/internal/registry"
)

// fakeResolver returns a fixed card or error.
type fakeResolver struct {
	card *a2a.AgentCard
	err  error
}

func (f *fakeResolver) ResolveCard(ctx context.Context) (*a2a.AgentCard, error) {
	return f.card, f.err
}

// scriptedPrompter returns canned answers in order.
type scriptedPrompter struct {
	answers []string
	labels  []string
}

func (s *scriptedPrompter) Secret(label string) (string, error) {
	s.labels = append(s.labels, label)
	if len(s.answers) == 0 {
		return "", nil
	}
	answer := s.answers[0]
	s.answers = s.answers[1:]
	return answer, nil
}

func newNegotiator(prompt SecretPrompter) (*Negotiator, *bytes.Buffer) {
	var out bytes.Buffer
	return NewNegotiator(prompt, &out), &out
}

func TestNegotiate_CardUnavailable(t *testing.T) {
	n, out := newNegotiator(&scriptedPrompter{})
	resolver := &fakeResolver{err: errors.New("connection refused")}

	profile, err := n.Negotiate(context.Background(), resolver, "https://a.example.com")
	require.NoError(t, err)
	assert.Equal(t, registry.AuthNone, profile.AuthType)
	assert.Equal(t, "https://a.example.com", profile.URL)
	assert.Equal(t, "Agent", profile.Name)
	assert.Contains(t, out.String(), "without authentication")
}

func TestNegotiate_NoSchemes(t *testing.T) {
	n, _ := newNegotiator(&scriptedPrompter{})
	resolver := &fakeResolver{card: &a2a.AgentCard{Name: "Open Agent"}}

	profile, err := n.Negotiate(context.Background(), resolver, "https://a.example.com")
	require.NoError(t, err)
	assert.Equal(t, registry.AuthNone, profile.AuthType)
	assert.Equal(t, "Open Agent", profile.Name)
}

func TestNegotiate_APIKeyScheme(t *testing.T) {
	prompt := &scriptedPrompter{answers: []string{"secret-key"}}
	n, _ := newNegotiator(prompt)
	resolver := &fakeResolver{card: &a2a.AgentCard{
		Name: "Locked Agent",
		SecuritySchemes: map[string]a2a.SecurityScheme{
			"api": {Type: "apiKey", Name: "X-Custom-Key", In: "header"},
		},
	}}

	profile, err := n.Negotiate(context.Background(), resolver, "https://a.example.com")
	require.NoError(t, err)
	assert.Equal(t, registry.AuthAPIKey, profile.AuthType)
	assert.Equal(t, "X-Custom-Key", profile.APIKeyHeader)
	assert.Equal(t, "secret-key", profile.APIKey)
	require.Len(t, prompt.labels, 1)
	assert.Contains(t, prompt.labels[0], "X-Custom-Key")
}

func TestNegotiate_APIKeyScheme_FallbackHeaderName(t *testing.T) {
	prompt := &scriptedPrompter{answers: []string{"k"}}
	n, _ := newNegotiator(prompt)
	resolver := &fakeResolver{card: &a2a.AgentCard{
		SecuritySchemes: map[string]a2a.SecurityScheme{
			"X-Fallback": {Type: "apiKey"},
		},
	}}

	profile, err := n.Negotiate(context.Background(), resolver, "https://a.example.com")
	require.NoError(t, err)
	assert.Equal(t, "X-Fallback", profile.APIKeyHeader)
}

func TestNegotiate_BearerScheme(t *testing.T) {
	prompt := &scriptedPrompter{answers: []string{"tok"}}
	n, _ := newNegotiator(prompt)
	resolver := &fakeResolver{card: &a2a.AgentCard{
		SecuritySchemes: map[string]a2a.SecurityScheme{
			"auth": {Type: "http", Scheme: "bearer"},
		},
	}}

	profile, err := n.Negotiate(context.Background(), resolver, "https://a.example.com")
	require.NoError(t, err)
	assert.Equal(t, registry.AuthBearer, profile.AuthType)
	assert.Equal(t, "tok", profile.BearerToken)
}

func TestNegotiate_EmptySecret(t *testing.T) {
	n, _ := newNegotiator(&scriptedPrompter{answers: []string{""}})
	resolver := &fakeResolver{card: &a2a.AgentCard{
		SecuritySchemes: map[string]a2a.SecurityScheme{
			"api": {Type: "apiKey", Name: "X-Key"},
		},
	}}

	_, err := n.Negotiate(context.Background(), resolver, "https://a.example.com")
	assert.ErrorIs(t, err, ErrMissingCredential)
}

func TestNegotiate_UnrecognizedSchemeIgnored(t *testing.T) {
	n, _ := newNegotiator(&scriptedPrompter{})
	resolver := &fakeResolver{card: &a2a.AgentCard{
		SecuritySchemes: map[string]a2a.SecurityScheme{
			"oauth": {Type: "oauth2"},
		},
	}}

	profile, err := n.Negotiate(context.Background(), resolver, "https://a.example.com")
	require.NoError(t, err)
	assert.Equal(t, registry.AuthNone, profile.AuthType)
}
