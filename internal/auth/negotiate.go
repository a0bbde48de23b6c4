// ABOUTME: Credential negotiation from an agent's capability descriptor.
// ABOUTME: Maps declared security schemes to interactive secret collection.

package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"

	"github.com/2389/parley/internal/a2a"
	"github.com/2389/parley/internal/registry"
)

// ErrMissingCredential is returned when the user declines to supply a
// secret the agent requires. Aborts the add/connect flow, non-fatal.
var ErrMissingCredential = errors.New("credential required but not provided")

// CardResolver is the slice of the transport this package needs: fetching
// the capability descriptor for an endpoint.
type CardResolver interface {
	ResolveCard(ctx context.Context) (*a2a.AgentCard, error)
}

// SecretPrompter collects one secret value from the user, input masked.
type SecretPrompter interface {
	Secret(label string) (string, error)
}

// Negotiator produces a connection profile for an endpoint by inspecting
// its capability descriptor and collecting any required credentials.
type Negotiator struct {
	prompt SecretPrompter
	out    io.Writer
}

// NewNegotiator creates a Negotiator. Notices (card unavailable, scheme
// descriptions) are written to out.
func NewNegotiator(prompt SecretPrompter, out io.Writer) *Negotiator {
	return &Negotiator{prompt: prompt, out: out}
}

// Negotiate builds the profile for url. A missing or unreadable card is a
// warning, not an error: the profile falls back to no authentication.
// A declared apiKey or bearer/http scheme triggers a secret prompt; an
// empty answer yields ErrMissingCredential. Unrecognized scheme types are
// ignored.
func (n *Negotiator) Negotiate(ctx context.Context, resolver CardResolver, url string) (*registry.AgentProfile, error) {
	profile := &registry.AgentProfile{
		URL:      url,
		Name:     "Agent",
		AuthType: registry.AuthNone,
	}

	card, err := resolver.ResolveCard(ctx)
	if err != nil {
		fmt.Fprintf(n.out, "%s\n", color.YellowString("Cannot fetch agent card (%v) - proceeding without authentication", err))
		return profile, nil
	}

	if card.Name != "" {
		profile.Name = card.Name
	}
	if len(card.SecuritySchemes) == 0 {
		return profile, nil
	}

	// Stable iteration so repeated runs against the same card prompt for
	// the same scheme.
	names := make([]string, 0, len(card.SecuritySchemes))
	for name := range card.SecuritySchemes {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		scheme := card.SecuritySchemes[name]
		switch scheme.Type {
		case "apiKey":
			headerName := scheme.Name
			if headerName == "" {
				headerName = name
			}
			if scheme.Description != "" {
				fmt.Fprintf(n.out, "%s\n", color.HiBlackString(scheme.Description))
			}

			key, err := n.prompt.Secret(fmt.Sprintf("Enter your %s", headerName))
			if err != nil {
				return nil, fmt.Errorf("reading api key: %w", err)
			}
			if key == "" {
				return nil, ErrMissingCredential
			}

			profile.AuthType = registry.AuthAPIKey
			profile.APIKeyHeader = headerName
			profile.APIKey = key
			return profile, nil

		case "http", "bearer":
			if scheme.Description != "" {
				fmt.Fprintf(n.out, "%s\n", color.HiBlackString(scheme.Description))
			}

			token, err := n.prompt.Secret("Enter your bearer token")
			if err != nil {
				return nil, fmt.Errorf("reading bearer token: %w", err)
			}
			if token == "" {
				return nil, ErrMissingCredential
			}

			profile.AuthType = registry.AuthBearer
			profile.BearerToken = token
			return profile, nil
		}
		// Unrecognized scheme types fall through to the next candidate
	}

	return profile, nil
}
