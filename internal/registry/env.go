// ABOUTME: Env overlay file holding default endpoint and credential values.
// ABOUTME: Simple key=value lines, consulted only when no profile is supplied.

package registry

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Env keys recognized in the overlay file.
const (
	EnvAgentURL    = "PARLEY_AGENT_URL"
	EnvBearerToken = "PARLEY_BEARER_TOKEN"
	EnvAPIKey      = "PARLEY_API_KEY"
)

// Env holds the default connection values from the overlay file.
type Env struct {
	AgentURL    string
	BearerToken string
	APIKey      string
}

// LoadEnv parses the overlay file. A missing file yields a zero Env.
// Lines are KEY=VALUE; blank lines and #-comments are ignored. Process
// environment variables with the same names take precedence.
func (s *Store) LoadEnv() (Env, error) {
	values := map[string]string{}

	f, err := os.Open(s.envPath())
	if err == nil {
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			key, value, ok := strings.Cut(line, "=")
			if !ok {
				continue
			}
			values[strings.TrimSpace(key)] = strings.Trim(strings.TrimSpace(value), `"`)
		}
		closeErr := f.Close()
		if err := scanner.Err(); err != nil {
			return Env{}, fmt.Errorf("reading env overlay: %w", err)
		}
		if closeErr != nil {
			return Env{}, fmt.Errorf("closing env overlay: %w", closeErr)
		}
	} else if !os.IsNotExist(err) {
		return Env{}, fmt.Errorf("opening env overlay: %w", err)
	}

	lookup := func(key string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return values[key]
	}

	return Env{
		AgentURL:    lookup(EnvAgentURL),
		BearerToken: lookup(EnvBearerToken),
		APIKey:      lookup(EnvAPIKey),
	}, nil
}
