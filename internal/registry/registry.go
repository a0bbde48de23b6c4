// ABOUTME: Durable CRUD over saved agent profiles keyed by short identifier.
// ABOUTME: Backed by a single JSON file rewritten wholesale on every mutation.

package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// AuthType identifies which authentication mode a profile carries.
type AuthType string

const (
	AuthNone   AuthType = "none"
	AuthAPIKey AuthType = "api-key"
	AuthBearer AuthType = "bearer"
	AuthCustom AuthType = "custom"
)

// ErrNotFound is returned when removing a profile identifier that does not exist.
var ErrNotFound = errors.New("agent not found")

// ConfigCorruptError indicates the store file exists but cannot be parsed.
// This is fatal to the process: a missing store is fine, a mangled one is not.
type ConfigCorruptError struct {
	Path string
	Err  error
}

func (e *ConfigCorruptError) Error() string {
	return fmt.Sprintf("agent store %s is corrupt: %v", e.Path, e.Err)
}

func (e *ConfigCorruptError) Unwrap() error { return e.Err }

// CustomHeader is the name/value pair for the custom auth mode.
type CustomHeader struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// AgentProfile is one saved agent connection configuration.
// Secret fields are populated only for the matching AuthType.
type AgentProfile struct {
	URL          string        `json:"url"`
	Name         string        `json:"name"`
	AuthType     AuthType      `json:"auth_type"`
	APIKeyHeader string        `json:"api_key_header,omitempty"`
	APIKey       string        `json:"api_key,omitempty"`
	BearerToken  string        `json:"bearer_token,omitempty"`
	CustomHeader *CustomHeader `json:"custom_header,omitempty"`
}

// Validate checks the single-active-auth-mode invariant: secret fields must
// be present iff the declared mode requires them.
func (p *AgentProfile) Validate() error {
	if p.URL == "" {
		return fmt.Errorf("profile url is required")
	}
	switch p.AuthType {
	case AuthNone, "":
		if p.APIKey != "" || p.BearerToken != "" || p.CustomHeader != nil {
			return fmt.Errorf("auth_type none must not carry credentials")
		}
	case AuthAPIKey:
		if p.APIKeyHeader == "" || p.APIKey == "" {
			return fmt.Errorf("auth_type api-key requires api_key_header and api_key")
		}
	case AuthBearer:
		if p.BearerToken == "" {
			return fmt.Errorf("auth_type bearer requires bearer_token")
		}
	case AuthCustom:
		if p.CustomHeader == nil || p.CustomHeader.Name == "" {
			return fmt.Errorf("auth_type custom requires custom_header")
		}
	default:
		return fmt.Errorf("unknown auth_type %q", p.AuthType)
	}
	return nil
}

// Registry is the in-memory mapping of profile identifier to profile.
type Registry map[string]*AgentProfile

// Store persists a Registry to agents.json under a config directory,
// alongside the optional env overlay file.
type Store struct {
	dir string
}

// NewStore returns a Store rooted at dir. Nothing is created until Save.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Path returns the location of the agents store file.
func (s *Store) Path() string { return filepath.Join(s.dir, "agents.json") }

func (s *Store) envPath() string { return filepath.Join(s.dir, "env") }

// Load reads the persisted registry. A missing file yields an empty
// registry; a present but malformed file yields ConfigCorruptError.
func (s *Store) Load() (Registry, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return Registry{}, nil
		}
		return nil, fmt.Errorf("reading agent store: %w", err)
	}

	var reg Registry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, &ConfigCorruptError{Path: s.Path(), Err: err}
	}
	if reg == nil {
		reg = Registry{}
	}
	return reg, nil
}

// Save serializes the whole registry and atomically replaces the store file.
// The containing directory is created if absent.
func (s *Store) Save(reg Registry) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding agent store: %w", err)
	}

	// Write to a temp file then rename so a crash mid-write can't truncate
	// the store.
	tmp, err := os.CreateTemp(s.dir, "agents-*.json")
	if err != nil {
		return fmt.Errorf("creating temp store: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing agent store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp store: %w", err)
	}
	if err := os.Rename(tmpName, s.Path()); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing agent store: %w", err)
	}
	return nil
}

// Add assigns a fresh unique identifier to the profile, inserts it into the
// registry, and persists. Returns the new identifier.
func (s *Store) Add(reg Registry, profile *AgentProfile) (string, error) {
	if err := profile.Validate(); err != nil {
		return "", err
	}

	id := newProfileID(reg)
	reg[id] = profile
	if err := s.Save(reg); err != nil {
		delete(reg, id)
		return "", err
	}
	return id, nil
}

// Remove deletes the identified profile and persists. Returns ErrNotFound
// (registry untouched) if the identifier is absent.
func (s *Store) Remove(reg Registry, id string) error {
	profile, ok := reg[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(reg, id)
	if err := s.Save(reg); err != nil {
		reg[id] = profile
		return err
	}
	return nil
}

// Reset deletes the store and the env overlay entirely. Idempotent: a
// missing file is not an error.
func (s *Store) Reset() error {
	for _, path := range []string{s.Path(), s.envPath()} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing %s: %w", path, err)
		}
	}
	return nil
}

// newProfileID generates a short identifier that is unique within the
// registry. Eight hex characters of a UUID, as found in existing stores.
func newProfileID(reg Registry) string {
	for {
		id := uuid.New().String()[:8]
		if _, exists := reg[id]; !exists {
			return id
		}
	}
}
