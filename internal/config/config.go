// ABOUTME: Client settings loading and parsing for parley
// ABOUTME: Supports YAML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultTimeout bounds one conversational round-trip to the agent.
const DefaultTimeout = 30 * time.Second

// Config represents the parley client settings.
type Config struct {
	Agent   AgentConfig   `yaml:"agent"`
	Push    PushConfig    `yaml:"push"`
	Logging LoggingConfig `yaml:"logging"`
}

// AgentConfig holds per-round agent communication settings.
type AgentConfig struct {
	Timeout time.Duration `yaml:"-"`

	// Raw string value for YAML unmarshaling
	TimeoutRaw string `yaml:"timeout"`
}

// PushConfig holds push-notification listener settings.
type PushConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Receiver string `yaml:"receiver"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the settings used when no config file exists.
func Default() *Config {
	return &Config{
		Agent: AgentConfig{Timeout: DefaultTimeout},
		Push:  PushConfig{Receiver: "http://localhost:5000"},
	}
}

// Load reads a settings file from the given path and returns a parsed Config.
// A missing file yields defaults. Environment variables in the format
// ${VAR_NAME} are expanded. Duration strings are parsed into time.Duration.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expandedData), cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := parseDurations(cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that the settings are usable.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Agent.Timeout <= 0 {
		return fmt.Errorf("agent.timeout must be positive")
	}
	if c.Push.Enabled && c.Push.Receiver == "" {
		return fmt.Errorf("push.receiver is required when push is enabled")
	}
	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	if cfg.Agent.TimeoutRaw != "" {
		timeout, err := time.ParseDuration(cfg.Agent.TimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing agent.timeout %q: %w", cfg.Agent.TimeoutRaw, err)
		}
		cfg.Agent.Timeout = timeout
	}
	return nil
}
