// ABOUTME: Tests for client settings loading and parsing
// ABOUTME: Covers YAML loading, env var expansion, defaults, and duration parsing

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_ValidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "parley.yaml")

	configContent := `
agent:
  timeout: "45s"

push:
  enabled: true
  receiver: "http://localhost:6001"

logging:
  level: "debug"
  format: "json"
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	if err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Agent.Timeout != 45*time.Second {
		t.Errorf("Agent.Timeout = %v, want %v", cfg.Agent.Timeout, 45*time.Second)
	}
	if !cfg.Push.Enabled {
		t.Error("Push.Enabled = false, want true")
	}
	if cfg.Push.Receiver != "http://localhost:6001" {
		t.Errorf("Push.Receiver = %q, want %q", cfg.Push.Receiver, "http://localhost:6001")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want %q", cfg.Logging.Format, "json")
	}
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Agent.Timeout != DefaultTimeout {
		t.Errorf("Agent.Timeout = %v, want default %v", cfg.Agent.Timeout, DefaultTimeout)
	}
	if cfg.Push.Enabled {
		t.Error("Push.Enabled = true, want false by default")
	}
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	t.Setenv("PARLEY_TEST_RECEIVER", "http://receiver.example.com")

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "parley.yaml")
	configContent := `
push:
  enabled: true
  receiver: "${PARLEY_TEST_RECEIVER}"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Push.Receiver != "http://receiver.example.com" {
		t.Errorf("Push.Receiver = %q, want expanded env value", cfg.Push.Receiver)
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "parley.yaml")
	configContent := `
agent:
  timeout: "soon"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Load() expected error for invalid duration")
	}
	if !strings.Contains(err.Error(), "agent.timeout") {
		t.Errorf("error %q should mention agent.timeout", err)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "parley.yaml")
	if err := os.WriteFile(configPath, []byte("agent: [unclosed"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	if _, err := Load(configPath); err == nil {
		t.Fatal("Load() expected error for malformed YAML")
	}
}

func TestValidate_PushWithoutReceiver(t *testing.T) {
	cfg := Default()
	cfg.Push.Enabled = true
	cfg.Push.Receiver = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() expected error for enabled push without receiver")
	}
}
