// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hushroom.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Environment != Production {
		t.Errorf("expected environment=production, got %s", cfg.Environment)
	}
	if cfg.Discord.TokenEnv != "DISCORD_TOKEN" {
		t.Errorf("expected token_env=DISCORD_TOKEN, got %s", cfg.Discord.TokenEnv)
	}
	if got := cfg.Lifecycle.Thresholds; len(got) != 6 || got[0] != 0 || got[5] != 60 {
		t.Errorf("unexpected default thresholds %v", got)
	}
	if cfg.Lifecycle.MinimumDelay != time.Second {
		t.Errorf("expected minimum_delay=1s, got %v", cfg.Lifecycle.MinimumDelay)
	}
	if cfg.Lifecycle.MaxInvitees != 10 {
		t.Errorf("expected max_invitees=10, got %d", cfg.Lifecycle.MaxInvitees)
	}
	if !cfg.Lifecycle.Compensate() {
		t.Error("expected compensation enabled by default")
	}
}

func TestLoad_RequiresConfigVariable(t *testing.T) {
	t.Setenv("HUSHROOM_CONFIG", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when HUSHROOM_CONFIG not set, got nil")
	}
	if !strings.HasPrefix(err.Error(), "HUSHROOM_CONFIG environment variable not set") {
		t.Errorf("unexpected error message %q", err.Error())
	}
}

func TestLoad_WithConfigVariable(t *testing.T) {
	path := writeConfig(t, `
environment: staging
discord:
  application_id: "1234"
`)
	t.Setenv("HUSHROOM_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Environment != Staging {
		t.Errorf("expected environment=staging, got %s", cfg.Environment)
	}
	if cfg.Discord.ApplicationID != "1234" {
		t.Errorf("expected application_id=1234, got %s", cfg.Discord.ApplicationID)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
environment: production

discord:
  application_id: "42"
  command_name: private

lifecycle:
  thresholds: [0, 10, 120]
  minimum_delay: 3s
  max_invitees: 5
  label_prefix: "vc-"
  label_length: 8
  compensate_failed_provisioning: false

http:
  listen: ":9000"
  shutdown_timeout: 10s

log:
  level: warn
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	if cfg.Discord.CommandName != "private" {
		t.Errorf("expected command_name=private, got %s", cfg.Discord.CommandName)
	}
	if got := cfg.Lifecycle.Thresholds; len(got) != 3 || got[2] != 120 {
		t.Errorf("expected thresholds [0 10 120], got %v", got)
	}
	if cfg.Lifecycle.MinimumDelay != 3*time.Second {
		t.Errorf("expected minimum_delay=3s, got %v", cfg.Lifecycle.MinimumDelay)
	}
	if cfg.Lifecycle.LabelLength != 8 || cfg.Lifecycle.LabelPrefix != "vc-" {
		t.Errorf("unexpected label settings %q/%d", cfg.Lifecycle.LabelPrefix, cfg.Lifecycle.LabelLength)
	}
	if cfg.Lifecycle.Compensate() {
		t.Error("expected compensation disabled")
	}
	if cfg.HTTP.Listen != ":9000" || cfg.HTTP.ShutdownTimeout != 10*time.Second {
		t.Errorf("unexpected http settings %+v", cfg.HTTP)
	}
	// Token source keeps its default when the file does not mention it.
	if cfg.Discord.TokenEnv != "DISCORD_TOKEN" {
		t.Errorf("expected default token_env, got %s", cfg.Discord.TokenEnv)
	}
	level, err := cfg.Log.SlogLevel()
	if err != nil || level != slog.LevelWarn {
		t.Errorf("SlogLevel() = %v, %v; want warn", level, err)
	}
}

func TestLoadFile_NotFound(t *testing.T) {
	if _, err := LoadFile("/nonexistent/hushroom.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadFile_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "discord: [unclosed")
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	path := writeConfig(t, `
environment: development
discord:
  application_id: "42"
development:
  discord:
    guild_id: "777"
  log:
    level: debug
production:
  discord:
    guild_id: "888"
`)
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Discord.GuildID != "777" {
		t.Errorf("expected development guild_id=777, got %q", cfg.Discord.GuildID)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected level=debug, got %s", cfg.Log.Level)
	}
	// Format is not overridden, so it keeps the base value.
	if cfg.Log.Format != "json" {
		t.Errorf("expected format=json, got %s", cfg.Log.Format)
	}
}

func TestDevelopmentDefaultsWithoutSection(t *testing.T) {
	path := writeConfig(t, `
environment: development
discord:
  application_id: "42"
`)
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "text" {
		t.Errorf("expected debug/text logging in development, got %s/%s", cfg.Log.Level, cfg.Log.Format)
	}
}

func TestTokenFileExpansion(t *testing.T) {
	t.Setenv("HUSHROOM_SECRETS", "/run/secrets")
	path := writeConfig(t, `
discord:
  application_id: "42"
  token_file: ${HUSHROOM_SECRETS}/token
`)
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Discord.TokenFile != "/run/secrets/token" {
		t.Errorf("expected expanded token_file, got %q", cfg.Discord.TokenFile)
	}
}

func TestExpandVars(t *testing.T) {
	t.Setenv("HUSHROOM_TEST_SET", "value")
	t.Setenv("HUSHROOM_TEST_EMPTY", "")
	tests := []struct {
		input string
		want  string
	}{
		{"${HUSHROOM_TEST_SET}/x", "value/x"},
		{"${HUSHROOM_TEST_EMPTY:-fallback}", "fallback"},
		{"${HUSHROOM_TEST_EMPTY}", ""},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		if got := expandVars(tt.input); got != tt.want {
			t.Errorf("expandVars(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.Discord.ApplicationID = "42"
		return cfg
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("valid config failed validation: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"environment", func(c *Config) { c.Environment = "invalid" }, "invalid environment"},
		{"application-id", func(c *Config) { c.Discord.ApplicationID = "" }, "application_id"},
		{"token-source", func(c *Config) { c.Discord.TokenEnv = "" }, "token_file or discord.token_env"},
		{"command-name", func(c *Config) { c.Discord.CommandName = "Bad Name" }, "command_name"},
		{"empty-thresholds", func(c *Config) { c.Lifecycle.Thresholds = nil }, "thresholds must not be empty"},
		{"negative-threshold", func(c *Config) { c.Lifecycle.Thresholds = []int{-1, 5} }, "negative"},
		{"duplicate-threshold", func(c *Config) { c.Lifecycle.Thresholds = []int{5, 5} }, "duplicates"},
		{"minimum-delay", func(c *Config) { c.Lifecycle.MinimumDelay = 0 }, "minimum_delay"},
		{"max-invitees", func(c *Config) { c.Lifecycle.MaxInvitees = 0 }, "max_invitees"},
		{"label-length", func(c *Config) { c.Lifecycle.LabelLength = 2 }, "label_length"},
		{"log-level", func(c *Config) { c.Log.Level = "verbose" }, "log.level"},
		{"log-format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.want)
			}
		})
	}
}

func TestValidate_ReportsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.Discord.ApplicationID = ""
	cfg.Log.Format = "xml"
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"application_id", "log.format"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("joined error %q does not mention %q", err.Error(), want)
		}
	}
}
