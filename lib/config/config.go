// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment represents the deployment environment.
type Environment string

const (
	// Development is for a bot running against a private test guild.
	Development Environment = "development"
	// Staging is for pre-production testing.
	Staging Environment = "staging"
	// Production is for the public bot.
	Production Environment = "production"
)

// Config is the master configuration for hushroom.
type Config struct {
	// Environment identifies the deployment type.
	Environment Environment `yaml:"environment"`

	// Discord configures the bot identity and command registration.
	Discord DiscordConfig `yaml:"discord"`

	// Lifecycle configures provisioning and idle reclamation.
	Lifecycle LifecycleConfig `yaml:"lifecycle"`

	// HTTP configures the status and metrics listener.
	HTTP HTTPConfig `yaml:"http"`

	// Log configures structured logging.
	Log LogConfig `yaml:"log"`

	Development *ConfigOverrides `yaml:"development,omitempty"`
	Staging     *ConfigOverrides `yaml:"staging,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains fields that can be overridden per environment.
type ConfigOverrides struct {
	Discord *DiscordConfig `yaml:"discord,omitempty"`
	HTTP    *HTTPConfig    `yaml:"http,omitempty"`
	Log     *LogConfig     `yaml:"log,omitempty"`
}

// DiscordConfig configures the bot identity.
type DiscordConfig struct {
	// TokenFile is a path to a file holding the bot token, or "-" for
	// stdin. Takes precedence over TokenEnv.
	TokenFile string `yaml:"token_file"`

	// TokenEnv names the environment variable holding the bot token
	// when TokenFile is empty.
	// Default: DISCORD_TOKEN
	TokenEnv string `yaml:"token_env"`

	// ApplicationID is the Discord application (client) ID used for
	// slash command registration.
	ApplicationID string `yaml:"application_id"`

	// GuildID, when set, registers the command in that guild only.
	// Guild commands update instantly, which is what development wants;
	// global commands can take up to an hour to propagate.
	GuildID string `yaml:"guild_id"`

	// CommandName is the slash command name.
	// Default: dnd
	CommandName string `yaml:"command_name"`
}

// LifecycleConfig configures the lifecycle manager.
type LifecycleConfig struct {
	// Thresholds is the set of idle thresholds, in minutes, offered as
	// command choices. Zero means "as soon as it is empty".
	// Default: [0, 1, 5, 15, 30, 60]
	Thresholds []int `yaml:"thresholds"`

	// MinimumDelay replaces a zero threshold so the first timer does
	// not fire before the requester has had a chance to join.
	// Default: 1s
	MinimumDelay time.Duration `yaml:"minimum_delay"`

	// MaxInvitees caps the number of invitees per request. Discord
	// slash commands carry at most 25 options; one is the threshold.
	// Default: 10
	MaxInvitees int `yaml:"max_invitees"`

	// LabelPrefix starts every channel and role name.
	// Default: "hush-"
	LabelPrefix string `yaml:"label_prefix"`

	// LabelLength is the number of random [A-Z0-9] characters after
	// the prefix. Six characters give 36^6 (about 2.2e9) labels.
	// Default: 6
	LabelLength int `yaml:"label_length"`

	// CompensateFailedProvisioning deletes the role again when a later
	// provisioning step fails, instead of leaving it orphaned.
	// Default: true
	CompensateFailedProvisioning *bool `yaml:"compensate_failed_provisioning"`
}

// HTTPConfig configures the status listener.
type HTTPConfig struct {
	// Listen is the address for /healthz, /metrics and /debug/records.
	// Empty disables the listener.
	// Default: 127.0.0.1:9464
	Listen string `yaml:"listen"`

	// ShutdownTimeout bounds graceful shutdown of the listener.
	// Default: 5s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	// Default: info
	Level string `yaml:"level"`

	// Format is json or text.
	// Default: json
	Format string `yaml:"format"`
}

// Default returns the default configuration, used as the base before
// the config file is applied.
func Default() *Config {
	compensate := true
	return &Config{
		Environment: Production,
		Discord: DiscordConfig{
			TokenEnv:    "DISCORD_TOKEN",
			CommandName: "dnd",
		},
		Lifecycle: LifecycleConfig{
			Thresholds:                   []int{0, 1, 5, 15, 30, 60},
			MinimumDelay:                 time.Second,
			MaxInvitees:                  10,
			LabelPrefix:                  "hush-",
			LabelLength:                  6,
			CompensateFailedProvisioning: &compensate,
		},
		HTTP: HTTPConfig{
			Listen:          "127.0.0.1:9464",
			ShutdownTimeout: 5 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load loads configuration from the HUSHROOM_CONFIG environment variable.
func Load() (*Config, error) {
	configPath := os.Getenv("HUSHROOM_CONFIG")
	if configPath == "" {
		return nil, fmt.Errorf("HUSHROOM_CONFIG environment variable not set; " +
			"set it to the path of your hushroom.yaml config file, or use --config flag")
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path, applies the
// matching environment section, and expands ${VAR} references in path
// fields.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg.applyEnvironmentOverrides()
	cfg.Discord.TokenFile = expandVars(cfg.Discord.TokenFile)
	return cfg, nil
}

func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides
	switch c.Environment {
	case Development:
		overrides = c.Development
		if overrides == nil {
			overrides = &ConfigOverrides{Log: &LogConfig{Level: "debug", Format: "text"}}
		}
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
	}
	if overrides == nil {
		return
	}

	if overrides.Discord != nil {
		if overrides.Discord.TokenFile != "" {
			c.Discord.TokenFile = overrides.Discord.TokenFile
		}
		if overrides.Discord.TokenEnv != "" {
			c.Discord.TokenEnv = overrides.Discord.TokenEnv
		}
		if overrides.Discord.ApplicationID != "" {
			c.Discord.ApplicationID = overrides.Discord.ApplicationID
		}
		if overrides.Discord.GuildID != "" {
			c.Discord.GuildID = overrides.Discord.GuildID
		}
		if overrides.Discord.CommandName != "" {
			c.Discord.CommandName = overrides.Discord.CommandName
		}
	}

	if overrides.HTTP != nil {
		if overrides.HTTP.Listen != "" {
			c.HTTP.Listen = overrides.HTTP.Listen
		}
		if overrides.HTTP.ShutdownTimeout != 0 {
			c.HTTP.ShutdownTimeout = overrides.HTTP.ShutdownTimeout
		}
	}

	if overrides.Log != nil {
		if overrides.Log.Level != "" {
			c.Log.Level = overrides.Log.Level
		}
		if overrides.Log.Format != "" {
			c.Log.Format = overrides.Log.Format
		}
	}
}

// varPattern matches ${VAR} and ${VAR:-default}.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		return parts[2]
	})
}

// commandNamePattern is Discord's rule for CHAT_INPUT command names.
var commandNamePattern = regexp.MustCompile(`^[-_\p{Ll}\p{N}]{1,32}$`)

// labelLengthRange bounds LabelLength. Below 4 collisions between
// concurrently active channels become plausible; Discord caps channel
// names at 100 characters.
const (
	minLabelLength = 4
	maxLabelLength = 32
)

// Validate checks the configuration for errors, reporting all of them.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Staging && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	if c.Discord.TokenFile == "" && c.Discord.TokenEnv == "" {
		errs = append(errs, fmt.Errorf("discord.token_file or discord.token_env is required"))
	}
	if c.Discord.ApplicationID == "" {
		errs = append(errs, fmt.Errorf("discord.application_id is required"))
	}
	if !commandNamePattern.MatchString(c.Discord.CommandName) {
		errs = append(errs, fmt.Errorf("discord.command_name %q is not a valid slash command name", c.Discord.CommandName))
	}

	if len(c.Lifecycle.Thresholds) == 0 {
		errs = append(errs, fmt.Errorf("lifecycle.thresholds must not be empty"))
	}
	if len(c.Lifecycle.Thresholds) > 25 {
		errs = append(errs, fmt.Errorf("lifecycle.thresholds has %d entries; Discord allows at most 25 choices", len(c.Lifecycle.Thresholds)))
	}
	for _, minutes := range c.Lifecycle.Thresholds {
		if minutes < 0 {
			errs = append(errs, fmt.Errorf("lifecycle.thresholds contains negative value %d", minutes))
		}
	}
	sorted := slices.Clone(c.Lifecycle.Thresholds)
	slices.Sort(sorted)
	if len(slices.Compact(sorted)) != len(c.Lifecycle.Thresholds) {
		errs = append(errs, fmt.Errorf("lifecycle.thresholds contains duplicates"))
	}
	if c.Lifecycle.MinimumDelay <= 0 {
		errs = append(errs, fmt.Errorf("lifecycle.minimum_delay must be positive"))
	}
	if c.Lifecycle.MaxInvitees < 1 || c.Lifecycle.MaxInvitees > 24 {
		errs = append(errs, fmt.Errorf("lifecycle.max_invitees must be between 1 and 24, got %d", c.Lifecycle.MaxInvitees))
	}
	if c.Lifecycle.LabelLength < minLabelLength || c.Lifecycle.LabelLength > maxLabelLength {
		errs = append(errs, fmt.Errorf("lifecycle.label_length must be between %d and %d, got %d",
			minLabelLength, maxLabelLength, c.Lifecycle.LabelLength))
	}
	if len(c.Lifecycle.LabelPrefix)+c.Lifecycle.LabelLength > 100 {
		errs = append(errs, fmt.Errorf("lifecycle.label_prefix is too long for a channel name"))
	}

	if c.HTTP.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("http.shutdown_timeout must be positive"))
	}

	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		errs = append(errs, fmt.Errorf("log.format must be json or text, got %q", c.Log.Format))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Compensate reports whether failed provisioning should delete the
// role it already created.
func (l LifecycleConfig) Compensate() bool {
	return l.CompensateFailedProvisioning == nil || *l.CompensateFailedProvisioning
}

// SlogLevel parses Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}
