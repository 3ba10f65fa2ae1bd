// Package config provides YAML configuration loading with validation and
// environment variable substitution for the MusicKit token generator.
// When no file is given, Default returns the built-in Apple developer
// credentials.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Built-in Apple developer credentials used when no config file overrides them.
const (
	DefaultTeamID      = "Y23RJZMV5M"
	DefaultKeyID       = "R4WYDP8D72"
	DefaultDestination = "apps/ios/phlock/phlock/Services/Config.swift"
	DefaultPlaceholder = `static let appleMusicDeveloperToken = "your-apple-music-developer-token"`
)

// Config is the top-level generator configuration.
type Config struct {
	Credentials CredentialsConfig `yaml:"credentials" json:"credentials"`
	Output      OutputConfig      `yaml:"output" json:"output"`
	Logging     LoggingConfig     `yaml:"logging" json:"logging"`

	// Warnings holds non-fatal config issues detected during loading.
	Warnings []string `yaml:"-" json:"-"`
}

// CredentialsConfig identifies the signing key and the issuing team.
type CredentialsConfig struct {
	TeamID         string `yaml:"team_id" json:"team_id"`
	KeyID          string `yaml:"key_id" json:"key_id"`
	PrivateKeyPath string `yaml:"private_key_path" json:"private_key_path"` // default: ~/.apple-keys/AuthKey_<key_id>.p8
}

// OutputConfig names where the caller should paste the generated token.
// The file is never opened by the generator.
type OutputConfig struct {
	Destination string `yaml:"destination" json:"destination"`
	Placeholder string `yaml:"placeholder" json:"placeholder"`
}

// LoggingConfig holds diagnostic log settings. Logs always go to stderr.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`   // "debug", "info", "warn", "error"; default: "warn"
	Format string `yaml:"format" json:"format"` // "text" or "json"; default: "text"
}

// ValidLogLevels are the accepted log level strings.
var ValidLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// DefaultKeyPath returns the conventional location of the .p8 key for keyID,
// relative to the user's home directory.
func DefaultKeyPath(keyID string) string {
	return filepath.Join("~", ".apple-keys", "AuthKey_"+keyID+".p8")
}

var envVarRe = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} patterns in s with the corresponding
// environment variable value.
func expandEnvVars(s string) string {
	return envVarRe.ReplaceAllStringFunc(s, func(match string) string {
		key := match[2 : len(match)-1]
		if val, ok := os.LookupEnv(key); ok {
			return val
		}
		return match
	})
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, `~\`) {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}

// Default returns the built-in configuration with defaults applied.
func Default() (*Config, error) {
	return finish(&Config{})
}

// Load reads and parses a YAML configuration file, applies environment
// variable substitution, sets defaults, and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg, err := LoadFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

// LoadFromBytes parses configuration from raw YAML bytes. Useful for testing.
func LoadFromBytes(data []byte) (*Config, error) {
	expanded := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return finish(&cfg)
}

func finish(cfg *Config) (*Config, error) {
	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	path, err := expandHome(cfg.Credentials.PrivateKeyPath)
	if err != nil {
		return nil, err
	}
	cfg.Credentials.PrivateKeyPath = path

	cfg.Warnings = collectWarnings(cfg)

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	c := &cfg.Credentials
	if c.TeamID == "" {
		c.TeamID = DefaultTeamID
	}
	if c.KeyID == "" {
		c.KeyID = DefaultKeyID
	}
	if c.PrivateKeyPath == "" {
		c.PrivateKeyPath = DefaultKeyPath(c.KeyID)
	}

	if cfg.Output.Destination == "" {
		cfg.Output.Destination = DefaultDestination
	}
	if cfg.Output.Placeholder == "" {
		cfg.Output.Placeholder = DefaultPlaceholder
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "warn"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
}

func validate(cfg *Config) error {
	c := cfg.Credentials
	if strings.ContainsAny(c.TeamID, " \t\r\n") {
		return fmt.Errorf("credentials.team_id must not contain whitespace, got %q", c.TeamID)
	}
	if strings.ContainsAny(c.KeyID, " \t\r\n") {
		return fmt.Errorf("credentials.key_id must not contain whitespace, got %q", c.KeyID)
	}
	if strings.TrimSpace(c.PrivateKeyPath) == "" {
		return fmt.Errorf("credentials.private_key_path must not be blank")
	}
	for _, f := range []struct{ name, val string }{
		{"team_id", c.TeamID},
		{"key_id", c.KeyID},
		{"private_key_path", c.PrivateKeyPath},
	} {
		if m := envVarRe.FindString(f.val); m != "" {
			return fmt.Errorf("credentials.%s contains unresolved environment variable %s", f.name, m)
		}
	}

	if !ValidLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" && cfg.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be \"text\" or \"json\", got %q", cfg.Logging.Format)
	}

	return nil
}

func collectWarnings(cfg *Config) []string {
	var warnings []string
	if strings.Contains(cfg.Output.Destination, "${") {
		warnings = append(warnings, "output.destination contains unresolved environment variable")
	}
	if strings.Contains(cfg.Output.Placeholder, "${") {
		warnings = append(warnings, "output.placeholder contains unresolved environment variable")
	}
	return warnings
}
