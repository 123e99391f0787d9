// Package config loads runtime settings for the ArchBrain services.
//
// Settings are layered: built-in defaults, then an optional YAML file, then
// environment variables. The merged result is validated before use.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// MaxConfigFileSize caps the YAML file read from disk.
const MaxConfigFileSize = 1024 * 1024

// Environment variables recognised by Load.
const (
	EnvProjectRoot = "PROJECT_ROOT"
	EnvPort        = "ARCHBRAIN_PORT"
	EnvCORSOrigin  = "CORS_ALLOWED_ORIGIN"
	EnvMCPOnly     = "MCP_ONLY"
	EnvLogLevel    = "ARCHBRAIN_LOG_LEVEL"
	EnvHubURL      = "ARCHBRAIN_HUB_URL"
)

type Config struct {
	ProjectRoot string        `yaml:"project_root" validate:"required"`
	SourceDir   string        `yaml:"source_dir" validate:"required"`
	Ignore      []string      `yaml:"ignore"`
	Port        int           `yaml:"port" validate:"min=1,max=65535"`
	CORSOrigin  string        `yaml:"cors_origin" validate:"required"`
	Debounce    time.Duration `yaml:"debounce" validate:"min=0"`
	BridgeFile  string        `yaml:"bridge_file"`
	LogLevel    string        `yaml:"log_level" validate:"oneof=debug info warn error"`
	MCPOnly     bool          `yaml:"mcp_only"`
	HubURL      string        `yaml:"hub_url" validate:"omitempty,url"`
}

// Default returns the built-in configuration rooted at the working directory.
func Default() Config {
	root, err := os.Getwd()
	if err != nil {
		root = "."
	}
	return Config{
		ProjectRoot: root,
		SourceDir:   "src",
		Ignore:      []string{"node_modules"},
		Port:        5050,
		CORSOrigin:  "*",
		Debounce:    300 * time.Millisecond,
		BridgeFile:  "sentinel_bridge.json",
		LogLevel:    "info",
	}
}

// Load builds the configuration from defaults, the YAML file at path (if
// non-empty) and the process environment.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.mergeEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat config file: %w", err)
	}
	if info.Size() > MaxConfigFileSize {
		return fmt.Errorf("config file %s exceeds %d bytes", path, MaxConfigFileSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return nil
}

func (c *Config) mergeEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvProjectRoot); ok && v != "" {
		c.ProjectRoot = v
	}
	if v, ok := lookup(EnvPort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		c.Port = port
	}
	if v, ok := lookup(EnvCORSOrigin); ok && v != "" {
		c.CORSOrigin = v
	}
	if v, ok := lookup(EnvMCPOnly); ok && v != "" {
		c.MCPOnly = v != "0" && !strings.EqualFold(v, "false")
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	if v, ok := lookup(EnvHubURL); ok && v != "" {
		c.HubURL = v
	}
	return nil
}

var validate = validator.New()

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config: %s fails %q", fe.Field(), fe.Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Address is the listen address for the HTTP server.
func (c Config) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// HubAddress is the base URL other processes use to reach this hub.
func (c Config) HubAddress() string {
	if c.HubURL != "" {
		return strings.TrimRight(c.HubURL, "/")
	}
	return fmt.Sprintf("http://127.0.0.1:%d", c.Port)
}

// SlogLevel maps LogLevel onto slog.
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
