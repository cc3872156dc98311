package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sarpt/loop-web-api/pkg/loop"
)

// Default values for Config.
const (
	DefaultAddress                    = "localhost:3001"
	DefaultMpvSocketPath              = "/tmp/mpvsocket"
	DefaultSocketConnectionTimeoutSec = 15
)

// Config represents the optional YAML configuration file.
// Values left out of the file keep their defaults, and command line
// arguments take precedence over both.
type Config struct {
	Address                    string   `yaml:"address"`
	AllowCORS                  bool     `yaml:"allow_cors"`
	DefaultBPM                 int      `yaml:"default_bpm"`
	Directories                []string `yaml:"directories"`
	MpvSocketPath              string   `yaml:"mpv_socket_path"`
	SocketConnectionTimeoutSec int      `yaml:"socket_connection_timeout_sec"`
	StartMpvInstance           bool     `yaml:"start_mpv_instance"`
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		Address:                    DefaultAddress,
		MpvSocketPath:              DefaultMpvSocketPath,
		SocketConnectionTimeoutSec: DefaultSocketConnectionTimeoutSec,
		StartMpvInstance:           true,
	}
}

// LoadConfig reads and parses the YAML configuration file under the provided path.
// Applies defaults for any missing fields.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := ValidateConfig(&cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// ValidateConfig checks that all config values are valid.
func ValidateConfig(cfg *Config) error {
	if cfg.Address == "" {
		return ValidationError{Field: "address", Message: "must not be empty"}
	}
	if cfg.MpvSocketPath == "" {
		return ValidationError{Field: "mpv_socket_path", Message: "must not be empty"}
	}
	if cfg.SocketConnectionTimeoutSec <= 0 {
		return ValidationError{Field: "socket_connection_timeout_sec", Message: "must be positive"}
	}
	if cfg.DefaultBPM < 0 || cfg.DefaultBPM > loop.MaxBPM {
		return ValidationError{Field: "default_bpm", Message: fmt.Sprintf("must be between 0 and %d", loop.MaxBPM)}
	}

	return nil
}
