package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for Hearth.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Gateway GatewayConfig           `yaml:"gateway"`
	API     APIConfig               `yaml:"api"`
	Logging LoggingConfig           `yaml:"logging"`
	Devices map[string]DeviceConfig `yaml:"devices"`
}

// GatewayConfig contains gateway-wide settings.
type GatewayConfig struct {
	Name string `yaml:"name"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
}

// APITimeoutConfig contains HTTP timeout settings in seconds.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// DeviceConfig describes one device entry keyed by its registry name.
//
// Type selects the adapter; the remaining fields are interpreted per type:
//   - tplink: address
//   - hue: host, user, and exactly one of light_id/group_id
//   - nanoleaf: address, token
//   - geeni, cree: address, device_id, local_key, optional device_type
type DeviceConfig struct {
	Type       string `yaml:"type"`
	Address    string `yaml:"address"`
	Host       string `yaml:"host"`
	User       string `yaml:"user"`
	Token      string `yaml:"token"`
	DeviceID   string `yaml:"device_id"`
	LocalKey   string `yaml:"local_key"`
	LightID    int    `yaml:"light_id"`
	GroupID    int    `yaml:"group_id"`
	DeviceType string `yaml:"device_type"`
	Timeout    int    `yaml:"timeout"`
}

// deviceTypes is the closed set of adapter types the gateway supports.
var deviceTypes = map[string]bool{
	"tplink":   true,
	"hue":      true,
	"nanoleaf": true,
	"geeni":    true,
	"cree":     true,
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: HEARTH_SECTION_KEY
// For example: HEARTH_API_PORT, HEARTH_LOGGING_LEVEL
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Gateway: GatewayConfig{
			Name: "hearth",
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8086,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: HEARTH_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HEARTH_API_HOST"); v != "" {
		cfg.API.Host = v
	}
	if v := os.Getenv("HEARTH_API_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.API.Port = port
		}
	}
	if v := os.Getenv("HEARTH_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("HEARTH_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	for name, dev := range c.Devices {
		if strings.TrimSpace(name) == "" {
			errs = append(errs, "devices: entry with blank name")
			continue
		}
		if !deviceTypes[dev.Type] {
			errs = append(errs, fmt.Sprintf("devices.%s: unknown type %q", name, dev.Type))
			continue
		}

		switch dev.Type {
		case "hue":
			if dev.Host == "" {
				errs = append(errs, fmt.Sprintf("devices.%s: host is required", name))
			}
			if dev.User == "" {
				errs = append(errs, fmt.Sprintf("devices.%s: user is required", name))
			}
			if (dev.LightID > 0) == (dev.GroupID > 0) {
				errs = append(errs, fmt.Sprintf("devices.%s: exactly one of light_id/group_id is required", name))
			}
		case "nanoleaf":
			if dev.Address == "" {
				errs = append(errs, fmt.Sprintf("devices.%s: address is required", name))
			}
			if dev.Token == "" {
				errs = append(errs, fmt.Sprintf("devices.%s: token is required", name))
			}
		case "geeni", "cree":
			if dev.Address == "" {
				errs = append(errs, fmt.Sprintf("devices.%s: address is required", name))
			}
			if dev.DeviceID == "" {
				errs = append(errs, fmt.Sprintf("devices.%s: device_id is required", name))
			}
			if len(dev.LocalKey) != 16 {
				errs = append(errs, fmt.Sprintf("devices.%s: local_key must be 16 characters", name))
			}
		default: // tplink
			if dev.Address == "" {
				errs = append(errs, fmt.Sprintf("devices.%s: address is required", name))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}

// GetDeviceTimeout returns a device entry's timeout as a Duration; zero means
// the adapter default.
func (d DeviceConfig) GetDeviceTimeout() time.Duration {
	return time.Duration(d.Timeout) * time.Second
}
