// Package config provides YAML configuration parsing for the mifi exporter.
//
// A configuration file is an alternative to passing everything on the
// command line. Explicit flags still take precedence over the file.
//
// Example configuration:
//
//	target: 192.168.0.1
//	interval: 30s
//	timeout: 10s
//	port: 6123
//	listen_address: ${MIFI_LISTEN:-0.0.0.0}
//	debug: false
package config

import (
	"fmt"
	"net/netip"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/jpalmerr/mifi-exporter"
	"gopkg.in/yaml.v3"
)

// minInterval is the shortest poll interval a config file may ask for.
const minInterval = 1 * time.Second

// Config is the root configuration structure.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config from YAML.
type Config struct {
	// Target is the IPv4 or IPv6 literal of the device to probe.
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}
	Target string `yaml:"target"`

	// Interval is the sleep between poll cycles. Defaults to 60s.
	// Accepts duration strings like "30s" or a plain number of seconds.
	Interval Duration `yaml:"interval"`

	// Timeout bounds a single probe. Defaults to half the interval.
	Timeout Duration `yaml:"timeout"`

	// Port is the metrics endpoint port. Defaults to 6123.
	Port int `yaml:"port"`

	// ListenAddress is the host the metrics endpoint binds to.
	// Empty means all interfaces.
	ListenAddress string `yaml:"listen_address"`

	// Debug enables debug logging.
	Debug bool `yaml:"debug"`
}

// Duration wraps time.Duration for YAML unmarshalling.
//
// Both "1m30s" style strings and bare numbers (seconds, fractions allowed)
// are accepted.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("duration must be a string or number, got %v", node.Kind)
	}

	if tag := node.ShortTag(); tag == "!!int" || tag == "!!float" {
		var secs float64
		if err := node.Decode(&secs); err != nil {
			return err
		}
		*d = Duration(Seconds(secs))
		return nil
	}

	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Seconds converts a fractional number of seconds to a time.Duration.
func Seconds(secs float64) time.Duration {
	return time.Duration(secs * float64(time.Second))
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file.
//
// Returns an error if the file cannot be read, parsed or validated.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
//
// Environment variables are expanded in Target and ListenAddress.
// Defaults are applied for Port (6123) and Interval (60s). A file without
// a target is valid; the target may come from the command line instead.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if cfg.Port == 0 {
		cfg.Port = mifiexporter.DefaultPort
	}
	if cfg.Interval == 0 {
		cfg.Interval = Duration(mifiexporter.DefaultInterval)
	}

	if err := cfg.expand(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// expand substitutes environment variables in Target and ListenAddress.
func (c *Config) expand() error {
	target, err := expandEnvVars(c.Target)
	if err != nil {
		return fmt.Errorf("target: %w", err)
	}
	c.Target = strings.TrimSpace(target)

	listen, err := expandEnvVars(c.ListenAddress)
	if err != nil {
		return fmt.Errorf("listen_address: %w", err)
	}
	c.ListenAddress = strings.TrimSpace(listen)

	return nil
}

// Validate checks every field. [Parse] calls it; callers that change fields
// afterwards, such as command-line overrides, should call it again.
//
// An empty Target is valid.
func (c *Config) Validate() error {
	if c.Target != "" {
		if _, err := mifiexporter.ParseTarget(c.Target); err != nil {
			return fmt.Errorf("target: %w", err)
		}
	}

	if c.ListenAddress != "" {
		if _, err := netip.ParseAddr(c.ListenAddress); err != nil {
			return fmt.Errorf("listen_address must be an IP literal, got %q", c.ListenAddress)
		}
	}

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}

	if c.Interval.Duration() < minInterval {
		return fmt.Errorf("interval must be at least %s, got %s", minInterval, c.Interval.Duration())
	}

	if c.Timeout != 0 {
		if c.Timeout.Duration() < 0 {
			return fmt.Errorf("timeout cannot be negative, got %s", c.Timeout.Duration())
		}
		if c.Timeout.Duration() >= c.Interval.Duration() {
			return fmt.Errorf("timeout (%s) must be less than interval (%s)",
				c.Timeout.Duration(), c.Interval.Duration())
		}
	}

	return nil
}
