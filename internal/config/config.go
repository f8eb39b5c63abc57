// Package config loads the scanning core's static configuration: the
// statically configured device list, per-protocol retry budgets, the
// model_is_netname display flag, and discovery/log tuning (spec.md §6
// "Configuration").
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Protocol identifies a device's protocol family. eSCL is the only
// concrete handler this repo ships (internal/escl); the type exists so
// additional handlers can be registered without changing the config
// schema.
type Protocol string

// ESCL is the eSCL protocol family.
const ESCL Protocol = "escl"

// StaticDevice is one statically configured (non-discovered) device.
type StaticDevice struct {
	Name     string   `yaml:"name"`
	URI      string   `yaml:"uri"`
	Protocol Protocol `yaml:"protocol"`
}

// RetryConfig is the retry budget for transient protocol failures
// (spec.md §4.3 "Retry policy"): a fixed number of attempts at a fixed
// interval.
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	Interval    time.Duration `yaml:"interval"`
}

// DefaultRetryConfig is spec.md's stated budget: 10 attempts, 1s apart.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{MaxAttempts: 10, Interval: time.Second}
}

// DiscoveryConfig tunes the registry readiness wait and mDNS browsing.
type DiscoveryConfig struct {
	ReadyTimeout time.Duration `yaml:"ready_timeout"`
	Interfaces   []string      `yaml:"interfaces"`
}

// DefaultDiscoveryConfig is spec.md §4.1's stated default: 5s.
func DefaultDiscoveryConfig() DiscoveryConfig {
	return DiscoveryConfig{ReadyTimeout: 5 * time.Second}
}

// LogConfig configures the scanlog output.
type LogConfig struct {
	Level           string `yaml:"level"`
	ProtocolLogPath string `yaml:"protocol_log_path"`
}

// Config is the top-level static configuration.
type Config struct {
	StaticDevices []StaticDevice `yaml:"static_devices"`

	// ModelIsNetname controls whether a device's displayed "model" string
	// is its discovery-advertised net name rather than its capability-
	// reported model name (spec.md §6, behavior per original_source).
	ModelIsNetname bool `yaml:"model_is_netname"`

	Retry     RetryConfig     `yaml:"retry"`
	Discovery DiscoveryConfig `yaml:"discovery"`
	Log       LogConfig       `yaml:"log"`
}

// Default returns a Config with no static devices and spec-mandated
// defaults for everything else.
func Default() Config {
	return Config{
		Retry:     DefaultRetryConfig(),
		Discovery: DefaultDiscoveryConfig(),
		Log:       LogConfig{Level: "info"},
	}
}

// Load reads and parses a YAML config file at path, filling unset fields
// with defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry.MaxAttempts = DefaultRetryConfig().MaxAttempts
	}
	if cfg.Retry.Interval == 0 {
		cfg.Retry.Interval = DefaultRetryConfig().Interval
	}
	if cfg.Discovery.ReadyTimeout == 0 {
		cfg.Discovery.ReadyTimeout = DefaultDiscoveryConfig().ReadyTimeout
	}

	return cfg, validate(cfg)
}

func validate(cfg Config) error {
	seen := make(map[string]struct{}, len(cfg.StaticDevices))
	for _, d := range cfg.StaticDevices {
		if d.Name == "" {
			return fmt.Errorf("config: static device missing name")
		}
		if _, dup := seen[d.Name]; dup {
			return fmt.Errorf("config: duplicate static device name %q", d.Name)
		}
		seen[d.Name] = struct{}{}

		if d.URI == "" {
			return fmt.Errorf("config: static device %q missing uri", d.Name)
		}
		if d.Protocol == "" {
			return fmt.Errorf("config: static device %q missing protocol", d.Name)
		}
	}
	return nil
}
