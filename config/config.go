// Package config loads node configuration from a YAML file, falling
// back to defaults when the file is absent.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the node configuration.
type Config struct {
	// Port is the serial device, e.g. /dev/ttyUSB0
	Port string `yaml:"port"`

	// Baud is the serial line rate
	Baud int `yaml:"baud"`

	// FrameRate is the periodic send cadence in frames per second
	FrameRate int `yaml:"frame_rate"`

	// DrainBudget caps inbound packet decodes per link tick
	DrainBudget int `yaml:"drain_budget"`

	// FragmentSize is the file transfer fragment data size
	FragmentSize int `yaml:"fragment_size"`

	// ReadTimeout bounds each serial read
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// ResponseTimeout bounds render channel request/response calls
	ResponseTimeout time.Duration `yaml:"response_timeout"`

	// NetworkID is the identifier announced on data requests
	NetworkID string `yaml:"network_id"`
}

// DefaultPath returns the default config file path: ~/.arclink/config.yaml
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".arclink", "config.yaml")
	}
	return filepath.Join(home, ".arclink", "config.yaml")
}

// Load reads the configuration from the given YAML file path.
// If the file does not exist, it returns a default Config with no error.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Port:            "/dev/ttyUSB0",
		Baud:            921600,
		FrameRate:       60,
		DrainBudget:     5,
		FragmentSize:    200,
		ReadTimeout:     20 * time.Millisecond,
		ResponseTimeout: 500 * time.Millisecond,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Baud <= 0 {
		return fmt.Errorf("baud must be positive, got %d", c.Baud)
	}
	if c.FrameRate <= 0 || c.FrameRate > 1000 {
		return fmt.Errorf("frame_rate out of range: %d", c.FrameRate)
	}
	if c.DrainBudget <= 0 {
		return fmt.Errorf("drain_budget must be positive, got %d", c.DrainBudget)
	}
	if c.FragmentSize <= 0 || c.FragmentSize > 247 {
		return fmt.Errorf("fragment_size out of range: %d", c.FragmentSize)
	}
	return nil
}
