// Package config loads shadowroot configuration from YAML files.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level shadowroot configuration.
type Config struct {
	Hydrate HydrateConfig `yaml:"hydrate"`
	Stream  StreamConfig  `yaml:"stream"`
	Output  OutputConfig  `yaml:"output"`
	Fetch   FetchConfig   `yaml:"fetch"`
	Browser BrowserConfig `yaml:"browser"`
	Server  ServerConfig  `yaml:"server"`
}

// HydrateConfig selects which template attributes request a shadow root.
type HydrateConfig struct {
	ModeAttributes          []string `yaml:"mode_attributes"`
	DelegatesFocusAttribute string   `yaml:"delegates_focus_attribute"`
	// Native makes the parser attach shadow roots itself instead of
	// leaving templates for the polyfill.
	Native bool `yaml:"native"`
}

// StreamConfig controls checkpoint batching while markup streams in.
type StreamConfig struct {
	Window    time.Duration `yaml:"window"`
	MaxBuffer int           `yaml:"max_buffer"`
}

// OutputConfig controls rendering.
type OutputConfig struct {
	Format   string `yaml:"format"` // html | flat | markdown
	Sanitize bool   `yaml:"sanitize"`
}

// FetchConfig controls page retrieval for URL inputs.
type FetchConfig struct {
	UserAgent string        `yaml:"user_agent"`
	Timeout   time.Duration `yaml:"timeout"`
	MaxBytes  int64         `yaml:"max_bytes"`
}

// BrowserConfig controls the optional Chrome capability probe.
type BrowserConfig struct {
	Remote  string        `yaml:"remote"`
	Timeout time.Duration `yaml:"timeout"`
}

// ServerConfig controls the HTTP surface.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LoadFile reads a YAML configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	cfg.ApplyDefaults()
	return &cfg
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if len(c.Hydrate.ModeAttributes) == 0 {
		c.Hydrate.ModeAttributes = []string{"shadowrootmode", "shadowroot"}
	}
	if c.Hydrate.DelegatesFocusAttribute == "" {
		c.Hydrate.DelegatesFocusAttribute = "shadowrootdelegatesfocus"
	}
	if c.Stream.Window <= 0 {
		c.Stream.Window = 250 * time.Millisecond
	}
	if c.Stream.MaxBuffer <= 0 {
		c.Stream.MaxBuffer = 1000
	}
	if c.Output.Format == "" {
		c.Output.Format = "html"
	}
	if c.Fetch.UserAgent == "" {
		c.Fetch.UserAgent = "shadowroot/1.0"
	}
	if c.Fetch.Timeout <= 0 {
		c.Fetch.Timeout = 30 * time.Second
	}
	if c.Fetch.MaxBytes <= 0 {
		c.Fetch.MaxBytes = 10 << 20
	}
	if c.Browser.Timeout <= 0 {
		c.Browser.Timeout = 30 * time.Second
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8087"
	}
}

// Validate rejects values the pipeline cannot use.
func (c *Config) Validate() error {
	switch c.Output.Format {
	case "html", "flat", "markdown":
	default:
		return fmt.Errorf("config: unknown output format %q", c.Output.Format)
	}
	return nil
}
