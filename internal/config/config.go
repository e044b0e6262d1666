// Package config loads the tool configuration from a TOML file and
// applies defaults for everything left unset.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/pcodetools/pcode/internal/types"
)

// Config is the root configuration.
type Config struct {
	// ToolsRelease gates the builtin catalog (for example "8.55").
	ToolsRelease string   `toml:"tools_release"`
	CheckClasses bool     `toml:"check_classes"`
	Metadata     Metadata `toml:"metadata"`
	Watch        Watch    `toml:"watch"`
}

// Metadata selects and configures the metadata provider.
type Metadata struct {
	// Provider is one of "none", "yaml", "remote".
	Provider string `toml:"provider"`
	// Path locates the YAML metadata document for the yaml provider.
	Path string `toml:"path"`
	// URL locates the metadata service for the remote provider.
	URL string `toml:"url"`
	// Insecure skips TLS verification against the metadata service.
	Insecure bool `toml:"insecure"`
}

// Watch configures the re-check-on-save driver.
type Watch struct {
	Debounce     Duration `toml:"debounce"`
	ExcludeDirs  []string `toml:"exclude_dirs"`
	ExcludeFiles []string `toml:"exclude_files"`
	Extensions   []string `toml:"extensions"`
}

// Duration decodes TOML duration strings such as "250ms".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		ToolsRelease: types.DefaultToolsRelease,
		Metadata:     Metadata{Provider: "none"},
		Watch: Watch{
			Debounce:    Duration{500 * time.Millisecond},
			ExcludeDirs: []string{".git"},
			Extensions:  []string{".pcode", ".ppl", ".pc"},
		},
	}
}

// Load reads a TOML configuration file and fills in defaults. A missing
// file is not an error; the defaults apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if cfg.ToolsRelease == "" {
		cfg.ToolsRelease = types.DefaultToolsRelease
	}
	if cfg.Watch.Debounce.Duration <= 0 {
		cfg.Watch.Debounce = Duration{500 * time.Millisecond}
	}
	if len(cfg.Watch.Extensions) == 0 {
		cfg.Watch.Extensions = []string{".pcode", ".ppl", ".pc"}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Metadata.Provider {
	case "", "none", "yaml", "remote":
	default:
		return fmt.Errorf("unknown metadata provider %q", c.Metadata.Provider)
	}
	if c.Metadata.Provider == "yaml" && c.Metadata.Path == "" {
		return fmt.Errorf("metadata provider %q requires path", c.Metadata.Provider)
	}
	if c.Metadata.Provider == "remote" && c.Metadata.URL == "" {
		return fmt.Errorf("metadata provider %q requires url", c.Metadata.Provider)
	}
	return nil
}
