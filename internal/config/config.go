// Package config handles layered YAML configuration with environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all addressbook configuration.
type Config struct {
	Storage   Storage   `yaml:"storage"`
	Birthdays Birthdays `yaml:"birthdays"`
	Session   Session   `yaml:"session"`
	Log       Log       `yaml:"log"`
}

// Storage holds address book file settings.
type Storage struct {
	Path   string `yaml:"path"`
	Format string `yaml:"format"` // "" (by extension) | "json" | "yaml"
}

// Birthdays holds upcoming-birthday query settings.
type Birthdays struct {
	Window time.Duration `yaml:"window"`
}

// Session holds interactive session settings.
type Session struct {
	Prompt string `yaml:"prompt"`
	Plain  bool   `yaml:"plain"` // Never start the TUI
}

// Log holds diagnostic logging settings.
type Log struct {
	File  string `yaml:"file"`  // Empty disables logging
	Level string `yaml:"level"` // "debug" | "info" | "warn" | "error"
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Storage: Storage{
			Path: "address_book.json",
		},
		Birthdays: Birthdays{
			Window: 7 * 24 * time.Hour,
		},
		Session: Session{
			Prompt: "Enter a command: ",
		},
		Log: Log{
			Level: "info",
		},
	}
}

// LoadLayered loads config from multiple paths with increasing priority.
// Later paths override earlier ones. Missing files are skipped.
func LoadLayered(paths ...string) (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range paths {
		layer, err := loadLayer(path)
		if err != nil {
			return nil, err
		}
		if layer == nil {
			continue
		}
		cfg.merge(layer)
	}

	return &cfg, nil
}

// Validate checks that config values are usable.
func (c *Config) Validate() error {
	if c.Storage.Path == "" {
		return errors.New("config: storage.path cannot be empty")
	}
	switch c.Storage.Format {
	case "", "json", "yaml":
		// valid
	default:
		return fmt.Errorf("config: storage.format must be \"json\" or \"yaml\", got %q", c.Storage.Format)
	}
	if c.Birthdays.Window <= 0 {
		return fmt.Errorf("config: birthdays.window must be positive, got %v", c.Birthdays.Window)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return fmt.Errorf("config: log.level must be one of debug, info, warn, error, got %q", c.Log.Level)
	}
	return nil
}

// ApplyEnv applies environment variable overrides to the config.
// Supported variables: ADDRESSBOOK_FILE, ADDRESSBOOK_WINDOW, ADDRESSBOOK_LOG_FILE, ADDRESSBOOK_LOG_LEVEL.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("ADDRESSBOOK_FILE"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("ADDRESSBOOK_WINDOW"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: invalid ADDRESSBOOK_WINDOW %q: %w", v, err)
		}
		c.Birthdays.Window = d
	}
	if v := os.Getenv("ADDRESSBOOK_LOG_FILE"); v != "" {
		c.Log.File = v
	}
	if v := os.Getenv("ADDRESSBOOK_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	return nil
}

// rawConfig mirrors Config but uses pointers to distinguish set vs unset fields.
type rawConfig struct {
	Storage   *rawStorage   `yaml:"storage"`
	Birthdays *rawBirthdays `yaml:"birthdays"`
	Session   *rawSession   `yaml:"session"`
	Log       *rawLog       `yaml:"log"`
}

type rawStorage struct {
	Path   *string `yaml:"path"`
	Format *string `yaml:"format"`
}

type rawBirthdays struct {
	Window *time.Duration `yaml:"window"`
}

type rawSession struct {
	Prompt *string `yaml:"prompt"`
	Plain  *bool   `yaml:"plain"`
}

type rawLog struct {
	File  *string `yaml:"file"`
	Level *string `yaml:"level"`
}

// loadLayer reads a single config file into a rawConfig for selective merging.
// Returns nil if the file does not exist. Rejects unknown fields.
func loadLayer(path string) (*rawConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if len(data) == 0 {
		return nil, nil
	}

	var raw rawConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return &raw, nil
}

// merge applies non-nil fields from a rawConfig layer onto this Config.
func (c *Config) merge(layer *rawConfig) {
	if layer.Storage != nil {
		if layer.Storage.Path != nil {
			c.Storage.Path = *layer.Storage.Path
		}
		if layer.Storage.Format != nil {
			c.Storage.Format = *layer.Storage.Format
		}
	}
	if layer.Birthdays != nil && layer.Birthdays.Window != nil {
		c.Birthdays.Window = *layer.Birthdays.Window
	}
	if layer.Session != nil {
		if layer.Session.Prompt != nil {
			c.Session.Prompt = *layer.Session.Prompt
		}
		if layer.Session.Plain != nil {
			c.Session.Plain = *layer.Session.Plain
		}
	}
	if layer.Log != nil {
		if layer.Log.File != nil {
			c.Log.File = *layer.Log.File
		}
		if layer.Log.Level != nil {
			c.Log.Level = *layer.Log.Level
		}
	}
}
