// Package config loads the oneof YAML configuration file.
//
//	mode: envelope        # envelope | transparent
//	store:
//	  path: oneof.db
//	  compress: true
//	log:
//	  level: info         # debug | info | warn | error
//	output:
//	  format: text        # text | json
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/oneof/internal/codec"
)

// Config is the decoded configuration file.
type Config struct {
	Mode   string       `yaml:"mode"`
	Store  StoreConfig  `yaml:"store"`
	Log    LogConfig    `yaml:"log"`
	Output OutputConfig `yaml:"output"`
}

type StoreConfig struct {
	Path     string `yaml:"path"`
	Compress bool   `yaml:"compress"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type OutputConfig struct {
	Format string `yaml:"format"`
}

// Defaults.
const (
	DefaultMode      = "envelope"
	DefaultStorePath = "oneof.db"
	DefaultLogLevel  = "info"
	DefaultFormat    = "text"
)

var validFormats = []string{"text", "json"}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Mode:   DefaultMode,
		Store:  StoreConfig{Path: DefaultStorePath},
		Log:    LogConfig{Level: DefaultLogLevel},
		Output: OutputConfig{Format: DefaultFormat},
	}
}

// Load reads and validates the file at path. Unset fields take defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML config text. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	// An empty document leaves the defaults in place.
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects unknown modes, levels and formats, and fills empty
// fields with defaults.
func (c *Config) Validate() error {
	if c.Mode == "" {
		c.Mode = DefaultMode
	}
	if _, err := codec.ParseMode(c.Mode); err != nil {
		return fmt.Errorf("config mode: %w", err)
	}
	if c.Store.Path == "" {
		c.Store.Path = DefaultStorePath
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config log.level: %w", err)
	}
	if c.Output.Format == "" {
		c.Output.Format = DefaultFormat
	}
	if !slices.Contains(validFormats, c.Output.Format) {
		return fmt.Errorf("config output.format: invalid format %q: must be one of %v", c.Output.Format, validFormats)
	}
	return nil
}

// CodecMode returns the parsed codec mode.
func (c *Config) CodecMode() codec.Mode {
	m, _ := codec.ParseMode(c.Mode)
	return m
}

// SlogLevel returns the parsed log level.
func (c *Config) SlogLevel() slog.Level {
	l, _ := ParseLevel(c.Log.Level)
	return l
}

// ParseLevel parses debug, info, warn or error.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(s))); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return l, nil
}
