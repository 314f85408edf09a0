// Package config provides configuration loading for snip.
//
// Configuration is loaded from a single YAML file named by the SNIP_CONFIG environment
// variable or the --config flag. A missing file is not an error for the CLI, which then
// runs with Default().
//
//	buffer:
//	  capacity: 5 MiB
//	codepage: windows-1252
//	compression: zlib
//	log:
//	  level: info
//	  format: text
package config

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/bearlytools/snip/chunk"
	"github.com/bearlytools/snip/compress"
	"github.com/bearlytools/snip/schema"
)

// EnvVar names the environment variable that points at the config file.
const EnvVar = "SNIP_CONFIG"

// Config is the configuration of an editing session.
type Config struct {
	// Buffer configures the chunk buffer each session allocates.
	Buffer BufferConfig `yaml:"buffer"`

	// CodePage is the code page of sessions opened with it. The snip command uses the
	// code page of the schema file instead.
	CodePage string `yaml:"codepage"`

	// Compression is used when a record is compressed and does not say how.
	Compression string `yaml:"compression"`

	// Log configures logging.
	Log LogConfig `yaml:"log"`
}

// BufferConfig configures chunk buffers.
type BufferConfig struct {
	// Capacity is the size of each buffer region, such as "5 MiB" or "65536".
	Capacity Size `yaml:"capacity"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level"`
	// Format is text or json.
	Format string `yaml:"format"`
}

// Size is a byte count written in YAML as a human readable size.
type Size int

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *Size) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	n, err := humanize.ParseBytes(raw)
	if err != nil {
		return fmt.Errorf("line %d: bad size %q: %w", value.Line, raw, err)
	}
	if n > 1<<31-1 {
		return fmt.Errorf("line %d: size %q is too large", value.Line, raw)
	}
	*s = Size(n)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (s Size) MarshalYAML() (any, error) {
	return s.String(), nil
}

func (s Size) String() string {
	return humanize.IBytes(uint64(s))
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Buffer:      BufferConfig{Capacity: chunk.DefaultCapacity},
		CodePage:    schema.DefaultCodePage,
		Compression: compress.CmpZlib.String(),
		Log:         LogConfig{Level: "info", Format: "text"},
	}
}

// Load loads the file named by SNIP_CONFIG, or returns Default() if it is not set.
func Load() (*Config, error) {
	path := os.Getenv(EnvVar)
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile loads configuration from path. Values missing from the file keep their
// defaults.
func LoadFile(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config file %s", path)
	}
	cfg, err := Parse(b)
	if err != nil {
		return nil, errors.Wrapf(err, "config file %s", path)
	}
	return cfg, nil
}

// Parse parses YAML config content over Default(). Unknown keys are rejected.
func Parse(b []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "parsing config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Buffer.Capacity <= 0 {
		return errors.Errorf("buffer.capacity must be positive, got %d", c.Buffer.Capacity)
	}
	if _, err := c.CompressionType(); err != nil {
		return errors.Wrap(err, "compression")
	}
	if _, err := c.SlogLevel(); err != nil {
		return errors.Wrap(err, "log.level")
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return errors.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// CompressionType returns the configured compression.
func (c *Config) CompressionType() (compress.Type, error) {
	return compress.ParseType(c.Compression)
}

// SlogLevel returns the configured log level.
func (c *Config) SlogLevel() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, err
	}
	return l, nil
}

// Logger builds a logger that writes to w at the configured level and format.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level, err := c.SlogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
